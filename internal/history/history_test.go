package history

import (
	"testing"

	"ability-lst/internal/ability"
	"ability-lst/internal/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	dodge := ability.New("Dodge", ability.KindFeat, ability.DnD35e)
	dodge.Description = "+1 AC."
	cleave := ability.New("Cleave", ability.KindFeat, ability.DnD35e)
	old := ability.New("Old Feat", ability.KindFeat, ability.DnD35e)

	dodge2 := dodge.Clone()
	dodge2.Key = "DODGE"
	dodge2.RequiredLevel = 3
	fresh := ability.New("Fresh", ability.KindFeat, ability.DnD35e)

	changes, err := Compare("feats.lst",
		[]*ability.Ability{dodge, cleave, old},
		[]*ability.Ability{dodge2, cleave.Clone(), fresh},
		ability.DnD35e)
	require.NoError(t, err)
	require.Len(t, changes, 3)

	assert.Equal(t, Modified, changes[0].Type)
	assert.Equal(t, "Dodge", changes[0].Key)
	fields := parser.SplitFields(changes[0].Mod)
	assert.Equal(t, "CATEGORY=FEAT|Dodge.MOD", fields[0])
	assert.Contains(t, fields, "PREVARGTEQ:TL,3")

	assert.Equal(t, Change{File: "feats.lst", Key: "Fresh", Type: Added}, changes[1])
	assert.Equal(t, Change{File: "feats.lst", Key: "Old Feat", Type: Removed}, changes[2])
}

func TestCompareKindChange(t *testing.T) {
	a := ability.New("Luck", ability.KindFeat, ability.Pathfinder1e)
	b := ability.New("Luck", ability.KindGMAward, ability.Pathfinder1e)
	_, err := Compare("x.lst", []*ability.Ability{a}, []*ability.Ability{b}, ability.Pathfinder1e)
	assert.ErrorIs(t, err, ability.ErrInvariantViolation)
}

func TestAbilityFiles(t *testing.T) {
	out := []byte("data/homebrew/feats.lst\ndata/homebrew/homebrew.pcc\r\nREADME.md\ndata/x/TRAITS.LST\n")
	assert.Equal(t, []string{"data/homebrew/feats.lst", "data/x/TRAITS.LST"}, abilityFiles(out))
}
