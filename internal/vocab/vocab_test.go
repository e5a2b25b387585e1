package vocab

import (
	"os"
	"path/filepath"
	"testing"

	"ability-lst/internal/ability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultVocabulary(t *testing.T) {
	v := Default()

	pf, err := v.System(ability.Pathfinder1e)
	require.NoError(t, err)
	assert.Equal(t, "Pathfinder", pf.GameMode)
	assert.True(t, pf.Supports(ability.KindTrait))
	assert.Contains(t, pf.SubtypeChoices(ability.KindTrait), "Race")
	assert.Contains(t, pf.SubtypeChoices(ability.KindFeat), "Teamwork")
	assert.Equal(t, ability.NoRace, pf.RaceChoices()[0])
	assert.True(t, pf.KnownRace("ratfolk"))

	dnd5, err := v.System(ability.DnD5e)
	require.NoError(t, err)
	assert.False(t, dnd5.Supports(ability.KindTrait))
	assert.Empty(t, dnd5.SubtypeChoices(ability.KindFeat))

	dnd35, err := v.System(ability.DnD35e)
	require.NoError(t, err)
	assert.Equal(t, "Homebrew.35Homebrew", dnd35.PCCType)
	assert.Len(t, dnd35.Races, 7)
}

func TestCheck(t *testing.T) {
	v := Default()

	feat := ability.New("Sharp Eye", ability.KindFeat, ability.DnD5e)
	feat.Description = "You notice things."
	require.NoError(t, v.Check(feat, ability.DnD5e))

	feat.RequiredAttackBonus = 2
	assert.ErrorIs(t, v.Check(feat, ability.DnD5e), ability.ErrUnsupported)
	assert.NoError(t, v.Check(feat, ability.DnD35e))
}

func TestParseRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"wrong version", "version: 2\nsystems: []\n"},
		{"unknown system", "version: 1\nsystems:\n  - slug: gurps\n"},
		{"unknown kind", "version: 1\nsystems:\n  - slug: 5e\n    kinds: [Spell]\n"},
		{"not yaml", "version: [1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	doc := "version: 1\nsystems:\n  - slug: 35e\n    gamemode: 35e\n    kinds: [Feat]\n    races: [Kobold]\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	v, err := LoadFile(path)
	require.NoError(t, err)
	s, err := v.System(ability.DnD35e)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kobold"}, s.Races)

	_, err = v.System(ability.Pathfinder1e)
	assert.Error(t, err)
}

func TestByGameMode(t *testing.T) {
	v := Default()
	for gm, want := range map[string]ability.RuleSystem{
		"Pathfinder": ability.Pathfinder1e,
		"35e":        ability.DnD35e,
		"3e|35e":     ability.DnD35e,
		"5e":         ability.DnD5e,
	} {
		got, ok := v.ByGameMode(gm)
		require.True(t, ok, gm)
		assert.Equal(t, want, got, gm)
	}
	_, ok := v.ByGameMode("Starfinder")
	assert.False(t, ok)
}
