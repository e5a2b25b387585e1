package ability

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSame(t *testing.T) {
	tests := []struct {
		name  string
		a, b  *Ability
		equal bool
	}{
		{"same name different case", &Ability{Name: "Power Attack", Key: "PA"}, &Ability{Name: "power attack", Key: "other"}, true},
		{"same key", &Ability{Name: "One", Key: "K"}, &Ability{Name: "Two", Key: "k"}, true},
		{"unrelated", &Ability{Name: "One", Key: "One"}, &Ability{Name: "Two", Key: "Two"}, false},
		{"nil", &Ability{Name: "One"}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Same(tt.b))
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	a := New("Cleave", KindFeat, DnD35e)
	a.Subtypes = []string{"Combat"}
	a.ExtraFields = []string{"BENEFIT:x"}

	c := a.Clone()
	c.Subtypes[0] = "General"
	c.ExtraFields = append(c.ExtraFields, "COST:1")

	assert.Equal(t, []string{"Combat"}, a.Subtypes)
	assert.Equal(t, []string{"BENEFIT:x"}, a.ExtraFields)
}

func TestHasRace(t *testing.T) {
	a := New("x", KindFeat, Pathfinder1e)
	assert.False(t, a.HasRace())
	a.RequiredRace = ""
	assert.False(t, a.HasRace())
	a.RequiredRace = "Elf"
	assert.True(t, a.HasRace())
}

func TestValidate(t *testing.T) {
	trait := New("Reactionary", KindTrait, Pathfinder1e)
	trait.Description = "You were bullied often."

	err := trait.Validate(Pathfinder1e)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncomplete))

	trait.Subtypes = []string{"Combat"}
	require.NoError(t, trait.Validate(Pathfinder1e))

	err = trait.Validate(DnD5e)
	assert.True(t, errors.Is(err, ErrUnsupported))

	feat := New("Toughness", KindFeat, DnD35e)
	assert.ErrorIs(t, feat.Validate(DnD35e), ErrIncomplete)
	feat.Description = "+3 hit points."
	feat.Stats[CON] = -1
	assert.ErrorIs(t, feat.Validate(DnD35e), ErrMalformedField)
}

func TestParseRuleSystem(t *testing.T) {
	for in, want := range map[string]RuleSystem{
		"Pathfinder 1e": Pathfinder1e,
		"pf1e":          Pathfinder1e,
		"D&D 3.5e":      DnD35e,
		"35e":           DnD35e,
		"5e":            DnD5e,
	} {
		got, err := ParseRuleSystem(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseRuleSystem("gurps")
	assert.Error(t, err)
}

func TestAlignmentSet(t *testing.T) {
	evil := NewAlignmentSet(LE, NE, CE)
	assert.Equal(t, 3, evil.Len())
	assert.Equal(t, "LE,NE,CE", evil.String())
	assert.True(t, evil.Has(NE))
	assert.False(t, evil.Has(LG))
	assert.Equal(t, evil, evil.Effective())

	assert.Equal(t, AlignmentSet(0), AllAlignments.Effective())
	assert.Equal(t, 9, AllAlignments.Len())
	assert.Equal(t, "LE,CE", evil.Without(NE).String())

	al, err := ParseAlignment("cn")
	require.NoError(t, err)
	assert.Equal(t, CN, al)
	_, err = ParseAlignment("XX")
	assert.Error(t, err)
}

func TestParseStat(t *testing.T) {
	s, ok := ParseStat("dex")
	require.True(t, ok)
	assert.Equal(t, DEX, s)
	_, ok = ParseStat("LUCK")
	assert.False(t, ok)
}
