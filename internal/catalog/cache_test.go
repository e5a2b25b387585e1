package catalog

import (
	"context"
	"testing"

	"ability-lst/internal/ability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	Store
	entries map[string]Entry
	lookups int
}

func (s *countingStore) Lookup(_ context.Context, rs ability.RuleSystem, key string) (*Entry, error) {
	s.lookups++
	e, ok := s.entries[cacheKey(rs, key)]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (s *countingStore) Upsert(_ context.Context, entries []Entry) error {
	for _, e := range entries {
		s.entries[cacheKey(e.System, e.Key)] = e
	}
	return nil
}

func TestCachedLookup(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{entries: map[string]Entry{}}
	c := NewCached(store)

	dodge := ability.New("Dodge", ability.KindFeat, ability.DnD35e)
	require.NoError(t, c.Upsert(ctx, []Entry{NewEntry(dodge, ability.DnD35e, "core.lst")}))

	for range 3 {
		e, err := c.Lookup(ctx, ability.DnD35e, "DODGE")
		require.NoError(t, err)
		assert.Equal(t, "Dodge", e.Name)
	}
	assert.Equal(t, 1, store.lookups)

	dodge.Description = "new"
	require.NoError(t, c.Upsert(ctx, []Entry{NewEntry(dodge, ability.DnD35e, "house.lst")}))
	e, err := c.Lookup(ctx, ability.DnD35e, "dodge")
	require.NoError(t, err)
	assert.Equal(t, "house.lst", e.Source)
	assert.Equal(t, 1, store.lookups)

	_, err = c.Lookup(ctx, ability.DnD35e, "Cleave")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntryAbility(t *testing.T) {
	trait := ability.New("Elven Reflexes", ability.KindTrait, ability.Pathfinder1e)
	trait.Subtypes = []string{"Race"}
	trait.RequiredRace = "Elf"
	trait.Description = "+2 initiative."

	e := NewEntry(trait, ability.Pathfinder1e, "traits.lst")
	assert.Len(t, e.Hash, 64)
	got, err := e.Ability()
	require.NoError(t, err)
	assert.Equal(t, "Elf", got.RequiredRace)
	assert.Equal(t, ability.KindTrait, got.Kind)

	bad := Entry{Key: "x", Line: "Bonus Feat\tCATEGORY:Special Ability\tTYPE:ClassAbility"}
	_, err = bad.Ability()
	assert.ErrorIs(t, err, ability.ErrMalformedField)
}
