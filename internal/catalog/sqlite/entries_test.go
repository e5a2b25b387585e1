package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"ability-lst/internal/ability"
	"ability-lst/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()
	c, err := New(ctx, "sqlite://"+filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close(ctx) })
	require.NoError(t, c.EnsureSchema(ctx))
	return c
}

func TestUpsertLookup(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	pa := ability.New("Power Attack", ability.KindFeat, ability.DnD35e)
	pa.Subtypes = []string{"Combat"}
	pa.Stats[ability.STR] = 13
	pa.Description = "Trade attack for damage."
	cleave := ability.New("Cleave", ability.KindFeat, ability.DnD35e)
	cleave.RequiredFeats = []string{"Power Attack"}

	require.NoError(t, c.Upsert(ctx, []catalog.Entry{
		catalog.NewEntry(pa, ability.DnD35e, "core.lst"),
		catalog.NewEntry(cleave, ability.DnD35e, "core.lst"),
		catalog.NewEntry(pa, ability.Pathfinder1e, "pf.lst"),
	}))

	e, err := c.Lookup(ctx, ability.DnD35e, "power attack")
	require.NoError(t, err)
	assert.Equal(t, "Power Attack", e.Key)
	assert.Equal(t, ability.KindFeat, e.Kind)
	assert.Equal(t, "core.lst", e.Source)

	got, err := e.Ability()
	require.NoError(t, err)
	assert.Equal(t, 13, got.Stats[ability.STR])
	assert.Equal(t, []string{"Combat"}, got.Subtypes)

	n, err := c.Count(ctx, ability.DnD35e)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = c.Lookup(ctx, ability.DnD5e, "Power Attack")
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	pa.Description = "Changed."
	require.NoError(t, c.Upsert(ctx, []catalog.Entry{catalog.NewEntry(pa, ability.DnD35e, "house.lst")}))
	e, err = c.Lookup(ctx, ability.DnD35e, "Power Attack")
	require.NoError(t, err)
	assert.Equal(t, "house.lst", e.Source)
	assert.Contains(t, e.Line, "DESC:Changed.")
	n, err = c.Count(ctx, ability.DnD35e)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	var entries []catalog.Entry
	for _, name := range []string{"Power Attack", "Improved Bull Rush", "Power Critical", "Dodge"} {
		entries = append(entries, catalog.NewEntry(ability.New(name, ability.KindFeat, ability.Pathfinder1e), ability.Pathfinder1e, "x.lst"))
	}
	require.NoError(t, c.Upsert(ctx, entries))

	found, err := c.Search(ctx, ability.Pathfinder1e, "power", 0)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Power Attack", found[0].Name)
	assert.Equal(t, "Power Critical", found[1].Name)

	found, err = c.Search(ctx, ability.DnD35e, "power", 10)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestParseDSN(t *testing.T) {
	tests := []struct {
		in, want string
		err      bool
	}{
		{"sqlite://:memory:", ":memory:", false},
		{"sqlite:///var/lib/catalog.db", "/var/lib/catalog.db", false},
		{"sqlite://catalog.db", "./catalog.db", false},
		{"sqlite://my%20data/catalog.db?_pragma=foreign_keys(1)", "./my data/catalog.db?_pragma=foreign_keys(1)", false},
		{"postgres://localhost", "", true},
	}
	for _, tt := range tests {
		got, err := parseDSN(tt.in)
		if tt.err {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
