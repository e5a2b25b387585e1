package collection

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ability-lst/internal/ability"
	"ability-lst/internal/mod"
	"ability-lst/internal/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStorage map[string][]string

func (m memStorage) ReadAllLines(path string) ([]string, error) {
	lines, ok := m[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, fs.ErrNotExist)
	}
	return append([]string(nil), lines...), nil
}

func (m memStorage) WriteAllLines(path string, lines []string) error {
	m[path] = append([]string(nil), lines...)
	return nil
}

const classAbility = "Bonus Feat\tCATEGORY:Special Ability\tTYPE:ClassAbility\t\tDESC:Fighters get feats.\t"

var homebrew = []string{
	"# Generated by PCGen Ability LST File Generator (https://github.com/Tamdrik/PCGen-Ability-LST-File-Generator)",
	"SOURCELONG:Homebrew\tSOURCESHORT:Homebrew\tSOURCEWEB:None\t#\tSOURCEDATE:2024-03-01",
	"",
	"Power Attack\tCATEGORY:FEAT\tTYPE:Combat.General\tPRESTAT:1,STR=13\tDESC:Trade attack bonus for damage.",
	"Blessing\tCATEGORY:Special Ability\tTYPE:GM_Award.SpecialQuality\tCOST:0\tDESC:Blessed.",
	"",
	"# BEGIN OTHER ENTRIES (e.g., class abilities)",
	classAbility,
	"",
	"# BEGIN MODS",
	"CATEGORY=FEAT|Dodge.MOD\t\tTYPE:Teamwork",
}

func TestLoad(t *testing.T) {
	store := memStorage{"a.lst": homebrew}

	c, err := Load(context.Background(), store, "a.lst", ability.DnD35e)
	require.NoError(t, err)
	assert.Equal(t, homebrew[1], c.Header)
	require.Len(t, c.Abilities, 2)
	assert.Equal(t, ability.DnD35e, c.Abilities[0].RuleSystem)
	assert.Equal(t, []string{classAbility}, c.Other)
	assert.Equal(t, []string{"CATEGORY=FEAT|Dodge.MOD\t\tTYPE:Teamwork"}, c.Mods)
}

func TestLoadAbortsOnMalformedLine(t *testing.T) {
	lines := append(append([]string(nil), homebrew...), "Broken\tCATEGORY:FEAT\tPREVARGTEQ:TL,many")
	store := memStorage{"a.lst": lines}

	_, err := Load(context.Background(), store, "a.lst", ability.DnD35e)
	require.Error(t, err)
	assert.ErrorIs(t, err, ability.ErrMalformedField)
	assert.Contains(t, err.Error(), fmt.Sprintf("line %d", len(lines)))

	_, err = Load(context.Background(), store, "missing.lst", ability.DnD35e)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestSaveRoundTrip(t *testing.T) {
	store := memStorage{"a.lst": homebrew}
	ctx := context.Background()

	c, err := Load(ctx, store, "a.lst", ability.DnD35e)
	require.NoError(t, err)
	require.NoError(t, c.Save(ctx, store, "b.lst"))

	out := store["b.lst"]
	assert.Equal(t, generatedComment, out[0])
	assert.Equal(t, homebrew[1], out[1])
	assert.Equal(t, "", out[2])
	// unmodeled entries survive byte for byte
	assert.Contains(t, out, classAbility)
	assert.Equal(t, "CATEGORY=FEAT|Dodge.MOD\t\tTYPE:Teamwork", out[len(out)-1])
	assert.Equal(t, modsComment, out[len(out)-2])

	again, err := Load(ctx, store, "b.lst", ability.DnD35e)
	require.NoError(t, err)
	assert.Equal(t, c.Header, again.Header)
	assert.Equal(t, c.Other, again.Other)
	assert.Equal(t, c.Mods, again.Mods)
	require.Len(t, again.Abilities, len(c.Abilities))
	for i, a := range c.Sorted() {
		assert.Equal(t, a, again.Sorted()[i])
	}
}

func TestLinesOrderAndDefaultHeader(t *testing.T) {
	c := New(ability.Pathfinder1e)
	for _, a := range []*ability.Ability{
		ability.New("Zeal", ability.KindTrait, ability.Pathfinder1e),
		ability.New("Toughness", ability.KindFeat, ability.Pathfinder1e),
		ability.New("Alertness", ability.KindFeat, ability.Pathfinder1e),
		ability.New("Knighthood", ability.KindGMAward, ability.Pathfinder1e),
	} {
		require.NoError(t, c.Add(a, nil))
	}

	now := time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)
	lines := c.Lines(now)
	assert.Equal(t, "SOURCELONG:Homebrew\tSOURCESHORT:Homebrew\tSOURCEWEB:None\t#\tSOURCEDATE:2025-02-03", lines[1])

	var names []string
	for _, l := range lines[3:7] {
		names = append(names, parser.SplitFields(l)[0])
	}
	assert.Equal(t, []string{"Alertness", "Toughness", "Knighthood", "Zeal"}, names)
	assert.NotContains(t, lines, otherComment)
	assert.Equal(t, modsComment, lines[len(lines)-1])
}

func TestAddAndRemove(t *testing.T) {
	c := New(ability.DnD35e)
	first := ability.New("Dodge", ability.KindFeat, ability.DnD35e)
	require.NoError(t, c.Add(first, nil))

	dup := ability.New("dodge", ability.KindFeat, ability.DnD35e)
	dup.Description = "new"
	err := c.Add(dup, nil)
	assert.ErrorIs(t, err, ErrDuplicate)

	var seen *ability.Ability
	err = c.Add(dup, func(existing *ability.Ability) bool {
		seen = existing
		return false
	})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Same(t, first, seen)

	require.NoError(t, c.Add(dup, func(*ability.Ability) bool { return true }))
	require.Len(t, c.Abilities, 1)
	got, ok := c.Find("DODGE")
	require.True(t, ok)
	assert.Equal(t, "new", got.Description)

	require.NoError(t, c.Remove("Dodge"))
	assert.Empty(t, c.Abilities)
	assert.ErrorIs(t, c.Remove("Dodge"), ErrNotFound)
}

func TestAddMod(t *testing.T) {
	c := New(ability.DnD35e)
	base := ability.New("Dodge", ability.KindFeat, ability.DnD35e)
	edited := base.Clone()
	edited.Repeatable = true

	line, err := mod.Diff(base, edited, ability.DnD35e)
	require.NoError(t, err)
	replaced, err := c.AddMod(line)
	require.NoError(t, err)
	assert.False(t, replaced)

	edited.Stacks = true
	line, err = mod.Diff(base, edited, ability.DnD35e)
	require.NoError(t, err)
	replaced, err = c.AddMod(line)
	require.NoError(t, err)
	assert.True(t, replaced)
	assert.Equal(t, []string{line}, c.Mods)

	_, err = c.AddMod("garbage")
	assert.Error(t, err)
}

func TestSaveModsOnly(t *testing.T) {
	store := memStorage{"a.lst": homebrew}
	ctx := context.Background()
	c, err := Load(ctx, store, "a.lst", ability.DnD35e)
	require.NoError(t, err)

	require.NoError(t, c.SaveModsOnly(ctx, store, "mods.lst"))
	out := store["mods.lst"]
	assert.NotContains(t, out, classAbility)
	assert.True(t, strings.HasPrefix(out[1], "SOURCELONG:Homebrew"))
	assert.Equal(t, c.Mods[0], out[len(out)-1])
	assert.Len(t, out, 6)
}

func TestAppendMod(t *testing.T) {
	store := memStorage{"a.lst": homebrew}
	ctx := context.Background()
	line := "CATEGORY=FEAT|Cleave.MOD\t\tMULT:YES"

	require.NoError(t, AppendMod(ctx, store, "a.lst", line, ability.DnD35e))
	assert.Equal(t, line, store["a.lst"][len(store["a.lst"])-1])
	assert.Len(t, store["a.lst"], len(homebrew)+1)

	require.NoError(t, AppendMod(ctx, store, "new.lst", line, ability.DnD35e))
	c, err := Load(ctx, store, "new.lst", ability.DnD35e)
	require.NoError(t, err)
	assert.Empty(t, c.Abilities)
	assert.Equal(t, []string{line}, c.Mods)
}

func TestOverwriteGuard(t *testing.T) {
	store := memStorage{
		"home.lst": homebrew,
		"core.lst": {"# Core rules", "SOURCELONG:Core Rulebook\tSOURCESHORT:CR"},
		"mpc.lst":  {"SOURCELONG:MPC Homebrew Pack"},
	}
	for path, want := range map[string]bool{"home.lst": true, "core.lst": false, "mpc.lst": true, "none.lst": true} {
		ok, err := SafeToOverwrite(store, path)
		require.NoError(t, err)
		assert.Equal(t, want, ok, path)
	}

	assert.True(t, InDataDir("/opt/pcgen/data/homebrew/feats.lst"))
	assert.False(t, InDataDir("/home/me/feats.lst"))
	assert.Equal(t, "feats.lst", ManifestReference("/opt/pcgen/data/homebrew/feats.lst"))
}

func TestFileStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "homebrew", "abilities.lst")
	var s FileStorage

	require.NoError(t, s.WriteAllLines(path, homebrew))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(homebrew, "\n")+"\n", string(raw))

	lines, err := s.ReadAllLines(path)
	require.NoError(t, err)
	assert.Equal(t, homebrew, lines)

	_, err = s.ReadAllLines(filepath.Join(t.TempDir(), "nope.lst"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
