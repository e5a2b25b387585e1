package pcc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ability-lst/internal/ability"
	"ability-lst/internal/collection"
	"ability-lst/internal/vocab"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	sys, err := vocab.Default().System(ability.Pathfinder1e)
	require.NoError(t, err)

	lines := Generate("/data/homebrew/my homebrew.pcc", sys, "abilities.lst")
	assert.Equal(t, []string{
		"CAMPAIGN:My Homebrew",
		"GAMEMODE:Pathfinder",
		"TYPE:Homebrew.PathfinderHomebrew",
		"BOOKTYPE:Supplement",
		"PUBNAMELONG:Homebrew",
		"PUBNAMESHORT:Homebrew",
		"SOURCELONG:My Homebrew",
		"SOURCESHORT:Homebrew",
		"RANK:9",
		"DESC:Homebrew content generated by PCGen Homebrew Ability LST Generator",
		"",
		"ABILITY:abilities.lst",
	}, lines)

	m := Parse(lines)
	assert.Equal(t, "My Homebrew", m.Campaign)
	assert.Equal(t, "Pathfinder", m.GameMode)
	assert.Equal(t, []string{"abilities.lst"}, m.Abilities)
}

func TestEnsure(t *testing.T) {
	dir := t.TempDir()
	var storage collection.FileStorage
	v := vocab.Default()
	lst := filepath.Join(dir, "feats.lst")

	wrote, err := Ensure(storage, filepath.Join(dir, "homebrew"), lst, ability.DnD35e, v)
	require.NoError(t, err)
	assert.True(t, wrote)

	pccPath := filepath.Join(dir, "homebrew.pcc")
	lines, err := storage.ReadAllLines(pccPath)
	require.NoError(t, err)
	assert.Contains(t, lines, "GAMEMODE:35e")
	assert.True(t, HasReference(lines, "feats.lst"))

	wrote, err = Ensure(storage, pccPath, lst, ability.DnD35e, v)
	require.NoError(t, err)
	assert.False(t, wrote)

	wrote, err = Ensure(storage, pccPath, filepath.Join(dir, "traits.lst"), ability.DnD35e, v)
	require.NoError(t, err)
	assert.True(t, wrote)
	lines, err = storage.ReadAllLines(pccPath)
	require.NoError(t, err)
	assert.Equal(t, "ABILITY:traits.lst", lines[len(lines)-1])
	assert.Equal(t, 1, strings.Count(strings.Join(lines, "\n"), "ABILITY:feats.lst"))

	found, err := Find(dir)
	require.NoError(t, err)
	assert.Equal(t, pccPath, found)
	none, err := Find(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestResolve(t *testing.T) {
	pccPath := filepath.Join("/pcgen", "data", "homebrew", "homebrew.pcc")
	data := filepath.Join("/pcgen", "data")

	assert.Equal(t, filepath.Join("/pcgen", "data", "homebrew", "feats.lst"), Resolve("feats.lst", pccPath, data))
	assert.Equal(t, filepath.Join("/pcgen", "data", "pathfinder", "core", "abilities.lst"), Resolve("@/pathfinder/core/abilities.lst", pccPath, data))
	assert.Equal(t, filepath.Join("/pcgen", "data", "x.lst"), Resolve("*/x.lst", pccPath, data))
}

func TestParser(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "core.pcc")
	content := "CAMPAIGN:Core\nGAMEMODE:35e\nABILITY:feats.lst|(INCLUDE:Dodge)\nABILITY:@/srd/traits.lst\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p := NewParser(dir, vocab.Default())
	assert.True(t, p.CanParse(".pcc"))
	assert.False(t, p.CanParse(".lst"))

	res, err := p.Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "pcc", res.FileType)
	assert.Equal(t, ability.DnD35e, res.RuleSystem)
	assert.Equal(t, []string{
		filepath.Join(dir, "feats.lst"),
		filepath.Join(dir, "srd", "traits.lst"),
	}, res.References)

	other := filepath.Join(dir, "sf.pcc")
	require.NoError(t, os.WriteFile(other, []byte("GAMEMODE:Starfinder\n"), 0o644))
	_, err = p.Parse(other)
	assert.ErrorIs(t, err, ability.ErrUnsupported)
}
