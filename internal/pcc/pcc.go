// Package pcc reads and writes the .pcc manifests PCGen uses to load a
// source's .lst files.
package pcc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"ability-lst/internal/ability"
	"ability-lst/internal/collection"
	"ability-lst/internal/textutil"
	"ability-lst/internal/vocab"

	"github.com/rs/zerolog/log"
)

const (
	tagAbility  = "ABILITY:"
	tagCampaign = "CAMPAIGN:"
	tagGameMode = "GAMEMODE:"
	tagType     = "TYPE:"
	extension   = ".pcc"
)

// Manifest is the part of a .pcc file this tool reads.
type Manifest struct {
	Campaign string
	GameMode string
	// Abilities are the ABILITY: references as written, without options.
	Abilities []string
}

// Parse reads the manifest tags from lines.
func Parse(lines []string) *Manifest {
	m := &Manifest{}
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, tagCampaign):
			m.Campaign = strings.TrimPrefix(line, tagCampaign)
		case strings.HasPrefix(line, tagGameMode):
			m.GameMode = strings.TrimPrefix(line, tagGameMode)
		case strings.HasPrefix(line, tagAbility):
			ref, _, _ := strings.Cut(strings.TrimPrefix(line, tagAbility), "|")
			if ref = strings.TrimSpace(ref); ref != "" {
				m.Abilities = append(m.Abilities, ref)
			}
		}
	}
	return m
}

// Resolve turns an ABILITY: reference into a file path. "@/" and "*/" are
// relative to the data directory; other references are relative to the
// manifest.
func Resolve(ref, pccPath, dataDir string) string {
	for _, prefix := range []string{"@/", "*/"} {
		if rest, ok := strings.CutPrefix(ref, prefix); ok && dataDir != "" {
			return filepath.Join(dataDir, filepath.FromSlash(rest))
		}
	}
	return filepath.Join(filepath.Dir(pccPath), filepath.FromSlash(ref))
}

// Name is the campaign name derived from a manifest path: the file name up to
// its first dot, title cased.
func Name(pccPath string) string {
	base, _, _ := strings.Cut(filepath.Base(pccPath), ".")
	return textutil.TitleCase(base)
}

// Generate builds a new manifest that loads lstRef for the given system.
func Generate(pccPath string, sys *vocab.System, lstRef string) []string {
	name := Name(pccPath)
	return []string{
		tagCampaign + name,
		tagGameMode + sys.GameMode,
		tagType + sys.PCCType,
		"BOOKTYPE:Supplement",
		"PUBNAMELONG:Homebrew",
		"PUBNAMESHORT:Homebrew",
		"SOURCELONG:" + name,
		"SOURCESHORT:Homebrew",
		"RANK:9",
		"DESC:Homebrew content generated by PCGen Homebrew Ability LST Generator",
		"",
		tagAbility + lstRef,
	}
}

// HasReference reports whether an ABILITY: line mentions lstRef.
func HasReference(lines []string, lstRef string) bool {
	return slices.ContainsFunc(lines, func(l string) bool {
		return strings.HasPrefix(l, tagAbility) && strings.Contains(l, lstRef)
	})
}

// Find returns the first .pcc file in dir, or "" when there is none.
func Find(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read directory: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), extension) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", nil
}

// Ensure makes the manifest at pccPath load the ability file at lstPath. A
// missing manifest is generated; an existing one gets an ABILITY: line when
// it lacks one. It reports whether anything was written.
func Ensure(storage collection.Storage, pccPath, lstPath string, rs ability.RuleSystem, v *vocab.Vocabulary) (bool, error) {
	if !strings.HasSuffix(pccPath, extension) {
		pccPath = strings.TrimSpace(pccPath) + extension
	}
	ref := collection.ManifestReference(lstPath)

	lines, err := storage.ReadAllLines(pccPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("read manifest: %w", err)
	}
	if err != nil {
		sys, err := v.System(rs)
		if err != nil {
			return false, err
		}
		if err := storage.WriteAllLines(pccPath, Generate(pccPath, sys, ref)); err != nil {
			return false, fmt.Errorf("write manifest: %w", err)
		}
		log.Info().Str("manifest", pccPath).Str("ability_file", ref).Msg("Generated manifest")
		return true, nil
	}

	if HasReference(lines, ref) {
		return false, nil
	}
	if err := storage.WriteAllLines(pccPath, append(lines, tagAbility+ref)); err != nil {
		return false, fmt.Errorf("update manifest: %w", err)
	}
	log.Info().Str("manifest", pccPath).Str("ability_file", ref).Msg("Added ability file to manifest")
	return true, nil
}
