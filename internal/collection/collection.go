// Package collection holds the abilities, MOD lines and other entries of one
// ability .lst file and reads and writes them through a Storage.
package collection

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"ability-lst/internal/ability"
	"ability-lst/internal/mod"
	"ability-lst/internal/parser"
	"ability-lst/internal/render"

	"github.com/rs/zerolog/log"
)

var (
	ErrDuplicate = errors.New("ability already exists")
	ErrNotFound  = errors.New("ability not found")
)

const (
	generatedComment = "# Generated by PCGen Ability LST File Generator (https://github.com/Tamdrik/PCGen-Ability-LST-File-Generator)"
	otherComment     = "# BEGIN OTHER ENTRIES (e.g., class abilities)"
	modsComment      = "# BEGIN MODS"
)

// Collection is the content of one ability file for one rule system.
type Collection struct {
	System ability.RuleSystem
	// Header is the SOURCELONG line read from the file. Save writes a default
	// header when it is empty.
	Header    string
	Abilities []*ability.Ability
	Mods      []string
	Other     []string
}

// New returns an empty collection.
func New(rs ability.RuleSystem) *Collection {
	return &Collection{System: rs}
}

// DefaultHeader is the header written for files without one.
func DefaultHeader(now time.Time) string {
	return "SOURCELONG:Homebrew\tSOURCESHORT:Homebrew\tSOURCEWEB:None\t#\tSOURCEDATE:" + now.Format(time.DateOnly)
}

// Load reads the ability file at path. A malformed field anywhere in the file
// fails the whole load; the error names the line.
func Load(ctx context.Context, storage Storage, path string, rs ability.RuleSystem) (*Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lines, err := storage.ReadAllLines(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := parser.ParseDocument(lines, rs)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	for _, a := range doc.Abilities {
		a.RuleSystem = rs
	}

	log.Debug().
		Str("file", path).
		Int("abilities", len(doc.Abilities)).
		Int("mods", len(doc.Mods)).
		Int("other", len(doc.Other)).
		Msg("Loaded ability file")

	return &Collection{
		System:    rs,
		Header:    doc.Header,
		Abilities: doc.Abilities,
		Mods:      doc.Mods,
		Other:     doc.Other,
	}, nil
}

// Lines renders the collection as file lines.
func (c *Collection) Lines(now time.Time) []string {
	header := c.Header
	if header == "" {
		header = DefaultHeader(now)
	}
	lines := []string{generatedComment, header, ""}
	for _, a := range c.Sorted() {
		lines = append(lines, render.Render(a, c.System))
	}
	if len(c.Other) > 0 {
		lines = append(lines, "", otherComment)
		lines = append(lines, c.Other...)
	}
	lines = append(lines, "", modsComment)
	lines = append(lines, c.Mods...)
	return lines
}

// Save writes the whole collection to path.
func (c *Collection) Save(ctx context.Context, storage Storage, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := storage.WriteAllLines(path, c.Lines(time.Now())); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	log.Info().Str("file", path).Int("abilities", len(c.Abilities)).Int("mods", len(c.Mods)).Msg("Saved ability file")
	return nil
}

// SaveModsOnly writes a file holding only the collection's MOD lines under a
// default header.
func (c *Collection) SaveModsOnly(ctx context.Context, storage Storage, path string) error {
	mods := &Collection{System: c.System, Mods: c.Mods}
	return mods.Save(ctx, storage, path)
}

// Sorted returns the abilities ordered by kind, then key.
func (c *Collection) Sorted() []*ability.Ability {
	sorted := slices.Clone(c.Abilities)
	slices.SortStableFunc(sorted, func(a, b *ability.Ability) int {
		return cmp.Or(
			cmp.Compare(a.Kind.String(), b.Kind.String()),
			cmp.Compare(a.Key, b.Key),
		)
	})
	return sorted
}

// Find returns the ability whose key or name matches, ignoring case.
func (c *Collection) Find(key string) (*ability.Ability, bool) {
	i := c.index(key)
	if i < 0 {
		return nil, false
	}
	return c.Abilities[i], true
}

func (c *Collection) index(key string) int {
	return slices.IndexFunc(c.Abilities, func(a *ability.Ability) bool {
		return strings.EqualFold(a.Key, key) || strings.EqualFold(a.Name, key)
	})
}

// Add inserts a. When an ability with the same name or key exists, overwrite
// decides whether a replaces it; a nil overwrite never replaces.
func (c *Collection) Add(a *ability.Ability, overwrite func(existing *ability.Ability) bool) error {
	i := slices.IndexFunc(c.Abilities, a.Same)
	if i < 0 {
		c.Abilities = append(c.Abilities, a)
		return nil
	}
	if overwrite == nil || !overwrite(c.Abilities[i]) {
		return fmt.Errorf("add %q: %w", a.Name, ErrDuplicate)
	}
	c.Abilities[i] = a
	return nil
}

// Remove deletes the ability with the given key or name.
func (c *Collection) Remove(key string) error {
	i := c.index(key)
	if i < 0 {
		return fmt.Errorf("remove %q: %w", key, ErrNotFound)
	}
	c.Abilities = slices.Delete(c.Abilities, i, i+1)
	return nil
}

// AddMod stores a MOD line, replacing an earlier MOD of the same key. It
// reports whether a line was replaced.
func (c *Collection) AddMod(line string) (bool, error) {
	key, err := mod.ExtractKey(line)
	if err != nil {
		return false, err
	}
	for i, existing := range c.Mods {
		if k, err := mod.ExtractKey(existing); err == nil && k == key {
			c.Mods[i] = line
			return true, nil
		}
	}
	c.Mods = append(c.Mods, line)
	return false, nil
}

// AppendMod adds one MOD line to the end of the file at path, creating a
// MOD-only file when none exists.
func AppendMod(ctx context.Context, storage Storage, path, line string, rs ability.RuleSystem) error {
	lines, err := storage.ReadAllLines(path)
	if errors.Is(err, fs.ErrNotExist) {
		c := New(rs)
		c.Mods = []string{line}
		return c.Save(ctx, storage, path)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := storage.WriteAllLines(path, append(lines, line)); err != nil {
		return fmt.Errorf("append mod to %s: %w", path, err)
	}
	log.Info().Str("file", path).Msg("Appended MOD")
	return nil
}

// HeaderOf returns the first line that is not a comment.
func HeaderOf(lines []string) string {
	for _, l := range lines {
		if !strings.HasPrefix(l, ability.CommentPrefix) {
			return l
		}
	}
	return ""
}

// LooksGenerated reports whether a header belongs to a homebrew file.
func LooksGenerated(header string) bool {
	h := strings.ToUpper(header)
	return strings.Contains(h, "HOMEBREW") || strings.Contains(h, "MPC")
}

// SafeToOverwrite reports whether path is missing or holds a homebrew file.
func SafeToOverwrite(storage Storage, path string) (bool, error) {
	lines, err := storage.ReadAllLines(path)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	return LooksGenerated(HeaderOf(lines)), nil
}

// InDataDir reports whether path lies under a PCGen data folder, the only
// place PCGen looks for sources.
func InDataDir(path string) bool {
	return strings.Contains(filepath.ToSlash(filepath.Dir(path)), "/data")
}

// ManifestReference is the name a .pcc manifest uses to load the file.
func ManifestReference(path string) string {
	return filepath.Base(path)
}
