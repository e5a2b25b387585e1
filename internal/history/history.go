// Package history turns the edits made to ability files between two git
// revisions into MOD lines.
package history

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"ability-lst/internal/ability"
	"ability-lst/internal/mod"
	"ability-lst/internal/parser"
	"ability-lst/internal/render"

	"github.com/rs/zerolog/log"
)

// ChangeType says how an ability differs between revisions.
type ChangeType string

const (
	Modified ChangeType = "modified"
	Added    ChangeType = "added"
	Removed  ChangeType = "removed"
)

// Change is one ability that differs between revisions. Mod is set for
// modified abilities.
type Change struct {
	File string
	Key  string
	Type ChangeType
	Mod  string
}

// Compare matches abilities by key, ignoring case, and describes every
// difference. Abilities whose rendered lines are equal are unchanged.
func Compare(file string, base, target []*ability.Ability, rs ability.RuleSystem) ([]Change, error) {
	baseByKey := make(map[string]*ability.Ability, len(base))
	for _, a := range base {
		baseByKey[strings.ToLower(a.Key)] = a
	}

	var changes []Change
	matched := make(map[string]bool, len(target))
	for _, t := range target {
		k := strings.ToLower(t.Key)
		matched[k] = true
		b, ok := baseByKey[k]
		if !ok {
			changes = append(changes, Change{File: file, Key: t.Key, Type: Added})
			continue
		}
		if render.Render(b, rs) == render.Render(t, rs) {
			continue
		}
		edited := t.Clone()
		edited.Key = b.Key
		line, err := mod.Diff(b, edited, rs)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", file, t.Key, err)
		}
		changes = append(changes, Change{File: file, Key: b.Key, Type: Modified, Mod: line})
	}
	for _, b := range base {
		if !matched[strings.ToLower(b.Key)] {
			changes = append(changes, Change{File: file, Key: b.Key, Type: Removed})
		}
	}
	return changes, nil
}

// Ingestor reads ability files from a git repository.
type Ingestor struct {
	RepoRoot string
	System   ability.RuleSystem
}

func NewIngestor(repoRoot string, rs ability.RuleSystem) *Ingestor {
	return &Ingestor{RepoRoot: repoRoot, System: rs}
}

// Changes compares every .lst file under folder that differs between
// commitBase and commitTarget. Files that fail to parse are skipped.
func (in *Ingestor) Changes(ctx context.Context, commitBase, commitTarget, folder string) ([]Change, error) {
	files, err := in.changedFiles(ctx, commitBase, commitTarget, folder)
	if err != nil {
		return nil, fmt.Errorf("get changed files: %w", err)
	}

	log.Info().Int("files", len(files)).Msg("Found changed ability files")

	var all []Change
	for _, file := range files {
		changes, err := in.compareFile(ctx, commitBase, commitTarget, file)
		if err != nil {
			log.Warn().Err(err).Str("file", file).Msg("Failed to compare ability file")
			continue
		}
		all = append(all, changes...)
		log.Debug().Str("file", file).Int("changes", len(changes)).Msg("Compared ability file")
	}

	log.Info().Int("changes", len(all)).Msg("History comparison complete")
	return all, nil
}

func (in *Ingestor) compareFile(ctx context.Context, commitBase, commitTarget, file string) ([]Change, error) {
	base, err := in.document(ctx, commitBase, file)
	if err != nil {
		return nil, err
	}
	target, err := in.document(ctx, commitTarget, file)
	if err != nil {
		return nil, err
	}
	return Compare(file, base.Abilities, target.Abilities, in.System)
}

// document parses file as of rev. A file missing at rev is empty.
func (in *Ingestor) document(ctx context.Context, rev, file string) (*parser.Document, error) {
	cmd := exec.CommandContext(ctx, "git", "show", rev+":"+filepath.ToSlash(file))
	cmd.Dir = in.RepoRoot
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if strings.Contains(stderr.String(), "does not exist") || strings.Contains(stderr.String(), "exists on disk, but not in") {
			return &parser.Document{}, nil
		}
		return nil, fmt.Errorf("git show %s:%s: %w", rev, file, err)
	}

	doc, err := parser.ParseDocument(splitLines(output), in.System)
	if err != nil {
		return nil, fmt.Errorf("parse %s at %s: %w", file, rev, err)
	}
	return doc, nil
}

func (in *Ingestor) changedFiles(ctx context.Context, commitBase, commitTarget, folder string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", "diff", "--name-only", commitBase, commitTarget, "--", folder)
	cmd.Dir = in.RepoRoot

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff --name-only: %w", err)
	}
	return abilityFiles(output), nil
}

// abilityFiles picks the .lst paths out of git diff --name-only output.
func abilityFiles(output []byte) []string {
	var files []string
	for _, line := range splitLines(output) {
		line = strings.TrimSpace(line)
		if strings.EqualFold(filepath.Ext(line), ".lst") {
			files = append(files, line)
		}
	}
	return files
}

func splitLines(output []byte) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	return lines
}
