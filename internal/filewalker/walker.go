package filewalker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ability-lst/internal/ability"
	"ability-lst/internal/parser"
	"ability-lst/internal/pcc"
	"ability-lst/internal/vocab"
	"ability-lst/internal/worker"

	"github.com/rs/zerolog/log"
)

// Walker finds the ability files a PCGen data directory loads.
type Walker struct {
	dataDir   string
	manifests parser.Parser
}

// NewWalker creates a Walker for the data directory dataDir.
func NewWalker(dataDir string, v *vocab.Vocabulary) *Walker {
	return &Walker{
		dataDir:   dataDir,
		manifests: pcc.NewParser(dataDir, v),
	}
}

// FileEntry represents a discovered file ready for processing.
type FileEntry struct {
	Path   string
	Ext    string
	System ability.RuleSystem
	// Manifest is the .pcc file that loads an ability file.
	Manifest string
	Parser   parser.Parser
}

// Walk discovers every .pcc manifest under root.
func (w *Walker) Walk(root string) ([]FileEntry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var entries []FileEntry

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".pcc" && w.manifests.CanParse(ext) {
			entries = append(entries, FileEntry{Path: path, Ext: ext, Parser: w.manifests})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	log.Info().Int("count", len(entries)).Str("root", root).Msg("Discovered manifests")
	return entries, nil
}

// AbilityFiles walks root and returns the ability files its manifests load,
// each paired with the manifest's rule system. Manifests for unknown game
// modes and references to missing files are skipped.
func (w *Walker) AbilityFiles(root string) ([]FileEntry, error) {
	manifests, err := w.Walk(root)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var entries []FileEntry
	for _, m := range manifests {
		res, err := w.ParseFile(m)
		if errors.Is(err, ability.ErrUnsupported) {
			log.Debug().Err(err).Msg("Skipping manifest")
			continue
		}
		if err != nil {
			log.Warn().Err(err).Str("manifest", m.Path).Msg("Failed to read manifest")
			continue
		}
		for _, ref := range res.References {
			if seen[ref] {
				continue
			}
			seen[ref] = true
			if _, err := os.Stat(ref); err != nil {
				log.Warn().Str("manifest", m.Path).Str("file", ref).Msg("Referenced ability file not found")
				continue
			}
			entries = append(entries, FileEntry{
				Path:     ref,
				Ext:      ".lst",
				System:   res.RuleSystem,
				Manifest: m.Path,
				Parser:   parser.NewLSTParser(res.RuleSystem),
			})
		}
	}

	log.Info().Int("count", len(entries)).Int("manifests", len(manifests)).Msg("Discovered ability files")
	return entries, nil
}

// ParseFile parses a single file using the appropriate parser.
func (w *Walker) ParseFile(entry FileEntry) (*parser.ParseResult, error) {
	return entry.Parser.Parse(entry.Path)
}

// ParseAll parses entries concurrently and returns the results in order.
func (w *Walker) ParseAll(ctx context.Context, entries []FileEntry, workers int) []worker.Task[FileEntry, *parser.ParseResult] {
	pool := worker.NewPool(workers, func(_ context.Context, e FileEntry) (*parser.ParseResult, error) {
		return w.ParseFile(e)
	})
	return pool.Execute(ctx, entries)
}
