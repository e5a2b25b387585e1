package cli

import (
	"errors"
	"fmt"

	"ability-lst/internal/catalog"
	"ability-lst/internal/config"
	"ability-lst/internal/filewalker"
	"ability-lst/internal/graph"
	"ability-lst/internal/similar"
	"ability-lst/internal/worker"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func indexCmd(a *app) *cobra.Command {
	var withGraph, withEmbeddings bool
	cmd := &cobra.Command{
		Use:   "index [data-dir]",
		Short: "Catalog every ability a PCGen data directory loads",
		Long: `Walks the .pcc manifests under the data directory, parses the ability files
they load and stores the abilities in the catalog, where "mod" and "lookup"
find them. --graph also writes the feat prerequisite graph to Neo4j and
--embed stores description embeddings for "similar".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.dataDir
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				return fmt.Errorf("no data directory: pass one or set %s", config.KeyDataDir)
			}
			return runIndex(cmd, a, dir, withGraph, withEmbeddings)
		},
	}
	cmd.Flags().BoolVar(&withGraph, "graph", false, "Also build the prerequisite graph")
	cmd.Flags().BoolVar(&withEmbeddings, "embed", false, "Also embed descriptions for similarity search")
	return cmd
}

// runIndex handles the `index` command.
func runIndex(cmd *cobra.Command, a *app, dataDir string, withGraph, withEmbeddings bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	w := filewalker.NewWalker(dataDir, a.vocab)
	files, err := w.AbilityFiles(dataDir)
	if err != nil {
		return fmt.Errorf("walk data directory: %w", err)
	}

	log.Info().Int("files", len(files)).Msg("Starting ability indexing")

	tasks := w.ParseAll(ctx, files, a.cfg.WorkerCount)
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, t := range worker.Failed(tasks) {
		log.Error().Err(t.Err).Str("file", t.Input.Path).Msg("Parse failed")
	}

	var (
		entries []catalog.Entry
		nodes   []graph.Node
		edges   []graph.Edge
		records []similar.Record
		parsed  int
	)
	for _, t := range tasks {
		if t.Err != nil || t.Result == nil || t.Result.Document == nil {
			continue
		}
		parsed++
		rs, abilities := t.Input.System, t.Result.Document.Abilities
		for _, ab := range abilities {
			entries = append(entries, catalog.NewEntry(ab, rs, t.Input.Path))
		}
		if withGraph {
			n, e := graph.NodesAndEdges(abilities, rs, t.Input.Path)
			nodes = append(nodes, n...)
			edges = append(edges, e...)
		}
		if withEmbeddings {
			records = append(records, similar.Records(abilities, rs, t.Input.Path)...)
		}
	}

	cat, err := openCatalog(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer cat.Close(ctx)

	if err := cat.Upsert(ctx, entries); err != nil {
		return fmt.Errorf("store catalog entries: %w", err)
	}

	if withGraph {
		driver, err := connectNeo4j(ctx, a.cfg)
		if err != nil {
			return err
		}
		defer driver.Close(ctx)

		gb := graph.NewGraphBuilder(driver)
		if err := gb.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure graph schema: %w", err)
		}
		if err := gb.AddAbilities(ctx, nodes, edges); err != nil {
			return fmt.Errorf("build prerequisite graph: %w", err)
		}
	}

	embedded := 0
	if withEmbeddings {
		ix, closeIndex, err := openSimilarIndex(ctx, a)
		if err != nil {
			return err
		}
		defer closeIndex()

		if embedded, err = ix.Add(ctx, records); err != nil {
			return fmt.Errorf("embed descriptions: %w", err)
		}
	}

	log.Info().
		Int("files", parsed).
		Int("abilities", len(entries)).
		Int("prerequisites", len(edges)).
		Int("embeddings", embedded).
		Msg("Indexing complete")

	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d abilities from %d files\n", len(entries), parsed)
	return nil
}

func lookupCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "lookup <key-or-name>",
		Short: "Find indexed abilities by key, or by name when no key matches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, a, args[0], limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of name matches")
	return cmd
}

func runLookup(cmd *cobra.Command, a *app, query string, limit int) error {
	ctx, cancel := setupContext()
	defer cancel()

	cat, err := openCatalog(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer cat.Close(ctx)

	out := cmd.OutOrStdout()
	e, err := cat.Lookup(ctx, a.system, query)
	if err == nil {
		fmt.Fprintf(out, "# %s\n%s\n", e.Source, e.Line)
		return nil
	}
	if !errors.Is(err, catalog.ErrNotFound) {
		return err
	}

	matches, err := cat.Search(ctx, a.system, query, limit)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		total, err := cat.Count(ctx, a.system)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "No matches found among %d %s abilities.\n", total, a.system.Slug())
		return nil
	}
	for _, m := range matches {
		fmt.Fprintf(out, "%-8s %s (%s)\n", m.Kind, m.Key, m.Source)
	}
	return nil
}
