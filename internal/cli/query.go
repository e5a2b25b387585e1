package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ability-lst/internal/graph"
	"ability-lst/internal/similar"
	"ability-lst/internal/textutil"

	"github.com/spf13/cobra"
)

func graphCmd(a *app) *cobra.Command {
	var (
		depth      int
		dependents bool
	)
	cmd := &cobra.Command{
		Use:   "graph <key>",
		Short: "Show the feats an ability requires, directly or through other feats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, a, args[0], depth, dependents)
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 5, "Maximum prerequisite chain length")
	cmd.Flags().BoolVar(&dependents, "dependents", false, "List the abilities that require the key instead")
	return cmd
}

func runGraph(cmd *cobra.Command, a *app, key string, depth int, dependents bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	driver, err := connectNeo4j(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer driver.Close(ctx)

	gq := graph.NewGraphQuerier(driver)
	out := cmd.OutOrStdout()

	if dependents {
		keys, err := gq.Dependents(ctx, a.system, key)
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Fprintln(out, k)
		}
		return nil
	}

	prereqs, err := gq.Prerequisites(ctx, a.system, key, depth)
	if err != nil {
		return err
	}
	if len(prereqs) == 0 {
		fmt.Fprintf(out, "%s requires no feats.\n", key)
		return nil
	}
	for _, p := range prereqs {
		line := strings.Repeat("  ", max(p.Depth-1, 0)) + p.Key
		if !p.Defined {
			line += " (not indexed)"
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func similarCmd(a *app) *cobra.Command {
	var topK int
	cmd := &cobra.Command{
		Use:   "similar <description>",
		Short: "Find indexed abilities whose descriptions resemble the text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimilar(cmd, a, args[0], topK)
		},
	}
	cmd.Flags().IntVar(&topK, "top", 5, "Number of matches")
	return cmd
}

func runSimilar(cmd *cobra.Command, a *app, text string, topK int) error {
	ctx, cancel := setupContext()
	defer cancel()

	ix, closeIndex, err := openSimilarIndex(ctx, a)
	if err != nil {
		return err
	}
	defer closeIndex()

	matches, err := ix.Similar(ctx, a.system, text, topK)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, m := range matches {
		fmt.Fprintf(out, "%.3f  %s (%s)  %s\n", m.Score, m.Name, m.Source, textutil.Truncate(m.Text, 60))
	}
	return nil
}

// openSimilarIndex connects the embedding client and the pgvector store.
func openSimilarIndex(ctx context.Context, a *app) (*similar.Index, func(), error) {
	if a.cfg.EmbeddingAPIKey == "" {
		return nil, nil, errors.New("similarity search needs EMBEDDING_API_KEY")
	}

	pool, err := connectPostgres(ctx, a.cfg)
	if err != nil {
		return nil, nil, err
	}
	store := similar.NewVectorStore(pool, a.cfg.EmbeddingDimensions)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ensure vector schema: %w", err)
	}

	client := similar.NewEmbeddingClient(a.cfg.EmbeddingAPIKey, a.cfg.EmbeddingModel, a.cfg.EmbeddingBaseURL, a.cfg.EmbeddingDimensions)
	return similar.NewIndex(client, store, a.cfg.BatchSize), pool.Close, nil
}
