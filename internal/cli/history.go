package cli

import (
	"fmt"

	"ability-lst/internal/history"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func historyCmd(a *app) *cobra.Command {
	var (
		repo, into string
		force      bool
	)
	cmd := &cobra.Command{
		Use:   "history <commit_base> <commit_target> [folder]",
		Short: "Write MOD lines for abilities changed between two git revisions",
		Long: `Compares every ability file under folder that changed between the two
commits and prints the added, removed and modified abilities. Modified
abilities come with the MOD line that turns the old version into the new
one; --into stores those lines in an ability file.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := ""
			if len(args) == 3 {
				folder = args[2]
			}
			return runHistory(cmd, a, repo, args[0], args[1], folder, into, force)
		},
	}
	cmd.Flags().StringVar(&repo, "repo", ".", "Git repository root")
	cmd.Flags().StringVar(&into, "into", "", "Ability file to store the MOD lines in")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite files that do not look homebrew-generated")
	return cmd
}

// runHistory handles the `history` command.
func runHistory(cmd *cobra.Command, a *app, repo, commitBase, commitTarget, folder, into string, force bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	log.Info().
		Str("base", commitBase).
		Str("target", commitTarget).
		Str("folder", folder).
		Msg("Comparing revisions")

	changes, err := history.NewIngestor(repo, a.system).Changes(ctx, commitBase, commitTarget, folder)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var mods []string
	for _, ch := range changes {
		fmt.Fprintf(out, "%-8s %s: %s\n", ch.Type, ch.File, ch.Key)
		if ch.Mod != "" {
			fmt.Fprintln(out, ch.Mod)
			mods = append(mods, ch.Mod)
		}
	}
	if into == "" || len(mods) == 0 {
		return nil
	}

	c, err := a.loadOrNew(ctx, into)
	if err != nil {
		return err
	}
	for _, m := range mods {
		if _, err := c.AddMod(m); err != nil {
			return err
		}
	}
	return a.save(ctx, c, into, force, false)
}
