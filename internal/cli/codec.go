package cli

import (
	"fmt"
	"strings"

	"ability-lst/internal/ability"
	"ability-lst/internal/collection"
	"ability-lst/internal/mod"
	"ability-lst/internal/render"

	"github.com/spf13/cobra"
)

func parseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file.lst>",
		Short: "List the abilities, MOD lines and other entries of an ability file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, a, args[0])
		},
	}
}

func runParse(cmd *cobra.Command, a *app, path string) error {
	ctx, cancel := setupContext()
	defer cancel()

	c, err := a.load(ctx, path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, ab := range c.Sorted() {
		fmt.Fprintf(out, "%-8s %s", ab.Kind, ab.Key)
		if ab.Name != ab.Key {
			fmt.Fprintf(out, " (%s)", ab.Name)
		}
		if len(ab.Subtypes) > 0 {
			fmt.Fprintf(out, " [%s]", strings.Join(ab.Subtypes, ", "))
		}
		fmt.Fprintln(out)
	}
	for _, m := range c.Mods {
		if key, err := mod.ExtractKey(m); err == nil {
			fmt.Fprintf(out, "MOD      %s\n", key)
		}
	}
	fmt.Fprintf(out, "%d abilities, %d mods, %d other entries\n", len(c.Abilities), len(c.Mods), len(c.Other))
	return nil
}

func renderCmd(a *app) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "render <file.lst> [key...]",
		Short: "Print abilities as .lst lines, optionally for another rule system",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, a, args[0], args[1:], target)
		},
	}
	cmd.Flags().StringVar(&target, "as", "", "Rule system to render for (default: --system)")
	return cmd
}

func runRender(cmd *cobra.Command, a *app, path string, keys []string, target string) error {
	ctx, cancel := setupContext()
	defer cancel()

	rs := a.system
	if target != "" {
		var err error
		if rs, err = ability.ParseRuleSystem(target); err != nil {
			return err
		}
	}

	c, err := a.load(ctx, path)
	if err != nil {
		return err
	}

	abilities := c.Sorted()
	if len(keys) > 0 {
		abilities = abilities[:0:0]
		for _, k := range keys {
			ab, ok := c.Find(k)
			if !ok {
				return fmt.Errorf("%s: %q: %w", path, k, collection.ErrNotFound)
			}
			abilities = append(abilities, ab)
		}
	}

	out := cmd.OutOrStdout()
	for _, ab := range abilities {
		fmt.Fprintln(out, render.Render(ab, rs))
	}
	return nil
}

func normalizeCmd(a *app) *cobra.Command {
	var force, modsOnly bool
	cmd := &cobra.Command{
		Use:   "normalize <file.lst> [out.lst]",
		Short: "Rewrite an ability file in column layout with abilities sorted",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := args[0]
			if len(args) == 2 {
				out = args[1]
			}
			return runNormalize(a, args[0], out, force, modsOnly)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite files that do not look homebrew-generated")
	cmd.Flags().BoolVar(&modsOnly, "mods-only", false, "Write only the MOD lines")
	return cmd
}

func runNormalize(a *app, in, out string, force, modsOnly bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	c, err := a.load(ctx, in)
	if err != nil {
		return err
	}
	return a.save(ctx, c, out, force, modsOnly)
}
