package cli

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"ability-lst/internal/ability"
	"ability-lst/internal/config"
	"ability-lst/internal/pcc"

	"github.com/spf13/cobra"
)

func vocabCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "vocab [kind]",
		Short: "List the races and subtypes suggested for the rule system",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := ""
			if len(args) == 1 {
				kind = args[0]
			}
			return runVocab(cmd, a, kind)
		},
	}
}

func runVocab(cmd *cobra.Command, a *app, kind string) error {
	sys, err := a.vocab.System(a.system)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if kind != "" {
		k, err := ability.ParseKind(kind)
		if err != nil {
			return err
		}
		if !sys.Supports(k) {
			return fmt.Errorf("%s in %s: %w", k, a.system, ability.ErrUnsupported)
		}
		for _, s := range sys.SubtypeChoices(k) {
			fmt.Fprintln(out, s)
		}
		return nil
	}

	fmt.Fprintf(out, "%s (GAMEMODE:%s)\n", a.system, sys.GameMode)
	fmt.Fprintf(out, "Kinds: %s\n", strings.Join(sys.Kinds, ", "))
	for _, name := range sys.Kinds {
		k, err := ability.ParseKind(name)
		if err != nil {
			continue
		}
		if subtypes := sys.SubtypeChoices(k); len(subtypes) > 0 {
			fmt.Fprintf(out, "%s subtypes: %s\n", k, strings.Join(subtypes, ", "))
		}
	}
	fmt.Fprintf(out, "Races: %s\n", strings.Join(sys.RaceChoices(), ", "))
	return nil
}

func pccCmd(a *app) *cobra.Command {
	var manifest string
	cmd := &cobra.Command{
		Use:   "pcc <file.lst>",
		Short: "Make a .pcc manifest load an ability file",
		Long: `Adds an ABILITY: line for the file to --manifest, or to the first .pcc file
next to it. A manifest that does not exist is generated with the campaign,
game mode and publisher lines for the rule system.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPCC(cmd, a, args[0], manifest)
		},
	}
	cmd.Flags().StringVar(&manifest, "manifest", "", "Manifest path (default: the .pcc next to the file)")
	return cmd
}

func runPCC(cmd *cobra.Command, a *app, lstPath, manifest string) error {
	if manifest == "" {
		found, err := pcc.Find(filepath.Dir(lstPath))
		if err != nil {
			return err
		}
		manifest = found
		if manifest == "" {
			manifest = strings.TrimSuffix(lstPath, filepath.Ext(lstPath)) + ".pcc"
		}
	}

	written, err := pcc.Ensure(a.storage, manifest, lstPath, a.system, a.vocab)
	if err != nil {
		return err
	}
	if written {
		fmt.Fprintf(cmd.OutOrStdout(), "%s now loads %s\n", manifest, filepath.Base(lstPath))
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s already loads %s\n", manifest, filepath.Base(lstPath))
	}
	return nil
}

// rememberedKeys maps the names accepted by "config set" to dotenv keys.
var rememberedKeys = map[string]string{
	"system":   config.KeySystem,
	"data-dir": config.KeyDataDir,
}

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "system:   %s\n", a.system.Slug())
			fmt.Fprintf(out, "data-dir: %s\n", a.dataDir)
			fmt.Fprintf(out, "catalog:  %s\n", a.cfg.CatalogDriver)
			fmt.Fprintf(out, "defaults: %s\n", a.defaultsPath)
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <name=value>...",
		Short: "Remember defaults for later runs (system, data-dir)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(a, args)
		},
	})
	return cmd
}

func runConfigSet(a *app, args []string) error {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		key, known := rememberedKeys[strings.TrimSpace(name)]
		if !ok || !known {
			return fmt.Errorf("config set %q: want one of %s as name=value", arg,
				strings.Join(slices.Sorted(maps.Keys(rememberedKeys)), ", "))
		}
		value = strings.TrimSpace(value)
		switch key {
		case config.KeySystem:
			rs, err := ability.ParseRuleSystem(value)
			if err != nil {
				return err
			}
			value = rs.Slug()
		case config.KeyDataDir:
			abs, err := filepath.Abs(value)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", value, err)
			}
			value = abs
		}
		values[key] = value
	}
	return config.Remember(a.defaultsPath, values)
}
