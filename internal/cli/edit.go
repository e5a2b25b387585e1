package cli

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"ability-lst/internal/ability"
	"ability-lst/internal/collection"
	"ability-lst/internal/interpolation"
	"ability-lst/internal/mod"
	"ability-lst/internal/pcc"
	"ability-lst/internal/render"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// abilityFlags are the editable fields of an ability. Only flags given on the
// command line are applied.
type abilityFlags struct {
	kind     string
	subtypes []string
	desc     string
	pretext  string
	race     string
	feats    []string
	level    int
	bab      int
	stats    []string
	excluded []string
	mult     bool
	stack    bool
	fields   []string
}

func (f *abilityFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.kind, "kind", "feat", "Feat, Trait or GM_Award")
	fs.StringSliceVar(&f.subtypes, "subtype", nil, "Subtypes, in order (repeatable)")
	fs.StringVar(&f.desc, "desc", "", "Description")
	fs.StringVar(&f.pretext, "pretext", "", "Prerequisite text shown to the player")
	fs.StringVar(&f.race, "race", "", "Required race, or None")
	fs.StringSliceVar(&f.feats, "feat", nil, "Required feats (repeatable)")
	fs.IntVar(&f.level, "level", 0, "Minimum character level")
	fs.IntVar(&f.bab, "bab", 0, "Minimum base attack bonus")
	fs.StringSliceVar(&f.stats, "stat", nil, "Minimum ability scores as STAT=N, e.g. STR=13")
	fs.StringSliceVar(&f.excluded, "exclude-align", nil, "Alignments that may not take the ability, e.g. LE,NE,CE")
	fs.BoolVar(&f.mult, "mult", false, "Can be taken more than once")
	fs.BoolVar(&f.stack, "stack", false, "Repeated picks stack")
	fs.StringArrayVar(&f.fields, "field", nil, "Extra raw field, e.g. BENEFIT:text (repeatable)")
}

func (f *abilityFlags) apply(cmd *cobra.Command, ab *ability.Ability) error {
	changed := cmd.Flags().Changed

	if changed("kind") {
		k, err := ability.ParseKind(f.kind)
		if err != nil {
			return err
		}
		ab.Kind = k
	}
	if changed("subtype") {
		ab.Subtypes = trimAll(f.subtypes)
	}
	if changed("desc") {
		ab.Description = interpolation.EscapePercent(strings.TrimSpace(f.desc))
	}
	if changed("pretext") {
		ab.NarrativePrerequisite = strings.TrimSpace(f.pretext)
	}
	if changed("race") {
		ab.RequiredRace = cmp.Or(strings.TrimSpace(f.race), ability.NoRace)
	}
	if changed("feat") {
		ab.RequiredFeats = trimAll(f.feats)
	}
	if changed("level") {
		ab.RequiredLevel = f.level
	}
	if changed("bab") {
		ab.RequiredAttackBonus = f.bab
	}
	if changed("stat") {
		stats, err := parseStatFlags(f.stats)
		if err != nil {
			return err
		}
		ab.Stats = stats
	}
	if changed("exclude-align") {
		var set ability.AlignmentSet
		for _, s := range trimAll(f.excluded) {
			al, err := ability.ParseAlignment(s)
			if err != nil {
				return err
			}
			set = set.With(al)
		}
		ab.DisallowedAlignments = set
	}
	if changed("mult") {
		ab.Repeatable = f.mult
	}
	if changed("stack") {
		ab.Stacks = f.stack
	}
	if changed("field") {
		ab.ExtraFields = append(ab.ExtraFields, trimAll(f.fields)...)
	}
	return nil
}

func parseStatFlags(values []string) ([ability.NumStats]int, error) {
	var stats [ability.NumStats]int
	for _, v := range trimAll(values) {
		name, num, ok := strings.Cut(v, "=")
		s, known := ability.ParseStat(name)
		if !ok || !known {
			return stats, fmt.Errorf("stat %q: want STAT=N: %w", v, ability.ErrMalformedField)
		}
		n, err := strconv.Atoi(strings.TrimSpace(num))
		if err != nil || n < 0 {
			return stats, fmt.Errorf("stat %q: %w", v, ability.ErrMalformedField)
		}
		stats[s] = n
	}
	return stats, nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// warnUnknownRace logs races the vocabulary does not list. PCGen data defines
// more races than the vocabulary suggests, so they are still written.
func (a *app) warnUnknownRace(ab *ability.Ability) {
	if !ab.HasRace() {
		return
	}
	if sys, err := a.vocab.System(a.system); err == nil && !sys.KnownRace(ab.RequiredRace) {
		log.Warn().Str("race", ab.RequiredRace).Str("system", a.system.Slug()).Msg("Race not in vocabulary")
	}
}

func addCmd(a *app) *cobra.Command {
	var (
		f                abilityFlags
		name, key        string
		overwrite, force bool
		manifest         string
	)
	cmd := &cobra.Command{
		Use:   "add <file.lst>",
		Short: "Add an ability to an ability file, creating the file if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ab := ability.New(name, ability.KindFeat, a.system)
			if key != "" {
				ab.Key = strings.TrimSpace(key)
			}
			if err := f.apply(cmd, ab); err != nil {
				return err
			}
			return runAdd(cmd, a, ab, args[0], overwrite, force, manifest)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "Ability name")
	cmd.Flags().StringVar(&key, "key", "", "Key other sources use to refer to the ability (default: name)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an ability with the same name or key")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite files that do not look homebrew-generated")
	cmd.Flags().StringVar(&manifest, "pcc", "", "Manifest to load the file from; generated when missing")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func runAdd(cmd *cobra.Command, a *app, ab *ability.Ability, path string, overwrite, force bool, manifest string) error {
	ctx, cancel := setupContext()
	defer cancel()

	if err := a.vocab.Check(ab, a.system); err != nil {
		return fmt.Errorf("add %q: %w", ab.Name, err)
	}
	a.warnUnknownRace(ab)

	c, err := a.loadOrNew(ctx, path)
	if err != nil {
		return err
	}
	err = c.Add(ab, func(existing *ability.Ability) bool {
		if overwrite {
			log.Info().Str("key", existing.Key).Msg("Replacing existing ability")
		}
		return overwrite
	})
	if err != nil {
		return err
	}
	if err := a.save(ctx, c, path, force, false); err != nil {
		return err
	}
	if manifest != "" {
		if _, err := pcc.Ensure(a.storage, manifest, path, a.system, a.vocab); err != nil {
			return err
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), render.Render(ab, a.system))
	return nil
}

func removeCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "remove <file.lst> <key>",
		Short: "Remove an ability from an ability file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			c, err := a.load(ctx, args[0])
			if err != nil {
				return err
			}
			if err := c.Remove(args[1]); err != nil {
				return err
			}
			return a.save(ctx, c, args[0], force, false)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite files that do not look homebrew-generated")
	return cmd
}

func modCmd(a *app) *cobra.Command {
	var (
		f                 abilityFlags
		from, into        string
		appendOnly, force bool
	)
	cmd := &cobra.Command{
		Use:   "mod <base-key>",
		Short: "Write the .MOD line that edits an ability defined elsewhere",
		Long: `Looks up the base ability in --from, or in the catalog filled by "index"
when --from is not given, applies the edits given as flags and prints the
.MOD line. With --into the line is stored in that ability file, replacing an
earlier MOD of the same ability.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMod(cmd, a, &f, args[0], from, into, appendOnly, force)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&from, "from", "", "Ability file defining the base ability")
	cmd.Flags().StringVar(&into, "into", "", "Ability file to store the MOD line in")
	cmd.Flags().BoolVar(&appendOnly, "append", false, "Append the line to --into without rewriting the file")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite files that do not look homebrew-generated")
	return cmd
}

func runMod(cmd *cobra.Command, a *app, f *abilityFlags, key, from, into string, appendOnly, force bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	base, err := a.baseAbility(ctx, key, from)
	if err != nil {
		return err
	}
	edited := base.Clone()
	if err := f.apply(cmd, edited); err != nil {
		return err
	}
	// abilities from published sources are often missing a description
	if err := a.vocab.Check(edited, a.system); err != nil && !errors.Is(err, ability.ErrIncomplete) {
		return fmt.Errorf("mod %q: %w", key, err)
	}
	a.warnUnknownRace(edited)

	line, err := mod.Diff(base, edited, a.system)
	if err != nil {
		return err
	}

	switch {
	case into == "":
	case appendOnly:
		if err := collection.AppendMod(ctx, a.storage, into, line, a.system); err != nil {
			return err
		}
	default:
		c, err := a.loadOrNew(ctx, into)
		if err != nil {
			return err
		}
		replaced, err := c.AddMod(line)
		if err != nil {
			return err
		}
		if replaced {
			log.Info().Str("key", base.Key).Msg("Replaced earlier MOD")
		}
		if err := a.save(ctx, c, into, force, false); err != nil {
			return err
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), line)
	return nil
}

// baseAbility finds key in the file from, or in the catalog when from is
// empty.
func (a *app) baseAbility(ctx context.Context, key, from string) (*ability.Ability, error) {
	if from != "" {
		c, err := a.load(ctx, from)
		if err != nil {
			return nil, err
		}
		ab, ok := c.Find(key)
		if !ok {
			return nil, fmt.Errorf("%s: %q: %w", from, key, collection.ErrNotFound)
		}
		return ab, nil
	}

	cat, err := openCatalog(ctx, a.cfg)
	if err != nil {
		return nil, err
	}
	defer cat.Close(ctx)

	e, err := cat.Lookup(ctx, a.system, key)
	if err != nil {
		return nil, fmt.Errorf("look up %q: %w", key, err)
	}
	log.Debug().Str("key", e.Key).Str("source", e.Source).Msg("Base ability from catalog")
	return e.Ability()
}

func aspectCmd(a *app) *cobra.Command {
	var (
		typ, text    string
		vars         []string
		list         bool
		into, target string
		force        bool
	)
	cmd := &cobra.Command{
		Use:   "aspect",
		Short: "Build ASPECT fields for bonuses and resource trackers",
		Long: `Builds ASPECT fields. Each --var is a formula, or the name of a predefined
one, optionally followed by @N to place its %N placeholder at byte offset N
of --text. For a resource tracker --text is the unit of the check boxes and
the single --var their count.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return runAspectList(cmd, a)
			}
			return runAspect(cmd, a, typ, text, vars, into, target, force)
		},
	}
	cmd.Flags().StringVar(&typ, "type", "CombatBonus", "CombatBonus, SaveBonus, SkillBonus or ResourceTracker")
	cmd.Flags().StringVar(&text, "text", "", "Aspect text")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "Variable formula[@offset] (repeatable)")
	cmd.Flags().BoolVar(&list, "list", false, "List predefined formulas")
	cmd.Flags().StringVar(&into, "into", "", "Ability file holding the ability to add the fields to")
	cmd.Flags().StringVar(&target, "ability", "", "Key of the ability in --into")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite files that do not look homebrew-generated")
	return cmd
}

func runAspectList(cmd *cobra.Command, a *app) error {
	predefined := interpolation.Predefined(a.system)
	names := make([]string, 0, len(predefined))
	for name := range predefined {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", name, predefined[name])
	}
	return nil
}

func runAspect(cmd *cobra.Command, a *app, typ, text string, vars []string, into, target string, force bool) error {
	t, err := interpolation.ParseAspectType(typ)
	if err != nil {
		return err
	}
	aspect := &interpolation.Aspect{Type: t, Text: interpolation.EscapePercent(text)}
	predefined := interpolation.Predefined(a.system)
	for _, v := range vars {
		formula, pos := splitOffset(v)
		for name, value := range predefined {
			if strings.EqualFold(name, formula) {
				formula = value
			}
		}
		if err := aspect.AddVariable(formula, pos); err != nil {
			return err
		}
	}
	fields, err := aspect.Fields()
	if err != nil {
		return err
	}

	if into != "" {
		ctx, cancel := setupContext()
		defer cancel()

		c, err := a.load(ctx, into)
		if err != nil {
			return err
		}
		ab, ok := c.Find(target)
		if !ok {
			return fmt.Errorf("%s: %q: %w", into, target, collection.ErrNotFound)
		}
		ab.ExtraFields = append(ab.ExtraFields, fields...)
		if err := a.save(ctx, c, into, force, false); err != nil {
			return err
		}
	}

	for _, f := range fields {
		fmt.Fprintln(cmd.OutOrStdout(), f)
	}
	return nil
}

// splitOffset splits "formula@N". Without a valid offset the placeholder is
// appended.
func splitOffset(v string) (string, int) {
	i := strings.LastIndex(v, "@")
	if i < 0 {
		return v, -1
	}
	n, err := strconv.Atoi(v[i+1:])
	if err != nil {
		return v, -1
	}
	return v[:i], n
}
