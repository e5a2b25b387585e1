// Package mod writes .MOD lines: patches that turn an ability defined in
// another source into an edited version of itself.
package mod

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"ability-lst/internal/ability"
	"ability-lst/internal/render"
)

// Patch pairs a base ability with its edited version.
type Patch struct {
	Base   *ability.Ability
	Edited *ability.Ability
}

// New checks that base and edited describe the same ability.
func New(base, edited *ability.Ability) (*Patch, error) {
	if base == nil || edited == nil {
		return nil, fmt.Errorf("nil ability: %w", ability.ErrInvariantViolation)
	}
	if base.Key != edited.Key {
		return nil, fmt.Errorf("keys %q and %q differ: %w", base.Key, edited.Key, ability.ErrInvariantViolation)
	}
	if base.Kind != edited.Kind {
		return nil, fmt.Errorf("%s cannot become %s: %w", base.Kind, edited.Kind, ability.ErrInvariantViolation)
	}
	return &Patch{Base: base, Edited: edited}, nil
}

// Diff renders the .MOD line turning base into edited.
func Diff(base, edited *ability.Ability, rs ability.RuleSystem) (string, error) {
	p, err := New(base, edited)
	if err != nil {
		return "", err
	}
	return p.Render(rs), nil
}

// Header is the first field of a MOD line.
func Header(a *ability.Ability) string {
	category := ability.CategorySpecialAbility
	if a.Kind == ability.KindFeat {
		category = ability.CategoryFeat
	}
	return "CATEGORY=" + category + "|" + a.Key + ability.MarkerMod
}

// ExtractKey returns the key a MOD line targets.
func ExtractKey(line string) (string, error) {
	_, rest, found := strings.Cut(strings.TrimSpace(line), "|")
	if !found {
		return "", fmt.Errorf("no key in %q: %w", line, ability.ErrMalformedField)
	}
	key, _, _ := strings.Cut(rest, ".")
	if idx := strings.Index(rest, ability.MarkerMod); idx >= 0 {
		key = rest[:idx]
	}
	return key, nil
}

// PrerequisitesChanged reports whether any prerequisite differs. The target
// format can only clear prerequisites as a group, so any change means
// clearing and writing all of them again.
func (p *Patch) PrerequisitesChanged() bool {
	b, e := p.Base, p.Edited
	return raceOf(b) != raceOf(e) ||
		b.RequiredLevel != e.RequiredLevel ||
		b.NarrativePrerequisite != e.NarrativePrerequisite ||
		b.Stats != e.Stats ||
		b.RequiredAttackBonus != e.RequiredAttackBonus ||
		b.DisallowedAlignments.Effective() != e.DisallowedAlignments.Effective() ||
		!slices.Equal(b.RequiredFeats, e.RequiredFeats)
}

// SubtypeChanges reports whether the subtype list must be cleared and which
// subtypes to write.
func (p *Patch) SubtypeChanges() (clear bool, added []string) {
	b, e := p.Base, p.Edited
	for _, s := range b.Subtypes {
		if !slices.Contains(e.Subtypes, s) {
			clear = true
		}
	}
	if b.IsRacialTrait() && raceOf(b) != raceOf(e) {
		clear = true
	}
	for _, s := range e.Subtypes {
		if clear || !slices.Contains(b.Subtypes, s) {
			added = append(added, s)
		}
	}
	return clear, added
}

// Render writes the MOD line for rs.
func (p *Patch) Render(rs ability.RuleSystem) string {
	base := render.Materialize(p.Base, rs)
	edited := render.Materialize(p.Edited, rs)
	c := &render.Columns{}

	header := Header(edited)
	tabs, excess := render.Span(header, render.ModKeyWidth)
	c.AddExcess(excess)
	c.Write(header)
	c.Tabs(tabs + 1)

	clearTypes, added := p.SubtypeChanges()
	if clearTypes {
		c.Write("\tTYPE:.clear\t")
	} else {
		c.Pad(3, 1)
	}
	if clearTypes || len(added) > 0 {
		c.Field(typeString(edited, added), render.ModTypeWidth)
	} else {
		c.Tabs(render.ModTypeWidth + 1)
	}

	clearPre := p.PrerequisitesChanged()
	if clearPre {
		c.Write("\tPRE:.clear\t")
	} else {
		c.Write("\t\t\t")
	}
	writePrerequisites(c, edited, rs, clearPre)

	writeFlip(c, ability.TagMult, base.Repeatable, edited.Repeatable)
	writeFlip(c, ability.TagStack, base.Stacks, edited.Stacks)

	if base.Description != edited.Description {
		c.Write("\t\t" + ability.TagDesc + ".clear\t" + ability.TagDesc + edited.Description)
	}

	for _, f := range edited.ExtraFields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if !slices.Contains(base.ExtraFields, f) || (clearPre && isPrerequisite(f)) {
			c.Write("\t\t" + f)
		}
	}
	return c.String()
}

// typeString is the TYPE field of the patch. Feats only list what is added;
// traits and GM awards always write their whole type.
func typeString(edited *ability.Ability, added []string) string {
	if edited.Kind == ability.KindFeat {
		return ability.TagType + strings.Join(added, ".")
	}
	return render.TypeString(edited)
}

// writePrerequisites mirrors the prerequisite columns of render.Render. Fields
// are only written after a clear.
func writePrerequisites(c *render.Columns, m *ability.Ability, rs ability.RuleSystem, active bool) {
	stats := ""
	if active {
		stats = render.PreStat(m, rs)
	}
	if stats != "" {
		c.Write("\t" + stats)
	}
	synthesized := render.UsesStatVars(rs) &&
		(m.Stats[ability.STR] > 0 || m.Stats[ability.DEX] > 0 || m.Stats[ability.INT] > 0)
	if synthesized || stats == "" {
		c.Tabs(4)
	}

	align := ""
	if active {
		align = render.AlignField(m)
	}
	c.Field(align, render.AlignWidth)

	switch {
	case !active || !m.HasRace():
		c.Pad(render.RaceWidth+1, 0)
	case m.Kind == ability.KindTrait:
		c.Tabs(render.RaceWidth + 1)
	default:
		c.Field(render.RaceField(m), render.RaceWidth)
	}

	if active && m.RequiredAttackBonus > 0 {
		c.Write("\t" + ability.TagAttackBonus + strconv.Itoa(m.RequiredAttackBonus))
	} else {
		c.Pad(3, 0)
	}

	if active && m.RequiredLevel > 0 {
		c.Write("\t" + ability.TagLevel + strconv.Itoa(m.RequiredLevel))
	} else {
		c.Pad(4, 0)
	}

	feats := ""
	if active {
		feats = render.FeatsField(m.RequiredFeats)
	}
	c.Field(feats, render.FeatsWidth)

	if active && m.NarrativePrerequisite != "" {
		c.Write("\t" + ability.TagPreText + m.NarrativePrerequisite)
	}
}

func writeFlip(c *render.Columns, tag string, before, after bool) {
	switch {
	case after && !before:
		c.Write("\t" + tag + "YES\t")
	case !after && before:
		c.Write("\t" + tag + "NO\t")
	default:
		c.Tabs(3)
	}
}

func isPrerequisite(field string) bool {
	return strings.HasPrefix(field, "PRE") || strings.HasPrefix(field, "!PRE")
}

func raceOf(a *ability.Ability) string {
	if !a.HasRace() {
		return ability.NoRace
	}
	return strings.TrimSpace(a.RequiredRace)
}
