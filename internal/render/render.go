package render

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"ability-lst/internal/ability"
	"ability-lst/internal/textutil"
)

// Render writes a as one tab-aligned .lst line for rs. a is not modified;
// helper fields are added to a copy first (see Materialize).
func Render(a *ability.Ability, rs ability.RuleSystem) string {
	m := Materialize(a, rs)
	c := &Columns{}

	c.Write(m.Name)
	pad := NameWidth - textutil.Width(m.Name)/TabSize
	if n := textutil.Width(m.Name); n > NameWidth*TabSize {
		c.AddExcess((n - NameWidth*TabSize) / TabSize)
	}
	// KEY: must stay a field of its own, however long the name.
	if pad < 1 && m.Key != m.Name {
		pad = 1
		c.AddExcess(1)
	}
	c.Tabs(pad)

	if m.Key == m.Name {
		c.Pad(KeyWidth, 0)
	} else {
		c.Fill(ability.TagKey+m.Key, KeyWidth)
	}

	writeCategory(c, m)
	writePrerequisites(c, m, rs)

	writeFlag(c, ability.TagMult, m.Repeatable)
	writeFlag(c, ability.TagStack, m.Stacks)

	if m.Description != "" {
		c.Write("\t\t" + ability.TagDesc + m.Description)
	}
	if m.NarrativePrerequisite != "" {
		c.Write("\t" + ability.TagPreText + m.NarrativePrerequisite)
	}
	writeExtras(c, m.ExtraFields)
	return c.String()
}

func writeCategory(c *Columns, m *ability.Ability) {
	if m.Kind == ability.KindFeat {
		c.Write("\t" + ability.TagCategory + ability.CategoryFeat)
		c.Pad(3, 1)
	} else {
		c.Write("\t" + ability.TagCategory + ability.CategorySpecialAbility + "\t")
	}
	c.Field(TypeString(m), TypeWidth)
}

// writePrerequisites writes the fixed prerequisite columns: scores,
// alignment, race, attack bonus, level and required feats.
func writePrerequisites(c *Columns, m *ability.Ability, rs ability.RuleSystem) {
	if stats := PreStat(m, rs); stats != "" {
		c.Write("\t" + stats)
		if UsesStatVars(rs) && hasStatVars(m) {
			c.Tabs(4)
		}
	} else {
		c.Tabs(4)
	}

	c.Field(AlignField(m), AlignWidth)

	switch {
	case !m.HasRace():
		c.Pad(RaceWidth+1, 0)
	case m.Kind == ability.KindTrait:
		c.Tabs(RaceWidth + 1)
	default:
		c.Field(RaceField(m), RaceWidth)
	}

	if m.RequiredAttackBonus > 0 {
		c.Write("\t" + ability.TagAttackBonus + strconv.Itoa(m.RequiredAttackBonus))
	} else {
		c.Pad(3, 0)
	}

	if m.RequiredLevel > 0 {
		c.Write("\t" + ability.TagLevel + strconv.Itoa(m.RequiredLevel))
	} else {
		c.Pad(4, 0)
	}

	c.Field(FeatsField(m.RequiredFeats), FeatsWidth)
}

func writeFlag(c *Columns, tag string, on bool) {
	if on {
		c.Write("\t" + tag + "YES\t")
	} else {
		c.Write("\t" + tag + "NO\t")
	}
}

func writeExtras(c *Columns, fields []string) {
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			c.Write("\t\t" + f)
		}
	}
}

// TypeString is the TYPE field for a. Feats list their subtypes; traits
// encode their category, and racial traits their race; GM awards use a
// fixed type. A feat without subtypes has no TYPE field.
func TypeString(a *ability.Ability) string {
	switch a.Kind {
	case ability.KindFeat:
		if len(a.Subtypes) == 0 {
			return ""
		}
		return ability.TagType + strings.Join(a.Subtypes, ".")
	case ability.KindTrait:
		s := ability.TagType + "Trait"
		cat := a.PrimarySubtype()
		if cat == "" {
			return s
		}
		s += "."
		if slices.Contains(ability.BasicTraitCategories, cat) {
			s += "BasicTrait."
		}
		s += cat + "Trait"
		if strings.Contains(cat, "Race") && a.HasRace() {
			s += "." + textutil.TitleCase(a.RequiredRace) + "Trait"
		}
		return s
	default:
		return ability.TagType + "GM_Award.SpecialQuality"
	}
}

// StatOrder is the order scores appear in PRESTAT.
func StatOrder(rs ability.RuleSystem) []ability.Stat {
	order := []ability.Stat{ability.CON, ability.WIS, ability.CHA}
	if !UsesStatVars(rs) {
		order = append(order, ability.STR, ability.DEX, ability.INT)
	}
	return order
}

// PreStat is the PRESTAT field for the scores rs writes directly, or "".
func PreStat(a *ability.Ability, rs ability.RuleSystem) string {
	var parts []string
	for _, s := range StatOrder(rs) {
		if v := a.Stats[s]; v > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", s, v))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return ability.TagStat + strconv.Itoa(len(parts)) + "," + strings.Join(parts, ",")
}

func hasStatVars(a *ability.Ability) bool {
	return a.Stats[ability.STR] > 0 || a.Stats[ability.DEX] > 0 || a.Stats[ability.INT] > 0
}

// AlignField is the alignment exclusion field, or "" when nothing is
// excluded.
func AlignField(a *ability.Ability) string {
	eff := a.DisallowedAlignments.Effective()
	if eff == 0 {
		return ""
	}
	return ability.TagAlignExclude + eff.String()
}

// RaceField is the PRERACE field for a non-trait ability.
func RaceField(a *ability.Ability) string {
	return ability.TagRace + "1," + a.RequiredRace
}

// FeatsField lists required feats, or "" for none.
func FeatsField(feats []string) string {
	if len(feats) == 0 {
		return ""
	}
	return fmt.Sprintf("%s%d,%s,%s", ability.TagAbility, len(feats), ability.FeatCategoryFilter, strings.Join(feats, ","))
}
