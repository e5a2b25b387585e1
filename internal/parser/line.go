package parser

import (
	"slices"
	"strconv"
	"strings"

	"ability-lst/internal/ability"
)

// tagKind is what a single tab-separated token of an ability line means.
type tagKind int

const (
	tagExtra tagKind = iota
	tagCategory
	tagKey
	tagType
	tagAlignExclude
	tagRace
	tagStat
	tagAttackBonus
	tagFeats
	tagDesc
	tagMult
	tagStack
	tagPreMult
	tagStrVar
	tagLevel
	tagPreText
)

type rule struct {
	prefix   string
	contains string
	kind     tagKind
}

// Checked in order; the first match wins.
var rules = []rule{
	{prefix: ability.TagCategory, kind: tagCategory},
	{prefix: ability.TagKey, kind: tagKey},
	{prefix: ability.TagType, kind: tagType},
	{prefix: ability.TagAlignExclude, kind: tagAlignExclude},
	{prefix: ability.TagRace, kind: tagRace},
	{prefix: ability.TagStat, kind: tagStat},
	{prefix: ability.TagAttackBonus, kind: tagAttackBonus},
	{prefix: ability.TagAbility, contains: ability.FeatCategoryFilter, kind: tagFeats},
	{prefix: ability.TagDesc, kind: tagDesc},
	{prefix: ability.TagMult, kind: tagMult},
	{prefix: ability.TagStack, kind: tagStack},
	{prefix: ability.TagPreMult, kind: tagPreMult},
	{prefix: ability.TagVarGTEQ, contains: ability.VarStatScoreSTR, kind: tagStrVar},
	{prefix: ability.TagLevel, kind: tagLevel},
	{prefix: ability.TagPreText, kind: tagPreText},
}

func classify(token string) tagKind {
	for _, r := range rules {
		if strings.HasPrefix(token, r.prefix) && (r.contains == "" || strings.Contains(token, r.contains)) {
			return r.kind
		}
	}
	return tagExtra
}

// SplitFields splits a line on tabs, trims every field and drops empty ones.
func SplitFields(line string) []string {
	var out []string
	for _, f := range strings.Split(line, "\t") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ParseLine builds an ability from one .lst line. Lines that are not a feat,
// trait or GM award (class abilities, comments, blank lines) return nil with
// no error so the caller can keep them verbatim. A recognized tag with an
// unreadable value returns a *FieldError.
func ParseLine(line string, rs ability.RuleSystem) (*ability.Ability, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, ability.CommentPrefix) {
		return nil, nil
	}
	fields := SplitFields(line)

	a := ability.New(fields[0], ability.KindUnknown, rs)
	for _, tok := range fields[1:] {
		if err := apply(a, tok); err != nil {
			return nil, &FieldError{Line: line, Token: tok, Err: err}
		}
	}
	if a.Kind == ability.KindUnknown {
		return nil, nil
	}
	return a, nil
}

func apply(a *ability.Ability, tok string) error {
	_, value, _ := strings.Cut(tok, ":")

	switch classify(tok) {
	case tagCategory:
		if strings.Contains(value, ability.CategoryFeat) {
			a.Kind = ability.KindFeat
		}
	case tagKey:
		// A blank KEY: leaves the name as the key.
		if strings.TrimSpace(value) != "" {
			a.Key = value
		}
	case tagType:
		applyType(a, tok, value)
	case tagAlignExclude:
		set, ok := parseAlignments(value)
		if !ok {
			a.ExtraFields = append(a.ExtraFields, tok)
			return nil
		}
		a.DisallowedAlignments = set
	case tagRace:
		race, ok := singleRace(value)
		if !ok {
			a.ExtraFields = append(a.ExtraFields, tok)
			return nil
		}
		a.RequiredRace = race
	case tagStat:
		stats, ok, err := parseStats(value)
		if err != nil {
			return err
		}
		if !ok {
			a.ExtraFields = append(a.ExtraFields, tok)
			return nil
		}
		for s, v := range stats {
			if v > 0 {
				a.Stats[s] = v
			}
		}
	case tagAttackBonus:
		n, err := parseNonNegative(value)
		if err != nil {
			return err
		}
		a.RequiredAttackBonus = n
	case tagFeats:
		feats, ok, err := parseFeats(value)
		if err != nil {
			return err
		}
		if !ok {
			a.ExtraFields = append(a.ExtraFields, tok)
			return nil
		}
		a.RequiredFeats = feats
	case tagDesc:
		a.Description = value
	case tagMult:
		a.Repeatable = strings.Contains(strings.ToUpper(value), "YES")
	case tagStack:
		a.Stacks = strings.Contains(strings.ToUpper(value), "YES")
	case tagPreMult:
		applied, err := applyPreMult(a, value)
		if err != nil {
			return err
		}
		if !applied {
			a.ExtraFields = append(a.ExtraFields, tok)
		}
	case tagStrVar:
		n, err := varValue(value)
		if err != nil {
			return err
		}
		a.Stats[ability.STR] = n
	case tagLevel:
		n, err := parseNonNegative(strings.TrimPrefix(tok, ability.TagLevel))
		if err != nil {
			return err
		}
		a.RequiredLevel = n
	case tagPreText:
		a.NarrativePrerequisite = value
	default:
		a.ExtraFields = append(a.ExtraFields, tok)
	}
	return nil
}

var subtypeNoise = strings.NewReplacer("Trait", "", "SpecialQuality", "", "GM_Award", "")

func applyType(a *ability.Ability, tok, value string) {
	if strings.Contains(tok, "Trait") && !strings.Contains(tok, "RacialTrait") {
		a.Kind = ability.KindTrait
	} else if strings.Contains(tok, "GM_Award") {
		a.Kind = ability.KindGMAward
	}
	for _, part := range strings.Split(value, ".") {
		sub := subtypeNoise.Replace(part)
		if sub == "" || strings.Contains(sub, "Basic") || slices.Contains(a.Subtypes, "Race") {
			continue
		}
		a.Subtypes = append(a.Subtypes, sub)
	}
}

func parseAlignments(value string) (ability.AlignmentSet, bool) {
	var set ability.AlignmentSet
	for _, part := range strings.Split(value, ",") {
		al, err := ability.ParseAlignment(part)
		if err != nil {
			return 0, false
		}
		set = set.With(al)
	}
	return set, true
}

// singleRace reads "1,Elf". Lists of several races are alternatives, which
// the record cannot hold.
func singleRace(value string) (string, bool) {
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return "", false
	}
	race := strings.TrimSpace(strings.ReplaceAll(parts[1], "%", ""))
	return race, race != ""
}

// parseStats reads "2,STR=13,DEX=15". ok is false when the tag asks for fewer
// scores than it lists or names an unknown score.
func parseStats(value string) ([ability.NumStats]int, bool, error) {
	var stats [ability.NumStats]int
	parts := strings.Split(value, ",")
	if len(parts) < 2 {
		return stats, false, nil
	}
	count, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || count != len(parts)-1 {
		return stats, false, nil
	}
	for _, p := range parts[1:] {
		name, num, found := strings.Cut(p, "=")
		s, known := ability.ParseStat(name)
		if !found || !known {
			return stats, false, nil
		}
		n, err := parseNonNegative(num)
		if err != nil {
			return stats, false, err
		}
		stats[s] = n
	}
	return stats, true, nil
}

// parseFeats reads "2,CATEGORY=FEAT,Dodge,Mobility".
func parseFeats(value string) ([]string, bool, error) {
	parts := strings.Split(value, ",")
	if len(parts) < 3 || strings.TrimSpace(parts[1]) != ability.FeatCategoryFilter {
		return nil, false, nil
	}
	count, err := parseNonNegative(parts[0])
	if err != nil {
		return nil, false, err
	}
	feats := parts[2:]
	if count != len(feats) {
		return nil, false, nil
	}
	return feats, true, nil
}

// varValue reads the number after "NAME,".
func varValue(value string) (int, error) {
	_, num, found := strings.Cut(value, ",")
	if !found {
		return 0, errMissingValue
	}
	return parseNonNegative(num)
}

func parseNonNegative(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errNegative
	}
	return n, nil
}
