package render

import (
	"fmt"
	"slices"
	"strings"

	"ability-lst/internal/ability"
)

// DexPreMult is the Pathfinder 1e form of a DEX minimum.
func DexPreMult(n int) string {
	return fmt.Sprintf("%s1,[%s%s,%d],[%s%s,%d]", ability.TagPreMult,
		ability.TagVarGTEQ, ability.VarStatScoreDEX, n, ability.TagVarGTEQ, ability.VarFeatDex, n)
}

// StrVar is the Pathfinder 1e form of a STR minimum.
func StrVar(n int) string {
	return fmt.Sprintf("%s%s,%d", ability.TagVarGTEQ, ability.VarStatScoreSTR, n)
}

// IntPreMult is the Pathfinder 1e form of an INT minimum.
func IntPreMult(n int) string {
	return fmt.Sprintf("%s1,[%s%s,%d],[%s%s,%d]", ability.TagPreMult,
		ability.TagVarGTEQ, ability.VarStatScoreINT, n, ability.TagVarGTEQ, ability.VarCombatFeatInt, n)
}

// RacePreMult lets a racial trait be taken by its race or by anyone who
// adopted into it.
func RacePreMult(race string) string {
	return fmt.Sprintf("%s1,[%s1,%s],[%s1,CATEGORY=%s,%s%s]", ability.TagPreMult,
		ability.TagRace, race, ability.TagAbility, ability.CategorySpecialAbility, ability.AdoptiveRacePrefix, race)
}

// BypassPreMult limits a character to one trait per category unless the
// restriction is lifted.
func BypassPreMult(key, category string) string {
	return fmt.Sprintf("%s1,[%s1,CATEGORY=%s,%s],[%s],[!%s1,CATEGORY:%s,TYPE.%sTrait]", ability.TagPreMult,
		ability.TagAbility, ability.CategorySpecialAbility, key, ability.VarBypassTrait,
		ability.TagAbility, ability.CategorySpecialAbility, category)
}

// UsesStatVars reports whether rs writes STR, DEX and INT minimums through
// engine variables instead of PRESTAT.
func UsesStatVars(rs ability.RuleSystem) bool { return rs == ability.Pathfinder1e }

// Materialize returns a copy of a with the helper fields its line needs in
// ExtraFields: engine variable minimums, the racial trait and trait bypass
// PREMULTs, CHOOSE for repeatable abilities and COST for GM awards. Existing
// helpers are replaced or kept, never duplicated, and a is not modified.
func Materialize(a *ability.Ability, rs ability.RuleSystem) *ability.Ability {
	m := a.Clone()

	if UsesStatVars(rs) {
		if n := m.Stats[ability.DEX]; n > 0 {
			m.ExtraFields = upsert(m.ExtraFields, DexPreMult(n), containsAll(ability.VarStatScoreDEX))
		}
		if n := m.Stats[ability.STR]; n > 0 {
			m.ExtraFields = upsert(m.ExtraFields, StrVar(n), containsAll(ability.VarStatScoreSTR))
		}
		if n := m.Stats[ability.INT]; n > 0 {
			m.ExtraFields = upsert(m.ExtraFields, IntPreMult(n), containsAll(ability.VarStatScoreINT))
		}
	}

	if m.Kind == ability.KindTrait {
		if m.HasRace() {
			m.ExtraFields = upsert(m.ExtraFields, RacePreMult(m.RequiredRace),
				containsAll(ability.TagPreMult+"1,", ability.TagRace+"1,"))
		}
		if cat := m.PrimarySubtype(); cat != "" {
			m.ExtraFields = upsert(m.ExtraFields, BypassPreMult(m.Key, cat),
				containsAll(ability.TagPreMult+"1,[", ability.VarBypassTrait))
		}
	}

	if m.Repeatable {
		m.ExtraFields = appendMissing(m.ExtraFields, ability.ValueChooseNone, containsAll(ability.TagChoose))
	}
	if m.Kind == ability.KindGMAward {
		m.ExtraFields = appendMissing(m.ExtraFields, ability.ValueCostZero, containsAll(ability.TagCost))
	}
	return m
}

func containsAll(subs ...string) func(string) bool {
	return func(field string) bool {
		for _, s := range subs {
			if !strings.Contains(field, s) {
				return false
			}
		}
		return true
	}
}

// upsert puts value in place of the first field matching match and drops the
// other matches. Without a match, value is appended.
func upsert(fields []string, value string, match func(string) bool) []string {
	out := make([]string, 0, len(fields)+1)
	placed := false
	for _, f := range fields {
		if !match(f) {
			out = append(out, f)
			continue
		}
		if !placed {
			out = append(out, value)
			placed = true
		}
	}
	if !placed {
		out = append(out, value)
	}
	return out
}

func appendMissing(fields []string, value string, match func(string) bool) []string {
	if slices.ContainsFunc(fields, match) {
		return fields
	}
	return append(fields, value)
}
