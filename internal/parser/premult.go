package parser

import (
	"strings"

	"ability-lst/internal/ability"
)

// SplitConditions returns the bracketed sub-conditions of a PREMULT value
// with its leading count already removed, e.g. "[PRERACE:1,Elf],[PRETEXT:x]".
func SplitConditions(value string) []string {
	value = strings.ReplaceAll(value, "], [", "],[")
	var out []string
	for _, part := range strings.Split(value, "],[") {
		part = strings.NewReplacer("[", "", "]", "").Replace(part)
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// applyPreMult folds the sub-conditions the record models into a. It reports
// whether anything was applied; a PREMULT that applied nothing stays opaque.
func applyPreMult(a *ability.Ability, value string) (bool, error) {
	_, rest, found := strings.Cut(value, ",")
	if !found {
		return false, nil
	}
	conds := SplitConditions(rest)
	// Alternative races keep the whole PREMULT opaque.
	for _, cond := range conds {
		_, condValue, _ := strings.Cut(cond, ":")
		if _, ok := singleRace(condValue); strings.HasPrefix(cond, ability.TagRace) && !ok {
			return false, nil
		}
	}

	applied := false
	for _, cond := range conds {
		_, condValue, _ := strings.Cut(cond, ":")
		switch {
		case strings.HasPrefix(cond, ability.TagRace):
			if race, _ := singleRace(condValue); !a.HasRace() {
				a.RequiredRace = race
				applied = true
			}
		case strings.HasPrefix(cond, ability.TagVarGTEQ) && strings.Contains(cond, ability.VarStatScoreDEX):
			n, err := varValue(condValue)
			if err != nil {
				return false, err
			}
			a.Stats[ability.DEX] = n
			applied = true
		case strings.HasPrefix(cond, ability.TagVarGTEQ) && strings.Contains(cond, ability.VarStatScoreINT):
			n, err := varValue(condValue)
			if err != nil {
				return false, err
			}
			a.Stats[ability.INT] = n
			applied = true
		}
	}
	return applied, nil
}
