// Package interpolation handles the %N variable placeholders PCGen expands in
// DESC and ASPECT text.
package interpolation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"ability-lst/internal/ability"
)

// placeholder matches an escaped percent or a %N variable reference.
var placeholder = regexp.MustCompile(`%%|%([0-9]+)`)

// EscapePercent doubles every % that does not start a %N placeholder or an
// existing %% escape, so PCGen prints it literally.
func EscapePercent(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		b.WriteByte(c)
		if c != '%' {
			continue
		}
		switch {
		case i+1 < len(text) && text[i+1] == '%':
			b.WriteByte('%')
			i++
		case i+1 < len(text) && text[i+1] >= '0' && text[i+1] <= '9':
		default:
			b.WriteByte('%')
		}
	}
	return b.String()
}

// Placeholders returns the variable numbers referenced in text, in order.
func Placeholders(text string) []int {
	var out []int
	for _, m := range placeholder.FindAllStringSubmatch(text, -1) {
		if m[1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err == nil {
			out = append(out, n)
		}
	}
	return out
}

// Renumber drops placeholder %n from text and shifts every higher
// placeholder down by one.
func Renumber(text string, n int) string {
	return placeholder.ReplaceAllStringFunc(text, func(m string) string {
		if m == "%%" {
			return m
		}
		v, err := strconv.Atoi(m[1:])
		if err != nil {
			return m
		}
		switch {
		case v == n:
			return ""
		case v > n:
			return "%" + strconv.Itoa(v-1)
		}
		return m
	})
}

// AspectType selects what an ASPECT shows on the character sheet.
type AspectType int

const (
	CombatBonus AspectType = iota
	SaveBonus
	SkillBonus
	ResourceTracker
)

func (t AspectType) String() string {
	switch t {
	case SaveBonus:
		return "SaveBonus"
	case SkillBonus:
		return "SkillBonus"
	case ResourceTracker:
		return "ResourceTracker"
	default:
		return "CombatBonus"
	}
}

// ParseAspectType accepts the short names Combat, Save, Skill and Resource
// Tracker as well as the tag names.
func ParseAspectType(s string) (AspectType, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "")) {
	case "combat", "combatbonus":
		return CombatBonus, nil
	case "save", "savebonus":
		return SaveBonus, nil
	case "skill", "skillbonus":
		return SkillBonus, nil
	case "resource", "resourcetracker", "tracker":
		return ResourceTracker, nil
	}
	return CombatBonus, fmt.Errorf("unknown aspect type %q", s)
}

// Aspect builds ASPECT fields. Text holds %N placeholders for Variables;
// for a resource tracker Text is the units and the single variable is the
// number of check boxes.
type Aspect struct {
	Type      AspectType
	Text      string
	Variables []string
}

// AddVariable appends a variable formula. For bonus aspects its placeholder
// is inserted into Text at byte offset pos; a negative pos appends it.
func (a *Aspect) AddVariable(formula string, pos int) error {
	formula = strings.TrimSpace(formula)
	if formula == "" {
		return fmt.Errorf("empty variable: %w", ability.ErrIncomplete)
	}
	if a.Type == ResourceTracker {
		if len(a.Variables) > 0 {
			return fmt.Errorf("resource tracker already has variable %q: %w", a.Variables[0], ability.ErrInvariantViolation)
		}
		a.Variables = []string{formula}
		return nil
	}
	a.Variables = append(a.Variables, formula)
	ref := "%" + strconv.Itoa(len(a.Variables))
	if pos < 0 || pos > len(a.Text) {
		pos = len(a.Text)
	}
	a.Text = a.Text[:pos] + ref + a.Text[pos:]
	return nil
}

// RemoveVariable deletes the variable at idx (0-based) and its placeholder,
// renumbering the placeholders after it.
func (a *Aspect) RemoveVariable(idx int) error {
	if idx < 0 || idx >= len(a.Variables) {
		return fmt.Errorf("no variable %d", idx+1)
	}
	a.Variables = append(a.Variables[:idx], a.Variables[idx+1:]...)
	if a.Type != ResourceTracker {
		a.Text = Renumber(a.Text, idx+1)
	}
	return nil
}

// Fields renders the ASPECT fields to add to an ability.
func (a *Aspect) Fields() ([]string, error) {
	if a.Type == ResourceTracker {
		if len(a.Variables) == 0 {
			return nil, fmt.Errorf("resource tracker needs a check box count: %w", ability.ErrIncomplete)
		}
		fields := []string{"ASPECT:CheckCount|%1|" + a.Variables[0]}
		if units := strings.TrimSpace(a.Text); units != "" {
			fields = append(fields, "ASPECT:CheckType|"+units)
		}
		return fields, nil
	}
	if a.Text == "" {
		return nil, fmt.Errorf("aspect text is empty: %w", ability.ErrIncomplete)
	}
	parts := append([]string{"ASPECT:" + a.Type.String(), a.Text}, a.Variables...)
	return []string{strings.Join(parts, "|")}, nil
}

// Predefined lists formula shorthands available in rs.
func Predefined(rs ability.RuleSystem) map[string]string {
	values := map[string]string{
		"Strength bonus":        "STR",
		"Dexterity bonus":       "DEX",
		"Constitution bonus":    "CON",
		"Intelligence bonus":    "INT",
		"Wisdom bonus":          "WIS",
		"Charisma bonus":        "CHA",
		"Total character level": "TL",
		"Caster level":          "CL",
		"Round down":            "floor(VALUE_TO_BE_ROUNDED)",
		"Greater of two values": "max(VALUE1,VALUE2)",
		"Smaller of two values": "min(VALUE1,VALUE2)",
	}
	if rs == ability.DnD5e {
		values["Proficiency bonus"] = "Proficiency_Bonus"
	} else {
		values["Base attack bonus"] = "BAB"
	}
	return values
}
