package ability

import (
	"fmt"
	"slices"
	"strings"
)

// NoRace is the race value meaning "no race requirement".
const NoRace = "None"

// Kind is the category of an ability.
type Kind int

const (
	KindUnknown Kind = iota
	KindFeat
	KindTrait
	KindGMAward
)

func (k Kind) String() string {
	switch k {
	case KindFeat:
		return "Feat"
	case KindTrait:
		return "Trait"
	case KindGMAward:
		return "GM_Award"
	default:
		return "Unknown"
	}
}

// ParseKind accepts the names produced by Kind.String, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "feat":
		return KindFeat, nil
	case "trait":
		return KindTrait, nil
	case "gm_award", "gmaward", "gm award":
		return KindGMAward, nil
	}
	return KindUnknown, fmt.Errorf("unknown ability kind %q", s)
}

// RuleSystem selects the game rules an ability is written for.
type RuleSystem int

const (
	Pathfinder1e RuleSystem = iota
	DnD35e
	DnD5e
)

func (rs RuleSystem) String() string {
	switch rs {
	case DnD35e:
		return "D&D 3.5e"
	case DnD5e:
		return "D&D 5e"
	default:
		return "Pathfinder 1e"
	}
}

// Slug is the short identifier used in config files, flags and storage.
func (rs RuleSystem) Slug() string {
	switch rs {
	case DnD35e:
		return "35e"
	case DnD5e:
		return "5e"
	default:
		return "pf1e"
	}
}

// ParseRuleSystem accepts either the display name or the slug.
func ParseRuleSystem(s string) (RuleSystem, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pathfinder 1e", "pathfinder", "pf1e", "pf":
		return Pathfinder1e, nil
	case "d&d 3.5e", "3.5e", "35e", "dnd35e":
		return DnD35e, nil
	case "d&d 5e", "5e", "dnd5e":
		return DnD5e, nil
	}
	return Pathfinder1e, fmt.Errorf("unknown rule system %q", s)
}

// Stat indexes the six ability scores.
type Stat int

const (
	STR Stat = iota
	DEX
	CON
	INT
	WIS
	CHA
	NumStats
)

var statNames = [NumStats]string{"STR", "DEX", "CON", "INT", "WIS", "CHA"}

func (s Stat) String() string {
	if s < 0 || s >= NumStats {
		return "?"
	}
	return statNames[s]
}

// ParseStat maps a three letter score name to its Stat.
func ParseStat(s string) (Stat, bool) {
	i := slices.Index(statNames[:], strings.ToUpper(strings.TrimSpace(s)))
	if i < 0 {
		return 0, false
	}
	return Stat(i), true
}

// Ability is one feat, trait or GM award as stored in an ability .lst file.
// Tokens the codec does not model are kept, in order, in ExtraFields.
type Ability struct {
	Name string
	Key  string
	Kind Kind

	Subtypes []string

	Description           string
	NarrativePrerequisite string

	RequiredRace         string
	RequiredFeats        []string
	RequiredLevel        int
	RequiredAttackBonus  int
	Stats                [NumStats]int
	DisallowedAlignments AlignmentSet

	Repeatable bool
	Stacks     bool

	RuleSystem  RuleSystem
	ExtraFields []string
}

// New returns an ability whose key equals its name.
func New(name string, kind Kind, rs RuleSystem) *Ability {
	name = strings.TrimSpace(name)
	return &Ability{
		Name:         name,
		Key:          name,
		Kind:         kind,
		RequiredRace: NoRace,
		RuleSystem:   rs,
	}
}

// Same reports whether two abilities collide in a collection: their names or
// their keys match, ignoring case.
func (a *Ability) Same(other *Ability) bool {
	if a == nil || other == nil {
		return false
	}
	return strings.EqualFold(a.Name, other.Name) || strings.EqualFold(a.Key, other.Key)
}

// Clone returns a deep copy.
func (a *Ability) Clone() *Ability {
	c := *a
	c.Subtypes = slices.Clone(a.Subtypes)
	c.RequiredFeats = slices.Clone(a.RequiredFeats)
	c.ExtraFields = slices.Clone(a.ExtraFields)
	return &c
}

// HasRace reports whether a race requirement is set.
func (a *Ability) HasRace() bool {
	r := strings.TrimSpace(a.RequiredRace)
	return r != "" && r != NoRace
}

// PrimarySubtype is the first subtype, which names a trait's category.
func (a *Ability) PrimarySubtype() string {
	if len(a.Subtypes) == 0 {
		return ""
	}
	return a.Subtypes[0]
}

// IsRacialTrait reports whether the trait's category is tied to a race.
func (a *Ability) IsRacialTrait() bool {
	return a.Kind == KindTrait && strings.Contains(a.PrimarySubtype(), "Race")
}

// Validate checks that an ability is complete enough to be written for rs.
func (a *Ability) Validate(rs RuleSystem) error {
	switch {
	case strings.TrimSpace(a.Name) == "":
		return fmt.Errorf("name: %w", ErrIncomplete)
	case strings.TrimSpace(a.Key) == "":
		return fmt.Errorf("key: %w", ErrIncomplete)
	case a.Kind == KindUnknown:
		return fmt.Errorf("kind: %w", ErrIncomplete)
	case strings.TrimSpace(a.Description) == "":
		return fmt.Errorf("description: %w", ErrIncomplete)
	case a.Kind == KindTrait && rs == DnD5e:
		return fmt.Errorf("traits in %s: %w", rs, ErrUnsupported)
	case a.Kind == KindTrait && rs == Pathfinder1e && len(a.Subtypes) == 0:
		return fmt.Errorf("trait subtype: %w", ErrIncomplete)
	}
	for s, v := range a.Stats {
		if v < 0 {
			return fmt.Errorf("%s minimum %d: %w", Stat(s), v, ErrMalformedField)
		}
	}
	if a.RequiredLevel < 0 || a.RequiredAttackBonus < 0 {
		return fmt.Errorf("negative minimum: %w", ErrMalformedField)
	}
	return nil
}
