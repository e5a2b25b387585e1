// Package vocab holds the per rule system word lists: races, subtypes, the
// ability kinds a system supports and how its .pcc manifests are labelled.
package vocab

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"ability-lst/internal/ability"

	"gopkg.in/yaml.v3"
)

//go:embed systems.yaml
var defaultVocabulary []byte

type Vocabulary struct {
	Version int      `yaml:"version"`
	Systems []System `yaml:"systems"`

	index map[string]*System
}

type System struct {
	Slug        string              `yaml:"slug"`
	GameMode    string              `yaml:"gamemode"`
	PCCType     string              `yaml:"pcc_type"`
	Kinds       []string            `yaml:"kinds"`
	AttackBonus bool                `yaml:"attack_bonus"`
	Races       []string            `yaml:"races"`
	Subtypes    map[string][]string `yaml:"subtypes"`
}

// Default returns the built-in vocabulary.
func Default() *Vocabulary {
	v, err := Parse(defaultVocabulary)
	if err != nil {
		panic(fmt.Sprintf("embedded vocabulary: %v", err))
	}
	return v
}

// LoadFile reads a vocabulary from a YAML file.
func LoadFile(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading vocabulary: %w", err)
	}
	v, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading vocabulary: %w", err)
	}
	return v, nil
}

// Parse decodes and validates a vocabulary document.
func Parse(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	if v.Version != 1 {
		return nil, fmt.Errorf("unsupported version: %d", v.Version)
	}
	v.index = make(map[string]*System, len(v.Systems))
	for i := range v.Systems {
		s := &v.Systems[i]
		if _, err := ability.ParseRuleSystem(s.Slug); err != nil {
			return nil, fmt.Errorf("system %d: %w", i, err)
		}
		for _, k := range s.Kinds {
			if _, err := ability.ParseKind(k); err != nil {
				return nil, fmt.Errorf("system %s: %w", s.Slug, err)
			}
		}
		v.index[s.Slug] = s
	}
	return &v, nil
}

// System returns the entry for rs.
func (v *Vocabulary) System(rs ability.RuleSystem) (*System, error) {
	s, ok := v.index[rs.Slug()]
	if !ok {
		return nil, fmt.Errorf("no vocabulary for %s", rs)
	}
	return s, nil
}

// RaceChoices lists the selectable races with "None" first.
func (s *System) RaceChoices() []string {
	return append([]string{ability.NoRace}, s.Races...)
}

// SubtypeChoices lists the suggested subtypes for a kind.
func (s *System) SubtypeChoices(k ability.Kind) []string {
	return s.Subtypes[k.String()]
}

// Supports reports whether abilities of kind k can be written for the system.
func (s *System) Supports(k ability.Kind) bool {
	return slices.Contains(s.Kinds, k.String())
}

// Check validates a against the system's vocabulary on top of
// Ability.Validate. Subtypes and races outside the lists are allowed; PCGen
// data defines many more than the suggestions here.
func (v *Vocabulary) Check(a *ability.Ability, rs ability.RuleSystem) error {
	if err := a.Validate(rs); err != nil {
		return err
	}
	s, err := v.System(rs)
	if err != nil {
		return err
	}
	if !s.Supports(a.Kind) {
		return fmt.Errorf("%s in %s: %w", a.Kind, rs, ability.ErrUnsupported)
	}
	if a.RequiredAttackBonus > 0 && !s.AttackBonus {
		return fmt.Errorf("attack bonus prerequisite in %s: %w", rs, ability.ErrUnsupported)
	}
	return nil
}

// KnownRace reports whether race is in the system's list, ignoring case.
func (s *System) KnownRace(race string) bool {
	return slices.ContainsFunc(s.Races, func(r string) bool { return strings.EqualFold(r, race) })
}

// ByGameMode maps a .pcc GAMEMODE value to its rule system. A manifest may
// list several modes separated by "|"; the first known one wins.
func (v *Vocabulary) ByGameMode(gameMode string) (ability.RuleSystem, bool) {
	for _, gm := range strings.Split(gameMode, "|") {
		gm = strings.TrimSpace(gm)
		for _, s := range v.Systems {
			if strings.EqualFold(s.GameMode, gm) {
				rs, err := ability.ParseRuleSystem(s.Slug)
				return rs, err == nil
			}
		}
	}
	return ability.Pathfinder1e, false
}
