// Package catalog indexes abilities from PCGen data so MODs can target
// abilities defined in other sources.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ability-lst/internal/ability"
	"ability-lst/internal/parser"
	"ability-lst/internal/render"
	"ability-lst/internal/textutil"
)

var ErrNotFound = errors.New("ability not in catalog")

// Entry is one indexed ability. Line is the ability rendered for System;
// Ability parses it back.
type Entry struct {
	System ability.RuleSystem
	Key    string
	Name   string
	Kind   ability.Kind
	Source string
	Line   string
	Hash   string
}

// NewEntry renders a for rs and records where it came from.
func NewEntry(a *ability.Ability, rs ability.RuleSystem, source string) Entry {
	line := render.Render(a, rs)
	return Entry{
		System: rs,
		Key:    a.Key,
		Name:   a.Name,
		Kind:   a.Kind,
		Source: source,
		Line:   line,
		Hash:   textutil.Hash(line),
	}
}

// Ability parses the stored line.
func (e *Entry) Ability() (*ability.Ability, error) {
	a, err := parser.ParseLine(e.Line, e.System)
	if err != nil {
		return nil, fmt.Errorf("parse catalog entry %q: %w", e.Key, err)
	}
	if a == nil {
		return nil, fmt.Errorf("catalog entry %q is not an ability: %w", e.Key, ability.ErrMalformedField)
	}
	return a, nil
}

// NormalizeKey is the form keys are matched in.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Store persists catalog entries.
type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	Upsert(ctx context.Context, entries []Entry) error
	Lookup(ctx context.Context, rs ability.RuleSystem, key string) (*Entry, error)
	Search(ctx context.Context, rs ability.RuleSystem, query string, limit int) ([]Entry, error)
	Count(ctx context.Context, rs ability.RuleSystem) (int, error)
}
