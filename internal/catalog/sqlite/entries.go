package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ability-lst/internal/ability"
	"ability-lst/internal/catalog"

	"github.com/rs/zerolog/log"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS abilities (
		system         TEXT NOT NULL,
		key_normalized TEXT NOT NULL,
		key            TEXT NOT NULL,
		name           TEXT NOT NULL,
		kind           TEXT NOT NULL,
		source_file    TEXT NOT NULL,
		line           TEXT NOT NULL,
		line_hash      TEXT NOT NULL,
		PRIMARY KEY (system, key_normalized)
	);
	CREATE INDEX IF NOT EXISTS abilities_name ON abilities (system, name COLLATE NOCASE);
	`
	if _, err := c.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating catalog schema: %w", err)
	}
	return nil
}

func (c *Client) Upsert(ctx context.Context, entries []catalog.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO abilities (system, key_normalized, key, name, kind, source_file, line, line_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (system, key_normalized) DO UPDATE SET
			key = excluded.key,
			name = excluded.name,
			kind = excluded.kind,
			source_file = excluded.source_file,
			line = excluded.line,
			line_hash = excluded.line_hash
		WHERE abilities.line_hash != excluded.line_hash OR abilities.source_file != excluded.source_file
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.ExecContext(ctx, e.System.Slug(), catalog.NormalizeKey(e.Key), e.Key, e.Name,
			e.Kind.String(), e.Source, e.Line, e.Hash)
		if err != nil {
			return fmt.Errorf("upsert %s: %w", e.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}

	log.Debug().Int("count", len(entries)).Msg("Upserted catalog entries")
	return nil
}

const selectColumns = `SELECT system, key, name, kind, source_file, line, line_hash FROM abilities`

func (c *Client) Lookup(ctx context.Context, rs ability.RuleSystem, key string) (*catalog.Entry, error) {
	row := c.db.QueryRowContext(ctx, selectColumns+` WHERE system = ? AND key_normalized = ?`,
		rs.Slug(), catalog.NormalizeKey(key))
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s in %s: %w", key, rs, catalog.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", key, err)
	}
	return e, nil
}

func (c *Client) Search(ctx context.Context, rs ability.RuleSystem, query string, limit int) ([]catalog.Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := c.db.QueryContext(ctx, selectColumns+`
		WHERE system = ? AND (name LIKE ? OR key LIKE ?)
		ORDER BY name COLLATE NOCASE
		LIMIT ?`,
		rs.Slug(), "%"+query+"%", "%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}
	defer rows.Close()

	var out []catalog.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (c *Client) Count(ctx context.Context, rs ability.RuleSystem) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM abilities WHERE system = ?`, rs.Slug()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count catalog: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*catalog.Entry, error) {
	var e catalog.Entry
	var system, kind string
	if err := s.Scan(&system, &e.Key, &e.Name, &kind, &e.Source, &e.Line, &e.Hash); err != nil {
		return nil, err
	}
	rs, err := ability.ParseRuleSystem(system)
	if err != nil {
		return nil, err
	}
	k, err := ability.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	e.System, e.Kind = rs, k
	return &e, nil
}
