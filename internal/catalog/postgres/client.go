package postgres

import (
	"context"
	"errors"
	"fmt"

	"ability-lst/internal/ability"
	"ability-lst/internal/catalog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var _ catalog.Store = (*Client)(nil)

type Client struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Client, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Client{pool: pool}, nil
}

// Pool exposes the connection pool for other stores sharing the database.
func (c *Client) Pool() *pgxpool.Pool { return c.pool }

func (c *Client) Close(ctx context.Context) error {
	c.pool.Close()
	return nil
}

func (c *Client) EnsureSchema(ctx context.Context) error {
	_, err := c.pool.Exec(ctx, `
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
		CREATE INDEX IF NOT EXISTS abilities_name ON abilities (system, lower(name));
	`)
	if err != nil {
		return fmt.Errorf("creating catalog schema: %w", err)
	}
	return nil
}

func (c *Client) Upsert(ctx context.Context, entries []catalog.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`
			INSERT INTO abilities (system, key_normalized, key, name, kind, source_file, line, line_hash)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (system, key_normalized) DO UPDATE SET
				key = EXCLUDED.key,
				name = EXCLUDED.name,
				kind = EXCLUDED.kind,
				source_file = EXCLUDED.source_file,
				line = EXCLUDED.line,
				line_hash = EXCLUDED.line_hash
		`, e.System.Slug(), catalog.NormalizeKey(e.Key), e.Key, e.Name, e.Kind.String(), e.Source, e.Line, e.Hash)
	}
	if err := c.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert catalog batch: %w", err)
	}

	log.Debug().Int("count", len(entries)).Msg("Upserted catalog entries")
	return nil
}

const selectColumns = `SELECT system, key, name, kind, source_file, line, line_hash FROM abilities`

func (c *Client) Lookup(ctx context.Context, rs ability.RuleSystem, key string) (*catalog.Entry, error) {
	row := c.pool.QueryRow(ctx, selectColumns+` WHERE system = $1 AND key_normalized = $2`,
		rs.Slug(), catalog.NormalizeKey(key))
	e, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
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
	rows, err := c.pool.Query(ctx, selectColumns+`
		WHERE system = $1 AND (name ILIKE $2 OR key ILIKE $2)
		ORDER BY lower(name)
		LIMIT $3`,
		rs.Slug(), "%"+query+"%", limit)
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
	if err := c.pool.QueryRow(ctx, `SELECT COUNT(*) FROM abilities WHERE system = $1`, rs.Slug()).Scan(&n); err != nil {
		return 0, fmt.Errorf("count catalog: %w", err)
	}
	return n, nil
}

func scanEntry(row pgx.Row) (*catalog.Entry, error) {
	var e catalog.Entry
	var system, kind string
	if err := row.Scan(&system, &e.Key, &e.Name, &kind, &e.Source, &e.Line, &e.Hash); err != nil {
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
