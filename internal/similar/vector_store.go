package similar

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"
)

// VectorStore keeps ability description embeddings in pgvector.
type VectorStore struct {
	pool       *pgxpool.Pool
	dimensions int
}

// NewVectorStore creates a vector store on pool.
func NewVectorStore(pool *pgxpool.Pool, dimensions int) *VectorStore {
	return &VectorStore{pool: pool, dimensions: dimensions}
}

// Record is one embedded ability description.
type Record struct {
	Hash   string
	System string
	Key    string
	Name   string
	Source string
	Text   string
	Vector []float32
}

// Match is a similarity search hit.
type Match struct {
	System string
	Key    string
	Name   string
	Source string
	Text   string
	Score  float64
}

// EnsureSchema creates the pgvector extension and embedding table.
func (vs *VectorStore) EnsureSchema(ctx context.Context) error {
	_, err := vs.pool.Exec(ctx, fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;
		CREATE TABLE IF NOT EXISTS ability_embeddings (
			hash        TEXT PRIMARY KEY,
			system      TEXT NOT NULL,
			key         TEXT NOT NULL,
			name        TEXT NOT NULL,
			source_file TEXT NOT NULL,
			text        TEXT NOT NULL,
			embedding   vector(%d) NOT NULL
		);
	`, vs.dimensions))
	if err != nil {
		return fmt.Errorf("create embedding schema: %w", err)
	}
	return nil
}

// Known returns which of hashes are already stored.
func (vs *VectorStore) Known(ctx context.Context, hashes []string) (map[string]bool, error) {
	rows, err := vs.pool.Query(ctx, `SELECT hash FROM ability_embeddings WHERE hash = ANY($1)`, hashes)
	if err != nil {
		return nil, fmt.Errorf("query known embeddings: %w", err)
	}
	known, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect known embeddings: %w", err)
	}
	out := make(map[string]bool, len(known))
	for _, h := range known {
		out[h] = true
	}
	return out, nil
}

// Store upserts records.
func (vs *VectorStore) Store(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO ability_embeddings (hash, system, key, name, source_file, text, embedding)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (hash) DO UPDATE SET
				key = EXCLUDED.key,
				name = EXCLUDED.name,
				source_file = EXCLUDED.source_file
		`, r.Hash, r.System, r.Key, r.Name, r.Source, r.Text, pgvector.NewVector(r.Vector))
	}
	if err := vs.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert embeddings: %w", err)
	}

	log.Info().Int("count", len(records)).Msg("Stored embeddings")
	return nil
}

// Search finds the topK descriptions in system closest to queryVector by
// cosine similarity.
func (vs *VectorStore) Search(ctx context.Context, system string, queryVector []float32, topK int) ([]Match, error) {
	rows, err := vs.pool.Query(ctx, `
		SELECT system, key, name, source_file, text, 1 - (embedding <=> $1) AS similarity
		FROM ability_embeddings
		WHERE system = $2
		ORDER BY embedding <=> $1
		LIMIT $3
	`, pgvector.NewVector(queryVector), system, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	var results []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.System, &m.Key, &m.Name, &m.Source, &m.Text, &m.Score); err != nil {
			return nil, fmt.Errorf("scan vector match: %w", err)
		}
		results = append(results, m)
	}
	return results, rows.Err()
}
