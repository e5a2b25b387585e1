package similar

import (
	"context"
	"fmt"
	"strings"

	"ability-lst/internal/ability"
	"ability-lst/internal/textutil"

	"github.com/rs/zerolog/log"
)

// Records builds one unembedded record per ability with a description.
func Records(abilities []*ability.Ability, rs ability.RuleSystem, source string) []Record {
	var out []Record
	for _, a := range abilities {
		text := strings.TrimSpace(a.Description)
		if text == "" {
			continue
		}
		out = append(out, Record{
			Hash:   textutil.Hash(rs.Slug() + "\x00" + a.Key + "\x00" + text),
			System: rs.Slug(),
			Key:    a.Key,
			Name:   a.Name,
			Source: source,
			Text:   text,
		})
	}
	return out
}

// Index embeds ability descriptions and searches them.
type Index struct {
	embedder  Embedder
	store     *VectorStore
	batchSize int
}

func NewIndex(e Embedder, store *VectorStore, batchSize int) *Index {
	return &Index{embedder: e, store: store, batchSize: batchSize}
}

// Add embeds and stores the records not stored yet. It returns how many
// were embedded.
func (ix *Index) Add(ctx context.Context, records []Record) (int, error) {
	hashes := make([]string, len(records))
	for i, r := range records {
		hashes[i] = r.Hash
	}
	known, err := ix.store.Known(ctx, hashes)
	if err != nil {
		return 0, err
	}
	fresh := Unknown(records, known)
	if len(fresh) == 0 {
		log.Info().Int("records", len(records)).Msg("All descriptions already embedded")
		return 0, nil
	}

	texts := make([]string, len(fresh))
	for i, r := range fresh {
		texts[i] = r.Text
	}
	vectors, err := EmbedBatch(ctx, ix.embedder, texts, ix.batchSize)
	if err != nil {
		return 0, err
	}
	for i := range fresh {
		fresh[i].Vector = vectors[i]
	}
	if err := ix.store.Store(ctx, fresh); err != nil {
		return 0, err
	}
	return len(fresh), nil
}

// Unknown returns the records whose hash is not in known, without
// duplicates.
func Unknown(records []Record, known map[string]bool) []Record {
	seen := make(map[string]bool, len(records))
	var out []Record
	for _, r := range records {
		if known[r.Hash] || seen[r.Hash] {
			continue
		}
		seen[r.Hash] = true
		out = append(out, r)
	}
	return out
}

// Similar returns the stored descriptions in rs closest to text.
func (ix *Index) Similar(ctx context.Context, rs ability.RuleSystem, text string, topK int) ([]Match, error) {
	if topK <= 0 {
		topK = 5
	}
	vec, err := EmbedQuery(ctx, ix.embedder, text)
	if err != nil {
		return nil, err
	}
	matches, err := ix.store.Search(ctx, rs.Slug(), vec, topK)
	if err != nil {
		return nil, fmt.Errorf("similar to %q: %w", textutil.Truncate(text, 40), err)
	}
	return matches, nil
}
