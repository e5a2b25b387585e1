// Package similar finds homebrew abilities whose descriptions resemble a
// given text, using embeddings stored in pgvector.
package similar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ability-lst/internal/worker"

	"github.com/rs/zerolog/log"
)

// Embedder turns texts into vectors, one per text and in the same order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// APIError is a non-200 answer from the embeddings endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("embeddings endpoint returned %d: %s", e.StatusCode, e.Body)
}

// EmbeddingClient talks to an OpenAI-compatible /embeddings endpoint.
type EmbeddingClient struct {
	endpoint string
	apiKey   string
	model    string
	dims     int
	http     *http.Client
}

var _ Embedder = (*EmbeddingClient)(nil)

// NewEmbeddingClient returns a client for baseURL, e.g.
// https://api.openai.com/v1. dims of zero asks for 1024-dimensional vectors.
func NewEmbeddingClient(apiKey, model, baseURL string, dims int) *EmbeddingClient {
	if dims <= 0 {
		dims = 1024
	}
	return &EmbeddingClient{
		endpoint: strings.TrimSuffix(baseURL, "/") + "/embeddings",
		apiKey:   apiKey,
		model:    model,
		dims:     dims,
		http:     &http.Client{Timeout: time.Minute},
	}
}

type embeddingRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingData struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type embeddingResponse struct {
	Data  []embeddingData `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Embed implements Embedder. The endpoint may answer in any order; vectors
// are placed by their index.
func (c *EmbeddingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(embeddingRequest{Input: texts, Model: c.model, Dimensions: c.dims}); err != nil {
		return nil, fmt.Errorf("encode embedding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("build embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call embeddings endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	var out embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}

	vectors := make([][]float32, len(texts))
	for _, d := range out.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding index %d out of range for %d texts", d.Index, len(texts))
		}
		vectors[d.Index] = d.Embedding
	}
	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("no embedding for text %d", i)
		}
	}

	log.Debug().Int("texts", len(texts)).Int("tokens", out.Usage.TotalTokens).Msg("Embedded descriptions")
	return vectors, nil
}

// EmbedBatch embeds texts batchSize at a time, keeping their order.
func EmbedBatch(ctx context.Context, e Embedder, texts []string, batchSize int) ([][]float32, error) {
	if batchSize <= 0 {
		batchSize = 32
	}
	vectors := make([][]float32, 0, len(texts))
	batches := worker.Batch(texts, batchSize)
	for n, batch := range batches {
		got, err := e.Embed(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("embed batch %d of %d: %w", n+1, len(batches), err)
		}
		vectors = append(vectors, got...)
		log.Info().Int("done", len(vectors)).Int("total", len(texts)).Msg("Embedding descriptions")
	}
	return vectors, nil
}

// EmbedQuery embeds one search text.
func EmbedQuery(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return nil, errors.New("embed query: empty answer")
	}
	return vectors[0], nil
}
