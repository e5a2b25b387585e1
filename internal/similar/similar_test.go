package similar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ability-lst/internal/ability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "embed-small", req.Model)
		assert.Equal(t, 3, req.Dimensions)

		// answer out of order
		resp := embeddingResponse{}
		for i := len(req.Input) - 1; i >= 0; i-- {
			resp.Data = append(resp.Data, embeddingData{Index: i, Embedding: []float32{float32(i), 0, 1}})
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := NewEmbeddingClient("secret", "embed-small", srv.URL, 3)
	vecs, err := c.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0, 0, 1}, {1, 0, 1}}, vecs)

	q, err := EmbedQuery(context.Background(), c, "x")
	require.NoError(t, err)
	assert.Len(t, q, 3)
}

func TestEmbeddingClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewEmbeddingClient("k", "m", srv.URL, 0).Embed(context.Background(), []string{"a"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "quota", apiErr.Body)
	assert.Contains(t, err.Error(), "429")
}

func TestEmbeddingClientRejectsBadIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(embeddingResponse{Data: []embeddingData{{Index: 5, Embedding: []float32{1}}}}))
	}))
	defer srv.Close()

	_, err := NewEmbeddingClient("k", "m", srv.URL+"/", 1).Embed(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

type fakeEmbedder struct{ calls [][]string }

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i]))}
	}
	return out, nil
}

func TestEmbedBatch(t *testing.T) {
	f := &fakeEmbedder{}
	vecs, err := EmbedBatch(context.Background(), f, []string{"a", "bb", "ccc"}, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}, {2}, {3}}, vecs)
	assert.Len(t, f.calls, 2)
}

func TestRecordsAndUnknown(t *testing.T) {
	a := ability.New("Dodge", ability.KindFeat, ability.DnD35e)
	a.Description = " +1 dodge bonus to AC. "
	b := ability.New("Blank", ability.KindFeat, ability.DnD35e)
	c := a.Clone()

	records := Records([]*ability.Ability{a, b, c}, ability.DnD35e, "core.lst")
	require.Len(t, records, 2)
	assert.Equal(t, "+1 dodge bonus to AC.", records[0].Text)
	assert.Equal(t, "35e", records[0].System)
	assert.Equal(t, records[0].Hash, records[1].Hash)

	assert.Len(t, Unknown(records, nil), 1)
	assert.Empty(t, Unknown(records, map[string]bool{records[0].Hash: true}))
}
