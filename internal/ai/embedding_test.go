package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmbeddingServer(t *testing.T, calls *[]int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body struct {
			Model string          `json:"model"`
			Input json.RawMessage `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "mini", body.Model)

		var inputs []string
		if err := json.Unmarshal(body.Input, &inputs); err != nil {
			var single string
			require.NoError(t, json.Unmarshal(body.Input, &single))
			inputs = []string{single}
		}
		*calls = append(*calls, len(inputs))

		type item struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		data := make([]item, len(inputs))
		// reversed on purpose: the client must reorder by index
		for i := range inputs {
			j := len(inputs) - 1 - i
			data[i] = item{Index: j, Embedding: []float32{float32(len(inputs[j])), 1}}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
	}))
}

func TestEmbedDocumentsBatchesAndKeepsOrder(t *testing.T) {
	var calls []int
	srv := newEmbeddingServer(t, &calls)
	defer srv.Close()

	embedder := NewEmbedder(NewOpenAICompatibleClient(0), EmbeddingConfig{
		BaseURL:   srv.URL + "/v1/",
		APIKey:    "secret",
		Model:     "mini",
		BatchSize: 2,
	})

	vectors, err := embedder.EmbedDocuments(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, float32(1), vectors[0][0])
	assert.Equal(t, float32(2), vectors[1][0])
	assert.Equal(t, float32(3), vectors[2][0])
	assert.Equal(t, []int{2, 1}, calls)
}

func TestEmbedQuery(t *testing.T) {
	var calls []int
	srv := newEmbeddingServer(t, &calls)
	defer srv.Close()

	embedder := NewEmbedder(NewOpenAICompatibleClient(0), EmbeddingConfig{BaseURL: srv.URL + "/v1", APIKey: "secret", Model: "mini"})
	vec, err := embedder.EmbedQuery(context.Background(), "  hello ")
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 1}, vec)

	_, err = embedder.EmbedQuery(context.Background(), "   ")
	require.Error(t, err)
}

func TestEmbedBatchPropagatesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	embedder := NewEmbedder(NewOpenAICompatibleClient(0), EmbeddingConfig{BaseURL: srv.URL})
	_, err := embedder.EmbedDocuments(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
