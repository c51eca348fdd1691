package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dokuchat/dokuchat/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClientEmbedQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/embeddings", r.URL.Path)

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"apa isi bab 3?"}, req.Input)
		assert.Equal(t, "paraphrase-multilingual-MiniLM-L12-v2", req.Model)

		w.Write([]byte(`{"data": [{"index": 0, "embedding": [0.1, 0.2, 0.3]}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, zap.NewNop())

	vector, err := client.EmbedQuery(context.Background(), "apa isi bab 3?")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, vector)
}

func TestClientEmbedQueryUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, zap.NewNop())

	_, err := client.EmbedQuery(context.Background(), "q")
	require.Error(t, err)

	var apiErr *types.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, types.ErrUpstreamError, apiErr.Code)
	assert.True(t, apiErr.Retryable)
}

func TestClientEmbedQueryNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, zap.NewNop())

	_, err := client.EmbedQuery(context.Background(), "q")
	assert.Error(t, err)
}
