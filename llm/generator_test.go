package llm

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

func TestGroqClientGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/openai/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama-3.3-70b-versatile", req.Model)
		assert.Equal(t, 0.1, req.Temperature)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, systemMessage, req.Messages[0].Content)
		assert.Equal(t, "prompt lengkap", req.Messages[1].Content)

		w.Write([]byte(`{"choices": [{"message": {"content": "  Jawaban model.  "}}]}`))
	}))
	defer server.Close()

	client := NewGroqClient(Config{BaseURL: server.URL, APIKey: "test-key"}, zap.NewNop())

	answer, err := client.Generate(context.Background(), "pertanyaan", "prompt lengkap")
	require.NoError(t, err)
	assert.Equal(t, "Jawaban model.", answer)
}

func TestGroqClientMissingAPIKey(t *testing.T) {
	client := NewGroqClient(Config{}, zap.NewNop())

	_, err := client.Generate(context.Background(), "q", "p")
	require.Error(t, err)

	var apiErr *types.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, types.ErrUnauthorized, apiErr.Code)
}

func TestGroqClientRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`rate limit exceeded`))
	}))
	defer server.Close()

	client := NewGroqClient(Config{BaseURL: server.URL, APIKey: "k"}, zap.NewNop())

	_, err := client.Generate(context.Background(), "q", "p")
	require.Error(t, err)

	var apiErr *types.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, types.ErrRateLimited, apiErr.Code)
	assert.True(t, apiErr.Retryable)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.HTTPStatus)
}

func TestGroqClientNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := NewGroqClient(Config{BaseURL: server.URL, APIKey: "k"}, zap.NewNop())

	_, err := client.Generate(context.Background(), "q", "p")
	require.Error(t, err)

	var apiErr *types.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, types.ErrGeneratorFailed, apiErr.Code)
}

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		status    int
		code      types.ErrorCode
		retryable bool
	}{
		{http.StatusUnauthorized, types.ErrUnauthorized, false},
		{http.StatusTooManyRequests, types.ErrRateLimited, true},
		{http.StatusBadRequest, types.ErrInvalidRequest, false},
		{http.StatusGatewayTimeout, types.ErrTimeout, true},
		{http.StatusInternalServerError, types.ErrUpstreamError, true},
	}

	for _, tt := range tests {
		err := mapHTTPError(tt.status, "msg")
		assert.Equal(t, tt.code, err.Code, "status %d", tt.status)
		assert.Equal(t, tt.retryable, err.Retryable, "status %d", tt.status)
	}
}
