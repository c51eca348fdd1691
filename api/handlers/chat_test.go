package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dokuchat/dokuchat/chatbot"
	"github.com/dokuchat/dokuchat/rag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubEmbedder struct{}

func (stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	return []float64{1, 0}, nil
}

type stubScorer struct{}

func (stubScorer) Score(ctx context.Context, pairs []rag.QueryPassagePair) ([]float64, error) {
	scores := make([]float64, len(pairs))
	for i := range scores {
		scores[i] = 0.9 - float64(i)*0.1
	}
	return scores, nil
}

type stubGenerator struct{}

func (stubGenerator) Generate(ctx context.Context, query, prompt string) (string, error) {
	if strings.Contains(prompt, "Saran Pertanyaan Lanjutan") {
		return `["Apa isi bab berikutnya?"]`, nil
	}
	return "Jawaban dari dokumen.", nil
}

func newTestService(t *testing.T) *chatbot.Service {
	t.Helper()
	logger := zap.NewNop()

	store := rag.NewInMemoryVectorStore(logger)
	require.NoError(t, store.AddDocuments(context.Background(), []rag.Document{
		{
			ID:        "1",
			Content:   "Bab 3 membahas prosedur kas kecil.",
			Embedding: []float64{1, 0},
			Metadata:  map[string]any{"source_file": "Manual.pdf", "page": 13},
		},
	}))

	engine := rag.NewEngine(store, stubEmbedder{}, stubScorer{}, logger)
	gen := stubGenerator{}
	return chatbot.NewService(engine, gen, chatbot.NewSuggester(gen, logger),
		chatbot.NewSourceFormatter(t.TempDir(), "http://localhost:5000", logger), nil, chatbot.Config{
			StandardTopK:    30,
			EnumerationTopK: 50,
			ComparisonTopK:  15,
			ScoreThreshold:  0.01,
			MaxHistoryTurns: 5,
		}, logger)
}

func postChat(t *testing.T, h *ChatHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.HandleChat(rec, req)
	return rec
}

func TestHandleChat(t *testing.T) {
	h := NewChatHandler(newTestService(t), zap.NewNop())

	rec := postChat(t, h, `{"query": "apa isi bab 3?", "history": []}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatbot.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "Jawaban dari dokumen.", resp.Answer)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "Manual.pdf", resp.Sources[0].SourceFile)
	assert.Equal(t, 13, resp.Sources[0].Page)
	assert.Equal(t, []string{"Apa isi bab berikutnya?"}, resp.Suggestions)
	require.Len(t, resp.UpdatedHistory, 2)
}

func TestHandleChatCarriesHistory(t *testing.T) {
	h := NewChatHandler(newTestService(t), zap.NewNop())

	body := `{"query": "lalu bagaimana?", "history": [{"role": "user", "content": "apa isi bab 3?"}, {"role": "assistant", "content": "Prosedur kas."}]}`
	rec := postChat(t, h, body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatbot.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.UpdatedHistory, 4)
	assert.Equal(t, "apa isi bab 3?", resp.UpdatedHistory[0].Content)
	assert.Equal(t, "lalu bagaimana?", resp.UpdatedHistory[2].Content)
}

func TestHandleChatMissingQuery(t *testing.T) {
	h := NewChatHandler(newTestService(t), zap.NewNop())

	rec := postChat(t, h, `{"history": []}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_REQUEST", resp.Error.Code)
}

func TestHandleChatInvalidJSON(t *testing.T) {
	h := NewChatHandler(newTestService(t), zap.NewNop())

	rec := postChat(t, h, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleChatMethodNotAllowed(t *testing.T) {
	h := NewChatHandler(newTestService(t), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	rec := httptest.NewRecorder()
	h.HandleChat(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleChatServiceUnavailable(t *testing.T) {
	svc := chatbot.NewService(nil, nil, nil, nil, nil, chatbot.Config{}, zap.NewNop())
	h := NewChatHandler(svc, zap.NewNop())

	rec := postChat(t, h, `{"query": "halo"}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "SERVICE_UNAVAILABLE", resp.Error.Code)
}

func TestHandleClearHistory(t *testing.T) {
	h := NewChatHandler(newTestService(t), zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/clear_history", nil)
	rec := httptest.NewRecorder()
	h.HandleClearHistory(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Conversation history cleared.", resp["status"])
}
