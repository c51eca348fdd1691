package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dokuchat/dokuchat/internal/tlsutil"
	"go.uber.org/zap"
)

// QueryPassagePair is one (query, passage) input to the cross-encoder.
type QueryPassagePair struct {
	Query   string `json:"query"`
	Passage string `json:"passage"`
}

// CrossEncoderScorer scores (query, passage) pairs jointly. Implementations
// are stateless and safe for concurrent use.
type CrossEncoderScorer interface {
	Score(ctx context.Context, pairs []QueryPassagePair) ([]float64, error)
}

// CrossEncoderConfig configures the HTTP cross-encoder client.
type CrossEncoderConfig struct {
	BaseURL string        `json:"base_url"`
	APIKey  string        `json:"api_key,omitempty"`
	Model   string        `json:"model,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty"`
}

// HTTPCrossEncoder calls a cross-encoder model server over HTTP.
type HTTPCrossEncoder struct {
	cfg    CrossEncoderConfig
	client *http.Client
	logger *zap.Logger
}

// NewHTTPCrossEncoder creates a cross-encoder client.
func NewHTTPCrossEncoder(cfg CrossEncoderConfig, logger *zap.Logger) *HTTPCrossEncoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Model == "" {
		cfg.Model = "cross-encoder/ms-marco-MiniLM-L-6-v2"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &HTTPCrossEncoder{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(cfg.Timeout),
		logger: logger.With(zap.String("component", "cross_encoder")),
	}
}

type rerankRequest struct {
	Model string      `json:"model"`
	Pairs [][2]string `json:"pairs"`
}

type rerankResponse struct {
	Scores []float64 `json:"scores"`
}

// Score sends all pairs in one batch and returns their relevance scores.
func (e *HTTPCrossEncoder) Score(ctx context.Context, pairs []QueryPassagePair) ([]float64, error) {
	if len(pairs) == 0 {
		return []float64{}, nil
	}

	body := rerankRequest{
		Model: e.cfg.Model,
		Pairs: make([][2]string, len(pairs)),
	}
	for i, p := range pairs {
		body.Pairs[i] = [2]string{p.Query, p.Passage}
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"/v1/rerank", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rerank response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("rerank request failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var parsed rerankResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}
	if len(parsed.Scores) != len(pairs) {
		return nil, fmt.Errorf("rerank score count mismatch: got=%d want=%d", len(parsed.Scores), len(pairs))
	}

	return parsed.Scores, nil
}
