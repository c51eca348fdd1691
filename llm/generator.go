// Package llm provides the hosted answer generator client.
package llm

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
	"github.com/dokuchat/dokuchat/types"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Generator turns a prompt into answer text. The query accompanies the
// prompt for logging and tracing; the prompt is the full instruction.
type Generator interface {
	Generate(ctx context.Context, query, prompt string) (string, error)
}

// systemMessage anchors every generation request.
const systemMessage = "Anda adalah asisten cerdas yang menjawab berdasarkan dokumen yang diberikan."

// Config configures the Groq client. Any OpenAI-compatible chat-completions
// endpoint works via BaseURL.
type Config struct {
	BaseURL     string        `json:"base_url"`
	APIKey      string        `json:"api_key"`
	Model       string        `json:"model,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	Timeout     time.Duration `json:"timeout,omitempty"`
	// RequestsPerMinute throttles upstream calls. 0 disables the limiter.
	RequestsPerMinute int `json:"requests_per_minute,omitempty"`
}

// GroqClient implements Generator against the Groq chat-completions API.
type GroqClient struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewGroqClient creates a generator client.
func NewGroqClient(cfg Config, logger *zap.Logger) *GroqClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = "llama-3.3-70b-versatile"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.1
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.RequestsPerMinute)
	}

	return &GroqClient{
		cfg:     cfg,
		client:  tlsutil.SecureHTTPClient(cfg.Timeout),
		limiter: limiter,
		logger:  logger.With(zap.String("component", "groq_client")),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends the prompt to the model and returns the completion text.
func (c *GroqClient) Generate(ctx context.Context, query, prompt string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", types.NewError(types.ErrUnauthorized, "generator API key is not configured")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", types.NewError(types.ErrRateLimited, "generator rate limit wait aborted").WithCause(err)
		}
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemMessage},
			{Role: "user", Content: prompt},
		},
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/openai/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", types.NewError(types.ErrUpstreamError, "generator unreachable").
			WithCause(err).WithRetryable(true)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", mapHTTPError(resp.StatusCode, string(respBody))
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", types.NewError(types.ErrGeneratorFailed, "completion returned no choices")
	}

	answer := strings.TrimSpace(parsed.Choices[0].Message.Content)
	c.logger.Debug("completion generated",
		zap.String("model", c.cfg.Model),
		zap.String("query", truncateForLog(query, 50)),
		zap.Duration("duration", time.Since(start)))
	return answer, nil
}

func mapHTTPError(status int, msg string) *types.Error {
	code := types.ErrUpstreamError
	retryable := status >= 500

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		code = types.ErrUnauthorized
	case http.StatusTooManyRequests:
		code = types.ErrRateLimited
		retryable = true
	case http.StatusBadRequest:
		code = types.ErrInvalidRequest
	case http.StatusGatewayTimeout:
		code = types.ErrTimeout
	}

	return types.NewError(code, msg).
		WithHTTPStatus(status).
		WithRetryable(retryable)
}

func truncateForLog(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
