// Package config provides unified configuration loading for dokuchat.
// Precedence: defaults, then YAML file, then environment variables.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the complete service configuration.
type Config struct {
	// Server HTTP server settings
	Server ServerConfig `yaml:"server" env:"SERVER"`

	// Milvus vector store settings (Zilliz Cloud compatible)
	Milvus MilvusConfig `yaml:"milvus" env:"MILVUS"`

	// Embedding model server settings
	Embedding EmbeddingConfig `yaml:"embedding" env:"EMBEDDING"`

	// Reranker cross-encoder server settings
	Reranker RerankerConfig `yaml:"reranker" env:"RERANKER"`

	// LLM answer generator settings
	LLM LLMConfig `yaml:"llm" env:"LLM"`

	// Retrieval pipeline tuning
	Retrieval RetrievalConfig `yaml:"retrieval" env:"RETRIEVAL"`

	// Log logging settings
	Log LogConfig `yaml:"log" env:"LOG"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// BaseURL is the externally visible URL used when building source image links.
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// AllowedOrigins for CORS, comma separated in env form.
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
}

// MilvusConfig configures the Milvus / Zilliz Cloud connection.
type MilvusConfig struct {
	BaseURL    string        `yaml:"base_url" env:"BASE_URL"`
	Token      string        `yaml:"token" env:"TOKEN"`
	Username   string        `yaml:"username" env:"USERNAME"`
	Password   string        `yaml:"password" env:"PASSWORD"`
	Database   string        `yaml:"database" env:"DATABASE"`
	Collection string        `yaml:"collection" env:"COLLECTION"`
	// MetricType is the distance metric of the collection index (L2, IP, COSINE).
	MetricType string        `yaml:"metric_type" env:"METRIC_TYPE"`
	Timeout    time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// EmbeddingConfig configures the embedding model server.
type EmbeddingConfig struct {
	BaseURL string        `yaml:"base_url" env:"BASE_URL"`
	APIKey  string        `yaml:"api_key" env:"API_KEY"`
	Model   string        `yaml:"model" env:"MODEL"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// RerankerConfig configures the cross-encoder scoring server.
type RerankerConfig struct {
	BaseURL string        `yaml:"base_url" env:"BASE_URL"`
	APIKey  string        `yaml:"api_key" env:"API_KEY"`
	Model   string        `yaml:"model" env:"MODEL"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// LLMConfig configures the hosted answer generator.
type LLMConfig struct {
	BaseURL     string        `yaml:"base_url" env:"BASE_URL"`
	APIKey      string        `yaml:"api_key" env:"API_KEY"`
	Model       string        `yaml:"model" env:"MODEL"`
	Temperature float64       `yaml:"temperature" env:"TEMPERATURE"`
	Timeout     time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// RequestsPerMinute throttles upstream calls. 0 disables the limiter.
	RequestsPerMinute int `yaml:"requests_per_minute" env:"REQUESTS_PER_MINUTE"`
}

// RetrievalConfig tunes the retrieval and fusion pipeline.
type RetrievalConfig struct {
	// StandardTopK candidates requested for standard queries.
	StandardTopK int `yaml:"standard_top_k" env:"STANDARD_TOP_K"`
	// EnumerationTopK candidates requested for enumeration queries.
	EnumerationTopK int `yaml:"enumeration_top_k" env:"ENUMERATION_TOP_K"`
	// ComparisonTopK candidates requested per comparison entity.
	ComparisonTopK int `yaml:"comparison_top_k" env:"COMPARISON_TOP_K"`
	// ScoreThreshold admits ranks 2-5 into standard context.
	ScoreThreshold float64 `yaml:"score_threshold" env:"SCORE_THRESHOLD"`
	// MaxHistoryTurns bounds the rendered conversation window.
	MaxHistoryTurns int `yaml:"max_history_turns" env:"MAX_HISTORY_TURNS"`
	// OutputDir is the root of the extracted document layout (page images).
	OutputDir string `yaml:"output_dir" env:"OUTPUT_DIR"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// DefaultConfig returns the configuration defaults. Pipeline constants mirror
// the production corpus tuning.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":5000",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    120 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			BaseURL:         "http://localhost:5000",
			AllowedOrigins:  []string{"*"},
		},
		Milvus: MilvusConfig{
			BaseURL:    "http://localhost:19530",
			Database:   "default",
			Collection: "documents",
			MetricType: "L2",
			Timeout:    30 * time.Second,
		},
		Embedding: EmbeddingConfig{
			Model:   "paraphrase-multilingual-MiniLM-L12-v2",
			Timeout: 30 * time.Second,
		},
		Reranker: RerankerConfig{
			Model:   "cross-encoder/ms-marco-MiniLM-L-6-v2",
			Timeout: 30 * time.Second,
		},
		LLM: LLMConfig{
			BaseURL:           "https://api.groq.com",
			Model:             "llama-3.3-70b-versatile",
			Temperature:       0.1,
			Timeout:           60 * time.Second,
			RequestsPerMinute: 30,
		},
		Retrieval: RetrievalConfig{
			StandardTopK:    30,
			EnumerationTopK: 50,
			ComparisonTopK:  15,
			ScoreThreshold:  0.01,
			MaxHistoryTurns: 5,
			OutputDir:       "output",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Addr == "" {
		errs = append(errs, "server addr is required")
	}
	if c.Milvus.Collection == "" {
		errs = append(errs, "milvus collection is required")
	}
	if c.Retrieval.StandardTopK <= 0 || c.Retrieval.EnumerationTopK <= 0 || c.Retrieval.ComparisonTopK <= 0 {
		errs = append(errs, "retrieval top_k values must be positive")
	}
	if c.Retrieval.MaxHistoryTurns <= 0 {
		errs = append(errs, "max_history_turns must be positive")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, "llm temperature must be between 0 and 2")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
