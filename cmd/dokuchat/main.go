// Command dokuchat runs the document Q&A API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dokuchat/dokuchat/api/handlers"
	"github.com/dokuchat/dokuchat/chatbot"
	"github.com/dokuchat/dokuchat/config"
	"github.com/dokuchat/dokuchat/embedding"
	"github.com/dokuchat/dokuchat/internal/metrics"
	"github.com/dokuchat/dokuchat/internal/server"
	"github.com/dokuchat/dokuchat/llm"
	"github.com/dokuchat/dokuchat/rag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.NewLoader().
		WithConfigPath(*configPath).
		WithValidator(func(c *config.Config) error { return c.Validate() }).
		Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := buildLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting dokuchat",
		zap.String("addr", cfg.Server.Addr),
		zap.String("collection", cfg.Milvus.Collection))

	collector := metrics.NewCollector("dokuchat", logger)

	store := rag.NewMilvusStore(rag.MilvusConfig{
		BaseURL:    cfg.Milvus.BaseURL,
		Token:      cfg.Milvus.Token,
		Username:   cfg.Milvus.Username,
		Password:   cfg.Milvus.Password,
		Database:   cfg.Milvus.Database,
		Collection: cfg.Milvus.Collection,
		MetricType: cfg.Milvus.MetricType,
		Timeout:    cfg.Milvus.Timeout,
	}, logger)

	embedder := embedding.NewClient(embedding.Config{
		BaseURL: cfg.Embedding.BaseURL,
		APIKey:  cfg.Embedding.APIKey,
		Model:   cfg.Embedding.Model,
		Timeout: cfg.Embedding.Timeout,
	}, logger)

	scorer := rag.NewHTTPCrossEncoder(rag.CrossEncoderConfig{
		BaseURL: cfg.Reranker.BaseURL,
		APIKey:  cfg.Reranker.APIKey,
		Model:   cfg.Reranker.Model,
		Timeout: cfg.Reranker.Timeout,
	}, logger)

	generator := llm.NewGroqClient(llm.Config{
		BaseURL:           cfg.LLM.BaseURL,
		APIKey:            cfg.LLM.APIKey,
		Model:             cfg.LLM.Model,
		Temperature:       cfg.LLM.Temperature,
		Timeout:           cfg.LLM.Timeout,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
	}, logger)

	engine := rag.NewEngine(store, embedder, scorer, logger)
	suggester := chatbot.NewSuggester(generator, logger)
	formatter := chatbot.NewSourceFormatter(cfg.Retrieval.OutputDir, cfg.Server.BaseURL, logger)

	service := chatbot.NewService(engine, generator, suggester, formatter, collector, chatbot.Config{
		StandardTopK:    cfg.Retrieval.StandardTopK,
		EnumerationTopK: cfg.Retrieval.EnumerationTopK,
		ComparisonTopK:  cfg.Retrieval.ComparisonTopK,
		ScoreThreshold:  cfg.Retrieval.ScoreThreshold,
		MaxHistoryTurns: cfg.Retrieval.MaxHistoryTurns,
		Model:           cfg.LLM.Model,
	}, logger)

	// Probe the store at startup. A failure is logged, not fatal: the server
	// comes up unhealthy and recovers once the store does.
	probeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if count, err := service.Ready(probeCtx); err != nil {
		logger.Warn("vector store probe failed, starting unhealthy", zap.Error(err))
	} else {
		logger.Info("vector store reachable", zap.Int("documents", count))
	}
	cancel()

	router := handlers.NewRouter(handlers.RouterConfig{
		Service:        service,
		Collector:      collector,
		OutputDir:      cfg.Retrieval.OutputDir,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
	})

	manager := server.NewManager(router, server.Config{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger)

	if err := manager.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
	manager.WaitForShutdown()
}

func buildLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
