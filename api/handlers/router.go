package handlers

import (
	"net/http"

	"github.com/dokuchat/dokuchat/chatbot"
	"github.com/dokuchat/dokuchat/internal/metrics"
	"github.com/dokuchat/dokuchat/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterConfig holds the routing dependencies.
type RouterConfig struct {
	Service        *chatbot.Service
	Collector      *metrics.Collector
	OutputDir      string
	AllowedOrigins []string
	Logger         *zap.Logger
}

// NewRouter assembles the HTTP surface with the middleware chain applied.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	chat := NewChatHandler(cfg.Service, logger)
	health := NewHealthHandler(cfg.Service, logger)
	images := NewImageHandler(cfg.OutputDir, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			WriteErrorMessage(w, r, http.StatusNotFound, types.ErrInvalidRequest, "not found", logger)
			return
		}
		health.HandleIndex(w, r)
	})
	mux.HandleFunc("/chat", chat.HandleChat)
	mux.HandleFunc("/clear_history", chat.HandleClearHistory)
	mux.HandleFunc("/source_image/", images.HandleImage)
	mux.Handle("/metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = ObservabilityMiddleware(cfg.Collector, logger, handler)
	handler = CORSMiddleware(cfg.AllowedOrigins, handler)
	handler = RequestIDMiddleware(handler)
	return handler
}
