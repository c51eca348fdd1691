package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/dokuchat/dokuchat/api"
	"go.uber.org/zap"
)

// ReadinessChecker reports whether the pipeline can serve queries.
type ReadinessChecker interface {
	Ready(ctx context.Context) (int, error)
}

// HealthHandler serves GET /.
type HealthHandler struct {
	checker ReadinessChecker
	logger  *zap.Logger
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(checker ReadinessChecker, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{
		checker: checker,
		logger:  logger.With(zap.String("component", "health_handler")),
	}
}

// HandleIndex reports service health. The store probe decides healthy versus
// unhealthy; the endpoint itself always answers 200 so clients can read the
// status body.
func (h *HealthHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := api.HealthResponse{
		Message: "RAG Chatbot API is running!",
		Status:  "healthy",
	}

	count, err := h.checker.Ready(ctx)
	if err != nil {
		h.logger.Warn("readiness probe failed", zap.Error(err))
		resp.Status = "unhealthy"
	} else {
		resp.Documents = count
	}

	WriteJSON(w, http.StatusOK, resp)
}
