package handlers

import (
	"errors"
	"net/http"

	"github.com/dokuchat/dokuchat/api"
	"github.com/dokuchat/dokuchat/chatbot"
	"github.com/dokuchat/dokuchat/types"
	"go.uber.org/zap"
)

// ChatHandler serves the chat pipeline endpoints.
type ChatHandler struct {
	service *chatbot.Service
	logger  *zap.Logger
}

// NewChatHandler creates the chat handler.
func NewChatHandler(service *chatbot.Service, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{
		service: service,
		logger:  logger.With(zap.String("component", "chat_handler")),
	}
}

// HandleChat handles POST /chat: runs the pipeline for one query and returns
// the answer, sources, suggestions, and the updated history.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteErrorMessage(w, r, http.StatusMethodNotAllowed, types.ErrInvalidRequest, "method not allowed", h.logger)
		return
	}

	var req api.ChatRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if req.Query == "" {
		WriteErrorMessage(w, r, http.StatusBadRequest, types.ErrInvalidRequest, "missing 'query' field in request", h.logger)
		return
	}

	resp, err := h.service.Respond(r.Context(), req.Query, req.History)
	if err != nil {
		var apiErr *types.Error
		if errors.As(err, &apiErr) {
			WriteError(w, r, apiErr, h.logger)
			return
		}
		WriteError(w, r, types.NewError(types.ErrInternalError, "an internal error occurred").
			WithCause(err).WithHTTPStatus(http.StatusInternalServerError), h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, resp)
}

// HandleClearHistory handles POST /clear_history. History is caller-owned,
// so this only acknowledges; clients drop their local log on this signal.
func (h *ChatHandler) HandleClearHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteErrorMessage(w, r, http.StatusMethodNotAllowed, types.ErrInvalidRequest, "method not allowed", h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, api.ClearHistoryResponse{
		Status: "Conversation history cleared.",
	})
}
