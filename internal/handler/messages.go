package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taskloop-ai/taskchat/internal/middleware"
	"github.com/taskloop-ai/taskchat/internal/service"
	"github.com/taskloop-ai/taskchat/pkg/logger"
)

// MessageHandler handles conversation transcript reads.
type MessageHandler struct {
	service *service.ConversationService
	logger  *logger.Logger
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(svc *service.ConversationService, log *logger.Logger) *MessageHandler {
	return &MessageHandler{
		service: svc,
		logger:  log,
	}
}

// List handles GET /api/v1/conversations/{id}/messages
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	conversationID, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid conversation id")
		return
	}

	limit := 200
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	messages, err := h.service.Messages(ctx, userID, conversationID, limit)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to list messages")
		return
	}

	writeData(w, http.StatusOK, messages)
}
