package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskloop-ai/taskchat/internal/middleware"
	"github.com/taskloop-ai/taskchat/internal/service"
	"github.com/taskloop-ai/taskchat/pkg/logger"
)

// ConversationHandler handles conversation endpoints.
type ConversationHandler struct {
	service *service.ConversationService
	logger  *logger.Logger
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(svc *service.ConversationService, log *logger.Logger) *ConversationHandler {
	return &ConversationHandler{
		service: svc,
		logger:  log,
	}
}

// Create handles POST /api/v1/conversations
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	conv, err := h.service.Create(ctx, userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to create conversation")
		return
	}

	writeData(w, http.StatusCreated, conv)
}

// List handles GET /api/v1/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	limit, offset := pagination(r, 20)

	conversations, err := h.service.List(ctx, userID, limit, offset)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to list conversations")
		return
	}

	writeData(w, http.StatusOK, conversations)
}

// Get handles GET /api/v1/conversations/{id}
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	conversationID, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid conversation id")
		return
	}

	conv, err := h.service.Get(ctx, userID, conversationID)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to get conversation")
		return
	}

	writeData(w, http.StatusOK, conv)
}
