package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskloop-ai/taskchat/internal/middleware"
	"github.com/taskloop-ai/taskchat/internal/model"
	"github.com/taskloop-ai/taskchat/internal/service"
	"github.com/taskloop-ai/taskchat/pkg/logger"
)

// ChatHandler handles the conversational endpoint.
type ChatHandler struct {
	service *service.ChatService
	logger  *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(svc *service.ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		service: svc,
		logger:  log,
	}
}

// Chat handles POST /api/v1/users/{userID}/chat
//
// The path user must match the token user: the path exists for API shape
// compatibility, the token is the authority.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authUserID := middleware.GetUserID(ctx)

	pathUserID, ok := pathID(chi.URLParam(r, "userID"))
	if !ok {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid user id")
		return
	}
	if pathUserID != authUserID {
		writeError(w, http.StatusForbidden, "forbidden", "cannot chat on behalf of another user")
		return
	}

	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}

	resp, err := h.service.Chat(ctx, authUserID, &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "chat request failed")
		return
	}

	writeData(w, http.StatusOK, resp)
}
