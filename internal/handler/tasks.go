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

// TaskHandler handles task endpoints.
type TaskHandler struct {
	service *service.TaskService
	logger  *logger.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(svc *service.TaskService, log *logger.Logger) *TaskHandler {
	return &TaskHandler{
		service: svc,
		logger:  log,
	}
}

// Create handles POST /api/v1/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req model.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}

	task, err := h.service.Create(ctx, userID, &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to create task")
		return
	}

	writeData(w, http.StatusCreated, task)
}

// List handles GET /api/v1/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var completed *bool
	switch r.URL.Query().Get("status") {
	case "", "all":
	case "pending":
		f := false
		completed = &f
	case "completed":
		t := true
		completed = &t
	default:
		writeError(w, http.StatusBadRequest, "validation_error", "status must be one of all, pending, completed")
		return
	}

	limit, offset := pagination(r, 50)

	resp, err := h.service.List(ctx, userID, completed, limit, offset)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to list tasks")
		return
	}

	writeData(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	taskID, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid task id")
		return
	}

	task, err := h.service.Get(ctx, userID, taskID)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to get task")
		return
	}

	writeData(w, http.StatusOK, task)
}

// Update handles PUT /api/v1/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	taskID, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid task id")
		return
	}

	var req model.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}

	task, err := h.service.Update(ctx, userID, taskID, &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to update task")
		return
	}

	writeData(w, http.StatusOK, task)
}

// Delete handles DELETE /api/v1/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	taskID, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid task id")
		return
	}

	task, err := h.service.Delete(ctx, userID, taskID)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to delete task")
		return
	}

	writeJSON(w, http.StatusOK, model.APIResponse{
		Success: true,
		Data:    map[string]any{"id": task.ID, "title": task.Title},
		Message: "Task deleted",
	})
}

// Complete handles PATCH /api/v1/tasks/{id}/complete
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	taskID, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid task id")
		return
	}

	// An absent or empty body defaults to marking the task completed.
	req := model.CompleteTaskRequest{Completed: true}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
			return
		}
	}

	task, err := h.service.Complete(ctx, userID, taskID, req.Completed)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to complete task")
		return
	}

	writeData(w, http.StatusOK, task)
}
