package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/taskloop-ai/taskchat/internal/model"
	"github.com/taskloop-ai/taskchat/internal/store"
	"github.com/taskloop-ai/taskchat/pkg/logger"
)

// TaskService handles task CRUD on behalf of the REST endpoints. All
// operations are scoped to the authenticated user.
type TaskService struct {
	store  *store.Store
	logger *logger.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(st *store.Store, log *logger.Logger) *TaskService {
	return &TaskService{store: st, logger: log}
}

// Create validates and creates a new task.
func (s *TaskService) Create(ctx context.Context, userID int64, req *model.CreateTaskRequest) (*model.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, validationErr("Task title cannot be empty")
	}
	if utf8.RuneCountInString(title) > model.TitleMaxLength {
		return nil, validationErr("Task title must be 255 characters or less")
	}

	var description *string
	if req.Description != nil {
		if utf8.RuneCountInString(*req.Description) > model.DescriptionMaxLength {
			return nil, validationErr("Task description must be 1000 characters or less")
		}
		trimmed := strings.TrimSpace(*req.Description)
		if trimmed != "" {
			description = &trimmed
		}
	}

	task, err := s.store.CreateTask(ctx, userID, title, description)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// Get returns one task scoped by (id, userID).
func (s *TaskService) Get(ctx context.Context, userID, taskID int64) (*model.Task, error) {
	return s.store.GetTask(ctx, taskID, userID)
}

// List returns the user's tasks with an optional completion filter and
// pagination. Limits are clamped to 1..100.
func (s *TaskService) List(ctx context.Context, userID int64, completed *bool, limit, offset int) (*model.ListTasksResponse, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	tasks, total, err := s.store.ListTasks(ctx, userID, completed, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return &model.ListTasksResponse{Tasks: tasks, Total: total}, nil
}

// Update applies a partial update after validating the supplied fields.
func (s *TaskService) Update(ctx context.Context, userID, taskID int64, req *model.UpdateTaskRequest) (*model.Task, error) {
	var upd store.UpdateTask

	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if trimmed == "" {
			return nil, validationErr("Task title cannot be empty")
		}
		if utf8.RuneCountInString(trimmed) > model.TitleMaxLength {
			return nil, validationErr("Task title must be 255 characters or less")
		}
		upd.Title = &trimmed
	}
	if req.Description != nil {
		if utf8.RuneCountInString(*req.Description) > model.DescriptionMaxLength {
			return nil, validationErr("Task description must be 1000 characters or less")
		}
		trimmed := strings.TrimSpace(*req.Description)
		upd.Description = &trimmed
	}
	upd.Completed = req.Completed

	if upd.IsEmpty() {
		return nil, validationErr("At least one field (title, description, or completed) must be provided")
	}

	return s.store.UpdateTask(ctx, taskID, userID, upd)
}

// Delete permanently removes a task and returns the deleted row.
func (s *TaskService) Delete(ctx context.Context, userID, taskID int64) (*model.Task, error) {
	return s.store.DeleteTask(ctx, taskID, userID)
}

// Complete sets the task's completion status. Re-completing an already
// completed task is a no-op success that leaves updated_at untouched.
func (s *TaskService) Complete(ctx context.Context, userID, taskID int64, completed bool) (*model.Task, error) {
	task, err := s.store.GetTask(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	if task.Completed == completed {
		return task, nil
	}
	return s.store.UpdateTask(ctx, taskID, userID, store.UpdateTask{Completed: &completed})
}
