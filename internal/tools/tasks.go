package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/taskloop-ai/taskchat/internal/model"
	"github.com/taskloop-ai/taskchat/internal/store"
)

// taskTools implements the five task tools over the store. Every read and
// write is scoped by (task_id, user_id); a miss is not_found with no hint
// about whether the task exists under another owner.
type taskTools struct {
	store *store.Store
}

func (t *taskTools) create(ctx context.Context, args Arguments) Result {
	userID, ok := args.Int64("user_id")
	if !ok {
		return failure(ErrValidation, "user_id is required")
	}

	title, _ := args.String("title")
	title = strings.TrimSpace(title)
	if title == "" {
		return failure(ErrValidation, "Task title cannot be empty")
	}
	if utf8.RuneCountInString(title) > model.TitleMaxLength {
		return failure(ErrValidation, "Task title must be 255 characters or less")
	}

	var description *string
	if raw, ok := args.String("description"); ok {
		if utf8.RuneCountInString(raw) > model.DescriptionMaxLength {
			return failure(ErrValidation, "Task description must be 1000 characters or less")
		}
		trimmed := strings.TrimSpace(raw)
		if trimmed != "" {
			description = &trimmed
		}
	}

	task, err := t.store.CreateTask(ctx, userID, title, description)
	if err != nil {
		return failure(ErrInternal, fmt.Sprintf("Could not create task: %v", err))
	}

	return success(map[string]any{
		"task_id":    task.ID,
		"title":      task.Title,
		"created_at": task.CreatedAt.Format(time.RFC3339),
	})
}

func (t *taskTools) list(ctx context.Context, args Arguments) Result {
	userID, ok := args.Int64("user_id")
	if !ok {
		return failure(ErrValidation, "user_id is required")
	}

	status := "all"
	if s, ok := args.String("status"); ok && s != "" {
		status = s
	}
	var completed *bool
	switch status {
	case "all":
	case "pending":
		f := false
		completed = &f
	case "completed":
		tr := true
		completed = &tr
	default:
		return failure(ErrValidation, "status must be one of all, pending, completed")
	}

	limit := int64(50)
	if l, ok := args.Int64("limit"); ok {
		limit = l
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	offset := int64(0)
	if o, ok := args.Int64("offset"); ok && o > 0 {
		offset = o
	}

	taskList, _, err := t.store.ListTasks(ctx, userID, completed, int(limit), int(offset))
	if err != nil {
		return failure(ErrInternal, fmt.Sprintf("Could not retrieve tasks: %v", err))
	}

	items := make([]map[string]any, 0, len(taskList))
	for _, task := range taskList {
		item := map[string]any{
			"id":         task.ID,
			"title":      task.Title,
			"completed":  task.Completed,
			"created_at": task.CreatedAt.Format(time.RFC3339),
			"updated_at": task.UpdatedAt.Format(time.RFC3339),
		}
		if task.Description != nil {
			item["description"] = *task.Description
		}
		items = append(items, item)
	}

	return success(map[string]any{
		"tasks":         items,
		"count":         len(items),
		"status_filter": status,
	})
}

func (t *taskTools) update(ctx context.Context, args Arguments) Result {
	userID, ok := args.Int64("user_id")
	if !ok {
		return failure(ErrValidation, "user_id is required")
	}
	taskID, ok := args.Int64("task_id")
	if !ok {
		return failure(ErrValidation, "task_id is required")
	}

	var (
		upd           store.UpdateTask
		updatedFields []string
	)

	if args.Has("title") {
		title, _ := args.String("title")
		trimmed := strings.TrimSpace(title)
		if trimmed == "" {
			return failure(ErrValidation, "Task title cannot be empty")
		}
		if utf8.RuneCountInString(trimmed) > model.TitleMaxLength {
			return failure(ErrValidation, "Task title must be 255 characters or less")
		}
		upd.Title = &trimmed
		updatedFields = append(updatedFields, "title")
	}
	if args.Has("description") {
		description, _ := args.String("description")
		if utf8.RuneCountInString(description) > model.DescriptionMaxLength {
			return failure(ErrValidation, "Task description must be 1000 characters or less")
		}
		trimmed := strings.TrimSpace(description)
		upd.Description = &trimmed
		updatedFields = append(updatedFields, "description")
	}
	if args.Has("completed") {
		completed, ok := args.Bool("completed")
		if !ok {
			return failure(ErrValidation, "completed must be a boolean")
		}
		upd.Completed = &completed
		updatedFields = append(updatedFields, "completed")
	}

	if upd.IsEmpty() {
		return failure(ErrValidation, "At least one field (title, description, or completed) must be provided")
	}

	task, err := t.store.UpdateTask(ctx, taskID, userID, upd)
	if errors.Is(err, store.ErrNotFound) {
		return notFound(taskID)
	}
	if err != nil {
		return failure(ErrInternal, fmt.Sprintf("Could not update task: %v", err))
	}

	fields := map[string]any{
		"task_id":        task.ID,
		"title":          task.Title,
		"completed":      task.Completed,
		"updated_fields": updatedFields,
		"updated_at":     task.UpdatedAt.Format(time.RFC3339),
	}
	if task.Description != nil {
		fields["description"] = *task.Description
	}
	return success(fields)
}

func (t *taskTools) delete(ctx context.Context, args Arguments) Result {
	userID, ok := args.Int64("user_id")
	if !ok {
		return failure(ErrValidation, "user_id is required")
	}
	taskID, ok := args.Int64("task_id")
	if !ok {
		return failure(ErrValidation, "task_id is required")
	}

	task, err := t.store.DeleteTask(ctx, taskID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return notFound(taskID)
	}
	if err != nil {
		return failure(ErrInternal, fmt.Sprintf("Could not delete task: %v", err))
	}

	return success(map[string]any{
		"task_id": task.ID,
		"title":   task.Title,
		"deleted": true,
	})
}

func (t *taskTools) complete(ctx context.Context, args Arguments) Result {
	userID, ok := args.Int64("user_id")
	if !ok {
		return failure(ErrValidation, "user_id is required")
	}
	taskID, ok := args.Int64("task_id")
	if !ok {
		return failure(ErrValidation, "task_id is required")
	}

	task, err := t.store.GetTask(ctx, taskID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return notFound(taskID)
	}
	if err != nil {
		return failure(ErrInternal, fmt.Sprintf("Could not complete task: %v", err))
	}

	// Idempotent: completing an already-completed task is a no-op success
	// and must not touch updated_at.
	if task.Completed {
		return success(map[string]any{
			"task_id":   task.ID,
			"title":     task.Title,
			"completed": true,
			"message":   "Task was already completed",
		})
	}

	completed := true
	task, err = t.store.UpdateTask(ctx, taskID, userID, store.UpdateTask{Completed: &completed})
	if errors.Is(err, store.ErrNotFound) {
		return notFound(taskID)
	}
	if err != nil {
		return failure(ErrInternal, fmt.Sprintf("Could not complete task: %v", err))
	}

	return success(map[string]any{
		"task_id":    task.ID,
		"title":      task.Title,
		"completed":  true,
		"updated_at": task.UpdatedAt.Format(time.RFC3339),
	})
}

func notFound(taskID int64) Result {
	return failure(ErrNotFound, fmt.Sprintf("Task with ID %d not found or you don't have permission to access it", taskID))
}
