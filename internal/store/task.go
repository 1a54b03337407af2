package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/taskloop-ai/taskchat/internal/model"
)

// UpdateTask describes a partial task update. Nil fields are left
// unchanged.
type UpdateTask struct {
	Title       *string
	Description *string
	Completed   *bool
}

// IsEmpty reports whether no field is set.
func (u UpdateTask) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Completed == nil
}

// CreateTask inserts a new, uncompleted task for the user.
func (s *Store) CreateTask(ctx context.Context, userID int64, title string, description *string) (*model.Task, error) {
	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (user_id, title, description, completed, created_at, updated_at)
		 VALUES (?, ?, ?, 0, ?, ?)`,
		userID, title, description, now.Unix(), now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read task id: %w", err)
	}
	return s.GetTask(ctx, id, userID)
}

// GetTask returns the task scoped by (id, userID). A task owned by a
// different user yields ErrNotFound.
func (s *Store) GetTask(ctx context.Context, taskID, userID int64) (*model.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, completed, created_at, updated_at
		 FROM tasks WHERE id = ? AND user_id = ?`,
		taskID, userID,
	)
	return scanTask(row)
}

// ListTasks returns the user's tasks, newest-created first, with an
// optional completion filter. The second return value is the total count
// matching the filter before pagination.
func (s *Store) ListTasks(ctx context.Context, userID int64, completed *bool, limit, offset int) ([]model.Task, int, error) {
	where := "user_id = ?"
	args := []any{userID}
	if completed != nil {
		where += " AND completed = ?"
		args = append(args, boolToInt(*completed))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	query := `SELECT id, user_id, title, description, completed, created_at, updated_at
		FROM tasks WHERE ` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// UpdateTask applies a partial update to the task scoped by (id, userID)
// and returns the updated row.
func (s *Store) UpdateTask(ctx context.Context, taskID, userID int64, upd UpdateTask) (*model.Task, error) {
	task, err := s.GetTask(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		task.Title = *upd.Title
	}
	if upd.Description != nil {
		task.Description = upd.Description
	}
	if upd.Completed != nil {
		task.Completed = *upd.Completed
	}

	now := time.Now()
	_, err = s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, completed = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		task.Title, task.Description, boolToInt(task.Completed), now.Unix(), taskID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	task.UpdatedAt = time.Unix(now.Unix(), 0)
	return task, nil
}

// DeleteTask permanently removes the task scoped by (id, userID) and
// returns the deleted row so callers can confirm by title.
func (s *Store) DeleteTask(ctx context.Context, taskID, userID int64) (*model.Task, error) {
	task, err := s.GetTask(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ? AND user_id = ?", taskID, userID); err != nil {
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}
	return task, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*model.Task, error) {
	var (
		task        model.Task
		description sql.NullString
		completed   int
		createdAt   int64
		updatedAt   int64
	)
	err := row.Scan(&task.ID, &task.UserID, &task.Title, &description, &completed, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	if description.Valid {
		task.Description = &description.String
	}
	task.Completed = completed != 0
	task.CreatedAt = time.Unix(createdAt, 0)
	task.UpdatedAt = time.Unix(updatedAt, 0)
	return &task, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
