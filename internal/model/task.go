// Package model defines data structures for the task-chat platform.
package model

import (
	"time"
)

const (
	// TitleMaxLength is the maximum task title length in characters.
	TitleMaxLength = 255
	// DescriptionMaxLength is the maximum task description length in
	// characters.
	DescriptionMaxLength = 1000
)

// Task represents a single to-do item owned by one user.
type Task struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateTaskRequest is the request to create a new task.
type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// UpdateTaskRequest is the request to partially update a task.
// Nil fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// CompleteTaskRequest is the request to toggle a task's completion status.
type CompleteTaskRequest struct {
	Completed bool `json:"completed"`
}

// ListTasksResponse is the response for listing tasks.
type ListTasksResponse struct {
	Tasks []Task `json:"tasks"`
	Total int    `json:"total"`
}

// APIResponse is the uniform success/error envelope for task endpoints.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// APIError is the structured error payload inside an error envelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIErrorResponse is the uniform error envelope.
type APIErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}
