package tools

import (
	"encoding/json"

	"github.com/taskloop-ai/taskchat/internal/llm"
)

// toolSchemas returns the declarations for the five task tools. The
// user_id parameter is declared required so the model always includes it,
// but the orchestrator overwrites it with the authenticated user before
// execution regardless of what the model supplied.
func toolSchemas() []llm.ToolSchema {
	return []llm.ToolSchema{
		{
			Name:        string(NameCreateTask),
			Description: "Creates a new task for the user. Use this when the user wants to add, create, or be reminded of something.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"user_id": {"type": "integer", "description": "The ID of the user creating the task"},
					"title": {"type": "string", "description": "The task title (1-255 characters)", "minLength": 1, "maxLength": 255},
					"description": {"type": "string", "description": "Optional detailed description of the task", "maxLength": 1000}
				},
				"required": ["user_id", "title"]
			}`),
		},
		{
			Name:        string(NameListTasks),
			Description: "Retrieves tasks for the user. Supports filtering by completion status. Use this when the user wants to see, show, or list their tasks.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"user_id": {"type": "integer", "description": "The ID of the user"},
					"status": {"type": "string", "enum": ["all", "pending", "completed"], "description": "Filter tasks by status (default: all)"},
					"limit": {"type": "integer", "description": "Maximum number of tasks to return (default: 50)", "minimum": 1, "maximum": 100},
					"offset": {"type": "integer", "description": "Number of tasks to skip for pagination (default: 0)", "minimum": 0}
				},
				"required": ["user_id"]
			}`),
		},
		{
			Name:        string(NameUpdateTask),
			Description: "Updates an existing task's title, description, or status. Use this when the user wants to change, update, modify, or edit a task.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"user_id": {"type": "integer", "description": "The ID of the user"},
					"task_id": {"type": "integer", "description": "The ID of the task to update"},
					"title": {"type": "string", "description": "New task title (1-255 characters)", "minLength": 1, "maxLength": 255},
					"description": {"type": "string", "description": "New task description", "maxLength": 1000},
					"completed": {"type": "boolean", "description": "New completion status (true = completed, false = pending)"}
				},
				"required": ["user_id", "task_id"]
			}`),
		},
		{
			Name:        string(NameDeleteTask),
			Description: "Permanently deletes a task. Use this when the user wants to delete or remove a task. Always confirm before calling this tool.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"user_id": {"type": "integer", "description": "The ID of the user"},
					"task_id": {"type": "integer", "description": "The ID of the task to delete"}
				},
				"required": ["user_id", "task_id"]
			}`),
		},
		{
			Name:        string(NameCompleteTask),
			Description: "Marks a task as completed. This is a shortcut for update_task with completed=true. Use when the user says they finished, completed, or are done with a task.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"user_id": {"type": "integer", "description": "The ID of the user"},
					"task_id": {"type": "integer", "description": "The ID of the task to mark as complete"}
				},
				"required": ["user_id", "task_id"]
			}`),
		},
	}
}
