package tools

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/taskloop-ai/taskchat/internal/llm"
	"github.com/taskloop-ai/taskchat/internal/store"
	"github.com/taskloop-ai/taskchat/pkg/logger"
	"github.com/taskloop-ai/taskchat/pkg/metrics"
)

// Name identifies a callable tool.
type Name string

const (
	NameCreateTask   Name = "create_task"
	NameListTasks    Name = "list_tasks"
	NameUpdateTask   Name = "update_task"
	NameDeleteTask   Name = "delete_task"
	NameCompleteTask Name = "complete_task"
)

// Handler executes one tool call using parsed arguments.
type Handler func(ctx context.Context, args Arguments) Result

// Registry holds the closed set of tools. It is constructed once at
// startup and injected wherever tools are executed; it has no mutable
// state after construction.
type Registry struct {
	handlers map[Name]Handler
	schemas  []llm.ToolSchema
	logger   *logger.Logger
}

// NewRegistry builds the registry over the task store. The dispatch table
// is fixed: the five task tools and nothing else.
func NewRegistry(st *store.Store, log *logger.Logger) *Registry {
	tasks := &taskTools{store: st}
	return &Registry{
		handlers: map[Name]Handler{
			NameCreateTask:   tasks.create,
			NameListTasks:    tasks.list,
			NameUpdateTask:   tasks.update,
			NameDeleteTask:   tasks.delete,
			NameCompleteTask: tasks.complete,
		},
		schemas: toolSchemas(),
		logger:  log,
	}
}

// Schemas returns the JSON-schema declarations handed to the model.
func (r *Registry) Schemas() []llm.ToolSchema {
	return r.schemas
}

// Execute runs a named tool. It never lets a failure escape as a Go error
// or panic: unknown names report invalid_tool and handler panics report
// tool_execution_error, so the orchestrator always receives a Result.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (result Result) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tool execution panicked",
				zap.String("tool", name),
				zap.Any("cause", rec),
			)
			result = failure(ErrToolExecution, fmt.Sprintf("Tool execution failed: %v", rec))
		}
		outcome := "success"
		if !result.OK() {
			outcome = string(result.ErrorCode())
		}
		metrics.ToolExecutionsTotal.WithLabelValues(name, outcome).Inc()
	}()

	handler, ok := r.handlers[Name(name)]
	if !ok {
		return failure(ErrInvalidTool, fmt.Sprintf("Tool %q not found", name))
	}
	return handler(ctx, Arguments(args))
}
