package tools

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskloop-ai/taskchat/internal/store"
	"github.com/taskloop-ai/taskchat/pkg/logger"
)

func newTestRegistry(t *testing.T) (*Registry, *store.Store, int64) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	user, err := st.CreateUser(context.Background(), "alice@example.com", "Alice", "hash")
	require.NoError(t, err)

	log, err := logger.New("error")
	require.NoError(t, err)

	return NewRegistry(st, log), st, user.ID
}

func TestSchemasDeclareAllTools(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	names := map[string]bool{}
	for _, schema := range r.Schemas() {
		names[schema.Name] = true
	}
	for _, want := range []string{"create_task", "list_tasks", "update_task", "delete_task", "complete_task"} {
		assert.True(t, names[want], "missing schema for %s", want)
	}
}

func TestCreateTask(t *testing.T) {
	r, _, userID := newTestRegistry(t)
	ctx := context.Background()

	result := r.Execute(ctx, "create_task", map[string]any{
		"user_id": userID,
		"title":   "  Buy groceries  ",
	})
	require.True(t, result.OK())
	assert.Equal(t, "Buy groceries", result["title"])
	assert.NotNil(t, result["task_id"])
}

func TestCreateTaskValidation(t *testing.T) {
	r, _, userID := newTestRegistry(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
		code ErrorCode
	}{
		{"missing user_id", map[string]any{"title": "x"}, ErrValidation},
		{"empty title", map[string]any{"user_id": userID, "title": "   "}, ErrValidation},
		{"title too long", map[string]any{"user_id": userID, "title": strings.Repeat("a", 256)}, ErrValidation},
		{"description too long", map[string]any{"user_id": userID, "title": "ok", "description": strings.Repeat("d", 1001)}, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := r.Execute(ctx, "create_task", tt.args)
			assert.False(t, result.OK())
			assert.Equal(t, tt.code, result.ErrorCode())
		})
	}

	// 255 characters is the boundary and must pass.
	result := r.Execute(ctx, "create_task", map[string]any{
		"user_id": userID,
		"title":   strings.Repeat("a", 255),
	})
	assert.True(t, result.OK())
}

func TestCreateTaskLimitsCountCharacters(t *testing.T) {
	r, _, userID := newTestRegistry(t)
	ctx := context.Background()

	// 255 two-byte characters: over the limit in bytes, at the limit in
	// characters, and must pass.
	result := r.Execute(ctx, "create_task", map[string]any{
		"user_id":     userID,
		"title":       strings.Repeat("é", 255),
		"description": strings.Repeat("é", 1000),
	})
	require.True(t, result.OK())

	tooLong := r.Execute(ctx, "create_task", map[string]any{
		"user_id": userID,
		"title":   strings.Repeat("é", 256),
	})
	assert.Equal(t, ErrValidation, tooLong.ErrorCode())

	badDesc := r.Execute(ctx, "create_task", map[string]any{
		"user_id":     userID,
		"title":       "ok",
		"description": strings.Repeat("é", 1001),
	})
	assert.Equal(t, ErrValidation, badDesc.ErrorCode())
}

func TestListTasks(t *testing.T) {
	r, _, userID := newTestRegistry(t)
	ctx := context.Background()

	for _, title := range []string{"one", "two", "three"} {
		require.True(t, r.Execute(ctx, "create_task", map[string]any{"user_id": userID, "title": title}).OK())
	}
	created := r.Execute(ctx, "create_task", map[string]any{"user_id": userID, "title": "done"})
	require.True(t, created.OK())
	require.True(t, r.Execute(ctx, "complete_task", map[string]any{"user_id": userID, "task_id": created["task_id"]}).OK())

	all := r.Execute(ctx, "list_tasks", map[string]any{"user_id": userID})
	require.True(t, all.OK())
	assert.Equal(t, 4, all["count"])
	assert.Equal(t, "all", all["status_filter"])

	pending := r.Execute(ctx, "list_tasks", map[string]any{"user_id": userID, "status": "pending"})
	require.True(t, pending.OK())
	assert.Equal(t, 3, pending["count"])

	completed := r.Execute(ctx, "list_tasks", map[string]any{"user_id": userID, "status": "completed"})
	require.True(t, completed.OK())
	assert.Equal(t, 1, completed["count"])

	bad := r.Execute(ctx, "list_tasks", map[string]any{"user_id": userID, "status": "archived"})
	assert.Equal(t, ErrValidation, bad.ErrorCode())
}

func TestUpdateTask(t *testing.T) {
	r, _, userID := newTestRegistry(t)
	ctx := context.Background()

	created := r.Execute(ctx, "create_task", map[string]any{"user_id": userID, "title": "Original"})
	require.True(t, created.OK())
	taskID := created["task_id"]

	updated := r.Execute(ctx, "update_task", map[string]any{
		"user_id": userID,
		"task_id": taskID,
		"title":   "Renamed",
	})
	require.True(t, updated.OK())
	assert.Equal(t, "Renamed", updated["title"])
	assert.Equal(t, []string{"title"}, updated["updated_fields"])

	empty := r.Execute(ctx, "update_task", map[string]any{"user_id": userID, "task_id": taskID})
	assert.Equal(t, ErrValidation, empty.ErrorCode())

	missing := r.Execute(ctx, "update_task", map[string]any{"user_id": userID, "task_id": 999, "title": "x"})
	assert.Equal(t, ErrNotFound, missing.ErrorCode())
	assert.Contains(t, missing["message"], "999")
}

func TestDeleteTask(t *testing.T) {
	r, _, userID := newTestRegistry(t)
	ctx := context.Background()

	created := r.Execute(ctx, "create_task", map[string]any{"user_id": userID, "title": "Doomed"})
	require.True(t, created.OK())

	deleted := r.Execute(ctx, "delete_task", map[string]any{"user_id": userID, "task_id": created["task_id"]})
	require.True(t, deleted.OK())
	assert.Equal(t, "Doomed", deleted["title"])
	assert.Equal(t, true, deleted["deleted"])

	again := r.Execute(ctx, "delete_task", map[string]any{"user_id": userID, "task_id": created["task_id"]})
	assert.Equal(t, ErrNotFound, again.ErrorCode())
}

func TestCompleteTaskIdempotent(t *testing.T) {
	r, st, userID := newTestRegistry(t)
	ctx := context.Background()

	created := r.Execute(ctx, "create_task", map[string]any{"user_id": userID, "title": "Finish report"})
	require.True(t, created.OK())
	taskID := created["task_id"].(int64)

	first := r.Execute(ctx, "complete_task", map[string]any{"user_id": userID, "task_id": taskID})
	require.True(t, first.OK())
	assert.Equal(t, true, first["completed"])

	afterFirst, err := st.GetTask(ctx, taskID, userID)
	require.NoError(t, err)

	second := r.Execute(ctx, "complete_task", map[string]any{"user_id": userID, "task_id": taskID})
	require.True(t, second.OK())
	assert.Equal(t, "Task was already completed", second["message"])

	// Re-completing must not rewrite the row.
	afterSecond, err := st.GetTask(ctx, taskID, userID)
	require.NoError(t, err)
	assert.Equal(t, afterFirst.UpdatedAt, afterSecond.UpdatedAt)
}

func TestOwnershipIsolation(t *testing.T) {
	r, st, alice := newTestRegistry(t)
	ctx := context.Background()

	bob, err := st.CreateUser(ctx, "bob@example.com", "Bob", "hash")
	require.NoError(t, err)

	created := r.Execute(ctx, "create_task", map[string]any{"user_id": alice, "title": "Alice's secret"})
	require.True(t, created.OK())
	taskID := created["task_id"]

	for _, tool := range []string{"update_task", "delete_task", "complete_task"} {
		args := map[string]any{"user_id": bob.ID, "task_id": taskID}
		if tool == "update_task" {
			args["title"] = "hijacked"
		}
		result := r.Execute(ctx, tool, args)
		assert.Equal(t, ErrNotFound, result.ErrorCode(), "%s must not see foreign tasks", tool)
	}

	list := r.Execute(ctx, "list_tasks", map[string]any{"user_id": bob.ID})
	require.True(t, list.OK())
	assert.Equal(t, 0, list["count"])
}

func TestExecuteUnknownTool(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	result := r.Execute(context.Background(), "drop_database", map[string]any{})
	assert.False(t, result.OK())
	assert.Equal(t, ErrInvalidTool, result.ErrorCode())
}

func TestExecuteContainsPanics(t *testing.T) {
	log, err := logger.New("error")
	require.NoError(t, err)

	r := &Registry{
		handlers: map[Name]Handler{
			"explode": func(ctx context.Context, args Arguments) Result {
				panic("boom")
			},
		},
		logger: log,
	}

	result := r.Execute(context.Background(), "explode", map[string]any{})
	assert.False(t, result.OK())
	assert.Equal(t, ErrToolExecution, result.ErrorCode())
}
