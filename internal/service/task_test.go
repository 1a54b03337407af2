package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskloop-ai/taskchat/internal/model"
	"github.com/taskloop-ai/taskchat/internal/store"
	"github.com/taskloop-ai/taskchat/pkg/logger"
)

func newTaskFixture(t *testing.T) (*TaskService, int64) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	user, err := st.CreateUser(context.Background(), "alice@example.com", "Alice", "hash")
	require.NoError(t, err)

	log, err := logger.New("error")
	require.NoError(t, err)

	return NewTaskService(st, log), user.ID
}

func TestTaskCreateValidation(t *testing.T) {
	svc, userID := newTaskFixture(t)
	ctx := context.Background()

	var verr *ValidationError

	_, err := svc.Create(ctx, userID, &model.CreateTaskRequest{Title: "  "})
	require.ErrorAs(t, err, &verr)

	_, err = svc.Create(ctx, userID, &model.CreateTaskRequest{Title: strings.Repeat("a", 256)})
	require.ErrorAs(t, err, &verr)

	long := strings.Repeat("d", 1001)
	_, err = svc.Create(ctx, userID, &model.CreateTaskRequest{Title: "ok", Description: &long})
	require.ErrorAs(t, err, &verr)

	task, err := svc.Create(ctx, userID, &model.CreateTaskRequest{Title: "  trimmed  "})
	require.NoError(t, err)
	assert.Equal(t, "trimmed", task.Title)

	// Limits are measured in characters, not bytes.
	accented, err := svc.Create(ctx, userID, &model.CreateTaskRequest{Title: strings.Repeat("é", 255)})
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 255), accented.Title)

	_, err = svc.Create(ctx, userID, &model.CreateTaskRequest{Title: strings.Repeat("é", 256)})
	require.ErrorAs(t, err, &verr)
}

func TestTaskUpdateRequiresField(t *testing.T) {
	svc, userID := newTaskFixture(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, userID, &model.CreateTaskRequest{Title: "Original"})
	require.NoError(t, err)

	var verr *ValidationError
	_, err = svc.Update(ctx, userID, task.ID, &model.UpdateTaskRequest{})
	require.ErrorAs(t, err, &verr)

	title := "Renamed"
	updated, err := svc.Update(ctx, userID, task.ID, &model.UpdateTaskRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestTaskCompleteIdempotent(t *testing.T) {
	svc, userID := newTaskFixture(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, userID, &model.CreateTaskRequest{Title: "Finish report"})
	require.NoError(t, err)

	first, err := svc.Complete(ctx, userID, task.ID, true)
	require.NoError(t, err)
	assert.True(t, first.Completed)

	second, err := svc.Complete(ctx, userID, task.ID, true)
	require.NoError(t, err)
	assert.True(t, second.Completed)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt)
}

func TestTaskListClampsPagination(t *testing.T) {
	svc, userID := newTaskFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, userID, &model.CreateTaskRequest{Title: "task"})
		require.NoError(t, err)
	}

	resp, err := svc.List(ctx, userID, nil, -5, -10)
	require.NoError(t, err)
	assert.Len(t, resp.Tasks, 3)
	assert.Equal(t, 3, resp.Total)
}
