package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetTask(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := newTestUser(t, s, "alice@example.com")

	desc := "milk, eggs"
	task, err := s.CreateTask(ctx, userID, "Buy groceries", &desc)
	require.NoError(t, err)
	assert.Equal(t, "Buy groceries", task.Title)
	assert.Equal(t, userID, task.UserID)
	assert.False(t, task.Completed)
	require.NotNil(t, task.Description)
	assert.Equal(t, "milk, eggs", *task.Description)

	got, err := s.GetTask(ctx, task.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
}

func TestGetTaskScopedByOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := newTestUser(t, s, "alice@example.com")
	bob := newTestUser(t, s, "bob@example.com")

	task, err := s.CreateTask(ctx, alice, "Alice's task", nil)
	require.NoError(t, err)

	_, err = s.GetTask(ctx, task.ID, bob)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTasksFilterAndPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := newTestUser(t, s, "alice@example.com")

	var taskIDs []int64
	for _, title := range []string{"one", "two", "three", "four"} {
		task, err := s.CreateTask(ctx, userID, title, nil)
		require.NoError(t, err)
		taskIDs = append(taskIDs, task.ID)
	}

	completed := true
	_, err := s.UpdateTask(ctx, taskIDs[0], userID, UpdateTask{Completed: &completed})
	require.NoError(t, err)

	all, total, err := s.ListTasks(ctx, userID, nil, 50, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, 4, total)

	done, total, err := s.ListTasks(ctx, userID, &completed, 50, 0)
	require.NoError(t, err)
	assert.Len(t, done, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, taskIDs[0], done[0].ID)

	pending := false
	open, total, err := s.ListTasks(ctx, userID, &pending, 50, 0)
	require.NoError(t, err)
	assert.Len(t, open, 3)
	assert.Equal(t, 3, total)

	// Pages must not overlap and total reflects the filter, not the page.
	page1, total, err := s.ListTasks(ctx, userID, nil, 2, 0)
	require.NoError(t, err)
	page2, _, err := s.ListTasks(ctx, userID, nil, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	seen := map[int64]bool{}
	for _, task := range append(page1, page2...) {
		assert.False(t, seen[task.ID], "task %d appeared twice", task.ID)
		seen[task.ID] = true
	}
	assert.Len(t, seen, 4)
}

func TestUpdateTaskPartial(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := newTestUser(t, s, "alice@example.com")

	desc := "original"
	task, err := s.CreateTask(ctx, userID, "Original", &desc)
	require.NoError(t, err)

	newTitle := "Renamed"
	updated, err := s.UpdateTask(ctx, task.ID, userID, UpdateTask{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "original", *updated.Description)
	assert.False(t, updated.Completed)
}

func TestUpdateTaskNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := newTestUser(t, s, "alice@example.com")

	title := "x"
	_, err := s.UpdateTask(ctx, 999, userID, UpdateTask{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTask(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := newTestUser(t, s, "alice@example.com")

	task, err := s.CreateTask(ctx, userID, "Doomed", nil)
	require.NoError(t, err)

	deleted, err := s.DeleteTask(ctx, task.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, "Doomed", deleted.Title)

	_, err = s.GetTask(ctx, task.ID, userID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.DeleteTask(ctx, task.ID, userID)
	assert.ErrorIs(t, err, ErrNotFound)
}
