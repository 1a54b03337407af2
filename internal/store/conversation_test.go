package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskloop-ai/taskchat/internal/model"
)

func TestConversationLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := newTestUser(t, s, "alice@example.com")

	conv, err := s.CreateConversation(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, conv.UserID)

	got, err := s.GetConversation(ctx, conv.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.MessageCount)

	list, err := s.ListConversations(ctx, userID, 50, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, conv.ID, list[0].ID)
}

func TestGetConversationScopedByOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := newTestUser(t, s, "alice@example.com")
	bob := newTestUser(t, s, "bob@example.com")

	conv, err := s.CreateConversation(ctx, alice)
	require.NoError(t, err)

	_, err = s.GetConversation(ctx, conv.ID, bob)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppendMessageBumpsConversation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := newTestUser(t, s, "alice@example.com")

	conv, err := s.CreateConversation(ctx, userID)
	require.NoError(t, err)

	msg, err := s.AppendMessage(ctx, conv.ID, model.RoleUser, "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, msg.ConversationID)

	got, err := s.GetConversation(ctx, conv.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.MessageCount)
	assert.GreaterOrEqual(t, got.UpdatedAt.Unix(), conv.UpdatedAt.Unix())
}

func TestAppendMessageLengthLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := newTestUser(t, s, "alice@example.com")

	conv, err := s.CreateConversation(ctx, userID)
	require.NoError(t, err)

	_, err = s.AppendMessage(ctx, conv.ID, model.RoleUser, strings.Repeat("a", model.MessageMaxLength+1), nil)
	assert.Error(t, err)

	// The cap counts characters, so a max-length multibyte message fits.
	_, err = s.AppendMessage(ctx, conv.ID, model.RoleUser, strings.Repeat("é", model.MessageMaxLength), nil)
	require.NoError(t, err)

	history, err := s.History(ctx, conv.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestAppendMessageRejectsInvalidRole(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := newTestUser(t, s, "alice@example.com")

	conv, err := s.CreateConversation(ctx, userID)
	require.NoError(t, err)

	_, err = s.AppendMessage(ctx, conv.ID, model.Role("robot"), "beep", nil)
	assert.Error(t, err)
}

func TestHistoryOrderAndToolCalls(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := newTestUser(t, s, "alice@example.com")

	conv, err := s.CreateConversation(ctx, userID)
	require.NoError(t, err)

	_, err = s.AppendMessage(ctx, conv.ID, model.RoleUser, "add buy milk", nil)
	require.NoError(t, err)

	calls := []model.ToolCallRecord{{
		Tool:      "create_task",
		Arguments: map[string]any{"user_id": float64(userID), "title": "buy milk"},
		Result:    map[string]any{"success": true, "task_id": float64(1)},
	}}
	_, err = s.AppendMessage(ctx, conv.ID, model.RoleAssistant, "Added task #1: buy milk", calls)
	require.NoError(t, err)

	history, err := s.History(ctx, conv.ID, 50)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.RoleUser, history[0].Role)
	assert.Equal(t, model.RoleAssistant, history[1].Role)
	require.Len(t, history[1].ToolCalls, 1)
	assert.Equal(t, "create_task", history[1].ToolCalls[0].Tool)
	assert.Equal(t, true, history[1].ToolCalls[0].Result["success"])
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "alice@example.com", "Alice", "hash")
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, "alice@example.com", "Other Alice", "hash2")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestGetUserByEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, "alice@example.com", "Alice", "hash")
	require.NoError(t, err)

	user, err := s.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "hash", user.PasswordHash)

	_, err = s.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
