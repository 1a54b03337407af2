package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/taskloop-ai/taskchat/internal/model"
)

// CreateConversation starts a new, empty conversation for the user.
func (s *Store) CreateConversation(ctx context.Context, userID int64) (*model.Conversation, error) {
	now := time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO conversations (user_id, created_at, updated_at) VALUES (?, ?, ?)",
		userID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation id: %w", err)
	}
	return &model.Conversation{
		ID:        id,
		UserID:    userID,
		CreatedAt: time.Unix(now, 0),
		UpdatedAt: time.Unix(now, 0),
	}, nil
}

// GetConversation returns the conversation scoped by (id, userID),
// including its message count. Foreign ownership yields ErrNotFound.
func (s *Store) GetConversation(ctx context.Context, conversationID, userID int64) (*model.Conversation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT c.id, c.user_id, c.created_at, c.updated_at,
			(SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id)
		 FROM conversations c WHERE c.id = ? AND c.user_id = ?`,
		conversationID, userID,
	)
	return scanConversation(row)
}

// ListConversations returns the user's conversations ordered by most
// recent activity first.
func (s *Store) ListConversations(ctx context.Context, userID int64, limit, offset int) ([]model.Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.user_id, c.created_at, c.updated_at,
			(SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id)
		 FROM conversations c WHERE c.user_id = ?
		 ORDER BY c.updated_at DESC, c.id DESC LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	conversations := []model.Conversation{}
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, *conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return conversations, nil
}

// AppendMessage appends an immutable message to the conversation and bumps
// the conversation's updated_at. Both writes happen in one transaction:
// never one without the other.
func (s *Store) AppendMessage(ctx context.Context, conversationID int64, role model.Role, content string, toolCalls []model.ToolCallRecord) (*model.Message, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("invalid message role %q", role)
	}
	if utf8.RuneCountInString(content) > model.MessageMaxLength {
		return nil, fmt.Errorf("message content exceeds %d characters", model.MessageMaxLength)
	}

	var toolCallsJSON sql.NullString
	if len(toolCalls) > 0 {
		data, err := json.Marshal(toolCalls)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal tool calls: %w", err)
		}
		toolCallsJSON = sql.NullString{String: string(data), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO messages (conversation_id, role, content, tool_calls, created_at) VALUES (?, ?, ?, ?, ?)",
		conversationID, string(role), content, toolCallsJSON, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read message id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE conversations SET updated_at = ? WHERE id = ?", now, conversationID); err != nil {
		return nil, fmt.Errorf("failed to bump conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit message: %w", err)
	}

	return &model.Message{
		ID:             id,
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		ToolCalls:      toolCalls,
		CreatedAt:      time.Unix(now, 0),
	}, nil
}

// History returns the conversation's messages in chronological order,
// ties broken by id, capped at limit.
func (s *Store) History(ctx context.Context, conversationID int64, limit int) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, tool_calls, created_at
		 FROM messages WHERE conversation_id = ?
		 ORDER BY created_at ASC, id ASC LIMIT ?`,
		conversationID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var (
			msg           model.Message
			role          string
			toolCallsJSON sql.NullString
			createdAt     int64
		)
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &role, &msg.Content, &toolCallsJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = model.Role(role)
		msg.CreatedAt = time.Unix(createdAt, 0)
		if toolCallsJSON.Valid {
			if err := json.Unmarshal([]byte(toolCallsJSON.String), &msg.ToolCalls); err != nil {
				return nil, fmt.Errorf("failed to unmarshal tool calls: %w", err)
			}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return messages, nil
}

func scanConversation(row rowScanner) (*model.Conversation, error) {
	var (
		conv      model.Conversation
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(&conv.ID, &conv.UserID, &createdAt, &updatedAt, &conv.MessageCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan conversation: %w", err)
	}
	conv.CreatedAt = time.Unix(createdAt, 0)
	conv.UpdatedAt = time.Unix(updatedAt, 0)
	return &conv, nil
}
