package model

import (
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem, RoleTool:
		return true
	}
	return false
}

// MessageMaxLength is the maximum persisted message content length in
// characters.
const MessageMaxLength = 10000

// ChatMessageMaxLength is the maximum inbound chat message length in
// characters.
const ChatMessageMaxLength = 5000

// ToolCallRecord captures one tool invocation made during an agent turn.
// Records are stored as JSON metadata on the assistant message that
// answered the turn; they are not entities of their own.
type ToolCallRecord struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
	Result    map[string]any `json:"result"`
}

// Message represents a single message inside a conversation.
// Messages are immutable once written and strictly ordered by
// (created_at, id) within their conversation.
type Message struct {
	ID             int64            `json:"id"`
	ConversationID int64            `json:"conversation_id"`
	Role           Role             `json:"role"`
	Content        string           `json:"content"`
	ToolCalls      []ToolCallRecord `json:"tool_calls,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// ChatRequest is the request body for the chat endpoint.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID *int64 `json:"conversation_id,omitempty"`
}

// ChatResponse is the response body for the chat endpoint.
type ChatResponse struct {
	Message        string           `json:"message"`
	ConversationID int64            `json:"conversation_id"`
	ToolCalls      []ToolCallRecord `json:"tool_calls,omitempty"`
}
