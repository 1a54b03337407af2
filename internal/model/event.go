package model

import (
	"time"
)

// EventType represents the type of chat event published to the event feed.
type EventType string

const (
	EventTypeMessageAppended EventType = "message_appended"
	EventTypeToolExecuted    EventType = "tool_executed"
	EventTypeAgentDegraded   EventType = "agent_degraded"
)

// ChatEvent is the payload published to JetStream for every notable
// occurrence in a chat cycle. SQLite remains the system of record; the
// feed exists for downstream consumers (audit, notifications).
type ChatEvent struct {
	ID             string         `json:"id"`
	ConversationID int64          `json:"conversation_id"`
	UserID         int64          `json:"user_id"`
	Type           EventType      `json:"type"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}
