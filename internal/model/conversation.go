package model

import (
	"time"
)

// Conversation represents a chat thread between one user and the agent.
// It is owned exclusively by that user; updated_at bumps on every
// appended message.
type Conversation struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}
