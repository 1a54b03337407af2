package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/taskloop-ai/taskchat/internal/model"
)

const (
	// StreamName is the name of the chat activity stream.
	StreamName = "CHAT_EVENTS"

	// SubjectPrefix is the prefix for all chat event subjects.
	SubjectPrefix = "chat"
)

// StreamManager handles JetStream stream operations for the event feed.
// The database remains the system of record; the stream is a best-effort
// fan-out and publish failures never fail a chat request.
type StreamManager struct {
	client *Client
}

// NewStreamManager creates a new stream manager.
func NewStreamManager(client *Client) *StreamManager {
	return &StreamManager{client: client}
}

// EnsureStream ensures the chat event stream exists with proper
// configuration.
func (m *StreamManager) EnsureStream(ctx context.Context) error {
	js := m.client.JetStream()

	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      30 * 24 * time.Hour,
		MaxBytes:    10 * 1024 * 1024 * 1024, // 10GB
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		Description: "Chat activity events (messages, tool executions, degradations)",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// EventSubject returns the subject for an event.
func EventSubject(userID, conversationID int64, eventType model.EventType) string {
	return fmt.Sprintf("%s.%d.%d.%s", SubjectPrefix, userID, conversationID, eventType)
}

// UserFilter returns the filter subject matching all events of one user.
func UserFilter(userID int64) string {
	return fmt.Sprintf("%s.%d.>", SubjectPrefix, userID)
}

// PublishEvent publishes an event to JetStream and returns its stream
// sequence.
func (m *StreamManager) PublishEvent(ctx context.Context, event *model.ChatEvent) (uint64, error) {
	subject := EventSubject(event.UserID, event.ConversationID, event.Type)

	data, err := json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal event: %w", err)
	}

	ack, err := m.client.JetStream().Publish(ctx, subject, data)
	if err != nil {
		return 0, fmt.Errorf("failed to publish event: %w", err)
	}

	return ack.Sequence, nil
}
