package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskloop-ai/taskchat/internal/agent"
	"github.com/taskloop-ai/taskchat/internal/model"
	natsclient "github.com/taskloop-ai/taskchat/internal/nats"
	"github.com/taskloop-ai/taskchat/internal/store"
	"github.com/taskloop-ai/taskchat/pkg/logger"
	"github.com/taskloop-ai/taskchat/pkg/metrics"
)

// historyLimit caps how many prior messages are replayed to the model.
const historyLimit = 100

// Agent runs one agent turn. Satisfied by *agent.Orchestrator.
type Agent interface {
	Run(ctx context.Context, userID int64, message string, history []model.Message) (*agent.Result, error)
}

// ChatService coordinates one chat cycle: resolve the conversation,
// persist the user message, run the agent, persist the assistant answer
// and publish activity events.
type ChatService struct {
	store   *store.Store
	agent   Agent
	streams *natsclient.StreamManager
	logger  *logger.Logger
}

// NewChatService creates a new chat service. streams may be nil, in which
// case no events are published.
func NewChatService(st *store.Store, ag Agent, streams *natsclient.StreamManager, log *logger.Logger) *ChatService {
	return &ChatService{
		store:   st,
		agent:   ag,
		streams: streams,
		logger:  log,
	}
}

// Chat handles one user message end to end. The user message is persisted
// before the model is called, so it survives any downstream failure. An
// error after that point means the model's first round-trip failed and no
// tool ran; everything later degrades instead of erroring.
func (s *ChatService) Chat(ctx context.Context, userID int64, req *model.ChatRequest) (*model.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, validationErr("Message cannot be empty")
	}
	if utf8.RuneCountInString(req.Message) > model.ChatMessageMaxLength {
		return nil, validationErr("Message must be 5000 characters or less")
	}

	var (
		conv *model.Conversation
		err  error
	)
	if req.ConversationID != nil {
		conv, err = s.store.GetConversation(ctx, *req.ConversationID, userID)
		if err != nil {
			return nil, err
		}
	} else {
		conv, err = s.store.CreateConversation(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("create conversation: %w", err)
		}
		metrics.ConversationsTotal.Inc()
	}

	history, err := s.store.History(ctx, conv.ID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	// Durability first: the user message is committed before the model is
	// ever called.
	userMsg, err := s.store.AppendMessage(ctx, conv.ID, model.RoleUser, req.Message, nil)
	if err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}
	metrics.MessagesTotal.WithLabelValues(string(model.RoleUser)).Inc()
	s.publishEvent(ctx, conv.ID, userID, model.EventTypeMessageAppended, map[string]any{
		"message_id": userMsg.ID,
		"role":       string(model.RoleUser),
	})

	result, err := s.agent.Run(ctx, userID, message, history)
	if err != nil {
		// First round-trip failed; no tool ran and no assistant answer
		// exists. The user message stays committed.
		s.logger.Error("agent run failed",
			zap.Int64("user_id", userID),
			zap.Int64("conversation_id", conv.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrAgentFailure, err)
	}

	for _, call := range result.ToolCalls {
		s.publishEvent(ctx, conv.ID, userID, model.EventTypeToolExecuted, map[string]any{
			"tool":    call.Tool,
			"success": call.Result["success"],
		})
	}
	if result.Degraded {
		s.publishEvent(ctx, conv.ID, userID, model.EventTypeAgentDegraded, nil)
	}

	assistantMsg, err := s.store.AppendMessage(ctx, conv.ID, model.RoleAssistant, result.Message, result.ToolCalls)
	if err != nil {
		// Losing the assistant side of the exchange would leave the
		// transcript inconsistent with the tool effects, so this is fatal.
		return nil, fmt.Errorf("persist assistant message: %w", err)
	}
	metrics.MessagesTotal.WithLabelValues(string(model.RoleAssistant)).Inc()
	s.publishEvent(ctx, conv.ID, userID, model.EventTypeMessageAppended, map[string]any{
		"message_id": assistantMsg.ID,
		"role":       string(model.RoleAssistant),
	})

	return &model.ChatResponse{
		Message:        result.Message,
		ConversationID: conv.ID,
		ToolCalls:      result.ToolCalls,
	}, nil
}

// publishEvent emits one event to the feed. Publishing is best effort:
// failures are logged and counted, never surfaced to the caller.
func (s *ChatService) publishEvent(ctx context.Context, conversationID, userID int64, eventType model.EventType, metadata map[string]any) {
	if s.streams == nil {
		return
	}
	_, err := s.streams.PublishEvent(ctx, &model.ChatEvent{
		ID:             uuid.Must(uuid.NewV7()).String(),
		ConversationID: conversationID,
		UserID:         userID,
		Type:           eventType,
		Metadata:       metadata,
		CreatedAt:      time.Now(),
	})
	status := "success"
	if err != nil {
		status = "error"
		s.logger.Warn("failed to publish chat event",
			zap.String("type", string(eventType)),
			zap.Int64("conversation_id", conversationID),
			zap.Error(err),
		)
	}
	metrics.EventsPublishedTotal.WithLabelValues(string(eventType), status).Inc()
}
