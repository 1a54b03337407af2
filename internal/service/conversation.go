package service

import (
	"context"
	"fmt"

	"github.com/taskloop-ai/taskchat/internal/model"
	"github.com/taskloop-ai/taskchat/internal/store"
	"github.com/taskloop-ai/taskchat/pkg/logger"
	"github.com/taskloop-ai/taskchat/pkg/metrics"
)

// ConversationService handles conversation and transcript reads.
type ConversationService struct {
	store  *store.Store
	logger *logger.Logger
}

// NewConversationService creates a new conversation service.
func NewConversationService(st *store.Store, log *logger.Logger) *ConversationService {
	return &ConversationService{store: st, logger: log}
}

// Create starts a new, empty conversation for the user.
func (s *ConversationService) Create(ctx context.Context, userID int64) (*model.Conversation, error) {
	conv, err := s.store.CreateConversation(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	metrics.ConversationsTotal.Inc()
	return conv, nil
}

// Get returns one conversation scoped by (id, userID).
func (s *ConversationService) Get(ctx context.Context, userID, conversationID int64) (*model.Conversation, error) {
	return s.store.GetConversation(ctx, conversationID, userID)
}

// List returns the user's conversations ordered by recent activity.
func (s *ConversationService) List(ctx context.Context, userID int64, limit, offset int) ([]model.Conversation, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListConversations(ctx, userID, limit, offset)
}

// Messages returns the conversation transcript in chronological order.
// Ownership is checked before any message row is read.
func (s *ConversationService) Messages(ctx context.Context, userID, conversationID int64, limit int) ([]model.Message, error) {
	if _, err := s.store.GetConversation(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 200
	}
	return s.store.History(ctx, conversationID, limit)
}
