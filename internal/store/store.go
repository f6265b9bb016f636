// Package store keeps per-conversation dialogue state: the draft, the
// state tag, and the transcript. Conversations are created on first turn
// and evicted when they reach a terminal state.
package store

import (
	"context"

	"github.com/voicebook/voicebook/internal/domain"
)

// Store defines conversation persistence. Implementations must tolerate
// concurrent access across conversation ids; per-id serialization is the
// orchestrator's job.
type Store interface {
	// GetConversation returns the conversation or (nil, nil) when absent.
	GetConversation(ctx context.Context, conversationID string) (*domain.Conversation, error)
	CreateConversation(ctx context.Context, conv *domain.Conversation) error
	UpdateConversation(ctx context.Context, conv *domain.Conversation) error
	// DeleteConversation evicts the conversation and its turns.
	DeleteConversation(ctx context.Context, conversationID string) error

	AppendTurn(ctx context.Context, turn *domain.Turn) error
	GetTurns(ctx context.Context, conversationID string, limit int) ([]domain.Turn, error)

	Close() error
}
