// Package service implements the dialogue orchestrator: the
// per-conversation state machine that decides, turn by turn, whether
// enough booking information exists, what to say next, and when the
// single calendar side effect may happen.
package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/voicebook/voicebook/internal/adapter/calendar"
	"github.com/voicebook/voicebook/internal/adapter/llm"
	"github.com/voicebook/voicebook/internal/config"
	"github.com/voicebook/voicebook/internal/domain"
	"github.com/voicebook/voicebook/internal/idempotency"
	"github.com/voicebook/voicebook/internal/store"
	"github.com/voicebook/voicebook/policy"
)

// Service drives the turn loop. One instance serves all conversations;
// turns for the same conversation id are serialized through a keyed
// mutex, distinct conversations run in parallel.
type Service struct {
	store    store.Store
	llm      llm.Client
	calendar calendar.Client
	guard    *idempotency.Guard
	policy   *policy.Engine
	cfg      *config.Config
	log      *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	// now is the clock used when building grounding contexts.
	now func() time.Time
}

// New wires the orchestrator.
func New(st store.Store, llmClient llm.Client, calClient calendar.Client,
	guard *idempotency.Guard, policyEngine *policy.Engine,
	cfg *config.Config, log *zap.Logger) *Service {
	return &Service{
		store:    st,
		llm:      llmClient,
		calendar: calClient,
		guard:    guard,
		policy:   policyEngine,
		cfg:      cfg,
		log:      log,
		locks:    map[string]*sync.Mutex{},
		now:      time.Now,
	}
}

func (s *Service) lockFor(conversationID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.locks[conversationID]; ok {
		return m
	}
	m := &sync.Mutex{}
	s.locks[conversationID] = m
	return m
}

func (s *Service) dropLock(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, conversationID)
}

// bookingToolParameters is the schema advertised to the model for the
// createCalendarEvent function.
const bookingToolParameters = `{
	"type": "object",
	"properties": {
		"attendee_name": {"type": "string", "description": "The caller's full name"},
		"date": {"type": "string", "description": "Meeting date, YYYY-MM-DD"},
		"time": {"type": "string", "description": "Meeting time in UTC, 24-hour HH:MM"},
		"title": {"type": "string", "description": "Meeting title, optional"}
	}
}`

func bookingTools() []llm.Tool {
	return []llm.Tool{{
		Type: "function",
		Function: llm.ToolFunction{
			Name:        domain.FunctionCreateCalendarEvent,
			Description: "Records booking details extracted from the conversation. Call with every field known so far, even partially.",
			Parameters:  json.RawMessage(bookingToolParameters),
		},
	}}
}

// End marks a conversation abandoned and evicts it. Called when the
// voice layer reports the call ended without a booking. Ending a booked
// conversation just evicts; the idempotency record keeps the booking.
func (s *Service) End(ctx context.Context, conversationID string) error {
	mu := s.lockFor(conversationID)
	mu.Lock()
	defer mu.Unlock()
	defer s.dropLock(conversationID)

	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv == nil {
		return nil
	}

	if !conv.State.Terminal() {
		s.log.Info("conversation abandoned",
			zap.String("conversation_id", conversationID),
			zap.String("state", string(conv.State)))
	}
	return s.store.DeleteConversation(ctx, conversationID)
}
