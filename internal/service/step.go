package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voicebook/voicebook/internal/adapter/calendar"
	"github.com/voicebook/voicebook/internal/adapter/llm"
	"github.com/voicebook/voicebook/internal/domain"
	"github.com/voicebook/voicebook/internal/grounding"
	"github.com/voicebook/voicebook/internal/idempotency"
	"github.com/voicebook/voicebook/internal/metrics"
)

// Step processes one conversation turn and returns the text to speak.
// Deterministic given the transcript and the grounding context; the
// model's output is advisory, only the orchestrator's own validated
// state authorizes the booking call. Turns for the same conversation id
// are serialized.
func (s *Service) Step(ctx context.Context, conversationID string, messages []domain.Turn) (*domain.SpokenResponse, error) {
	mu := s.lockFor(conversationID)
	mu.Lock()
	defer mu.Unlock()

	conv, err := s.getOrCreate(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	// Replayed directives for a booked conversation are acknowledged
	// with the prior confirmation; no second booking call is ever made.
	if conv.State == domain.StateBooked {
		metrics.DuplicatesSuppressed.Inc()
		return s.respond(conv, conv.Confirmation), nil
	}
	if rec, err := s.guard.Lookup(ctx, conversationID); err == nil && rec != nil && rec.Status == "booked" {
		metrics.DuplicatesSuppressed.Inc()
		conv.State = domain.StateBooked
		conv.EventID = rec.EventID
		conv.Confirmation = rec.Confirmation
		return s.finish(ctx, conv, rec.Confirmation, "duplicate")
	}

	utterance := lastUserUtterance(messages)
	if utterance != "" {
		s.appendTurn(ctx, conversationID, "user", utterance, nil)
	}

	gctx := grounding.BuildContext(s.now())

	// Nothing said yet: open the call deterministically.
	if utterance == "" {
		return s.finish(ctx, conv, spokenGreeting, "greeted")
	}

	// A failed booking is resumable; the retry is user-initiated.
	if conv.State == domain.StateFailed {
		conv.Draft.Confirmed = false
		if conv.Draft.Complete() {
			conv.State = domain.StateProposing
		} else {
			conv.State = domain.StateCollecting
		}
	}

	if conv.State == domain.StateProposing {
		switch classifyConfirmation(utterance) {
		case VerdictAffirmative:
			conv.Draft.Confirmed = true
			conv.State = domain.StateConfirmed
		case VerdictNegative:
			// Only the disputed fields are unset; agreed fields survive
			// so the whole form is not re-asked.
			conv.Draft.Confirmed = false
			conv.State = domain.StateCollecting
			unsetFields(&conv.Draft, disputedFields(utterance))
		default:
			return s.finish(ctx, conv, restatement(&conv.Draft), "reproposed")
		}
	}

	if conv.State == domain.StateConfirmed {
		return s.executeBooking(ctx, conv, gctx)
	}

	return s.collect(ctx, conv, gctx, messages)
}

// collect runs one model invocation and folds its output into the draft.
func (s *Service) collect(ctx context.Context, conv *domain.Conversation, gctx grounding.Context, messages []domain.Turn) (*domain.SpokenResponse, error) {
	resp, err := s.complete(ctx, gctx, messages)
	if err != nil {
		s.log.Warn("model call failed",
			zap.String("conversation_id", conv.ConversationID),
			zap.Error(err))
		return s.finish(ctx, conv, spokenLLMTrouble, "upstream_timeout")
	}

	msg := firstMessage(resp)
	if msg == nil {
		return s.finish(ctx, conv, spokenParseFail, "validation_error")
	}

	call := firstToolCall(msg)
	if call == nil {
		// Continue conversation: the model's clarifying question is
		// relayed verbatim to the voice layer.
		text := msg.Content
		if text == "" {
			text = nextQuestion(&conv.Draft)
		}
		return s.finish(ctx, conv, text, "relayed")
	}

	dir, err := domain.ParseDirective(call.Function.Name, call.Function.Arguments)
	if err != nil {
		// Malformed directive is a parse failure, not a booking attempt.
		s.log.Warn("directive rejected",
			zap.String("conversation_id", conv.ConversationID),
			zap.Error(err))
		conv.State = domain.StateCollecting
		return s.finish(ctx, conv, spokenParseFail, "validation_error")
	}

	if decision, reason, err := s.evaluatePolicy(ctx, conv, call); err != nil || decision == "block" {
		s.log.Warn("directive blocked by policy",
			zap.String("conversation_id", conv.ConversationID),
			zap.String("reason", reason),
			zap.Error(err))
		conv.State = domain.StateCollecting
		return s.finish(ctx, conv, spokenParseFail, "validation_error")
	}

	s.appendTurn(ctx, conv.ConversationID, "assistant", msg.Content, json.RawMessage(call.Function.Arguments))

	// Temporal sanity before anything merges into date/time. Rejection
	// keeps the monotonic fields the directive did resolve.
	switch checkTemporal(gctx, dir.Date, dir.Time) {
	case temporalPastDate:
		dir.Date, dir.Time = "", ""
		conv.Draft.Merge(dir)
		conv.State = domain.StateCollecting
		return s.finish(ctx, conv, spokenPastDate, "rejected_past_date")
	case temporalPastTime:
		dir.Time = ""
		conv.Draft.Merge(dir)
		conv.State = domain.StateCollecting
		return s.finish(ctx, conv, spokenPastTime, "rejected_past_time")
	}

	conv.Draft.Merge(dir)

	if conv.Draft.Complete() {
		// All fields resolvable: restate them from our own draft for
		// confirmation. The model's wording is not trusted here.
		conv.State = domain.StateProposing
		return s.finish(ctx, conv, restatement(&conv.Draft), "proposed")
	}

	conv.State = domain.StateCollecting
	text := msg.Content
	if text == "" {
		text = nextQuestion(&conv.Draft)
	}
	return s.finish(ctx, conv, text, "collected")
}

// executeBooking performs the single calendar side effect for a
// confirmed conversation, guarded by the idempotency record.
func (s *Service) executeBooking(ctx context.Context, conv *domain.Conversation, gctx grounding.Context) (*domain.SpokenResponse, error) {
	// Last validation gate before the side effect.
	switch checkTemporal(gctx, conv.Draft.Date, conv.Draft.Time) {
	case temporalPastDate:
		conv.Draft.Date, conv.Draft.Time = "", ""
		conv.Draft.Confirmed = false
		conv.State = domain.StateCollecting
		return s.finish(ctx, conv, spokenPastDate, "rejected_past_date")
	case temporalPastTime:
		conv.Draft.Time = ""
		conv.Draft.Confirmed = false
		conv.State = domain.StateCollecting
		return s.finish(ctx, conv, spokenPastTime, "rejected_past_time")
	}

	acquired, prior, err := s.guard.Acquire(ctx, conv.ConversationID)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		metrics.DuplicatesSuppressed.Inc()
		conv.State = domain.StateBooked
		conv.EventID = prior.EventID
		conv.Confirmation = prior.Confirmation
		return s.finish(ctx, conv, prior.Confirmation, "duplicate")
	}
	if !acquired {
		// Another instance holds the reservation right now.
		return s.respond(conv, spokenBookingBusy), nil
	}

	start, err := conv.Draft.StartTime()
	if err != nil {
		_ = s.guard.Release(ctx, conv.ConversationID)
		conv.Draft.Confirmed = false
		conv.State = domain.StateCollecting
		return s.finish(ctx, conv, spokenParseFail, "validation_error")
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Calendar.Timeout)
	defer cancel()

	began := time.Now()
	eventID, err := s.calendar.CreateEvent(callCtx, &calendar.EventRequest{
		Summary:     conv.Draft.EffectiveTitle(),
		Description: "Scheduled via voice agent for " + conv.Draft.AttendeeName,
		Attendee:    conv.Draft.AttendeeName,
		Start:       start,
		End:         start.Add(time.Hour),
	})
	metrics.CalendarRequestDuration.Observe(time.Since(began).Seconds())

	if err != nil {
		// One attempt per turn: a silent retry here could double-book.
		_ = s.guard.Release(ctx, conv.ConversationID)
		conv.State = domain.StateFailed
		if domain.IsAuthFailure(err) {
			s.log.Error("calendar credentials rejected",
				zap.String("conversation_id", conv.ConversationID),
				zap.Error(err))
			metrics.BookingsTotal.WithLabelValues("auth_failure").Inc()
			return s.finish(ctx, conv, spokenAuthFail, "auth_failure")
		}
		s.log.Warn("calendar booking failed",
			zap.String("conversation_id", conv.ConversationID),
			zap.Error(err))
		metrics.BookingsTotal.WithLabelValues("transient_failure").Inc()
		return s.finish(ctx, conv, spokenBookFail, "booking_failed")
	}

	text := confirmation(&conv.Draft)
	if err := s.guard.Commit(ctx, conv.ConversationID, &idempotency.Record{
		EventID:      eventID,
		Confirmation: text,
		BookedAt:     s.now().UTC(),
	}); err != nil {
		s.log.Error("failed to persist booking record",
			zap.String("conversation_id", conv.ConversationID),
			zap.Error(err))
	}

	metrics.BookingsTotal.WithLabelValues("success").Inc()
	s.log.Info("event booked",
		zap.String("conversation_id", conv.ConversationID),
		zap.String("event_id", eventID),
		zap.String("date", conv.Draft.Date),
		zap.String("time", conv.Draft.Time))

	conv.State = domain.StateBooked
	conv.EventID = eventID
	conv.Confirmation = text
	return s.finish(ctx, conv, text, "booked")
}

// complete makes the single bounded model call for this turn.
func (s *Service) complete(ctx context.Context, gctx grounding.Context, messages []domain.Turn) (*llm.ChatResponse, error) {
	chatMessages := make([]llm.Message, 0, len(messages)+1)
	chatMessages = append(chatMessages, llm.Message{Role: "system", Content: gctx.SystemPrompt()})
	for _, t := range messages {
		// Inbound system messages are replaced by our grounding prompt.
		if t.Role != "user" && t.Role != "assistant" {
			continue
		}
		if t.Content == "" {
			continue
		}
		chatMessages = append(chatMessages, llm.Message{Role: t.Role, Content: t.Content})
	}

	temperature := 0.3
	maxTokens := 1000

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.LLM.Timeout)
	defer cancel()

	began := time.Now()
	resp, err := s.llm.Complete(callCtx, &llm.ChatRequest{
		Model:       s.cfg.LLM.Model,
		Messages:    chatMessages,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		Tools:       bookingTools(),
		ToolChoice:  "auto",
	})
	metrics.LLMRequestDuration.Observe(time.Since(began).Seconds())
	return resp, err
}

func (s *Service) evaluatePolicy(ctx context.Context, conv *domain.Conversation, call *llm.ToolCall) (string, string, error) {
	args := map[string]interface{}{}
	if call.Function.Arguments != "" {
		// Schema validation already passed; a decode failure here is
		// unreachable in practice but treated as empty args.
		_ = json.Unmarshal([]byte(call.Function.Arguments), &args)
	}
	return s.policy.Evaluate(ctx, map[string]interface{}{
		"function": call.Function.Name,
		"args":     args,
		"state":    string(conv.State),
	})
}

func (s *Service) getOrCreate(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv != nil {
		return conv, nil
	}
	conv = &domain.Conversation{
		ConversationID: conversationID,
		State:          domain.StateCollecting,
		CreatedAt:      s.now().UTC(),
		UpdatedAt:      s.now().UTC(),
	}
	if err := s.store.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// finish persists the conversation, records the assistant turn, and
// renders the spoken response.
func (s *Service) finish(ctx context.Context, conv *domain.Conversation, text, outcome string) (*domain.SpokenResponse, error) {
	conv.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateConversation(ctx, conv); err != nil {
		return nil, err
	}
	s.appendTurn(ctx, conv.ConversationID, "assistant", text, nil)
	metrics.TurnsTotal.WithLabelValues(outcome).Inc()
	return s.respond(conv, text), nil
}

func (s *Service) respond(conv *domain.Conversation, text string) *domain.SpokenResponse {
	return &domain.SpokenResponse{
		ConversationID: conv.ConversationID,
		State:          conv.State,
		Text:           text,
	}
}

func (s *Service) appendTurn(ctx context.Context, conversationID, role, content string, payload json.RawMessage) {
	err := s.store.AppendTurn(ctx, &domain.Turn{
		TurnID:         "turn_" + uuid.New().String()[:8],
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		ToolPayload:    payload,
		CreatedAt:      s.now().UTC(),
	})
	if err != nil {
		s.log.Warn("failed to record turn",
			zap.String("conversation_id", conversationID),
			zap.Error(err))
	}
}

func lastUserUtterance(messages []domain.Turn) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}

func firstMessage(resp *llm.ChatResponse) *llm.Message {
	if resp == nil || len(resp.Choices) == 0 {
		return nil
	}
	return resp.Choices[0].Message
}

func firstToolCall(msg *llm.Message) *llm.ToolCall {
	if len(msg.ToolCalls) == 0 {
		return nil
	}
	return &msg.ToolCalls[0]
}
