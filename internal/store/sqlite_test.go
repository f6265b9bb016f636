package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicebook/voicebook/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testConversation(id string) *domain.Conversation {
	now := time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC)
	return &domain.Conversation{
		ConversationID: id,
		State:          domain.StateCollecting,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestGetConversationAbsent(t *testing.T) {
	s := newTestStore(t)

	conv, err := s.GetConversation(context.Background(), "conv_missing")
	require.NoError(t, err)
	assert.Nil(t, conv)
}

func TestCreateAndGetConversation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv := testConversation("conv_1")
	conv.Draft = domain.BookingDraft{
		AttendeeName: "John Smith",
		Date:         "2026-02-23",
		Time:         "14:00",
		Title:        "Project Kickoff",
	}
	require.NoError(t, s.CreateConversation(ctx, conv))

	got, err := s.GetConversation(ctx, "conv_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.StateCollecting, got.State)
	assert.Equal(t, conv.Draft, got.Draft)
	assert.True(t, got.CreatedAt.Equal(conv.CreatedAt))
}

func TestUpdateConversation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv := testConversation("conv_2")
	require.NoError(t, s.CreateConversation(ctx, conv))

	conv.State = domain.StateBooked
	conv.Draft.Confirmed = true
	conv.EventID = "evt_abc123"
	conv.Confirmation = "Done! You're all set!"
	require.NoError(t, s.UpdateConversation(ctx, conv))

	got, err := s.GetConversation(ctx, "conv_2")
	require.NoError(t, err)
	assert.Equal(t, domain.StateBooked, got.State)
	assert.True(t, got.Draft.Confirmed)
	assert.Equal(t, "evt_abc123", got.EventID)
	assert.Equal(t, "Done! You're all set!", got.Confirmation)
}

func TestUpdateConversationMissing(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateConversation(context.Background(), testConversation("conv_ghost"))
	assert.Error(t, err)
}

func TestDeleteConversationCascadesTurns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv := testConversation("conv_3")
	require.NoError(t, s.CreateConversation(ctx, conv))
	require.NoError(t, s.AppendTurn(ctx, &domain.Turn{
		TurnID:         "turn_1",
		ConversationID: "conv_3",
		Role:           "user",
		Content:        "Hi",
		CreatedAt:      conv.CreatedAt,
	}))

	require.NoError(t, s.DeleteConversation(ctx, "conv_3"))

	got, err := s.GetConversation(ctx, "conv_3")
	require.NoError(t, err)
	assert.Nil(t, got)

	turns, err := s.GetTurns(ctx, "conv_3", 0)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestAppendAndGetTurns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv := testConversation("conv_4")
	require.NoError(t, s.CreateConversation(ctx, conv))

	base := conv.CreatedAt
	require.NoError(t, s.AppendTurn(ctx, &domain.Turn{
		TurnID:         "turn_a",
		ConversationID: "conv_4",
		Role:           "user",
		Content:        "Hi, I'm John Smith",
		CreatedAt:      base,
	}))
	require.NoError(t, s.AppendTurn(ctx, &domain.Turn{
		TurnID:         "turn_b",
		ConversationID: "conv_4",
		Role:           "assistant",
		Content:        "Thanks, John!",
		ToolPayload:    json.RawMessage(`{"attendee_name": "John Smith"}`),
		CreatedAt:      base.Add(time.Second),
	}))

	turns, err := s.GetTurns(ctx, "conv_4", 0)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "turn_a", turns[0].TurnID)
	assert.Nil(t, turns[0].ToolPayload)
	assert.Equal(t, "turn_b", turns[1].TurnID)
	assert.JSONEq(t, `{"attendee_name": "John Smith"}`, string(turns[1].ToolPayload))

	limited, err := s.GetTurns(ctx, "conv_4", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "turn_a", limited[0].TurnID)
}
