package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuard(t *testing.T) (*Guard, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(rdb), mr
}

func TestAcquireOwnsFreshSlot(t *testing.T) {
	g, _ := newTestGuard(t)
	ctx := context.Background()

	acquired, prior, err := g.Acquire(ctx, "conv_1")
	require.NoError(t, err)
	assert.True(t, acquired)
	assert.Nil(t, prior)
}

func TestAcquireWhilePendingIsRefused(t *testing.T) {
	g, _ := newTestGuard(t)
	ctx := context.Background()

	acquired, _, err := g.Acquire(ctx, "conv_2")
	require.NoError(t, err)
	require.True(t, acquired)

	// A second caller gets neither ownership nor a finished record.
	acquired, prior, err := g.Acquire(ctx, "conv_2")
	require.NoError(t, err)
	assert.False(t, acquired)
	assert.Nil(t, prior)
}

func TestAcquireAfterCommitReturnsRecord(t *testing.T) {
	g, _ := newTestGuard(t)
	ctx := context.Background()

	acquired, _, err := g.Acquire(ctx, "conv_3")
	require.NoError(t, err)
	require.True(t, acquired)

	booked := time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC)
	require.NoError(t, g.Commit(ctx, "conv_3", &Record{
		EventID:      "evt_123",
		Confirmation: "Done! You're all set!",
		BookedAt:     booked,
	}))

	acquired, prior, err := g.Acquire(ctx, "conv_3")
	require.NoError(t, err)
	assert.False(t, acquired)
	require.NotNil(t, prior)
	assert.Equal(t, "booked", prior.Status)
	assert.Equal(t, "evt_123", prior.EventID)
	assert.Equal(t, "Done! You're all set!", prior.Confirmation)
	assert.True(t, prior.BookedAt.Equal(booked))
}

func TestReleaseReopensSlot(t *testing.T) {
	g, _ := newTestGuard(t)
	ctx := context.Background()

	acquired, _, err := g.Acquire(ctx, "conv_4")
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, g.Release(ctx, "conv_4"))

	acquired, prior, err := g.Acquire(ctx, "conv_4")
	require.NoError(t, err)
	assert.True(t, acquired)
	assert.Nil(t, prior)
}

func TestPendingReservationExpires(t *testing.T) {
	g, mr := newTestGuard(t)
	ctx := context.Background()

	acquired, _, err := g.Acquire(ctx, "conv_5")
	require.NoError(t, err)
	require.True(t, acquired)

	// A crashed holder stops shadowing the slot once the TTL lapses.
	mr.FastForward(pendingTTL + time.Second)

	acquired, prior, err := g.Acquire(ctx, "conv_5")
	require.NoError(t, err)
	assert.True(t, acquired)
	assert.Nil(t, prior)
}

func TestCommittedRecordNeverExpires(t *testing.T) {
	g, mr := newTestGuard(t)
	ctx := context.Background()

	acquired, _, err := g.Acquire(ctx, "conv_6")
	require.NoError(t, err)
	require.True(t, acquired)
	require.NoError(t, g.Commit(ctx, "conv_6", &Record{EventID: "evt_6"}))

	mr.FastForward(24 * time.Hour)

	rec, err := g.Lookup(ctx, "conv_6")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "evt_6", rec.EventID)
}

func TestLookupAbsent(t *testing.T) {
	g, _ := newTestGuard(t)

	rec, err := g.Lookup(context.Background(), "conv_nothing")
	require.NoError(t, err)
	assert.Nil(t, rec)
}
