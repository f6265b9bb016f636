// Package idempotency holds the process-wide booking record keyed by
// conversation id. It is the guarantee that a conversation produces at
// most one externally visible calendar event, even when the upstream
// voice layer replays a confirmed turn.
package idempotency

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "booking:"

// pendingTTL bounds how long a crashed in-flight reservation can shadow
// the key before a retry becomes possible again.
const pendingTTL = 2 * time.Minute

// Record is the durable outcome of a completed booking. The confirmation
// sentence is stored so a replayed directive can be answered with the
// original wording.
type Record struct {
	Status       string    `json:"status"` // pending or booked
	EventID      string    `json:"event_id,omitempty"`
	Confirmation string    `json:"confirmation,omitempty"`
	BookedAt     time.Time `json:"booked_at,omitempty"`
}

// Guard is the Redis-backed idempotency record.
type Guard struct {
	rdb *redis.Client
}

// New creates a guard on top of an existing Redis client.
func New(rdb *redis.Client) *Guard {
	return &Guard{rdb: rdb}
}

// Acquire reserves the booking slot for a conversation. It returns
// (true, nil) when this caller owns the only reservation, and
// (false, record) when a finished booking already exists. (false, nil)
// means another caller is mid-booking right now.
func (g *Guard) Acquire(ctx context.Context, conversationID string) (bool, *Record, error) {
	pending, err := json.Marshal(Record{Status: "pending"})
	if err != nil {
		return false, nil, err
	}

	ok, err := g.rdb.SetNX(ctx, keyPrefix+conversationID, pending, pendingTTL).Result()
	if err != nil {
		return false, nil, fmt.Errorf("failed to reserve booking slot: %w", err)
	}
	if ok {
		return true, nil, nil
	}

	rec, err := g.Lookup(ctx, conversationID)
	if err != nil {
		return false, nil, err
	}
	if rec != nil && rec.Status == "booked" {
		return false, rec, nil
	}
	return false, nil, nil
}

// Commit replaces the pending reservation with the booked record. The
// record is kept without expiry: it is the only memory of the booking
// once the conversation itself is evicted.
func (g *Guard) Commit(ctx context.Context, conversationID string, rec *Record) error {
	rec.Status = "booked"
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := g.rdb.Set(ctx, keyPrefix+conversationID, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to commit booking record: %w", err)
	}
	return nil
}

// Release drops a pending reservation after a failed booking so a
// user-initiated retry can attempt again.
func (g *Guard) Release(ctx context.Context, conversationID string) error {
	if err := g.rdb.Del(ctx, keyPrefix+conversationID).Err(); err != nil {
		return fmt.Errorf("failed to release booking slot: %w", err)
	}
	return nil
}

// Lookup returns the booking record, nil when none exists.
func (g *Guard) Lookup(ctx context.Context, conversationID string) (*Record, error) {
	data, err := g.rdb.Get(ctx, keyPrefix+conversationID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up booking record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("corrupt booking record: %w", err)
	}
	return &rec, nil
}
