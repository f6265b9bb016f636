// Package domain defines the core models for the scheduling orchestrator.
package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// State represents the dialogue state of a conversation.
type State string

const (
	StateCollecting State = "COLLECTING"
	StateProposing  State = "PROPOSING"
	StateConfirmed  State = "CONFIRMED"
	StateBooked     State = "BOOKED"
	StateFailed     State = "FAILED"
	StateAbandoned  State = "ABANDONED"
)

// Terminal reports whether no further transitions are possible.
// FAILED is not terminal: a later user turn may retry the booking.
func (s State) Terminal() bool {
	return s == StateBooked || s == StateAbandoned
}

// Turn is one exchange unit in a conversation transcript. Turns are
// append-only and never mutated once recorded.
type Turn struct {
	TurnID         string          `json:"turn_id,omitempty"`
	ConversationID string          `json:"conversation_id,omitempty"`
	Role           string          `json:"role"` // user, assistant, system
	Content        string          `json:"content"`
	ToolPayload    json.RawMessage `json:"tool_payload,omitempty"`
	CreatedAt      time.Time       `json:"created_at,omitempty"`
}

// BookingDraft accumulates the extracted booking fields for one conversation.
// Date is a calendar date ("2006-01-02") and Time a UTC clock time ("15:04");
// an empty string means the field is not yet extracted.
type BookingDraft struct {
	AttendeeName string `json:"attendee_name"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Title        string `json:"title"`
	Confirmed    bool   `json:"confirmed"`
}

// Complete reports whether every required field has been extracted.
// Title is optional and falls back to a placeholder.
func (d *BookingDraft) Complete() bool {
	return d.AttendeeName != "" && d.Date != "" && d.Time != ""
}

// EffectiveTitle returns the meeting title, defaulting to a placeholder
// built from the attendee name when the user skipped it.
func (d *BookingDraft) EffectiveTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return "Meeting with " + d.AttendeeName
}

// Merge folds the fields of a directive into the draft. Fields the
// directive provides overwrite the draft (a correction is a re-extraction);
// fields it omits are left untouched, so the draft only ever grows.
func (d *BookingDraft) Merge(dir *Directive) {
	if dir.AttendeeName != "" {
		d.AttendeeName = dir.AttendeeName
	}
	if dir.Date != "" {
		d.Date = dir.Date
	}
	if dir.Time != "" {
		d.Time = dir.Time
	}
	if dir.Title != "" {
		d.Title = dir.Title
	}
}

// StartTime resolves the draft into the event start instant in UTC.
func (d *BookingDraft) StartTime() (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04", d.Date+" "+d.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("draft has unresolvable start: %w", err)
	}
	return t.UTC(), nil
}

// Conversation is the orchestrator's keyed record for one dialogue: the
// state tag, the accumulating draft, and the booking outcome once reached.
type Conversation struct {
	ConversationID string       `json:"conversation_id"`
	State          State        `json:"state"`
	Draft          BookingDraft `json:"draft"`
	EventID        string       `json:"event_id,omitempty"`
	Confirmation   string       `json:"confirmation,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// SpokenResponse is what the voice layer receives for every turn: always
// text to speak, never a raw tool-call echo.
type SpokenResponse struct {
	ConversationID string `json:"conversation_id"`
	State          State  `json:"state"`
	Text           string `json:"text"`
}
