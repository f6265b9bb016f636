// Package grounding builds the deterministic current-time context that is
// injected into every model invocation, so relative date phrases like
// "next Monday" resolve the same way no matter which instance answers.
package grounding

import (
	"fmt"
	"time"
)

// Context is an immutable snapshot of "now" in UTC. It is built fresh for
// every inbound request and never cached across requests.
type Context struct {
	CurrentDateUTC  string // 2006-01-02
	CurrentWeekday  string // Monday
	CurrentClockUTC string // 15:04
	TimezonePolicy  string // always "UTC"
}

// BuildContext expresses now in UTC and snapshots the calendar date,
// weekday name, and clock time. Pure function, always succeeds.
func BuildContext(now time.Time) Context {
	utc := now.UTC()
	return Context{
		CurrentDateUTC:  utc.Format("2006-01-02"),
		CurrentWeekday:  utc.Weekday().String(),
		CurrentClockUTC: utc.Format("15:04"),
		TimezonePolicy:  "UTC",
	}
}

// Today returns the snapshot date as a time value at UTC midnight.
func (c Context) Today() time.Time {
	t, _ := time.Parse("2006-01-02", c.CurrentDateUTC)
	return t
}

// SpokenDate renders the snapshot date the way it is read back to the
// user, e.g. "Friday, February 20, 2026".
func (c Context) SpokenDate() string {
	return c.Today().Format("Monday, January 2, 2006")
}

// SystemPrompt renders the grounded instruction block for the model. The
// date, weekday, and clock time are embedded so the model can resolve
// relative dates and refuse past ones; the orchestrator still re-checks
// both on every directive.
func (c Context) SystemPrompt() string {
	return fmt.Sprintf(`You are Tara, a friendly and professional scheduling assistant.
Today is %s (%s) and the current time is %s UTC. Use this to:
- Resolve relative dates like "tomorrow", "next Monday", "this Thursday" to actual calendar dates
- Roll date-only phrases like "February 25th" to next year when that date has already passed this year
- Refuse any date before today, and any time earlier than %s UTC when the date is today

Collect, in order: the caller's full name, the meeting date, the meeting
time (clarify AM or PM, remind them times are saved in UTC), and an
optional meeting title. Ask one question at a time. If a date is ambiguous
like "next week", ask which day.

Whenever you have extracted new booking details, call the
createCalendarEvent function with every field you know so far, even if some are still missing,
and keep the conversation going with your next question. Dates must be
YYYY-MM-DD and times 24-hour HH:MM in UTC.

Once all details are collected they will be read back for confirmation.
Never claim an event is booked yourself. If the caller asks about anything
unrelated, say politely that you can only help with booking calendar
events, then steer back. Be warm and conversational, not robotic.`,
		c.SpokenDate(), c.CurrentDateUTC, c.CurrentClockUTC, c.CurrentClockUTC)
}
