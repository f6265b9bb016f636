package grounding

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildContext(t *testing.T) {
	now := time.Date(2026, 2, 20, 10, 30, 0, 0, time.UTC)
	ctx := BuildContext(now)

	assert.Equal(t, "2026-02-20", ctx.CurrentDateUTC)
	assert.Equal(t, "Friday", ctx.CurrentWeekday)
	assert.Equal(t, "10:30", ctx.CurrentClockUTC)
	assert.Equal(t, "UTC", ctx.TimezonePolicy)
}

func TestBuildContextNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("PKT", 5*60*60)
	// 02:00 on the 21st in PKT is still the 20th in UTC.
	now := time.Date(2026, 2, 21, 2, 0, 0, 0, loc)
	ctx := BuildContext(now)

	assert.Equal(t, "2026-02-20", ctx.CurrentDateUTC)
	assert.Equal(t, "21:00", ctx.CurrentClockUTC)
}

func TestBuildContextDeterministic(t *testing.T) {
	now := time.Date(2026, 2, 20, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, BuildContext(now), BuildContext(now))
}

func TestSystemPromptEmbedsGrounding(t *testing.T) {
	ctx := BuildContext(time.Date(2026, 2, 20, 10, 30, 0, 0, time.UTC))
	prompt := ctx.SystemPrompt()

	assert.True(t, strings.Contains(prompt, "Friday, February 20, 2026"))
	assert.True(t, strings.Contains(prompt, "2026-02-20"))
	assert.True(t, strings.Contains(prompt, "10:30 UTC"))
	assert.True(t, strings.Contains(prompt, "createCalendarEvent"))
}

func TestSpokenDate(t *testing.T) {
	ctx := BuildContext(time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "Monday, February 23, 2026", ctx.SpokenDate())
}
