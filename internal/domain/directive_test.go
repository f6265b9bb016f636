package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirectiveComplete(t *testing.T) {
	dir, err := ParseDirective(FunctionCreateCalendarEvent,
		`{"attendee_name":"John Smith","date":"2026-02-23","time":"14:00","title":"Project Kickoff"}`)
	require.NoError(t, err)

	assert.Equal(t, FunctionCreateCalendarEvent, dir.Function)
	assert.Equal(t, "John Smith", dir.AttendeeName)
	assert.Equal(t, "2026-02-23", dir.Date)
	assert.Equal(t, "14:00", dir.Time)
	assert.Equal(t, "Project Kickoff", dir.Title)
}

func TestParseDirectivePartial(t *testing.T) {
	dir, err := ParseDirective(FunctionCreateCalendarEvent, `{"attendee_name":"John Smith"}`)
	require.NoError(t, err)

	assert.Equal(t, "John Smith", dir.AttendeeName)
	assert.Empty(t, dir.Date)
	assert.Empty(t, dir.Time)
}

func TestParseDirectiveEmptyArgs(t *testing.T) {
	dir, err := ParseDirective(FunctionCreateCalendarEvent, "")
	require.NoError(t, err)
	assert.Empty(t, dir.AttendeeName)
}

func TestParseDirectiveMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":        `{"attendee_name":`,
		"wrong type":      `{"attendee_name":42}`,
		"bad date format": `{"date":"February 23rd"}`,
		"bad time format": `{"time":"2pm"}`,
		"out of range":    `{"time":"25:00"}`,
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDirective(FunctionCreateCalendarEvent, args)
			assert.Error(t, err)
		})
	}
}

func TestDraftMergeIsMonotonic(t *testing.T) {
	var d BookingDraft
	d.Merge(&Directive{AttendeeName: "John Smith"})
	d.Merge(&Directive{Date: "2026-02-23"})
	d.Merge(&Directive{Time: "14:00"})

	// Supplying an unrelated field never drops an extracted one.
	assert.Equal(t, "John Smith", d.AttendeeName)
	assert.Equal(t, "2026-02-23", d.Date)
	assert.Equal(t, "14:00", d.Time)
	assert.True(t, d.Complete())
	assert.Empty(t, d.Title)

	d.Merge(&Directive{Time: "15:00"})
	assert.Equal(t, "15:00", d.Time)
	assert.Equal(t, "2026-02-23", d.Date)
}

func TestDraftComplete(t *testing.T) {
	d := BookingDraft{AttendeeName: "John", Date: "2026-02-23"}
	assert.False(t, d.Complete())
	d.Time = "14:00"
	assert.True(t, d.Complete())
}

func TestDraftEffectiveTitle(t *testing.T) {
	d := BookingDraft{AttendeeName: "John Smith"}
	assert.Equal(t, "Meeting with John Smith", d.EffectiveTitle())
	d.Title = "Project Kickoff"
	assert.Equal(t, "Project Kickoff", d.EffectiveTitle())
}

func TestDraftStartTime(t *testing.T) {
	d := BookingDraft{Date: "2026-02-23", Time: "14:00"}
	start, err := d.StartTime()
	require.NoError(t, err)
	assert.Equal(t, "2026-02-23T14:00:00Z", start.Format("2006-01-02T15:04:05Z07:00"))
}
