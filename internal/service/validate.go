package service

import (
	"time"

	"github.com/voicebook/voicebook/internal/domain"
	"github.com/voicebook/voicebook/internal/grounding"
)

// temporalVerdict is the outcome of checking extracted date/time against
// the grounding context.
type temporalVerdict int

const (
	temporalOK temporalVerdict = iota
	temporalPastDate
	temporalPastTime
)

// checkTemporal rejects dates before the grounding date, and times that
// have already passed when the date is today. It guards against both
// model date-math mistakes and users naming past dates; the model's own
// claims are never trusted.
func checkTemporal(gctx grounding.Context, date, clock string) temporalVerdict {
	if date == "" {
		return temporalOK
	}
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return temporalPastDate
	}
	today := gctx.Today()
	if d.Before(today) {
		return temporalPastDate
	}
	if d.Equal(today) && clock != "" && clock <= gctx.CurrentClockUTC {
		return temporalPastTime
	}
	return temporalOK
}

// unsetFields clears the named draft fields after a correction, leaving
// everything the user did not dispute intact.
func unsetFields(d *domain.BookingDraft, fields []string) {
	for _, f := range fields {
		switch f {
		case "name":
			d.AttendeeName = ""
		case "date":
			d.Date = ""
		case "time":
			d.Time = ""
		case "title":
			d.Title = ""
		}
	}
}
