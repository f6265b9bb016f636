package service

import (
	"fmt"
	"time"

	"github.com/voicebook/voicebook/internal/domain"
)

// Fixed spoken lines. The model's text is advisory; everything that
// states or confirms booking facts is rendered here from the
// orchestrator's own draft.
const (
	spokenPastDate    = "It looks like that date has already passed. Could you choose a date from today onwards?"
	spokenPastTime    = "That time has already passed today. Could you pick a later time, or would you prefer a different date?"
	spokenParseFail   = "Sorry, I didn't quite catch those details. Could you tell me again?"
	spokenLLMTrouble  = "I'm sorry, I'm having a little trouble right now. Could you say that again?"
	spokenBookFail    = "I'm sorry, I couldn't reach the calendar to book that just now. Would you like me to try again?"
	spokenAuthFail    = "I'm sorry, I'm unable to access the calendar at the moment, and trying again won't help until it's fixed on our side. Please call back later."
	spokenBookingBusy = "One moment, I'm just finishing up your booking."
	spokenGreeting    = "Hi! I'm Tara, your scheduling assistant. I'd love to help you book a meeting today! Could I get your full name?"
)

func spokenDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 2, 2006")
}

func spokenTime(clock string) string {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return clock
	}
	return t.Format("3:04 PM")
}

// restatement reads back every extracted field for confirmation. It is
// generated from the draft the orchestrator holds, never from the model,
// so the user always hears the values that would actually be booked.
func restatement(d *domain.BookingDraft) string {
	return fmt.Sprintf("Just to confirm — I'll book '%s' for %s on %s at %s UTC. Does that sound right?",
		d.EffectiveTitle(), d.AttendeeName, spokenDate(d.Date), spokenTime(d.Time))
}

// confirmation is the fixed post-booking sentence.
func confirmation(d *domain.BookingDraft) string {
	return fmt.Sprintf("Done! I've created '%s' for %s on %s at %s UTC. You're all set!",
		d.EffectiveTitle(), d.AttendeeName, spokenDate(d.Date), spokenTime(d.Time))
}

// nextQuestion asks for the first missing required field, used when the
// model produced a directive but no text to speak.
func nextQuestion(d *domain.BookingDraft) string {
	switch {
	case d.AttendeeName == "":
		return "Could I get your full name?"
	case d.Date == "":
		return "What date would you like? You can say things like tomorrow or next Monday."
	case d.Time == "":
		return "What time works for you? I'll save it in UTC."
	default:
		return "Would you like to give the meeting a title? It's optional."
	}
}
