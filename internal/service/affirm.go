package service

import (
	"strings"
)

// Verdict classifies a user utterance heard at the confirmation step.
type Verdict int

const (
	// VerdictAmbiguous means neither a clear yes nor a clear no; the
	// restatement is repeated and no transition happens.
	VerdictAmbiguous Verdict = iota
	// VerdictAffirmative is an explicit unambiguous yes.
	VerdictAffirmative
	// VerdictNegative is a refusal or a correction.
	VerdictNegative
)

var affirmatives = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "yup": true, "sure": true,
	"correct": true, "right": true, "exactly": true, "absolutely": true,
	"perfect": true, "confirm": true, "confirmed": true, "ok": true,
	"okay": true,
}

var affirmativePhrases = []string{
	"that's right", "thats right", "sounds good", "sounds right",
	"that works", "book it", "go ahead", "please do", "that's correct",
	"thats correct", "looks good", "yes please",
}

var negativeCues = []string{
	"no", "nope", "not", "don't", "dont", "wrong", "change", "actually",
	"instead", "rather", "incorrect", "cancel", "wait",
}

func normalize(utterance string) string {
	s := strings.ToLower(strings.TrimSpace(utterance))
	s = strings.NewReplacer(".", " ", ",", " ", "!", " ", ";", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// classifyConfirmation decides whether an utterance at PROPOSING is an
// explicit affirmative, a refusal/correction, or neither. Negative cues
// win over affirmative ones so "yes but change the time" corrects rather
// than books, and a question mark is never treated as consent.
func classifyConfirmation(utterance string) Verdict {
	s := normalize(utterance)
	if s == "" {
		return VerdictAmbiguous
	}

	words := strings.Fields(s)
	for _, w := range words {
		if containsWord(negativeCues, w) {
			return VerdictNegative
		}
	}

	if strings.Contains(utterance, "?") {
		return VerdictAmbiguous
	}

	if affirmatives[s] {
		return VerdictAffirmative
	}
	for _, p := range affirmativePhrases {
		if s == p || strings.HasPrefix(s, p+" ") {
			return VerdictAffirmative
		}
	}
	if affirmatives[words[0]] {
		return VerdictAffirmative
	}
	return VerdictAmbiguous
}

func containsWord(set []string, w string) bool {
	for _, s := range set {
		if s == w {
			return true
		}
	}
	return false
}

var weekdayWords = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
	"sunday", "tomorrow", "today", "date", "day", "week", "month",
}

var timeWords = []string{
	"time", "am", "pm", "oclock", "o'clock", "noon", "midnight", "hour",
	"morning", "afternoon", "evening", "earlier", "later",
}

// disputedFields guesses which draft fields a correction utterance is
// about, so only those are unset and agreed fields survive. An empty
// result means the dispute is unclear: nothing is unset and the next
// extraction is re-validated wholesale.
func disputedFields(utterance string) []string {
	s := normalize(utterance)
	words := strings.Fields(s)

	var fields []string
	add := func(f string) {
		for _, have := range fields {
			if have == f {
				return
			}
		}
		fields = append(fields, f)
	}

	for _, w := range words {
		if containsWord(timeWords, w) || clockLike(w) {
			add("time")
		}
		if containsWord(weekdayWords, w) {
			add("date")
		}
		if w == "name" {
			add("name")
		}
		if w == "title" || w == "called" || w == "subject" {
			add("title")
		}
	}
	return fields
}

// clockLike matches spoken time tokens such as "3pm", "10am", "3:30pm".
func clockLike(w string) bool {
	if !strings.HasSuffix(w, "am") && !strings.HasSuffix(w, "pm") {
		return false
	}
	head := strings.TrimSuffix(strings.TrimSuffix(w, "am"), "pm")
	if head == "" {
		return false
	}
	for _, r := range head {
		if (r < '0' || r > '9') && r != ':' {
			return false
		}
	}
	return true
}
