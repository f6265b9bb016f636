package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyConfirmationAffirmative(t *testing.T) {
	for _, utterance := range []string{
		"Yes",
		"yes.",
		"Yep!",
		"sure",
		"Sounds good",
		"That's right",
		"yes please",
		"Book it",
		"Okay, perfect",
		"Go ahead and book that",
	} {
		t.Run(utterance, func(t *testing.T) {
			assert.Equal(t, VerdictAffirmative, classifyConfirmation(utterance))
		})
	}
}

func TestClassifyConfirmationNegative(t *testing.T) {
	for _, utterance := range []string{
		"No",
		"nope",
		"Actually, make it 3pm",
		"Wait, the name is wrong",
		"yes but change the time",
		"Don't book that",
		"cancel",
	} {
		t.Run(utterance, func(t *testing.T) {
			assert.Equal(t, VerdictNegative, classifyConfirmation(utterance))
		})
	}
}

func TestClassifyConfirmationAmbiguous(t *testing.T) {
	for _, utterance := range []string{
		"",
		"   ",
		"maybe",
		"hmm",
		"what time was that again?",
		"yes?",
		"can you repeat that",
	} {
		t.Run(utterance, func(t *testing.T) {
			assert.Equal(t, VerdictAmbiguous, classifyConfirmation(utterance))
		})
	}
}

func TestDisputedFields(t *testing.T) {
	cases := []struct {
		utterance string
		want      []string
	}{
		{"Actually, change the time to 3pm", []string{"time"}},
		{"No, Monday doesn't work", []string{"date"}},
		{"Wrong name", []string{"name"}},
		{"The title should be different", []string{"title"}},
		{"No, make it Tuesday at 10am", []string{"time", "date"}},
		{"No, that's all wrong", nil},
	}
	for _, tc := range cases {
		t.Run(tc.utterance, func(t *testing.T) {
			assert.ElementsMatch(t, tc.want, disputedFields(tc.utterance))
		})
	}
}
