// Package metrics defines the Prometheus collectors for the orchestrator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicebook_turns_total",
		Help: "Conversation turns processed, by outcome",
	}, []string{"outcome"})

	BookingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicebook_bookings_total",
		Help: "Calendar booking attempts, by result",
	}, []string{"result"})

	DuplicatesSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicebook_duplicate_bookings_suppressed_total",
		Help: "Booking directives ignored because the conversation was already booked",
	})

	LLMRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voicebook_llm_request_duration_seconds",
		Help:    "Latency of language model completion calls",
		Buckets: prometheus.DefBuckets,
	})

	CalendarRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voicebook_calendar_request_duration_seconds",
		Help:    "Latency of calendar create-event calls",
		Buckets: prometheus.DefBuckets,
	})
)
