package domain

import (
	"errors"
	"fmt"
)

// Error codes for booking failures. Handlers use these to pick the spoken
// response and decide whether the failure is retryable.
const (
	ErrCodeValidation       = "validation_error"
	ErrCodeUpstreamTimeout  = "upstream_timeout"
	ErrCodeDuplicateBooking = "duplicate_booking_attempt"
	ErrCodeAuthFailure      = "auth_failure"
	ErrCodeUpstream         = "upstream_error"
)

// BookingError is a machine-distinguishable failure from the calendar
// collaborator.
type BookingError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("booking failed [%s]: %s", e.Code, e.Message)
}

// IsAuthFailure reports whether err is a calendar credential failure,
// which is non-retryable and needs operator intervention.
func IsAuthFailure(err error) bool {
	var be *BookingError
	return errors.As(err, &be) && be.Code == ErrCodeAuthFailure
}
