// Package calendar talks to the calendar provider. The provider is a
// black box with an idempotency-unaware create-event call, so the caller
// must guarantee at-most-once semantics itself.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/voicebook/voicebook/internal/domain"
)

// EventRequest describes the event to create. Times are UTC.
type EventRequest struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Attendee    string    `json:"attendee"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// Client is the interface the orchestrator depends on.
type Client interface {
	CreateEvent(ctx context.Context, req *EventRequest) (string, error)
}

// HTTPClient implements Client against the provider's HTTP API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a calendar client with a bounded per-call timeout.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type createEventResponse struct {
	EventID string `json:"event_id"`
}

// CreateEvent makes exactly one attempt to create the event and returns
// its id. Failures are classified: 401/403 is an auth failure (operator
// problem, non-retryable), timeouts and everything else are transient.
func (c *HTTPClient) CreateEvent(ctx context.Context, req *EventRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/events", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		code := domain.ErrCodeUpstream
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			code = domain.ErrCodeUpstreamTimeout
		}
		return "", &domain.BookingError{Code: code, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.BookingError{Code: domain.ErrCodeUpstream, Message: err.Error()}
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var result createEventResponse
		if err := json.Unmarshal(respBody, &result); err != nil || result.EventID == "" {
			return "", &domain.BookingError{Code: domain.ErrCodeUpstream, Message: "calendar returned no event id"}
		}
		return result.EventID, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", &domain.BookingError{
			Code:    domain.ErrCodeAuthFailure,
			Message: fmt.Sprintf("calendar rejected credentials [%d]", resp.StatusCode),
		}
	default:
		return "", &domain.BookingError{
			Code:    domain.ErrCodeUpstream,
			Message: fmt.Sprintf("calendar error [%d]: %s", resp.StatusCode, strings.TrimSpace(string(respBody))),
		}
	}
}
