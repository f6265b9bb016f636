// Package http exposes the orchestrator over HTTP. The boundary contract
// the voice layer sees is always "text to speak", never a raw tool-call
// echo.
package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/voicebook/voicebook/internal/domain"
)

// Orchestrator is the turn-step surface the transport depends on.
type Orchestrator interface {
	Step(ctx context.Context, conversationID string, messages []domain.Turn) (*domain.SpokenResponse, error)
	End(ctx context.Context, conversationID string) error
}

// Handler handles orchestrator HTTP requests.
type Handler struct {
	svc Orchestrator
	log *zap.Logger
}

// NewHandler creates a new handler.
func NewHandler(svc Orchestrator, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/conversations/:conversation_id/turn", h.Turn)
	e.DELETE("/v1/conversations/:conversation_id", h.EndConversation)

	// OpenAI-compatible facade for voice platforms.
	e.POST("/v1/chat/completions", h.ChatCompletions)

	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// turnRequest is the native inbound turn payload.
type turnRequest struct {
	Messages []domain.Turn `json:"messages"`
}

// Turn handles one conversation turn.
// POST /v1/conversations/:conversation_id/turn
func (h *Handler) Turn(c echo.Context) error {
	conversationID := c.Param("conversation_id")

	var req turnRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	resp, err := h.svc.Step(c.Request().Context(), conversationID, req.Messages)
	if err != nil {
		h.log.Error("turn step failed",
			zap.String("conversation_id", conversationID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal error",
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// EndConversation marks a conversation ended without booking.
// DELETE /v1/conversations/:conversation_id
func (h *Handler) EndConversation(c echo.Context) error {
	conversationID := c.Param("conversation_id")
	if err := h.svc.End(c.Request().Context(), conversationID); err != nil {
		h.log.Error("failed to end conversation",
			zap.String("conversation_id", conversationID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal error",
		})
	}
	return c.NoContent(http.StatusNoContent)
}

// Health returns health status. It never touches conversation state.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}
