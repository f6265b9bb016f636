package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/voicebook/voicebook/internal/adapter/llm"
	"github.com/voicebook/voicebook/internal/domain"
)

// ChatCompletions adapts the OpenAI chat-completions wire format onto the
// turn step, for voice platforms that can only call a "custom LLM"
// endpoint. The conversation id rides in the x-conversation-id header; a
// fresh id is minted when the platform sends none. The response is always
// a plain assistant message, tool calls are resolved internally.
// POST /v1/chat/completions
func (h *Handler) ChatCompletions(c echo.Context) error {
	conversationID := c.Request().Header.Get("x-conversation-id")
	if conversationID == "" {
		conversationID = "conv_" + uuid.New().String()[:8]
	}

	var req llm.ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, llm.ErrorResponse{
			Error: &llm.APIError{
				Message: "invalid request body",
				Type:    "invalid_request_error",
			},
		})
	}

	messages := make([]domain.Turn, 0, len(req.Messages))
	for _, m := range req.Messages {
		// Platform system prompts are dropped; grounding is injected
		// inside the orchestrator.
		if m.Role != "user" && m.Role != "assistant" {
			continue
		}
		messages = append(messages, domain.Turn{Role: m.Role, Content: m.Content})
	}

	resp, err := h.svc.Step(c.Request().Context(), conversationID, messages)
	if err != nil {
		h.log.Error("turn step failed",
			zap.String("conversation_id", conversationID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, llm.ErrorResponse{
			Error: &llm.APIError{
				Message: "internal error",
				Type:    "internal_error",
			},
		})
	}

	c.Response().Header().Set("x-conversation-id", conversationID)
	return c.JSON(http.StatusOK, &llm.ChatResponse{
		ID:      "chatcmpl_" + uuid.New().String()[:8],
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []llm.Choice{{
			Index: 0,
			Message: &llm.Message{
				Role:    "assistant",
				Content: resp.Text,
			},
			FinishReason: "stop",
		}},
	})
}
