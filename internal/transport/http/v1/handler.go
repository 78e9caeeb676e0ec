// Package v1 provides the HTTP handlers for the triage assistant. The API is
// a thin wrapper; all decisions are made by the assistant facade and its
// components.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carebridge/triage-assistant/internal/assistant"
)

// Handler handles HTTP requests.
type Handler struct {
	assistant *assistant.Assistant
}

// NewHandler creates a new handler.
func NewHandler(a *assistant.Assistant) *Handler {
	return &Handler{assistant: a}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/process", h.ProcessMessage)
	e.GET("/v1/conversations/:user_id", h.GetConversationHistory)
	e.GET("/v1/conversations/:user_id/export", h.ExportConversation)
	e.POST("/v1/conversations/:user_id/reset", h.ResetConversation)
	e.POST("/v1/conversations/:user_id/end", h.EndConversation)
	e.GET("/v1/stats", h.GetStats)
	e.GET("/v1/intents", h.GetIntents)

	e.GET("/health", h.Health)
}

// Health returns health status.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "1.0.0",
	})
}
