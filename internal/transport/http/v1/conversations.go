package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/carebridge/triage-assistant/internal/domain"
)

// GetConversationHistory retrieves recent messages for a user. Unknown users
// yield an empty history, not an error.
// GET /v1/conversations/:user_id
func (h *Handler) GetConversationHistory(c echo.Context) error {
	userID := c.Param("user_id")
	limit := 10
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}

	messages := h.assistant.GetConversationHistory(userID, limit)
	if messages == nil {
		messages = []domain.Message{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user_id":  userID,
		"messages": messages,
	})
}

// ExportConversation serializes the full conversation plus triage summary.
// GET /v1/conversations/:user_id/export
func (h *Handler) ExportConversation(c echo.Context) error {
	return c.JSON(http.StatusOK, h.assistant.ExportConversation(c.Param("user_id")))
}

// ResetConversation discards the user's session and starts a fresh one.
// POST /v1/conversations/:user_id/reset
func (h *Handler) ResetConversation(c echo.Context) error {
	state := h.assistant.ResetConversation(c.Param("user_id"))
	return c.JSON(http.StatusOK, map[string]string{
		"message":    "Conversation has been reset. How can I help you today?",
		"session_id": state.SessionID,
		"status":     "conversation_reset",
	})
}

// EndConversation marks the user's session complete; it stays queryable.
// POST /v1/conversations/:user_id/end
func (h *Handler) EndConversation(c echo.Context) error {
	reason := c.QueryParam("reason")
	if reason == "" {
		reason = "completed"
	}
	h.assistant.EndConversation(c.Param("user_id"), reason)
	return c.JSON(http.StatusOK, map[string]string{"status": "conversation_ended"})
}

// GetStats returns system statistics.
// GET /v1/stats
func (h *Handler) GetStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.assistant.GetSystemStats())
}

// GetIntents lists the intents the classifier can produce.
// GET /v1/intents
func (h *Handler) GetIntents(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"intents": []domain.Intent{
			domain.IntentEmergency,
			domain.IntentSymptomTriage,
			domain.IntentAppointmentBooking,
			domain.IntentMedicationInfo,
			domain.IntentInsuranceQuestion,
			domain.IntentGeneralInquiry,
		},
	})
}
