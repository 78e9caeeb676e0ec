package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ProcessRequest is the body for one conversational turn. Only user_id and
// message are required.
type ProcessRequest struct {
	UserID     string   `json:"user_id"`
	Message    string   `json:"message"`
	PatientAge *float64 `json:"patient_age,omitempty"`
}

// ProcessMessage runs one turn of the assistant pipeline.
// POST /v1/process
func (h *Handler) ProcessMessage(c echo.Context) error {
	var req ProcessRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.UserID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id is required"})
	}
	if req.PatientAge != nil && *req.PatientAge < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "patient_age must be non-negative"})
	}

	result := h.assistant.ProcessMessage(c.Request().Context(), req.UserID, req.Message, req.PatientAge)
	if result.Rejected {
		return c.JSON(http.StatusBadRequest, result)
	}
	return c.JSON(http.StatusOK, result)
}
