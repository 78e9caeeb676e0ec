// Package http provides the HTTP server for the triage assistant API.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/carebridge/triage-assistant/internal/assistant"
	v1 "github.com/carebridge/triage-assistant/internal/transport/http/v1"
)

// NewServer creates and configures the public-facing HTTP server.
func NewServer(a *assistant.Assistant) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Register routes
	h := v1.NewHandler(a)
	h.RegisterRoutes(e)

	return e
}
