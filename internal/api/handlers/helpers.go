package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/labyrinth/internal/ai"
	"github.com/playmatatu/labyrinth/internal/auth"
	"github.com/playmatatu/labyrinth/internal/level"
	"github.com/playmatatu/labyrinth/internal/session"
)

// respondError maps domain errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, level.ErrNotFound):
		status, message = http.StatusNotFound, "level not found"
	case errors.Is(err, session.ErrNotFound):
		status, message = http.StatusNotFound, "session not found"
	case errors.Is(err, ai.ErrNoPath):
		status, message = http.StatusBadRequest, "level has no path for the autopilot"
	case errors.Is(err, auth.ErrInvalidToken):
		status, message = http.StatusUnauthorized, "invalid session token"
	case errors.Is(err, session.ErrClosed):
		status, message = http.StatusServiceUnavailable, "session closed"
	case errors.Is(err, level.ErrInvalidLevel):
		log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		message = "stored level is invalid"
	default:
		log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}

	c.JSON(status, gin.H{"error": message})
}
