package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/labyrinth/internal/auth"
	"github.com/playmatatu/labyrinth/internal/session"
)

// CreateSession starts a session on a level and hands back the token needed
// to drive it.
func CreateSession(sessions *session.Manager, tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Level     string `json:"level" binding:"required"`
			Autopilot bool   `json:"autopilot"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. Level name required."})
			return
		}

		sess, err := sessions.Create(c.Request.Context(), req.Level, req.Autopilot)
		if err != nil {
			respondError(c, err)
			return
		}

		token, err := tokens.Issue(sess.ID)
		if err != nil {
			log.Printf("[ERROR] CreateSession - failed to issue token for %s: %v", sess.ID, err)
			sessions.Remove(c.Request.Context(), sess.ID)
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"session_id": sess.ID,
			"token":      token,
			"level":      sess.Level,
			"ws_path":    "/api/v1/sessions/" + sess.ID + "/ws?pt=" + token,
		})
	}
}

// GetSession returns the current snapshot of a session.
func GetSession(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := sessions.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		snap, err := sess.Snapshot()
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// EndSession stops a session. The caller must hold its token.
func EndSession(sessions *session.Manager, tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := tokens.VerifyFor(c.Query("pt"), id); err != nil {
			respondError(c, err)
			return
		}
		if !sessions.Remove(c.Request.Context(), id) {
			respondError(c, session.ErrNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"session_id": id, "ended": true})
	}
}
