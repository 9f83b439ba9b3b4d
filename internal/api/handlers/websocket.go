package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/labyrinth/internal/ws"
)

// HandleSessionWebSocket handles real-time session communication
func HandleSessionWebSocket(h *ws.Handler) gin.HandlerFunc {
	return h.HandleWebSocket
}
