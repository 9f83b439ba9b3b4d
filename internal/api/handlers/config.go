package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/labyrinth/internal/config"
)

// GetConfig returns the physics tuning the renderer needs to draw the ball
// and holes at the right scale.
func GetConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"physics":    cfg.Physics,
			"frame_rate": int(time.Second / cfg.FramePeriod),
		})
	}
}
