package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/labyrinth/internal/api/handlers"
	"github.com/playmatatu/labyrinth/internal/auth"
	"github.com/playmatatu/labyrinth/internal/config"
	"github.com/playmatatu/labyrinth/internal/level"
	"github.com/playmatatu/labyrinth/internal/middleware"
	"github.com/playmatatu/labyrinth/internal/session"
	"github.com/playmatatu/labyrinth/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, cfg *config.Config, catalog *level.Catalog, sessions *session.Manager, tokens *auth.Tokens, hub *ws.Hub) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	wsHandler := ws.NewHandler(hub, sessions, tokens)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(sessions))
		v1.GET("/config", handlers.GetConfig(cfg))

		levels := v1.Group("/levels")
		{
			levels.GET("", handlers.ListLevels(catalog))
			levels.GET("/:name", handlers.GetLevel(catalog))
		}

		s := v1.Group("/sessions")
		{
			s.POST("", handlers.CreateSession(sessions, tokens))
			s.GET("/:id", handlers.GetSession(sessions))
			s.DELETE("/:id", handlers.EndSession(sessions, tokens))
			s.GET("/:id/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleSessionWebSocket(wsHandler))
		}
	}
}
