package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/labyrinth/internal/api"
	"github.com/playmatatu/labyrinth/internal/auth"
	"github.com/playmatatu/labyrinth/internal/config"
	"github.com/playmatatu/labyrinth/internal/database"
	"github.com/playmatatu/labyrinth/internal/level"
	"github.com/playmatatu/labyrinth/internal/migrations"
	"github.com/playmatatu/labyrinth/internal/redis"
	"github.com/playmatatu/labyrinth/internal/session"
	"github.com/playmatatu/labyrinth/internal/ws"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Database is optional; without it only built-in levels are served
	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		if cfg.MigrateOnStart {
			log.Println("↗ Running DB migrations on startup...")
			if err := migrations.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}

		var err error
		db, err = database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
	} else {
		log.Println("DATABASE_URL not set, serving built-in levels only")
	}

	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		var err error
		rdb, err = redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
	} else {
		log.Println("REDIS_URL not set, session events and idle tracking stay in memory")
	}

	hub := ws.NewHub()
	go hub.Run(ctx)

	// With Redis, events fan out through pub/sub so every server's hub sees
	// them; otherwise they go straight to the local hub.
	var events session.Publisher
	if rdb != nil {
		events = session.NewRedisPublisher(rdb)
		ws.StartEventSubscriber(ctx, rdb, hub)
	} else {
		events = session.PublisherFunc(func(_ context.Context, e session.Event) error {
			hub.SendEvent(e)
			return nil
		})
	}

	catalog := level.NewCatalog(db, rdb, cfg.LevelCacheTTL)
	sessions := session.NewManager(ctx, cfg, catalog, rdb, hub, events)
	sessions.StartIdleWorker(ctx)
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.SessionTokenTTL)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, cfg, catalog, sessions, tokens, hub)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting Labyrinth server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	sessions.Shutdown()
}
