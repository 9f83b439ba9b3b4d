package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/playmatatu/labyrinth/internal/game"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	MigrateOnStart bool
	LevelCacheTTL  time.Duration
	LevelsDir      string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Sessions
	FramePeriod            time.Duration
	IdleTimeout            time.Duration
	IdleWorkerPollInterval time.Duration
	PrintStats             bool

	// Security
	JWTSecret       string
	SessionTokenTTL time.Duration

	// Physics tuning handed to every game
	Physics game.Params
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	defaults := game.DefaultParams()
	ballRadius := getEnvFloat("BALL_R", defaults.BallRadius)

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", true),
		LevelCacheTTL:  time.Duration(getEnvInt("LEVEL_CACHE_TTL_SECONDS", 3600)) * time.Second,
		LevelsDir:      getEnv("LEVELS_DIR", "levels"),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Sessions
		FramePeriod:            time.Second / time.Duration(getEnvInt("FRAME_RATE", 60)),
		IdleTimeout:            time.Duration(getEnvInt("SESSION_IDLE_TIMEOUT_SECONDS", 600)) * time.Second,
		IdleWorkerPollInterval: time.Duration(getEnvInt("IDLE_WORKER_POLL_INTERVAL_SECONDS", 5)) * time.Second,
		PrintStats:             getEnvBool("PRINT_STATS", false),

		// Security
		JWTSecret:       getEnv("JWT_SECRET", "change-me-in-production"),
		SessionTokenTTL: time.Duration(getEnvInt("SESSION_TOKEN_TTL_MINUTES", 120)) * time.Minute,

		// Physics
		Physics: game.Params{
			BallRadius:       ballRadius,
			HoleRadius:       getEnvFloat("HOLE_R", defaults.HoleRadius),
			AccelCoeff:       getEnvFloat("ACCEL_COEFF", defaults.AccelCoeff),
			BounceCoeff:      getEnvFloat("BOUNCE_COEFF", defaults.BounceCoeff),
			MaxAngle:         getEnvFloat("MAX_ANGLE", defaults.MaxAngle),
			RollOverDuration: getEnvFloat("ROLL_OVER_DURATION", defaults.RollOverDuration),
			FreeFallDuration: getEnvFloat("FREE_FALL_DURATION", defaults.FreeFallDuration),
			FreeFallDepth:    getEnvFloat("FREE_FALL_DEPTH", 3*ballRadius),
		},
	}
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if err := c.Physics.Validate(); err != nil {
		return fmt.Errorf("physics: %w", err)
	}
	if c.FramePeriod <= 0 {
		return fmt.Errorf("frame period must be positive, got %s", c.FramePeriod)
	}
	if c.IdleTimeout <= 0 || c.IdleWorkerPollInterval <= 0 {
		return fmt.Errorf("idle timeout and poll interval must be positive")
	}
	if c.Environment != "development" && c.JWTSecret == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET must be set outside development")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil && intVal > 0 {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
