package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/playmatatu/labyrinth/internal/config"
	"github.com/playmatatu/labyrinth/internal/database"
	"github.com/playmatatu/labyrinth/internal/level"
	"github.com/playmatatu/labyrinth/internal/migrations"
	"github.com/playmatatu/labyrinth/internal/redis"
	goredis "github.com/redis/go-redis/v9"
)

// seed-levels stores every level description in LEVELS_DIR (or the
// directory given as the first argument) into the levels table.
func main() {
	ctx := context.Background()
	cfg := config.Load()

	dir := cfg.LevelsDir
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required to seed levels")
	}
	if err := migrations.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Redis is only used to drop stale cached copies
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		if rdb, err = redis.Connect(ctx, cfg.RedisURL); err != nil {
			log.Printf("Redis unavailable, cached levels may be stale until they expire: %v", err)
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		log.Fatalf("Bad levels directory %q: %v", dir, err)
	}
	if len(files) == 0 {
		log.Fatalf("No level files found in %s", dir)
	}

	catalog := level.NewCatalog(db, rdb, cfg.LevelCacheTTL)
	failed := 0
	for _, path := range files {
		doc, err := os.ReadFile(path)
		if err != nil {
			log.Printf("✗ %s: %v", path, err)
			failed++
			continue
		}
		lvl, err := catalog.Put(ctx, doc)
		if err != nil {
			log.Printf("✗ %s: %v", path, err)
			failed++
			continue
		}
		log.Printf("✓ %s (%d walls, %d holes)", lvl.Name, len(lvl.Walls), len(lvl.Holes))
	}

	if failed > 0 {
		log.Fatalf("%d of %d levels failed", failed, len(files))
	}
	log.Printf("Seeded %d levels from %s", len(files), dir)
}
