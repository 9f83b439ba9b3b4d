package level

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/labyrinth/internal/models"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no source knows a level name.
var ErrNotFound = errors.New("level not found")

// Catalog resolves level names to levels. Lookups go through the Redis
// document cache, then the Postgres levels table, then the built-in levels.
// Both db and rdb may be nil, in which case only built-ins are served.
type Catalog struct {
	db       *sqlx.DB
	rdb      *redis.Client
	cacheTTL time.Duration
}

func NewCatalog(db *sqlx.DB, rdb *redis.Client, cacheTTL time.Duration) *Catalog {
	return &Catalog{db: db, rdb: rdb, cacheTTL: cacheTTL}
}

func cacheKey(name string) string {
	return "level:" + name + ":doc"
}

// Get returns the level with the given name.
func (c *Catalog) Get(ctx context.Context, name string) (*Level, error) {
	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, cacheKey(name)).Bytes()
		switch {
		case err == nil:
			lvl, perr := Parse(data)
			if perr == nil {
				return lvl, nil
			}
			log.Printf("[LEVELS] dropping bad cache entry for %s: %v", name, perr)
			c.rdb.Del(ctx, cacheKey(name))
		case !errors.Is(err, redis.Nil):
			log.Printf("[LEVELS] cache lookup failed for %s: %v", name, err)
		}
	}

	if c.db != nil {
		var rec models.LevelRecord
		err := c.db.GetContext(ctx, &rec, `SELECT name, document, created_at, updated_at FROM levels WHERE name=$1`, name)
		switch {
		case err == nil:
			lvl, perr := Parse(rec.Document)
			if perr != nil {
				return nil, fmt.Errorf("stored level %s: %w", name, perr)
			}
			c.cache(ctx, name, rec.Document)
			return lvl, nil
		case !errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("load level %s: %w", name, err)
		}
	}

	builtin, err := Builtin()
	if err != nil {
		return nil, err
	}
	if lvl, ok := builtin[name]; ok {
		return lvl, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// List returns summaries of every known level sorted by name. A stored level
// shadows a built-in one of the same name.
func (c *Catalog) List(ctx context.Context) ([]Summary, error) {
	builtin, err := Builtin()
	if err != nil {
		return nil, err
	}
	byName := make(map[string]Summary, len(builtin))
	for name, lvl := range builtin {
		byName[name] = lvl.Summary()
	}

	if c.db != nil {
		var recs []models.LevelRecord
		if err := c.db.SelectContext(ctx, &recs, `SELECT name, document, created_at, updated_at FROM levels ORDER BY name`); err != nil {
			return nil, fmt.Errorf("list levels: %w", err)
		}
		for _, rec := range recs {
			lvl, err := Parse(rec.Document)
			if err != nil {
				log.Printf("[LEVELS] skipping stored level %s: %v", rec.Name, err)
				continue
			}
			byName[lvl.Name] = lvl.Summary()
		}
	}

	out := make([]Summary, 0, len(byName))
	for _, s := range byName {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Put validates a level description and stores it, replacing any stored
// level of the same name.
func (c *Catalog) Put(ctx context.Context, doc []byte) (*Level, error) {
	lvl, err := Parse(doc)
	if err != nil {
		return nil, err
	}
	if c.db == nil {
		return nil, errors.New("level catalog has no database")
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO levels (name, document, created_at, updated_at)
		VALUES ($1, $2::jsonb, NOW(), NOW())
		ON CONFLICT (name) DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()
	`, lvl.Name, string(doc))
	if err != nil {
		return nil, fmt.Errorf("store level %s: %w", lvl.Name, err)
	}

	if c.rdb != nil {
		if err := c.rdb.Del(ctx, cacheKey(lvl.Name)).Err(); err != nil {
			log.Printf("[LEVELS] failed to drop cache for %s: %v", lvl.Name, err)
		}
	}
	return lvl, nil
}

func (c *Catalog) cache(ctx context.Context, name string, doc []byte) {
	if c.rdb == nil || c.cacheTTL <= 0 {
		return
	}
	if err := c.rdb.SetEx(ctx, cacheKey(name), doc, c.cacheTTL).Err(); err != nil {
		log.Printf("[LEVELS] failed to cache %s: %v", name, err)
	}
}
