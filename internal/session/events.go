package session

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/playmatatu/labyrinth/internal/game"
	"github.com/playmatatu/labyrinth/internal/geom"
	"github.com/redis/go-redis/v9"
)

// EventsChannel is the Redis pub/sub channel session events go out on.
const EventsChannel = "session_events"

const (
	EventWon       = "session_won"
	EventLost      = "session_lost"
	EventRestarted = "session_restarted"
	EventExpired   = "session_expired"
)

// Event is a notable change in a session, fanned out to every server
// holding a websocket for it.
type Event struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	Level     string          `json:"level"`
	Status    game.GameStatus `json:"status,omitempty"`
	PlayTime  float64         `json:"play_time"`
	Hole      *geom.Point     `json:"hole,omitempty"`
	At        time.Time       `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// PublisherFunc adapts a plain function to Publisher.
type PublisherFunc func(ctx context.Context, e Event) error

func (f PublisherFunc) Publish(ctx context.Context, e Event) error {
	return f(ctx, e)
}

// RedisPublisher sends events to EventsChannel.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	n, err := p.rdb.Publish(ctx, EventsChannel, b).Result()
	if err != nil {
		return err
	}
	log.Printf("[SESSION] published %s for %s (subscribers=%d)", e.Type, e.SessionID, n)
	return nil
}
