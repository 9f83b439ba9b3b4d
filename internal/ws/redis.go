package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/playmatatu/labyrinth/internal/session"
	"github.com/redis/go-redis/v9"
)

// StartEventSubscriber relays session events published on Redis to the
// websocket rooms on this server.
func StartEventSubscriber(ctx context.Context, rdb *redis.Client, hub *Hub) {
	if rdb == nil {
		log.Println("[WS] Redis client not set; event subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, session.EventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", session.EventsChannel)
		for {
			select {
			case <-ctx.Done():
				log.Printf("[WS] %s subscriber stopping", session.EventsChannel)
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if err := hub.handleEventPayload([]byte(msg.Payload)); err != nil {
					log.Printf("[WS] %v", err)
				}
			}
		}
	}()
}

func (h *Hub) handleEventPayload(payload []byte) error {
	var e session.Event
	if err := json.Unmarshal(payload, &e); err != nil {
		return fmt.Errorf("invalid event payload: %w", err)
	}
	if e.SessionID == "" {
		return fmt.Errorf("event %q without session id", e.Type)
	}

	switch e.Type {
	case session.EventWon, session.EventLost, session.EventRestarted, session.EventExpired:
		log.Printf("[WS] event received: type=%s session=%s (room_size=%d)", e.Type, e.SessionID, h.RoomSize(e.SessionID))
		h.SendEvent(e)
	default:
		log.Printf("[WS] unknown event type: %s", e.Type)
	}
	return nil
}
