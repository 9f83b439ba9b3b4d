package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// StartIdleWorker removes sessions that saw no player input for the
// configured idle timeout. Deadlines live in a Redis sorted set when Redis
// is available and in memory otherwise.
func (m *Manager) StartIdleWorker(ctx context.Context) {
	log.Printf("[IDLE] Idle worker started (timeout=%s, poll=%s, instance=%s)", m.config.IdleTimeout, m.config.IdleWorkerPollInterval, m.instanceID)
	go func() {
		ticker := time.NewTicker(m.config.IdleWorkerPollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[IDLE] Idle worker stopping")
				return
			case <-ticker.C:
				m.expireIdle(ctx, m.clock())
			}
		}
	}()
}

// expireIdle removes every session whose deadline has passed and returns the
// removed IDs.
func (m *Manager) expireIdle(ctx context.Context, now time.Time) []string {
	var due []string
	if m.rdb != nil {
		members, err := m.rdb.ZRangeByScore(ctx, m.idleKey(), &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", now.Unix())}).Result()
		if err != nil {
			log.Printf("[IDLE] Failed to fetch idle sessions: %v", err)
			return nil
		}
		due = members
	} else {
		m.mu.RLock()
		for id, last := range m.lastActive {
			if now.Sub(last) >= m.config.IdleTimeout {
				due = append(due, id)
			}
		}
		m.mu.RUnlock()
	}

	var expired []string
	for _, id := range due {
		s, err := m.Get(id)
		if err != nil {
			// Left over from a session removed without its idle entry.
			if m.rdb != nil {
				m.rdb.ZRem(ctx, m.idleKey(), id)
			}
			continue
		}
		if !m.Remove(ctx, id) {
			continue
		}
		expired = append(expired, id)
		log.Printf("[IDLE] Expired session %s on level %s", id, s.Level.Name)
		if m.events != nil {
			e := Event{Type: EventExpired, SessionID: id, Level: s.Level.Name, At: now}
			if err := m.events.Publish(ctx, e); err != nil {
				log.Printf("[IDLE] publish expiry failed for %s: %v", id, err)
			}
		}
	}
	return expired
}
