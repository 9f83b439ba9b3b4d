package session

import (
	"log"
	"time"
)

const statsInterval = 5 * time.Second

// frameStats logs the achieved frame rate every statsInterval.
type frameStats struct {
	frames int
	since  time.Time
}

func (s *frameStats) tick(id string, now time.Time) {
	if s.since.IsZero() {
		s.since = now
	}
	s.frames++
	elapsed := now.Sub(s.since)
	if elapsed >= statsInterval {
		log.Printf("[SESSION] %s FPS %.1f", id, float64(s.frames)/elapsed.Seconds())
		s.frames = 0
		s.since = now
	}
}
