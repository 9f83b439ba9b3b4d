package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/playmatatu/labyrinth/internal/ai"
	"github.com/playmatatu/labyrinth/internal/config"
	"github.com/playmatatu/labyrinth/internal/level"
	"github.com/redis/go-redis/v9"
)

// idleKeyPrefix names the per-server Redis sorted sets of session IDs scored
// by the unix time at which they expire. Each server only ever reads its own
// set, so no server can claim a session another one is running.
const idleKeyPrefix = "session_idle:"

// LevelSource resolves level names.
type LevelSource interface {
	Get(ctx context.Context, name string) (*level.Level, error)
}

// Manager owns every live session on this server.
type Manager struct {
	sessions   map[string]*Session
	lastActive map[string]time.Time
	levels     LevelSource
	rdb        redis.Cmdable
	instanceID string
	config     *config.Config
	sink       FrameSink
	events     Publisher
	clock      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.RWMutex
}

// NewManager creates a manager whose sessions run until ctx is done or
// Shutdown is called. rdb may be nil; idle tracking then stays in memory.
func NewManager(ctx context.Context, cfg *config.Config, levels LevelSource, rdb *redis.Client, sink FrameSink, events Publisher) *Manager {
	ctx, cancel := context.WithCancel(ctx)
	m := &Manager{
		sessions:   make(map[string]*Session),
		lastActive: make(map[string]time.Time),
		levels:     levels,
		instanceID: generateToken(4),
		config:     cfg,
		sink:       sink,
		events:     events,
		clock:      time.Now,
		ctx:        ctx,
		cancel:     cancel,
	}
	if rdb != nil {
		m.rdb = rdb
	}
	return m
}

// idleKey is this server's idle set.
func (m *Manager) idleKey() string {
	return idleKeyPrefix + m.instanceID
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func generateSessionID() string {
	return "sess_" + generateToken(8)
}

// Create starts a new session on the named level.
func (m *Manager) Create(ctx context.Context, levelName string, autopilot bool) (*Session, error) {
	lvl, err := m.levels.Get(ctx, levelName)
	if err != nil {
		return nil, err
	}

	opts := Options{
		FramePeriod: m.config.FramePeriod,
		Params:      m.config.Physics,
		Sink:        m.sink,
		Events:      m.events,
		Stats:       m.config.PrintStats,
	}
	if autopilot {
		opts.Pilot = ai.NewPathTracer()
	}

	id := generateSessionID()
	s, err := New(id, lvl, opts)
	if err != nil {
		return nil, fmt.Errorf("session on %s: %w", levelName, err)
	}

	m.mu.Lock()
	if m.ctx.Err() != nil {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	m.sessions[id] = s
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		s.Run(m.ctx)
	}()

	m.Touch(ctx, id)
	log.Printf("[SESSION] created %s on level %s (autopilot=%v)", id, lvl.Name, autopilot)
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// List returns the IDs of live sessions in sorted order.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Remove stops a session and forgets it. It reports whether the session
// existed.
func (m *Manager) Remove(ctx context.Context, id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	delete(m.lastActive, id)
	m.mu.Unlock()

	if !ok {
		return false
	}
	s.Close()
	if m.rdb != nil {
		if err := m.rdb.ZRem(ctx, m.idleKey(), id).Err(); err != nil {
			log.Printf("[SESSION] failed to drop idle entry for %s: %v", id, err)
		}
	}
	log.Printf("[SESSION] removed %s", id)
	return true
}

// Touch records player activity on a session, pushing back its expiry.
func (m *Manager) Touch(ctx context.Context, id string) {
	now := m.clock()

	m.mu.Lock()
	if _, ok := m.sessions[id]; ok {
		m.lastActive[id] = now
	}
	m.mu.Unlock()

	if m.rdb != nil {
		expireAt := now.Add(m.config.IdleTimeout).Unix()
		if err := m.rdb.ZAdd(ctx, m.idleKey(), redis.Z{Score: float64(expireAt), Member: id}).Err(); err != nil {
			log.Printf("[SESSION] failed to track activity for %s: %v", id, err)
		}
		// The set of a server that died goes away on its own.
		m.rdb.Expire(ctx, m.idleKey(), 2*m.config.IdleTimeout)
	}
}

// Shutdown stops every session and waits for their loops to exit.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.cancel()
	m.mu.Unlock()
	m.wg.Wait()

	m.mu.Lock()
	m.sessions = make(map[string]*Session)
	m.lastActive = make(map[string]time.Time)
	m.mu.Unlock()
	log.Println("[SESSION] manager shut down")
}
