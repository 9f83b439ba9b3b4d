// Package session drives games in real time. Each Session owns one
// game.Game and advances it from a single goroutine; everything else talks
// to it through commands.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/playmatatu/labyrinth/internal/ai"
	"github.com/playmatatu/labyrinth/internal/game"
	"github.com/playmatatu/labyrinth/internal/geom"
	"github.com/playmatatu/labyrinth/internal/level"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrClosed   = errors.New("session closed")
)

const (
	// Pointer deltas are in pixels; these turn them into radians of tilt.
	MouseRotateCoeff = 0.0002
	TouchRotateCoeff = 0.0004

	// lostLinger keeps frames coming for a while after a loss even when the
	// fall animation is shorter.
	lostLinger = 500 * time.Millisecond

	DefaultFramePeriod = time.Second / 60
)

// FrameSink receives every frame a session produces.
type FrameSink interface {
	SendFrame(s Snapshot)
}

// Snapshot is the renderer's view of a session at one instant.
type Snapshot struct {
	SessionID string          `json:"session_id"`
	Level     string          `json:"level"`
	Frame     uint64          `json:"frame"`
	Status    game.GameStatus `json:"status"`
	Paused    bool            `json:"paused"`
	Autopilot bool            `json:"autopilot"`
	Ball      geom.Point      `json:"ball"`
	Velocity  geom.Vec        `json:"velocity"`
	AngleX    float64         `json:"angle_x"`
	AngleY    float64         `json:"angle_y"`
	PlayTime  float64         `json:"play_time"`
	Hole      *geom.Point     `json:"hole,omitempty"`
	Fall      *game.FallFrame `json:"fall,omitempty"`
	Time      time.Time       `json:"time"`
}

type Options struct {
	FramePeriod time.Duration
	Params      game.Params
	// Pilot, when set, steers the board and manual tilt is ignored.
	Pilot  ai.Pilot
	Sink   FrameSink
	Events Publisher
	Stats  bool
	Clock  func() time.Time
}

type Session struct {
	ID    string
	Level *level.Level

	params      game.Params
	framePeriod time.Duration
	pilot       ai.Pilot
	sink        FrameSink
	events      Publisher
	clock       func() time.Time

	// Owned by the Run goroutine.
	game      *game.Game
	paused    bool
	watch     Stopwatch
	frame     uint64
	announced bool
	stats     *frameStats

	cmds      chan func(now time.Time)
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New builds a session for lvl. The game does not advance until Run is
// called.
func New(id string, lvl *level.Level, opts Options) (*Session, error) {
	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}
	if opts.Pilot != nil {
		if err := opts.Pilot.Init(lvl); err != nil {
			return nil, err
		}
	}
	if opts.FramePeriod <= 0 {
		opts.FramePeriod = DefaultFramePeriod
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	s := &Session{
		ID:          id,
		Level:       lvl,
		params:      opts.Params,
		framePeriod: opts.FramePeriod,
		pilot:       opts.Pilot,
		sink:        opts.Sink,
		events:      opts.Events,
		clock:       opts.Clock,
		game:        game.New(lvl, opts.Params),
		cmds:        make(chan func(now time.Time)),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	if opts.Stats {
		s.stats = &frameStats{}
	}
	s.watch.Start(s.clock())
	return s, nil
}

// Run advances the game every frame period until ctx is done or the session
// is closed.
func (s *Session) Run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.framePeriod)
	defer ticker.Stop()

	log.Printf("[SESSION] %s started on level %s", s.ID, s.Level.Name)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[SESSION] %s stopping: %v", s.ID, ctx.Err())
			return
		case <-s.stop:
			log.Printf("[SESSION] %s closed", s.ID)
			return
		case cmd := <-s.cmds:
			cmd(s.clock())
		case <-ticker.C:
			s.step(s.clock())
		}
	}
}

// Close stops Run. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.stop) })
}

// Done is closed once Run has returned.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) do(cmd func(now time.Time)) error {
	select {
	case s.cmds <- cmd:
		return nil
	case <-s.done:
		return ErrClosed
	case <-s.stop:
		return ErrClosed
	}
}

// Tilt adds dx and dy radians to the board tilt.
func (s *Session) Tilt(dx, dy float64) error {
	return s.do(func(time.Time) { s.tilt(dx, dy) })
}

// Pointer tilts the board from a pointer movement of dx, dy pixels.
func (s *Session) Pointer(dx, dy float64, touch bool) error {
	coeff := MouseRotateCoeff
	if touch {
		coeff = TouchRotateCoeff
	}
	return s.Tilt(coeff*dx, coeff*dy)
}

func (s *Session) Pause() error {
	return s.do(func(now time.Time) {
		s.pause(now)
		s.emit(now)
	})
}

func (s *Session) Resume() error {
	return s.do(func(now time.Time) {
		s.resume(now)
		s.emit(now)
	})
}

func (s *Session) Restart() error {
	return s.do(func(now time.Time) {
		s.restart(now)
		s.emit(now)
	})
}

// Snapshot returns the current state without advancing the game.
func (s *Session) Snapshot() (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	if err := s.do(func(now time.Time) { reply <- s.snapshot(now) }); err != nil {
		return Snapshot{}, err
	}
	select {
	case snap := <-reply:
		return snap, nil
	case <-s.done:
		return Snapshot{}, ErrClosed
	}
}

// step runs one frame.
func (s *Session) step(now time.Time) {
	if s.paused {
		return
	}
	if s.stats != nil {
		s.stats.tick(s.ID, now)
	}

	g := s.game
	if s.pilot != nil && !game.IsTerminal(g.State) {
		move := s.pilot.NextMove(g, now)
		g.RotateX(move.X)
		g.RotateY(move.Y)
	}
	g.Update(now)
	s.frame++

	snap := s.snapshot(now)
	s.send(snap)

	switch st := g.State.(type) {
	case game.Won:
		s.announce(now, EventWon, nil)
		s.pause(now)
	case game.Lost:
		hole := st.Hole
		s.announce(now, EventLost, &hole)
		if snap.Fall == nil && now.Sub(st.TLost) >= lostLinger {
			s.pause(now)
		}
	}
}

func (s *Session) tilt(dx, dy float64) {
	if s.pilot != nil || s.paused {
		return
	}
	s.game.RotateX(dx)
	s.game.RotateY(dy)
}

func (s *Session) pause(now time.Time) {
	if s.paused {
		return
	}
	s.paused = true
	s.game.ResetTime()
	s.watch.Stop(now)
	if s.pilot != nil {
		s.pilot.Pause()
	}
	log.Printf("[SESSION] %s paused", s.ID)
}

func (s *Session) resume(now time.Time) {
	if !s.paused || game.IsTerminal(s.game.State) {
		return
	}
	s.paused = false
	s.game.ResetTime()
	s.watch.Start(now)
	log.Printf("[SESSION] %s resumed", s.ID)
}

func (s *Session) restart(now time.Time) {
	s.game = game.New(s.Level, s.params)
	if s.pilot != nil {
		// Init only fails for levels without a path, which New already ruled out.
		if err := s.pilot.Init(s.Level); err != nil {
			log.Printf("[SESSION] %s pilot init failed: %v", s.ID, err)
		}
	}
	s.paused = false
	s.announced = false
	s.watch.Reset()
	s.watch.Start(now)
	s.publish(Event{Type: EventRestarted, SessionID: s.ID, Level: s.Level.Name, Status: game.StatusInProgress, At: now})
	log.Printf("[SESSION] %s restarted", s.ID)
}

// announce publishes the outcome of the current game once.
func (s *Session) announce(now time.Time, kind string, hole *geom.Point) {
	if s.announced {
		return
	}
	s.announced = true
	s.watch.Stop(now)
	s.publish(Event{
		Type:      kind,
		SessionID: s.ID,
		Level:     s.Level.Name,
		Status:    s.game.State.Status(),
		PlayTime:  s.watch.Elapsed(now).Seconds(),
		Hole:      hole,
		At:        now,
	})
}

func (s *Session) publish(e Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(context.Background(), e); err != nil {
		log.Printf("[SESSION] %s failed to publish %s: %v", s.ID, e.Type, err)
	}
}

func (s *Session) emit(now time.Time) {
	s.send(s.snapshot(now))
}

func (s *Session) send(snap Snapshot) {
	if s.sink != nil {
		s.sink.SendFrame(snap)
	}
}

func (s *Session) snapshot(now time.Time) Snapshot {
	g := s.game
	snap := Snapshot{
		SessionID: s.ID,
		Level:     s.Level.Name,
		Frame:     s.frame,
		Status:    g.State.Status(),
		Paused:    s.paused,
		Autopilot: s.pilot != nil,
		Ball:      g.BallPos,
		Velocity:  g.BallV,
		AngleX:    g.AngleX,
		AngleY:    g.AngleY,
		PlayTime:  s.watch.Elapsed(now).Seconds(),
		Time:      now,
	}
	if lost, ok := g.State.(game.Lost); ok {
		hole := lost.Hole
		snap.Hole = &hole
		if f, ok := game.AnimateFall(now.Sub(lost.TLost).Seconds(), g.BallPos, hole, s.params); ok {
			snap.Fall = &f
		}
	}
	return snap
}
