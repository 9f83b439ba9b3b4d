// Package ai steers the board for a level that carries a reference path.
package ai

import (
	"errors"
	"log"
	"time"

	"github.com/playmatatu/labyrinth/internal/game"
	"github.com/playmatatu/labyrinth/internal/geom"
	"github.com/playmatatu/labyrinth/internal/level"
)

// ErrNoPath is returned for levels whose path is too short to follow.
var ErrNoPath = errors.New("level has no path to follow")

// Pilot produces tilt deltas for a running game.
type Pilot interface {
	Init(lvl *level.Level) error
	// Pause forgets the last move time so a pause does not count as
	// rotation budget.
	Pause()
	NextMove(g *game.Game, now time.Time) geom.Vec
}

const (
	// TargetRadius is how close the ball must get to a path point before the
	// tracer moves on to the next one.
	TargetRadius = 10.0
	// MaxVDiff is the velocity error at which the tracer asks for full tilt.
	MaxVDiff = 100.0
	// MaxRotationPerSec limits how fast the tracer turns the board.
	MaxRotationPerSec = 0.25
	firstMoveSeconds  = 0.01
)

// PathTracer follows level.Path point by point, aiming the ball velocity at
// the current target point.
type PathTracer struct {
	prevMove *time.Time
	index    int
}

func NewPathTracer() *PathTracer {
	return &PathTracer{index: 1}
}

func (p *PathTracer) Init(lvl *level.Level) error {
	if len(lvl.Path) < 2 {
		return ErrNoPath
	}
	p.prevMove = nil
	p.index = 1
	return nil
}

func (p *PathTracer) Pause() {
	p.prevMove = nil
}

// Target returns the index of the path point currently tracked.
func (p *PathTracer) Target() int {
	return p.index
}

func (p *PathTracer) NextMove(g *game.Game, now time.Time) geom.Vec {
	elapsed := firstMoveSeconds
	if p.prevMove != nil {
		elapsed = now.Sub(*p.prevMove).Seconds()
	}
	maxRotation := MaxRotationPerSec * elapsed
	p.prevMove = &now

	path := g.Level.Path
	if len(path) < 2 {
		return geom.Vec{}
	}
	if p.index >= len(path) {
		p.index = len(path) - 1
	}

	toTarget := path[p.index].Sub(g.BallPos)
	if p.index < len(path)-1 && toTarget.Magnitude() <= TargetRadius {
		p.index++
		toTarget = path[p.index].Sub(g.BallPos)
		log.Printf("[AI] tracking path point %d of %s", p.index, g.Level.Name)
	}

	// The distance to the target doubles as the wanted velocity.
	var targetAngle geom.Vec
	vDiff := toTarget.Minus(g.BallV)
	if dir, ok := vDiff.Normalize(); ok {
		scale := geom.Clamp(vDiff.Magnitude(), 0, MaxVDiff) / MaxVDiff
		targetAngle = dir.Times(g.Params().MaxAngle * scale)
	}

	angleDiff := targetAngle.Minus(geom.NewVec(g.AngleX, g.AngleY))
	dir, ok := angleDiff.Normalize()
	if !ok {
		return geom.Vec{}
	}
	return dir.Times(geom.Clamp(angleDiff.Magnitude(), 0, maxRotation))
}
