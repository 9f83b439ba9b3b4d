// Package game is the ball physics core: tilt integration, collisions with
// the board edges and walls, and the won/lost state machine. It does no I/O
// and is driven one frame at a time by a single caller.
package game

import (
	"time"

	"github.com/playmatatu/labyrinth/internal/geom"
	"github.com/playmatatu/labyrinth/internal/level"
)

// Game is one play-through of a level. Restarting a level means building a
// new Game.
type Game struct {
	State   State
	BallPos geom.Point
	BallV   geom.Vec
	// AngleX and AngleY are the board tilt in radians.
	AngleX float64
	AngleY float64
	Level  *level.Level

	params Params
	// prevUpdate is nil when the next Update must not integrate any time.
	prevUpdate *time.Time
}

// New places the ball at rest on the level start with a flat board.
func New(lvl *level.Level, params Params) *Game {
	return &Game{
		State:   InProgress{},
		BallPos: lvl.Start,
		Level:   lvl,
		params:  params,
	}
}

func (g *Game) Params() Params {
	return g.params
}

// Update advances the simulation to now. Finished games are left untouched.
func (g *Game) Update(now time.Time) {
	if IsTerminal(g.State) {
		return
	}

	var dt float64
	if g.prevUpdate != nil {
		dt = now.Sub(*g.prevUpdate).Seconds()
	}

	g.integrate(dt)
	g.resolveCollisions()

	if g.Level.End.Contains(g.BallPos) {
		g.State = Won{}
	} else {
		for _, hole := range g.Level.Holes {
			if geom.Distance(g.BallPos, hole) < g.params.HoleRadius {
				g.State = Lost{Hole: hole, TLost: now}
				break
			}
		}
	}

	g.prevUpdate = &now
}

// ResetTime makes the next Update integrate zero time. Call it around any
// pause so the wall-clock gap is not applied to the ball.
func (g *Game) ResetTime() {
	g.prevUpdate = nil
}

func (g *Game) RotateX(delta float64) {
	g.AngleX = geom.Clamp(g.AngleX+delta, -g.params.MaxAngle, g.params.MaxAngle)
}

func (g *Game) RotateY(delta float64) {
	g.AngleY = geom.Clamp(g.AngleY+delta, -g.params.MaxAngle, g.params.MaxAngle)
}
