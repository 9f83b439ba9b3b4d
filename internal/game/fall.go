package game

import (
	"math"

	"github.com/playmatatu/labyrinth/internal/geom"
)

// FallFrame is where to draw the ball while it drops into a hole. Height is
// relative to the board surface and goes negative once the ball is below it.
type FallFrame struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Height float64 `json:"height"`
}

// AnimateFall computes the fall animation t seconds after the ball was lost.
// The ball first rolls over the rim of the hole, then drops straight down.
// It returns false once the animation is over.
func AnimateFall(t float64, lastPos, hole geom.Point, params Params) (FallFrame, bool) {
	if t < 0 {
		t = 0
	}

	freeFallPoint := hole
	if dir, ok := lastPos.Sub(hole).Normalize(); ok {
		freeFallPoint = hole.Add(dir.Times(params.HoleRadius - params.BallRadius))
	}

	switch {
	case t < params.RollOverDuration:
		frac := t / params.RollOverDuration
		xy := lastPos.Add(freeFallPoint.Sub(lastPos).Times(frac))
		rim := params.HoleRadius - geom.Distance(hole, xy)
		// The ball may still be fully outside the rim at the start of the roll.
		h2 := math.Max(0, params.BallRadius*params.BallRadius-rim*rim)
		return FallFrame{X: xy.X, Y: xy.Y, Height: math.Sqrt(h2)}, true

	case t < params.TotalFallDuration():
		frac := (t - params.RollOverDuration) / params.FreeFallDuration
		return FallFrame{X: freeFallPoint.X, Y: freeFallPoint.Y, Height: -frac * params.FreeFallDepth}, true
	}

	return FallFrame{}, false
}
