package game

import (
	"github.com/playmatatu/labyrinth/internal/geom"
)

// integrate advances the ball by dt seconds under the tilt acceleration.
// Velocity is updated first and the new velocity moves the ball.
func (g *Game) integrate(dt float64) {
	accel := geom.NewVec(g.AngleX, g.AngleY).Times(g.params.AccelCoeff)
	g.BallV = g.BallV.Plus(accel.Times(dt))
	g.BallPos = g.BallPos.Add(g.BallV.Times(dt))
}

// resolveCollisions pushes the ball out of the board edges and then out of
// every wall in level order, bouncing it off each contact.
func (g *Game) resolveCollisions() {
	g.collideEdges()
	for _, wall := range g.Level.Walls {
		g.collideWall(wall)
	}
}

// collideEdges keeps the ball center at least one radius inside the board.
// The edge tests are inclusive, so a ball resting on an edge is tested every
// frame; reflecting only velocity that points into the edge stops a bounced
// ball from being flipped back into it on the next tick.
func (g *Game) collideEdges() {
	r := g.params.BallRadius
	b := g.params.BounceCoeff
	w, h := g.Level.Size.W, g.Level.Size.H

	if g.BallPos.X <= r {
		g.BallPos.X = r
		if g.BallV.X < 0 {
			g.BallV.X = -b * g.BallV.X
		}
	} else if g.BallPos.X >= w-r {
		g.BallPos.X = w - r
		if g.BallV.X > 0 {
			g.BallV.X = -b * g.BallV.X
		}
	}

	if g.BallPos.Y <= r {
		g.BallPos.Y = r
		if g.BallV.Y < 0 {
			g.BallV.Y = -b * g.BallV.Y
		}
	} else if g.BallPos.Y >= h-r {
		g.BallPos.Y = h - r
		if g.BallV.Y > 0 {
			g.BallV.Y = -b * g.BallV.Y
		}
	}
}

// collideWall resolves an overlap between the ball and one wall. The contact
// normal points from the closest wall point to the ball center; if the center
// sits exactly on the wall there is no usable normal and the wall is skipped.
func (g *Game) collideWall(wall geom.Rect) {
	r := g.params.BallRadius
	closest := wall.ClosestPoint(g.BallPos)
	offset := g.BallPos.Sub(closest)
	if offset.Magnitude() >= r {
		return
	}
	normal, ok := offset.Normalize()
	if !ok {
		return
	}

	g.BallPos = closest.Add(normal.Times(r))

	if vn := g.BallV.Dot(normal); vn < 0 {
		g.BallV = g.BallV.Minus(normal.Times((1 + g.params.BounceCoeff) * vn))
	}
}
