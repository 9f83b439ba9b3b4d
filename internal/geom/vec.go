package geom

import "math"

// Vec is a 2D vector on the board plane. It carries velocities and
// collision directions; positions use Point.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewVec(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

func (v Vec) Plus(o Vec) Vec {
	return Vec{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec) Minus(o Vec) Vec {
	return Vec{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec) Times(s float64) Vec {
	return Vec{X: v.X * s, Y: v.Y * s}
}

func (v Vec) Dot(o Vec) float64 {
	return v.X*o.X + v.Y*o.Y
}

func (v Vec) Magnitude() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns the unit vector in the direction of v. The zero vector
// has no direction, so ok is false and the zero vector is returned.
func (v Vec) Normalize() (n Vec, ok bool) {
	m := v.Magnitude()
	if m == 0 {
		return Vec{}, false
	}
	return v.Times(1.0 / m), true
}

// Clamp clamps each component of v to [lo, hi] component-wise.
func (v Vec) Clamp(lo, hi Vec) Vec {
	return Vec{X: clamp(v.X, lo.X, hi.X), Y: clamp(v.Y, lo.Y, hi.Y)}
}

func (v Vec) Invert() Vec {
	return Vec{X: -v.X, Y: -v.Y}
}

func (v Vec) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Clamp restricts x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return clamp(x, lo, hi)
}
