// Package geom holds the value types the board is described in: points,
// sizes and axis-aligned rectangles. Board coordinates have their origin at
// the top-left corner, x grows to the right and y grows downwards.
package geom

import "math"

// Point is a position in board coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Sub returns the vector pointing from o to p.
func (p Point) Sub(o Point) Vec {
	return Vec{X: p.X - o.X, Y: p.Y - o.Y}
}

// Add moves p by v.
func (p Point) Add(v Vec) Point {
	return Point{X: p.X + v.X, Y: p.Y + v.Y}
}

// Size is a width and height pair. Sizes in a well-formed level are always
// positive.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Half returns half of the size as a vector.
func (s Size) Half() Vec {
	return Vec{X: s.W / 2, Y: s.H / 2}
}

// Rect is an axis-aligned rectangle with Pos as its top-left corner.
type Rect struct {
	Pos  Point `json:"pos"`
	Size Size  `json:"size"`
}

func NewRect(x, y, w, h float64) Rect {
	return Rect{Pos: Point{X: x, Y: y}, Size: Size{W: w, H: h}}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.Pos.X + r.Size.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Pos.Y + r.Size.H
}

func (r Rect) Center() Point {
	return r.Pos.Add(r.Size.Half())
}

// Contains reports whether p lies inside r. The test is half-open: the left
// and top edges belong to the rectangle, the right and bottom edges do not,
// so adjacent rectangles never both claim a shared edge.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Pos.X && p.X < r.Right() && p.Y >= r.Pos.Y && p.Y < r.Bottom()
}

// Corners returns the corners in clockwise order starting from the top-left.
func (r Rect) Corners() [4]Point {
	return [4]Point{
		r.Pos,
		{X: r.Right(), Y: r.Pos.Y},
		{X: r.Right(), Y: r.Bottom()},
		{X: r.Pos.X, Y: r.Bottom()},
	}
}

// ClosestPoint returns the point of the filled rectangle closest to p. When p
// is inside r the result is p itself.
func (r Rect) ClosestPoint(p Point) Point {
	half := r.Size.Half()
	center := r.Center()
	return center.Add(p.Sub(center).Clamp(half.Invert(), half))
}

// Distance is the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return b.Sub(a).Magnitude()
}

// Angle is the direction from a to b in radians, in the range (-Pi, Pi].
func Angle(a, b Point) float64 {
	d := b.Sub(a)
	return math.Atan2(d.Y, d.X)
}
