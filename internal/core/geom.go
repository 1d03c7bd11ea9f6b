// Package core provides the fundamental value types shared by the simulation and
// the platform layers: world geometry, controller input and the character screen.
// It has no external dependencies so the simulation stays pure and testable.
package core

import "math"

// Rect is an integer cell rectangle on a Screen.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Point is a position in world units. Y grows upwards.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Box is an axis-aligned rectangle in world units.
// The corners may be authored in any order.
type Box struct {
	X1 float64 `json:"x1" yaml:"x1"`
	Y1 float64 `json:"y1" yaml:"y1"`
	X2 float64 `json:"x2" yaml:"x2"`
	Y2 float64 `json:"y2" yaml:"y2"`
}

func (b Box) Left() float64  { return math.Min(b.X1, b.X2) }
func (b Box) Right() float64 { return math.Max(b.X1, b.X2) }
func (b Box) Bot() float64   { return math.Min(b.Y1, b.Y2) }
func (b Box) Top() float64   { return math.Max(b.Y1, b.Y2) }

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 { return b.Right() - b.Left() }

// Height returns the vertical extent of the box.
func (b Box) Height() float64 { return b.Top() - b.Bot() }

// Translate returns the box moved by p.
func (b Box) Translate(p Point) Box {
	return Box{X1: b.X1 + p.X, Y1: b.Y1 + p.Y, X2: b.X2 + p.X, Y2: b.Y2 + p.Y}
}

// Collides returns true if the two boxes overlap. Touching edges count as overlap.
func (b Box) Collides(other Box) bool {
	return b.Left() <= other.Right() && b.Right() >= other.Left() &&
		b.Bot() <= other.Top() && b.Top() >= other.Bot()
}

// ContainsStrict returns true if p lies strictly inside the box.
func (b Box) ContainsStrict(p Point) bool {
	return p.X > b.Left() && p.X < b.Right() && p.Y > b.Bot() && p.Y < b.Top()
}

// Union returns the smallest box containing both boxes.
func (b Box) Union(other Box) Box {
	return Box{
		X1: math.Min(b.Left(), other.Left()),
		Y1: math.Min(b.Bot(), other.Bot()),
		X2: math.Max(b.Right(), other.Right()),
		Y2: math.Max(b.Top(), other.Top()),
	}
}

// SegmentsIntersect reports whether segment p1-p2 intersects segment q1-q2.
// Collinear overlapping segments and touching endpoints count as intersecting.
func SegmentsIntersect(p1, p2, q1, q2 Point) bool {
	d1 := orientation(q1, q2, p1)
	d2 := orientation(q1, q2, p2)
	d3 := orientation(p1, p2, q1)
	d4 := orientation(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// Endpoint lies on the other segment
	switch {
	case d1 == 0 && onSegment(q1, q2, p1):
		return true
	case d2 == 0 && onSegment(q1, q2, p2):
		return true
	case d3 == 0 && onSegment(p1, p2, q1):
		return true
	case d4 == 0 && onSegment(p1, p2, q2):
		return true
	}
	return false
}

// orientation is the z component of (b-a) x (c-a).
func orientation(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// onSegment assumes c is collinear with a-b.
func onSegment(a, b, c Point) bool {
	return c.X >= math.Min(a.X, b.X) && c.X <= math.Max(a.X, b.X) &&
		c.Y >= math.Min(a.Y, b.Y) && c.Y <= math.Max(a.Y, b.Y)
}

// Signum returns 1 for positive numbers and positive zero, -1 otherwise.
func Signum(x float64) float64 {
	if math.Signbit(x) {
		return -1
	}
	return 1
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Min returns the smaller of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
