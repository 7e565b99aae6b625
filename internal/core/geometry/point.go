package geometry

import "math"

// Point is a coordinate in pixel space (or projected-plane space, where
// noted). Screen Y grows downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// DivBy returns p scaled by 1/n.
func (p Point) DivBy(n float64) Point {
	return Point{p.X / n, p.Y / n}
}

// Round returns p with both coordinates rounded to the nearest integer.
func (p Point) Round() Point {
	return Point{math.Round(p.X), math.Round(p.Y)}
}

// Bounds is an axis-aligned box in pixel space.
type Bounds struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// NewBounds returns the bounds spanning the two corners in any order.
func NewBounds(a, b Point) Bounds {
	return Bounds{
		Min: Point{math.Min(a.X, b.X), math.Min(a.Y, b.Y)},
		Max: Point{math.Max(a.X, b.X), math.Max(a.Y, b.Y)},
	}
}

// Contains reports whether p lies inside the bounds (inclusive).
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Pad returns the bounds grown by t on every side.
func (b Bounds) Pad(t float64) Bounds {
	return Bounds{
		Min: Point{b.Min.X - t, b.Min.Y - t},
		Max: Point{b.Max.X + t, b.Max.Y + t},
	}
}
