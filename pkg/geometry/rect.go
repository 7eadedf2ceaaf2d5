package geometry

import (
	"fmt"
	"math"
)

// Rect is an axis-aligned box. Both edges are inclusive.
type Rect struct {
	Min Vector2D `json:"min" yaml:"min"`
	Max Vector2D `json:"max" yaml:"max"`
}

// NewRect builds a Rect from two corners, in any order.
func NewRect(a, b Vector2D) Rect {
	return Rect{
		Min: Vector2D{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Max: Vector2D{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
}

// RectFromSize returns the box [0,w]x[0,h], the shape of a window.
func RectFromSize(w, h float64) Rect {
	return NewRect(Vector2D{}, Vector2D{X: w, Y: h})
}

// RectAround returns the square centered on c extending halfDim on each side.
func RectAround(c Vector2D, halfDim float64) Rect {
	return Rect{
		Min: Vector2D{X: c.X - halfDim, Y: c.Y - halfDim},
		Max: Vector2D{X: c.X + halfDim, Y: c.Y + halfDim},
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("[%s - %s]", r.Min, r.Max)
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Center returns the midpoint of the box.
func (r Rect) Center() Vector2D {
	return Vector2D{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// IsEmpty reports whether the box has no positive area.
func (r Rect) IsEmpty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Vector2D) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Intersects reports whether the two boxes share at least one point.
func (r Rect) Intersects(other Rect) bool {
	return r.Min.X <= other.Max.X && other.Min.X <= r.Max.X &&
		r.Min.Y <= other.Max.Y && other.Min.Y <= r.Max.Y
}

// Intersect returns the overlap of r and other. The result IsEmpty when
// the boxes only touch or do not overlap at all.
func (r Rect) Intersect(other Rect) Rect {
	out := Rect{
		Min: Vector2D{X: math.Max(r.Min.X, other.Min.X), Y: math.Max(r.Min.Y, other.Min.Y)},
		Max: Vector2D{X: math.Min(r.Max.X, other.Max.X), Y: math.Min(r.Max.Y, other.Max.Y)},
	}
	if out.Max.X < out.Min.X {
		out.Max.X = out.Min.X
	}
	if out.Max.Y < out.Min.Y {
		out.Max.Y = out.Min.Y
	}
	return out
}

// Quadrants splits r at its center into NW, NE, SW, SE.
// North is the lower Y half, matching screen coordinates.
func (r Rect) Quadrants() [4]Rect {
	c := r.Center()
	return [4]Rect{
		{Min: r.Min, Max: c},
		{Min: Vector2D{X: c.X, Y: r.Min.Y}, Max: Vector2D{X: r.Max.X, Y: c.Y}},
		{Min: Vector2D{X: r.Min.X, Y: c.Y}, Max: Vector2D{X: c.X, Y: r.Max.Y}},
		{Min: c, Max: r.Max},
	}
}
