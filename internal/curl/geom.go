package curl

import "math"

// Point is a 2D point or vector in normalized view coordinates.
type Point struct {
	X, Y float64
}

// Add returns p + o.
func (p Point) Add(o Point) Point {
	return Point{p.X + o.X, p.Y + o.Y}
}

// Sub returns p - o.
func (p Point) Sub(o Point) Point {
	return Point{p.X - o.X, p.Y - o.Y}
}

// Scale returns p scaled by s.
func (p Point) Scale(s float64) Point {
	return Point{p.X * s, p.Y * s}
}

// Length returns the euclidean length of p.
func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// Normalize returns p scaled to unit length, or the zero point if p has
// no length to begin with.
func (p Point) Normalize() Point {
	l := p.Length()
	if l == 0 {
		return Point{}
	}
	return Point{p.X / l, p.Y / l}
}

// Rect is an axis-aligned rectangle in normalized view coordinates.
// The Y axis points up, so Top > Bottom.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 {
	return r.Right - r.Left
}

// Height returns the vertical extent.
func (r Rect) Height() float64 {
	return r.Top - r.Bottom
}

// Contains reports whether p lies inside r (inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Bottom && p.Y <= r.Top
}

// TextureRect is a sub-rectangle of a texture in UV space, where V grows
// downward. It maps the mesh's unit UV template into the valid region of
// a (possibly padded) texture.
type TextureRect struct {
	U0, V0, U1, V1 float64
}

// FullTexture spans the whole texture.
var FullTexture = TextureRect{0, 0, 1, 1}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
