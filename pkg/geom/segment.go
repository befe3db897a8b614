package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// LineSegment is the segment from A to B.
type LineSegment struct {
	A v3.Vec `json:"a"`
	B v3.Vec `json:"b"`
}

// Segment returns the segment from a to b.
func Segment(a, b v3.Vec) LineSegment {
	return LineSegment{A: a, B: b}
}

// Length returns |B - A|.
func (s LineSegment) Length() float64 {
	return s.B.Sub(s.A).Length()
}

// Lerp returns the point at parameter t (A at 0, B at 1).
func (s LineSegment) Lerp(t float64) v3.Vec {
	return Lerp(s.A, s.B, t)
}

// LerpInverse returns the parameter of the projection of p onto the
// segment's line.
func (s LineSegment) LerpInverse(p v3.Vec) float64 {
	d := s.B.Sub(s.A)
	l2 := d.Dot(d)
	if l2 == 0 {
		return 0
	}
	return p.Sub(s.A).Dot(d) / l2
}

// Midpoint returns Lerp(0.5).
func (s LineSegment) Midpoint() v3.Vec {
	return s.Lerp(0.5)
}

// Bounds returns the segment's bounding box.
func (s LineSegment) Bounds() Box {
	return NewBox(s.A, s.B)
}

// Line is an infinite line through Center with unit Direction.
type Line struct {
	Center    v3.Vec `json:"center"`
	Direction v3.Vec `json:"direction"`
}

// LineThrough returns the line carrying s, or false when s has no length.
func LineThrough(s LineSegment) (Line, bool) {
	d, ok := Normalize(s.B.Sub(s.A))
	if !ok {
		return Line{}, false
	}
	return Line{Center: s.A, Direction: d}, true
}

// ShortestDistance returns the distance from p to the line.
func (l Line) ShortestDistance(p v3.Vec) float64 {
	v := p.Sub(l.Center)
	d := v.Dot(l.Direction)
	return math.Sqrt(math.Max(0, v.Dot(v)-d*d))
}
