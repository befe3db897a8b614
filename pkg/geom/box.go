package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Box is an axis-aligned box with Min <= Max componentwise.
type Box struct {
	Min v3.Vec `json:"min"`
	Max v3.Vec `json:"max"`
}

// NewBox returns the box spanned by two opposite corners in any order.
func NewBox(a, b v3.Vec) Box {
	return Box{Min: minVec(a, b), Max: maxVec(a, b)}
}

// BoxFromPoints grows a box to include every point. It panics when given
// no points.
func BoxFromPoints(points ...v3.Vec) Box {
	b := Box{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b = b.Include(p)
	}
	return b
}

// BoxFromSDF converts an sdfx bounding box.
func BoxFromSDF(bb sdf.Box3) Box {
	return NewBox(bb.Min, bb.Max)
}

// SDF converts b to an sdfx bounding box.
func (b Box) SDF() sdf.Box3 {
	return sdf.Box3{Min: b.Min, Max: b.Max}
}

// Include returns b grown to contain p.
func (b Box) Include(p v3.Vec) Box {
	return Box{Min: minVec(b.Min, p), Max: maxVec(b.Max, p)}
}

// Union returns the smallest box containing both boxes.
func (b Box) Union(o Box) Box {
	return Box{Min: minVec(b.Min, o.Min), Max: maxVec(b.Max, o.Max)}
}

// Size returns Max - Min.
func (b Box) Size() v3.Vec {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b Box) Center() v3.Vec {
	return Lerp(b.Min, b.Max, 0.5)
}

// LongestAxis returns the axis of greatest extent. Ties prefer x over y
// over z.
func (b Box) LongestAxis() Axis {
	s := b.Size()
	switch {
	case s.X >= s.Y && s.X >= s.Z:
		return AxisX
	case s.Y >= s.Z:
		return AxisY
	default:
		return AxisZ
	}
}

// SplitInTwo bisects b across its longest axis. neg holds the half with
// smaller coordinates; the halves share the face at the split coordinate.
func (b Box) SplitInTwo() (neg, pos Box, axis Axis, at float64) {
	axis = b.LongestAxis()
	at = Component(b.Center(), axis)
	neg = Box{Min: b.Min, Max: WithComponent(b.Max, axis, at)}
	pos = Box{Min: WithComponent(b.Min, axis, at), Max: b.Max}
	return neg, pos, axis, at
}

// ContainsPoint reports whether p lies in b grown by eps on every side.
func (b Box) ContainsPoint(p v3.Vec, eps float64) bool {
	return p.X >= b.Min.X-eps && p.X <= b.Max.X+eps &&
		p.Y >= b.Min.Y-eps && p.Y <= b.Max.Y+eps &&
		p.Z >= b.Min.Z-eps && p.Z <= b.Max.Z+eps
}

// ContainsTriangle reports whether every vertex of t lies in b.
func (b Box) ContainsTriangle(t Triangle, eps float64) bool {
	return b.ContainsPoint(t[0], eps) && b.ContainsPoint(t[1], eps) && b.ContainsPoint(t[2], eps)
}

// ContainsSegment reports whether both ends of s lie in b.
func (b Box) ContainsSegment(s LineSegment, eps float64) bool {
	return b.ContainsPoint(s.A, eps) && b.ContainsPoint(s.B, eps)
}

// Intersects reports whether the boxes overlap, touching counts.
func (b Box) Intersects(o Box, eps float64) bool {
	return b.Min.X <= o.Max.X+eps && b.Max.X >= o.Min.X-eps &&
		b.Min.Y <= o.Max.Y+eps && b.Max.Y >= o.Min.Y-eps &&
		b.Min.Z <= o.Max.Z+eps && b.Max.Z >= o.Min.Z-eps
}

// Volume returns the box's volume.
func (b Box) Volume() float64 {
	s := b.Size()
	return math.Max(0, s.X) * math.Max(0, s.Y) * math.Max(0, s.Z)
}
