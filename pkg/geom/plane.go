package geom

import (
	"math"

	"github.com/chazu/kerf/pkg/tessellate"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Side classifies a point against a plane.
type Side int

const (
	Front   Side = iota // distance > eps
	Back                // distance < -eps
	Neither             // within eps of the plane
)

func (s Side) String() string {
	switch s {
	case Front:
		return "front"
	case Back:
		return "back"
	case Neither:
		return "neither"
	default:
		return "unknown"
	}
}

// Plane is an oriented infinite plane. Normal is unit length and
// Distance(p) = dot(p, Normal) - CenterDotNormal.
type Plane struct {
	Normal          v3.Vec  `json:"normal"`
	CenterDotNormal float64 `json:"centerDotNormal"`
}

// NewPlane returns the plane through center with the given normal. The
// normal is normalized; a zero normal yields a plane that classifies every
// point as Neither.
func NewPlane(center, normal v3.Vec) Plane {
	n, _ := Normalize(normal)
	return Plane{Normal: n, CenterDotNormal: center.Dot(n)}
}

// AxisPlane returns the plane perpendicular to axis a at coordinate at,
// facing the positive direction.
func AxisPlane(a Axis, at float64) Plane {
	return Plane{Normal: a.Unit(), CenterDotNormal: at}
}

// Distance returns the signed distance of p from the plane.
func (pl Plane) Distance(p v3.Vec) float64 {
	return p.Dot(pl.Normal) - pl.CenterDotNormal
}

// Side classifies p with a symmetric eps band around the plane.
func (pl Plane) Side(p v3.Vec, eps float64) Side {
	d := pl.Distance(p)
	switch {
	case d > eps:
		return Front
	case d < -eps:
		return Back
	default:
		return Neither
	}
}

// Center returns the point of the plane closest to the origin.
func (pl Plane) Center() v3.Vec {
	return pl.Normal.MulScalar(pl.CenterDotNormal)
}

// NearestPoint projects p onto the plane.
func (pl Plane) NearestPoint(p v3.Vec) v3.Vec {
	return p.Sub(pl.Normal.MulScalar(pl.Distance(p)))
}

// Reflect mirrors p through the plane.
func (pl Plane) Reflect(p v3.Vec) v3.Vec {
	return p.Sub(pl.Normal.MulScalar(2 * pl.Distance(p)))
}

// Flip returns the same plane facing the other way.
func (pl Plane) Flip() Plane {
	return Plane{Normal: pl.Normal.MulScalar(-1), CenterDotNormal: -pl.CenterDotNormal}
}

// SegmentParam returns the parameter t in [0,1] at which s meets the
// plane. A segment lying in the plane meets it at t=0.
func (pl Plane) SegmentParam(s LineSegment, eps float64) (float64, bool) {
	d0 := pl.Distance(s.A)
	d1 := pl.Distance(s.B)
	if (d0 > eps && d1 > eps) || (d0 < -eps && d1 < -eps) {
		return 0, false
	}
	d0, d1 = math.Abs(d0), math.Abs(d1)
	if d0+d1 <= eps {
		return 0, true
	}
	t := d0 / (d0 + d1)
	return math.Max(0, math.Min(1, t)), true
}

// IntersectSegment returns the point at which s meets the plane.
func (pl Plane) IntersectSegment(s LineSegment, eps float64) (v3.Vec, bool) {
	t, ok := pl.SegmentParam(s, eps)
	if !ok {
		return v3.Vec{}, false
	}
	return s.Lerp(t), true
}

// IntersectLine returns the point at which l meets the plane. Lines
// parallel to the plane never meet it.
func (pl Plane) IntersectLine(l Line, eps float64) (v3.Vec, bool) {
	denom := l.Direction.Dot(pl.Normal)
	if math.Abs(denom) < eps {
		return v3.Vec{}, false
	}
	t := -pl.Distance(l.Center) / denom
	return l.Center.Add(l.Direction.MulScalar(t)), true
}

// sliverFraction is the share of a triangle's area below which a split
// piece is treated as a collinear remnant.
const sliverFraction = 1e-12

// SplitTriangle clips t against the plane. Pieces in front of the plane go
// to front, pieces behind it to back. ok is false when t does not straddle
// the plane (it has no vertex strictly on one of the sides), in which case
// t lies wholly on one side, and when a piece cannot be assigned a side.
//
// The pieces tile t: their areas sum to t's area. Only pieces smaller than
// sliverFraction of t's area are dropped, so small triangles split as
// faithfully as large ones.
func (pl Plane) SplitTriangle(t Triangle, eps float64) (front, back []Triangle, ok bool) {
	var sides [3]Side
	var dist [3]float64
	hasFront, hasBack := false, false
	for i, v := range t {
		dist[i] = pl.Distance(v)
		sides[i] = pl.Side(v, eps)
		hasFront = hasFront || sides[i] == Front
		hasBack = hasBack || sides[i] == Back
	}
	if !hasFront || !hasBack {
		return nil, nil, false
	}

	// Walk the edges collecting the ring of the split polygon. Crossing
	// points are vertices on the plane or edge intersections.
	ring := make([]v3.Vec, 0, 5)
	ringSides := make([]Side, 0, 5)
	firstCrossing := -1
	push := func(p v3.Vec, s Side) {
		if n := len(ring); n > 0 && NearlyEqual(ring[n-1], p, eps) {
			return
		}
		if len(ring) > 0 && NearlyEqual(ring[0], p, eps) {
			return
		}
		if s == Neither && firstCrossing < 0 {
			firstCrossing = len(ring)
		}
		ring = append(ring, p)
		ringSides = append(ringSides, s)
	}
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		push(t[i], sides[i])
		if (sides[i] == Front && sides[j] == Back) || (sides[i] == Back && sides[j] == Front) {
			d0, d1 := math.Abs(dist[i]), math.Abs(dist[j])
			push(Lerp(t[i], t[j], d0/(d0+d1)), Neither)
		}
	}
	if firstCrossing < 0 {
		return nil, nil, false
	}

	minArea := sliverFraction * t.Area()
	for _, idx := range tessellate.FanFrom(len(ring), firstCrossing) {
		piece := Triangle{ring[idx[0]], ring[idx[1]], ring[idx[2]]}
		if piece.Area() <= minArea {
			continue
		}
		inFront, inBack := false, false
		for _, k := range idx {
			inFront = inFront || ringSides[k] == Front
			inBack = inBack || ringSides[k] == Back
		}
		switch {
		case inFront && inBack:
			return nil, nil, false
		case inFront:
			front = append(front, piece)
		case inBack:
			back = append(back, piece)
		}
	}
	return front, back, true
}
