package geom

import (
	"math"
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Sphere is the set of points Radius away from Center.
type Sphere struct {
	Center v3.Vec  `json:"center"`
	Radius float64 `json:"radius"`
}

// Distance is positive outside the sphere and negative inside.
func (s Sphere) Distance(p v3.Vec) float64 {
	return p.Sub(s.Center).Length() - s.Radius
}

// ContainsPoint reports whether p is in the closed ball.
func (s Sphere) ContainsPoint(p v3.Vec) bool {
	d := p.Sub(s.Center)
	return d.Dot(d) <= s.Radius*s.Radius
}

// CastLine intersects the line through origin along the unit vector dir
// with the sphere. It returns the line parameters of the hits (both
// directions), nearest the origin first.
func (s Sphere) CastLine(origin, dir v3.Vec) []float64 {
	oc := origin.Sub(s.Center)
	b := dir.Dot(oc)
	c := oc.Dot(oc) - s.Radius*s.Radius
	disc := b*b - c
	if disc < 0 {
		return nil
	}
	if disc == 0 {
		return []float64{-b}
	}
	r := math.Sqrt(disc)
	ts := []float64{-b - r, -b + r}
	sort.Slice(ts, func(i, j int) bool { return math.Abs(ts[i]) < math.Abs(ts[j]) })
	return ts
}

// IntersectSegment returns the parameters in [0,1] at which seg crosses
// the sphere, in increasing order.
func (s Sphere) IntersectSegment(seg LineSegment) []float64 {
	d := seg.B.Sub(seg.A)
	a := d.Dot(d)
	if a == 0 {
		return nil
	}
	oc := seg.A.Sub(s.Center)
	b := 2 * d.Dot(oc)
	c := oc.Dot(oc) - s.Radius*s.Radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return nil
	}
	r := math.Sqrt(disc)
	var out []float64
	for _, t := range []float64{(-b - r) / (2 * a), (-b + r) / (2 * a)} {
		if t >= 0 && t <= 1 && (len(out) == 0 || t != out[0]) {
			out = append(out, t)
		}
	}
	return out
}
