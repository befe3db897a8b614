package surface

import (
	"math"

	"github.com/chazu/kerf/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
)

const (
	projectIterations = 64
	bisectIterations  = 64
	segmentSamples    = 32
)

// SDFSurface is the zero level set of an sdfx solid. Points where the
// field is negative are inside.
type SDFSurface struct {
	id    uuid.UUID
	solid sdf.SDF3
	h     float64

	// Tolerance is how close to zero the field must be for a projected
	// point to count as on the surface.
	Tolerance float64

	// MaxDepth bounds FindDirectPath recursion. Zero means MaxPathDepth.
	MaxDepth int
}

// NewSDFSurface wraps solid. The finite-difference step is scaled to the
// solid's bounding box.
func NewSDFSurface(solid sdf.SDF3) *SDFSurface {
	diag := geom.BoxFromSDF(solid.BoundingBox()).Size().Length()
	h := math.Max(1e-7, diag*1e-6)
	return &SDFSurface{
		id:        uuid.New(),
		solid:     solid,
		h:         h,
		Tolerance: geom.Epsilon * 1e-3,
	}
}

// Handle implements Surface.
func (s *SDFSurface) Handle() uuid.UUID { return s.id }

// Solid returns the wrapped solid.
func (s *SDFSurface) Solid() sdf.SDF3 { return s.solid }

// Side implements Surface.
func (s *SDFSurface) Side(p v3.Vec, eps float64) Side {
	return classify(s.solid.Evaluate(p), eps)
}

// gradient estimates the field gradient by central differences.
func (s *SDFSurface) gradient(p v3.Vec) v3.Vec {
	h := s.h
	dx := v3.Vec{X: h}
	dy := v3.Vec{Y: h}
	dz := v3.Vec{Z: h}
	return v3.Vec{
		X: s.solid.Evaluate(p.Add(dx)) - s.solid.Evaluate(p.Sub(dx)),
		Y: s.solid.Evaluate(p.Add(dy)) - s.solid.Evaluate(p.Sub(dy)),
		Z: s.solid.Evaluate(p.Add(dz)) - s.solid.Evaluate(p.Sub(dz)),
	}.MulScalar(1 / (2 * h))
}

// NearestPoint walks p down the field gradient until the field vanishes.
// It fails where the gradient vanishes or the walk does not converge.
func (s *SDFSurface) NearestPoint(p v3.Vec) (Point, bool) {
	for i := 0; i < projectIterations; i++ {
		d := s.solid.Evaluate(p)
		g, ok := geom.Normalize(s.gradient(p))
		if !ok {
			return Point{}, false
		}
		if math.Abs(d) <= s.Tolerance {
			return newPoint(s.id, p, g), true
		}
		p = p.Sub(g.MulScalar(d))
	}
	return Point{}, false
}

// FindIntersection samples the field along seg and bisects the first sign
// change.
func (s *SDFSurface) FindIntersection(seg geom.LineSegment) (Point, bool) {
	t0 := 0.0
	d0 := s.solid.Evaluate(seg.A)
	if math.Abs(d0) <= s.Tolerance {
		return newPoint(s.id, seg.A, s.gradient(seg.A)), true
	}
	for i := 1; i <= segmentSamples; i++ {
		t1 := float64(i) / segmentSamples
		d1 := s.solid.Evaluate(seg.Lerp(t1))
		if math.Abs(d1) <= s.Tolerance {
			p := seg.Lerp(t1)
			return newPoint(s.id, p, s.gradient(p)), true
		}
		if (d0 < 0) != (d1 < 0) {
			t := s.bisect(seg, t0, t1, d0)
			p := seg.Lerp(t)
			return newPoint(s.id, p, s.gradient(p)), true
		}
		t0, d0 = t1, d1
	}
	return Point{}, false
}

func (s *SDFSurface) bisect(seg geom.LineSegment, lo, hi, dlo float64) float64 {
	for i := 0; i < bisectIterations; i++ {
		mid := (lo + hi) / 2
		d := s.solid.Evaluate(seg.Lerp(mid))
		if math.Abs(d) <= s.Tolerance {
			return mid
		}
		if (d < 0) == (dlo < 0) {
			lo, dlo = mid, d
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// FindDirectPath implements Surface with DirectPath.
func (s *SDFSurface) FindDirectPath(a, b Point, maxDeviation float64) ([]v3.Vec, error) {
	return DirectPath(s, a, b, maxDeviation, s.MaxDepth)
}
