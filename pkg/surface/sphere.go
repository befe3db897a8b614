package surface

import (
	"github.com/chazu/kerf/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
)

// SphereSurface divides space into the open ball (inside) and its
// complement.
type SphereSurface struct {
	id     uuid.UUID
	sphere geom.Sphere

	// MaxDepth bounds FindDirectPath recursion. Zero means MaxPathDepth.
	MaxDepth int
}

// NewSphereSurface returns the sphere of radius r about center.
func NewSphereSurface(center v3.Vec, r float64) *SphereSurface {
	return &SphereSurface{id: uuid.New(), sphere: geom.Sphere{Center: center, Radius: r}}
}

// Handle implements Surface.
func (s *SphereSurface) Handle() uuid.UUID { return s.id }

// Sphere returns the wrapped sphere.
func (s *SphereSurface) Sphere() geom.Sphere { return s.sphere }

// Side implements Surface.
func (s *SphereSurface) Side(p v3.Vec, eps float64) Side {
	return classify(s.sphere.Distance(p), eps)
}

// NearestPoint casts a line from p through the center and returns the
// hit closest to p. The center itself has no nearest point.
func (s *SphereSurface) NearestPoint(p v3.Vec) (Point, bool) {
	dir, ok := geom.Normalize(s.sphere.Center.Sub(p))
	if !ok {
		return Point{}, false
	}
	ts := s.sphere.CastLine(p, dir)
	if len(ts) == 0 {
		return Point{}, false
	}
	loc := p.Add(dir.MulScalar(ts[0]))
	return s.pointAt(loc), true
}

// FindIntersection returns the crossing nearest seg.A.
func (s *SphereSurface) FindIntersection(seg geom.LineSegment) (Point, bool) {
	ts := s.sphere.IntersectSegment(seg)
	if len(ts) == 0 {
		return Point{}, false
	}
	return s.pointAt(seg.Lerp(ts[0])), true
}

// FindDirectPath implements Surface with DirectPath.
func (s *SphereSurface) FindDirectPath(a, b Point, maxDeviation float64) ([]v3.Vec, error) {
	return DirectPath(s, a, b, maxDeviation, s.MaxDepth)
}

func (s *SphereSurface) pointAt(loc v3.Vec) Point {
	return newPoint(s.id, loc, loc.Sub(s.sphere.Center))
}
