package surface

import (
	"github.com/chazu/kerf/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
)

// PlaneSurface divides space by a plane. The front half-space is outside
// and the back half-space is inside.
type PlaneSurface struct {
	// Tolerance is how close to the plane a segment end must be to count
	// as the intersection.
	Tolerance float64

	id    uuid.UUID
	plane geom.Plane
}

// NewPlaneSurface wraps pl.
func NewPlaneSurface(pl geom.Plane) *PlaneSurface {
	return &PlaneSurface{Tolerance: geom.Epsilon, id: uuid.New(), plane: pl}
}

// Handle implements Surface.
func (s *PlaneSurface) Handle() uuid.UUID { return s.id }

// Plane returns the wrapped plane.
func (s *PlaneSurface) Plane() geom.Plane { return s.plane }

// Side implements Surface.
func (s *PlaneSurface) Side(p v3.Vec, eps float64) Side {
	return classify(s.plane.Distance(p), eps)
}

// NearestPoint projects p along the plane normal. It always succeeds.
func (s *PlaneSurface) NearestPoint(p v3.Vec) (Point, bool) {
	return newPoint(s.id, s.plane.NearestPoint(p), s.plane.Normal), true
}

// FindIntersection implements Surface.
func (s *PlaneSurface) FindIntersection(seg geom.LineSegment) (Point, bool) {
	eps := s.Tolerance
	if eps <= 0 {
		eps = geom.Epsilon
	}
	p, ok := s.plane.IntersectSegment(seg, eps)
	if !ok {
		return Point{}, false
	}
	return newPoint(s.id, p, s.plane.Normal), true
}

// FindDirectPath returns the chord from a to b, which lies in the plane.
func (s *PlaneSurface) FindDirectPath(a, b Point, maxDeviation float64) ([]v3.Vec, error) {
	if err := checkOwner(s, a, b); err != nil {
		return nil, err
	}
	return []v3.Vec{a.Location, b.Location}, nil
}
