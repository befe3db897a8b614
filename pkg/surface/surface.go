// Package surface defines the inside/outside classifiers the polygon
// splitter cuts against. A Surface answers side queries, projects points
// onto itself, intersects segments and approximates shortest paths between
// two of its own points.
//
// Each Surface carries a uuid handle minted at construction. Points
// produced by a surface carry that handle, and surfaces refuse points
// that were produced by someone else.
package surface

import (
	"fmt"

	"github.com/chazu/kerf/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
)

// Side classifies a point against a surface.
type Side int

const (
	Inside Side = iota
	Outside
	Neither
)

func (s Side) String() string {
	switch s {
	case Inside:
		return "inside"
	case Outside:
		return "outside"
	case Neither:
		return "neither"
	default:
		return "unknown"
	}
}

// Opposite reports whether a and b lie strictly on different sides.
func Opposite(a, b Side) bool {
	return (a == Inside && b == Outside) || (a == Outside && b == Inside)
}

// Point is a location on a specific surface together with the local frame
// there. Normal points toward the outside.
type Point struct {
	Handle    uuid.UUID `json:"handle"`
	Location  v3.Vec    `json:"location"`
	Normal    v3.Vec    `json:"normal"`
	Tangent   v3.Vec    `json:"tangent"`
	Bitangent v3.Vec    `json:"bitangent"`
}

// Surface is the capability set the splitter needs from a dividing
// surface.
type Surface interface {
	// Handle identifies the surface. It is stable for the surface's
	// lifetime.
	Handle() uuid.UUID

	// Side classifies p with a symmetric eps band around the surface.
	Side(p v3.Vec, eps float64) Side

	// NearestPoint projects p onto the surface. It returns false when p
	// has no well-defined projection.
	NearestPoint(p v3.Vec) (Point, bool)

	// FindIntersection returns the first point where s meets the surface.
	FindIntersection(s geom.LineSegment) (Point, bool)

	// FindDirectPath returns a polyline from a to b that stays within
	// maxDeviation of the surface. Both points must come from this
	// surface.
	FindDirectPath(a, b Point, maxDeviation float64) ([]v3.Vec, error)
}

// Compile-time interface checks.
var (
	_ Surface = (*PlaneSurface)(nil)
	_ Surface = (*SphereSurface)(nil)
	_ Surface = (*SDFSurface)(nil)
)

// classify maps a signed distance (positive outside) to a Side.
func classify(d, eps float64) Side {
	switch {
	case d > eps:
		return Outside
	case d < -eps:
		return Inside
	default:
		return Neither
	}
}

// newPoint builds a Point at loc whose frame is derived from normal. A
// zero normal falls back to +z.
func newPoint(handle uuid.UUID, loc, normal v3.Vec) Point {
	n, ok := geom.Normalize(normal)
	if !ok {
		n = v3.Vec{Z: 1}
	}
	t := geom.AnyPerpendicular(n)
	return Point{
		Handle:    handle,
		Location:  loc,
		Normal:    n,
		Tangent:   t,
		Bitangent: n.Cross(t),
	}
}

func checkOwner(s Surface, pts ...Point) error {
	for _, p := range pts {
		if p.Handle != s.Handle() {
			return fmt.Errorf("surface %s: point from %s: %w", s.Handle(), p.Handle, ErrForeignPoint)
		}
	}
	return nil
}
