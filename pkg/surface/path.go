package surface

import (
	"errors"
	"fmt"

	"github.com/chazu/kerf/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// MaxPathDepth is the default recursion limit for DirectPath. At depth 24
// a path can hold up to 2^24 segments.
const MaxPathDepth = 24

var (
	// ErrPathTooDeep is returned when the deviation bound is not met
	// within the recursion limit.
	ErrPathTooDeep = errors.New("surface: direct path exceeded recursion limit")

	// ErrForeignPoint is returned when a path is requested between points
	// that another surface produced.
	ErrForeignPoint = errors.New("surface: point belongs to another surface")

	// ErrNoProjection is returned when a chord midpoint cannot be
	// projected onto the surface.
	ErrNoProjection = errors.New("surface: midpoint has no projection")
)

// PathError reports which chord a direct path search failed on.
type PathError struct {
	From, To v3.Vec
	Depth    int
	Err      error
}

func (e PathError) Error() string {
	return fmt.Sprintf("surface: path %v -> %v at depth %d: %v", e.From, e.To, e.Depth, e.Err)
}

func (e PathError) Unwrap() error {
	return e.Err
}

// DirectPath approximates the shortest path on s from a to b by
// repeatedly projecting chord midpoints onto s. A chord is accepted once
// its projected midpoint is within maxDeviation of the chord midpoint;
// otherwise both halves are refined. maxDepth <= 0 selects MaxPathDepth.
//
// The returned polyline starts at a.Location and ends at b.Location.
func DirectPath(s Surface, a, b Point, maxDeviation float64, maxDepth int) ([]v3.Vec, error) {
	if err := checkOwner(s, a, b); err != nil {
		return nil, err
	}
	if maxDepth <= 0 {
		maxDepth = MaxPathDepth
	}
	return refine(s, a.Location, b.Location, maxDeviation, maxDepth, 0)
}

func refine(s Surface, a, b v3.Vec, maxDeviation float64, maxDepth, depth int) ([]v3.Vec, error) {
	mid := geom.Lerp(a, b, 0.5)
	p, ok := s.NearestPoint(mid)
	if !ok {
		return nil, PathError{From: a, To: b, Depth: depth, Err: ErrNoProjection}
	}
	if p.Location.Sub(mid).Length() <= maxDeviation {
		return []v3.Vec{a, b}, nil
	}
	if depth >= maxDepth {
		return nil, PathError{From: a, To: b, Depth: depth, Err: ErrPathTooDeep}
	}

	left, err := refine(s, a, p.Location, maxDeviation, maxDepth, depth+1)
	if err != nil {
		return nil, err
	}
	right, err := refine(s, p.Location, b, maxDeviation, maxDepth, depth+1)
	if err != nil {
		return nil, err
	}
	// right[0] repeats left's last point.
	return append(left, right[1:]...), nil
}
