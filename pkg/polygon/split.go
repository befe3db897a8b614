package polygon

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/kerf/pkg/geom"
	"github.com/chazu/kerf/pkg/surface"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// SplitAgainstSurface cuts p along s into the pieces inside and outside
// it, with the default tolerance.
func (p *Polygon) SplitAgainstSurface(s surface.Surface, maxDeviation float64) (inside, outside []*Polygon, err error) {
	return p.SplitWithTolerance(s, maxDeviation, geom.Epsilon)
}

// SplitWithTolerance cuts p along s. Points within eps of s count as on
// it. Where s is curved the cut follows paths from s.FindDirectPath, so
// fragments are only as planar as s allows.
//
// Fragments tile p without overlapping. On failure no fragments are
// returned and the error is a SplitError; neither p nor s is modified.
func (p *Polygon) SplitWithTolerance(s surface.Surface, maxDeviation, eps float64) (inside, outside []*Polygon, err error) {
	sp := &splitter{
		poly:         p,
		surf:         s,
		maxDeviation: maxDeviation,
		eps:          eps,
	}
	return sp.run()
}

// splitter holds the state of one split call.
type splitter struct {
	poly         *Polygon
	surf         surface.Surface
	maxDeviation float64
	eps          float64
	ring         *ring
}

type fragment struct {
	side surface.Side
	loop []v3.Vec
}

func (sp *splitter) run() (inside, outside []*Polygon, err error) {
	sp.ring = newRing(sp.poly.vertices, func(v v3.Vec) surface.Side {
		return sp.surf.Side(v, sp.eps)
	})

	if err := sp.spliceIntersections(); err != nil {
		return nil, nil, err
	}

	crossings := sp.findCrossings()
	switch {
	case len(crossings) < 2:
		return nil, nil, degenerate(ErrTooFewCrossings)
	case len(crossings)%2 != 0:
		return nil, nil, degenerate(fmt.Errorf("%w: %d", ErrOddCrossings, len(crossings)))
	}

	for _, pr := range sp.pairCrossings(crossings) {
		if err := sp.stitch(pr[0], pr[1]); err != nil {
			return nil, nil, err
		}
	}

	frags, err := sp.walk()
	if err != nil {
		return nil, nil, err
	}
	if err := sp.checkTiling(frags); err != nil {
		return nil, nil, err
	}
	for _, f := range frags {
		vs := dedupe(f.loop, sp.eps)
		if len(vs) < 3 {
			continue
		}
		poly := &Polygon{vertices: vs}
		if poly.Area() <= sp.eps {
			continue
		}
		if f.side == surface.Inside {
			inside = append(inside, poly)
		} else {
			outside = append(outside, poly)
		}
	}
	return inside, outside, nil
}

// spliceIntersections inserts an on-surface node into every edge whose
// ends lie on opposite sides.
func (sp *splitter) spliceIntersections() error {
	for _, a := range sp.ring.nodes() {
		b := a.next
		if !surface.Opposite(a.side, b.side) {
			continue
		}
		pt, ok := sp.surf.FindIntersection(geom.Segment(a.pos, b.pos))
		if !ok {
			return invariant("%w: edge %v -> %v", ErrNoIntersection, a.pos, b.pos)
		}
		sp.ring.insertAfter(a, &node{pos: pt.Location, side: surface.Neither})
	}
	return nil
}

// findCrossings marks and returns, in loop order, the on-surface nodes
// where the boundary passes from one side to the other. In a run of
// on-surface nodes only the last one crosses.
func (sp *splitter) findCrossings() []*node {
	var out []*node
	for _, n := range sp.ring.nodes() {
		if n.side != surface.Neither || n.next.side == surface.Neither {
			continue
		}
		if p := sp.ring.lastSided(n); p != nil && surface.Opposite(p.side, n.next.side) {
			n.crossing = true
			out = append(out, n)
		}
	}
	return out
}

// pairCrossings pairs consecutive crossings. Of the two possible
// pairings it prefers one whose chords all cross the polygon's interior.
// A chord with its midpoint on the boundary runs along an edge instead,
// so it is accepted only when neither pairing does better.
func (sp *splitter) pairCrossings(c []*node) [][2]*node {
	k := len(c)
	pairing := func(off int) [][2]*node {
		out := make([][2]*node, 0, k/2)
		for i := 0; i < k/2; i++ {
			out = append(out, [2]*node{c[(off+2*i)%k], c[(off+2*i+1)%k]})
		}
		return out
	}

	if k == 2 {
		return pairing(0)
	}
	for _, strict := range []bool{true, false} {
		for _, off := range []int{0, 1} {
			if pairs := pairing(off); sp.chordsInside(pairs, strict) {
				return pairs
			}
		}
	}
	return pairing(0)
}

// chordsInside reports whether every chord midpoint projects into the
// polygon. With strict set the midpoint must also be more than eps from
// the boundary.
func (sp *splitter) chordsInside(pairs [][2]*node, strict bool) bool {
	for _, pr := range pairs {
		mid := geom.Lerp(pr[0].pos, pr[1].pos, 0.5)
		if !sp.poly.containsProjection(mid, sp.eps) {
			return false
		}
		if strict && sp.poly.boundaryDistance(mid) <= sp.eps {
			return false
		}
	}
	return true
}

// stitch links a to b with a path along the surface, detouring through
// the surface point nearest the polygon centroid if the direct path
// leaves the polygon.
func (sp *splitter) stitch(a, b *node) error {
	pa, okA := sp.surf.NearestPoint(a.pos)
	pb, okB := sp.surf.NearestPoint(b.pos)
	if !okA || !okB {
		return degenerate(fmt.Errorf("%w: crossing %v -> %v has no surface point", ErrStitchEscapes, a.pos, b.pos))
	}

	path, err := sp.surf.FindDirectPath(pa, pb, sp.maxDeviation)
	if err != nil {
		return pathFailure(err)
	}
	if !sp.pathInside(path) {
		if path, err = sp.viaCentroid(pa, pb); err != nil {
			return err
		}
	}
	sp.ring.link(a, b, path[1:len(path)-1])
	return nil
}

func (sp *splitter) viaCentroid(a, b surface.Point) ([]v3.Vec, error) {
	c, ok := sp.surf.NearestPoint(sp.poly.Centroid())
	if !ok {
		return nil, degenerate(fmt.Errorf("%w: centroid has no surface point", ErrStitchEscapes))
	}
	first, err := sp.surf.FindDirectPath(a, c, sp.maxDeviation)
	if err != nil {
		return nil, pathFailure(err)
	}
	second, err := sp.surf.FindDirectPath(c, b, sp.maxDeviation)
	if err != nil {
		return nil, pathFailure(err)
	}
	path := append(first, second[1:]...)
	if !sp.pathInside(path) {
		return nil, degenerate(fmt.Errorf("%w: %v -> %v", ErrStitchEscapes, a.Location, b.Location))
	}
	return path, nil
}

// pathInside checks the interior points and segment midpoints of path
// against the polygon footprint.
func (sp *splitter) pathInside(path []v3.Vec) bool {
	for i := 0; i+1 < len(path); i++ {
		if i > 0 && !sp.poly.containsProjection(path[i], sp.eps) {
			return false
		}
		if !sp.poly.containsProjection(geom.Lerp(path[i], path[i+1], 0.5), sp.eps) {
			return false
		}
	}
	return true
}

func pathFailure(err error) error {
	if errors.Is(err, surface.ErrForeignPoint) {
		return SplitError{Kind: Invariant, Err: err}
	}
	return SplitError{Kind: Degenerate, Err: err}
}

// tilingTolerance bounds the relative difference between the summed
// fragment area vectors and the polygon's.
const tilingTolerance = 1e-9

// checkTiling verifies that the walked loops tile the polygon. Shared
// stitches cancel, so the loops' Newell vectors must sum to the polygon's,
// and no loop may wind against it.
func (sp *splitter) checkTiling(frags []fragment) error {
	want := sp.poly.newell()
	n, _ := geom.Normalize(want)
	var sum v3.Vec
	for _, f := range frags {
		fn := newell(f.loop)
		if fn.Dot(n) < -2*sp.eps {
			return invariant("%w: fragment from %v winds against the polygon", ErrNotTiled, f.loop[0])
		}
		sum = sum.Add(fn)
	}
	if sum.Sub(want).Length() > tilingTolerance*math.Max(1, want.Length()) {
		return invariant("%w: area vector %v, want %v", ErrNotTiled, sum, want)
	}
	return nil
}

// walk traces every closed loop of the stitched graph, starting each from
// an unvisited node off the surface.
func (sp *splitter) walk() ([]fragment, error) {
	limit := 2*(sp.ring.size+sp.ring.stitched) + 4
	var frags []fragment

	for _, start := range sp.ring.nodes() {
		if start.side == surface.Neither || start.processed {
			continue
		}

		var loop []v3.Vec
		n, viaStitch := start, false
		for steps := 0; ; steps++ {
			if steps > limit {
				return nil, invariant("%w: no return to %v after %d steps", ErrOpenWalk, start.pos, steps)
			}
			if n.side != surface.Neither {
				if n.processed && n != start {
					return nil, invariant("%w: walk from %v re-entered %v", ErrOpenWalk, start.pos, n.pos)
				}
				if n.side != start.side {
					return nil, invariant("%w: walk from %v reached the %s side", ErrOpenWalk, start.pos, n.side)
				}
				n.processed = true
			}
			loop = append(loop, n.pos)

			if n.crossing && !viaStitch {
				chain, partner, err := sp.follow(n)
				if err != nil {
					return nil, err
				}
				loop = append(loop, chain...)
				n, viaStitch = partner, true
			} else {
				n, viaStitch = n.next, false
			}
			if n == start {
				break
			}
		}
		frags = append(frags, fragment{side: start.side, loop: loop})
	}
	return frags, nil
}

// follow walks the stitch leaving crossing n and returns the stitch's
// interior points and the crossing at its far end.
func (sp *splitter) follow(n *node) ([]v3.Vec, *node, error) {
	fwd, back := n.stitchFwd != nil, n.stitchBack != nil
	switch {
	case fwd && back:
		return nil, nil, invariant("%w: at %v", ErrAmbiguousStitch, n.pos)
	case !fwd && !back:
		return nil, nil, invariant("%w: crossing %v is not stitched", ErrOpenWalk, n.pos)
	}
	step := func(m *node) *node {
		if fwd {
			return m.stitchFwd
		}
		return m.stitchBack
	}

	var chain []v3.Vec
	m := step(n)
	for i := 0; m != nil && !m.onRing; i++ {
		if i > sp.ring.stitched {
			return nil, nil, invariant("%w: stitch from %v loops", ErrOpenWalk, n.pos)
		}
		chain = append(chain, m.pos)
		m = step(m)
	}
	if m == nil {
		return nil, nil, invariant("%w: stitch from %v ends off the boundary", ErrOpenWalk, n.pos)
	}
	return chain, m, nil
}
