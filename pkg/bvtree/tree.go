package bvtree

import (
	"errors"
	"fmt"

	"github.com/chazu/kerf/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrInvalidDepth is returned by Build for depths below 1.
var ErrInvalidDepth = errors.New("bvtree: depth must be at least 1")

// ErrNotPlaced is wrapped by InsertError.
var ErrNotPlaced = errors.New("bvtree: triangle could not be placed")

// ErrDegenerate is wrapped by InsertError for triangles with collinear
// vertices, which clipping would reduce to nothing.
var ErrDegenerate = errors.New("bvtree: triangle is degenerate")

// InsertError reports the first triangle InsertAll could not place.
type InsertError struct {
	Index      int
	Triangle   geom.Triangle
	Degenerate bool
}

func (e InsertError) Error() string {
	if e.Degenerate {
		return fmt.Sprintf("bvtree: triangle %d %v is degenerate", e.Index, e.Triangle)
	}
	return fmt.Sprintf("bvtree: triangle %d %v could not be placed", e.Index, e.Triangle)
}

func (e InsertError) Unwrap() error {
	if e.Degenerate {
		return ErrDegenerate
	}
	return ErrNotPlaced
}

// Tree is a bounding-volume tree. It is not safe for concurrent mutation.
type Tree struct {
	Root    Node
	Depth   int
	Epsilon float64
}

// Build creates a tree of the given depth over box. A depth of 1 is a
// single leaf. The shape does not depend on the triangles inserted later.
func Build(box geom.Box, depth int) (*Tree, error) {
	if depth < 1 {
		return nil, fmt.Errorf("bvtree: build depth %d: %w", depth, ErrInvalidDepth)
	}
	return &Tree{Root: build(box, depth), Depth: depth, Epsilon: geom.Epsilon}, nil
}

// Bounds returns the root box.
func (t *Tree) Bounds() geom.Box {
	return t.Root.Bounds()
}

// ---------------------------------------------------------------------------
// Insertion
// ---------------------------------------------------------------------------

// placement is a pending append of tri to leaf.
type placement struct {
	leaf *Leaf
	tri  geom.Triangle
}

// Insert places tri in the tree, clipping it against partition planes it
// straddles. It returns false, leaving the tree unchanged, when tri (or a
// piece of it) lies outside the root box or cannot be clipped, and when tri
// is degenerate.
func (t *Tree) Insert(tri geom.Triangle) bool {
	if tri.IsCollinear() {
		return false
	}
	plan, ok := t.plan(t.Root, tri, nil)
	if !ok {
		return false
	}
	commit(plan)
	return true
}

// InsertAll inserts every triangle or none of them. On failure the error
// is an InsertError naming the first triangle that could not be placed.
func (t *Tree) InsertAll(tris []geom.Triangle) error {
	var plan []placement
	for i, tri := range tris {
		if tri.IsCollinear() {
			return InsertError{Index: i, Triangle: tri, Degenerate: true}
		}
		var ok bool
		plan, ok = t.plan(t.Root, tri, plan)
		if !ok {
			return InsertError{Index: i, Triangle: tri}
		}
	}
	commit(plan)
	return nil
}

func commit(plan []placement) {
	for _, p := range plan {
		p.leaf.Triangles = append(p.leaf.Triangles, p.tri)
	}
}

// plan appends the placements for tri beneath n to acc. On failure acc is
// returned truncated to its original length.
func (t *Tree) plan(n Node, tri geom.Triangle, acc []placement) ([]placement, bool) {
	mark := len(acc)
	switch n := n.(type) {
	case *Leaf:
		if !n.Box.ContainsTriangle(tri, t.Epsilon) {
			return acc, false
		}
		return append(acc, placement{leaf: n, tri: tri}), true

	case *Branch:
		if !n.Box.ContainsTriangle(tri, t.Epsilon) {
			return acc, false
		}
		if out, ok := t.plan(n.Back, tri, acc); ok {
			return out, true
		}
		if out, ok := t.plan(n.Front, tri, acc); ok {
			return out, true
		}

		front, back, ok := n.Plane.SplitTriangle(tri, t.Epsilon)
		if !ok || len(front)+len(back) == 0 {
			return acc[:mark], false
		}
		for _, piece := range back {
			if acc, ok = t.plan(n.Back, piece, acc); !ok {
				return acc[:mark], false
			}
		}
		for _, piece := range front {
			if acc, ok = t.plan(n.Front, piece, acc); !ok {
				return acc[:mark], false
			}
		}
		return acc, true
	}
	return acc, false
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// Hit is a segment/triangle intersection.
type Hit struct {
	Triangle geom.Triangle `json:"triangle"`
	Point    v3.Vec        `json:"point"`
	// T is the segment parameter of Point, 0 at A and 1 at B.
	T float64 `json:"t"`
}

// FindIntersection returns the first hit found in a back-before-front
// traversal. It is not necessarily the hit nearest seg.A; use
// FindNearestIntersection for that.
func (t *Tree) FindIntersection(seg geom.LineSegment) (Hit, bool) {
	return t.first(t.Root, seg, seg.Bounds())
}

func (t *Tree) first(n Node, seg geom.LineSegment, bounds geom.Box) (Hit, bool) {
	if !n.Bounds().Intersects(bounds, t.Epsilon) {
		return Hit{}, false
	}
	switch n := n.(type) {
	case *Leaf:
		for _, tri := range n.Triangles {
			if p, u, ok := tri.IntersectSegment(seg, t.Epsilon); ok {
				return Hit{Triangle: tri, Point: p, T: u}, true
			}
		}
	case *Branch:
		if h, ok := t.first(n.Back, seg, bounds); ok {
			return h, true
		}
		return t.first(n.Front, seg, bounds)
	}
	return Hit{}, false
}

// FindNearestIntersection returns the hit with the smallest segment
// parameter.
func (t *Tree) FindNearestIntersection(seg geom.LineSegment) (Hit, bool) {
	var best Hit
	found := false
	bounds := seg.Bounds()
	t.Walk(func(n Node, _ int) bool {
		if !n.Bounds().Intersects(bounds, t.Epsilon) {
			return false
		}
		leaf, ok := n.(*Leaf)
		if !ok {
			return true
		}
		for _, tri := range leaf.Triangles {
			p, u, ok := tri.IntersectSegment(seg, t.Epsilon)
			if ok && (!found || u < best.T) {
				best = Hit{Triangle: tri, Point: p, T: u}
				found = true
			}
		}
		return false
	})
	return best, found
}
