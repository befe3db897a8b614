// Package bsp builds binary space partitioning trees over triangles for
// painter's-order traversal. Splitting planes are chosen among the
// triangles' own planes, and triangles straddling a chosen plane are
// clipped with geom.Plane.SplitTriangle.
package bsp

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/kerf/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const (
	// maxCandidates bounds how many triangle planes are scored per node.
	maxCandidates = 32
	// splitCost weighs one split against one triangle of imbalance.
	splitCost = 8
)

// ErrUnsplittable is returned when a straddling triangle cannot be
// clipped.
var ErrUnsplittable = errors.New("bsp: straddling triangle could not be clipped")

// Node holds the triangles lying in its plane. Front and Back may be nil.
type Node struct {
	Plane    geom.Plane
	Coplanar []geom.Triangle
	Front    *Node
	Back     *Node
}

// Tree is a BSP tree. Root is nil for a tree over no triangles.
type Tree struct {
	Root    *Node
	Epsilon float64

	// Dropped counts degenerate input triangles that were left out.
	Dropped int
	// Splits counts triangles clipped during construction.
	Splits int
}

// Generate builds a tree over tris. Degenerate triangles are dropped.
func Generate(tris []geom.Triangle, eps float64) (*Tree, error) {
	t := &Tree{Epsilon: eps}
	kept := make([]geom.Triangle, 0, len(tris))
	for _, tri := range tris {
		if tri.IsDegenerate(eps) {
			t.Dropped++
			continue
		}
		kept = append(kept, tri)
	}
	root, err := t.build(kept)
	if err != nil {
		return nil, err
	}
	t.Root = root
	return t, nil
}

type placement int

const (
	inPlane placement = iota
	inFront
	inBack
	straddling
)

func place(pl geom.Plane, tri geom.Triangle, eps float64) placement {
	front, back := false, false
	for _, v := range tri {
		switch pl.Side(v, eps) {
		case geom.Front:
			front = true
		case geom.Back:
			back = true
		}
	}
	switch {
	case front && back:
		return straddling
	case front:
		return inFront
	case back:
		return inBack
	default:
		return inPlane
	}
}

func (t *Tree) build(tris []geom.Triangle) (*Node, error) {
	if len(tris) == 0 {
		return nil, nil
	}
	n := &Node{Plane: t.choosePlane(tris)}

	var front, back []geom.Triangle
	for _, tri := range tris {
		switch place(n.Plane, tri, t.Epsilon) {
		case inPlane:
			n.Coplanar = append(n.Coplanar, tri)
		case inFront:
			front = append(front, tri)
		case inBack:
			back = append(back, tri)
		case straddling:
			f, b, ok := n.Plane.SplitTriangle(tri, t.Epsilon)
			if !ok {
				return nil, fmt.Errorf("bsp: split %v: %w", tri, ErrUnsplittable)
			}
			t.Splits++
			front = append(front, f...)
			back = append(back, b...)
		}
	}

	var err error
	if n.Front, err = t.build(front); err != nil {
		return nil, err
	}
	if n.Back, err = t.build(back); err != nil {
		return nil, err
	}
	return n, nil
}

// choosePlane scores the planes of the first few triangles and returns
// the one with the fewest splits, then the best front/back balance.
func (t *Tree) choosePlane(tris []geom.Triangle) geom.Plane {
	var best geom.Plane
	bestCost := math.MaxInt
	for i, cand := range tris {
		if i == maxCandidates {
			break
		}
		pl, ok := cand.Plane()
		if !ok {
			continue
		}
		splits, front, back := 0, 0, 0
		for _, tri := range tris {
			switch place(pl, tri, t.Epsilon) {
			case inFront:
				front++
			case inBack:
				back++
			case straddling:
				splits++
			}
		}
		diff := front - back
		if diff < 0 {
			diff = -diff
		}
		if cost := splits*splitCost + diff; cost < bestCost {
			best, bestCost = pl, cost
		}
	}
	return best
}

// BackToFront calls fn for every stored triangle, farthest from eye
// first.
func (t *Tree) BackToFront(eye v3.Vec, fn func(geom.Triangle)) {
	backToFront(t.Root, eye, t.Epsilon, fn)
}

func backToFront(n *Node, eye v3.Vec, eps float64, fn func(geom.Triangle)) {
	if n == nil {
		return
	}
	near, far := n.Front, n.Back
	if n.Plane.Side(eye, eps) == geom.Back {
		near, far = n.Back, n.Front
	}
	backToFront(far, eye, eps, fn)
	for _, tri := range n.Coplanar {
		fn(tri)
	}
	backToFront(near, eye, eps, fn)
}

// Stats summarizes a tree.
type Stats struct {
	Nodes     int `json:"nodes"`
	Triangles int `json:"triangles"`
	Depth     int `json:"depth"`
	Splits    int `json:"splits"`
	Dropped   int `json:"dropped"`
}

// Stats counts nodes and stored triangles.
func (t *Tree) Stats() Stats {
	s := Stats{Splits: t.Splits, Dropped: t.Dropped}
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		if n == nil {
			return
		}
		s.Nodes++
		s.Triangles += len(n.Coplanar)
		if depth > s.Depth {
			s.Depth = depth
		}
		visit(n.Front, depth+1)
		visit(n.Back, depth+1)
	}
	visit(t.Root, 1)
	return s
}
