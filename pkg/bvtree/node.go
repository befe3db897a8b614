// Package bvtree is a bounding-volume tree over triangles. The tree shape
// is fixed at construction by repeated longest-axis bisection of a root
// box; triangles are inserted afterwards and clipped against partition
// planes when they straddle one, so every leaf holds only triangles lying
// wholly inside its box.
package bvtree

import (
	"github.com/chazu/kerf/pkg/geom"
)

// Node is either a *Branch or a *Leaf.
type Node interface {
	Bounds() geom.Box
	node()
}

// Branch partitions its box with an axis-aligned plane through the box
// center. Back covers the half behind the plane (smaller coordinates) and
// Front the half in front of it.
type Branch struct {
	Plane geom.Plane
	Axis  geom.Axis
	Box   geom.Box
	Back  Node
	Front Node
}

// Leaf holds the triangles inside its box in no particular order.
type Leaf struct {
	Box       geom.Box
	Triangles []geom.Triangle
}

func (b *Branch) Bounds() geom.Box { return b.Box }
func (l *Leaf) Bounds() geom.Box   { return l.Box }

func (*Branch) node() {}
func (*Leaf) node()   {}

var (
	_ Node = (*Branch)(nil)
	_ Node = (*Leaf)(nil)
)

// build creates the subtree for box. depth 1 is a leaf.
func build(box geom.Box, depth int) Node {
	if depth <= 1 {
		return &Leaf{Box: box}
	}
	neg, pos, axis, at := box.SplitInTwo()
	return &Branch{
		Plane: geom.AxisPlane(axis, at),
		Axis:  axis,
		Box:   box,
		Back:  build(neg, depth-1),
		Front: build(pos, depth-1),
	}
}
