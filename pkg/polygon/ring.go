package polygon

import (
	"github.com/chazu/kerf/pkg/surface"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// node is a point of the boundary graph built for one split. Ring nodes
// lie on the polygon boundary and are linked by next/prev in loop order.
// Stitch nodes lie on a path along the surface between two crossings and
// are linked only by stitchFwd/stitchBack.
type node struct {
	pos  v3.Vec
	side surface.Side

	onRing   bool
	crossing bool

	next, prev            *node
	stitchFwd, stitchBack *node

	processed bool
}

// ring is the boundary graph. head is the node built from the polygon's
// first vertex.
type ring struct {
	head     *node
	size     int // ring nodes
	stitched int // stitch nodes
}

func newRing(vertices []v3.Vec, classify func(v3.Vec) surface.Side) *ring {
	r := &ring{}
	var last *node
	for _, v := range vertices {
		n := &node{pos: v, side: classify(v), onRing: true}
		if last == nil {
			r.head = n
		} else {
			last.next = n
			n.prev = last
		}
		last = n
		r.size++
	}
	last.next = r.head
	r.head.prev = last
	return r
}

// insertAfter splices n into the ring between a and a.next.
func (r *ring) insertAfter(a, n *node) {
	n.onRing = true
	n.prev = a
	n.next = a.next
	a.next.prev = n
	a.next = n
	r.size++
}

// nodes returns the ring nodes in loop order starting at head.
func (r *ring) nodes() []*node {
	out := make([]*node, 0, r.size)
	n := r.head
	for i := 0; i < r.size; i++ {
		out = append(out, n)
		n = n.next
	}
	return out
}

// lastSided returns the nearest predecessor of n that is not on the
// surface, or nil if every node is.
func (r *ring) lastSided(n *node) *node {
	p := n.prev
	for i := 0; i < r.size; i++ {
		if p.side != surface.Neither {
			return p
		}
		p = p.prev
	}
	return nil
}

// link joins a to b with a stitch through mids. Walking stitchFwd from a
// reaches b; walking stitchBack from b reaches a.
func (r *ring) link(a, b *node, mids []v3.Vec) {
	prev := a
	for _, m := range mids {
		n := &node{pos: m, side: surface.Neither}
		prev.stitchFwd = n
		n.stitchBack = prev
		prev = n
		r.stitched++
	}
	prev.stitchFwd = b
	b.stitchBack = prev
}
