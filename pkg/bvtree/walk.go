package bvtree

// Walk visits nodes depth first, back before front. depth is 0 at the
// root. Returning false from fn skips the node's children.
func (t *Tree) Walk(fn func(n Node, depth int) bool) {
	walk(t.Root, 0, fn)
}

func walk(n Node, depth int, fn func(Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	if b, ok := n.(*Branch); ok {
		walk(b.Back, depth+1, fn)
		walk(b.Front, depth+1, fn)
	}
}

// Leaves returns the leaves in traversal order. The leaves are the tree's
// own; callers must not modify them.
func (t *Tree) Leaves() []*Leaf {
	var out []*Leaf
	t.Walk(func(n Node, _ int) bool {
		if l, ok := n.(*Leaf); ok {
			out = append(out, l)
		}
		return true
	})
	return out
}

// Stats summarizes a tree's shape and contents.
type Stats struct {
	Depth            int `json:"depth"`
	Branches         int `json:"branches"`
	Leaves           int `json:"leaves"`
	Triangles        int `json:"triangles"`
	MaxLeafTriangles int `json:"maxLeafTriangles"`
	EmptyLeaves      int `json:"emptyLeaves"`
}

// Stats counts nodes and stored triangles.
func (t *Tree) Stats() Stats {
	s := Stats{Depth: t.Depth}
	t.Walk(func(n Node, _ int) bool {
		switch n := n.(type) {
		case *Branch:
			s.Branches++
		case *Leaf:
			s.Leaves++
			c := len(n.Triangles)
			s.Triangles += c
			if c > s.MaxLeafTriangles {
				s.MaxLeafTriangles = c
			}
			if c == 0 {
				s.EmptyLeaves++
			}
		}
		return true
	})
	return s
}
