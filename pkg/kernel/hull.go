package kernel

import (
	"errors"
	"fmt"

	"github.com/chazu/kerf/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrFlatPointSet is returned by ConvexHull when the points do not span a
// volume.
var ErrFlatPointSet = errors.New("kernel: points are coplanar")

// ConvexHull returns the convex hull of points as a closed mesh with
// outward-facing triangles. Points inside the hull are left out of the
// result.
func ConvexHull(points []v3.Vec, eps float64) (*Mesh, error) {
	if len(points) < 4 {
		return nil, fmt.Errorf("kernel: hull of %d points: %w", len(points), ErrFlatPointSet)
	}
	seed, ok := seedTetrahedron(points, eps)
	if !ok {
		return nil, fmt.Errorf("kernel: hull: %w", ErrFlatPointSet)
	}

	h := &hull{points: points}
	a, b, c, d := seed[0], seed[1], seed[2], seed[3]
	if det(points[a], points[b], points[c], points[d]) > 0 {
		h.toggle(geom.IndexTriangle{a, b, d})
		h.toggle(geom.IndexTriangle{a, d, c})
		h.toggle(geom.IndexTriangle{a, c, b})
		h.toggle(geom.IndexTriangle{b, c, d})
	} else {
		h.toggle(geom.IndexTriangle{a, d, b})
		h.toggle(geom.IndexTriangle{a, c, d})
		h.toggle(geom.IndexTriangle{a, b, c})
		h.toggle(geom.IndexTriangle{d, c, b})
	}

	for i := range points {
		if i == a || i == b || i == c || i == d {
			continue
		}
		h.add(i, eps)
	}
	return h.compact(), nil
}

type hull struct {
	points []v3.Vec
	tris   []geom.IndexTriangle
}

// toggle adds t, or removes a triangle over the same three vertices if
// one is present. Faces shared by two cones cancel this way.
func (h *hull) toggle(t geom.IndexTriangle) {
	for i, u := range h.tris {
		if u.CoincidentWith(t) {
			h.tris = append(h.tris[:i], h.tris[i+1:]...)
			return
		}
	}
	h.tris = append(h.tris, t)
}

// add grows the hull to include point i by replacing every face that
// sees it with a cone to i.
func (h *hull) add(i int, eps float64) {
	p := h.points[i]
	for {
		replaced := false
		for _, t := range h.tris {
			if t.HasVertex(i) {
				continue
			}
			tri, err := t.Resolve(h.points)
			if err != nil {
				continue
			}
			pl, ok := tri.Plane()
			if !ok || pl.Side(p, eps) != geom.Front {
				continue
			}
			h.toggle(geom.IndexTriangle{i, t[0], t[1]})
			h.toggle(geom.IndexTriangle{i, t[1], t[2]})
			h.toggle(geom.IndexTriangle{i, t[2], t[0]})
			h.toggle(t)
			replaced = true
			break
		}
		if !replaced {
			return
		}
	}
}

// compact drops unreferenced points.
func (h *hull) compact() *Mesh {
	remap := make(map[int]int)
	m := &Mesh{}
	for _, t := range h.tris {
		var out geom.IndexTriangle
		for j, v := range t {
			k, ok := remap[v]
			if !ok {
				k = len(m.Vertices)
				remap[v] = k
				m.Vertices = append(m.Vertices, h.points[v])
			}
			out[j] = k
		}
		m.Triangles = append(m.Triangles, out)
	}
	return m
}

// seedTetrahedron finds four points spanning a volume, preferring the
// first ones.
func seedTetrahedron(points []v3.Vec, eps float64) ([4]int, bool) {
	var s [4]int
	s[0] = 0
	found := 1
	for i := 1; i < len(points) && found < 4; i++ {
		p := points[i]
		switch found {
		case 1:
			if p.Sub(points[s[0]]).Length() > eps {
				s[1], found = i, 2
			}
		case 2:
			n := points[s[1]].Sub(points[s[0]]).Cross(p.Sub(points[s[0]]))
			if n.Length() > eps {
				s[2], found = i, 3
			}
		case 3:
			if d := det(points[s[0]], points[s[1]], points[s[2]], p); d > eps || d < -eps {
				s[3], found = i, 4
			}
		}
	}
	return s, found == 4
}

// det is the signed volume scaled by six of the tetrahedron (a, b, c, d).
func det(a, b, c, d v3.Vec) float64 {
	return b.Sub(a).Cross(c.Sub(a)).Dot(d.Sub(a))
}
