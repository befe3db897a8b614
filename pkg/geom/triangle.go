package geom

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Triangle is three ordered vertices. The winding A->B->C is
// counter-clockwise when viewed from the side its normal points to.
type Triangle [3]v3.Vec

// NewTriangle returns the triangle (a, b, c).
func NewTriangle(a, b, c v3.Vec) Triangle {
	return Triangle{a, b, c}
}

// FromSDF converts an sdfx triangle.
func FromSDF(t sdf.Triangle3) Triangle {
	return Triangle{t[0], t[1], t[2]}
}

// SDF converts t to an sdfx triangle.
func (t Triangle) SDF() sdf.Triangle3 {
	return sdf.Triangle3{t[0], t[1], t[2]}
}

// Normal returns the unnormalized face normal; its length is twice the
// area.
func (t Triangle) Normal() v3.Vec {
	return t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
}

// Area returns the triangle's area.
func (t Triangle) Area() float64 {
	return t.Normal().Length() / 2
}

// IsDegenerate reports whether the area is below eps.
func (t Triangle) IsDegenerate(eps float64) bool {
	return t.Area() < eps
}

// IsCollinear reports whether t encloses no area relative to its size:
// its area is at most sliverFraction of its longest edge squared.
func (t Triangle) IsCollinear() bool {
	longest := 0.0
	for i := range t {
		longest = math.Max(longest, t[(i+1)%3].Sub(t[i]).Length2())
	}
	return t.Area() <= sliverFraction*longest
}

// Center returns the vertex average.
func (t Triangle) Center() v3.Vec {
	return t[0].Add(t[1]).Add(t[2]).MulScalar(1.0 / 3.0)
}

// Plane returns the supporting plane, or false for a degenerate triangle.
func (t Triangle) Plane() (Plane, bool) {
	n, ok := Normalize(t.Normal())
	if !ok {
		return Plane{}, false
	}
	return Plane{Normal: n, CenterDotNormal: t[0].Dot(n)}, true
}

// Bounds returns the triangle's bounding box.
func (t Triangle) Bounds() Box {
	return BoxFromPoints(t[0], t[1], t[2])
}

// ContainsPoint reports whether p lies on the triangle (within eps of its
// plane and of its edges).
func (t Triangle) ContainsPoint(p v3.Vec, eps float64) bool {
	pl, ok := t.Plane()
	if !ok {
		return false
	}
	if pl.Side(p, eps) != Neither {
		return false
	}
	for i := 0; i < 3; i++ {
		edge := t[(i+1)%3].Sub(t[i])
		// Signed area over edge length is the distance from the edge line.
		if edge.Cross(p.Sub(t[i])).Dot(pl.Normal) < -eps*edge.Length() {
			return false
		}
	}
	return true
}

// IntersectSegment returns where s passes through the triangle and the
// segment parameter of that point.
func (t Triangle) IntersectSegment(s LineSegment, eps float64) (v3.Vec, float64, bool) {
	pl, ok := t.Plane()
	if !ok {
		return v3.Vec{}, 0, false
	}
	u, ok := pl.SegmentParam(s, eps)
	if !ok {
		return v3.Vec{}, 0, false
	}
	p := s.Lerp(u)
	if !t.ContainsPoint(p, eps) {
		return v3.Vec{}, 0, false
	}
	return p, u, true
}

func (t Triangle) String() string {
	return fmt.Sprintf("triangle(%v, %v, %v)", t[0], t[1], t[2])
}

// IndexTriangle is a triangle stored as three indices into a vertex
// buffer.
type IndexTriangle [3]int

// Resolve looks the indices up in vertices.
func (it IndexTriangle) Resolve(vertices []v3.Vec) (Triangle, error) {
	var t Triangle
	for i, j := range it {
		if j < 0 || j >= len(vertices) {
			return Triangle{}, fmt.Errorf("geom: index %d out of range [0,%d)", j, len(vertices))
		}
		t[i] = vertices[j]
	}
	return t, nil
}

// HasVertex reports whether index is one of the triangle's corners.
func (it IndexTriangle) HasVertex(index int) bool {
	return it[0] == index || it[1] == index || it[2] == index
}

// CoincidentWith reports whether both triangles use the same three
// vertices, in any order.
func (it IndexTriangle) CoincidentWith(other IndexTriangle) bool {
	for _, v := range it {
		if !other.HasVertex(v) {
			return false
		}
	}
	return true
}
