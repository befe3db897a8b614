// Package polygon holds planar vertex loops and splits them against
// dividing surfaces.
package polygon

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/kerf/pkg/geom"
	"github.com/chazu/kerf/pkg/tessellate"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrTooFewVertices is returned by New for loops of fewer than three
// vertices.
var ErrTooFewVertices = errors.New("polygon: need at least 3 vertices")

// Polygon is a closed loop of coplanar vertices without self
// intersections. It may be concave. The loop winds counter-clockwise about
// the Newell normal by construction.
type Polygon struct {
	vertices []v3.Vec
	tris     [][3]int // cached tessellation, nil when stale
}

// New returns the polygon through vertices in order. The slice is copied.
func New(vertices ...v3.Vec) (*Polygon, error) {
	if len(vertices) < 3 {
		return nil, fmt.Errorf("polygon: new with %d vertices: %w", len(vertices), ErrTooFewVertices)
	}
	return &Polygon{vertices: append([]v3.Vec(nil), vertices...)}, nil
}

// Len returns the number of vertices.
func (p *Polygon) Len() int { return len(p.vertices) }

// Vertex returns the i-th vertex.
func (p *Polygon) Vertex(i int) v3.Vec { return p.vertices[i] }

// Vertices returns a copy of the loop.
func (p *Polygon) Vertices() []v3.Vec {
	return append([]v3.Vec(nil), p.vertices...)
}

// Copy returns an independent copy of p.
func (p *Polygon) Copy() *Polygon {
	c := &Polygon{vertices: p.Vertices()}
	if p.tris != nil {
		c.tris = append([][3]int(nil), p.tris...)
	}
	return c
}

// newell returns the Newell normal. Its length is twice the area of the
// loop projected onto the plane it is normal to.
func (p *Polygon) newell() v3.Vec {
	return newell(p.vertices)
}

func newell(vs []v3.Vec) v3.Vec {
	var n v3.Vec
	for i, a := range vs {
		b := vs[(i+1)%len(vs)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}

// Normal returns the unit Newell normal, or the zero vector for a loop
// enclosing no area.
func (p *Polygon) Normal() v3.Vec {
	n, _ := geom.Normalize(p.newell())
	return n
}

// Plane returns the plane through the vertex average with the Newell
// normal. It fails for loops enclosing no area.
func (p *Polygon) Plane() (geom.Plane, bool) {
	n, ok := geom.Normalize(p.newell())
	if !ok {
		return geom.Plane{}, false
	}
	return geom.NewPlane(p.Center(), n), true
}

// Area returns the enclosed area.
func (p *Polygon) Area() float64 {
	return p.newell().Length() / 2
}

// Center returns the vertex average.
func (p *Polygon) Center() v3.Vec {
	var c v3.Vec
	for _, v := range p.vertices {
		c = c.Add(v)
	}
	return c.MulScalar(1 / float64(len(p.vertices)))
}

// Centroid returns the area-weighted center of the tessellation. It falls
// back to Center when the loop cannot be tessellated.
func (p *Polygon) Centroid() v3.Vec {
	tris, err := p.Triangles()
	if err != nil {
		return p.Center()
	}
	var sum v3.Vec
	total := 0.0
	for _, t := range tris {
		a := t.Area()
		sum = sum.Add(t.Center().MulScalar(a))
		total += a
	}
	if total == 0 {
		return p.Center()
	}
	return sum.MulScalar(1 / total)
}

// Tessellate returns a triangulation as indices into the
// vertex loop. The result is cached until p is modified.
func (p *Polygon) Tessellate() ([][3]int, error) {
	if p.tris != nil {
		return p.tris, nil
	}
	n, ok := geom.Normalize(p.newell())
	if !ok {
		return nil, fmt.Errorf("polygon: tessellate: %w", tessellate.ErrNotSimple)
	}
	tris, err := tessellate.Triangulate(p.vertices, n)
	if err != nil {
		return nil, fmt.Errorf("polygon: tessellate: %w", err)
	}
	p.tris = tris
	return tris, nil
}

// Triangles resolves the tessellation.
func (p *Polygon) Triangles() ([]geom.Triangle, error) {
	idx, err := p.Tessellate()
	if err != nil {
		return nil, err
	}
	out := make([]geom.Triangle, len(idx))
	for i, t := range idx {
		out[i] = geom.Triangle{p.vertices[t[0]], p.vertices[t[1]], p.vertices[t[2]]}
	}
	return out, nil
}

// ContainsPoint reports whether pt lies within eps of the polygon's plane
// and inside its loop (boundary included).
func (p *Polygon) ContainsPoint(pt v3.Vec, eps float64) bool {
	tris, err := p.Triangles()
	if err != nil {
		return false
	}
	for _, t := range tris {
		if t.ContainsPoint(pt, eps) {
			return true
		}
	}
	return false
}

// containsProjection reports whether pt, projected onto the polygon's
// plane, lies inside the loop.
func (p *Polygon) containsProjection(pt v3.Vec, eps float64) bool {
	pl, ok := p.Plane()
	if !ok {
		return false
	}
	return p.ContainsPoint(pl.NearestPoint(pt), eps)
}

// boundaryDistance returns the distance from pt to the nearest edge.
func (p *Polygon) boundaryDistance(pt v3.Vec) float64 {
	d := math.Inf(1)
	for i, a := range p.vertices {
		s := geom.Segment(a, p.vertices[(i+1)%len(p.vertices)])
		u := math.Max(0, math.Min(1, s.LerpInverse(pt)))
		d = math.Min(d, s.Lerp(u).Sub(pt).Length())
	}
	return d
}

// IncreaseDensity subdivides every edge longer than maxEdge into equal
// pieces no longer than maxEdge. The enclosed region is unchanged.
func (p *Polygon) IncreaseDensity(maxEdge float64) {
	if maxEdge <= 0 {
		return
	}
	out := make([]v3.Vec, 0, len(p.vertices))
	for i, a := range p.vertices {
		b := p.vertices[(i+1)%len(p.vertices)]
		out = append(out, a)
		pieces := int(math.Ceil(b.Sub(a).Length() / maxEdge))
		for k := 1; k < pieces; k++ {
			out = append(out, geom.Lerp(a, b, float64(k)/float64(pieces)))
		}
	}
	p.vertices = out
	p.tris = nil
}

// MinimizeDensity removes duplicate vertices and vertices lying within eps
// of the line through their neighbors. It never reduces the loop below
// three vertices.
func (p *Polygon) MinimizeDensity(eps float64) {
	vs := dedupe(p.vertices, eps)
	for changed := true; changed && len(vs) > 3; {
		changed = false
		for i := 0; i < len(vs) && len(vs) > 3; i++ {
			prev := vs[(i+len(vs)-1)%len(vs)]
			next := vs[(i+1)%len(vs)]
			l, ok := geom.LineThrough(geom.Segment(prev, next))
			if !ok || l.ShortestDistance(vs[i]) > eps {
				continue
			}
			// Only drop vertices between their neighbors, not spikes.
			if u := geom.Segment(prev, next).LerpInverse(vs[i]); u < 0 || u > 1 {
				continue
			}
			vs = append(vs[:i], vs[i+1:]...)
			changed = true
			i--
		}
	}
	p.vertices = vs
	p.tris = nil
}

// Translate moves every vertex by d.
func (p *Polygon) Translate(d v3.Vec) {
	for i := range p.vertices {
		p.vertices[i] = p.vertices[i].Add(d)
	}
}

func (p *Polygon) String() string {
	return fmt.Sprintf("polygon(%d vertices, area %g)", len(p.vertices), p.Area())
}

// dedupe drops vertices within eps of their predecessor, wrapping around.
func dedupe(vs []v3.Vec, eps float64) []v3.Vec {
	out := make([]v3.Vec, 0, len(vs))
	for _, v := range vs {
		if len(out) > 0 && geom.NearlyEqual(out[len(out)-1], v, eps) {
			continue
		}
		out = append(out, v)
	}
	for len(out) > 1 && geom.NearlyEqual(out[0], out[len(out)-1], eps) {
		out = out[:len(out)-1]
	}
	return out
}
