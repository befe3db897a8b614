package kernel

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/kerf/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrEmptyMesh is returned by Bounds for meshes without vertices.
var ErrEmptyMesh = errors.New("kernel: mesh has no vertices")

// Mesh is an indexed triangle mesh. Consumers only read vertex positions.
type Mesh struct {
	Vertices  []v3.Vec             `json:"vertices"`
	Triangles []geom.IndexTriangle `json:"triangles"`
	PartName  string               `json:"partName,omitempty"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Triangles) == 0
}

// Triangle resolves the i-th triangle.
func (m *Mesh) Triangle(i int) (geom.Triangle, error) {
	if i < 0 || i >= len(m.Triangles) {
		return geom.Triangle{}, fmt.Errorf("kernel: triangle %d out of range [0,%d)", i, len(m.Triangles))
	}
	t, err := m.Triangles[i].Resolve(m.Vertices)
	if err != nil {
		return geom.Triangle{}, fmt.Errorf("kernel: triangle %d: %w", i, err)
	}
	return t, nil
}

// Resolve returns every triangle by value.
func (m *Mesh) Resolve() ([]geom.Triangle, error) {
	out := make([]geom.Triangle, len(m.Triangles))
	for i := range m.Triangles {
		t, err := m.Triangle(i)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// Bounds returns the bounding box of the vertices.
func (m *Mesh) Bounds() (geom.Box, error) {
	if len(m.Vertices) == 0 {
		return geom.Box{}, ErrEmptyMesh
	}
	return geom.BoxFromPoints(m.Vertices...), nil
}

// Area returns the total triangle area. Unresolvable triangles count as
// zero.
func (m *Mesh) Area() float64 {
	sum := 0.0
	for _, it := range m.Triangles {
		if t, err := it.Resolve(m.Vertices); err == nil {
			sum += t.Area()
		}
	}
	return sum
}

// MeshFromTriangles builds an indexed mesh, merging vertices that agree
// after rounding to a grid of spacing eps.
func MeshFromTriangles(tris []geom.Triangle, eps float64) *Mesh {
	type key [3]int64
	quantize := func(v v3.Vec) key {
		return key{
			int64(math.Round(v.X / eps)),
			int64(math.Round(v.Y / eps)),
			int64(math.Round(v.Z / eps)),
		}
	}

	m := &Mesh{}
	index := make(map[key]int)
	for _, t := range tris {
		var it geom.IndexTriangle
		for j, v := range t {
			k := quantize(v)
			i, ok := index[k]
			if !ok {
				i = len(m.Vertices)
				index[k] = i
				m.Vertices = append(m.Vertices, v)
			}
			it[j] = i
		}
		if it[0] == it[1] || it[1] == it[2] || it[2] == it[0] {
			continue
		}
		m.Triangles = append(m.Triangles, it)
	}
	return m
}

// Buffers is a mesh flattened for rendering. Vertices are not shared:
// each triangle has its own three vertices carrying the face normal.
type Buffers struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
}

// Flatten converts m into render buffers. Unresolvable triangles are
// skipped.
func (m *Mesh) Flatten() Buffers {
	b := Buffers{
		Vertices: make([]float32, 0, len(m.Triangles)*9),
		Normals:  make([]float32, 0, len(m.Triangles)*9),
		Indices:  make([]uint32, 0, len(m.Triangles)*3),
	}
	for _, it := range m.Triangles {
		t, err := it.Resolve(m.Vertices)
		if err != nil {
			continue
		}
		n, _ := geom.Normalize(t.Normal())
		for _, v := range t {
			b.Indices = append(b.Indices, uint32(len(b.Vertices)/3))
			b.Vertices = append(b.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			b.Normals = append(b.Normals, float32(n.X), float32(n.Y), float32(n.Z))
		}
	}
	return b
}
