// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/kerf/pkg/geom"
	"github.com/chazu/kerf/pkg/kernel"
	"github.com/chazu/kerf/pkg/surface"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// DefaultMeshCells is the marching cubes resolution used when ToMesh is
// given no cell count.
const DefaultMeshCells = 64

// ErrForeignSolid is returned when a solid from another kernel is passed
// in.
var ErrForeignSolid = errors.New("sdfx: solid was not built by this kernel")

// Solid wraps an sdf.SDF3 to implement kernel.Solid.
type Solid struct {
	sdf.SDF3
}

// Bounds returns the axis-aligned bounding box.
func (s *Solid) Bounds() geom.Box {
	return geom.BoxFromSDF(s.BoundingBox())
}

// Kernel implements kernel.Kernel using sdfx.
type Kernel struct {
	// Epsilon is used to weld marching cubes vertices.
	Epsilon float64
	// MaxPathDepth is passed to the surfaces the kernel creates.
	MaxPathDepth int
}

// New returns a Kernel with default tolerances.
func New() *Kernel {
	return &Kernel{Epsilon: geom.Epsilon, MaxPathDepth: surface.MaxPathDepth}
}

// Wrap adopts an existing sdfx solid.
func Wrap(s sdf.SDF3) kernel.Solid {
	return &Solid{SDF3: s}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid. Foreign
// solids panic; the interface methods without an error result cannot
// report them otherwise.
func unwrap(s kernel.Solid) sdf.SDF3 {
	w, ok := s.(*Solid)
	if !ok {
		panic(ErrForeignSolid)
	}
	return w.SDF3
}

// Box creates a box with the given dimensions centered on the origin.
func (k *Kernel) Box(x, y, z float64) (kernel.Solid, error) {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: box %gx%gx%g: %w", x, y, z, err)
	}
	return Wrap(s), nil
}

// Sphere creates a sphere centered on the origin.
func (k *Kernel) Sphere(radius float64) (kernel.Solid, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx: sphere r=%g: %w", radius, err)
	}
	return Wrap(s), nil
}

// Cylinder creates a cylinder along z centered on the origin.
func (k *Kernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: cylinder h=%g r=%g: %w", height, radius, err)
	}
	return Wrap(s), nil
}

// Union returns the union of two solids.
func (k *Kernel) Union(a, b kernel.Solid) kernel.Solid {
	return Wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns the difference a - b.
func (k *Kernel) Difference(a, b kernel.Solid) kernel.Solid {
	return Wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *Kernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return Wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by (x, y, z).
func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return Wrap(sdf.Transform3D(unwrap(s), m))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return Wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh converts a solid to an indexed triangle mesh using marching
// cubes. cells <= 0 selects DefaultMeshCells.
func (k *Kernel) ToMesh(s kernel.Solid, cells int) (*kernel.Mesh, error) {
	w, ok := s.(*Solid)
	if !ok {
		return nil, ErrForeignSolid
	}
	if cells <= 0 {
		cells = DefaultMeshCells
	}

	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(w.SDF3, renderer)

	tris := make([]geom.Triangle, 0, len(triangles))
	for _, tri := range triangles {
		tris = append(tris, geom.Triangle{tri[0], tri[1], tri[2]})
	}
	m := kernel.MeshFromTriangles(tris, k.Epsilon)
	if m.IsEmpty() {
		return nil, fmt.Errorf("sdfx: mesh at %d cells: %w", cells, kernel.ErrEmptyMesh)
	}
	return m, nil
}

// Surface exposes the solid's boundary. The surface has its own handle
// each time it is requested.
func (k *Kernel) Surface(s kernel.Solid) surface.Surface {
	surf := surface.NewSDFSurface(unwrap(s))
	surf.MaxDepth = k.MaxPathDepth
	return surf
}
