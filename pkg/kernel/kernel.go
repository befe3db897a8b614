// Package kernel defines the solid modeling interface that supplies
// meshes and dividing surfaces to the rest of the system. The sdfx
// subpackage implements it over signed distance fields.
package kernel

import (
	"github.com/chazu/kerf/pkg/geom"
	"github.com/chazu/kerf/pkg/surface"
)

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// Bounds returns the axis-aligned bounding box.
	Bounds() geom.Box
}

// Kernel builds solids, meshes them and exposes them as surfaces.
type Kernel interface {
	// Primitives, centered on the origin.
	Box(x, y, z float64) (Solid, error)
	Sphere(radius float64) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// ToMesh tessellates s with the given number of cells along its
	// longest side.
	ToMesh(s Solid, cells int) (*Mesh, error)

	// Surface returns the boundary of s as a dividing surface. Points
	// inside s are inside the surface.
	Surface(s Solid) surface.Surface
}
