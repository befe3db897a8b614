// Package geom holds the value types the spatial index and the polygon
// splitter are built from: planes, triangles, boxes, segments and spheres.
// Vectors are sdfx v3.Vec values throughout.
package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Epsilon is the default tolerance for side classification and point
// equality.
const Epsilon = 1e-6

// Axis indexes a vector component.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "unknown"
	}
}

// Unit returns the unit vector along the axis.
func (a Axis) Unit() v3.Vec {
	return WithComponent(v3.Vec{}, a, 1)
}

// Component returns the a-th component of v.
func Component(v v3.Vec, a Axis) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}

// WithComponent returns v with its a-th component replaced by x.
func WithComponent(v v3.Vec, a Axis, x float64) v3.Vec {
	switch a {
	case AxisX:
		v.X = x
	case AxisY:
		v.Y = x
	default:
		v.Z = x
	}
	return v
}

// Lerp interpolates between a (t=0) and b (t=1).
func Lerp(a, b v3.Vec, t float64) v3.Vec {
	return a.Add(b.Sub(a).MulScalar(t))
}

// NearlyEqual reports whether a and b are within eps of each other.
func NearlyEqual(a, b v3.Vec, eps float64) bool {
	return a.Sub(b).Length() <= eps
}

// Normalize returns v scaled to unit length, or false if v is too short to
// have a direction.
func Normalize(v v3.Vec) (v3.Vec, bool) {
	l := v.Length()
	if l < 1e-12 || math.IsNaN(l) {
		return v3.Vec{}, false
	}
	return v.MulScalar(1 / l), true
}

// AnyPerpendicular returns a unit vector perpendicular to the unit vector n.
func AnyPerpendicular(n v3.Vec) v3.Vec {
	ref := v3.Vec{X: 1}
	if math.Abs(n.X) > 0.9 {
		ref = v3.Vec{Y: 1}
	}
	p, _ := Normalize(n.Cross(ref))
	return p
}

func minVec(a, b v3.Vec) v3.Vec {
	return v3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

func maxVec(a, b v3.Vec) v3.Vec {
	return v3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}
