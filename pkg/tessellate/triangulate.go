package tessellate

import (
	"errors"
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	triangulate "github.com/osuushi/triangulate/advanced"
)

// ErrTooFewVertices is returned for loops that cannot enclose area.
var ErrTooFewVertices = errors.New("tessellate: loop needs at least 3 vertices")

// ErrNotSimple is returned for self-intersecting loops and loops wound
// against the given normal.
var ErrNotSimple = errors.New("tessellate: loop is not simple or is wound against its normal")

// areaTolerance bounds the relative difference between the loop's area and
// the summed area of its triangles.
const areaTolerance = 1e-9

// Triangulate triangulates a simple (convex or concave) loop lying in the
// plane with the given normal. The loop must wind counter-clockwise when
// viewed from the side the normal points to. Every returned triangle has
// the same winding as the loop; collinear runs produce no zero-area
// triangles.
func Triangulate(points []v3.Vec, normal v3.Vec) (tris [][3]int, err error) {
	if len(points) < 3 {
		return nil, ErrTooFewVertices
	}
	u, v := projection(normal)

	list := make(triangulate.PolygonList, 1)
	loop := &list[0]
	for _, p := range points {
		pt := alloc(loop.Points)
		pt.X, pt.Y = u(p), v(p)
		loop.Points = append(loop.Points, pt)
	}
	want := 0.0
	for i, p := range loop.Points {
		q := loop.Points[(i+1)%len(loop.Points)]
		want += p.X*q.Y - q.X*p.Y
	}
	want /= 2
	if want <= 0 {
		return nil, ErrNotSimple
	}

	defer func() {
		if r := recover(); r != nil {
			tris, err = nil, fmt.Errorf("%w: %v", ErrNotSimple, r)
		}
	}()
	index := indexOf(loop.Points)
	got := 0.0
	for _, t := range list.Triangulate() {
		a, b, c := t.A, t.B, t.C
		twice := (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
		if twice <= areaTolerance*want {
			continue
		}
		ia, okA := index[a]
		ib, okB := index[b]
		ic, okC := index[c]
		if !okA || !okB || !okC {
			return nil, fmt.Errorf("%w: triangle vertex not on the loop", ErrNotSimple)
		}
		got += twice / 2
		tris = append(tris, [3]int{ia, ib, ic})
	}
	if math.Abs(got-want) > areaTolerance*want {
		return nil, fmt.Errorf("%w: triangles cover %v of %v", ErrNotSimple, got, want)
	}
	return tris, nil
}

// projection drops the dominant axis of normal, ordering the remaining
// two so that a loop counter-clockwise about normal stays counter-clockwise.
func projection(n v3.Vec) (u, v func(v3.Vec) float64) {
	x := func(p v3.Vec) float64 { return p.X }
	y := func(p v3.Vec) float64 { return p.Y }
	z := func(p v3.Vec) float64 { return p.Z }
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case az >= ax && az >= ay:
		if n.Z < 0 {
			return y, x
		}
		return x, y
	case ax >= ay:
		if n.X < 0 {
			return z, y
		}
		return y, z
	default:
		if n.Y < 0 {
			return x, z
		}
		return z, x
	}
}

// alloc returns a new element for a slice of pointers whose element type
// the triangulate package does not export.
func alloc[P any](_ []*P) *P { return new(P) }

func indexOf[P any](pts []*P) map[*P]int {
	m := make(map[*P]int, len(pts))
	for i, p := range pts {
		m[p] = i
	}
	return m
}
