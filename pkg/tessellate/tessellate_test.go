package tessellate_test

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/kerf/pkg/tessellate"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var up = v3.Vec{Z: 1}

func area(points []v3.Vec, tris [][3]int) float64 {
	sum := 0.0
	for _, t := range tris {
		a, b, c := points[t[0]], points[t[1]], points[t[2]]
		sum += b.Sub(a).Cross(c.Sub(a)).Length() / 2
	}
	return sum
}

func TestFan(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want int
	}{
		{"empty", 0, 0},
		{"segment", 2, 0},
		{"triangle", 3, 1},
		{"pentagon", 5, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(tessellate.Fan(tt.n)); got != tt.want {
				t.Errorf("len(Fan(%d)) = %d, want %d", tt.n, got, tt.want)
			}
		})
	}
}

func TestFanFromAnchorsEveryTriangle(t *testing.T) {
	for _, tri := range tessellate.FanFrom(5, 3) {
		if tri[0] != 3 {
			t.Errorf("triangle %v not anchored at 3", tri)
		}
		for _, i := range tri {
			if i < 0 || i >= 5 {
				t.Errorf("index %d out of range", i)
			}
		}
	}
}

func TestFanAreaIndependentOfStart(t *testing.T) {
	hexagon := make([]v3.Vec, 6)
	for i := range hexagon {
		a := float64(i) * math.Pi / 3
		hexagon[i] = v3.Vec{X: math.Cos(a), Y: math.Sin(a)}
	}
	want := area(hexagon, tessellate.Fan(6))
	for start := 1; start < 6; start++ {
		got := area(hexagon, tessellate.FanFrom(6, start))
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("FanFrom(6, %d) area = %v, want %v", start, got, want)
		}
	}
}

func TestTriangulateConcave(t *testing.T) {
	// L-shape, area 3.
	l := []v3.Vec{
		{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1},
		{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2},
	}
	tris, err := tessellate.Triangulate(l, up)
	if err != nil {
		t.Fatalf("Triangulate: %v", err)
	}
	if len(tris) != 4 {
		t.Errorf("got %d triangles, want 4", len(tris))
	}
	if got := area(l, tris); math.Abs(got-3) > 1e-9 {
		t.Errorf("area = %v, want 3", got)
	}
	for _, tri := range tris {
		a, b, c := l[tri[0]], l[tri[1]], l[tri[2]]
		if b.Sub(a).Cross(c.Sub(a)).Dot(up) <= 0 {
			t.Errorf("triangle %v wound against the loop", tri)
		}
	}
}

func TestTriangulateCollinearVertex(t *testing.T) {
	sq := []v3.Vec{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0},
		{X: 2, Y: 2}, {X: 0, Y: 2},
	}
	tris, err := tessellate.Triangulate(sq, up)
	if err != nil {
		t.Fatalf("Triangulate: %v", err)
	}
	if got := area(sq, tris); math.Abs(got-4) > 1e-9 {
		t.Errorf("area = %v, want 4", got)
	}
}

func TestTriangulateErrors(t *testing.T) {
	_, err := tessellate.Triangulate([]v3.Vec{{}, {X: 1}}, up)
	if !errors.Is(err, tessellate.ErrTooFewVertices) {
		t.Errorf("err = %v, want ErrTooFewVertices", err)
	}

	cw := []v3.Vec{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}}
	_, err = tessellate.Triangulate(cw, up)
	if !errors.Is(err, tessellate.ErrNotSimple) {
		t.Errorf("err = %v, want ErrNotSimple", err)
	}
}

func TestTriangulateFollowsNormal(t *testing.T) {
	// The L-shape in the x=0 plane, counter-clockwise about -X.
	l := []v3.Vec{
		{Z: 0, Y: 0}, {Z: 2, Y: 0}, {Z: 2, Y: 1},
		{Z: 1, Y: 1}, {Z: 1, Y: 2}, {Z: 0, Y: 2},
	}
	down := v3.Vec{X: -1}
	tris, err := tessellate.Triangulate(l, down)
	if err != nil {
		t.Fatalf("Triangulate: %v", err)
	}
	if got := area(l, tris); math.Abs(got-3) > 1e-9 {
		t.Errorf("area = %v, want 3", got)
	}
	for _, tri := range tris {
		a, b, c := l[tri[0]], l[tri[1]], l[tri[2]]
		if b.Sub(a).Cross(c.Sub(a)).Dot(down) <= 0 {
			t.Errorf("triangle %v wound against the loop", tri)
		}
	}

	if _, err := tessellate.Triangulate(l, v3.Vec{X: 1}); !errors.Is(err, tessellate.ErrNotSimple) {
		t.Errorf("err = %v, want ErrNotSimple for the opposite normal", err)
	}
}

func TestTriangulateRejectsBowtie(t *testing.T) {
	// Net signed area is positive but the loop crosses itself.
	bowtie := []v3.Vec{
		{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 3, Y: 0}, {X: 3, Y: 3},
	}
	if _, err := tessellate.Triangulate(bowtie, up); !errors.Is(err, tessellate.ErrNotSimple) {
		t.Errorf("err = %v, want ErrNotSimple", err)
	}
}
