package polygon

import (
	"errors"
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec(x, y, z float64) v3.Vec { return v3.Vec{X: x, Y: y, Z: z} }

func square(t *testing.T, size float64) *Polygon {
	t.Helper()
	p, err := New(vec(0, 0, 0), vec(size, 0, 0), vec(size, size, 0), vec(0, size, 0))
	require.NoError(t, err)
	return p
}

func lShape(t *testing.T) *Polygon {
	t.Helper()
	p, err := New(
		vec(0, 0, 0), vec(2, 0, 0), vec(2, 1, 0),
		vec(1, 1, 0), vec(1, 2, 0), vec(0, 2, 0),
	)
	require.NoError(t, err)
	return p
}

func triangleArea(t *testing.T, p *Polygon) float64 {
	t.Helper()
	tris, err := p.Triangles()
	require.NoError(t, err)
	sum := 0.0
	for _, tri := range tris {
		sum += tri.Area()
	}
	return sum
}

func TestNewRejectsShortLoops(t *testing.T) {
	_, err := New(vec(0, 0, 0), vec(1, 0, 0))
	assert.True(t, errors.Is(err, ErrTooFewVertices))
}

func TestPlaneAndArea(t *testing.T) {
	p := square(t, 2)
	assert.InDelta(t, 4, p.Area(), 1e-12)
	assert.Equal(t, vec(0, 0, 1), p.Normal())
	assert.Equal(t, vec(1, 1, 0), p.Center())

	pl, ok := p.Plane()
	require.True(t, ok)
	assert.InDelta(t, 0, pl.Distance(vec(5, -3, 0)), 1e-12)

	_, ok = (&Polygon{vertices: []v3.Vec{vec(0, 0, 0), vec(1, 1, 1), vec(2, 2, 2)}}).Plane()
	assert.False(t, ok)
}

func TestTessellateConcave(t *testing.T) {
	p := lShape(t)
	tris, err := p.Tessellate()
	require.NoError(t, err)
	assert.Len(t, tris, 4)
	assert.InDelta(t, 3, triangleArea(t, p), 1e-12)

	again, err := p.Tessellate()
	require.NoError(t, err)
	assert.Same(t, &tris[0], &again[0], "tessellation is cached")

	c := p.Centroid()
	assert.InDelta(t, 2.5/3, c.X, 1e-12)
	assert.InDelta(t, 2.5/3, c.Y, 1e-12)
}

func TestTessellationIndependentOfStart(t *testing.T) {
	var ring []v3.Vec
	for i := 0; i < 7; i++ {
		a := 2 * math.Pi * float64(i) / 7
		ring = append(ring, vec(3*math.Cos(a), 2*math.Sin(a), 1))
	}
	first, err := New(ring...)
	require.NoError(t, err)
	want := triangleArea(t, first)
	assert.InDelta(t, first.Area(), want, 1e-9)

	for start := 1; start < len(ring); start++ {
		rotated := append(append([]v3.Vec(nil), ring[start:]...), ring[:start]...)
		p, err := New(rotated...)
		require.NoError(t, err)
		assert.InDelta(t, want, triangleArea(t, p), 1e-9, "start %d", start)
	}
}

func TestContainsPoint(t *testing.T) {
	p := lShape(t)
	tests := []struct {
		pt   v3.Vec
		want bool
	}{
		{vec(0.5, 0.5, 0), true},
		{vec(0.5, 1.5, 0), true},
		{vec(1.5, 1.5, 0), false},
		{vec(2, 0.5, 0), true},
		{vec(0.5, 0.5, 0.1), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.ContainsPoint(tt.pt, 1e-6), "point %v", tt.pt)
	}
	assert.True(t, p.containsProjection(vec(0.5, 0.5, 7), 1e-6))
}

func TestDensity(t *testing.T) {
	p := square(t, 2)
	p.IncreaseDensity(0.5)
	assert.Equal(t, 16, p.Len())
	assert.InDelta(t, 4, p.Area(), 1e-12)
	assert.InDelta(t, 4, triangleArea(t, p), 1e-9)

	p.MinimizeDensity(1e-9)
	assert.Equal(t, 4, p.Len())
	assert.InDelta(t, 4, p.Area(), 1e-12)

	dup, err := New(vec(0, 0, 0), vec(0, 0, 0), vec(1, 0, 0), vec(1, 1, 0), vec(0, 0, 0))
	require.NoError(t, err)
	dup.MinimizeDensity(1e-9)
	assert.Equal(t, 3, dup.Len())
}

func TestCopyAndTranslate(t *testing.T) {
	p := square(t, 1)
	_, err := p.Tessellate()
	require.NoError(t, err)

	c := p.Copy()
	c.Translate(vec(0, 0, 5))
	assert.Equal(t, vec(0, 0, 0), p.Vertex(0))
	assert.Equal(t, vec(0, 0, 5), c.Vertex(0))
	assert.True(t, c.ContainsPoint(vec(0.5, 0.5, 5), 1e-6))
	assert.False(t, p.ContainsPoint(vec(0.5, 0.5, 5), 1e-6))

	vs := p.Vertices()
	vs[0] = vec(9, 9, 9)
	assert.Equal(t, vec(0, 0, 0), p.Vertex(0))
}
