package surface

import (
	"errors"
	"testing"

	"github.com/chazu/kerf/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec(x, y, z float64) v3.Vec { return v3.Vec{X: x, Y: y, Z: z} }

func TestPlaneSurface(t *testing.T) {
	s := NewPlaneSurface(geom.NewPlane(vec(1, 0, 0), vec(1, 0, 0)))

	assert.Equal(t, Outside, s.Side(vec(2, 0, 0), geom.Epsilon))
	assert.Equal(t, Inside, s.Side(vec(0, 0, 0), geom.Epsilon))
	assert.Equal(t, Neither, s.Side(vec(1, 9, 9), geom.Epsilon))

	p, ok := s.NearestPoint(vec(4, 2, 3))
	require.True(t, ok)
	assert.Equal(t, vec(1, 2, 3), p.Location)
	assert.Equal(t, s.Handle(), p.Handle)
	assert.InDelta(t, 0, p.Normal.Dot(p.Tangent), 1e-12)
	assert.InDelta(t, 0, p.Normal.Dot(p.Bitangent), 1e-12)

	q, ok := s.FindIntersection(geom.Segment(vec(0, 1, 0), vec(2, 1, 0)))
	require.True(t, ok)
	assert.InDelta(t, 0, q.Location.Sub(vec(1, 1, 0)).Length(), 1e-12)

	_, ok = s.FindIntersection(geom.Segment(vec(2, 1, 0), vec(3, 1, 0)))
	assert.False(t, ok)

	path, err := s.FindDirectPath(p, q, 1e-3)
	require.NoError(t, err)
	assert.Equal(t, []v3.Vec{p.Location, q.Location}, path)
}

func TestPlaneSurfaceTolerance(t *testing.T) {
	s := NewPlaneSurface(geom.NewPlane(vec(1, 0, 0), vec(1, 0, 0)))
	near := geom.Segment(vec(1.05, 0, 0), vec(2, 0, 0))

	assert.Equal(t, geom.Epsilon, s.Tolerance)
	_, ok := s.FindIntersection(near)
	assert.False(t, ok)

	s.Tolerance = 0.1
	q, ok := s.FindIntersection(near)
	require.True(t, ok)
	assert.Less(t, q.Location.X, 1.1)

	s.Tolerance = 0
	_, ok = s.FindIntersection(near)
	assert.False(t, ok, "zero tolerance falls back to geom.Epsilon")
}

func TestForeignPointRejected(t *testing.T) {
	a := NewPlaneSurface(geom.NewPlane(vec(0, 0, 0), vec(0, 0, 1)))
	b := NewSphereSurface(vec(0, 0, 0), 1)
	require.NotEqual(t, a.Handle(), b.Handle())

	pa, _ := a.NearestPoint(vec(1, 0, 5))
	pb, _ := b.NearestPoint(vec(0, 3, 0))

	_, err := a.FindDirectPath(pa, pb, 0.1)
	assert.True(t, errors.Is(err, ErrForeignPoint))
	_, err = b.FindDirectPath(pb, pa, 0.1)
	assert.True(t, errors.Is(err, ErrForeignPoint))
}

func TestSphereSurfaceSide(t *testing.T) {
	s := NewSphereSurface(vec(0, 0, 0), 2)
	tests := []struct {
		p    v3.Vec
		want Side
	}{
		{vec(0, 0, 0), Inside},
		{vec(1.9, 0, 0), Inside},
		{vec(2, 0, 0), Neither},
		{vec(0, 2+geom.Epsilon/2, 0), Neither},
		{vec(0, 0, -2.1), Outside},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Side(tt.p, geom.Epsilon), "point %v", tt.p)
	}
}

func TestSphereNearestPoint(t *testing.T) {
	s := NewSphereSurface(vec(1, 0, 0), 2)
	tests := []struct {
		name string
		from v3.Vec
		want v3.Vec
	}{
		{"outside", vec(6, 0, 0), vec(3, 0, 0)},
		{"inside", vec(1, 0.5, 0), vec(1, 2, 0)},
		{"on surface", vec(1, 0, -2), vec(1, 0, -2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := s.NearestPoint(tt.from)
			require.True(t, ok)
			assert.InDelta(t, 0, p.Location.Sub(tt.want).Length(), 1e-9)
			assert.InDelta(t, 1, p.Normal.Length(), 1e-9)
		})
	}

	_, ok := s.NearestPoint(vec(1, 0, 0))
	assert.False(t, ok)
}

func TestSphereFindIntersection(t *testing.T) {
	s := NewSphereSurface(vec(0, 0, 0), 1)

	p, ok := s.FindIntersection(geom.Segment(vec(0, 0, 0), vec(0, 3, 0)))
	require.True(t, ok)
	assert.InDelta(t, 0, p.Location.Sub(vec(0, 1, 0)).Length(), 1e-12)

	p, ok = s.FindIntersection(geom.Segment(vec(-3, 0, 0), vec(3, 0, 0)))
	require.True(t, ok)
	assert.InDelta(t, 0, p.Location.Sub(vec(-1, 0, 0)).Length(), 1e-12)

	_, ok = s.FindIntersection(geom.Segment(vec(2, 0, 0), vec(3, 0, 0)))
	assert.False(t, ok)
}

func TestDirectPathDeviationBound(t *testing.T) {
	s := NewSphereSurface(vec(0, 0, 0), 1)
	a, _ := s.NearestPoint(vec(5, 0, 0))
	b, _ := s.NearestPoint(vec(0, 5, 0))

	for _, maxDev := range []float64{0.3, 0.05, 1e-4} {
		path, err := s.FindDirectPath(a, b, maxDev)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(path), 2)
		assert.Equal(t, a.Location, path[0])
		assert.Equal(t, b.Location, path[len(path)-1])

		for i := 0; i+1 < len(path); i++ {
			mid := geom.Lerp(path[i], path[i+1], 0.5)
			proj, ok := s.NearestPoint(mid)
			require.True(t, ok)
			assert.LessOrEqual(t, proj.Location.Sub(mid).Length(), maxDev)
		}
		for _, v := range path {
			assert.InDelta(t, 1, v.Length(), 1e-9)
		}
	}
}

func TestDirectPathTooDeep(t *testing.T) {
	s := NewSphereSurface(vec(0, 0, 0), 1)
	s.MaxDepth = 2
	a, _ := s.NearestPoint(vec(5, 0, 0))
	b, _ := s.NearestPoint(vec(0, 5, 0))

	_, err := s.FindDirectPath(a, b, 1e-9)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPathTooDeep))

	var pe PathError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Depth)
}

func TestSDFSurface(t *testing.T) {
	ball, err := sdf.Sphere3D(1)
	require.NoError(t, err)
	s := NewSDFSurface(ball)

	assert.Equal(t, Inside, s.Side(vec(0, 0, 0), geom.Epsilon))
	assert.Equal(t, Outside, s.Side(vec(0, 2, 0), geom.Epsilon))
	assert.Equal(t, Neither, s.Side(vec(0, 0, 1), geom.Epsilon))

	p, ok := s.NearestPoint(vec(2, 0, 0))
	require.True(t, ok)
	assert.InDelta(t, 0, p.Location.Sub(vec(1, 0, 0)).Length(), 1e-6)
	assert.InDelta(t, 1, p.Normal.X, 1e-4)

	q, ok := s.FindIntersection(geom.Segment(vec(0, 0, 0), vec(0, 0, 3)))
	require.True(t, ok)
	assert.InDelta(t, 0, q.Location.Sub(vec(0, 0, 1)).Length(), 1e-6)

	_, ok = s.FindIntersection(geom.Segment(vec(2, 0, 0), vec(3, 0, 0)))
	assert.False(t, ok)

	path, err := s.FindDirectPath(p, q, 1e-3)
	require.NoError(t, err)
	assert.Greater(t, len(path), 2)
}
