package geom

import (
	"math"
	"math/rand"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec(x, y, z float64) v3.Vec { return v3.Vec{X: x, Y: y, Z: z} }

func totalArea(ts []Triangle) float64 {
	sum := 0.0
	for _, t := range ts {
		sum += t.Area()
	}
	return sum
}

func TestPlaneSide(t *testing.T) {
	pl := NewPlane(vec(1, 0, 0), vec(2, 0, 0))
	assert.InDelta(t, 1.0, pl.Normal.Length(), 1e-12)
	assert.InDelta(t, 1.0, pl.CenterDotNormal, 1e-12)

	tests := []struct {
		p    v3.Vec
		want Side
	}{
		{vec(2, 0, 0), Front},
		{vec(0, 5, 5), Back},
		{vec(1, 3, -2), Neither},
		{vec(1+Epsilon/2, 0, 0), Neither},
		{vec(1-Epsilon/2, 0, 0), Neither},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pl.Side(tt.p, Epsilon), "point %v", tt.p)
	}
}

func TestPlaneProjections(t *testing.T) {
	pl := NewPlane(vec(0, 0, 2), vec(0, 0, 1))
	assert.Equal(t, vec(3, 4, 2), pl.NearestPoint(vec(3, 4, 7)))
	assert.Equal(t, vec(3, 4, -3), pl.Reflect(vec(3, 4, 7)))
	assert.Equal(t, vec(0, 0, 2), pl.Center())

	f := pl.Flip()
	assert.InDelta(t, -pl.Distance(vec(1, 1, 5)), f.Distance(vec(1, 1, 5)), 1e-12)

	p, ok := pl.IntersectSegment(Segment(vec(0, 0, 0), vec(0, 0, 4)), Epsilon)
	require.True(t, ok)
	assert.InDelta(t, 2.0, p.Z, 1e-12)

	_, ok = pl.IntersectSegment(Segment(vec(0, 0, 3), vec(0, 0, 4)), Epsilon)
	assert.False(t, ok)

	l, ok := LineThrough(Segment(vec(1, 1, 0), vec(1, 1, 1)))
	require.True(t, ok)
	p, ok = pl.IntersectLine(l, Epsilon)
	require.True(t, ok)
	assert.InDelta(t, 0, p.Sub(vec(1, 1, 2)).Length(), 1e-12)

	_, ok = pl.IntersectLine(Line{Center: vec(0, 0, 0), Direction: vec(1, 0, 0)}, Epsilon)
	assert.False(t, ok)
}

func TestSplitTriangleRightTriangle(t *testing.T) {
	tri := NewTriangle(vec(0, 0, 0), vec(2, 0, 0), vec(0, 2, 0))
	pl := Plane{Normal: vec(1, 0, 0), CenterDotNormal: 1}

	front, back, ok := pl.SplitTriangle(tri, Epsilon)
	require.True(t, ok)

	// x=1 cuts the corner triangle (1,0),(2,0),(1,1) off the front.
	assert.InDelta(t, 0.5, totalArea(front), 1e-9)
	assert.InDelta(t, 1.5, totalArea(back), 1e-9)
	assert.InDelta(t, tri.Area(), totalArea(front)+totalArea(back), 1e-9)

	for _, f := range front {
		for _, v := range f {
			assert.NotEqual(t, Back, pl.Side(v, Epsilon))
		}
	}
	for _, b := range back {
		for _, v := range b {
			assert.NotEqual(t, Front, pl.Side(v, Epsilon))
		}
	}
}

func TestSplitTriangleConservesArea(t *testing.T) {
	base := [3]v3.Vec{vec(-1, -0.5, 0.2), vec(3, 0.1, -0.4), vec(0.5, 2.5, 1)}
	planes := []Plane{
		NewPlane(vec(0.3, 0, 0), vec(1, 0, 0)),
		NewPlane(vec(0, 0.7, 0), vec(0.2, 1, -0.3)),
		NewPlane(vec(1, 1, 0.3), vec(-1, 1, 2)),
	}
	perms := [][3]int{{0, 1, 2}, {1, 2, 0}, {2, 0, 1}, {0, 2, 1}}

	for _, pl := range planes {
		for _, perm := range perms {
			tri := NewTriangle(base[perm[0]], base[perm[1]], base[perm[2]])
			front, back, ok := pl.SplitTriangle(tri, Epsilon)
			require.True(t, ok, "plane %v perm %v", pl, perm)
			got := totalArea(front) + totalArea(back)
			assert.InDelta(t, 0, (got-tri.Area())/tri.Area(), 1e-9)
			assert.NotEmpty(t, front)
			assert.NotEmpty(t, back)
		}
	}
}

func TestSplitTriangleKeepsSmallPieces(t *testing.T) {
	// Every piece here is far below Epsilon in area.
	const s = 1e-5
	tri := NewTriangle(vec(0, 0, 0), vec(2*s, 0, 0), vec(0, 2*s, 0))
	pl := NewPlane(vec(s, 0, 0), vec(1, 0, 0))

	front, back, ok := pl.SplitTriangle(tri, Epsilon*1e-3)
	require.True(t, ok)
	require.NotEmpty(t, front)
	require.NotEmpty(t, back)
	assert.InDelta(t, 0, (totalArea(front)+totalArea(back)-tri.Area())/tri.Area(), 1e-9)
	assert.InDelta(t, 0.25, totalArea(front)/tri.Area(), 1e-9)
}

func TestSplitTriangleConservesAreaRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pt := func(scale float64) v3.Vec {
		return vec(rng.Float64()*scale, rng.Float64()*scale, rng.Float64()*scale)
	}
	split := 0
	for i := 0; i < 500; i++ {
		scale := math.Pow(10, float64(rng.Intn(4)-2))
		tri := NewTriangle(pt(scale), pt(scale), pt(scale))
		if tri.Area() < 1e-3*scale*scale {
			continue
		}
		pl := NewPlane(pt(scale), pt(1).Sub(vec(0.5, 0.5, 0.5)))
		front, back, ok := pl.SplitTriangle(tri, Epsilon*scale*1e-3)
		if !ok {
			continue
		}
		split++
		got := totalArea(front) + totalArea(back)
		assert.InDelta(t, 0, (got-tri.Area())/tri.Area(), 1e-9, "triangle %v plane %v", tri, pl)
	}
	assert.Greater(t, split, 50)
}

func TestSplitTriangleThroughVertex(t *testing.T) {
	// The plane passes through (1,0,0) and cuts the opposite edge.
	tri := NewTriangle(vec(1, 0, 0), vec(2, 2, 0), vec(0, 2, 0))
	pl := Plane{Normal: vec(1, 0, 0), CenterDotNormal: 1}

	front, back, ok := pl.SplitTriangle(tri, Epsilon)
	require.True(t, ok)
	require.Len(t, front, 1)
	require.Len(t, back, 1)
	assert.InDelta(t, 1.0, front[0].Area(), 1e-9)
	assert.InDelta(t, 1.0, back[0].Area(), 1e-9)
}

func TestSplitTriangleOneSided(t *testing.T) {
	pl := Plane{Normal: vec(0, 0, 1), CenterDotNormal: 0}
	tests := []struct {
		name string
		tri  Triangle
	}{
		{"front", NewTriangle(vec(0, 0, 1), vec(1, 0, 1), vec(0, 1, 2))},
		{"back", NewTriangle(vec(0, 0, -1), vec(1, 0, -1), vec(0, 1, -2))},
		{"touching", NewTriangle(vec(0, 0, 0), vec(1, 0, 1), vec(0, 1, 1))},
		{"edge on plane", NewTriangle(vec(0, 0, 0), vec(1, 0, 0), vec(0, 1, -1))},
		{"coplanar", NewTriangle(vec(0, 0, 0), vec(1, 0, 0), vec(0, 1, 0))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			front, back, ok := pl.SplitTriangle(tt.tri, Epsilon)
			assert.False(t, ok)
			assert.Nil(t, front)
			assert.Nil(t, back)
		})
	}
}

func TestTriangleContainsAndIntersect(t *testing.T) {
	tri := NewTriangle(vec(0, 0, 0), vec(1, 0, 0), vec(0, 1, 0))
	assert.True(t, tri.ContainsPoint(vec(0.25, 0.25, 0), Epsilon))
	assert.True(t, tri.ContainsPoint(vec(0.5, 0, 0), Epsilon))
	assert.False(t, tri.ContainsPoint(vec(0.75, 0.75, 0), Epsilon))
	assert.False(t, tri.ContainsPoint(vec(0.25, 0.25, 0.1), Epsilon))

	p, u, ok := tri.IntersectSegment(Segment(vec(0.2, 0.2, -1), vec(0.2, 0.2, 3)), Epsilon)
	require.True(t, ok)
	assert.InDelta(t, 0.25, u, 1e-12)
	assert.InDelta(t, 0, p.Sub(vec(0.2, 0.2, 0)).Length(), 1e-12)

	_, _, ok = tri.IntersectSegment(Segment(vec(2, 2, -1), vec(2, 2, 1)), Epsilon)
	assert.False(t, ok)

	_, ok = NewTriangle(vec(0, 0, 0), vec(1, 1, 1), vec(2, 2, 2)).Plane()
	assert.False(t, ok)
	assert.True(t, NewTriangle(vec(0, 0, 0), vec(1, 1, 1), vec(2, 2, 2)).IsDegenerate(Epsilon))
}

func TestTriangleIsCollinear(t *testing.T) {
	assert.True(t, NewTriangle(vec(0, 0, 0), vec(1, 1, 1), vec(2, 2, 2)).IsCollinear())
	assert.True(t, NewTriangle(vec(0, 0, 0), vec(1, 0, 0), vec(1, 0, 0)).IsCollinear())
	assert.False(t, NewTriangle(vec(0, 0, 0), vec(1e-5, 0, 0), vec(0, 1e-5, 0)).IsCollinear())
}

func TestIndexTriangle(t *testing.T) {
	verts := []v3.Vec{vec(0, 0, 0), vec(1, 0, 0), vec(0, 1, 0)}
	it := IndexTriangle{0, 1, 2}

	tri, err := it.Resolve(verts)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, tri.Area(), 1e-12)

	_, err = IndexTriangle{0, 1, 3}.Resolve(verts)
	assert.Error(t, err)

	assert.True(t, it.CoincidentWith(IndexTriangle{2, 0, 1}))
	assert.False(t, it.CoincidentWith(IndexTriangle{2, 0, 3}))
}

func TestTriangleSDFRoundTrip(t *testing.T) {
	tri := NewTriangle(vec(0, 0, 0), vec(1, 0, 0), vec(0, 1, 0))
	assert.Equal(t, tri, FromSDF(tri.SDF()))
}

func TestNormalizeZero(t *testing.T) {
	_, ok := Normalize(v3.Vec{})
	assert.False(t, ok)
	n, ok := Normalize(vec(0, 3, 4))
	require.True(t, ok)
	assert.InDelta(t, 1, n.Length(), 1e-12)

	perp := AnyPerpendicular(vec(1, 0, 0))
	assert.InDelta(t, 0, perp.Dot(vec(1, 0, 0)), 1e-12)
	assert.InDelta(t, 1, perp.Length(), 1e-12)
	assert.False(t, math.IsNaN(AnyPerpendicular(vec(0, 0, 1)).X))
}
