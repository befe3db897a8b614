package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/kerf/pkg/bsp"
	"github.com/chazu/kerf/pkg/bvtree"
	"github.com/chazu/kerf/pkg/geom"
	"github.com/chazu/kerf/pkg/kernel"
	"github.com/chazu/kerf/pkg/polygon"
	"github.com/chazu/kerf/pkg/surface"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

type sexpVec struct{ v v3.Vec }

func (s *sexpVec) SexpString(*zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", s.v.X, s.v.Y, s.v.Z)
}
func (s *sexpVec) Type() *zygo.RegisteredType { return nil }

type sexpSegment struct{ seg geom.LineSegment }

func (s *sexpSegment) SexpString(*zygo.PrintState) string {
	return fmt.Sprintf("(segment %v %v)", s.seg.A, s.seg.B)
}
func (s *sexpSegment) Type() *zygo.RegisteredType { return nil }

type sexpTriangle struct{ tri geom.Triangle }

func (s *sexpTriangle) SexpString(*zygo.PrintState) string {
	return "(triangle " + s.tri.String() + ")"
}
func (s *sexpTriangle) Type() *zygo.RegisteredType { return nil }

type sexpBox struct{ box geom.Box }

func (s *sexpBox) SexpString(*zygo.PrintState) string {
	return fmt.Sprintf("(box %v %v)", s.box.Min, s.box.Max)
}
func (s *sexpBox) Type() *zygo.RegisteredType { return nil }

type sexpPlane struct{ plane geom.Plane }

func (s *sexpPlane) SexpString(*zygo.PrintState) string {
	return fmt.Sprintf("(plane %v %g)", s.plane.Normal, s.plane.CenterDotNormal)
}
func (s *sexpPlane) Type() *zygo.RegisteredType { return nil }

type sexpPolygon struct{ poly *polygon.Polygon }

func (s *sexpPolygon) SexpString(*zygo.PrintState) string {
	return fmt.Sprintf("(polygon %d vertices)", s.poly.Len())
}
func (s *sexpPolygon) Type() *zygo.RegisteredType { return nil }

// sexpSurface wraps any dividing surface. kind names the constructor for
// printing.
type sexpSurface struct {
	surf surface.Surface
	kind string
}

func (s *sexpSurface) SexpString(*zygo.PrintState) string {
	return fmt.Sprintf("(%s %s)", s.kind, s.surf.Handle().String()[:8])
}
func (s *sexpSurface) Type() *zygo.RegisteredType { return nil }

type sexpSolid struct {
	solid kernel.Solid
	label string
}

func (s *sexpSolid) SexpString(*zygo.PrintState) string {
	return "(" + s.label + ")"
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

type sexpTree struct{ tree *bvtree.Tree }

func (s *sexpTree) SexpString(*zygo.PrintState) string {
	st := s.tree.Stats()
	return fmt.Sprintf("(tree depth=%d triangles=%d)", st.Depth, st.Triangles)
}
func (s *sexpTree) Type() *zygo.RegisteredType { return nil }

type sexpMesh struct{ mesh *kernel.Mesh }

func (s *sexpMesh) SexpString(*zygo.PrintState) string {
	return fmt.Sprintf("(mesh %d vertices %d triangles)", s.mesh.VertexCount(), s.mesh.TriangleCount())
}
func (s *sexpMesh) Type() *zygo.RegisteredType { return nil }

type sexpBSP struct{ tree *bsp.Tree }

func (s *sexpBSP) SexpString(*zygo.PrintState) string {
	return fmt.Sprintf("(bsp %d nodes)", s.tree.Stats().Nodes)
}
func (s *sexpBSP) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs is an argument list split into keyword and positional parts.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs splits args. A keyword with nothing after it, or followed by
// another keyword, is a flag whose value is SexpNull.
func parseArgs(args []zygo.Sexp) kwArgs {
	pa := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			pa.positional = append(pa.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			if _, next := isKW(args[i+1]); !next {
				pa.kw[name] = args[i+1]
				i++
				continue
			}
		}
		pa.kw[name] = zygo.SexpNull
	}
	return pa
}

// has reports whether keyword name was given.
func (pa kwArgs) has(name string) bool {
	_, ok := pa.kw[name]
	return ok
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func describe(s zygo.Sexp) string {
	return fmt.Sprintf("%T (%s)", s, s.SexpString(nil))
}

// toFloat64 extracts a float64 from a SexpInt or SexpFloat.
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", describe(s))
}

// toInt accepts integers and integral floats.
func toInt(s zygo.Sexp) (int, error) {
	f, err := toFloat64(s)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("expected integer, got %g", f)
	}
	return int(f), nil
}

func toVec(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec); ok {
		return v.v, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %s", describe(s))
}

func toSegment(s zygo.Sexp) (geom.LineSegment, error) {
	if v, ok := s.(*sexpSegment); ok {
		return v.seg, nil
	}
	return geom.LineSegment{}, fmt.Errorf("expected segment, got %s", describe(s))
}

func toTriangle(s zygo.Sexp) (geom.Triangle, error) {
	if v, ok := s.(*sexpTriangle); ok {
		return v.tri, nil
	}
	return geom.Triangle{}, fmt.Errorf("expected triangle, got %s", describe(s))
}

func toBox(s zygo.Sexp) (geom.Box, error) {
	if v, ok := s.(*sexpBox); ok {
		return v.box, nil
	}
	return geom.Box{}, fmt.Errorf("expected box, got %s", describe(s))
}

func toPlane(s zygo.Sexp) (geom.Plane, error) {
	if v, ok := s.(*sexpPlane); ok {
		return v.plane, nil
	}
	return geom.Plane{}, fmt.Errorf("expected plane, got %s", describe(s))
}

func toPolygon(s zygo.Sexp) (*polygon.Polygon, error) {
	if v, ok := s.(*sexpPolygon); ok {
		return v.poly, nil
	}
	return nil, fmt.Errorf("expected polygon, got %s", describe(s))
}

func toSurface(s zygo.Sexp) (surface.Surface, error) {
	if v, ok := s.(*sexpSurface); ok {
		return v.surf, nil
	}
	return nil, fmt.Errorf("expected surface, got %s", describe(s))
}

func toSolid(s zygo.Sexp) (*sexpSolid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v, nil
	}
	return nil, fmt.Errorf("expected solid, got %s", describe(s))
}

func toTree(s zygo.Sexp) (*bvtree.Tree, error) {
	if v, ok := s.(*sexpTree); ok {
		return v.tree, nil
	}
	return nil, fmt.Errorf("expected tree, got %s", describe(s))
}

// sexpListToSlice converts a list or array to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toVecs flattens vec3 values and lists of them.
func toVecs(args []zygo.Sexp) ([]v3.Vec, error) {
	var out []v3.Vec
	for _, a := range args {
		if v, ok := a.(*sexpVec); ok {
			out = append(out, v.v)
			continue
		}
		items, err := sexpListToSlice(a)
		if err != nil {
			return nil, fmt.Errorf("expected vec3 or list of vec3, got %s", describe(a))
		}
		vs, err := toVecs(items)
		if err != nil {
			return nil, err
		}
		out = append(out, vs...)
	}
	return out, nil
}

// toTriangles flattens triangles, polygons, meshes and lists of them into
// one triangle slice.
func toTriangles(args []zygo.Sexp) ([]geom.Triangle, error) {
	var out []geom.Triangle
	for _, a := range args {
		switch v := a.(type) {
		case *sexpTriangle:
			out = append(out, v.tri)
		case *sexpPolygon:
			tris, err := v.poly.Triangles()
			if err != nil {
				return nil, err
			}
			out = append(out, tris...)
		case *sexpMesh:
			tris, err := v.mesh.Resolve()
			if err != nil {
				return nil, err
			}
			out = append(out, tris...)
		default:
			items, err := sexpListToSlice(a)
			if err != nil {
				return nil, fmt.Errorf("expected triangles, got %s", describe(a))
			}
			tris, err := toTriangles(items)
			if err != nil {
				return nil, err
			}
			out = append(out, tris...)
		}
	}
	return out, nil
}

// trianglesList wraps tris as a zygomys list.
func trianglesList(tris []geom.Triangle) zygo.Sexp {
	items := make([]zygo.Sexp, len(tris))
	for i, t := range tris {
		items[i] = &sexpTriangle{tri: t}
	}
	return zygo.MakeList(items)
}

// polygonsList wraps ps as a zygomys list.
func polygonsList(ps []*polygon.Polygon) zygo.Sexp {
	items := make([]zygo.Sexp, len(ps))
	for i, p := range ps {
		items[i] = &sexpPolygon{poly: p}
	}
	return zygo.MakeList(items)
}
