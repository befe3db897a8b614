package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/kerf/pkg/bsp"
	"github.com/chazu/kerf/pkg/bvtree"
	"github.com/chazu/kerf/pkg/config"
	"github.com/chazu/kerf/pkg/geom"
	"github.com/chazu/kerf/pkg/kernel"
	"github.com/chazu/kerf/pkg/kernel/sdfx"
	"github.com/chazu/kerf/pkg/polygon"
	"github.com/chazu/kerf/pkg/surface"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// session is the state of one evaluation: the builtins close over it.
type session struct {
	cfg    config.Config
	kernel *sdfx.Kernel
	result *Result
	trees  []*bvtree.Tree
}

// builtin is a DSL function body. Errors are prefixed with the builtin's
// name by add.
type builtin func(args []zygo.Sexp) (zygo.Sexp, error)

// add registers fn under name. Hyphenated names are registered in the
// underscored form preprocessSource produces.
func (s *session) add(env *zygo.Zlisp, name string, fn builtin) {
	env.AddFunction(strings.ReplaceAll(name, "-", "_"), func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		out, err := fn(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		return out, nil
	})
}

func arity(args []zygo.Sexp, n int) error {
	if len(args) != n {
		return fmt.Errorf("requires exactly %d arguments, got %d", n, len(args))
	}
	return nil
}

// finish fills in the reports that describe end-of-script state.
func (s *session) finish(last zygo.Sexp) {
	for _, t := range s.trees {
		s.result.Trees = append(s.result.Trees, TreeReport{Bounds: t.Bounds(), Stats: t.Stats()})
	}
	if last != nil && last != zygo.SexpNull {
		s.result.Value = last.SexpString(nil)
	}
}

// register installs every kerf builtin into env.
//
// Source must be run through preprocessSource first so :keyword tokens
// reach the builtins as recognizable strings.
func (s *session) register(env *zygo.Zlisp) {

	// -----------------------------------------------------------------------
	// Value constructors
	// -----------------------------------------------------------------------

	// (vec3 1 2 3)
	s.add(env, "vec3", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity(args, 3); err != nil {
			return nil, err
		}
		var c [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return nil, fmt.Errorf("%c: %w", "xyz"[i], err)
			}
			c[i] = f
		}
		return &sexpVec{v: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// (segment a b)
	s.add(env, "segment", func(args []zygo.Sexp) (zygo.Sexp, error) {
		vs, err := s.points(args, 2)
		if err != nil {
			return nil, err
		}
		return &sexpSegment{seg: geom.Segment(vs[0], vs[1])}, nil
	})

	// (triangle a b c)
	s.add(env, "triangle", func(args []zygo.Sexp) (zygo.Sexp, error) {
		vs, err := s.points(args, 3)
		if err != nil {
			return nil, err
		}
		return &sexpTriangle{tri: geom.NewTriangle(vs[0], vs[1], vs[2])}, nil
	})

	// (box min max)
	s.add(env, "box", func(args []zygo.Sexp) (zygo.Sexp, error) {
		vs, err := s.points(args, 2)
		if err != nil {
			return nil, err
		}
		return &sexpBox{box: geom.NewBox(vs[0], vs[1])}, nil
	})

	// (plane center normal)
	s.add(env, "plane", func(args []zygo.Sexp) (zygo.Sexp, error) {
		pl, err := s.plane(args)
		if err != nil {
			return nil, err
		}
		return &sexpPlane{plane: pl}, nil
	})

	// (polygon a b c ...) or (polygon [a b c ...])
	s.add(env, "polygon", func(args []zygo.Sexp) (zygo.Sexp, error) {
		vs, err := toVecs(args)
		if err != nil {
			return nil, err
		}
		p, err := polygon.New(vs...)
		if err != nil {
			return nil, err
		}
		return &sexpPolygon{poly: p}, nil
	})

	// -----------------------------------------------------------------------
	// Surfaces
	// -----------------------------------------------------------------------

	// (plane-surface pl) or (plane-surface center normal)
	s.add(env, "plane-surface", func(args []zygo.Sexp) (zygo.Sexp, error) {
		var pl geom.Plane
		var err error
		if len(args) == 1 {
			pl, err = toPlane(args[0])
		} else {
			pl, err = s.plane(args)
		}
		if err != nil {
			return nil, err
		}
		ps := surface.NewPlaneSurface(pl)
		ps.Tolerance = s.cfg.Epsilon
		return &sexpSurface{surf: ps, kind: "plane-surface"}, nil
	})

	// (sphere-surface center radius)
	s.add(env, "sphere-surface", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity(args, 2); err != nil {
			return nil, err
		}
		c, err := toVec(args[0])
		if err != nil {
			return nil, fmt.Errorf("center: %w", err)
		}
		r, err := toFloat64(args[1])
		if err != nil {
			return nil, fmt.Errorf("radius: %w", err)
		}
		if r <= 0 {
			return nil, fmt.Errorf("radius must be positive, got %g", r)
		}
		ss := surface.NewSphereSurface(c, r)
		ss.MaxDepth = s.cfg.MaxPathDepth
		return &sexpSurface{surf: ss, kind: "sphere-surface"}, nil
	})

	// (solid-surface solid)
	s.add(env, "solid-surface", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity(args, 1); err != nil {
			return nil, err
		}
		sol, err := toSolid(args[0])
		if err != nil {
			return nil, err
		}
		return &sexpSurface{surf: s.kernel.Surface(sol.solid), kind: "solid-surface"}, nil
	})

	// -----------------------------------------------------------------------
	// Solids
	// -----------------------------------------------------------------------

	// (sdf-sphere 10 :at (vec3 0 0 5))
	s.add(env, "sdf-sphere", func(args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := arity(pa.positional, 1); err != nil {
			return nil, err
		}
		r, err := toFloat64(pa.positional[0])
		if err != nil {
			return nil, fmt.Errorf("radius: %w", err)
		}
		sol, err := s.kernel.Sphere(r)
		if err != nil {
			return nil, err
		}
		return s.placed(sol, fmt.Sprintf("sdf-sphere %g", r), pa)
	})

	// (sdf-box 10 20 30 :at (vec3 0 0 15))
	s.add(env, "sdf-box", func(args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := arity(pa.positional, 3); err != nil {
			return nil, err
		}
		var d [3]float64
		for i, a := range pa.positional {
			f, err := toFloat64(a)
			if err != nil {
				return nil, fmt.Errorf("size %c: %w", "xyz"[i], err)
			}
			d[i] = f
		}
		sol, err := s.kernel.Box(d[0], d[1], d[2])
		if err != nil {
			return nil, err
		}
		return s.placed(sol, fmt.Sprintf("sdf-box %g %g %g", d[0], d[1], d[2]), pa)
	})

	s.addBoolean(env, "union", s.kernel.Union)
	s.addBoolean(env, "difference", s.kernel.Difference)
	s.addBoolean(env, "intersection", s.kernel.Intersection)

	// -----------------------------------------------------------------------
	// Operations
	// -----------------------------------------------------------------------

	// (clip plane triangle) returns (front back).
	s.add(env, "clip", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity(args, 2); err != nil {
			return nil, err
		}
		pl, err := toPlane(args[0])
		if err != nil {
			return nil, err
		}
		tri, err := toTriangle(args[1])
		if err != nil {
			return nil, err
		}
		front, back := s.clip(pl, tri)
		rep := ClipReport{Plane: pl, Triangle: tri, Front: front, Back: back}
		for _, t := range front {
			rep.FrontArea += t.Area()
		}
		for _, t := range back {
			rep.BackArea += t.Area()
		}
		s.result.Clips = append(s.result.Clips, rep)
		return zygo.MakeList([]zygo.Sexp{trianglesList(front), trianglesList(back)}), nil
	})

	// (area x ...) sums the area of triangles, polygons, meshes and lists.
	s.add(env, "area", func(args []zygo.Sexp) (zygo.Sexp, error) {
		a, err := areaOf(args)
		if err != nil {
			return nil, err
		}
		return &zygo.SexpFloat{Val: a}, nil
	})

	// (tree box depth)
	s.add(env, "tree", func(args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 || len(pa.positional) > 2 {
			return nil, fmt.Errorf("requires a box and an optional depth")
		}
		box, err := toBox(pa.positional[0])
		if err != nil {
			return nil, err
		}
		depth := s.cfg.TreeDepth
		if len(pa.positional) == 2 {
			if depth, err = toInt(pa.positional[1]); err != nil {
				return nil, fmt.Errorf("depth: %w", err)
			}
		}
		t, err := bvtree.Build(box, depth)
		if err != nil {
			return nil, err
		}
		t.Epsilon = s.cfg.Epsilon
		s.trees = append(s.trees, t)
		return &sexpTree{tree: t}, nil
	})

	// (insert tree triangles...) places every triangle or none.
	s.add(env, "insert", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("requires a tree and triangles")
		}
		t, err := toTree(args[0])
		if err != nil {
			return nil, err
		}
		tris, err := toTriangles(args[1:])
		if err != nil {
			return nil, err
		}
		if err := t.InsertAll(tris); err != nil {
			return nil, err
		}
		return args[0], nil
	})

	// (query tree segment) or (query tree segment :nearest) returns the hit
	// point or nil.
	s.add(env, "query", func(args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := arity(pa.positional, 2); err != nil {
			return nil, err
		}
		t, err := toTree(pa.positional[0])
		if err != nil {
			return nil, err
		}
		seg, err := toSegment(pa.positional[1])
		if err != nil {
			return nil, err
		}
		rep := QueryReport{Segment: seg, Nearest: pa.has("nearest")}
		var hit bvtree.Hit
		var ok bool
		if rep.Nearest {
			hit, ok = t.FindNearestIntersection(seg)
		} else {
			hit, ok = t.FindIntersection(seg)
		}
		if ok {
			rep.Hit = &hit
		}
		s.result.Queries = append(s.result.Queries, rep)
		if !ok {
			return zygo.SexpNull, nil
		}
		return &sexpVec{v: hit.Point}, nil
	})

	// (split polygon surface :max-deviation 0.01) returns (inside outside).
	s.add(env, "split", func(args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := arity(pa.positional, 2); err != nil {
			return nil, err
		}
		p, err := toPolygon(pa.positional[0])
		if err != nil {
			return nil, err
		}
		surf, err := toSurface(pa.positional[1])
		if err != nil {
			return nil, err
		}
		maxDev := s.cfg.MaxDeviation
		if v, ok := pa.kw["max-deviation"]; ok {
			if maxDev, err = toFloat64(v); err != nil {
				return nil, fmt.Errorf("max-deviation: %w", err)
			}
		}
		inside, outside, err := p.SplitWithTolerance(surf, maxDev, s.cfg.Epsilon)
		if err != nil {
			return nil, err
		}
		rep := SplitReport{}
		for _, q := range inside {
			rep.Inside = append(rep.Inside, q.Vertices())
			rep.InsideArea += q.Area()
		}
		for _, q := range outside {
			rep.Outside = append(rep.Outside, q.Vertices())
			rep.OutsideArea += q.Area()
		}
		s.result.Splits = append(s.result.Splits, rep)
		return zygo.MakeList([]zygo.Sexp{polygonsList(inside), polygonsList(outside)}), nil
	})

	// (mesh solid :cells 32)
	s.add(env, "mesh", func(args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := arity(pa.positional, 1); err != nil {
			return nil, err
		}
		sol, err := toSolid(pa.positional[0])
		if err != nil {
			return nil, err
		}
		cells := s.cfg.MeshCells
		if v, ok := pa.kw["cells"]; ok {
			if cells, err = toInt(v); err != nil {
				return nil, fmt.Errorf("cells: %w", err)
			}
		}
		m, err := s.kernel.ToMesh(sol.solid, cells)
		if err != nil {
			return nil, err
		}
		m.PartName = sol.label
		s.reportMesh(m, sol.label)
		return &sexpMesh{mesh: m}, nil
	})

	// (hull points...)
	s.add(env, "hull", func(args []zygo.Sexp) (zygo.Sexp, error) {
		pts, err := toVecs(args)
		if err != nil {
			return nil, err
		}
		m, err := kernel.ConvexHull(pts, s.cfg.Epsilon)
		if err != nil {
			return nil, err
		}
		s.reportMesh(m, fmt.Sprintf("hull of %d points", len(pts)))
		return &sexpMesh{mesh: m}, nil
	})

	// (bsp triangles... :eye (vec3 0 0 10))
	s.add(env, "bsp", func(args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		tris, err := toTriangles(pa.positional)
		if err != nil {
			return nil, err
		}
		t, err := bsp.Generate(tris, s.cfg.Epsilon)
		if err != nil {
			return nil, err
		}
		rep := BSPReport{Stats: t.Stats()}
		if v, ok := pa.kw["eye"]; ok {
			eye, err := toVec(v)
			if err != nil {
				return nil, fmt.Errorf("eye: %w", err)
			}
			rep.Eye = &eye
			t.BackToFront(eye, func(geom.Triangle) { rep.Order++ })
		}
		s.result.BSPs = append(s.result.BSPs, rep)
		return &sexpBSP{tree: t}, nil
	})
}

// addBoolean registers a two-or-more solid boolean operation folded left.
func (s *session) addBoolean(env *zygo.Zlisp, name string, op func(a, b kernel.Solid) kernel.Solid) {
	s.add(env, name, func(args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("requires at least 2 solids, got %d", len(args))
		}
		first, err := toSolid(args[0])
		if err != nil {
			return nil, err
		}
		acc := first.solid
		labels := []string{first.label}
		for _, a := range args[1:] {
			next, err := toSolid(a)
			if err != nil {
				return nil, err
			}
			acc = op(acc, next.solid)
			labels = append(labels, next.label)
		}
		return &sexpSolid{solid: acc, label: name + " " + strings.Join(labels, ", ")}, nil
	})
}

// points reads exactly n vec3 arguments.
func (s *session) points(args []zygo.Sexp, n int) ([]v3.Vec, error) {
	if err := arity(args, n); err != nil {
		return nil, err
	}
	vs := make([]v3.Vec, n)
	for i, a := range args {
		v, err := toVec(a)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i+1, err)
		}
		vs[i] = v
	}
	return vs, nil
}

// plane reads (center normal).
func (s *session) plane(args []zygo.Sexp) (geom.Plane, error) {
	vs, err := s.points(args, 2)
	if err != nil {
		return geom.Plane{}, err
	}
	if _, ok := geom.Normalize(vs[1]); !ok {
		return geom.Plane{}, errors.New("normal must not be zero")
	}
	return geom.NewPlane(vs[0], vs[1]), nil
}

// placed applies an optional :at translation.
func (s *session) placed(sol kernel.Solid, label string, pa kwArgs) (zygo.Sexp, error) {
	if v, ok := pa.kw["at"]; ok {
		at, err := toVec(v)
		if err != nil {
			return nil, fmt.Errorf("at: %w", err)
		}
		sol = s.kernel.Translate(sol, at.X, at.Y, at.Z)
		label = fmt.Sprintf("%s at %v", label, at)
	}
	return &sexpSolid{solid: sol, label: label}, nil
}

// clip splits tri by pl. A triangle that does not straddle the plane goes
// whole to the side its vertices are on; a coplanar one goes to front.
func (s *session) clip(pl geom.Plane, tri geom.Triangle) (front, back []geom.Triangle) {
	if f, b, ok := pl.SplitTriangle(tri, s.cfg.Epsilon); ok {
		return f, b
	}
	for _, v := range tri {
		if pl.Side(v, s.cfg.Epsilon) == geom.Back {
			return nil, []geom.Triangle{tri}
		}
	}
	return []geom.Triangle{tri}, nil
}

func (s *session) reportMesh(m *kernel.Mesh, source string) {
	rep := MeshReport{
		Source:    source,
		Vertices:  m.VertexCount(),
		Triangles: m.TriangleCount(),
		Area:      m.Area(),
		Mesh:      m,
	}
	if b, err := m.Bounds(); err == nil {
		rep.Bounds = b
	}
	s.result.Meshes = append(s.result.Meshes, rep)
}

// areaOf sums areas. Polygons use their Newell area so non-planar loops
// are measured without tessellating.
func areaOf(args []zygo.Sexp) (float64, error) {
	sum := 0.0
	for _, a := range args {
		switch v := a.(type) {
		case *sexpPolygon:
			sum += v.poly.Area()
		case *sexpTriangle:
			sum += v.tri.Area()
		case *sexpMesh:
			sum += v.mesh.Area()
		default:
			items, err := sexpListToSlice(a)
			if err != nil {
				return 0, fmt.Errorf("expected triangle, polygon, mesh or list, got %s", describe(a))
			}
			x, err := areaOf(items)
			if err != nil {
				return 0, err
			}
			sum += x
		}
	}
	return sum, nil
}
