// Package engine runs kerf scripts. A script is zygomys Lisp with builtins
// for the geometry packages: it builds planes, polygons, surfaces, solids
// and trees, then clips, splits and queries them. Every operation that
// produces an answer also appends a report to the evaluation's Result.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/kerf/pkg/bsp"
	"github.com/chazu/kerf/pkg/bvtree"
	"github.com/chazu/kerf/pkg/config"
	"github.com/chazu/kerf/pkg/geom"
	"github.com/chazu/kerf/pkg/kernel"
	"github.com/chazu/kerf/pkg/kernel/sdfx"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError is a non-fatal error in user code, such as a parse error or a
// builtin rejecting its arguments.
type EvalError struct {
	Line    int    `json:"line,omitempty"`
	Col     int    `json:"col,omitempty"`
	Message string `json:"message"`
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ---------------------------------------------------------------------------
// Reports
// ---------------------------------------------------------------------------

// ClipReport is the outcome of one (clip plane triangle).
type ClipReport struct {
	Plane     geom.Plane      `json:"plane"`
	Triangle  geom.Triangle   `json:"triangle"`
	Front     []geom.Triangle `json:"front"`
	Back      []geom.Triangle `json:"back"`
	FrontArea float64         `json:"frontArea"`
	BackArea  float64         `json:"backArea"`
}

// QueryReport is the outcome of one (query tree segment).
type QueryReport struct {
	Segment geom.LineSegment `json:"segment"`
	Nearest bool             `json:"nearest"`
	Hit     *bvtree.Hit      `json:"hit,omitempty"`
}

// SplitReport is the outcome of one (split polygon surface).
type SplitReport struct {
	Inside      [][]v3.Vec `json:"inside"`
	Outside     [][]v3.Vec `json:"outside"`
	InsideArea  float64    `json:"insideArea"`
	OutsideArea float64    `json:"outsideArea"`
}

// TreeReport describes a tree as it stood when the script finished.
type TreeReport struct {
	Bounds geom.Box     `json:"bounds"`
	Stats  bvtree.Stats `json:"stats"`
}

// MeshReport describes a mesh produced by (mesh ...) or (hull ...).
type MeshReport struct {
	Source    string   `json:"source"`
	Vertices  int      `json:"vertices"`
	Triangles int      `json:"triangles"`
	Area      float64  `json:"area"`
	Bounds    geom.Box `json:"bounds"`

	Mesh *kernel.Mesh `json:"-"`
}

// BSPReport describes a tree produced by (bsp ...).
type BSPReport struct {
	Stats bsp.Stats `json:"stats"`
	Eye   *v3.Vec   `json:"eye,omitempty"`
	// Order is the number of triangles visited back to front from Eye.
	Order int `json:"order,omitempty"`
}

// Result is everything one evaluation produced. It is never mutated after
// Evaluate returns.
type Result struct {
	Generation uint64        `json:"generation"`
	Value      string        `json:"value,omitempty"`
	Clips      []ClipReport  `json:"clips,omitempty"`
	Queries    []QueryReport `json:"queries,omitempty"`
	Splits     []SplitReport `json:"splits,omitempty"`
	Trees      []TreeReport  `json:"trees,omitempty"`
	Meshes     []MeshReport  `json:"meshes,omitempty"`
	BSPs       []BSPReport   `json:"bsps,omitempty"`
}

// ---------------------------------------------------------------------------
// Engine
// ---------------------------------------------------------------------------

// Engine evaluates scripts. It is safe for concurrent use; each call to
// Evaluate runs in a fresh sandbox.
type Engine struct {
	cfg config.Config

	mu         sync.Mutex
	generation uint64
}

// NewEngine returns an Engine with the default configuration.
func NewEngine() *Engine {
	return New(config.Default())
}

// New returns an Engine using cfg's tolerances and timeout.
func New(cfg config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the engine's configuration.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Evaluate runs source and collects its reports.
//
// Return semantics:
//   - On success: returns result + nil errors + nil error
//   - On parse/eval failure: returns nil result + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Result, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("engine: panic during evaluation: %v", r)}
			}
		}()

		res, evalErrs, err := e.evaluate(source, gen)
		ch <- evalResult{result: res, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation, e.cfg.Timeout())
}

// evaluate runs source in a fresh sandbox.
func (e *Engine) evaluate(source string, gen uint64) (*Result, []EvalError, error) {
	if strings.TrimSpace(source) == "" {
		return &Result{Generation: gen}, nil, nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()

	k := sdfx.New()
	k.Epsilon = e.cfg.Epsilon
	k.MaxPathDepth = e.cfg.MaxPathDepth

	s := &session{cfg: e.cfg, kernel: k, result: &Result{Generation: gen}}
	s.register(env)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	last, err := env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	s.finish(last)
	return s.result, nil, nil
}

// linePattern matches zygomys errors of the form "Error on line N: ...".
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches "line N: ...".
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalErrors, pulling out
// the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
