package main

import (
	"log"

	"github.com/chazu/kerf/pkg/config"
	"github.com/chazu/kerf/pkg/engine"
)

// colorPalette assigns distinct colors to meshes in render output.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App evaluates scripts and shapes the results for JSON output.
type App struct {
	engine *engine.Engine
	// buffers adds flattened render buffers for every mesh to reports.
	buffers bool
}

// MeshData is a mesh flattened for a renderer.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// Report is the output for one script.
type Report struct {
	Script string          `json:"script"`
	Result *engine.Result  `json:"result,omitempty"`
	Meshes []MeshData      `json:"meshes,omitempty"`
	Errors []EvalErrorData `json:"errors"`
}

// Failed reports whether the script produced errors.
func (r Report) Failed() bool {
	return len(r.Errors) > 0
}

// NewApp returns an App evaluating with cfg.
func NewApp(cfg config.Config, buffers bool) *App {
	return &App{engine: engine.New(cfg), buffers: buffers}
}

// Evaluate runs one script. Errors are reported, never returned.
func (a *App) Evaluate(script, source string) Report {
	report := Report{Script: script, Errors: []EvalErrorData{}}

	res, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("%s: evaluate fatal error: %v", script, err)
		report.Errors = append(report.Errors, EvalErrorData{Message: err.Error()})
		return report
	}

	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			report.Errors = append(report.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return report
	}

	report.Result = res
	if !a.buffers {
		return report
	}
	for i, m := range res.Meshes {
		if m.Mesh == nil {
			continue
		}
		buf := m.Mesh.Flatten()
		report.Meshes = append(report.Meshes, MeshData{
			Vertices: buf.Vertices,
			Normals:  buf.Normals,
			Indices:  buf.Indices,
			PartName: m.Source,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	return report
}
