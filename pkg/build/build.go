// Package build runs the full masonry pipeline: a scene script is
// evaluated, validated, exported under the configured aperture policy and
// optionally meshed.
package build

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/chazu/masonry/pkg/config"
	"github.com/chazu/masonry/pkg/csg"
	"github.com/chazu/masonry/pkg/engine"
	"github.com/chazu/masonry/pkg/export"
	"github.com/chazu/masonry/pkg/kernel"
	"github.com/chazu/masonry/pkg/scene"
	"github.com/chazu/masonry/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to
// materials.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// markerColor is used for fallback marker meshes.
const markerColor = "#000000"

// Pipeline turns scene scripts into export records.
type Pipeline struct {
	Engine   *engine.Engine
	Exporter *export.Exporter
	Kernel   kernel.Kernel // meshing kernel
	Logger   *log.Logger
}

// Issue is a problem reported by any pipeline stage.
type Issue struct {
	Line    int    `json:"line,omitempty"`
	Col     int    `json:"col,omitempty"`
	Box     string `json:"box,omitempty"`
	Message string `json:"message"`
}

// MeshData is a mesh ready for a renderer, with a display color derived
// from its material.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Material string    `json:"material"`
	Color    string    `json:"color"`
}

// Result is everything one pipeline run produced.
type Result struct {
	Records  []export.Record `json:"records"`
	Meshes   []MeshData      `json:"meshes,omitempty"`
	Errors   []Issue         `json:"errors"`
	Warnings []Issue         `json:"warnings"`
}

// OK reports whether the run finished without errors.
func (r *Result) OK() bool { return len(r.Errors) == 0 }

// Fallbacks counts the apertures that fell back across all records.
func (r *Result) Fallbacks() int {
	n := 0
	for _, rec := range r.Records {
		n += rec.Failures
	}
	return n
}

// New assembles a pipeline from cfg. logger may be nil.
func New(cfg *config.Config, logger *log.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	k, err := cfg.NewKernel()
	if err != nil {
		return nil, err
	}
	policy, err := cfg.ExportPolicy()
	if err != nil {
		return nil, err
	}

	eng := engine.NewEngine()
	eng.Timeout = cfg.GetEvalTimeout()

	sub := csg.New(k)
	sub.Logger = logger
	sub.MarkerMaterial = cfg.MarkerMaterial
	sub.Markers = cfg.FallbackMarkers

	exp := export.New(policy, sub)
	exp.Logger = logger

	return &Pipeline{Engine: eng, Exporter: exp, Kernel: k, Logger: logger}, nil
}

func (p *Pipeline) logger() *log.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return log.Default()
}

// RunFile reads a script from path and runs it.
func (p *Pipeline) RunFile(path string, mesh bool) (*Result, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	return p.Run(string(source), mesh), nil
}

// Run evaluates source and exports the resulting scene. Problems in any
// stage are reported in the result; a stage with errors stops the run.
func (p *Pipeline) Run(source string, mesh bool) *Result {
	result := &Result{
		Records:  []export.Record{},
		Errors:   []Issue{},
		Warnings: []Issue{},
	}

	// Step 1: Evaluate the script into a scene.
	s, evalErrs, err := p.Engine.Evaluate(source)
	if err != nil {
		p.logger().Error("evaluate", "err", err)
		result.Errors = append(result.Errors, Issue{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, Issue{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}

	// Step 2: Structural validation. Warnings never block export.
	v := scene.Validate(s)
	for _, w := range v.Warnings {
		p.logger().Warn(w.Message, "box", boxLabel(w.Box))
		result.Warnings = append(result.Warnings, issue(w))
	}
	if !v.OK() {
		for _, e := range v.Errors {
			result.Errors = append(result.Errors, issue(e))
		}
		return result
	}

	// Step 3: Export records under the configured policy.
	records, err := p.Exporter.Export(s)
	if err != nil {
		result.Errors = append(result.Errors, Issue{Message: err.Error()})
		return result
	}
	result.Records = records
	p.logger().Debug("exported scene", "records", len(records), "policy", p.Exporter.Policy)

	if !mesh {
		return result
	}

	// Step 4: Mesh the records.
	meshes, err := tessellate.Records(records, p.Kernel)
	if err != nil {
		p.logger().Error("tessellate", "err", err)
		result.Errors = append(result.Errors, Issue{Message: "tessellation failed: " + err.Error()})
		return result
	}
	result.Meshes = p.meshData(meshes)
	return result
}

// meshData converts kernel meshes, giving each material its own color in
// order of first appearance.
func (p *Pipeline) meshData(meshes []*kernel.Mesh) []MeshData {
	var marker string
	if sub := p.Exporter.Subtractor; sub != nil {
		marker = sub.MarkerMaterial
	}
	colors := make(map[string]string)
	out := make([]MeshData, 0, len(meshes))
	for _, m := range meshes {
		color, ok := colors[m.Material]
		switch {
		case ok:
		case marker != "" && m.Material == marker:
			color = markerColor
			colors[m.Material] = color
		default:
			color = colorPalette[len(colors)%len(colorPalette)]
			colors[m.Material] = color
		}
		out = append(out, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Material: m.Material,
			Color:    color,
		})
	}
	return out
}

func issue(v scene.ValidationError) Issue {
	return Issue{Box: boxLabel(v.Box), Message: v.Message}
}

func boxLabel(b *scene.Box) string {
	if b == nil {
		return ""
	}
	return b.Label()
}
