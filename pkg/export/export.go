// Package export flattens a scene into one geometry record per box.
//
// The walk is a single pre-order pass over the scene roots. At each box the
// static children are visited before the dynamically attached ones, each in
// insertion order. A box reachable along several paths is emitted once, at
// the first path that reaches it.
package export

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/chazu/masonry/pkg/csg"
	"github.com/chazu/masonry/pkg/decompose"
	"github.com/chazu/masonry/pkg/kernel"
	"github.com/chazu/masonry/pkg/scene"
)

// Policy selects how apertured boxes are resolved. It applies to a whole
// deployment, never to individual boxes.
type Policy string

const (
	PolicyDecompose Policy = "decompose"
	PolicyBoolean   Policy = "boolean"
)

// ErrUnknownPolicy is returned for policy names other than the constants.
var ErrUnknownPolicy = errors.New("unknown aperture policy")

// ParsePolicy converts a configuration string into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyDecompose, PolicyBoolean:
		return p, nil
	default:
		return "", fmt.Errorf("export: %q: %w", s, ErrUnknownPolicy)
	}
}

// Record is the flattened geometry of one box, ready for a renderer.
type Record struct {
	ID       uuid.UUID     `json:"id"`
	Name     string        `json:"name,omitempty"`
	Position [3]float64    `json:"position"`
	// Rotation is the box's own rotation in degrees about X, Y and Z,
	// applied in that order before translating to Position.
	Rotation [3]float64    `json:"rotation"`
	Material string        `json:"material"`
	Solids   []scene.Solid `json:"solids"`
	Failures int           `json:"failures,omitempty"` // apertures that fell back

	// Shape is the placed boolean result under PolicyBoolean. Renderers
	// that only read Solids can ignore it.
	Shape kernel.Solid `json:"-"`
}

// Exporter walks scenes and emits records.
type Exporter struct {
	Policy     Policy
	Subtractor *csg.Subtractor // required by PolicyBoolean
	Logger     *log.Logger
}

// New returns an Exporter with the given policy. sub may be nil for
// PolicyDecompose.
func New(p Policy, sub *csg.Subtractor) *Exporter {
	return &Exporter{Policy: p, Subtractor: sub}
}

func (e *Exporter) logger() *log.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return log.Default()
}

// Export emits one record per box reachable from the scene roots. Boxes
// that are not reachable are not exported.
func (e *Exporter) Export(s *scene.Scene) ([]Record, error) {
	switch e.Policy {
	case PolicyDecompose:
	case PolicyBoolean:
		if e.Subtractor == nil {
			return nil, errors.New("export: boolean policy needs a subtractor")
		}
	default:
		return nil, fmt.Errorf("export: %q: %w", e.Policy, ErrUnknownPolicy)
	}

	start := time.Now()
	defer func() {
		exportDuration.WithLabelValues(string(e.Policy)).Observe(time.Since(start).Seconds())
	}()

	w := walker{e: e, seen: make(map[uuid.UUID]bool, s.BoxCount())}
	for _, root := range s.Roots() {
		w.visit(root, root.AbsolutePosition())
	}
	exportedRecords.WithLabelValues(string(e.Policy)).Add(float64(len(w.records)))
	return w.records, nil
}

type walker struct {
	e       *Exporter
	seen    map[uuid.UUID]bool
	records []Record
}

func (w *walker) visit(b *scene.Box, pos scene.Vec3) {
	if w.seen[b.ID] {
		return
	}
	w.seen[b.ID] = true
	w.records = append(w.records, w.e.record(b, pos))

	for _, c := range b.StaticChildren() {
		w.visit(c.Box, pos.Add(c.Offset))
	}
	for _, c := range b.Attached() {
		w.visit(c, pos.Add(c.Offset()))
	}
}

func (e *Exporter) record(b *scene.Box, pos scene.Vec3) Record {
	r := Record{
		ID:       b.ID,
		Name:     b.Name,
		Position: pos.Array(),
		Rotation: b.Rotation().Array(),
		Material: b.Material,
	}
	switch {
	case !b.HasApertures():
		r.Solids = []scene.Solid{scene.WholeSolid(b)}
	case e.Policy == PolicyBoolean:
		res := e.Subtractor.SubtractAt(b, pos)
		r.Solids = res.Solids
		r.Shape = res.Shape
		r.Failures = len(res.Failures)
		booleanFallbacks.Add(float64(r.Failures))
	default:
		r.Solids = decompose.Box(b)
	}
	e.logger().Debug("exported box", "box", b.Label(), "position", pos, "solids", len(r.Solids))
	return r
}
