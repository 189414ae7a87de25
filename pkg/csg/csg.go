// Package csg cuts a box's apertures out of it with a geometry kernel's
// boolean difference. Apertures are subtracted one at a time in the box's
// local frame. An aperture the kernel cannot cut is skipped and replaced
// by a marker volume so that the rest of the scene still exports.
package csg

import (
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/chazu/masonry/pkg/decompose"
	"github.com/chazu/masonry/pkg/kernel"
	"github.com/chazu/masonry/pkg/scene"
)

// ErrBooleanOpFailed marks an aperture that could not be subtracted.
var ErrBooleanOpFailed = errors.New("boolean operation failed")

const (
	// DefaultMarkerMaterial is the material tag given to fallback markers.
	DefaultMarkerMaterial = "aperture-marker"

	// MinMarkerExtent keeps markers for flat apertures visible.
	MinMarkerExtent = 0.05
)

// ApertureError describes one failed subtraction. It matches both
// ErrBooleanOpFailed and the kernel's cause under errors.Is.
type ApertureError struct {
	Box   string
	Index int
	Err   error
}

func (e *ApertureError) Error() string {
	return fmt.Sprintf("csg: box %s aperture %d: %v: %v", e.Box, e.Index, ErrBooleanOpFailed, e.Err)
}

func (e *ApertureError) Unwrap() []error {
	return []error{ErrBooleanOpFailed, e.Err}
}

// Result is the outcome of subtracting a box's apertures.
type Result struct {
	// Local is the kernel solid in the box's local frame. It is nil when
	// the apertures removed the whole box.
	Local kernel.Solid

	// Shape is Local rotated by the box's own rotation, then moved to the
	// requested position.
	Shape kernel.Solid

	// Solids describes the result as sub-boxes in the local frame,
	// followed by one marker per failed aperture when markers are on.
	Solids []scene.Solid

	// Failures holds one *ApertureError per aperture that fell back.
	Failures []error
}

// Subtractor performs exact aperture subtraction.
type Subtractor struct {
	Kernel         kernel.Kernel
	Logger         *log.Logger
	MarkerMaterial string
	Markers        bool // emit a marker volume per failed aperture
}

// New returns a Subtractor on k that emits markers.
func New(k kernel.Kernel) *Subtractor {
	return &Subtractor{Kernel: k, MarkerMaterial: DefaultMarkerMaterial, Markers: true}
}

func (s *Subtractor) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Default()
}

// Subtract resolves b at its absolute position.
func (s *Subtractor) Subtract(b *scene.Box) Result {
	return s.SubtractAt(b, b.AbsolutePosition())
}

// SubtractAt computes box minus the union of its apertures and places the
// result at pos. It never fails: kernel errors are collected in
// Result.Failures and the offending aperture is left uncut.
func (s *Subtractor) SubtractAt(b *scene.Box, pos scene.Vec3) Result {
	var res Result
	local, err := s.Kernel.Box(b.Length(), b.Width(), b.Height())
	if err != nil {
		// Boxes from scene.NewBox always have volume, so this only
		// happens with a misbehaving kernel.
		res.Failures = append(res.Failures, &ApertureError{Box: b.Label(), Index: -1, Err: err})
		res.Solids = []scene.Solid{scene.WholeSolid(b)}
		return res
	}

	var (
		cut     []scene.Aperture
		markers []scene.Solid
	)
	for i, a := range b.Apertures() {
		next, err := s.cut(local, a)
		if errors.Is(err, kernel.ErrEmptyResult) {
			s.logger().Debug("aperture removes the whole box", "box", b.Label(), "aperture", i)
			res.Solids = markers
			return res
		}
		if err != nil {
			s.logger().Warn("aperture fallback", "box", b.Label(), "aperture", i, "err", err)
			res.Failures = append(res.Failures, &ApertureError{Box: b.Label(), Index: i, Err: err})
			if s.Markers {
				markers = append(markers, s.marker(a))
			}
			continue
		}
		local = next
		cut = append(cut, a)
	}

	res.Local = local
	res.Shape = s.Place(local, pos, b.Rotation())
	res.Solids = append(s.solids(b, local, cut), markers...)
	return res
}

func (s *Subtractor) cut(shape kernel.Solid, a scene.Aperture) (kernel.Solid, error) {
	cutter, err := s.Kernel.Box(a.Length, a.Width, a.Depth)
	if err != nil {
		return nil, err
	}
	cutter = s.Kernel.Translate(cutter, a.X, a.Y, a.Z)
	return s.Kernel.Difference(shape, cutter)
}

// Place rotates a local solid by rot (degrees) about its origin and then
// moves it to pos.
func (s *Subtractor) Place(local kernel.Solid, pos, rot scene.Vec3) kernel.Solid {
	out := local
	if !rot.IsZero() {
		out = s.Kernel.Rotate(out, rot.X, rot.Y, rot.Z)
	}
	if !pos.IsZero() {
		out = s.Kernel.Translate(out, pos.X, pos.Y, pos.Z)
	}
	return out
}

// solids describes the local result. Kernels that expose their cells are
// reported cell by cell; others fall back to the decomposition of the
// apertures that were actually cut.
func (s *Subtractor) solids(b *scene.Box, local kernel.Solid, cut []scene.Aperture) []scene.Solid {
	if len(cut) == 0 {
		return []scene.Solid{scene.WholeSolid(b)}
	}
	if cs, ok := local.(kernel.CuboidSet); ok {
		cells := cs.Cuboids()
		out := make([]scene.Solid, 0, len(cells))
		for _, c := range cells {
			size := c.Size()
			out = append(out, scene.Solid{
				Length:      size[0],
				Width:       size[1],
				Height:      size[2],
				LocalOffset: scene.Vec3{X: c.Min[0], Y: c.Min[1], Z: c.Min[2]},
				Role:        scene.RoleCell,
			})
		}
		return out
	}
	var out []scene.Solid
	for _, a := range cut {
		out = append(out, decompose.Aperture(b.Dimensions(), a)...)
	}
	return out
}

func (s *Subtractor) marker(a scene.Aperture) scene.Solid {
	return scene.Solid{
		Length:      math.Max(a.Length, MinMarkerExtent),
		Width:       math.Max(a.Width, MinMarkerExtent),
		Height:      math.Max(a.Depth, MinMarkerExtent),
		LocalOffset: scene.Vec3{X: a.X, Y: a.Y, Z: a.Z},
		Role:        scene.RoleMarker,
		Material:    s.MarkerMaterial,
	}
}
