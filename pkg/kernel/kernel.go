// Package kernel defines the abstract geometry kernel interface.
// Implementations (cuboid, sdfx) provide solid modeling and boolean
// operations behind this interface. The kernel abstraction allows
// swapping backends without changing the rest of the system.
package kernel

import "errors"

// Boolean failures. Callers that must not abort (aperture subtraction)
// match these with errors.Is and degrade instead.
var (
	// ErrDegenerate is returned when an operand has no volume.
	ErrDegenerate = errors.New("degenerate operand")

	// ErrEmptyResult is returned when a boolean would leave no solid.
	ErrEmptyResult = errors.New("empty result")

	// ErrNonAxisAligned is returned by kernels that only combine
	// axis-aligned solids when an operand has been rotated.
	ErrNonAxisAligned = errors.New("operand is not axis aligned")
)

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Cuboid is an axis-aligned box given by its corners.
type Cuboid struct {
	Min [3]float64
	Max [3]float64
}

// Size returns the extents along X, Y and Z.
func (c Cuboid) Size() [3]float64 {
	return [3]float64{c.Max[0] - c.Min[0], c.Max[1] - c.Min[1], c.Max[2] - c.Min[2]}
}

// Volume returns the cuboid volume, zero when any extent is non-positive.
func (c Cuboid) Volume() float64 {
	s := c.Size()
	if s[0] <= 0 || s[1] <= 0 || s[2] <= 0 {
		return 0
	}
	return s[0] * s[1] * s[2]
}

// CuboidSet is implemented by solids that can report themselves as a set
// of disjoint axis-aligned cuboids in their local frame.
type CuboidSet interface {
	Solid
	Cuboids() []Cuboid
}

// Kernel is the abstract geometry kernel interface.
// Implementations (cuboid, sdfx) provide solid modeling behind this interface.
type Kernel interface {
	// Primitives. The box's minimum corner sits at the origin.
	Box(x, y, z float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) (Solid, error)
	Difference(a, b Solid) (Solid, error)

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
