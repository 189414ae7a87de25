package scene

import (
	"fmt"

	"github.com/google/uuid"
)

// Box is an axis-aligned rectangular solid, the only geometric primitive.
// It occupies [0,length]x[0,width]x[0,height] in its local frame. The
// dimensions are fixed at construction; position, rotation, apertures and
// children change through the methods below.
type Box struct {
	ID       uuid.UUID
	Name     string
	Material string // opaque tag resolved by the host appearance system

	length, width, height float64

	rotation  Vec3 // degrees, own rotation only
	position  Vec3 // absolute position of the local origin
	apertures []Aperture

	// Static relation: children at fixed offsets, resolved at export.
	static []StaticChild

	// Dynamic relation: at most one reference box, eagerly propagated.
	ref      *Box
	offset   Vec3
	attached []*Box
}

// StaticChild is a box placed at a fixed offset from its static parent.
// The offset is accumulated top-down during export; moving the parent
// later never rewrites the child's own position.
type StaticChild struct {
	Box    *Box
	Offset Vec3
}

// NewBox creates a box with the given dimensions and material tag. Every
// dimension must be positive.
func NewBox(name string, length, width, height float64, material string) (*Box, error) {
	if length <= 0 || width <= 0 || height <= 0 {
		return nil, fmt.Errorf("scene: box %q %gx%gx%g: %w", name, length, width, height, ErrInvalidDimensions)
	}
	return &Box{
		ID:       uuid.New(),
		Name:     name,
		Material: material,
		length:   length,
		width:    width,
		height:   height,
	}, nil
}

// MustBox is like NewBox but panics on invalid dimensions. Intended for
// fixed scene definitions and tests.
func MustBox(name string, length, width, height float64, material string) *Box {
	b, err := NewBox(name, length, width, height, material)
	if err != nil {
		panic(err)
	}
	return b
}

// Length returns the extent along X.
func (b *Box) Length() float64 { return b.length }

// Width returns the extent along Y.
func (b *Box) Width() float64 { return b.width }

// Height returns the extent along Z.
func (b *Box) Height() float64 { return b.height }

// Dimensions returns (length, width, height) as a vector.
func (b *Box) Dimensions() Vec3 {
	return Vec3{X: b.length, Y: b.width, Z: b.height}
}

// Volume returns length*width*height.
func (b *Box) Volume() float64 {
	return b.length * b.width * b.height
}

// Label returns the name, or the short ID for anonymous boxes.
func (b *Box) Label() string {
	if b.Name != "" {
		return b.Name
	}
	return b.ID.String()[:8]
}

// Rotation returns the box's own accumulated rotation in degrees.
func (b *Box) Rotation() Vec3 { return b.rotation }

// RotateX adds angle degrees to the rotation about X. Rotation applies to
// this box only and is never inherited by children of either relation.
func (b *Box) RotateX(angle float64) *Box {
	b.rotation.X += angle
	return b
}

// RotateY adds angle degrees to the rotation about Y.
func (b *Box) RotateY(angle float64) *Box {
	b.rotation.Y += angle
	return b
}

// RotateZ adds angle degrees to the rotation about Z.
func (b *Box) RotateZ(angle float64) *Box {
	b.rotation.Z += angle
	return b
}

// SetRotation replaces the accumulated rotation.
func (b *Box) SetRotation(x, y, z float64) *Box {
	b.rotation = Vec3{X: x, Y: y, Z: z}
	return b
}

// Apertures returns a copy of the box's apertures in request order.
func (b *Box) Apertures() []Aperture {
	out := make([]Aperture, len(b.apertures))
	copy(out, b.apertures)
	return out
}

// HasApertures reports whether any aperture has been requested.
func (b *Box) HasApertures() bool {
	return len(b.apertures) > 0
}

func (b *Box) String() string {
	return fmt.Sprintf("box %s %gx%gx%g at %s", b.Label(), b.length, b.width, b.height, b.position)
}
