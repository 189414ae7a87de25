package scene

import (
	"fmt"
	"math"
)

// Aperture is a rectangular cut requested on a box, in the box's local
// frame. It occupies [X,X+Length]x[Y,Y+Width]x[Z,Z+Depth]; Z=0 means the
// cut starts at the near face.
type Aperture struct {
	X      float64 `json:"offsetX"`
	Y      float64 `json:"offsetY"`
	Z      float64 `json:"offsetZ"`
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Depth  float64 `json:"depth"`
}

// Min returns the aperture's minimum corner.
func (a Aperture) Min() Vec3 {
	return Vec3{X: a.X, Y: a.Y, Z: a.Z}
}

// Max returns the aperture's maximum corner.
func (a Aperture) Max() Vec3 {
	return Vec3{X: a.X + a.Length, Y: a.Y + a.Width, Z: a.Z + a.Depth}
}

// Volume returns the aperture volume.
func (a Aperture) Volume() float64 {
	return a.Length * a.Width * a.Depth
}

// Overlaps reports whether two apertures share interior volume.
func (a Aperture) Overlaps(o Aperture) bool {
	amin, amax := a.Min(), a.Max()
	omin, omax := o.Min(), o.Max()
	return amin.X < omax.X && omin.X < amax.X &&
		amin.Y < omax.Y && omin.Y < amax.Y &&
		amin.Z < omax.Z && omin.Z < amax.Z
}

// MakeHole records a cut that starts at the near face (offsetZ = 0).
// Multiple apertures are resolved together at export; no geometry is
// changed here.
func (b *Box) MakeHole(x, y, length, width, depth float64) (Aperture, error) {
	a := Aperture{X: x, Y: y, Length: length, Width: width, Depth: depth}
	if err := b.checkFootprint(a); err != nil {
		return Aperture{}, err
	}
	if depth < 0 || depth > b.height {
		return Aperture{}, fmt.Errorf("scene: box %s: depth %g outside [0, %g]: %w",
			b.Label(), depth, b.height, ErrDepthExceeded)
	}
	b.apertures = append(b.apertures, a)
	return a, nil
}

// MakeRecessedHole records a cut starting z into the box.
func (b *Box) MakeRecessedHole(x, y, z, length, width, depth float64) (Aperture, error) {
	a := Aperture{X: x, Y: y, Z: z, Length: length, Width: width, Depth: depth}
	if err := b.checkFootprint(a); err != nil {
		return Aperture{}, err
	}
	if z < 0 {
		return Aperture{}, fmt.Errorf("scene: box %s: negative offset z %g: %w", b.Label(), z, ErrOutOfBounds)
	}
	if depth < 0 || z+depth > b.height {
		return Aperture{}, fmt.Errorf("scene: box %s: offset %g + depth %g > height %g: %w",
			b.Label(), z, depth, b.height, ErrDepthExceeded)
	}
	b.apertures = append(b.apertures, a)
	return a, nil
}

// checkFootprint rejects NaN fields, negative sizes and cuts leaving the
// length x width face. Zero sizes pass; they fall back at export.
func (b *Box) checkFootprint(a Aperture) error {
	for _, v := range [...]float64{a.X, a.Y, a.Z, a.Length, a.Width, a.Depth} {
		if math.IsNaN(v) {
			return fmt.Errorf("scene: box %s: aperture has NaN extent: %w", b.Label(), ErrOutOfBounds)
		}
	}
	if a.Length < 0 || a.Width < 0 {
		return fmt.Errorf("scene: box %s: aperture size %gx%g is negative: %w",
			b.Label(), a.Length, a.Width, ErrOutOfBounds)
	}
	if a.X < 0 || a.Y < 0 || a.X+a.Length > b.length || a.Y+a.Width > b.width {
		return fmt.Errorf("scene: box %s: aperture at (%g, %g) size %gx%g exceeds footprint %gx%g: %w",
			b.Label(), a.X, a.Y, a.Length, a.Width, b.length, b.width, ErrOutOfBounds)
	}
	return nil
}
