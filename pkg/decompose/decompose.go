// Package decompose resolves an apertured box into simple solid sub-boxes
// without a boolean engine. Each aperture is tiled independently by a
// floor cap and up to four jambs.
//
// The tiling is deliberately asymmetric: the left and right jambs span the
// box's full width, while the front and back jambs span only the aperture's
// own length, so the corner columns are covered exactly once.
package decompose

import "github.com/chazu/masonry/pkg/scene"

// Box returns the solids that make up b. A box without apertures yields
// itself; otherwise the per-aperture decompositions are concatenated in
// aperture order. Apertures are assumed pairwise disjoint.
func Box(b *scene.Box) []scene.Solid {
	if !b.HasApertures() {
		return []scene.Solid{scene.WholeSolid(b)}
	}
	var out []scene.Solid
	for _, a := range b.Apertures() {
		out = append(out, Aperture(b.Dimensions(), a)...)
	}
	return out
}

// Aperture tiles a box of the given dimensions minus a single aperture.
// Pieces come out in a fixed order: near cap, floor cap, left, right,
// front and back jambs. Empty pieces are skipped, so a flush full-depth
// aperture yields nothing.
func Aperture(dims scene.Vec3, a scene.Aperture) []scene.Solid {
	L, W, H := dims.X, dims.Y, dims.Z
	cutEnd := a.Z + a.Depth

	var out []scene.Solid
	add := func(role scene.Role, l, w, h float64, at scene.Vec3) {
		if l <= 0 || w <= 0 || h <= 0 {
			return
		}
		out = append(out, scene.Solid{Length: l, Width: w, Height: h, LocalOffset: at, Role: role})
	}

	// A recessed cut leaves material between the near face and the cut.
	if a.Z > 0 {
		add(scene.RoleNearCap, L, W, a.Z, scene.Vec3{})
	}
	if cutEnd < H {
		add(scene.RoleFloorCap, L, W, H-cutEnd, scene.Vec3{Z: cutEnd})
	}

	if a.X > 0 {
		add(scene.RoleLeftJamb, a.X, W, a.Depth, scene.Vec3{Z: a.Z})
	}
	if right := a.X + a.Length; right < L {
		add(scene.RoleRightJamb, L-right, W, a.Depth, scene.Vec3{X: right, Z: a.Z})
	}
	if a.Y > 0 {
		add(scene.RoleFrontJamb, a.Length, a.Y, a.Depth, scene.Vec3{X: a.X, Z: a.Z})
	}
	if back := a.Y + a.Width; back < W {
		add(scene.RoleBackJamb, a.Length, W-back, a.Depth, scene.Vec3{X: a.X, Y: back, Z: a.Z})
	}
	return out
}

// Volume sums the volume of the given solids.
func Volume(solids []scene.Solid) float64 {
	var v float64
	for _, s := range solids {
		v += s.Volume()
	}
	return v
}
