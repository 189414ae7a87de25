package export

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform returns the matrix that takes a record's local frame to world
// space: rotation (X first, then Y, then Z, in degrees) followed by the
// record position.
func (r Record) Transform() mgl64.Mat4 {
	rot := mgl64.HomogRotate3DZ(mgl64.DegToRad(r.Rotation[2])).
		Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(r.Rotation[1]))).
		Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(r.Rotation[0])))
	return mgl64.Translate3D(r.Position[0], r.Position[1], r.Position[2]).Mul4(rot)
}

// Bounds returns the world-space axis-aligned bounds of every solid in
// records. ok is false when there is no geometry.
func Bounds(records []Record) (min, max [3]float64, ok bool) {
	for i := 0; i < 3; i++ {
		min[i] = math.Inf(1)
		max[i] = math.Inf(-1)
	}
	for _, r := range records {
		m := r.Transform()
		for _, s := range r.Solids {
			lo, hi := s.LocalOffset, s.Max()
			for c := 0; c < 8; c++ {
				p := mgl64.Vec3{lo.X, lo.Y, lo.Z}
				if c&1 != 0 {
					p[0] = hi.X
				}
				if c&2 != 0 {
					p[1] = hi.Y
				}
				if c&4 != 0 {
					p[2] = hi.Z
				}
				w := m.Mul4x1(p.Vec4(1)).Vec3()
				for i := 0; i < 3; i++ {
					min[i] = math.Min(min[i], w[i])
					max[i] = math.Max(max[i], w[i])
				}
				ok = true
			}
		}
	}
	if !ok {
		return [3]float64{}, [3]float64{}, false
	}
	return min, max, true
}
