// Package cuboid implements the kernel.Kernel interface with exact
// axis-aligned cell sets. Booleans are computed on a grid spanned by the
// operands' face coordinates, so box and aperture arithmetic carries no
// sampling error. Rotation is kept as a transform on top of the cells and
// is resolved only when meshing.
package cuboid

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/masonry/pkg/kernel"
)

// Compile-time interface checks.
var (
	_ kernel.Kernel    = (*Kernel)(nil)
	_ kernel.CuboidSet = (*Solid)(nil)
)

// eps is the tolerance used when merging grid breakpoints.
const eps = 1e-9

// Solid is a set of disjoint axis-aligned cells followed by an optional
// rigid transform.
type Solid struct {
	cells   []kernel.Cuboid
	xf      mgl64.Mat4
	rotated bool
}

func newSolid(cells []kernel.Cuboid) *Solid {
	return &Solid{cells: cells, xf: mgl64.Ident4()}
}

// Cuboids returns the cells before any rotation is applied. Translations
// made while the solid is unrotated are already folded into the cells.
func (s *Solid) Cuboids() []kernel.Cuboid {
	out := make([]kernel.Cuboid, len(s.cells))
	copy(out, s.cells)
	return out
}

// Rotated reports whether the solid carries a rotation.
func (s *Solid) Rotated() bool { return s.rotated }

// Volume returns the exact enclosed volume.
func (s *Solid) Volume() float64 {
	var v float64
	for _, c := range s.cells {
		v += c.Volume()
	}
	return v
}

// BoundingBox returns the axis-aligned bounds of the transformed cells.
func (s *Solid) BoundingBox() (min, max [3]float64) {
	first := true
	for _, c := range s.cells {
		for _, p := range corners(c) {
			w := s.apply(p)
			for i := 0; i < 3; i++ {
				if first || w[i] < min[i] {
					min[i] = w[i]
				}
				if first || w[i] > max[i] {
					max[i] = w[i]
				}
			}
			first = false
		}
	}
	return min, max
}

func (s *Solid) apply(p mgl64.Vec3) mgl64.Vec3 {
	if !s.rotated {
		return p
	}
	return s.xf.Mul4x1(p.Vec4(1)).Vec3()
}

func (s *Solid) applyNormal(n mgl64.Vec3) mgl64.Vec3 {
	if !s.rotated {
		return n
	}
	return s.xf.Mul4x1(n.Vec4(0)).Vec3().Normalize()
}

// Kernel implements kernel.Kernel on cuboid cell sets.
type Kernel struct{}

// New returns a new cuboid Kernel.
func New() *Kernel {
	return &Kernel{}
}

func unwrap(s kernel.Solid) (*Solid, error) {
	c, ok := s.(*Solid)
	if !ok {
		return nil, fmt.Errorf("cuboid: foreign solid %T", s)
	}
	return c, nil
}

// Box creates a box with its minimum corner at the origin.
func (k *Kernel) Box(x, y, z float64) (kernel.Solid, error) {
	if x <= 0 || y <= 0 || z <= 0 {
		return nil, fmt.Errorf("cuboid: box %gx%gx%g: %w", x, y, z, kernel.ErrDegenerate)
	}
	return newSolid([]kernel.Cuboid{{Max: [3]float64{x, y, z}}}), nil
}

// Union returns the union of two unrotated solids.
func (k *Kernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	sa, sb, err := operands("union", a, b)
	if err != nil {
		return nil, err
	}
	return newSolid(combine(sa.cells, sb.cells, func(inA, inB bool) bool { return inA || inB })), nil
}

// Difference returns a minus b. Both operands must be unrotated and have
// volume; a result with no cells is reported as kernel.ErrEmptyResult.
func (k *Kernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	sa, sb, err := operands("difference", a, b)
	if err != nil {
		return nil, err
	}
	if sa.Volume() <= 0 || sb.Volume() <= 0 {
		return nil, fmt.Errorf("cuboid: difference: %w", kernel.ErrDegenerate)
	}
	cells := combine(sa.cells, sb.cells, func(inA, inB bool) bool { return inA && !inB })
	if len(cells) == 0 {
		return nil, fmt.Errorf("cuboid: difference: %w", kernel.ErrEmptyResult)
	}
	return newSolid(cells), nil
}

func operands(op string, a, b kernel.Solid) (*Solid, *Solid, error) {
	sa, err := unwrap(a)
	if err != nil {
		return nil, nil, err
	}
	sb, err := unwrap(b)
	if err != nil {
		return nil, nil, err
	}
	if sa.rotated || sb.rotated {
		return nil, nil, fmt.Errorf("cuboid: %s: %w", op, kernel.ErrNonAxisAligned)
	}
	return sa, sb, nil
}

// Translate moves a solid by (x, y, z).
func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	src := s.(*Solid)
	if !src.rotated {
		cells := make([]kernel.Cuboid, len(src.cells))
		for i, c := range src.cells {
			cells[i] = kernel.Cuboid{
				Min: [3]float64{c.Min[0] + x, c.Min[1] + y, c.Min[2] + z},
				Max: [3]float64{c.Max[0] + x, c.Max[1] + y, c.Max[2] + z},
			}
		}
		return newSolid(cells)
	}
	return &Solid{
		cells:   src.cells,
		xf:      mgl64.Translate3D(x, y, z).Mul4(src.xf),
		rotated: true,
	}
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
// The X rotation is applied first.
func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	src := s.(*Solid)
	if x == 0 && y == 0 && z == 0 {
		return src
	}
	m := mgl64.HomogRotate3DZ(mgl64.DegToRad(z)).
		Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(y))).
		Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(x)))
	return &Solid{cells: src.cells, xf: m.Mul4(src.xf), rotated: true}
}

// ToMesh emits two triangles per cell face with flat normals.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	src, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	m := &kernel.Mesh{
		Vertices: make([]float32, 0, len(src.cells)*24*3),
		Normals:  make([]float32, 0, len(src.cells)*24*3),
		Indices:  make([]uint32, 0, len(src.cells)*36),
	}
	for _, c := range src.cells {
		for _, f := range faces(c) {
			n := src.applyNormal(f.normal)
			base := uint32(m.VertexCount())
			for _, p := range f.quad {
				w := src.apply(p)
				m.Vertices = append(m.Vertices, float32(w.X()), float32(w.Y()), float32(w.Z()))
				m.Normals = append(m.Normals, float32(n.X()), float32(n.Y()), float32(n.Z()))
			}
			m.Indices = append(m.Indices, base, base+1, base+2, base+2, base+3, base)
		}
	}
	return m, nil
}

func corners(c kernel.Cuboid) [8]mgl64.Vec3 {
	var out [8]mgl64.Vec3
	for i := 0; i < 8; i++ {
		p := c.Min
		if i&1 != 0 {
			p[0] = c.Max[0]
		}
		if i&2 != 0 {
			p[1] = c.Max[1]
		}
		if i&4 != 0 {
			p[2] = c.Max[2]
		}
		out[i] = mgl64.Vec3(p)
	}
	return out
}

type face struct {
	normal mgl64.Vec3
	quad   [4]mgl64.Vec3
}

// faces returns the six faces of c, wound counter-clockwise when viewed
// from outside.
func faces(c kernel.Cuboid) [6]face {
	x0, y0, z0 := c.Min[0], c.Min[1], c.Min[2]
	x1, y1, z1 := c.Max[0], c.Max[1], c.Max[2]
	v := func(x, y, z float64) mgl64.Vec3 { return mgl64.Vec3{x, y, z} }
	return [6]face{
		{mgl64.Vec3{-1, 0, 0}, [4]mgl64.Vec3{v(x0, y0, z0), v(x0, y0, z1), v(x0, y1, z1), v(x0, y1, z0)}},
		{mgl64.Vec3{1, 0, 0}, [4]mgl64.Vec3{v(x1, y0, z0), v(x1, y1, z0), v(x1, y1, z1), v(x1, y0, z1)}},
		{mgl64.Vec3{0, -1, 0}, [4]mgl64.Vec3{v(x0, y0, z0), v(x1, y0, z0), v(x1, y0, z1), v(x0, y0, z1)}},
		{mgl64.Vec3{0, 1, 0}, [4]mgl64.Vec3{v(x0, y1, z0), v(x0, y1, z1), v(x1, y1, z1), v(x1, y1, z0)}},
		{mgl64.Vec3{0, 0, -1}, [4]mgl64.Vec3{v(x0, y0, z0), v(x0, y1, z0), v(x1, y1, z0), v(x1, y0, z0)}},
		{mgl64.Vec3{0, 0, 1}, [4]mgl64.Vec3{v(x0, y0, z1), v(x1, y0, z1), v(x1, y1, z1), v(x0, y1, z1)}},
	}
}

// breakpoints collects the sorted distinct face coordinates on one axis.
func breakpoints(axis int, sets ...[]kernel.Cuboid) []float64 {
	var out []float64
	for _, set := range sets {
		for _, c := range set {
			out = append(out, c.Min[axis], c.Max[axis])
		}
	}
	sort.Float64s(out)
	uniq := out[:0]
	for i, v := range out {
		if i == 0 || v-uniq[len(uniq)-1] > eps {
			uniq = append(uniq, v)
		}
	}
	return uniq
}

func contains(set []kernel.Cuboid, p [3]float64) bool {
	for _, c := range set {
		if p[0] > c.Min[0] && p[0] < c.Max[0] &&
			p[1] > c.Min[1] && p[1] < c.Max[1] &&
			p[2] > c.Min[2] && p[2] < c.Max[2] {
			return true
		}
	}
	return false
}

// combine classifies every grid cell by the midpoint rule, then merges the
// kept cells back into maximal boxes.
func combine(a, b []kernel.Cuboid, keep func(inA, inB bool) bool) []kernel.Cuboid {
	xs := breakpoints(0, a, b)
	ys := breakpoints(1, a, b)
	zs := breakpoints(2, a, b)
	if len(xs) < 2 || len(ys) < 2 || len(zs) < 2 {
		return nil
	}
	g := newGrid(len(xs)-1, len(ys)-1, len(zs)-1)
	for i := 0; i < g.nx; i++ {
		for j := 0; j < g.ny; j++ {
			for k := 0; k < g.nz; k++ {
				mid := [3]float64{(xs[i] + xs[i+1]) / 2, (ys[j] + ys[j+1]) / 2, (zs[k] + zs[k+1]) / 2}
				g.set(i, j, k, keep(contains(a, mid), contains(b, mid)))
			}
		}
	}
	return g.merge(xs, ys, zs)
}

type grid struct {
	nx, ny, nz int
	filled     []bool
}

func newGrid(nx, ny, nz int) *grid {
	return &grid{nx: nx, ny: ny, nz: nz, filled: make([]bool, nx*ny*nz)}
}

func (g *grid) idx(i, j, k int) int     { return (k*g.ny+j)*g.nx + i }
func (g *grid) get(i, j, k int) bool    { return g.filled[g.idx(i, j, k)] }
func (g *grid) set(i, j, k int, v bool) { g.filled[g.idx(i, j, k)] = v }

// merge greedily grows boxes along X, then Y, then Z, clearing consumed
// cells. Output order follows the Z-major scan.
func (g *grid) merge(xs, ys, zs []float64) []kernel.Cuboid {
	var out []kernel.Cuboid
	for k := 0; k < g.nz; k++ {
		for j := 0; j < g.ny; j++ {
			for i := 0; i < g.nx; i++ {
				if !g.get(i, j, k) {
					continue
				}
				i1 := i + 1
				for i1 < g.nx && g.get(i1, j, k) {
					i1++
				}
				j1 := j + 1
				for j1 < g.ny && g.full(i, i1, j1, j1+1, k, k+1) {
					j1++
				}
				k1 := k + 1
				for k1 < g.nz && g.full(i, i1, j, j1, k1, k1+1) {
					k1++
				}
				g.clear(i, i1, j, j1, k, k1)
				out = append(out, kernel.Cuboid{
					Min: [3]float64{xs[i], ys[j], zs[k]},
					Max: [3]float64{xs[i1], ys[j1], zs[k1]},
				})
			}
		}
	}
	return out
}

func (g *grid) full(i0, i1, j0, j1, k0, k1 int) bool {
	for k := k0; k < k1; k++ {
		for j := j0; j < j1; j++ {
			for i := i0; i < i1; i++ {
				if !g.get(i, j, k) {
					return false
				}
			}
		}
	}
	return true
}

func (g *grid) clear(i0, i1, j0, j1, k0, k1 int) {
	for k := k0; k < k1; k++ {
		for j := j0; j < j1; j++ {
			for i := i0; i < i1; i++ {
				g.set(i, j, k, false)
			}
		}
	}
}
