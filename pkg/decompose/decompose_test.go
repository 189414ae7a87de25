package decompose

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/masonry/pkg/scene"
)

const eps = 1e-9

func roles(solids []scene.Solid) []scene.Role {
	out := make([]scene.Role, len(solids))
	for i, s := range solids {
		out[i] = s.Role
	}
	return out
}

func TestBoxWithoutAperturesIsWhole(t *testing.T) {
	b := scene.MustBox("slab", 4, 3, 2, "stone")
	got := Box(b)
	require.Len(t, got, 1)
	assert.Equal(t, scene.Solid{Length: 4, Width: 3, Height: 2, Role: scene.RoleWhole}, got[0])
}

func TestFlushAperture(t *testing.T) {
	tests := []struct {
		depth    float64
		wantCaps int
	}{
		{depth: 10, wantCaps: 0},
		{depth: 6, wantCaps: 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("depth %g", tt.depth), func(t *testing.T) {
			b := scene.MustBox("frame", 10, 10, 10, "wood")
			_, err := b.MakeHole(0, 0, 10, 10, tt.depth)
			require.NoError(t, err)

			got := Box(b)
			require.Len(t, got, tt.wantCaps)
			for _, s := range got {
				assert.Equal(t, scene.RoleFloorCap, s.Role)
				assert.Equal(t, scene.Vec3{Z: tt.depth}, s.LocalOffset)
				assert.InDelta(t, 10-tt.depth, s.Height, eps)
			}
		})
	}
}

func TestCentredApertureTiling(t *testing.T) {
	for _, tc := range []struct{ h, d float64 }{{10, 8}, {10, 10}, {3, 1}} {
		t.Run(fmt.Sprintf("h=%g d=%g", tc.h, tc.d), func(t *testing.T) {
			b := scene.MustBox("wall", 10, 10, tc.h, "brick")
			a, err := b.MakeHole(2, 2, 4, 4, tc.d)
			require.NoError(t, err)

			got := Box(b)
			byRole := make(map[scene.Role]scene.Solid)
			for _, s := range got {
				byRole[s.Role] = s
			}

			floor, hasCap := byRole[scene.RoleFloorCap]
			assert.Equal(t, tc.d < tc.h, hasCap)
			if hasCap {
				assert.Equal(t, scene.Solid{Length: 10, Width: 10, Height: tc.h - tc.d,
					LocalOffset: scene.Vec3{Z: tc.d}, Role: scene.RoleFloorCap}, floor)
			}

			assert.Equal(t, scene.Solid{Length: 2, Width: 10, Height: tc.d,
				Role: scene.RoleLeftJamb}, byRole[scene.RoleLeftJamb])
			assert.Equal(t, scene.Solid{Length: 4, Width: 10, Height: tc.d,
				LocalOffset: scene.Vec3{X: 6}, Role: scene.RoleRightJamb}, byRole[scene.RoleRightJamb])
			assert.Equal(t, scene.Solid{Length: 4, Width: 2, Height: tc.d,
				LocalOffset: scene.Vec3{X: 2}, Role: scene.RoleFrontJamb}, byRole[scene.RoleFrontJamb])
			assert.Equal(t, scene.Solid{Length: 4, Width: 4, Height: tc.d,
				LocalOffset: scene.Vec3{X: 2, Y: 6}, Role: scene.RoleBackJamb}, byRole[scene.RoleBackJamb])

			assert.InDelta(t, b.Volume()-a.Volume(), Volume(got), eps)
		})
	}
}

// The lateral jambs cover the corner columns; the longitudinal jambs must
// stop at the aperture's own length. Changing this changes rendered
// geometry of existing scenes.
func TestJambAsymmetryRegression(t *testing.T) {
	b := scene.MustBox("frame", 8, 6, 1, "wood")
	_, err := b.MakeHole(1, 1, 5, 3, 1)
	require.NoError(t, err)

	got := Box(b)
	assert.Equal(t, []scene.Role{
		scene.RoleLeftJamb, scene.RoleRightJamb, scene.RoleFrontJamb, scene.RoleBackJamb,
	}, roles(got))

	assert.Equal(t, 6.0, got[0].Width, "left jamb spans full box width")
	assert.Equal(t, 6.0, got[1].Width, "right jamb spans full box width")
	assert.Equal(t, 5.0, got[2].Length, "front jamb spans aperture length only")
	assert.Equal(t, 5.0, got[3].Length, "back jamb spans aperture length only")
	assert.Equal(t, 1.0, got[2].LocalOffset.X)
	assert.Equal(t, 2.0, got[3].Width)
}

func TestPiecesArePairwiseDisjoint(t *testing.T) {
	b := scene.MustBox("wall", 12, 9, 5, "brick")
	_, err := b.MakeHole(3, 2, 4, 5, 3)
	require.NoError(t, err)

	got := Box(b)
	for i := range got {
		for j := i + 1; j < len(got); j++ {
			assert.False(t, overlaps(got[i], got[j]), "%s overlaps %s", got[i].Role, got[j].Role)
		}
	}
}

func TestRecessedAperture(t *testing.T) {
	b := scene.MustBox("niche", 10, 4, 10, "stone")
	a, err := b.MakeRecessedHole(2, 0, 3, 6, 4, 5)
	require.NoError(t, err)

	got := Box(b)
	assert.Equal(t, []scene.Role{
		scene.RoleNearCap, scene.RoleFloorCap, scene.RoleLeftJamb, scene.RoleRightJamb,
	}, roles(got))

	assert.Equal(t, scene.Solid{Length: 10, Width: 4, Height: 3, Role: scene.RoleNearCap}, got[0])
	assert.Equal(t, scene.Solid{Length: 10, Width: 4, Height: 2,
		LocalOffset: scene.Vec3{Z: 8}, Role: scene.RoleFloorCap}, got[1])
	assert.Equal(t, scene.Vec3{Z: 3}, got[2].LocalOffset)
	assert.Equal(t, scene.Vec3{X: 8, Z: 3}, got[3].LocalOffset)

	assert.InDelta(t, b.Volume()-a.Volume(), Volume(got), eps)
}

func TestMultipleAperturesConcatenate(t *testing.T) {
	b := scene.MustBox("wall", 20, 1, 10, "brick")
	_, err := b.MakeHole(2, 0, 2, 1, 10)
	require.NoError(t, err)
	_, err = b.MakeHole(10, 0, 3, 1, 10)
	require.NoError(t, err)

	got := Box(b)
	assert.Equal(t, append(Aperture(b.Dimensions(), b.Apertures()[0]),
		Aperture(b.Dimensions(), b.Apertures()[1])...), got)
}

func TestZeroSizedPiecesAreSkipped(t *testing.T) {
	got := Aperture(scene.Vec3{X: 10, Y: 10, Z: 10}, scene.Aperture{X: 5, Y: 0, Length: 0, Width: 10, Depth: 10})
	assert.Equal(t, []scene.Role{scene.RoleLeftJamb, scene.RoleRightJamb}, roles(got))
	assert.InDelta(t, 1000.0, Volume(got), eps)
}

func overlaps(a, b scene.Solid) bool {
	amin, amax := a.LocalOffset, a.Max()
	bmin, bmax := b.LocalOffset, b.Max()
	return amin.X < bmax.X && bmin.X < amax.X &&
		amin.Y < bmax.Y && bmin.Y < amax.Y &&
		amin.Z < bmax.Z && bmin.Z < amax.Z
}
