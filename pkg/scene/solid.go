package scene

// Role tells what a resolved solid represents.
type Role int

const (
	RoleWhole     Role = iota // the unmodified box
	RoleFloorCap              // full footprint beyond the cut
	RoleNearCap               // full footprint before a recessed cut
	RoleLeftJamb              // material with x < aperture
	RoleRightJamb             // material with x > aperture
	RoleFrontJamb             // material with y < aperture, aperture length only
	RoleBackJamb              // material with y > aperture, aperture length only
	RoleCell                  // exact boolean result cell
	RoleMarker                // placeholder for an aperture that could not be cut
)

func (r Role) String() string {
	switch r {
	case RoleWhole:
		return "whole"
	case RoleFloorCap:
		return "floor-cap"
	case RoleNearCap:
		return "near-cap"
	case RoleLeftJamb:
		return "left-jamb"
	case RoleRightJamb:
		return "right-jamb"
	case RoleFrontJamb:
		return "front-jamb"
	case RoleBackJamb:
		return "back-jamb"
	case RoleCell:
		return "cell"
	case RoleMarker:
		return "marker"
	default:
		return "unknown"
	}
}

// MarshalText encodes the role by name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Solid is an axis-aligned sub-box of a resolved primitive, positioned in
// the owning box's local frame.
type Solid struct {
	Length      float64 `json:"length"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	LocalOffset Vec3    `json:"localOffset"`
	Role        Role    `json:"role"`
	Material    string  `json:"material,omitempty"` // overrides the box material when set
}

// Volume returns the solid's volume.
func (s Solid) Volume() float64 {
	return s.Length * s.Width * s.Height
}

// Max returns the solid's far corner in the local frame.
func (s Solid) Max() Vec3 {
	return s.LocalOffset.Add(Vec3{X: s.Length, Y: s.Width, Z: s.Height})
}

// WholeSolid returns b as a single solid at the local origin.
func WholeSolid(b *Box) Solid {
	return Solid{Length: b.length, Width: b.width, Height: b.height, Role: RoleWhole}
}
