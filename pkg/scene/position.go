package scene

import "fmt"

// AbsolutePosition returns the eagerly resolved position of the box's
// local origin. It is meaningful once the box is attached (directly or
// transitively) or placed as a root.
func (b *Box) AbsolutePosition() Vec3 { return b.position }

// Reference returns the box this one is dynamically attached to, or nil.
func (b *Box) Reference() *Box { return b.ref }

// Offset returns the attachment offset from the reference box.
func (b *Box) Offset() Vec3 { return b.offset }

// Attached returns the boxes dynamically attached to b, in attach order.
func (b *Box) Attached() []*Box {
	out := make([]*Box, len(b.attached))
	copy(out, b.attached)
	return out
}

// StaticChildren returns b's static children in insertion order.
func (b *Box) StaticChildren() []StaticChild {
	out := make([]StaticChild, len(b.static))
	copy(out, b.static)
	return out
}

// IsAttached reports whether b has an active dynamic reference.
func (b *Box) IsAttached() bool { return b.ref != nil }

// Attach positions b at offset (dx, dy, dz) from ref and keeps it there:
// whenever ref moves, b and its own attached subtree move with it. Any
// previous attachment of b is dropped. Propagation through b's subtree
// completes before Attach returns.
func (b *Box) Attach(ref *Box, dx, dy, dz float64) error {
	if ref == nil {
		return fmt.Errorf("scene: attach %s to nil: %w", b.Label(), ErrInvalidReference)
	}
	if ref == b {
		return fmt.Errorf("scene: attach %s to itself: %w", b.Label(), ErrInvalidReference)
	}
	if ref.dependsOn(b) {
		return fmt.Errorf("scene: attach %s to %s would create a cycle: %w", b.Label(), ref.Label(), ErrInvalidReference)
	}

	b.detach()
	b.ref = ref
	b.offset = Vec3{X: dx, Y: dy, Z: dz}
	ref.attached = append(ref.attached, b)
	b.update()
	return nil
}

// AttachRelative attaches b to ref with an offset given as fractions of
// ref's dimensions. The offset is computed once; ref's dimensions never
// change so it never needs recomputing.
func (b *Box) AttachRelative(ref *Box, fx, fy, fz float64) error {
	if ref == nil {
		return fmt.Errorf("scene: attach %s to nil: %w", b.Label(), ErrInvalidReference)
	}
	return b.Attach(ref, fx*ref.length, fy*ref.width, fz*ref.height)
}

// SetAbsolutePosition places a root box and propagates the move to its
// attached subtree. Attached boxes are positioned by their reference and
// cannot be placed directly.
func (b *Box) SetAbsolutePosition(x, y, z float64) error {
	if b.ref != nil {
		return fmt.Errorf("scene: place %s: attached to %s: %w", b.Label(), b.ref.Label(), ErrInvalidReference)
	}
	b.position = Vec3{X: x, Y: y, Z: z}
	b.propagate()
	return nil
}

// AddStaticChild appends child at a fixed offset from b. Nothing is
// propagated; static offsets are accumulated when the scene is exported.
func (b *Box) AddStaticChild(child *Box, dx, dy, dz float64) error {
	if child == nil {
		return fmt.Errorf("scene: add nil static child to %s: %w", b.Label(), ErrInvalidReference)
	}
	if child == b || child.staticallyContains(b) {
		return fmt.Errorf("scene: static child %s of %s would create a cycle: %w", child.Label(), b.Label(), ErrInvalidReference)
	}
	b.static = append(b.static, StaticChild{Box: child, Offset: Vec3{X: dx, Y: dy, Z: dz}})
	return nil
}

// dependsOn reports whether b sits in anc's attached subtree, by walking
// b's reference chain.
func (b *Box) dependsOn(anc *Box) bool {
	for r := b.ref; r != nil; r = r.ref {
		if r == anc {
			return true
		}
	}
	return false
}

func (b *Box) staticallyContains(target *Box) bool {
	for _, c := range b.static {
		if c.Box == target || c.Box.staticallyContains(target) {
			return true
		}
	}
	return false
}

func (b *Box) detach() {
	if b.ref == nil {
		return
	}
	siblings := b.ref.attached
	for i, c := range siblings {
		if c == b {
			b.ref.attached = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
	b.ref = nil
	b.offset = Vec3{}
}

// update recomputes b from its reference, then its subtree, pre-order.
func (b *Box) update() {
	if b.ref != nil {
		b.position = b.ref.position.Add(b.offset)
	}
	b.propagate()
}

func (b *Box) propagate() {
	for _, c := range b.attached {
		c.update()
	}
}
