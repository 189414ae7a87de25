package scene

import (
	"fmt"

	"github.com/google/uuid"
)

// Scene is a forest of independent root boxes plus an index of every box
// registered while building it. Roots are the export entry points; the
// remaining boxes are reached through static and dynamic edges.
type Scene struct {
	boxes     map[uuid.UUID]*Box
	order     []*Box
	roots     []*Box
	nameIndex map[string]*Box
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{
		boxes:     make(map[uuid.UUID]*Box),
		nameIndex: make(map[string]*Box),
	}
}

// NewBox constructs a box and registers it with the scene.
func (s *Scene) NewBox(name string, length, width, height float64, material string) (*Box, error) {
	b, err := NewBox(name, length, width, height, material)
	if err != nil {
		return nil, err
	}
	s.Add(b)
	return b, nil
}

// Add registers b and returns it. Adding the same box twice is a no-op. A
// later box with an existing name takes over the name index entry.
func (s *Scene) Add(b *Box) *Box {
	if _, ok := s.boxes[b.ID]; ok {
		return b
	}
	s.boxes[b.ID] = b
	s.order = append(s.order, b)
	if b.Name != "" {
		s.nameIndex[b.Name] = b
	}
	return b
}

// AddRoot registers b as an independent root of the forest.
func (s *Scene) AddRoot(b *Box) {
	s.Add(b)
	for _, r := range s.roots {
		if r == b {
			return
		}
	}
	s.roots = append(s.roots, b)
}

// Roots returns the root boxes in the order they were added.
func (s *Scene) Roots() []*Box {
	out := make([]*Box, len(s.roots))
	copy(out, s.roots)
	return out
}

// Boxes returns every registered box in registration order.
func (s *Scene) Boxes() []*Box {
	out := make([]*Box, len(s.order))
	copy(out, s.order)
	return out
}

// Get returns the box with the given ID, or nil.
func (s *Scene) Get(id uuid.UUID) *Box {
	return s.boxes[id]
}

// Lookup returns the box with the given name, or nil.
func (s *Scene) Lookup(name string) *Box {
	return s.nameIndex[name]
}

// MustLookup returns the box with the given name, or panics.
func (s *Scene) MustLookup(name string) *Box {
	b := s.Lookup(name)
	if b == nil {
		panic(fmt.Sprintf("scene: no box named %q", name))
	}
	return b
}

// BoxCount returns the number of registered boxes.
func (s *Scene) BoxCount() int {
	return len(s.order)
}
