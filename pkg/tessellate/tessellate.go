// Package tessellate turns exported geometry records into triangle meshes
// using a geometry kernel. One mesh is produced per record, plus one per
// fallback marker so markers can carry their own material.
package tessellate

import (
	"fmt"

	"github.com/chazu/masonry/pkg/export"
	"github.com/chazu/masonry/pkg/kernel"
	"github.com/chazu/masonry/pkg/scene"
)

// Records meshes every record with k. The records are read-only.
func Records(records []export.Record, k kernel.Kernel) ([]*kernel.Mesh, error) {
	var meshes []*kernel.Mesh
	for _, r := range records {
		collected, err := record(k, r)
		if err != nil {
			return nil, fmt.Errorf("tessellate: record %s: %w", partName(r), err)
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}

func record(k kernel.Kernel, r export.Record) ([]*kernel.Mesh, error) {
	var body, markers []scene.Solid
	for _, s := range r.Solids {
		if s.Role == scene.RoleMarker {
			markers = append(markers, s)
		} else {
			body = append(body, s)
		}
	}

	var meshes []*kernel.Mesh
	shape := r.Shape
	if shape == nil && len(body) > 0 {
		local, err := union(k, body)
		if err != nil {
			return nil, err
		}
		shape = place(k, local, r)
	}
	if shape != nil {
		mesh, err := k.ToMesh(shape)
		if err != nil {
			return nil, fmt.Errorf("ToMesh failed: %w", err)
		}
		mesh.PartName = partName(r)
		mesh.Material = r.Material
		meshes = append(meshes, mesh)
	}

	for i, m := range markers {
		local, err := solid(k, m)
		if err != nil {
			return nil, fmt.Errorf("marker %d: %w", i, err)
		}
		mesh, err := k.ToMesh(place(k, local, r))
		if err != nil {
			return nil, fmt.Errorf("marker %d: ToMesh failed: %w", i, err)
		}
		mesh.PartName = fmt.Sprintf("%s#marker%d", partName(r), i)
		mesh.Material = m.Material
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// union combines solids in the record's local frame, where every kernel
// can still treat them as axis aligned.
func union(k kernel.Kernel, solids []scene.Solid) (kernel.Solid, error) {
	var acc kernel.Solid
	for _, s := range solids {
		next, err := solid(k, s)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			acc = next
			continue
		}
		if acc, err = k.Union(acc, next); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func solid(k kernel.Kernel, s scene.Solid) (kernel.Solid, error) {
	out, err := k.Box(s.Length, s.Width, s.Height)
	if err != nil {
		return nil, err
	}
	if !s.LocalOffset.IsZero() {
		out = k.Translate(out, s.LocalOffset.X, s.LocalOffset.Y, s.LocalOffset.Z)
	}
	return out, nil
}

// place applies the record's own rotation first, then its position.
func place(k kernel.Kernel, local kernel.Solid, r export.Record) kernel.Solid {
	out := local
	if rot := r.Rotation; rot != [3]float64{} {
		out = k.Rotate(out, rot[0], rot[1], rot[2])
	}
	if pos := r.Position; pos != [3]float64{} {
		out = k.Translate(out, pos[0], pos[1], pos[2])
	}
	return out
}

// partName prefers the box name and falls back to a short ID.
func partName(r export.Record) string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID.String()[:8]
}
