package model

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAttribute is returned when a mesh lacks position, normal or index data.
	// No partial mesh can be ray traced, so callers treat this as fatal.
	ErrMissingAttribute = errors.New("model: mesh is missing a required attribute")

	// ErrAttributeMismatch is returned when positions and normals have different lengths.
	ErrAttributeMismatch = errors.New("model: mesh position and normal counts differ")

	// ErrIndexOutOfRange is returned when an index references a vertex the mesh does not have.
	ErrIndexOutOfRange = errors.New("model: mesh index out of range")
)

// Mesh is an indexed triangle mesh in model space.
// Positions and Normals are parallel arrays; Indices reference them in triangle-list order.
type Mesh struct {
	// Name is a debug label.
	Name string
	// Positions holds one model-space position per vertex.
	Positions [][3]float32
	// Normals holds one unit normal per vertex.
	Normals [][3]float32
	// Indices holds three vertex indices per triangle.
	Indices []uint32
}

// VertexCount returns the number of vertices in the mesh.
//
// Returns:
//   - int: the vertex count
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// Validate checks that the mesh carries every attribute the ray tracer needs and that
// all indices stay inside the vertex range.
//
// Returns:
//   - error: a wrapped ErrMissingAttribute, ErrAttributeMismatch or ErrIndexOutOfRange, or nil
func (m *Mesh) Validate() error {
	switch {
	case len(m.Positions) == 0:
		return fmt.Errorf("%w: %q has no positions", ErrMissingAttribute, m.Name)
	case len(m.Normals) == 0:
		return fmt.Errorf("%w: %q has no normals", ErrMissingAttribute, m.Name)
	case len(m.Indices) == 0:
		return fmt.Errorf("%w: %q has no indices", ErrMissingAttribute, m.Name)
	}
	if len(m.Positions) != len(m.Normals) {
		return fmt.Errorf("%w: %q has %d positions and %d normals", ErrAttributeMismatch, m.Name, len(m.Positions), len(m.Normals))
	}
	vertexCount := uint32(len(m.Positions))
	for i, idx := range m.Indices {
		if idx >= vertexCount {
			return fmt.Errorf("%w: %q index %d is %d, vertex count %d", ErrIndexOutOfRange, m.Name, i, idx, vertexCount)
		}
	}
	return nil
}

// Clone returns a deep copy of the mesh so snapshots never share slices with a live asset.
//
// Returns:
//   - *Mesh: the copy
func (m *Mesh) Clone() *Mesh {
	if m == nil {
		return nil
	}
	return &Mesh{
		Name:      m.Name,
		Positions: append([][3]float32(nil), m.Positions...),
		Normals:   append([][3]float32(nil), m.Normals...),
		Indices:   append([]uint32(nil), m.Indices...),
	}
}
