package scene

import (
	"cogentcore.org/core/math32"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/model"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/material"
)

// Transform is a decomposed affine transform: scale, then rotate, then translate.
type Transform struct {
	Translation math32.Vector3
	Rotation    math32.Quat
	Scale       math32.Vector3
}

// IdentityTransform returns a transform that leaves model space unchanged.
//
// Returns:
//   - Transform: the identity transform
func IdentityTransform() Transform {
	return Transform{
		Rotation: math32.NewQuat(0, 0, 0, 1),
		Scale:    math32.Vec3(1, 1, 1),
	}
}

// Translated returns the identity transform moved to the given position.
//
// Parameters:
//   - x, y, z: the world-space position
//
// Returns:
//   - Transform: the translated transform
func Translated(x, y, z float32) Transform {
	t := IdentityTransform()
	t.Translation = math32.Vec3(x, y, z)
	return t
}

// Matrix composes the transform into a column-major 4x4 model matrix.
//
// Returns:
//   - [16]float32: the model matrix
func (t Transform) Matrix() [16]float32 {
	var m math32.Matrix4
	m.SetTransform(t.Translation, t.Rotation, t.Scale)
	return [16]float32(m)
}

// Entity is one renderable scene object as seen by a snapshot.
type Entity struct {
	ID        common.EntityID
	Transform Transform
	Mesh      common.AssetID
	Material  common.AssetID
}

// Revisions are monotonically increasing change counters, one per mutation class.
// Two snapshots with equal counters in a class carry identical data for that class.
type Revisions struct {
	// Mesh is bumped whenever a mesh asset is added, replaced or removed.
	Mesh uint64
	// Material is bumped whenever a material asset is added, replaced or removed.
	Material uint64
	// Instance is bumped whenever an entity is spawned, despawned or changes transform, mesh or material.
	Instance uint64
}

// Snapshot is an immutable view of the scene at publish time.
// Consumers must not modify any field; the scene never mutates a published snapshot.
type Snapshot struct {
	// Entities are ordered by ascending ID.
	Entities  []Entity
	Meshes    map[common.AssetID]*model.Mesh
	Materials map[common.AssetID]material.Material
	Revisions Revisions
}

// Mesh looks up a mesh asset by ID.
//
// Parameters:
//   - id: the mesh asset ID
//
// Returns:
//   - *model.Mesh: the mesh, or nil
//   - bool: whether the asset exists
func (s *Snapshot) Mesh(id common.AssetID) (*model.Mesh, bool) {
	m, ok := s.Meshes[id]
	return m, ok
}

// Material looks up a material asset by ID.
//
// Parameters:
//   - id: the material asset ID
//
// Returns:
//   - material.Material: the material, or nil
//   - bool: whether the asset exists
func (s *Snapshot) Material(id common.AssetID) (material.Material, bool) {
	m, ok := s.Materials[id]
	return m, ok
}
