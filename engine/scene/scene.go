package scene

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/log"
	"github.com/Carmen-Shannon/oxy-trace/engine/model"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/material"
)

var (
	// ErrUnknownEntity is returned when a mutation targets an entity that does not exist.
	ErrUnknownEntity = errors.New("scene: unknown entity")

	// ErrUnknownAsset is returned when an update targets an asset that does not exist.
	ErrUnknownAsset = errors.New("scene: unknown asset")

	// ErrNilAsset is returned when a nil mesh or material is stored.
	ErrNilAsset = errors.New("scene: nil asset")
)

var logger = log.New("scene")

// Scene is the mutable, authoritative scene state. Mutations bump the revision counter of their
// class; Publish freezes the current state into an immutable Snapshot that readers obtain
// through Latest without locking.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// AddMesh stores a copy of the mesh and returns its new asset ID. The mesh is not validated
	// here; the raytracer rejects unusable meshes during extraction.
	//
	// Parameters:
	//   - mesh: the mesh to store
	//
	// Returns:
	//   - common.AssetID: the assigned ID, or common.InvalidAssetID if mesh is nil
	AddMesh(mesh *model.Mesh) common.AssetID

	// UpdateMesh replaces the mesh stored under id with a copy of mesh.
	//
	// Parameters:
	//   - id: the mesh asset ID
	//   - mesh: the replacement mesh
	//
	// Returns:
	//   - error: ErrUnknownAsset if no mesh is stored under id, ErrNilAsset if mesh is nil
	UpdateMesh(id common.AssetID, mesh *model.Mesh) error

	// RemoveMesh deletes a mesh asset. Entities still referencing it fail extraction.
	//
	// Parameters:
	//   - id: the mesh asset ID
	//
	// Returns:
	//   - bool: whether a mesh was removed
	RemoveMesh(id common.AssetID) bool

	// AddMaterial stores a material and returns its new asset ID.
	//
	// Parameters:
	//   - m: the material to store
	//
	// Returns:
	//   - common.AssetID: the assigned ID, or common.InvalidAssetID if m is nil
	AddMaterial(m material.Material) common.AssetID

	// UpdateMaterial replaces the material stored under id.
	//
	// Parameters:
	//   - id: the material asset ID
	//   - m: the replacement material
	//
	// Returns:
	//   - error: ErrUnknownAsset if no material is stored under id, ErrNilAsset if m is nil
	UpdateMaterial(id common.AssetID, m material.Material) error

	// RemoveMaterial deletes a material asset. Entities still referencing it fail extraction.
	//
	// Parameters:
	//   - id: the material asset ID
	//
	// Returns:
	//   - bool: whether a material was removed
	RemoveMaterial(id common.AssetID) bool

	// Spawn adds an entity and returns its ID. IDs increase monotonically and are never reused.
	//
	// Parameters:
	//   - t: the entity transform
	//   - mesh: the mesh asset the entity renders
	//   - mat: the material asset the entity renders with
	//
	// Returns:
	//   - common.EntityID: the new entity ID
	Spawn(t Transform, mesh, mat common.AssetID) common.EntityID

	// Despawn removes an entity.
	//
	// Parameters:
	//   - id: the entity ID
	//
	// Returns:
	//   - bool: whether an entity was removed
	Despawn(id common.EntityID) bool

	// SetTransform moves an entity.
	//
	// Parameters:
	//   - id: the entity ID
	//   - t: the new transform
	//
	// Returns:
	//   - error: ErrUnknownEntity if the entity does not exist
	SetTransform(id common.EntityID, t Transform) error

	// SetMesh changes the mesh an entity renders.
	//
	// Parameters:
	//   - id: the entity ID
	//   - mesh: the new mesh asset ID
	//
	// Returns:
	//   - error: ErrUnknownEntity if the entity does not exist
	SetMesh(id common.EntityID, mesh common.AssetID) error

	// SetMaterial changes the material an entity renders with.
	//
	// Parameters:
	//   - id: the entity ID
	//   - mat: the new material asset ID
	//
	// Returns:
	//   - error: ErrUnknownEntity if the entity does not exist
	SetMaterial(id common.EntityID, mat common.AssetID) error

	// Entity returns the current state of an entity.
	//
	// Parameters:
	//   - id: the entity ID
	//
	// Returns:
	//   - Entity: the entity
	//   - bool: whether the entity exists
	Entity(id common.EntityID) (Entity, bool)

	// Count returns the number of live entities.
	Count() int

	// Clear removes every entity and asset, bumping all revision counters.
	// IDs handed out before Clear are not reused.
	Clear()

	// Revisions returns the current revision counters.
	Revisions() Revisions

	// Publish freezes the current state into a new Snapshot and makes it the latest.
	//
	// Returns:
	//   - *Snapshot: the published snapshot
	Publish() *Snapshot

	// Latest returns the most recently published snapshot, or nil if Publish was never called.
	//
	// Returns:
	//   - *Snapshot: the latest snapshot or nil
	Latest() *Snapshot
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.RWMutex

	name        string
	autoPublish bool

	entities  map[common.EntityID]*Entity
	meshes    map[common.AssetID]*model.Mesh
	materials map[common.AssetID]material.Material

	nextEntity common.EntityID
	nextAsset  common.AssetID
	revisions  Revisions

	latest atomic.Pointer[Snapshot]
}

var _ Scene = &scene{}

// NewScene creates an empty Scene.
//
// Parameters:
//   - options: a variadic list of SceneBuilderOption functions to configure the Scene
//
// Returns:
//   - Scene: the new scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:         &sync.RWMutex{},
		name:       "scene",
		entities:   make(map[common.EntityID]*Entity),
		meshes:     make(map[common.AssetID]*model.Mesh),
		materials:  make(map[common.AssetID]material.Material),
		nextEntity: 1,
		nextAsset:  1,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) AddMesh(mesh *model.Mesh) common.AssetID {
	if mesh == nil {
		logger.Warning("nil mesh not added")
		return common.InvalidAssetID
	}
	s.mu.Lock()
	id := s.allocAsset()
	s.meshes[id] = mesh.Clone()
	s.revisions.Mesh++
	s.mu.Unlock()

	logger.Debugf("mesh %d added (%q)", id, mesh.Name)
	s.afterMutation()
	return id
}

func (s *scene) UpdateMesh(id common.AssetID, mesh *model.Mesh) error {
	if mesh == nil {
		return fmt.Errorf("%w: mesh %d", ErrNilAsset, id)
	}
	s.mu.Lock()
	if _, ok := s.meshes[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: mesh %d", ErrUnknownAsset, id)
	}
	s.meshes[id] = mesh.Clone()
	s.revisions.Mesh++
	s.mu.Unlock()

	s.afterMutation()
	return nil
}

func (s *scene) RemoveMesh(id common.AssetID) bool {
	s.mu.Lock()
	_, ok := s.meshes[id]
	if ok {
		delete(s.meshes, id)
		s.revisions.Mesh++
	}
	s.mu.Unlock()

	if ok {
		s.afterMutation()
	}
	return ok
}

func (s *scene) AddMaterial(m material.Material) common.AssetID {
	if m == nil {
		logger.Warning("nil material not added")
		return common.InvalidAssetID
	}
	s.mu.Lock()
	id := s.allocAsset()
	s.materials[id] = m
	s.revisions.Material++
	s.mu.Unlock()

	logger.Debugf("material %d added (%q)", id, m.Name())
	s.afterMutation()
	return id
}

func (s *scene) UpdateMaterial(id common.AssetID, m material.Material) error {
	if m == nil {
		return fmt.Errorf("%w: material %d", ErrNilAsset, id)
	}
	s.mu.Lock()
	if _, ok := s.materials[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: material %d", ErrUnknownAsset, id)
	}
	s.materials[id] = m
	s.revisions.Material++
	s.mu.Unlock()

	s.afterMutation()
	return nil
}

func (s *scene) RemoveMaterial(id common.AssetID) bool {
	s.mu.Lock()
	_, ok := s.materials[id]
	if ok {
		delete(s.materials, id)
		s.revisions.Material++
	}
	s.mu.Unlock()

	if ok {
		s.afterMutation()
	}
	return ok
}

func (s *scene) Spawn(t Transform, mesh, mat common.AssetID) common.EntityID {
	s.mu.Lock()
	id := s.nextEntity
	s.nextEntity++
	s.entities[id] = &Entity{ID: id, Transform: t, Mesh: mesh, Material: mat}
	s.revisions.Instance++
	s.mu.Unlock()

	s.afterMutation()
	return id
}

func (s *scene) Despawn(id common.EntityID) bool {
	s.mu.Lock()
	_, ok := s.entities[id]
	if ok {
		delete(s.entities, id)
		s.revisions.Instance++
	}
	s.mu.Unlock()

	if ok {
		s.afterMutation()
	}
	return ok
}

func (s *scene) SetTransform(id common.EntityID, t Transform) error {
	return s.mutateEntity(id, func(e *Entity) { e.Transform = t })
}

func (s *scene) SetMesh(id common.EntityID, mesh common.AssetID) error {
	return s.mutateEntity(id, func(e *Entity) { e.Mesh = mesh })
}

func (s *scene) SetMaterial(id common.EntityID, mat common.AssetID) error {
	return s.mutateEntity(id, func(e *Entity) { e.Material = mat })
}

func (s *scene) Entity(id common.EntityID) (Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	if !ok {
		return Entity{}, false
	}
	return *e, true
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

func (s *scene) Clear() {
	s.mu.Lock()
	clear(s.entities)
	clear(s.meshes)
	clear(s.materials)
	s.revisions.Mesh++
	s.revisions.Material++
	s.revisions.Instance++
	s.mu.Unlock()

	logger.Infof("scene %q cleared", s.name)
	s.afterMutation()
}

func (s *scene) Revisions() Revisions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revisions
}

func (s *scene) Publish() *Snapshot {
	s.mu.RLock()
	snap := &Snapshot{
		Entities:  make([]Entity, 0, len(s.entities)),
		Meshes:    maps.Clone(s.meshes),
		Materials: maps.Clone(s.materials),
		Revisions: s.revisions,
	}
	for _, id := range slices.Sorted(maps.Keys(s.entities)) {
		snap.Entities = append(snap.Entities, *s.entities[id])
	}
	s.mu.RUnlock()

	s.latest.Store(snap)
	return snap
}

func (s *scene) Latest() *Snapshot {
	return s.latest.Load()
}

// mutateEntity applies fn to an entity under the write lock and bumps the instance revision.
func (s *scene) mutateEntity(id common.EntityID, fn func(*Entity)) error {
	s.mu.Lock()
	e, ok := s.entities[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}
	fn(e)
	s.revisions.Instance++
	s.mu.Unlock()

	s.afterMutation()
	return nil
}

// allocAsset must be called with the write lock held.
func (s *scene) allocAsset() common.AssetID {
	id := s.nextAsset
	s.nextAsset++
	return id
}

func (s *scene) afterMutation() {
	if s.autoPublish {
		s.Publish()
	}
}
