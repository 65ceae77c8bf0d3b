package raytracer

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/kernel"
	"github.com/Carmen-Shannon/oxy-trace/engine/scene"
)

// MeshRange locates one unique mesh in the shared vertex and index arrays.
type MeshRange struct {
	VertexBase  uint32
	IndexOffset uint32
	IndexCount  uint32
}

// Tables are the flat, deduplicated arrays the kernel reads. A Tables value is immutable once the
// extractor publishes it; a rebuild produces a new value that may share untouched slices with the
// previous one.
type Tables struct {
	Vertices []kernel.GPUVertex
	Indices  []uint32
	// Meshes maps a mesh asset to its range; MeshOrder lists the assets in build order.
	Meshes    map[common.AssetID]MeshRange
	MeshOrder []common.AssetID

	Materials []kernel.GPUMaterial
	// MaterialSlots maps a material asset to its index in Materials; MaterialOrder lists the
	// assets in slot order.
	MaterialSlots map[common.AssetID]uint32
	MaterialOrder []common.AssetID

	Instances []kernel.GPUInstance
}

// Changes reports which tables an extraction rebuilt.
type Changes struct {
	Geometry  bool
	Materials bool
	Instances bool
}

// Any reports whether anything was rebuilt.
func (c Changes) Any() bool {
	return c.Geometry || c.Materials || c.Instances
}

// extractor is the implementation of the Extractor interface.
type extractor struct {
	tables    *Tables
	seen      scene.Revisions
	extracted bool
}

// Extractor turns scene snapshots into Tables. It compares each snapshot's revision counters with
// the last successfully extracted snapshot and rebuilds only the tables whose inputs changed.
// Not safe for concurrent use.
type Extractor interface {
	// Extract rebuilds the tables whose inputs changed since the last successful extraction.
	// On error the previously published tables stay current and the next call retries.
	//
	// Parameters:
	//   - snap: the snapshot to extract
	//
	// Returns:
	//   - Changes: the tables that were rebuilt
	//   - error: a wrapped model or ErrUnknownMesh/ErrUnknownMaterial error
	Extract(snap *scene.Snapshot) (Changes, error)

	// Tables returns the current tables. Callers must not modify them.
	//
	// Returns:
	//   - *Tables: the current tables
	Tables() *Tables

	// Invalidate forces the next Extract to rebuild every table.
	Invalidate()
}

var _ Extractor = &extractor{}

// NewExtractor creates an Extractor holding empty tables.
//
// Returns:
//   - Extractor: the extractor
func NewExtractor() Extractor {
	return &extractor{tables: emptyTables()}
}

func emptyTables() *Tables {
	return &Tables{
		Meshes:        make(map[common.AssetID]MeshRange),
		MaterialSlots: make(map[common.AssetID]uint32),
	}
}

func (e *extractor) Tables() *Tables {
	return e.tables
}

func (e *extractor) Invalidate() {
	e.extracted = false
}

func (e *extractor) Extract(snap *scene.Snapshot) (Changes, error) {
	if snap == nil {
		return Changes{}, ErrNilSnapshot
	}

	first := !e.extracted
	changes := Changes{
		Geometry:  first || snap.Revisions.Mesh != e.seen.Mesh,
		Materials: first || snap.Revisions.Material != e.seen.Material,
		Instances: first || snap.Revisions.Instance != e.seen.Instance,
	}

	// An instance edit can reference an asset that is stored but was unused at the last rebuild.
	if changes.Instances {
		for _, ent := range snap.Entities {
			if _, ok := e.tables.Meshes[ent.Mesh]; !ok {
				changes.Geometry = true
			}
			if _, ok := e.tables.MaterialSlots[ent.Material]; !ok {
				changes.Materials = true
			}
		}
	}
	if !changes.Any() {
		return changes, nil
	}

	next := *e.tables
	if changes.Geometry {
		if err := buildGeometry(snap, &next); err != nil {
			return Changes{}, err
		}
		logger.Debugf("rebuilt geometry: %d meshes, %d vertices, %d indices", len(next.MeshOrder), len(next.Vertices), len(next.Indices))
	}
	if changes.Materials {
		if err := buildMaterials(snap, &next); err != nil {
			return Changes{}, err
		}
		logger.Debugf("rebuilt materials: %d slots", len(next.Materials))
	}

	// Instance descriptors embed resolved ranges and slots, so any table rebuild invalidates them.
	changes.Instances = true
	if err := buildInstances(snap, &next); err != nil {
		return Changes{}, err
	}
	logger.Debugf("rebuilt instances: %d", len(next.Instances))

	e.tables = &next
	e.seen = snap.Revisions
	e.extracted = true
	return changes, nil
}

// buildGeometry rebuilds the shared vertex and index arrays from the meshes the entities
// reference, in first-seen order.
func buildGeometry(snap *scene.Snapshot, t *Tables) error {
	t.Vertices = nil
	t.Indices = nil
	t.Meshes = make(map[common.AssetID]MeshRange)
	t.MeshOrder = nil

	for _, ent := range snap.Entities {
		if _, done := t.Meshes[ent.Mesh]; done {
			continue
		}
		mesh, ok := snap.Mesh(ent.Mesh)
		if !ok || mesh == nil {
			return fmt.Errorf("%w: entity %d references mesh %d", ErrUnknownMesh, ent.ID, ent.Mesh)
		}
		if err := mesh.Validate(); err != nil {
			return fmt.Errorf("raytracer: entity %d mesh %d: %w", ent.ID, ent.Mesh, err)
		}
		if uint64(len(t.Vertices)+mesh.VertexCount()) > math.MaxUint32 || uint64(len(t.Indices)+len(mesh.Indices)) > math.MaxUint32 {
			return fmt.Errorf("%w: mesh %d", ErrTooLarge, ent.Mesh)
		}

		r := MeshRange{
			VertexBase:  uint32(len(t.Vertices)),
			IndexOffset: uint32(len(t.Indices)),
			IndexCount:  uint32(len(mesh.Indices)),
		}
		for i, p := range mesh.Positions {
			t.Vertices = append(t.Vertices, kernel.NewGPUVertex(p, mesh.Normals[i]))
		}
		for _, idx := range mesh.Indices {
			t.Indices = append(t.Indices, r.VertexBase+idx)
		}
		t.Meshes[ent.Mesh] = r
		t.MeshOrder = append(t.MeshOrder, ent.Mesh)
	}
	return nil
}

// buildMaterials rebuilds the flat material array from the materials the entities reference, in
// first-seen order.
func buildMaterials(snap *scene.Snapshot, t *Tables) error {
	t.Materials = nil
	t.MaterialSlots = make(map[common.AssetID]uint32)
	t.MaterialOrder = nil

	for _, ent := range snap.Entities {
		if _, done := t.MaterialSlots[ent.Material]; done {
			continue
		}
		m, ok := snap.Material(ent.Material)
		if !ok || m == nil {
			return fmt.Errorf("%w: entity %d references material %d", ErrUnknownMaterial, ent.ID, ent.Material)
		}
		t.MaterialSlots[ent.Material] = uint32(len(t.Materials))
		t.MaterialOrder = append(t.MaterialOrder, ent.Material)
		t.Materials = append(t.Materials, kernel.GPUMaterial{
			BaseColor:   m.BaseColor(),
			Emissive:    m.Emissive(),
			Roughness:   m.Roughness(),
			Metallic:    m.Metallic(),
			Reflectance: m.Reflectance(),
		})
	}
	return nil
}

// buildInstances resolves every entity through the current mesh and material tables.
func buildInstances(snap *scene.Snapshot, t *Tables) error {
	instances := make([]kernel.GPUInstance, 0, len(snap.Entities))
	for _, ent := range snap.Entities {
		r, ok := t.Meshes[ent.Mesh]
		if !ok {
			return fmt.Errorf("%w: entity %d mesh %d has no geometry range", ErrUnknownMesh, ent.ID, ent.Mesh)
		}
		slot, ok := t.MaterialSlots[ent.Material]
		if !ok {
			return fmt.Errorf("%w: entity %d material %d has no slot", ErrUnknownMaterial, ent.ID, ent.Material)
		}
		instances = append(instances, kernel.GPUInstance{
			Transform:   ent.Transform.Matrix(),
			IndexOffset: r.IndexOffset,
			IndexCount:  r.IndexCount,
			Material:    slot,
		})
	}
	t.Instances = instances
	return nil
}
