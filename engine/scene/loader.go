package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cogentcore.org/core/math32"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/model"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/material"
)

var (
	// ErrUnsupportedFormat is returned for scene files other than .yaml, .yml and .toml.
	ErrUnsupportedFormat = errors.New("scene: unsupported scene file format")

	// ErrInvalidFile is returned when a scene file is well-formed but describes an impossible scene.
	ErrInvalidFile = errors.New("scene: invalid scene file")
)

// File is the on-disk scene description.
type File struct {
	Name      string         `toml:"name" yaml:"name"`
	Light     *LightSpec     `toml:"light" yaml:"light"`
	Meshes    []MeshSpec     `toml:"meshes" yaml:"meshes"`
	Materials []MaterialSpec `toml:"materials" yaml:"materials"`
	Entities  []EntitySpec   `toml:"entities" yaml:"entities"`
}

// LightSpec describes the directional light.
type LightSpec struct {
	Direction [3]float32 `toml:"direction" yaml:"direction"`
	Animate   bool       `toml:"animate" yaml:"animate"`
}

// MeshSpec describes one mesh asset. Exactly one of Sphere, Cube or the inline arrays is used.
type MeshSpec struct {
	Name      string       `toml:"name" yaml:"name"`
	Sphere    *SphereSpec  `toml:"sphere" yaml:"sphere"`
	Cube      *CubeSpec    `toml:"cube" yaml:"cube"`
	Positions [][3]float32 `toml:"positions" yaml:"positions"`
	Normals   [][3]float32 `toml:"normals" yaml:"normals"`
	Indices   []uint32     `toml:"indices" yaml:"indices"`
}

// SphereSpec generates a UV sphere.
type SphereSpec struct {
	Radius  float32 `toml:"radius" yaml:"radius"`
	Sectors int     `toml:"sectors" yaml:"sectors"`
	Stacks  int     `toml:"stacks" yaml:"stacks"`
}

// CubeSpec generates an axis-aligned cube.
type CubeSpec struct {
	Size float32 `toml:"size" yaml:"size"`
}

// MaterialSpec describes one material asset. Color names a built-in color and is
// overridden by BaseColor when both are given.
type MaterialSpec struct {
	Name        string      `toml:"name" yaml:"name"`
	Color       string      `toml:"color" yaml:"color"`
	BaseColor   *[4]float32 `toml:"base_color" yaml:"base_color"`
	Emissive    *[4]float32 `toml:"emissive" yaml:"emissive"`
	Roughness   *float32    `toml:"roughness" yaml:"roughness"`
	Metallic    *float32    `toml:"metallic" yaml:"metallic"`
	Reflectance *float32    `toml:"reflectance" yaml:"reflectance"`
}

// EntitySpec places one instance of a mesh with a material.
type EntitySpec struct {
	Mesh        string      `toml:"mesh" yaml:"mesh"`
	Material    string      `toml:"material" yaml:"material"`
	Translation [3]float32  `toml:"translation" yaml:"translation"`
	Rotation    [3]float32  `toml:"rotation" yaml:"rotation"`
	Scale       *[3]float32 `toml:"scale" yaml:"scale"`
}

// Loaded records the IDs assigned while applying a File to a Scene.
type Loaded struct {
	Meshes    map[string]common.AssetID
	Materials map[string]common.AssetID
	Entities  []common.EntityID
	Light     *LightSpec
}

// LoadFile reads and decodes a scene description. The format is chosen by extension.
//
// Parameters:
//   - path: the path of a .yaml, .yml or .toml file
//
// Returns:
//   - *File: the decoded description
//   - error: an error if the file cannot be read or decoded
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read %s: %w", path, err)
	}
	return ParseFile(data, filepath.Ext(path))
}

// ParseFile decodes a scene description from memory.
//
// Parameters:
//   - data: the encoded file contents
//   - ext: the file extension selecting the decoder (".yaml", ".yml" or ".toml")
//
// Returns:
//   - *File: the decoded description
//   - error: an error if the data cannot be decoded
func ParseFile(data []byte, ext string) (*File, error) {
	f := &File{}
	var err error
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, f)
	case ".toml":
		err = toml.Unmarshal(data, f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("scene: decode: %w", err)
	}
	return f, nil
}

// ApplyTo clears the scene and populates it from the description. Nothing is applied when
// the description is invalid.
//
// Parameters:
//   - s: the scene to populate
//
// Returns:
//   - *Loaded: the assigned IDs keyed by name
//   - error: a wrapped ErrInvalidFile describing the first problem found
func (f *File) ApplyTo(s Scene) (*Loaded, error) {
	meshes := make(map[string]*model.Mesh, len(f.Meshes))
	for i, spec := range f.Meshes {
		if spec.Name == "" {
			return nil, fmt.Errorf("%w: mesh %d has no name", ErrInvalidFile, i)
		}
		if _, dup := meshes[spec.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate mesh %q", ErrInvalidFile, spec.Name)
		}
		m, err := spec.build()
		if err != nil {
			return nil, err
		}
		meshes[spec.Name] = m
	}

	materials := make(map[string]material.Material, len(f.Materials))
	for i, spec := range f.Materials {
		if spec.Name == "" {
			return nil, fmt.Errorf("%w: material %d has no name", ErrInvalidFile, i)
		}
		if _, dup := materials[spec.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate material %q", ErrInvalidFile, spec.Name)
		}
		m, err := spec.build()
		if err != nil {
			return nil, err
		}
		materials[spec.Name] = m
	}

	for i, spec := range f.Entities {
		if _, ok := meshes[spec.Mesh]; !ok {
			return nil, fmt.Errorf("%w: entity %d references unknown mesh %q", ErrInvalidFile, i, spec.Mesh)
		}
		if _, ok := materials[spec.Material]; !ok {
			return nil, fmt.Errorf("%w: entity %d references unknown material %q", ErrInvalidFile, i, spec.Material)
		}
	}

	s.Clear()
	loaded := &Loaded{
		Meshes:    make(map[string]common.AssetID, len(meshes)),
		Materials: make(map[string]common.AssetID, len(materials)),
		Entities:  make([]common.EntityID, 0, len(f.Entities)),
		Light:     f.Light,
	}
	for _, spec := range f.Meshes {
		loaded.Meshes[spec.Name] = s.AddMesh(meshes[spec.Name])
	}
	for _, spec := range f.Materials {
		loaded.Materials[spec.Name] = s.AddMaterial(materials[spec.Name])
	}
	for _, spec := range f.Entities {
		id := s.Spawn(spec.transform(), loaded.Meshes[spec.Mesh], loaded.Materials[spec.Material])
		loaded.Entities = append(loaded.Entities, id)
	}

	logger.Noticef("scene %q loaded: %d meshes, %d materials, %d entities",
		f.Name, len(loaded.Meshes), len(loaded.Materials), len(loaded.Entities))
	return loaded, nil
}

func (spec MeshSpec) build() (*model.Mesh, error) {
	var m *model.Mesh
	switch {
	case spec.Sphere != nil:
		radius := spec.Sphere.Radius
		if radius <= 0 {
			radius = 1
		}
		m = model.NewUVSphere(radius, common.Coalesce(spec.Sphere.Sectors, 16), common.Coalesce(spec.Sphere.Stacks, 16))
	case spec.Cube != nil:
		size := spec.Cube.Size
		if size <= 0 {
			size = 1
		}
		m = model.NewCube(size)
	case len(spec.Positions) > 0:
		m = &model.Mesh{
			Positions: spec.Positions,
			Normals:   spec.Normals,
			Indices:   spec.Indices,
		}
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("%w: mesh %q: %w", ErrInvalidFile, spec.Name, err)
		}
	default:
		return nil, fmt.Errorf("%w: mesh %q has no sphere, cube or inline geometry", ErrInvalidFile, spec.Name)
	}
	m.Name = spec.Name
	return m, nil
}

func (spec MaterialSpec) build() (material.Material, error) {
	var options []material.MaterialBuilderOption
	if spec.Color != "" {
		c, ok := material.Colors[strings.ToLower(spec.Color)]
		if !ok {
			return nil, fmt.Errorf("%w: material %q uses unknown color %q", ErrInvalidFile, spec.Name, spec.Color)
		}
		options = append(options, material.WithBaseColor(c))
	}
	if spec.BaseColor != nil {
		options = append(options, material.WithBaseColor(*spec.BaseColor))
	}
	if spec.Emissive != nil {
		options = append(options, material.WithEmissive(*spec.Emissive))
	}
	if spec.Roughness != nil {
		options = append(options, material.WithRoughness(*spec.Roughness))
	}
	if spec.Metallic != nil {
		options = append(options, material.WithMetallic(*spec.Metallic))
	}
	if spec.Reflectance != nil {
		options = append(options, material.WithReflectance(*spec.Reflectance))
	}
	return material.NewMaterial(spec.Name, options...), nil
}

// transform converts the entity placement; Rotation holds XYZ Euler angles in radians.
func (spec EntitySpec) transform() Transform {
	t := IdentityTransform()
	t.Translation = math32.Vec3(spec.Translation[0], spec.Translation[1], spec.Translation[2])
	t.Rotation = math32.NewQuatEuler(math32.Vec3(spec.Rotation[0], spec.Rotation[1], spec.Rotation[2]))
	if spec.Scale != nil {
		t.Scale = math32.Vec3(spec.Scale[0], spec.Scale[1], spec.Scale[2])
	}
	return t
}
