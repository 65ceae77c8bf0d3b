package material

// Named linear RGBA colors used by the demo scene and scene files.
var (
	ColorWhite = [4]float32{1, 1, 1, 1}
	ColorBlack = [4]float32{0, 0, 0, 1}
	ColorRed   = [4]float32{1, 0, 0, 1}
	ColorBeige = [4]float32{0.96, 0.96, 0.86, 1}
)

// Colors maps the lower-case names accepted in scene files to their RGBA values.
var Colors = map[string][4]float32{
	"white": ColorWhite,
	"black": ColorBlack,
	"red":   ColorRed,
	"beige": ColorBeige,
}

// material is the implementation of the Material interface.
type material struct {
	name        string
	baseColor   [4]float32
	emissive    [4]float32
	roughness   float32
	metallic    float32
	reflectance float32
}

// Material defines the interface for a physically based surface description.
//
// Materials are plain assets owned by the scene. The raytracer never holds a Material past
// extraction; it copies the scalar properties into a GPU record keyed by the material's asset ID.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the albedo RGBA color of the material.
	//
	// Returns:
	//   - [4]float32: the base color as RGBA values
	BaseColor() [4]float32

	// Emissive retrieves the emitted RGBA radiance of the material.
	// Black (the default) means the surface does not emit light.
	//
	// Returns:
	//   - [4]float32: the emissive color
	Emissive() [4]float32

	// Roughness retrieves the perceptual roughness of the material.
	// A value of 0.0 represents a mirror-like surface, 1.0 a fully diffuse one.
	//
	// Returns:
	//   - float32: the roughness factor
	Roughness() float32

	// Metallic retrieves the metallic factor of the material.
	// A value of 0.0 represents a dielectric surface, 1.0 represents a fully metallic surface.
	//
	// Returns:
	//   - float32: the metallic factor
	Metallic() float32

	// Reflectance retrieves the specular reflectance of dielectric surfaces.
	//
	// Returns:
	//   - float32: the reflectance factor
	Reflectance() float32

	// With returns a copy of the material with the given options applied. The receiver is unchanged.
	//
	// Parameters:
	//   - options: the options to apply to the copy
	//
	// Returns:
	//   - Material: the modified copy
	With(options ...MaterialBuilderOption) Material
}

var _ Material = &material{}

// NewMaterial creates a new Material. Unset properties use the defaults of a white,
// non-emissive dielectric with 0.5 roughness and 0.5 reflectance.
//
// Parameters:
//   - name: the material identifier
//   - options: functional options configuring the surface
//
// Returns:
//   - Material: the new material
func NewMaterial(name string, options ...MaterialBuilderOption) Material {
	m := &material{
		name:        name,
		baseColor:   ColorWhite,
		emissive:    ColorBlack,
		roughness:   0.5,
		reflectance: 0.5,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) Emissive() [4]float32 {
	return m.emissive
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) Metallic() float32 {
	return m.metallic
}

func (m *material) Reflectance() float32 {
	return m.reflectance
}

func (m *material) With(options ...MaterialBuilderOption) Material {
	c := *m
	for _, opt := range options {
		opt(&c)
	}
	return &c
}
