package material

// MaterialBuilderOption is a functional option used to configure a Material during construction.
type MaterialBuilderOption func(*material)

// WithName renames the material. Mostly useful with Material.With when deriving a variant.
//
// Parameters:
//   - name: the new identifier
//
// Returns:
//   - MaterialBuilderOption: the option
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithBaseColor sets the albedo color.
//
// Parameters:
//   - color: the RGBA base color
//
// Returns:
//   - MaterialBuilderOption: a function that sets the base color
func WithBaseColor(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = color
	}
}

// WithEmissive sets the emitted radiance.
//
// Parameters:
//   - color: the RGBA emissive color
//
// Returns:
//   - MaterialBuilderOption: a function that sets the emissive color
func WithEmissive(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.emissive = color
	}
}

// WithRoughness sets the perceptual roughness, clamped to [0, 1].
//
// Parameters:
//   - roughness: the roughness factor
//
// Returns:
//   - MaterialBuilderOption: a function that sets the roughness
func WithRoughness(roughness float32) MaterialBuilderOption {
	return func(m *material) {
		m.roughness = clamp01(roughness)
	}
}

// WithMetallic sets the metallic factor, clamped to [0, 1].
//
// Parameters:
//   - metallic: the metallic factor
//
// Returns:
//   - MaterialBuilderOption: a function that sets the metallic factor
func WithMetallic(metallic float32) MaterialBuilderOption {
	return func(m *material) {
		m.metallic = clamp01(metallic)
	}
}

// WithReflectance sets the dielectric specular reflectance, clamped to [0, 1].
//
// Parameters:
//   - reflectance: the reflectance factor
//
// Returns:
//   - MaterialBuilderOption: a function that sets the reflectance
func WithReflectance(reflectance float32) MaterialBuilderOption {
	return func(m *material) {
		m.reflectance = clamp01(reflectance)
	}
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
