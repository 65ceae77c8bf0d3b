package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial("plain")
	assert.Equal(t, "plain", m.Name())
	assert.Equal(t, ColorWhite, m.BaseColor())
	assert.Equal(t, ColorBlack, m.Emissive())
	assert.Equal(t, float32(0.5), m.Roughness())
	assert.Equal(t, float32(0), m.Metallic())
	assert.Equal(t, float32(0.5), m.Reflectance())
}

func TestOptionsClamp(t *testing.T) {
	m := NewMaterial("clamped", WithRoughness(2), WithMetallic(-1), WithReflectance(0.25))
	assert.Equal(t, float32(1), m.Roughness())
	assert.Equal(t, float32(0), m.Metallic())
	assert.Equal(t, float32(0.25), m.Reflectance())
}

func TestWithCopies(t *testing.T) {
	base := NewMaterial("beige", WithBaseColor(ColorBeige), WithMetallic(0.3))
	red := base.With(WithBaseColor(ColorRed))

	assert.Equal(t, ColorBeige, base.BaseColor())
	assert.Equal(t, ColorRed, red.BaseColor())
	assert.Equal(t, float32(0.3), red.Metallic())
}
