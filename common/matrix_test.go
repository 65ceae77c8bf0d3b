package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMul4Identity(t *testing.T) {
	m := Mat4{2, 0, 0, 0, 0, 3, 0, 0, 0, 0, 4, 0, 5, 6, 7, 1}
	assert.Equal(t, m, Mul4(Identity4, m))
	assert.Equal(t, m, Mul4(m, Identity4))
}

func TestInvert4RoundTrip(t *testing.T) {
	m := Mat4{2, 0, 0, 0, 0, 3, 0, 0, 0, 0, 4, 0, 5, 6, 7, 1}
	inv, ok := Invert4(m)
	require.True(t, ok)
	product := Mul4(m, inv)
	for i := range product {
		assert.InDelta(t, Identity4[i], product[i], 1e-6, "element %d", i)
	}

	_, ok = Invert4(Mat4{})
	assert.False(t, ok)
}

func TestPerspectiveDepthRange(t *testing.T) {
	p := Perspective(1.0, 1.5, 0.1, 100)
	// A point on the near plane maps to depth 0, one on the far plane to depth 1.
	depth := func(z float32) float32 {
		clipZ := p[10]*z + p[14]
		clipW := p[11] * z
		return clipZ / clipW
	}
	assert.InDelta(t, 0, depth(-0.1), 1e-5)
	assert.InDelta(t, 1, depth(-100), 1e-5)
}
