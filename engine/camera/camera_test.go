package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-trace/common"
)

func TestViewOffsetLifecycle(t *testing.T) {
	c := NewCamera()

	_, ok := c.ViewOffset()
	assert.False(t, ok, "no view before the first publish")
	assert.Empty(t, c.UniformBlock())

	c.BeginFrame()
	assert.Equal(t, uint32(0), c.PublishView())
	assert.Equal(t, uint32(ViewUniformStride), c.PublishView())
	offset, ok := c.ViewOffset()
	assert.True(t, ok)
	assert.Equal(t, uint32(ViewUniformStride), offset)
	assert.Len(t, c.UniformBlock(), 2*ViewUniformStride)

	c.BeginFrame()
	offset, ok = c.ViewOffset()
	assert.False(t, ok)
	assert.Equal(t, uint32(ViewUniformStride), offset, "the last offset is still reported")
	assert.Len(t, c.UniformBlock(), 2*ViewUniformStride, "the block survives until the next publish")

	assert.Equal(t, uint32(0), c.PublishView())
	assert.Len(t, c.UniformBlock(), ViewUniformStride)
}

func TestPublishedViewContents(t *testing.T) {
	c := NewCamera(WithPosition(1, 2, 3))
	c.SetViewport(common.Extent{Width: 64, Height: 32})
	c.BeginFrame()
	c.PublishView()

	block := c.UniformBlock()
	require.Len(t, block, ViewUniformStride)
	readF32 := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(block[off:]))
	}
	assert.Equal(t, float32(1), readF32(128))
	assert.Equal(t, float32(2), readF32(132))
	assert.Equal(t, float32(3), readF32(136))
	assert.Equal(t, float32(64), readF32(152))
	assert.Equal(t, float32(32), readF32(156))

	vp := c.ViewProjectionMatrix()
	for i := range 16 {
		assert.Equal(t, vp[i], readF32(i*4))
	}
}

func TestInverseViewProjection(t *testing.T) {
	c := NewCamera(WithPosition(0, 1, 4), WithTarget(0, 0, 0), WithClipPlanes(0.5, 50))
	product := common.Mul4(c.ViewProjectionMatrix(), c.InverseViewProjectionMatrix())
	for i := range product {
		assert.InDelta(t, common.Identity4[i], product[i], 1e-4, "element %d", i)
	}
}

func TestLooksDownNegativeZ(t *testing.T) {
	c := NewCamera()
	vp := c.ViewProjectionMatrix()

	// The target at the origin projects to the center of clip space.
	clipX := vp[12]
	clipY := vp[13]
	clipW := vp[15]
	assert.InDelta(t, 0, clipX/clipW, 1e-5)
	assert.InDelta(t, 0, clipY/clipW, 1e-5)
	assert.Greater(t, clipW, float32(0))
}

func TestViewUniformSize(t *testing.T) {
	u := GPUViewUniform{}
	assert.Equal(t, 160, u.Size())
	assert.Zero(t, u.Size()%16)
	assert.LessOrEqual(t, u.Size(), ViewUniformStride)
	assert.Len(t, u.Marshal(), u.Size())
}
