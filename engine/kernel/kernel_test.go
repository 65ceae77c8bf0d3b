package kernel

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSizes(t *testing.T) {
	var (
		vertex   GPUVertex
		material GPUMaterial
		instance GPUInstance
		counter  GPUCounter
		light    GPULight
		seed     GPUSeed
	)
	tests := []struct {
		name    string
		size    int
		marshal []byte
		want    int
	}{
		{"vertex", vertex.Size(), vertex.Marshal(), 32},
		{"material", material.Size(), material.Marshal(), 48},
		{"instance", instance.Size(), instance.Marshal(), 80},
		{"counter", counter.Size(), counter.Marshal(), 16},
		{"light", light.Size(), light.Marshal(), 16},
		{"seed", seed.Size(), seed.Marshal(), 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.size)
			assert.Len(t, tt.marshal, tt.want)
			assert.Zero(t, tt.size%16)
		})
	}
}

func TestInstanceMarshalLayout(t *testing.T) {
	inst := GPUInstance{IndexOffset: 36, IndexCount: 12, Material: 2}
	inst.Transform[12] = 1.5
	buf := inst.Marshal()

	assert.Equal(t, float32(1.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[48:])))
	assert.Equal(t, uint32(36), binary.LittleEndian.Uint32(buf[64:]))
	assert.Equal(t, uint32(12), binary.LittleEndian.Uint32(buf[68:]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[72:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[76:]))
}

func TestVertexMarshalLayout(t *testing.T) {
	v := NewGPUVertex([3]float32{1, 2, 3}, [3]float32{0, 1, 0})
	buf := v.Marshal()
	assert.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(buf[8:])))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[12:]), "position pad")
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[20:])))
}

func TestBlockSize(t *testing.T) {
	block, err := BlockSize(DefaultTileSize)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), block)

	for _, bad := range []uint32{0, 12, 33} {
		_, err := BlockSize(bad)
		assert.ErrorIs(t, err, ErrInvalidTileSize)
	}
}

func TestKernelMatchesHostContract(t *testing.T) {
	s, err := Load(DefaultTileSize)
	require.NoError(t, err)

	assert.Equal(t, EntryPoint, s.EntryPoint())
	assert.Equal(t, [3]uint32{LocalSize, LocalSize, 1}, s.WorkgroupSize())
	assert.Contains(t, s.Source(), "const TILE: u32 = 32u;")
	assert.Contains(t, s.Source(), "const BLOCK: u32 = 4u;")
	require.NoError(t, s.MatchLayouts(Layouts()))

	for name, size := range recordSizes() {
		got, ok := s.StructSize(name)
		require.True(t, ok, name)
		assert.Equal(t, size, got, name)
	}

	layouts := Layouts()
	require.Len(t, layouts, GroupCount)
	assert.Equal(t, 1, layouts[GroupView].DynamicCount())
	for g := GroupOutput; g < GroupCount; g++ {
		assert.Zero(t, layouts[g].DynamicCount(), "group %d", g)
	}
}

func TestValidateCompiles(t *testing.T) {
	s, err := Validate(16)
	require.NoError(t, err)
	assert.Contains(t, s.Source(), "const BLOCK: u32 = 2u;")

	_, err = Validate(20)
	assert.ErrorIs(t, err, ErrInvalidTileSize)
}
