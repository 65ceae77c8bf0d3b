package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-trace/common"
)

var testLayouts = []BindingLayout{
	{Label: "view", Entries: []LayoutEntry{{Binding: 0, Kind: BindingUniformDynamic, MinSize: 160}}},
	{Label: "data", Entries: []LayoutEntry{
		{Binding: 0, Kind: BindingStorageImageWrite},
		{Binding: 1, Kind: BindingStorageReadOnly, MinSize: 16},
	}},
}

func newTestDevice(t *testing.T) RecordingDevice {
	t.Helper()
	d := NewRecordingDevice()
	require.NoError(t, d.RegisterComputePipeline("test", "@compute fn main() {}", "main", testLayouts))
	return d
}

func testSets(t *testing.T, d RecordingDevice, viewSize int) []BindingSet {
	t.Helper()
	view, err := d.CreateBuffer("view", BufferUsageUniform, make([]byte, viewSize))
	require.NoError(t, err)
	img, err := d.CreateStorageImage("out", common.Extent{Width: 32, Height: 32})
	require.NoError(t, err)
	data, err := d.CreateBuffer("data", BufferUsageStorage, make([]byte, 16))
	require.NoError(t, err)

	s0, err := d.CreateBindingSet("test", 0, "view-set", []BindingEntry{{Binding: 0, Buffer: view}})
	require.NoError(t, err)
	s1, err := d.CreateBindingSet("test", 1, "data-set", []BindingEntry{{Binding: 0, Image: img}, {Binding: 1, Buffer: data}})
	require.NoError(t, err)
	return []BindingSet{s0, s1}
}

func TestRecordingDeviceCopiesContents(t *testing.T) {
	d := NewRecordingDevice()
	src := []byte{1, 2, 3, 4}
	b, err := d.CreateBuffer("b", BufferUsageStorage, src)
	require.NoError(t, err)
	src[0] = 9

	got, ok := d.Contents(b)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4}, got)
	assert.Equal(t, uint64(4), b.Size())
	assert.Equal(t, 1, d.Live())

	b.Release()
	b.Release()
	assert.Equal(t, 0, d.Live())
	assert.Equal(t, 1, d.Stats().BuffersReleased)
}

func TestRecordingDeviceDispatch(t *testing.T) {
	d := newTestDevice(t)
	sets := testSets(t, d, 512)

	err := d.DispatchCompute("test", sets, [][]uint32{{256}, nil}, [3]uint32{1, 1, 1})
	assert.ErrorIs(t, err, ErrNoComputeFrame)

	require.NoError(t, d.BeginComputeFrame())
	require.NoError(t, d.DispatchCompute("test", sets, [][]uint32{{256}, nil}, [3]uint32{4, 3, 1}))
	require.NoError(t, d.EndComputeFrame())

	records := d.Dispatches()
	require.Len(t, records, 1)
	assert.Equal(t, [3]uint32{4, 3, 1}, records[0].Workgroups)
	assert.Equal(t, []string{"view-set", "data-set"}, records[0].SetLabels)
	assert.Equal(t, []uint32{256}, records[0].DynamicOffsets[0])
	assert.Equal(t, "data", records[0].Buffers["1/1"])

	stats := d.Stats()
	assert.Equal(t, 1, stats.FramesSubmitted)
	assert.Equal(t, 1, stats.Dispatches)
	assert.Equal(t, 2, stats.BindingSetsCreated)
}

func TestRecordingDeviceRejects(t *testing.T) {
	d := newTestDevice(t)
	sets := testSets(t, d, 256)
	require.NoError(t, d.BeginComputeFrame())

	tests := []struct {
		name    string
		key     string
		sets    []BindingSet
		offsets [][]uint32
		want    error
	}{
		{"unknown pipeline", "nope", sets, [][]uint32{{0}, nil}, ErrUnknownPipeline},
		{"missing set", "test", sets[:1], [][]uint32{{0}}, ErrBindingMismatch},
		{"swapped sets", "test", []BindingSet{sets[1], sets[0]}, [][]uint32{{0}, nil}, ErrBindingMismatch},
		{"missing offset", "test", sets, nil, ErrBindingMismatch},
		{"unaligned offset", "test", sets, [][]uint32{{128}, nil}, ErrBindingMismatch},
		{"offset overruns buffer", "test", sets, [][]uint32{{256}, nil}, ErrBindingMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := d.DispatchCompute(tt.key, tt.sets, tt.offsets, [3]uint32{1, 1, 1})
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, d.Dispatches())
}

func TestRecordingDeviceBindingSetValidation(t *testing.T) {
	d := newTestDevice(t)
	small, err := d.CreateBuffer("small", BufferUsageUniform, make([]byte, 64))
	require.NoError(t, err)
	img, err := d.CreateStorageImage("out", common.Extent{Width: 8, Height: 8})
	require.NoError(t, err)

	_, err = d.CreateBindingSet("test", 0, "s", []BindingEntry{{Binding: 0, Buffer: small}})
	assert.ErrorIs(t, err, ErrBindingMismatch, "buffer smaller than the layout minimum")

	_, err = d.CreateBindingSet("test", 0, "s", []BindingEntry{{Binding: 0, Image: img}})
	assert.ErrorIs(t, err, ErrBindingMismatch, "image in a buffer slot")

	_, err = d.CreateBindingSet("test", 2, "s", nil)
	assert.ErrorIs(t, err, ErrBindingMismatch)

	_, err = d.CreateBindingSet("other", 0, "s", nil)
	assert.ErrorIs(t, err, ErrUnknownPipeline)

	_, err = d.CreateStorageImage("empty", common.Extent{})
	assert.Error(t, err)
}

func TestRecordingDeviceReleased(t *testing.T) {
	d := newTestDevice(t)
	d.Release()
	_, err := d.CreateBuffer("b", BufferUsageStorage, nil)
	assert.ErrorIs(t, err, ErrReleased)
	assert.ErrorIs(t, d.BeginComputeFrame(), ErrReleased)
}

func TestNewDeviceRecording(t *testing.T) {
	d, err := NewDevice(BackendTypeRecording)
	require.NoError(t, err)
	assert.Equal(t, BackendTypeRecording, d.Backend())

	bt, err := ParseBackendType("wgpu")
	require.NoError(t, err)
	assert.Equal(t, BackendTypeWGPU, bt)
	_, err = ParseBackendType("vulkan")
	assert.Error(t, err)
}
