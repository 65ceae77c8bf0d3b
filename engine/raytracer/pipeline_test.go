package raytracer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/camera"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
)

func newTestPipeline(t *testing.T, device renderer.Device, options ...PipelineBuilderOption) Pipeline {
	t.Helper()
	options = append([]PipelineBuilderOption{WithImageSize(common.Extent{Width: 1024, Height: 768}), WithSeed(1), WithComputeWorkers(2)}, options...)
	p, err := NewPipeline(device, options...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

func TestPipelineFirstFrame(t *testing.T) {
	f := newFixture(t)
	device := renderer.NewRecordingDevice()
	cam := camera.NewCamera()
	p := newTestPipeline(t, device, WithViews(cam))

	cam.BeginFrame()
	cam.PublishView()
	report, err := p.RunFrame(context.Background(), f.publish())
	require.NoError(t, err)

	assert.Equal(t, []FrameState{StateExtract, StateStage, StateBuildBindings, StateDispatch}, report.States)
	assert.Equal(t, StateIdle, p.State())
	assert.True(t, report.Dispatched)
	assert.Equal(t, uint32(0), report.Counter)
	assert.Equal(t, 5, report.Uploads)
	assert.Equal(t, [3]uint32{32, 24, 1}, report.Workgroups)
	assert.Equal(t, [3]uint32{32, 24, 1}, p.Workgroups())

	dispatches := device.Dispatches()
	require.Len(t, dispatches, 1)
	d := dispatches[0]
	assert.Equal(t, "raytrace", d.PipelineKey)
	assert.Equal(t, [3]uint32{32, 24, 1}, d.Workgroups)
	assert.Len(t, d.SetLabels, 6)
	assert.Equal(t, "raytrace/vertices", d.Buffers["2/0"])
	assert.Equal(t, "raytrace/indices", d.Buffers["2/1"])
	assert.Equal(t, "raytrace/instances", d.Buffers["2/2"])
	assert.Equal(t, "raytrace/materials", d.Buffers["3/0"])
	assert.Equal(t, "raytrace/counter", d.Buffers["1/1"])
	assert.Equal(t, []uint32{0}, d.DynamicOffsets[0])
	assert.Equal(t, common.Extent{Width: 1024, Height: 768}, p.Image().Extent())
}

func TestPipelineStaticSceneUploadsNothing(t *testing.T) {
	f := newFixture(t)
	device := renderer.NewRecordingDevice()
	p := newTestPipeline(t, device)

	_, err := p.RunFrame(context.Background(), f.publish())
	require.NoError(t, err)
	uploaded := device.Stats().BytesUploaded

	report, err := p.RunFrame(context.Background(), f.publish())
	require.NoError(t, err)
	assert.Zero(t, report.Uploads)
	assert.Zero(t, report.BytesUploaded)
	assert.False(t, report.Changes.Any())
	assert.Equal(t, uint32(1), report.Counter)
	assert.Equal(t, uint32(1), p.Counter())
	assert.Equal(t, uint64(1), report.Frame)

	// Only the per-frame uniforms are new.
	perFrame := device.Stats().BytesUploaded - uploaded
	assert.Less(t, perFrame, uint64(1024))
}

func TestPipelineTileAlignment(t *testing.T) {
	device := renderer.NewRecordingDevice()
	_, err := NewPipeline(device, WithImageSize(common.Extent{Width: 1000, Height: 768}))
	assert.ErrorIs(t, err, ErrImageNotTileAligned)

	p := newTestPipeline(t, renderer.NewRecordingDevice(), WithImageSize(common.Extent{Width: 1000, Height: 768}), WithAllowPartialTiles())
	assert.Equal(t, [3]uint32{31, 24, 1}, p.Workgroups())

	_, err = NewPipeline(renderer.NewRecordingDevice(), WithTileSize(20))
	assert.Error(t, err)
}

func TestPipelineFatalFrameKeepsState(t *testing.T) {
	f := newFixture(t)
	device := renderer.NewRecordingDevice()
	p := newTestPipeline(t, device)

	_, err := p.RunFrame(context.Background(), f.publish())
	require.NoError(t, err)
	_, err = p.RunFrame(context.Background(), f.publish())
	require.NoError(t, err)
	buffers := p.Buffers()
	tables := p.Tables()

	f.scene.RemoveMaterial(f.m2)
	report, err := p.RunFrame(context.Background(), f.publish())
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.ErrorIs(t, err, ErrUnknownMaterial)
	assert.Equal(t, []FrameState{StateExtract}, report.States)
	assert.False(t, report.Dispatched)

	assert.Equal(t, buffers, p.Buffers())
	assert.Same(t, tables, p.Tables())
	assert.Equal(t, uint32(1), p.Counter())
	assert.Len(t, device.Dispatches(), 2)
	assert.Equal(t, StateIdle, p.State())
}

func TestPipelineStaleViewOffset(t *testing.T) {
	f := newFixture(t)
	device := renderer.NewRecordingDevice()
	cam := camera.NewCamera()
	p := newTestPipeline(t, device, WithViews(cam))

	cam.BeginFrame()
	cam.PublishView()
	cam.PublishView()
	report, err := p.RunFrame(context.Background(), f.publish())
	require.NoError(t, err)
	assert.Equal(t, uint32(camera.ViewUniformStride), report.ViewOffset)
	assert.False(t, report.StaleView)

	cam.BeginFrame()
	report, err = p.RunFrame(context.Background(), f.publish())
	require.NoError(t, err)
	assert.True(t, report.StaleView)
	assert.Equal(t, uint32(camera.ViewUniformStride), report.ViewOffset)

	dispatches := device.Dispatches()
	require.Len(t, dispatches, 2)
	assert.Equal(t, []uint32{camera.ViewUniformStride}, dispatches[1].DynamicOffsets[0])
}

func TestPipelineNoViewsUsesOffsetZero(t *testing.T) {
	f := newFixture(t)
	p := newTestPipeline(t, renderer.NewRecordingDevice())

	report, err := p.RunFrame(context.Background(), f.publish())
	require.NoError(t, err)
	assert.Zero(t, report.ViewOffset)
	assert.False(t, report.StaleView)
}

func TestPipelineCeilingGating(t *testing.T) {
	f := newFixture(t)
	device := renderer.NewRecordingDevice()
	p := newTestPipeline(t, device, WithCeiling(3))

	var dispatched []bool
	for range 6 {
		report, err := p.RunFrame(context.Background(), f.publish())
		require.NoError(t, err)
		dispatched = append(dispatched, report.Dispatched)
	}
	assert.Equal(t, []bool{true, true, true, true, false, false}, dispatched)
	assert.Len(t, device.Dispatches(), 4)

	f.move(t, 1, 4)
	report, err := p.RunFrame(context.Background(), f.publish())
	require.NoError(t, err)
	assert.True(t, report.Dispatched, "a scene change restarts accumulation")
	assert.Zero(t, report.Counter)
	assert.Equal(t, StateDispatch, report.States[len(report.States)-1])
}

func TestPipelineSkippedFrameStates(t *testing.T) {
	f := newFixture(t)
	p := newTestPipeline(t, renderer.NewRecordingDevice(), WithCeiling(0))

	_, err := p.RunFrame(context.Background(), f.publish())
	require.NoError(t, err)
	report, err := p.RunFrame(context.Background(), f.publish())
	require.NoError(t, err)
	assert.Equal(t, []FrameState{StateExtract, StateStage, StateBuildBindings, StateSkip}, report.States)
	assert.Equal(t, "skip", StateSkip.String())
}

func TestPipelineCancelledContext(t *testing.T) {
	f := newFixture(t)
	device := renderer.NewRecordingDevice()
	p := newTestPipeline(t, device)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.RunFrame(ctx, f.publish())
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsFatal(err))
	assert.Empty(t, device.Dispatches())
}

func TestPipelineNilSnapshot(t *testing.T) {
	p := newTestPipeline(t, renderer.NewRecordingDevice())
	_, err := p.RunFrame(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilSnapshot)
}

func TestNewPipelineNilDevice(t *testing.T) {
	assert.Panics(t, func() { _, _ = NewPipeline(nil) })
}
