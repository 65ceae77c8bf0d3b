package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/light"
	"github.com/Carmen-Shannon/oxy-trace/engine/raytracer"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
	"github.com/Carmen-Shannon/oxy-trace/engine/scene"
)

const cubeScene = `
name = "cube"

[light]
direction = [1.0, 0.0, 0.0]

[[meshes]]
name = "box"
cube = { size = 2 }

[[materials]]
name = "white"
color = "white"

[[entities]]
mesh = "box"
material = "white"
`

type recorded struct {
	reports []raytracer.FrameReport
	errs    []error
}

func newTestEngine(t *testing.T, options ...EngineBuilderOption) (Engine, renderer.RecordingDevice, *recorded) {
	t.Helper()
	s := scene.NewScene()
	scene.Demo(s)
	device := renderer.NewRecordingDevice()
	options = append([]EngineBuilderOption{
		WithScene(s),
		WithPipelineOptions(
			raytracer.WithImageSize(common.Extent{Width: 64, Height: 64}),
			raytracer.WithSeed(3),
			raytracer.WithComputeWorkers(2),
		),
	}, options...)
	e, err := NewEngine(device, options...)
	require.NoError(t, err)
	t.Cleanup(e.Release)

	rec := &recorded{}
	e.SetFrameCallback(func(report raytracer.FrameReport, err error) {
		rec.reports = append(rec.reports, report)
		rec.errs = append(rec.errs, err)
	})
	return e, device, rec
}

func counters(reports []raytracer.FrameReport) []uint32 {
	out := make([]uint32, len(reports))
	for i, r := range reports {
		out[i] = r.Counter
	}
	return out
}

func TestRunFrames(t *testing.T) {
	e, device, rec := newTestEngine(t)

	require.NoError(t, e.Run(context.Background(), 3))
	assert.Equal(t, []uint32{0, 1, 2}, counters(rec.reports))
	assert.Len(t, device.Dispatches(), 3)
	assert.Equal(t, [3]uint32{2, 2, 1}, e.Pipeline().Workgroups())

	total := e.Profiler().Total()
	assert.Equal(t, 3, total.Frames)
	assert.Equal(t, 3, total.Dispatched)
	assert.Equal(t, 5, total.Uploads, "only the first frame uploads tables")
	assert.Zero(t, total.StaleViews)
}

func TestRunUpdateCallbackResetsAccumulation(t *testing.T) {
	e, _, rec := newTestEngine(t)
	entity := scene.Demo(e.Scene()).Entities[1]

	e.SetUpdateCallback(func(frame uint64, _ float32) {
		if frame == 2 {
			require.NoError(t, e.Scene().SetTransform(entity, scene.Translated(0, 3, 0)))
		}
	})
	require.NoError(t, e.Run(context.Background(), 4))
	assert.Equal(t, []uint32{0, 1, 0, 1}, counters(rec.reports))
	assert.True(t, rec.reports[2].Changes.Instances)
	assert.False(t, rec.reports[2].Changes.Geometry)
}

func TestRunStopsOnFatalFrame(t *testing.T) {
	e, device, rec := newTestEngine(t)
	loaded := scene.Demo(e.Scene())

	e.SetUpdateCallback(func(frame uint64, _ float32) {
		if frame == 1 {
			e.Scene().RemoveMaterial(loaded.Materials["red"])
		}
	})
	err := e.Run(context.Background(), 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, raytracer.ErrUnknownMaterial)
	assert.Len(t, rec.reports, 2)
	assert.Len(t, device.Dispatches(), 1)
	assert.Equal(t, 1, e.Profiler().Total().Failed)
}

func TestRunAppliesSceneUpdates(t *testing.T) {
	changes := make(chan *scene.File, 1)
	e, _, rec := newTestEngine(t, WithSceneUpdates(changes), WithLight(light.NewDirectional(), true))

	require.NoError(t, e.Run(context.Background(), 1))
	assert.Equal(t, 2, e.Scene().Count())

	f, err := scene.ParseFile([]byte(cubeScene), ".toml")
	require.NoError(t, err)
	changes <- f
	require.NoError(t, e.Run(context.Background(), 1))

	assert.Equal(t, 1, e.Scene().Count())
	assert.Equal(t, [3]float32{1, 0, 0}, e.Light().Direction(), "the reloaded light stops animating")
	last := rec.reports[len(rec.reports)-1]
	assert.True(t, last.Changes.Geometry)
	assert.Zero(t, last.Counter)
}

func TestRunRejectedSceneUpdateKeepsScene(t *testing.T) {
	changes := make(chan *scene.File, 1)
	e, _, _ := newTestEngine(t, WithSceneUpdates(changes))

	changes <- &scene.File{Entities: []scene.EntitySpec{{Mesh: "missing", Material: "missing"}}}
	require.NoError(t, e.Run(context.Background(), 1))
	assert.Equal(t, 2, e.Scene().Count())
}

func TestRunStops(t *testing.T) {
	e, device, rec := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, e.Run(ctx, 0))
	assert.Empty(t, rec.reports)

	e.Quit()
	e.Quit()
	assert.NoError(t, e.Run(context.Background(), 0))
	assert.Empty(t, device.Dispatches())
}

func TestNewEngineRejectsBadPipeline(t *testing.T) {
	_, err := NewEngine(renderer.NewRecordingDevice(),
		WithPipelineOptions(raytracer.WithImageSize(common.Extent{Width: 100, Height: 64})))
	assert.ErrorIs(t, err, raytracer.ErrImageNotTileAligned)
}

func TestSetRenderFrameLimit(t *testing.T) {
	e, _, _ := newTestEngine(t, WithRenderFrameLimit(1000))
	impl := e.(*engine)
	assert.Equal(t, impl.renderFrameLimit.Milliseconds(), int64(1))

	e.SetRenderFrameLimit(0)
	assert.Zero(t, impl.renderFrameLimit)
}
