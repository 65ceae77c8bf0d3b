package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-trace/engine/camera"
	"github.com/Carmen-Shannon/oxy-trace/engine/light"
	"github.com/Carmen-Shannon/oxy-trace/engine/raytracer"
	"github.com/Carmen-Shannon/oxy-trace/engine/scene"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//   - interval: how often statistics are logged; values <= 0 default to 1 second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool, interval time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
		e.profileInterval = interval
	}
}

// WithScene sets the scene the engine renders.
//
// Parameters:
//   - s: the scene
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scene = s
	}
}

// WithCamera sets a custom configured camera rather than allowing the engine to create one.
//
// Parameters:
//   - c: a pre-configured Camera instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithLight sets the directional light.
//
// Parameters:
//   - l: the light
//   - animate: whether the light orbits the scene
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLight(l light.Directional, animate bool) EngineBuilderOption {
	return func(e *engine) {
		e.light = l
		e.animateLight = animate
	}
}

// WithPipelineOptions passes options through to the ray tracing pipeline.
// The engine always supplies its own camera and light.
//
// Parameters:
//   - options: the pipeline options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPipelineOptions(options ...raytracer.PipelineBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.pipelineOptions = append(e.pipelineOptions, options...)
	}
}

// WithSceneUpdates sets a channel of reloaded scene files, usually scene.Watcher.Changes.
// Each frame the newest pending file replaces the scene contents.
//
// Parameters:
//   - changes: the channel to drain
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSceneUpdates(changes <-chan *scene.File) EngineBuilderOption {
	return func(e *engine) {
		e.sceneChanges = changes
	}
}

// WithRenderFrameLimit sets an optional frame rate cap in frames per second.
// Pass 0 to uncap the loop (default).
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}
