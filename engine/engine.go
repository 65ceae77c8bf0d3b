package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-trace/engine/camera"
	"github.com/Carmen-Shannon/oxy-trace/engine/light"
	"github.com/Carmen-Shannon/oxy-trace/engine/log"
	"github.com/Carmen-Shannon/oxy-trace/engine/profiler"
	"github.com/Carmen-Shannon/oxy-trace/engine/raytracer"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
	"github.com/Carmen-Shannon/oxy-trace/engine/scene"
)

var logger = log.New("engine")

// ErrRunning is returned by Run when the engine is already running.
var ErrRunning = errors.New("engine: already running")

// engine implements the Engine interface.
// Owns the scene, camera, light and ray tracing pipeline and drives them one frame at a time.
type engine struct {
	running atomic.Bool

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	pipeline        raytracer.Pipeline
	pipelineOptions []raytracer.PipelineBuilderOption

	scene        scene.Scene
	camera       camera.Camera
	light        light.Directional
	animateLight bool
	sceneChanges <-chan *scene.File

	profiler         *profiler.Profiler
	profilingEnabled bool
	profileInterval  time.Duration

	updateCallback func(frame uint64, deltaTime float32)
	frameCallback  func(report raytracer.FrameReport, err error)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point for the engine.
// It runs the frame loop: scene updates, light animation, view publication, ray tracing
// and profiling, in that order, once per frame.
type Engine interface {
	// Scene returns the scene the engine renders.
	//
	// Returns:
	//   - scene.Scene: the scene
	Scene() scene.Scene

	// Camera returns the camera whose view is published every frame.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Light returns the directional light.
	//
	// Returns:
	//   - light.Directional: the light
	Light() light.Directional

	// Pipeline returns the ray tracing pipeline.
	//
	// Returns:
	//   - raytracer.Pipeline: the pipeline
	Pipeline() raytracer.Pipeline

	// Profiler returns the profiler. It collects totals even while profiling output is disabled.
	//
	// Returns:
	//   - *profiler.Profiler: the profiler
	Profiler() *profiler.Profiler

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetAnimateLight turns the orbiting light on or off.
	//
	// Parameters:
	//   - animate: whether the light orbits
	SetAnimateLight(animate bool)

	// SetUpdateCallback registers the function called at the start of each frame, before the
	// scene is published. Use it for scene edits.
	//
	// Parameters:
	//   - callback: receives the frame number and the delta time in seconds
	SetUpdateCallback(callback func(frame uint64, deltaTime float32))

	// SetFrameCallback registers the function called after each frame with its report.
	//
	// Parameters:
	//   - callback: receives the frame report and the frame error, if any
	SetFrameCallback(callback func(report raytracer.FrameReport, err error))

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run drives frames until ctx is done, Quit is called, frames frames have run, or a frame
	// fails because the scene is unusable. Frames failing for other reasons are logged and the
	// loop continues.
	//
	// Parameters:
	//   - ctx: cancels the loop
	//   - frames: the number of frames to run; 0 runs until stopped
	//
	// Returns:
	//   - error: the fatal frame error, a recovered panic, ErrRunning, or nil
	Run(ctx context.Context, frames uint64) error

	// Quit signals the frame loop to stop after the current frame.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()

	// Release releases the pipeline's GPU resources.
	Release()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine rendering through device.
// Unset collaborators default to an empty scene, a camera at (0, 0, 5) and a light along +Y.
// The camera viewport is matched to the pipeline's image.
//
// Parameters:
//   - device: the device the pipeline runs on
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: an error if the pipeline cannot be created
func NewEngine(device renderer.Device, options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		quitChannel: make(chan struct{}),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.scene == nil {
		e.scene = scene.NewScene()
	}
	if e.camera == nil {
		e.camera = camera.NewCamera()
	}
	if e.light == nil {
		e.light = light.NewDirectional()
	}
	e.profiler = profiler.NewProfiler(e.profileInterval)

	pipelineOptions := append(append([]raytracer.PipelineBuilderOption(nil), e.pipelineOptions...),
		raytracer.WithViews(e.camera),
		raytracer.WithLight(e.light),
	)
	p, err := raytracer.NewPipeline(device, pipelineOptions...)
	if err != nil {
		return nil, err
	}
	e.pipeline = p
	e.camera.SetViewport(p.Image().Extent())
	return e, nil
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Light() light.Directional {
	return e.light
}

func (e *engine) Pipeline() raytracer.Pipeline {
	return e.pipeline
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetAnimateLight(animate bool) {
	e.animateLight = animate
}

func (e *engine) SetUpdateCallback(callback func(frame uint64, deltaTime float32)) {
	e.updateCallback = callback
}

func (e *engine) SetFrameCallback(callback func(report raytracer.FrameReport, err error)) {
	e.frameCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

// Quit signals the frame loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) Release() {
	e.pipeline.Release()
}

func (e *engine) Run(ctx context.Context, frames uint64) (err error) {
	if !e.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer e.running.Store(false)
	// Recover from panics inside the frame loop to avoid crashing the process.
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("frame loop recovered from panic: %v", r)
			err = fmt.Errorf("engine: frame loop panic: %v", r)
		}
	}()

	start := time.Now()
	lastFrame := start
	for frame := uint64(0); frames == 0 || frame < frames; frame++ {
		select {
		case <-ctx.Done():
			logger.Noticef("stopping after %d frames: %v", frame, ctx.Err())
			return nil
		case <-e.quitChannel:
			logger.Noticef("quit after %d frames", frame)
			return nil
		default:
		}

		now := time.Now()
		dt := float32(now.Sub(lastFrame).Seconds())
		lastFrame = now

		e.applySceneChanges()
		if e.updateCallback != nil {
			e.updateCallback(frame, dt)
		}
		if e.animateLight {
			e.light.Animate(now.Sub(start))
		}
		e.camera.BeginFrame()
		e.camera.PublishView()

		report, frameErr := e.pipeline.RunFrame(ctx, e.scene.Publish())
		if e.profilingEnabled {
			e.profiler.Tick(report, frameErr)
		} else {
			e.profiler.Record(report, frameErr)
		}
		if e.frameCallback != nil {
			e.frameCallback(report, frameErr)
		}
		if frameErr != nil {
			if ctx.Err() != nil {
				return nil
			}
			if raytracer.IsFatal(frameErr) {
				return fmt.Errorf("engine: frame %d: %w", frame, frameErr)
			}
			logger.Warningf("frame %d failed: %v", frame, frameErr)
		}

		// Frame rate limiting
		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(now); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
	logger.Noticef("rendered %d frames", frames)
	return nil
}

// applySceneChanges replaces the scene contents with the newest reloaded file, if any.
// A file that fails to apply leaves the scene untouched.
func (e *engine) applySceneChanges() {
	if e.sceneChanges == nil {
		return
	}
	select {
	case f := <-e.sceneChanges:
		if f == nil {
			return
		}
		loaded, err := f.ApplyTo(e.scene)
		if err != nil {
			logger.Errorf("scene reload rejected: %v", err)
			return
		}
		if loaded.Light != nil {
			d := loaded.Light.Direction
			e.light.SetDirection(d[0], d[1], d[2])
			e.animateLight = loaded.Light.Animate
		}
	default:
	}
}
