// Package raytracer is the host side of the progressive compute ray tracer. Each frame it turns a
// scene snapshot into deduplicated GPU tables, uploads the tables that changed, advances the
// accumulation counter, binds everything to the kernel's six groups and dispatches the kernel
// until the image converges.
package raytracer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/camera"
	"github.com/Carmen-Shannon/oxy-trace/engine/kernel"
	"github.com/Carmen-Shannon/oxy-trace/engine/light"
	"github.com/Carmen-Shannon/oxy-trace/engine/log"
	"github.com/Carmen-Shannon/oxy-trace/engine/model"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
	"github.com/Carmen-Shannon/oxy-trace/engine/scene"
)

var logger = log.New("raytracer")

// FrameState is the step a frame is in.
type FrameState int32

const (
	StateIdle FrameState = iota
	StateExtract
	StateStage
	StateBuildBindings
	StateDispatch
	StateSkip
)

func (s FrameState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExtract:
		return "extract"
	case StateStage:
		return "stage"
	case StateBuildBindings:
		return "build_bindings"
	case StateDispatch:
		return "dispatch"
	case StateSkip:
		return "skip"
	}
	return fmt.Sprintf("FrameState(%d)", int32(s))
}

// FrameReport describes one RunFrame call.
type FrameReport struct {
	Frame uint64
	// States lists the states the frame passed through, ending in Dispatch or Skip on success.
	States  []FrameState
	Changes Changes
	Counter uint32
	Seed    [2]float32

	Dispatched bool
	Workgroups [3]uint32

	Uploads       int
	BytesUploaded uint64

	ViewOffset uint32
	// StaleView is set when the camera had no view for this frame and the last offset was reused.
	StaleView bool

	Extract  time.Duration
	Stage    time.Duration
	Marshal  time.Duration
	Bind     time.Duration
	Dispatch time.Duration
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	device            renderer.Device
	extent            common.Extent
	tileSize          uint32
	ceiling           uint32
	allowPartialTiles bool
	views             camera.Views
	light             light.DirectionSource
	seed              uint64
	workers           int

	image       renderer.Image
	extractor   Extractor
	stager      Stager
	accumulator Accumulator
	bindings    BindingBuilder
	scheduler   Scheduler

	state      atomic.Int32
	frame      uint64
	viewOffset uint32
	seenView   bool
}

// Pipeline owns every piece of cross-frame ray tracer state: the tables, their buffers, the
// output image and the accumulation counter. RunFrame must be called from one goroutine at a time.
type Pipeline interface {
	// RunFrame runs Extract, Stage, counter advance, BuildBindings and Dispatch or Skip for one
	// snapshot. A frame that fails during extraction or staging leaves the previously staged
	// buffers and the counter untouched.
	//
	// Parameters:
	//   - ctx: cancels the frame before it starts
	//   - snap: the published scene snapshot
	//
	// Returns:
	//   - FrameReport: what the frame did
	//   - error: a wrapped extraction or device error
	RunFrame(ctx context.Context, snap *scene.Snapshot) (FrameReport, error)

	// State returns the step the pipeline is currently in. Safe to call from any goroutine.
	State() FrameState

	// Tables returns the current tables.
	Tables() *Tables

	// Buffers returns the currently staged buffers.
	Buffers() Buffers

	// Counter returns the accumulation counter of the last frame.
	Counter() uint32

	// Image returns the output image.
	Image() renderer.Image

	// Workgroups returns the dispatch size.
	Workgroups() [3]uint32

	// Release releases every GPU resource the pipeline holds.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline validates the configuration, registers the kernel on device and creates the output
// image. Panics if device is nil.
//
// Parameters:
//   - device: the device to run on
//   - options: functional options
//
// Returns:
//   - Pipeline: the pipeline
//   - error: ErrImageNotTileAligned, a kernel error or a device error
func NewPipeline(device renderer.Device, options ...PipelineBuilderOption) (Pipeline, error) {
	if device == nil {
		panic("raytracer: NewPipeline requires a device")
	}
	p := &pipeline{
		device:   device,
		extent:   common.Extent{Width: 1024, Height: 768},
		tileSize: kernel.DefaultTileSize,
		ceiling:  DefaultCeiling,
		seed:     uint64(time.Now().UnixNano()),
		workers:  max(runtime.NumCPU()-1, 1),
	}
	for _, opt := range options {
		opt(p)
	}
	if p.light == nil {
		p.light = light.NewDirectional()
	}

	if p.extent.Width == 0 || p.extent.Height == 0 {
		return nil, fmt.Errorf("raytracer: empty image extent %s", p.extent)
	}
	k, err := kernel.Load(p.tileSize)
	if err != nil {
		return nil, err
	}
	if p.extent.Width%p.tileSize != 0 || p.extent.Height%p.tileSize != 0 {
		if !p.allowPartialTiles {
			return nil, fmt.Errorf("%w: %s with tile %d", ErrImageNotTileAligned, p.extent, p.tileSize)
		}
		logger.Warningf("image %s is not a multiple of tile %d; trailing pixels are not traced", p.extent, p.tileSize)
	}

	if err := device.RegisterComputePipeline(kernel.PipelineKey, k.Source(), k.EntryPoint(), kernel.Layouts()); err != nil {
		return nil, fmt.Errorf("raytracer: register kernel: %w", err)
	}
	if p.image, err = device.CreateStorageImage("raytrace/output", p.extent); err != nil {
		return nil, fmt.Errorf("raytracer: output image: %w", err)
	}

	p.extractor = NewExtractor()
	p.stager = NewStager(device, p.workers)
	p.accumulator = NewAccumulator(p.ceiling, p.seed)
	p.bindings = NewBindingBuilder(device, kernel.PipelineKey, p.image)
	p.scheduler = NewScheduler(device, kernel.PipelineKey, p.extent, p.tileSize)

	logger.Noticef("pipeline ready: %s image (%d px), tile %d, %v workgroups, ceiling %d, %s backend",
		p.extent, p.extent.Pixels(), p.tileSize, p.scheduler.Workgroups(), p.ceiling, device.Backend())
	return p, nil
}

func (p *pipeline) RunFrame(ctx context.Context, snap *scene.Snapshot) (FrameReport, error) {
	report := FrameReport{Frame: p.frame, Workgroups: p.scheduler.Workgroups()}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	if snap == nil {
		return report, ErrNilSnapshot
	}
	defer p.enter(&report, StateIdle)

	p.enter(&report, StateExtract)
	start := time.Now()
	changes, err := p.extractor.Extract(snap)
	report.Extract = time.Since(start)
	if err != nil {
		logger.Errorf("frame %d aborted during extraction: %v", p.frame, err)
		return report, err
	}
	report.Changes = changes

	p.enter(&report, StateStage)
	start = time.Now()
	staged, err := p.stager.Stage(p.extractor.Tables(), changes)
	report.Stage = time.Since(start)
	if err != nil {
		// The tables moved on but their buffers did not; rebuild everything next frame.
		p.extractor.Invalidate()
		logger.Errorf("frame %d aborted during staging: %v", p.frame, err)
		return report, err
	}
	report.Uploads = staged.Uploads
	report.BytesUploaded = staged.Bytes
	report.Marshal = staged.Marshal

	report.Counter, report.Seed = p.accumulator.Advance(changes.Any())

	p.enter(&report, StateBuildBindings)
	start = time.Now()
	report.ViewOffset, report.StaleView = p.currentViewOffset()
	var block []byte
	if p.views != nil {
		block = p.views.UniformBlock()
	}
	bindings, err := p.bindings.Build(p.stager.Buffers(), FrameInputs{
		ViewBlock:  block,
		ViewOffset: report.ViewOffset,
		Counter:    report.Counter,
		Light:      p.light.Direction(),
		Seed:       report.Seed,
	})
	report.Bind = time.Since(start)
	if err != nil {
		logger.Errorf("frame %d aborted while binding: %v", p.frame, err)
		return report, err
	}

	converged := p.accumulator.Converged()
	if converged {
		p.enter(&report, StateSkip)
	} else {
		p.enter(&report, StateDispatch)
	}
	start = time.Now()
	report.Dispatched, err = p.scheduler.Schedule(bindings, converged)
	report.Dispatch = time.Since(start)
	if err != nil {
		logger.Errorf("frame %d dispatch failed: %v", p.frame, err)
		return report, err
	}

	p.frame++
	return report, nil
}

// currentViewOffset asks the camera for this frame's view and falls back to the last one seen.
func (p *pipeline) currentViewOffset() (uint32, bool) {
	if p.views == nil {
		return 0, false
	}
	if offset, ok := p.views.ViewOffset(); ok {
		p.viewOffset = offset
		p.seenView = true
		return offset, false
	}
	if p.seenView {
		logger.Warningf("frame %d: no view published, reusing offset %d", p.frame, p.viewOffset)
	} else {
		logger.Warningf("frame %d: no view published yet, using offset 0", p.frame)
	}
	return p.viewOffset, true
}

func (p *pipeline) enter(report *FrameReport, s FrameState) {
	p.state.Store(int32(s))
	if s != StateIdle {
		report.States = append(report.States, s)
	}
}

func (p *pipeline) State() FrameState {
	return FrameState(p.state.Load())
}

func (p *pipeline) Tables() *Tables {
	return p.extractor.Tables()
}

func (p *pipeline) Buffers() Buffers {
	return p.stager.Buffers()
}

func (p *pipeline) Counter() uint32 {
	return p.accumulator.Count()
}

func (p *pipeline) Image() renderer.Image {
	return p.image
}

func (p *pipeline) Workgroups() [3]uint32 {
	return p.scheduler.Workgroups()
}

func (p *pipeline) Release() {
	p.bindings.Release()
	p.stager.Release()
	if p.image != nil {
		p.image.Release()
		p.image = nil
	}
}

// IsFatal reports whether err aborts a frame because the scene or its assets are unusable, as
// opposed to a device or cancellation error.
//
// Parameters:
//   - err: an error returned by RunFrame
//
// Returns:
//   - bool: true for scene content errors
func IsFatal(err error) bool {
	return errors.Is(err, ErrUnknownMesh) || errors.Is(err, ErrUnknownMaterial) || errors.Is(err, ErrTooLarge) ||
		errors.Is(err, model.ErrMissingAttribute) || errors.Is(err, model.ErrAttributeMismatch) || errors.Is(err, model.ErrIndexOutOfRange)
}
