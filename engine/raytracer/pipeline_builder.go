package raytracer

import (
	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/camera"
	"github.com/Carmen-Shannon/oxy-trace/engine/light"
)

// PipelineBuilderOption is a functional option for configuring a Pipeline.
type PipelineBuilderOption func(*pipeline)

// WithImageSize sets the output image extent.
//
// Parameters:
//   - extent: the image size in pixels
//
// Returns:
//   - PipelineBuilderOption: the option
func WithImageSize(extent common.Extent) PipelineBuilderOption {
	return func(p *pipeline) {
		p.extent = extent
	}
}

// WithTileSize sets the edge length in pixels one workgroup covers.
//
// Parameters:
//   - tileSize: a positive multiple of 8
//
// Returns:
//   - PipelineBuilderOption: the option
func WithTileSize(tileSize uint32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.tileSize = tileSize
	}
}

// WithCeiling sets the accumulation count past which dispatches stop.
//
// Parameters:
//   - ceiling: the convergence threshold
//
// Returns:
//   - PipelineBuilderOption: the option
func WithCeiling(ceiling uint32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.ceiling = ceiling
	}
}

// WithAllowPartialTiles accepts image sizes that are not tile multiples. Trailing pixels are not
// dispatched.
//
// Returns:
//   - PipelineBuilderOption: the option
func WithAllowPartialTiles() PipelineBuilderOption {
	return func(p *pipeline) {
		p.allowPartialTiles = true
	}
}

// WithViews sets the camera collaborator supplying the view uniform block and offset.
//
// Parameters:
//   - views: the view source
//
// Returns:
//   - PipelineBuilderOption: the option
func WithViews(views camera.Views) PipelineBuilderOption {
	return func(p *pipeline) {
		p.views = views
	}
}

// WithLight sets the light collaborator read every frame.
//
// Parameters:
//   - source: the light direction source
//
// Returns:
//   - PipelineBuilderOption: the option
func WithLight(source light.DirectionSource) PipelineBuilderOption {
	return func(p *pipeline) {
		p.light = source
	}
}

// WithSeed seeds the per-frame random seed sequence.
//
// Parameters:
//   - seed: the random source seed
//
// Returns:
//   - PipelineBuilderOption: the option
func WithSeed(seed uint64) PipelineBuilderOption {
	return func(p *pipeline) {
		p.seed = seed
	}
}

// WithComputeWorkers sets the number of goroutines marshalling dirty tables.
//
// Parameters:
//   - workers: the worker count
//
// Returns:
//   - PipelineBuilderOption: the option
func WithComputeWorkers(workers int) PipelineBuilderOption {
	return func(p *pipeline) {
		p.workers = workers
	}
}
