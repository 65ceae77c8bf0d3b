package raytracer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
)

// scheduler is the implementation of the Scheduler interface.
type scheduler struct {
	device      renderer.Device
	pipelineKey string
	workgroups  [3]uint32
}

// Scheduler records and submits the kernel dispatch for a frame. It never waits for the GPU.
type Scheduler interface {
	// Workgroups returns the dispatch size: the image extent divided by the tile size, truncated.
	Workgroups() [3]uint32

	// Schedule submits one dispatch unless the image has converged.
	//
	// Parameters:
	//   - bindings: this frame's binding sets
	//   - converged: whether the accumulation counter passed its ceiling
	//
	// Returns:
	//   - bool: whether a dispatch was submitted
	//   - error: an error from the device
	Schedule(bindings Bindings, converged bool) (bool, error)
}

var _ Scheduler = &scheduler{}

// NewScheduler creates a Scheduler for an image extent and tile size.
//
// Parameters:
//   - device: the device to dispatch on
//   - pipelineKey: the registered kernel pipeline
//   - extent: the output image size in pixels
//   - tileSize: the tile edge length covered by one workgroup
//
// Returns:
//   - Scheduler: the scheduler
func NewScheduler(device renderer.Device, pipelineKey string, extent common.Extent, tileSize uint32) Scheduler {
	return &scheduler{
		device:      device,
		pipelineKey: pipelineKey,
		workgroups:  [3]uint32{extent.Width / tileSize, extent.Height / tileSize, 1},
	}
}

func (s *scheduler) Workgroups() [3]uint32 {
	return s.workgroups
}

func (s *scheduler) Schedule(bindings Bindings, converged bool) (bool, error) {
	if converged {
		return false, nil
	}
	if err := s.device.BeginComputeFrame(); err != nil {
		return false, err
	}
	if err := s.device.DispatchCompute(s.pipelineKey, bindings.Sets, bindings.DynamicOffsets, s.workgroups); err != nil {
		// The frame is still submitted so the encoder does not leak into the next one.
		_ = s.device.EndComputeFrame()
		return false, fmt.Errorf("raytracer: dispatch: %w", err)
	}
	if err := s.device.EndComputeFrame(); err != nil {
		return false, fmt.Errorf("raytracer: submit: %w", err)
	}
	return true, nil
}
