package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/log"
)

var logger = log.New("renderer")

// BackendType identifies the Device implementation.
type BackendType int

const (
	// BackendTypeWGPU selects the WebGPU compute backend.
	BackendTypeWGPU BackendType = iota

	// BackendTypeRecording selects the in-memory backend that records every call instead of
	// touching a GPU.
	BackendTypeRecording
)

func (b BackendType) String() string {
	switch b {
	case BackendTypeWGPU:
		return "wgpu"
	case BackendTypeRecording:
		return "recording"
	}
	return fmt.Sprintf("BackendType(%d)", int(b))
}

// ParseBackendType converts a backend name into a BackendType.
//
// Parameters:
//   - name: "wgpu" or "recording"
//
// Returns:
//   - BackendType: the parsed type
//   - error: an error for unknown names
func ParseBackendType(name string) (BackendType, error) {
	switch name {
	case "wgpu":
		return BackendTypeWGPU, nil
	case "recording":
		return BackendTypeRecording, nil
	}
	return 0, fmt.Errorf("renderer: unknown backend %q", name)
}

// Device is the narrow slice of a graphics API the ray tracer needs: immutable buffer creation,
// a storage image, binding sets, and recording compute dispatches into a submitted frame.
//
// Every resource is created through the Device so backends can track lifetimes; nothing in the
// ray tracer touches a concrete graphics API type.
type Device interface {
	// Backend reports which implementation this is.
	Backend() BackendType

	// CreateBuffer creates a buffer initialized with contents.
	//
	// Parameters:
	//   - label: a debug label
	//   - usage: how the buffer will be bound
	//   - contents: the initial bytes; the length becomes the buffer size
	//
	// Returns:
	//   - Buffer: the new buffer
	//   - error: an error if the backend cannot allocate it
	CreateBuffer(label string, usage BufferUsage, contents []byte) (Buffer, error)

	// CreateStorageImage creates a write-only RGBA8 storage image.
	//
	// Parameters:
	//   - label: a debug label
	//   - extent: the image size in pixels
	//
	// Returns:
	//   - Image: the new image
	//   - error: an error if the backend cannot allocate it
	CreateStorageImage(label string, extent common.Extent) (Image, error)

	// RegisterComputePipeline compiles a compute kernel and its group layouts under key.
	// Registering an existing key is a no-op.
	//
	// Parameters:
	//   - key: the unique pipeline key
	//   - source: the WGSL source
	//   - entryPoint: the compute entry point name
	//   - layouts: one layout per bind group, indexed by group number
	//
	// Returns:
	//   - error: an error if compilation or layout creation fails
	RegisterComputePipeline(key, source, entryPoint string, layouts []BindingLayout) error

	// CreateBindingSet binds resources to one group of a registered pipeline.
	//
	// Parameters:
	//   - pipelineKey: the registered pipeline
	//   - group: the group index
	//   - label: a debug label
	//   - entries: one entry per layout slot
	//
	// Returns:
	//   - BindingSet: the binding set
	//   - error: ErrUnknownPipeline or ErrBindingMismatch
	CreateBindingSet(pipelineKey string, group int, label string, entries []BindingEntry) (BindingSet, error)

	// BeginComputeFrame opens a command recording for the frame.
	BeginComputeFrame() error

	// DispatchCompute records one dispatch.
	//
	// Parameters:
	//   - pipelineKey: the registered pipeline
	//   - sets: binding sets in group order
	//   - dynamicOffsets: per-group dynamic offsets, nil for groups without dynamic entries
	//   - workgroups: the dispatch dimensions
	//
	// Returns:
	//   - error: ErrNoComputeFrame, ErrUnknownPipeline or ErrBindingMismatch
	DispatchCompute(pipelineKey string, sets []BindingSet, dynamicOffsets [][]uint32, workgroups [3]uint32) error

	// EndComputeFrame submits the recorded work without waiting for completion.
	EndComputeFrame() error

	// Release frees every resource the device owns.
	Release()
}

// NewDevice creates a Device of the requested backend.
//
// Parameters:
//   - backendType: the implementation to create
//   - options: functional options applied before the backend is created
//
// Returns:
//   - Device: the device
//   - error: an error if the backend cannot be initialized
func NewDevice(backendType BackendType, options ...DeviceBuilderOption) (Device, error) {
	cfg := &deviceConfig{
		maxBindGroups: 8,
	}
	for _, opt := range options {
		opt(cfg)
	}

	switch backendType {
	case BackendTypeWGPU:
		return newWGPUDevice(cfg)
	case BackendTypeRecording:
		return NewRecordingDevice(), nil
	}
	return nil, fmt.Errorf("renderer: unsupported backend %s", backendType)
}
