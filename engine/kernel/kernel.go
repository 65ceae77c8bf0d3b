// Package kernel holds the ray tracing compute kernel and the binding contract the host fills:
// the GPU record types, the six bind group layouts and the WGSL source that declares them.
package kernel

import (
	_ "embed"
	"errors"
	"fmt"
	"strconv"

	"github.com/gogpu/naga"

	"github.com/Carmen-Shannon/oxy-trace/engine/camera"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/shader"
)

//go:embed raytrace.wgsl
var source string

const (
	// PipelineKey identifies the kernel's compute pipeline on a renderer.Device.
	PipelineKey = "raytrace"

	// EntryPoint is the kernel's @compute function.
	EntryPoint = "trace"

	// DefaultTileSize is the edge length in pixels covered by one workgroup.
	DefaultTileSize = 32

	// LocalSize is the edge length of the kernel's workgroup in invocations.
	LocalSize = 8
)

// ErrInvalidTileSize is returned for tile sizes the kernel cannot cover with its workgroup.
var ErrInvalidTileSize = errors.New("kernel: tile size must be a positive multiple of 8")

// BlockSize returns the pixel block edge each invocation shades for a tile size.
//
// Parameters:
//   - tileSize: the tile edge length in pixels
//
// Returns:
//   - uint32: the block edge length
//   - error: ErrInvalidTileSize if tileSize is not a positive multiple of LocalSize
func BlockSize(tileSize uint32) (uint32, error) {
	if tileSize == 0 || tileSize%LocalSize != 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidTileSize, tileSize)
	}
	return tileSize / LocalSize, nil
}

// Load expands the kernel source for a tile size and reflects it.
//
// Parameters:
//   - tileSize: the tile edge length in pixels
//
// Returns:
//   - shader.Shader: the expanded and reflected kernel
//   - error: an error for invalid tile sizes or malformed source
func Load(tileSize uint32) (shader.Shader, error) {
	block, err := BlockSize(tileSize)
	if err != nil {
		return nil, err
	}
	return shader.NewShader(PipelineKey, source,
		shader.WithInclude("view", camera.GPUViewUniformSource),
		shader.WithInclude("vertex", GPUVertexSource),
		shader.WithInclude("material", GPUMaterialSource),
		shader.WithInclude("instance", GPUInstanceSource),
		shader.WithInclude("counter", GPUCounterSource),
		shader.WithInclude("light", GPULightSource),
		shader.WithInclude("seed", GPUSeedSource),
		shader.WithConstant("TILE", strconv.FormatUint(uint64(tileSize), 10)+"u"),
		shader.WithConstant("BLOCK", strconv.FormatUint(uint64(block), 10)+"u"),
	)
}

// Validate loads the kernel, checks its declarations against Layouts and the GPU record sizes,
// and compiles it with naga so contract drift surfaces at startup rather than on the GPU.
//
// Parameters:
//   - tileSize: the tile edge length in pixels
//
// Returns:
//   - shader.Shader: the validated kernel
//   - error: the first problem found
func Validate(tileSize uint32) (shader.Shader, error) {
	s, err := Load(tileSize)
	if err != nil {
		return nil, err
	}
	if s.EntryPoint() != EntryPoint {
		return nil, fmt.Errorf("kernel: entry point is %q, want %q", s.EntryPoint(), EntryPoint)
	}
	if wg := s.WorkgroupSize(); wg != [3]uint32{LocalSize, LocalSize, 1} {
		return nil, fmt.Errorf("kernel: workgroup size is %v, want %dx%dx1", wg, LocalSize, LocalSize)
	}
	if err := s.MatchLayouts(Layouts()); err != nil {
		return nil, err
	}
	for name, size := range recordSizes() {
		got, ok := s.StructSize(name)
		if !ok {
			return nil, fmt.Errorf("kernel: struct %s is not declared", name)
		}
		if got != size {
			return nil, fmt.Errorf("kernel: struct %s is %d bytes in WGSL, %d on the host", name, got, size)
		}
	}
	if _, err := naga.Compile(s.Source()); err != nil {
		return nil, fmt.Errorf("kernel: compile: %w", err)
	}
	return s, nil
}

// recordSizes maps every WGSL struct shared with the host to the size of its Go record.
func recordSizes() map[string]uint64 {
	var (
		vertex   GPUVertex
		material GPUMaterial
		instance GPUInstance
		counter  GPUCounter
		light    GPULight
		seed     GPUSeed
		view     camera.GPUViewUniform
	)
	return map[string]uint64{
		"ViewUniform": uint64(view.Size()),
		"Vertex":      uint64(vertex.Size()),
		"Material":    uint64(material.Size()),
		"Instance":    uint64(instance.Size()),
		"Counter":     uint64(counter.Size()),
		"Light":       uint64(light.Size()),
		"Seed":        uint64(seed.Size()),
	}
}
