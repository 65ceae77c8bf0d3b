package raytracer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/camera"
	"github.com/Carmen-Shannon/oxy-trace/engine/kernel"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
)

// FrameInputs are the per-frame values bound next to the staged tables.
type FrameInputs struct {
	// ViewBlock is the camera's dynamic uniform block; ViewOffset selects the view inside it.
	ViewBlock  []byte
	ViewOffset uint32
	Counter    uint32
	Light      [3]float32
	Seed       [2]float32
}

// Bindings are the six binding sets of one frame, indexed by group, with their dynamic offsets.
type Bindings struct {
	Sets           []renderer.BindingSet
	DynamicOffsets [][]uint32
}

// bindingBuilder is the implementation of the BindingBuilder interface.
type bindingBuilder struct {
	device      renderer.Device
	pipelineKey string
	image       renderer.Image

	sets     []renderer.BindingSet
	uniforms []renderer.Buffer
}

// BindingBuilder assembles the kernel's binding sets each frame from the staged buffers, the
// output image and fresh per-frame uniforms. The previous frame's sets and uniforms are released
// once the new ones exist.
type BindingBuilder interface {
	// Build creates this frame's binding sets.
	//
	// Parameters:
	//   - buffers: the staged table buffers; all must be set
	//   - in: the per-frame values
	//
	// Returns:
	//   - Bindings: the sets and dynamic offsets to dispatch with
	//   - error: an error from the device
	Build(buffers Buffers, in FrameInputs) (Bindings, error)

	// Release releases the sets and uniforms of the last frame.
	Release()
}

var _ BindingBuilder = &bindingBuilder{}

// NewBindingBuilder creates a BindingBuilder for a registered pipeline.
//
// Parameters:
//   - device: the device that owns the pipeline
//   - pipelineKey: the registered kernel pipeline
//   - image: the output image bound in the output group
//
// Returns:
//   - BindingBuilder: the builder
func NewBindingBuilder(device renderer.Device, pipelineKey string, image renderer.Image) BindingBuilder {
	return &bindingBuilder{device: device, pipelineKey: pipelineKey, image: image}
}

func (b *bindingBuilder) Build(buffers Buffers, in FrameInputs) (Bindings, error) {
	if buffers.Vertices == nil || buffers.Indices == nil || buffers.Instances == nil || buffers.InstanceCount == nil || buffers.Materials == nil {
		return Bindings{}, fmt.Errorf("raytracer: binding before every table was staged")
	}

	var (
		sets     []renderer.BindingSet
		uniforms []renderer.Buffer
	)
	fail := func(err error) (Bindings, error) {
		for _, s := range sets {
			s.Release()
		}
		for _, u := range uniforms {
			u.Release()
		}
		return Bindings{}, err
	}
	uniform := func(label string, data []byte) (renderer.Buffer, error) {
		u, err := b.device.CreateBuffer(label, renderer.BufferUsageUniform, data)
		if err == nil {
			uniforms = append(uniforms, u)
		}
		return u, err
	}

	view, err := uniform("raytrace/view", viewBlock(in.ViewBlock, in.ViewOffset))
	if err != nil {
		return fail(err)
	}
	counter := kernel.GPUCounter{Value: in.Counter}
	counterBuf, err := uniform("raytrace/counter", counter.Marshal())
	if err != nil {
		return fail(err)
	}
	light := kernel.GPULight{Direction: in.Light}
	lightBuf, err := uniform("raytrace/light", light.Marshal())
	if err != nil {
		return fail(err)
	}
	seed := kernel.GPUSeed{Value: in.Seed}
	seedBuf, err := uniform("raytrace/seed", seed.Marshal())
	if err != nil {
		return fail(err)
	}

	groups := [kernel.GroupCount][]renderer.BindingEntry{
		kernel.GroupView: {{Binding: 0, Buffer: view}},
		kernel.GroupOutput: {
			{Binding: kernel.BindingOutputImage, Image: b.image},
			{Binding: kernel.BindingOutputCounter, Buffer: counterBuf},
		},
		kernel.GroupGeometry: {
			{Binding: kernel.BindingVertices, Buffer: buffers.Vertices},
			{Binding: kernel.BindingIndices, Buffer: buffers.Indices},
			{Binding: kernel.BindingInstances, Buffer: buffers.Instances},
			{Binding: kernel.BindingInstanceCount, Buffer: buffers.InstanceCount},
		},
		kernel.GroupMaterials: {{Binding: 0, Buffer: buffers.Materials}},
		kernel.GroupLight:     {{Binding: 0, Buffer: lightBuf}},
		kernel.GroupSeed:      {{Binding: 0, Buffer: seedBuf}},
	}
	for g, entries := range groups {
		set, err := b.device.CreateBindingSet(b.pipelineKey, g, fmt.Sprintf("raytrace/set%d", g), entries)
		if err != nil {
			return fail(fmt.Errorf("raytracer: binding group %d: %w", g, err))
		}
		sets = append(sets, set)
	}

	b.Release()
	b.sets, b.uniforms = sets, uniforms

	offsets := make([][]uint32, kernel.GroupCount)
	offsets[kernel.GroupView] = []uint32{in.ViewOffset}
	return Bindings{Sets: sets, DynamicOffsets: offsets}, nil
}

func (b *bindingBuilder) Release() {
	for _, s := range b.sets {
		s.Release()
	}
	for _, u := range b.uniforms {
		u.Release()
	}
	b.sets, b.uniforms = nil, nil
}

// viewBlock returns the camera block extended so a full view window fits at offset.
func viewBlock(block []byte, offset uint32) []byte {
	size := common.AlignUp(max(len(block), int(offset)+camera.ViewUniformStride), common.GPUAlignment)
	if size == len(block) {
		return block
	}
	padded := make([]byte, size)
	copy(padded, block)
	return padded
}
