package renderer

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-trace/common"
)

type wgpuBuffer struct {
	label  string
	size   uint64
	usage  BufferUsage
	buffer *wgpu.Buffer
}

func (b *wgpuBuffer) Label() string      { return b.label }
func (b *wgpuBuffer) Size() uint64       { return b.size }
func (b *wgpuBuffer) Usage() BufferUsage { return b.usage }
func (b *wgpuBuffer) Release()           { b.buffer.Release() }

type wgpuImage struct {
	label   string
	extent  common.Extent
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (i *wgpuImage) Label() string         { return i.label }
func (i *wgpuImage) Extent() common.Extent { return i.extent }
func (i *wgpuImage) Release() {
	i.view.Release()
	i.texture.Release()
}

type wgpuBindingSet struct {
	label string
	group int
	bg    *wgpu.BindGroup
}

func (s *wgpuBindingSet) Label() string { return s.label }
func (s *wgpuBindingSet) Group() int    { return s.group }
func (s *wgpuBindingSet) Release()      { s.bg.Release() }

type wgpuComputePipeline struct {
	pipeline     *wgpu.ComputePipeline
	layouts      []BindingLayout
	groupLayouts []*wgpu.BindGroupLayout
}

type wgpuDevice struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter

	pipelines map[string]*wgpuComputePipeline

	// Compute frame state for batching all dispatches of a frame into a single GPU submission
	computeFrameEncoder *wgpu.CommandEncoder

	released bool
}

var _ Device = &wgpuDevice{}

func newWGPUDevice(cfg *deviceConfig) (*wgpuDevice, error) {
	w := &wgpuDevice{
		mu:        &sync.Mutex{},
		instance:  wgpu.CreateInstance(nil),
		pipelines: make(map[string]*wgpuComputePipeline),
	}

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: cfg.forceFallbackAdapter,
	})
	if err != nil {
		w.instance.Release()
		return nil, fmt.Errorf("renderer: request adapter: %w", err)
	}
	w.adapter = a

	// Start from the WebGPU default limits and raise MaxBindGroups so the kernel's six groups fit.
	limits := wgpu.DefaultLimits()
	limits.MaxBindGroups = cfg.maxBindGroups

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: common.Coalesce(cfg.label, "Compute Device"),
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		a.Release()
		w.instance.Release()
		return nil, fmt.Errorf("renderer: request device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()

	logger.Noticef("wgpu device ready (fallback adapter: %t)", cfg.forceFallbackAdapter)
	return w, nil
}

func (b *wgpuDevice) Backend() BackendType {
	return BackendTypeWGPU
}

func (b *wgpuDevice) CreateBuffer(label string, usage BufferUsage, contents []byte) (Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return nil, ErrReleased
	}

	buf, err := b.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: contents,
		Usage:    toWGPUBufferUsage(usage),
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: create buffer %q: %w", label, err)
	}
	return &wgpuBuffer{label: label, size: uint64(len(contents)), usage: usage, buffer: buf}, nil
}

func (b *wgpuDevice) CreateStorageImage(label string, extent common.Extent) (Image, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return nil, ErrReleased
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label,
		Usage:     wgpu.TextureUsageStorageBinding | wgpu.TextureUsageCopySrc,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              extent.Width,
			Height:             extent.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8Unorm,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: create image %q: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("renderer: create image view %q: %w", label, err)
	}
	return &wgpuImage{label: label, extent: extent, texture: tex, view: view}, nil
}

func (b *wgpuDevice) RegisterComputePipeline(key, source, entryPoint string, layouts []BindingLayout) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return ErrReleased
	}
	if _, ok := b.pipelines[key]; ok {
		return nil
	}

	s, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return fmt.Errorf("renderer: compile %q: %w", key, err)
	}
	defer s.Release()

	groupLayouts := make([]*wgpu.BindGroupLayout, len(layouts))
	for g, l := range layouts {
		desc := toWGPULayoutDescriptor(l)
		bgl, bglErr := b.device.CreateBindGroupLayout(&desc)
		if bglErr != nil {
			return fmt.Errorf("renderer: bind group layout %d of %q: %w", g, key, bglErr)
		}
		groupLayouts[g] = bgl
	}

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            key,
		BindGroupLayouts: groupLayouts,
	})
	if err != nil {
		return fmt.Errorf("renderer: pipeline layout %q: %w", key, err)
	}
	defer layout.Release()

	created, err := b.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  key + " Compute Pipeline",
		Layout: layout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     s,
			EntryPoint: entryPoint,
		},
	})
	if err != nil {
		return fmt.Errorf("renderer: compute pipeline %q: %w", key, err)
	}

	b.pipelines[key] = &wgpuComputePipeline{
		pipeline:     created,
		layouts:      layouts,
		groupLayouts: groupLayouts,
	}
	logger.Infof("compute pipeline %q registered with %d groups", key, len(layouts))
	return nil
}

func (b *wgpuDevice) CreateBindingSet(pipelineKey string, group int, label string, entries []BindingEntry) (BindingSet, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return nil, ErrReleased
	}

	p, ok := b.pipelines[pipelineKey]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPipeline, pipelineKey)
	}
	if group < 0 || group >= len(p.layouts) {
		return nil, fmt.Errorf("%w: %q has no group %d", ErrBindingMismatch, pipelineKey, group)
	}
	if err := validateEntries(p.layouts[group], entries); err != nil {
		return nil, err
	}

	bindGroupEntries := make([]wgpu.BindGroupEntry, len(entries))
	for i, e := range entries {
		le, _ := p.layouts[group].Entry(e.Binding)
		if e.Image != nil {
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding:     e.Binding,
				TextureView: e.Image.(*wgpuImage).view,
			}
			continue
		}
		var size uint64 = wgpu.WholeSize
		if le.Kind == BindingUniformDynamic {
			size = le.MinSize
		}
		bindGroupEntries[i] = wgpu.BindGroupEntry{
			Binding: e.Binding,
			Buffer:  e.Buffer.(*wgpuBuffer).buffer,
			Offset:  0,
			Size:    size,
		}
	}

	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label,
		Layout:  p.groupLayouts[group],
		Entries: bindGroupEntries,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: bind group %q: %w", label, err)
	}
	return &wgpuBindingSet{label: label, group: group, bg: bg}, nil
}

func (b *wgpuDevice) BeginComputeFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return ErrReleased
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	b.computeFrameEncoder = encoder
	return nil
}

func (b *wgpuDevice) DispatchCompute(pipelineKey string, sets []BindingSet, dynamicOffsets [][]uint32, workgroups [3]uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.computeFrameEncoder == nil {
		return ErrNoComputeFrame
	}
	p, ok := b.pipelines[pipelineKey]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPipeline, pipelineKey)
	}
	if err := validateDispatch(p.layouts, sets, dynamicOffsets); err != nil {
		return err
	}

	pass := b.computeFrameEncoder.BeginComputePass(nil)
	pass.SetPipeline(p.pipeline)
	for g, set := range sets {
		var offsets []uint32
		if g < len(dynamicOffsets) {
			offsets = dynamicOffsets[g]
		}
		pass.SetBindGroup(uint32(g), set.(*wgpuBindingSet).bg, offsets)
	}
	pass.DispatchWorkgroups(workgroups[0], workgroups[1], workgroups[2])
	pass.End()
	return nil
}

func (b *wgpuDevice) EndComputeFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.computeFrameEncoder == nil {
		return nil
	}

	commandBuffer, err := b.computeFrameEncoder.Finish(nil)
	if err != nil {
		b.computeFrameEncoder.Release()
		b.computeFrameEncoder = nil
		return fmt.Errorf("renderer: finish compute frame: %w", err)
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	b.computeFrameEncoder.Release()
	b.computeFrameEncoder = nil
	return nil
}

func (b *wgpuDevice) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return
	}
	b.released = true

	for _, p := range b.pipelines {
		p.pipeline.Release()
		for _, gl := range p.groupLayouts {
			gl.Release()
		}
	}
	clear(b.pipelines)
	b.device.Release()
	b.adapter.Release()
	b.instance.Release()
}

func toWGPUBufferUsage(usage BufferUsage) wgpu.BufferUsage {
	var u wgpu.BufferUsage
	if usage&BufferUsageStorage != 0 {
		u |= wgpu.BufferUsageStorage
	}
	if usage&BufferUsageUniform != 0 {
		u |= wgpu.BufferUsageUniform
	}
	if usage&BufferUsageCopyDst != 0 {
		u |= wgpu.BufferUsageCopyDst
	}
	return u
}

func toWGPULayoutDescriptor(l BindingLayout) wgpu.BindGroupLayoutDescriptor {
	entries := make([]wgpu.BindGroupLayoutEntry, len(l.Entries))
	for i, e := range l.Entries {
		entry := wgpu.BindGroupLayoutEntry{
			Binding:    e.Binding,
			Visibility: wgpu.ShaderStageCompute,
		}
		switch e.Kind {
		case BindingUniform:
			entry.Buffer.Type = wgpu.BufferBindingTypeUniform
			entry.Buffer.MinBindingSize = e.MinSize
		case BindingUniformDynamic:
			entry.Buffer.Type = wgpu.BufferBindingTypeUniform
			entry.Buffer.HasDynamicOffset = true
			entry.Buffer.MinBindingSize = e.MinSize
		case BindingStorageReadOnly:
			entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
			entry.Buffer.MinBindingSize = e.MinSize
		case BindingStorageImageWrite:
			entry.StorageTexture.Access = wgpu.StorageTextureAccessWriteOnly
			entry.StorageTexture.Format = wgpu.TextureFormatRGBA8Unorm
			entry.StorageTexture.ViewDimension = wgpu.TextureViewDimension2D
		}
		entries[i] = entry
	}
	return wgpu.BindGroupLayoutDescriptor{
		Label:   l.Label,
		Entries: entries,
	}
}
