package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-trace/common"
)

// RecordingStats counts the calls a RecordingDevice has served.
type RecordingStats struct {
	BuffersCreated     int
	BuffersReleased    int
	BytesUploaded      uint64
	ImagesCreated      int
	BindingSetsCreated int
	PipelinesCreated   int
	FramesBegun        int
	FramesSubmitted    int
	Dispatches         int
}

// DispatchRecord describes one recorded dispatch.
type DispatchRecord struct {
	Frame          int
	PipelineKey    string
	Workgroups     [3]uint32
	SetLabels      []string
	DynamicOffsets [][]uint32
	// Buffers maps "group/binding" to the label of the buffer bound there.
	Buffers map[string]string
}

// RecordingDevice is a Device that keeps everything in memory and records every call. It applies
// the same layout validation as the GPU backend, so binding mistakes surface without a GPU.
type RecordingDevice interface {
	Device

	// Stats returns the call counters.
	Stats() RecordingStats

	// Dispatches returns every dispatch recorded so far, in order.
	Dispatches() []DispatchRecord

	// Contents returns a copy of the bytes a buffer was created with.
	//
	// Parameters:
	//   - b: a buffer created by this device
	//
	// Returns:
	//   - []byte: the buffer contents
	//   - bool: false if b was not created by this device
	Contents(b Buffer) ([]byte, bool)

	// Live returns the number of buffers created and not yet released.
	Live() int
}

type recordedBuffer struct {
	label    string
	usage    BufferUsage
	contents []byte
	device   *recordingDevice
	released bool
}

func (b *recordedBuffer) Label() string      { return b.label }
func (b *recordedBuffer) Size() uint64       { return uint64(len(b.contents)) }
func (b *recordedBuffer) Usage() BufferUsage { return b.usage }
func (b *recordedBuffer) Release() {
	b.device.mu.Lock()
	defer b.device.mu.Unlock()
	if b.released {
		return
	}
	b.released = true
	b.device.stats.BuffersReleased++
}

type recordedImage struct {
	label  string
	extent common.Extent
}

func (i *recordedImage) Label() string         { return i.label }
func (i *recordedImage) Extent() common.Extent { return i.extent }
func (i *recordedImage) Release()              {}

type recordedSet struct {
	label   string
	group   int
	layout  BindingLayout
	entries []BindingEntry
}

func (s *recordedSet) Label() string { return s.label }
func (s *recordedSet) Group() int    { return s.group }
func (s *recordedSet) Release()      {}

type recordingDevice struct {
	mu *sync.Mutex

	pipelines  map[string][]BindingLayout
	inFrame    bool
	stats      RecordingStats
	dispatches []DispatchRecord
	released   bool
}

var _ RecordingDevice = &recordingDevice{}

// NewRecordingDevice creates an empty RecordingDevice.
//
// Returns:
//   - RecordingDevice: the device
func NewRecordingDevice() RecordingDevice {
	return &recordingDevice{
		mu:        &sync.Mutex{},
		pipelines: make(map[string][]BindingLayout),
	}
}

func (d *recordingDevice) Backend() BackendType {
	return BackendTypeRecording
}

func (d *recordingDevice) CreateBuffer(label string, usage BufferUsage, contents []byte) (Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return nil, ErrReleased
	}
	d.stats.BuffersCreated++
	d.stats.BytesUploaded += uint64(len(contents))
	return &recordedBuffer{
		label:    label,
		usage:    usage,
		contents: append([]byte(nil), contents...),
		device:   d,
	}, nil
}

func (d *recordingDevice) CreateStorageImage(label string, extent common.Extent) (Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return nil, ErrReleased
	}
	if extent.Width == 0 || extent.Height == 0 {
		return nil, fmt.Errorf("renderer: image %q has empty extent %s", label, extent)
	}
	d.stats.ImagesCreated++
	return &recordedImage{label: label, extent: extent}, nil
}

func (d *recordingDevice) RegisterComputePipeline(key, source, entryPoint string, layouts []BindingLayout) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return ErrReleased
	}
	if _, ok := d.pipelines[key]; ok {
		return nil
	}
	if source == "" || entryPoint == "" {
		return fmt.Errorf("renderer: pipeline %q needs source and entry point", key)
	}
	d.pipelines[key] = append([]BindingLayout(nil), layouts...)
	d.stats.PipelinesCreated++
	return nil
}

func (d *recordingDevice) CreateBindingSet(pipelineKey string, group int, label string, entries []BindingEntry) (BindingSet, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return nil, ErrReleased
	}

	layouts, ok := d.pipelines[pipelineKey]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPipeline, pipelineKey)
	}
	if group < 0 || group >= len(layouts) {
		return nil, fmt.Errorf("%w: %q has no group %d", ErrBindingMismatch, pipelineKey, group)
	}
	if err := validateEntries(layouts[group], entries); err != nil {
		return nil, err
	}
	for _, e := range entries {
		if rb, ok := e.Buffer.(*recordedBuffer); ok && rb.released {
			return nil, fmt.Errorf("%w: buffer %q was released", ErrBindingMismatch, rb.label)
		}
	}
	d.stats.BindingSetsCreated++
	return &recordedSet{
		label:   label,
		group:   group,
		layout:  layouts[group],
		entries: append([]BindingEntry(nil), entries...),
	}, nil
}

func (d *recordingDevice) BeginComputeFrame() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return ErrReleased
	}
	d.inFrame = true
	d.stats.FramesBegun++
	return nil
}

func (d *recordingDevice) DispatchCompute(pipelineKey string, sets []BindingSet, dynamicOffsets [][]uint32, workgroups [3]uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.inFrame {
		return ErrNoComputeFrame
	}
	layouts, ok := d.pipelines[pipelineKey]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPipeline, pipelineKey)
	}
	if err := validateDispatch(layouts, sets, dynamicOffsets); err != nil {
		return err
	}

	record := DispatchRecord{
		Frame:          d.stats.FramesBegun,
		PipelineKey:    pipelineKey,
		Workgroups:     workgroups,
		SetLabels:      make([]string, len(sets)),
		DynamicOffsets: make([][]uint32, len(sets)),
		Buffers:        make(map[string]string),
	}
	for g, s := range sets {
		rs := s.(*recordedSet)
		record.SetLabels[g] = rs.label

		var offsets []uint32
		if g < len(dynamicOffsets) {
			offsets = dynamicOffsets[g]
		}
		record.DynamicOffsets[g] = append([]uint32(nil), offsets...)

		next := 0
		for _, e := range rs.entries {
			if e.Buffer == nil {
				continue
			}
			record.Buffers[fmt.Sprintf("%d/%d", g, e.Binding)] = e.Buffer.Label()
			le, _ := rs.layout.Entry(e.Binding)
			if le.Kind != BindingUniformDynamic {
				continue
			}
			off := uint64(offsets[next])
			next++
			if off+le.MinSize > e.Buffer.Size() {
				return fmt.Errorf("%w: group %d dynamic offset %d overruns buffer %q of %d bytes",
					ErrBindingMismatch, g, off, e.Buffer.Label(), e.Buffer.Size())
			}
		}
	}

	d.stats.Dispatches++
	d.dispatches = append(d.dispatches, record)
	return nil
}

func (d *recordingDevice) EndComputeFrame() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.inFrame {
		return nil
	}
	d.inFrame = false
	d.stats.FramesSubmitted++
	return nil
}

func (d *recordingDevice) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.released = true
	clear(d.pipelines)
}

func (d *recordingDevice) Stats() RecordingStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

func (d *recordingDevice) Dispatches() []DispatchRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]DispatchRecord(nil), d.dispatches...)
}

func (d *recordingDevice) Contents(b Buffer) ([]byte, bool) {
	rb, ok := b.(*recordedBuffer)
	if !ok || rb.device != d {
		return nil, false
	}
	return append([]byte(nil), rb.contents...), true
}

func (d *recordingDevice) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats.BuffersCreated - d.stats.BuffersReleased
}
