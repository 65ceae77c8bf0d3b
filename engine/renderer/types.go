package renderer

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-trace/common"
)

var (
	// ErrNoComputeFrame is returned when a dispatch is recorded outside BeginComputeFrame/EndComputeFrame.
	ErrNoComputeFrame = errors.New("renderer: no compute frame in progress")

	// ErrUnknownPipeline is returned for pipeline keys that were never registered.
	ErrUnknownPipeline = errors.New("renderer: unknown compute pipeline")

	// ErrBindingMismatch is returned when binding set entries or dynamic offsets do not satisfy the layout.
	ErrBindingMismatch = errors.New("renderer: binding does not match layout")

	// ErrReleased is returned when a released device is used.
	ErrReleased = errors.New("renderer: device released")
)

// BufferUsage is a bit set describing how a buffer is bound.
type BufferUsage uint32

const (
	// BufferUsageStorage allows binding as a storage buffer.
	BufferUsageStorage BufferUsage = 1 << iota
	// BufferUsageUniform allows binding as a uniform buffer.
	BufferUsageUniform
	// BufferUsageCopyDst allows writing into the buffer after creation.
	BufferUsageCopyDst
)

// BindingKind is the resource type a layout entry expects.
type BindingKind int

const (
	// BindingUniform is a uniform buffer bound at offset zero.
	BindingUniform BindingKind = iota
	// BindingUniformDynamic is a uniform buffer bound at a per-dispatch dynamic offset.
	BindingUniformDynamic
	// BindingStorageReadOnly is a read-only storage buffer.
	BindingStorageReadOnly
	// BindingStorageImageWrite is a write-only 2D RGBA8 storage image.
	BindingStorageImageWrite
)

func (k BindingKind) String() string {
	switch k {
	case BindingUniform:
		return "uniform"
	case BindingUniformDynamic:
		return "uniform(dynamic)"
	case BindingStorageReadOnly:
		return "storage(read)"
	case BindingStorageImageWrite:
		return "storage_image(write)"
	}
	return "unknown"
}

// IsBuffer reports whether the kind binds a buffer rather than an image.
func (k BindingKind) IsBuffer() bool {
	return k != BindingStorageImageWrite
}

// LayoutEntry declares one binding slot of a group.
type LayoutEntry struct {
	Binding uint32
	Kind    BindingKind
	// MinSize is the smallest buffer range the kernel reads. For dynamic uniforms it is also the
	// size of the bound window.
	MinSize uint64
}

// BindingLayout declares the slots of one bind group.
type BindingLayout struct {
	Label   string
	Entries []LayoutEntry
}

// DynamicCount returns the number of entries bound with a dynamic offset.
func (l BindingLayout) DynamicCount() int {
	n := 0
	for _, e := range l.Entries {
		if e.Kind == BindingUniformDynamic {
			n++
		}
	}
	return n
}

// Entry looks up the layout entry for a binding index.
func (l BindingLayout) Entry(binding uint32) (LayoutEntry, bool) {
	for _, e := range l.Entries {
		if e.Binding == binding {
			return e, true
		}
	}
	return LayoutEntry{}, false
}

// Buffer is a GPU buffer handle. Releasing a handle drops the caller's reference; the backing
// memory is reclaimed once no in-flight work uses it.
type Buffer interface {
	Label() string
	Size() uint64
	Usage() BufferUsage
	Release()
}

// Image is a GPU storage image handle.
type Image interface {
	Label() string
	Extent() common.Extent
	Release()
}

// BindingEntry supplies the resource for one binding slot. Exactly one of Buffer or Image is set.
type BindingEntry struct {
	Binding uint32
	Buffer  Buffer
	Image   Image
}

// BindingSet is a bound group of resources matching one BindingLayout.
type BindingSet interface {
	Label() string
	Group() int
	Release()
}
