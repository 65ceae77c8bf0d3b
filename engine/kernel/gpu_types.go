package kernel

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUVertexSource is the WGSL definition of the Vertex struct. Matches GPUVertex.
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertex is one entry of the shared vertex array.
// Size: 32 bytes.
type GPUVertex struct {
	Position [3]float32 // offset  0: model-space position
	_pad0    float32    // offset 12
	Normal   [3]float32 // offset 16: model-space normal
	_pad1    float32    // offset 28
}

var _ [0]struct{} = [unsafe.Sizeof(GPUVertex{}) % 16]struct{}{}

// NewGPUVertex builds a vertex record from a position and a normal.
//
// Parameters:
//   - position: the model-space position
//   - normal: the model-space normal
//
// Returns:
//   - GPUVertex: the record
func NewGPUVertex(position, normal [3]float32) GPUVertex {
	return GPUVertex{Position: position, Normal: normal}
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, 32)
	putVec3(buf[0:], g.Position)
	putVec3(buf[16:], g.Normal)
	return buf
}

// GPUMaterialSource is the WGSL definition of the Material struct. Matches GPUMaterial.
//
//go:embed assets/material.wgsl
var GPUMaterialSource string

// GPUMaterial is one entry of the flat material array.
// Size: 48 bytes.
type GPUMaterial struct {
	BaseColor   [4]float32 // offset  0: linear RGBA albedo
	Emissive    [4]float32 // offset 16: linear RGBA emitted radiance
	Roughness   float32    // offset 32
	Metallic    float32    // offset 36
	Reflectance float32    // offset 40
	_pad0       float32    // offset 44
}

var _ [0]struct{} = [unsafe.Sizeof(GPUMaterial{}) % 16]struct{}{}

// Size returns the size of the GPUMaterial struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes
func (g *GPUMaterial) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterial struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (g *GPUMaterial) Marshal() []byte {
	buf := make([]byte, 48)
	putVec4(buf[0:], g.BaseColor)
	putVec4(buf[16:], g.Emissive)
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(g.Roughness))
	binary.LittleEndian.PutUint32(buf[36:40], math.Float32bits(g.Metallic))
	binary.LittleEndian.PutUint32(buf[40:44], math.Float32bits(g.Reflectance))
	return buf
}

// GPUInstanceSource is the WGSL definition of the Instance struct. Matches GPUInstance.
//
//go:embed assets/instance.wgsl
var GPUInstanceSource string

// GPUInstance describes one drawable entity: its world transform and the resolved locations of
// its mesh and material in the shared arrays.
// Size: 80 bytes.
type GPUInstance struct {
	Transform   [16]float32 // offset  0: column-major model-to-world matrix
	IndexOffset uint32      // offset 64: first index of the mesh in the shared index array
	IndexCount  uint32      // offset 68: number of indices of the mesh
	Material    uint32      // offset 72: slot in the material array
	_pad0       uint32      // offset 76
}

var _ [0]struct{} = [unsafe.Sizeof(GPUInstance{}) % 16]struct{}{}

// Size returns the size of the GPUInstance struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes
func (g *GPUInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUInstance struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 80-byte buffer ready for GPU upload
func (g *GPUInstance) Marshal() []byte {
	buf := make([]byte, 80)
	for i, v := range g.Transform {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	binary.LittleEndian.PutUint32(buf[64:68], g.IndexOffset)
	binary.LittleEndian.PutUint32(buf[68:72], g.IndexCount)
	binary.LittleEndian.PutUint32(buf[72:76], g.Material)
	return buf
}

// GPUCounterSource is the WGSL definition of the Counter struct. Matches GPUCounter.
//
//go:embed assets/counter.wgsl
var GPUCounterSource string

// GPUCounter is a single u32 uniform padded to 16 bytes. It carries both the accumulation counter
// and the instance count.
// Size: 16 bytes.
type GPUCounter struct {
	Value uint32    // offset 0
	_pad  [3]uint32 // offset 4
}

var _ [0]struct{} = [unsafe.Sizeof(GPUCounter{}) % 16]struct{}{}

// Size returns the size of the GPUCounter struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes
func (g *GPUCounter) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCounter struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (g *GPUCounter) Marshal() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], g.Value)
	return buf
}

// GPULightSource is the WGSL definition of the Light struct. Matches GPULight.
//
//go:embed assets/light.wgsl
var GPULightSource string

// GPULight is the directional light uniform.
// Size: 16 bytes.
type GPULight struct {
	Direction [3]float32 // offset  0: direction towards the light, not normalized
	_pad0     float32    // offset 12
}

var _ [0]struct{} = [unsafe.Sizeof(GPULight{}) % 16]struct{}{}

// Size returns the size of the GPULight struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes
func (g *GPULight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, 16)
	putVec3(buf, g.Direction)
	return buf
}

// GPUSeedSource is the WGSL definition of the Seed struct. Matches GPUSeed.
//
//go:embed assets/seed.wgsl
var GPUSeedSource string

// GPUSeed is the per-frame random seed uniform.
// Size: 16 bytes.
type GPUSeed struct {
	Value [2]float32 // offset 0: two uniform samples in [0, 1)
	_pad0 [2]float32 // offset 8
}

var _ [0]struct{} = [unsafe.Sizeof(GPUSeed{}) % 16]struct{}{}

// Size returns the size of the GPUSeed struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes
func (g *GPUSeed) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSeed struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (g *GPUSeed) Marshal() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Value[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Value[1]))
	return buf
}

func putVec3(buf []byte, v [3]float32) {
	for i, c := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(c))
	}
}

func putVec4(buf []byte, v [4]float32) {
	for i, c := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(c))
	}
}
