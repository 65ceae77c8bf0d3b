package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// ViewUniformStride is the distance between consecutive views in the uniform block. It matches
// the minimum dynamic uniform offset alignment WebGPU guarantees.
const ViewUniformStride = 256

// GPUViewUniformSource is the WGSL definition of the ViewUniform struct. Matches GPUViewUniform.
//
//go:embed assets/view_uniform.wgsl
var GPUViewUniformSource string

// GPUViewUniform is the GPU-aligned representation of one view in the dynamic uniform block.
// Matches the WGSL ViewUniform struct bound at group 0 of the ray tracing kernel.
// Size: 160 bytes.
type GPUViewUniform struct {
	ViewProj        [16]float32 // offset   0: combined view-projection matrix
	InverseViewProj [16]float32 // offset  64: unprojects clip space into world space
	WorldPosition   [3]float32  // offset 128: camera position
	_pad            float32     // offset 140
	Viewport        [4]float32  // offset 144: x, y, width, height in pixels
}

var _ [0]struct{} = [unsafe.Sizeof(GPUViewUniform{}) % 16]struct{}{}

// Size returns the size of the GPUViewUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (160)
func (g *GPUViewUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUViewUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUViewUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.ViewProj[i]))
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.InverseViewProj[i]))
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[128+i*4:], math.Float32bits(g.WorldPosition[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[144+i*4:], math.Float32bits(g.Viewport[i]))
	}
	return buf
}
