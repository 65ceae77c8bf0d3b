// Package camera computes view matrices and publishes them as per-view entries of a dynamic
// uniform block that the ray tracing kernel binds with a per-frame offset.
package camera

import (
	"sync"

	"cogentcore.org/core/math32"

	"github.com/Carmen-Shannon/oxy-trace/common"
)

// ViewOffsetSource reports where in the uniform block the current frame's view lives.
type ViewOffsetSource interface {
	// ViewOffset returns the byte offset of the view published this frame.
	//
	// Returns:
	//   - uint32: the dynamic offset, valid only when ok is true
	//   - bool: false if no view has been published since the frame began
	ViewOffset() (uint32, bool)
}

// ViewUniformSource exposes the bytes of the dynamic uniform block.
type ViewUniformSource interface {
	// UniformBlock returns a copy of the block. Its length is a multiple of ViewUniformStride,
	// or zero if no view was ever published.
	UniformBlock() []byte
}

// Views is everything the ray tracer needs from the camera collaborator.
type Views interface {
	ViewOffsetSource
	ViewUniformSource
}

type cameraImpl struct {
	mu *sync.Mutex

	position math32.Vector3
	target   math32.Vector3
	up       math32.Vector3

	fov      float32
	near     float32
	far      float32
	viewport common.Extent

	viewProj        common.Mat4
	inverseViewProj common.Mat4

	block     []byte
	offset    uint32
	published bool
	fresh     bool
}

// Camera is a perspective camera looking from a position at a target.
//
// Each frame the owner calls BeginFrame, then PublishView once per view it renders. Published
// views accumulate in a uniform block at ViewUniformStride intervals; the block is replaced by
// the first PublishView of the next frame.
type Camera interface {
	Views

	// Position returns the world-space eye position.
	Position() math32.Vector3

	// Target returns the world-space look-at point.
	Target() math32.Vector3

	// SetPosition moves the eye.
	//
	// Parameters:
	//   - x, y, z: world-space coordinates
	SetPosition(x, y, z float32)

	// SetTarget changes the look-at point.
	//
	// Parameters:
	//   - x, y, z: world-space coordinates
	SetTarget(x, y, z float32)

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// SetFov sets the vertical field of view in radians.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// SetViewport sets the pixel size of the image the camera renders into. The aspect ratio
	// is derived from it.
	//
	// Parameters:
	//   - viewport: the image size
	SetViewport(viewport common.Extent)

	// ViewProjectionMatrix returns the combined view-projection matrix (column-major).
	ViewProjectionMatrix() [16]float32

	// InverseViewProjectionMatrix returns the inverse of ViewProjectionMatrix (column-major).
	InverseViewProjectionMatrix() [16]float32

	// BeginFrame starts a new frame. ViewOffset reports false until the next PublishView.
	BeginFrame()

	// PublishView appends the current view to the uniform block.
	//
	// Returns:
	//   - uint32: the byte offset of the published view
	PublishView() uint32
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera at (0, 0, 5) looking at the origin with a 45 degree field of view
// and a 1024x768 viewport.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: math32.Vec3(0, 0, 5),
		up:       math32.Vec3(0, 1, 0),
		fov:      math32.DegToRad(45),
		near:     0.1,
		far:      100,
		viewport: common.Extent{Width: 1024, Height: 768},
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Position() math32.Vector3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() math32.Vector3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) SetPosition(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = math32.Vec3(x, y, z)
	c.updateMatrices()
}

func (c *cameraImpl) SetTarget(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = math32.Vec3(x, y, z)
	c.updateMatrices()
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) SetViewport(viewport common.Extent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport = viewport
	c.updateMatrices()
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProj
}

func (c *cameraImpl) InverseViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inverseViewProj
}

func (c *cameraImpl) BeginFrame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = false
	c.fresh = true
}

func (c *cameraImpl) PublishView() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fresh || c.block == nil {
		c.block = c.block[:0]
		c.fresh = false
	}
	view := GPUViewUniform{
		ViewProj:        c.viewProj,
		InverseViewProj: c.inverseViewProj,
		WorldPosition:   [3]float32{c.position.X, c.position.Y, c.position.Z},
		Viewport:        [4]float32{0, 0, float32(c.viewport.Width), float32(c.viewport.Height)},
	}
	offset := uint32(len(c.block))
	entry := make([]byte, ViewUniformStride)
	copy(entry, view.Marshal())
	c.block = append(c.block, entry...)

	c.offset = offset
	c.published = true
	return offset
}

func (c *cameraImpl) ViewOffset() (uint32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset, c.published
}

func (c *cameraImpl) UniformBlock() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.block...)
}

// updateMatrices recomputes the view-projection pair. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	var look math32.Quat
	look.SetFromRotationMatrix(math32.NewLookAt(c.position, c.target, c.up))
	var eye math32.Matrix4
	eye.SetTransform(c.position, look, math32.Vec3(1, 1, 1))
	view, err := eye.Inverse()
	if err != nil {
		return
	}

	aspect := float32(1)
	if c.viewport.Height > 0 {
		aspect = float32(c.viewport.Width) / float32(c.viewport.Height)
	}
	proj := common.Perspective(c.fov, aspect, c.near, c.far)

	c.viewProj = common.Mul4(proj, common.Mat4(*view))
	if inv, ok := common.Invert4(c.viewProj); ok {
		c.inverseViewProj = inv
	}
}
