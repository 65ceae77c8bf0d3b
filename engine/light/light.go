// Package light holds the directional light that the ray tracing kernel shades against.
package light

import (
	"time"

	"cogentcore.org/core/math32"
)

// DirectionSource supplies the world-space light direction. It is read once per frame.
type DirectionSource interface {
	// Direction returns the light direction as (x, y, z). It need not be normalized; the kernel
	// normalizes it before use.
	//
	// Returns:
	//   - [3]float32: the light direction
	Direction() [3]float32
}

// directional is the implementation of the Directional interface.
type directional struct {
	direction [3]float32
	height    float32
	speed     float32
}

// Directional is a light with no position, only a direction, like the sun.
//
// When animated it orbits the scene: at elapsed time t seconds its direction is
// (sin(t·speed), cos(t·speed), height).
type Directional interface {
	DirectionSource

	// SetDirection overrides the light direction.
	//
	// Parameters:
	//   - x, y, z: the new direction
	SetDirection(x, y, z float32)

	// Animate moves the light to its orbit position for the given elapsed time.
	//
	// Parameters:
	//   - elapsed: time since the start of the animation
	Animate(elapsed time.Duration)
}

var _ Directional = &directional{}

// NewDirectional creates a directional light pointing along +Y with a 0.2 orbit height.
//
// Parameters:
//   - options: a variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Directional: the new light
func NewDirectional(options ...LightBuilderOption) Directional {
	d := &directional{
		direction: [3]float32{0, 1, 0.2},
		height:    0.2,
		speed:     1,
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

func (d *directional) Direction() [3]float32 {
	return d.direction
}

func (d *directional) SetDirection(x, y, z float32) {
	d.direction = [3]float32{x, y, z}
}

func (d *directional) Animate(elapsed time.Duration) {
	t := float32(elapsed.Seconds()) * d.speed
	d.direction = [3]float32{math32.Sin(t), math32.Cos(t), d.height}
}
