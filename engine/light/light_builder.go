package light

// LightBuilderOption is a functional option for configuring a Directional light.
type LightBuilderOption func(*directional)

// WithDirection sets the initial light direction.
//
// Parameters:
//   - x, y, z: the direction
//
// Returns:
//   - LightBuilderOption: a function that sets the direction
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(d *directional) {
		d.direction = [3]float32{x, y, z}
	}
}

// WithOrbitHeight sets the constant Z component used while animating.
//
// Parameters:
//   - height: the Z component of the animated direction
//
// Returns:
//   - LightBuilderOption: a function that sets the orbit height
func WithOrbitHeight(height float32) LightBuilderOption {
	return func(d *directional) {
		d.height = height
	}
}

// WithOrbitSpeed scales elapsed time while animating, in radians per second.
//
// Parameters:
//   - speed: the angular speed
//
// Returns:
//   - LightBuilderOption: a function that sets the orbit speed
func WithOrbitSpeed(speed float32) LightBuilderOption {
	return func(d *directional) {
		d.speed = speed
	}
}
