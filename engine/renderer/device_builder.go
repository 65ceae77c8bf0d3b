package renderer

// deviceConfig collects options before a backend is created.
type deviceConfig struct {
	forceFallbackAdapter bool
	maxBindGroups        uint32
	label                string
}

// DeviceBuilderOption is a functional option applied to a Device during construction via NewDevice.
type DeviceBuilderOption func(*deviceConfig)

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - DeviceBuilderOption: a function that applies the option
func WithForceSoftwareRenderer(force bool) DeviceBuilderOption {
	return func(c *deviceConfig) {
		c.forceFallbackAdapter = force
	}
}

// WithMaxBindGroups raises the bind group limit requested from the adapter. The ray tracing
// kernel needs six groups, above the WebGPU default of four. Defaults to 8.
//
// Parameters:
//   - n: the number of bind groups
//
// Returns:
//   - DeviceBuilderOption: a function that applies the option
func WithMaxBindGroups(n uint32) DeviceBuilderOption {
	return func(c *deviceConfig) {
		c.maxBindGroups = n
	}
}

// WithLabel sets the label of the requested GPU device.
//
// Parameters:
//   - label: the device label
//
// Returns:
//   - DeviceBuilderOption: a function that applies the option
func WithLabel(label string) DeviceBuilderOption {
	return func(c *deviceConfig) {
		c.label = label
	}
}
