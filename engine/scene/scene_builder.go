package scene

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene's identifier.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithAutoPublish makes every mutation publish a fresh snapshot immediately.
// Useful for tools that never drive a frame loop; the engine publishes once per frame instead.
//
// Parameters:
//   - enabled: whether mutations publish automatically
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAutoPublish(enabled bool) SceneBuilderOption {
	return func(s *scene) {
		s.autoPublish = enabled
	}
}
