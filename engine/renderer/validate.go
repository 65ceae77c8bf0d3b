package renderer

import "fmt"

// DynamicOffsetAlignment is the alignment WebGPU guarantees for dynamic uniform offsets.
const DynamicOffsetAlignment = 256

// validateEntries checks that entries cover every slot of layout with a resource of the right kind.
func validateEntries(layout BindingLayout, entries []BindingEntry) error {
	if len(entries) != len(layout.Entries) {
		return fmt.Errorf("%w: %q expects %d entries, got %d", ErrBindingMismatch, layout.Label, len(layout.Entries), len(entries))
	}
	seen := make(map[uint32]bool, len(entries))
	for _, e := range entries {
		le, ok := layout.Entry(e.Binding)
		if !ok {
			return fmt.Errorf("%w: %q has no binding %d", ErrBindingMismatch, layout.Label, e.Binding)
		}
		if seen[e.Binding] {
			return fmt.Errorf("%w: %q binding %d supplied twice", ErrBindingMismatch, layout.Label, e.Binding)
		}
		seen[e.Binding] = true

		if le.Kind.IsBuffer() {
			if e.Buffer == nil || e.Image != nil {
				return fmt.Errorf("%w: %q binding %d expects a buffer", ErrBindingMismatch, layout.Label, e.Binding)
			}
			if e.Buffer.Size() < le.MinSize {
				return fmt.Errorf("%w: %q binding %d needs %d bytes, buffer %q has %d",
					ErrBindingMismatch, layout.Label, e.Binding, le.MinSize, e.Buffer.Label(), e.Buffer.Size())
			}
			continue
		}
		if e.Image == nil || e.Buffer != nil {
			return fmt.Errorf("%w: %q binding %d expects an image", ErrBindingMismatch, layout.Label, e.Binding)
		}
	}
	return nil
}

// validateDispatch checks that sets match the pipeline's groups and that every dynamic offset is
// aligned and supplied exactly once.
func validateDispatch(layouts []BindingLayout, sets []BindingSet, dynamicOffsets [][]uint32) error {
	if len(sets) != len(layouts) {
		return fmt.Errorf("%w: pipeline has %d groups, got %d sets", ErrBindingMismatch, len(layouts), len(sets))
	}
	for g, set := range sets {
		if set == nil || set.Group() != g {
			return fmt.Errorf("%w: set %d is missing or bound to the wrong group", ErrBindingMismatch, g)
		}
		var offsets []uint32
		if g < len(dynamicOffsets) {
			offsets = dynamicOffsets[g]
		}
		if want := layouts[g].DynamicCount(); len(offsets) != want {
			return fmt.Errorf("%w: group %d needs %d dynamic offsets, got %d", ErrBindingMismatch, g, want, len(offsets))
		}
		for _, off := range offsets {
			if off%DynamicOffsetAlignment != 0 {
				return fmt.Errorf("%w: group %d dynamic offset %d is not %d-aligned", ErrBindingMismatch, g, off, DynamicOffsetAlignment)
			}
		}
	}
	return nil
}
