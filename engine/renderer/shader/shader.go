package shader

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
)

// ErrLayoutMismatch is returned by MatchLayouts when declared layouts disagree with the source.
var ErrLayoutMismatch = errors.New("shader: layout does not match source")

// Binding is a resource declaration reflected from WGSL source.
type Binding struct {
	Group   int
	Binding int
	Name    string
	// TypeName is the declared WGSL type, e.g. "array<Vertex>".
	TypeName string
	// AddressSpace is the var<...> qualifier, empty for handle types.
	AddressSpace string
	Kind         renderer.BindingKind
	// MinSize is the byte size of the bound type; one element stride for runtime-sized arrays.
	MinSize     uint64
	TexelFormat string
	Access      string
}

// shader is the implementation of the Shader interface.
type shader struct {
	key           string
	source        string
	entryPoint    string
	workgroupSize [3]uint32
	bindings      []Binding
	structSizes   map[string]wgslTypeLayout
	applied       []Annotation
}

// Shader is a pre-processed compute shader together with what can be reflected from its source:
// the entry point, workgroup size, resource declarations and struct sizes.
type Shader interface {
	// Key retrieves the unique identifier for this shader.
	//
	// Returns:
	//   - string: the shader's key
	Key() string

	// Source retrieves the expanded WGSL source.
	//
	// Returns:
	//   - string: the WGSL source with annotations expanded
	Source() string

	// EntryPoint returns the name of the @compute function.
	//
	// Returns:
	//   - string: the entry point name
	EntryPoint() string

	// WorkgroupSize returns the @workgroup_size dimensions, [1, 1, 1] when absent.
	//
	// Returns:
	//   - [3]uint32: the workgroup size as [x, y, z]
	WorkgroupSize() [3]uint32

	// Bindings returns every resource declaration sorted by group and binding.
	//
	// Returns:
	//   - []Binding: the declarations
	Bindings() []Binding

	// BindingFromVarName looks up a declaration by its variable name.
	//
	// Parameters:
	//   - name: the WGSL variable name
	//
	// Returns:
	//   - Binding: the declaration
	//   - bool: false if no declaration has that name
	BindingFromVarName(name string) (Binding, bool)

	// StructSize returns the host-shareable byte size of a struct declared in the source.
	//
	// Parameters:
	//   - name: the struct name
	//
	// Returns:
	//   - uint64: the size in bytes
	//   - bool: false for unknown structs
	StructSize(name string) (uint64, bool)

	// Layouts converts the declarations into one BindingLayout per group, from group 0 to the
	// highest declared group. Uniforms are reported without dynamic offsets.
	//
	// Returns:
	//   - []renderer.BindingLayout: the layouts indexed by group
	Layouts() []renderer.BindingLayout

	// MatchLayouts checks declared layouts against the source. A declared dynamic uniform matches
	// a reflected uniform; every other field must be equal.
	//
	// Parameters:
	//   - declared: the layouts the host binds
	//
	// Returns:
	//   - error: an ErrLayoutMismatch wrap describing the first difference
	MatchLayouts(declared []renderer.BindingLayout) error

	// Applied returns the annotations expanded while loading the source.
	//
	// Returns:
	//   - []Annotation: the expanded annotations
	Applied() []Annotation
}

var _ Shader = &shader{}

// NewShader expands the annotations in source and reflects the result.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - source: WGSL source, possibly containing @trace: annotations
//   - options: include and constant registrations for the pre-processor
//
// Returns:
//   - Shader: the reflected shader
//   - error: an error if pre-processing or reflection fails
func NewShader(key, source string, options ...PreProcessorOption) (Shader, error) {
	if source == "" {
		return nil, fmt.Errorf("shader: %s has no source", key)
	}
	pp := NewPreProcessor(options...)
	expanded, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader: pre-processing %s: %w", key, err)
	}

	cleaned := stripComments(expanded)
	s := &shader{
		key:         key,
		source:      expanded,
		entryPoint:  parseEntryPoint(cleaned),
		structSizes: computeStructSizes(parseStructBlocks(cleaned)),
		applied:     append([]Annotation(nil), pp.Applied()...),
	}
	if s.entryPoint == "" {
		return nil, fmt.Errorf("shader: %s has no @compute entry point", key)
	}
	if s.workgroupSize, err = parseWorkgroupSize(cleaned); err != nil {
		return nil, fmt.Errorf("shader: %s: %w", key, err)
	}
	if s.bindings, err = parseBindings(cleaned, s.structSizes); err != nil {
		return nil, fmt.Errorf("shader: %s: %w", key, err)
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) WorkgroupSize() [3]uint32 {
	return s.workgroupSize
}

func (s *shader) Bindings() []Binding {
	return s.bindings
}

func (s *shader) BindingFromVarName(name string) (Binding, bool) {
	for _, b := range s.bindings {
		if b.Name == name {
			return b, true
		}
	}
	return Binding{}, false
}

func (s *shader) StructSize(name string) (uint64, bool) {
	layout, ok := s.structSizes[name]
	return layout.size, ok
}

func (s *shader) Layouts() []renderer.BindingLayout {
	if len(s.bindings) == 0 {
		return nil
	}
	layouts := make([]renderer.BindingLayout, s.bindings[len(s.bindings)-1].Group+1)
	for g := range layouts {
		layouts[g].Label = fmt.Sprintf("%s/group%d", s.key, g)
	}
	for _, b := range s.bindings {
		layouts[b.Group].Entries = append(layouts[b.Group].Entries, renderer.LayoutEntry{
			Binding: uint32(b.Binding),
			Kind:    b.Kind,
			MinSize: b.MinSize,
		})
	}
	return layouts
}

func (s *shader) MatchLayouts(declared []renderer.BindingLayout) error {
	reflected := s.Layouts()
	if len(declared) != len(reflected) {
		return fmt.Errorf("%w: %s declares %d groups, host binds %d", ErrLayoutMismatch, s.key, len(reflected), len(declared))
	}
	for g := range reflected {
		want, got := reflected[g].Entries, declared[g].Entries
		if len(want) != len(got) {
			return fmt.Errorf("%w: group %d has %d bindings in source, %d on host", ErrLayoutMismatch, g, len(want), len(got))
		}
		for _, w := range want {
			e, ok := declared[g].Entry(w.Binding)
			if !ok {
				return fmt.Errorf("%w: group %d binding %d is missing on host", ErrLayoutMismatch, g, w.Binding)
			}
			kind := e.Kind
			if kind == renderer.BindingUniformDynamic {
				kind = renderer.BindingUniform
			}
			if kind != w.Kind {
				return fmt.Errorf("%w: group %d binding %d is %s in source, %s on host", ErrLayoutMismatch, g, w.Binding, w.Kind, e.Kind)
			}
			if e.MinSize != w.MinSize {
				return fmt.Errorf("%w: group %d binding %d is %d bytes in source, %d on host", ErrLayoutMismatch, g, w.Binding, w.MinSize, e.MinSize)
			}
		}
	}
	return nil
}

func (s *shader) Applied() []Annotation {
	return s.applied
}
