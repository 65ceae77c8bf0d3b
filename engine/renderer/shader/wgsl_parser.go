package shader

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
)

// parsedField is a single field of a WGSL struct.
type parsedField struct {
	name     string
	typeName string
}

// parsedStruct is a WGSL struct block.
type parsedStruct struct {
	name   string
	fields []parsedField
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// fieldRegex matches a struct field: optional attributes, name, colon, type.
	// The type capture is greedy to keep parameterized types like array<T, N> whole.
	fieldRegex = regexp.MustCompile(`(?:@\w+\([^)]*\)\s*)*(\w+)\s*:\s*(.+)`)

	// computeEntryRegex matches @compute functions and captures the entry point name
	computeEntryRegex = regexp.MustCompile(`(?s)@compute\b.*?\bfn\s+(\w+)`)

	// workgroupSizeRegex captures 1-3 dimensions from @workgroup_size(x[, y[, z]]).
	// Dimensions may be integer literals or names of module constants.
	workgroupSizeRegex = regexp.MustCompile(`@workgroup_size\(\s*(\w+)\s*(?:,\s*(\w+)\s*(?:,\s*(\w+)\s*)?)?\)`)

	// constDeclRegex captures module-scope integer constants: const NAME: u32 = 8u;
	constDeclRegex = regexp.MustCompile(`const\s+(\w+)\s*(?::\s*\w+\s*)?=\s*(\d+)[ui]?\s*;`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(0) var<uniform> view: ViewUniform;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseBindings extracts every @group/@binding resource declaration, sorted by group and binding.
//
// Parameters:
//   - source: WGSL source with comments stripped
//   - structSizes: struct layouts used to resolve buffer sizes
//
// Returns:
//   - []Binding: the declared resources
//   - error: an error for resources the renderer cannot bind or duplicate slots
func parseBindings(source string, structSizes map[string]wgslTypeLayout) ([]Binding, error) {
	matches := bindGroupDeclRegex.FindAllStringSubmatch(source, -1)
	bindings := make([]Binding, 0, len(matches))
	seen := make(map[[2]int]string, len(matches))

	for _, match := range matches {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		b := Binding{
			Group:        group,
			Binding:      binding,
			AddressSpace: strings.TrimSpace(match[3]),
			Name:         strings.TrimSpace(match[4]),
			TypeName:     strings.TrimSpace(match[5]),
		}
		if prev, dup := seen[[2]int{group, binding}]; dup {
			return nil, fmt.Errorf("shader: %s and %s both use group %d binding %d", prev, b.Name, group, binding)
		}
		seen[[2]int{group, binding}] = b.Name

		if err := classifyResource(&b, structSizes); err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}

	sort.Slice(bindings, func(i, j int) bool {
		if bindings[i].Group != bindings[j].Group {
			return bindings[i].Group < bindings[j].Group
		}
		return bindings[i].Binding < bindings[j].Binding
	})
	return bindings, nil
}

// classifyResource fills in the binding kind, minimum size and texel format of a declaration.
//
// Parameters:
//   - b: the binding to classify, with AddressSpace and TypeName set
//   - structSizes: struct layouts used to resolve buffer sizes
//
// Returns:
//   - error: an error if the resource type is not one the renderer binds
func classifyResource(b *Binding, structSizes map[string]wgslTypeLayout) error {
	switch {
	case b.AddressSpace == "uniform":
		b.Kind = renderer.BindingUniform
	case strings.HasPrefix(b.AddressSpace, "storage"):
		if strings.Contains(b.AddressSpace, "read_write") {
			return fmt.Errorf("shader: %s: read_write storage buffers are not supported", b.Name)
		}
		b.Kind = renderer.BindingStorageReadOnly
	case b.AddressSpace == "" && strings.HasPrefix(b.TypeName, "texture_storage_2d<"):
		_, params := splitTypeParams(b.TypeName)
		format, access, _ := strings.Cut(params, ",")
		b.TexelFormat = strings.TrimSpace(format)
		b.Access = strings.TrimSpace(access)
		if b.TexelFormat != "rgba8unorm" || b.Access != "write" {
			return fmt.Errorf("shader: %s: only texture_storage_2d<rgba8unorm, write> is supported, got %s", b.Name, b.TypeName)
		}
		b.Kind = renderer.BindingStorageImageWrite
		return nil
	default:
		return fmt.Errorf("shader: %s: unsupported resource %q", b.Name, b.TypeName)
	}

	layout, ok := resolveTypeLayout(b.TypeName, structSizes)
	if !ok {
		return fmt.Errorf("shader: %s: cannot resolve the size of %q", b.Name, b.TypeName)
	}
	b.MinSize = layout.size
	return nil
}

// parseWorkgroupSize extracts the @workgroup_size dimensions. Omitted dimensions default to 1;
// named dimensions resolve through module-scope integer constants.
//
// Parameters:
//   - source: WGSL source with comments stripped
//
// Returns:
//   - [3]uint32: the workgroup size as [x, y, z]
//   - error: an error if a named dimension has no integer constant
func parseWorkgroupSize(source string) ([3]uint32, error) {
	result := [3]uint32{1, 1, 1}
	match := workgroupSizeRegex.FindStringSubmatch(source)
	if match == nil {
		return result, nil
	}

	consts := make(map[string]uint32)
	for _, m := range constDeclRegex.FindAllStringSubmatch(source, -1) {
		if v, err := strconv.ParseUint(m[2], 10, 32); err == nil {
			consts[m[1]] = uint32(v)
		}
	}

	for i, dim := range match[1:] {
		if dim == "" {
			continue
		}
		if v, err := strconv.ParseUint(dim, 10, 32); err == nil {
			result[i] = uint32(v)
			continue
		}
		v, ok := consts[dim]
		if !ok {
			return result, fmt.Errorf("shader: workgroup dimension %q is not an integer constant", dim)
		}
		result[i] = v
	}
	return result, nil
}

// parseEntryPoint returns the name of the first @compute function, or "".
func parseEntryPoint(source string) string {
	if match := computeEntryRegex.FindStringSubmatch(source); match != nil {
		return match[1]
	}
	return ""
}

// parseStructBlocks finds all struct blocks in comment-free WGSL source.
//
// Parameters:
//   - source: WGSL source with comments already stripped
//
// Returns:
//   - []parsedStruct: all struct blocks found in the source
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))

	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}
	return structs
}

// parseStructFields splits a struct body into fields.
func parseStructFields(body string) []parsedField {
	parts := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fm := fieldRegex.FindStringSubmatch(part)
		if fm == nil {
			continue
		}
		fields = append(fields, parsedField{
			name:     fm[1],
			typeName: strings.TrimSpace(fm[2]),
		})
	}
	return fields
}

// splitAtTopLevelCommas splits s at commas that are not nested inside angle brackets, so types
// like array<Instance, 4> stay whole.
//
// Parameters:
//   - s: the string to split (typically the body of a WGSL struct)
//
// Returns:
//   - []string: substrings between top-level commas
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// splitTypeParams splits "texture_storage_2d<rgba8unorm, write>" into its base name and the text
// between the angle brackets.
func splitTypeParams(typeName string) (base string, params string) {
	before, after, ok := strings.Cut(typeName, "<")
	if !ok {
		return typeName, ""
	}
	return before, strings.TrimSpace(strings.TrimSuffix(after, ">"))
}

// stripComments removes line comments and nested block comments from WGSL source.
func stripComments(source string) string {
	return stripLineComments(stripBlockComments(source))
}

func stripLineComments(source string) string {
	var sb strings.Builder
	for line := range strings.SplitSeq(source, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func stripBlockComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			if source[i] == '/' && source[i+1] == '*' {
				depth++
				i++
				continue
			}
			if source[i] == '*' && source[i+1] == '/' && depth > 0 {
				depth--
				i++
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}
