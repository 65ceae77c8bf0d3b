package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
)

const testStructs = `struct Vertex {
    position: vec3<f32>,
    normal: vec3<f32>,
}`

const testSource = `// test kernel
//@trace:include vertex
//@trace:include vertex
//@trace:const BLOCK u32

struct Params {
    count: u32,
    /* padded */ pad: vec3<u32>,
}

struct Wrapper {
    inner: array<Params, 2>,
    scale: f32,
}

@group(0) @binding(0) var<uniform> params: Params;
@group(1) @binding(1) var<storage, read> vertices: array<Vertex>;
@group(1) @binding(0) var output: texture_storage_2d<rgba8unorm, write>;
@group(2) @binding(0) var<storage, read> indices: array<u32>;

@compute @workgroup_size(8, BLOCK)
fn trace(@builtin(global_invocation_id) id: vec3<u32>) {
}
`

func newTestShader(t *testing.T) Shader {
	t.Helper()
	s, err := NewShader("test", testSource, WithInclude("vertex", testStructs), WithConstant("BLOCK", "4u"))
	require.NoError(t, err)
	return s
}

func TestNewShaderReflects(t *testing.T) {
	s := newTestShader(t)

	assert.Equal(t, "trace", s.EntryPoint())
	assert.Equal(t, [3]uint32{8, 4, 1}, s.WorkgroupSize())
	assert.Equal(t, 1, strings.Count(s.Source(), "struct Vertex"), "repeated includes expand once")
	assert.Contains(t, s.Source(), "const BLOCK: u32 = 4u;")
	assert.Len(t, s.Applied(), 3)

	size, ok := s.StructSize("Vertex")
	require.True(t, ok)
	assert.Equal(t, uint64(32), size)
	size, _ = s.StructSize("Params")
	assert.Equal(t, uint64(32), size)
	size, _ = s.StructSize("Wrapper")
	assert.Equal(t, uint64(80), size)

	bindings := s.Bindings()
	require.Len(t, bindings, 4)
	assert.Equal(t, "output", bindings[1].Name, "sorted by group then binding")
	assert.Equal(t, renderer.BindingStorageImageWrite, bindings[1].Kind)
	assert.Equal(t, "rgba8unorm", bindings[1].TexelFormat)

	v, ok := s.BindingFromVarName("vertices")
	require.True(t, ok)
	assert.Equal(t, renderer.BindingStorageReadOnly, v.Kind)
	assert.Equal(t, uint64(32), v.MinSize)

	idx, _ := s.BindingFromVarName("indices")
	assert.Equal(t, uint64(4), idx.MinSize)
}

func TestLayoutsAndMatch(t *testing.T) {
	s := newTestShader(t)
	layouts := s.Layouts()
	require.Len(t, layouts, 3)
	assert.Equal(t, "test/group1", layouts[1].Label)

	declared := []renderer.BindingLayout{
		{Entries: []renderer.LayoutEntry{{Binding: 0, Kind: renderer.BindingUniformDynamic, MinSize: 32}}},
		{Entries: []renderer.LayoutEntry{
			{Binding: 0, Kind: renderer.BindingStorageImageWrite},
			{Binding: 1, Kind: renderer.BindingStorageReadOnly, MinSize: 32},
		}},
		{Entries: []renderer.LayoutEntry{{Binding: 0, Kind: renderer.BindingStorageReadOnly, MinSize: 4}}},
	}
	assert.NoError(t, s.MatchLayouts(declared))

	declared[1].Entries[1].MinSize = 48
	assert.ErrorIs(t, s.MatchLayouts(declared), ErrLayoutMismatch)
	declared[1].Entries[1].MinSize = 32

	declared[2].Entries[0].Kind = renderer.BindingUniform
	assert.ErrorIs(t, s.MatchLayouts(declared), ErrLayoutMismatch)

	assert.ErrorIs(t, s.MatchLayouts(declared[:2]), ErrLayoutMismatch)
}

func TestNewShaderErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"empty", ""},
		{"no entry point", "fn helper() {}"},
		{"unknown include", "//@trace:include missing\n@compute @workgroup_size(1) fn main() {}"},
		{"unknown constant", "//@trace:const N u32\n@compute @workgroup_size(1) fn main() {}"},
		{"bad annotation", "//@trace:bogus\n@compute @workgroup_size(1) fn main() {}"},
		{"read_write storage", "@group(0) @binding(0) var<storage, read_write> d: array<u32>;\n@compute @workgroup_size(1) fn main() {}"},
		{"sampler", "@group(0) @binding(0) var s: sampler;\n@compute @workgroup_size(1) fn main() {}"},
		{"float image", "@group(0) @binding(0) var o: texture_storage_2d<rgba16float, write>;\n@compute @workgroup_size(1) fn main() {}"},
		{"duplicate slot", "@group(0) @binding(0) var<uniform> a: u32;\n@group(0) @binding(0) var<uniform> b: u32;\n@compute @workgroup_size(1) fn main() {}"},
		{"unknown workgroup constant", "@compute @workgroup_size(N) fn main() {}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewShader("bad", tt.source)
			assert.Error(t, err)
		})
	}
}

func TestStripComments(t *testing.T) {
	got := stripComments("a /* b /* c */ d */ e // f\ng")
	assert.Equal(t, "a  e \ng\n", got)
}
