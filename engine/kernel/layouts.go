package kernel

import (
	"github.com/Carmen-Shannon/oxy-trace/engine/camera"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
)

// Bind group indices of the ray tracing kernel.
const (
	GroupView = iota
	GroupOutput
	GroupGeometry
	GroupMaterials
	GroupLight
	GroupSeed

	GroupCount
)

// Binding indices within the groups that hold more than one resource.
const (
	BindingOutputImage   = 0
	BindingOutputCounter = 1

	BindingVertices      = 0
	BindingIndices       = 1
	BindingInstances     = 2
	BindingInstanceCount = 3
)

// Layouts returns the bind group layouts the host binds for the kernel, indexed by group.
//
// Returns:
//   - []renderer.BindingLayout: the six group layouts
func Layouts() []renderer.BindingLayout {
	var (
		vertex   GPUVertex
		material GPUMaterial
		instance GPUInstance
		counter  GPUCounter
		light    GPULight
		seed     GPUSeed
		view     camera.GPUViewUniform
	)
	return []renderer.BindingLayout{
		GroupView: {Label: "raytrace/view", Entries: []renderer.LayoutEntry{
			{Binding: 0, Kind: renderer.BindingUniformDynamic, MinSize: uint64(view.Size())},
		}},
		GroupOutput: {Label: "raytrace/output", Entries: []renderer.LayoutEntry{
			{Binding: BindingOutputImage, Kind: renderer.BindingStorageImageWrite},
			{Binding: BindingOutputCounter, Kind: renderer.BindingUniform, MinSize: uint64(counter.Size())},
		}},
		GroupGeometry: {Label: "raytrace/geometry", Entries: []renderer.LayoutEntry{
			{Binding: BindingVertices, Kind: renderer.BindingStorageReadOnly, MinSize: uint64(vertex.Size())},
			{Binding: BindingIndices, Kind: renderer.BindingStorageReadOnly, MinSize: 4},
			{Binding: BindingInstances, Kind: renderer.BindingStorageReadOnly, MinSize: uint64(instance.Size())},
			{Binding: BindingInstanceCount, Kind: renderer.BindingUniform, MinSize: uint64(counter.Size())},
		}},
		GroupMaterials: {Label: "raytrace/materials", Entries: []renderer.LayoutEntry{
			{Binding: 0, Kind: renderer.BindingStorageReadOnly, MinSize: uint64(material.Size())},
		}},
		GroupLight: {Label: "raytrace/light", Entries: []renderer.LayoutEntry{
			{Binding: 0, Kind: renderer.BindingUniform, MinSize: uint64(light.Size())},
		}},
		GroupSeed: {Label: "raytrace/seed", Entries: []renderer.LayoutEntry{
			{Binding: 0, Kind: renderer.BindingUniform, MinSize: uint64(seed.Size())},
		}},
	}
}
