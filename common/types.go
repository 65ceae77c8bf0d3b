// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "fmt"

// AssetID identifies a mesh or material asset. Identity equality is the only property the
// raytracer relies on; the scene owns the asset behind the ID.
type AssetID uint64

// EntityID identifies a scene entity.
type EntityID uint64

// InvalidAssetID is never handed out by the scene and marks an unset reference.
const InvalidAssetID AssetID = 0

// Extent is a 2D size in pixels.
type Extent struct {
	Width  uint32 `toml:"width" yaml:"width"`
	Height uint32 `toml:"height" yaml:"height"`
}

// Pixels returns the number of pixels covered by the extent.
//
// Returns:
//   - uint64: width × height
func (e Extent) Pixels() uint64 {
	return uint64(e.Width) * uint64(e.Height)
}

func (e Extent) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}
