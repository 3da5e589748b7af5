// package common contains common types that are used throughout this library. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types shared between the graph, node, and factory packages.
package common

// ClearValue describes the value an image is cleared to on its first use in the
// execution schedule. Color is interpreted for color formats, Depth/Stencil for
// depth-stencil formats; the unused half is ignored by the backend.
type ClearValue struct {
	// Color is the RGBA clear color, each channel in the [0, 1] range.
	Color [4]float32
	// Depth is the depth clear value, typically 1.0 for standard depth testing.
	Depth float32
	// Stencil is the stencil clear value.
	Stencil uint32
}

// ClearColor builds a ClearValue for a color image.
//
// Parameters:
//   - r, g, b, a: the clear color channels in the [0, 1] range
//
// Returns:
//   - ClearValue: a clear value with the given color and zeroed depth/stencil
func ClearColor(r, g, b, a float32) ClearValue {
	return ClearValue{Color: [4]float32{r, g, b, a}}
}

// ClearDepthStencil builds a ClearValue for a depth-stencil image.
//
// Parameters:
//   - depth: the depth clear value
//   - stencil: the stencil clear value
//
// Returns:
//   - ClearValue: a clear value with the given depth/stencil and zeroed color
func ClearDepthStencil(depth float32, stencil uint32) ClearValue {
	return ClearValue{Depth: depth, Stencil: stencil}
}

// Extent3D describes the dimensions of an image in texels.
// Depth is 1 for 2D images.
type Extent3D struct {
	Width  uint32
	Height uint32
	Depth  uint32
}

// Extent2D builds an Extent3D for a 2D image with depth 1.
//
// Parameters:
//   - width: image width in texels
//   - height: image height in texels
//
// Returns:
//   - Extent3D: the extent with Depth set to 1
func Extent2D(width, height uint32) Extent3D {
	return Extent3D{Width: width, Height: height, Depth: 1}
}

// SubresourceRange selects a contiguous range of mip levels and array layers
// within an image. Used by image barriers to scope a transition to part of an image.
type SubresourceRange struct {
	// BaseLevel is the first mip level covered by the range.
	BaseLevel uint32
	// Levels is the number of mip levels covered, starting at BaseLevel.
	Levels uint32
	// BaseLayer is the first array layer covered by the range.
	BaseLayer uint32
	// Layers is the number of array layers covered, starting at BaseLayer.
	Layers uint32
}

// WholeImage returns a SubresourceRange covering the given level and layer counts
// starting from the base of the image.
//
// Parameters:
//   - levels: total mip level count of the image
//   - layers: total array layer count of the image
//
// Returns:
//   - SubresourceRange: a range covering every level and layer
func WholeImage(levels, layers uint32) SubresourceRange {
	return SubresourceRange{Levels: levels, Layers: layers}
}
