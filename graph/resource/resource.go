// package resource defines the identifiers, descriptions, and backend-agnostic
// handles for the buffers and images shared between graph nodes. Concrete
// resources are owned by the graph's Factory for the lifetime of the graph;
// nodes only ever hold non-owning references handed out at build time.
package resource

import "github.com/Carmen-Shannon/oxy-graph/common"

// BufferID identifies a buffer within the graph's resource universe.
// IDs are assigned densely from zero by the graph builder in registration order.
type BufferID uint32

// ImageID identifies an image within the graph's resource universe.
// IDs are assigned densely from zero by the graph builder in registration order.
// Buffer and image IDs are kept distinct by callers; the chain package maps both
// into one shared scheduler id space.
type ImageID uint32

// BufferUsage is a bit set describing how a buffer may be used on the GPU.
type BufferUsage uint32

const (
	BufferUsageTransferSrc BufferUsage = 1 << iota
	BufferUsageTransferDst
	BufferUsageUniform
	BufferUsageStorage
	BufferUsageIndex
	BufferUsageVertex
	BufferUsageIndirect
)

// ImageUsage is a bit set describing how an image may be used on the GPU.
type ImageUsage uint32

const (
	ImageUsageTransferSrc ImageUsage = 1 << iota
	ImageUsageTransferDst
	ImageUsageSampled
	ImageUsageStorage
	ImageUsageColorAttachment
	ImageUsageDepthStencilAttachment
)

// Format is the texel format of an image. The set is intentionally small; it
// covers the formats the wgpu backend can map directly.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatRGBA8Unorm
	FormatBGRA8Unorm
	FormatRGBA16Float
	FormatRGBA32Float
	FormatR32Float
	FormatDepth24Plus
	FormatDepth32Float
)

// IsDepth reports whether the format is a depth or depth-stencil format.
//
// Returns:
//   - bool: true for depth formats, false for color formats
func (f Format) IsDepth() bool {
	return f == FormatDepth24Plus || f == FormatDepth32Float
}

// BufferInfo describes a buffer to be allocated by the Factory.
type BufferInfo struct {
	// Label is an optional debug name surfaced to the backend.
	Label string
	// Size is the buffer size in bytes.
	Size uint64
	// Usage is the set of usages the buffer must support.
	Usage BufferUsage
}

// ImageInfo describes an image to be allocated by the Factory.
type ImageInfo struct {
	// Label is an optional debug name surfaced to the backend.
	Label string
	// Extent is the image dimensions in texels.
	Extent common.Extent3D
	// Levels is the mip level count (minimum 1).
	Levels uint32
	// Layers is the array layer count (minimum 1).
	Layers uint32
	// Format is the texel format.
	Format Format
	// Usage is the set of usages the image must support.
	Usage ImageUsage
}

// Buffer is a non-owning handle to a concrete backend buffer. The Factory that
// created the buffer owns it; nodes receive Buffer references scoped to one
// build/run pairing and must not destroy them.
type Buffer interface {
	// Info returns the description the buffer was allocated from.
	Info() BufferInfo
}

// Image is a non-owning handle to a concrete backend image. The Factory that
// created the image owns it; nodes receive Image references scoped to one
// build/run pairing and must not destroy them.
type Image interface {
	// Info returns the description the image was allocated from.
	Info() ImageInfo
}
