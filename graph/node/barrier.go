package node

import (
	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/graph/resource"
)

// BarrierKind discriminates the four barrier variants.
type BarrierKind uint8

const (
	// BarrierAllBuffers applies a buffer access transition to every buffer.
	BarrierAllBuffers BarrierKind = iota
	// BarrierAllImages applies an image access transition to every image.
	BarrierAllImages
	// BarrierBuffer transitions a single buffer identified by Target.
	BarrierBuffer
	// BarrierImage transitions a subresource range of a single image
	// identified by Target.
	BarrierImage
)

// Barrier describes a transition between two access states for a resource
// range. Nodes emit barriers while recording commands to order their own
// intra-queue accesses; the barrier refers to resources by index rather than
// by reference and is a plain value handed to backend recording, never
// retained by the node afterward.
type Barrier struct {
	kind BarrierKind

	// blanket access ranges (all-buffers / all-images variants)
	srcAccess resource.Access
	dstAccess resource.Access

	// single-resource variants
	target   int
	srcState resource.ImageState
	dstState resource.ImageState
	srcBuf   resource.BufferState
	dstBuf   resource.BufferState
	rng      common.SubresourceRange
}

// AllBuffersBarrier builds a barrier applying the given access transition to
// all buffers in the range.
//
// Parameters:
//   - src: the access flags being transitioned from
//   - dst: the access flags being transitioned to
//
// Returns:
//   - Barrier: the blanket buffer barrier
func AllBuffersBarrier(src, dst resource.Access) Barrier {
	return Barrier{kind: BarrierAllBuffers, srcAccess: src, dstAccess: dst}
}

// AllImagesBarrier builds a barrier applying the given access transition to
// all images in the range.
//
// Parameters:
//   - src: the access flags being transitioned from
//   - dst: the access flags being transitioned to
//
// Returns:
//   - Barrier: the blanket image barrier
func AllImagesBarrier(src, dst resource.Access) Barrier {
	return Barrier{kind: BarrierAllImages, srcAccess: src, dstAccess: dst}
}

// BufferBarrier builds a memory barrier transitioning a single buffer between
// two states.
//
// Parameters:
//   - src: the state being transitioned from
//   - dst: the state being transitioned to
//   - target: the index of the buffer the barrier controls
//
// Returns:
//   - Barrier: the single-buffer barrier
func BufferBarrier(src, dst resource.BufferState, target int) Barrier {
	return Barrier{kind: BarrierBuffer, srcBuf: src, dstBuf: dst, target: target}
}

// ImageBarrier builds a memory barrier transitioning a subresource range of a
// single image between two states.
//
// Parameters:
//   - src: the state being transitioned from
//   - dst: the state being transitioned to
//   - target: the index of the image the barrier controls
//   - rng: the subresource range the barrier applies to
//
// Returns:
//   - Barrier: the single-image barrier
func ImageBarrier(src, dst resource.ImageState, target int, rng common.SubresourceRange) Barrier {
	return Barrier{kind: BarrierImage, srcState: src, dstState: dst, target: target, rng: rng}
}

// Kind returns the barrier's variant.
func (b Barrier) Kind() BarrierKind {
	return b.kind
}

// Target returns the resource index of a single-buffer or single-image barrier.
// Zero for the blanket variants.
func (b Barrier) Target() int {
	return b.target
}

// AccessRange returns the blanket access transition of an all-buffers or
// all-images barrier.
//
// Returns:
//   - src: the access flags being transitioned from
//   - dst: the access flags being transitioned to
func (b Barrier) AccessRange() (src, dst resource.Access) {
	return b.srcAccess, b.dstAccess
}

// BufferStates returns the state transition of a single-buffer barrier.
//
// Returns:
//   - src: the state being transitioned from
//   - dst: the state being transitioned to
func (b Barrier) BufferStates() (src, dst resource.BufferState) {
	return b.srcBuf, b.dstBuf
}

// ImageStates returns the state transition of a single-image barrier.
//
// Returns:
//   - src: the state being transitioned from
//   - dst: the state being transitioned to
func (b Barrier) ImageStates() (src, dst resource.ImageState) {
	return b.srcState, b.dstState
}

// Range returns the subresource range of a single-image barrier.
func (b Barrier) Range() common.SubresourceRange {
	return b.rng
}
