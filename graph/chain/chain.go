// package chain holds the synchronization plan contract between the graph and
// its scheduler: the unified resource-id space, the per-node records the
// scheduler consumes, and the per-resource ordered "links" of accesses it
// produces. A link is one scheduled access of one resource by one node; a
// resource's links, in order, are the only ordering the graph relies on when
// it resolves node bindings.
package chain

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-graph/graph/command"
	"github.com/Carmen-Shannon/oxy-graph/graph/resource"
)

// ErrDesynchronized is returned when a schedule lookup does not line up with
// the builder that produced the node record: a missing resource chain, or a
// link index outside the resource's link list. It always indicates a defect in
// graph assembly, never a recoverable runtime condition.
var ErrDesynchronized = errors.New("chain: schedule desynchronized from node declarations")

// ErrDependencyCycle is returned by Collect when the declared node dependencies
// do not admit any execution order.
var ErrDependencyCycle = errors.New("chain: dependency cycle between nodes")

// ID is a resource key in the scheduler's unified id space. Buffer keys occupy
// [0, bufferCount); image keys are offset by the graph-wide total buffer count
// so the two ranges never collide.
type ID uint32

// BufferKey maps a buffer identifier into the unified id space. The raw value
// is used directly; buffer keys are always below the graph's buffer count.
//
// Parameters:
//   - id: the buffer identifier
//
// Returns:
//   - ID: the unified resource key
func BufferKey(id resource.BufferID) ID {
	return ID(id)
}

// ImageKey maps an image identifier into the unified id space by offsetting it
// with the graph-wide total buffer count, keeping image keys disjoint from
// buffer keys.
//
// Parameters:
//   - id: the image identifier
//   - totalBuffers: the total number of buffers declared across the whole graph
//
// Returns:
//   - ID: the unified resource key, always >= totalBuffers
func ImageKey(id resource.ImageID, totalBuffers int) ID {
	return ID(uint32(id) + uint32(totalBuffers))
}

// BufferUse pairs a buffer's unified key with the access state one node
// requires for it.
type BufferUse struct {
	Key   ID
	State resource.BufferState
}

// ImageUse pairs an image's unified key with the access state one node
// requires for it.
type ImageUse struct {
	Key   ID
	State resource.ImageState
}

// Node is the scheduler-facing record of one graph node: its position in the
// graph, the queue family it resolved to, the nodes it must run after, and the
// keyed resource states it declared. Produced by NodeBuilder.Chain and consumed
// by Collect (or any external scheduler honoring the same contract).
type Node struct {
	// ID is the node's index in the graph's node list.
	ID int
	// Family is the queue family the node's capability resolved to.
	Family command.FamilyID
	// Dependencies are indices of nodes that must be submitted before this one.
	Dependencies []int
	// Buffers are the node's declared buffer uses, in declaration order.
	Buffers []BufferUse
	// Images are the node's declared image uses, in declaration order.
	Images []ImageUse
}

// BufferLink is one scheduled access of a buffer: which queue and node perform
// it and in what state. A buffer's links are ordered by submission order.
type BufferLink struct {
	Queue command.QueueID
	Node  int
	State resource.BufferState
}

// ImageLink is one scheduled access of an image: which queue and node perform
// it and in what state. An image's links are ordered by submission order.
type ImageLink struct {
	Queue command.QueueID
	Node  int
	State resource.ImageState
}

// BufferChain is the ordered list of scheduled accesses of one buffer across
// the whole graph.
type BufferChain struct {
	links []BufferLink
}

// Links returns the buffer's scheduled accesses in submission order.
func (c *BufferChain) Links() []BufferLink {
	return c.links
}

// ImageChain is the ordered list of scheduled accesses of one image across the
// whole graph.
type ImageChain struct {
	links []ImageLink
}

// Links returns the image's scheduled accesses in submission order.
func (c *ImageChain) Links() []ImageLink {
	return c.links
}

// Chains is the complete synchronization plan for a graph: one chain per
// resource keyed by unified id, plus the submission schedule that fixes the
// global order and the cross-queue semaphore wiring.
type Chains struct {
	// Buffers maps buffer keys to their access chains.
	Buffers map[ID]*BufferChain
	// Images maps image keys to their access chains.
	Images map[ID]*ImageChain
	// Schedule is the global submission order with per-submission sync data.
	Schedule Schedule
}
