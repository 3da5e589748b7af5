package node

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/graph/chain"
	"github.com/Carmen-Shannon/oxy-graph/graph/command"
	"github.com/Carmen-Shannon/oxy-graph/graph/factory"
	"github.com/Carmen-Shannon/oxy-graph/graph/resource"
)

// ImageSlot is the graph's registry entry for one image: the concrete image
// plus the clear value configured at registration. The clear value is handed
// out exactly once, to the image's chronologically first accessor.
type ImageSlot struct {
	// Image is the allocated image.
	Image resource.Image
	// Clear is the configured clear value, or nil if the image is never cleared.
	Clear *common.ClearValue
}

// NodeBuilder accumulates a node's declared resource identifiers and
// dependencies at graph-construction time, before any resource or schedule
// exists. Identifiers are listed in the order the node's description declares
// its resource states: position, not identifier value, is the correspondence
// key. A builder is consumed by the graph at compile time and never reused.
type NodeBuilder struct {
	desc         AnyNodeDescription
	buffers      []resource.BufferID
	images       []resource.ImageID
	dependencies []int
}

// NewNodeBuilder creates a builder around a typed description.
//
// Parameters:
//   - desc: the node's description
//
// Returns:
//   - *NodeBuilder: the builder, with no resources or dependencies declared
func NewNodeBuilder(desc NodeDescription) *NodeBuilder {
	return &NodeBuilder{desc: Erase(desc)}
}

// AddBuffer appends a buffer the node uses. Must be called once per buffer
// state the description declares, in the same order.
//
// Parameters:
//   - id: the buffer's identifier
func (b *NodeBuilder) AddBuffer(id resource.BufferID) {
	b.buffers = append(b.buffers, id)
}

// AddImage appends an image the node uses. Must be called once per image state
// the description declares, in the same order.
//
// Parameters:
//   - id: the image's identifier
func (b *NodeBuilder) AddImage(id resource.ImageID) {
	b.images = append(b.images, id)
}

// AddDependency appends a node this node must be placed after.
//
// Parameters:
//   - dependency: the id of the node to run before this one
func (b *NodeBuilder) AddDependency(dependency NodeID) {
	b.dependencies = append(b.dependencies, int(dependency))
}

// WithBuffer is the chained form of AddBuffer.
//
// Parameters:
//   - id: the buffer's identifier
//
// Returns:
//   - *NodeBuilder: the builder, for chaining
func (b *NodeBuilder) WithBuffer(id resource.BufferID) *NodeBuilder {
	b.AddBuffer(id)
	return b
}

// WithImage is the chained form of AddImage.
//
// Parameters:
//   - id: the image's identifier
//
// Returns:
//   - *NodeBuilder: the builder, for chaining
func (b *NodeBuilder) WithImage(id resource.ImageID) *NodeBuilder {
	b.AddImage(id)
	return b
}

// WithDependency is the chained form of AddDependency.
//
// Parameters:
//   - dependency: the id of the node to run before this one
//
// Returns:
//   - *NodeBuilder: the builder, for chaining
func (b *NodeBuilder) WithDependency(dependency NodeID) *NodeBuilder {
	b.AddDependency(dependency)
	return b
}

// Chain projects the builder into the scheduler-facing node record: the queue
// family resolved from the description's capability, the dependency list, and
// each declared identifier paired positionally with its declared state. Image
// keys are offset by the graph-wide total buffer count so buffer and image
// keys never collide in the scheduler's unified id space.
//
// Parameters:
//   - id: the node's index in the graph's node list
//   - f: the factory, queried for the device's queue families
//   - totalBuffers: the total number of buffers declared across the whole graph
//
// Returns:
//   - chain.Node: the scheduler-facing record
//   - error: ErrNoSuitableFamily if no family qualifies, or a desynchronization
//     error if declared identifier counts do not match the description's states
func (b *NodeBuilder) Chain(id int, f factory.Factory, totalBuffers int) (chain.Node, error) {
	family, ok := b.desc.Family(f.Families())
	if !ok {
		return chain.Node{}, fmt.Errorf("node %d: %w", id, ErrNoSuitableFamily)
	}

	bufferStates := b.desc.Buffers()
	if len(bufferStates) != len(b.buffers) {
		return chain.Node{}, fmt.Errorf(
			"node %d declares %d buffer ids but its description requires %d buffer states: %w",
			id, len(b.buffers), len(bufferStates), chain.ErrDesynchronized)
	}
	imageStates := b.desc.Images()
	if len(imageStates) != len(b.images) {
		return chain.Node{}, fmt.Errorf(
			"node %d declares %d image ids but its description requires %d image states: %w",
			id, len(b.images), len(imageStates), chain.ErrDesynchronized)
	}

	rec := chain.Node{
		ID:           id,
		Family:       family,
		Dependencies: append([]int(nil), b.dependencies...),
		Buffers:      make([]chain.BufferUse, len(b.buffers)),
		Images:       make([]chain.ImageUse, len(b.images)),
	}
	for i, bid := range b.buffers {
		rec.Buffers[i] = chain.BufferUse{Key: chain.BufferKey(bid), State: bufferStates[i]}
	}
	for i, iid := range b.images {
		rec.Images[i] = chain.ImageUse{Key: chain.ImageKey(iid, totalBuffers), State: imageStates[i]}
	}
	return rec, nil
}

// Build resolves the builder's declared identifiers against the computed
// synchronization plan and constructs the runnable type-erased node.
//
// For each declared buffer, the buffer's chain is looked up by its unified key
// and the state at this node's link index is bound. For each declared image,
// the same resolution runs against the image's offset key, and the image's
// configured clear value is attached only when this node occupies link index
// zero — the chronologically first accessor clears, every later accessor
// preserves.
//
// Parameters:
//   - f: the graph's factory
//   - aux: the application's auxiliary data
//   - family: the queue family resolved for this node
//   - buffers: the graph's buffers, indexed by BufferID
//   - images: the graph's image slots, indexed by ImageID
//   - chains: the computed synchronization plan
//   - sub: this node's submission within the plan
//
// Returns:
//   - AnyNode: the runnable node
//   - error: the description's build error, or a desynchronization error when
//     a resolved link index does not correspond to this node's declarations
func (b *NodeBuilder) Build(
	f factory.Factory,
	aux any,
	family command.FamilyID,
	buffers []resource.Buffer,
	images []ImageSlot,
	chains *chain.Chains,
	sub *chain.Submission,
) (AnyNode, error) {
	nodeBuffers := make([]NodeBuffer, len(b.buffers))
	for i, bid := range b.buffers {
		if int(bid) >= len(buffers) {
			return nil, fmt.Errorf("node %d references unknown buffer %d: %w", sub.Node(), bid, chain.ErrDesynchronized)
		}
		key := chain.BufferKey(bid)
		ch := chains.Buffers[key]
		if ch == nil {
			return nil, fmt.Errorf("node %d: no chain for buffer %d: %w", sub.Node(), bid, chain.ErrDesynchronized)
		}
		li, ok := sub.ResourceLinkIndex(key)
		if !ok || li >= len(ch.Links()) {
			return nil, fmt.Errorf("node %d: link index out of range for buffer %d: %w", sub.Node(), bid, chain.ErrDesynchronized)
		}
		nodeBuffers[i] = NodeBuffer{
			Buffer: buffers[bid],
			State:  ch.Links()[li].State,
		}
	}

	nodeImages := make([]NodeImage, len(b.images))
	for i, iid := range b.images {
		if int(iid) >= len(images) {
			return nil, fmt.Errorf("node %d references unknown image %d: %w", sub.Node(), iid, chain.ErrDesynchronized)
		}
		key := chain.ImageKey(iid, len(buffers))
		ch := chains.Images[key]
		if ch == nil {
			return nil, fmt.Errorf("node %d: no chain for image %d: %w", sub.Node(), iid, chain.ErrDesynchronized)
		}
		li, ok := sub.ResourceLinkIndex(key)
		if !ok || li >= len(ch.Links()) {
			return nil, fmt.Errorf("node %d: link index out of range for image %d: %w", sub.Node(), iid, chain.ErrDesynchronized)
		}
		ni := NodeImage{
			Image: images[iid].Image,
			State: ch.Links()[li].State,
		}
		if li == 0 && images[iid].Clear != nil {
			clear := *images[iid].Clear
			ni.Clear = &clear
		}
		nodeImages[i] = ni
	}

	return b.desc.Build(f, aux, family, nodeBuffers, nodeImages)
}
