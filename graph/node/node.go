// package node defines the building block of the frame graph: a unit of GPU
// work that declares the buffers and images it touches before any resource
// exists, and is later bound to concrete resources and access states once the
// graph's synchronization plan is computed.
//
// The package has two layers. The typed layer (Node, NodeDescription) is what
// applications implement. The type-erased layer (AnyNode, AnyNodeDescription)
// is what the graph stores and drives, so arbitrarily many distinct node
// implementations can coexist in one graph; dynamic dispatch happens only at
// the graph-orchestration boundary, never inside a node's recording path.
package node

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/graph/command"
	"github.com/Carmen-Shannon/oxy-graph/graph/factory"
	"github.com/Carmen-Shannon/oxy-graph/graph/frame"
	"github.com/Carmen-Shannon/oxy-graph/graph/resource"
)

// ErrNoSuitableFamily is returned when no queue family on the device satisfies
// a node's required capability. The node cannot be scheduled and graph
// construction aborts before any resource is allocated.
var ErrNoSuitableFamily = errors.New("node: no queue family satisfies required capability")

// NodeID identifies a node within a graph by its insertion index. Returned by
// the graph builder when a node is added and used to declare dependencies
// between nodes.
type NodeID int

// NodeBuffer is a buffer shared between nodes: a non-owning reference to the
// concrete buffer paired with the access state resolved for this node's
// position in the execution schedule.
type NodeBuffer struct {
	// Buffer is the concrete buffer, owned by the graph's factory.
	Buffer resource.Buffer
	// State is the buffer state resolved for this node.
	State resource.BufferState
}

// NodeImage is an image shared between nodes: a non-owning reference to the
// concrete image paired with the access state resolved for this node's
// position in the execution schedule, and an optional clear instruction.
type NodeImage struct {
	// Image is the concrete image, owned by the graph's factory.
	Image resource.Image
	// State is the image state resolved for this node.
	State resource.ImageState
	// Clear is non-nil only when this node is the chronologically first
	// accessor of the image in the schedule; that node must clear the image to
	// this value before its own work. Every later accessor sees nil and must
	// preserve contents.
	Clear *common.ClearValue
}

// NodeDescription is the immutable declaration and factory for a Node. It is
// created once by application code, declares what the node needs before any
// resource or schedule exists, and is consumed exactly once when the node is
// built.
type NodeDescription interface {
	// Capability returns the class of GPU work the node requires. The graph
	// executes the node on a queue family supporting this capability.
	//
	// Returns:
	//   - command.Capability: the required capability
	Capability() command.Capability

	// Buffers returns the ordered list of buffer states the node requires.
	// Purely declarative: no identifiers exist yet; position is the
	// correspondence key to the identifiers added to the node's builder.
	//
	// Returns:
	//   - []resource.BufferState: required buffer states, in declaration order
	Buffers() []resource.BufferState

	// Images returns the ordered list of image states the node requires.
	// Position is the correspondence key, as with Buffers.
	//
	// Returns:
	//   - []resource.ImageState: required image states, in declaration order
	Images() []resource.ImageState

	// Build wires up everything the node needs to run: for each state declared
	// by Buffers and Images, in the same order, a concrete binding is supplied.
	//
	// Parameters:
	//   - f: the graph's factory
	//   - aux: the application's auxiliary data
	//   - family: the queue family the node will execute on
	//   - buffers: one resolved binding per declared buffer state, in order
	//   - images: one resolved binding per declared image state, in order
	//
	// Returns:
	//   - Node: the live node
	//   - error: a build error, which aborts graph construction
	Build(f factory.Factory, aux any, family command.FamilyID, buffers []NodeBuffer, images []NodeImage) (Node, error)
}

// Node is the live, per-frame runtime unit built from a NodeDescription.
type Node interface {
	// Run records GPU work for exactly one frame and returns the backend
	// submission payload. Run must not block on GPU completion and must not
	// submit directly; submission assembly belongs to the type-erased layer.
	//
	// Parameters:
	//   - f: the graph's factory
	//   - aux: the application's auxiliary data
	//   - frames: the runtime's frame tracker
	//
	// Returns:
	//   - command.Submit: the recorded command work, scoped to this frame
	Run(f factory.Factory, aux any, frames *frame.Frames) command.Submit

	// Dispose releases everything the node owns. The caller must guarantee the
	// device is idle with respect to the node's resources before calling;
	// disposing while GPU work is outstanding is a contract violation this
	// layer cannot detect.
	//
	// Parameters:
	//   - f: the graph's factory
	//   - aux: the application's auxiliary data
	Dispose(f factory.Factory, aux any)
}

// DescriptionBase is an embeddable default for descriptions of nodes that use
// no shared resources (pure compute or synchronization-only nodes). Embed it
// and override what the node actually declares.
type DescriptionBase struct{}

// Buffers returns no required buffer states.
func (DescriptionBase) Buffers() []resource.BufferState { return nil }

// Images returns no required image states.
func (DescriptionBase) Images() []resource.ImageState { return nil }
