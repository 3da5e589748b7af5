package node

import (
	"github.com/Carmen-Shannon/oxy-graph/graph/command"
	"github.com/Carmen-Shannon/oxy-graph/graph/factory"
	"github.com/Carmen-Shannon/oxy-graph/graph/frame"
	"github.com/Carmen-Shannon/oxy-graph/graph/resource"
)

// AnyNode is the uniform facade the graph stores and drives. It wraps a typed
// Node and is the single point where a node's recorded work is actually handed
// to the device, with the exact wait/signal sets the schedule computed.
type AnyNode interface {
	// Run records the wrapped node's work for one frame, assembles the full
	// submission around it, and submits it to the identified queue. The wait
	// and signal sets are forwarded exactly as given; they encode the
	// cross-node, cross-queue ordering the schedule requires.
	//
	// Parameters:
	//   - f: the graph's factory
	//   - aux: the application's auxiliary data
	//   - frames: the runtime's frame tracker
	//   - qid: the queue the submission goes to
	//   - waits: semaphore/stage pairs the submission waits on
	//   - signals: semaphores signaled on completion
	//   - fence: optional CPU-visible completion fence
	//
	// Returns:
	//   - error: an error if the factory rejects the submission
	Run(f factory.Factory, aux any, frames *frame.Frames, qid command.QueueID, waits []command.Wait, signals []command.Semaphore, fence command.Fence) error

	// Dispose forwards to the typed node's Dispose under the same idle-device
	// precondition.
	//
	// Parameters:
	//   - f: the graph's factory
	//   - aux: the application's auxiliary data
	Dispose(f factory.Factory, aux any)
}

// AnyNodeDescription is the uniform facade over a typed NodeDescription,
// letting the graph hold heterogeneous description implementations in one
// collection during construction.
type AnyNodeDescription interface {
	// Family selects the first queue family in the supplied list whose
	// capability set satisfies the wrapped description's requirement.
	//
	// Parameters:
	//   - families: the device's queue families, in the factory's stable order
	//
	// Returns:
	//   - command.FamilyID: the selected family
	//   - bool: false if no family qualifies (the node is unschedulable)
	Family(families []command.Family) (command.FamilyID, bool)

	// Buffers returns the wrapped description's declared buffer states.
	Buffers() []resource.BufferState

	// Images returns the wrapped description's declared image states.
	Images() []resource.ImageState

	// Build forwards to the typed description's Build and wraps the result for
	// uniform storage. The typed build error propagates unchanged.
	//
	// Parameters:
	//   - f: the graph's factory
	//   - aux: the application's auxiliary data
	//   - family: the queue family the node will execute on
	//   - buffers: one resolved binding per declared buffer state, in order
	//   - images: one resolved binding per declared image state, in order
	//
	// Returns:
	//   - AnyNode: the wrapped live node
	//   - error: the typed build error, unchanged
	Build(f factory.Factory, aux any, family command.FamilyID, buffers []NodeBuffer, images []NodeImage) (AnyNode, error)
}

// Erase wraps a typed NodeDescription behind the type-erased facade.
//
// Parameters:
//   - desc: the typed description to wrap
//
// Returns:
//   - AnyNodeDescription: the erased description
func Erase(desc NodeDescription) AnyNodeDescription {
	return &anyNodeDescription{desc: desc}
}

// anyNodeDescription adapts a typed NodeDescription to AnyNodeDescription.
type anyNodeDescription struct {
	desc NodeDescription
}

var _ AnyNodeDescription = &anyNodeDescription{}

func (a *anyNodeDescription) Family(families []command.Family) (command.FamilyID, bool) {
	required := a.desc.Capability()
	for _, fam := range families {
		if fam.Capability.Supports(required) {
			return fam.ID, true
		}
	}
	return 0, false
}

func (a *anyNodeDescription) Buffers() []resource.BufferState {
	return a.desc.Buffers()
}

func (a *anyNodeDescription) Images() []resource.ImageState {
	return a.desc.Images()
}

func (a *anyNodeDescription) Build(f factory.Factory, aux any, family command.FamilyID, buffers []NodeBuffer, images []NodeImage) (AnyNode, error) {
	n, err := a.desc.Build(f, aux, family, buffers, images)
	if err != nil {
		return nil, err
	}
	return &anyNode{node: n}, nil
}

// anyNode adapts a typed Node to AnyNode.
type anyNode struct {
	node Node
}

var _ AnyNode = &anyNode{}

func (a *anyNode) Run(f factory.Factory, aux any, frames *frame.Frames, qid command.QueueID, waits []command.Wait, signals []command.Semaphore, fence command.Fence) error {
	submit := a.node.Run(f, aux, frames)
	return f.Submit(qid, command.Submission{
		Waits:   waits,
		Signals: signals,
		Submit:  submit,
	}, fence)
}

func (a *anyNode) Dispose(f factory.Factory, aux any) {
	a.node.Dispose(f, aux)
}
