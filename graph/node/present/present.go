// package present provides the node that gets a rendered image onto a window
// surface. The node declares a single transfer-read image state — the image to
// present — and produces a factory.PresentRequest payload instead of recorded
// command work; the backend performs the copy to the surface's current texture
// and the flip.
package present

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-graph/graph/command"
	"github.com/Carmen-Shannon/oxy-graph/graph/factory"
	"github.com/Carmen-Shannon/oxy-graph/graph/frame"
	"github.com/Carmen-Shannon/oxy-graph/graph/node"
	"github.com/Carmen-Shannon/oxy-graph/graph/resource"
)

// presentDescription implements node.NodeDescription for presentation.
type presentDescription struct {
	surface factory.Surface
}

var _ node.NodeDescription = &presentDescription{}

// NewPresentDescription creates the description for a present node targeting
// the given surface. Add exactly one image to the node's builder: the image
// whose contents are presented each frame.
//
// Parameters:
//   - surface: the presentation target (must not be nil)
//
// Returns:
//   - node.NodeDescription: the present description
func NewPresentDescription(surface factory.Surface) node.NodeDescription {
	if surface == nil {
		panic("present: NewPresentDescription requires a non-nil Surface")
	}
	return &presentDescription{surface: surface}
}

func (p *presentDescription) Capability() command.Capability {
	return command.CapabilityGraphics
}

func (p *presentDescription) Buffers() []resource.BufferState {
	return nil
}

func (p *presentDescription) Images() []resource.ImageState {
	return []resource.ImageState{{
		Access: resource.AccessTransferRead,
		Layout: resource.LayoutTransferSrcOptimal,
		Stages: resource.StageTransfer,
	}}
}

func (p *presentDescription) Build(f factory.Factory, aux any, family command.FamilyID, buffers []node.NodeBuffer, images []node.NodeImage) (node.Node, error) {
	if len(images) != 1 {
		return nil, fmt.Errorf("present: expected exactly one image binding, got %d", len(images))
	}
	return &presentNode{
		surface: p.surface,
		source:  images[0],
	}, nil
}

// presentNode implements node.Node for presentation.
type presentNode struct {
	surface factory.Surface
	source  node.NodeImage
}

var _ node.Node = &presentNode{}

func (n *presentNode) Run(f factory.Factory, aux any, frames *frame.Frames) command.Submit {
	return factory.PresentRequest{
		Surface: n.surface,
		Source:  n.source.Image,
	}
}

func (n *presentNode) Dispose(f factory.Factory, aux any) {
	// The surface belongs to the windowing layer; nothing to release here.
}
