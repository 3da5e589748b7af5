// package render provides a callback-driven node for render-style work: the
// description declares attachment and resource states through options, and a
// record callback supplies the per-frame command recording. Most graphs can
// express their passes with this package instead of hand-writing a
// NodeDescription per pass.
package render

import (
	"github.com/Carmen-Shannon/oxy-graph/graph/command"
	"github.com/Carmen-Shannon/oxy-graph/graph/factory"
	"github.com/Carmen-Shannon/oxy-graph/graph/frame"
	"github.com/Carmen-Shannon/oxy-graph/graph/node"
	"github.com/Carmen-Shannon/oxy-graph/graph/resource"
)

// RecordFunc records one frame of pass work against the bindings resolved for
// the pass. The returned payload must not be submitted by the callback; the
// graph submits it with the schedule's sync wiring.
//
// Parameters:
//   - f: the graph's factory
//   - aux: the application's auxiliary data
//   - frames: the runtime's frame tracker
//   - buffers: the pass's resolved buffer bindings, in declaration order
//   - images: the pass's resolved image bindings, in declaration order
//
// Returns:
//   - command.Submit: the recorded command work for this frame
type RecordFunc func(f factory.Factory, aux any, frames *frame.Frames, buffers []node.NodeBuffer, images []node.NodeImage) command.Submit

// DisposeFunc releases anything the record callback allocated. Called under
// the graph's device-idle guarantee.
type DisposeFunc func(f factory.Factory, aux any)

// PassOption is a functional option used to configure a pass description
// during construction.
type PassOption func(*passDescription)

// WithCapability overrides the pass's required capability. Defaults to
// graphics.
//
// Parameters:
//   - c: the required capability
//
// Returns:
//   - PassOption: option function to apply
func WithCapability(c command.Capability) PassOption {
	return func(p *passDescription) {
		p.capability = c
	}
}

// WithColorTarget declares one color attachment image, written at color
// attachment output. Declaration order is binding order.
//
// Returns:
//   - PassOption: option function to apply
func WithColorTarget() PassOption {
	return func(p *passDescription) {
		p.images = append(p.images, resource.ImageState{
			Access: resource.AccessColorAttachmentWrite,
			Layout: resource.LayoutColorAttachmentOptimal,
			Stages: resource.StageColorAttachmentOutput,
		})
	}
}

// WithDepthTarget declares one depth attachment image, written at the fragment
// test stages.
//
// Returns:
//   - PassOption: option function to apply
func WithDepthTarget() PassOption {
	return func(p *passDescription) {
		p.images = append(p.images, resource.ImageState{
			Access: resource.AccessDepthStencilWrite,
			Layout: resource.LayoutDepthStencilAttachmentOptimal,
			Stages: resource.StageEarlyFragmentTests | resource.StageLateFragmentTests,
		})
	}
}

// WithSampledImage declares one image sampled in the fragment shader.
//
// Returns:
//   - PassOption: option function to apply
func WithSampledImage() PassOption {
	return func(p *passDescription) {
		p.images = append(p.images, resource.ImageState{
			Access: resource.AccessShaderRead,
			Layout: resource.LayoutShaderReadOnlyOptimal,
			Stages: resource.StageFragmentShader,
		})
	}
}

// WithImageState declares one image with an explicit state, for passes whose
// usage the shorthand options do not cover.
//
// Parameters:
//   - state: the image state to declare
//
// Returns:
//   - PassOption: option function to apply
func WithImageState(state resource.ImageState) PassOption {
	return func(p *passDescription) {
		p.images = append(p.images, state)
	}
}

// WithUniformBuffer declares one buffer read as a uniform in the vertex and
// fragment shaders.
//
// Returns:
//   - PassOption: option function to apply
func WithUniformBuffer() PassOption {
	return func(p *passDescription) {
		p.buffers = append(p.buffers, resource.BufferState{
			Access: resource.AccessUniformRead,
			Stages: resource.StageVertexShader | resource.StageFragmentShader,
		})
	}
}

// WithStorageBuffer declares one storage buffer accessed in the compute
// shader, read-only or read-write.
//
// Parameters:
//   - write: if true, the buffer is written as well as read
//
// Returns:
//   - PassOption: option function to apply
func WithStorageBuffer(write bool) PassOption {
	return func(p *passDescription) {
		access := resource.AccessShaderRead
		if write {
			access |= resource.AccessShaderWrite
		}
		p.buffers = append(p.buffers, resource.BufferState{
			Access: access,
			Stages: resource.StageComputeShader,
		})
	}
}

// WithBufferState declares one buffer with an explicit state.
//
// Parameters:
//   - state: the buffer state to declare
//
// Returns:
//   - PassOption: option function to apply
func WithBufferState(state resource.BufferState) PassOption {
	return func(p *passDescription) {
		p.buffers = append(p.buffers, state)
	}
}

// WithDispose sets a cleanup callback run when the pass node is disposed.
//
// Parameters:
//   - d: the cleanup callback
//
// Returns:
//   - PassOption: option function to apply
func WithDispose(d DisposeFunc) PassOption {
	return func(p *passDescription) {
		p.dispose = d
	}
}

// passDescription implements node.NodeDescription for callback passes.
type passDescription struct {
	capability command.Capability
	buffers    []resource.BufferState
	images     []resource.ImageState
	record     RecordFunc
	dispose    DisposeFunc
}

var _ node.NodeDescription = &passDescription{}

// NewPassDescription creates a pass description around a record callback.
//
// Parameters:
//   - record: the per-frame recording callback (must not be nil)
//   - options: variadic list of PassOption functions declaring the pass's resources
//
// Returns:
//   - node.NodeDescription: the pass description
func NewPassDescription(record RecordFunc, options ...PassOption) node.NodeDescription {
	if record == nil {
		panic("render: NewPassDescription requires a non-nil record callback")
	}
	p := &passDescription{
		capability: command.CapabilityGraphics,
		record:     record,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *passDescription) Capability() command.Capability {
	return p.capability
}

func (p *passDescription) Buffers() []resource.BufferState {
	return append([]resource.BufferState(nil), p.buffers...)
}

func (p *passDescription) Images() []resource.ImageState {
	return append([]resource.ImageState(nil), p.images...)
}

func (p *passDescription) Build(f factory.Factory, aux any, family command.FamilyID, buffers []node.NodeBuffer, images []node.NodeImage) (node.Node, error) {
	return &passNode{
		record:  p.record,
		dispose: p.dispose,
		buffers: buffers,
		images:  images,
	}, nil
}

// passNode implements node.Node for callback passes.
type passNode struct {
	record  RecordFunc
	dispose DisposeFunc
	buffers []node.NodeBuffer
	images  []node.NodeImage
}

var _ node.Node = &passNode{}

func (n *passNode) Run(f factory.Factory, aux any, frames *frame.Frames) command.Submit {
	return n.record(f, aux, frames, n.buffers, n.images)
}

func (n *passNode) Dispose(f factory.Factory, aux any) {
	if n.dispose != nil {
		n.dispose(f, aux)
	}
}
