package node

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/graph/chain"
	"github.com/Carmen-Shannon/oxy-graph/graph/command"
	"github.com/Carmen-Shannon/oxy-graph/graph/factory"
	"github.com/Carmen-Shannon/oxy-graph/graph/factory/factorytest"
	"github.com/Carmen-Shannon/oxy-graph/graph/frame"
	"github.com/Carmen-Shannon/oxy-graph/graph/resource"
)

// stubDescription is a minimal NodeDescription for builder tests.
type stubDescription struct {
	capability command.Capability
	buffers    []resource.BufferState
	images     []resource.ImageState
	buildErr   error
	built      *stubNode
}

var _ NodeDescription = &stubDescription{}

func (d *stubDescription) Capability() command.Capability  { return d.capability }
func (d *stubDescription) Buffers() []resource.BufferState { return d.buffers }
func (d *stubDescription) Images() []resource.ImageState   { return d.images }

func (d *stubDescription) Build(f factory.Factory, aux any, family command.FamilyID, buffers []NodeBuffer, images []NodeImage) (Node, error) {
	if d.buildErr != nil {
		return nil, d.buildErr
	}
	d.built = &stubNode{family: family, buffers: buffers, images: images}
	return d.built, nil
}

type stubNode struct {
	family   command.FamilyID
	buffers  []NodeBuffer
	images   []NodeImage
	disposed bool
}

var _ Node = &stubNode{}

func (n *stubNode) Run(f factory.Factory, aux any, frames *frame.Frames) command.Submit {
	return nil
}

func (n *stubNode) Dispose(f factory.Factory, aux any) { n.disposed = true }

func uniformState() resource.BufferState {
	return resource.BufferState{Access: resource.AccessUniformRead, Stages: resource.StageVertexShader}
}

func transferWriteState() resource.BufferState {
	return resource.BufferState{Access: resource.AccessTransferWrite, Stages: resource.StageTransfer}
}

func colorWriteState() resource.ImageState {
	return resource.ImageState{
		Access: resource.AccessColorAttachmentWrite,
		Layout: resource.LayoutColorAttachmentOptimal,
		Stages: resource.StageColorAttachmentOutput,
	}
}

func TestNodeBuilder_Chain_PairsIdentifiersWithStatesByPosition(t *testing.T) {
	f := factorytest.New()
	desc := &stubDescription{
		capability: command.CapabilityGraphics,
		buffers:    []resource.BufferState{uniformState(), transferWriteState()},
		images:     []resource.ImageState{colorWriteState()},
	}

	b := NewNodeBuilder(desc).
		WithBuffer(2).
		WithBuffer(0).
		WithImage(1).
		WithDependency(3)

	rec, err := b.Chain(5, f, 4)
	require.NoError(t, err)

	require.Equal(t, 5, rec.ID)
	require.Equal(t, command.FamilyID(0), rec.Family)
	require.Equal(t, []int{3}, rec.Dependencies)

	// Position, not identifier value, carries the correspondence: the first
	// declared id gets the first declared state.
	require.Len(t, rec.Buffers, 2)
	require.Equal(t, chain.BufferKey(2), rec.Buffers[0].Key)
	require.Equal(t, uniformState(), rec.Buffers[0].State)
	require.Equal(t, chain.BufferKey(0), rec.Buffers[1].Key)
	require.Equal(t, transferWriteState(), rec.Buffers[1].State)

	require.Len(t, rec.Images, 1)
	require.Equal(t, chain.ImageKey(1, 4), rec.Images[0].Key)
	require.Equal(t, colorWriteState(), rec.Images[0].State)
}

func TestNodeBuilder_Chain_NoSuitableFamily(t *testing.T) {
	f := factorytest.New(command.Family{ID: 0, Capability: command.CapabilityTransfer, Queues: 1})
	desc := &stubDescription{capability: command.CapabilityGraphics}

	_, err := NewNodeBuilder(desc).Chain(0, f, 0)
	require.ErrorIs(t, err, ErrNoSuitableFamily)
}

func TestNodeBuilder_Chain_BufferCountMismatch(t *testing.T) {
	f := factorytest.New()
	desc := &stubDescription{
		capability: command.CapabilityTransfer,
		buffers:    []resource.BufferState{uniformState()},
	}

	// The description requires one buffer state, the builder declared none.
	_, err := NewNodeBuilder(desc).Chain(0, f, 1)
	require.ErrorIs(t, err, chain.ErrDesynchronized)
}

func TestNodeBuilder_Chain_ImageCountMismatch(t *testing.T) {
	f := factorytest.New()
	desc := &stubDescription{capability: command.CapabilityTransfer}

	_, err := NewNodeBuilder(desc).WithImage(0).Chain(0, f, 0)
	require.ErrorIs(t, err, chain.ErrDesynchronized)
}

// compile projects builders through Chain and Collect, the way the graph does
// at build time.
func compile(t *testing.T, f factory.Factory, totalBuffers int, builders ...*NodeBuilder) *chain.Chains {
	t.Helper()
	records := make([]chain.Node, len(builders))
	for i, b := range builders {
		rec, err := b.Chain(i, f, totalBuffers)
		require.NoError(t, err)
		records[i] = rec
	}
	chains, err := chain.Collect(records)
	require.NoError(t, err)
	return chains
}

func TestNodeBuilder_Build_ClearGoesToFirstAccessorOnly(t *testing.T) {
	f := factorytest.New()
	img, err := f.CreateImage(resource.ImageInfo{
		Label:  "color",
		Extent: common.Extent2D(64, 64),
		Levels: 1,
		Layers: 1,
		Format: resource.FormatRGBA8Unorm,
		Usage:  resource.ImageUsageColorAttachment | resource.ImageUsageSampled,
	})
	require.NoError(t, err)

	clear := common.ClearColor(0.1, 0.2, 0.3, 1)
	slots := []ImageSlot{{Image: img, Clear: &clear}}

	first := &stubDescription{capability: command.CapabilityGraphics, images: []resource.ImageState{colorWriteState()}}
	second := &stubDescription{capability: command.CapabilityGraphics, images: []resource.ImageState{{
		Access: resource.AccessShaderRead,
		Layout: resource.LayoutShaderReadOnlyOptimal,
		Stages: resource.StageFragmentShader,
	}}}

	bFirst := NewNodeBuilder(first).WithImage(0)
	bSecond := NewNodeBuilder(second).WithImage(0).WithDependency(0)

	chains := compile(t, f, 0, bFirst, bSecond)

	nFirst, err := bFirst.Build(f, nil, 0, nil, slots, chains, chains.Schedule.Submission(0))
	require.NoError(t, err)
	require.NotNil(t, nFirst)
	nSecond, err := bSecond.Build(f, nil, 0, nil, slots, chains, chains.Schedule.Submission(1))
	require.NoError(t, err)
	require.NotNil(t, nSecond)

	require.Len(t, first.built.images, 1)
	require.NotNil(t, first.built.images[0].Clear, "chronologically first accessor should receive the clear")
	require.Equal(t, clear, *first.built.images[0].Clear)

	require.Len(t, second.built.images, 1)
	require.Nil(t, second.built.images[0].Clear, "later accessors must preserve, not clear")

	// The binding holds a copy, so node-side mutation cannot leak into the
	// graph's registered value.
	first.built.images[0].Clear.Color[0] = 9
	require.Equal(t, float32(0.1), clear.Color[0])
}

func TestNodeBuilder_Build_BindsScheduledStates(t *testing.T) {
	f := factorytest.New()
	buf, err := f.CreateBuffer(resource.BufferInfo{Label: "uniforms", Size: 256, Usage: resource.BufferUsageUniform})
	require.NoError(t, err)
	img, err := f.CreateImage(resource.ImageInfo{
		Label:  "target",
		Extent: common.Extent2D(32, 32),
		Levels: 1,
		Layers: 1,
		Format: resource.FormatRGBA8Unorm,
		Usage:  resource.ImageUsageColorAttachment,
	})
	require.NoError(t, err)

	desc := &stubDescription{
		capability: command.CapabilityGraphics,
		buffers:    []resource.BufferState{uniformState()},
		images:     []resource.ImageState{colorWriteState()},
	}
	b := NewNodeBuilder(desc).WithBuffer(0).WithImage(0)

	chains := compile(t, f, 1, b)

	_, err = b.Build(f, nil, 0, []resource.Buffer{buf}, []ImageSlot{{Image: img}}, chains, chains.Schedule.Submission(0))
	require.NoError(t, err)

	require.Len(t, desc.built.buffers, 1)
	require.Same(t, buf, desc.built.buffers[0].Buffer)
	require.Equal(t, uniformState(), desc.built.buffers[0].State)

	require.Len(t, desc.built.images, 1)
	require.Same(t, img, desc.built.images[0].Image)
	require.Equal(t, colorWriteState(), desc.built.images[0].State)
	require.Nil(t, desc.built.images[0].Clear)
}

func TestNodeBuilder_Build_UnknownResourceIsDesynchronized(t *testing.T) {
	f := factorytest.New()
	desc := &stubDescription{
		capability: command.CapabilityGraphics,
		images:     []resource.ImageState{colorWriteState()},
	}
	b := NewNodeBuilder(desc).WithImage(3)

	chains := compile(t, f, 0, b)

	// The schedule knows image 3, but the graph's registry has no such slot.
	_, err := b.Build(f, nil, 0, nil, nil, chains, chains.Schedule.Submission(0))
	require.ErrorIs(t, err, chain.ErrDesynchronized)
}

func TestNodeBuilder_Build_PropagatesDescriptionError(t *testing.T) {
	f := factorytest.New()
	boom := errors.New("shader compilation failed")
	desc := &stubDescription{capability: command.CapabilityGraphics, buildErr: boom}
	b := NewNodeBuilder(desc)

	chains := compile(t, f, 0, b)

	_, err := b.Build(f, nil, 0, nil, nil, chains, chains.Schedule.Submission(0))
	require.ErrorIs(t, err, boom)
}
