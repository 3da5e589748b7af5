package node

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/graph/chain"
	"github.com/Carmen-Shannon/oxy-graph/graph/command"
	"github.com/Carmen-Shannon/oxy-graph/graph/factory/factorytest"
	"github.com/Carmen-Shannon/oxy-graph/graph/resource"
)

func TestErase_FamilyPicksFirstSatisfyingByInputOrder(t *testing.T) {
	families := []command.Family{
		{ID: 7, Capability: command.CapabilityTransfer, Queues: 1},
		{ID: 3, Capability: command.CapabilityGeneral, Queues: 1},
		{ID: 5, Capability: command.CapabilityGeneral, Queues: 2},
	}

	erased := Erase(&stubDescription{capability: command.CapabilityGraphics})
	id, ok := erased.Family(families)
	require.True(t, ok)
	require.Equal(t, command.FamilyID(3), id, "the first qualifying family wins, even with later candidates")

	erased = Erase(&stubDescription{capability: command.CapabilityTransfer})
	id, ok = erased.Family(families)
	require.True(t, ok)
	require.Equal(t, command.FamilyID(7), id)

	erased = Erase(&stubDescription{capability: command.CapabilityGraphics})
	_, ok = erased.Family(families[:1])
	require.False(t, ok, "no qualifying family means unschedulable")
}

func TestNodeBuilder_RoundTripPreservesBindingCounts(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := factorytest.New()

		bufferCount := rapid.IntRange(0, 8).Draw(rt, "bufferCount")
		imageCount := rapid.IntRange(0, 8).Draw(rt, "imageCount")

		var graphBuffers []resource.Buffer
		for i := 0; i < bufferCount; i++ {
			buf, err := f.CreateBuffer(resource.BufferInfo{Size: 64, Usage: resource.BufferUsageStorage})
			require.NoError(rt, err)
			graphBuffers = append(graphBuffers, buf)
		}
		var slots []ImageSlot
		for i := 0; i < imageCount; i++ {
			img, err := f.CreateImage(resource.ImageInfo{
				Extent: common.Extent2D(16, 16), Levels: 1, Layers: 1,
				Format: resource.FormatRGBA8Unorm,
				Usage:  resource.ImageUsageStorage,
			})
			require.NoError(rt, err)
			slots = append(slots, ImageSlot{Image: img})
		}

		desc := &stubDescription{capability: command.CapabilityGeneral}
		b := NewNodeBuilder(desc)
		for i := 0; i < bufferCount; i++ {
			desc.buffers = append(desc.buffers, resource.BufferState{Access: resource.AccessShaderRead, Stages: resource.StageComputeShader})
			b.AddBuffer(resource.BufferID(i))
		}
		for i := 0; i < imageCount; i++ {
			desc.images = append(desc.images, resource.ImageState{
				Access: resource.AccessShaderWrite,
				Layout: resource.LayoutGeneral,
				Stages: resource.StageComputeShader,
			})
			b.AddImage(resource.ImageID(i))
		}

		rec, err := b.Chain(0, f, bufferCount)
		require.NoError(rt, err)
		require.Len(rt, rec.Buffers, bufferCount)
		require.Len(rt, rec.Images, imageCount)

		chains, err := chain.Collect([]chain.Node{rec})
		require.NoError(rt, err)

		_, err = b.Build(f, nil, 0, graphBuffers, slots, chains, chains.Schedule.Submission(0))
		require.NoError(rt, err)

		// Resolution reproduces exactly the declared counts, nothing dropped
		// or duplicated.
		require.Len(rt, desc.built.buffers, bufferCount)
		require.Len(rt, desc.built.images, imageCount)
		for i := 0; i < bufferCount; i++ {
			require.Same(rt, graphBuffers[i], desc.built.buffers[i].Buffer)
		}
		for i := 0; i < imageCount; i++ {
			require.Same(rt, slots[i].Image, desc.built.images[i].Image)
		}
	})
}
