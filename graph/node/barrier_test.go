package node

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/graph/resource"
)

func TestBarrier_BlanketVariants(t *testing.T) {
	b := AllBuffersBarrier(resource.AccessTransferWrite, resource.AccessShaderRead)
	require.Equal(t, BarrierAllBuffers, b.Kind())
	src, dst := b.AccessRange()
	require.Equal(t, resource.AccessTransferWrite, src)
	require.Equal(t, resource.AccessShaderRead, dst)

	b = AllImagesBarrier(resource.AccessColorAttachmentWrite, resource.AccessShaderRead)
	require.Equal(t, BarrierAllImages, b.Kind())
	src, dst = b.AccessRange()
	require.Equal(t, resource.AccessColorAttachmentWrite, src)
	require.Equal(t, resource.AccessShaderRead, dst)
}

func TestBarrier_SingleBuffer(t *testing.T) {
	from := resource.BufferState{Access: resource.AccessTransferWrite, Stages: resource.StageTransfer}
	to := resource.BufferState{Access: resource.AccessVertexAttributeRead, Stages: resource.StageVertexInput}

	b := BufferBarrier(from, to, 4)
	require.Equal(t, BarrierBuffer, b.Kind())
	require.Equal(t, 4, b.Target())
	src, dst := b.BufferStates()
	require.Equal(t, from, src)
	require.Equal(t, to, dst)
}

func TestBarrier_SingleImageWithRange(t *testing.T) {
	from := resource.ImageState{
		Access: resource.AccessTransferWrite,
		Layout: resource.LayoutTransferDstOptimal,
		Stages: resource.StageTransfer,
	}
	to := resource.ImageState{
		Access: resource.AccessShaderRead,
		Layout: resource.LayoutShaderReadOnlyOptimal,
		Stages: resource.StageFragmentShader,
	}
	rng := common.WholeImage(4, 1)

	b := ImageBarrier(from, to, 2, rng)
	require.Equal(t, BarrierImage, b.Kind())
	require.Equal(t, 2, b.Target())
	src, dst := b.ImageStates()
	require.Equal(t, from, src)
	require.Equal(t, to, dst)
	require.Equal(t, rng, b.Range())
	require.Equal(t, uint32(4), b.Range().Levels)
}
