package chain

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Carmen-Shannon/oxy-graph/graph/command"
	"github.com/Carmen-Shannon/oxy-graph/graph/resource"
)

func bufferUse(key ID, access resource.Access, stages resource.PipelineStage) BufferUse {
	return BufferUse{Key: key, State: resource.BufferState{Access: access, Stages: stages}}
}

func imageUse(key ID, access resource.Access, layout resource.Layout, stages resource.PipelineStage) ImageUse {
	return ImageUse{Key: key, State: resource.ImageState{Access: access, Layout: layout, Stages: stages}}
}

func orderedNodes(t *testing.T, chains *Chains) []int {
	t.Helper()
	var ids []int
	for _, sub := range chains.Schedule.Ordered() {
		ids = append(ids, sub.Node())
	}
	return ids
}

func TestCollect_IndependentNodesKeepIDOrder(t *testing.T) {
	nodes := []Node{
		{ID: 0, Family: 0},
		{ID: 1, Family: 0},
		{ID: 2, Family: 0},
	}

	chains, err := Collect(nodes)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2}, orderedNodes(t, chains), "independent nodes should submit in id order")
}

func TestCollect_DependenciesRespected(t *testing.T) {
	// 2 must run before 0, 0 before 1.
	nodes := []Node{
		{ID: 0, Family: 0, Dependencies: []int{2}},
		{ID: 1, Family: 0, Dependencies: []int{0}},
		{ID: 2, Family: 0},
	}

	chains, err := Collect(nodes)
	require.NoError(t, err)
	require.Equal(t, []int{2, 0, 1}, orderedNodes(t, chains))
}

func TestCollect_CycleIsAnError(t *testing.T) {
	nodes := []Node{
		{ID: 0, Family: 0, Dependencies: []int{1}},
		{ID: 1, Family: 0, Dependencies: []int{0}},
	}

	_, err := Collect(nodes)
	require.ErrorIs(t, err, ErrDependencyCycle)
}

func TestCollect_UnknownDependencyIsAnError(t *testing.T) {
	nodes := []Node{
		{ID: 0, Family: 0, Dependencies: []int{7}},
	}

	_, err := Collect(nodes)
	require.ErrorIs(t, err, ErrDesynchronized)
}

func TestCollect_ResourceLinksFollowSubmissionOrder(t *testing.T) {
	key := BufferKey(0)
	nodes := []Node{
		{ID: 0, Family: 0, Buffers: []BufferUse{bufferUse(key, resource.AccessTransferWrite, resource.StageTransfer)}},
		{ID: 1, Family: 0, Dependencies: []int{0}, Buffers: []BufferUse{bufferUse(key, resource.AccessShaderRead, resource.StageFragmentShader)}},
	}

	chains, err := Collect(nodes)
	require.NoError(t, err)

	ch := chains.Buffers[key]
	require.NotNil(t, ch)
	links := ch.Links()
	require.Len(t, links, 2)
	require.Equal(t, 0, links[0].Node)
	require.Equal(t, resource.AccessTransferWrite, links[0].State.Access)
	require.Equal(t, 1, links[1].Node)
	require.Equal(t, resource.AccessShaderRead, links[1].State.Access)

	// Each submission's link index points at its own link.
	sub0 := chains.Schedule.Submission(0)
	li, ok := sub0.ResourceLinkIndex(key)
	require.True(t, ok)
	require.Equal(t, 0, li, "first accessor should hold link index zero")

	sub1 := chains.Schedule.Submission(1)
	li, ok = sub1.ResourceLinkIndex(key)
	require.True(t, ok)
	require.Equal(t, 1, li)

	_, ok = sub0.ResourceLinkIndex(ImageKey(0, 1))
	require.False(t, ok, "a submission should not report links for resources it never touches")
}

func TestCollect_SameQueueNeedsNoSemaphores(t *testing.T) {
	key := ImageKey(0, 0)
	nodes := []Node{
		{ID: 0, Family: 0, Images: []ImageUse{imageUse(key, resource.AccessColorAttachmentWrite, resource.LayoutColorAttachmentOptimal, resource.StageColorAttachmentOutput)}},
		{ID: 1, Family: 0, Images: []ImageUse{imageUse(key, resource.AccessShaderRead, resource.LayoutShaderReadOnlyOptimal, resource.StageFragmentShader)}},
	}

	chains, err := Collect(nodes)
	require.NoError(t, err)
	require.Equal(t, 0, chains.Schedule.SemaphoreCount())
	for _, sub := range chains.Schedule.Ordered() {
		require.Empty(t, sub.Sync().Waits)
		require.Empty(t, sub.Sync().Signals)
	}
}

func TestCollect_CrossQueueHandoffGetsSemaphore(t *testing.T) {
	key := BufferKey(3)
	nodes := []Node{
		{ID: 0, Family: 0, Buffers: []BufferUse{bufferUse(key, resource.AccessTransferWrite, resource.StageTransfer)}},
		{ID: 1, Family: 1, Buffers: []BufferUse{bufferUse(key, resource.AccessShaderRead, resource.StageComputeShader)}},
	}

	chains, err := Collect(nodes)
	require.NoError(t, err)
	require.Equal(t, 1, chains.Schedule.SemaphoreCount())

	producer := chains.Schedule.Submission(0)
	consumer := chains.Schedule.Submission(1)
	require.Len(t, producer.Sync().Signals, 1)
	require.Len(t, consumer.Sync().Waits, 1)
	require.Equal(t, producer.Sync().Signals[0], consumer.Sync().Waits[0].Semaphore)
	require.Equal(t, resource.StageComputeShader, consumer.Sync().Waits[0].Stage,
		"the wait should apply at the consumer's access stage")
}

func TestCollect_HandoffDedupedPerSubmissionPair(t *testing.T) {
	// Two shared resources and an explicit dependency between the same pair of
	// nodes should still produce a single semaphore.
	bufKey := BufferKey(0)
	imgKey := ImageKey(0, 1)
	nodes := []Node{
		{
			ID: 0, Family: 0,
			Buffers: []BufferUse{bufferUse(bufKey, resource.AccessTransferWrite, resource.StageTransfer)},
			Images:  []ImageUse{imageUse(imgKey, resource.AccessTransferWrite, resource.LayoutTransferDstOptimal, resource.StageTransfer)},
		},
		{
			ID: 1, Family: 1, Dependencies: []int{0},
			Buffers: []BufferUse{bufferUse(bufKey, resource.AccessShaderRead, resource.StageFragmentShader)},
			Images:  []ImageUse{imageUse(imgKey, resource.AccessShaderRead, resource.LayoutShaderReadOnlyOptimal, resource.StageFragmentShader)},
		},
	}

	chains, err := Collect(nodes)
	require.NoError(t, err)
	require.Equal(t, 1, chains.Schedule.SemaphoreCount())
}

func TestCollect_CrossQueueDependencyWithoutSharedResource(t *testing.T) {
	nodes := []Node{
		{ID: 0, Family: 0},
		{ID: 1, Family: 1, Dependencies: []int{0}},
	}

	chains, err := Collect(nodes)
	require.NoError(t, err)
	require.Equal(t, 1, chains.Schedule.SemaphoreCount())

	consumer := chains.Schedule.Submission(1)
	require.Len(t, consumer.Sync().Waits, 1)
	require.Equal(t, resource.StageTopOfPipe, consumer.Sync().Waits[0].Stage,
		"a bare dependency edge should wait at top of pipe")
}

func TestCollect_EveryNodeScheduledExactlyOnce(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 30).Draw(rt, "count")
		nodes := make([]Node, count)
		for i := range nodes {
			nodes[i] = Node{ID: i, Family: command.FamilyID(rapid.IntRange(0, 2).Draw(rt, "family"))}
			// Only backward edges, so the dependency graph is always acyclic.
			if i > 0 && rapid.Bool().Draw(rt, "hasDep") {
				nodes[i].Dependencies = []int{rapid.IntRange(0, i-1).Draw(rt, "dep")}
			}
		}

		chains, err := Collect(nodes)
		require.NoError(rt, err)

		seen := make(map[int]bool)
		pos := make(map[int]int)
		for p, sub := range chains.Schedule.Ordered() {
			require.False(rt, seen[sub.Node()], "node scheduled twice")
			seen[sub.Node()] = true
			pos[sub.Node()] = p
		}
		require.Len(rt, seen, count)

		for i, n := range nodes {
			for _, dep := range n.Dependencies {
				require.Less(rt, pos[dep], pos[i], "dependency must precede dependent")
			}
		}
	})
}

func TestKeySpace_BufferAndImageKeysNeverCollide(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		totalBuffers := rapid.IntRange(1, 4096).Draw(rt, "totalBuffers")
		bufID := resource.BufferID(rapid.IntRange(0, totalBuffers-1).Draw(rt, "bufID"))
		imgID := resource.ImageID(rapid.IntRange(0, 4096).Draw(rt, "imgID"))

		bufKey := BufferKey(bufID)
		imgKey := ImageKey(imgID, totalBuffers)

		require.Less(rt, uint32(bufKey), uint32(totalBuffers), "buffer keys occupy [0, totalBuffers)")
		require.GreaterOrEqual(rt, uint32(imgKey), uint32(totalBuffers), "image keys start at totalBuffers")
		require.NotEqual(rt, bufKey, imgKey)
	})
}
