package chain

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-graph/graph/command"
	"github.com/Carmen-Shannon/oxy-graph/graph/resource"
)

// Collect computes a synchronization plan from the node records of a graph.
//
// The plan is deliberately simple: nodes are ordered by their declared
// dependencies (ties broken by node id so the order is deterministic), every
// node runs on queue 0 of its resolved family, and a semaphore is inserted
// wherever two consecutive accesses of the same resource — or an explicit
// dependency edge — cross a queue boundary. Same-queue ordering needs no
// semaphore; it follows from submission order, with intra-queue hazards left
// to the barriers nodes record themselves.
//
// Parameters:
//   - nodes: one record per graph node, produced by NodeBuilder.Chain
//
// Returns:
//   - *Chains: the per-resource link chains and the submission schedule
//   - error: ErrDependencyCycle if the dependencies admit no order, or a
//     validation error for an out-of-range dependency index
func Collect(nodes []Node) (*Chains, error) {
	order, err := submissionOrder(nodes)
	if err != nil {
		return nil, err
	}

	chains := &Chains{
		Buffers: make(map[ID]*BufferChain),
		Images:  make(map[ID]*ImageChain),
		Schedule: Schedule{
			byNode: make(map[int]*Submission, len(nodes)),
		},
	}

	// lastAccess tracks, per resource, the submission that appended the most
	// recent link so a cross-queue handoff can be detected on the next one.
	lastAccess := make(map[ID]*Submission)
	// linked dedupes semaphores between a submission pair; a resource handoff
	// already orders the pair, so a dependency edge adds nothing.
	linked := make(map[[2]int]bool)

	for _, idx := range order {
		n := nodes[idx]
		sub := &Submission{
			node:      n.ID,
			queue:     command.QueueID{Family: n.Family, Index: 0},
			linkIndex: make(map[ID]int, len(n.Buffers)+len(n.Images)),
		}

		for _, use := range n.Buffers {
			ch := chains.Buffers[use.Key]
			if ch == nil {
				ch = &BufferChain{}
				chains.Buffers[use.Key] = ch
			}
			sub.linkIndex[use.Key] = len(ch.links)
			ch.links = append(ch.links, BufferLink{Queue: sub.queue, Node: n.ID, State: use.State})
			chains.Schedule.handoff(lastAccess[use.Key], sub, use.State.Stages, linked)
			lastAccess[use.Key] = sub
		}
		for _, use := range n.Images {
			ch := chains.Images[use.Key]
			if ch == nil {
				ch = &ImageChain{}
				chains.Images[use.Key] = ch
			}
			sub.linkIndex[use.Key] = len(ch.links)
			ch.links = append(ch.links, ImageLink{Queue: sub.queue, Node: n.ID, State: use.State})
			chains.Schedule.handoff(lastAccess[use.Key], sub, use.State.Stages, linked)
			lastAccess[use.Key] = sub
		}

		// Explicit dependency edges that cross queues and are not already
		// ordered by a resource handoff get a top-of-pipe semaphore.
		for _, dep := range n.Dependencies {
			prev := chains.Schedule.byNode[dep]
			chains.Schedule.handoff(prev, sub, resource.StageTopOfPipe, linked)
		}

		chains.Schedule.ordered = append(chains.Schedule.ordered, sub)
		chains.Schedule.byNode[n.ID] = sub
	}

	return chains, nil
}

// handoff wires a semaphore from prev to next when the two submissions run on
// different queues and are not linked yet. The wait applies at the given stage
// of the waiting submission.
func (s *Schedule) handoff(prev, next *Submission, stage resource.PipelineStage, linked map[[2]int]bool) {
	if prev == nil || prev == next || prev.queue == next.queue {
		return
	}
	pair := [2]int{prev.node, next.node}
	if linked[pair] {
		return
	}
	linked[pair] = true

	ref := SemaphoreRef(s.semaphores)
	s.semaphores++
	prev.sync.Signals = append(prev.sync.Signals, ref)
	next.sync.Waits = append(next.sync.Waits, WaitRef{Semaphore: ref, Stage: stage})
}

// submissionOrder returns node indices in a dependency-respecting order, ties
// broken by ascending node id.
func submissionOrder(nodes []Node) ([]int, error) {
	indegree := make([]int, len(nodes))
	dependents := make([][]int, len(nodes))
	for i, n := range nodes {
		for _, dep := range n.Dependencies {
			if dep < 0 || dep >= len(nodes) {
				return nil, fmt.Errorf("chain: node %d depends on unknown node %d: %w", n.ID, dep, ErrDesynchronized)
			}
			indegree[i]++
			dependents[dep] = append(dependents[dep], i)
		}
	}

	// Kahn's algorithm with an ordered ready list for determinism.
	var ready []int
	for i := range nodes {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]int, 0, len(nodes))
	for len(ready) > 0 {
		next := ready[0]
		for _, r := range ready[1:] {
			if r < next {
				next = r
			}
		}
		for i, r := range ready {
			if r == next {
				ready = append(ready[:i], ready[i+1:]...)
				break
			}
		}

		order = append(order, next)
		for _, dep := range dependents[next] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(order) != len(nodes) {
		return nil, ErrDependencyCycle
	}
	return order, nil
}
