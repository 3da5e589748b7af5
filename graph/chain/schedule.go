package chain

import (
	"github.com/Carmen-Shannon/oxy-graph/graph/command"
	"github.com/Carmen-Shannon/oxy-graph/graph/resource"
)

// SemaphoreRef is a scheduler-assigned semaphore index. The graph allocates one
// concrete Factory semaphore per index before building nodes; submissions refer
// to semaphores only by these indices.
type SemaphoreRef int

// WaitRef pairs a semaphore index with the pipeline stage at which the wait
// applies in the waiting submission.
type WaitRef struct {
	Semaphore SemaphoreRef
	Stage     resource.PipelineStage
}

// SyncData is the cross-queue ordering computed for one submission: the
// semaphores it must wait on before its stages run, and the semaphores it
// signals on completion.
type SyncData struct {
	Waits   []WaitRef
	Signals []SemaphoreRef
}

// Submission is one node's position in the global execution order, with the
// queue it runs on, its per-resource link indices, and its sync data.
type Submission struct {
	node      int
	queue     command.QueueID
	linkIndex map[ID]int
	sync      SyncData
}

// Node returns the index of the node this submission executes.
func (s *Submission) Node() int {
	return s.node
}

// Queue returns the queue the submission is assigned to.
func (s *Submission) Queue() command.QueueID {
	return s.queue
}

// Sync returns the submission's wait/signal semaphore references.
func (s *Submission) Sync() SyncData {
	return s.sync
}

// ResourceLinkIndex returns this submission's position within the ordered link
// list of the given resource: 0 means the node is the chronologically first
// accessor of the resource in the schedule.
//
// Parameters:
//   - id: the resource's unified key
//
// Returns:
//   - int: the link index for this submission
//   - bool: false if the submission does not access the resource
func (s *Submission) ResourceLinkIndex(id ID) (int, bool) {
	idx, ok := s.linkIndex[id]
	return idx, ok
}

// Schedule is the global submission order for a graph. Submissions appear in
// the exact order their work must be handed to the device; two submissions on
// the same queue are ordered by position, submissions on different queues by
// the semaphore wiring in their sync data.
type Schedule struct {
	ordered []*Submission
	byNode  map[int]*Submission
	// semaphores is the number of scheduler-assigned semaphore indices in use.
	semaphores int
}

// Ordered returns the submissions in global submission order.
func (s *Schedule) Ordered() []*Submission {
	return s.ordered
}

// Submission returns the submission for the given node index.
//
// Parameters:
//   - node: the node's index in the graph's node list
//
// Returns:
//   - *Submission: the node's submission, or nil if the node is not scheduled
func (s *Schedule) Submission(node int) *Submission {
	return s.byNode[node]
}

// SemaphoreCount returns how many distinct semaphores the schedule references.
// The graph must allocate exactly this many before running.
func (s *Schedule) SemaphoreCount() int {
	return s.semaphores
}
