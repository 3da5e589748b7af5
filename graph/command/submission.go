package command

import "github.com/Carmen-Shannon/oxy-graph/graph/resource"

// Submit is the opaque payload a node's Run produces: the recorded command work
// for one frame. Its concrete type belongs to the backend (for the wgpu backend
// it is a slice of command buffers); the graph never inspects it, it only
// threads it through to Factory.Submit.
type Submit any

// Semaphore is an opaque GPU-side synchronization primitive created by a
// Factory. The graph wires semaphores between submissions according to the
// computed schedule; backends type-assert their own semaphore values on submit.
type Semaphore any

// Fence is a CPU-visible completion marker for a submission. Fences are created
// by a Factory and observed by the graph runtime for frame pacing and for the
// device-idle check before disposal.
type Fence interface {
	// Signaled reports whether the GPU work the fence was submitted with has
	// completed. Non-blocking.
	Signaled() bool

	// Wait blocks until the fence signals.
	//
	// Returns:
	//   - error: an error if the backend wait fails
	Wait() error

	// Reset returns the fence to the unsignaled state so it can be reused for
	// a later submission. Must only be called after the fence has signaled.
	Reset()
}

// Wait pairs a semaphore to wait on with the pipeline stage at which the wait
// applies: stages before Stage may proceed, stages at or after Stage stall
// until the semaphore signals.
type Wait struct {
	Semaphore Semaphore
	Stage     resource.PipelineStage
}

// Submission is the full unit handed to a queue: the recorded work plus the
// cross-queue ordering the schedule computed for it. The wait and signal sets
// must be passed through to the device exactly as given; they encode the
// cross-node ordering the schedule depends on.
type Submission struct {
	// Waits are the semaphore/stage pairs this submission waits on.
	Waits []Wait
	// Signals are the semaphores signaled when this submission completes.
	Signals []Semaphore
	// Submit is the recorded command work.
	Submit Submit
}
