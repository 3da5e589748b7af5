package graph

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-graph/graph/command"
	"github.com/Carmen-Shannon/oxy-graph/graph/factory"
	"github.com/Carmen-Shannon/oxy-graph/graph/frame"
	"github.com/Carmen-Shannon/oxy-graph/graph/node"
	"github.com/Carmen-Shannon/oxy-graph/graph/profiler"
	"github.com/Carmen-Shannon/oxy-graph/graph/resource"
)

// ErrDisposed is returned when a graph is run after Dispose.
var ErrDisposed = errors.New("graph: graph has been disposed")

// scheduledNode is one node in global submission order with its wiring: the
// queue it submits to, the semaphores the schedule assigned it, and whether it
// is its queue's last submission of the frame (and so carries the frame fence).
type scheduledNode struct {
	node    node.AnyNode
	queue   command.QueueID
	waits   []command.Wait
	signals []command.Semaphore
	tail    bool
}

// graph implements the Graph interface.
type graph struct {
	nodes      []scheduledNode
	buffers    []resource.Buffer
	images     []node.ImageSlot
	semaphores []command.Semaphore

	frames    *frame.Frames
	maxFrames int
	// fenceSlots reuses one fence set per frame slot; a slot's fences are
	// guaranteed retired before reuse by the in-flight cap in Run.
	fenceSlots [][]command.Fence

	profiler *profiler.Profiler
	disposed bool
}

// Graph is a compiled frame graph: every node built against concrete
// resources, ready to be driven once per frame from a single control thread.
type Graph interface {
	// Run records and submits every node for one frame, in the compiled
	// submission order, with the wait/signal semaphores and fences the
	// schedule assigned. Blocks only when the in-flight frame cap is reached,
	// and then only on the oldest frame's fences.
	//
	// Parameters:
	//   - f: the factory the graph was built with
	//   - aux: the application's auxiliary data, passed through to node Run
	//
	// Returns:
	//   - error: an error if any submission is rejected
	Run(f factory.Factory, aux any) error

	// Buffer returns the concrete buffer for an identifier registered at
	// construction, or nil for an unknown identifier.
	//
	// Parameters:
	//   - id: the buffer's identifier
	//
	// Returns:
	//   - resource.Buffer: the buffer, or nil
	Buffer(id resource.BufferID) resource.Buffer

	// Image returns the concrete image for an identifier registered at
	// construction, or nil for an unknown identifier.
	//
	// Parameters:
	//   - id: the image's identifier
	//
	// Returns:
	//   - resource.Image: the image, or nil
	Image(id resource.ImageID) resource.Image

	// Frames returns the graph's frame tracker.
	Frames() *frame.Frames

	// Dispose tears the graph down: waits for every in-flight frame to retire
	// and the device to idle, disposes every node in reverse submission order,
	// and releases the graph's buffers and images. The graph is unusable
	// afterward.
	//
	// Parameters:
	//   - f: the factory the graph was built with
	//   - aux: the application's auxiliary data, passed through to node Dispose
	//
	// Returns:
	//   - error: an error if the idle wait fails; disposal does not proceed
	//     past a failed wait
	Dispose(f factory.Factory, aux any) error
}

var _ Graph = &graph{}

func (g *graph) Run(f factory.Factory, aux any) error {
	if g.disposed {
		return ErrDisposed
	}

	// Backpressure: cap in-flight frames so fence slots can be reused safely.
	for g.frames.Pending() >= g.maxFrames {
		if err := g.frames.RetireOldest(); err != nil {
			return fmt.Errorf("graph: frame retire failed: %w", err)
		}
	}

	fences, err := g.frameFences(f)
	if err != nil {
		return err
	}

	fenceIdx := 0
	var frameFences []command.Fence
	for i := range g.nodes {
		sn := &g.nodes[i]
		var fence command.Fence
		if sn.tail {
			fence = fences[fenceIdx]
			fenceIdx++
			frameFences = append(frameFences, fence)
		}
		if err := sn.node.Run(f, aux, g.frames, sn.queue, sn.waits, sn.signals, fence); err != nil {
			return fmt.Errorf("graph: node submission failed: %w", err)
		}
	}

	g.frames.Advance(frameFences)
	if g.profiler != nil {
		g.profiler.Tick()
	}
	return nil
}

// frameFences returns the fence set for the current frame slot, creating it on
// first use.
func (g *graph) frameFences(f factory.Factory) ([]command.Fence, error) {
	tails := 0
	for i := range g.nodes {
		if g.nodes[i].tail {
			tails++
		}
	}

	slot := int(g.frames.Current()) % g.maxFrames
	for len(g.fenceSlots) <= slot {
		g.fenceSlots = append(g.fenceSlots, nil)
	}
	if g.fenceSlots[slot] == nil {
		fences := make([]command.Fence, tails)
		for i := range fences {
			fence, err := f.CreateFence()
			if err != nil {
				return nil, fmt.Errorf("graph: fence creation failed: %w", err)
			}
			fences[i] = fence
		}
		g.fenceSlots[slot] = fences
	}
	return g.fenceSlots[slot], nil
}

func (g *graph) Buffer(id resource.BufferID) resource.Buffer {
	if int(id) >= len(g.buffers) {
		return nil
	}
	return g.buffers[id]
}

func (g *graph) Image(id resource.ImageID) resource.Image {
	if int(id) >= len(g.images) {
		return nil
	}
	return g.images[id].Image
}

func (g *graph) Frames() *frame.Frames {
	return g.frames
}

func (g *graph) Dispose(f factory.Factory, aux any) error {
	if g.disposed {
		return nil
	}

	// Node disposal requires the device idle with respect to the graph's
	// resources. Retire every in-flight frame, then wait the device out, so
	// the precondition is checked here instead of trusted.
	if err := g.frames.WaitAll(); err != nil {
		return fmt.Errorf("graph: wait for in-flight frames failed: %w", err)
	}
	if err := f.WaitIdle(); err != nil {
		return fmt.Errorf("graph: device idle wait failed: %w", err)
	}

	for i := len(g.nodes) - 1; i >= 0; i-- {
		g.nodes[i].node.Dispose(f, aux)
	}
	g.nodes = nil
	g.destroyResources(f)
	g.disposed = true
	return nil
}

// destroyResources releases the graph's buffers and images. Also used to
// unwind a partially completed build.
func (g *graph) destroyResources(f factory.Factory) {
	for _, buf := range g.buffers {
		f.DestroyBuffer(buf)
	}
	g.buffers = nil
	for _, slot := range g.images {
		f.DestroyImage(slot.Image)
	}
	g.images = nil
	g.semaphores = nil
}
