// package graph assembles node builders into an executable frame graph and
// drives it once per frame. The graph owns every shared buffer and image for
// its lifetime; nodes receive non-owning bindings resolved against the
// synchronization plan computed at build time.
package graph

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/graph/chain"
	"github.com/Carmen-Shannon/oxy-graph/graph/command"
	"github.com/Carmen-Shannon/oxy-graph/graph/factory"
	"github.com/Carmen-Shannon/oxy-graph/graph/frame"
	"github.com/Carmen-Shannon/oxy-graph/graph/node"
	"github.com/Carmen-Shannon/oxy-graph/graph/profiler"
	"github.com/Carmen-Shannon/oxy-graph/graph/resource"
)

// GraphBuilderOption is a functional option used to configure a Graph during
// construction.
type GraphBuilderOption func(*graphBuilder)

// WithBuildWorkers sets how many workers build nodes in parallel during
// compile. Values <= 0 keep the default (CPU count minus one, minimum 1).
//
// Parameters:
//   - workers: the worker count
//
// Returns:
//   - GraphBuilderOption: option function to apply
func WithBuildWorkers(workers int) GraphBuilderOption {
	return func(b *graphBuilder) {
		if workers > 0 {
			b.buildWorkers = workers
		}
	}
}

// WithMaxFramesInFlight sets how many submitted frames may be outstanding on
// the GPU before Run blocks on the oldest frame's fences. Values <= 0 keep the
// default of 2.
//
// Parameters:
//   - frames: the maximum number of frames in flight
//
// Returns:
//   - GraphBuilderOption: option function to apply
func WithMaxFramesInFlight(frames int) GraphBuilderOption {
	return func(b *graphBuilder) {
		if frames > 0 {
			b.maxFrames = frames
		}
	}
}

// WithProfiling enables frame statistics logging from the graph runtime.
//
// Parameters:
//   - enabled: if true, the graph logs frame/memory stats once per second
//
// Returns:
//   - GraphBuilderOption: option function to apply
func WithProfiling(enabled bool) GraphBuilderOption {
	return func(b *graphBuilder) {
		b.profilingEnabled = enabled
	}
}

type imageDecl struct {
	info  resource.ImageInfo
	clear *common.ClearValue
}

// graphBuilder implements GraphBuilder.
type graphBuilder struct {
	buffers  []resource.BufferInfo
	images   []imageDecl
	builders []*node.NodeBuilder

	buildWorkers     int
	maxFrames        int
	profilingEnabled bool
}

// GraphBuilder collects resource declarations and node builders, then compiles
// them into a runnable Graph. A builder is consumed by Build and must not be
// reused afterward.
type GraphBuilder interface {
	// CreateBuffer registers a buffer in the graph's resource universe.
	// Allocation is deferred to Build; the returned identifier is valid
	// immediately for node declarations.
	//
	// Parameters:
	//   - info: the buffer description
	//
	// Returns:
	//   - resource.BufferID: the buffer's identifier
	CreateBuffer(info resource.BufferInfo) resource.BufferID

	// CreateImage registers an image in the graph's resource universe.
	// Allocation is deferred to Build. The clear value, if non-nil, is handed
	// to the image's chronologically first accessor in the compiled schedule.
	//
	// Parameters:
	//   - info: the image description
	//   - clear: optional clear value for first use
	//
	// Returns:
	//   - resource.ImageID: the image's identifier
	CreateImage(info resource.ImageInfo, clear *common.ClearValue) resource.ImageID

	// AddNode registers a node builder. Nodes run in an order consistent with
	// their declared dependencies; the returned id is how later nodes refer to
	// this one.
	//
	// Parameters:
	//   - b: the node's builder
	//
	// Returns:
	//   - node.NodeID: the node's identifier
	AddNode(b *node.NodeBuilder) node.NodeID

	// Build compiles the graph: resolves every node's queue family, computes
	// the synchronization plan, allocates all registered resources, and builds
	// every node against its resolved bindings. Any failure aborts the whole
	// build; there is no partially built graph.
	//
	// Parameters:
	//   - f: the factory that owns the graph's device resources
	//   - aux: the application's auxiliary data, passed through to node builds
	//
	// Returns:
	//   - Graph: the runnable graph
	//   - error: an unschedulable-node, scheduling, allocation, or node build error
	Build(f factory.Factory, aux any) (Graph, error)
}

var _ GraphBuilder = &graphBuilder{}

// NewGraphBuilder creates an empty graph builder.
//
// Parameters:
//   - options: variadic list of GraphBuilderOption functions to configure the graph
//
// Returns:
//   - GraphBuilder: the builder
func NewGraphBuilder(options ...GraphBuilderOption) GraphBuilder {
	b := &graphBuilder{
		buildWorkers: max(runtime.NumCPU()-1, 1),
		maxFrames:    2,
	}
	for _, option := range options {
		option(b)
	}
	return b
}

func (b *graphBuilder) CreateBuffer(info resource.BufferInfo) resource.BufferID {
	id := resource.BufferID(len(b.buffers))
	b.buffers = append(b.buffers, info)
	return id
}

func (b *graphBuilder) CreateImage(info resource.ImageInfo, clear *common.ClearValue) resource.ImageID {
	id := resource.ImageID(len(b.images))
	b.images = append(b.images, imageDecl{info: info, clear: clear})
	return id
}

func (b *graphBuilder) AddNode(builder *node.NodeBuilder) node.NodeID {
	id := node.NodeID(len(b.builders))
	b.builders = append(b.builders, builder)
	return id
}

func (b *graphBuilder) Build(f factory.Factory, aux any) (Graph, error) {
	// Family resolution and schedule computation happen before any resource is
	// allocated, so an unschedulable node costs nothing on the device.
	records := make([]chain.Node, len(b.builders))
	for i, nb := range b.builders {
		rec, err := nb.Chain(i, f, len(b.buffers))
		if err != nil {
			return nil, err
		}
		records[i] = rec
	}

	chains, err := chain.Collect(records)
	if err != nil {
		return nil, err
	}

	g := &graph{
		frames:    frame.NewFrames(),
		maxFrames: b.maxFrames,
	}
	if b.profilingEnabled {
		g.profiler = profiler.NewProfiler()
	}

	if err := b.allocate(f, g); err != nil {
		g.destroyResources(f)
		return nil, err
	}

	for i := 0; i < chains.Schedule.SemaphoreCount(); i++ {
		sem, semErr := f.CreateSemaphore()
		if semErr != nil {
			g.destroyResources(f)
			return nil, fmt.Errorf("graph: semaphore creation failed: %w", semErr)
		}
		g.semaphores = append(g.semaphores, sem)
	}

	if err := b.buildNodes(f, aux, g, records, chains); err != nil {
		g.destroyResources(f)
		return nil, err
	}

	return g, nil
}

// allocate creates every registered buffer and image through the factory.
func (b *graphBuilder) allocate(f factory.Factory, g *graph) error {
	for _, info := range b.buffers {
		buf, err := f.CreateBuffer(info)
		if err != nil {
			return fmt.Errorf("graph: %w", err)
		}
		g.buffers = append(g.buffers, buf)
	}
	for _, decl := range b.images {
		img, err := f.CreateImage(decl.info)
		if err != nil {
			return fmt.Errorf("graph: %w", err)
		}
		g.images = append(g.images, node.ImageSlot{Image: img, Clear: decl.clear})
	}
	return nil
}

// buildNodes resolves bindings and builds every node, in parallel, then wires
// the built nodes into submission order with their semaphores and tail fences.
func (b *graphBuilder) buildNodes(f factory.Factory, aux any, g *graph, records []chain.Node, chains *chain.Chains) error {
	built := make([]node.AnyNode, len(b.builders))
	errs := make([]error, len(b.builders))

	// Node builds are independent of each other, so they fan out across the
	// pool; the WaitGroup is the per-build barrier (pool.Wait blocks until
	// workers idle-exit, which is not what we want here).
	pool := worker.NewDynamicWorkerPool(b.buildWorkers, max(len(b.builders), 1), 1*time.Second)
	var wg sync.WaitGroup
	for i, nb := range b.builders {
		wg.Add(1)
		idx := i
		builder := nb
		pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				sub := chains.Schedule.Submission(idx)
				if sub == nil {
					errs[idx] = fmt.Errorf("graph: node %d missing from schedule: %w", idx, chain.ErrDesynchronized)
					return nil, nil
				}
				n, buildErr := builder.Build(f, aux, records[idx].Family, g.buffers, g.images, chains, sub)
				if buildErr != nil {
					errs[idx] = fmt.Errorf("graph: node %d build failed: %w", idx, buildErr)
					return nil, nil
				}
				built[idx] = n
				return nil, nil
			},
		})
	}
	wg.Wait()

	for _, buildErr := range errs {
		if buildErr != nil {
			// Nothing has been submitted yet, so built nodes can be disposed
			// immediately.
			for _, n := range built {
				if n != nil {
					n.Dispose(f, aux)
				}
			}
			return buildErr
		}
	}

	// Wire submission order: map scheduler semaphore references to the
	// concrete semaphores, and mark each queue's last submission as the
	// carrier of that queue's frame fence.
	tail := make(map[command.QueueID]int)
	ordered := chains.Schedule.Ordered()
	for pos, sub := range ordered {
		tail[sub.Queue()] = pos
	}

	g.nodes = make([]scheduledNode, len(ordered))
	for pos, sub := range ordered {
		sn := scheduledNode{
			node:  built[sub.Node()],
			queue: sub.Queue(),
		}
		sd := sub.Sync()
		for _, w := range sd.Waits {
			sn.waits = append(sn.waits, command.Wait{Semaphore: g.semaphores[w.Semaphore], Stage: w.Stage})
		}
		for _, s := range sd.Signals {
			sn.signals = append(sn.signals, g.semaphores[s])
		}
		sn.tail = tail[sub.Queue()] == pos
		g.nodes[pos] = sn
	}
	return nil
}
