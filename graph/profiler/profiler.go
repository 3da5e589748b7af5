// package profiler tracks the graph runtime's frame rate and memory behavior.
// The graph ticks the profiler once per Run; stats go to the log at a fixed
// interval so a stall or allocation leak in node recording shows up quickly.
package profiler

import (
	"log"
	"runtime"
	"time"
)

// Profiler tracks frame timing and memory statistics for the graph runtime.
// Not safe for concurrent use; the runtime ticks it from its control thread.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastTotalAlloc uint64
	lastGCCount    uint32
}

// NewProfiler creates a Profiler with a 1-second log interval.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// Tick records one completed frame and logs statistics when the update
// interval has elapsed: frames per second, live heap, allocation rate, and GC
// count with the most recent pause.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	now := time.Now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()
	runtime.ReadMemStats(&p.memStats)

	heapMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses.
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
	}

	log.Printf("[graph] FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs)",
		fps, heapMB, allocRateMB, gcCount, lastPauseUs)

	p.frameCount = 0
	p.lastTime = now
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.lastGCCount = gcCount
	return true
}
