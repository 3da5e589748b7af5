// package frame tracks the graph runtime's frame counter and the fences of
// frames still in flight on the GPU. It is the backpressure point between CPU
// recording and GPU completion: the runtime advances a frame per Run and waits
// on the oldest pending fences when too many frames are outstanding.
package frame

import "github.com/Carmen-Shannon/oxy-graph/graph/command"

// FrameID is a monotonically increasing frame counter, starting at zero.
type FrameID uint64

// Frames tracks frame identity and pending per-frame fences. Not safe for
// concurrent use; the runtime drives frames from a single control thread.
type Frames struct {
	next    FrameID
	pending []pendingFrame
}

type pendingFrame struct {
	id     FrameID
	fences []command.Fence
}

// NewFrames creates an empty frame tracker starting at frame zero.
//
// Returns:
//   - *Frames: the tracker
func NewFrames() *Frames {
	return &Frames{}
}

// Current returns the id of the frame currently being recorded.
func (f *Frames) Current() FrameID {
	return f.next
}

// Advance marks the current frame as submitted with the given completion
// fences and moves to the next frame.
//
// Parameters:
//   - fences: the fences that signal when the frame's GPU work completes
func (f *Frames) Advance(fences []command.Fence) {
	f.pending = append(f.pending, pendingFrame{id: f.next, fences: fences})
	f.next++
}

// Pending returns the number of frames submitted but not yet retired.
func (f *Frames) Pending() int {
	return len(f.pending)
}

// RetireOldest blocks until the oldest pending frame's fences signal, then
// retires it. No-op when nothing is pending.
//
// Returns:
//   - error: an error if a fence wait fails
func (f *Frames) RetireOldest() error {
	if len(f.pending) == 0 {
		return nil
	}
	oldest := f.pending[0]
	for _, fence := range oldest.fences {
		if fence == nil {
			continue
		}
		if err := fence.Wait(); err != nil {
			return err
		}
		fence.Reset()
	}
	f.pending = f.pending[1:]
	return nil
}

// WaitAll retires every pending frame, blocking until all fences signal. This
// is the device-idle check disposal depends on.
//
// Returns:
//   - error: an error if a fence wait fails
func (f *Frames) WaitAll() error {
	for len(f.pending) > 0 {
		if err := f.RetireOldest(); err != nil {
			return err
		}
	}
	return nil
}

// Retired reports whether no submitted frame is still in flight.
func (f *Frames) Retired() bool {
	return len(f.pending) == 0
}
