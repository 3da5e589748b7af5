// package factorytest provides an in-memory Factory for exercising graph
// assembly and node resolution without a GPU. It records every allocation and
// submission so tests can assert on what the graph handed to the device.
package factorytest

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-graph/graph/command"
	"github.com/Carmen-Shannon/oxy-graph/graph/factory"
	"github.com/Carmen-Shannon/oxy-graph/graph/resource"
)

// SubmitRecord captures one Submit call in arrival order.
type SubmitRecord struct {
	Queue      command.QueueID
	Submission command.Submission
	Fence      command.Fence
}

// Factory is an in-memory factory.Factory. The zero value is not usable; use New.
type Factory struct {
	mu sync.Mutex

	families []command.Family

	buffers    []*Buffer
	images     []*Image
	semaphores int
	fences     []*Fence

	submits []SubmitRecord
}

var _ factory.Factory = &Factory{}

// New creates a test factory advertising the given queue families. With no
// arguments it advertises a single general-capability family, mirroring the
// wgpu backend.
//
// Parameters:
//   - families: the queue families the factory should expose
//
// Returns:
//   - *Factory: the test factory
func New(families ...command.Family) *Factory {
	if len(families) == 0 {
		families = []command.Family{{ID: 0, Capability: command.CapabilityGeneral, Queues: 1}}
	}
	return &Factory{families: families}
}

// Buffer is the test factory's buffer handle.
type Buffer struct {
	info      resource.BufferInfo
	destroyed bool
}

func (b *Buffer) Info() resource.BufferInfo { return b.info }

// Image is the test factory's image handle.
type Image struct {
	info      resource.ImageInfo
	destroyed bool
}

func (i *Image) Info() resource.ImageInfo { return i.info }

// Semaphore is the test factory's semaphore handle.
type Semaphore struct {
	ID int
}

// Fence is the test factory's fence; it signals as soon as it is submitted with.
type Fence struct {
	mu       sync.Mutex
	armed    bool
	signaled bool
}

func (f *Fence) Signaled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signaled
}

func (f *Fence) Wait() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.armed {
		f.signaled = true
	}
	return nil
}

func (f *Fence) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed = false
	f.signaled = false
}

func (f *Factory) Families() []command.Family {
	return f.families
}

func (f *Factory) CreateBuffer(info resource.BufferInfo) (resource.Buffer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	buf := &Buffer{info: info}
	f.buffers = append(f.buffers, buf)
	return buf, nil
}

func (f *Factory) CreateImage(info resource.ImageInfo) (resource.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	img := &Image{info: info}
	f.images = append(f.images, img)
	return img, nil
}

func (f *Factory) CreateSemaphore() (command.Semaphore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sem := Semaphore{ID: f.semaphores}
	f.semaphores++
	return sem, nil
}

func (f *Factory) CreateFence() (command.Fence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fence := &Fence{}
	f.fences = append(f.fences, fence)
	return fence, nil
}

func (f *Factory) Submit(qid command.QueueID, sub command.Submission, fence command.Fence) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var family *command.Family
	for i := range f.families {
		if f.families[i].ID == qid.Family {
			family = &f.families[i]
		}
	}
	if family == nil || qid.Index >= family.Queues {
		return fmt.Errorf("factorytest: submit to unknown queue %d.%d", qid.Family, qid.Index)
	}

	f.submits = append(f.submits, SubmitRecord{Queue: qid, Submission: sub, Fence: fence})
	if tf, ok := fence.(*Fence); ok && tf != nil {
		tf.mu.Lock()
		tf.armed = true
		tf.signaled = true
		tf.mu.Unlock()
	}
	return nil
}

func (f *Factory) DestroyBuffer(buf resource.Buffer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tb, ok := buf.(*Buffer); ok {
		tb.destroyed = true
	}
}

func (f *Factory) DestroyImage(img resource.Image) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ti, ok := img.(*Image); ok {
		ti.destroyed = true
	}
}

func (f *Factory) WaitIdle() error {
	return nil
}

// Submits returns every submission the factory has received, in arrival order.
func (f *Factory) Submits() []SubmitRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SubmitRecord(nil), f.submits...)
}

// BufferCount returns how many buffers have been allocated.
func (f *Factory) BufferCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.buffers)
}

// ImageCount returns how many images have been allocated.
func (f *Factory) ImageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.images)
}

// SemaphoreCount returns how many semaphores have been created.
func (f *Factory) SemaphoreCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.semaphores
}

// LiveBuffers returns how many allocated buffers have not been destroyed.
func (f *Factory) LiveBuffers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.buffers {
		if !b.destroyed {
			n++
		}
	}
	return n
}

// LiveImages returns how many allocated images have not been destroyed.
func (f *Factory) LiveImages() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, i := range f.images {
		if !i.destroyed {
			n++
		}
	}
	return n
}
