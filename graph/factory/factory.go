// package factory defines the device/resource factory the graph is built
// against. The Factory owns every buffer, image, semaphore, and fence it
// creates and is the single point where recorded node work is handed to a
// device queue. The Factory also implements a backend which allows for
// multiple backend API implementations to exist; the wgpu backend is the
// built-in one.
package factory

import (
	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/graph/command"
	"github.com/Carmen-Shannon/oxy-graph/graph/resource"
)

// Factory allocates graph resources, exposes the device's queue families, and
// submits recorded node work. All methods are safe for concurrent use.
type Factory interface {
	// Families returns the device's queue families in stable order. Family
	// selection picks the first family whose capability set satisfies a node's
	// requirement, so the order returned here decides ties.
	//
	// Returns:
	//   - []command.Family: the device's queue families
	Families() []command.Family

	// CreateBuffer allocates a buffer matching the given description. The
	// factory owns the buffer until DestroyBuffer.
	//
	// Parameters:
	//   - info: the buffer description
	//
	// Returns:
	//   - resource.Buffer: the allocated buffer handle
	//   - error: an error if backend allocation fails
	CreateBuffer(info resource.BufferInfo) (resource.Buffer, error)

	// CreateImage allocates an image matching the given description. The
	// factory owns the image until DestroyImage.
	//
	// Parameters:
	//   - info: the image description
	//
	// Returns:
	//   - resource.Image: the allocated image handle
	//   - error: an error if backend allocation fails
	CreateImage(info resource.ImageInfo) (resource.Image, error)

	// CreateSemaphore creates a GPU-side synchronization primitive for
	// cross-queue ordering between submissions.
	//
	// Returns:
	//   - command.Semaphore: the semaphore handle
	//   - error: an error if backend creation fails
	CreateSemaphore() (command.Semaphore, error)

	// CreateFence creates an unsignaled CPU-visible completion fence.
	//
	// Returns:
	//   - command.Fence: the fence handle
	//   - error: an error if backend creation fails
	CreateFence() (command.Fence, error)

	// Submit hands a fully assembled submission to the identified queue. The
	// wait and signal semaphore sets are forwarded to the device exactly as
	// given. If fence is non-nil it signals when the submission completes.
	//
	// Parameters:
	//   - qid: the queue to submit to
	//   - sub: the assembled submission (waits, signals, recorded work)
	//   - fence: optional completion fence
	//
	// Returns:
	//   - error: an error if the queue rejects the submission
	Submit(qid command.QueueID, sub command.Submission, fence command.Fence) error

	// DestroyBuffer releases a buffer previously created by this factory.
	// The caller must guarantee no GPU work referencing the buffer is in flight.
	//
	// Parameters:
	//   - buf: the buffer to release
	DestroyBuffer(buf resource.Buffer)

	// DestroyImage releases an image previously created by this factory.
	// The caller must guarantee no GPU work referencing the image is in flight.
	//
	// Parameters:
	//   - img: the image to release
	DestroyImage(img resource.Image)

	// WaitIdle blocks until the device has finished all submitted work.
	//
	// Returns:
	//   - error: an error if the backend wait fails
	WaitIdle() error
}

// Surface is a presentable target owned by the windowing layer. Present nodes
// hold a Surface and hand PresentRequest payloads to the factory; the backend
// performs the copy and flip.
type Surface interface {
	// Extent returns the surface's current size in texels.
	Extent() common.Extent3D
}

// PresentRequest is the command.Submit payload a present node produces instead
// of recorded command work: copy Source to the surface's current texture and
// present it. Backends recognize this payload type in Submit.
type PresentRequest struct {
	// Surface is the presentation target.
	Surface Surface
	// Source is the image whose contents are presented. Its resolved state
	// guarantees transfer-read access at this point in the schedule.
	Source resource.Image
}
