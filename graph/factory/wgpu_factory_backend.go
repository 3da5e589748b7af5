package factory

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/graph/command"
	"github.com/Carmen-Shannon/oxy-graph/graph/resource"
	"github.com/cogentcore/webgpu/wgpu"
)

// WGPUFactory is the wgpu backend's extended factory surface. On top of the
// portable Factory contract it exposes the underlying device objects (for
// nodes that record wgpu command buffers directly) and surface creation for
// the present path.
type WGPUFactory interface {
	Factory

	// Device returns the underlying wgpu device.
	Device() *wgpu.Device

	// Queue returns the underlying wgpu queue.
	Queue() *wgpu.Queue

	// CreateSurface creates and configures a presentable surface from a
	// platform surface descriptor (typically window.SurfaceDescriptor()).
	//
	// Parameters:
	//   - descriptor: the platform-specific surface descriptor
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	//
	// Returns:
	//   - Surface: the configured surface
	//   - error: an error if surface creation or configuration fails
	CreateSurface(descriptor *wgpu.SurfaceDescriptor, width, height int) (Surface, error)
}

// wgpuFactory implements Factory over a WebGPU device. WebGPU exposes a single
// in-order queue, so the backend advertises one general-capability family and
// satisfies semaphore ordering structurally: any wait/signal set the schedule
// computes is already honored by queue submission order.
type wgpuFactory struct {
	mu sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
}

var _ WGPUFactory = &wgpuFactory{}

// WGPUFactoryOption is a functional option used to configure the wgpu factory
// during construction.
type WGPUFactoryOption func(*wgpuFactoryConfig)

type wgpuFactoryConfig struct {
	label                string
	forceFallbackAdapter bool
	compatibleSurface    *wgpu.SurfaceDescriptor
}

// WithForceFallbackAdapter forces selection of a software/fallback adapter.
// Useful for CI environments with no physical GPU.
//
// Parameters:
//   - force: if true, request a fallback adapter
//
// Returns:
//   - WGPUFactoryOption: option function to apply
func WithForceFallbackAdapter(force bool) WGPUFactoryOption {
	return func(c *wgpuFactoryConfig) {
		c.forceFallbackAdapter = force
	}
}

// WithDeviceLabel sets the debug label attached to the created device.
//
// Parameters:
//   - label: the device debug label
//
// Returns:
//   - WGPUFactoryOption: option function to apply
func WithDeviceLabel(label string) WGPUFactoryOption {
	return func(c *wgpuFactoryConfig) {
		c.label = label
	}
}

// WithCompatibleSurface requests an adapter compatible with the given surface
// descriptor. Required when the graph contains a present node.
//
// Parameters:
//   - descriptor: the platform surface descriptor presentation will target
//
// Returns:
//   - WGPUFactoryOption: option function to apply
func WithCompatibleSurface(descriptor *wgpu.SurfaceDescriptor) WGPUFactoryOption {
	return func(c *wgpuFactoryConfig) {
		c.compatibleSurface = descriptor
	}
}

// NewWGPUFactory creates a Factory backed by a WebGPU device: instance,
// adapter, device, and queue are acquired up front and owned by the factory.
//
// Parameters:
//   - options: variadic list of WGPUFactoryOption functions to configure the factory
//
// Returns:
//   - WGPUFactory: the wgpu-backed factory
//   - error: an error if adapter or device acquisition fails
func NewWGPUFactory(options ...WGPUFactoryOption) (WGPUFactory, error) {
	cfg := &wgpuFactoryConfig{label: "oxy-graph device"}
	for _, opt := range options {
		opt(cfg)
	}

	f := &wgpuFactory{
		instance: wgpu.CreateInstance(nil),
	}

	opts := &wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: cfg.forceFallbackAdapter,
	}
	if cfg.compatibleSurface != nil {
		opts.CompatibleSurface = f.instance.CreateSurface(cfg.compatibleSurface)
	}
	a, err := f.instance.RequestAdapter(opts)
	if err != nil {
		return nil, fmt.Errorf("factory: wgpu adapter request failed: %w", err)
	}
	f.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: cfg.label,
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("factory: wgpu device request failed: %w", err)
	}
	f.device = d
	f.queue = d.GetQueue()

	return f, nil
}

func (f *wgpuFactory) Families() []command.Family {
	// WebGPU has exactly one queue and it does everything.
	return []command.Family{{ID: 0, Capability: command.CapabilityGeneral, Queues: 1}}
}

func (f *wgpuFactory) Device() *wgpu.Device {
	return f.device
}

func (f *wgpuFactory) Queue() *wgpu.Queue {
	return f.queue
}

// wgpuBuffer wraps a wgpu buffer as a resource.Buffer handle.
type wgpuBuffer struct {
	raw  *wgpu.Buffer
	info resource.BufferInfo
}

func (b *wgpuBuffer) Info() resource.BufferInfo {
	return b.info
}

// Raw returns the underlying wgpu buffer for nodes recording against the wgpu
// backend directly.
func (b *wgpuBuffer) Raw() *wgpu.Buffer {
	return b.raw
}

// wgpuImage wraps a wgpu texture as a resource.Image handle.
type wgpuImage struct {
	raw  *wgpu.Texture
	info resource.ImageInfo
}

func (i *wgpuImage) Info() resource.ImageInfo {
	return i.info
}

// Raw returns the underlying wgpu texture for nodes recording against the wgpu
// backend directly.
func (i *wgpuImage) Raw() *wgpu.Texture {
	return i.raw
}

// RawBuffer unwraps a resource.Buffer created by the wgpu factory.
//
// Parameters:
//   - buf: a buffer handle created by this backend
//
// Returns:
//   - *wgpu.Buffer: the underlying wgpu buffer, or nil if the handle belongs
//     to a different backend
func RawBuffer(buf resource.Buffer) *wgpu.Buffer {
	if wb, ok := buf.(*wgpuBuffer); ok {
		return wb.raw
	}
	return nil
}

// RawImage unwraps a resource.Image created by the wgpu factory.
//
// Parameters:
//   - img: an image handle created by this backend
//
// Returns:
//   - *wgpu.Texture: the underlying wgpu texture, or nil if the handle belongs
//     to a different backend
func RawImage(img resource.Image) *wgpu.Texture {
	if wi, ok := img.(*wgpuImage); ok {
		return wi.raw
	}
	return nil
}

func (f *wgpuFactory) CreateBuffer(info resource.BufferInfo) (resource.Buffer, error) {
	buf, err := f.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            common.Coalesce(info.Label, "oxy-graph buffer"),
		Size:             info.Size,
		Usage:            mapBufferUsage(info.Usage),
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("factory: buffer %q creation failed: %w", info.Label, err)
	}
	return &wgpuBuffer{raw: buf, info: info}, nil
}

func (f *wgpuFactory) CreateImage(info resource.ImageInfo) (resource.Image, error) {
	levels := max(info.Levels, 1)
	layers := max(info.Layers, 1)
	tex, err := f.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: common.Coalesce(info.Label, "oxy-graph image"),
		Size: wgpu.Extent3D{
			Width:              info.Extent.Width,
			Height:             info.Extent.Height,
			DepthOrArrayLayers: max(info.Extent.Depth, 1) * layers,
		},
		MipLevelCount: levels,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        mapFormat(info.Format),
		Usage:         mapImageUsage(info.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("factory: image %q creation failed: %w", info.Label, err)
	}
	return &wgpuImage{raw: tex, info: info}, nil
}

// wgpuSemaphore is a structural no-op: the single in-order wgpu queue already
// executes submissions in the order they arrive, which is exactly the order
// the schedule's semaphores encode.
type wgpuSemaphore struct{}

func (f *wgpuFactory) CreateSemaphore() (command.Semaphore, error) {
	return wgpuSemaphore{}, nil
}

// wgpuFence tracks completion of a submission through device polling. A fence
// starts unsignaled, is armed by Submit, and resolves once the queue drains.
type wgpuFence struct {
	mu       sync.Mutex
	device   *wgpu.Device
	armed    bool
	signaled bool
}

func (f *wgpuFence) Signaled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.armed || f.signaled {
		return f.signaled
	}
	if f.device.Poll(false, nil) {
		f.signaled = true
	}
	return f.signaled
}

func (f *wgpuFence) Wait() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.armed || f.signaled {
		return nil
	}
	f.device.Poll(true, nil)
	f.signaled = true
	return nil
}

func (f *wgpuFence) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed = false
	f.signaled = false
}

func (f *wgpuFactory) CreateFence() (command.Fence, error) {
	return &wgpuFence{device: f.device}, nil
}

func (f *wgpuFactory) Submit(qid command.QueueID, sub command.Submission, fence command.Fence) error {
	if qid.Family != 0 || qid.Index != 0 {
		return fmt.Errorf("factory: wgpu backend has a single queue, got queue %d.%d", qid.Family, qid.Index)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// Waits and signals need no device action: submission order on the single
	// queue already realizes the ordering they encode.
	switch payload := sub.Submit.(type) {
	case nil:
		// Synchronization-only node; nothing recorded.
	case *wgpu.CommandBuffer:
		f.queue.Submit(payload)
		payload.Release()
	case []*wgpu.CommandBuffer:
		f.queue.Submit(payload...)
		for _, cb := range payload {
			cb.Release()
		}
	case PresentRequest:
		if err := f.present(payload); err != nil {
			return err
		}
	default:
		return fmt.Errorf("factory: wgpu backend cannot submit payload of type %T", sub.Submit)
	}

	if fence != nil {
		if wf, ok := fence.(*wgpuFence); ok {
			wf.mu.Lock()
			wf.armed = true
			wf.signaled = false
			wf.mu.Unlock()
		}
	}
	return nil
}

// present copies the source image into the surface's current texture and flips.
func (f *wgpuFactory) present(req PresentRequest) error {
	surf, ok := req.Surface.(*wgpuSurface)
	if !ok {
		return fmt.Errorf("factory: present surface belongs to a different backend")
	}
	src := RawImage(req.Source)
	if src == nil {
		return fmt.Errorf("factory: present source belongs to a different backend")
	}

	surfaceTexture, err := surf.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("factory: surface texture acquire failed: %w", err)
	}

	encoder, err := f.device.CreateCommandEncoder(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	extent := req.Source.Info().Extent
	encoder.CopyTextureToTexture(
		&wgpu.ImageCopyTexture{Texture: src, Aspect: wgpu.TextureAspectAll},
		&wgpu.ImageCopyTexture{Texture: surfaceTexture, Aspect: wgpu.TextureAspectAll},
		&wgpu.Extent3D{
			Width:              min(extent.Width, surf.extent.Width),
			Height:             min(extent.Height, surf.extent.Height),
			DepthOrArrayLayers: 1,
		},
	)

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		surfaceTexture.Release()
		return err
	}
	f.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()

	surf.surface.Present()
	surfaceTexture.Release()
	return nil
}

func (f *wgpuFactory) DestroyBuffer(buf resource.Buffer) {
	if raw := RawBuffer(buf); raw != nil {
		raw.Release()
	}
}

func (f *wgpuFactory) DestroyImage(img resource.Image) {
	if raw := RawImage(img); raw != nil {
		raw.Release()
	}
}

func (f *wgpuFactory) WaitIdle() error {
	f.device.Poll(true, nil)
	return nil
}

// wgpuSurface implements Surface over a configured wgpu surface.
type wgpuSurface struct {
	surface *wgpu.Surface
	extent  common.Extent3D
}

func (s *wgpuSurface) Extent() common.Extent3D {
	return s.extent
}

func (f *wgpuFactory) CreateSurface(descriptor *wgpu.SurfaceDescriptor, width, height int) (Surface, error) {
	surf := f.instance.CreateSurface(descriptor)
	if surf == nil {
		return nil, fmt.Errorf("factory: surface creation failed")
	}

	capabilities := surf.GetCapabilities(f.adapter)
	if len(capabilities.Formats) == 0 {
		return nil, fmt.Errorf("factory: surface reports no supported formats")
	}
	surf.Configure(f.adapter, f.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopyDst,
		Format:      capabilities.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	return &wgpuSurface{
		surface: surf,
		extent:  common.Extent2D(uint32(width), uint32(height)),
	}, nil
}

func mapBufferUsage(u resource.BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	if u&resource.BufferUsageTransferSrc != 0 {
		out |= wgpu.BufferUsageCopySrc
	}
	if u&resource.BufferUsageTransferDst != 0 {
		out |= wgpu.BufferUsageCopyDst
	}
	if u&resource.BufferUsageUniform != 0 {
		out |= wgpu.BufferUsageUniform
	}
	if u&resource.BufferUsageStorage != 0 {
		out |= wgpu.BufferUsageStorage
	}
	if u&resource.BufferUsageIndex != 0 {
		out |= wgpu.BufferUsageIndex
	}
	if u&resource.BufferUsageVertex != 0 {
		out |= wgpu.BufferUsageVertex
	}
	if u&resource.BufferUsageIndirect != 0 {
		out |= wgpu.BufferUsageIndirect
	}
	return out
}

func mapImageUsage(u resource.ImageUsage) wgpu.TextureUsage {
	var out wgpu.TextureUsage
	if u&resource.ImageUsageTransferSrc != 0 {
		out |= wgpu.TextureUsageCopySrc
	}
	if u&resource.ImageUsageTransferDst != 0 {
		out |= wgpu.TextureUsageCopyDst
	}
	if u&resource.ImageUsageSampled != 0 {
		out |= wgpu.TextureUsageTextureBinding
	}
	if u&resource.ImageUsageStorage != 0 {
		out |= wgpu.TextureUsageStorageBinding
	}
	if u&(resource.ImageUsageColorAttachment|resource.ImageUsageDepthStencilAttachment) != 0 {
		out |= wgpu.TextureUsageRenderAttachment
	}
	return out
}

func mapFormat(f resource.Format) wgpu.TextureFormat {
	switch f {
	case resource.FormatRGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm
	case resource.FormatBGRA8Unorm:
		return wgpu.TextureFormatBGRA8Unorm
	case resource.FormatRGBA16Float:
		return wgpu.TextureFormatRGBA16Float
	case resource.FormatRGBA32Float:
		return wgpu.TextureFormatRGBA32Float
	case resource.FormatR32Float:
		return wgpu.TextureFormatR32Float
	case resource.FormatDepth24Plus:
		return wgpu.TextureFormatDepth24Plus
	case resource.FormatDepth32Float:
		return wgpu.TextureFormatDepth32Float
	default:
		return wgpu.TextureFormatRGBA8Unorm
	}
}
