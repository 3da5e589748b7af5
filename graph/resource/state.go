package resource

// Access is a bit set of GPU memory access kinds a node performs on a resource.
type Access uint32

const (
	AccessIndirectCommandRead Access = 1 << iota
	AccessIndexRead
	AccessVertexAttributeRead
	AccessUniformRead
	AccessShaderRead
	AccessShaderWrite
	AccessColorAttachmentRead
	AccessColorAttachmentWrite
	AccessDepthStencilRead
	AccessDepthStencilWrite
	AccessTransferRead
	AccessTransferWrite
)

// writeAccess is the subset of access flags that mutate the resource.
const writeAccess = AccessShaderWrite | AccessColorAttachmentWrite | AccessDepthStencilWrite | AccessTransferWrite

// IsWrite reports whether the access set contains any write access.
//
// Returns:
//   - bool: true if any write bit is set
func (a Access) IsWrite() bool {
	return a&writeAccess != 0
}

// PipelineStage is a bit set of GPU pipeline stages at which an access occurs,
// or at which a semaphore wait applies.
type PipelineStage uint32

const (
	StageTopOfPipe PipelineStage = 1 << iota
	StageDrawIndirect
	StageVertexInput
	StageVertexShader
	StageFragmentShader
	StageEarlyFragmentTests
	StageLateFragmentTests
	StageColorAttachmentOutput
	StageComputeShader
	StageTransfer
	StageBottomOfPipe
)

// Layout is the memory layout an image must be in for a given access.
type Layout uint8

const (
	LayoutUndefined Layout = iota
	LayoutGeneral
	LayoutColorAttachmentOptimal
	LayoutDepthStencilAttachmentOptimal
	LayoutDepthStencilReadOnlyOptimal
	LayoutShaderReadOnlyOptimal
	LayoutTransferSrcOptimal
	LayoutTransferDstOptimal
	LayoutPresent
)

// BufferState is the access mode required for a buffer at a specific point in
// the execution schedule: which accesses the node performs and at which stages.
type BufferState struct {
	Access Access
	Stages PipelineStage
}

// ImageState is the access mode required for an image at a specific point in
// the execution schedule: accesses, the layout the image must be in, and the
// stages at which the accesses occur.
type ImageState struct {
	Access Access
	Layout Layout
	Stages PipelineStage
}
