package driver

import (
	"github.com/google/uuid"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/core1_2"
)

// Serialized acceleration structures begin with a header of two UUIDs followed by the serialized
// size, the deserialized size and the number of bottom-level handles that follow, each a
// little-endian uint64.
const (
	AccelStructHeaderSize                   = 56
	AccelStructHeaderSerializedSizeOffset   = 32
	AccelStructHeaderDeserializedSizeOffset = 40
	AccelStructHeaderHandleCountOffset      = 48
)

type DeviceProperties struct {
	DeviceName           string
	MaxSamplerAnisotropy float32
	// RayTracing is set when acceleration structures are supported
	RayTracing bool

	DriverUUID        uuid.UUID
	CompatibilityUUID uuid.UUID
}

// FormatAspect returns the aspects an image of the given format has
func FormatAspect(format core1_0.Format) core1_0.ImageAspectFlags {
	switch format {
	case core1_0.FormatD16UnsignedNormalized, core1_0.FormatD24X8UnsignedNormalizedPacked, core1_0.FormatD32SignedFloat:
		return core1_0.ImageAspectDepth
	case core1_0.FormatS8UnsignedInt:
		return core1_0.ImageAspectStencil
	case core1_0.FormatD16UnsignedNormalizedS8UnsignedInt, core1_0.FormatD24UnsignedNormalizedS8UnsignedInt,
		core1_0.FormatD32SignedFloatS8UnsignedInt:
		return core1_0.ImageAspectDepth | core1_0.ImageAspectStencil
	default:
		return core1_0.ImageAspectColor
	}
}

type Extent3D struct {
	Width, Height, Depth int
}

type BufferCreateInfo struct {
	Size  int
	Usage core1_0.BufferUsageFlags

	RequiredProperties  core1_0.MemoryPropertyFlags
	PreferredProperties core1_0.MemoryPropertyFlags
	// Mapped requests a persistent host mapping of the buffer's memory
	Mapped bool
	// AllowTransferInstead permits memory that is not host visible even though Mapped is set. The
	// returned BufferAllocation.Mapped is nil in that case and the caller must upload by transfer.
	AllowTransferInstead bool
	Alignment            int
}

type BufferAllocation struct {
	// Mapped is the host mapping of the buffer, or nil
	Mapped        []byte
	DeviceAddress uint64
	Properties    core1_0.MemoryPropertyFlags
}

type ImageCreateInfo struct {
	Type           core1_0.ImageType
	Format         core1_0.Format
	Extent         Extent3D
	MipLevels      int
	ArrayLayers    int
	Samples        core1_0.SampleCountFlags
	Usage          core1_0.ImageUsageFlags
	CubeCompatible bool
}

type ImageSubresourceRange struct {
	Aspect         core1_0.ImageAspectFlags
	BaseMipLevel   int
	LevelCount     int
	BaseArrayLayer int
	LayerCount     int
}

type ImageViewCreateInfo struct {
	Image      Image
	ViewType   core1_0.ImageViewType
	Format     core1_0.Format
	Components core1_0.ComponentMapping
	Range      ImageSubresourceRange
}

// SamplerCreateInfo is comparable, so that identical samplers can be deduplicated by value
type SamplerCreateInfo struct {
	MagFilter        core1_0.Filter
	MinFilter        core1_0.Filter
	MipmapMode       core1_0.SamplerMipmapMode
	AddressModeU     core1_0.SamplerAddressMode
	AddressModeV     core1_0.SamplerAddressMode
	AddressModeW     core1_0.SamplerAddressMode
	MipLodBias       float32
	AnisotropyEnable bool
	MaxAnisotropy    float32
	CompareEnable    bool
	CompareOp        core1_0.CompareOp
	MinLod           float32
	MaxLod           float32
	BorderColor      core1_0.BorderColor
	ReductionMode    core1_2.SamplerReductionMode
}

// DescriptorHeapCreateInfo describes the single bindless descriptor set: sampled images, storage
// images, immutable samplers and dynamic samplers, in that binding order
type DescriptorHeapCreateInfo struct {
	MaxImages         int
	MaxSamplers       int
	ImmutableSamplers []Sampler
	PushConstantSize  int
}

type PipelineCreateInfo struct {
	Name      string
	BindPoint core1_0.PipelineBindPoint
	Code      []byte
}

type BufferCopy struct {
	SrcOffset int
	DstOffset int
	Size      int
}

type BufferImageCopy struct {
	BufferOffset   int
	MipLevel       int
	BaseArrayLayer int
	LayerCount     int
	ImageExtent    Extent3D
}

type MemoryBarrier struct {
	SrcStages core1_0.PipelineStageFlags
	SrcAccess core1_0.AccessFlags
	DstStages core1_0.PipelineStageFlags
	DstAccess core1_0.AccessFlags
}

type ImageBarrier struct {
	MemoryBarrier
	Image     Image
	OldLayout core1_0.ImageLayout
	NewLayout core1_0.ImageLayout
	Range     ImageSubresourceRange
}

type RenderingAttachment struct {
	View       ImageView
	LoadOp     core1_0.AttachmentLoadOp
	StoreOp    core1_0.AttachmentStoreOp
	ClearColor [4]float32
	ClearDepth float32
}

type RenderingInfo struct {
	Width, Height    int
	ColorAttachments []RenderingAttachment
	DepthAttachment  *RenderingAttachment
}

// AccelStructGeometry describes one geometry of an acceleration structure build. Data fields are
// device addresses.
type AccelStructGeometry struct {
	Type  GeometryType
	Flags GeometryFlags

	VertexFormat  core1_0.Format
	VertexData    uint64
	VertexStride  int
	MaxVertex     uint32
	IndexType     core1_0.IndexType
	IndexData     uint64
	TransformData uint64

	AABBData   uint64
	AABBStride int

	InstanceData uint64
}

type AccelStructBuildSizes struct {
	AccelStructSize   int
	UpdateScratchSize int
	BuildScratchSize  int
}

type AccelStructCreateInfo struct {
	Buffer Buffer
	Offset int
	Size   int
	Type   AccelStructType
}

type AccelStructBuildInfo struct {
	Type            AccelStructType
	Flags           AccelStructBuildFlags
	Dst             AccelStruct
	Geometries      []AccelStructGeometry
	PrimitiveCounts []uint32
	ScratchData     uint64
}

type SemaphoreSubmit struct {
	Semaphore Semaphore
	// Value is the timeline value to wait for or signal. Binary semaphores ignore it.
	Value  uint64
	Stages core1_0.PipelineStageFlags
}

type SubmitInfo struct {
	CommandBuffers   []CommandBuffer
	WaitSemaphores   []SemaphoreSubmit
	SignalSemaphores []SemaphoreSubmit
	Fence            Fence
}
