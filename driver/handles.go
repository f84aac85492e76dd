package driver

// Object handles are opaque, nonzero values minted by the Driver. NullHandle is never a live object.
type (
	Buffer        uint64
	Image         uint64
	ImageView     uint64
	Sampler       uint64
	DescriptorSet uint64
	Pipeline      uint64
	CommandBuffer uint64
	AccelStruct   uint64
	QueryPool     uint64
	Semaphore     uint64
	Fence         uint64
)

const NullHandle = 0
