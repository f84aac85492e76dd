package reclaim

import "github.com/vkngwrapper/core/v3/common"

// BufferFlags select the memory a buffer is placed in and how it is mapped
type BufferFlags int32

var bufferFlagsMapping = common.NewFlagStringMapping[BufferFlags]()

func (f BufferFlags) Register(str string) {
	bufferFlagsMapping.Register(f, str)
}
func (f BufferFlags) String() string {
	return bufferFlagsMapping.FlagsToString(f)
}

const (
	// BufferDeviceMem prefers device-local memory
	BufferDeviceMem BufferFlags = 1 << iota
	// BufferHostMem prefers host memory. Buffers in host memory are always mapped.
	BufferHostMem
	// BufferMapSeqWrite maps the buffer for sequential writes from the host
	BufferMapSeqWrite
	// BufferMapCached maps the buffer in host-cached memory for random access
	BufferMapCached
	_
	// BufferAllowNonHostCoherent permits mapped memory that is not host coherent. Writes must be
	// followed by Buffer.Flush and reads preceded by Buffer.Invalidate.
	BufferAllowNonHostCoherent
	// BufferAllowNonHostVisible permits memory that cannot be mapped despite a mapping request,
	// when it may be faster. Buffer.Mapped returns nil in that case and uploads must go through a
	// staging buffer.
	BufferAllowNonHostVisible
	// BufferDeferredAlloc skips allocation in Device.CreateBuffer. Memory is allocated by a later
	// call to Buffer.Realloc or CommitBumpAlloc.
	BufferDeferredAlloc

	BufferHostMemSeqWrite          = BufferHostMem | BufferMapSeqWrite
	BufferHostMemCached            = BufferHostMem | BufferMapCached
	BufferDeviceMemMappedIfOptimal = BufferDeviceMem | BufferMapSeqWrite | BufferAllowNonHostVisible
)

func init() {
	BufferDeviceMem.Register("DeviceMem")
	BufferHostMem.Register("HostMem")
	BufferMapSeqWrite.Register("MapSeqWrite")
	BufferMapCached.Register("MapCached")
	BufferAllowNonHostCoherent.Register("AllowNonHostCoherent")
	BufferAllowNonHostVisible.Register("AllowNonHostVisible")
	BufferDeferredAlloc.Register("DeferredAlloc")
}
