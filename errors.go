package reclaim

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
)

var (
	// ErrDescriptorHeapFull is returned from DescriptorHeap.CreateHandle when every image slot is in use
	ErrDescriptorHeapFull = errors.Mark(errors.New("descriptor heap is full"), core1_0.VKErrorTooManyObjects.ToError())
	// ErrSamplerHeapFull is returned from DescriptorHeap.GetSampler when every dynamic sampler slot is in use
	ErrSamplerHeapFull = errors.Mark(errors.New("sampler heap is full"), core1_0.VKErrorTooManyObjects.ToError())
	// ErrOutOfPoolMemory is returned when an acceleration structure does not fit in its pool's storage
	ErrOutOfPoolMemory = errors.Mark(errors.New("acceleration structure pool is out of memory"), core1_0.VKErrorOutOfDeviceMemory.ToError())

	ErrBumpPassDiverged     = errors.New("bump allocation pass diverged from the sizing pass")
	ErrRecyclerChainTooLong = errors.New("too many recyclers are waiting on the GPU")
)

// FatalError describes a driver failure the device cannot recover from
type FatalError struct {
	Op     string
	Result common.VkResult
	Err    error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s failed with code %v", e.Op, e.Result)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func defaultFatalHandler(err *FatalError) {
	panic(err)
}
