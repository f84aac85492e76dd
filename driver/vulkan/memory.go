package vulkan

import (
	"log/slog"
	"math"
	"math/bits"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/core1_1"
	"github.com/vkngwrapper/core/v3/core1_2"
	"github.com/vkngwrapper/extensions/v3/ext_memory_priority"
	"github.com/vkngwrapper/reclaim/driver"
)

// Every buffer and image gets a dedicated allocation. The bindless device already pools the
// storage it suballocates, so the adapter does not suballocate again.
type buffer struct {
	buffer core1_0.Buffer
	memory core1_0.DeviceMemory
	// allocationSize is the size of memory, which may exceed the buffer's size
	allocationSize int
	mapped         bool
}

func (d *Device) findMemoryTypeIndex(memoryTypeBits uint32, required, preferred core1_0.MemoryPropertyFlags) (int, common.VkResult, error) {
	bestMemoryTypeIndex := -1
	minCost := math.MaxInt

	for memTypeIndex, memType := range d.memoryProperties.MemoryTypes {
		if uint32(1<<memTypeIndex)&memoryTypeBits == 0 {
			continue
		}

		flags := memType.PropertyFlags
		if required&flags != required {
			continue
		}

		cost := bits.OnesCount32(uint32(preferred & ^flags))
		if cost == 0 {
			return memTypeIndex, core1_0.VKSuccess, nil
		} else if cost < minCost {
			bestMemoryTypeIndex = memTypeIndex
			minCost = cost
		}
	}

	if bestMemoryTypeIndex < 0 {
		return -1, core1_0.VKErrorFeatureNotPresent, errors.Wrapf(core1_0.VKErrorFeatureNotPresent.ToError(),
			"no memory type in %#x has properties %s", memoryTypeBits, required)
	}
	return bestMemoryTypeIndex, core1_0.VKSuccess, nil
}

func (d *Device) allocateMemory(size int, memoryTypeIndex int, deviceAddress bool) (core1_0.DeviceMemory, common.VkResult, error) {
	var next common.Options
	if deviceAddress {
		next = core1_1.MemoryAllocateFlagsInfo{
			Flags: core1_2.MemoryAllocateDeviceAddress,
		}
	}
	if d.extensions.UseMemoryPriority {
		next = ext_memory_priority.MemoryPriorityAllocateInfo{
			Priority:    d.options.MemoryPriority,
			NextOptions: common.NextOptions{Next: next},
		}
	}

	return d.driver.AllocateMemory(d.options.AllocationCallbacks, core1_0.MemoryAllocateInfo{
		AllocationSize:  size,
		MemoryTypeIndex: memoryTypeIndex,
		NextOptions:     common.NextOptions{Next: next},
	})
}

// CreateBuffer creates a buffer with its own memory. Every buffer is created with
// core1_2.BufferUsageShaderDeviceAddress so that the allocation can report its device address.
func (d *Device) CreateBuffer(info driver.BufferCreateInfo) (driver.Buffer, driver.BufferAllocation, common.VkResult, error) {
	if info.Size <= 0 {
		return driver.NullHandle, driver.BufferAllocation{}, core1_0.VKErrorUnknown, errors.Newf("invalid buffer size %d", info.Size)
	}

	buf, res, err := d.driver.CreateBuffer(d.options.AllocationCallbacks, core1_0.BufferCreateInfo{
		Size:        info.Size,
		Usage:       info.Usage | core1_2.BufferUsageShaderDeviceAddress,
		SharingMode: core1_0.SharingModeExclusive,
	})
	if err != nil {
		return driver.NullHandle, driver.BufferAllocation{}, res, err
	}

	b := &buffer{buffer: buf}
	alloc, res, err := d.backBuffer(b, info)
	if err != nil {
		if b.memory.Initialized() {
			d.driver.FreeMemory(b.memory, d.options.AllocationCallbacks)
		}
		d.driver.DestroyBuffer(buf, d.options.AllocationCallbacks)
		return driver.NullHandle, driver.BufferAllocation{}, res, err
	}

	handle := d.mint()
	d.buffers.Put(handle, b)

	d.logger.Debug("VulkanDevice::CreateBuffer",
		slog.Uint64("handle", handle),
		slog.Int("size", info.Size),
		slog.String("properties", alloc.Properties.String()),
	)
	return driver.Buffer(handle), alloc, core1_0.VKSuccess, nil
}

// backBuffer allocates, binds and maps the memory behind b
func (d *Device) backBuffer(b *buffer, info driver.BufferCreateInfo) (driver.BufferAllocation, common.VkResult, error) {
	requirements := d.driver.GetBufferMemoryRequirements(b.buffer)

	required := info.RequiredProperties
	preferred := info.PreferredProperties
	if info.Mapped {
		preferred |= core1_0.MemoryPropertyHostVisible
		if !info.AllowTransferInstead {
			required |= core1_0.MemoryPropertyHostVisible
		}
	}

	memoryTypeIndex, res, err := d.findMemoryTypeIndex(requirements.MemoryTypeBits, required, preferred)
	if err != nil {
		return driver.BufferAllocation{}, res, err
	}

	b.memory, res, err = d.allocateMemory(requirements.Size, memoryTypeIndex, true)
	if err != nil {
		return driver.BufferAllocation{}, res, err
	}
	b.allocationSize = requirements.Size

	res, err = d.driver.BindBufferMemory(b.buffer, b.memory, 0)
	if err != nil {
		return driver.BufferAllocation{}, res, err
	}

	alloc := driver.BufferAllocation{
		Properties: d.memoryProperties.MemoryTypes[memoryTypeIndex].PropertyFlags,
	}

	if info.Mapped && alloc.Properties&core1_0.MemoryPropertyHostVisible != 0 {
		data, res, err := d.driver.MapMemory(b.memory, 0, info.Size, 0)
		if err != nil {
			return driver.BufferAllocation{}, res, err
		}
		b.mapped = true
		alloc.Mapped = unsafe.Slice((*byte)(data), info.Size)
	}

	alloc.DeviceAddress, err = d.driver.GetBufferDeviceAddress(core1_2.BufferDeviceAddressInfo{Buffer: b.buffer})
	if err != nil {
		if b.mapped {
			d.driver.UnmapMemory(b.memory)
		}
		return driver.BufferAllocation{}, core1_0.VKErrorUnknown, err
	}

	return alloc, core1_0.VKSuccess, nil
}

func (d *Device) DestroyBuffer(handle driver.Buffer) {
	b := take(d.buffers, "buffer", uint64(handle))

	if b.mapped {
		d.driver.UnmapMemory(b.memory)
	}
	d.driver.DestroyBuffer(b.buffer, d.options.AllocationCallbacks)
	d.driver.FreeMemory(b.memory, d.options.AllocationCallbacks)
}

// atomRange widens a mapped range to whole multiples of nonCoherentAtomSize, clamped to the end of
// the allocation
func (d *Device) atomRange(b *buffer, offset, size int) core1_0.MappedMemoryRange {
	atom := max(d.limits.NonCoherentAtomSize, 1)

	start := offset / atom * atom
	end := min((offset+size+atom-1)/atom*atom, b.allocationSize)

	return core1_0.MappedMemoryRange{
		Memory: b.memory,
		Offset: start,
		Size:   end - start,
	}
}

func (d *Device) FlushBuffer(handle driver.Buffer, offset, size int) (common.VkResult, error) {
	b := lookup(d.buffers, "buffer", uint64(handle))
	if !b.mapped {
		return core1_0.VKErrorMemoryMapFailed, errors.Wrap(core1_0.VKErrorMemoryMapFailed.ToError(), "flush of a buffer that is not mapped")
	}
	return d.driver.FlushMappedMemoryRanges(d.atomRange(b, offset, size))
}

func (d *Device) InvalidateBuffer(handle driver.Buffer, offset, size int) (common.VkResult, error) {
	b := lookup(d.buffers, "buffer", uint64(handle))
	if !b.mapped {
		return core1_0.VKErrorMemoryMapFailed, errors.Wrap(core1_0.VKErrorMemoryMapFailed.ToError(), "invalidate of a buffer that is not mapped")
	}
	return d.driver.InvalidateMappedMemoryRanges(d.atomRange(b, offset, size))
}
