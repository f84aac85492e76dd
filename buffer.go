package reclaim

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/core1_2"
	"github.com/vkngwrapper/reclaim/driver"
)

const bufferAlignment = 256

// Buffer is a linear range of GPU memory, optionally mapped into host memory
type Buffer struct {
	resourceBase

	handle     driver.Buffer
	size       int
	flags      BufferFlags
	usage      core1_0.BufferUsageFlags
	properties core1_0.MemoryPropertyFlags
	mapped     []byte
	address    uint64
}

// CreateBuffer creates a buffer of size bytes. Unless flags contains BufferDeferredAlloc, memory is
// allocated immediately and failure is fatal. A usage of 0 selects a broad default usage.
func (d *Device) CreateBuffer(size int, flags BufferFlags, usage core1_0.BufferUsageFlags) *Buffer {
	buffer := &Buffer{
		resourceBase: resourceBase{device: d},
		size:         size,
		flags:        flags,
	}

	if flags&BufferDeferredAlloc == 0 {
		res, err := buffer.Realloc(size, flags, usage)
		if d.check("Device::CreateBuffer", res, err) != nil {
			return buffer
		}
	}

	d.logger.Debug("Device::CreateBuffer", slog.Int("size", size), slog.String("flags", flags.String()))
	return buffer
}

func (d *Device) defaultBufferUsage() core1_0.BufferUsageFlags {
	usage := core1_0.BufferUsageTransferSrc | core1_0.BufferUsageTransferDst | core1_0.BufferUsageStorageBuffer |
		core1_0.BufferUsageIndexBuffer | core1_0.BufferUsageVertexBuffer | core1_0.BufferUsageIndirectBuffer |
		core1_2.BufferUsageShaderDeviceAddress

	if d.RayTracingEnabled() {
		usage |= driver.BufferUsageAccelStructBuildInputReadOnly | driver.BufferUsageAccelStructStorage
	}
	return usage
}

func bufferCreateInfo(size int, flags BufferFlags, usage core1_0.BufferUsageFlags) driver.BufferCreateInfo {
	info := driver.BufferCreateInfo{
		Size:      size,
		Usage:     usage,
		Alignment: bufferAlignment,
	}

	if flags&BufferDeviceMem != 0 {
		info.PreferredProperties |= core1_0.MemoryPropertyDeviceLocal
	} else if flags&BufferHostMem != 0 {
		info.PreferredProperties |= core1_0.MemoryPropertyHostVisible
	}

	if flags&BufferMapSeqWrite != 0 {
		info.Mapped = true
	} else if flags&(BufferMapCached|BufferHostMem) != 0 {
		info.Mapped = true
		info.PreferredProperties |= core1_0.MemoryPropertyHostCached
	}

	if flags&BufferAllowNonHostVisible != 0 {
		info.AllowTransferInstead = true
	} else if info.Mapped && flags&BufferAllowNonHostCoherent == 0 {
		info.RequiredProperties |= core1_0.MemoryPropertyHostCoherent
	}

	return info
}

// Realloc allocates memory for a buffer created with BufferDeferredAlloc. It can only be called
// once per buffer.
func (b *Buffer) Realloc(size int, flags BufferFlags, usage core1_0.BufferUsageFlags) (common.VkResult, error) {
	if b.handle != driver.NullHandle {
		return core1_0.VKErrorUnknown, errors.New("buffer memory can only be allocated once")
	}
	if size <= 0 {
		return core1_0.VKErrorUnknown, errors.Newf("buffer size must be greater than 0, but was %d", size)
	}

	d := b.device
	if usage == 0 {
		usage = d.defaultBufferUsage()
	}

	handle, alloc, res, err := d.driver.CreateBuffer(bufferCreateInfo(size, flags, usage))
	if err != nil {
		return res, err
	}

	b.handle = handle
	b.size = size
	b.flags = flags
	b.usage = usage
	b.properties = alloc.Properties
	b.mapped = alloc.Mapped
	if usage&core1_2.BufferUsageShaderDeviceAddress != 0 {
		b.address = alloc.DeviceAddress
	}

	d.logger.Debug("Buffer::Realloc", slog.Int("size", size), slog.Bool("mapped", b.mapped != nil))
	return res, nil
}

func (b *Buffer) Destroy() {
	b.device.enqueue(b)
}

func (b *Buffer) release() {
	if b.handle != driver.NullHandle {
		b.device.driver.DestroyBuffer(b.handle)
	}
}

func (b *Buffer) Handle() driver.Buffer {
	return b.handle
}

// Size returns the size of the buffer in bytes. For a buffer whose allocation is still deferred, it
// is the size it was created with.
func (b *Buffer) Size() int {
	return b.size
}

// Allocated returns false while the buffer's allocation is deferred
func (b *Buffer) Allocated() bool {
	return b.handle != driver.NullHandle
}

func (b *Buffer) Flags() BufferFlags {
	return b.flags
}

func (b *Buffer) Usage() core1_0.BufferUsageFlags {
	return b.usage
}

func (b *Buffer) MemoryProperties() core1_0.MemoryPropertyFlags {
	return b.properties
}

// Mapped returns the host mapping of the buffer, or nil if it is not host visible
func (b *Buffer) Mapped() []byte {
	return b.mapped
}

func (b *Buffer) DeviceAddress() uint64 {
	return b.address
}

// Write copies src into the mapped buffer at offset and flushes the written range
func (b *Buffer) Write(offset int, src []byte) {
	if b.mapped == nil {
		panic(errors.New("attempted to write to a buffer that is not host visible"))
	}
	if offset < 0 || offset+len(src) > b.size {
		panic(errors.Newf("write of %d bytes at offset %d overruns buffer of size %d", len(src), offset, b.size))
	}

	copy(b.mapped[offset:], src)
	b.Flush(offset, len(src))
}

// Flush makes host writes to the mapped range visible to the device. It only has an effect on
// memory that is not host coherent.
func (b *Buffer) Flush(offset, size int) {
	if b.properties&core1_0.MemoryPropertyHostCoherent != 0 {
		return
	}
	res, err := b.device.driver.FlushBuffer(b.handle, offset, size)
	_ = b.device.check("Buffer::Flush", res, err)
}

// Invalidate makes device writes to the mapped range visible to the host. It only has an effect on
// memory that is not host coherent.
func (b *Buffer) Invalidate(offset, size int) {
	if b.properties&core1_0.MemoryPropertyHostCoherent != 0 {
		return
	}
	res, err := b.device.driver.InvalidateBuffer(b.handle, offset, size)
	_ = b.device.check("Buffer::Invalidate", res, err)
}
