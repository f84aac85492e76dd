package simgpu

import (
	"bytes"
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/reclaim/driver"
)

// Acceleration structure sizes are a deterministic function of the primitive count
const (
	accelBaseSize          = 128
	accelPrimitiveSize     = 64
	compactedPrimitiveSize = 40
	scratchBaseSize        = 64
	scratchPrimitiveSize   = 32
	updatePrimitiveSize    = 16

	serializedPayloadSize = 16
	accelOffsetAlignment  = 256
)

func accelSize(primitives uint64) int {
	return accelBaseSize + accelPrimitiveSize*int(primitives)
}

func compactedSize(primitives uint64) int {
	return accelBaseSize + compactedPrimitiveSize*int(primitives)
}

type accelStruct struct {
	object
	buffer    *buffer
	offset    int
	size      int
	accelType driver.AccelStructType

	built      bool
	builtType  driver.AccelStructType
	primitives uint64
}

func (a *accelStruct) address() uint64 {
	return a.buffer.address + uint64(a.offset)
}

func (d *Device) GetAccelStructBuildSizes(accelType driver.AccelStructType, flags driver.AccelStructBuildFlags, geometries []driver.AccelStructGeometry, maxPrimitiveCounts []uint32) driver.AccelStructBuildSizes {
	var primitives int
	for _, count := range maxPrimitiveCounts {
		primitives += int(count)
	}

	sizes := driver.AccelStructBuildSizes{
		AccelStructSize:  accelBaseSize + accelPrimitiveSize*primitives,
		BuildScratchSize: scratchBaseSize + scratchPrimitiveSize*primitives,
	}
	if flags&driver.AccelStructBuildAllowUpdate != 0 {
		sizes.UpdateScratchSize = updatePrimitiveSize * primitives
	}
	return sizes
}

func (d *Device) CreateAccelStruct(info driver.AccelStructCreateInfo) (driver.AccelStruct, common.VkResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	buf := lookup[*buffer](d, "CreateAccelStruct", uint64(info.Buffer))
	if buf == nil {
		return driver.NullHandle, core1_0.VKErrorUnknown, errors.Newf("buffer %d is not a live buffer", info.Buffer)
	}
	if buf.usage&driver.BufferUsageAccelStructStorage == 0 {
		d.violate("CreateAccelStruct", "%s lacks acceleration structure storage usage", buf)
	}
	if info.Offset%accelOffsetAlignment != 0 {
		d.violate("CreateAccelStruct", "offset %d is not aligned to %d", info.Offset, accelOffsetAlignment)
	}
	if info.Size <= 0 || info.Offset < 0 || info.Offset+info.Size > buf.size {
		return driver.NullHandle, core1_0.VKErrorUnknown, errors.Newf("range [%d, %d) does not fit %s of size %d",
			info.Offset, info.Offset+info.Size, buf, buf.size)
	}

	d.objects.Iter(func(_ uint64, obj tracked) bool {
		other, ok := obj.(*accelStruct)
		if ok && other.buffer == buf && info.Offset < other.offset+other.size && other.offset < info.Offset+info.Size {
			d.violate("CreateAccelStruct", "range [%d, %d) overlaps %s at [%d, %d)",
				info.Offset, info.Offset+info.Size, other, other.offset, other.offset+other.size)
		}
		return false
	})

	handle := register(d, kindAccelStruct, &accelStruct{
		buffer:    buf,
		offset:    info.Offset,
		size:      info.Size,
		accelType: info.Type,
	})
	return driver.AccelStruct(handle), core1_0.VKSuccess, nil
}

func (d *Device) DestroyAccelStruct(accel driver.AccelStruct) {
	d.mu.Lock()
	defer d.mu.Unlock()

	unregister(d, "DestroyAccelStruct", uint64(accel))
}

func (d *Device) AccelStructDeviceAddress(accel driver.AccelStruct) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	a := lookup[*accelStruct](d, "AccelStructDeviceAddress", uint64(accel))
	if a == nil {
		return 0
	}
	return a.address()
}

func (d *Device) AccelStructCompatibility(header []byte) bool {
	if len(header) < 32 {
		return false
	}
	return bytes.Equal(header[:16], d.props.DriverUUID[:]) && bytes.Equal(header[16:32], d.props.CompatibilityUUID[:])
}

// AccelStructPrimitives reports whether a live acceleration structure has been built, and from how
// many primitives
func (d *Device) AccelStructPrimitives(accel driver.AccelStruct) (uint64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	a := lookup[*accelStruct](d, "AccelStructPrimitives", uint64(accel))
	if a == nil {
		return 0, false
	}
	return a.primitives, a.built
}

func (d *Device) CmdBuildAccelStruct(handle driver.CommandBuffer, info driver.AccelStructBuildInfo) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := d.recording("CmdBuildAccelStruct", handle)
	dst := lookup[*accelStruct](d, "CmdBuildAccelStruct", uint64(info.Dst))
	if cmd == nil || dst == nil {
		return
	}
	if len(info.Geometries) != len(info.PrimitiveCounts) {
		d.violate("CmdBuildAccelStruct", "%d geometries with %d primitive counts", len(info.Geometries), len(info.PrimitiveCounts))
		return
	}

	var primitives uint64
	for _, count := range info.PrimitiveCounts {
		primitives += uint64(count)
	}
	if accelSize(primitives) > dst.size {
		d.violate("CmdBuildAccelStruct", "%d primitives do not fit %s of size %d", primitives, dst, dst.size)
		return
	}

	scratchSize := scratchBaseSize + scratchPrimitiveSize*int(primitives)
	scratch, _ := d.resolveAddress("CmdBuildAccelStruct", info.ScratchData, scratchSize)
	if scratch == nil {
		return
	}

	refs := []tracked{dst, dst.buffer, scratch}
	for _, geometry := range info.Geometries {
		for _, address := range []uint64{geometry.VertexData, geometry.IndexData, geometry.TransformData, geometry.AABBData, geometry.InstanceData} {
			if address == 0 {
				continue
			}
			if buf, _ := d.resolveAddress("CmdBuildAccelStruct", address, 0); buf != nil {
				refs = append(refs, buf)
			}
		}
	}

	accelType := info.Type
	cmd.record("BuildAccelStruct", func() {
		dst.built = true
		dst.builtType = accelType
		dst.primitives = primitives
		d.stats.Builds++
	}, refs...)
}

func (d *Device) CmdWriteAccelStructProperties(handle driver.CommandBuffer, accels []driver.AccelStruct, queryType driver.QueryType, p driver.QueryPool, first int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := d.recording("CmdWriteAccelStructProperties", handle)
	pool := lookup[*queryPool](d, "CmdWriteAccelStructProperties", uint64(p))
	if cmd == nil || pool == nil {
		return
	}
	if pool.queryType != queryType {
		d.violate("CmdWriteAccelStructProperties", "%s holds %s queries, not %s", pool, pool.queryType, queryType)
		return
	}
	if first < 0 || first+len(accels) > len(pool.results) {
		d.violate("CmdWriteAccelStructProperties", "queries [%d, %d) are outside %s", first, first+len(accels), pool)
		return
	}

	targets := make([]*accelStruct, 0, len(accels))
	refs := []tracked{pool}
	for _, accel := range accels {
		a := lookup[*accelStruct](d, "CmdWriteAccelStructProperties", uint64(accel))
		if a == nil {
			return
		}
		targets = append(targets, a)
		refs = append(refs, a)
	}

	cmd.record("WriteAccelStructProperties", func() {
		for i, a := range targets {
			if !a.built {
				d.violate("CmdWriteAccelStructProperties", "%s was never built", a)
				continue
			}

			switch queryType {
			case driver.QueryTypeAccelStructCompactedSize:
				pool.results[first+i] = uint64(compactedSize(a.primitives))
			case driver.QueryTypeAccelStructSerializationSize:
				pool.results[first+i] = driver.AccelStructHeaderSize + serializedPayloadSize
			}
			pool.available[first+i] = true
		}
	}, refs...)
}

func (d *Device) CmdCopyAccelStruct(handle driver.CommandBuffer, src, dst driver.AccelStruct, mode driver.CopyAccelStructMode) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := d.recording("CmdCopyAccelStruct", handle)
	srcAccel := lookup[*accelStruct](d, "CmdCopyAccelStruct", uint64(src))
	dstAccel := lookup[*accelStruct](d, "CmdCopyAccelStruct", uint64(dst))
	if cmd == nil || srcAccel == nil || dstAccel == nil {
		return
	}

	cmd.record("CopyAccelStruct", func() {
		if !srcAccel.built {
			d.violate("CmdCopyAccelStruct", "%s was never built", srcAccel)
			return
		}

		required := accelSize(srcAccel.primitives)
		if mode == driver.CopyAccelStructModeCompact {
			required = compactedSize(srcAccel.primitives)
		}
		if required > dstAccel.size {
			d.violate("CmdCopyAccelStruct", "%s of size %d cannot hold %d bytes", dstAccel, dstAccel.size, required)
			return
		}

		dstAccel.built = true
		dstAccel.builtType = srcAccel.builtType
		dstAccel.primitives = srcAccel.primitives
		d.stats.Copies++
	}, srcAccel, dstAccel, srcAccel.buffer, dstAccel.buffer)
}

func (d *Device) CmdCopyAccelStructToMemory(handle driver.CommandBuffer, src driver.AccelStruct, dstAddress uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := d.recording("CmdCopyAccelStructToMemory", handle)
	srcAccel := lookup[*accelStruct](d, "CmdCopyAccelStructToMemory", uint64(src))
	if cmd == nil || srcAccel == nil {
		return
	}
	dstBuf, offset := d.resolveAddress("CmdCopyAccelStructToMemory", dstAddress, driver.AccelStructHeaderSize+serializedPayloadSize)
	if dstBuf == nil {
		return
	}

	cmd.record("CopyAccelStructToMemory", func() {
		if !srcAccel.built {
			d.violate("CmdCopyAccelStructToMemory", "%s was never built", srcAccel)
			return
		}

		out := dstBuf.data[offset:]
		copy(out[0:16], d.props.DriverUUID[:])
		copy(out[16:32], d.props.CompatibilityUUID[:])
		binary.LittleEndian.PutUint64(out[driver.AccelStructHeaderSerializedSizeOffset:], driver.AccelStructHeaderSize+serializedPayloadSize)
		binary.LittleEndian.PutUint64(out[driver.AccelStructHeaderDeserializedSizeOffset:], uint64(accelSize(srcAccel.primitives)))
		binary.LittleEndian.PutUint64(out[driver.AccelStructHeaderHandleCountOffset:], 0)
		binary.LittleEndian.PutUint64(out[driver.AccelStructHeaderSize:], uint64(srcAccel.builtType))
		binary.LittleEndian.PutUint64(out[driver.AccelStructHeaderSize+8:], srcAccel.primitives)
		d.stats.Copies++
	}, srcAccel, srcAccel.buffer, dstBuf)
}

func (d *Device) CmdCopyMemoryToAccelStruct(handle driver.CommandBuffer, srcAddress uint64, dst driver.AccelStruct) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := d.recording("CmdCopyMemoryToAccelStruct", handle)
	dstAccel := lookup[*accelStruct](d, "CmdCopyMemoryToAccelStruct", uint64(dst))
	if cmd == nil || dstAccel == nil {
		return
	}
	srcBuf, offset := d.resolveAddress("CmdCopyMemoryToAccelStruct", srcAddress, driver.AccelStructHeaderSize+serializedPayloadSize)
	if srcBuf == nil {
		return
	}

	cmd.record("CopyMemoryToAccelStruct", func() {
		in := srcBuf.data[offset:]
		if !d.AccelStructCompatibility(in) {
			d.violate("CmdCopyMemoryToAccelStruct", "serialized data at %#x is incompatible with this device", srcAddress)
			return
		}

		primitives := binary.LittleEndian.Uint64(in[driver.AccelStructHeaderSize+8:])
		if accelSize(primitives) > dstAccel.size {
			d.violate("CmdCopyMemoryToAccelStruct", "%s of size %d cannot hold %d primitives", dstAccel, dstAccel.size, primitives)
			return
		}

		dstAccel.built = true
		dstAccel.builtType = driver.AccelStructType(binary.LittleEndian.Uint64(in[driver.AccelStructHeaderSize:]))
		dstAccel.primitives = primitives
		d.stats.Copies++
	}, srcBuf, dstAccel, dstAccel.buffer)
}
