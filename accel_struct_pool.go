package reclaim

import (
	"encoding/binary"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/core1_2"
	"github.com/vkngwrapper/reclaim/driver"
	"github.com/vkngwrapper/reclaim/memutils"
	"github.com/vkngwrapper/reclaim/memutils/virtual"
)

type accelNode struct {
	handle driver.AccelStruct
	alloc  virtual.Allocation
	size   int
}

// AccelStructPool suballocates the storage of many acceleration structures, called nodes, from a
// single buffer. Nodes are addressed by caller-chosen indices.
type AccelStructPool struct {
	resourceBase

	nodes   []accelNode
	storage *Buffer
	block   *virtual.Block
}

func (d *Device) CreateAccelStructPool() *AccelStructPool {
	return &AccelStructPool{resourceBase: resourceBase{device: d}}
}

func (p *AccelStructPool) Destroy() {
	p.device.enqueue(p)
}

func (p *AccelStructPool) release() {
	p.reset()
}

func (p *AccelStructPool) reset() {
	drv := p.device.driver
	for _, node := range p.nodes {
		if node.handle != driver.NullHandle {
			drv.DestroyAccelStruct(node.handle)
		}
	}
	p.nodes = nil

	if p.block != nil {
		p.block.Clear()
		p.block = nil
	}
	if p.storage != nil {
		p.storage.release()
		p.storage = nil
	}
}

// CreateStorage replaces the pool's storage with a new buffer of capacity bytes. Existing nodes
// are destroyed immediately, so none may be in use by the GPU. A linear pool places every node
// after the last, for pools that are filled once.
func (p *AccelStructPool) CreateStorage(capacity int, linear bool) (common.VkResult, error) {
	p.reset()
	d := p.device

	storage := &Buffer{resourceBase: resourceBase{device: d}}
	res, err := storage.Realloc(capacity, BufferDeviceMem, driver.BufferUsageAccelStructStorage|core1_2.BufferUsageShaderDeviceAddress)
	if err != nil {
		return res, err
	}

	var flags virtual.BlockCreateFlags
	if linear {
		flags = virtual.BlockCreateLinearAlgorithm
	}
	block, err := virtual.New(virtual.CreateOptions{
		Size:         capacity,
		Flags:        flags,
		Synchronized: d.options.Flags&DeviceCreateSynchronizedPools != 0,
	})
	if err != nil {
		storage.release()
		return core1_0.VKErrorUnknown, err
	}

	p.storage = storage
	p.block = block
	d.logger.Debug("AccelStructPool::CreateStorage", slog.Int("capacity", capacity), slog.Bool("linear", linear))
	return core1_0.VKSuccess, nil
}

// Reserve ensures node index has storage of exactly size bytes. It does nothing if the node already
// has that size, and otherwise destroys the node and places it anew, so the node must not be in
// use by the GPU. ErrOutOfPoolMemory is returned if the storage cannot hold it.
func (p *AccelStructPool) Reserve(index int, size int) (common.VkResult, error) {
	if p.block == nil {
		panic(errors.New("CreateStorage must be called before nodes are reserved"))
	}

	if index >= len(p.nodes) {
		p.nodes = append(p.nodes, make([]accelNode, index+1-len(p.nodes))...)
	} else if node := p.nodes[index]; node.handle != driver.NullHandle {
		if node.size == size {
			return core1_0.VKSuccess, nil
		}

		p.device.driver.DestroyAccelStruct(node.handle)
		if err := p.block.Free(node.alloc); err != nil {
			return core1_0.VKErrorUnknown, err
		}
		p.nodes[index] = accelNode{}
	}

	alloc, offset, err := p.block.Allocate(virtual.AllocationCreateInfo{
		Size:      size,
		Alignment: accelStructAlignment,
	})
	if errors.Is(err, virtual.ErrOutOfSpace) {
		return core1_0.VKErrorOutOfDeviceMemory, errors.Wrapf(ErrOutOfPoolMemory, "node %d needs %d bytes: %v", index, size, err)
	} else if err != nil {
		return core1_0.VKErrorUnknown, err
	}

	handle, res, err := p.device.driver.CreateAccelStruct(driver.AccelStructCreateInfo{
		Buffer: p.storage.handle,
		Offset: offset,
		Size:   size,
		Type:   driver.AccelStructTypeGeneric,
	})
	if err != nil {
		_ = p.block.Free(alloc)
		return res, err
	}

	p.nodes[index] = accelNode{handle: handle, alloc: alloc, size: size}
	return res, nil
}

func (p *AccelStructPool) node(index int) accelNode {
	if index < 0 || index >= len(p.nodes) || p.nodes[index].handle == driver.NullHandle {
		panic(errors.Newf("acceleration structure node %d was never reserved", index))
	}
	return p.nodes[index]
}

// Len is one past the highest node index reserved so far
func (p *AccelStructPool) Len() int {
	return len(p.nodes)
}

func (p *AccelStructPool) Handle(index int) driver.AccelStruct {
	return p.node(index).handle
}

// Address is the device address of a node, used to reference it from top-level instances
func (p *AccelStructPool) Address(index int) uint64 {
	return p.device.driver.AccelStructDeviceAddress(p.node(index).handle)
}

// InstanceDesc returns the top-level instance of a node with the given row-major 3x4 transform, a
// full visibility mask and flags
func (p *AccelStructPool) InstanceDesc(index int, transform [12]float32, flags driver.GeometryInstanceFlags) AccelStructInstance {
	return AccelStructInstance{
		Transform:            transform,
		CustomIndexAndMask:   0xFF << 24,
		SBTOffsetAndFlags:    uint32(flags) << 24,
		AccelStructReference: p.Address(index),
	}
}

// Build reserves node index for desc and records its build. The node must not be in use by the
// GPU. scratch must hold at least desc.BuildScratchSize bytes.
func (p *AccelStructPool) Build(cmd *CommandList, index int, desc *AccelStructBuildDesc, scratch BufferSpan[byte]) (common.VkResult, error) {
	if scratch.SizeBytes() < desc.BuildScratchSize {
		panic(errors.Newf("scratch span of %d bytes is smaller than the %d bytes the build needs", scratch.SizeBytes(), desc.BuildScratchSize))
	}
	cmd.checkRecording()

	res, err := p.Reserve(index, desc.AccelStructSize)
	if err != nil {
		return res, err
	}

	p.device.driver.CmdBuildAccelStruct(cmd.cmd, driver.AccelStructBuildInfo{
		Type:            desc.Type,
		Flags:           desc.Flags,
		Dst:             p.nodes[index].handle,
		Geometries:      desc.Geometries,
		PrimitiveCounts: desc.PrimitiveCounts,
		ScratchData:     scratch.DeviceAddr(0),
	})
	return core1_0.VKSuccess, nil
}

// GetProps writes a post-build property of each node in ids to results as 64-bit values. The
// results are visible to the host once the command list completes.
func (p *AccelStructPool) GetProps(cmd *CommandList, ids []int, results BufferSpan[uint64], queryType driver.QueryType) {
	if results.Len() < len(ids) {
		panic(errors.Newf("%d results cannot hold %d node properties", results.Len(), len(ids)))
	}
	cmd.checkRecording()

	d := p.device
	pool := d.queryPool(queryType)
	stride := sizeOf[uint64]()

	for offset := 0; offset < len(ids); offset += queryPoolCapacity {
		count := min(len(ids)-offset, queryPoolCapacity)
		handles := make([]driver.AccelStruct, count)
		for i := range handles {
			handles[i] = p.node(ids[offset+i]).handle
		}

		d.driver.CmdResetQueryPool(cmd.cmd, pool, 0, count)
		d.driver.CmdWriteAccelStructProperties(cmd.cmd, handles, queryType, pool, 0)
		d.driver.CmdCopyQueryPoolResults(cmd.cmd, pool, 0, count, results.buffer.handle, results.offset+offset*stride, stride)

		barrier := driver.MemoryBarrier{
			SrcStages: core1_0.PipelineStageTransfer,
			SrcAccess: core1_0.AccessTransferWrite,
			DstStages: core1_0.PipelineStageHost,
			DstAccess: core1_0.AccessHostRead,
		}
		if offset+count < len(ids) {
			barrier.DstStages = core1_0.PipelineStageTransfer
			barrier.DstAccess = core1_0.AccessTransferWrite
		}
		cmd.Barrier(barrier)
	}
}

func (p *AccelStructPool) GetCompactedSizes(cmd *CommandList, ids []int, results BufferSpan[uint64]) {
	p.GetProps(cmd, ids, results, driver.QueryTypeAccelStructCompactedSize)
}

func (p *AccelStructPool) GetSerializedSizes(cmd *CommandList, ids []int, results BufferSpan[uint64]) {
	p.GetProps(cmd, ids, results, driver.QueryTypeAccelStructSerializationSize)
}

// Compact copies node index into destIndex of dest, reserving compactedSize bytes for it. The
// source and destination pools may be the same, but not the node.
func (p *AccelStructPool) Compact(cmd *CommandList, index int, dest *AccelStructPool, destIndex int, compactedSize int) (common.VkResult, error) {
	if dest == p && index == destIndex {
		panic(errors.Newf("node %d cannot be compacted in place", index))
	}
	cmd.checkRecording()

	src := p.node(index)
	res, err := dest.Reserve(destIndex, compactedSize)
	if err != nil {
		return res, err
	}

	p.device.driver.CmdCopyAccelStruct(cmd.cmd, src.handle, dest.nodes[destIndex].handle, driver.CopyAccelStructModeCompact)
	return core1_0.VKSuccess, nil
}

// Serialize writes node index to dst in a driver-specific format. dst must hold the size reported
// by GetSerializedSizes.
func (p *AccelStructPool) Serialize(cmd *CommandList, index int, dst BufferSpan[byte]) {
	cmd.checkRecording()
	p.device.driver.CmdCopyAccelStructToMemory(cmd.cmd, p.node(index).handle, dst.DeviceAddr(0))
}

// Deserialize reloads node index from data written by Serialize. deserializedSize is the value
// returned by GetDeserializedSize. Data that is too short, or a size of 0, returns
// core1_0.VKErrorIncompatibleDriver without an error.
func (p *AccelStructPool) Deserialize(cmd *CommandList, index int, src BufferSpan[byte], deserializedSize int) (common.VkResult, error) {
	if src.Len() < driver.AccelStructHeaderSize || deserializedSize == 0 {
		return core1_0.VKErrorIncompatibleDriver, nil
	}
	cmd.checkRecording()

	res, err := p.Reserve(index, deserializedSize)
	if err != nil {
		return res, err
	}

	p.device.driver.CmdCopyMemoryToAccelStruct(cmd.cmd, src.DeviceAddr(0), p.nodes[index].handle)
	return core1_0.VKSuccess, nil
}

// GetDeserializedSize reads the storage size needed to deserialize data from its header. It
// returns 0 if the header is incomplete or was written by an incompatible driver.
func (p *AccelStructPool) GetDeserializedSize(header []byte) uint64 {
	if len(header) < driver.AccelStructHeaderSize {
		return 0
	}
	if !p.device.driver.AccelStructCompatibility(header) {
		return 0
	}
	return binary.LittleEndian.Uint64(header[driver.AccelStructHeaderDeserializedSizeOffset:])
}

// Stats describes the use of the pool's storage
func (p *AccelStructPool) Stats() memutils.DetailedStatistics {
	if p.block == nil {
		var stats memutils.DetailedStatistics
		stats.Clear()
		return stats
	}
	return p.block.DetailedStatistics()
}

func (p *AccelStructPool) BuildStatsString(detailed bool) string {
	if p.block == nil {
		return "{}"
	}
	return p.block.BuildStatsString(detailed)
}
