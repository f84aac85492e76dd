package reclaim

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/reclaim/driver"
	"github.com/vkngwrapper/reclaim/driver/simgpu"
)

type testVertex struct {
	Normal   [3]float32
	Position [3]float32
}

func submitAndWait(t *testing.T, device *Device, record func(cmd *CommandList)) {
	cmd := device.CreateCommandList()
	record(cmd)
	future := cmd.Submit(SubmitOptions{})
	cmd.Destroy()

	res, err := future.Wait(time.Second)
	require.NoError(t, err)
	require.Equal(t, core1_0.VKSuccess, res)
}

// buildBoxes builds node index of pool from count boxes and returns the storage size it needed
func buildBoxes(t *testing.T, device *Device, pool *AccelStructPool, index int, count int) int {
	boxes := device.CreateBuffer(count*sizeOf[AABB](), BufferHostMemSeqWrite, 0)
	span := WholeSpan[AABB](boxes)
	for i := 0; i < count; i++ {
		span.Set(i, AABB{MinX: float32(i), MaxX: float32(i) + 1, MaxY: 1, MaxZ: 1})
	}

	var desc AccelStructBuildDesc
	desc.AddBoxes(span)
	desc.CalculateSizes(device, driver.AccelStructTypeBottomLevel, driver.AccelStructBuildAllowCompaction)
	scratch := device.CreateBuffer(desc.BuildScratchSize, BufferDeviceMem, 0)

	submitAndWait(t, device, func(cmd *CommandList) {
		_, err := pool.Build(cmd, index, &desc, WholeSpan[byte](scratch))
		require.NoError(t, err)
	})

	boxes.Destroy()
	scratch.Destroy()
	return desc.AccelStructSize
}

func TestAccelStructBuildSizes(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteOnWait, CreateOptions{})

	vertices := device.CreateBuffer(9*sizeOf[testVertex](), BufferHostMemSeqWrite, 0)
	indices := device.CreateBuffer(12*2, BufferHostMemSeqWrite, 0)
	boxes := device.CreateBuffer(5*sizeOf[AABB](), BufferHostMemSeqWrite, 0)

	var desc AccelStructBuildDesc
	AddTriangles(&desc, WholeSpan[testVertex](vertices), WholeSpan[uint16](indices), core1_0.FormatR32G32B32SignedFloat, 12, 0)
	AddTriangles(&desc, WholeSpan[testVertex](vertices), BufferSpan[uint32]{}, core1_0.FormatR32G32B32SignedFloat, 12, 0)
	desc.AddBoxes(WholeSpan[AABB](boxes))
	require.Equal(t, 3, desc.NumGeometries())
	require.Equal(t, []uint32{4, 3, 5}, desc.PrimitiveCounts)

	indexed := desc.Geometries[0]
	require.Equal(t, vertices.DeviceAddress()+12, indexed.VertexData)
	require.Equal(t, 24, indexed.VertexStride)
	require.Equal(t, uint32(8), indexed.MaxVertex)
	require.Equal(t, core1_0.IndexTypeUInt16, indexed.IndexType)
	require.Equal(t, indices.DeviceAddress(), indexed.IndexData)
	require.Equal(t, driver.IndexTypeNone, desc.Geometries[1].IndexType)
	require.Equal(t, 24, desc.Geometries[2].AABBStride)

	desc.CalculateSizes(device, driver.AccelStructTypeBottomLevel, driver.AccelStructBuildAllowUpdate)
	// 12 primitives
	require.Equal(t, 1024, desc.AccelStructSize)
	require.Equal(t, 512, desc.BuildScratchSize)
	require.Equal(t, 256, desc.UpdateScratchSize)
	require.Equal(t, driver.AccelStructTypeBottomLevel, desc.Type)

	var tlas AccelStructBuildDesc
	tlas.CalculateUpperBoundSizesForTLAS(device, 4, 0)
	require.Equal(t, 512, tlas.AccelStructSize)
	require.Equal(t, 256, tlas.BuildScratchSize)
	require.Zero(t, tlas.UpdateScratchSize)
	require.Equal(t, driver.AccelStructTypeTopLevel, tlas.Type)
	require.Zero(t, tlas.NumGeometries())

	vertices.Destroy()
	indices.Destroy()
	boxes.Destroy()
	destroyDevice(t, device, sim)
}

func TestAccelStructBuildAndCompact(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteOnWait, CreateOptions{})

	pool := device.CreateAccelStructPool()
	_, err := pool.CreateStorage(1<<16, false)
	require.NoError(t, err)

	size := buildBoxes(t, device, pool, 0, 10)
	require.Equal(t, 768, size)
	primitives, built := sim.AccelStructPrimitives(pool.Handle(0))
	require.True(t, built)
	require.Equal(t, uint64(10), primitives)

	results := device.CreateBuffer(sizeOf[uint64](), BufferHostMemCached, 0)
	submitAndWait(t, device, func(cmd *CommandList) {
		pool.GetCompactedSizes(cmd, []int{0}, WholeSpan[uint64](results))
	})
	compacted := WholeSpan[uint64](results).At(0)
	require.Equal(t, uint64(128+40*10), compacted)

	submitAndWait(t, device, func(cmd *CommandList) {
		_, err := pool.Compact(cmd, 0, pool, 1, int(compacted))
		require.NoError(t, err)
	})
	primitives, built = sim.AccelStructPrimitives(pool.Handle(1))
	require.True(t, built)
	require.Equal(t, uint64(10), primitives)
	require.Equal(t, 2, pool.Len())

	stats := pool.Stats()
	require.Equal(t, 2, stats.AllocationCount)
	require.Equal(t, 768+528, stats.AllocationBytes)
	require.Contains(t, pool.BuildStatsString(false), `"AllocationCount":2`)

	require.NotEqual(t, pool.Address(0), pool.Address(1))
	instance := pool.InstanceDesc(1, [12]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0}, driver.GeometryInstanceForceOpaque)
	require.Equal(t, pool.Address(1), instance.AccelStructReference)
	require.Equal(t, uint32(0xFF000000), instance.CustomIndexAndMask)
	require.Equal(t, uint32(driver.GeometryInstanceForceOpaque)<<24, instance.SBTOffsetAndFlags)

	require.Panics(t, func() {
		cmd := device.CreateCommandList()
		defer cmd.Destroy()
		_, _ = pool.Compact(cmd, 1, pool, 1, int(compacted))
	})
	require.Panics(t, func() { pool.Handle(5) })

	// a top-level structure over the compacted node
	instances := device.CreateBuffer(sizeOf[AccelStructInstance](), BufferHostMemSeqWrite, 0)
	instanceSpan := WholeSpan[AccelStructInstance](instances)
	instanceSpan.Set(0, instance)

	var tlas AccelStructBuildDesc
	tlas.AddInstances(instanceSpan)
	tlas.CalculateUpperBoundSizesForTLAS(device, 16, 0)
	scratch := device.CreateBuffer(tlas.BuildScratchSize, BufferDeviceMem, 0)
	submitAndWait(t, device, func(cmd *CommandList) {
		_, err := pool.Build(cmd, 2, &tlas, WholeSpan[byte](scratch))
		require.NoError(t, err)
	})
	primitives, built = sim.AccelStructPrimitives(pool.Handle(2))
	require.True(t, built)
	require.Equal(t, uint64(1), primitives)

	require.Panics(t, func() {
		cmd := device.CreateCommandList()
		defer cmd.Destroy()
		small := Slice[byte](scratch, 0, 16)
		_, _ = pool.Build(cmd, 3, &tlas, small)
	})

	results.Destroy()
	instances.Destroy()
	scratch.Destroy()
	pool.Destroy()
	destroyDevice(t, device, sim)
}

func TestAccelStructReserve(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteOnWait, CreateOptions{Flags: DeviceCreateSynchronizedPools})

	pool := device.CreateAccelStructPool()
	require.Panics(t, func() { _, _ = pool.Reserve(0, 256) })

	_, err := pool.CreateStorage(1024, true)
	require.NoError(t, err)

	_, err = pool.Reserve(0, 768)
	require.NoError(t, err)
	handle := pool.Handle(0)
	info, err := pool.block.AllocationInfo(pool.nodes[0].alloc)
	require.NoError(t, err)
	address := pool.Address(0)
	stats := pool.Stats()

	res, err := pool.Reserve(0, 768)
	require.NoError(t, err)
	require.Equal(t, core1_0.VKSuccess, res)
	require.Equal(t, handle, pool.Handle(0))
	again, err := pool.block.AllocationInfo(pool.nodes[0].alloc)
	require.NoError(t, err)
	require.Equal(t, info.Offset, again.Offset)
	require.Equal(t, address, pool.Address(0))
	require.Equal(t, stats, pool.Stats())

	res, err = pool.Reserve(1, 512)
	require.ErrorIs(t, err, ErrOutOfPoolMemory)
	require.True(t, errors.Is(err, core1_0.VKErrorOutOfDeviceMemory.ToError()))
	require.Equal(t, core1_0.VKErrorOutOfDeviceMemory, res)
	require.Panics(t, func() { pool.Handle(1) })

	_, err = pool.Reserve(3, 256)
	require.NoError(t, err)
	require.Equal(t, 4, pool.Len())

	// new storage drops every node
	_, err = pool.CreateStorage(4096, false)
	require.NoError(t, err)
	require.Zero(t, pool.Len())
	require.Zero(t, pool.Stats().AllocationCount)

	_, err = pool.Reserve(0, 1024)
	require.NoError(t, err)
	_, err = pool.Reserve(0, 2048)
	require.NoError(t, err)
	require.Equal(t, 2048, pool.Stats().AllocationBytes)

	pool.Destroy()
	destroyDevice(t, device, sim)
}

func TestAccelStructSerialization(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteOnWait, CreateOptions{})

	pool := device.CreateAccelStructPool()
	_, err := pool.CreateStorage(4096, false)
	require.NoError(t, err)
	buildBoxes(t, device, pool, 0, 6)

	results := device.CreateBuffer(sizeOf[uint64](), BufferHostMemCached, 0)
	submitAndWait(t, device, func(cmd *CommandList) {
		pool.GetSerializedSizes(cmd, []int{0}, WholeSpan[uint64](results))
	})
	serializedSize := int(WholeSpan[uint64](results).At(0))
	require.Greater(t, serializedSize, driver.AccelStructHeaderSize)

	serialized := device.CreateBuffer(serializedSize, BufferHostMemCached, 0)
	submitAndWait(t, device, func(cmd *CommandList) {
		pool.Serialize(cmd, 0, WholeSpan[byte](serialized))
	})

	header := serialized.Mapped()
	deserializedSize := pool.GetDeserializedSize(header)
	require.Equal(t, uint64(128+64*6), deserializedSize)
	require.Zero(t, pool.GetDeserializedSize(header[:driver.AccelStructHeaderSize-1]))

	foreign := append([]byte(nil), header...)
	foreign[3] ^= 0xFF
	require.Zero(t, pool.GetDeserializedSize(foreign))

	restored := device.CreateAccelStructPool()
	_, err = restored.CreateStorage(4096, false)
	require.NoError(t, err)

	submitAndWait(t, device, func(cmd *CommandList) {
		res, err := restored.Deserialize(cmd, 0, WholeSpan[byte](serialized), int(deserializedSize))
		require.NoError(t, err)
		require.Equal(t, core1_0.VKSuccess, res)

		res, err = restored.Deserialize(cmd, 1, Slice[byte](serialized, 0, driver.AccelStructHeaderSize-1), int(deserializedSize))
		require.NoError(t, err)
		require.Equal(t, core1_0.VKErrorIncompatibleDriver, res)

		res, err = restored.Deserialize(cmd, 1, WholeSpan[byte](serialized), 0)
		require.NoError(t, err)
		require.Equal(t, core1_0.VKErrorIncompatibleDriver, res)
	})
	require.Equal(t, 1, restored.Len())

	primitives, built := sim.AccelStructPrimitives(restored.Handle(0))
	require.True(t, built)
	require.Equal(t, uint64(6), primitives)

	results.Destroy()
	serialized.Destroy()
	pool.Destroy()
	restored.Destroy()
	destroyDevice(t, device, sim)
}

func TestAccelStructPropsAcrossQueryBatches(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteOnWait, CreateOptions{})

	pool := device.CreateAccelStructPool()
	_, err := pool.CreateStorage(1<<16, false)
	require.NoError(t, err)
	buildBoxes(t, device, pool, 0, 2)
	buildBoxes(t, device, pool, 1, 3)

	ids := make([]int, queryPoolCapacity+100)
	for i := range ids {
		ids[i] = i % 2
	}

	results := device.CreateBuffer(len(ids)*sizeOf[uint64](), BufferHostMemCached, 0)
	submitAndWait(t, device, func(cmd *CommandList) {
		pool.GetCompactedSizes(cmd, ids, WholeSpan[uint64](results))
	})

	span := WholeSpan[uint64](results)
	for i := range ids {
		expected := uint64(128 + 40*(2+i%2))
		require.Equal(t, expected, span.At(i), "result %d", i)
	}

	require.Panics(t, func() {
		cmd := device.CreateCommandList()
		defer cmd.Destroy()
		pool.GetCompactedSizes(cmd, ids, span.Subspan(0, 10))
	})

	results.Destroy()
	pool.Destroy()
	destroyDevice(t, device, sim)
}
