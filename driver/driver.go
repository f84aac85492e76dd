package driver

//go:generate mockgen -source driver.go -destination ./mocks/driver.go -package mocks

import (
	"time"

	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// Driver is the device-level surface the bindless layer is built on. Every call that can fail
// returns a common.VkResult alongside its error; a negative result is always accompanied by a
// non-nil error.
//
// Handles passed to a Driver must have been minted by the same Driver. A Driver is not required to
// be safe for concurrent use, with the exception of SemaphoreCounterValue and WaitSemaphore.
type Driver interface {
	Properties() DeviceProperties

	CreateBuffer(info BufferCreateInfo) (Buffer, BufferAllocation, common.VkResult, error)
	DestroyBuffer(buffer Buffer)
	FlushBuffer(buffer Buffer, offset, size int) (common.VkResult, error)
	InvalidateBuffer(buffer Buffer, offset, size int) (common.VkResult, error)

	CreateImage(info ImageCreateInfo) (Image, common.VkResult, error)
	DestroyImage(image Image)
	CreateImageView(info ImageViewCreateInfo) (ImageView, common.VkResult, error)
	DestroyImageView(view ImageView)
	CreateSampler(info SamplerCreateInfo) (Sampler, common.VkResult, error)
	DestroySampler(sampler Sampler)

	CreateDescriptorHeap(info DescriptorHeapCreateInfo) (DescriptorSet, common.VkResult, error)
	DestroyDescriptorHeap(set DescriptorSet)
	WriteImageDescriptor(set DescriptorSet, binding DescriptorBinding, index uint32, view ImageView)
	WriteSamplerDescriptor(set DescriptorSet, index uint32, sampler Sampler)

	CreatePipeline(info PipelineCreateInfo) (Pipeline, common.VkResult, error)
	DestroyPipeline(pipeline Pipeline)

	AllocateCommandBuffer() (CommandBuffer, common.VkResult, error)
	FreeCommandBuffer(cmd CommandBuffer)
	BeginCommandBuffer(cmd CommandBuffer) (common.VkResult, error)
	EndCommandBuffer(cmd CommandBuffer) (common.VkResult, error)

	CmdBindPipeline(cmd CommandBuffer, pipeline Pipeline)
	CmdBindDescriptorHeap(cmd CommandBuffer, pipeline Pipeline, set DescriptorSet)
	CmdPushConstants(cmd CommandBuffer, pipeline Pipeline, offset int, data []byte)
	CmdDispatch(cmd CommandBuffer, x, y, z uint32)
	CmdBeginRendering(cmd CommandBuffer, info RenderingInfo)
	CmdEndRendering(cmd CommandBuffer)
	CmdDraw(cmd CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32)
	CmdBindIndexBuffer(cmd CommandBuffer, buffer Buffer, offset int, indexType core1_0.IndexType)
	CmdDrawIndexed(cmd CommandBuffer, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32)
	CmdDrawIndexedIndirect(cmd CommandBuffer, buffer Buffer, offset int, drawCount, stride uint32)
	CmdDrawIndexedIndirectCount(cmd CommandBuffer, buffer Buffer, offset int, countBuffer Buffer, countOffset int, maxDrawCount, stride uint32)
	CmdFillBuffer(cmd CommandBuffer, buffer Buffer, offset, size int, data uint32)
	CmdUpdateBuffer(cmd CommandBuffer, buffer Buffer, offset int, data []byte)
	CmdCopyBuffer(cmd CommandBuffer, src, dst Buffer, regions []BufferCopy)
	CmdCopyBufferToImage(cmd CommandBuffer, src Buffer, dst Image, regions []BufferImageCopy)
	CmdPipelineBarrier(cmd CommandBuffer, memoryBarriers []MemoryBarrier, imageBarriers []ImageBarrier)

	GetAccelStructBuildSizes(accelType AccelStructType, flags AccelStructBuildFlags, geometries []AccelStructGeometry, maxPrimitiveCounts []uint32) AccelStructBuildSizes
	CreateAccelStruct(info AccelStructCreateInfo) (AccelStruct, common.VkResult, error)
	DestroyAccelStruct(accel AccelStruct)
	AccelStructDeviceAddress(accel AccelStruct) uint64
	// AccelStructCompatibility reports whether a serialized header produced by some driver can be
	// deserialized by this one
	AccelStructCompatibility(header []byte) bool
	CmdBuildAccelStruct(cmd CommandBuffer, info AccelStructBuildInfo)
	CmdCopyAccelStruct(cmd CommandBuffer, src, dst AccelStruct, mode CopyAccelStructMode)
	CmdCopyAccelStructToMemory(cmd CommandBuffer, src AccelStruct, dstAddress uint64)
	CmdCopyMemoryToAccelStruct(cmd CommandBuffer, srcAddress uint64, dst AccelStruct)

	CreateQueryPool(queryType QueryType, count int) (QueryPool, common.VkResult, error)
	DestroyQueryPool(pool QueryPool)
	CmdResetQueryPool(cmd CommandBuffer, pool QueryPool, first, count int)
	CmdWriteAccelStructProperties(cmd CommandBuffer, accels []AccelStruct, queryType QueryType, pool QueryPool, first int)
	// CmdCopyQueryPoolResults writes 64-bit results and waits for them to become available
	CmdCopyQueryPoolResults(cmd CommandBuffer, pool QueryPool, first, count int, dst Buffer, dstOffset, stride int)

	CreateTimelineSemaphore(initialValue uint64) (Semaphore, common.VkResult, error)
	SemaphoreCounterValue(semaphore Semaphore) (uint64, common.VkResult, error)
	// WaitSemaphore returns core1_0.VKTimeout without an error if the timeout elapses first
	WaitSemaphore(semaphore Semaphore, value uint64, timeout time.Duration) (common.VkResult, error)
	CreateSemaphore() (Semaphore, common.VkResult, error)
	DestroySemaphore(semaphore Semaphore)
	CreateFence() (Fence, common.VkResult, error)
	DestroyFence(fence Fence)
	WaitForFence(fence Fence, timeout time.Duration) (common.VkResult, error)

	QueueSubmit(submits []SubmitInfo) (common.VkResult, error)
	DeviceWaitIdle() (common.VkResult, error)

	Destroy()
}
