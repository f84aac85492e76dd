package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/reclaim/driver"
)

func (d *Device) AllocateCommandBuffer() (driver.CommandBuffer, common.VkResult, error) {
	buffers, res, err := d.driver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
		CommandPool:        d.commandPool,
	})
	if err != nil {
		return driver.NullHandle, res, err
	}

	handle := d.mint()
	d.commandBuffers.Put(handle, buffers[0])
	return driver.CommandBuffer(handle), res, nil
}

func (d *Device) FreeCommandBuffer(cmd driver.CommandBuffer) {
	d.driver.FreeCommandBuffers(take(d.commandBuffers, "command buffer", uint64(cmd)))
}

func (d *Device) commandBuffer(cmd driver.CommandBuffer) core1_0.CommandBuffer {
	return lookup(d.commandBuffers, "command buffer", uint64(cmd))
}

func (d *Device) BeginCommandBuffer(cmd driver.CommandBuffer) (common.VkResult, error) {
	return d.driver.BeginCommandBuffer(d.commandBuffer(cmd), core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
}

func (d *Device) EndCommandBuffer(cmd driver.CommandBuffer) (common.VkResult, error) {
	return d.driver.EndCommandBuffer(d.commandBuffer(cmd))
}

func (d *Device) CmdBindPipeline(cmd driver.CommandBuffer, handle driver.Pipeline) {
	p := lookup(d.pipelines, "pipeline", uint64(handle))
	d.driver.CmdBindPipeline(d.commandBuffer(cmd), p.bindPoint, p.pipeline)
}

func (d *Device) CmdBindDescriptorHeap(cmd driver.CommandBuffer, handle driver.Pipeline, set driver.DescriptorSet) {
	p := lookup(d.pipelines, "pipeline", uint64(handle))
	heap := lookup(d.heaps, "descriptor heap", uint64(set))
	d.driver.CmdBindDescriptorSets(d.commandBuffer(cmd), p.bindPoint, heap.pipelineLayout, 0, []core1_0.DescriptorSet{heap.set}, nil)
}

func (d *Device) CmdPushConstants(cmd driver.CommandBuffer, handle driver.Pipeline, offset int, data []byte) {
	p := lookup(d.pipelines, "pipeline", uint64(handle))
	d.driver.CmdPushConstants(d.commandBuffer(cmd), p.layout, core1_0.StageAll, offset, data)
}

func (d *Device) CmdDispatch(cmd driver.CommandBuffer, x, y, z uint32) {
	d.driver.CmdDispatch(d.commandBuffer(cmd), int(x), int(y), int(z))
}

// CmdBeginRendering panics: no graphics pipeline can be created without VK_KHR_dynamic_rendering
func (d *Device) CmdBeginRendering(cmd driver.CommandBuffer, info driver.RenderingInfo) {
	panic(errors.Wrap(core1_0.VKErrorFeatureNotPresent.ToError(), "rendering needs VK_KHR_dynamic_rendering"))
}

func (d *Device) CmdEndRendering(cmd driver.CommandBuffer) {
	panic(errors.Wrap(core1_0.VKErrorFeatureNotPresent.ToError(), "rendering needs VK_KHR_dynamic_rendering"))
}

func (d *Device) CmdDraw(cmd driver.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	d.driver.CmdDraw(d.commandBuffer(cmd), int(vertexCount), int(instanceCount), firstVertex, firstInstance)
}

func (d *Device) CmdBindIndexBuffer(cmd driver.CommandBuffer, handle driver.Buffer, offset int, indexType core1_0.IndexType) {
	b := lookup(d.buffers, "buffer", uint64(handle))
	d.driver.CmdBindIndexBuffer(d.commandBuffer(cmd), b.buffer, offset, indexType)
}

func (d *Device) CmdDrawIndexed(cmd driver.CommandBuffer, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	d.driver.CmdDrawIndexed(d.commandBuffer(cmd), int(indexCount), int(instanceCount), firstIndex, int(vertexOffset), firstInstance)
}

func (d *Device) CmdDrawIndexedIndirect(cmd driver.CommandBuffer, handle driver.Buffer, offset int, drawCount, stride uint32) {
	b := lookup(d.buffers, "buffer", uint64(handle))
	d.driver.CmdDrawIndexedIndirect(d.commandBuffer(cmd), b.buffer, offset, int(drawCount), int(stride))
}

func (d *Device) CmdDrawIndexedIndirectCount(cmd driver.CommandBuffer, handle driver.Buffer, offset int, countHandle driver.Buffer, countOffset int, maxDrawCount, stride uint32) {
	b := lookup(d.buffers, "buffer", uint64(handle))
	count := lookup(d.buffers, "buffer", uint64(countHandle))
	d.driver.CmdDrawIndexedIndirectCount(d.commandBuffer(cmd), b.buffer, uint64(offset), count.buffer, uint64(countOffset), int(maxDrawCount), int(stride))
}

func (d *Device) CmdFillBuffer(cmd driver.CommandBuffer, handle driver.Buffer, offset, size int, data uint32) {
	b := lookup(d.buffers, "buffer", uint64(handle))
	d.driver.CmdFillBuffer(d.commandBuffer(cmd), b.buffer, offset, size, data)
}

func (d *Device) CmdUpdateBuffer(cmd driver.CommandBuffer, handle driver.Buffer, offset int, data []byte) {
	b := lookup(d.buffers, "buffer", uint64(handle))
	d.driver.CmdUpdateBuffer(d.commandBuffer(cmd), b.buffer, offset, len(data), data)
}

func (d *Device) CmdCopyBuffer(cmd driver.CommandBuffer, src, dst driver.Buffer, regions []driver.BufferCopy) {
	srcBuffer := lookup(d.buffers, "buffer", uint64(src))
	dstBuffer := lookup(d.buffers, "buffer", uint64(dst))

	copies := make([]core1_0.BufferCopy, 0, len(regions))
	for _, region := range regions {
		copies = append(copies, core1_0.BufferCopy{
			SrcOffset: region.SrcOffset,
			DstOffset: region.DstOffset,
			Size:      region.Size,
		})
	}

	err := d.driver.CmdCopyBuffer(d.commandBuffer(cmd), srcBuffer.buffer, dstBuffer.buffer, copies...)
	if err != nil {
		panic(errors.Wrap(err, "failed to record buffer copy"))
	}
}

// CmdCopyBufferToImage expects dst in the general layout, which is the only layout the bindless
// device keeps images in
func (d *Device) CmdCopyBufferToImage(cmd driver.CommandBuffer, src driver.Buffer, dst driver.Image, regions []driver.BufferImageCopy) {
	srcBuffer := lookup(d.buffers, "buffer", uint64(src))
	dstImage := lookup(d.images, "image", uint64(dst))

	copies := make([]core1_0.BufferImageCopy, 0, len(regions))
	for _, region := range regions {
		copies = append(copies, core1_0.BufferImageCopy{
			BufferOffset: region.BufferOffset,
			ImageSubresource: core1_0.ImageSubresourceLayers{
				AspectMask:     dstImage.aspect,
				MipLevel:       region.MipLevel,
				BaseArrayLayer: region.BaseArrayLayer,
				LayerCount:     region.LayerCount,
			},
			ImageExtent: core1_0.Extent3D{
				Width:  region.ImageExtent.Width,
				Height: region.ImageExtent.Height,
				Depth:  region.ImageExtent.Depth,
			},
		})
	}

	err := d.driver.CmdCopyBufferToImage(d.commandBuffer(cmd), srcBuffer.buffer, dstImage.image, core1_0.ImageLayoutGeneral, copies...)
	if err != nil {
		panic(errors.Wrap(err, "failed to record buffer to image copy"))
	}
}

// CmdPipelineBarrier records a single barrier command. Core barriers carry their stages on the
// command rather than per barrier, so the stage masks of all barriers are combined.
func (d *Device) CmdPipelineBarrier(cmd driver.CommandBuffer, memoryBarriers []driver.MemoryBarrier, imageBarriers []driver.ImageBarrier) {
	var srcStages, dstStages core1_0.PipelineStageFlags

	var memory []core1_0.MemoryBarrier
	for _, barrier := range memoryBarriers {
		srcStages |= barrier.SrcStages
		dstStages |= barrier.DstStages
		memory = append(memory, core1_0.MemoryBarrier{
			SrcAccessMask: barrier.SrcAccess,
			DstAccessMask: barrier.DstAccess,
		})
	}

	var images []core1_0.ImageMemoryBarrier
	for _, barrier := range imageBarriers {
		srcStages |= barrier.SrcStages
		dstStages |= barrier.DstStages
		images = append(images, core1_0.ImageMemoryBarrier{
			SrcAccessMask:       barrier.SrcAccess,
			DstAccessMask:       barrier.DstAccess,
			OldLayout:           barrier.OldLayout,
			NewLayout:           barrier.NewLayout,
			SrcQueueFamilyIndex: d.options.QueueFamilyIndex,
			DstQueueFamilyIndex: d.options.QueueFamilyIndex,
			Image:               lookup(d.images, "image", uint64(barrier.Image)).image,
			SubresourceRange:    subresourceRange(barrier.Range),
		})
	}

	if srcStages == 0 {
		srcStages = core1_0.PipelineStageTopOfPipe
	}
	if dstStages == 0 {
		dstStages = core1_0.PipelineStageBottomOfPipe
	}

	err := d.driver.CmdPipelineBarrier(d.commandBuffer(cmd), srcStages, dstStages, 0, memory, nil, images)
	if err != nil {
		panic(errors.Wrap(err, "failed to record pipeline barrier"))
	}
}
