package simgpu

import (
	"encoding/binary"

	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/reclaim/driver"
)

const maxUpdateBufferSize = 65536

type commandBufferState int

const (
	commandBufferInitial commandBufferState = iota
	commandBufferRecording
	commandBufferExecutable
	commandBufferPending
)

type command struct {
	name string
	run  func()
}

type commandBuffer struct {
	object
	state    commandBufferState
	commands []command
	refs     []*object

	pipeline  *pipeline
	rendering bool
}

func (d *Device) AllocateCommandBuffer() (driver.CommandBuffer, common.VkResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	handle := register(d, kindCommandBuffer, &commandBuffer{})
	return driver.CommandBuffer(handle), core1_0.VKSuccess, nil
}

func (d *Device) FreeCommandBuffer(cmd driver.CommandBuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	unregister(d, "FreeCommandBuffer", uint64(cmd))
}

func (d *Device) BeginCommandBuffer(handle driver.CommandBuffer) (common.VkResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := lookup[*commandBuffer](d, "BeginCommandBuffer", uint64(handle))
	if cmd == nil {
		return core1_0.VKErrorUnknown, core1_0.VKErrorUnknown.ToError()
	}
	if cmd.state == commandBufferPending {
		d.violate("BeginCommandBuffer", "%s is pending execution", cmd)
	}

	cmd.state = commandBufferRecording
	cmd.commands = cmd.commands[:0]
	cmd.refs = cmd.refs[:0]
	cmd.pipeline = nil
	cmd.rendering = false
	return core1_0.VKSuccess, nil
}

func (d *Device) EndCommandBuffer(handle driver.CommandBuffer) (common.VkResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := d.recording("EndCommandBuffer", handle)
	if cmd == nil {
		return core1_0.VKErrorUnknown, core1_0.VKErrorUnknown.ToError()
	}
	if cmd.rendering {
		d.violate("EndCommandBuffer", "%s ended inside a rendering scope", cmd)
	}

	cmd.state = commandBufferExecutable
	return core1_0.VKSuccess, nil
}

// recording returns the command buffer if it is in the recording state
func (d *Device) recording(op string, handle driver.CommandBuffer) *commandBuffer {
	cmd := lookup[*commandBuffer](d, op, uint64(handle))
	if cmd == nil {
		return nil
	}
	if cmd.state != commandBufferRecording {
		d.violate(op, "%s is not recording", cmd)
		return nil
	}
	return cmd
}

func (c *commandBuffer) record(name string, run func(), refs ...tracked) {
	for _, ref := range refs {
		c.refs = append(c.refs, ref.header())
	}
	c.commands = append(c.commands, command{name: name, run: run})
}

func (d *Device) CmdBindPipeline(handle driver.CommandBuffer, p driver.Pipeline) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := d.recording("CmdBindPipeline", handle)
	pipe := lookup[*pipeline](d, "CmdBindPipeline", uint64(p))
	if cmd == nil || pipe == nil {
		return
	}

	cmd.pipeline = pipe
	cmd.record("BindPipeline", nil, pipe)
}

func (d *Device) CmdBindDescriptorHeap(handle driver.CommandBuffer, p driver.Pipeline, set driver.DescriptorSet) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := d.recording("CmdBindDescriptorHeap", handle)
	pipe := lookup[*pipeline](d, "CmdBindDescriptorHeap", uint64(p))
	heap := lookup[*descriptorSet](d, "CmdBindDescriptorHeap", uint64(set))
	if cmd == nil || pipe == nil || heap == nil {
		return
	}

	cmd.record("BindDescriptorHeap", nil, pipe, heap)
}

func (d *Device) CmdPushConstants(handle driver.CommandBuffer, p driver.Pipeline, offset int, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := d.recording("CmdPushConstants", handle)
	pipe := lookup[*pipeline](d, "CmdPushConstants", uint64(p))
	if cmd == nil || pipe == nil {
		return
	}
	if offset%4 != 0 || len(data)%4 != 0 {
		d.violate("CmdPushConstants", "push constant range [%d, %d) is not 4-byte aligned", offset, offset+len(data))
	}

	cmd.record("PushConstants", nil, pipe)
}

func (d *Device) requirePipeline(op string, cmd *commandBuffer, bindPoint core1_0.PipelineBindPoint) bool {
	if cmd.pipeline == nil {
		d.violate(op, "no pipeline bound on %s", cmd)
		return false
	}
	if cmd.pipeline.info.BindPoint != bindPoint {
		d.violate(op, "pipeline %q is bound to the wrong bind point", cmd.pipeline.info.Name)
		return false
	}
	return true
}

func (d *Device) CmdDispatch(handle driver.CommandBuffer, x, y, z uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := d.recording("CmdDispatch", handle)
	if cmd == nil || !d.requirePipeline("CmdDispatch", cmd, core1_0.PipelineBindPointCompute) {
		return
	}
	if cmd.rendering {
		d.violate("CmdDispatch", "dispatch inside a rendering scope")
	}

	cmd.record("Dispatch", func() { d.stats.Dispatches++ })
}

func (d *Device) CmdBeginRendering(handle driver.CommandBuffer, info driver.RenderingInfo) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := d.recording("CmdBeginRendering", handle)
	if cmd == nil {
		return
	}
	if cmd.rendering {
		d.violate("CmdBeginRendering", "rendering scopes cannot nest")
	}

	var refs []tracked
	attachments := append([]driver.RenderingAttachment(nil), info.ColorAttachments...)
	if info.DepthAttachment != nil {
		attachments = append(attachments, *info.DepthAttachment)
	}
	for _, attachment := range attachments {
		view := lookup[*imageView](d, "CmdBeginRendering", uint64(attachment.View))
		if view == nil {
			return
		}
		refs = append(refs, view)
	}

	cmd.rendering = true
	cmd.record("BeginRendering", nil, refs...)
}

func (d *Device) CmdEndRendering(handle driver.CommandBuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := d.recording("CmdEndRendering", handle)
	if cmd == nil {
		return
	}
	if !cmd.rendering {
		d.violate("CmdEndRendering", "no rendering scope is open")
	}

	cmd.rendering = false
	cmd.record("EndRendering", nil)
}

func (d *Device) draw(op string, handle driver.CommandBuffer, refs ...tracked) {
	cmd := d.recording(op, handle)
	if cmd == nil || !d.requirePipeline(op, cmd, core1_0.PipelineBindPointGraphics) {
		return
	}
	if !cmd.rendering {
		d.violate(op, "draw outside a rendering scope")
	}

	cmd.record(op, func() { d.stats.Draws++ }, refs...)
}

func (d *Device) CmdDraw(handle driver.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.draw("CmdDraw", handle)
}

func (d *Device) CmdBindIndexBuffer(handle driver.CommandBuffer, buf driver.Buffer, offset int, indexType core1_0.IndexType) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := d.recording("CmdBindIndexBuffer", handle)
	b := lookup[*buffer](d, "CmdBindIndexBuffer", uint64(buf))
	if cmd == nil || b == nil {
		return
	}
	if offset < 0 || offset >= b.size {
		d.violate("CmdBindIndexBuffer", "offset %d is outside %s", offset, b)
	}

	cmd.record("BindIndexBuffer", nil, b)
}

func (d *Device) CmdDrawIndexed(handle driver.CommandBuffer, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.draw("CmdDrawIndexed", handle)
}

func (d *Device) CmdDrawIndexedIndirect(handle driver.CommandBuffer, buf driver.Buffer, offset int, drawCount, stride uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b := lookup[*buffer](d, "CmdDrawIndexedIndirect", uint64(buf))
	if b == nil {
		return
	}
	if drawCount > 0 && offset+int(drawCount-1)*int(stride)+20 > b.size {
		d.violate("CmdDrawIndexedIndirect", "%d draws with stride %d at offset %d overrun %s", drawCount, stride, offset, b)
	}

	d.draw("CmdDrawIndexedIndirect", handle, b)
}

func (d *Device) CmdDrawIndexedIndirectCount(handle driver.CommandBuffer, buf driver.Buffer, offset int, countBuffer driver.Buffer, countOffset int, maxDrawCount, stride uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b := lookup[*buffer](d, "CmdDrawIndexedIndirectCount", uint64(buf))
	count := lookup[*buffer](d, "CmdDrawIndexedIndirectCount", uint64(countBuffer))
	if b == nil || count == nil {
		return
	}
	if countOffset+4 > count.size {
		d.violate("CmdDrawIndexedIndirectCount", "count offset %d overruns %s", countOffset, count)
	}

	d.draw("CmdDrawIndexedIndirectCount", handle, b, count)
}

func (d *Device) CmdFillBuffer(handle driver.CommandBuffer, buf driver.Buffer, offset, size int, data uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := d.recording("CmdFillBuffer", handle)
	b := lookup[*buffer](d, "CmdFillBuffer", uint64(buf))
	if cmd == nil || b == nil {
		return
	}
	if size == common.WholeSize {
		size = (b.size - offset) &^ 3
	}
	if offset%4 != 0 || size%4 != 0 || offset < 0 || offset+size > b.size {
		d.violate("CmdFillBuffer", "fill range [%d, %d) is unaligned or outside %s", offset, offset+size, b)
		return
	}

	cmd.record("FillBuffer", func() {
		for i := offset; i < offset+size; i += 4 {
			binary.LittleEndian.PutUint32(b.data[i:], data)
		}
	}, b)
}

func (d *Device) CmdUpdateBuffer(handle driver.CommandBuffer, buf driver.Buffer, offset int, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := d.recording("CmdUpdateBuffer", handle)
	b := lookup[*buffer](d, "CmdUpdateBuffer", uint64(buf))
	if cmd == nil || b == nil {
		return
	}
	if len(data) > maxUpdateBufferSize || len(data)%4 != 0 || offset%4 != 0 || offset+len(data) > b.size {
		d.violate("CmdUpdateBuffer", "update of %d bytes at offset %d is invalid for %s", len(data), offset, b)
		return
	}

	payload := append([]byte(nil), data...)
	cmd.record("UpdateBuffer", func() {
		copy(b.data[offset:], payload)
	}, b)
}

func (d *Device) CmdCopyBuffer(handle driver.CommandBuffer, src, dst driver.Buffer, regions []driver.BufferCopy) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := d.recording("CmdCopyBuffer", handle)
	srcBuf := lookup[*buffer](d, "CmdCopyBuffer", uint64(src))
	dstBuf := lookup[*buffer](d, "CmdCopyBuffer", uint64(dst))
	if cmd == nil || srcBuf == nil || dstBuf == nil {
		return
	}
	for _, region := range regions {
		if region.SrcOffset+region.Size > srcBuf.size || region.DstOffset+region.Size > dstBuf.size {
			d.violate("CmdCopyBuffer", "copy region %+v overruns %s or %s", region, srcBuf, dstBuf)
			return
		}
	}

	regions = append([]driver.BufferCopy(nil), regions...)
	cmd.record("CopyBuffer", func() {
		for _, region := range regions {
			copy(dstBuf.data[region.DstOffset:region.DstOffset+region.Size], srcBuf.data[region.SrcOffset:region.SrcOffset+region.Size])
		}
		d.stats.Copies++
	}, srcBuf, dstBuf)
}

func (d *Device) CmdCopyBufferToImage(handle driver.CommandBuffer, src driver.Buffer, dst driver.Image, regions []driver.BufferImageCopy) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := d.recording("CmdCopyBufferToImage", handle)
	srcBuf := lookup[*buffer](d, "CmdCopyBufferToImage", uint64(src))
	dstImage := lookup[*image](d, "CmdCopyBufferToImage", uint64(dst))
	if cmd == nil || srcBuf == nil || dstImage == nil {
		return
	}
	for _, region := range regions {
		if region.BufferOffset >= srcBuf.size || region.MipLevel >= dstImage.info.MipLevels ||
			region.BaseArrayLayer+region.LayerCount > dstImage.info.ArrayLayers {
			d.violate("CmdCopyBufferToImage", "copy region %+v does not fit %s and %s", region, srcBuf, dstImage)
			return
		}
	}

	cmd.record("CopyBufferToImage", func() { d.stats.Copies++ }, srcBuf, dstImage)
}

func (d *Device) CmdPipelineBarrier(handle driver.CommandBuffer, memoryBarriers []driver.MemoryBarrier, imageBarriers []driver.ImageBarrier) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := d.recording("CmdPipelineBarrier", handle)
	if cmd == nil {
		return
	}

	var refs []tracked
	for _, barrier := range imageBarriers {
		img := lookup[*image](d, "CmdPipelineBarrier", uint64(barrier.Image))
		if img == nil {
			return
		}
		refs = append(refs, img)
	}

	cmd.record("PipelineBarrier", nil, refs...)
}

func (d *Device) CmdResetQueryPool(handle driver.CommandBuffer, p driver.QueryPool, first, count int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := d.recording("CmdResetQueryPool", handle)
	pool := lookup[*queryPool](d, "CmdResetQueryPool", uint64(p))
	if cmd == nil || pool == nil {
		return
	}
	if first < 0 || first+count > len(pool.results) {
		d.violate("CmdResetQueryPool", "queries [%d, %d) are outside %s", first, first+count, pool)
		return
	}

	cmd.record("ResetQueryPool", func() {
		for i := first; i < first+count; i++ {
			pool.available[i] = false
			pool.results[i] = 0
		}
	}, pool)
}

func (d *Device) CmdCopyQueryPoolResults(handle driver.CommandBuffer, p driver.QueryPool, first, count int, dst driver.Buffer, dstOffset, stride int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := d.recording("CmdCopyQueryPoolResults", handle)
	pool := lookup[*queryPool](d, "CmdCopyQueryPoolResults", uint64(p))
	dstBuf := lookup[*buffer](d, "CmdCopyQueryPoolResults", uint64(dst))
	if cmd == nil || pool == nil || dstBuf == nil {
		return
	}
	if first < 0 || first+count > len(pool.results) {
		d.violate("CmdCopyQueryPoolResults", "queries [%d, %d) are outside %s", first, first+count, pool)
		return
	}
	if count > 0 && dstOffset+(count-1)*stride+8 > dstBuf.size {
		d.violate("CmdCopyQueryPoolResults", "%d results at offset %d overrun %s", count, dstOffset, dstBuf)
		return
	}

	cmd.record("CopyQueryPoolResults", func() {
		for i := 0; i < count; i++ {
			if !pool.available[first+i] {
				d.violate("CmdCopyQueryPoolResults", "query %d of %s was never written", first+i, pool)
				continue
			}
			binary.LittleEndian.PutUint64(dstBuf.data[dstOffset+i*stride:], pool.results[first+i])
		}
	}, pool, dstBuf)
}
