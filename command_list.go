package reclaim

import (
	"slices"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/reclaim/driver"
)

const maxUpdateBufferSize = 65536

// BarrierAllCommands makes every prior write available to every later command
var BarrierAllCommands = driver.MemoryBarrier{
	SrcStages: core1_0.PipelineStageAllCommands,
	SrcAccess: core1_0.AccessMemoryWrite,
	DstStages: core1_0.PipelineStageAllCommands,
	DstAccess: core1_0.AccessMemoryRead | core1_0.AccessMemoryWrite,
}

// CommandList records GPU work into a single command buffer. From creation until it is submitted
// or destroyed, it holds the device's current recycler open, so that nothing destroyed while it
// records can be released before the list's own submission completes.
type CommandList struct {
	resourceBase

	cmd driver.CommandBuffer
	// holds is the recycler this list attached to when it began
	holds *recycler

	pipeline  *Pipeline
	heapBound []core1_0.PipelineBindPoint
	rendering bool
}

// DrawIndexedIndirectCommand is the layout read by DrawIndexedIndirect
type DrawIndexedIndirectCommand struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	VertexOffset  int32
	FirstInstance uint32
}

// IndexElement is an index type accepted by indexed draws
type IndexElement interface {
	~uint16 | ~uint32
}

type RenderAttachment struct {
	Image      *Image
	LoadOp     core1_0.AttachmentLoadOp
	StoreOp    core1_0.AttachmentStoreOp
	ClearColor [4]float32
	ClearDepth float32
}

// RenderingDesc describes a rendering scope. A zero Width or Height is taken from the first
// attachment's image.
type RenderingDesc struct {
	Width, Height int
	Color         []RenderAttachment
	Depth         *RenderAttachment
}

// CreateCommandList begins a new command list. Failure is fatal.
func (d *Device) CreateCommandList() *CommandList {
	list := &CommandList{resourceBase: resourceBase{device: d}}

	cmd, res, err := d.driver.AllocateCommandBuffer()
	if d.check("Device::CreateCommandList", res, err) != nil {
		return list
	}
	list.cmd = cmd

	res, err = d.driver.BeginCommandBuffer(cmd)
	if d.check("CommandList::Begin", res, err) != nil {
		return list
	}

	list.holds = d.attachRecycler()
	return list
}

func (c *CommandList) Handle() driver.CommandBuffer {
	return c.cmd
}

// Recording is true until the list is submitted or destroyed
func (c *CommandList) Recording() bool {
	return c.holds != nil
}

func (c *CommandList) checkRecording() {
	if c.holds == nil {
		panic(errors.New("command list is not recording"))
	}
}

// Submit ends recording and submits the list, after the device's pending prologue if there is
// one. The list stays alive until it is destroyed, and Destroy may be called right away. Driver
// failures are fatal. If the fatal handler returns, nothing was queued: the returned Future is the
// zero value and the list keeps its recycler hold until it is destroyed.
func (c *CommandList) Submit(options SubmitOptions) Future {
	c.checkRecording()
	d := c.device

	res, err := d.driver.EndCommandBuffer(c.cmd)
	if d.check("CommandList::End", res, err) != nil {
		return Future{}
	}

	commandBuffers := []driver.CommandBuffer{c.cmd}
	prologue := d.prologue
	if prologue == c {
		prologue = nil
	}
	if prologue != nil {
		d.prologue = nil
		res, err = d.driver.EndCommandBuffer(prologue.cmd)
		if d.check("CommandList::End", res, err) != nil {
			prologue.Destroy()
			return Future{}
		}
		commandBuffers = []driver.CommandBuffer{prologue.cmd, c.cmd}
	}

	timestamp, err := d.queue.submit(commandBuffers, options)
	if err != nil {
		if prologue != nil {
			prologue.Destroy()
		}
		return Future{}
	}

	if prologue != nil {
		d.detachRecycler(prologue.holds, timestamp)
		prologue.holds = nil
		prologue.Destroy()
	}

	d.detachRecycler(c.holds, timestamp)
	c.holds = nil

	return Future{queue: d.queue, timestamp: timestamp}
}

// Destroy hands the list to the recycler. A list that was never submitted releases its hold.
func (c *CommandList) Destroy() {
	c.device.enqueue(c)
}

func (c *CommandList) release() {
	if c.cmd != driver.NullHandle {
		c.device.driver.FreeCommandBuffer(c.cmd)
	}
}

// BindPipeline binds a pipeline along with the descriptor heap, and pushes pushConstants if any
// are given
func (c *CommandList) BindPipeline(pipeline *Pipeline, pushConstants []byte) {
	c.checkRecording()
	d := c.device

	d.driver.CmdBindPipeline(c.cmd, pipeline.handle)
	if !slices.Contains(c.heapBound, pipeline.bindPoint) {
		d.driver.CmdBindDescriptorHeap(c.cmd, pipeline.handle, d.heap.set)
		c.heapBound = append(c.heapBound, pipeline.bindPoint)
	}
	c.pipeline = pipeline

	if len(pushConstants) > 0 {
		c.PushConstants(0, pushConstants)
	}
}

// PushConstants writes data to the push constant range of the bound pipeline
func (c *CommandList) PushConstants(offset int, data []byte) {
	c.checkRecording()
	if c.pipeline == nil {
		panic(errors.New("push constants require a bound pipeline"))
	}
	if offset < 0 || offset+len(data) > pushConstantSize {
		panic(errors.Newf("push constants [%d, %d) exceed the %d byte range", offset, offset+len(data), pushConstantSize))
	}

	c.device.driver.CmdPushConstants(c.cmd, c.pipeline.handle, offset, data)
}

// PushStruct pushes the bytes of value at offset 0
func PushStruct[T any](c *CommandList, value *T) {
	c.PushConstants(0, unsafe.Slice((*byte)(unsafe.Pointer(value)), sizeOf[T]()))
}

func (c *CommandList) DispatchGroups(x, y, z uint32) {
	c.checkRecording()
	c.device.driver.CmdDispatch(c.cmd, x, y, z)
}

func (c *CommandList) BeginRendering(desc RenderingDesc) {
	c.checkRecording()
	if c.rendering {
		panic(errors.New("rendering scopes cannot nest"))
	}

	info := driver.RenderingInfo{Width: desc.Width, Height: desc.Height}
	var first *Image
	for _, attachment := range desc.Color {
		info.ColorAttachments = append(info.ColorAttachments, attachment.driverAttachment())
		if first == nil {
			first = attachment.Image
		}
	}
	if desc.Depth != nil {
		depth := desc.Depth.driverAttachment()
		info.DepthAttachment = &depth
		if first == nil {
			first = desc.Depth.Image
		}
	}
	if first != nil && (info.Width == 0 || info.Height == 0) {
		info.Width = first.info.Extent.Width
		info.Height = first.info.Extent.Height
	}

	c.device.driver.CmdBeginRendering(c.cmd, info)
	c.rendering = true
}

func (a RenderAttachment) driverAttachment() driver.RenderingAttachment {
	return driver.RenderingAttachment{
		View:       a.Image.view,
		LoadOp:     a.LoadOp,
		StoreOp:    a.StoreOp,
		ClearColor: a.ClearColor,
		ClearDepth: a.ClearDepth,
	}
}

func (c *CommandList) EndRendering() {
	c.checkRecording()
	if !c.rendering {
		panic(errors.New("EndRendering called outside a rendering scope"))
	}
	c.device.driver.CmdEndRendering(c.cmd)
	c.rendering = false
}

func (c *CommandList) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	c.checkRecording()
	c.device.driver.CmdDraw(c.cmd, vertexCount, instanceCount, firstVertex, firstInstance)
}

func indexType[I IndexElement]() core1_0.IndexType {
	if sizeOf[I]() == 2 {
		return core1_0.IndexTypeUInt16
	}
	return core1_0.IndexTypeUInt32
}

func (c *CommandList) bindIndices(buffer *Buffer, offset int, indexType core1_0.IndexType) {
	c.checkRecording()
	c.device.driver.CmdBindIndexBuffer(c.cmd, buffer.handle, offset, indexType)
}

// DrawIndexed draws every index of indices
func DrawIndexed[I IndexElement](c *CommandList, indices BufferSpan[I], instanceCount uint32, vertexOffset int32, firstInstance uint32) {
	c.bindIndices(indices.buffer, indices.offset, indexType[I]())
	c.device.driver.CmdDrawIndexed(c.cmd, uint32(indices.count), instanceCount, 0, vertexOffset, firstInstance)
}

// DrawIndexedIndirect issues one draw per element of commands, indexing into indices
func DrawIndexedIndirect[I IndexElement](c *CommandList, indices BufferSpan[I], commands BufferSpan[DrawIndexedIndirectCommand]) {
	c.bindIndices(indices.buffer, indices.offset, indexType[I]())
	c.device.driver.CmdDrawIndexedIndirect(c.cmd, commands.buffer.handle, commands.offset,
		uint32(commands.count), uint32(sizeOf[DrawIndexedIndirectCommand]()))
}

// DrawIndexedIndirectCount issues as many draws from commands as the GPU-side count holds, up to
// the length of commands
func DrawIndexedIndirectCount[I IndexElement](c *CommandList, indices BufferSpan[I], commands BufferSpan[DrawIndexedIndirectCommand], count BufferSpan[uint32]) {
	c.bindIndices(indices.buffer, indices.offset, indexType[I]())
	c.device.driver.CmdDrawIndexedIndirectCount(c.cmd, commands.buffer.handle, commands.offset,
		count.buffer.handle, count.offset, uint32(commands.count), uint32(sizeOf[DrawIndexedIndirectCommand]()))
}

// FillBuffer sets every element of span to value
func (c *CommandList) FillBuffer(span BufferSpan[uint32], value uint32) {
	c.checkRecording()
	c.device.driver.CmdFillBuffer(c.cmd, span.buffer.handle, span.offset, span.SizeBytes(), value)
}

// UpdateBuffer copies src into the front of dst as part of the command stream. At most 64KiB can
// be written this way.
func UpdateBuffer[T any](c *CommandList, dst BufferSpan[T], src []T) {
	c.checkRecording()
	if len(src) > dst.count {
		panic(errors.Newf("update of %d elements overruns span of %d", len(src), dst.count))
	}
	size := len(src) * sizeOf[T]()
	if size > maxUpdateBufferSize {
		panic(errors.Newf("update of %d bytes exceeds the %d byte limit", size, maxUpdateBufferSize))
	}
	if size == 0 {
		return
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(&src[0])), size)
	c.device.driver.CmdUpdateBuffer(c.cmd, dst.buffer.handle, dst.offset, data)
}

// CopyBuffer copies size bytes between buffers. A size of common.WholeSize copies as much as fits
// in both.
func (c *CommandList) CopyBuffer(src *Buffer, srcOffset int, dst *Buffer, dstOffset int, size int) {
	c.checkRecording()
	if size == common.WholeSize {
		size = min(src.size-srcOffset, dst.size-dstOffset)
	}
	if size <= 0 {
		return
	}

	c.device.driver.CmdCopyBuffer(c.cmd, src.handle, dst.handle, []driver.BufferCopy{
		{SrcOffset: srcOffset, DstOffset: dstOffset, Size: size},
	})
}

// CopySpan copies the elements of src into the front of dst
func CopySpan[T any](c *CommandList, src, dst BufferSpan[T]) {
	if src.count > dst.count {
		panic(errors.Newf("copy of %d elements overruns span of %d", src.count, dst.count))
	}
	c.CopyBuffer(src.buffer, src.offset, dst.buffer, dst.offset, src.SizeBytes())
}

// CopyBufferToImage uploads tightly packed texels from src into every layer of one mip level
func (c *CommandList) CopyBufferToImage(src BufferSpan[byte], dst *Image, mipLevel int) {
	c.checkRecording()
	c.device.driver.CmdCopyBufferToImage(c.cmd, src.buffer.handle, dst.handle, []driver.BufferImageCopy{
		{
			BufferOffset:   src.offset,
			MipLevel:       mipLevel,
			BaseArrayLayer: 0,
			LayerCount:     dst.info.ArrayLayers,
			ImageExtent:    dst.MipExtent(mipLevel),
		},
	})
}

// Barrier records a global memory barrier
func (c *CommandList) Barrier(barrier driver.MemoryBarrier) {
	c.checkRecording()
	c.device.driver.CmdPipelineBarrier(c.cmd, []driver.MemoryBarrier{barrier}, nil)
}

func (c *CommandList) imageBarrier(barrier driver.ImageBarrier) {
	c.checkRecording()
	c.device.driver.CmdPipelineBarrier(c.cmd, nil, []driver.ImageBarrier{barrier})
}
