package reclaim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/reclaim/driver/simgpu"
	"github.com/vkngwrapper/reclaim/memutils"
)

type bumpPass struct {
	header  BufferSpan[byte]
	normals BufferSpan[[3]float32]
	ids     BufferSpan[uint64]
}

func bumpFrame(span *BufferSpan[byte]) bumpPass {
	return bumpPass{
		header:  BumpWrite(span, []byte{1, 2, 3, 4, 5}, 1),
		normals: BumpSlice[[3]float32](span, 3, 16),
		ids:     BumpSlice[uint64](span, 2, 256),
	}
}

func TestBumpAllocTwoPasses(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteOnWait, CreateOptions{})

	buffer := device.CreateBuffer(0, BufferHostMemSeqWrite|BufferDeferredAlloc, 0)
	require.False(t, buffer.Allocated())

	span := WholeSpan[byte](buffer)
	sizing := bumpFrame(&span)
	require.Equal(t, 0, sizing.header.OffsetBytes())
	require.Equal(t, 16, sizing.normals.OffsetBytes())
	require.Equal(t, 256, sizing.ids.OffsetBytes())
	require.Equal(t, 272, span.OffsetBytes())

	span.CommitBumpAlloc(BufferHostMemSeqWrite, 0)
	require.True(t, buffer.Allocated())
	require.Equal(t, 272, buffer.Size())
	require.Equal(t, 272, span.Len())
	require.Equal(t, 0, span.OffsetBytes())

	writing := span
	written := bumpFrame(&writing)
	require.Equal(t, sizing.header.OffsetBytes(), written.header.OffsetBytes())
	require.Equal(t, sizing.normals.OffsetBytes(), written.normals.OffsetBytes())
	require.Equal(t, sizing.ids.OffsetBytes(), written.ids.OffsetBytes())
	require.Equal(t, 0, writing.Len())

	require.Equal(t, []byte{1, 2, 3, 4, 5}, written.header.Data())
	require.Equal(t, []byte{1, 2, 3, 4, 5}, buffer.Mapped()[:5])
	require.Equal(t, buffer.DeviceAddress()+256, written.ids.DeviceAddr(0))
	require.Equal(t, buffer.DeviceAddress()+264, written.ids.DeviceAddr(1))

	written.ids.Set(1, 0x1122334455667788)
	require.Equal(t, uint64(0x1122334455667788), written.ids.At(1))

	if memutils.DebugChecks {
		require.Equal(t, []BumpCall{
			{Type: "uint8", Count: 5, Align: 1},
			{Type: "[3]float32", Count: 3, Align: 16},
			{Type: "uint64", Count: 2, Align: 256},
		}, span.BumpTrace())
	}

	buffer.Destroy()
	destroyDevice(t, device, sim)
}

func TestBumpPassDivergencePanics(t *testing.T) {
	if !memutils.DebugChecks {
		t.Skip("bump traces are compiled out")
	}
	device, sim := newTestDevice(t, simgpu.CompleteOnWait, CreateOptions{})

	buffer := device.CreateBuffer(0, BufferHostMemSeqWrite|BufferDeferredAlloc, 0)
	span := WholeSpan[byte](buffer)
	bumpFrame(&span)
	span.CommitBumpAlloc(BufferHostMemSeqWrite, 0)

	reordered := span
	BumpWrite(&reordered, []byte{1, 2, 3, 4, 5}, 1)
	requirePanicsWithErrorIs(t, ErrBumpPassDiverged, func() {
		BumpSlice[uint64](&reordered, 2, 256)
	})

	extra := span
	bumpFrame(&extra)
	requirePanicsWithErrorIs(t, ErrBumpPassDiverged, func() {
		BumpSlice[byte](&extra, 0, 1)
	})

	buffer.Destroy()
	destroyDevice(t, device, sim)
}

func TestBumpSliceBounds(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteOnWait, CreateOptions{})

	buffer := device.CreateBuffer(64, BufferHostMemSeqWrite, 0)
	span := WholeSpan[uint32](buffer)

	require.Panics(t, func() { BumpSlice[byte](&span, 1, 3) })

	first := BumpSlice[uint16](&span, 3, 2)
	require.Equal(t, 0, first.OffsetBytes())
	// 6 bytes rounded up to the alignment of uint32
	require.Equal(t, 8, span.OffsetBytes())
	require.Equal(t, 14, span.Len())

	require.Panics(t, func() { BumpSlice[uint64](&span, 8, 8) })

	rest := BumpSlice[uint64](&span, 7, 8)
	require.Equal(t, 8, rest.OffsetBytes())
	require.Equal(t, 0, span.Len())

	buffer.Destroy()
	destroyDevice(t, device, sim)
}

func TestSpanViews(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteOnWait, CreateOptions{})

	buffer := device.CreateBuffer(128, BufferHostMemSeqWrite, 0)
	words := Slice[uint32](buffer, 16, common.WholeSize)
	require.Equal(t, 28, words.Len())
	require.Equal(t, 4, words.Offset())
	require.Equal(t, 112, words.SizeBytes())
	require.True(t, words.IsHostVisible())
	require.Same(t, buffer, words.Buffer())

	sub := words.Subspan(2, 4)
	require.Equal(t, 24, sub.OffsetBytes())
	require.Equal(t, 4, sub.Len())
	require.Equal(t, 26, words.Subspan(2, common.WholeSize).Len())
	require.Panics(t, func() { words.Subspan(20, 10) })

	pairs := As[uint64](sub)
	require.Equal(t, 2, pairs.Len())
	require.Equal(t, 24, pairs.OffsetBytes())

	require.Panics(t, func() { Slice[uint32](buffer, 2, 1) })
	require.Panics(t, func() { Slice[uint32](buffer, 0, 33) })

	buffer.Write(24, []byte{0xff, 0, 0, 0})
	require.Equal(t, uint32(0xff), sub.At(0))

	device.DestroyNow(buffer)
	destroyDevice(t, device, sim)
}

func TestUpdateAndCopySpans(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteOnWait, CreateOptions{})

	staging := device.CreateBuffer(64, BufferHostMemSeqWrite, 0)
	target := device.CreateBuffer(64, BufferHostMemCached, 0)

	cmd := device.CreateCommandList()
	UpdateBuffer(cmd, WholeSpan[uint32](staging), []uint32{10, 20, 30, 40})
	cmd.Barrier(BarrierAllCommands)
	CopySpan(cmd, Slice[uint32](staging, 0, 4), Slice[uint32](target, 32, 4))
	require.Panics(t, func() {
		UpdateBuffer(cmd, Slice[uint32](staging, 0, 2), []uint32{1, 2, 3})
	})
	future := cmd.Submit(SubmitOptions{})
	cmd.Destroy()

	_, err := future.Wait(time.Second)
	require.NoError(t, err)
	require.Equal(t, []uint32{10, 20, 30, 40}, Slice[uint32](target, 32, 4).Data())

	staging.Destroy()
	target.Destroy()
	destroyDevice(t, device, sim)
}

func TestReallocOnlyOnce(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteOnWait, CreateOptions{})

	buffer := device.CreateBuffer(0, BufferDeferredAlloc, 0)
	_, err := buffer.Realloc(0, BufferDeviceMem, 0)
	require.Error(t, err)

	_, err = buffer.Realloc(128, BufferDeviceMem, 0)
	require.NoError(t, err)
	require.Equal(t, device.defaultBufferUsage(), buffer.Usage())
	require.NotZero(t, buffer.DeviceAddress())

	_, err = buffer.Realloc(256, BufferDeviceMem, 0)
	require.Error(t, err)

	buffer.Destroy()
	destroyDevice(t, device, sim)
}
