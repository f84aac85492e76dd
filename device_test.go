package reclaim

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/reclaim/driver"
	"github.com/vkngwrapper/reclaim/driver/mocks"
	"github.com/vkngwrapper/reclaim/driver/simgpu"
	"go.uber.org/mock/gomock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestDevice(t *testing.T, mode simgpu.CompletionMode, options CreateOptions) (*Device, *simgpu.Device) {
	simOptions := simgpu.DefaultOptions()
	simOptions.CompletionMode = mode
	sim := simgpu.New(testLogger(), simOptions)

	device, err := New(testLogger(), sim, options)
	require.NoError(t, err)
	return device, sim
}

func destroyDevice(t *testing.T, device *Device, sim *simgpu.Device) {
	device.Destroy()
	require.Empty(t, sim.Violations())
	require.Zero(t, sim.LiveObjects())
}

func requireBalanced(t *testing.T, device *Device) {
	for _, stats := range device.RecyclerStats() {
		require.Zero(t, stats.RefCount)
	}
}

func requirePanicsWithErrorIs(t *testing.T, target error, f func()) {
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, isError := r.(error)
		require.True(t, isError, "expected an error panic, got %v", r)
		require.ErrorIs(t, err, target)
	}()
	f()
}

func fillBufferList(device *Device, buffer *Buffer, value uint32) *CommandList {
	cmd := device.CreateCommandList()
	cmd.FillBuffer(WholeSpan[uint32](buffer), value)
	return cmd
}

func TestDeferredDestructionOrder(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteManually, CreateOptions{})

	cmd1 := device.CreateCommandList()
	buffer1 := device.CreateBuffer(256, BufferDeviceMem, 0)
	cmd1.FillBuffer(WholeSpan[uint32](buffer1), 1)
	future1 := cmd1.Submit(SubmitOptions{})
	buffer1.Destroy()
	cmd1.Destroy()

	buffer2 := device.CreateBuffer(256, BufferDeviceMem, 0)
	cmd2 := fillBufferList(device, buffer2, 2)
	future2 := cmd2.Submit(SubmitOptions{})

	buffer3 := device.CreateBuffer(256, BufferDeviceMem, 0)
	cmd3 := fillBufferList(device, buffer3, 3)
	future3 := cmd3.Submit(SubmitOptions{})

	require.Equal(t, uint64(1), future1.Timestamp())
	require.Equal(t, uint64(2), future2.Timestamp())
	require.Equal(t, uint64(3), future3.Timestamp())

	require.Zero(t, device.GarbageCollect())
	require.False(t, buffer1.released)

	require.Equal(t, 1, sim.Advance(1))
	require.True(t, future1.IsComplete())
	require.False(t, future2.IsComplete())

	require.Equal(t, 2, device.GarbageCollect())
	require.True(t, buffer1.released)
	require.True(t, cmd1.released)
	require.False(t, buffer2.Destroyed())
	require.False(t, cmd2.Destroyed())
	require.False(t, buffer3.Destroyed())
	require.Empty(t, sim.Violations())

	buffer2.Destroy()
	cmd2.Destroy()
	buffer3.Destroy()
	cmd3.Destroy()
	requireBalanced(t, device)

	sim.CompleteAll()
	device.CreateCommandList().Destroy()
	require.Equal(t, 4, device.GarbageCollect())

	destroyDevice(t, device, sim)
}

func TestResourcesDestroyedWhileRecordingWaitForTheList(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteManually, CreateOptions{})

	buffer := device.CreateBuffer(64, BufferDeviceMem, 0)
	cmd := device.CreateCommandList()
	cmd.FillBuffer(WholeSpan[uint32](buffer), 7)
	buffer.Destroy()

	// A second list closes off the recycler holding the buffer, but the first still holds it open
	other := device.CreateCommandList()
	require.Zero(t, device.GarbageCollect())

	future := cmd.Submit(SubmitOptions{})
	cmd.Destroy()
	require.Zero(t, device.GarbageCollect())

	otherFuture := other.Submit(SubmitOptions{})
	other.Destroy()

	require.Equal(t, 1, sim.Advance(1))
	require.True(t, future.IsComplete())
	require.False(t, otherFuture.IsComplete())

	// The buffer was destroyed before the first submission, so that submission is all it waits for
	device.CreateCommandList().Destroy()
	require.Equal(t, 1, device.GarbageCollect())
	require.True(t, buffer.released)
	require.Empty(t, sim.Violations())

	sim.CompleteAll()
	device.CreateCommandList().Destroy()
	device.GarbageCollect()
	requireBalanced(t, device)
	destroyDevice(t, device, sim)
}

func TestNoUseAfterFreeAcrossFrames(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteManually, CreateOptions{})

	var pending []Future
	for frame := 0; frame < 40; frame++ {
		upload := device.CreateBuffer(1024, BufferHostMemSeqWrite, 0)
		target := device.CreateBuffer(1024, BufferDeviceMem, 0)

		cmd := device.CreateCommandList()
		cmd.CopyBuffer(upload, 0, target, 0, common.WholeSize)
		upload.Destroy()
		cmd.FillBuffer(Slice[uint32](target, 512, common.WholeSize), uint32(frame))
		pending = append(pending, cmd.Submit(SubmitOptions{}))
		cmd.Destroy()
		target.Destroy()

		if frame%4 == 0 {
			sim.Advance(4)
		}
		device.GarbageCollect()
		require.Less(t, len(device.RecyclerStats()), defaultMaxPendingRecyclers)
	}

	sim.CompleteAll()
	for _, future := range pending {
		require.True(t, future.IsComplete())
	}
	device.CreateCommandList().Destroy()
	device.GarbageCollect()

	requireBalanced(t, device)
	require.Empty(t, sim.Violations())
	destroyDevice(t, device, sim)
}

func TestFutureWait(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteManually, CreateOptions{})

	res, err := Future{}.Wait(time.Second)
	require.NoError(t, err)
	require.Equal(t, core1_0.VKSuccess, res)
	require.True(t, Future{}.IsComplete())

	buffer := device.CreateBuffer(64, BufferDeviceMem, 0)
	cmd := fillBufferList(device, buffer, 1)
	future := cmd.Submit(SubmitOptions{})
	cmd.Destroy()
	buffer.Destroy()

	res, err = future.Wait(0)
	require.NoError(t, err)
	require.Equal(t, core1_0.VKTimeout, res)

	done := make(chan common.VkResult)
	go func() {
		res, _ := future.Wait(10 * time.Second)
		done <- res
	}()
	sim.Advance(1)
	require.Equal(t, core1_0.VKSuccess, <-done)
	require.Equal(t, uint64(1), device.Queue().CompletedTimestamp())

	destroyDevice(t, device, sim)
}

func TestSubmitSignalsSemaphoreAndFence(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteOnWait, CreateOptions{})

	signal, _, err := sim.CreateTimelineSemaphore(0)
	require.NoError(t, err)
	fence, _, err := sim.CreateFence()
	require.NoError(t, err)

	buffer := device.CreateBuffer(64, BufferHostMemCached, 0)
	cmd := fillBufferList(device, buffer, 0xabcd)
	future := cmd.Submit(SubmitOptions{SignalSemaphore: signal, Fence: fence})
	cmd.Destroy()

	res, err := sim.WaitForFence(fence, time.Second)
	require.NoError(t, err)
	require.Equal(t, core1_0.VKSuccess, res)

	value, _, err := sim.SemaphoreCounterValue(signal)
	require.NoError(t, err)
	require.Equal(t, future.Timestamp(), value)

	buffer.Invalidate(0, 64)
	require.Equal(t, uint32(0xabcd), WholeSpan[uint32](buffer).At(15))

	buffer.Destroy()
	sim.DestroySemaphore(signal)
	sim.DestroyFence(fence)
	destroyDevice(t, device, sim)
}

func TestSubmitHook(t *testing.T) {
	var submitted [][]driver.CommandBuffer
	device, sim := newTestDevice(t, simgpu.CompleteImmediately, CreateOptions{
		SubmitHook: func(drv driver.Driver, submits []driver.SubmitInfo) (common.VkResult, error) {
			for _, submit := range submits {
				submitted = append(submitted, submit.CommandBuffers)
			}
			return drv.QueueSubmit(submits)
		},
	})

	image, err := device.CreateImage(ImageDesc{Format: core1_0.FormatR8G8B8A8SRGB, Size: driver.Extent3D{Width: 4, Height: 4}})
	require.NoError(t, err)

	cmd := device.CreateCommandList()
	cmd.Submit(SubmitOptions{})

	// The prologue transitioning the new image runs first
	require.Len(t, submitted, 1)
	require.Len(t, submitted[0], 2)
	require.Equal(t, cmd.Handle(), submitted[0][1])

	cmd.Destroy()
	image.Destroy()
	destroyDevice(t, device, sim)
}

func TestDoubleDestroyPanics(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteOnWait, CreateOptions{})

	buffer := device.CreateBuffer(64, BufferDeviceMem, 0)
	buffer.Destroy()
	require.Panics(t, buffer.Destroy)
	require.Panics(t, func() { device.DestroyNow(buffer) })

	destroyDevice(t, device, sim)
}

func TestDestroyWithRecordingListPanics(t *testing.T) {
	device, _ := newTestDevice(t, simgpu.CompleteOnWait, CreateOptions{})

	device.CreateCommandList()
	require.Panics(t, device.Destroy)
}

func TestUnsubmittedListReleasesItsHold(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteOnWait, CreateOptions{})

	cmd := device.CreateCommandList()
	require.Equal(t, uint32(1), device.RecyclerStats()[0].RefCount)
	cmd.Destroy()
	require.False(t, cmd.Recording())
	requireBalanced(t, device)
	require.Panics(t, func() { cmd.Submit(SubmitOptions{}) })

	destroyDevice(t, device, sim)
}

func TestProgramCache(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteOnWait, CreateOptions{})

	desc := PipelineDesc{Name: "blur", BindPoint: core1_0.PipelineBindPointCompute, Code: []byte{1, 2, 3}}
	program := device.Program(desc)
	require.Same(t, program, device.Program(desc))
	require.Panics(t, program.Destroy)

	cmd := device.CreateCommandList()
	cmd.BindPipeline(program, []byte{1, 2, 3, 4})
	cmd.DispatchGroups(4, 4, 1)
	future := cmd.Submit(SubmitOptions{})
	cmd.Destroy()

	_, err := future.Wait(time.Second)
	require.NoError(t, err)
	require.Equal(t, 1, sim.Stats().Dispatches)

	destroyDevice(t, device, sim)
}

func TestBuildStatsString(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteOnWait, CreateOptions{})

	buffer := device.CreateBuffer(64, BufferDeviceMem, 0)
	buffer.Destroy()

	var stats struct {
		Device         string
		DescriptorHeap struct {
			Capacity int
			Used     int
		}
		Recyclers []struct {
			Entries int
		}
	}
	require.NoError(t, json.Unmarshal([]byte(device.BuildStatsString()), &stats))
	require.Equal(t, "simgpu", stats.Device)
	require.Equal(t, defaultMaxImages-1, stats.DescriptorHeap.Capacity)
	require.Len(t, stats.Recyclers, 1)
	require.Equal(t, 1, stats.Recyclers[0].Entries)

	destroyDevice(t, device, sim)
}

func TestFatalSubmitFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	drv := mocks.NewMockDriver(ctrl)

	drv.EXPECT().Properties().Return(driver.DeviceProperties{DeviceName: "mock"})
	drv.EXPECT().CreateTimelineSemaphore(uint64(0)).Return(driver.Semaphore(1), core1_0.VKSuccess, nil)
	drv.EXPECT().CreateSampler(gomock.Any()).Return(driver.Sampler(2), core1_0.VKSuccess, nil).Times(immutableSamplerCount)
	drv.EXPECT().CreateDescriptorHeap(gomock.Any()).Return(driver.DescriptorSet(3), core1_0.VKSuccess, nil)
	drv.EXPECT().AllocateCommandBuffer().Return(driver.CommandBuffer(4), core1_0.VKSuccess, nil)
	drv.EXPECT().BeginCommandBuffer(driver.CommandBuffer(4)).Return(core1_0.VKSuccess, nil)
	drv.EXPECT().EndCommandBuffer(driver.CommandBuffer(4)).Return(core1_0.VKSuccess, nil)
	drv.EXPECT().QueueSubmit(gomock.Any()).DoAndReturn(func(submits []driver.SubmitInfo) (common.VkResult, error) {
		require.Len(t, submits, 1)
		require.Equal(t, []driver.SemaphoreSubmit{
			{Semaphore: 1, Value: 1, Stages: core1_0.PipelineStageAllCommands},
		}, submits[0].SignalSemaphores)
		return core1_0.VKErrorDeviceLost, core1_0.VKErrorDeviceLost.ToError()
	})

	var fatal *FatalError
	device, err := New(testLogger(), drv, CreateOptions{
		FatalHandler: func(err *FatalError) { fatal = err },
	})
	require.NoError(t, err)

	cmd := device.CreateCommandList()
	future := cmd.Submit(SubmitOptions{})

	require.NotNil(t, fatal)
	require.Equal(t, "Queue::Submit", fatal.Op)
	require.Equal(t, core1_0.VKErrorDeviceLost, fatal.Result)
	require.EqualError(t, fatal, "Queue::Submit failed with code "+core1_0.VKErrorDeviceLost.String())
	require.True(t, errors.Is(fatal, core1_0.VKErrorDeviceLost.ToError()))

	// nothing was queued, so the timestamp is not consumed and the list keeps its hold
	require.Equal(t, Future{}, future)
	require.Zero(t, future.Timestamp())
	require.Equal(t, uint64(1), device.Queue().NextSubmitTimestamp())
	require.True(t, cmd.Recording())
	stats := device.RecyclerStats()
	require.Len(t, stats, 1)
	require.Equal(t, uint32(1), stats[0].RefCount)
	require.Zero(t, stats[0].FlushTimestamp)

	cmd.Destroy()
	requireBalanced(t, device)
}

func TestFatalDeviceWaitIdleOnDestroy(t *testing.T) {
	ctrl := gomock.NewController(t)
	drv := mocks.NewMockDriver(ctrl)

	drv.EXPECT().Properties().Return(driver.DeviceProperties{DeviceName: "mock"})
	drv.EXPECT().CreateTimelineSemaphore(uint64(0)).Return(driver.Semaphore(1), core1_0.VKSuccess, nil)
	drv.EXPECT().CreateSampler(gomock.Any()).Return(driver.Sampler(2), core1_0.VKSuccess, nil).Times(immutableSamplerCount)
	drv.EXPECT().CreateDescriptorHeap(gomock.Any()).Return(driver.DescriptorSet(3), core1_0.VKSuccess, nil)

	drv.EXPECT().DeviceWaitIdle().Return(core1_0.VKErrorDeviceLost, core1_0.VKErrorDeviceLost.ToError())
	drv.EXPECT().DestroyDescriptorHeap(driver.DescriptorSet(3))
	drv.EXPECT().DestroySampler(driver.Sampler(2)).Times(immutableSamplerCount)
	drv.EXPECT().DestroySemaphore(driver.Semaphore(1))
	drv.EXPECT().Destroy()

	var fatal *FatalError
	device, err := New(testLogger(), drv, CreateOptions{
		FatalHandler: func(err *FatalError) { fatal = err },
	})
	require.NoError(t, err)

	device.Destroy()

	require.NotNil(t, fatal)
	require.Equal(t, "Device::Destroy", fatal.Op)
	require.Equal(t, core1_0.VKErrorDeviceLost, fatal.Result)
}

func TestDefaultFatalHandlerPanics(t *testing.T) {
	ctrl := gomock.NewController(t)
	drv := mocks.NewMockDriver(ctrl)

	drv.EXPECT().Properties().Return(driver.DeviceProperties{})
	drv.EXPECT().CreateTimelineSemaphore(uint64(0)).Return(driver.Semaphore(1), core1_0.VKSuccess, nil)
	drv.EXPECT().CreateSampler(gomock.Any()).Return(driver.Sampler(2), core1_0.VKSuccess, nil).AnyTimes()
	drv.EXPECT().CreateDescriptorHeap(gomock.Any()).Return(driver.DescriptorSet(3), core1_0.VKSuccess, nil)
	drv.EXPECT().CreatePipeline(gomock.Any()).Return(driver.Pipeline(driver.NullHandle), core1_0.VKErrorInitializationFailed, core1_0.VKErrorInitializationFailed.ToError())

	device, err := New(testLogger(), drv, CreateOptions{})
	require.NoError(t, err)

	defer func() {
		fatal, isFatal := recover().(*FatalError)
		require.True(t, isFatal)
		require.Equal(t, "Device::CreatePipeline", fatal.Op)
	}()
	device.CreatePipeline(PipelineDesc{Name: "broken"})
}

func TestNonCoherentBufferFlushes(t *testing.T) {
	ctrl := gomock.NewController(t)
	drv := mocks.NewMockDriver(ctrl)

	drv.EXPECT().Properties().Return(driver.DeviceProperties{DeviceName: "mock"})
	drv.EXPECT().CreateTimelineSemaphore(uint64(0)).Return(driver.Semaphore(1), core1_0.VKSuccess, nil)
	drv.EXPECT().CreateSampler(gomock.Any()).Return(driver.Sampler(2), core1_0.VKSuccess, nil).Times(immutableSamplerCount)
	drv.EXPECT().CreateDescriptorHeap(gomock.Any()).Return(driver.DescriptorSet(3), core1_0.VKSuccess, nil)

	mapped := make([]byte, 32)
	drv.EXPECT().CreateBuffer(gomock.Any()).DoAndReturn(func(info driver.BufferCreateInfo) (driver.Buffer, driver.BufferAllocation, common.VkResult, error) {
		require.True(t, info.Mapped)
		require.Zero(t, info.RequiredProperties&core1_0.MemoryPropertyHostCoherent)
		require.NotZero(t, info.PreferredProperties&core1_0.MemoryPropertyHostCached)
		return driver.Buffer(4), driver.BufferAllocation{
			Mapped:     mapped,
			Properties: core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCached,
		}, core1_0.VKSuccess, nil
	})
	drv.EXPECT().FlushBuffer(driver.Buffer(4), 8, 4).Return(core1_0.VKSuccess, nil)
	drv.EXPECT().InvalidateBuffer(driver.Buffer(4), 0, 32).Return(core1_0.VKSuccess, nil)

	device, err := New(testLogger(), drv, CreateOptions{})
	require.NoError(t, err)

	buffer := device.CreateBuffer(32, BufferHostMemCached|BufferAllowNonHostCoherent, 0)
	buffer.Write(8, []byte{1, 2, 3, 4})
	require.Equal(t, []byte{1, 2, 3, 4}, mapped[8:12])
	buffer.Invalidate(0, 32)
}
