package reclaim

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/core1_2"
	"github.com/vkngwrapper/reclaim/driver"
	"github.com/vkngwrapper/reclaim/driver/simgpu"
)

func TestDescriptorHeapExhaustion(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteOnWait, CreateOptions{MaxImages: 256})
	heap := device.DescriptorHeap()
	require.Equal(t, 255, heap.Capacity())

	img, err := device.CreateImage(ImageDesc{
		Format: core1_0.FormatR8G8B8A8SRGB,
		Size:   driver.Extent3D{Width: 4, Height: 4, Depth: 1},
		Usage:  core1_0.ImageUsageTransferDst,
	})
	require.NoError(t, err)
	require.Zero(t, img.Descriptor())

	handles := make([]ImageHandle, 0, heap.Capacity())
	seen := map[ImageHandle]bool{}
	for i := 0; i < heap.Capacity(); i++ {
		handle, err := heap.CreateHandle(img.View(), core1_0.ImageUsageSampled)
		require.NoError(t, err)
		require.NotZero(t, handle)
		require.False(t, seen[handle], "handle %d was given out twice", handle)
		seen[handle] = true
		handles = append(handles, handle)
	}
	require.Equal(t, 255, heap.Used())
	require.Equal(t, img.View(), sim.ImageDescriptor(heap.Set(), driver.BindingSampledImages, uint32(handles[17])))
	require.Zero(t, sim.ImageDescriptor(heap.Set(), driver.BindingStorageImages, uint32(handles[17])))

	_, err = heap.CreateHandle(img.View(), core1_0.ImageUsageSampled)
	require.ErrorIs(t, err, ErrDescriptorHeapFull)
	require.True(t, errors.Is(err, core1_0.VKErrorTooManyObjects.ToError()))

	_, err = device.CreateImage(ImageDesc{
		Format: core1_0.FormatR8G8B8A8SRGB,
		Size:   driver.Extent3D{Width: 4, Height: 4, Depth: 1},
	})
	require.ErrorIs(t, err, ErrDescriptorHeapFull)

	freed := handles[99]
	heap.DestroyHandle(freed)
	require.False(t, heap.IsAllocated(freed))

	reused, err := heap.CreateHandle(img.View(), core1_0.ImageUsageStorage)
	require.NoError(t, err)
	require.Equal(t, freed, reused)
	require.Equal(t, img.View(), sim.ImageDescriptor(heap.Set(), driver.BindingStorageImages, uint32(reused)))

	for _, handle := range handles {
		heap.DestroyHandle(handle)
	}
	require.Zero(t, heap.Used())

	require.Panics(t, func() { heap.DestroyHandle(handles[0]) })
	require.Panics(t, func() { heap.DestroyHandle(0) })
	require.Panics(t, func() { heap.DestroyHandle(256) })
	require.False(t, heap.IsAllocated(0))

	img.Destroy()
	destroyDevice(t, device, sim)
}

func TestDescriptorHeapHandlesAreNeverZero(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteOnWait, CreateOptions{MaxImages: 70})
	heap := device.DescriptorHeap()

	img, err := device.CreateImage(ImageDesc{
		Format: core1_0.FormatR8G8B8A8SRGB,
		Size:   driver.Extent3D{Width: 1, Height: 1, Depth: 1},
		Usage:  core1_0.ImageUsageStorage,
	})
	require.NoError(t, err)
	require.Equal(t, ImageHandle(1), img.Descriptor())

	var handles []ImageHandle
	for {
		handle, err := heap.CreateHandle(img.View(), core1_0.ImageUsageStorage)
		if err != nil {
			require.ErrorIs(t, err, ErrDescriptorHeapFull)
			break
		}
		require.NotZero(t, handle)
		require.Less(t, int(handle), 70)
		handles = append(handles, handle)
	}
	// the padding bits past the last slot are never handed out
	require.Len(t, handles, 68)

	for _, handle := range handles {
		heap.DestroyHandle(handle)
	}
	img.Destroy()
	destroyDevice(t, device, sim)
}

func TestSamplerDeduplication(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteOnWait, CreateOptions{MaxSamplers: 8})
	heap := device.DescriptorHeap()

	linear := SamplerDesc{
		MagFilter:    core1_0.FilterLinear,
		MinFilter:    core1_0.FilterLinear,
		MipmapMode:   core1_0.SamplerMipmapModeLinear,
		AddressModeU: core1_0.SamplerAddressModeRepeat,
		AddressModeV: core1_0.SamplerAddressModeRepeat,
		AddressModeW: core1_0.SamplerAddressModeRepeat,
		MaxLod:       16,
	}
	first, err := heap.GetSampler(linear)
	require.NoError(t, err)
	again, err := heap.GetSampler(linear)
	require.NoError(t, err)
	require.Equal(t, first, again)

	sampler := sim.SamplerDescriptor(heap.Set(), uint32(first))
	require.NotZero(t, sampler)
	info, ok := sim.SamplerInfo(sampler)
	require.True(t, ok)
	require.Equal(t, driver.SamplerCreateInfo(linear), info)

	for i := 1; i < 8; i++ {
		desc := linear
		desc.MipLodBias = float32(i)
		handle, err := heap.GetSampler(desc)
		require.NoError(t, err)
		require.Equal(t, SamplerHandle(i), handle)
	}

	full := linear
	full.MipLodBias = 100
	_, err = heap.GetSampler(full)
	require.ErrorIs(t, err, ErrSamplerHeapFull)

	// existing samplers are still found once the heap is full
	again, err = heap.GetSampler(linear)
	require.NoError(t, err)
	require.Equal(t, first, again)

	destroyDevice(t, device, sim)
}

func TestImmutableSamplers(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteOnWait, CreateOptions{})
	heap := device.DescriptorHeap()
	require.Len(t, heap.immutableSamplers, immutableSamplerCount)

	seen := map[int]bool{}
	for _, mag := range []core1_0.Filter{core1_0.FilterNearest, core1_0.FilterLinear} {
		for _, minFilter := range []MinFilter{MinFilterNearest, MinFilterLinear, MinFilterAnisotropic} {
			for _, wrap := range immutableWrapModes {
				index := ImmutableSamplerIndex(mag, minFilter, wrap)
				require.False(t, seen[index])
				seen[index] = true

				info, ok := sim.SamplerInfo(heap.immutableSamplers[index])
				require.True(t, ok)
				require.Equal(t, mag, info.MagFilter)
				require.Equal(t, wrap, info.AddressModeU)
				require.Equal(t, wrap, info.AddressModeW)
				require.Equal(t, minFilter == MinFilterAnisotropic, info.AnisotropyEnable)
				if minFilter == MinFilterNearest {
					require.Equal(t, core1_0.FilterNearest, info.MinFilter)
				} else {
					require.Equal(t, core1_0.FilterLinear, info.MinFilter)
				}
			}
		}
	}
	require.Len(t, seen, immutableSamplerCount)

	require.Equal(t, 17, ImmutableSamplerIndex(core1_0.FilterLinear, MinFilterAnisotropic, core1_0.SamplerAddressModeClampToEdge))
	require.Equal(t, float32(8), immutableSamplerInfo(17, 16).MaxAnisotropy)
	require.Equal(t, 18, ImmutableSamplerIndex(core1_0.FilterNearest, MinFilterNearest, core1_2.SamplerAddressModeMirrorClampToEdge))
	require.Equal(t, core1_2.SamplerAddressModeMirrorClampToEdge, immutableSamplerInfo(18, 16).AddressModeV)
	require.Panics(t, func() { ImmutableSamplerIndex(core1_0.FilterLinear, MinFilterLinear, core1_0.SamplerAddressMode(-7)) })

	destroyDevice(t, device, sim)
}

func TestSamplerReductionModes(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteOnWait, CreateOptions{MaxSamplers: 4})
	heap := device.DescriptorHeap()

	desc := SamplerDesc{
		MagFilter:    core1_0.FilterLinear,
		MinFilter:    core1_0.FilterLinear,
		AddressModeU: core1_0.SamplerAddressModeClampToEdge,
		AddressModeV: core1_0.SamplerAddressModeClampToEdge,
		AddressModeW: core1_0.SamplerAddressModeClampToEdge,
	}
	require.Equal(t, core1_2.SamplerReductionModeWeightedAverage, desc.ReductionMode)

	// the first dynamic sampler occupies slot 0
	average, err := heap.GetSampler(desc)
	require.NoError(t, err)
	require.Equal(t, SamplerHandle(0), average)

	desc.ReductionMode = core1_2.SamplerReductionModeMin
	minimum, err := heap.GetSampler(desc)
	require.NoError(t, err)
	require.Equal(t, SamplerHandle(1), minimum)

	desc.ReductionMode = core1_2.SamplerReductionModeMax
	maximum, err := heap.GetSampler(desc)
	require.NoError(t, err)
	require.Equal(t, SamplerHandle(2), maximum)

	info, ok := sim.SamplerInfo(sim.SamplerDescriptor(heap.Set(), uint32(minimum)))
	require.True(t, ok)
	require.Equal(t, core1_2.SamplerReductionModeMin, info.ReductionMode)

	destroyDevice(t, device, sim)
}
