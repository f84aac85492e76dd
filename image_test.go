package reclaim

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/reclaim/driver"
	"github.com/vkngwrapper/reclaim/driver/simgpu"
)

func TestParseSwizzle(t *testing.T) {
	testCases := []struct {
		swizzle  string
		expected core1_0.ComponentMapping
		err      bool
	}{
		{swizzle: "", expected: core1_0.ComponentMapping{}},
		{swizzle: "RGBA", expected: core1_0.ComponentMapping{
			R: core1_0.ComponentSwizzleRed, G: core1_0.ComponentSwizzleGreen, B: core1_0.ComponentSwizzleBlue, A: core1_0.ComponentSwizzleAlpha,
		}},
		{swizzle: "rgb1", expected: core1_0.ComponentMapping{
			R: core1_0.ComponentSwizzleRed, G: core1_0.ComponentSwizzleGreen, B: core1_0.ComponentSwizzleBlue, A: core1_0.ComponentSwizzleOne,
		}},
		{swizzle: "RRRA", expected: core1_0.ComponentMapping{
			R: core1_0.ComponentSwizzleRed, G: core1_0.ComponentSwizzleRed, B: core1_0.ComponentSwizzleRed, A: core1_0.ComponentSwizzleAlpha,
		}},
		{swizzle: "wzy0", expected: core1_0.ComponentMapping{
			R: core1_0.ComponentSwizzleAlpha, G: core1_0.ComponentSwizzleBlue, B: core1_0.ComponentSwizzleGreen, A: core1_0.ComponentSwizzleZero,
		}},
		{swizzle: "RGB", err: true},
		{swizzle: "RGBAA", err: true},
		{swizzle: "RGBQ", err: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.swizzle, func(t *testing.T) {
			mapping, err := ParseSwizzle(testCase.swizzle)
			if testCase.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, testCase.expected, mapping)
		})
	}
}

func TestImageShapes(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteOnWait, CreateOptions{})

	testCases := []struct {
		name   string
		desc   ImageDesc
		mips   int
		layers int
		extent driver.Extent3D
		aspect core1_0.ImageAspectFlags
	}{
		{
			name:   "SingleMipByDefault",
			desc:   ImageDesc{Format: core1_0.FormatR8G8B8A8SRGB, Size: driver.Extent3D{Width: 64, Height: 64}},
			mips:   1,
			layers: 1,
			extent: driver.Extent3D{Width: 64, Height: 64, Depth: 1},
			aspect: core1_0.ImageAspectColor,
		},
		{
			name:   "MipChainClamped",
			desc:   ImageDesc{Format: core1_0.FormatR8G8B8A8SRGB, Size: driver.Extent3D{Width: 100, Height: 60, Depth: 1}, MipLevels: 20},
			mips:   7,
			layers: 1,
			extent: driver.Extent3D{Width: 100, Height: 60, Depth: 1},
			aspect: core1_0.ImageAspectColor,
		},
		{
			name:   "Array",
			desc:   ImageDesc{Kind: Image2DArray, Format: core1_0.FormatR8G8B8A8SRGB, Size: driver.Extent3D{Width: 16, Height: 16, Depth: 4}, MipLevels: 3},
			mips:   3,
			layers: 4,
			extent: driver.Extent3D{Width: 16, Height: 16, Depth: 1},
			aspect: core1_0.ImageAspectColor,
		},
		{
			name:   "Cube",
			desc:   ImageDesc{Kind: ImageCube, Format: core1_0.FormatR8G8B8A8SRGB, Size: driver.Extent3D{Width: 32, Height: 32, Depth: 6}, MipLevels: 100},
			mips:   6,
			layers: 6,
			extent: driver.Extent3D{Width: 32, Height: 32, Depth: 1},
			aspect: core1_0.ImageAspectColor,
		},
		{
			name:   "Volume",
			desc:   ImageDesc{Kind: Image3D, Format: core1_0.FormatR8G8B8A8SRGB, Size: driver.Extent3D{Width: 8, Height: 8, Depth: 32}, MipLevels: 100},
			mips:   6,
			layers: 1,
			extent: driver.Extent3D{Width: 8, Height: 8, Depth: 32},
			aspect: core1_0.ImageAspectColor,
		},
		{
			name:   "Line",
			desc:   ImageDesc{Kind: Image1D, Format: core1_0.FormatR8G8B8A8SRGB, Size: driver.Extent3D{Width: 256, Height: 9, Depth: 9}, MipLevels: 100},
			mips:   9,
			layers: 1,
			extent: driver.Extent3D{Width: 256, Height: 1, Depth: 1},
			aspect: core1_0.ImageAspectColor,
		},
		{
			name:   "Depth",
			desc:   ImageDesc{Format: core1_0.FormatD32SignedFloat, Size: driver.Extent3D{Width: 8, Height: 8, Depth: 1}},
			mips:   1,
			layers: 1,
			extent: driver.Extent3D{Width: 8, Height: 8, Depth: 1},
			aspect: core1_0.ImageAspectDepth,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			img, err := device.CreateImage(testCase.desc)
			require.NoError(t, err)

			require.Equal(t, testCase.desc.Kind, img.Kind())
			require.Equal(t, testCase.mips, img.MipLevels())
			require.Equal(t, testCase.layers, img.Layers())
			require.Equal(t, testCase.extent, img.MipExtent(0))
			require.Equal(t, testCase.aspect, img.Aspect())
			require.Equal(t, core1_0.ImageUsageSampled|core1_0.ImageUsageTransferDst|core1_0.ImageUsageTransferSrc, img.Usage())

			// sampled by default, so the default view has a slot
			require.NotZero(t, img.Descriptor())
			heap := device.DescriptorHeap()
			require.True(t, heap.IsAllocated(img.Descriptor()))
			require.Equal(t, img.View(), sim.ImageDescriptor(heap.Set(), driver.BindingSampledImages, uint32(img.Descriptor())))

			img.Destroy()
		})
	}

	destroyDevice(t, device, sim)
}

func TestMipExtent(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteOnWait, CreateOptions{})

	img, err := device.CreateImage(ImageDesc{
		Format:    core1_0.FormatR8G8B8A8SRGB,
		Size:      driver.Extent3D{Width: 100, Height: 60, Depth: 1},
		MipLevels: 7,
	})
	require.NoError(t, err)

	require.Equal(t, driver.Extent3D{Width: 50, Height: 30, Depth: 1}, img.MipExtent(1))
	require.Equal(t, driver.Extent3D{Width: 3, Height: 1, Depth: 1}, img.MipExtent(5))
	require.Equal(t, driver.Extent3D{Width: 1, Height: 1, Depth: 1}, img.MipExtent(6))

	img.Destroy()
	destroyDevice(t, device, sim)
}

func TestImageSubViews(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteOnWait, CreateOptions{})
	heap := device.DescriptorHeap()

	img, err := device.CreateImage(ImageDesc{
		Kind:      Image2DArray,
		Format:    core1_0.FormatR8G8B8A8SRGB,
		Size:      driver.Extent3D{Width: 16, Height: 16, Depth: 3},
		MipLevels: 4,
		Usage:     core1_0.ImageUsageSampled | core1_0.ImageUsageStorage,
	})
	require.NoError(t, err)

	layerDesc := ViewDesc{
		Kind:        Image2D,
		MipOffset:   1,
		MipLevels:   1,
		LayerOffset: 2,
		NumLayers:   1,
		ShaderUsage: core1_0.ImageUsageStorage,
	}
	layer, err := img.SubView(layerDesc)
	require.NoError(t, err)
	require.NotZero(t, layer.Descriptor())
	require.NotEqual(t, img.Descriptor(), layer.Descriptor())
	require.Equal(t, layer.Handle(), sim.ImageDescriptor(heap.Set(), driver.BindingStorageImages, uint32(layer.Descriptor())))
	require.Zero(t, sim.ImageDescriptor(heap.Set(), driver.BindingSampledImages, uint32(layer.Descriptor())))

	cached, err := img.SubView(layerDesc)
	require.NoError(t, err)
	require.Same(t, layer, cached)

	swizzled, err := img.SubView(ViewDesc{Kind: Image2DArray, Swizzle: "RRR1"})
	require.NoError(t, err)
	require.NotSame(t, layer, swizzled)
	require.Zero(t, swizzled.Descriptor())

	_, err = img.SubView(ViewDesc{Kind: Image2D, MipOffset: 3, MipLevels: 2})
	require.Error(t, err)
	_, err = img.SubView(ViewDesc{Kind: Image2D, LayerOffset: 3})
	require.Error(t, err)
	_, err = img.SubView(ViewDesc{Kind: Image2D, Swizzle: "RG"})
	require.Error(t, err)

	require.Equal(t, 2, heap.Used())

	img.Destroy()
	cmd := device.CreateCommandList()
	future := cmd.Submit(SubmitOptions{})
	cmd.Destroy()
	_, err = future.Wait(0)
	require.NoError(t, err)
	device.GarbageCollect()

	require.Zero(t, heap.Used())
	destroyDevice(t, device, sim)
}

func TestImageUploadKeepsImageAlive(t *testing.T) {
	device, sim := newTestDevice(t, simgpu.CompleteManually, CreateOptions{})

	img, err := device.CreateImage(ImageDesc{
		Format: core1_0.FormatR8G8B8A8SRGB,
		Size:   driver.Extent3D{Width: 4, Height: 4, Depth: 1},
	})
	require.NoError(t, err)

	staging := device.CreateBuffer(4*4*4, BufferHostMemSeqWrite, 0)
	texels := make([]byte, 4*4*4)
	for i := range texels {
		texels[i] = byte(i)
	}
	staging.Write(0, texels)

	cmd := device.CreateCommandList()
	cmd.CopyBufferToImage(WholeSpan[byte](staging), img, 0)
	future := cmd.Submit(SubmitOptions{})
	cmd.Destroy()
	img.Destroy()
	staging.Destroy()

	require.Zero(t, device.GarbageCollect())
	require.False(t, future.IsComplete())

	require.Equal(t, 1, sim.CompleteAll())
	res, err := future.Wait(0)
	require.NoError(t, err)
	require.Equal(t, core1_0.VKSuccess, res)

	// the prologue's recycler is closed, the one holding cmd, img and staging is still the newest
	require.Equal(t, 1, device.GarbageCollect())
	device.CreateCommandList().Destroy()
	require.Equal(t, 3, device.GarbageCollect())

	require.Equal(t, 1, sim.Stats().Copies)
	requireBalanced(t, device)
	destroyDevice(t, device, sim)
}
