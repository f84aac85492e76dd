package vulkan

import (
	"log/slog"

	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/core1_2"
	"github.com/vkngwrapper/reclaim/driver"
)

type image struct {
	image  core1_0.Image
	memory core1_0.DeviceMemory
	aspect core1_0.ImageAspectFlags
}

// CreateImage creates an optimally tiled image in device local memory, in the undefined layout
func (d *Device) CreateImage(info driver.ImageCreateInfo) (driver.Image, common.VkResult, error) {
	var flags core1_0.ImageCreateFlags
	if info.CubeCompatible {
		flags |= core1_0.ImageCreateCubeCompatible
	}
	samples := info.Samples
	if samples == 0 {
		samples = core1_0.Samples1
	}

	img, res, err := d.driver.CreateImage(d.options.AllocationCallbacks, core1_0.ImageCreateInfo{
		Flags:     flags,
		ImageType: info.Type,
		Format:    info.Format,
		Extent: core1_0.Extent3D{
			Width:  info.Extent.Width,
			Height: info.Extent.Height,
			Depth:  info.Extent.Depth,
		},
		MipLevels:     info.MipLevels,
		ArrayLayers:   info.ArrayLayers,
		Samples:       samples,
		Tiling:        core1_0.ImageTilingOptimal,
		Usage:         info.Usage,
		SharingMode:   core1_0.SharingModeExclusive,
		InitialLayout: core1_0.ImageLayoutUndefined,
	})
	if err != nil {
		return driver.NullHandle, res, err
	}

	requirements := d.driver.GetImageMemoryRequirements(img)
	memoryTypeIndex, res, err := d.findMemoryTypeIndex(requirements.MemoryTypeBits, 0, core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		d.driver.DestroyImage(img, d.options.AllocationCallbacks)
		return driver.NullHandle, res, err
	}

	memory, res, err := d.allocateMemory(requirements.Size, memoryTypeIndex, false)
	if err != nil {
		d.driver.DestroyImage(img, d.options.AllocationCallbacks)
		return driver.NullHandle, res, err
	}

	res, err = d.driver.BindImageMemory(img, memory, 0)
	if err != nil {
		d.driver.FreeMemory(memory, d.options.AllocationCallbacks)
		d.driver.DestroyImage(img, d.options.AllocationCallbacks)
		return driver.NullHandle, res, err
	}

	handle := d.mint()
	d.images.Put(handle, &image{image: img, memory: memory, aspect: driver.FormatAspect(info.Format)})

	d.logger.Debug("VulkanDevice::CreateImage",
		slog.Uint64("handle", handle),
		slog.String("format", info.Format.String()),
		slog.Int("memoryType", memoryTypeIndex),
	)
	return driver.Image(handle), core1_0.VKSuccess, nil
}

func (d *Device) DestroyImage(handle driver.Image) {
	img := take(d.images, "image", uint64(handle))
	d.driver.DestroyImage(img.image, d.options.AllocationCallbacks)
	d.driver.FreeMemory(img.memory, d.options.AllocationCallbacks)
}

func subresourceRange(r driver.ImageSubresourceRange) core1_0.ImageSubresourceRange {
	return core1_0.ImageSubresourceRange{
		AspectMask:     r.Aspect,
		BaseMipLevel:   r.BaseMipLevel,
		LevelCount:     r.LevelCount,
		BaseArrayLayer: r.BaseArrayLayer,
		LayerCount:     r.LayerCount,
	}
}

func (d *Device) CreateImageView(info driver.ImageViewCreateInfo) (driver.ImageView, common.VkResult, error) {
	img := lookup(d.images, "image", uint64(info.Image))

	view, res, err := d.driver.CreateImageView(d.options.AllocationCallbacks, core1_0.ImageViewCreateInfo{
		Image:            img.image,
		ViewType:         info.ViewType,
		Format:           info.Format,
		Components:       info.Components,
		SubresourceRange: subresourceRange(info.Range),
	})
	if err != nil {
		return driver.NullHandle, res, err
	}

	handle := d.mint()
	d.imageViews.Put(handle, view)
	return driver.ImageView(handle), res, nil
}

func (d *Device) DestroyImageView(handle driver.ImageView) {
	view := take(d.imageViews, "image view", uint64(handle))
	d.driver.DestroyImageView(view, d.options.AllocationCallbacks)
}

// CreateSampler chains a core1_2.SamplerReductionModeCreateInfo only for the min and max reduction
// modes, weighted average is the default
func (d *Device) CreateSampler(info driver.SamplerCreateInfo) (driver.Sampler, common.VkResult, error) {
	createInfo := core1_0.SamplerCreateInfo{
		MagFilter:        info.MagFilter,
		MinFilter:        info.MinFilter,
		MipmapMode:       info.MipmapMode,
		AddressModeU:     info.AddressModeU,
		AddressModeV:     info.AddressModeV,
		AddressModeW:     info.AddressModeW,
		MipLodBias:       info.MipLodBias,
		MinLod:           info.MinLod,
		MaxLod:           info.MaxLod,
		AnisotropyEnable: info.AnisotropyEnable,
		MaxAnisotropy:    info.MaxAnisotropy,
		CompareEnable:    info.CompareEnable,
		CompareOp:        info.CompareOp,
		BorderColor:      info.BorderColor,
	}
	if info.ReductionMode != core1_2.SamplerReductionModeWeightedAverage {
		createInfo.NextOptions = common.NextOptions{Next: core1_2.SamplerReductionModeCreateInfo{
			ReductionMode: info.ReductionMode,
		}}
	}

	sampler, res, err := d.driver.CreateSampler(d.options.AllocationCallbacks, createInfo)
	if err != nil {
		return driver.NullHandle, res, err
	}

	handle := d.mint()
	d.samplers.Put(handle, sampler)
	return driver.Sampler(handle), res, nil
}

func (d *Device) DestroySampler(handle driver.Sampler) {
	sampler := take(d.samplers, "sampler", uint64(handle))
	d.driver.DestroySampler(sampler, d.options.AllocationCallbacks)
}
