package vulkan

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/core1_2"
	"github.com/vkngwrapper/reclaim/driver"
)

// descriptorHeap is the one bindless set along with the pipeline layout every pipeline shares
type descriptorHeap struct {
	layout         core1_0.DescriptorSetLayout
	pool           core1_0.DescriptorPool
	set            core1_0.DescriptorSet
	pipelineLayout core1_0.PipelineLayout
}

func heapBindings(info driver.DescriptorHeapCreateInfo, immutableSamplers []core1_0.Sampler) []core1_0.DescriptorSetLayoutBinding {
	return []core1_0.DescriptorSetLayoutBinding{
		{
			Binding:         int(driver.BindingSampledImages),
			DescriptorType:  core1_0.DescriptorTypeSampledImage,
			DescriptorCount: info.MaxImages,
			StageFlags:      core1_0.StageAll,
		},
		{
			Binding:         int(driver.BindingStorageImages),
			DescriptorType:  core1_0.DescriptorTypeStorageImage,
			DescriptorCount: info.MaxImages,
			StageFlags:      core1_0.StageAll,
		},
		{
			Binding:           int(driver.BindingImmutableSamplers),
			DescriptorType:    core1_0.DescriptorTypeSampler,
			DescriptorCount:   len(immutableSamplers),
			StageFlags:        core1_0.StageAll,
			ImmutableSamplers: immutableSamplers,
		},
		{
			Binding:         int(driver.BindingSamplers),
			DescriptorType:  core1_0.DescriptorTypeSampler,
			DescriptorCount: info.MaxSamplers,
			StageFlags:      core1_0.StageAll,
		},
	}
}

// CreateDescriptorHeap creates the bindless set layout, a pool holding exactly one set of it, the
// set itself and the pipeline layout. Every binding is partially bound and may be updated after bind.
func (d *Device) CreateDescriptorHeap(info driver.DescriptorHeapCreateInfo) (driver.DescriptorSet, common.VkResult, error) {
	immutableSamplers := make([]core1_0.Sampler, 0, len(info.ImmutableSamplers))
	for _, handle := range info.ImmutableSamplers {
		immutableSamplers = append(immutableSamplers, lookup(d.samplers, "sampler", uint64(handle)))
	}

	bindings := heapBindings(info, immutableSamplers)
	bindingFlags := make([]core1_2.DescriptorBindingFlags, len(bindings))
	for i := range bindingFlags {
		bindingFlags[i] = core1_2.DescriptorBindingPartiallyBound | core1_2.DescriptorBindingUpdateAfterBind
	}

	heap := &descriptorHeap{}
	var err error
	var res common.VkResult

	heap.layout, res, err = d.driver.CreateDescriptorSetLayout(d.options.AllocationCallbacks, core1_0.DescriptorSetLayoutCreateInfo{
		Flags:    core1_2.DescriptorSetLayoutCreateUpdateAfterBindPool,
		Bindings: bindings,
		NextOptions: common.NextOptions{Next: core1_2.DescriptorSetLayoutBindingFlagsCreateInfo{
			BindingFlags: bindingFlags,
		}},
	})
	if err != nil {
		return driver.NullHandle, res, errors.Wrap(err, "failed to create descriptor set layout")
	}

	poolSizes := make([]core1_0.DescriptorPoolSize, 0, len(bindings))
	for _, binding := range bindings {
		if binding.DescriptorCount == 0 {
			continue
		}
		poolSizes = append(poolSizes, core1_0.DescriptorPoolSize{
			Type:            binding.DescriptorType,
			DescriptorCount: binding.DescriptorCount,
		})
	}

	heap.pool, res, err = d.driver.CreateDescriptorPool(d.options.AllocationCallbacks, core1_0.DescriptorPoolCreateInfo{
		Flags:     core1_2.DescriptorPoolCreateUpdateAfterBind,
		MaxSets:   1,
		PoolSizes: poolSizes,
	})
	if err != nil {
		d.destroyHeap(heap)
		return driver.NullHandle, res, errors.Wrap(err, "failed to create descriptor pool")
	}

	sets, res, err := d.driver.AllocateDescriptorSets(core1_0.DescriptorSetAllocateInfo{
		DescriptorPool: heap.pool,
		SetLayouts:     []core1_0.DescriptorSetLayout{heap.layout},
	})
	if err != nil {
		d.destroyHeap(heap)
		return driver.NullHandle, res, errors.Wrap(err, "failed to allocate descriptor set")
	}
	heap.set = sets[0]

	heap.pipelineLayout, res, err = d.driver.CreatePipelineLayout(d.options.AllocationCallbacks, core1_0.PipelineLayoutCreateInfo{
		SetLayouts: []core1_0.DescriptorSetLayout{heap.layout},
		PushConstantRanges: []core1_0.PushConstantRange{
			{StageFlags: core1_0.StageAll, Offset: 0, Size: info.PushConstantSize},
		},
	})
	if err != nil {
		d.destroyHeap(heap)
		return driver.NullHandle, res, errors.Wrap(err, "failed to create pipeline layout")
	}

	handle := d.mint()
	d.heaps.Put(handle, heap)

	d.logger.Debug("VulkanDevice::CreateDescriptorHeap",
		slog.Uint64("handle", handle),
		slog.Int("maxImages", info.MaxImages),
		slog.Int("maxSamplers", info.MaxSamplers),
		slog.Int("immutableSamplers", len(immutableSamplers)),
	)
	return driver.DescriptorSet(handle), core1_0.VKSuccess, nil
}

// destroyHeap releases whatever part of heap has been created. The set is freed with its pool.
func (d *Device) destroyHeap(heap *descriptorHeap) {
	if heap.pipelineLayout.Initialized() {
		d.driver.DestroyPipelineLayout(heap.pipelineLayout, d.options.AllocationCallbacks)
	}
	if heap.pool.Initialized() {
		d.driver.DestroyDescriptorPool(heap.pool, d.options.AllocationCallbacks)
	}
	if heap.layout.Initialized() {
		d.driver.DestroyDescriptorSetLayout(heap.layout, d.options.AllocationCallbacks)
	}
}

func (d *Device) DestroyDescriptorHeap(set driver.DescriptorSet) {
	d.destroyHeap(take(d.heaps, "descriptor heap", uint64(set)))
}

func (d *Device) WriteImageDescriptor(set driver.DescriptorSet, binding driver.DescriptorBinding, index uint32, view driver.ImageView) {
	descriptorType := core1_0.DescriptorTypeSampledImage
	if binding == driver.BindingStorageImages {
		descriptorType = core1_0.DescriptorTypeStorageImage
	} else if binding != driver.BindingSampledImages {
		panic(errors.Newf("binding %s does not hold images", binding))
	}

	d.writeDescriptor(set, core1_0.WriteDescriptorSet{
		DstBinding:      int(binding),
		DstArrayElement: int(index),
		DescriptorType:  descriptorType,
		ImageInfo: []core1_0.DescriptorImageInfo{
			{
				ImageView:   lookup(d.imageViews, "image view", uint64(view)),
				ImageLayout: core1_0.ImageLayoutGeneral,
			},
		},
	})
}

func (d *Device) WriteSamplerDescriptor(set driver.DescriptorSet, index uint32, sampler driver.Sampler) {
	d.writeDescriptor(set, core1_0.WriteDescriptorSet{
		DstBinding:      int(driver.BindingSamplers),
		DstArrayElement: int(index),
		DescriptorType:  core1_0.DescriptorTypeSampler,
		ImageInfo: []core1_0.DescriptorImageInfo{
			{Sampler: lookup(d.samplers, "sampler", uint64(sampler))},
		},
	})
}

// writeDescriptor panics if the write is rejected. Writes are only rejected for invalid arguments,
// which the bindless device never produces.
func (d *Device) writeDescriptor(set driver.DescriptorSet, write core1_0.WriteDescriptorSet) {
	write.DstSet = lookup(d.heaps, "descriptor heap", uint64(set)).set

	err := d.driver.UpdateDescriptorSets([]core1_0.WriteDescriptorSet{write}, nil)
	if err != nil {
		panic(errors.Wrapf(err, "failed to write descriptor %d of binding %d", write.DstArrayElement, write.DstBinding))
	}
}
