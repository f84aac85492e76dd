package reclaim

import (
	"math/bits"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/core1_2"
	"github.com/vkngwrapper/reclaim/driver"
)

// ImageHandle is an image view's slot in the sampled and storage image arrays of the bindless
// descriptor set. 0 is never allocated, so that shaders can treat it as unbound.
type ImageHandle uint32

// SamplerHandle is a sampler's slot in the dynamic sampler array. Unlike ImageHandle, slots start
// at 0: the first dynamic sampler is handle 0, so 0 does not mean unbound.
type SamplerHandle uint32

// SamplerDesc describes a dynamic sampler. Identical descriptions share a slot.
type SamplerDesc driver.SamplerCreateInfo

// MinFilter selects the minification filter of an immutable sampler
type MinFilter int

const (
	MinFilterNearest MinFilter = iota
	MinFilterLinear
	MinFilterAnisotropic
)

const (
	immutableSamplerCount = 24
	immutableMaxLod       = 1000
)

var immutableWrapModes = [4]core1_0.SamplerAddressMode{
	core1_0.SamplerAddressModeRepeat,
	core1_0.SamplerAddressModeMirroredRepeat,
	core1_0.SamplerAddressModeClampToEdge,
	core1_2.SamplerAddressModeMirrorClampToEdge,
}

// ImmutableSamplerIndex returns the index in the immutable sampler array of the sampler with the
// given filters and wrap mode. Clamping to the border is not available.
func ImmutableSamplerIndex(mag core1_0.Filter, minFilter MinFilter, wrap core1_0.SamplerAddressMode) int {
	magIndex := 0
	if mag != core1_0.FilterNearest {
		magIndex = 1
	}

	wrapIndex := -1
	for i, mode := range immutableWrapModes {
		if mode == wrap {
			wrapIndex = i
		}
	}
	if wrapIndex < 0 {
		panic(errors.Newf("no immutable sampler wraps with %v", wrap))
	}

	return magIndex + 2*int(minFilter) + 6*wrapIndex
}

func immutableSamplerInfo(index int, maxAnisotropy float32) driver.SamplerCreateInfo {
	filters := [3]core1_0.Filter{core1_0.FilterNearest, core1_0.FilterLinear, core1_0.FilterLinear}
	wrap := immutableWrapModes[index/6%4]

	info := driver.SamplerCreateInfo{
		MagFilter:    filters[index%2],
		MinFilter:    filters[index/2%3],
		MipmapMode:   core1_0.SamplerMipmapModeLinear,
		AddressModeU: wrap,
		AddressModeV: wrap,
		AddressModeW: wrap,
		MaxLod:       immutableMaxLod,
	}
	if MinFilter(index/2%3) == MinFilterAnisotropic {
		info.AnisotropyEnable = true
		info.MaxAnisotropy = maxAnisotropy / 2
	}
	return info
}

// DescriptorHeap manages the device's single bindless descriptor set. Image views are given slots
// in the sampled and storage image arrays with a bitmap allocator, and dynamic samplers are
// deduplicated by description.
type DescriptorHeap struct {
	device *Device
	set    driver.DescriptorSet

	maxImages int
	used      []uint64
	// hint is the bitmap word the next search starts from
	hint  int
	count int

	immutableSamplers []driver.Sampler
	samplers          []driver.Sampler
	samplerIndex      *swiss.Map[driver.SamplerCreateInfo, SamplerHandle]
	maxSamplers       int
}

func newDescriptorHeap(d *Device) (*DescriptorHeap, error) {
	h := &DescriptorHeap{
		device:       d,
		maxImages:    d.options.MaxImages,
		maxSamplers:  d.options.MaxSamplers,
		hint:         1,
		samplerIndex: swiss.NewMap[driver.SamplerCreateInfo, SamplerHandle](16),
	}

	for i := 0; i < immutableSamplerCount; i++ {
		sampler, res, err := d.driver.CreateSampler(immutableSamplerInfo(i, d.props.MaxSamplerAnisotropy))
		if err != nil {
			h.destroy()
			return nil, errors.Wrapf(err, "failed to create immutable sampler %d (%v)", i, res)
		}
		h.immutableSamplers = append(h.immutableSamplers, sampler)
	}

	set, res, err := d.driver.CreateDescriptorHeap(driver.DescriptorHeapCreateInfo{
		MaxImages:         h.maxImages,
		MaxSamplers:       h.maxSamplers,
		ImmutableSamplers: h.immutableSamplers,
		PushConstantSize:  pushConstantSize,
	})
	if err != nil {
		h.destroy()
		return nil, errors.Wrapf(err, "failed to create descriptor heap (%v)", res)
	}
	h.set = set

	words := (h.maxImages + 63) / 64
	h.used = make([]uint64, words)
	h.used[0] = 1
	if tail := h.maxImages % 64; tail != 0 {
		h.used[words-1] |= ^uint64(0) << tail
	}

	return h, nil
}

func (h *DescriptorHeap) Set() driver.DescriptorSet {
	return h.set
}

// Capacity is the number of image handles that can be live at once
func (h *DescriptorHeap) Capacity() int {
	return h.maxImages - 1
}

// Used is the number of live image handles
func (h *DescriptorHeap) Used() int {
	return h.count
}

func (h *DescriptorHeap) IsAllocated(handle ImageHandle) bool {
	index := int(handle)
	if index <= 0 || index >= h.maxImages {
		return false
	}
	return h.used[index/64]&(1<<(index%64)) != 0
}

// CreateHandle gives view a slot, writing it to the sampled image array if usage includes
// core1_0.ImageUsageSampled and to the storage image array if it includes core1_0.ImageUsageStorage.
// It returns ErrDescriptorHeapFull when every slot is taken.
func (h *DescriptorHeap) CreateHandle(view driver.ImageView, usage core1_0.ImageUsageFlags) (ImageHandle, error) {
	words := len(h.used)
	for i := 0; i < words; i++ {
		wordIndex := (i + h.hint) % words
		word := h.used[wordIndex]
		if word == ^uint64(0) {
			continue
		}

		bit := bits.TrailingZeros64(^word)
		h.used[wordIndex] = word | 1<<bit
		h.hint = wordIndex
		h.count++

		index := uint32(wordIndex*64 + bit)
		if usage&core1_0.ImageUsageSampled != 0 {
			h.device.driver.WriteImageDescriptor(h.set, driver.BindingSampledImages, index, view)
		}
		if usage&core1_0.ImageUsageStorage != 0 {
			h.device.driver.WriteImageDescriptor(h.set, driver.BindingStorageImages, index, view)
		}
		return ImageHandle(index), nil
	}

	return 0, errors.Wrapf(ErrDescriptorHeapFull, "all %d image handles are in use", h.Capacity())
}

// DestroyHandle frees a slot. The slot's descriptors are left in place, the set is partially bound.
func (h *DescriptorHeap) DestroyHandle(handle ImageHandle) {
	index := int(handle)
	if index == 0 || index >= h.maxImages {
		panic(errors.Newf("image handle %d is not a valid slot", handle))
	}
	if !h.IsAllocated(handle) {
		panic(errors.Newf("image handle %d was freed twice", handle))
	}

	h.used[index/64] &^= 1 << (index % 64)
	h.count--
}

// GetSampler returns the dynamic sampler slot for desc, creating the sampler on first use. Samplers
// are never freed. ErrSamplerHeapFull is returned when a new sampler does not fit.
func (h *DescriptorHeap) GetSampler(desc SamplerDesc) (SamplerHandle, error) {
	info := driver.SamplerCreateInfo(desc)
	if handle, ok := h.samplerIndex.Get(info); ok {
		return handle, nil
	}

	if len(h.samplers) >= h.maxSamplers {
		return 0, errors.Wrapf(ErrSamplerHeapFull, "all %d samplers are in use", h.maxSamplers)
	}

	sampler, res, err := h.device.driver.CreateSampler(info)
	if err := h.device.check("DescriptorHeap::GetSampler", res, err); err != nil {
		return 0, err
	}

	handle := SamplerHandle(len(h.samplers))
	h.device.driver.WriteSamplerDescriptor(h.set, uint32(handle), sampler)
	h.samplers = append(h.samplers, sampler)
	h.samplerIndex.Put(info, handle)
	return handle, nil
}

func (h *DescriptorHeap) writeStats(json *jwriter.ObjectState) {
	json.Name("Capacity").Int(h.Capacity())
	json.Name("Used").Int(h.count)
	json.Name("Samplers").Int(len(h.samplers))
}

func (h *DescriptorHeap) destroy() {
	drv := h.device.driver
	if h.set != driver.NullHandle {
		drv.DestroyDescriptorHeap(h.set)
		h.set = driver.NullHandle
	}
	for _, sampler := range h.samplers {
		drv.DestroySampler(sampler)
	}
	for _, sampler := range h.immutableSamplers {
		drv.DestroySampler(sampler)
	}
	h.samplers = nil
	h.immutableSamplers = nil
	h.samplerIndex.Clear()
}
