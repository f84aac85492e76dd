package simgpu

import (
	"log/slog"
	"math/bits"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/reclaim/driver"
)

type buffer struct {
	object
	size       int
	usage      core1_0.BufferUsageFlags
	properties core1_0.MemoryPropertyFlags
	address    uint64
	data       []byte
}

func (b *buffer) hostVisible() bool {
	return b.properties&core1_0.MemoryPropertyHostVisible != 0
}

type image struct {
	object
	info driver.ImageCreateInfo
}

type imageView struct {
	object
	image driver.Image
	info  driver.ImageViewCreateInfo
}

type sampler struct {
	object
	info driver.SamplerCreateInfo
}

type descriptorSet struct {
	object
	info     driver.DescriptorHeapCreateInfo
	sampled  []driver.ImageView
	storage  []driver.ImageView
	samplers []driver.Sampler
}

type pipeline struct {
	object
	info driver.PipelineCreateInfo
}

type queryPool struct {
	object
	queryType driver.QueryType
	results   []uint64
	available []bool
}

func (d *Device) memoryTypes() []core1_0.MemoryPropertyFlags {
	hostCoherent := core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent
	if d.options.DiscreteMemory {
		return []core1_0.MemoryPropertyFlags{
			core1_0.MemoryPropertyDeviceLocal,
			hostCoherent,
			hostCoherent | core1_0.MemoryPropertyHostCached,
		}
	}

	return []core1_0.MemoryPropertyFlags{
		core1_0.MemoryPropertyDeviceLocal | hostCoherent,
		hostCoherent | core1_0.MemoryPropertyHostCached,
	}
}

// findMemoryType picks the first memory type holding every required property with the most
// preferred properties
func (d *Device) findMemoryType(required, preferred core1_0.MemoryPropertyFlags) (core1_0.MemoryPropertyFlags, bool) {
	bestScore := -1
	var best core1_0.MemoryPropertyFlags

	for _, props := range d.memoryTypes() {
		if props&required != required {
			continue
		}

		score := bits.OnesCount32(uint32(props & preferred))
		if score > bestScore {
			bestScore = score
			best = props
		}
	}

	return best, bestScore >= 0
}

func (d *Device) CreateBuffer(info driver.BufferCreateInfo) (driver.Buffer, driver.BufferAllocation, common.VkResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if info.Size <= 0 {
		return driver.NullHandle, driver.BufferAllocation{}, core1_0.VKErrorUnknown, errors.Newf("invalid buffer size %d", info.Size)
	}
	if info.Size > d.options.MaxBufferSize {
		return driver.NullHandle, driver.BufferAllocation{}, core1_0.VKErrorOutOfDeviceMemory, core1_0.VKErrorOutOfDeviceMemory.ToError()
	}

	required := info.RequiredProperties
	if info.Mapped && !info.AllowTransferInstead {
		required |= core1_0.MemoryPropertyHostVisible
	}
	props, found := d.findMemoryType(required, info.PreferredProperties)
	if !found {
		return driver.NullHandle, driver.BufferAllocation{}, core1_0.VKErrorFeatureNotPresent, errors.Wrapf(core1_0.VKErrorFeatureNotPresent.ToError(),
			"no memory type has properties %s", required)
	}

	if info.Alignment > addressAlignment && d.nextAddress%uint64(info.Alignment) != 0 {
		d.nextAddress += uint64(info.Alignment) - d.nextAddress%uint64(info.Alignment)
	}

	buf := &buffer{
		size:       info.Size,
		usage:      info.Usage,
		properties: props,
		address:    d.allocateAddress(info.Size),
		data:       make([]byte, info.Size),
	}
	handle := register(d, kindBuffer, buf)

	alloc := driver.BufferAllocation{
		DeviceAddress: buf.address,
		Properties:    props,
	}
	if info.Mapped && buf.hostVisible() {
		alloc.Mapped = buf.data
	}

	d.logger.Debug("simgpu::CreateBuffer", slog.Uint64("handle", handle), slog.Int("size", info.Size), slog.String("properties", props.String()))
	return driver.Buffer(handle), alloc, core1_0.VKSuccess, nil
}

func (d *Device) DestroyBuffer(buf driver.Buffer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	unregister(d, "DestroyBuffer", uint64(buf))
}

func (d *Device) mappedRange(op string, handle driver.Buffer, offset, size int) (*buffer, bool) {
	buf := lookup[*buffer](d, op, uint64(handle))
	if buf == nil {
		return nil, false
	}
	if !buf.hostVisible() {
		d.violate(op, "%s is not host visible", buf)
		return nil, false
	}
	if size == common.WholeSize {
		size = buf.size - offset
	}
	if offset < 0 || size < 0 || offset+size > buf.size {
		d.violate(op, "range [%d, %d) is outside %s of size %d", offset, offset+size, buf, buf.size)
		return nil, false
	}

	return buf, true
}

func (d *Device) FlushBuffer(buf driver.Buffer, offset, size int) (common.VkResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.mappedRange("FlushBuffer", buf, offset, size); !ok {
		return core1_0.VKErrorMemoryMapFailed, core1_0.VKErrorMemoryMapFailed.ToError()
	}
	d.stats.Flushes++
	return core1_0.VKSuccess, nil
}

func (d *Device) InvalidateBuffer(buf driver.Buffer, offset, size int) (common.VkResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.mappedRange("InvalidateBuffer", buf, offset, size); !ok {
		return core1_0.VKErrorMemoryMapFailed, core1_0.VKErrorMemoryMapFailed.ToError()
	}
	d.stats.Invalidations++
	return core1_0.VKSuccess, nil
}

// BufferContents returns a copy of a buffer's memory as the device sees it, whether or not the
// buffer is host visible
func (d *Device) BufferContents(buf driver.Buffer) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	b := lookup[*buffer](d, "BufferContents", uint64(buf))
	if b == nil {
		return nil
	}
	return append([]byte(nil), b.data...)
}

// resolveAddress finds the buffer holding the device address range [address, address+size)
func (d *Device) resolveAddress(op string, address uint64, size int) (*buffer, int) {
	var found *buffer
	d.objects.Iter(func(_ uint64, obj tracked) bool {
		buf, ok := obj.(*buffer)
		if ok && address >= buf.address && address < buf.address+uint64(buf.size) {
			found = buf
			return true
		}
		return false
	})

	if found == nil {
		d.violate(op, "device address %#x does not belong to a live buffer", address)
		return nil, 0
	}

	offset := int(address - found.address)
	if offset+size > found.size {
		d.violate(op, "device address range [%#x, %#x) overruns %s", address, address+uint64(size), found)
		return nil, 0
	}
	return found, offset
}

func (d *Device) CreateImage(info driver.ImageCreateInfo) (driver.Image, common.VkResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if info.Extent.Width <= 0 || info.Extent.Height <= 0 || info.Extent.Depth <= 0 {
		return driver.NullHandle, core1_0.VKErrorUnknown, errors.Newf("invalid image extent %+v", info.Extent)
	}
	if info.MipLevels < 1 || info.ArrayLayers < 1 {
		return driver.NullHandle, core1_0.VKErrorUnknown, errors.Newf("image must have at least one mip level and layer, got %d and %d",
			info.MipLevels, info.ArrayLayers)
	}
	if info.CubeCompatible && info.ArrayLayers%6 != 0 {
		return driver.NullHandle, core1_0.VKErrorUnknown, errors.Newf("cube compatible image has %d layers", info.ArrayLayers)
	}

	handle := register(d, kindImage, &image{info: info})
	return driver.Image(handle), core1_0.VKSuccess, nil
}

func (d *Device) DestroyImage(img driver.Image) {
	d.mu.Lock()
	defer d.mu.Unlock()

	unregister(d, "DestroyImage", uint64(img))
}

func (d *Device) CreateImageView(info driver.ImageViewCreateInfo) (driver.ImageView, common.VkResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	img := lookup[*image](d, "CreateImageView", uint64(info.Image))
	if img == nil {
		return driver.NullHandle, core1_0.VKErrorUnknown, errors.Newf("image %d is not a live image", info.Image)
	}

	r := info.Range
	if r.LevelCount < 1 || r.BaseMipLevel+r.LevelCount > img.info.MipLevels ||
		r.LayerCount < 1 || r.BaseArrayLayer+r.LayerCount > img.info.ArrayLayers {
		d.violate("CreateImageView", "subresource range %+v is outside %s", r, img)
	}

	handle := register(d, kindImageView, &imageView{image: info.Image, info: info})
	return driver.ImageView(handle), core1_0.VKSuccess, nil
}

func (d *Device) DestroyImageView(view driver.ImageView) {
	d.mu.Lock()
	defer d.mu.Unlock()

	unregister(d, "DestroyImageView", uint64(view))
}

func (d *Device) CreateSampler(info driver.SamplerCreateInfo) (driver.Sampler, common.VkResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if info.AnisotropyEnable && info.MaxAnisotropy > d.options.MaxSamplerAnisotropy {
		d.violate("CreateSampler", "anisotropy %g exceeds device limit %g", info.MaxAnisotropy, d.options.MaxSamplerAnisotropy)
	}

	handle := register(d, kindSampler, &sampler{info: info})
	return driver.Sampler(handle), core1_0.VKSuccess, nil
}

func (d *Device) DestroySampler(s driver.Sampler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	unregister(d, "DestroySampler", uint64(s))
}

// SamplerInfo returns the create info of a live sampler
func (d *Device) SamplerInfo(s driver.Sampler) (driver.SamplerCreateInfo, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	obj, ok := d.objects.Get(uint64(s))
	if !ok {
		return driver.SamplerCreateInfo{}, false
	}
	smp, ok := obj.(*sampler)
	if !ok {
		return driver.SamplerCreateInfo{}, false
	}
	return smp.info, true
}

func (d *Device) CreateDescriptorHeap(info driver.DescriptorHeapCreateInfo) (driver.DescriptorSet, common.VkResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if info.MaxImages <= 0 || info.MaxSamplers <= 0 {
		return driver.NullHandle, core1_0.VKErrorUnknown, errors.Newf("descriptor heap needs room for images and samplers, got %d and %d",
			info.MaxImages, info.MaxSamplers)
	}
	for _, immutable := range info.ImmutableSamplers {
		if lookup[*sampler](d, "CreateDescriptorHeap", uint64(immutable)) == nil {
			return driver.NullHandle, core1_0.VKErrorUnknown, errors.Newf("immutable sampler %d is not a live sampler", immutable)
		}
	}

	set := &descriptorSet{
		info:     info,
		sampled:  make([]driver.ImageView, info.MaxImages),
		storage:  make([]driver.ImageView, info.MaxImages),
		samplers: make([]driver.Sampler, info.MaxSamplers),
	}
	set.info.ImmutableSamplers = append([]driver.Sampler(nil), info.ImmutableSamplers...)

	handle := register(d, kindDescriptorSet, set)
	return driver.DescriptorSet(handle), core1_0.VKSuccess, nil
}

func (d *Device) DestroyDescriptorHeap(set driver.DescriptorSet) {
	d.mu.Lock()
	defer d.mu.Unlock()

	unregister(d, "DestroyDescriptorHeap", uint64(set))
}

func (d *Device) WriteImageDescriptor(set driver.DescriptorSet, binding driver.DescriptorBinding, index uint32, view driver.ImageView) {
	d.mu.Lock()
	defer d.mu.Unlock()

	heap := lookup[*descriptorSet](d, "WriteImageDescriptor", uint64(set))
	if heap == nil || lookup[*imageView](d, "WriteImageDescriptor", uint64(view)) == nil {
		return
	}

	var table []driver.ImageView
	switch binding {
	case driver.BindingSampledImages:
		table = heap.sampled
	case driver.BindingStorageImages:
		table = heap.storage
	default:
		d.violate("WriteImageDescriptor", "binding %s does not hold images", binding)
		return
	}

	if int(index) >= len(table) {
		d.violate("WriteImageDescriptor", "index %d is outside binding %s of size %d", index, binding, len(table))
		return
	}
	table[index] = view
}

func (d *Device) WriteSamplerDescriptor(set driver.DescriptorSet, index uint32, s driver.Sampler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	heap := lookup[*descriptorSet](d, "WriteSamplerDescriptor", uint64(set))
	if heap == nil || lookup[*sampler](d, "WriteSamplerDescriptor", uint64(s)) == nil {
		return
	}

	if int(index) >= len(heap.samplers) {
		d.violate("WriteSamplerDescriptor", "index %d is outside a sampler binding of size %d", index, len(heap.samplers))
		return
	}
	heap.samplers[index] = s
}

// ImageDescriptor returns the view last written to an image binding slot
func (d *Device) ImageDescriptor(set driver.DescriptorSet, binding driver.DescriptorBinding, index uint32) driver.ImageView {
	d.mu.Lock()
	defer d.mu.Unlock()

	heap := lookup[*descriptorSet](d, "ImageDescriptor", uint64(set))
	if heap == nil {
		return driver.NullHandle
	}

	switch {
	case binding == driver.BindingSampledImages && int(index) < len(heap.sampled):
		return heap.sampled[index]
	case binding == driver.BindingStorageImages && int(index) < len(heap.storage):
		return heap.storage[index]
	}
	return driver.NullHandle
}

// SamplerDescriptor returns the sampler last written to the dynamic sampler binding
func (d *Device) SamplerDescriptor(set driver.DescriptorSet, index uint32) driver.Sampler {
	d.mu.Lock()
	defer d.mu.Unlock()

	heap := lookup[*descriptorSet](d, "SamplerDescriptor", uint64(set))
	if heap == nil || int(index) >= len(heap.samplers) {
		return driver.NullHandle
	}
	return heap.samplers[index]
}

func (d *Device) CreatePipeline(info driver.PipelineCreateInfo) (driver.Pipeline, common.VkResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(info.Code) == 0 {
		return driver.NullHandle, core1_0.VKErrorInitializationFailed, errors.Wrapf(core1_0.VKErrorInitializationFailed.ToError(),
			"pipeline %q has no shader code", info.Name)
	}

	handle := register(d, kindPipeline, &pipeline{info: info})
	return driver.Pipeline(handle), core1_0.VKSuccess, nil
}

func (d *Device) DestroyPipeline(p driver.Pipeline) {
	d.mu.Lock()
	defer d.mu.Unlock()

	unregister(d, "DestroyPipeline", uint64(p))
}

func (d *Device) CreateQueryPool(queryType driver.QueryType, count int) (driver.QueryPool, common.VkResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if count <= 0 {
		return driver.NullHandle, core1_0.VKErrorUnknown, errors.Newf("invalid query count %d", count)
	}

	handle := register(d, kindQueryPool, &queryPool{
		queryType: queryType,
		results:   make([]uint64, count),
		available: make([]bool, count),
	})
	return driver.QueryPool(handle), core1_0.VKSuccess, nil
}

func (d *Device) DestroyQueryPool(pool driver.QueryPool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	unregister(d, "DestroyQueryPool", uint64(pool))
}
