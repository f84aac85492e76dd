// Package vulkan implements driver.Driver over a Vulkan 1.2 device opened through vkngwrapper. Every
// handle the bindless device sees is minted here and maps to the core objects behind it.
//
// Acceleration structures and dynamic rendering are provided by extensions that vkngwrapper/core
// does not wrap, so Properties reports RayTracing as false and those entry points are unavailable.
package vulkan

import (
	"log/slog"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/core1_2"
	"github.com/vkngwrapper/core/v3/loader"
	"github.com/vkngwrapper/reclaim/driver"
)

type Options struct {
	QueueFamilyIndex int
	QueueIndex       int

	AllocationCallbacks *loader.AllocationCallbacks
	// MemoryPriority is attached to every allocation when VK_EXT_memory_priority is active. It
	// defaults to 0.5.
	MemoryPriority float32
}

// Device adapts a core1_2.CoreDeviceDriver to driver.Driver. The core device itself belongs to the
// caller and outlives Destroy.
type Device struct {
	logger     *slog.Logger
	driver     core1_2.CoreDeviceDriver
	options    Options
	extensions *ExtensionData

	props            driver.DeviceProperties
	limits           *core1_0.PhysicalDeviceLimits
	memoryProperties *core1_0.PhysicalDeviceMemoryProperties

	queue       core1_0.Queue
	commandPool core1_0.CommandPool

	nextHandle     uint64
	buffers        *swiss.Map[uint64, *buffer]
	images         *swiss.Map[uint64, *image]
	imageViews     *swiss.Map[uint64, core1_0.ImageView]
	samplers       *swiss.Map[uint64, core1_0.Sampler]
	heaps          *swiss.Map[uint64, *descriptorHeap]
	pipelines      *swiss.Map[uint64, *pipeline]
	commandBuffers *swiss.Map[uint64, core1_0.CommandBuffer]
	queryPools     *swiss.Map[uint64, core1_0.QueryPool]
	fences         *swiss.Map[uint64, core1_0.Fence]

	// semaphores may be read concurrently by SemaphoreCounterValue and WaitSemaphore
	semaphoreMutex sync.RWMutex
	semaphores     *swiss.Map[uint64, semaphore]
}

var _ driver.Driver = (*Device)(nil)

// New opens the adapter over drv. The device must support Vulkan 1.2 with the timelineSemaphore,
// bufferDeviceAddress and descriptorIndexing features enabled.
func New(logger *slog.Logger, drv core1_2.CoreDeviceDriver, physicalDevice core1_0.PhysicalDevice, options Options) (*Device, error) {
	device := drv.Device()
	if !device.APIVersion().IsAtLeast(common.Vulkan1_2) {
		return nil, errors.Newf("device version %s is older than %s", device.APIVersion(), common.Vulkan1_2)
	}
	if options.MemoryPriority == 0 {
		options.MemoryPriority = 0.5
	}

	properties, err := drv.InstanceDriver().GetPhysicalDeviceProperties(physicalDevice)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read physical device properties")
	}

	d := &Device{
		logger:           logger,
		driver:           drv,
		options:          options,
		extensions:       NewExtensionData(device),
		limits:           properties.Limits,
		memoryProperties: drv.InstanceDriver().GetPhysicalDeviceMemoryProperties(physicalDevice),

		nextHandle:     1,
		buffers:        swiss.NewMap[uint64, *buffer](64),
		images:         swiss.NewMap[uint64, *image](64),
		imageViews:     swiss.NewMap[uint64, core1_0.ImageView](64),
		samplers:       swiss.NewMap[uint64, core1_0.Sampler](64),
		heaps:          swiss.NewMap[uint64, *descriptorHeap](1),
		pipelines:      swiss.NewMap[uint64, *pipeline](16),
		commandBuffers: swiss.NewMap[uint64, core1_0.CommandBuffer](16),
		queryPools:     swiss.NewMap[uint64, core1_0.QueryPool](2),
		fences:         swiss.NewMap[uint64, core1_0.Fence](4),
		semaphores:     swiss.NewMap[uint64, semaphore](4),
	}
	d.props = driver.DeviceProperties{
		DeviceName:           properties.DriverName,
		MaxSamplerAnisotropy: properties.Limits.MaxSamplerAnisotropy,
		DriverUUID:           properties.PipelineCacheUUID,
		CompatibilityUUID:    properties.PipelineCacheUUID,
	}

	d.queue = drv.GetQueue(options.QueueFamilyIndex, options.QueueIndex)
	d.commandPool, _, err = drv.CreateCommandPool(options.AllocationCallbacks, core1_0.CommandPoolCreateInfo{
		QueueFamilyIndex: options.QueueFamilyIndex,
		Flags:            core1_0.CommandPoolCreateResetBuffer,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create command pool")
	}

	logger.Debug("VulkanDevice::New",
		slog.String("device", d.props.DeviceName),
		slog.String("version", device.APIVersion().String()),
		slog.Bool("memoryPriority", d.extensions.UseMemoryPriority),
	)
	return d, nil
}

func (d *Device) Properties() driver.DeviceProperties {
	return d.props
}

func (d *Device) DeviceWaitIdle() (common.VkResult, error) {
	return d.driver.DeviceWaitIdle()
}

// Destroy releases the command pool, and with it every command buffer. Objects the caller never
// destroyed are logged and released as well.
func (d *Device) Destroy() {
	leaked := d.buffers.Count() + d.images.Count() + d.imageViews.Count() + d.samplers.Count() +
		d.heaps.Count() + d.pipelines.Count() + d.queryPools.Count() + d.fences.Count() + d.semaphores.Count()
	if leaked > 0 {
		d.logger.Warn("VulkanDevice::Destroy released leaked objects", slog.Int("count", leaked))
	}

	for _, handle := range keys(d.pipelines) {
		d.DestroyPipeline(driver.Pipeline(handle))
	}
	for _, handle := range keys(d.heaps) {
		d.DestroyDescriptorHeap(driver.DescriptorSet(handle))
	}
	for _, handle := range keys(d.samplers) {
		d.DestroySampler(driver.Sampler(handle))
	}
	for _, handle := range keys(d.imageViews) {
		d.DestroyImageView(driver.ImageView(handle))
	}
	for _, handle := range keys(d.images) {
		d.DestroyImage(driver.Image(handle))
	}
	for _, handle := range keys(d.buffers) {
		d.DestroyBuffer(driver.Buffer(handle))
	}
	for _, handle := range keys(d.queryPools) {
		d.DestroyQueryPool(driver.QueryPool(handle))
	}
	for _, handle := range keys(d.fences) {
		d.DestroyFence(driver.Fence(handle))
	}
	for _, handle := range keys(d.semaphores) {
		d.DestroySemaphore(driver.Semaphore(handle))
	}

	d.commandBuffers.Clear()
	d.driver.DestroyCommandPool(d.commandPool, d.options.AllocationCallbacks)
}

func (d *Device) mint() uint64 {
	handle := d.nextHandle
	d.nextHandle++
	return handle
}

// lookup returns the object behind handle. Handles are only ever minted by this package, so an
// unknown handle is a programming error.
func lookup[T any](objects *swiss.Map[uint64, T], kind string, handle uint64) T {
	obj, ok := objects.Get(handle)
	if !ok {
		panic(errors.Newf("unknown %s handle %d", kind, handle))
	}
	return obj
}

// take removes and returns the object behind handle
func take[T any](objects *swiss.Map[uint64, T], kind string, handle uint64) T {
	obj := lookup(objects, kind, handle)
	objects.Delete(handle)
	return obj
}

func keys[T any](objects *swiss.Map[uint64, T]) []uint64 {
	handles := make([]uint64, 0, objects.Count())
	objects.Iter(func(handle uint64, _ T) bool {
		handles = append(handles, handle)
		return false
	})
	return handles
}
