// Package simgpu is a software implementation of driver.Driver. It executes recorded commands on
// host memory when a submission completes, and keeps a log of lifetime violations: objects destroyed
// while a pending submission still references them, handles used after destruction, and
// acceleration structures whose storage overlaps.
package simgpu

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/dolthub/swiss"
	"github.com/google/uuid"
	"github.com/vkngwrapper/reclaim/driver"
)

const (
	baseDeviceAddress = 0x10000000
	addressAlignment  = 256
)

type objectKind string

const (
	kindBuffer        objectKind = "Buffer"
	kindImage         objectKind = "Image"
	kindImageView     objectKind = "ImageView"
	kindSampler       objectKind = "Sampler"
	kindDescriptorSet objectKind = "DescriptorSet"
	kindPipeline      objectKind = "Pipeline"
	kindCommandBuffer objectKind = "CommandBuffer"
	kindAccelStruct   objectKind = "AccelStruct"
	kindQueryPool     objectKind = "QueryPool"
	kindSemaphore     objectKind = "Semaphore"
	kindFence         objectKind = "Fence"
)

type object struct {
	kind   objectKind
	handle uint64
	// pending counts references held by submitted, not yet completed command buffers
	pending int
}

func (o *object) header() *object { return o }

func (o *object) String() string {
	return fmt.Sprintf("%s(%d)", o.kind, o.handle)
}

type tracked interface {
	header() *object
}

// Stats counts work the device has executed
type Stats struct {
	Submissions   int
	Completed     int
	Draws         int
	Dispatches    int
	Builds        int
	Copies        int
	Flushes       int
	Invalidations int
}

// Device is a simulated GPU. All methods are safe for concurrent use.
type Device struct {
	logger  *slog.Logger
	options Options
	props   driver.DeviceProperties

	mu   sync.Mutex
	cond *sync.Cond

	nextHandle  uint64
	nextAddress uint64
	objects     *swiss.Map[uint64, tracked]
	destroyed   *swiss.Map[uint64, objectKind]

	queue      []*submission
	stats      Stats
	violations []string
}

var _ driver.Driver = (*Device)(nil)

func New(logger *slog.Logger, options Options) *Device {
	if options.MaxBufferSize <= 0 {
		options.MaxBufferSize = DefaultOptions().MaxBufferSize
	}

	d := &Device{
		logger:      logger,
		options:     options,
		nextHandle:  1,
		nextAddress: baseDeviceAddress,
		objects:     swiss.NewMap[uint64, tracked](64),
		destroyed:   swiss.NewMap[uint64, objectKind](64),
	}
	d.cond = sync.NewCond(&d.mu)
	d.props = driver.DeviceProperties{
		DeviceName:           options.DeviceName,
		MaxSamplerAnisotropy: options.MaxSamplerAnisotropy,
		RayTracing:           options.RayTracing,
		DriverUUID:           uuid.NewSHA1(uuid.NameSpaceOID, []byte("simgpu/driver/"+options.DeviceName)),
		CompatibilityUUID:    uuid.NewSHA1(uuid.NameSpaceOID, []byte("simgpu/accel/"+options.DeviceName)),
	}

	return d
}

func (d *Device) Properties() driver.DeviceProperties {
	return d.props
}

// Violations returns every lifetime violation observed so far
func (d *Device) Violations() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]string(nil), d.violations...)
}

func (d *Device) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.stats
}

// LiveObjects returns the number of objects that have been created and not destroyed
func (d *Device) LiveObjects() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.objects.Count()
}

// PendingSubmissions returns the number of submissions that have not completed
func (d *Device) PendingSubmissions() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.queue)
}

// Destroy drains the queue and records a violation for every object that was never destroyed
func (d *Device) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.completeAll()
	d.objects.Iter(func(handle uint64, obj tracked) bool {
		d.violate("Destroy", "leaked %s", obj.header())
		return false
	})
	d.objects.Clear()
}

func (d *Device) violate(op string, format string, args ...any) {
	msg := op + ": " + fmt.Sprintf(format, args...)
	d.violations = append(d.violations, msg)
	d.logger.Warn("simgpu::Violation", slog.String("violation", msg))
}

func register[T tracked](d *Device, kind objectKind, obj T) uint64 {
	handle := d.nextHandle
	d.nextHandle++

	header := obj.header()
	header.kind = kind
	header.handle = handle
	d.objects.Put(handle, obj)

	return handle
}

// lookup returns the live object behind handle, or nil after recording a violation
func lookup[T tracked](d *Device, op string, handle uint64) T {
	var zero T

	obj, ok := d.objects.Get(handle)
	if !ok {
		if kind, wasDestroyed := d.destroyed.Get(handle); wasDestroyed {
			d.violate(op, "use of destroyed %s(%d)", kind, handle)
		} else if handle != driver.NullHandle {
			d.violate(op, "use of unknown handle %d", handle)
		} else {
			d.violate(op, "use of null handle")
		}
		return zero
	}

	typed, ok := obj.(T)
	if !ok {
		d.violate(op, "%s used where %T was expected", obj.header(), zero)
		return zero
	}

	return typed
}

func unregister(d *Device, op string, handle uint64) {
	obj, ok := d.objects.Get(handle)
	if !ok {
		if kind, wasDestroyed := d.destroyed.Get(handle); wasDestroyed {
			d.violate(op, "double destroy of %s(%d)", kind, handle)
		} else if handle != driver.NullHandle {
			d.violate(op, "destroy of unknown handle %d", handle)
		}
		return
	}

	header := obj.header()
	if header.pending > 0 {
		d.violate(op, "%s destroyed while referenced by %d pending submission(s)", header, header.pending)
	}

	d.objects.Delete(handle)
	d.destroyed.Put(handle, header.kind)
}

func (d *Device) allocateAddress(size int) uint64 {
	address := d.nextAddress
	d.nextAddress += uint64((size + addressAlignment - 1) / addressAlignment * addressAlignment)
	if size == 0 {
		d.nextAddress += addressAlignment
	}
	return address
}
