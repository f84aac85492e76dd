// Package reclaim is a bindless GPU device layer that defers the destruction of every GPU object
// until the GPU is done with it.
//
// A Device owns a single timeline queue. Each submitted CommandList advances the queue's timeline,
// and each destroyed Resource is handed to a recycler that waits for the timestamps of every
// submission that could have referenced it. Device.GarbageCollect, called once per frame, releases
// whatever the GPU has finished with. Nothing in the package blocks on a destruction, and nothing
// in it is safe for concurrent use.
package reclaim

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/reclaim/driver"
)

const queryPoolCapacity = 512

// Device is the root of the bindless layer
type Device struct {
	logger  *slog.Logger
	driver  driver.Driver
	options CreateOptions
	props   driver.DeviceProperties

	queue        *Queue
	heap         *DescriptorHeap
	recyclerHead *recycler

	// prologue receives commands that must run before the next submitted command list, such as the
	// initial layout transition of new images
	prologue *CommandList

	queryPools [2]driver.QueryPool
	programs   *swiss.Map[string, *Pipeline]
}

// New creates a Device over an open driver. The Device takes ownership of the driver and destroys
// it in Device.Destroy.
func New(logger *slog.Logger, drv driver.Driver, options CreateOptions) (*Device, error) {
	options.setDefaults()

	d := &Device{
		logger:       logger,
		driver:       drv,
		options:      options,
		props:        drv.Properties(),
		recyclerHead: &recycler{},
		programs:     swiss.NewMap[string, *Pipeline](16),
	}

	timeline, res, err := drv.CreateTimelineSemaphore(0)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create queue timeline (%v)", res)
	}
	d.queue = &Queue{device: d, timeline: timeline, nextSubmitTimestamp: 1}

	heap, err := newDescriptorHeap(d)
	if err != nil {
		drv.DestroySemaphore(timeline)
		return nil, err
	}
	d.heap = heap

	logger.Debug("Device::New",
		slog.String("device", d.props.DeviceName),
		slog.Bool("rayTracing", d.RayTracingEnabled()),
		slog.Int("maxImages", options.MaxImages),
	)
	return d, nil
}

// check reports a driver failure to the fatal handler. It returns nil when the call succeeded, and
// the failure otherwise, for callers whose handler returns instead of panicking.
func (d *Device) check(op string, res common.VkResult, err error) error {
	if err == nil && res >= 0 {
		return nil
	}
	if err == nil {
		err = res.ToError()
	}

	d.logger.LogAttrs(context.Background(), slog.LevelError, op+" failed",
		slog.Any("result", res),
		slog.Any("error", err),
	)
	d.options.FatalHandler(&FatalError{Op: op, Result: res, Err: err})
	return err
}

func (d *Device) Driver() driver.Driver {
	return d.driver
}

func (d *Device) Logger() *slog.Logger {
	return d.logger
}

func (d *Device) Properties() driver.DeviceProperties {
	return d.props
}

func (d *Device) Queue() *Queue {
	return d.queue
}

func (d *Device) DescriptorHeap() *DescriptorHeap {
	return d.heap
}

// RayTracingEnabled is true when the driver supports acceleration structures and they were not
// disabled with DeviceCreateDisableRayTracing
func (d *Device) RayTracingEnabled() bool {
	return d.props.RayTracing && d.options.Flags&DeviceCreateDisableRayTracing == 0
}

// prologueList returns the pending prologue command list, beginning one if needed. It is submitted
// ahead of the next command list.
func (d *Device) prologueList() *CommandList {
	if d.prologue == nil {
		d.prologue = d.CreateCommandList()
	}
	return d.prologue
}

func (d *Device) queryPool(queryType driver.QueryType) driver.QueryPool {
	if d.queryPools[queryType] == driver.NullHandle {
		pool, res, err := d.driver.CreateQueryPool(queryType, queryPoolCapacity)
		if d.check("Device::CreateQueryPool", res, err) != nil {
			return driver.NullHandle
		}
		d.queryPools[queryType] = pool
	}
	return d.queryPools[queryType]
}

// Program returns the pipeline cached under desc.Name, creating it on first use. Cached pipelines
// belong to the device and are released by Device.Destroy, destroying one panics.
func (d *Device) Program(desc PipelineDesc) *Pipeline {
	if pipeline, ok := d.programs.Get(desc.Name); ok {
		return pipeline
	}

	pipeline := d.CreatePipeline(desc)
	pipeline.cached = true
	d.programs.Put(desc.Name, pipeline)
	return pipeline
}

// Destroy waits for the GPU to go idle, releases every pending resource and the device's own
// objects, and destroys the driver. Every command list must have been submitted or destroyed.
// Teardown continues if the wait fails and the fatal handler returns.
func (d *Device) Destroy() {
	res, err := d.driver.DeviceWaitIdle()
	_ = d.check("Device::Destroy", res, err)

	if d.prologue != nil {
		prologue := d.prologue
		d.prologue = nil
		d.DestroyNow(prologue)
	}

	for r := d.recyclerHead; r != nil; r = r.next {
		if r.refCount != 0 {
			panic(errors.Newf("device destroyed while %d command lists are still recording against a recycler with %d entries", r.refCount, len(r.entries)))
		}
	}

	released := 0
	for r := d.recyclerHead; r != nil; r = r.next {
		released += d.flush(r)
	}
	d.recyclerHead = &recycler{}

	d.programs.Iter(func(_ string, pipeline *Pipeline) bool {
		pipeline.released = true
		pipeline.release()
		return false
	})
	d.programs.Clear()

	d.heap.destroy()
	for i, pool := range d.queryPools {
		if pool != driver.NullHandle {
			d.driver.DestroyQueryPool(pool)
			d.queryPools[i] = driver.NullHandle
		}
	}
	d.driver.DestroySemaphore(d.queue.timeline)

	d.logger.Debug("Device::Destroy", slog.Int("released", released))
	d.driver.Destroy()
}

// BuildStatsString describes the queue, descriptor heap and recycler chain as a json document
func (d *Device) BuildStatsString() string {
	writer := jwriter.NewWriter()
	obj := writer.Object()

	obj.Name("Device").String(d.props.DeviceName)
	obj.Name("NextSubmitTimestamp").Int(int(d.queue.nextSubmitTimestamp))
	obj.Name("CompletedTimestamp").Int(int(d.queue.CompletedTimestamp()))
	obj.Name("Programs").Int(d.programs.Count())

	heapObj := obj.Name("DescriptorHeap").Object()
	d.heap.writeStats(&heapObj)
	heapObj.End()

	d.writeRecyclerStats(&obj)
	obj.End()

	return string(writer.Bytes())
}
