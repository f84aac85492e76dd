package reclaim

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/reclaim/driver"
)

// PipelineDesc describes a pipeline built against the device's bindless layout
type PipelineDesc struct {
	Name      string
	BindPoint core1_0.PipelineBindPoint
	Code      []byte
}

type Pipeline struct {
	resourceBase

	handle    driver.Pipeline
	name      string
	bindPoint core1_0.PipelineBindPoint
	cached    bool
}

// CreatePipeline builds a pipeline. Failure is fatal.
func (d *Device) CreatePipeline(desc PipelineDesc) *Pipeline {
	pipeline := &Pipeline{
		resourceBase: resourceBase{device: d},
		name:         desc.Name,
		bindPoint:    desc.BindPoint,
	}

	handle, res, err := d.driver.CreatePipeline(driver.PipelineCreateInfo{
		Name:      desc.Name,
		BindPoint: desc.BindPoint,
		Code:      desc.Code,
	})
	if d.check("Device::CreatePipeline", res, err) != nil {
		return pipeline
	}
	pipeline.handle = handle

	d.logger.Debug("Device::CreatePipeline", slog.String("name", desc.Name))
	return pipeline
}

func (p *Pipeline) Handle() driver.Pipeline {
	return p.handle
}

func (p *Pipeline) Name() string {
	return p.name
}

func (p *Pipeline) BindPoint() core1_0.PipelineBindPoint {
	return p.bindPoint
}

func (p *Pipeline) Destroy() {
	if p.cached {
		panic(errors.Newf("pipeline %q is owned by the device's program cache", p.name))
	}
	p.device.enqueue(p)
}

func (p *Pipeline) release() {
	if p.handle != driver.NullHandle {
		p.device.driver.DestroyPipeline(p.handle)
	}
}
