package vulkan

import (
	"encoding/binary"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/reclaim/driver"
)

type pipeline struct {
	pipeline  core1_0.Pipeline
	bindPoint core1_0.PipelineBindPoint
	layout    core1_0.PipelineLayout
}

// spirvWords reinterprets little-endian SPIR-V bytes as words
func spirvWords(code []byte) ([]uint32, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, errors.Newf("shader code of %d bytes is not a whole number of words", len(code))
	}

	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return words, nil
}

// heapLayout returns the pipeline layout of the descriptor heap. Pipelines are laid out against the
// bindless set, so the heap must exist before any pipeline does.
func (d *Device) heapLayout() (core1_0.PipelineLayout, bool) {
	var layout core1_0.PipelineLayout
	found := false
	d.heaps.Iter(func(_ uint64, heap *descriptorHeap) bool {
		layout = heap.pipelineLayout
		found = true
		return true
	})
	return layout, found
}

// CreatePipeline creates compute pipelines from SPIR-V with a "main" entry point. Graphics
// pipelines render through dynamic rendering, which this adapter does not provide.
func (d *Device) CreatePipeline(info driver.PipelineCreateInfo) (driver.Pipeline, common.VkResult, error) {
	if info.BindPoint != core1_0.PipelineBindPointCompute {
		return driver.NullHandle, core1_0.VKErrorFeatureNotPresent, errors.Wrapf(core1_0.VKErrorFeatureNotPresent.ToError(),
			"pipeline %q: %s pipelines need VK_KHR_dynamic_rendering", info.Name, info.BindPoint)
	}

	layout, ok := d.heapLayout()
	if !ok {
		return driver.NullHandle, core1_0.VKErrorInitializationFailed, errors.Wrapf(core1_0.VKErrorInitializationFailed.ToError(),
			"pipeline %q created before the descriptor heap", info.Name)
	}

	code, err := spirvWords(info.Code)
	if err != nil {
		return driver.NullHandle, core1_0.VKErrorInitializationFailed, errors.Wrapf(err, "pipeline %q", info.Name)
	}

	module, res, err := d.driver.CreateShaderModule(d.options.AllocationCallbacks, core1_0.ShaderModuleCreateInfo{
		Code: code,
	})
	if err != nil {
		return driver.NullHandle, res, errors.Wrapf(err, "pipeline %q: failed to create shader module", info.Name)
	}
	defer d.driver.DestroyShaderModule(module, d.options.AllocationCallbacks)

	pipelines, res, err := d.driver.CreateComputePipelines(nil, d.options.AllocationCallbacks, core1_0.ComputePipelineCreateInfo{
		Stage: core1_0.PipelineShaderStageCreateInfo{
			Name:   "main",
			Stage:  core1_0.StageCompute,
			Module: module,
		},
		Layout: layout,
	})
	if err != nil {
		return driver.NullHandle, res, errors.Wrapf(err, "pipeline %q", info.Name)
	}

	handle := d.mint()
	d.pipelines.Put(handle, &pipeline{
		pipeline:  pipelines[0],
		bindPoint: info.BindPoint,
		layout:    layout,
	})

	d.logger.Debug("VulkanDevice::CreatePipeline",
		slog.Uint64("handle", handle),
		slog.String("name", info.Name),
	)
	return driver.Pipeline(handle), res, nil
}

func (d *Device) DestroyPipeline(handle driver.Pipeline) {
	p := take(d.pipelines, "pipeline", uint64(handle))
	d.driver.DestroyPipeline(p.pipeline, d.options.AllocationCallbacks)
}
