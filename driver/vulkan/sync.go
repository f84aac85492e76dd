package vulkan

import (
	"log/slog"
	"time"

	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/core1_2"
	"github.com/vkngwrapper/reclaim/driver"
)

type semaphore struct {
	semaphore core1_0.Semaphore
	timeline  bool
}

func (d *Device) putSemaphore(s semaphore) driver.Semaphore {
	d.semaphoreMutex.Lock()
	defer d.semaphoreMutex.Unlock()

	handle := d.mint()
	d.semaphores.Put(handle, s)
	return driver.Semaphore(handle)
}

func (d *Device) semaphore(handle driver.Semaphore) semaphore {
	d.semaphoreMutex.RLock()
	defer d.semaphoreMutex.RUnlock()

	return lookup(d.semaphores, "semaphore", uint64(handle))
}

func (d *Device) CreateTimelineSemaphore(initialValue uint64) (driver.Semaphore, common.VkResult, error) {
	sem, res, err := d.driver.CreateSemaphore(d.options.AllocationCallbacks, core1_0.SemaphoreCreateInfo{
		NextOptions: common.NextOptions{Next: core1_2.SemaphoreTypeCreateInfo{
			SemaphoreType: core1_2.SemaphoreTypeTimeline,
			InitialValue:  initialValue,
		}},
	})
	if err != nil {
		return driver.NullHandle, res, err
	}

	handle := d.putSemaphore(semaphore{semaphore: sem, timeline: true})
	d.logger.Debug("VulkanDevice::CreateTimelineSemaphore", slog.Uint64("handle", uint64(handle)), slog.Uint64("initialValue", initialValue))
	return handle, res, nil
}

func (d *Device) CreateSemaphore() (driver.Semaphore, common.VkResult, error) {
	sem, res, err := d.driver.CreateSemaphore(d.options.AllocationCallbacks, core1_0.SemaphoreCreateInfo{})
	if err != nil {
		return driver.NullHandle, res, err
	}
	return d.putSemaphore(semaphore{semaphore: sem}), res, nil
}

func (d *Device) SemaphoreCounterValue(handle driver.Semaphore) (uint64, common.VkResult, error) {
	return d.driver.GetSemaphoreCounterValue(d.semaphore(handle).semaphore)
}

func (d *Device) WaitSemaphore(handle driver.Semaphore, value uint64, timeout time.Duration) (common.VkResult, error) {
	res, err := d.driver.WaitSemaphores(timeout, core1_2.SemaphoreWaitInfo{
		Semaphores: []core1_0.Semaphore{d.semaphore(handle).semaphore},
		Values:     []uint64{value},
	})
	if res == core1_0.VKTimeout {
		return res, nil
	}
	return res, err
}

func (d *Device) DestroySemaphore(handle driver.Semaphore) {
	d.semaphoreMutex.Lock()
	sem := take(d.semaphores, "semaphore", uint64(handle))
	d.semaphoreMutex.Unlock()

	d.driver.DestroySemaphore(sem.semaphore, d.options.AllocationCallbacks)
}

func (d *Device) CreateFence() (driver.Fence, common.VkResult, error) {
	fence, res, err := d.driver.CreateFence(d.options.AllocationCallbacks, core1_0.FenceCreateInfo{})
	if err != nil {
		return driver.NullHandle, res, err
	}

	handle := d.mint()
	d.fences.Put(handle, fence)
	return driver.Fence(handle), res, nil
}

func (d *Device) DestroyFence(handle driver.Fence) {
	fence := take(d.fences, "fence", uint64(handle))
	d.driver.DestroyFence(fence, d.options.AllocationCallbacks)
}

func (d *Device) WaitForFence(handle driver.Fence, timeout time.Duration) (common.VkResult, error) {
	res, err := d.driver.WaitForFences(true, timeout, lookup(d.fences, "fence", uint64(handle)))
	if res == core1_0.VKTimeout {
		return res, nil
	}
	return res, err
}

func (d *Device) semaphoreSubmits(submits []driver.SemaphoreSubmit) ([]core1_0.Semaphore, []uint64, []core1_0.PipelineStageFlags, bool) {
	var semaphores []core1_0.Semaphore
	var values []uint64
	var stages []core1_0.PipelineStageFlags
	timeline := false

	for _, submit := range submits {
		sem := d.semaphore(submit.Semaphore)
		timeline = timeline || sem.timeline

		semaphores = append(semaphores, sem.semaphore)
		values = append(values, submit.Value)
		stages = append(stages, submit.Stages)
	}
	return semaphores, values, stages, timeline
}

// QueueSubmit issues one vkQueueSubmit per fence. Submits without a fence are batched with the next
// submit that has one, and any remaining at the end are issued without a fence.
func (d *Device) QueueSubmit(submits []driver.SubmitInfo) (common.VkResult, error) {
	var batch []core1_0.SubmitInfo

	for _, submit := range submits {
		var commandBuffers []core1_0.CommandBuffer
		for _, cmd := range submit.CommandBuffers {
			commandBuffers = append(commandBuffers, d.commandBuffer(cmd))
		}

		waitSemaphores, waitValues, waitStages, waitTimeline := d.semaphoreSubmits(submit.WaitSemaphores)
		signalSemaphores, signalValues, _, signalTimeline := d.semaphoreSubmits(submit.SignalSemaphores)

		info := core1_0.SubmitInfo{
			CommandBuffers:   commandBuffers,
			WaitSemaphores:   waitSemaphores,
			WaitDstStageMask: waitStages,
			SignalSemaphores: signalSemaphores,
		}
		if waitTimeline || signalTimeline {
			info.NextOptions = common.NextOptions{Next: core1_2.TimelineSemaphoreSubmitInfo{
				WaitSemaphoreValues:   waitValues,
				SignalSemaphoreValues: signalValues,
			}}
		}
		batch = append(batch, info)

		if submit.Fence != driver.NullHandle {
			fence := lookup(d.fences, "fence", uint64(submit.Fence))
			res, err := d.driver.QueueSubmit(d.queue, &fence, batch...)
			if err != nil {
				return res, err
			}
			batch = nil
		}
	}

	if len(batch) == 0 {
		return core1_0.VKSuccess, nil
	}
	return d.driver.QueueSubmit(d.queue, nil, batch...)
}
