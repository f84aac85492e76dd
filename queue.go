package reclaim

import (
	"log/slog"

	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/reclaim/driver"
)

// Queue is the device's single submission queue. Every submission signals the queue's timeline
// semaphore with the next timestamp, so the timeline's value is the timestamp of the newest
// submission the GPU has finished.
type Queue struct {
	device   *Device
	timeline driver.Semaphore
	// nextSubmitTimestamp starts at 1, the timeline starts at 0
	nextSubmitTimestamp uint64
}

// SubmitOptions holds optional synchronization for CommandList.Submit
type SubmitOptions struct {
	// WaitSemaphore, if set, is waited on before the submission executes. WaitValue is only used for
	// timeline semaphores.
	WaitSemaphore driver.Semaphore
	WaitValue     uint64
	// SignalSemaphore, if set, is signaled with the submission's timestamp
	SignalSemaphore driver.Semaphore
	Fence           driver.Fence
}

func (q *Queue) Timeline() driver.Semaphore {
	return q.timeline
}

// NextSubmitTimestamp is the timestamp the next submission will signal
func (q *Queue) NextSubmitTimestamp() uint64 {
	return q.nextSubmitTimestamp
}

// CompletedTimestamp reads the timeline. Failure is fatal.
func (q *Queue) CompletedTimestamp() uint64 {
	value, res, err := q.device.driver.SemaphoreCounterValue(q.timeline)
	if q.device.check("Queue::CompletedTimestamp", res, err) != nil {
		return 0
	}
	return value
}

// submit queues commandBuffers to signal the next timestamp. The timestamp is only consumed when
// the driver accepts the submission.
func (q *Queue) submit(commandBuffers []driver.CommandBuffer, options SubmitOptions) (uint64, error) {
	timestamp := q.nextSubmitTimestamp

	submitInfo := driver.SubmitInfo{
		CommandBuffers: commandBuffers,
		SignalSemaphores: []driver.SemaphoreSubmit{
			{Semaphore: q.timeline, Value: timestamp, Stages: core1_0.PipelineStageAllCommands},
		},
		Fence: options.Fence,
	}
	if options.SignalSemaphore != driver.NullHandle {
		submitInfo.SignalSemaphores = append(submitInfo.SignalSemaphores, driver.SemaphoreSubmit{
			Semaphore: options.SignalSemaphore,
			Value:     timestamp,
			Stages:    core1_0.PipelineStageAllCommands,
		})
	}
	if options.WaitSemaphore != driver.NullHandle {
		submitInfo.WaitSemaphores = []driver.SemaphoreSubmit{
			{Semaphore: options.WaitSemaphore, Value: options.WaitValue, Stages: core1_0.PipelineStageAllCommands},
		}
	}

	var res common.VkResult
	var err error
	submits := []driver.SubmitInfo{submitInfo}
	if q.device.options.SubmitHook != nil {
		res, err = q.device.options.SubmitHook(q.device.driver, submits)
	} else {
		res, err = q.device.driver.QueueSubmit(submits)
	}
	if err := q.device.check("Queue::Submit", res, err); err != nil {
		return 0, err
	}
	q.nextSubmitTimestamp++

	q.device.logger.Debug("Queue::Submit", slog.Uint64("timestamp", timestamp), slog.Int("commandBuffers", len(commandBuffers)))
	return timestamp, nil
}
