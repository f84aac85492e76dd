package reclaim

import (
	"time"

	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// Future refers to the completion of one submission. The zero value is already complete.
type Future struct {
	queue     *Queue
	timestamp uint64
}

func (f Future) Timestamp() uint64 {
	return f.timestamp
}

// IsComplete polls the queue timeline without blocking
func (f Future) IsComplete() bool {
	if f.queue == nil {
		return true
	}
	return f.queue.CompletedTimestamp() >= f.timestamp
}

// Wait blocks until the submission completes or timeout elapses. A timeout is reported as
// core1_0.VKTimeout with a nil error, any other failure is fatal.
func (f Future) Wait(timeout time.Duration) (common.VkResult, error) {
	if f.queue == nil {
		return core1_0.VKSuccess, nil
	}

	device := f.queue.device
	res, err := device.driver.WaitSemaphore(f.queue.timeline, f.timestamp, timeout)
	if res == core1_0.VKTimeout && err == nil {
		return res, nil
	}
	if checkErr := device.check("Future::Wait", res, err); checkErr != nil {
		return res, checkErr
	}
	return res, nil
}
