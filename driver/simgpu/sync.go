package simgpu

import (
	"log/slog"
	"time"

	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/reclaim/driver"
)

const maxFiniteTimeout = 100 * 365 * 24 * time.Hour

type semaphore struct {
	object
	timeline bool
	value    uint64
	signaled bool
}

type fence struct {
	object
	signaled bool
}

type submission struct {
	commandBuffers []*commandBuffer
	refs           []*object
	waits          []driver.SemaphoreSubmit
	signals        []driver.SemaphoreSubmit
	fence          *fence
}

func (d *Device) CreateTimelineSemaphore(initialValue uint64) (driver.Semaphore, common.VkResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	handle := register(d, kindSemaphore, &semaphore{timeline: true, value: initialValue})
	return driver.Semaphore(handle), core1_0.VKSuccess, nil
}

func (d *Device) CreateSemaphore() (driver.Semaphore, common.VkResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	handle := register(d, kindSemaphore, &semaphore{})
	return driver.Semaphore(handle), core1_0.VKSuccess, nil
}

func (d *Device) DestroySemaphore(sem driver.Semaphore) {
	d.mu.Lock()
	defer d.mu.Unlock()

	unregister(d, "DestroySemaphore", uint64(sem))
}

func (d *Device) SemaphoreCounterValue(sem driver.Semaphore) (uint64, common.VkResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := d.timelineSemaphore("SemaphoreCounterValue", sem)
	if s == nil {
		return 0, core1_0.VKErrorUnknown, core1_0.VKErrorUnknown.ToError()
	}
	return s.value, core1_0.VKSuccess, nil
}

func (d *Device) timelineSemaphore(op string, handle driver.Semaphore) *semaphore {
	s := lookup[*semaphore](d, op, uint64(handle))
	if s == nil {
		return nil
	}
	if !s.timeline {
		d.violate(op, "%s is not a timeline semaphore", s)
		return nil
	}
	return s
}

func (d *Device) WaitSemaphore(sem driver.Semaphore, value uint64, timeout time.Duration) (common.VkResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := d.timelineSemaphore("WaitSemaphore", sem)
	if s == nil {
		return core1_0.VKErrorUnknown, core1_0.VKErrorUnknown.ToError()
	}

	return d.waitUntil(timeout, func() bool { return s.value >= value }), nil
}

func (d *Device) CreateFence() (driver.Fence, common.VkResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	handle := register(d, kindFence, &fence{})
	return driver.Fence(handle), core1_0.VKSuccess, nil
}

func (d *Device) DestroyFence(f driver.Fence) {
	d.mu.Lock()
	defer d.mu.Unlock()

	unregister(d, "DestroyFence", uint64(f))
}

func (d *Device) WaitForFence(f driver.Fence, timeout time.Duration) (common.VkResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	fen := lookup[*fence](d, "WaitForFence", uint64(f))
	if fen == nil {
		return core1_0.VKErrorUnknown, core1_0.VKErrorUnknown.ToError()
	}

	return d.waitUntil(timeout, func() bool { return fen.signaled }), nil
}

// waitUntil blocks until done reports true, completing submissions along the way when the device
// completes on wait. Negative or very long timeouts wait forever. It returns VKTimeout or VKSuccess.
func (d *Device) waitUntil(timeout time.Duration, done func() bool) common.VkResult {
	forever := timeout < 0 || timeout > maxFiniteTimeout

	if d.options.CompletionMode == CompleteOnWait {
		for !done() && len(d.queue) > 0 {
			d.completeNext()
		}
	}

	if done() {
		return core1_0.VKSuccess
	}
	if timeout == 0 || d.options.CompletionMode != CompleteManually {
		return core1_0.VKTimeout
	}

	var deadline time.Time
	if !forever {
		deadline = time.Now().Add(timeout)
	}
	for !done() {
		if forever {
			d.cond.Wait()
			continue
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return core1_0.VKTimeout
		}

		timer := time.AfterFunc(remaining, func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			d.cond.Broadcast()
		})
		d.cond.Wait()
		timer.Stop()
	}

	return core1_0.VKSuccess
}

func (d *Device) QueueSubmit(submits []driver.SubmitInfo) (common.VkResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, info := range submits {
		sub := &submission{
			waits:   append([]driver.SemaphoreSubmit(nil), info.WaitSemaphores...),
			signals: append([]driver.SemaphoreSubmit(nil), info.SignalSemaphores...),
		}

		for _, handle := range info.CommandBuffers {
			cmd := lookup[*commandBuffer](d, "QueueSubmit", uint64(handle))
			if cmd == nil {
				return core1_0.VKErrorUnknown, core1_0.VKErrorUnknown.ToError()
			}
			if cmd.state != commandBufferExecutable {
				d.violate("QueueSubmit", "%s is not executable", cmd)
				return core1_0.VKErrorUnknown, core1_0.VKErrorUnknown.ToError()
			}

			cmd.state = commandBufferPending
			sub.commandBuffers = append(sub.commandBuffers, cmd)
			sub.refs = append(sub.refs, &cmd.object)
			sub.refs = append(sub.refs, cmd.refs...)
		}

		for _, signal := range sub.signals {
			s := lookup[*semaphore](d, "QueueSubmit", uint64(signal.Semaphore))
			if s == nil {
				return core1_0.VKErrorUnknown, core1_0.VKErrorUnknown.ToError()
			}
			sub.refs = append(sub.refs, &s.object)
		}

		if info.Fence != driver.NullHandle {
			sub.fence = lookup[*fence](d, "QueueSubmit", uint64(info.Fence))
			if sub.fence == nil {
				return core1_0.VKErrorUnknown, core1_0.VKErrorUnknown.ToError()
			}
			sub.refs = append(sub.refs, &sub.fence.object)
		}

		for _, ref := range sub.refs {
			ref.pending++
		}

		d.queue = append(d.queue, sub)
		d.stats.Submissions++
		d.logger.Debug("simgpu::QueueSubmit", slog.Int("commandBuffers", len(sub.commandBuffers)), slog.Int("pending", len(d.queue)))
	}

	if d.options.CompletionMode == CompleteImmediately {
		d.completeAll()
	}
	return core1_0.VKSuccess, nil
}

func (d *Device) DeviceWaitIdle() (common.VkResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.completeAll()
	return core1_0.VKSuccess, nil
}

// Advance completes up to count of the oldest pending submissions and returns how many completed
func (d *Device) Advance(count int) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	completed := 0
	for completed < count && len(d.queue) > 0 {
		d.completeNext()
		completed++
	}
	return completed
}

// CompleteAll completes every pending submission and returns how many completed
func (d *Device) CompleteAll() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.completeAll()
}

func (d *Device) completeAll() int {
	completed := len(d.queue)
	for len(d.queue) > 0 {
		d.completeNext()
	}
	return completed
}

func (d *Device) completeNext() {
	sub := d.queue[0]
	d.queue[0] = nil
	d.queue = d.queue[1:]

	for _, wait := range sub.waits {
		s := lookup[*semaphore](d, "Execute", uint64(wait.Semaphore))
		switch {
		case s == nil:
		case s.timeline && s.value < wait.Value:
			d.violate("Execute", "wait for %s to reach %d can never be satisfied, it is at %d", s, wait.Value, s.value)
		case !s.timeline && !s.signaled:
			d.violate("Execute", "wait on unsignaled %s", s)
		case !s.timeline:
			s.signaled = false
		}
	}

	for _, cmd := range sub.commandBuffers {
		for _, c := range cmd.commands {
			if c.run != nil {
				c.run()
			}
		}
		cmd.state = commandBufferExecutable
	}

	for _, ref := range sub.refs {
		ref.pending--
	}

	for _, signal := range sub.signals {
		obj, ok := d.objects.Get(uint64(signal.Semaphore))
		if !ok {
			continue
		}
		s := obj.(*semaphore)
		if !s.timeline {
			s.signaled = true
			continue
		}
		if signal.Value <= s.value {
			d.violate("Execute", "%s signaled to %d, which does not exceed its current value %d", s, signal.Value, s.value)
			continue
		}
		s.value = signal.Value
	}

	if sub.fence != nil {
		sub.fence.signaled = true
	}

	d.stats.Completed++
	d.cond.Broadcast()
}
