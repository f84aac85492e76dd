package simgpu

import (
	"github.com/cockroachdb/errors"
)

// CompletionMode controls when submitted work executes
type CompletionMode int

const (
	// CompleteOnWait executes submissions lazily, whenever the host waits on a semaphore, a fence or
	// the whole device
	CompleteOnWait CompletionMode = iota
	// CompleteImmediately executes submissions during QueueSubmit
	CompleteImmediately
	// CompleteManually executes submissions only through Device.Advance and Device.CompleteAll.
	// Host waits block until another goroutine advances the device or the timeout elapses.
	// DeviceWaitIdle still drains the queue.
	CompleteManually
)

var completionModeMapping = map[CompletionMode]string{
	CompleteOnWait:      "on-wait",
	CompleteImmediately: "immediate",
	CompleteManually:    "manual",
}

func (m CompletionMode) String() string {
	return completionModeMapping[m]
}

func (m CompletionMode) MarshalText() ([]byte, error) {
	str, ok := completionModeMapping[m]
	if !ok {
		return nil, errors.Newf("unknown completion mode %d", int(m))
	}
	return []byte(str), nil
}

func (m *CompletionMode) UnmarshalText(text []byte) error {
	for mode, str := range completionModeMapping {
		if str == string(text) {
			*m = mode
			return nil
		}
	}
	return errors.Newf("unknown completion mode %q", string(text))
}

// Options configures a simulated device
type Options struct {
	DeviceName     string         `toml:"device_name"`
	CompletionMode CompletionMode `toml:"completion_mode"`
	RayTracing     bool           `toml:"ray_tracing"`

	MaxSamplerAnisotropy float32 `toml:"max_sampler_anisotropy"`
	// MaxBufferSize is the largest buffer CreateBuffer will back; larger requests fail with
	// VKErrorOutOfDeviceMemory
	MaxBufferSize int `toml:"max_buffer_size"`
	// DiscreteMemory makes device-local memory invisible to the host, so that buffers which only
	// prefer device memory cannot be mapped
	DiscreteMemory bool `toml:"discrete_memory"`
}

func DefaultOptions() Options {
	return Options{
		DeviceName:           "simgpu",
		CompletionMode:       CompleteOnWait,
		RayTracing:           true,
		MaxSamplerAnisotropy: 16,
		MaxBufferSize:        256 << 20,
	}
}
