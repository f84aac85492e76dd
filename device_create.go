package reclaim

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/reclaim/driver"
)

// CreateFlags indicate specific device behaviors to activate or deactivate
type CreateFlags int32

var deviceCreateFlagsMapping = common.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	deviceCreateFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return deviceCreateFlagsMapping.FlagsToString(f)
}

const (
	// DeviceCreateDisableRayTracing keeps acceleration structure usage off buffers even when the
	// driver supports ray tracing
	DeviceCreateDisableRayTracing CreateFlags = 1 << iota
	// DeviceCreateSynchronizedPools guards the storage suballocator of every AccelStructPool with a
	// mutex, so that pool statistics can be read from other goroutines
	DeviceCreateSynchronizedPools
)

var deviceCreateFlagsByName = map[string]CreateFlags{
	"DeviceCreateDisableRayTracing": DeviceCreateDisableRayTracing,
	"DeviceCreateSynchronizedPools": DeviceCreateSynchronizedPools,
}

func init() {
	for name, flag := range deviceCreateFlagsByName {
		flag.Register(name)
	}
}

// UnmarshalText parses flag names separated by '|', so that flags can be set from configuration
func (f *CreateFlags) UnmarshalText(text []byte) error {
	var flags CreateFlags
	for _, name := range strings.Split(string(text), "|") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		flag, ok := deviceCreateFlagsByName[name]
		if !ok {
			return errors.Newf("unknown device create flag %q", name)
		}
		flags |= flag
	}

	*f = flags
	return nil
}

func (f CreateFlags) MarshalText() ([]byte, error) {
	var names []string
	for _, flag := range []CreateFlags{DeviceCreateDisableRayTracing, DeviceCreateSynchronizedPools} {
		if f&flag != 0 {
			names = append(names, deviceCreateFlagsMapping.FlagsToString(flag))
			f &^= flag
		}
	}
	if f != 0 {
		return nil, errors.Newf("unknown device create flags %#x", int32(f))
	}
	return []byte(strings.Join(names, "|")), nil
}

const (
	defaultMaxImages           = 65536
	defaultMaxSamplers         = 256
	defaultMaxPendingRecyclers = 16
	pushConstantSize           = 256
)

// SubmitHook replaces the driver's QueueSubmit call. It must submit every SubmitInfo it is given.
type SubmitHook func(drv driver.Driver, submits []driver.SubmitInfo) (common.VkResult, error)

// CreateOptions contains optional settings when creating a Device
type CreateOptions struct {
	Flags CreateFlags `toml:"flags"`

	// MaxImages is the number of slots in each of the sampled and storage image bindings of the
	// descriptor heap. Slot 0 is reserved, so MaxImages-1 handles can be live at once.
	MaxImages int `toml:"max_images"`
	// MaxSamplers is the number of dynamic sampler slots
	MaxSamplers int `toml:"max_samplers"`
	// MaxPendingRecyclers bounds the recycler chain in builds with debug checks enabled. A longer
	// chain means GarbageCollect is not being called, or the GPU is far behind.
	MaxPendingRecyclers int `toml:"max_pending_recyclers"`

	// FatalHandler is called on unrecoverable driver failures. It defaults to panicking with the
	// *FatalError. Execution continues after the call if the handler returns.
	FatalHandler func(err *FatalError) `toml:"-"`
	// SubmitHook is optional, and is called in place of driver.Driver.QueueSubmit
	SubmitHook SubmitHook `toml:"-"`
}

func (o *CreateOptions) setDefaults() {
	if o.MaxImages <= 0 {
		o.MaxImages = defaultMaxImages
	}
	if o.MaxSamplers <= 0 {
		o.MaxSamplers = defaultMaxSamplers
	}
	if o.MaxPendingRecyclers <= 0 {
		o.MaxPendingRecyclers = defaultMaxPendingRecyclers
	}
	if o.FatalHandler == nil {
		o.FatalHandler = defaultFatalHandler
	}
}
