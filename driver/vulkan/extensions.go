package vulkan

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_memory_priority"
)

// ExtensionData records which optional device extensions the adapter makes use of
type ExtensionData struct {
	UseMemoryPriority bool
}

func NewExtensionData(device core1_0.Device) *ExtensionData {
	data := &ExtensionData{}

	// ext_memory_priority
	if device.IsDeviceExtensionActive(ext_memory_priority.ExtensionName) {
		data.UseMemoryPriority = true
	}

	return data
}
