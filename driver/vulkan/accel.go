package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/reclaim/driver"
)

// Acceleration structures and the queries over them belong to VK_KHR_acceleration_structure.
// Properties never reports RayTracing, so the bindless device does not reach these entry points;
// the ones that return errors do so and the rest panic.

func errNoAccelStructs() error {
	return errors.Wrap(core1_0.VKErrorFeatureNotPresent.ToError(), "acceleration structures need VK_KHR_acceleration_structure")
}

func (d *Device) GetAccelStructBuildSizes(driver.AccelStructType, driver.AccelStructBuildFlags, []driver.AccelStructGeometry, []uint32) driver.AccelStructBuildSizes {
	panic(errNoAccelStructs())
}

func (d *Device) CreateAccelStruct(driver.AccelStructCreateInfo) (driver.AccelStruct, common.VkResult, error) {
	return driver.NullHandle, core1_0.VKErrorFeatureNotPresent, errNoAccelStructs()
}

func (d *Device) DestroyAccelStruct(driver.AccelStruct) {
	panic(errNoAccelStructs())
}

func (d *Device) AccelStructDeviceAddress(driver.AccelStruct) uint64 {
	panic(errNoAccelStructs())
}

// AccelStructCompatibility reports that no serialized structure can be deserialized here
func (d *Device) AccelStructCompatibility([]byte) bool {
	return false
}

func (d *Device) CmdBuildAccelStruct(driver.CommandBuffer, driver.AccelStructBuildInfo) {
	panic(errNoAccelStructs())
}

func (d *Device) CmdCopyAccelStruct(driver.CommandBuffer, driver.AccelStruct, driver.AccelStruct, driver.CopyAccelStructMode) {
	panic(errNoAccelStructs())
}

func (d *Device) CmdCopyAccelStructToMemory(driver.CommandBuffer, driver.AccelStruct, uint64) {
	panic(errNoAccelStructs())
}

func (d *Device) CmdCopyMemoryToAccelStruct(driver.CommandBuffer, uint64, driver.AccelStruct) {
	panic(errNoAccelStructs())
}

// CreateQueryPool fails for every driver.QueryType, since they all query acceleration structures
func (d *Device) CreateQueryPool(queryType driver.QueryType, count int) (driver.QueryPool, common.VkResult, error) {
	return driver.NullHandle, core1_0.VKErrorFeatureNotPresent, errors.Wrapf(errNoAccelStructs(), "query type %s", queryType)
}

func (d *Device) DestroyQueryPool(handle driver.QueryPool) {
	pool := take(d.queryPools, "query pool", uint64(handle))
	d.driver.DestroyQueryPool(pool, d.options.AllocationCallbacks)
}

func (d *Device) CmdResetQueryPool(cmd driver.CommandBuffer, handle driver.QueryPool, first, count int) {
	pool := lookup(d.queryPools, "query pool", uint64(handle))
	d.driver.CmdResetQueryPool(d.commandBuffer(cmd), pool, first, count)
}

func (d *Device) CmdWriteAccelStructProperties(driver.CommandBuffer, []driver.AccelStruct, driver.QueryType, driver.QueryPool, int) {
	panic(errNoAccelStructs())
}

func (d *Device) CmdCopyQueryPoolResults(cmd driver.CommandBuffer, handle driver.QueryPool, first, count int, dst driver.Buffer, dstOffset, stride int) {
	pool := lookup(d.queryPools, "query pool", uint64(handle))
	b := lookup(d.buffers, "buffer", uint64(dst))
	d.driver.CmdCopyQueryPoolResults(d.commandBuffer(cmd), pool, first, count, b.buffer, dstOffset, stride,
		core1_0.QueryResult64Bit|core1_0.QueryResultWait)
}
