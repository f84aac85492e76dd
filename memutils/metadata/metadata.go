package metadata

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/reclaim/memutils"
)

// BlockMetadata tracks suballocations within a single range of [0, Size()) bytes. It does not own
// any memory: the consumer maps the offsets it hands out onto whatever backing storage it manages.
type BlockMetadata interface {
	// Init must be called before the BlockMetadata is used. size is the number of bytes in the
	// block being managed.
	Init(size int)
	// Size retrieves the size in bytes that the block was initialized with
	Size() int

	// Validate performs internal consistency checks on the metadata. These checks may be expensive, depending
	// on the implementation. When the implementation is functioning correctly, it should not be possible
	// for this method to return an error.
	Validate() error
	// AllocationCount returns the number of live suballocations
	AllocationCount() int
	// FreeRegionsCount returns the number of separate free regions in the block. Adjacent free
	// bytes count as a single region.
	FreeRegionsCount() int
	// SumFreeSize returns the number of free bytes in the block
	SumFreeSize() int
	// IsEmpty will return true if this block has no live suballocations
	IsEmpty() bool

	// VisitAllRegions calls handleBlock once for each allocation and free region in address order.
	// Free regions are reported with NoAllocation as their handle.
	VisitAllRegions(handleBlock func(handle BlockAllocationHandle, offset int, size int, userData any, free bool) error) error

	// AllocationOffset returns the offset in bytes of a live allocation
	AllocationOffset(allocHandle BlockAllocationHandle) (int, error)
	// AllocationSize returns the size in bytes of a live allocation
	AllocationSize(allocHandle BlockAllocationHandle) (int, error)
	// AllocationUserData returns the userData value provided for a live allocation
	AllocationUserData(allocHandle BlockAllocationHandle) (any, error)
	// SetAllocationUserData replaces the userData value of a live allocation
	SetAllocationUserData(allocHandle BlockAllocationHandle, userData any) error

	// AddDetailedStatistics sums this block's allocation statistics into stats
	AddDetailedStatistics(stats *memutils.DetailedStatistics)
	// AddStatistics sums this block's allocation statistics into stats
	AddStatistics(stats *memutils.Statistics)

	// Clear instantly frees all allocations
	Clear()
	// BlockJsonData populates a json object with information about this block
	BlockJsonData(json jwriter.ObjectState)

	// CreateAllocationRequest finds a place for an allocation of allocSize bytes aligned to
	// allocAlignment, which must be a power of two. The returned bool is false when no free region
	// can hold the allocation below maxOffset. The request is committed with Alloc.
	CreateAllocationRequest(
		allocSize int, allocAlignment uint,
		strategy AllocationStrategy,
		maxOffset int,
	) (bool, AllocationRequest, error)
	// Alloc commits an AllocationRequest returned by CreateAllocationRequest. It returns an error
	// if the region described by the request is no longer free.
	Alloc(request AllocationRequest, userData any) error

	// Free frees a live suballocation
	Free(allocHandle BlockAllocationHandle) error
}

// BlockMetadataBase holds the state shared by the BlockMetadata implementations in this package.
type BlockMetadataBase struct {
	size int
}

// Init sizes the block in bytes
func (m *BlockMetadataBase) Init(size int) {
	m.size = size
}

// Size returns the size of the block in bytes
func (m *BlockMetadataBase) Size() int { return m.size }

// WriteBlockJson populates the fields every implementation reports in BlockJsonData
func (m *BlockMetadataBase) WriteBlockJson(json jwriter.ObjectState, unusedBytes, allocationCount, unusedRangeCount int) {
	json.Name("TotalBytes").Int(m.Size())
	json.Name("UnusedBytes").Int(unusedBytes)
	json.Name("Allocations").Int(allocationCount)
	json.Name("UnusedRanges").Int(unusedRangeCount)
}

func writeSuballocations(json jwriter.ObjectState, md BlockMetadata) {
	arr := json.Name("Suballocations").Array()
	defer arr.End()

	_ = md.VisitAllRegions(func(handle BlockAllocationHandle, offset int, size int, userData any, free bool) error {
		obj := arr.Object()
		obj.Name("Offset").Int(offset)
		obj.Name("Size").Int(size)
		if free {
			obj.Name("Type").String("Free")
		} else {
			obj.Name("Type").String("Allocation")
			if name, ok := userData.(string); ok {
				obj.Name("Name").String(name)
			}
		}
		obj.End()
		return nil
	})
}
