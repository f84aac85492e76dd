package metadata

// AllocationRequestType identifies the BlockMetadata implementation that produced an
// AllocationRequest.
type AllocationRequestType uint32

const (
	// AllocationRequestFreeList indicates that the allocation request was sourced from metadata.FreeListBlockMetadata
	AllocationRequestFreeList AllocationRequestType = iota
	// AllocationRequestEndOfStack indicates that the allocation request was sourced from metadata.LinearBlockMetadata
	// and will be appended to the end of the stack
	AllocationRequestEndOfStack
)

var allocationRequestMapping = map[AllocationRequestType]string{
	AllocationRequestFreeList:   "FreeList",
	AllocationRequestEndOfStack: "EndOfStack",
}

func (t AllocationRequestType) String() string {
	return allocationRequestMapping[t]
}

// AllocationRequest is a type returned from BlockMetadata.CreateAllocationRequest which indicates where
// the metadata intends to place a new allocation. It is committed with BlockMetadata.Alloc.
type AllocationRequest struct {
	// BlockAllocationHandle is the handle the allocation will have once committed
	BlockAllocationHandle BlockAllocationHandle
	// Size is the total size of the allocation
	Size int
	// Item describes the allocation's location
	Item Suballocation
	// Type identifies the BlockMetadata implementation that produced this request
	Type AllocationRequestType

	// AlgorithmData is arbitrary data used by the BlockMetadata implementation for internal
	// purposes
	AlgorithmData uint64
}
