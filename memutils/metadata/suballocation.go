package metadata

import "math"

// BlockAllocationHandle identifies a live allocation within a BlockMetadata
type BlockAllocationHandle uint64

const (
	NoAllocation BlockAllocationHandle = math.MaxUint64
)

// handles in this package are offset+1 so that the zero value never names a live allocation
func handleForOffset(offset int) BlockAllocationHandle {
	return BlockAllocationHandle(offset + 1)
}

func (h BlockAllocationHandle) offset() int {
	return int(h) - 1
}

type Suballocation struct {
	Offset   int
	Size     int
	UserData any
	Free     bool
}
