package virtual

import "github.com/vkngwrapper/core/v3/common"

// BlockCreateFlags alter the behavior of a Block
type BlockCreateFlags int32

var blockCreateFlagsMapping = common.NewFlagStringMapping[BlockCreateFlags]()

func (f BlockCreateFlags) Register(str string) {
	blockCreateFlagsMapping.Register(f, str)
}
func (f BlockCreateFlags) String() string {
	return blockCreateFlagsMapping.FlagsToString(f)
}

const (
	// BlockCreateLinearAlgorithm makes the block a stack: allocations are always placed after the
	// last live one, and space freed in the middle is only reused after everything above it has
	// also been freed. Use it for storage that is filled once and released all at once.
	BlockCreateLinearAlgorithm BlockCreateFlags = 1 << iota

	BlockCreateAlgorithmMask = BlockCreateLinearAlgorithm
)

// AllocationCreateFlags alter how a single allocation is placed within a Block
type AllocationCreateFlags int32

var allocationCreateFlagsMapping = common.NewFlagStringMapping[AllocationCreateFlags]()

func (f AllocationCreateFlags) Register(str string) {
	allocationCreateFlagsMapping.Register(f, str)
}
func (f AllocationCreateFlags) String() string {
	return allocationCreateFlagsMapping.FlagsToString(f)
}

const (
	// AllocationCreateStrategyMinMemory chooses the smallest free range that fits, at the expense
	// of allocation time
	AllocationCreateStrategyMinMemory AllocationCreateFlags = 1 << iota
	// AllocationCreateStrategyMinTime chooses the first free range that fits
	AllocationCreateStrategyMinTime
	// AllocationCreateStrategyMinOffset chooses the free range with the lowest offset
	AllocationCreateStrategyMinOffset

	AllocationCreateStrategyMask = AllocationCreateStrategyMinMemory |
		AllocationCreateStrategyMinTime |
		AllocationCreateStrategyMinOffset
)

func init() {
	BlockCreateLinearAlgorithm.Register("BlockCreateLinearAlgorithm")

	AllocationCreateStrategyMinMemory.Register("AllocationCreateStrategyMinMemory")
	AllocationCreateStrategyMinTime.Register("AllocationCreateStrategyMinTime")
	AllocationCreateStrategyMinOffset.Register("AllocationCreateStrategyMinOffset")
}
