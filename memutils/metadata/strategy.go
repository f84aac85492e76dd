package metadata

// AllocationStrategy exposes several options for choosing the location of a new allocation.
// If none is chosen, the implementation's fastest strategy is used.
type AllocationStrategy uint32

const (
	// AllocationStrategyMinMemory chooses the smallest free range that fits the allocation, to
	// reduce fragmentation at the expense of allocation time
	AllocationStrategyMinMemory AllocationStrategy = 1 << iota
	// AllocationStrategyMinTime chooses the first suitable free range found
	AllocationStrategyMinTime
	// AllocationStrategyMinOffset chooses the suitable free range with the lowest offset
	AllocationStrategyMinOffset
)
