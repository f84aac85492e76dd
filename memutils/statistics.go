package memutils

import (
	"math"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// Statistics sums the blocks and allocations of one or more allocators
type Statistics struct {
	BlockCount      int
	AllocationCount int
	BlockBytes      int
	AllocationBytes int
}

func (s *Statistics) Clear() {
	*s = Statistics{}
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.BlockCount += other.BlockCount
	s.AllocationCount += other.AllocationCount
	s.BlockBytes += other.BlockBytes
	s.AllocationBytes += other.AllocationBytes
}

// UnusedBytes is the number of block bytes not covered by a live allocation
func (s *Statistics) UnusedBytes() int {
	return s.BlockBytes - s.AllocationBytes
}

// WriteJson populates a json object with these statistics
func (s *Statistics) WriteJson(json *jwriter.ObjectState) {
	json.Name("BlockCount").Int(s.BlockCount)
	json.Name("BlockBytes").Int(s.BlockBytes)
	json.Name("AllocationCount").Int(s.AllocationCount)
	json.Name("AllocationBytes").Int(s.AllocationBytes)
}

// DetailedStatistics extends Statistics with the size ranges of allocations and free regions.
// Call Clear before accumulating into a fresh value so the minimums start out at math.MaxInt.
type DetailedStatistics struct {
	Statistics
	UnusedRangeCount   int
	AllocationSizeMin  int
	AllocationSizeMax  int
	UnusedRangeSizeMin int
	UnusedRangeSizeMax int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.UnusedRangeCount = 0
	s.AllocationSizeMin = math.MaxInt
	s.AllocationSizeMax = 0
	s.UnusedRangeSizeMin = math.MaxInt
	s.UnusedRangeSizeMax = 0
}

func (s *DetailedStatistics) AddUnusedRange(size int) {
	s.UnusedRangeCount++
	s.UnusedRangeSizeMin = min(s.UnusedRangeSizeMin, size)
	s.UnusedRangeSizeMax = max(s.UnusedRangeSizeMax, size)
}

func (s *DetailedStatistics) AddAllocation(size int) {
	s.AllocationCount++
	s.AllocationBytes += size
	s.AllocationSizeMin = min(s.AllocationSizeMin, size)
	s.AllocationSizeMax = max(s.AllocationSizeMax, size)
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.UnusedRangeCount += other.UnusedRangeCount
	s.UnusedRangeSizeMin = min(s.UnusedRangeSizeMin, other.UnusedRangeSizeMin)
	s.UnusedRangeSizeMax = max(s.UnusedRangeSizeMax, other.UnusedRangeSizeMax)
	s.AllocationSizeMin = min(s.AllocationSizeMin, other.AllocationSizeMin)
	s.AllocationSizeMax = max(s.AllocationSizeMax, other.AllocationSizeMax)
}

// WriteJson populates a json object with these statistics. Range minimums are omitted while
// nothing has been counted.
func (s *DetailedStatistics) WriteJson(json *jwriter.ObjectState) {
	s.Statistics.WriteJson(json)
	json.Name("UnusedRangeCount").Int(s.UnusedRangeCount)

	if s.AllocationCount > 1 {
		json.Name("AllocationSizeMin").Int(s.AllocationSizeMin)
		json.Name("AllocationSizeMax").Int(s.AllocationSizeMax)
	}

	if s.UnusedRangeCount > 1 {
		json.Name("UnusedRangeSizeMin").Int(s.UnusedRangeSizeMin)
		json.Name("UnusedRangeSizeMax").Int(s.UnusedRangeSizeMax)
	}
}
