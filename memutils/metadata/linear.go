package metadata

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/reclaim/memutils"
)

// compaction drops freed items from the front of the vector once there are at least this many
const linearCompactionThreshold = 32

// LinearBlockMetadata is a BlockMetadata implementation that represents a simple
// stack memory arena. Allocations are always placed after the last live allocation.
// Freeing the last allocation returns its space (and the space of any freed allocations
// immediately before it) to the stack. Freeing any other allocation leaves a hole that is only
// reclaimed once everything after it has been freed too, or when the block is cleared.
type LinearBlockMetadata struct {
	BlockMetadataBase

	sumFreeSize    int
	suballocations []Suballocation

	// Number of items at the beginning of the vector that have been freed
	nullItemsBeginCount int
	// Number of other freed items in the middle of the vector
	nullItemsMiddleCount int
}

var _ BlockMetadata = &LinearBlockMetadata{}

func NewLinearBlockMetadata() *LinearBlockMetadata {
	return &LinearBlockMetadata{}
}

func (m *LinearBlockMetadata) Init(size int) {
	m.BlockMetadataBase.Init(size)
	m.Clear()
}

func (m *LinearBlockMetadata) Clear() {
	m.suballocations = m.suballocations[:0]
	m.nullItemsBeginCount = 0
	m.nullItemsMiddleCount = 0
	m.sumFreeSize = m.Size()
}

func (m *LinearBlockMetadata) SumFreeSize() int { return m.sumFreeSize }

func (m *LinearBlockMetadata) AllocationCount() int {
	return len(m.suballocations) - m.nullItemsBeginCount - m.nullItemsMiddleCount
}

func (m *LinearBlockMetadata) IsEmpty() bool {
	return m.AllocationCount() == 0
}

func (m *LinearBlockMetadata) FreeRegionsCount() int {
	count := 0
	_ = m.VisitAllRegions(func(handle BlockAllocationHandle, offset int, size int, userData any, free bool) error {
		if free {
			count++
		}
		return nil
	})
	return count
}

// stackEnd is the first byte past the last live allocation
func (m *LinearBlockMetadata) stackEnd() int {
	if len(m.suballocations) == 0 {
		return 0
	}

	last := m.suballocations[len(m.suballocations)-1]
	return last.Offset + last.Size
}

func (m *LinearBlockMetadata) Validate() error {
	vector := m.suballocations

	if len(vector) > 0 {
		if m.nullItemsBeginCount < len(vector) && vector[m.nullItemsBeginCount].Free {
			return errors.Newf("there should only be %d free items at the beginning of the vector, but there seem to be more", m.nullItemsBeginCount)
		}

		if vector[len(vector)-1].Free {
			return errors.New("there should not be lingering free items at the end of the vector")
		}
	}

	if m.nullItemsBeginCount+m.nullItemsMiddleCount > len(vector) {
		return errors.Newf("metadata indicates that there are %d free items, but there are only %d total items", m.nullItemsBeginCount+m.nullItemsMiddleCount, len(vector))
	}

	var offset, sumUsedSize, nullMiddleCount int
	for index, suballoc := range vector {
		if index < m.nullItemsBeginCount && !suballoc.Free {
			return errors.Newf("item %d is live but is counted among the free items at the beginning of the vector", index)
		}

		if suballoc.Offset < offset {
			return errors.Newf("suballoc at index %d has offset %d- this collides with previous suballocations, expected offset %d", index, suballoc.Offset, offset)
		}

		if suballoc.Free {
			if index >= m.nullItemsBeginCount {
				nullMiddleCount++
			}
		} else {
			sumUsedSize += suballoc.Size
		}

		offset = suballoc.Offset + suballoc.Size
	}

	if offset > m.Size() {
		return errors.Newf("suballocations extend to offset %d, past the end of the %d byte block", offset, m.Size())
	}

	if nullMiddleCount != m.nullItemsMiddleCount {
		return errors.Newf("counted %d free items in the middle of the vector, but metadata indicates we should have %d", nullMiddleCount, m.nullItemsMiddleCount)
	}

	if m.Size()-sumUsedSize != m.sumFreeSize {
		return errors.Newf("metadata indicates %d free bytes, but %d are in use from a %d byte block", m.sumFreeSize, sumUsedSize, m.Size())
	}

	return nil
}

// VisitAllRegions reports live allocations and free regions in address order. Freed items and
// alignment padding that touch each other are reported as a single free region.
func (m *LinearBlockMetadata) VisitAllRegions(handleBlock func(handle BlockAllocationHandle, offset int, size int, userData any, free bool) error) error {
	freeStart := 0

	for _, suballoc := range m.suballocations {
		if suballoc.Free {
			continue
		}

		if suballoc.Offset > freeStart {
			err := handleBlock(NoAllocation, freeStart, suballoc.Offset-freeStart, nil, true)
			if err != nil {
				return err
			}
		}

		err := handleBlock(handleForOffset(suballoc.Offset), suballoc.Offset, suballoc.Size, suballoc.UserData, false)
		if err != nil {
			return err
		}

		freeStart = suballoc.Offset + suballoc.Size
	}

	if freeStart < m.Size() {
		return handleBlock(NoAllocation, freeStart, m.Size()-freeStart, nil, true)
	}

	return nil
}

func (m *LinearBlockMetadata) findSuballocation(allocHandle BlockAllocationHandle) (int, error) {
	if allocHandle == NoAllocation {
		return -1, errors.New("attempted to use NoAllocation as a live allocation")
	}

	offset := allocHandle.offset()
	index := sort.Search(len(m.suballocations), func(i int) bool {
		return m.suballocations[i].Offset >= offset
	})

	if index >= len(m.suballocations) || m.suballocations[index].Offset != offset || m.suballocations[index].Free {
		return -1, errors.Newf("no live allocation exists at offset %d", offset)
	}

	return index, nil
}

func (m *LinearBlockMetadata) AllocationOffset(allocHandle BlockAllocationHandle) (int, error) {
	index, err := m.findSuballocation(allocHandle)
	if err != nil {
		return 0, err
	}
	return m.suballocations[index].Offset, nil
}

func (m *LinearBlockMetadata) AllocationSize(allocHandle BlockAllocationHandle) (int, error) {
	index, err := m.findSuballocation(allocHandle)
	if err != nil {
		return 0, err
	}
	return m.suballocations[index].Size, nil
}

func (m *LinearBlockMetadata) AllocationUserData(allocHandle BlockAllocationHandle) (any, error) {
	index, err := m.findSuballocation(allocHandle)
	if err != nil {
		return nil, err
	}
	return m.suballocations[index].UserData, nil
}

func (m *LinearBlockMetadata) SetAllocationUserData(allocHandle BlockAllocationHandle, userData any) error {
	index, err := m.findSuballocation(allocHandle)
	if err != nil {
		return err
	}
	m.suballocations[index].UserData = userData
	return nil
}

func (m *LinearBlockMetadata) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	stats.BlockCount++
	stats.BlockBytes += m.Size()

	_ = m.VisitAllRegions(func(handle BlockAllocationHandle, offset int, size int, userData any, free bool) error {
		if free {
			stats.AddUnusedRange(size)
		} else {
			stats.AddAllocation(size)
		}
		return nil
	})
}

func (m *LinearBlockMetadata) AddStatistics(stats *memutils.Statistics) {
	stats.BlockCount++
	stats.AllocationCount += m.AllocationCount()
	stats.BlockBytes += m.Size()
	stats.AllocationBytes += m.Size() - m.sumFreeSize
}

func (m *LinearBlockMetadata) BlockJsonData(json jwriter.ObjectState) {
	m.WriteBlockJson(json, m.sumFreeSize, m.AllocationCount(), m.FreeRegionsCount())
	writeSuballocations(json, m)
}

// CreateAllocationRequest places the allocation at the end of the stack. The strategy is ignored,
// since there is only ever one candidate location.
func (m *LinearBlockMetadata) CreateAllocationRequest(
	allocSize int, allocAlignment uint,
	strategy AllocationStrategy,
	maxOffset int,
) (bool, AllocationRequest, error) {
	if allocSize <= 0 {
		return false, AllocationRequest{}, errors.Newf("invalid allocation size %d", allocSize)
	}
	if err := memutils.CheckPow2(allocAlignment, "allocAlignment"); err != nil {
		return false, AllocationRequest{}, err
	}

	offset := memutils.AlignUp(m.stackEnd(), allocAlignment)
	end := offset + allocSize
	if end > m.Size() || end > maxOffset {
		return false, AllocationRequest{}, nil
	}

	return true, AllocationRequest{
		BlockAllocationHandle: handleForOffset(offset),
		Size:                  allocSize,
		Item: Suballocation{
			Offset: offset,
			Size:   allocSize,
		},
		Type:          AllocationRequestEndOfStack,
		AlgorithmData: uint64(m.stackEnd()),
	}, nil
}

func (m *LinearBlockMetadata) Alloc(request AllocationRequest, userData any) error {
	if request.Type != AllocationRequestEndOfStack {
		return errors.New("allocation request was received by an incompatible metadata")
	}

	if int(request.AlgorithmData) != m.stackEnd() {
		return errors.Newf("allocation request was created when the stack ended at %d, but it now ends at %d", request.AlgorithmData, m.stackEnd())
	}

	m.suballocations = append(m.suballocations, Suballocation{
		Offset:   request.Item.Offset,
		Size:     request.Size,
		UserData: userData,
	})
	m.sumFreeSize -= request.Size

	return nil
}

func (m *LinearBlockMetadata) Free(allocHandle BlockAllocationHandle) error {
	index, err := m.findSuballocation(allocHandle)
	if err != nil {
		return err
	}

	suballoc := &m.suballocations[index]
	suballoc.Free = true
	suballoc.UserData = nil
	m.sumFreeSize += suballoc.Size

	if index == m.nullItemsBeginCount {
		m.nullItemsBeginCount++
	} else {
		m.nullItemsMiddleCount++
	}

	m.cleanup()
	return nil
}

func (m *LinearBlockMetadata) cleanup() {
	// Absorb freed items that now touch the freed prefix
	for m.nullItemsBeginCount < len(m.suballocations) && m.suballocations[m.nullItemsBeginCount].Free {
		m.nullItemsBeginCount++
		m.nullItemsMiddleCount--
	}

	// Pop freed items off the top of the stack
	for len(m.suballocations) > 0 && m.suballocations[len(m.suballocations)-1].Free {
		if len(m.suballocations)-1 < m.nullItemsBeginCount {
			m.nullItemsBeginCount--
		} else {
			m.nullItemsMiddleCount--
		}
		m.suballocations = m.suballocations[:len(m.suballocations)-1]
	}

	if len(m.suballocations) == 0 {
		m.nullItemsBeginCount = 0
		m.nullItemsMiddleCount = 0
		return
	}

	if m.nullItemsBeginCount >= linearCompactionThreshold && m.nullItemsBeginCount*2 > len(m.suballocations) {
		remaining := copy(m.suballocations, m.suballocations[m.nullItemsBeginCount:])
		m.suballocations = m.suballocations[:remaining]
		m.nullItemsBeginCount = 0
	}
}
