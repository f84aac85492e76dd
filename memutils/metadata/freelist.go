package metadata

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/reclaim/memutils"
)

type freeListRegion struct {
	offset   int
	size     int
	userData any
	free     bool

	prev *freeListRegion
	next *freeListRegion
}

// FreeListBlockMetadata is a BlockMetadata implementation that keeps every region of the block,
// allocated or free, in a single address-ordered list. Allocation walks the list for a free region
// that fits (first fit, or best fit with AllocationStrategyMinMemory), and freeing coalesces the
// region with free neighbours, so two free regions are never adjacent.
//
// This is the right tool for blocks with at most a few thousand live allocations whose sizes vary
// widely, such as acceleration structure storage.
type FreeListBlockMetadata struct {
	BlockMetadataBase

	head *freeListRegion
	// every region, keyed by offset
	regions *swiss.Map[int, *freeListRegion]

	allocCount  int
	freeCount   int
	sumFreeSize int
}

var _ BlockMetadata = &FreeListBlockMetadata{}

func NewFreeListBlockMetadata() *FreeListBlockMetadata {
	return &FreeListBlockMetadata{
		regions: swiss.NewMap[int, *freeListRegion](16),
	}
}

// Init prepares this structure for allocations and sizes the block in bytes based on the parameter size.
func (m *FreeListBlockMetadata) Init(size int) {
	m.BlockMetadataBase.Init(size)
	m.Clear()
}

func (m *FreeListBlockMetadata) Clear() {
	m.regions.Clear()
	m.head = nil
	m.allocCount = 0
	m.freeCount = 0
	m.sumFreeSize = m.Size()

	if m.Size() > 0 {
		m.head = &freeListRegion{offset: 0, size: m.Size(), free: true}
		m.regions.Put(0, m.head)
		m.freeCount = 1
	}
}

func (m *FreeListBlockMetadata) AllocationCount() int  { return m.allocCount }
func (m *FreeListBlockMetadata) FreeRegionsCount() int { return m.freeCount }
func (m *FreeListBlockMetadata) SumFreeSize() int      { return m.sumFreeSize }
func (m *FreeListBlockMetadata) IsEmpty() bool         { return m.allocCount == 0 }

func (m *FreeListBlockMetadata) Validate() error {
	var offset, allocCount, freeCount, sumFree, regionCount int
	var prev *freeListRegion

	for region := m.head; region != nil; region = region.next {
		regionCount++

		if region.prev != prev {
			return errors.Newf("region at offset %d has a broken back link", region.offset)
		}
		if region.offset != offset {
			return errors.Newf("region at offset %d should begin at offset %d", region.offset, offset)
		}
		if region.size <= 0 {
			return errors.Newf("region at offset %d has invalid size %d", region.offset, region.size)
		}
		if indexed, ok := m.regions.Get(region.offset); !ok || indexed != region {
			return errors.Newf("region at offset %d is missing from the offset index", region.offset)
		}

		if region.free {
			if prev != nil && prev.free {
				return errors.Newf("free region at offset %d was not merged with its predecessor", region.offset)
			}
			freeCount++
			sumFree += region.size
		} else {
			allocCount++
		}

		offset += region.size
		prev = region
	}

	if offset != m.Size() {
		return errors.Newf("regions cover %d bytes, but the block is %d bytes", offset, m.Size())
	}
	if regionCount != m.regions.Count() {
		return errors.Newf("counted %d regions, but the offset index holds %d", regionCount, m.regions.Count())
	}
	if allocCount != m.allocCount {
		return errors.Newf("counted %d allocations, but metadata indicates %d", allocCount, m.allocCount)
	}
	if freeCount != m.freeCount {
		return errors.Newf("counted %d free regions, but metadata indicates %d", freeCount, m.freeCount)
	}
	if sumFree != m.sumFreeSize {
		return errors.Newf("counted %d free bytes, but metadata indicates %d", sumFree, m.sumFreeSize)
	}

	return nil
}

func (m *FreeListBlockMetadata) VisitAllRegions(handleBlock func(handle BlockAllocationHandle, offset int, size int, userData any, free bool) error) error {
	for region := m.head; region != nil; region = region.next {
		handle := NoAllocation
		if !region.free {
			handle = handleForOffset(region.offset)
		}

		err := handleBlock(handle, region.offset, region.size, region.userData, region.free)
		if err != nil {
			return err
		}
	}

	return nil
}

func (m *FreeListBlockMetadata) allocation(allocHandle BlockAllocationHandle) (*freeListRegion, error) {
	if allocHandle == NoAllocation {
		return nil, errors.New("attempted to use NoAllocation as a live allocation")
	}

	region, ok := m.regions.Get(allocHandle.offset())
	if !ok || region.free {
		return nil, errors.Newf("no live allocation exists at offset %d", allocHandle.offset())
	}

	return region, nil
}

func (m *FreeListBlockMetadata) AllocationOffset(allocHandle BlockAllocationHandle) (int, error) {
	region, err := m.allocation(allocHandle)
	if err != nil {
		return 0, err
	}
	return region.offset, nil
}

func (m *FreeListBlockMetadata) AllocationSize(allocHandle BlockAllocationHandle) (int, error) {
	region, err := m.allocation(allocHandle)
	if err != nil {
		return 0, err
	}
	return region.size, nil
}

func (m *FreeListBlockMetadata) AllocationUserData(allocHandle BlockAllocationHandle) (any, error) {
	region, err := m.allocation(allocHandle)
	if err != nil {
		return nil, err
	}
	return region.userData, nil
}

func (m *FreeListBlockMetadata) SetAllocationUserData(allocHandle BlockAllocationHandle, userData any) error {
	region, err := m.allocation(allocHandle)
	if err != nil {
		return err
	}
	region.userData = userData
	return nil
}

func (m *FreeListBlockMetadata) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	stats.BlockCount++
	stats.BlockBytes += m.Size()

	for region := m.head; region != nil; region = region.next {
		if region.free {
			stats.AddUnusedRange(region.size)
		} else {
			stats.AddAllocation(region.size)
		}
	}
}

func (m *FreeListBlockMetadata) AddStatistics(stats *memutils.Statistics) {
	stats.BlockCount++
	stats.AllocationCount += m.allocCount
	stats.BlockBytes += m.Size()
	stats.AllocationBytes += m.Size() - m.sumFreeSize
}

func (m *FreeListBlockMetadata) BlockJsonData(json jwriter.ObjectState) {
	m.WriteBlockJson(json, m.sumFreeSize, m.allocCount, m.freeCount)
	writeSuballocations(json, m)
}

func (m *FreeListBlockMetadata) CreateAllocationRequest(
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

	if allocSize > m.sumFreeSize {
		return false, AllocationRequest{}, nil
	}

	bestFit := strategy&AllocationStrategyMinMemory != 0
	var chosen *freeListRegion
	var chosenOffset int

	for region := m.head; region != nil; region = region.next {
		if !region.free || region.size < allocSize {
			continue
		}

		alignedOffset := memutils.AlignUp(region.offset, allocAlignment)
		end := alignedOffset + allocSize
		if end > region.offset+region.size || end > maxOffset {
			continue
		}

		if chosen == nil || region.size < chosen.size {
			chosen = region
			chosenOffset = alignedOffset
		}

		if !bestFit || region.size == allocSize {
			break
		}
	}

	if chosen == nil {
		return false, AllocationRequest{}, nil
	}

	return true, AllocationRequest{
		BlockAllocationHandle: handleForOffset(chosenOffset),
		Size:                  allocSize,
		Item: Suballocation{
			Offset: chosenOffset,
			Size:   allocSize,
		},
		Type:          AllocationRequestFreeList,
		AlgorithmData: uint64(chosen.offset),
	}, nil
}

func (m *FreeListBlockMetadata) Alloc(request AllocationRequest, userData any) error {
	if request.Type != AllocationRequestFreeList {
		return errors.New("allocation request was received by an incompatible metadata")
	}

	region, ok := m.regions.Get(int(request.AlgorithmData))
	if !ok || !region.free {
		return errors.Newf("allocation request refers to region at offset %d, which is no longer free", request.AlgorithmData)
	}

	offset := request.Item.Offset
	end := offset + request.Size
	if offset < region.offset || end > region.offset+region.size {
		return errors.Newf("allocation request [%d, %d) does not fit in free region [%d, %d)", offset, end, region.offset, region.offset+region.size)
	}

	// Split off the alignment padding as its own free region
	if offset > region.offset {
		padding := &freeListRegion{offset: region.offset, size: offset - region.offset, free: true}
		m.insertBefore(region, padding)
		m.freeCount++

		m.regions.Delete(region.offset)
		region.offset = offset
		region.size -= padding.size
		m.regions.Put(region.offset, region)
	}

	if region.size > request.Size {
		remainder := &freeListRegion{offset: end, size: region.size - request.Size, free: true}
		m.insertAfter(region, remainder)
		m.freeCount++
		region.size = request.Size
	}

	region.free = false
	region.userData = userData
	m.freeCount--
	m.allocCount++
	m.sumFreeSize -= request.Size

	return nil
}

func (m *FreeListBlockMetadata) Free(allocHandle BlockAllocationHandle) error {
	region, err := m.allocation(allocHandle)
	if err != nil {
		return err
	}

	region.free = true
	region.userData = nil
	m.allocCount--
	m.freeCount++
	m.sumFreeSize += region.size

	if next := region.next; next != nil && next.free {
		m.mergeIntoPrev(next)
	}
	if prev := region.prev; prev != nil && prev.free {
		m.mergeIntoPrev(region)
	}

	return nil
}

// mergeIntoPrev folds a free region into its free predecessor
func (m *FreeListBlockMetadata) mergeIntoPrev(region *freeListRegion) {
	prev := region.prev
	prev.size += region.size
	prev.next = region.next
	if region.next != nil {
		region.next.prev = prev
	}

	m.regions.Delete(region.offset)
	m.freeCount--
}

func (m *FreeListBlockMetadata) insertBefore(region, newRegion *freeListRegion) {
	newRegion.prev = region.prev
	newRegion.next = region
	if region.prev != nil {
		region.prev.next = newRegion
	} else {
		m.head = newRegion
	}
	region.prev = newRegion
	m.regions.Put(newRegion.offset, newRegion)
}

func (m *FreeListBlockMetadata) insertAfter(region, newRegion *freeListRegion) {
	newRegion.prev = region
	newRegion.next = region.next
	if region.next != nil {
		region.next.prev = newRegion
	}
	region.next = newRegion
	m.regions.Put(newRegion.offset, newRegion)
}

// LargestFreeRegion returns the size of the largest free region, or 0 if the block is full
func (m *FreeListBlockMetadata) LargestFreeRegion() int {
	largest := 0
	for region := m.head; region != nil; region = region.next {
		if region.free {
			largest = max(largest, region.size)
		}
	}
	return largest
}
