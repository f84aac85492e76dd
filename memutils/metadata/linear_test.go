package metadata_test

import (
	"math"
	"testing"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/reclaim/memutils"
	"github.com/vkngwrapper/reclaim/memutils/metadata"
)

func allocate(t *testing.T, md metadata.BlockMetadata, size int, alignment uint, strategy metadata.AllocationStrategy) (metadata.BlockAllocationHandle, int) {
	success, request, err := md.CreateAllocationRequest(size, alignment, strategy, math.MaxInt)
	require.NoError(t, err)
	require.True(t, success)

	err = md.Alloc(request, nil)
	require.NoError(t, err)
	require.NoError(t, md.Validate())

	offset, err := md.AllocationOffset(request.BlockAllocationHandle)
	require.NoError(t, err)
	return request.BlockAllocationHandle, offset
}

func TestLinearAlloc(t *testing.T) {
	linear := metadata.NewLinearBlockMetadata()
	linear.Init(1000)

	var stats memutils.DetailedStatistics
	stats.Clear()
	linear.AddDetailedStatistics(&stats)

	require.Equal(t, memutils.DetailedStatistics{
		Statistics: memutils.Statistics{
			BlockCount:      1,
			BlockBytes:      1000,
			AllocationCount: 0,
			AllocationBytes: 0,
		},
		UnusedRangeCount:   1,
		AllocationSizeMin:  math.MaxInt,
		AllocationSizeMax:  0,
		UnusedRangeSizeMin: 1000,
		UnusedRangeSizeMax: 1000,
	}, stats)

	alloc1, offset1 := allocate(t, linear, 100, 1, metadata.AllocationStrategyMinTime)
	require.Equal(t, 0, offset1)

	alloc2, offset2 := allocate(t, linear, 50, 64, metadata.AllocationStrategyMinMemory)
	require.Equal(t, 128, offset2)

	stats.Clear()
	linear.AddDetailedStatistics(&stats)
	require.Equal(t, memutils.DetailedStatistics{
		Statistics: memutils.Statistics{
			BlockCount:      1,
			BlockBytes:      1000,
			AllocationCount: 2,
			AllocationBytes: 150,
		},
		UnusedRangeCount:   2,
		AllocationSizeMin:  50,
		AllocationSizeMax:  100,
		UnusedRangeSizeMin: 28,
		UnusedRangeSizeMax: 822,
	}, stats)
	require.Equal(t, 850, linear.SumFreeSize())

	require.NoError(t, linear.Free(alloc2))
	require.NoError(t, linear.Validate())
	require.Equal(t, 1, linear.AllocationCount())

	// the stack shrank, so the next allocation lands right after the first
	_, offset3 := allocate(t, linear, 10, 1, metadata.AllocationStrategyMinTime)
	require.Equal(t, 100, offset3)

	require.NoError(t, linear.Free(alloc1))
	require.NoError(t, linear.Validate())
	require.Equal(t, 1, linear.AllocationCount())
	require.Equal(t, 990, linear.SumFreeSize())
}

func TestLinearMiddleFreeLeavesHole(t *testing.T) {
	linear := metadata.NewLinearBlockMetadata()
	linear.Init(300)

	first, _ := allocate(t, linear, 100, 1, 0)
	middle, _ := allocate(t, linear, 100, 1, 0)
	last, _ := allocate(t, linear, 100, 1, 0)

	success, _, err := linear.CreateAllocationRequest(1, 1, 0, math.MaxInt)
	require.NoError(t, err)
	require.False(t, success)

	require.NoError(t, linear.Free(middle))
	require.NoError(t, linear.Validate())
	require.Equal(t, 100, linear.SumFreeSize())
	require.Equal(t, 1, linear.FreeRegionsCount())

	// the hole in the middle cannot be reused while the top of the stack is live
	success, _, err = linear.CreateAllocationRequest(50, 1, 0, math.MaxInt)
	require.NoError(t, err)
	require.False(t, success)

	require.NoError(t, linear.Free(last))
	require.NoError(t, linear.Validate())

	_, offset := allocate(t, linear, 150, 1, 0)
	require.Equal(t, 100, offset)

	require.NoError(t, linear.Free(first))
	require.NoError(t, linear.Validate())
	require.Equal(t, 1, linear.AllocationCount())
}

func TestLinearDoubleFree(t *testing.T) {
	linear := metadata.NewLinearBlockMetadata()
	linear.Init(100)

	alloc, _ := allocate(t, linear, 10, 1, 0)
	_, _ = allocate(t, linear, 10, 1, 0)

	require.NoError(t, linear.Free(alloc))
	require.Error(t, linear.Free(alloc))
	require.Error(t, linear.Free(metadata.NoAllocation))
}

func TestLinearStaleRequest(t *testing.T) {
	linear := metadata.NewLinearBlockMetadata()
	linear.Init(100)

	success, request, err := linear.CreateAllocationRequest(10, 1, 0, math.MaxInt)
	require.NoError(t, err)
	require.True(t, success)

	_, _ = allocate(t, linear, 10, 1, 0)
	require.Error(t, linear.Alloc(request, nil))
}

func TestLinearCompaction(t *testing.T) {
	linear := metadata.NewLinearBlockMetadata()
	linear.Init(10000)

	var handles []metadata.BlockAllocationHandle
	for i := 0; i < 100; i++ {
		handle, offset := allocate(t, linear, 10, 1, 0)
		require.Equal(t, i*10, offset)
		handles = append(handles, handle)
	}

	for _, handle := range handles[:80] {
		require.NoError(t, linear.Free(handle))
		require.NoError(t, linear.Validate())
	}

	for i, handle := range handles[80:] {
		offset, err := linear.AllocationOffset(handle)
		require.NoError(t, err)
		require.Equal(t, 800+i*10, offset)
	}

	require.Equal(t, 20, linear.AllocationCount())
}

func TestLinearUserDataAndJson(t *testing.T) {
	linear := metadata.NewLinearBlockMetadata()
	linear.Init(64)

	success, request, err := linear.CreateAllocationRequest(16, 16, 0, math.MaxInt)
	require.NoError(t, err)
	require.True(t, success)
	require.NoError(t, linear.Alloc(request, "blas"))

	userData, err := linear.AllocationUserData(request.BlockAllocationHandle)
	require.NoError(t, err)
	require.Equal(t, "blas", userData)

	require.NoError(t, linear.SetAllocationUserData(request.BlockAllocationHandle, "tlas"))

	writer := jwriter.NewWriter()
	obj := writer.Object()
	linear.BlockJsonData(obj)
	obj.End()

	require.JSONEq(t, `{
		"TotalBytes": 64, "UnusedBytes": 48, "Allocations": 1, "UnusedRanges": 1,
		"Suballocations": [
			{"Offset": 0, "Size": 16, "Type": "Allocation", "Name": "tlas"},
			{"Offset": 16, "Size": 48, "Type": "Free"}
		]
	}`, string(writer.Bytes()))

	linear.Clear()
	require.True(t, linear.IsEmpty())
	require.NoError(t, linear.Validate())
}
