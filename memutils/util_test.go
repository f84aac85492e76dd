package memutils_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/reclaim/memutils"
)

func TestAlignUp(t *testing.T) {
	require.Equal(t, 0, memutils.AlignUp(0, 16))
	require.Equal(t, 16, memutils.AlignUp(1, 16))
	require.Equal(t, 16, memutils.AlignUp(16, 16))
	require.Equal(t, 512, memutils.AlignUp(257, uint(256)))
	require.Equal(t, uint64(7), memutils.AlignUp(uint64(7), 1))
}

func TestAlignDown(t *testing.T) {
	require.Equal(t, 0, memutils.AlignDown(15, 16))
	require.Equal(t, 256, memutils.AlignDown(511, 256))
	require.True(t, memutils.IsAligned(512, 256))
	require.False(t, memutils.IsAligned(513, 256))
}

func TestCheckPow2(t *testing.T) {
	require.NoError(t, memutils.CheckPow2(1, "one"))
	require.NoError(t, memutils.CheckPow2(uint(256), "alignment"))

	err := memutils.CheckPow2(12, "alignment")
	require.Error(t, err)
	require.True(t, errors.Is(err, memutils.PowerOfTwoError))
	require.Contains(t, err.Error(), "alignment is 12")

	require.Error(t, memutils.CheckPow2(0, "zero"))
}

func TestDebugCheckPow2(t *testing.T) {
	if !memutils.DebugChecks {
		t.Skip("validation compiled out")
	}

	require.Panics(t, func() { memutils.DebugCheckPow2(3, "value") })
	require.NotPanics(t, func() { memutils.DebugCheckPow2(4, "value") })
}

func TestDetailedStatistics(t *testing.T) {
	var stats memutils.DetailedStatistics
	stats.Clear()
	stats.BlockCount = 1
	stats.BlockBytes = 1000
	stats.AddAllocation(100)
	stats.AddAllocation(300)
	stats.AddUnusedRange(600)

	var other memutils.DetailedStatistics
	other.Clear()
	other.BlockCount = 1
	other.BlockBytes = 50
	other.AddUnusedRange(50)

	stats.AddDetailedStatistics(&other)
	require.Equal(t, memutils.DetailedStatistics{
		Statistics: memutils.Statistics{
			BlockCount:      2,
			BlockBytes:      1050,
			AllocationCount: 2,
			AllocationBytes: 400,
		},
		UnusedRangeCount:   2,
		AllocationSizeMin:  100,
		AllocationSizeMax:  300,
		UnusedRangeSizeMin: 50,
		UnusedRangeSizeMax: 600,
	}, stats)
	require.Equal(t, 650, stats.UnusedBytes())

	writer := jwriter.NewWriter()
	obj := writer.Object()
	stats.WriteJson(&obj)
	obj.End()
	require.JSONEq(t, `{
		"BlockCount": 2, "BlockBytes": 1050, "AllocationCount": 2, "AllocationBytes": 400,
		"UnusedRangeCount": 2, "AllocationSizeMin": 100, "AllocationSizeMax": 300,
		"UnusedRangeSizeMin": 50, "UnusedRangeSizeMax": 600
	}`, string(writer.Bytes()))
}
