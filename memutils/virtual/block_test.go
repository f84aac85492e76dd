package virtual_test

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/reclaim/memutils/virtual"
)

func TestBlockAllocFree(t *testing.T) {
	block, err := virtual.New(virtual.CreateOptions{Size: 4096})
	require.NoError(t, err)
	require.True(t, block.IsEmpty())

	alloc1, offset1, err := block.Allocate(virtual.AllocationCreateInfo{Size: 1000, Alignment: 256, UserData: "first"})
	require.NoError(t, err)
	require.Equal(t, 0, offset1)

	alloc2, offset2, err := block.Allocate(virtual.AllocationCreateInfo{Size: 1000, Alignment: 256})
	require.NoError(t, err)
	require.Equal(t, 1024, offset2)

	info, err := block.AllocationInfo(alloc1)
	require.NoError(t, err)
	require.Equal(t, virtual.AllocationInfo{Offset: 0, Size: 1000, UserData: "first"}, info)

	require.NoError(t, block.SetUserData(alloc2, 7))
	info, err = block.AllocationInfo(alloc2)
	require.NoError(t, err)
	require.Equal(t, 7, info.UserData)

	stats := block.Statistics()
	require.Equal(t, 2, stats.AllocationCount)
	require.Equal(t, 2000, stats.AllocationBytes)
	require.Equal(t, 4096, stats.BlockBytes)

	require.NoError(t, block.Free(alloc1))
	require.NoError(t, block.Free(virtual.NullAllocation))
	require.Error(t, block.Free(alloc1))

	_, err = block.AllocationInfo(alloc1)
	require.Error(t, err)

	// the freed range at the front is reused
	_, offset3, err := block.Allocate(virtual.AllocationCreateInfo{Size: 512, Alignment: 256})
	require.NoError(t, err)
	require.Equal(t, 0, offset3)

	require.NoError(t, block.Validate())

	block.Clear()
	require.True(t, block.IsEmpty())
}

func TestBlockOutOfSpace(t *testing.T) {
	block, err := virtual.New(virtual.CreateOptions{Size: 1024})
	require.NoError(t, err)

	_, _, err = block.Allocate(virtual.AllocationCreateInfo{Size: 1000})
	require.NoError(t, err)

	alloc, _, err := block.Allocate(virtual.AllocationCreateInfo{Size: 100})
	require.True(t, errors.Is(err, virtual.ErrOutOfSpace))
	require.Equal(t, virtual.NullAllocation, alloc)
}

func TestBlockInvalidOptions(t *testing.T) {
	_, err := virtual.New(virtual.CreateOptions{})
	require.Error(t, err)

	block, err := virtual.New(virtual.CreateOptions{Size: 64})
	require.NoError(t, err)

	_, _, err = block.Allocate(virtual.AllocationCreateInfo{Size: 8, Alignment: 12})
	require.Error(t, err)
}

func TestBlockLinear(t *testing.T) {
	block, err := virtual.New(virtual.CreateOptions{Size: 1024, Flags: virtual.BlockCreateLinearAlgorithm})
	require.NoError(t, err)

	alloc1, _, err := block.Allocate(virtual.AllocationCreateInfo{Size: 256})
	require.NoError(t, err)
	_, offset2, err := block.Allocate(virtual.AllocationCreateInfo{Size: 256})
	require.NoError(t, err)
	require.Equal(t, 256, offset2)

	require.NoError(t, block.Free(alloc1))

	// a linear block never moves backwards while later allocations are live
	_, offset3, err := block.Allocate(virtual.AllocationCreateInfo{Size: 128})
	require.NoError(t, err)
	require.Equal(t, 512, offset3)
}

func TestBlockStatsString(t *testing.T) {
	block, err := virtual.New(virtual.CreateOptions{Size: 1024, Flags: virtual.BlockCreateLinearAlgorithm})
	require.NoError(t, err)

	_, _, err = block.Allocate(virtual.AllocationCreateInfo{Size: 256, UserData: "blas"})
	require.NoError(t, err)

	var doc struct {
		Flags string
		Stats struct {
			BlockBytes      int
			AllocationCount int
			AllocationBytes int
		}
		Details struct {
			TotalBytes     int
			UnusedBytes    int
			Suballocations []struct {
				Offset int
				Size   int
				Type   string
				Name   string
			}
		}
	}

	require.NoError(t, json.Unmarshal([]byte(block.BuildStatsString(true)), &doc))
	require.Equal(t, "BlockCreateLinearAlgorithm", doc.Flags)
	require.Equal(t, 1024, doc.Stats.BlockBytes)
	require.Equal(t, 1, doc.Stats.AllocationCount)
	require.Equal(t, 768, doc.Details.UnusedBytes)
	require.Len(t, doc.Details.Suballocations, 2)
	require.Equal(t, "blas", doc.Details.Suballocations[0].Name)
	require.Equal(t, "Free", doc.Details.Suballocations[1].Type)

	require.NotContains(t, block.BuildStatsString(false), "Details")
}

func TestBlockSynchronized(t *testing.T) {
	block, err := virtual.New(virtual.CreateOptions{Size: 1 << 16, Synchronized: true})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				alloc, _, err := block.Allocate(virtual.AllocationCreateInfo{Size: 64, Alignment: 16})
				if err != nil {
					t.Error(err)
					return
				}
				if err := block.Free(alloc); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	require.True(t, block.IsEmpty())
	require.NoError(t, block.Validate())
}
