package virtual

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/reclaim/internal/utils"
	"github.com/vkngwrapper/reclaim/memutils"
	"github.com/vkngwrapper/reclaim/memutils/metadata"
)

// ErrOutOfSpace is returned from Block.Allocate when no free range of the block can hold the
// requested allocation
var ErrOutOfSpace = errors.New("virtual block has no free range large enough for the allocation")

// Allocation identifies a live allocation within a Block
type Allocation uint64

// NullAllocation is never returned for a live allocation
const NullAllocation = Allocation(metadata.NoAllocation)

// CreateOptions configures a new Block
type CreateOptions struct {
	// Size is the number of bytes the block manages. It must be greater than 0.
	Size  int
	Flags BlockCreateFlags
	// Synchronized guards every call with a read/write mutex, so statistics can be read while
	// another goroutine allocates. Leave it unset when the block is only touched from one goroutine.
	Synchronized bool
}

// AllocationCreateInfo describes an allocation to make within a Block
type AllocationCreateInfo struct {
	Size int
	// Alignment must be a power of two. 0 is treated as 1.
	Alignment uint
	Flags     AllocationCreateFlags
	UserData  any
}

// AllocationInfo describes a live allocation within a Block
type AllocationInfo struct {
	Offset   int
	Size     int
	UserData any
}

// Block suballocates a range of bytes that the caller owns and maps onto real storage itself.
// It never touches the memory it manages.
type Block struct {
	mutex    utils.OptionalRWMutex
	flags    BlockCreateFlags
	metadata metadata.BlockMetadata
}

// New creates a Block from CreateOptions
func New(options CreateOptions) (*Block, error) {
	if options.Size <= 0 {
		return nil, errors.Newf("virtual block size must be greater than 0, but was %d", options.Size)
	}

	var md metadata.BlockMetadata
	if options.Flags&BlockCreateLinearAlgorithm != 0 {
		md = metadata.NewLinearBlockMetadata()
	} else {
		md = metadata.NewFreeListBlockMetadata()
	}
	md.Init(options.Size)

	return &Block{
		mutex:    utils.OptionalRWMutex{UseMutex: options.Synchronized},
		flags:    options.Flags,
		metadata: md,
	}, nil
}

func (b *Block) Size() int {
	return b.metadata.Size()
}

// IsEmpty returns true if the block has no live allocations
func (b *Block) IsEmpty() bool {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	return b.metadata.IsEmpty()
}

// Allocate places a new allocation within the block and returns it with its offset. It returns
// ErrOutOfSpace if no free range can hold it.
func (b *Block) Allocate(createInfo AllocationCreateInfo) (Allocation, int, error) {
	alignment := createInfo.Alignment
	if alignment == 0 {
		alignment = 1
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	strategy := metadata.AllocationStrategy(createInfo.Flags & AllocationCreateStrategyMask)
	success, request, err := b.metadata.CreateAllocationRequest(createInfo.Size, alignment, strategy, math.MaxInt)
	if err != nil {
		return NullAllocation, 0, err
	}
	if !success {
		return NullAllocation, 0, errors.Wrapf(ErrOutOfSpace, "requested %d bytes aligned to %d, %d bytes free", createInfo.Size, alignment, b.metadata.SumFreeSize())
	}

	err = b.metadata.Alloc(request, createInfo.UserData)
	if err != nil {
		return NullAllocation, 0, err
	}

	memutils.DebugValidate(b.metadata)

	return Allocation(request.BlockAllocationHandle), request.Item.Offset, nil
}

// Free releases a live allocation. Freeing NullAllocation is a no-op.
func (b *Block) Free(alloc Allocation) error {
	if alloc == NullAllocation {
		return nil
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	err := b.metadata.Free(metadata.BlockAllocationHandle(alloc))
	if err != nil {
		return err
	}

	memutils.DebugValidate(b.metadata)
	return nil
}

// Clear frees every allocation at once
func (b *Block) Clear() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.metadata.Clear()
}

// AllocationInfo retrieves the location and user data of a live allocation
func (b *Block) AllocationInfo(alloc Allocation) (AllocationInfo, error) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	handle := metadata.BlockAllocationHandle(alloc)
	offset, err := b.metadata.AllocationOffset(handle)
	if err != nil {
		return AllocationInfo{}, err
	}

	size, err := b.metadata.AllocationSize(handle)
	if err != nil {
		return AllocationInfo{}, err
	}

	userData, err := b.metadata.AllocationUserData(handle)
	if err != nil {
		return AllocationInfo{}, err
	}

	return AllocationInfo{
		Offset:   offset,
		Size:     size,
		UserData: userData,
	}, nil
}

func (b *Block) SetUserData(alloc Allocation, userData any) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return b.metadata.SetAllocationUserData(metadata.BlockAllocationHandle(alloc), userData)
}

// Validate runs the metadata's internal consistency checks
func (b *Block) Validate() error {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	return b.metadata.Validate()
}

func (b *Block) Statistics() memutils.Statistics {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	var stats memutils.Statistics
	b.metadata.AddStatistics(&stats)
	return stats
}

func (b *Block) DetailedStatistics() memutils.DetailedStatistics {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	var stats memutils.DetailedStatistics
	stats.Clear()
	b.metadata.AddDetailedStatistics(&stats)
	return stats
}

// BuildStatsString returns a json document describing the block. When detailed is true, every
// allocation and free range is listed.
func (b *Block) BuildStatsString(detailed bool) string {
	writer := jwriter.NewWriter()
	obj := writer.Object()
	b.WriteStats(&obj, detailed)
	obj.End()

	return string(writer.Bytes())
}

// WriteStats populates a json object with the contents of BuildStatsString so that the block can
// be embedded in a larger document
func (b *Block) WriteStats(json *jwriter.ObjectState, detailed bool) {
	stats := b.DetailedStatistics()

	b.mutex.RLock()
	defer b.mutex.RUnlock()

	json.Name("Flags").String(b.flags.String())

	statsObj := json.Name("Stats").Object()
	stats.WriteJson(&statsObj)
	statsObj.End()

	if detailed {
		detailsObj := json.Name("Details").Object()
		b.metadata.BlockJsonData(detailsObj)
		detailsObj.End()
	}
}
