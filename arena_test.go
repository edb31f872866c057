package regionarena

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/regionarena/vmos"
)

// testArena builds a small arena scaled down for fast, portable tests: an
// 4 KiB block size (matching the heap adapter's page size) keeps region
// spans at 4 KiB * 64 = 256 KiB instead of the 256 MiB production default.
func testArena(t *testing.T, opts ...Option) *Arena {
	t.Helper()
	base := []Option{
		WithBlockSize(4096),
		WithHeapMax(4096 * 64 * 8), // room for 8 regions
		WithAdapter(vmos.NewHeapAdapter(4096, 4096)),
	}
	a, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return a
}

// S1: alloc(blockSize) from empty state.
func TestAllocFromEmptyState(t *testing.T) {
	a := testArena(t)
	ctx := context.Background()

	mem, id, err := a.Alloc(ctx, 4096, true)
	require.NoError(t, err)
	assert.Equal(t, ID(0), id)
	assert.Len(t, mem, 4096)
	assert.Equal(t, 1, a.RegionsCount())
	assert.Equal(t, uint64(1), a.regions[0].bitmap.Load())
}

// S2: three sequential single-block allocs get consecutive ids.
func TestAllocSequentialIDs(t *testing.T) {
	a := testArena(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, id, err := a.Alloc(ctx, 4096, true)
		require.NoError(t, err)
		assert.Equal(t, ID(i), id)
	}
	assert.Equal(t, uint64(0b111), a.regions[0].bitmap.Load())
}

// S3: alloc, free, alloc again reuses the same bit range and leaves start
// unchanged.
func TestAllocFreeAllocReusesRange(t *testing.T) {
	a := testArena(t)
	ctx := context.Background()

	mem1, id1, err := a.Alloc(ctx, 16384, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(0b1111), a.regions[0].bitmap.Load())

	rmBefore := a.regions[0].start.Load()

	a.Free(mem1, id1)
	assert.Equal(t, uint64(0), a.regions[0].bitmap.Load())

	mem2, id2, err := a.Alloc(ctx, 16384, true)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Equal(t, uint64(0b1111), a.regions[0].bitmap.Load())
	assert.Same(t, rmBefore, a.regions[0].start.Load())
	_ = mem2
}

// S4: an oversized request bypasses the region table entirely.
func TestAllocBypassForOversizedRequest(t *testing.T) {
	a := testArena(t)
	ctx := context.Background()

	mem, id, err := a.Alloc(ctx, a.RegionMaxAlloc()+1, true)
	require.NoError(t, err)
	assert.True(t, IsBypass(id))
	assert.Len(t, mem, a.RegionMaxAlloc()+1)
	assert.Equal(t, 0, a.RegionsCount())
}

// S5: filling a region completely spills into the next one.
func TestAllocGrowsIntoNextRegionWhenFull(t *testing.T) {
	a := testArena(t)
	ctx := context.Background()

	for i := 0; i < Bits; i++ {
		_, id, err := a.Alloc(ctx, 4096, true)
		require.NoError(t, err)
		assert.Equal(t, ID(i), id)
	}
	assert.Equal(t, ^uint64(0), a.regions[0].bitmap.Load())
	assert.Equal(t, 1, a.RegionsCount())

	_, id, err := a.Alloc(ctx, 4096, true)
	require.NoError(t, err)
	idx, bitidx, err := DecodeID(id)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 0, bitidx)
	assert.Equal(t, 2, a.RegionsCount())
}

// S6: N concurrent single-block allocs from empty state produce N distinct
// ids with disjoint claim masks.
func TestAllocConcurrentDistinctIDs(t *testing.T) {
	a := testArena(t, WithHeapMax(4096*64*64))
	ctx := context.Background()

	const n = 64
	ids := make([]ID, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, id, err := a.Alloc(ctx, 4096, true)
			ids[i] = id
			errs[i] = err
		}(i)
	}
	wg.Wait()

	seen := make(map[ID]bool, n)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[ids[i]], "duplicate id %d", ids[i])
		seen[ids[i]] = true
	}
}

func TestAllocAlignedBeyondBlockSizeBypasses(t *testing.T) {
	a := testArena(t)
	ctx := context.Background()

	mem, id, err := a.AllocAligned(ctx, 4096, a.blockSize*2, true)
	require.NoError(t, err)
	assert.True(t, IsBypass(id))
	assert.Len(t, mem, 4096)
}

func TestAllocRejectsInvalidSize(t *testing.T) {
	a := testArena(t)
	_, _, err := a.Alloc(context.Background(), 0, true)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestAllocAfterCloseFails(t *testing.T) {
	a := testArena(t)
	require.NoError(t, a.Close())

	_, _, err := a.Alloc(context.Background(), 4096, true)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestFreeIgnoresMismatchedPointer(t *testing.T) {
	a := testArena(t)
	ctx := context.Background()

	_, id, err := a.Alloc(ctx, 4096, true)
	require.NoError(t, err)

	bogus := make([]byte, 4096)
	assert.NotPanics(t, func() { a.Free(bogus, id) })
	// The real claim must remain intact since the mismatched free is a no-op.
	assert.Equal(t, uint64(1), a.regions[0].bitmap.Load())
}

func TestFreeBypassDelegatesToAdapter(t *testing.T) {
	a := testArena(t)
	ctx := context.Background()

	mem, id, err := a.Alloc(ctx, a.RegionMaxAlloc()+1, true)
	require.NoError(t, err)
	require.True(t, IsBypass(id))

	assert.NotPanics(t, func() { a.Free(mem, id) })
}

func TestCloseIsIdempotent(t *testing.T) {
	a := testArena(t)
	_, _, err := a.Alloc(context.Background(), 4096, true)
	require.NoError(t, err)

	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
}

func TestPassthroughOperationsDoNotTouchRegionTable(t *testing.T) {
	a := testArena(t)
	ctx := context.Background()

	mem, _, err := a.Alloc(ctx, 4096, true)
	require.NoError(t, err)

	before := a.regions[0].bitmap.Load()
	assert.NoError(t, a.Commit(mem))
	assert.NoError(t, a.Decommit(mem))
	assert.NoError(t, a.Reset(mem))
	assert.NoError(t, a.Unreset(mem))
	assert.NoError(t, a.Protect(mem))
	assert.NoError(t, a.Unprotect(mem))
	assert.Equal(t, before, a.regions[0].bitmap.Load())
}

func TestReserveFailureRollsBackClaim(t *testing.T) {
	faulty := vmos.NewFaultyAdapter(vmos.NewHeapAdapter(4096, 4096))
	faulty.FailReserve = true
	a := testArena(t, WithAdapter(faulty))

	_, _, err := a.Alloc(context.Background(), 4096, true)
	assert.ErrorIs(t, err, ErrOOM)
	assert.Equal(t, uint64(0), a.regions[0].bitmap.Load(), "claim must be rolled back on reservation failure")
	assert.Equal(t, 0, a.RegionsCount())
}

func TestCommitFailureIsToleratedNotRolledBack(t *testing.T) {
	faulty := vmos.NewFaultyAdapter(vmos.NewHeapAdapter(4096, 4096))
	a := testArena(t, WithAdapter(faulty))

	faulty.FailCommit = true
	mem, id, err := a.Alloc(context.Background(), 4096, true)

	require.NoError(t, err, "commit failure is tolerated, the allocation still succeeds")
	assert.False(t, IsBypass(id))
	assert.Len(t, mem, 4096)
	assert.Equal(t, uint64(1), a.stats.snapshot().CommitFailures)
}

func TestNewRejectsNonPowerOfTwoBlockSize(t *testing.T) {
	_, err := New(WithBlockSize(4096), WithAdapter(vmos.NewHeapAdapter(4096, 4096)))
	require.NoError(t, err)

	_, err = New(WithBlockSize(4097), WithAdapter(vmos.NewHeapAdapter(4096, 4096)))
	assert.Error(t, err)
}
