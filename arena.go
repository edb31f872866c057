package regionarena

import (
	"context"
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/hupe1980/regionarena/internal/budget"
	"github.com/hupe1980/regionarena/vmos"
)

// Arena is a process-wide, lock-free region allocator. See the package doc
// for the concurrency model.
type Arena struct {
	blockSize      int
	regionSize     int
	regionMaxAlloc int
	regionCountMax int

	regions []region // address-stable for the arena's lifetime; never resliced

	regionsCount atomic.Uint32 // number of regions with backing memory installed
	nextIdx      atomic.Uint32 // advisory scan hint

	adapter     vmos.Adapter
	limiter     *budget.Limiter
	eagerCommit bool
	logger      *Logger
	statsSink   StatsSink
	stats       atomicStats

	closed atomic.Bool
}

// New creates an Arena. With no options, it uses production defaults:
// DefaultBlockSize, DefaultHeapMax, the system OS adapter, eager commit
// disabled, no budget limiter, and a no-op logger and stats sink.
func New(opts ...Option) (*Arena, error) {
	cfg := config{
		blockSize: DefaultBlockSize,
		heapMax:   DefaultHeapMax,
		adapter:   vmos.System(),
		logger:    NoopLogger(),
		statsSink: NoopStatsSink{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.blockSize <= 0 || cfg.blockSize&(cfg.blockSize-1) != 0 {
		return nil, fmt.Errorf("regionarena: block size must be a positive power of two, got %d", cfg.blockSize)
	}

	regionSize := cfg.blockSize * Bits
	regionMaxAlloc := (Bits / 4) * cfg.blockSize
	regionCountMax := int(cfg.heapMax / int64(regionSize))
	if regionCountMax <= 0 {
		regionCountMax = 1
	}

	a := &Arena{
		blockSize:      cfg.blockSize,
		regionSize:     regionSize,
		regionMaxAlloc: regionMaxAlloc,
		regionCountMax: regionCountMax,
		regions:        make([]region, regionCountMax),
		adapter:        cfg.adapter,
		limiter:        cfg.limiter,
		eagerCommit:    cfg.eagerCommit,
		logger:         cfg.logger,
		statsSink:      cfg.statsSink,
	}
	return a, nil
}

// RegionMaxAlloc returns the largest request this arena will serve from its
// own region table; larger requests bypass to the OS adapter.
func (a *Arena) RegionMaxAlloc() int { return a.regionMaxAlloc }

// RegionSize returns the size of a single region's backing span.
func (a *Arena) RegionSize() int { return a.regionSize }

// RegionCountMax returns the size of the descriptor table.
func (a *Arena) RegionCountMax() int { return a.regionCountMax }

// RegionsCount returns the number of regions that currently have backing
// memory installed. Monotonically non-decreasing.
func (a *Arena) RegionsCount() int { return int(a.regionsCount.Load()) }

// Alloc is equivalent to AllocAligned(ctx, size, 0, commit).
func (a *Arena) Alloc(ctx context.Context, size int, commit bool) ([]byte, ID, error) {
	return a.AllocAligned(ctx, size, 0, commit)
}

// AllocAligned satisfies size bytes aligned to alignment. Requests larger
// than RegionMaxAlloc, or with alignment greater than the block size,
// bypass the region table and go straight to the OS adapter, returning
// IDBypass. Otherwise the arena scans its descriptor table (populated
// regions first, starting from the advisory next-index hint, then unused
// regions to grow) for a region with a wide-enough free run, claims it,
// lazily reserves OS memory if needed, and commits the requested sub-range.
//
// A nil returned slice with a non-nil error indicates the OS adapter (or a
// configured budget) refused the request; the arena performs no retries.
func (a *Arena) AllocAligned(ctx context.Context, size, alignment int, commit bool) ([]byte, ID, error) {
	if a.closed.Load() {
		return nil, 0, ErrClosed
	}
	if size <= 0 {
		return nil, 0, ErrInvalidSize
	}

	if size > a.regionMaxAlloc || alignment > a.blockSize {
		return a.bypass(size, alignment)
	}

	pageSize := a.adapter.PageSize()
	size = roundUp(size, pageSize)
	need := blockCount(size, a.blockSize)
	if need > Bits {
		// Can't happen given regionMaxAlloc = (Bits/4)*blockSize, but guard
		// defensively rather than silently truncating a run length.
		return a.bypass(size, alignment)
	}

	// Phase A: scan populated regions, starting at the advisory hint.
	count := a.RegionsCount()
	if count > 0 {
		start := int(a.nextIdx.Load()) % count
		for i := 0; i < count; i++ {
			idx := (start + i) % count
			mem, id, ok, err := a.tryRegion(ctx, idx, need, size, commit)
			if err != nil {
				return nil, IDBypass, err
			}
			if ok {
				return mem, id, nil
			}
		}
	}

	// Phase B: grow into never-used regions.
	for idx := count; idx < a.regionCountMax; idx++ {
		mem, id, ok, err := a.tryRegion(ctx, idx, need, size, commit)
		if err != nil {
			return nil, IDBypass, err
		}
		if ok {
			return mem, id, nil
		}
	}

	// Both phases exhausted (table full): fall back to the OS adapter.
	return a.bypass(size, alignment)
}

func (a *Arena) tryRegion(ctx context.Context, idx, need, size int, commit bool) (mem []byte, id ID, ok bool, err error) {
	reg := &a.regions[idx]

	bitidx, mask, claimed := reg.claim(need)
	if !claimed {
		return nil, 0, false, nil
	}
	a.stats.claimsSucceeded.Add(1)

	mem, err = a.reserveInto(ctx, reg, idx, bitidx, mask, need, size, commit)
	if err != nil {
		return nil, 0, false, err
	}
	return mem, EncodeID(idx, bitidx), true, nil
}

func (a *Arena) bypass(size, alignment int) ([]byte, ID, error) {
	commitSize := goodCommitSize(size, a.adapter.LargePageSize())
	mem, err := a.adapter.ReserveAligned(commitSize, alignment, true)
	if err != nil {
		return nil, IDBypass, fmt.Errorf("%w: %v", ErrOOM, err)
	}
	a.stats.bypassAllocs.Add(1)
	a.statsSink.AddBypassed(int64(commitSize))
	return mem[:size], IDBypass, nil
}

// Free releases a previously allocated range. It is infallible and silent:
// an id that is out of range, or whose derived block address does not match
// mem, is a defensive no-op, never an error. Releasing the same allocation
// twice is not detected: the range is decommitted (or reset) and its bits
// cleared again.
func (a *Arena) Free(mem []byte, id ID) {
	if len(mem) == 0 {
		return
	}
	if IsBypass(id) {
		_ = a.adapter.Free(mem)
		return
	}
	if a.closed.Load() {
		return
	}

	size := len(mem)
	if size > a.regionMaxAlloc {
		a.logger.logInvalidRelease(id, "size exceeds region max alloc")
		return
	}
	size = roundUp(size, a.adapter.PageSize())

	idx, bitidx, err := DecodeID(id)
	if err != nil {
		a.logger.logInvalidRelease(id, "id does not decode to a valid region index")
		return
	}
	if idx < 0 || idx >= a.regionCountMax {
		a.logger.logInvalidRelease(id, "region index out of range")
		return
	}

	reg := &a.regions[idx]
	blocks := blockCount(size, a.blockSize)
	if bitidx < 0 || bitidx+blocks > Bits {
		a.logger.logInvalidRelease(id, "block range exceeds bitmap width")
		return
	}

	rm := reg.start.Load()
	if rm == nil {
		a.logger.logInvalidRelease(id, "region has no backing memory")
		return
	}

	blockPtr := rm.data[bitidx*a.blockSize : bitidx*a.blockSize+size]
	if !samePointer(blockPtr, mem) {
		a.logger.logInvalidRelease(id, "pointer does not match derived block address")
		return
	}

	if a.eagerCommit {
		if err := a.adapter.Reset(blockPtr); err == nil {
			a.stats.bytesReset.Add(uint64(len(blockPtr)))
			a.statsSink.AddReset(int64(len(blockPtr)))
		}
	} else {
		if err := a.adapter.Decommit(blockPtr); err == nil {
			a.stats.bytesDecommitted.Add(uint64(len(blockPtr)))
			a.statsSink.AddDecommitted(int64(len(blockPtr)))
		}
	}

	mask := blockMask(blocks, bitidx)
	reg.clearMask(mask)
}

// Stats returns a snapshot of the arena's activity counters.
func (a *Arena) Stats() Stats {
	return a.stats.snapshot()
}

// Commit, Decommit, Reset, Unreset, Protect and Unprotect forward directly
// to the OS adapter over an arbitrary range obtained from this arena. They
// do not consult or mutate arena state.
func (a *Arena) Commit(mem []byte) error   { return a.adapter.Commit(mem) }
func (a *Arena) Decommit(mem []byte) error { return a.adapter.Decommit(mem) }
func (a *Arena) Reset(mem []byte) error    { return a.adapter.Reset(mem) }
func (a *Arena) Unreset(mem []byte) error  { return a.adapter.Unreset(mem) }
func (a *Arena) Protect(mem []byte) error  { return a.adapter.Protect(mem) }
func (a *Arena) Unprotect(mem []byte) error {
	return a.adapter.Unprotect(mem)
}

// Close releases every region's backing memory back to the OS adapter. It
// is idempotent and intended for test teardown and short-lived embedders;
// production processes typically never call it, since regions are never
// reclaimed individually during normal operation.
func (a *Arena) Close() error {
	if a.closed.Swap(true) {
		return nil
	}

	var firstErr error
	count := a.RegionsCount()
	for i := 0; i < count; i++ {
		rm := a.regions[i].start.Load()
		if rm == nil {
			continue
		}
		if err := a.adapter.Free(rm.data); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func roundUp(size, mult int) int {
	if mult <= 0 {
		return size
	}
	rem := size % mult
	if rem == 0 {
		return size
	}
	return size + (mult - rem)
}

func samePointer(a, b []byte) bool {
	if len(a) == 0 || len(b) == 0 {
		return len(a) == len(b)
	}
	return unsafe.Pointer(&a[0]) == unsafe.Pointer(&b[0]) //nolint:gosec // defensive release-time pointer check
}
