package regionarena

import (
	"context"
	"fmt"

	"github.com/hupe1980/regionarena/internal/budget"
)

// reserveInto is the reservation engine: given a region whose bitmap
// already has [bitidx, bitidx+blocks) claimed, it ensures the region is
// backed by OS memory (reserving it lazily and racing safely with any other
// goroutine doing the same), then commits the requested sub-range if asked
// to and eager commit isn't already in force.
//
// On any failure prior to publishing the pointer, it rolls back the claim
// (CAS-clears mask) so other allocators can reuse the bits, and returns an
// error: the context's error, a budget sentinel, or an OS failure wrapped in
// ErrOOM. A commit failure after the pointer is otherwise valid is
// tolerated, not rolled back — see DESIGN.md for the Open Question this
// pins.
func (a *Arena) reserveInto(ctx context.Context, reg *region, idx, bitidx int, mask uint64, blocks, size int, commit bool) ([]byte, error) {
	rm := reg.start.Load()

	if rm == nil {
		if err := ctx.Err(); err != nil {
			a.rollbackClaim(reg, idx, blocks, mask)
			return nil, err
		}

		if !a.limiter.AllowReserve() {
			a.rollbackClaim(reg, idx, blocks, mask)
			return nil, budget.ErrReservationThrottled
		}

		if err := a.limiter.TryAcquire(int64(a.regionSize)); err != nil {
			a.rollbackClaim(reg, idx, blocks, mask)
			return nil, err
		}

		mem, err := a.adapter.ReserveAligned(a.regionSize, a.regionSize, a.eagerCommit)
		if err != nil {
			a.limiter.Release(int64(a.regionSize))
			a.rollbackClaim(reg, idx, blocks, mask)
			return nil, fmt.Errorf("%w: %v", ErrOOM, err)
		}

		newRM := &regionMemory{data: mem}
		if reg.start.CompareAndSwap(nil, newRM) {
			a.stats.regionsReserved.Add(1)
			a.regionsCount.Add(1)
			a.logger.logRegionReserved(idx, len(mem))
			rm = newRM
		} else {
			// Lost the double-reserve race: release what we obtained and
			// adopt the winner's pointer. No claim proceeds against a
			// non-installed pointer, so this is always safe.
			_ = a.adapter.Free(mem)
			a.limiter.Release(int64(a.regionSize))
			a.logger.logReservationLost(idx)
			rm = reg.start.Load()
		}
	}

	blockPtr := rm.data[bitidx*a.blockSize : bitidx*a.blockSize+size]

	if commit && !a.eagerCommit {
		a.commitSubrange(idx, bitidx, blocks, size, rm)
	}

	a.nextIdx.Store(uint32(idx))
	return blockPtr, nil
}

func (a *Arena) rollbackClaim(reg *region, idx, blocks int, mask uint64) {
	reg.clearMask(mask)
	a.stats.claimsRolledBack.Add(1)
	a.logger.logClaimRolledBack(idx, blocks)
}

func (a *Arena) commitSubrange(idx, bitidx, blocks, size int, rm *regionMemory) {
	commitSize := goodCommitSize(size, a.adapter.LargePageSize())
	if avail := blocks * a.blockSize; commitSize > avail {
		commitSize = avail
	}

	commitRange := rm.data[bitidx*a.blockSize : bitidx*a.blockSize+commitSize]
	if err := a.adapter.Commit(commitRange); err != nil {
		// Not rolled back: the caller still receives a valid pointer into a
		// possibly-uncommitted range. See DESIGN.md for why this is
		// tolerated rather than undone.
		a.stats.commitFailures.Add(1)
		a.logger.logCommitFailed(idx, bitidx, err)
		return
	}

	a.stats.bytesCommitted.Add(uint64(commitSize))
	a.statsSink.AddCommitted(int64(commitSize))
}
