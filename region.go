package regionarena

import "sync/atomic"

// regionMemory holds the backing memory for a region once reserved. It is
// installed exactly once via a CAS on region.start (invariant: start
// transitions nil -> non-nil at most once per region per process lifetime).
type regionMemory struct {
	data []byte
}

// region is one element of the arena's fixed descriptor table. bitmap bit i
// set means block i is claimed; start is nil until the region's backing
// memory has been reserved from the OS.
type region struct {
	bitmap atomic.Uint64
	start  atomic.Pointer[regionMemory]
}

// claim attempts to atomically claim a contiguous run of blocks zero bits in
// the region's bitmap. It scans a snapshot for the first qualifying run,
// then CASes the mask in; on CAS failure it restarts from a fresh snapshot.
// Claim itself is infallible: it only reports whether room was found.
func (r *region) claim(blocks int) (bitidx int, mask uint64, ok bool) {
	if blocks <= 0 || blocks > Bits {
		return 0, 0, false
	}

	for {
		snapshot := r.bitmap.Load()

		found, at := findFreeRun(snapshot, blocks)
		if !found {
			return 0, 0, false
		}

		m := blockMask(blocks, at)
		newmap := snapshot | m

		if r.bitmap.CompareAndSwap(snapshot, newmap) {
			return at, m, true
		}
		// Lost the race; another claim or release changed the bitmap.
		// Restart: the next snapshot is at least as constrained.
	}
}

// findFreeRun scans snapshot from bit 0 upward for the first run of at
// least `blocks` contiguous zero bits, skipping over runs of ones.
func findFreeRun(snapshot uint64, blocks int) (found bool, at int) {
	pos := 0
	for pos <= Bits-blocks {
		// Skip a run of ones starting at pos.
		if snapshot&(uint64(1)<<uint(pos)) != 0 {
			pos++
			continue
		}

		// Count the zeros starting at pos.
		run := 0
		for pos+run < Bits && snapshot&(uint64(1)<<uint(pos+run)) == 0 {
			run++
		}

		if run >= blocks {
			return true, pos
		}

		pos += run
	}
	return false, 0
}

// clearMask CAS-clears mask from the region's bitmap, retrying on conflict.
// It implements both the rollback path (claim succeeded but OS reservation
// failed) and the release path (Free), which share the identical mechanism.
func (r *region) clearMask(mask uint64) {
	for {
		old := r.bitmap.Load()
		newmap := old &^ mask
		if r.bitmap.CompareAndSwap(old, newmap) {
			return
		}
	}
}
