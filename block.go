package regionarena

import (
	"github.com/hupe1980/regionarena/internal/conv"
)

// blockCount returns ceil(size/blockSize), the number of blocks a request of
// size bytes needs. Preconditions: 0 < size <= regionMaxAlloc.
func blockCount(size, blockSize int) int {
	return conv.CeilDiv(size, blockSize)
}

// blockMask returns a bitmask covering n contiguous bits starting at at.
// Precondition: n+at <= Bits.
func blockMask(n, at int) uint64 {
	if n <= 0 {
		return 0
	}
	if n >= 64 {
		return ^uint64(0) << uint(at)
	}
	return ((uint64(1) << uint(n)) - 1) << uint(at)
}

// goodCommitSize rounds size up to the OS large-page multiple, saturating
// rather than wrapping when size is within a large page of the int range's
// ceiling.
func goodCommitSize(size, largePageSize int) int {
	if largePageSize <= 0 {
		return size
	}
	return conv.RoundUpSaturating(size, largePageSize)
}
