package regionarena

import "github.com/hupe1980/regionarena/internal/conv"

// ID is an opaque handle returned by Alloc/AllocAligned, encoding the
// (region index, bit index) pair that produced it. IDBypass marks a request
// that was satisfied directly by the OS adapter and must be released by the
// OS adapter alone.
type ID uint64

// IDBypass is the sentinel ID for allocations that bypassed the region
// table (oversized or over-aligned requests).
const IDBypass ID = ^ID(0)

// EncodeID packs a region index and bit index into an ID.
func EncodeID(idx, bitidx int) ID {
	return ID(uint64(idx)*Bits + uint64(bitidx))
}

// DecodeID unpacks an ID into its region index and bit index. It errors if
// id decodes to a region index that would overflow int on this platform —
// unreachable for any id this package encoded itself, but Free accepts ids
// from callers, so a corrupted id must not silently wrap on 32-bit builds.
func DecodeID(id ID) (idx, bitidx int, err error) {
	idx, err = conv.Uint64ToInt(uint64(id) / Bits)
	if err != nil {
		return 0, 0, err
	}
	bitidx = int(uint64(id) % Bits)
	return idx, bitidx, nil
}

// IsBypass reports whether id is the bypass sentinel.
func IsBypass(id ID) bool {
	return id == IDBypass
}
