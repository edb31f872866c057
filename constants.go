package regionarena

// Bits is the width of a region's bitmap word. Go's atomic.Uint64 is a
// uniform 64-bit word on every architecture Go supports, so this is fixed
// regardless of GOARCH rather than tied to native pointer width — see
// DESIGN.md for the Open Question resolution.
const Bits = 64

// DefaultBlockSize is the segment granule: the unit of claim/commit within
// a region (4 MiB).
const DefaultBlockSize = 4 * 1024 * 1024

// DefaultRegionSize is the size of a region's virtually-contiguous span:
// DefaultBlockSize * Bits.
const DefaultRegionSize = DefaultBlockSize * Bits

// DefaultRegionMaxAlloc is the largest request the arena will serve from
// its own region table; larger requests bypass straight to the OS adapter.
const DefaultRegionMaxAlloc = (Bits / 4) * DefaultBlockSize
