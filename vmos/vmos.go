package vmos

// Adapter is the OS virtual-memory contract the region arena is built on.
// It mirrors the reserve/free/commit/decommit/reset/protect primitives a
// segment allocator expects from the operating system.
type Adapter interface {
	// ReserveAligned reserves size bytes of virtual address space aligned to
	// alignment. If commit is true, the returned range is immediately
	// backed by physical memory (subject to platform demand-paging);
	// otherwise it may be reserved but not committed.
	ReserveAligned(size, alignment int, commit bool) ([]byte, error)

	// Free releases a virtual reservation obtained from ReserveAligned.
	Free(mem []byte) error

	// Commit backs mem with physical memory.
	Commit(mem []byte) error

	// Decommit returns the physical memory backing mem to the OS while
	// keeping the virtual reservation intact.
	Decommit(mem []byte) error

	// Reset hints that the contents of mem may be discarded; the mapping
	// is retained and a subsequent touch will re-fault the pages in,
	// typically zeroed.
	Reset(mem []byte) error

	// Unreset undoes the effect of a prior Reset hint where the platform
	// distinguishes it from an ordinary touch.
	Unreset(mem []byte) error

	// Protect makes mem inaccessible (no read/write).
	Protect(mem []byte) error

	// Unprotect restores mem to read/write access.
	Unprotect(mem []byte) error

	// PageSize returns the OS page size in bytes.
	PageSize() int

	// LargePageSize returns the OS large/huge page size in bytes, or the
	// regular page size if large pages are unavailable.
	LargePageSize() int
}

// System returns the default Adapter for the current platform.
func System() Adapter {
	return systemAdapter{}
}
