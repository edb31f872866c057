package vmos

// HeapAdapter is a pure-Go Adapter backed by the Go heap instead of raw OS
// mmap calls. It is used by tests that want deterministic, portable
// behavior without requiring mmap/mprotect privileges, and is grounded in
// the same over-allocate-then-trim alignment trick the Unix/Windows
// adapters use for OS memory.
//
// Go's garbage-collected heap has no notion of paging state, so no call
// changes memory accessibility: Commit/Unreset/Protect/Unprotect are no-ops,
// and Decommit/Reset zero the range to mimic pages that come back zeroed.
// HeapAdapter does not count calls.
type HeapAdapter struct {
	pageSize      int
	largePageSize int
}

// NewHeapAdapter creates a HeapAdapter with the given page-size parameters
// (0 selects sensible defaults: 4 KiB pages, 2 MiB large pages).
func NewHeapAdapter(pageSize, largePageSize int) *HeapAdapter {
	if pageSize <= 0 {
		pageSize = 4096
	}
	if largePageSize <= 0 {
		largePageSize = 2 * 1024 * 1024
	}
	return &HeapAdapter{pageSize: pageSize, largePageSize: largePageSize}
}

func (h *HeapAdapter) ReserveAligned(size, alignment int, _ bool) ([]byte, error) {
	if alignment <= 1 {
		return make([]byte, size), nil
	}

	raw := make([]byte, size+alignment)
	base := sliceAddr(raw)
	misalign := base % uintptr(alignment)
	offset := 0
	if misalign != 0 {
		offset = alignment - int(misalign)
	}
	return raw[offset : offset+size : offset+size], nil
}

func (h *HeapAdapter) Free(mem []byte) error {
	// The Go GC reclaims heap memory; nothing to release explicitly.
	_ = mem
	return nil
}

func (h *HeapAdapter) Commit(mem []byte) error   { return nil }
func (h *HeapAdapter) Decommit(mem []byte) error { clearBytes(mem); return nil }
func (h *HeapAdapter) Reset(mem []byte) error    { clearBytes(mem); return nil }
func (h *HeapAdapter) Unreset(mem []byte) error  { return nil }
func (h *HeapAdapter) Protect(mem []byte) error  { return nil }
func (h *HeapAdapter) Unprotect(mem []byte) error {
	return nil
}

func (h *HeapAdapter) PageSize() int      { return h.pageSize }
func (h *HeapAdapter) LargePageSize() int { return h.largePageSize }

func clearBytes(mem []byte) {
	for i := range mem {
		mem[i] = 0
	}
}
