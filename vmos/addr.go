package vmos

import "unsafe"

// sliceAddr returns the address of a slice's backing array, or 0 for an
// empty slice. Used only for alignment arithmetic in the heap-backed
// adapter used by tests.
func sliceAddr(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0])) //nolint:gosec // alignment arithmetic only
}
