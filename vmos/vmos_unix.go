//go:build unix || linux || darwin || freebsd || openbsd || netbsd

package vmos

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// systemAdapter backs Adapter with anonymous mmap/mprotect/madvise.
//
// ReserveAligned may over-allocate to satisfy alignments wider than the
// page size and then hand back a trimmed slice; reservations tracks the
// original mapping so Free can munmap the whole thing, not just the
// trimmed view the caller holds.
type systemAdapter struct{}

var (
	reservationsMu sync.Mutex
	reservations   = map[uintptr][]byte{}
)

func (systemAdapter) ReserveAligned(size, alignment int, commit bool) ([]byte, error) {
	if alignment <= 0 {
		alignment = unix.Getpagesize()
	}

	prot := unix.PROT_NONE
	if commit {
		prot = unix.PROT_READ | unix.PROT_WRITE
	}

	if alignment <= unix.Getpagesize() {
		data, err := unix.Mmap(-1, 0, size, prot, unix.MAP_ANON|unix.MAP_PRIVATE)
		if err != nil {
			return nil, err
		}

		// Callers may reslice the returned buffer down (e.g. to a caller's
		// originally requested size after rounding up to a commit
		// granularity) before calling Free. Track the full mapping by base
		// address so Free still releases all of it, not just the shorter
		// view it was handed.
		if len(data) > 0 {
			reservationsMu.Lock()
			reservations[uintptr(unsafe.Pointer(&data[0]))] = data //nolint:gosec // key is the slice base address
			reservationsMu.Unlock()
		}

		return data, nil
	}

	// Over-allocate to guarantee we can carve out an aligned sub-range,
	// then track the real mapping so Free can release all of it.
	raw, err := unix.Mmap(-1, 0, size+alignment, prot, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}

	base := uintptr(unsafe.Pointer(&raw[0])) //nolint:gosec // required for alignment arithmetic
	misalign := int(base % uintptr(alignment))
	offset := 0
	if misalign != 0 {
		offset = alignment - misalign
	}
	trimmed := raw[offset : offset+size : offset+size]

	reservationsMu.Lock()
	reservations[uintptr(unsafe.Pointer(&trimmed[0]))] = raw //nolint:gosec // key is the slice base address
	reservationsMu.Unlock()

	return trimmed, nil
}

func (systemAdapter) Free(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}

	key := uintptr(unsafe.Pointer(&mem[0])) //nolint:gosec // lookup key for over-allocated reservations
	reservationsMu.Lock()
	raw, tracked := reservations[key]
	if tracked {
		delete(reservations, key)
	}
	reservationsMu.Unlock()

	if tracked {
		return unix.Munmap(raw)
	}
	return unix.Munmap(mem)
}

func (systemAdapter) Commit(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	return unix.Mprotect(mem, unix.PROT_READ|unix.PROT_WRITE)
}

func (systemAdapter) Decommit(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	if err := unix.Madvise(mem, unix.MADV_DONTNEED); err != nil && err != unix.EINVAL {
		return err
	}
	return unix.Mprotect(mem, unix.PROT_NONE)
}

func (systemAdapter) Reset(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	err := unix.Madvise(mem, unix.MADV_FREE)
	if err == unix.EINVAL || err == unix.ENOSYS {
		// MADV_FREE isn't available on every kernel; fall back to a hint
		// that is always supported.
		return unix.Madvise(mem, unix.MADV_DONTNEED)
	}
	return err
}

func (systemAdapter) Unreset(mem []byte) error {
	// Unix has no explicit "undo a discard hint" call; a subsequent touch
	// re-faults the page in. Nothing to do here.
	_ = mem
	return nil
}

func (systemAdapter) Protect(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	return unix.Mprotect(mem, unix.PROT_NONE)
}

func (systemAdapter) Unprotect(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	return unix.Mprotect(mem, unix.PROT_READ|unix.PROT_WRITE)
}

func (systemAdapter) PageSize() int {
	return unix.Getpagesize()
}

func (systemAdapter) LargePageSize() int {
	// Linux huge pages are commonly 2 MiB on x86-64; there is no portable
	// syscall to query this, so we use the conventional default. Tests that
	// need another value pass it to NewHeapAdapter.
	return 2 * 1024 * 1024
}
