//go:build windows

package vmos

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Windows constants not exposed by every golang.org/x/sys/windows release.
const (
	memReset     = 0x00080000
	memResetUndo = 0x01000000
)

type systemAdapter struct{}

var (
	reservationsMu sync.Mutex
	reservations   = map[uintptr]uintptr{} // trimmed base -> real VirtualAlloc base
)

func (systemAdapter) ReserveAligned(size, alignment int, commit bool) ([]byte, error) {
	allocType := uint32(windows.MEM_RESERVE)
	if commit {
		allocType |= windows.MEM_COMMIT
	}

	if alignment <= 0 {
		alignment = pageSize
	}

	if alignment <= pageSize {
		addr, err := windows.VirtualAlloc(0, uintptr(size), allocType, windows.PAGE_READWRITE)
		if err != nil {
			return nil, err
		}
		return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
	}

	raw, err := windows.VirtualAlloc(0, uintptr(size+alignment), allocType, windows.PAGE_READWRITE)
	if err != nil {
		return nil, err
	}

	misalign := int(raw % uintptr(alignment))
	offset := 0
	if misalign != 0 {
		offset = alignment - misalign
	}
	trimmedAddr := raw + uintptr(offset)
	trimmed := unsafe.Slice((*byte)(unsafe.Pointer(trimmedAddr)), size)

	reservationsMu.Lock()
	reservations[trimmedAddr] = raw
	reservationsMu.Unlock()

	return trimmed, nil
}

func (systemAdapter) Free(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&mem[0])) //nolint:gosec // required for VirtualFree

	reservationsMu.Lock()
	real, tracked := reservations[addr]
	if tracked {
		delete(reservations, addr)
	}
	reservationsMu.Unlock()

	if tracked {
		addr = real
	}
	return windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
}

func (systemAdapter) Commit(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&mem[0])) //nolint:gosec // VirtualAlloc requires the raw address
	_, err := windows.VirtualAlloc(addr, uintptr(len(mem)), windows.MEM_COMMIT, windows.PAGE_READWRITE)
	return err
}

func (systemAdapter) Decommit(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&mem[0])) //nolint:gosec // VirtualFree requires the raw address
	return windows.VirtualFree(addr, uintptr(len(mem)), windows.MEM_DECOMMIT)
}

func (systemAdapter) Reset(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&mem[0])) //nolint:gosec // VirtualAlloc requires the raw address
	_, err := windows.VirtualAlloc(addr, uintptr(len(mem)), memReset, windows.PAGE_READWRITE)
	return err
}

func (systemAdapter) Unreset(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&mem[0])) //nolint:gosec // VirtualAlloc requires the raw address
	_, err := windows.VirtualAlloc(addr, uintptr(len(mem)), memResetUndo, windows.PAGE_READWRITE)
	return err
}

func (systemAdapter) Protect(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	var old uint32
	return windows.VirtualProtect(uintptr(unsafe.Pointer(&mem[0])), uintptr(len(mem)), windows.PAGE_NOACCESS, &old) //nolint:gosec
}

func (systemAdapter) Unprotect(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	var old uint32
	return windows.VirtualProtect(uintptr(unsafe.Pointer(&mem[0])), uintptr(len(mem)), windows.PAGE_READWRITE, &old) //nolint:gosec
}

var pageSize = func() int {
	var info windows.SystemInfo
	windows.GetSystemInfo(&info)
	return int(info.PageSize)
}()

func (systemAdapter) PageSize() int {
	return pageSize
}

func (systemAdapter) LargePageSize() int {
	sz := windows.GetLargePageMinimum()
	if sz == 0 {
		return pageSize
	}
	return int(sz)
}
