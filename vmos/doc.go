// Package vmos provides the OS virtual-memory adapter consumed by the
// region arena: reserve, free, commit, decommit, reset, unreset, protect and
// unprotect over anonymous memory, plus page-size queries.
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): anonymous mmap(2), mprotect(2) and
//     madvise(2) via golang.org/x/sys/unix.
//   - Windows: VirtualAlloc/VirtualFree/VirtualProtect via
//     golang.org/x/sys/windows.
//
// # Thread Safety
//
// Every Adapter method operates on the byte slice passed to it. The only
// state the system adapters keep is a mutex-guarded map from a returned
// slice's base address to its underlying mapping, so Free can release the
// whole mapping (on Windows, only over-aligned reservations are tracked,
// since VirtualFree releases a whole allocation from its base). Callers
// (the arena) are responsible for not calling Free/Decommit/Reset
// concurrently with in-flight reads or writes to the same range.
package vmos
