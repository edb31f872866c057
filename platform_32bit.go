//go:build 386 || arm || mips || mipsle || wasm

package regionarena

// DefaultHeapMax is the ceiling on aggregate arena virtual address use on
// 32-bit targets (3 GiB), well under the 4 GiB address space.
const DefaultHeapMax int64 = 3 * 1024 * 1024 * 1024
