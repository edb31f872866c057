//go:build amd64 || arm64 || loong64 || riscv64 || ppc64 || ppc64le || mips64 || mips64le || s390x

package regionarena

// DefaultHeapMax is the ceiling on aggregate arena virtual address use on
// 64-bit targets (256 GiB).
const DefaultHeapMax int64 = 256 * 1024 * 1024 * 1024
