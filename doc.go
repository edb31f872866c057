// Package regionarena implements a process-wide, lock-free region allocator
// sitting between OS virtual-memory primitives and a higher-level segment
// allocator that needs large, segment-aligned chunks of memory.
//
// # Concurrency Model
//
// Arena supports concurrent Alloc/AllocAligned/Free from any number of
// goroutines. There are no locks on the hot path: region claims are made
// with a compare-and-swap loop over a single atomic bitmap word per region,
// and a region's backing memory is published with a one-shot CAS on an
// atomic pointer. The only blocking calls in the package are the OS adapter
// primitives (reserve, commit, decommit, reset, protect); a configured budget
// limiter is consulted without blocking.
//
// # Memory Management
//
// Regions are reserved lazily in BlockSize*Bits chunks (256 MiB by default)
// and are never returned to the OS individually; only the sub-ranges
// claimed within them are committed and decommitted as callers allocate and
// free. Requests above RegionMaxAlloc, or with alignment greater than
// BlockSize, bypass the region table entirely and go straight to the OS
// adapter.
package regionarena
