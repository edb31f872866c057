// Package budget enforces the region arena's HEAP_MAX ceiling and throttles
// how fast the arena issues OS reservation calls.
//
// A weighted semaphore caps aggregate reserved bytes, and a token-bucket
// rate limiter smooths bursts of concurrent region reservations: when many
// goroutines simultaneously find a region unbacked, they all race to reserve
// OS memory for it, and only one wins; the rate limiter keeps that race from
// turning into an N-way reservation storm under high concurrency.
package budget
