package budget

import (
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrHeapLimitExceeded is returned when reserving would exceed the
// configured heap ceiling.
var ErrHeapLimitExceeded = errors.New("budget: heap limit exceeded")

// ErrReservationThrottled is returned when an OS reservation call would
// exceed the configured reservation rate.
var ErrReservationThrottled = errors.New("budget: reservation rate exceeded")

// Config holds the arena's resource limits.
type Config struct {
	// HeapMaxBytes is the hard ceiling on aggregate reserved region bytes.
	// If 0, no ceiling is enforced (only tracking).
	HeapMaxBytes int64

	// MaxReservationsPerSec throttles how many OS reserve calls the arena
	// will issue per second. If 0, unlimited.
	MaxReservationsPerSec float64
}

// Limiter enforces Config against the region arena's reservation engine.
// All methods are non-blocking: the arena never blocks on its own state,
// only on the OS adapter calls it guards.
type Limiter struct {
	cfg Config

	heapSem  *semaphore.Weighted // nil if unlimited
	heapUsed atomic.Int64

	reserveLimiter *rate.Limiter // nil if unlimited
}

// New creates a Limiter from cfg.
func New(cfg Config) *Limiter {
	l := &Limiter{cfg: cfg}

	if cfg.HeapMaxBytes > 0 {
		l.heapSem = semaphore.NewWeighted(cfg.HeapMaxBytes)
	}
	if cfg.MaxReservationsPerSec > 0 {
		l.reserveLimiter = rate.NewLimiter(rate.Limit(cfg.MaxReservationsPerSec), 1)
	}

	return l
}

// TryAcquire attempts to reserve bytes against the heap ceiling without
// blocking. Returns ErrHeapLimitExceeded if the ceiling would be exceeded.
func (l *Limiter) TryAcquire(bytes int64) error {
	if l == nil || bytes <= 0 {
		return nil
	}

	if l.heapSem != nil && !l.heapSem.TryAcquire(bytes) {
		return ErrHeapLimitExceeded
	}

	l.heapUsed.Add(bytes)
	return nil
}

// Release returns bytes to the heap ceiling.
func (l *Limiter) Release(bytes int64) {
	if l == nil || bytes <= 0 {
		return
	}

	if l.heapSem != nil {
		l.heapSem.Release(bytes)
	}
	l.heapUsed.Add(-bytes)
}

// AllowReserve reports whether a new OS reservation call may proceed right
// now under the reservation rate limit, without blocking. A caller that
// gets false must not issue the OS reservation; like TryAcquire, this is a
// hard rejection, just against the rate ceiling instead of the byte
// ceiling.
func (l *Limiter) AllowReserve() bool {
	if l == nil || l.reserveLimiter == nil {
		return true
	}
	return l.reserveLimiter.Allow()
}

// Used returns the currently reserved bytes tracked by the limiter.
func (l *Limiter) Used() int64 {
	if l == nil {
		return 0
	}
	return l.heapUsed.Load()
}

// HeapMax returns the configured heap ceiling in bytes (0 if unlimited).
func (l *Limiter) HeapMax() int64 {
	if l == nil {
		return 0
	}
	return l.cfg.HeapMaxBytes
}
