package regionarena

import (
	"github.com/hupe1980/regionarena/internal/budget"
	"github.com/hupe1980/regionarena/vmos"
)

// config holds the resolved construction-time settings for an Arena.
type config struct {
	blockSize   int
	heapMax     int64
	eagerCommit bool
	adapter     vmos.Adapter
	limiter     *budget.Limiter
	logger      *Logger
	statsSink   StatsSink
}

// Option configures Arena construction.
type Option func(*config)

// WithBlockSize overrides the region block size (segment granule). Intended
// for tests and embedders that need a smaller address-space footprint than
// the production default (4 MiB); it must be a positive power of two.
func WithBlockSize(size int) Option {
	return func(c *config) {
		if size > 0 {
			c.blockSize = size
		}
	}
}

// WithHeapMax overrides the aggregate virtual address ceiling used to size
// the region descriptor table. Intended for tests; production callers
// should leave this at DefaultHeapMax.
func WithHeapMax(bytes int64) Option {
	return func(c *config) {
		if bytes > 0 {
			c.heapMax = bytes
		}
	}
}

// WithEagerCommit enables eager_region_commit: newly reserved regions are
// committed immediately, and release uses Reset rather than Decommit.
func WithEagerCommit(eager bool) Option {
	return func(c *config) {
		c.eagerCommit = eager
	}
}

// WithAdapter injects the OS virtual-memory adapter. Defaults to
// vmos.System(). Tests typically pass vmos.NewHeapAdapter(...) or a
// vmos.FaultyAdapter wrapping it.
func WithAdapter(adapter vmos.Adapter) Option {
	return func(c *config) {
		if adapter != nil {
			c.adapter = adapter
		}
	}
}

// WithBudget attaches a resource budget enforcing HEAP_MAX and throttling
// OS reservation bursts.
func WithBudget(limiter *budget.Limiter) Option {
	return func(c *config) {
		c.limiter = limiter
	}
}

// WithLogger attaches a structured logger. Defaults to a no-op logger.
func WithLogger(logger *Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStatsSink attaches the opaque statistics sink threaded through
// commit/decommit/reset/bypass calls.
func WithStatsSink(sink StatsSink) Option {
	return func(c *config) {
		if sink != nil {
			c.statsSink = sink
		}
	}
}
