package regionarena

import "sync/atomic"

// Stats is a point-in-time snapshot of arena activity.
type Stats struct {
	RegionsReserved  uint64 // regions that ever had backing memory installed
	ClaimsSucceeded  uint64 // successful block-range claims
	ClaimsRolledBack uint64 // claims rolled back after a reservation failure
	BytesCommitted   uint64
	BytesDecommitted uint64
	BytesReset       uint64
	BypassAllocs     uint64 // allocations that skipped the region table
	CommitFailures   uint64 // tolerated, not rolled back (see DESIGN.md)
}

// StatsSink is an opaque handle threaded through commit/decommit/reset/
// bypass calls. The arena never inspects it, only calls into it.
type StatsSink interface {
	AddCommitted(bytes int64)
	AddDecommitted(bytes int64)
	AddReset(bytes int64)
	AddBypassed(bytes int64)
}

// NoopStatsSink discards everything.
type NoopStatsSink struct{}

func (NoopStatsSink) AddCommitted(int64)   {}
func (NoopStatsSink) AddDecommitted(int64) {}
func (NoopStatsSink) AddReset(int64)       {}
func (NoopStatsSink) AddBypassed(int64)    {}

type atomicStats struct {
	regionsReserved  atomic.Uint64
	claimsSucceeded  atomic.Uint64
	claimsRolledBack atomic.Uint64
	bytesCommitted   atomic.Uint64
	bytesDecommitted atomic.Uint64
	bytesReset       atomic.Uint64
	bypassAllocs     atomic.Uint64
	commitFailures   atomic.Uint64
}

func (s *atomicStats) snapshot() Stats {
	return Stats{
		RegionsReserved:  s.regionsReserved.Load(),
		ClaimsSucceeded:  s.claimsSucceeded.Load(),
		ClaimsRolledBack: s.claimsRolledBack.Load(),
		BytesCommitted:   s.bytesCommitted.Load(),
		BytesDecommitted: s.bytesDecommitted.Load(),
		BytesReset:       s.bytesReset.Load(),
		BypassAllocs:     s.bypassAllocs.Load(),
		CommitFailures:   s.commitFailures.Load(),
	}
}
