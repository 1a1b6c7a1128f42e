package memory

import "sync/atomic"

// Stats is a point-in-time snapshot of an Accounting instance.
type Stats struct {
	TotalAllocated    uint64 // bytes currently attributed as allocated
	PeakAllocated     uint64 // high-water mark of TotalAllocated
	AllocationCount   uint64
	DeallocationCount uint64
}

// Accounting tracks allocation volume for one or more arenas.
// All counters are atomic; relaxed consistency across fields is
// acceptable for diagnostics (a snapshot may observe an alloc
// before the matching peak update).
type Accounting struct {
	total       atomic.Uint64
	peak        atomic.Uint64
	allocations atomic.Uint64
	frees       atomic.Uint64
}

// NewAccounting creates an isolated accounting context.
func NewAccounting() *Accounting {
	return &Accounting{}
}

// recordAlloc attributes size bytes. Called only after the
// allocation actually succeeded.
func (a *Accounting) recordAlloc(size uint32) {
	if a == nil {
		return
	}
	total := a.total.Add(uint64(size))
	a.allocations.Add(1)
	for {
		peak := a.peak.Load()
		if total <= peak || a.peak.CompareAndSwap(peak, total) {
			return
		}
	}
}

// recordFree releases size bytes from the attribution.
func (a *Accounting) recordFree(size uint32) {
	if a == nil || size == 0 {
		return
	}
	a.total.Add(^uint64(size - 1))
	a.frees.Add(1)
}

// Stats returns a snapshot of the counters.
func (a *Accounting) Stats() Stats {
	if a == nil {
		return Stats{}
	}
	return Stats{
		TotalAllocated:    a.total.Load(),
		PeakAllocated:     a.peak.Load(),
		AllocationCount:   a.allocations.Load(),
		DeallocationCount: a.frees.Load(),
	}
}

// Reset clears all counters.
func (a *Accounting) Reset() {
	if a == nil {
		return
	}
	a.total.Store(0)
	a.peak.Store(0)
	a.allocations.Store(0)
	a.frees.Store(0)
}
