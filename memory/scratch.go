package memory

import (
	"sync"

	qxrbridge "github.com/qxrlabs/qxr-bridge"
)

type region struct {
	ptr   uint32
	size  uint32
	align uint32
}

// Scratch tracks the arena regions acquired while assembling one
// engine call, so a single deferred Release covers every exit path.
// Batch assembly tracks its record array and result array through one
// Scratch; an abort frees both before the error surfaces.
type Scratch struct {
	regions []region
}

var scratchPool = sync.Pool{
	New: func() any {
		return &Scratch{regions: make([]region, 0, 8)}
	},
}

// NewScratch returns a pooled tracker.
func NewScratch() *Scratch {
	return scratchPool.Get().(*Scratch)
}

// Track records a region for release.
func (s *Scratch) Track(ptr, size, align uint32) {
	s.regions = append(s.regions, region{ptr: ptr, size: size, align: align})
}

// Len returns the number of tracked regions.
func (s *Scratch) Len() int {
	return len(s.regions)
}

const maxPooledScratch = 128

// Release frees every tracked region through allocator and returns the
// tracker to the pool. A nil allocator skips the frees. The tracker is
// invalid after Release.
func (s *Scratch) Release(allocator qxrbridge.Allocator) {
	if allocator != nil {
		for _, r := range s.regions {
			if r.ptr != 0 {
				allocator.Free(r.ptr, r.size, r.align)
			}
		}
	}
	s.regions = s.regions[:0]
	// Only pool small trackers to prevent memory bloat
	if cap(s.regions) > maxPooledScratch {
		return
	}
	scratchPool.Put(s)
}
