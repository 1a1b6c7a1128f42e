// Package memory provides the linear-memory arena shared between the host
// side of the bridge and the engine, plus the ownership and accounting
// machinery around it.
//
// # Arena
//
// An Arena is a byte-addressed region carved out of a Store. Allocation is a
// bump pointer with per-size free lists: freed regions remain inside the
// arena and are reused by later allocations of the same size, mirroring
// linear-memory semantics where the backing can only grow. Offset 0 is
// reserved so a zero pointer always means "empty".
//
//	a := memory.NewArena(memory.Config{})
//	ptr, err := a.Alloc(56, 8)
//	...
//	a.Free(ptr, 56, 8)
//
// # Stores
//
// The default Store is an in-process byte slice grown in wasm-sized pages.
// WazeroStore backs the same Arena with the exported memory of a minimal
// WebAssembly module instantiated through wazero, so the arena contents are
// directly addressable by wasm-hosted engine implementations.
//
// # Owned Buffers
//
// OwnedBuffer is a length-carrying handle to an arena region with
// single-owner semantics. Because the buffer remembers its own size, the
// owner can never free with a mismatched size. Free zeroes the handle, so a
// second Free is a no-op rather than a double free. A buffer is empty iff its
// pointer is zero; empty buffers never touch the arena.
//
// # Accounting
//
// Every Arena reports to an Accounting instance: current bytes, peak bytes,
// allocation and deallocation counts, all atomic. Accounting is injected per
// arena rather than process-wide, so tests get isolated counters; pass a
// shared instance to aggregate across arenas. NewStatsCollector adapts an
// Accounting into a Prometheus collector for embedding hosts.
package memory
