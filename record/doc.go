// Package record defines the research record that crosses the bridge
// boundary: the host-side owning value object and its fixed wire layout in
// linear memory.
//
// A Record owns its two string buffers exclusively. Installing a new string
// frees the previous buffer before the new one becomes visible; Close frees
// both exactly once. Numeric fields are plain values copied at encode time.
//
// # Wire Layout
//
// The engine reads records as 56 bytes, little-endian, 8-aligned:
//
//	Offset  Size  Field
//	──────────────────────────────
//	0       4     signals        s32
//	4       4     opportunities  s32
//	8       8     strength       f64
//	16      8     price min      f64
//	24      8     price max      f64
//	32      8     max liquidity  s64
//	40      4     strategy ptr   u32
//	44      4     strategy len   u32
//	48      4     timeframe ptr  u32
//	52      4     timeframe len  u32
//
// String fields are ptr/len pairs referencing buffers already resident in
// the same arena, so batch assembly never re-copies string data.
package record
