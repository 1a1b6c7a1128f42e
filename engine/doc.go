// Package engine defines the wire contract with the scoring engine and
// provides the native reference implementation.
//
// The contract is deliberately narrow and numeric: the engine sees only
// linear memory offsets and returns statuses in a fixed code space. This is
// the one layer where negative sentinels survive; everything above it maps
// statuses into structured errors.
//
//	Process          negative score ⇒ failure
//	GenerateContent  ≥0 bytes written; StatusCapacity when the output
//	                 region is too small; other negatives generic failure
//	BatchProcess     record count on success; negative ⇒ failure with no
//	                 partial results guaranteed
//
// Implementations must not retain the Memory between calls and must not
// allocate inside it; output regions are caller-provided.
package engine
