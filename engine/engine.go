package engine

import (
	"context"

	qxrbridge "github.com/qxrlabs/qxr-bridge"
)

// Status codes in the engine's return space.
const (
	// StatusFailure is the generic failure status.
	StatusFailure int32 = -1

	// StatusCapacity reports that the caller-provided output region was
	// too small. Distinguishable from generic failure so callers can
	// retry with a larger buffer.
	StatusCapacity int32 = -2
)

// Engine is the opaque scoring engine behind the bridge. All offsets
// address the Memory passed per call; records use the wire layout from
// the record package.
type Engine interface {
	// Process scores the record at recPtr. Negative means failure.
	Process(ctx context.Context, mem qxrbridge.Memory, recPtr uint32) float64

	// GenerateContent renders platform content for the record at recPtr
	// into the outCap-byte region at outPtr. Returns bytes written, or
	// StatusCapacity when the region is too small, or another negative
	// status on failure.
	GenerateContent(ctx context.Context, mem qxrbridge.Memory, recPtr, platPtr, platLen, outPtr, outCap uint32) int32

	// BatchProcess scores n contiguous records starting at arrPtr and
	// writes n float64 results at outPtr. Returns n on success. On a
	// negative return no partial results are guaranteed.
	BatchProcess(ctx context.Context, mem qxrbridge.Memory, arrPtr, n, outPtr uint32) int32

	// Version returns a static identifier of the engine build.
	Version() string

	// Close releases the engine.
	Close() error
}

// Factory creates an engine for a bridge context. A failing factory
// still yields a usable context whose error slot explains the failure.
type Factory func(ctx context.Context) (Engine, error)
