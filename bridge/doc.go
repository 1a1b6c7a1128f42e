// Package bridge is the boundary layer between host code and the
// scoring engine.
//
// A Context owns an engine and an arena and carries the error slot: the
// code and message of the last failed operation, readable at any time
// without allocating. The adapter methods (Process, GenerateContent,
// BatchProcess) encode records into scratch wire memory, invoke the
// engine, and translate status codes into structured errors, releasing
// every scratch region on all paths.
//
// Host wraps a Context with a resource table so records can be built
// from dynamic field maps and referenced by opaque handles, the shape a
// scripting host or FFI layer needs.
package bridge
