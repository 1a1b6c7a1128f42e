// Package resource provides the handle table behind the bridge's host
// facade.
//
// Host runtimes never hold Go pointers to live records or contexts; they
// hold opaque integer handles. The table maps handles to values, enforces
// the value's type on retrieval, and destroys values that implement Dropper
// when their handle is removed.
//
// # Handle Table
//
//	table := resource.NewTable()
//
//	// Insert a value, get a handle
//	handle := table.Insert(typeID, rec)
//
//	// Type-checked retrieval
//	value, ok := table.GetTyped(handle, typeID)
//
//	// Remove and destroy (Dropper values are dropped)
//	table.Remove(handle)
//
// Handle 0 is reserved and always invalid. Freed handles are recycled.
//
// # Type Safety
//
// Each resource type gets a unique type ID. GetTyped with the wrong ID
// fails, which is how the bridge detects a wrong value type crossing the
// boundary before anything reaches the engine.
//
// # Observers
//
// Observers receive created/dropped events, used for lifecycle logging and
// leak diagnostics. Values are not garbage collected: a handle that is never
// removed keeps its value (and any arena buffers it owns) alive until the
// table is closed.
package resource
