// Package errors provides structured error types for the qxr-bridge library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: field path, Go/wire type
// names, the raw engine status where one exists, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseValidate, errors.KindTypeMismatch).
//		Path("record", "signals").
//		GoType("string").
//		WireType("s32").
//		Detail("cannot convert string to integer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeMismatch(errors.PhaseValidate, path, "string", "s32")
//	err := errors.Capacity(-2, 512)
//
// Code maps any error onto the wire-level code space recorded in a bridge
// context's error slot, so a one-line "set error and return" stays possible
// at call sites without sentinel values leaking into public returns.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
