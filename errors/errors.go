package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// As and Is re-export the standard library matchers so callers never
// need both this package and the standard errors in one import block.
func As(err error, target any) bool { return stderrors.As(err, target) }

func Is(err, target error) bool { return stderrors.Is(err, target) }

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseValidate Phase = "validate" // argument and type checking
	PhaseEncode   Phase = "encode"   // host to wire memory
	PhaseDecode   Phase = "decode"   // wire memory to host
	PhaseEngine   Phase = "engine"   // engine invocation
	PhaseRuntime  Phase = "runtime"  // context and resource lifecycle
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindTypeMismatch    Kind = "type_mismatch"
	KindNilPointer      Kind = "nil_pointer"
	KindInvalidContext  Kind = "invalid_context"
	KindAllocation      Kind = "allocation"
	KindOutOfBounds     Kind = "out_of_bounds"
	KindInvalidUTF8     Kind = "invalid_utf8"
	KindOverflow        Kind = "overflow"
	KindFieldUnknown    Kind = "field_unknown"
	KindCapacity        Kind = "capacity"
	KindEngineFailure   Kind = "engine_failure"
	KindClosed          Kind = "closed"
)

// Wire-level error codes set into a bridge context's error slot.
// The code space mirrors the engine boundary: -1 for an unusable
// context or handle, -2 for rejected parameters, engine statuses
// pass through unchanged.
const (
	CodeInvalidContext int32 = -1
	CodeInvalidParams  int32 = -2
	CodeAllocation     int32 = -3
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	GoType   string
	WireType string
	Detail   string
	Path     []string
	Status   int32 // raw engine status, when Phase is engine
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.WireType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.WireType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", wire type ")
			b.WriteString(e.WireType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("wire type ")
			b.WriteString(e.WireType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.WireType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Code maps the error onto the wire-level code space. Engine failures
// carry their raw status through; everything detected host-side folds
// into the fixed negative codes.
func (e *Error) Code() int32 {
	switch e.Kind {
	case KindInvalidContext, KindClosed:
		return CodeInvalidContext
	case KindAllocation:
		return CodeAllocation
	case KindEngineFailure, KindCapacity:
		if e.Status != 0 {
			return e.Status
		}
		return CodeInvalidContext
	default:
		return CodeInvalidParams
	}
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// WireType sets the wire type name
func (b *Builder) WireType(t string) *Builder {
	b.err.WireType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Status sets the raw engine status
func (b *Builder) Status(s int32) *Builder {
	b.err.Status = s
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidArgument creates an invalid argument error
func InvalidArgument(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidArgument,
		Detail: detail,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, wireType string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindTypeMismatch,
		Path:     path,
		GoType:   goType,
		WireType: wireType,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, path []string, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Path:   path,
		GoType: goType,
		Detail: "nil pointer",
	}
}

// InvalidContext creates an invalid context error
func InvalidContext(detail string) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindInvalidContext,
		Detail: detail,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size, align uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, offset, length, size uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("region [%d, %d) exceeds memory size %d", offset, offset+length, size),
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, targetType string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindOverflow,
		Path:     path,
		WireType: targetType,
		Detail:   fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:    value,
	}
}

// FieldUnknown creates an unknown field error
func FieldUnknown(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldUnknown,
		Path:   path,
		Detail: fmt.Sprintf("unknown field %q", fieldName),
	}
}

// Capacity creates a buffer-too-small error carrying the engine status
func Capacity(status int32, capacity uint32) *Error {
	return &Error{
		Phase:  PhaseEngine,
		Kind:   KindCapacity,
		Status: status,
		Detail: fmt.Sprintf("output buffer too small (capacity %d)", capacity),
	}
}

// EngineFailure creates an engine failure error from a raw status
func EngineFailure(status int32, detail string) *Error {
	return &Error{
		Phase:  PhaseEngine,
		Kind:   KindEngineFailure,
		Status: status,
		Detail: detail,
	}
}

// Closed creates an error for operations on a closed object
func Closed(what string) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s is closed", what),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
