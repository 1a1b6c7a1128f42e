package bridge

import (
	"context"

	"go.uber.org/zap"

	"github.com/qxrlabs/qxr-bridge/engine"
	"github.com/qxrlabs/qxr-bridge/errors"
	"github.com/qxrlabs/qxr-bridge/memory"
)

// Sentinel messages returned by read accessors on degenerate contexts.
// Reads never allocate, so these hold even when the arena is exhausted.
const (
	msgInvalidContext = "Invalid context"
	msgNoError        = "No error"
)

// Config configures a bridge context.
type Config struct {
	// Engine creates the scoring engine. Default is the native engine.
	Engine engine.Factory

	// Arena is the linear memory everything boundary-crossing lives in.
	// nil creates a private arena with default sizing.
	Arena *memory.Arena

	// Logger for context lifecycle and failure events. Default no-op.
	Logger *zap.Logger
}

// Context pairs an engine with the arena it reads from and carries the
// error slot for the last failed operation. Not safe for concurrent use.
type Context struct {
	eng   engine.Engine
	arena *memory.Arena
	log   *zap.Logger

	lastCode int32
	lastMsg  string

	closed bool
}

// New creates a bridge context. It never returns nil: when the engine
// factory fails the context comes back degraded, with the failure
// already recorded in its error slot and every operation rejecting.
func New(cfg Config) *Context {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	arena := cfg.Arena
	if arena == nil {
		arena = memory.NewArena(memory.Config{})
	}
	factory := cfg.Engine
	if factory == nil {
		factory = engine.NewNative
	}

	c := &Context{
		arena: arena,
		log:   log,
	}

	eng, err := factory(context.Background())
	if err != nil {
		c.SetError(errors.CodeInvalidContext, "engine initialization failed: "+err.Error())
		log.Error("engine factory failed", zap.Error(err))
		return c
	}
	c.eng = eng
	log.Debug("bridge context created", zap.String("engine", eng.Version()))
	return c
}

// Valid reports whether the context can execute operations.
func (c *Context) Valid() bool {
	return c != nil && c.eng != nil && !c.closed
}

// Arena returns the context's arena. nil on a nil context.
func (c *Context) Arena() *memory.Arena {
	if c == nil {
		return nil
	}
	return c.arena
}

// SetError records code and msg in the error slot, replacing whatever
// was there. The code is always overwritten; an empty msg clears only
// the message. Returns code so failure paths can set and return in one
// line, or CodeInvalidContext on a nil context. Never allocates from
// the arena, so failed operations leave the accounting balanced.
func (c *Context) SetError(code int32, msg string) int32 {
	if c == nil {
		return errors.CodeInvalidContext
	}
	c.lastCode = code
	c.lastMsg = msg
	return code
}

// LastCode returns the code of the last recorded error, 0 when none.
func (c *Context) LastCode() int32 {
	if c == nil {
		return errors.CodeInvalidContext
	}
	return c.lastCode
}

// ErrMessage returns the last recorded error message. Never fails:
// a nil context reads "Invalid context", a clear slot "No error".
func (c *Context) ErrMessage() string {
	if c == nil {
		return msgInvalidContext
	}
	if c.lastMsg == "" {
		return msgNoError
	}
	return c.lastMsg
}

// Version returns the engine's version string, "" on an invalid context.
func (c *Context) Version() string {
	if !c.Valid() {
		return ""
	}
	return c.eng.Version()
}

// fail records err in the error slot, logs it, and returns it.
func (c *Context) fail(err *errors.Error) *errors.Error {
	if c != nil {
		c.SetError(err.Code(), err.Error())
		c.log.Debug("operation failed",
			zap.Int32("code", err.Code()),
			zap.String("phase", string(err.Phase)),
			zap.String("kind", string(err.Kind)))
	}
	return err
}

// guard rejects operations on contexts that cannot execute them.
func (c *Context) guard() *errors.Error {
	if c == nil {
		return errors.InvalidContext("nil bridge context")
	}
	if c.closed {
		return c.fail(errors.Closed("bridge context"))
	}
	if c.eng == nil {
		return c.fail(errors.InvalidContext("engine unavailable"))
	}
	return nil
}

// Close releases the engine and clears the error slot. Idempotent; the
// arena is left to its own owner.
func (c *Context) Close() error {
	if c == nil || c.closed {
		return nil
	}
	c.closed = true
	c.lastCode = 0
	c.lastMsg = ""
	if c.eng == nil {
		return nil
	}
	err := c.eng.Close()
	c.eng = nil
	if err != nil {
		c.log.Warn("engine close failed", zap.Error(err))
	}
	return err
}
