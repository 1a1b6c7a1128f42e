package bridge

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/qxrlabs/qxr-bridge/errors"
	"github.com/qxrlabs/qxr-bridge/record"
	"github.com/qxrlabs/qxr-bridge/resource"
)

// Resource type IDs in the host table.
const (
	TypeRecord uint32 = 1
)

// Content generation capacity bounds for the auto-retry loop.
const (
	initialContentCapacity = 256
	maxContentCapacity     = 64 * 1024
)

// Host is the dynamic facade over the bridge: records are built from
// loosely typed field maps, referenced by opaque handles, and scored
// through the shared context. Not safe for concurrent use.
type Host struct {
	bc    *Context
	table *resource.Table
	log   *zap.Logger
}

// NewHost creates a host around a fresh bridge context. Like New, it
// never returns nil; a degraded context surfaces through the error slot
// and through failing operations.
func NewHost(cfg Config) *Host {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := &Host{
		bc:    New(cfg),
		table: resource.NewTable(),
		log:   log,
	}
	h.table.Subscribe(tableObserver{log: log})
	return h
}

// Context returns the underlying bridge context.
func (h *Host) Context() *Context {
	return h.bc
}

// MemoryStats reports the arena's accounting counters.
func (h *Host) MemoryStats() map[string]uint64 {
	stats := h.bc.Arena().Accounting().Stats()
	return map[string]uint64{
		"total_allocated":    stats.TotalAllocated,
		"peak_allocated":     stats.PeakAllocated,
		"allocation_count":   stats.AllocationCount,
		"deallocation_count": stats.DeallocationCount,
	}
}

// Version returns the engine version, "" when the context is degraded.
func (h *Host) Version() string {
	return h.bc.Version()
}

// NewRecord builds a record from a dynamic field map and returns its
// handle. Unknown keys and mistyped values are rejected before anything
// is allocated, so a failed call leaks nothing.
func (h *Host) NewRecord(fields map[string]any) (resource.Handle, error) {
	if err := h.bc.guard(); err != nil {
		return 0, err
	}

	var p record.Params
	for key, value := range fields {
		if err := setParam(&p, key, value); err != nil {
			return 0, h.bc.fail(err)
		}
	}

	rec, err := record.New(h.bc.Arena(), p)
	if err != nil {
		return 0, h.bc.fail(asBridgeError(err, errors.PhaseValidate))
	}
	return h.table.Insert(TypeRecord, rec), nil
}

// Record resolves a handle to its record.
func (h *Host) Record(handle resource.Handle) (*record.Record, error) {
	v, ok := h.table.GetTyped(handle, TypeRecord)
	if !ok {
		return nil, h.bc.fail(errors.InvalidContext(fmt.Sprintf("handle %d is not a live record", handle)))
	}
	return v.(*record.Record), nil
}

// SetRecordField installs a string field on the record behind handle.
func (h *Host) SetRecordField(handle resource.Handle, field record.Field, text string) error {
	rec, err := h.Record(handle)
	if err != nil {
		return err
	}
	if err := rec.SetField(field, text); err != nil {
		return h.bc.fail(asBridgeError(err, errors.PhaseValidate))
	}
	return nil
}

// Process scores the record behind handle.
func (h *Host) Process(ctx context.Context, handle resource.Handle) (float64, error) {
	rec, err := h.Record(handle)
	if err != nil {
		return 0, err
	}
	return h.bc.Process(ctx, rec)
}

// BatchProcess scores the records behind handles in one engine call.
// Every handle is resolved before any scratch memory is allocated.
func (h *Host) BatchProcess(ctx context.Context, handles []resource.Handle) ([]float64, error) {
	recs := make([]*record.Record, len(handles))
	for i, handle := range handles {
		rec, err := h.Record(handle)
		if err != nil {
			return nil, err
		}
		recs[i] = rec
	}
	return h.bc.BatchProcess(ctx, recs)
}

// GenerateContent renders platform content for the record behind handle,
// growing the output region on capacity failures up to a fixed bound.
func (h *Host) GenerateContent(ctx context.Context, handle resource.Handle, platform string) (string, error) {
	rec, err := h.Record(handle)
	if err != nil {
		return "", err
	}
	capacity := uint32(initialContentCapacity)
	for {
		out, err := h.bc.GenerateContent(ctx, rec, platform, capacity)
		if err == nil {
			return out, nil
		}
		be, ok := err.(*errors.Error)
		if !ok || be.Kind != errors.KindCapacity || capacity >= maxContentCapacity {
			return "", err
		}
		capacity *= 2
	}
}

// DropRecord removes the record behind handle from the table and frees
// its buffers. Reports whether the handle was live.
func (h *Host) DropRecord(handle resource.Handle) bool {
	_, ok := h.table.Remove(handle)
	return ok
}

// Records returns the number of live records.
func (h *Host) Records() int {
	return h.table.Len()
}

// Close drops all live records and closes the bridge context.
func (h *Host) Close() error {
	if err := h.table.Close(); err != nil {
		h.log.Warn("resource table close failed", zap.Error(err))
	}
	return h.bc.Close()
}

// setParam maps one dynamic field onto p, validating name and type.
func setParam(p *record.Params, key string, value any) *errors.Error {
	switch key {
	case "signals":
		v, ok := toInt32(value)
		if !ok {
			return mismatch(key, value, "s32")
		}
		p.Signals = v
	case "opportunities":
		v, ok := toInt32(value)
		if !ok {
			return mismatch(key, value, "s32")
		}
		p.Opportunities = v
	case "signal_strength":
		v, ok := toFloat64(value)
		if !ok {
			return mismatch(key, value, "f64")
		}
		p.SignalStrength = v
	case "price_min":
		v, ok := toFloat64(value)
		if !ok {
			return mismatch(key, value, "f64")
		}
		p.PriceMin = v
	case "price_max":
		v, ok := toFloat64(value)
		if !ok {
			return mismatch(key, value, "f64")
		}
		p.PriceMax = v
	case "max_liquidity":
		v, ok := toInt64(value)
		if !ok {
			return mismatch(key, value, "s64")
		}
		p.MaxLiquidity = v
	case "strategy":
		v, ok := value.(string)
		if !ok {
			return mismatch(key, value, "string")
		}
		p.Strategy = v
	case "timeframe":
		v, ok := value.(string)
		if !ok {
			return mismatch(key, value, "string")
		}
		p.Timeframe = v
	default:
		return errors.FieldUnknown(errors.PhaseValidate, []string{"record", key}, key)
	}
	return nil
}

func mismatch(key string, value any, wireType string) *errors.Error {
	return errors.TypeMismatch(errors.PhaseValidate, []string{"record", key}, fmt.Sprintf("%T", value), wireType)
}

func toInt32(v any) (int32, bool) {
	switch n := v.(type) {
	case int:
		if n < -1<<31 || n > 1<<31-1 {
			return 0, false
		}
		return int32(n), true
	case int32:
		return n, true
	case int64:
		if n < -1<<31 || n > 1<<31-1 {
			return 0, false
		}
		return int32(n), true
	}
	return 0, false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// tableObserver logs resource lifecycle events.
type tableObserver struct {
	log *zap.Logger
}

func (o tableObserver) OnResourceEvent(e resource.Event) {
	switch e.Type {
	case resource.EventCreated:
		o.log.Debug("resource created",
			zap.Uint32("handle", uint32(e.Handle)),
			zap.Uint32("type", e.TypeID))
	case resource.EventDropped:
		o.log.Debug("resource dropped",
			zap.Uint32("handle", uint32(e.Handle)),
			zap.Uint32("type", e.TypeID))
	}
}

// Record implements resource.Dropper via Drop; keep the check close to
// where records enter the table.
var _ resource.Dropper = (*record.Record)(nil)
