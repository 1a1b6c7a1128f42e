package record

import (
	"github.com/qxrlabs/qxr-bridge/errors"
	"github.com/qxrlabs/qxr-bridge/memory"
)

// Field selects a string field of a Record.
type Field int

const (
	FieldStrategy Field = iota
	FieldTimeframe
)

func (f Field) String() string {
	switch f {
	case FieldStrategy:
		return "strategy"
	case FieldTimeframe:
		return "timeframe"
	default:
		return "unknown"
	}
}

// Params holds construction values. Every field is optional; the zero
// value produces an empty record.
type Params struct {
	Signals        int32
	Opportunities  int32
	SignalStrength float64
	PriceMin       float64
	PriceMax       float64
	MaxLiquidity   int64
	Strategy       string
	Timeframe      string
}

// Record is a research record owning its string buffers. Not safe for
// concurrent use.
type Record struct {
	arena *memory.Arena

	signals        int32
	opportunities  int32
	signalStrength float64
	priceMin       float64
	priceMax       float64
	maxLiquidity   int64

	strategy  memory.OwnedBuffer
	timeframe memory.OwnedBuffer

	closed bool
}

// New creates a record in arena from p. On any failure the partially
// built record is destroyed and nothing stays allocated.
func New(arena *memory.Arena, p Params) (*Record, error) {
	if arena == nil {
		return nil, errors.NilPointer(errors.PhaseValidate, []string{"record"}, "*memory.Arena")
	}

	r := &Record{
		arena:          arena,
		signals:        p.Signals,
		opportunities:  p.Opportunities,
		signalStrength: p.SignalStrength,
		priceMin:       p.PriceMin,
		priceMax:       p.PriceMax,
		maxLiquidity:   p.MaxLiquidity,
	}

	if p.Strategy != "" {
		if err := r.SetField(FieldStrategy, p.Strategy); err != nil {
			return nil, err
		}
	}
	if p.Timeframe != "" {
		if err := r.SetField(FieldTimeframe, p.Timeframe); err != nil {
			_ = r.Close()
			return nil, err
		}
	}

	return r, nil
}

// SetField installs text into the selected string field. The previous
// buffer is freed only after the new one was successfully allocated;
// on any failure the record is left unmodified. An unrecognized field
// releases the freshly copied text before failing.
func (r *Record) SetField(field Field, text string) error {
	if r == nil {
		return errors.NilPointer(errors.PhaseValidate, []string{"record"}, "*record.Record")
	}
	if r.closed {
		return errors.Closed("record")
	}

	buf, err := r.arena.NewBufferFrom(text)
	if err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindAllocation, err, "copy "+field.String())
	}

	switch field {
	case FieldStrategy:
		r.strategy.Free()
		r.strategy = buf
	case FieldTimeframe:
		r.timeframe.Free()
		r.timeframe = buf
	default:
		buf.Free()
		return errors.FieldUnknown(errors.PhaseValidate, []string{"record"}, field.String())
	}

	return nil
}

// Numeric accessors and mutators.

func (r *Record) Signals() int32          { return r.signals }
func (r *Record) Opportunities() int32    { return r.opportunities }
func (r *Record) SignalStrength() float64 { return r.signalStrength }
func (r *Record) PriceRange() (min, max float64) {
	return r.priceMin, r.priceMax
}
func (r *Record) MaxLiquidity() int64 { return r.maxLiquidity }

func (r *Record) SetSignals(v int32)          { r.signals = v }
func (r *Record) SetOpportunities(v int32)    { r.opportunities = v }
func (r *Record) SetSignalStrength(v float64) { r.signalStrength = v }
func (r *Record) SetPriceRange(min, max float64) {
	r.priceMin = min
	r.priceMax = max
}
func (r *Record) SetMaxLiquidity(v int64) { r.maxLiquidity = v }

// Strategy reads the strategy field back out of the arena.
func (r *Record) Strategy() (string, error) {
	return r.strategy.String()
}

// Timeframe reads the timeframe field back out of the arena.
func (r *Record) Timeframe() (string, error) {
	return r.timeframe.String()
}

// Close frees both owned buffers. Safe on nil and on repeated calls.
func (r *Record) Close() error {
	if r == nil || r.closed {
		return nil
	}
	r.strategy.Free()
	r.timeframe.Free()
	r.closed = true
	return nil
}

// Drop lets records live in a resource table.
func (r *Record) Drop() {
	_ = r.Close()
}
