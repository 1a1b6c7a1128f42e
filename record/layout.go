package record

import (
	"math"

	qxrbridge "github.com/qxrlabs/qxr-bridge"
)

// Wire layout constants. The engine addresses records as fixed 56-byte
// blocks, so batch arrays are contiguous with stride WireSize.
const (
	WireSize  uint32 = 56
	WireAlign uint32 = 8

	offSignals       uint32 = 0
	offOpportunities uint32 = 4
	offStrength      uint32 = 8
	offPriceMin      uint32 = 16
	offPriceMax      uint32 = 24
	offMaxLiquidity  uint32 = 32
	offStrategyPtr   uint32 = 40
	offStrategyLen   uint32 = 44
	offTimeframePtr  uint32 = 48
	offTimeframeLen  uint32 = 52
)

// EncodeWire writes the record's wire form at ptr. String fields are
// written as ptr/len pairs referencing the record's own buffers; no
// string bytes are copied.
func (r *Record) EncodeWire(mem qxrbridge.Memory, ptr uint32) error {
	pair := func(off uint32, lo, hi uint32) error {
		if err := mem.WriteU32(ptr+off, lo); err != nil {
			return err
		}
		return mem.WriteU32(ptr+off+4, hi)
	}

	if err := pair(offSignals, uint32(r.signals), uint32(r.opportunities)); err != nil {
		return err
	}
	if err := mem.WriteU64(ptr+offStrength, math.Float64bits(r.signalStrength)); err != nil {
		return err
	}
	if err := mem.WriteU64(ptr+offPriceMin, math.Float64bits(r.priceMin)); err != nil {
		return err
	}
	if err := mem.WriteU64(ptr+offPriceMax, math.Float64bits(r.priceMax)); err != nil {
		return err
	}
	if err := mem.WriteU64(ptr+offMaxLiquidity, uint64(r.maxLiquidity)); err != nil {
		return err
	}
	if err := pair(offStrategyPtr, r.strategy.Ptr(), r.strategy.Len()); err != nil {
		return err
	}
	return pair(offTimeframePtr, r.timeframe.Ptr(), r.timeframe.Len())
}

// Wire is the decoded fixed-size view of a record in linear memory,
// as the engine sees it.
type Wire struct {
	Signals        int32
	Opportunities  int32
	SignalStrength float64
	PriceMin       float64
	PriceMax       float64
	MaxLiquidity   int64
	StrategyPtr    uint32
	StrategyLen    uint32
	TimeframePtr   uint32
	TimeframeLen   uint32
}

// DecodeWire reads a Wire at ptr.
func DecodeWire(mem qxrbridge.Memory, ptr uint32) (Wire, error) {
	var w Wire

	u32 := func(off uint32) (uint32, error) { return mem.ReadU32(ptr + off) }
	u64 := func(off uint32) (uint64, error) { return mem.ReadU64(ptr + off) }

	v, err := u32(offSignals)
	if err != nil {
		return w, err
	}
	w.Signals = int32(v)

	if v, err = u32(offOpportunities); err != nil {
		return w, err
	}
	w.Opportunities = int32(v)

	b, err := u64(offStrength)
	if err != nil {
		return w, err
	}
	w.SignalStrength = math.Float64frombits(b)

	if b, err = u64(offPriceMin); err != nil {
		return w, err
	}
	w.PriceMin = math.Float64frombits(b)

	if b, err = u64(offPriceMax); err != nil {
		return w, err
	}
	w.PriceMax = math.Float64frombits(b)

	if b, err = u64(offMaxLiquidity); err != nil {
		return w, err
	}
	w.MaxLiquidity = int64(b)

	if w.StrategyPtr, err = u32(offStrategyPtr); err != nil {
		return w, err
	}
	if w.StrategyLen, err = u32(offStrategyLen); err != nil {
		return w, err
	}
	if w.TimeframePtr, err = u32(offTimeframePtr); err != nil {
		return w, err
	}
	if w.TimeframeLen, err = u32(offTimeframeLen); err != nil {
		return w, err
	}

	return w, nil
}

// Strategy reads the strategy string the wire view points at.
// Returns "" for the empty {0, 0} pair.
func (w Wire) Strategy(mem qxrbridge.Memory) (string, error) {
	return readString(mem, w.StrategyPtr, w.StrategyLen)
}

// Timeframe reads the timeframe string the wire view points at.
func (w Wire) Timeframe(mem qxrbridge.Memory) (string, error) {
	return readString(mem, w.TimeframePtr, w.TimeframeLen)
}

func readString(mem qxrbridge.Memory, ptr, length uint32) (string, error) {
	if ptr == 0 || length == 0 {
		return "", nil
	}
	data, err := mem.Read(ptr, length)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
