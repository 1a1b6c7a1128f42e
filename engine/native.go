package engine

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	qxrbridge "github.com/qxrlabs/qxr-bridge"
	"github.com/qxrlabs/qxr-bridge/record"
)

const nativeVersion = "qxr-engine/0.1.0 (native)"

// defaultTimeframe substitutes for records that carry no timeframe.
const defaultTimeframe = "24h"

// Native is the in-process reference engine.
type Native struct{}

var _ Engine = (*Native)(nil)

// NewNative is a Factory for the native engine.
func NewNative(ctx context.Context) (Engine, error) {
	return &Native{}, nil
}

// score computes the performance score of a decoded record:
// signal base scaled by a logarithmic liquidity factor and an
// opportunity multiplier. Returns false when the result is not a
// usable non-negative finite score.
func score(w record.Wire) (float64, bool) {
	base := float64(w.Signals) * w.SignalStrength
	liquidity := math.Log(float64(w.MaxLiquidity)) / 10.0
	multiplier := 1.0 + float64(w.Opportunities)/100.0

	s := base * liquidity * multiplier
	if math.IsNaN(s) || math.IsInf(s, 0) || s < 0 {
		return 0, false
	}
	return s, true
}

// Process scores the record at recPtr.
func (e *Native) Process(ctx context.Context, mem qxrbridge.Memory, recPtr uint32) float64 {
	w, err := record.DecodeWire(mem, recPtr)
	if err != nil {
		Logger().Debug("process: decode failed", zap.Error(err))
		return float64(StatusFailure)
	}

	s, ok := score(w)
	if !ok {
		Logger().Debug("process: unusable score",
			zap.Int32("signals", w.Signals),
			zap.Int64("max_liquidity", w.MaxLiquidity))
		return float64(StatusFailure)
	}
	return s
}

// GenerateContent renders platform content into the caller's region.
func (e *Native) GenerateContent(ctx context.Context, mem qxrbridge.Memory, recPtr, platPtr, platLen, outPtr, outCap uint32) int32 {
	w, err := record.DecodeWire(mem, recPtr)
	if err != nil {
		return StatusFailure
	}

	platform := ""
	if platPtr != 0 && platLen != 0 {
		data, err := mem.Read(platPtr, platLen)
		if err != nil {
			return StatusFailure
		}
		platform = string(data)
	}

	s, ok := score(w)
	if !ok {
		return StatusFailure
	}

	timeframe, err := w.Timeframe(mem)
	if err != nil {
		return StatusFailure
	}
	if timeframe == "" {
		timeframe = defaultTimeframe
	}

	var content string
	switch platform {
	case "linkedin":
		content = fmt.Sprintf(
			"🚀 QXR Research Update: %d signals detected with %.3f strength. Performance score: %.2f. %d opportunities identified in %s.",
			w.Signals, w.SignalStrength, s, w.Opportunities, timeframe)
	case "twitter":
		content = fmt.Sprintf(
			"🔥 %d signals @ %.3f strength | Score: %.1f | %d ops | %s #QXR #Trading",
			w.Signals, w.SignalStrength, s, w.Opportunities, timeframe)
	default:
		content = fmt.Sprintf("QXR Analysis: %d signals, performance %.2f", w.Signals, s)
	}

	if uint32(len(content)) > outCap {
		return StatusCapacity
	}
	if err := mem.Write(outPtr, []byte(content)); err != nil {
		return StatusFailure
	}
	return int32(len(content))
}

// BatchProcess scores n contiguous records.
func (e *Native) BatchProcess(ctx context.Context, mem qxrbridge.Memory, arrPtr, n, outPtr uint32) int32 {
	if n == 0 || n > math.MaxInt32 {
		return StatusFailure
	}

	for i := uint32(0); i < n; i++ {
		w, err := record.DecodeWire(mem, arrPtr+i*record.WireSize)
		if err != nil {
			return StatusFailure
		}
		s, ok := score(w)
		if !ok {
			return StatusFailure
		}
		if err := mem.WriteU64(outPtr+i*8, math.Float64bits(s)); err != nil {
			return StatusFailure
		}
	}
	return int32(n)
}

// Version returns the engine build identifier.
func (e *Native) Version() string {
	return nativeVersion
}

// Close releases the engine.
func (e *Native) Close() error {
	return nil
}
