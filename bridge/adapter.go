package bridge

import (
	"context"
	"encoding/binary"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/qxrlabs/qxr-bridge/engine"
	"github.com/qxrlabs/qxr-bridge/errors"
	"github.com/qxrlabs/qxr-bridge/memory"
	"github.com/qxrlabs/qxr-bridge/record"
)

// MaxBatchSize bounds a single batch call. Keeps the wire array and
// result array allocations within uint32 arithmetic.
const MaxBatchSize = 1 << 16

// Process encodes rec into scratch wire memory and scores it. Every
// failure lands in the error slot before it is returned.
func (c *Context) Process(ctx context.Context, rec *record.Record) (float64, error) {
	if err := c.guard(); err != nil {
		return 0, err
	}
	if rec == nil {
		return 0, c.fail(errors.NilPointer(errors.PhaseValidate, []string{"record"}, "*record.Record"))
	}

	scratch := memory.NewScratch()
	defer scratch.Release(c.arena)

	recPtr, err := c.arena.Alloc(record.WireSize, record.WireAlign)
	if err != nil {
		return 0, c.fail(errors.AllocationFailed(errors.PhaseEncode, record.WireSize, record.WireAlign))
	}
	scratch.Track(recPtr, record.WireSize, record.WireAlign)

	if err := rec.EncodeWire(c.arena, recPtr); err != nil {
		return 0, c.fail(asBridgeError(err, errors.PhaseEncode))
	}

	score := c.eng.Process(ctx, c.arena, recPtr)
	if score < 0 {
		return 0, c.fail(errors.EngineFailure(engine.StatusFailure, "processing failed"))
	}
	return score, nil
}

// GenerateContent renders platform content for rec into an output region
// of capacity bytes and returns it as a string. A too-small capacity
// comes back as a capacity-kind error so callers can retry larger.
func (c *Context) GenerateContent(ctx context.Context, rec *record.Record, platform string, capacity uint32) (string, error) {
	if err := c.guard(); err != nil {
		return "", err
	}
	if rec == nil {
		return "", c.fail(errors.NilPointer(errors.PhaseValidate, []string{"record"}, "*record.Record"))
	}
	if capacity == 0 {
		return "", c.fail(errors.InvalidArgument(errors.PhaseValidate, "output capacity must be positive"))
	}
	if !utf8.ValidString(platform) {
		return "", c.fail(errors.InvalidUTF8(errors.PhaseValidate, []string{"platform"}, []byte(platform)))
	}

	scratch := memory.NewScratch()
	defer scratch.Release(c.arena)

	recPtr, err := c.arena.Alloc(record.WireSize, record.WireAlign)
	if err != nil {
		return "", c.fail(errors.AllocationFailed(errors.PhaseEncode, record.WireSize, record.WireAlign))
	}
	scratch.Track(recPtr, record.WireSize, record.WireAlign)

	if err := rec.EncodeWire(c.arena, recPtr); err != nil {
		return "", c.fail(asBridgeError(err, errors.PhaseEncode))
	}

	var platPtr uint32
	platLen := uint32(len(platform))
	if platLen > 0 {
		platPtr, err = c.arena.Alloc(platLen, 1)
		if err != nil {
			return "", c.fail(errors.AllocationFailed(errors.PhaseEncode, platLen, 1))
		}
		scratch.Track(platPtr, platLen, 1)
		if err := c.arena.Write(platPtr, []byte(platform)); err != nil {
			return "", c.fail(asBridgeError(err, errors.PhaseEncode))
		}
	}

	outPtr, err := c.arena.Alloc(capacity, 1)
	if err != nil {
		return "", c.fail(errors.AllocationFailed(errors.PhaseEncode, capacity, 1))
	}
	scratch.Track(outPtr, capacity, 1)

	status := c.eng.GenerateContent(ctx, c.arena, recPtr, platPtr, platLen, outPtr, capacity)
	switch {
	case status == engine.StatusCapacity:
		return "", c.fail(errors.Capacity(status, capacity))
	case status < 0:
		return "", c.fail(errors.EngineFailure(status, "content generation failed"))
	case uint32(status) > capacity:
		// A length past the output region would read adjacent arena
		// bytes; treat it as an engine defect.
		return "", c.fail(errors.EngineFailure(status, "engine reported more bytes than capacity"))
	}

	out, err := c.arena.Read(outPtr, uint32(status))
	if err != nil {
		return "", c.fail(asBridgeError(err, errors.PhaseDecode))
	}
	return string(out), nil
}

// BatchProcess scores recs in one engine call. The records are laid out
// contiguously in scratch memory; their string buffers are referenced in
// place, so the batch costs exactly two arena allocations regardless of
// batch size. On failure no scores are returned and both scratch regions
// are released.
func (c *Context) BatchProcess(ctx context.Context, recs []*record.Record) ([]float64, error) {
	if err := c.guard(); err != nil {
		return nil, err
	}
	n := uint32(len(recs))
	if n == 0 {
		return nil, c.fail(errors.InvalidArgument(errors.PhaseValidate, "empty batch"))
	}
	if n > MaxBatchSize {
		return nil, c.fail(errors.InvalidArgument(errors.PhaseValidate, "batch exceeds maximum size"))
	}
	for i, rec := range recs {
		if rec == nil {
			return nil, c.fail(errors.NilPointer(errors.PhaseValidate, []string{"batch", strconv.Itoa(i)}, "*record.Record"))
		}
	}

	scratch := memory.NewScratch()
	defer scratch.Release(c.arena)

	arrSize := n * record.WireSize
	arrPtr, err := c.arena.Alloc(arrSize, record.WireAlign)
	if err != nil {
		return nil, c.fail(errors.AllocationFailed(errors.PhaseEncode, arrSize, record.WireAlign))
	}
	scratch.Track(arrPtr, arrSize, record.WireAlign)

	outSize := n * 8
	outPtr, err := c.arena.Alloc(outSize, 8)
	if err != nil {
		return nil, c.fail(errors.AllocationFailed(errors.PhaseEncode, outSize, 8))
	}
	scratch.Track(outPtr, outSize, 8)

	for i, rec := range recs {
		if err := rec.EncodeWire(c.arena, arrPtr+uint32(i)*record.WireSize); err != nil {
			return nil, c.fail(asBridgeError(err, errors.PhaseEncode))
		}
	}

	status := c.eng.BatchProcess(ctx, c.arena, arrPtr, n, outPtr)
	if status < 0 {
		return nil, c.fail(errors.EngineFailure(status, "batch processing failed"))
	}
	if uint32(status) != n {
		return nil, c.fail(errors.EngineFailure(engine.StatusFailure, "engine scored partial batch"))
	}

	raw, err := c.arena.Read(outPtr, outSize)
	if err != nil {
		return nil, c.fail(asBridgeError(err, errors.PhaseDecode))
	}
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
	}
	return scores, nil
}

// asBridgeError normalizes an arbitrary error into the structured type,
// wrapping foreign errors under the given phase.
func asBridgeError(err error, phase errors.Phase) *errors.Error {
	if be, ok := err.(*errors.Error); ok {
		return be
	}
	return errors.Wrap(phase, errors.KindInvalidArgument, err, err.Error())
}
