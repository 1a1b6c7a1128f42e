package bridge

import (
	"context"
	stderrors "errors"
	"math"

	qxrbridge "github.com/qxrlabs/qxr-bridge"
	"github.com/qxrlabs/qxr-bridge/engine"
)

// stubEngine is a scriptable engine for adapter tests. Counters record
// how often each operation was invoked.
type stubEngine struct {
	processCalls  int
	generateCalls int
	batchCalls    int
	closeCalls    int

	processScore   float64
	generateStatus int32 // returned verbatim when non-zero
	content        string
	batchStatus    int32 // returned verbatim when negative
}

var _ engine.Engine = (*stubEngine)(nil)

func (e *stubEngine) Process(ctx context.Context, mem qxrbridge.Memory, recPtr uint32) float64 {
	e.processCalls++
	return e.processScore
}

func (e *stubEngine) GenerateContent(ctx context.Context, mem qxrbridge.Memory, recPtr, platPtr, platLen, outPtr, outCap uint32) int32 {
	e.generateCalls++
	if e.generateStatus != 0 {
		return e.generateStatus
	}
	if uint32(len(e.content)) > outCap {
		return engine.StatusCapacity
	}
	if err := mem.Write(outPtr, []byte(e.content)); err != nil {
		return engine.StatusFailure
	}
	return int32(len(e.content))
}

func (e *stubEngine) BatchProcess(ctx context.Context, mem qxrbridge.Memory, arrPtr, n, outPtr uint32) int32 {
	e.batchCalls++
	if e.batchStatus < 0 {
		return e.batchStatus
	}
	for i := uint32(0); i < n; i++ {
		bits := math.Float64bits(e.processScore + float64(i))
		if err := mem.WriteU64(outPtr+i*8, bits); err != nil {
			return engine.StatusFailure
		}
	}
	return int32(n)
}

func (e *stubEngine) Version() string {
	return "stub/1.0"
}

func (e *stubEngine) Close() error {
	e.closeCalls++
	return nil
}

func (e *stubEngine) factory(ctx context.Context) (engine.Engine, error) {
	return e, nil
}

func failingFactory(ctx context.Context) (engine.Engine, error) {
	return nil, stderrors.New("no engine available")
}
