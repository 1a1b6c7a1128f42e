package bridge

import (
	"context"
	"strings"
	"testing"

	"github.com/qxrlabs/qxr-bridge/errors"
	"github.com/qxrlabs/qxr-bridge/memory"
	"github.com/qxrlabs/qxr-bridge/record"
)

// newStubBridge wires a scriptable engine into a fresh context.
func newStubBridge(t *testing.T, eng *stubEngine) *Context {
	t.Helper()
	bc := New(Config{Engine: eng.factory})
	t.Cleanup(func() { bc.Close() })
	return bc
}

func newTestRecord(t *testing.T, bc *Context) *record.Record {
	t.Helper()
	rec, err := record.New(bc.Arena(), record.Params{
		Signals:        5,
		Opportunities:  2,
		SignalStrength: 0.75,
		MaxLiquidity:   1_000_000,
		Strategy:       "scalp",
		Timeframe:      "1m",
	})
	if err != nil {
		t.Fatalf("record.New: %v", err)
	}
	t.Cleanup(func() { rec.Close() })
	return rec
}

func TestProcess(t *testing.T) {
	eng := &stubEngine{processScore: 42.5}
	bc := newStubBridge(t, eng)
	rec := newTestRecord(t, bc)

	score, err := bc.Process(context.Background(), rec)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if score != 42.5 {
		t.Errorf("score = %v, want 42.5", score)
	}
	if eng.processCalls != 1 {
		t.Errorf("engine invoked %d times, want 1", eng.processCalls)
	}
}

func TestProcessReleasesScratch(t *testing.T) {
	eng := &stubEngine{processScore: 1}
	bc := newStubBridge(t, eng)
	rec := newTestRecord(t, bc)

	before := bc.Arena().Accounting().Stats()
	if _, err := bc.Process(context.Background(), rec); err != nil {
		t.Fatalf("Process: %v", err)
	}
	after := bc.Arena().Accounting().Stats()

	allocs := after.AllocationCount - before.AllocationCount
	frees := after.DeallocationCount - before.DeallocationCount
	if allocs != frees {
		t.Errorf("scratch leak: %d allocs, %d frees", allocs, frees)
	}
}

func TestProcessNilRecord(t *testing.T) {
	eng := &stubEngine{}
	bc := newStubBridge(t, eng)

	_, err := bc.Process(context.Background(), nil)
	var be *errors.Error
	if !errors.As(err, &be) || be.Kind != errors.KindNilPointer {
		t.Fatalf("err = %v, want nil_pointer", err)
	}
	if eng.processCalls != 0 {
		t.Error("engine must not run for a nil record")
	}
	if bc.LastCode() != errors.CodeInvalidParams {
		t.Errorf("error slot code = %d, want %d", bc.LastCode(), errors.CodeInvalidParams)
	}
}

func TestProcessEngineFailure(t *testing.T) {
	eng := &stubEngine{processScore: -1}
	bc := newStubBridge(t, eng)
	rec := newTestRecord(t, bc)

	_, err := bc.Process(context.Background(), rec)
	var be *errors.Error
	if !errors.As(err, &be) || be.Kind != errors.KindEngineFailure {
		t.Fatalf("err = %v, want engine_failure", err)
	}
	if bc.LastCode() != -1 {
		t.Errorf("error slot code = %d, want -1", bc.LastCode())
	}
}

func TestGenerateContent(t *testing.T) {
	eng := &stubEngine{content: "📈 scalp opportunity"}
	bc := newStubBridge(t, eng)
	rec := newTestRecord(t, bc)

	out, err := bc.GenerateContent(context.Background(), rec, "twitter", 256)
	if err != nil {
		t.Fatalf("GenerateContent: %v", err)
	}
	if out != eng.content {
		t.Errorf("content = %q, want %q", out, eng.content)
	}
}

func TestGenerateContentCapacity(t *testing.T) {
	eng := &stubEngine{content: strings.Repeat("x", 100)}
	bc := newStubBridge(t, eng)
	rec := newTestRecord(t, bc)

	_, err := bc.GenerateContent(context.Background(), rec, "twitter", 10)
	var be *errors.Error
	if !errors.As(err, &be) || be.Kind != errors.KindCapacity {
		t.Fatalf("err = %v, want capacity", err)
	}

	// Capacity stays distinguishable from generic engine failure.
	eng.generateStatus = -1
	_, err = bc.GenerateContent(context.Background(), rec, "twitter", 10)
	if !errors.As(err, &be) || be.Kind != errors.KindEngineFailure {
		t.Fatalf("err = %v, want engine_failure", err)
	}
}

func TestGenerateContentZeroCapacity(t *testing.T) {
	eng := &stubEngine{content: "anything"}
	bc := newStubBridge(t, eng)
	rec := newTestRecord(t, bc)

	_, err := bc.GenerateContent(context.Background(), rec, "twitter", 0)
	var be *errors.Error
	if !errors.As(err, &be) || be.Kind != errors.KindInvalidArgument {
		t.Fatalf("err = %v, want invalid_argument", err)
	}
	if eng.generateCalls != 0 {
		t.Error("engine must not run for zero capacity")
	}
}

func TestGenerateContentStatusBeyondCapacity(t *testing.T) {
	eng := &stubEngine{generateStatus: 17}
	bc := newStubBridge(t, eng)
	rec := newTestRecord(t, bc)

	_, err := bc.GenerateContent(context.Background(), rec, "twitter", 16)
	var be *errors.Error
	if !errors.As(err, &be) || be.Kind != errors.KindEngineFailure {
		t.Fatalf("err = %v, want engine_failure for overlong status", err)
	}
}

func TestGenerateContentExactFit(t *testing.T) {
	eng := &stubEngine{content: "12345"}
	bc := newStubBridge(t, eng)
	rec := newTestRecord(t, bc)

	out, err := bc.GenerateContent(context.Background(), rec, "twitter", 5)
	if err != nil {
		t.Fatalf("GenerateContent at exact capacity: %v", err)
	}
	if out != "12345" {
		t.Errorf("content = %q, want %q", out, "12345")
	}
}

func TestBatchProcessExactlyTwoAllocations(t *testing.T) {
	eng := &stubEngine{processScore: 10}
	bc := newStubBridge(t, eng)

	recs := make([]*record.Record, 3)
	for i := range recs {
		recs[i] = newTestRecord(t, bc)
	}

	before := bc.Arena().Accounting().Stats()
	scores, err := bc.BatchProcess(context.Background(), recs)
	if err != nil {
		t.Fatalf("BatchProcess: %v", err)
	}
	after := bc.Arena().Accounting().Stats()

	if got := after.AllocationCount - before.AllocationCount; got != 2 {
		t.Errorf("batch of 3 made %d allocations, want 2", got)
	}
	if got := after.DeallocationCount - before.DeallocationCount; got != 2 {
		t.Errorf("batch of 3 made %d deallocations, want 2", got)
	}
	if len(scores) != 3 {
		t.Fatalf("len(scores) = %d, want 3", len(scores))
	}
	for i, s := range scores {
		if want := 10 + float64(i); s != want {
			t.Errorf("scores[%d] = %v, want %v", i, s, want)
		}
	}
}

func TestBatchProcessEmpty(t *testing.T) {
	eng := &stubEngine{}
	bc := newStubBridge(t, eng)

	before := bc.Arena().Accounting().Stats()
	_, err := bc.BatchProcess(context.Background(), nil)
	after := bc.Arena().Accounting().Stats()

	var be *errors.Error
	if !errors.As(err, &be) || be.Kind != errors.KindInvalidArgument {
		t.Fatalf("err = %v, want invalid_argument", err)
	}
	if eng.batchCalls != 0 {
		t.Error("engine must not run for an empty batch")
	}
	if after.AllocationCount != before.AllocationCount {
		t.Error("empty batch must not allocate")
	}
}

func TestBatchProcessNilRecord(t *testing.T) {
	eng := &stubEngine{}
	bc := newStubBridge(t, eng)
	rec := newTestRecord(t, bc)

	before := bc.Arena().Accounting().Stats()
	_, err := bc.BatchProcess(context.Background(), []*record.Record{rec, nil})
	after := bc.Arena().Accounting().Stats()

	var be *errors.Error
	if !errors.As(err, &be) || be.Kind != errors.KindNilPointer {
		t.Fatalf("err = %v, want nil_pointer", err)
	}
	if after.AllocationCount != before.AllocationCount {
		t.Error("rejected batch must not allocate")
	}
	if eng.batchCalls != 0 {
		t.Error("engine must not see a partial batch")
	}
}

func TestBatchProcessEngineFailure(t *testing.T) {
	eng := &stubEngine{batchStatus: -1}
	bc := newStubBridge(t, eng)
	rec := newTestRecord(t, bc)

	before := bc.Arena().Accounting().Stats()
	_, err := bc.BatchProcess(context.Background(), []*record.Record{rec})
	after := bc.Arena().Accounting().Stats()

	var be *errors.Error
	if !errors.As(err, &be) || be.Kind != errors.KindEngineFailure {
		t.Fatalf("err = %v, want engine_failure", err)
	}
	allocs := after.AllocationCount - before.AllocationCount
	frees := after.DeallocationCount - before.DeallocationCount
	if allocs != frees {
		t.Errorf("failed batch leaked scratch: %d allocs, %d frees", allocs, frees)
	}
}

func TestBatchMatchesSingleProcess(t *testing.T) {
	bc := New(Config{})
	defer bc.Close()

	params := []record.Params{
		{Signals: 5, Opportunities: 2, SignalStrength: 0.75, MaxLiquidity: 1_000_000, Strategy: "scalp", Timeframe: "1m"},
		{Signals: 45, Opportunities: 8, SignalStrength: 1.247, MaxLiquidity: 12_500_000, Strategy: "statistical arbitrage", Timeframe: "24h"},
		{Signals: 1, Opportunities: 0, SignalStrength: 0.1, MaxLiquidity: 50_000, Strategy: "swing", Timeframe: "4h"},
	}

	recs := make([]*record.Record, len(params))
	want := make([]float64, len(params))
	for i, p := range params {
		rec, err := record.New(bc.Arena(), p)
		if err != nil {
			t.Fatalf("record.New[%d]: %v", i, err)
		}
		defer rec.Close()
		recs[i] = rec

		score, err := bc.Process(context.Background(), rec)
		if err != nil {
			t.Fatalf("Process[%d]: %v", i, err)
		}
		want[i] = score
	}

	scores, err := bc.BatchProcess(context.Background(), recs)
	if err != nil {
		t.Fatalf("BatchProcess: %v", err)
	}
	for i := range want {
		if scores[i] != want[i] {
			t.Errorf("scores[%d] = %v, want %v", i, scores[i], want[i])
		}
	}
}

func TestProcessAllocationFailureSetsSlot(t *testing.T) {
	eng := &stubEngine{processScore: 1}
	arena := memory.NewArena(memory.Config{MaxBytes: 16})
	bc := New(Config{Engine: eng.factory, Arena: arena})
	defer bc.Close()

	rec := &record.Record{}
	_, err := bc.Process(context.Background(), rec)
	var be *errors.Error
	if !errors.As(err, &be) || be.Kind != errors.KindAllocation {
		t.Fatalf("err = %v, want allocation", err)
	}
	if bc.LastCode() != errors.CodeAllocation {
		t.Errorf("error slot code = %d, want %d", bc.LastCode(), errors.CodeAllocation)
	}
}
