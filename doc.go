// Package qxrbridge provides the boundary layer between a dynamic host
// representation of QXR research data and the opaque scoring engine that
// consumes it through byte-addressed linear memory.
//
// The library owns everything that crosses the boundary: string buffers are
// copied into an arena with single-owner semantics, records are encoded into
// a fixed wire layout, engine status codes are translated into structured
// errors, and every allocation is attributed to an accounting context so leaks
// are observable in tests and diagnostics.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	qxrbridge/           Root package with core Memory and Allocator interfaces
//	├── bridge/          Bridge context, boundary adapter, handle-based host facade
//	├── engine/          Engine wire contract and the native reference engine
//	├── record/          Research record value object and its wire layout
//	├── memory/          Arena allocator, owned buffers, accounting, wazero store
//	├── resource/        Handle table for host-visible records and contexts
//	└── errors/          Structured error types for boundary failures
//
// # Quick Start
//
// Create a bridge context and score a record:
//
//	bc := bridge.New(bridge.Config{})
//	defer bc.Close()
//
//	rec, err := record.New(bc.Arena(), record.Params{
//	    Signals:        45,
//	    SignalStrength: 1.247,
//	    MaxLiquidity:   12_500_000,
//	    Strategy:       "ETH Statistical Arbitrage",
//	    Timeframe:      "24h",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rec.Close()
//
//	score, err := bc.Process(ctx, rec)
//
// # Ownership Model
//
// Every OwnedBuffer, Record, and Context has exactly one owner at a time.
// Installing a new string into a record frees the previous buffer before the
// new one becomes visible; destroying a record frees both of its buffers
// exactly once. Freed regions remain inside the arena and are reused by later
// allocations, mirroring linear-memory semantics where memory can only grow.
//
// # Error Model
//
// Operations return structured errors from the errors package rather than
// sentinel values. The numeric status contract (negative means failure, -2
// means the output buffer was too small) survives only at the engine wire
// boundary; the adapter maps it before anything reaches a caller. Every
// failure also lands in the context's error slot, so the last code and
// message stay retrievable after the failing call returns.
package qxrbridge
