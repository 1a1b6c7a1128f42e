package memory

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/qxrlabs/qxr-bridge/errors"
)

// WazeroConfig holds options for a wazero-backed store.
type WazeroConfig struct {
	// MinPages is the initial memory size in pages. Default 1.
	MinPages uint32

	// MaxPages caps growth. Default 1024 (64MB).
	MaxPages uint32
}

// WazeroStore backs an Arena with the exported linear memory of a
// minimal WebAssembly module. Arena contents become directly
// addressable by wasm-hosted engine implementations sharing the
// instance.
type WazeroStore struct {
	runtime wazero.Runtime
	module  api.Module
	mem     api.Memory
}

var _ Store = (*WazeroStore)(nil)

// NewWazeroStore instantiates the backing module and returns the store.
func NewWazeroStore(ctx context.Context, cfg WazeroConfig) (*WazeroStore, error) {
	minPages := cfg.MinPages
	if minPages == 0 {
		minPages = 1
	}
	maxPages := cfg.MaxPages
	if maxPages == 0 {
		maxPages = 1024
	}

	r := wazero.NewRuntime(ctx)
	mod, err := r.Instantiate(ctx, memoryModule(minPages, maxPages))
	if err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("instantiate memory module: %w", err)
	}

	mem := mod.Memory()
	if mem == nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("memory module has no exported memory")
	}

	return &WazeroStore{runtime: r, module: mod, mem: mem}, nil
}

// Size returns the current byte size of the wasm memory.
func (s *WazeroStore) Size() uint32 {
	return s.mem.Size()
}

// Grow extends the wasm memory by deltaPages pages.
func (s *WazeroStore) Grow(deltaPages uint32) error {
	if _, ok := s.mem.Grow(deltaPages); !ok {
		return errors.New(errors.PhaseEncode, errors.KindAllocation).
			Detail("wasm memory grow by %d pages refused", deltaPages).
			Build()
	}
	return nil
}

// Bytes returns a view into the wasm memory. The view is only valid
// until the next Grow.
func (s *WazeroStore) Bytes(offset, length uint32) ([]byte, error) {
	view, ok := s.mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseDecode, offset, length, s.mem.Size())
	}
	return view, nil
}

// Close releases the wazero runtime and instance.
func (s *WazeroStore) Close(ctx context.Context) error {
	return s.runtime.Close(ctx)
}

// memoryModule assembles the smallest valid wasm binary exporting one
// growable memory named "memory": header, memory section, export
// section.
func memoryModule(minPages, maxPages uint32) []byte {
	var b []byte
	b = append(b, 0x00, 0x61, 0x73, 0x6d) // \0asm
	b = append(b, 0x01, 0x00, 0x00, 0x00) // version 1

	// Memory section: one memory with min and max limits.
	var mem []byte
	mem = append(mem, 0x01)       // count
	mem = append(mem, 0x01)       // limits flag: min+max
	mem = appendLEB(mem, minPages)
	mem = appendLEB(mem, maxPages)
	b = append(b, 0x05)
	b = appendLEB(b, uint32(len(mem)))
	b = append(b, mem...)

	// Export section: export memory 0 as "memory".
	var exp []byte
	exp = append(exp, 0x01)                  // count
	exp = appendLEB(exp, uint32(len("memory")))
	exp = append(exp, "memory"...)
	exp = append(exp, 0x02, 0x00) // kind memory, index 0
	b = append(b, 0x07)
	b = appendLEB(b, uint32(len(exp)))
	b = append(b, exp...)

	return b
}

// appendLEB appends v as unsigned LEB128.
func appendLEB(b []byte, v uint32) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		b = append(b, c)
		if v == 0 {
			return b
		}
	}
}
