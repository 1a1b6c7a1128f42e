package memory

import (
	"encoding/binary"
	"sync"

	qxrbridge "github.com/qxrlabs/qxr-bridge"
	"github.com/qxrlabs/qxr-bridge/errors"
)

// PageSize is the growth granularity of a Store, matching a wasm page.
const PageSize = 65536

// baseOffset reserves the low bytes of every arena so that Alloc can
// never return 0. A zero pointer always means "empty".
const baseOffset = 8

// Store is the raw byte backing of an Arena. Implementations only ever
// grow; freed arena regions are recycled above the Store.
type Store interface {
	// Size returns the current byte size of the store.
	Size() uint32

	// Grow extends the store by deltaPages pages of PageSize bytes.
	Grow(deltaPages uint32) error

	// Bytes returns a view of [offset, offset+length). The view is only
	// valid until the next Grow.
	Bytes(offset, length uint32) ([]byte, error)
}

// sliceStore is the default in-process Store.
type sliceStore struct {
	data []byte
}

func newSliceStore(pages uint32) *sliceStore {
	return &sliceStore{data: make([]byte, pages*PageSize)}
}

func (s *sliceStore) Size() uint32 {
	return uint32(len(s.data))
}

func (s *sliceStore) Grow(deltaPages uint32) error {
	s.data = append(s.data, make([]byte, deltaPages*PageSize)...)
	return nil
}

func (s *sliceStore) Bytes(offset, length uint32) ([]byte, error) {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(s.data)) {
		return nil, errors.OutOfBounds(errors.PhaseDecode, offset, length, uint32(len(s.data)))
	}
	return s.data[offset:end:end], nil
}

// Config holds arena construction options. The zero value is usable.
type Config struct {
	// InitialPages is the starting size in pages. Default 1.
	InitialPages uint32

	// MaxBytes caps the total bytes the arena will hand out.
	// 0 means bounded only by the Store.
	MaxBytes uint32

	// Accounting receives allocation attribution. nil creates a
	// private instance.
	Accounting *Accounting

	// Store is the byte backing. nil creates an in-process store.
	Store Store
}

// Arena is a single linear-memory region with a bump allocator and
// per-size free lists. It implements both the root Memory and
// Allocator interfaces. Safe for concurrent use.
type Arena struct {
	mu       sync.Mutex
	store    Store
	acct     *Accounting
	next     uint32
	freeList map[uint32][]uint32
	maxBytes uint32
	live     uint32
}

// Compile-time interface checks.
var (
	_ qxrbridge.Memory      = (*Arena)(nil)
	_ qxrbridge.Allocator   = (*Arena)(nil)
	_ qxrbridge.MemorySizer = (*Arena)(nil)
)

// NewArena creates an arena from cfg.
func NewArena(cfg Config) *Arena {
	store := cfg.Store
	if store == nil {
		pages := cfg.InitialPages
		if pages == 0 {
			pages = 1
		}
		store = newSliceStore(pages)
	}
	acct := cfg.Accounting
	if acct == nil {
		acct = NewAccounting()
	}
	return &Arena{
		store:    store,
		acct:     acct,
		next:     baseOffset,
		freeList: make(map[uint32][]uint32),
		maxBytes: cfg.MaxBytes,
	}
}

// Accounting returns the accounting context this arena reports to.
func (a *Arena) Accounting() *Accounting {
	return a.acct
}

// Size returns the current byte size of the backing store.
func (a *Arena) Size() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Size()
}

// granule rounds size up to the allocation granularity. Every block is
// 8-aligned, which satisfies all wire-layout alignments used by the
// bridge.
func granule(size uint32) uint32 {
	return (size + 7) &^ 7
}

// Alloc reserves size bytes with the given alignment and returns its
// offset. The offset is never 0. Fails with an allocation error when
// the arena's byte budget is exhausted.
func (a *Arena) Alloc(size, align uint32) (uint32, error) {
	if size == 0 {
		return 0, errors.InvalidArgument(errors.PhaseEncode, "zero-size allocation")
	}
	if align == 0 || align&(align-1) != 0 || align > 8 {
		return 0, errors.InvalidArgument(errors.PhaseEncode, "alignment must be a power of two <= 8")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	g := granule(size)

	if a.maxBytes != 0 && uint64(a.live)+uint64(size) > uint64(a.maxBytes) {
		return 0, errors.AllocationFailed(errors.PhaseEncode, size, align)
	}

	// Reuse an exact-size block if one was freed earlier.
	if list := a.freeList[g]; len(list) > 0 {
		ptr := list[len(list)-1]
		a.freeList[g] = list[:len(list)-1]
		a.live += size
		a.acct.recordAlloc(size)
		return ptr, nil
	}

	ptr := a.next
	end := uint64(ptr) + uint64(g)
	if end > uint64(a.store.Size()) {
		needed := end - uint64(a.store.Size())
		pages := uint32((needed + PageSize - 1) / PageSize)
		if err := a.store.Grow(pages); err != nil {
			return 0, errors.New(errors.PhaseEncode, errors.KindAllocation).
				Cause(err).
				Detail("grow store by %d pages", pages).
				Build()
		}
	}

	a.next = uint32(end)
	a.live += size
	a.acct.recordAlloc(size)
	return ptr, nil
}

// Free returns a region to the arena. No-op on ptr 0. The size must be
// the size originally allocated; owned buffers carry it so callers
// cannot get this wrong.
func (a *Arena) Free(ptr, size, align uint32) {
	if ptr == 0 || size == 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	g := granule(size)
	a.freeList[g] = append(a.freeList[g], ptr)
	a.live -= size
	a.acct.recordFree(size)
}

// Read returns a copy of [offset, offset+length).
func (a *Arena) Read(offset, length uint32) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	view, err := a.store.Bytes(offset, length)
	if err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, view)
	return out, nil
}

// Write copies data into the arena at offset.
func (a *Arena) Write(offset uint32, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	view, err := a.store.Bytes(offset, uint32(len(data)))
	if err != nil {
		return errors.OutOfBounds(errors.PhaseEncode, offset, uint32(len(data)), a.store.Size())
	}
	copy(view, data)
	return nil
}

// ReadU32 reads a little-endian uint32 at offset.
func (a *Arena) ReadU32(offset uint32) (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	view, err := a.store.Bytes(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(view), nil
}

// ReadU64 reads a little-endian uint64 at offset.
func (a *Arena) ReadU64(offset uint32) (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	view, err := a.store.Bytes(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(view), nil
}

// WriteU32 writes a little-endian uint32 at offset.
func (a *Arena) WriteU32(offset uint32, value uint32) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	view, err := a.store.Bytes(offset, 4)
	if err != nil {
		return errors.OutOfBounds(errors.PhaseEncode, offset, 4, a.store.Size())
	}
	binary.LittleEndian.PutUint32(view, value)
	return nil
}

// WriteU64 writes a little-endian uint64 at offset.
func (a *Arena) WriteU64(offset uint32, value uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	view, err := a.store.Bytes(offset, 8)
	if err != nil {
		return errors.OutOfBounds(errors.PhaseEncode, offset, 8, a.store.Size())
	}
	binary.LittleEndian.PutUint64(view, value)
	return nil
}
