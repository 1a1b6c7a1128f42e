package memory

import (
	stderrors "errors"
	"testing"

	"github.com/qxrlabs/qxr-bridge/errors"
)

func TestArena_AllocNeverReturnsZero(t *testing.T) {
	a := NewArena(Config{})

	for i := 0; i < 100; i++ {
		ptr, err := a.Alloc(1, 1)
		if err != nil {
			t.Fatalf("alloc %d: %v", i, err)
		}
		if ptr == 0 {
			t.Fatal("Alloc returned offset 0")
		}
	}
}

func TestArena_AllocAligned(t *testing.T) {
	a := NewArena(Config{})

	for _, align := range []uint32{1, 2, 4, 8} {
		ptr, err := a.Alloc(3, align)
		if err != nil {
			t.Fatalf("align %d: %v", align, err)
		}
		if ptr%align != 0 {
			t.Errorf("align %d: offset %d not aligned", align, ptr)
		}
	}
}

func TestArena_AllocInvalid(t *testing.T) {
	a := NewArena(Config{})

	if _, err := a.Alloc(0, 1); err == nil {
		t.Error("zero-size alloc should fail")
	}
	if _, err := a.Alloc(8, 3); err == nil {
		t.Error("non-power-of-two align should fail")
	}
	if _, err := a.Alloc(8, 16); err == nil {
		t.Error("align > 8 should fail")
	}
}

func TestArena_FreeReuse(t *testing.T) {
	a := NewArena(Config{})

	ptr, err := a.Alloc(56, 8)
	if err != nil {
		t.Fatal(err)
	}
	a.Free(ptr, 56, 8)

	ptr2, err := a.Alloc(56, 8)
	if err != nil {
		t.Fatal(err)
	}
	if ptr2 != ptr {
		t.Errorf("expected freed block %d to be reused, got %d", ptr, ptr2)
	}
}

func TestArena_FreeZeroNoop(t *testing.T) {
	a := NewArena(Config{})
	a.Free(0, 100, 8)

	stats := a.Accounting().Stats()
	if stats.DeallocationCount != 0 {
		t.Errorf("free of ptr 0 must not count, got %d", stats.DeallocationCount)
	}
}

func TestArena_MaxBytes(t *testing.T) {
	a := NewArena(Config{MaxBytes: 64})

	if _, err := a.Alloc(48, 8); err != nil {
		t.Fatalf("within budget: %v", err)
	}
	_, err := a.Alloc(32, 8)
	if err == nil {
		t.Fatal("expected allocation failure past budget")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseEncode, Kind: errors.KindAllocation}) {
		t.Errorf("expected allocation kind, got %v", err)
	}
}

func TestArena_GrowsPastInitialPage(t *testing.T) {
	a := NewArena(Config{})

	// Three allocations totalling > one page.
	for i := 0; i < 3; i++ {
		if _, err := a.Alloc(40000, 8); err != nil {
			t.Fatalf("alloc %d: %v", i, err)
		}
	}
	if a.Size() < 2*PageSize {
		t.Errorf("store did not grow: %d bytes", a.Size())
	}
}

func TestArena_ReadWriteRoundTrip(t *testing.T) {
	a := NewArena(Config{})

	ptr, err := a.Alloc(16, 8)
	if err != nil {
		t.Fatal(err)
	}

	if err := a.WriteU32(ptr, 0xdeadbeef); err != nil {
		t.Fatal(err)
	}
	if err := a.WriteU64(ptr+8, 0x0102030405060708); err != nil {
		t.Fatal(err)
	}

	v32, err := a.ReadU32(ptr)
	if err != nil {
		t.Fatal(err)
	}
	if v32 != 0xdeadbeef {
		t.Errorf("ReadU32 = %#x", v32)
	}

	v64, err := a.ReadU64(ptr + 8)
	if err != nil {
		t.Fatal(err)
	}
	if v64 != 0x0102030405060708 {
		t.Errorf("ReadU64 = %#x", v64)
	}

	if err := a.Write(ptr, []byte("scalp")); err != nil {
		t.Fatal(err)
	}
	data, err := a.Read(ptr, 5)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "scalp" {
		t.Errorf("Read = %q", data)
	}
}

func TestArena_OutOfBounds(t *testing.T) {
	a := NewArena(Config{})
	size := a.Size()

	if _, err := a.Read(size-2, 4); err == nil {
		t.Error("read past end should fail")
	}
	if err := a.WriteU64(size-4, 1); err == nil {
		t.Error("write past end should fail")
	}
}

func TestArena_AccountingBalance(t *testing.T) {
	acct := NewAccounting()
	a := NewArena(Config{Accounting: acct})

	ptrs := make([]uint32, 0, 10)
	for i := uint32(1); i <= 10; i++ {
		ptr, err := a.Alloc(i*8, 8)
		if err != nil {
			t.Fatal(err)
		}
		ptrs = append(ptrs, ptr)
	}
	for i, ptr := range ptrs {
		a.Free(ptr, uint32(i+1)*8, 8)
	}

	stats := acct.Stats()
	if stats.TotalAllocated != 0 {
		t.Errorf("leak: %d bytes outstanding", stats.TotalAllocated)
	}
	if stats.AllocationCount != 10 || stats.DeallocationCount != 10 {
		t.Errorf("counts = %d/%d, want 10/10", stats.AllocationCount, stats.DeallocationCount)
	}
	if stats.PeakAllocated == 0 {
		t.Error("peak not recorded")
	}
}
