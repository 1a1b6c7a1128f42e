package memory

import (
	"unicode/utf8"

	"github.com/qxrlabs/qxr-bridge/errors"
)

// MaxBufferSize bounds a single owned buffer. Strings crossing the
// boundary are expected to be short; the cap catches runaway values
// before they exhaust the arena.
const MaxBufferSize = 1 << 20

// OwnedBuffer is a length-carrying handle to an arena region with
// single-owner semantics. The zero value is the empty buffer: ptr 0,
// length 0, no arena region behind it. A buffer's pointer is non-zero
// iff its length is non-zero.
type OwnedBuffer struct {
	arena *Arena
	ptr   uint32
	size  uint32
}

// NewBuffer allocates an uninitialized buffer of size bytes.
// Size 0 returns the empty buffer without touching the arena.
func (a *Arena) NewBuffer(size uint32) (OwnedBuffer, error) {
	if size == 0 {
		return OwnedBuffer{}, nil
	}
	if size > MaxBufferSize {
		return OwnedBuffer{}, errors.Overflow(errors.PhaseEncode, nil, size, "buffer")
	}
	ptr, err := a.Alloc(size, 1)
	if err != nil {
		return OwnedBuffer{}, err
	}
	return OwnedBuffer{arena: a, ptr: ptr, size: size}, nil
}

// NewBufferFrom copies text into a fresh buffer. The text must be
// valid UTF-8; length is carried by the buffer, not a terminator.
func (a *Arena) NewBufferFrom(text string) (OwnedBuffer, error) {
	if !utf8.ValidString(text) {
		return OwnedBuffer{}, errors.InvalidUTF8(errors.PhaseEncode, nil, []byte(text))
	}
	buf, err := a.NewBuffer(uint32(len(text)))
	if err != nil || buf.IsEmpty() {
		return buf, err
	}
	if err := a.Write(buf.ptr, []byte(text)); err != nil {
		buf.Free()
		return OwnedBuffer{}, err
	}
	return buf, nil
}

// Ptr returns the arena offset of the buffer data, 0 when empty.
func (b OwnedBuffer) Ptr() uint32 { return b.ptr }

// Len returns the byte length of the buffer.
func (b OwnedBuffer) Len() uint32 { return b.size }

// IsEmpty reports whether the buffer owns no arena region.
func (b OwnedBuffer) IsEmpty() bool { return b.ptr == 0 }

// String reads the buffer contents back out of the arena.
func (b OwnedBuffer) String() (string, error) {
	if b.IsEmpty() {
		return "", nil
	}
	data, err := b.arena.Read(b.ptr, b.size)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Free releases the region and zeroes the handle. Safe on the empty
// buffer; a second Free is a no-op because the first one emptied it.
func (b *OwnedBuffer) Free() {
	if b == nil || b.ptr == 0 {
		return
	}
	b.arena.Free(b.ptr, b.size, 1)
	b.arena = nil
	b.ptr = 0
	b.size = 0
}
