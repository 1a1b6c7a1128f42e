package qxrbridge

// Memory is byte-addressed linear memory shared with the engine.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// MemorySizer provides the current size of the linear memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// Allocator allocates regions inside linear memory.
// Offset 0 is reserved and never returned by Alloc.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}
