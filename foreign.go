package foreign

// Address is a location in native memory. Address 0 is NULL.
type Address uint64

// Memory represents byte-addressable native memory
type Memory interface {
	Read(addr Address, length uint64) ([]byte, error)
	Write(addr Address, data []byte) error
	ReadU8(addr Address) (uint8, error)
	ReadU16(addr Address) (uint16, error)
	ReadU32(addr Address) (uint32, error)
	ReadU64(addr Address) (uint64, error)
	WriteU8(addr Address, value uint8) error
	WriteU16(addr Address, value uint16) error
	WriteU32(addr Address, value uint32) error
	WriteU64(addr Address, value uint64) error
}

// Allocator allocates native memory
type Allocator interface {
	Alloc(size, align uint64) (Address, error)
	Free(addr Address, size, align uint64)
}
