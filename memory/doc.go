// Package memory provides native memory backends and bounded segments.
//
// # Backends
//
// Every backend implements foreign.Memory and foreign.Allocator:
//
//	memory.NewArena(size)       Go heap block with a synthetic base address
//	memory.NewNative(size)      anonymous mmap with real addresses (linux)
//	memory.NewLinear(ctx, n)    wazero linear memory of n pages
//
// Guest memories that already exist are adapted with WrapMemory and
// WrapAllocator, the latter calling the guest's cabi_realloc export.
//
// Arena and Linear use a bump allocator. Free reclaims space in stack
// order, so a block freed out of order comes back once every newer block
// is freed too; Reset reclaims everything.
//
// # Segments
//
// A Segment is an address range plus the memory it lives in and an owner
// that vouches for its liveness. Each access checks the owner, then the
// bounds, then touches memory:
//
//	seg := memory.NewSegment(arena, addr, 16, handle)
//	v, err := seg.ReadU64(8)
//
// All multi-byte values are little-endian.
package memory
