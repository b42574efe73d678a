package memory

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/foreign"
	"github.com/wippyai/foreign/errors"
)

// WrapMemory wraps a wazero api.Memory to implement foreign.Memory.
// Addresses are offsets into the guest's linear memory.
func WrapMemory(mem api.Memory) foreign.Memory {
	if mem == nil {
		return nil
	}
	return &Wrapper{Mem: mem}
}

// WrapAllocator wraps a guest cabi_realloc export to implement foreign.Allocator.
func WrapAllocator(ctx context.Context, fn api.Function) foreign.Allocator {
	if fn == nil {
		return nil
	}
	return &AllocatorWrapper{Ctx: ctx, Fn: fn}
}

// Wrapper adapts wazero api.Memory to the foreign.Memory interface.
type Wrapper struct {
	Mem api.Memory
}

// offset narrows a 64-bit address range to wazero's 32-bit offsets.
func offset(addr foreign.Address, length uint64) (uint32, bool) {
	if uint64(addr) > math.MaxUint32 || length > math.MaxUint32 || length > math.MaxUint32-uint64(addr)+1 {
		return 0, false
	}
	return uint32(addr), true
}

func readOOB(addr foreign.Address, length uint64) error {
	return errors.New(errors.PhaseMemory, errors.KindOutOfBounds).
		Detail("memory read out of bounds: offset=%d, length=%d", addr, length).
		Build()
}

func writeOOB(addr foreign.Address, length uint64) error {
	return errors.New(errors.PhaseMemory, errors.KindOutOfBounds).
		Detail("memory write out of bounds: offset=%d, length=%d", addr, length).
		Build()
}

// Read returns a view of guest memory; it is invalidated by memory growth.
func (m *Wrapper) Read(addr foreign.Address, length uint64) ([]byte, error) {
	off, ok := offset(addr, length)
	if !ok {
		return nil, readOOB(addr, length)
	}
	data, ok := m.Mem.Read(off, uint32(length))
	if !ok {
		return nil, readOOB(addr, length)
	}
	return data, nil
}

func (m *Wrapper) Write(addr foreign.Address, data []byte) error {
	off, ok := offset(addr, uint64(len(data)))
	if !ok || !m.Mem.Write(off, data) {
		return writeOOB(addr, uint64(len(data)))
	}
	return nil
}

func (m *Wrapper) ReadU8(addr foreign.Address) (uint8, error) {
	off, ok := offset(addr, 1)
	if ok {
		if v, ok := m.Mem.ReadByte(off); ok {
			return v, nil
		}
	}
	return 0, readOOB(addr, 1)
}

func (m *Wrapper) ReadU16(addr foreign.Address) (uint16, error) {
	off, ok := offset(addr, 2)
	if ok {
		if v, ok := m.Mem.ReadUint16Le(off); ok {
			return v, nil
		}
	}
	return 0, readOOB(addr, 2)
}

func (m *Wrapper) ReadU32(addr foreign.Address) (uint32, error) {
	off, ok := offset(addr, 4)
	if ok {
		if v, ok := m.Mem.ReadUint32Le(off); ok {
			return v, nil
		}
	}
	return 0, readOOB(addr, 4)
}

func (m *Wrapper) ReadU64(addr foreign.Address) (uint64, error) {
	off, ok := offset(addr, 8)
	if ok {
		if v, ok := m.Mem.ReadUint64Le(off); ok {
			return v, nil
		}
	}
	return 0, readOOB(addr, 8)
}

func (m *Wrapper) WriteU8(addr foreign.Address, value uint8) error {
	off, ok := offset(addr, 1)
	if !ok || !m.Mem.WriteByte(off, value) {
		return writeOOB(addr, 1)
	}
	return nil
}

func (m *Wrapper) WriteU16(addr foreign.Address, value uint16) error {
	off, ok := offset(addr, 2)
	if !ok || !m.Mem.WriteUint16Le(off, value) {
		return writeOOB(addr, 2)
	}
	return nil
}

func (m *Wrapper) WriteU32(addr foreign.Address, value uint32) error {
	off, ok := offset(addr, 4)
	if !ok || !m.Mem.WriteUint32Le(off, value) {
		return writeOOB(addr, 4)
	}
	return nil
}

func (m *Wrapper) WriteU64(addr foreign.Address, value uint64) error {
	off, ok := offset(addr, 8)
	if !ok || !m.Mem.WriteUint64Le(off, value) {
		return writeOOB(addr, 8)
	}
	return nil
}

// AllocatorWrapper adapts a guest cabi_realloc export to foreign.Allocator.
type AllocatorWrapper struct {
	Ctx context.Context
	Fn  api.Function
}

// Alloc calls cabi_realloc(0, 0, align, size).
func (a *AllocatorWrapper) Alloc(size, align uint64) (foreign.Address, error) {
	if size > math.MaxUint32 || align > math.MaxUint32 {
		return 0, errors.AllocationFailed(errors.PhaseMemory, size, align)
	}
	results, err := a.Fn.Call(a.Ctx, 0, 0, align, size)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseMemory, errors.KindAllocation, err, "cabi_realloc")
	}
	if len(results) == 0 {
		return 0, errors.New(errors.PhaseMemory, errors.KindAllocation).
			Detail("cabi_realloc returned no result").
			Build()
	}
	ptr := foreign.Address(uint32(results[0]))
	if ptr == 0 && size > 0 {
		return 0, errors.AllocationFailed(errors.PhaseMemory, size, align)
	}
	return ptr, nil
}

// Free calls cabi_realloc(ptr, size, align, 0).
func (a *AllocatorWrapper) Free(addr foreign.Address, size, align uint64) {
	_, _ = a.Fn.Call(a.Ctx, uint64(addr), size, align, 0)
}

// linearReserved keeps the first bytes of linear memory out of the bump
// region so no allocation lands on address 0.
const linearReserved = 16

// Linear is a wazero linear memory with a host-side bump allocator.
// Addresses are guest offsets.
type Linear struct {
	rt  wazero.Runtime
	mod api.Module
	*Wrapper
	bump bump
	mu   sync.Mutex
}

// NewLinear instantiates a memory-only guest module of the given page count
// (64KiB per page) and returns its memory.
func NewLinear(ctx context.Context, pages uint32) (*Linear, error) {
	if pages == 0 || pages > 65536 {
		return nil, errors.InvalidInput(errors.PhaseMemory, fmt.Sprintf("invalid page count %d", pages))
	}

	rt := wazero.NewRuntime(ctx)
	mod, err := rt.InstantiateWithConfig(ctx, memoryModule(pages), wazero.NewModuleConfig().WithName(""))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Wrap(errors.PhaseMemory, errors.KindAllocation, err, "instantiate linear memory")
	}

	mem := mod.ExportedMemory("memory")
	if mem == nil {
		_ = rt.Close(ctx)
		return nil, errors.New(errors.PhaseMemory, errors.KindAllocation).
			Detail("module does not export memory").
			Build()
	}

	return &Linear{
		rt:      rt,
		mod:     mod,
		Wrapper: &Wrapper{Mem: mem},
		bump:    newBump(linearReserved, uint64(mem.Size())),
	}, nil
}

// Size returns the current size of linear memory in bytes.
func (l *Linear) Size() uint64 {
	return uint64(l.Mem.Size())
}

func (l *Linear) Used() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bump.used()
}

func (l *Linear) Alloc(size, align uint64) (foreign.Address, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	off, ok := l.bump.alloc(size, align)
	if !ok {
		return 0, errors.New(errors.PhaseMemory, errors.KindAllocation).
			Detail("linear memory exhausted: need %d bytes (align %d), %d of %d used", size, align, l.bump.used(), l.bump.limit).
			Build()
	}
	if size > 0 {
		zero := make([]byte, size)
		if !l.Mem.Write(uint32(off), zero) {
			return 0, writeOOB(foreign.Address(off), size)
		}
	}
	return foreign.Address(off), nil
}

func (l *Linear) Free(addr foreign.Address, size, align uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bump.free(uint64(addr))
}

func (l *Linear) Reset() {
	l.mu.Lock()
	l.bump.reset()
	l.mu.Unlock()
}

// Close tears down the guest module and its runtime.
func (l *Linear) Close(ctx context.Context) error {
	return l.rt.Close(ctx)
}

var (
	_ foreign.Memory    = (*Linear)(nil)
	_ foreign.Allocator = (*Linear)(nil)
)

// memoryModule encodes a wasm module whose only content is a memory of the
// given minimum page count exported as "memory".
func memoryModule(pages uint32) []byte {
	limits := append([]byte{0x00}, uleb128(pages)...)
	mem := append([]byte{0x01}, limits...)

	out := []byte{
		0x00, 0x61, 0x73, 0x6d, // magic
		0x01, 0x00, 0x00, 0x00, // version
	}
	out = append(out, 0x05) // memory section
	out = append(out, uleb128(uint32(len(mem)))...)
	out = append(out, mem...)
	out = append(out,
		0x07, 0x0a, 0x01, // export section: 10 bytes, 1 export
		0x06, 'm', 'e', 'm', 'o', 'r', 'y',
		0x02, 0x00, // kind: memory, index 0
	)
	return out
}

func uleb128(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}
