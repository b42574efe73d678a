package memory

import (
	"encoding/binary"
	"sync"

	"github.com/wippyai/foreign"
	"github.com/wippyai/foreign/errors"
)

// arenaBase is the synthetic address of the first byte of a heap arena.
// It keeps heap addresses away from NULL.
const arenaBase foreign.Address = 0x1000_0000

// Arena is a fixed-size block of memory with a bump allocator.
// It implements foreign.Memory and foreign.Allocator and is safe for
// concurrent use.
type Arena struct {
	release func() error
	buf     []byte
	bump    bump
	base    foreign.Address
	mu      sync.Mutex
	closed  bool
}

// NewArena creates an arena of size bytes on the Go heap.
func NewArena(size uint64) *Arena {
	return newArenaOver(make([]byte, size), arenaBase, nil)
}

func newArenaOver(buf []byte, base foreign.Address, release func() error) *Arena {
	return &Arena{
		buf:     buf,
		base:    base,
		release: release,
		bump:    newBump(0, uint64(len(buf))),
	}
}

func (a *Arena) Base() foreign.Address { return a.base }
func (a *Arena) Size() uint64          { return uint64(len(a.buf)) }

// Used returns the number of bytes handed out, alignment gaps included.
func (a *Arena) Used() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bump.used()
}

// Reset forgets every allocation. Addresses handed out earlier stay
// readable but will be reused.
func (a *Arena) Reset() {
	a.mu.Lock()
	a.bump.reset()
	a.mu.Unlock()
}

// Close releases the backing memory. Further access fails.
func (a *Arena) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	a.buf = nil
	if a.release != nil {
		return a.release()
	}
	return nil
}

func (a *Arena) Alloc(size, align uint64) (foreign.Address, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return 0, errors.InvalidScope(errors.PhaseMemory, "arena closed")
	}
	off, ok := a.bump.alloc(size, align)
	if !ok {
		return 0, errors.New(errors.PhaseMemory, errors.KindAllocation).
			Detail("arena exhausted: need %d bytes (align %d), %d of %d used", size, align, a.bump.used(), len(a.buf)).
			Build()
	}
	clear(a.buf[off : off+size])
	return a.base + foreign.Address(off), nil
}

func (a *Arena) Free(addr foreign.Address, size, align uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || addr < a.base {
		return
	}
	a.bump.free(uint64(addr - a.base))
}

// span returns buf[addr-base : addr-base+length]. Caller holds mu.
func (a *Arena) span(addr foreign.Address, length uint64) ([]byte, error) {
	if a.closed {
		return nil, errors.InvalidScope(errors.PhaseMemory, "arena closed")
	}
	size := uint64(len(a.buf))
	if addr < a.base {
		return nil, errors.OutOfBounds(errors.PhaseMemory, uint64(addr), length, size)
	}
	off := uint64(addr - a.base)
	if off > size || length > size-off {
		return nil, errors.OutOfBounds(errors.PhaseMemory, off, length, size)
	}
	return a.buf[off : off+length], nil
}

// Read returns a copy of length bytes at addr.
func (a *Arena) Read(addr foreign.Address, length uint64) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, err := a.span(addr, length)
	if err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, b)
	return out, nil
}

func (a *Arena) Write(addr foreign.Address, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, err := a.span(addr, uint64(len(data)))
	if err != nil {
		return err
	}
	copy(b, data)
	return nil
}

func (a *Arena) ReadU8(addr foreign.Address) (uint8, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, err := a.span(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (a *Arena) ReadU16(addr foreign.Address) (uint16, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, err := a.span(addr, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (a *Arena) ReadU32(addr foreign.Address) (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, err := a.span(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (a *Arena) ReadU64(addr foreign.Address) (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, err := a.span(addr, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (a *Arena) WriteU8(addr foreign.Address, v uint8) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, err := a.span(addr, 1)
	if err != nil {
		return err
	}
	b[0] = v
	return nil
}

func (a *Arena) WriteU16(addr foreign.Address, v uint16) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, err := a.span(addr, 2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b, v)
	return nil
}

func (a *Arena) WriteU32(addr foreign.Address, v uint32) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, err := a.span(addr, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, v)
	return nil
}

func (a *Arena) WriteU64(addr foreign.Address, v uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, err := a.span(addr, 8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b, v)
	return nil
}

var (
	_ foreign.Memory    = (*Arena)(nil)
	_ foreign.Allocator = (*Arena)(nil)
)
