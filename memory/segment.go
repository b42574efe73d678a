package memory

import (
	"github.com/wippyai/foreign"
	"github.com/wippyai/foreign/errors"
)

// Liveness vouches that the memory behind a segment may still be touched.
type Liveness interface {
	CheckValid() error
}

// Segment is a bounded window onto native memory. Every access checks the
// owner first and then the bounds. The zero Segment is the null segment.
type Segment struct {
	mem   foreign.Memory
	owner Liveness
	addr  foreign.Address
	size  uint64
}

// NewSegment creates a segment of size bytes at addr. A nil owner means the
// segment is always live.
func NewSegment(mem foreign.Memory, addr foreign.Address, size uint64, owner Liveness) Segment {
	return Segment{mem: mem, addr: addr, size: size, owner: owner}
}

func (s Segment) IsNull() bool             { return s.mem == nil || s.addr == 0 }
func (s Segment) Address() foreign.Address { return s.addr }
func (s Segment) Size() uint64             { return s.size }
func (s Segment) Memory() foreign.Memory   { return s.mem }
func (s Segment) Owner() Liveness          { return s.owner }

// CheckValid reports whether the segment's owner is still live.
func (s Segment) CheckValid() error {
	if s.mem == nil {
		return errors.NullArgument(errors.PhaseMemory, nil, "segment memory")
	}
	if s.owner != nil {
		return s.owner.CheckValid()
	}
	return nil
}

func (s Segment) check(off, length uint64) error {
	if err := s.CheckValid(); err != nil {
		return err
	}
	if off > s.size || length > s.size-off {
		return errors.OutOfBounds(errors.PhaseMemory, off, length, s.size)
	}
	return nil
}

// Slice returns the sub-segment [off, off+length) sharing the same owner.
func (s Segment) Slice(off, length uint64) (Segment, error) {
	if err := s.check(off, length); err != nil {
		return Segment{}, err
	}
	return Segment{mem: s.mem, owner: s.owner, addr: s.addr + foreign.Address(off), size: length}, nil
}

// AsSlice returns the remainder of the segment starting at off.
func (s Segment) AsSlice(off uint64) (Segment, error) {
	if off > s.size {
		return Segment{}, errors.OutOfBounds(errors.PhaseMemory, off, 0, s.size)
	}
	return s.Slice(off, s.size-off)
}

// Read returns a copy of length bytes at off.
func (s Segment) Read(off, length uint64) ([]byte, error) {
	if err := s.check(off, length); err != nil {
		return nil, err
	}
	if length == 0 {
		return []byte{}, nil
	}
	data, err := s.mem.Read(s.addr+foreign.Address(off), length)
	if err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, data)
	return out, nil
}

// Bytes returns a copy of the whole segment.
func (s Segment) Bytes() ([]byte, error) {
	return s.Read(0, s.size)
}

func (s Segment) Write(off uint64, data []byte) error {
	if err := s.check(off, uint64(len(data))); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return s.mem.Write(s.addr+foreign.Address(off), data)
}

// CopyFrom copies all of src to the start of s.
func (s Segment) CopyFrom(src Segment) error {
	if src.size > s.size {
		return errors.OutOfBounds(errors.PhaseMemory, 0, src.size, s.size)
	}
	data, err := src.Bytes()
	if err != nil {
		return err
	}
	return s.Write(0, data)
}

// Fill sets every byte of the segment to b.
func (s Segment) Fill(b byte) error {
	if err := s.check(0, s.size); err != nil {
		return err
	}
	if s.size == 0 {
		return nil
	}
	data := make([]byte, s.size)
	if b != 0 {
		for i := range data {
			data[i] = b
		}
	}
	return s.mem.Write(s.addr, data)
}

func (s Segment) ReadU8(off uint64) (uint8, error) {
	if err := s.check(off, 1); err != nil {
		return 0, err
	}
	return s.mem.ReadU8(s.addr + foreign.Address(off))
}

func (s Segment) ReadU16(off uint64) (uint16, error) {
	if err := s.check(off, 2); err != nil {
		return 0, err
	}
	return s.mem.ReadU16(s.addr + foreign.Address(off))
}

func (s Segment) ReadU32(off uint64) (uint32, error) {
	if err := s.check(off, 4); err != nil {
		return 0, err
	}
	return s.mem.ReadU32(s.addr + foreign.Address(off))
}

func (s Segment) ReadU64(off uint64) (uint64, error) {
	if err := s.check(off, 8); err != nil {
		return 0, err
	}
	return s.mem.ReadU64(s.addr + foreign.Address(off))
}

func (s Segment) WriteU8(off uint64, v uint8) error {
	if err := s.check(off, 1); err != nil {
		return err
	}
	return s.mem.WriteU8(s.addr+foreign.Address(off), v)
}

func (s Segment) WriteU16(off uint64, v uint16) error {
	if err := s.check(off, 2); err != nil {
		return err
	}
	return s.mem.WriteU16(s.addr+foreign.Address(off), v)
}

func (s Segment) WriteU32(off uint64, v uint32) error {
	if err := s.check(off, 4); err != nil {
		return err
	}
	return s.mem.WriteU32(s.addr+foreign.Address(off), v)
}

func (s Segment) WriteU64(off uint64, v uint64) error {
	if err := s.check(off, 8); err != nil {
		return err
	}
	return s.mem.WriteU64(s.addr+foreign.Address(off), v)
}

// SegmentAllocator hands out fresh zeroed segments.
type SegmentAllocator interface {
	Allocate(size, align uint64) (Segment, error)
}

type heapAllocator struct{}

// HeapAllocator returns an allocator that backs every segment with its own
// Go heap arena. Its segments are always live and are reclaimed by the
// garbage collector.
func HeapAllocator() SegmentAllocator {
	return heapAllocator{}
}

func (heapAllocator) Allocate(size, align uint64) (Segment, error) {
	a := NewArena(AlignTo(size, align))
	addr, err := a.Alloc(size, align)
	if err != nil {
		return Segment{}, err
	}
	return NewSegment(a, addr, size, nil), nil
}

// OfBytes wraps b in an always-live segment. Writes through the segment
// are visible in b.
func OfBytes(b []byte) Segment {
	a := newArenaOver(b, arenaBase, nil)
	a.bump.next = uint64(len(b))
	return NewSegment(a, arenaBase, uint64(len(b)), nil)
}
