package sysv

import (
	"github.com/wippyai/foreign"
	"github.com/wippyai/foreign/abi/ppc64"
	"github.com/wippyai/foreign/errors"
	"github.com/wippyai/foreign/layout"
	"github.com/wippyai/foreign/memory"
	"github.com/wippyai/foreign/scope"
)

// VaList is a built variadic argument list: count 8-byte slots in one
// buffer, plus the satellite buffers of by-reference aggregates.
//
// The list contents never change after Build. A VaList carries a cursor,
// so one value must not be read from several goroutines; use Copy to get
// independent cursors.
//
// Next cannot check that a layout matches the one used when the argument
// was appended. Reading with a different shape returns garbage.
type VaList struct {
	scope      *scope.Scope
	buf        memory.Segment
	satellites []memory.Segment
	count      int
	pos        int
}

var empty = &VaList{}

// Empty returns the shared list with no arguments. It never touches a scope.
func Empty() *VaList { return empty }

// OfAddress wraps slots already laid out at addr in s's memory, for
// example a list produced by another builder or by native code using the
// same slot encoding.
func OfAddress(addr foreign.Address, slots int, s *scope.Scope) (*VaList, error) {
	if s == nil {
		return nil, errors.NullArgument(errors.PhaseDecode, nil, "scope")
	}
	if slots < 0 {
		return nil, errors.InvalidInput(errors.PhaseDecode, "negative slot count")
	}
	if slots == 0 {
		return Empty(), nil
	}
	buf, err := s.Segment(addr, uint64(slots)*ppc64.SlotSize)
	if err != nil {
		return nil, err
	}
	return &VaList{scope: s, buf: buf, count: slots}, nil
}

func (v *VaList) isEmpty() bool { return v.count == 0 }

// Len returns the number of arguments in the list.
func (v *VaList) Len() int { return v.count }

// Position returns the index of the next argument to read.
func (v *VaList) Position() int { return v.pos }

// Remaining returns the number of arguments not yet read.
func (v *VaList) Remaining() int { return v.count - v.pos }

// Scope returns the scope the list lives in, or nil for the empty list.
func (v *VaList) Scope() *scope.Scope { return v.scope }

// Satellites returns the by-reference aggregate copies owned by the list.
func (v *VaList) Satellites() []memory.Segment {
	return append([]memory.Segment(nil), v.satellites...)
}

// Address returns the address of the slot under the cursor. It is 0 for
// the empty list.
func (v *VaList) Address() foreign.Address {
	if v.isEmpty() {
		return 0
	}
	return v.buf.Address() + foreign.Address(uint64(v.pos)*ppc64.SlotSize)
}

// Slots returns the raw slot images.
func (v *VaList) Slots() ([]uint64, error) {
	if v.isEmpty() {
		return nil, nil
	}
	out := make([]uint64, v.count)
	for i := range out {
		slot, err := v.buf.ReadU64(uint64(i) * ppc64.SlotSize)
		if err != nil {
			return nil, err
		}
		out[i] = slot
	}
	return out, nil
}

// Next reads the argument under the cursor as l and advances by one slot.
//
// Scalars come back as the Go type of their carrier (see
// ppc64.DecodeScalar). Aggregates come back as a memory.Segment from
// alloc: a StructRegister read copies the whole 8-byte slot, a
// StructReference read copies l.ByteSize() bytes from the satellite.
func (v *VaList) Next(l layout.Layout, alloc memory.SegmentAllocator) (any, error) {
	if layout.IsNil(l) {
		return nil, errors.NullArgument(errors.PhaseDecode, nil, "layout")
	}
	if v.isEmpty() {
		return nil, errors.OutOfRange(errors.PhaseDecode, v.pos, 0)
	}
	if err := v.buf.CheckValid(); err != nil {
		return nil, err
	}
	if v.pos >= v.count {
		return nil, errors.OutOfRange(errors.PhaseDecode, v.pos, v.count)
	}

	class, err := ppc64.ClassifyLayout(l)
	if err != nil {
		return nil, err
	}
	if class.IsStruct() && alloc == nil {
		return nil, errors.NullArgument(errors.PhaseDecode, nil, "allocator")
	}

	slot, err := v.buf.Slice(uint64(v.pos)*ppc64.SlotSize, ppc64.SlotSize)
	if err != nil {
		return nil, err
	}

	var value any
	switch class {
	case ppc64.Primitive, ppc64.Pointer:
		bits, err := slot.ReadU64(0)
		if err != nil {
			return nil, err
		}
		value, err = ppc64.DecodeScalar(l.(*layout.ValueLayout), bits)
		if err != nil {
			return nil, err
		}

	case ppc64.StructRegister:
		dst, err := alloc.Allocate(ppc64.SlotSize, l.ByteAlign())
		if err != nil {
			return nil, err
		}
		if err := dst.CopyFrom(slot); err != nil {
			return nil, err
		}
		value = dst

	case ppc64.StructReference:
		ptr, err := slot.ReadU64(0)
		if err != nil {
			return nil, err
		}
		src, err := v.scope.Segment(foreign.Address(ptr), l.ByteSize())
		if err != nil {
			return nil, err
		}
		dst, err := alloc.Allocate(l.ByteSize(), l.ByteAlign())
		if err != nil {
			return nil, err
		}
		if err := dst.CopyFrom(src); err != nil {
			return nil, err
		}
		value = dst

	default:
		return nil, errors.UnexpectedClassification(errors.PhaseDecode, nil, class.String())
	}

	v.pos++
	slotsRead.WithLabelValues(class.String()).Inc()
	return value, nil
}

func (v *VaList) nextValue(l *layout.ValueLayout) (any, error) {
	return v.Next(l, nil)
}

// NextInt reads a C int.
func (v *VaList) NextInt() (int32, error) {
	val, err := v.nextValue(layout.CInt)
	if err != nil {
		return 0, err
	}
	return val.(int32), nil
}

// NextLong reads a C long.
func (v *VaList) NextLong() (int64, error) {
	val, err := v.nextValue(layout.CLong)
	if err != nil {
		return 0, err
	}
	return val.(int64), nil
}

// NextDouble reads a C double.
func (v *VaList) NextDouble() (float64, error) {
	val, err := v.nextValue(layout.CDouble)
	if err != nil {
		return 0, err
	}
	return val.(float64), nil
}

// NextAddress reads a pointer.
func (v *VaList) NextAddress() (foreign.Address, error) {
	val, err := v.nextValue(layout.CPointer)
	if err != nil {
		return 0, err
	}
	return val.(foreign.Address), nil
}

// NextStruct reads an aggregate into a segment from alloc.
func (v *VaList) NextStruct(l *layout.GroupLayout, alloc memory.SegmentAllocator) (memory.Segment, error) {
	val, err := v.Next(l, alloc)
	if err != nil {
		return memory.Segment{}, err
	}
	return val.(memory.Segment), nil
}

// Skip advances past one argument per layout without copying anything
// out. If fewer arguments remain than layouts, the cursor does not move.
func (v *VaList) Skip(layouts ...layout.Layout) error {
	if len(layouts) == 0 {
		return nil
	}
	if v.isEmpty() {
		return errors.OutOfRange(errors.PhaseDecode, len(layouts)-1, 0)
	}
	if err := v.buf.CheckValid(); err != nil {
		return err
	}
	for _, l := range layouts {
		if _, err := ppc64.ClassifyLayout(l); err != nil {
			return err
		}
	}
	if len(layouts) > v.Remaining() {
		return errors.OutOfRange(errors.PhaseDecode, v.pos+len(layouts)-1, v.count)
	}
	v.pos += len(layouts)
	return nil
}

// Copy returns a list over the same slots and satellites with its own
// cursor at the current position.
func (v *VaList) Copy() (*VaList, error) {
	if v.isEmpty() {
		return v, nil
	}
	if err := v.buf.CheckValid(); err != nil {
		return nil, err
	}
	c := *v
	return &c, nil
}
