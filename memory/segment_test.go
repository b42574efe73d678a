package memory

import (
	"bytes"
	"testing"

	"github.com/wippyai/foreign/errors"
)

type fakeOwner struct{ err error }

func (o *fakeOwner) CheckValid() error { return o.err }

func newTestSegment(t *testing.T, size uint64) (Segment, *Arena) {
	t.Helper()
	a := NewArena(256)
	addr, err := a.Alloc(size, 8)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	return NewSegment(a, addr, size, nil), a
}

func TestSegment_ScalarRoundTrip(t *testing.T) {
	seg, _ := newTestSegment(t, 16)

	if err := seg.WriteU8(0, 0xAB); err != nil {
		t.Fatalf("WriteU8: %v", err)
	}
	if err := seg.WriteU16(2, 0x1234); err != nil {
		t.Fatalf("WriteU16: %v", err)
	}
	if err := seg.WriteU32(4, 0xDEADBEEF); err != nil {
		t.Fatalf("WriteU32: %v", err)
	}
	if err := seg.WriteU64(8, 0x0102030405060708); err != nil {
		t.Fatalf("WriteU64: %v", err)
	}

	if v, _ := seg.ReadU8(0); v != 0xAB {
		t.Errorf("ReadU8 = 0x%x", v)
	}
	if v, _ := seg.ReadU16(2); v != 0x1234 {
		t.Errorf("ReadU16 = 0x%x", v)
	}
	if v, _ := seg.ReadU32(4); v != 0xDEADBEEF {
		t.Errorf("ReadU32 = 0x%x", v)
	}
	if v, _ := seg.ReadU64(8); v != 0x0102030405060708 {
		t.Errorf("ReadU64 = 0x%x", v)
	}

	// little-endian layout
	raw, err := seg.Read(8, 8)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(raw, []byte{8, 7, 6, 5, 4, 3, 2, 1}) {
		t.Errorf("Read = %x, want little-endian", raw)
	}
}

func TestSegment_Bounds(t *testing.T) {
	seg, _ := newTestSegment(t, 8)

	tests := []struct {
		op   func() error
		name string
	}{
		{func() error { _, err := seg.ReadU64(1); return err }, "ReadU64 past end"},
		{func() error { _, err := seg.ReadU8(8); return err }, "ReadU8 at end"},
		{func() error { return seg.WriteU32(6, 1) }, "WriteU32 straddling"},
		{func() error { return seg.Write(4, make([]byte, 5)) }, "Write too long"},
		{func() error { _, err := seg.Read(0, 9); return err }, "Read too long"},
		{func() error { _, err := seg.Slice(4, 5); return err }, "Slice too long"},
		{func() error { _, err := seg.AsSlice(9); return err }, "AsSlice past end"},
		{func() error { _, err := seg.ReadU64(^uint64(0)); return err }, "offset overflow"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.op()
			if !errors.IsKind(err, errors.KindOutOfBounds) {
				t.Errorf("expected out_of_bounds, got %v", err)
			}
		})
	}
}

func TestSegment_Slice(t *testing.T) {
	seg, _ := newTestSegment(t, 16)
	if err := seg.Write(0, []byte("0123456789abcdef")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	sub, err := seg.Slice(4, 4)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if sub.Address() != seg.Address()+4 || sub.Size() != 4 {
		t.Errorf("sub = %#x/%d", sub.Address(), sub.Size())
	}
	got, _ := sub.Bytes()
	if string(got) != "4567" {
		t.Errorf("Bytes = %q, want 4567", got)
	}

	rest, err := seg.AsSlice(12)
	if err != nil {
		t.Fatalf("AsSlice: %v", err)
	}
	got, _ = rest.Bytes()
	if string(got) != "cdef" {
		t.Errorf("AsSlice bytes = %q, want cdef", got)
	}

	empty, err := seg.AsSlice(16)
	if err != nil || empty.Size() != 0 {
		t.Errorf("AsSlice(size) = %d, %v", empty.Size(), err)
	}
}

func TestSegment_OwnerCheckedFirst(t *testing.T) {
	a := NewArena(64)
	addr, _ := a.Alloc(8, 8)
	owner := &fakeOwner{}
	seg := NewSegment(a, addr, 8, owner)

	if err := seg.WriteU64(0, 1); err != nil {
		t.Fatalf("WriteU64 with live owner: %v", err)
	}

	owner.err = errors.InvalidScope(errors.PhaseScope, "closed")

	// Even an out-of-bounds access reports the owner failure.
	if _, err := seg.ReadU64(100); !errors.IsKind(err, errors.KindInvalidScope) {
		t.Errorf("ReadU64 = %v, want invalid_scope", err)
	}
	if err := seg.Fill(0); !errors.IsKind(err, errors.KindInvalidScope) {
		t.Errorf("Fill = %v, want invalid_scope", err)
	}
	if _, err := seg.Slice(0, 4); !errors.IsKind(err, errors.KindInvalidScope) {
		t.Errorf("Slice = %v, want invalid_scope", err)
	}
}

func TestSegment_Null(t *testing.T) {
	var seg Segment
	if !seg.IsNull() {
		t.Error("zero Segment should be null")
	}
	if _, err := seg.ReadU8(0); !errors.IsKind(err, errors.KindNullArgument) {
		t.Errorf("ReadU8 on null segment = %v, want null_argument", err)
	}
}

func TestSegment_CopyFromAndFill(t *testing.T) {
	dst, _ := newTestSegment(t, 8)
	src := OfBytes([]byte{0xAA, 0xBB})

	if err := dst.Fill(0xFF); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if err := dst.CopyFrom(src); err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	got, _ := dst.Bytes()
	want := []byte{0xAA, 0xBB, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	if !bytes.Equal(got, want) {
		t.Errorf("Bytes = %x, want %x", got, want)
	}

	big := OfBytes(make([]byte, 9))
	if err := dst.CopyFrom(big); !errors.IsKind(err, errors.KindOutOfBounds) {
		t.Errorf("CopyFrom larger = %v, want out_of_bounds", err)
	}
}

func TestOfBytes_SharesBacking(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	seg := OfBytes(buf)
	if seg.Size() != 4 || seg.IsNull() {
		t.Fatalf("seg = %d bytes, null=%v", seg.Size(), seg.IsNull())
	}
	if err := seg.WriteU8(0, 9); err != nil {
		t.Fatalf("WriteU8: %v", err)
	}
	if buf[0] != 9 {
		t.Errorf("write not visible in backing slice: %v", buf)
	}
}

func TestHeapAllocator(t *testing.T) {
	alloc := HeapAllocator()

	seg, err := alloc.Allocate(24, 8)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if seg.Size() != 24 || seg.Address()%8 != 0 {
		t.Errorf("seg = %#x/%d", seg.Address(), seg.Size())
	}
	got, _ := seg.Bytes()
	if !bytes.Equal(got, make([]byte, 24)) {
		t.Errorf("fresh segment not zeroed: %x", got)
	}

	zero, err := alloc.Allocate(0, 1)
	if err != nil || zero.Size() != 0 {
		t.Errorf("Allocate(0) = %d, %v", zero.Size(), err)
	}
}
