package sysv

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/wippyai/foreign"
	"github.com/wippyai/foreign/abi/ppc64"
	"github.com/wippyai/foreign/errors"
	"github.com/wippyai/foreign/layout"
	"github.com/wippyai/foreign/memory"
	"github.com/wippyai/foreign/scope"
)

func newScope(t *testing.T, size uint64) *scope.Scope {
	t.Helper()
	s := scope.NewArena(size)
	t.Cleanup(func() { s.Close() })
	return s
}

func newBuilder(t *testing.T, s *scope.Scope) *Builder {
	t.Helper()
	b, err := NewBuilder(s)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	return b
}

func TestNewBuilder(t *testing.T) {
	if _, err := NewBuilder(nil); !errors.IsKind(err, errors.KindNullArgument) {
		t.Errorf("nil scope: got %v", err)
	}

	s := scope.NewArena(64)
	s.Close()
	if _, err := NewBuilder(s); !errors.IsKind(err, errors.KindInvalidScope) {
		t.Errorf("closed scope: got %v", err)
	}
}

func TestBuilder_AppendValidation(t *testing.T) {
	s := newScope(t, 256)
	var nilGroup *layout.GroupLayout

	tests := []struct {
		value   any
		l       layout.Layout
		name    string
		kind    errors.Kind
		carrier layout.Carrier
	}{
		{int32(1), nil, "nil layout", errors.KindNullArgument, layout.CarrierInt},
		{memory.OfBytes([]byte{1}), nilGroup, "typed nil layout", errors.KindNullArgument, layout.CarrierSegment},
		{nil, layout.CInt, "nil value", errors.KindNullArgument, layout.CarrierInt},
		{memory.Segment{}, layout.Struct(layout.CChar), "null segment", errors.KindNullArgument, layout.CarrierSegment},
		{int32(1), layout.CInt, "carrier mismatch", errors.KindTypeMismatch, layout.CarrierLong},
		{[]byte{1, 2}, layout.Struct(layout.CChar, layout.CChar), "bytes for segment", errors.KindTypeMismatch, layout.CarrierSegment},
		{memory.OfBytes([]byte{1}), layout.Struct(layout.CInt), "segment too small", errors.KindOutOfBounds, layout.CarrierSegment},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := newBuilder(t, s)
			err := b.Append(tc.carrier, tc.l, tc.value)
			if !errors.IsKind(err, tc.kind) {
				t.Errorf("got %v, want %s", err, tc.kind)
			}
			if b.Len() != 0 {
				t.Errorf("rejected argument was staged")
			}
		})
	}
}

func TestBuilder_StickyError(t *testing.T) {
	s := newScope(t, 256)
	b := newBuilder(t, s)

	b.AddInt(1).AddStruct(nil, memory.Segment{}).AddLong(2)
	if b.Len() != 1 {
		t.Errorf("Len = %d, want 1 (staging stops at first error)", b.Len())
	}
	if _, err := b.Build(); !errors.IsKind(err, errors.KindNullArgument) {
		t.Errorf("Build = %v, want the sticky null_argument", err)
	}
	if s.Allocations() != 0 {
		t.Errorf("failed build allocated %d segments", s.Allocations())
	}
}

func TestBuilder_EmptyBuild(t *testing.T) {
	s := newScope(t, 64)

	before := testutil.ToFloat64(emptyListsBuilt)
	first, err := newBuilder(t, s).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, _ := newBuilder(t, s).Build()

	if first != Empty() || second != Empty() {
		t.Error("empty builds must return the shared singleton")
	}
	if s.Allocations() != 0 {
		t.Errorf("empty build allocated %d segments", s.Allocations())
	}
	if got := testutil.ToFloat64(emptyListsBuilt) - before; got != 2 {
		t.Errorf("empty build counter advanced by %v, want 2", got)
	}
}

func TestBuilder_SlotEncoding(t *testing.T) {
	s := newScope(t, 512)
	b := newBuilder(t, s)

	pair := layout.Struct(layout.CChar, layout.CChar)
	b.Append(layout.CarrierBool, layout.CBool, true)
	b.Append(layout.CarrierByte, layout.CChar, int8(-1))
	b.Append(layout.CarrierChar, layout.JavaChar, uint16(0xFFFF))
	b.Append(layout.CarrierShort, layout.CShort, int16(-2))
	b.Append(layout.CarrierFloat, layout.CFloat, float32(1.5))
	b.AddInt(42).AddAddress(0x1234).AddStruct(pair, memory.OfBytes([]byte{0xAA, 0xBB}))

	list, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if list.buf.Size() != 8*ppc64.SlotSize {
		t.Errorf("buffer = %d bytes, want %d", list.buf.Size(), 8*ppc64.SlotSize)
	}

	slots, err := list.Slots()
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}
	want := []uint64{
		1,
		0xFFFF_FFFF_FFFF_FFFF,
		0xFFFF,
		0xFFFF_FFFF_FFFF_FFFE,
		0x3FF8_0000_0000_0000,
		42,
		0x1234,
		0xBBAA,
	}
	for i := range want {
		if slots[i] != want[i] {
			t.Errorf("slot %d = %#x, want %#x", i, slots[i], want[i])
		}
	}
}

func TestBuilder_CopiesAggregateAtAppend(t *testing.T) {
	s := newScope(t, 512)
	b := newBuilder(t, s)

	src := make([]byte, 16)
	for i := range src {
		src[i] = byte(i)
	}
	big := layout.Struct(layout.CLong, layout.CLong)
	b.AddStruct(big, memory.OfBytes(src))

	src[0] = 0xFF

	list, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got, err := list.NextStruct(big, memory.HeapAllocator())
	if err != nil {
		t.Fatalf("NextStruct: %v", err)
	}
	data, _ := got.Bytes()
	if data[0] != 0 {
		t.Errorf("mutation after append leaked into the list: %x", data)
	}
}

func TestBuilder_SatelliteAlignment(t *testing.T) {
	s := newScope(t, 512)
	b := newBuilder(t, s)

	small := layout.StructOf(layout.Sequence(9, layout.CChar))
	b.AddInt(1).AddStruct(small, memory.OfBytes(make([]byte, 9)))

	list, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	sats := list.Satellites()
	if len(sats) != 1 {
		t.Fatalf("satellites = %d, want 1", len(sats))
	}
	if sats[0].Address()%ppc64.SlotSize != 0 {
		t.Errorf("satellite at %#x is not slot aligned", sats[0].Address())
	}
	if sats[0].Size() != 9 {
		t.Errorf("satellite size = %d, want 9", sats[0].Size())
	}
}

func TestBuilder_AllOrNothing(t *testing.T) {
	s := newScope(t, 40)
	b := newBuilder(t, s)

	// 16 bytes of slots fit, the 64-byte satellite does not
	big := layout.StructOf(layout.Sequence(64, layout.CChar))
	b.AddInt(1).AddStruct(big, memory.OfBytes(make([]byte, 64)))

	before := testutil.ToFloat64(buildFailures)
	list, err := b.Build()
	if !errors.IsKind(err, errors.KindAllocation) {
		t.Fatalf("Build = %v, want allocation error", err)
	}
	if list != nil {
		t.Error("failed build returned a list")
	}
	if s.Allocations() != 0 {
		t.Errorf("failed build left %d allocations", s.Allocations())
	}
	if got := testutil.ToFloat64(buildFailures) - before; got != 1 {
		t.Errorf("failure counter advanced by %v, want 1", got)
	}

	// the space is usable again
	if _, err := s.Allocate(32, 8); err != nil {
		t.Errorf("Allocate after failed build: %v", err)
	}
}

func TestBuilder_FailedBuildRewindsArena(t *testing.T) {
	arena := memory.NewArena(64)
	s := scope.New(arena, arena)
	t.Cleanup(func() { s.Close() })
	b := newBuilder(t, s)

	// 9-byte aggregates go by reference with 8-byte aligned satellites,
	// leaving alignment gaps between blocks
	odd := layout.StructOf(layout.Sequence(9, layout.CChar))
	b.AddStruct(odd, memory.OfBytes(make([]byte, 9))).
		AddStruct(odd, memory.OfBytes(make([]byte, 9)))
	if err := b.Append(layout.CarrierInt, layout.CInt, "bad"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if _, err := b.Build(); !errors.IsKind(err, errors.KindTypeMismatch) {
		t.Fatalf("Build = %v, want type_mismatch", err)
	}
	if s.Allocations() != 0 {
		t.Errorf("failed build left %d allocations", s.Allocations())
	}
	if arena.Used() != 0 {
		t.Errorf("arena used = %d after failed build, want 0", arena.Used())
	}
	if _, err := s.Allocate(64, 8); err != nil {
		t.Errorf("Allocate after failed build: %v", err)
	}
}

func TestBuilder_EncodeErrorsReleaseBuffer(t *testing.T) {
	tests := []struct {
		value   any
		l       layout.Layout
		name    string
		kind    errors.Kind
		carrier layout.Carrier
	}{
		{"x", layout.CInt, "wrong Go type", errors.KindTypeMismatch, layout.CarrierInt},
		{int32(1), layout.Padding(8), "padding layout", errors.KindUnsupportedLayout, layout.CarrierInt},
		{memory.OfBytes(make([]byte, 8)), layout.Sequence(8, layout.CChar), "sequence as segment", errors.KindUnsupportedLayout, layout.CarrierSegment},
		{memory.OfBytes([]byte{1}), layout.Value(layout.CarrierSegment), "segment carrier value layout", errors.KindUnsupportedCarrier, layout.CarrierSegment},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newScope(t, 256)
			b := newBuilder(t, s)
			b.AddLong(7)
			if err := b.Append(tc.carrier, tc.l, tc.value); err != nil {
				t.Fatalf("Append: %v", err)
			}
			_, err := b.Build()
			if !errors.IsKind(err, tc.kind) {
				t.Errorf("Build = %v, want %s", err, tc.kind)
			}
			if s.Allocations() != 0 {
				t.Errorf("failed build left %d allocations", s.Allocations())
			}
		})
	}
}

func TestBuilder_ScopeClosedBeforeBuild(t *testing.T) {
	s := scope.NewArena(64)
	b := newBuilder(t, s)
	b.AddInt(1)
	s.Close()

	if _, err := b.Build(); !errors.IsKind(err, errors.KindInvalidScope) {
		t.Errorf("Build = %v, want invalid_scope", err)
	}
}

func TestBuilder_Metrics(t *testing.T) {
	s := newScope(t, 512)

	built := testutil.ToFloat64(listsBuilt)
	sats := testutil.ToFloat64(satellitesAllocated)
	bytesBefore := testutil.ToFloat64(slotBytes)

	b := newBuilder(t, s)
	b.AddInt(1).AddStruct(layout.Struct(layout.CLong, layout.CLong), memory.OfBytes(make([]byte, 16)))
	if _, err := b.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got := testutil.ToFloat64(listsBuilt) - built; got != 1 {
		t.Errorf("built counter advanced by %v, want 1", got)
	}
	if got := testutil.ToFloat64(satellitesAllocated) - sats; got != 1 {
		t.Errorf("satellite counter advanced by %v, want 1", got)
	}
	if got := testutil.ToFloat64(slotBytes) - bytesBefore; got != 16 {
		t.Errorf("slot bytes advanced by %v, want 16", got)
	}
}

func TestBuilder_AddressHelpers(t *testing.T) {
	s := newScope(t, 256)
	list, err := newBuilder(t, s).AddAddress(foreign.Address(0xdead)).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	raw, _ := list.buf.Read(0, 8)
	if !bytes.Equal(raw, []byte{0xad, 0xde, 0, 0, 0, 0, 0, 0}) {
		t.Errorf("slot bytes = %x, want little-endian address", raw)
	}
}
