package layout

import (
	"fmt"
	"strings"
)

// Layout describes the shape of one value in native memory.
type Layout interface {
	ByteSize() uint64
	ByteAlign() uint64
	Name() string
	String() string
}

// ValueLayout describes a scalar.
type ValueLayout struct {
	name    string
	carrier Carrier
	size    uint64
	align   uint64
}

// NewValue creates a value layout with an explicit size and alignment.
// No validation happens here; classification rejects unknown carriers.
func NewValue(carrier Carrier, size, align uint64) *ValueLayout {
	if align == 0 {
		align = 1
	}
	return &ValueLayout{carrier: carrier, size: size, align: align}
}

// Value creates a value layout with the carrier's natural size and alignment.
func Value(carrier Carrier) *ValueLayout {
	size := carrier.Size()
	return NewValue(carrier, size, size)
}

func (v *ValueLayout) Carrier() Carrier  { return v.carrier }
func (v *ValueLayout) ByteSize() uint64  { return v.size }
func (v *ValueLayout) ByteAlign() uint64 { return v.align }
func (v *ValueLayout) Name() string      { return v.name }

// WithName returns a copy of v carrying the given name.
func (v *ValueLayout) WithName(name string) *ValueLayout {
	c := *v
	c.name = name
	return &c
}

func (v *ValueLayout) String() string {
	var desc string
	switch v.carrier {
	case CarrierBool:
		desc = fmt.Sprintf("z%d", v.size*8)
	case CarrierChar:
		desc = fmt.Sprintf("c%d", v.size*8)
	case CarrierFloat, CarrierDouble:
		desc = fmt.Sprintf("f%d", v.size*8)
	case CarrierAddress:
		desc = fmt.Sprintf("a%d", v.size*8)
	default:
		desc = fmt.Sprintf("i%d", v.size*8)
	}
	return decorate(desc, v.name)
}

// GroupKind distinguishes structs from unions.
type GroupKind uint8

const (
	GroupStruct GroupKind = iota
	GroupUnion
)

// GroupLayout describes an aggregate made of member layouts.
type GroupLayout struct {
	name    string
	members []Layout
	offsets []uint64
	size    uint64
	align   uint64
	kind    GroupKind
}

// StructOf lays members out back to back without inserting padding.
func StructOf(members ...Layout) *GroupLayout {
	g := &GroupLayout{kind: GroupStruct, align: 1}
	offset := uint64(0)
	for _, m := range members {
		g.offsets = append(g.offsets, offset)
		offset += m.ByteSize()
		if m.ByteAlign() > g.align {
			g.align = m.ByteAlign()
		}
	}
	g.members = append(g.members, members...)
	g.size = offset
	return g
}

// Struct lays members out at their natural alignment, inserting padding
// between members and at the end as a C compiler would.
func Struct(members ...Layout) *GroupLayout {
	var padded []Layout
	maxAlign := uint64(1)
	offset := uint64(0)

	for _, m := range members {
		aligned := AlignTo(offset, m.ByteAlign())
		if aligned > offset {
			padded = append(padded, Padding(aligned-offset))
		}
		padded = append(padded, m)
		if m.ByteAlign() > maxAlign {
			maxAlign = m.ByteAlign()
		}
		offset = aligned + m.ByteSize()
	}

	if total := AlignTo(offset, maxAlign); total > offset {
		padded = append(padded, Padding(total-offset))
	}

	g := StructOf(padded...)
	g.align = maxAlign
	return g
}

// Union overlays members at offset 0.
func Union(members ...Layout) *GroupLayout {
	g := &GroupLayout{kind: GroupUnion, align: 1}
	maxSize := uint64(0)
	for _, m := range members {
		g.offsets = append(g.offsets, 0)
		if m.ByteSize() > maxSize {
			maxSize = m.ByteSize()
		}
		if m.ByteAlign() > g.align {
			g.align = m.ByteAlign()
		}
	}
	g.members = append(g.members, members...)
	g.size = AlignTo(maxSize, g.align)
	return g
}

func (g *GroupLayout) Kind() GroupKind   { return g.kind }
func (g *GroupLayout) IsStruct() bool    { return g.kind == GroupStruct }
func (g *GroupLayout) IsUnion() bool     { return g.kind == GroupUnion }
func (g *GroupLayout) ByteSize() uint64  { return g.size }
func (g *GroupLayout) ByteAlign() uint64 { return g.align }
func (g *GroupLayout) Name() string      { return g.name }

// Members returns the member layouts, padding included.
func (g *GroupLayout) Members() []Layout {
	return append([]Layout(nil), g.members...)
}

// MemberOffset returns the byte offset of member i.
func (g *GroupLayout) MemberOffset(i int) (uint64, bool) {
	if i < 0 || i >= len(g.offsets) {
		return 0, false
	}
	return g.offsets[i], true
}

// WithName returns a copy of g carrying the given name.
func (g *GroupLayout) WithName(name string) *GroupLayout {
	c := *g
	c.name = name
	return &c
}

func (g *GroupLayout) String() string {
	sep := ""
	if g.kind == GroupUnion {
		sep = "|"
	}
	parts := make([]string, len(g.members))
	for i, m := range g.members {
		parts[i] = m.String()
	}
	return decorate("["+strings.Join(parts, sep)+"]", g.name)
}

// PaddingLayout describes unused bytes.
type PaddingLayout struct {
	size uint64
}

func Padding(size uint64) *PaddingLayout { return &PaddingLayout{size: size} }

func (p *PaddingLayout) ByteSize() uint64  { return p.size }
func (p *PaddingLayout) ByteAlign() uint64 { return 1 }
func (p *PaddingLayout) Name() string      { return "" }
func (p *PaddingLayout) String() string    { return fmt.Sprintf("x%d", p.size*8) }

// SequenceLayout describes count repetitions of an element layout.
type SequenceLayout struct {
	elem  Layout
	count uint64
}

func Sequence(count uint64, elem Layout) *SequenceLayout {
	return &SequenceLayout{elem: elem, count: count}
}

func (s *SequenceLayout) Element() Layout   { return s.elem }
func (s *SequenceLayout) Count() uint64     { return s.count }
func (s *SequenceLayout) ByteSize() uint64  { return s.count * s.elem.ByteSize() }
func (s *SequenceLayout) ByteAlign() uint64 { return s.elem.ByteAlign() }
func (s *SequenceLayout) Name() string      { return "" }
func (s *SequenceLayout) String() string {
	return fmt.Sprintf("[%d:%s]", s.count, s.elem)
}

// CarrierOf returns the carrier of a value layout, or CarrierSegment for a
// group layout. The second result is false for any other layout.
func CarrierOf(l Layout) (Carrier, bool) {
	switch typ := l.(type) {
	case *ValueLayout:
		if typ == nil {
			return 0, false
		}
		return typ.carrier, true
	case *GroupLayout:
		if typ == nil {
			return 0, false
		}
		return CarrierSegment, true
	default:
		return 0, false
	}
}

// IsNil reports whether l is nil or a typed nil pointer of a known layout kind.
func IsNil(l Layout) bool {
	switch typ := l.(type) {
	case nil:
		return true
	case *ValueLayout:
		return typ == nil
	case *GroupLayout:
		return typ == nil
	case *PaddingLayout:
		return typ == nil
	case *SequenceLayout:
		return typ == nil
	default:
		return false
	}
}

// AlignTo rounds offset up to a multiple of align.
func AlignTo(offset, align uint64) uint64 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

func decorate(desc, name string) string {
	if name == "" {
		return desc
	}
	return desc + "(" + name + ")"
}
