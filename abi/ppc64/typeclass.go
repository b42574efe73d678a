package ppc64

import (
	"github.com/wippyai/foreign/errors"
	"github.com/wippyai/foreign/layout"
)

// SlotSize is the width of one variadic argument slot.
const SlotSize = 8

// RegisterStructLimit is the largest aggregate passed by value in a slot.
const RegisterStructLimit = SlotSize

// TypeClass is how an argument travels through a variadic slot.
type TypeClass uint8

const (
	// Primitive is a scalar stored in the slot after promotion.
	Primitive TypeClass = iota
	// Pointer is an address stored in the slot.
	Pointer
	// StructRegister is an aggregate whose bytes fit in the slot.
	StructRegister
	// StructReference is an aggregate copied to a satellite buffer whose
	// address is stored in the slot.
	StructReference
)

var typeClassNames = [...]string{
	Primitive:       "primitive",
	Pointer:         "pointer",
	StructRegister:  "struct_register",
	StructReference: "struct_reference",
}

func (c TypeClass) String() string {
	if int(c) < len(typeClassNames) {
		return typeClassNames[c]
	}
	return "unknown"
}

// IsStruct reports whether c is one of the aggregate classes.
func (c TypeClass) IsStruct() bool {
	return c == StructRegister || c == StructReference
}

// ClassifyLayout returns the argument class of l.
func ClassifyLayout(l layout.Layout) (TypeClass, error) {
	if layout.IsNil(l) {
		return 0, errors.NullArgument(errors.PhaseClassify, nil, "layout")
	}

	switch typ := l.(type) {
	case *layout.ValueLayout:
		switch typ.Carrier() {
		case layout.CarrierBool, layout.CarrierByte, layout.CarrierChar, layout.CarrierShort,
			layout.CarrierInt, layout.CarrierLong, layout.CarrierFloat, layout.CarrierDouble:
			return Primitive, nil
		case layout.CarrierAddress:
			return Pointer, nil
		default:
			return 0, errors.UnsupportedCarrier(errors.PhaseClassify, typ.Carrier().String())
		}
	case *layout.GroupLayout:
		if typ.ByteSize() <= RegisterStructLimit {
			return StructRegister, nil
		}
		return StructReference, nil
	default:
		return 0, errors.UnsupportedLayout(errors.PhaseClassify, l.String())
	}
}

// ClassifyCarrier returns the carrier of a value layout, or CarrierSegment
// for a group layout.
func ClassifyCarrier(l layout.Layout) (layout.Carrier, error) {
	if layout.IsNil(l) {
		return 0, errors.NullArgument(errors.PhaseClassify, nil, "layout")
	}
	c, ok := layout.CarrierOf(l)
	if !ok {
		return 0, errors.UnsupportedLayout(errors.PhaseClassify, l.String())
	}
	return c, nil
}

// AccessKind is the encoding of a promoted scalar slot.
type AccessKind uint8

const (
	AccessLong AccessKind = iota
	AccessDouble
	AccessAddress
)

var accessKindNames = [...]string{
	AccessLong:    "long",
	AccessDouble:  "double",
	AccessAddress: "address",
}

func (k AccessKind) String() string {
	if int(k) < len(accessKindNames) {
		return accessKindNames[k]
	}
	return "unknown"
}

// Access describes how a scalar is written to and read from its slot.
type Access struct {
	Kind  AccessKind
	Width uint64
}

// ClassifyArgumentAccess applies the default argument promotions: every
// integral type narrower than long widens to long, float widens to double,
// and long, double and addresses keep their natural width.
func ClassifyArgumentAccess(v *layout.ValueLayout) (Access, error) {
	if v == nil {
		return Access{}, errors.NullArgument(errors.PhaseClassify, nil, "layout")
	}
	switch v.Carrier() {
	case layout.CarrierBool, layout.CarrierByte, layout.CarrierChar, layout.CarrierShort,
		layout.CarrierInt, layout.CarrierLong:
		return Access{Kind: AccessLong, Width: SlotSize}, nil
	case layout.CarrierFloat, layout.CarrierDouble:
		return Access{Kind: AccessDouble, Width: SlotSize}, nil
	case layout.CarrierAddress:
		return Access{Kind: AccessAddress, Width: SlotSize}, nil
	default:
		return Access{}, errors.UnsupportedCarrier(errors.PhaseClassify, v.Carrier().String())
	}
}
