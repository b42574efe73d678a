package layout

// Carrier identifies the Go-side representation of a value layout.
// CarrierSegment is the aggregate handle used for group layouts.
type Carrier uint8

const (
	CarrierBool Carrier = iota
	CarrierByte
	CarrierChar
	CarrierShort
	CarrierInt
	CarrierLong
	CarrierFloat
	CarrierDouble
	CarrierAddress
	CarrierSegment
)

var carrierNames = [...]string{
	CarrierBool:    "bool",
	CarrierByte:    "byte",
	CarrierChar:    "char",
	CarrierShort:   "short",
	CarrierInt:     "int",
	CarrierLong:    "long",
	CarrierFloat:   "float",
	CarrierDouble:  "double",
	CarrierAddress: "address",
	CarrierSegment: "segment",
}

func (c Carrier) String() string {
	if int(c) < len(carrierNames) {
		return carrierNames[c]
	}
	return "unknown"
}

// IsScalar reports whether c is one of the scalar carriers.
func (c Carrier) IsScalar() bool {
	return c <= CarrierAddress
}

// Size returns the natural byte size of a scalar carrier on ppc64le, or 0.
func (c Carrier) Size() uint64 {
	switch c {
	case CarrierBool, CarrierByte:
		return 1
	case CarrierChar, CarrierShort:
		return 2
	case CarrierInt, CarrierFloat:
		return 4
	case CarrierLong, CarrierDouble, CarrierAddress:
		return 8
	default:
		return 0
	}
}

// GoType names the Go type values of this carrier are exchanged as.
func (c Carrier) GoType() string {
	switch c {
	case CarrierBool:
		return "bool"
	case CarrierByte:
		return "int8"
	case CarrierChar:
		return "uint16"
	case CarrierShort:
		return "int16"
	case CarrierInt:
		return "int32"
	case CarrierLong:
		return "int64"
	case CarrierFloat:
		return "float32"
	case CarrierDouble:
		return "float64"
	case CarrierAddress:
		return "foreign.Address"
	case CarrierSegment:
		return "memory.Segment"
	default:
		return "unknown"
	}
}
