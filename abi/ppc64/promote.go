package ppc64

import (
	"fmt"
	"math"

	"github.com/wippyai/foreign"
	"github.com/wippyai/foreign/errors"
	"github.com/wippyai/foreign/layout"
	"github.com/wippyai/foreign/memory"
)

// integer bounds accepted per carrier. Both the signed and unsigned
// readings of the C type fit, so 0xFF is a valid char byte.
var intBounds = map[layout.Carrier][2]int64{
	layout.CarrierByte:  {math.MinInt8, math.MaxUint8},
	layout.CarrierChar:  {0, math.MaxUint16},
	layout.CarrierShort: {math.MinInt16, math.MaxUint16},
	layout.CarrierInt:   {math.MinInt32, math.MaxUint32},
	layout.CarrierLong:  {math.MinInt64, math.MaxInt64},
}

// EncodeScalar returns the promoted 8-byte slot image of value for v.
//
// Accepted Go types: bool for bool, any integer kind that fits for the
// integral carriers, float32 or float64 for float and double, and
// foreign.Address, uintptr or memory.Segment for addresses.
func EncodeScalar(v *layout.ValueLayout, value any) (uint64, error) {
	access, err := ClassifyArgumentAccess(v)
	if err != nil {
		return 0, err
	}
	if value == nil {
		return 0, errors.NullArgument(errors.PhaseEncode, nil, "value")
	}

	switch access.Kind {
	case AccessDouble:
		f, ok := toFloat(value)
		if !ok {
			return 0, mismatch(v, value)
		}
		if v.Carrier() == layout.CarrierFloat {
			if math.Abs(f) > math.MaxFloat32 && !math.IsInf(f, 0) {
				return 0, outOfRange(v, value)
			}
			f = float64(float32(f))
		}
		return math.Float64bits(f), nil

	case AccessAddress:
		switch a := value.(type) {
		case foreign.Address:
			return uint64(a), nil
		case uintptr:
			return uint64(a), nil
		case memory.Segment:
			return uint64(a.Address()), nil
		}
		return 0, mismatch(v, value)
	}

	if v.Carrier() == layout.CarrierBool {
		b, ok := value.(bool)
		if !ok {
			return 0, mismatch(v, value)
		}
		if b {
			return 1, nil
		}
		return 0, nil
	}

	// unsigned values above MaxInt64 only fit a long, bit for bit
	if u, ok := toUint(value); ok && u > math.MaxInt64 {
		if v.Carrier() == layout.CarrierLong {
			return u, nil
		}
		return 0, outOfRange(v, value)
	}

	n, ok := toInt(value)
	if !ok {
		return 0, mismatch(v, value)
	}
	bounds := intBounds[v.Carrier()]
	if n < bounds[0] || n > bounds[1] {
		return 0, outOfRange(v, value)
	}

	switch v.Carrier() {
	case layout.CarrierByte:
		return uint64(int64(int8(n))), nil
	case layout.CarrierChar:
		return uint64(uint16(n)), nil
	case layout.CarrierShort:
		return uint64(int64(int16(n))), nil
	case layout.CarrierInt:
		return uint64(int64(int32(n))), nil
	default:
		return uint64(n), nil
	}
}

// DecodeScalar reads a promoted slot image back as the Go type of v's
// carrier: bool, int8, uint16, int16, int32, int64, float32, float64 or
// foreign.Address.
func DecodeScalar(v *layout.ValueLayout, slot uint64) (any, error) {
	if _, err := ClassifyArgumentAccess(v); err != nil {
		return nil, err
	}
	switch v.Carrier() {
	case layout.CarrierBool:
		return slot != 0, nil
	case layout.CarrierByte:
		return int8(slot), nil
	case layout.CarrierChar:
		return uint16(slot), nil
	case layout.CarrierShort:
		return int16(slot), nil
	case layout.CarrierInt:
		return int32(slot), nil
	case layout.CarrierLong:
		return int64(slot), nil
	case layout.CarrierFloat:
		return float32(math.Float64frombits(slot)), nil
	case layout.CarrierDouble:
		return math.Float64frombits(slot), nil
	default:
		return foreign.Address(slot), nil
	}
}

func toInt(value any) (int64, bool) {
	switch n := value.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	}
	return 0, false
}

func toUint(value any) (uint64, bool) {
	switch n := value.(type) {
	case uint:
		return uint64(n), true
	case uint64:
		return n, true
	}
	return 0, false
}

func toFloat(value any) (float64, bool) {
	switch f := value.(type) {
	case float32:
		return float64(f), true
	case float64:
		return f, true
	}
	return 0, false
}

func mismatch(v *layout.ValueLayout, value any) error {
	return errors.TypeMismatch(errors.PhaseEncode, nil, fmt.Sprintf("%T", value), v.String())
}

func outOfRange(v *layout.ValueLayout, value any) error {
	return errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
		GoType(fmt.Sprintf("%T", value)).
		Layout(v.String()).
		Value(value).
		Detail("value %v does not fit", value).
		Build()
}
