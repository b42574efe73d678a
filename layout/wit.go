package layout

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/foreign/errors"
)

const defaultCacheSize = 256

// Converter maps WIT types onto ppc64le layouts.
// Conversions of type definitions are cached by identity.
type Converter struct {
	cache *lru.Cache
}

// NewConverter creates a converter caching up to size type definitions.
func NewConverter(size int) (*Converter, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Converter{cache: cache}, nil
}

var defaultConverter = mustConverter()

func mustConverter() *Converter {
	c, err := NewConverter(defaultCacheSize)
	if err != nil {
		panic(err)
	}
	return c
}

// FromWIT converts t using the package-level converter.
func FromWIT(t wit.Type) (Layout, error) {
	return defaultConverter.Convert(t)
}

// Convert returns the layout for a WIT type. Scalars map onto the C data
// model, records and tuples onto naturally aligned structs, enums and
// flags onto integers of their discriminant size, and resource handles
// onto 32-bit ints. Strings, lists, options, results and variants have no
// fixed native shape and are rejected.
func (c *Converter) Convert(t wit.Type) (Layout, error) {
	switch typ := t.(type) {
	case wit.Bool:
		return CBool, nil
	case wit.U8, wit.S8:
		return CChar, nil
	case wit.U16:
		return JavaChar, nil
	case wit.S16:
		return CShort, nil
	case wit.U32, wit.S32, wit.Char:
		return CInt, nil
	case wit.U64, wit.S64:
		return CLong, nil
	case wit.F32:
		return CFloat, nil
	case wit.F64:
		return CDouble, nil
	case *wit.TypeDef:
		if typ == nil {
			return nil, errors.NullArgument(errors.PhaseParse, nil, "type")
		}
		return c.convertTypeDef(typ)
	case nil:
		return nil, errors.NullArgument(errors.PhaseParse, nil, "type")
	default:
		return nil, errors.New(errors.PhaseParse, errors.KindUnsupportedLayout).
			Detail("no native layout for WIT type %T", t).
			Build()
	}
}

func (c *Converter) convertTypeDef(t *wit.TypeDef) (Layout, error) {
	if cached, ok := c.cache.Get(t); ok {
		return cached.(Layout), nil
	}

	var (
		l   Layout
		err error
	)

	switch kind := t.Kind.(type) {
	case *wit.Record:
		l, err = c.convertRecord(kind)
	case *wit.Tuple:
		l, err = c.convertTuple(kind)
	case *wit.Enum:
		l = discriminant(len(kind.Cases))
	case *wit.Flags:
		l = flags(len(kind.Flags))
	case *wit.Own, *wit.Borrow:
		l = CInt
	case wit.Type:
		l, err = c.Convert(kind)
	default:
		err = errors.New(errors.PhaseParse, errors.KindUnsupportedLayout).
			Detail("no native layout for WIT type %T", t.Kind).
			Build()
	}
	if err != nil {
		return nil, err
	}

	if t.Name != nil {
		l = named(l, *t.Name)
	}
	c.cache.Add(t, l)
	return l, nil
}

func (c *Converter) convertRecord(r *wit.Record) (Layout, error) {
	members := make([]Layout, 0, len(r.Fields))
	for _, field := range r.Fields {
		m, err := c.Convert(field.Type)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseParse, errors.KindUnsupportedLayout, err,
				fmt.Sprintf("record field %q", field.Name))
		}
		members = append(members, named(m, field.Name))
	}
	return Struct(members...), nil
}

func (c *Converter) convertTuple(t *wit.Tuple) (Layout, error) {
	members := make([]Layout, 0, len(t.Types))
	for i, typ := range t.Types {
		m, err := c.Convert(typ)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseParse, errors.KindUnsupportedLayout, err,
				fmt.Sprintf("tuple element %d", i))
		}
		members = append(members, m)
	}
	return Struct(members...), nil
}

// discriminant: 1 byte for <=256 cases, 2 for <=65536, else 4.
func discriminant(numCases int) Layout {
	if numCases <= 256 {
		return CChar
	} else if numCases <= 65536 {
		return CShort
	}
	return CInt
}

func flags(numFlags int) Layout {
	switch {
	case numFlags <= 8:
		return CChar
	case numFlags <= 16:
		return CShort
	case numFlags <= 32:
		return CInt
	case numFlags <= 64:
		return CLong
	}
	return Sequence(uint64((numFlags+31)/32), CInt)
}

func named(l Layout, name string) Layout {
	switch typ := l.(type) {
	case *ValueLayout:
		return typ.WithName(name)
	case *GroupLayout:
		return typ.WithName(name)
	}
	return l
}
