package sysv

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/foreign"
	"github.com/wippyai/foreign/abi/ppc64"
	"github.com/wippyai/foreign/errors"
	"github.com/wippyai/foreign/layout"
	"github.com/wippyai/foreign/memory"
	"github.com/wippyai/foreign/scope"
)

// vararg is one staged argument. data holds the aggregate bytes captured
// at append time for segment arguments.
type vararg struct {
	value   any
	layout  layout.Layout
	data    []byte
	carrier layout.Carrier
}

// Builder stages arguments and lays them out in one pass on Build.
// A Builder is not safe for concurrent use.
type Builder struct {
	scope *scope.Scope
	err   error
	args  []vararg
}

// NewBuilder creates a builder allocating from s.
func NewBuilder(s *scope.Scope) (*Builder, error) {
	if s == nil {
		return nil, errors.NullArgument(errors.PhaseStage, nil, "scope")
	}
	if err := s.CheckValid(); err != nil {
		return nil, err
	}
	return &Builder{scope: s}, nil
}

// Len returns the number of staged arguments.
func (b *Builder) Len() int { return len(b.args) }

// Err returns the first error recorded by the chaining helpers.
func (b *Builder) Err() error { return b.err }

// Append stages one argument. The layout's carrier must match carrier.
// Aggregates are passed as a memory.Segment at least as large as the
// layout; their bytes are copied now, so later changes to the segment do
// not reach the list.
func (b *Builder) Append(carrier layout.Carrier, l layout.Layout, value any) error {
	path := []string{fmt.Sprintf("arg[%d]", len(b.args))}

	if layout.IsNil(l) {
		return errors.NullArgument(errors.PhaseStage, path, "layout")
	}
	if value == nil {
		return errors.NullArgument(errors.PhaseStage, path, "value")
	}
	if c, ok := layout.CarrierOf(l); ok && c != carrier {
		return errors.New(errors.PhaseStage, errors.KindTypeMismatch).
			Path(path...).
			Layout(l.String()).
			Detail("carrier %s does not match layout carrier %s", carrier, c).
			Build()
	}

	arg := vararg{carrier: carrier, layout: l, value: value}

	if carrier == layout.CarrierSegment {
		seg, ok := value.(memory.Segment)
		if !ok {
			return errors.TypeMismatch(errors.PhaseStage, path, fmt.Sprintf("%T", value), l.String())
		}
		if seg.IsNull() {
			return errors.NullArgument(errors.PhaseStage, path, "segment")
		}
		if seg.Size() < l.ByteSize() {
			return errors.New(errors.PhaseStage, errors.KindOutOfBounds).
				Path(path...).
				Layout(l.String()).
				Detail("segment of %d bytes is smaller than layout (%d bytes)", seg.Size(), l.ByteSize()).
				Build()
		}
		data, err := seg.Read(0, l.ByteSize())
		if err != nil {
			return err
		}
		arg.data = data
	}

	b.args = append(b.args, arg)
	return nil
}

func (b *Builder) add(carrier layout.Carrier, l layout.Layout, value any) *Builder {
	if b.err == nil {
		b.err = b.Append(carrier, l, value)
	}
	return b
}

// AddInt stages a C int.
func (b *Builder) AddInt(v int32) *Builder {
	return b.add(layout.CarrierInt, layout.CInt, v)
}

// AddLong stages a C long.
func (b *Builder) AddLong(v int64) *Builder {
	return b.add(layout.CarrierLong, layout.CLong, v)
}

// AddDouble stages a C double.
func (b *Builder) AddDouble(v float64) *Builder {
	return b.add(layout.CarrierDouble, layout.CDouble, v)
}

// AddAddress stages a pointer.
func (b *Builder) AddAddress(v foreign.Address) *Builder {
	return b.add(layout.CarrierAddress, layout.CPointer, v)
}

// AddStruct stages an aggregate described by l whose bytes are in seg.
func (b *Builder) AddStruct(l *layout.GroupLayout, seg memory.Segment) *Builder {
	return b.add(layout.CarrierSegment, l, seg)
}

// Build lays out the staged arguments. With nothing staged it returns the
// shared empty list without allocating. On failure every segment the
// build allocated is released and no list is returned.
func (b *Builder) Build() (*VaList, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.args) == 0 {
		emptyListsBuilt.Inc()
		return Empty(), nil
	}

	list, err := b.build()
	if err != nil {
		buildFailures.Inc()
		Logger().Debug("valist build failed", zap.Int("args", len(b.args)), zap.Error(err))
		return nil, err
	}

	listsBuilt.Inc()
	slotBytes.Add(float64(list.buf.Size()))
	satellitesAllocated.Add(float64(len(list.satellites)))
	Logger().Debug("valist built",
		zap.Int("args", list.count),
		zap.Int("satellites", len(list.satellites)),
		zap.Uint64("address", uint64(list.buf.Address())))
	return list, nil
}

func (b *Builder) build() (list *VaList, err error) {
	if err := b.scope.CheckValid(); err != nil {
		return nil, err
	}

	var allocated []memory.Segment
	defer func() {
		if err != nil {
			for i := len(allocated) - 1; i >= 0; i-- {
				b.scope.Release(allocated[i])
			}
		}
	}()

	buf, err := b.scope.Allocate(ppc64.SlotSize*uint64(len(b.args)), ppc64.SlotSize)
	if err != nil {
		return nil, err
	}
	allocated = append(allocated, buf)

	var satellites []memory.Segment
	for i, arg := range b.args {
		slot, err := buf.Slice(uint64(i)*ppc64.SlotSize, ppc64.SlotSize)
		if err != nil {
			return nil, err
		}
		sat, err := b.encode(slot, arg)
		if !sat.IsNull() {
			allocated = append(allocated, sat)
			satellites = append(satellites, sat)
		}
		if err != nil {
			return nil, err
		}
	}

	return &VaList{
		scope:      b.scope,
		buf:        buf,
		satellites: satellites,
		count:      len(b.args),
	}, nil
}

// encode writes one argument into its slot. It returns the satellite
// segment allocated for a by-reference aggregate, or the null segment.
func (b *Builder) encode(slot memory.Segment, arg vararg) (memory.Segment, error) {
	switch {
	case arg.carrier.IsScalar():
		v, ok := arg.layout.(*layout.ValueLayout)
		if !ok {
			return memory.Segment{}, errors.UnsupportedLayout(errors.PhaseEncode, arg.layout.String())
		}
		bits, err := ppc64.EncodeScalar(v, arg.value)
		if err != nil {
			return memory.Segment{}, err
		}
		return memory.Segment{}, slot.WriteU64(0, bits)

	case arg.carrier == layout.CarrierSegment:
		class, err := ppc64.ClassifyLayout(arg.layout)
		if err != nil {
			return memory.Segment{}, err
		}
		switch class {
		case ppc64.StructRegister:
			var image [ppc64.SlotSize]byte
			copy(image[:], arg.data)
			return memory.Segment{}, slot.Write(0, image[:])

		case ppc64.StructReference:
			align := arg.layout.ByteAlign()
			if align < ppc64.SlotSize {
				align = ppc64.SlotSize
			}
			sat, err := b.scope.Allocate(arg.layout.ByteSize(), align)
			if err != nil {
				return memory.Segment{}, err
			}
			Logger().Debug("satellite allocated",
				zap.Uint64("size", sat.Size()),
				zap.Uint64("address", uint64(sat.Address())))
			if err := sat.Write(0, arg.data); err != nil {
				return sat, err
			}
			return sat, slot.WriteU64(0, uint64(sat.Address()))

		default:
			return memory.Segment{}, errors.UnexpectedClassification(errors.PhaseEncode, nil, class.String())
		}

	default:
		return memory.Segment{}, errors.UnsupportedCarrier(errors.PhaseEncode, arg.carrier.String())
	}
}
