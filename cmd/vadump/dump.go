package main

import (
	"fmt"

	"github.com/wippyai/foreign"
	"github.com/wippyai/foreign/abi/ppc64"
	"github.com/wippyai/foreign/abi/ppc64/sysv"
	"github.com/wippyai/foreign/config"
	"github.com/wippyai/foreign/layout"
	"github.com/wippyai/foreign/memory"
	"github.com/wippyai/foreign/scope"
)

type classRow struct {
	typ    string
	layout string
	class  string
	access string
	size   uint64
	align  uint64
}

func classifyType(expr string) (classRow, error) {
	l, err := layout.Parse(expr)
	if err != nil {
		return classRow{}, err
	}
	class, err := ppc64.ClassifyLayout(l)
	if err != nil {
		return classRow{}, fmt.Errorf("%s: %w", expr, err)
	}
	row := classRow{
		typ:    expr,
		layout: l.String(),
		class:  class.String(),
		size:   l.ByteSize(),
		align:  l.ByteAlign(),
		access: "copy",
	}
	if v, ok := l.(*layout.ValueLayout); ok {
		access, err := ppc64.ClassifyArgumentAccess(v)
		if err != nil {
			return classRow{}, err
		}
		row.access = fmt.Sprintf("%s/%d", access.Kind, access.Width)
	} else if class == ppc64.StructReference {
		row.access = "pointer/8"
	}
	return row, nil
}

type slotRow struct {
	typ     string
	class   string
	decoded string
	addr    foreign.Address
	raw     uint64
}

type listDump struct {
	name       string
	backend    string
	slots      []slotRow
	satellites []memory.Segment
	base       foreign.Address
	capacity   uint64
	slotBytes  uint64
}

// buildDump appends args to a fresh builder on s, builds the list and
// reads every slot back through a copy of it.
func buildDump(s *scope.Scope, args []config.Arg) (*listDump, error) {
	b, err := sysv.NewBuilder(s)
	if err != nil {
		return nil, err
	}

	layouts := make([]layout.Layout, len(args))
	for i, arg := range args {
		l, v, err := arg.Resolve()
		if err != nil {
			return nil, fmt.Errorf("arg %d (%s): %w", i, arg.Type, err)
		}
		c, err := arg.Carrier()
		if err != nil {
			return nil, err
		}
		if err := b.Append(c, l, v); err != nil {
			return nil, err
		}
		layouts[i] = l
	}

	list, err := b.Build()
	if err != nil {
		return nil, err
	}

	raw, err := list.Slots()
	if err != nil {
		return nil, err
	}
	reader, err := list.Copy()
	if err != nil {
		return nil, err
	}

	d := &listDump{
		base:       list.Address(),
		satellites: list.Satellites(),
		slotBytes:  uint64(list.Len()) * ppc64.SlotSize,
	}
	heap := memory.HeapAllocator()
	for i, l := range layouts {
		class, _ := ppc64.ClassifyLayout(l)
		addr := reader.Address()
		v, err := reader.Next(l, heap)
		if err != nil {
			return nil, err
		}
		d.slots = append(d.slots, slotRow{
			typ:     args[i].Type,
			class:   class.String(),
			addr:    addr,
			raw:     raw[i],
			decoded: formatValue(v),
		})
	}
	return d, nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case memory.Segment:
		data, err := val.Bytes()
		if err != nil {
			return err.Error()
		}
		return fmt.Sprintf("[% x]", data)
	case foreign.Address:
		return fmt.Sprintf("%#x", uint64(val))
	default:
		return fmt.Sprintf("%v", val)
	}
}
