package layout

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/foreign/errors"
)

var cNames = map[string]Layout{
	"bool":    CBool,
	"char":    CChar,
	"short":   CShort,
	"int":     CInt,
	"long":    CLong,
	"float":   CFloat,
	"double":  CDouble,
	"pointer": CPointer,
	"ptr":     CPointer,
	"jchar":   JavaChar,
}

// Parse turns a type expression into a layout.
//
// Accepted forms:
//
//	bool char short int long float double pointer ptr jchar   C scalars
//	u8 s8 u16 s16 u32 s32 u64 s64 f32 f64                       WIT scalars
//	tuple<T, ...> / struct<T, ...>                              naturally aligned struct
//	union<T, ...>                                               union
//	list<T, N>                                                  fixed-size sequence
//	bytes<N>                                                    struct of N unaligned bytes
func Parse(expr string) (Layout, error) {
	p := &parser{src: expr}
	p.next()
	l, err := p.parseType()
	if err != nil {
		return nil, errors.ParseFailed(fmt.Sprintf("type %q", expr), err)
	}
	if p.tok != "" {
		return nil, errors.ParseFailed(fmt.Sprintf("type %q", expr),
			fmt.Errorf("unexpected %q after type", p.tok))
	}
	return l, nil
}

type parser struct {
	src string
	tok string
	pos int
}

func (p *parser) next() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
	if p.pos >= len(p.src) {
		p.tok = ""
		return
	}
	switch c := p.src[p.pos]; c {
	case '<', '>', ',':
		p.tok = string(c)
		p.pos++
		return
	}
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '<' || c == '>' || c == ',' || unicode.IsSpace(rune(c)) {
			break
		}
		p.pos++
	}
	p.tok = p.src[start:p.pos]
}

func (p *parser) expect(tok string) error {
	if p.tok != tok {
		if p.tok == "" {
			return fmt.Errorf("expected %q, got end of input", tok)
		}
		return fmt.Errorf("expected %q, got %q", tok, p.tok)
	}
	p.next()
	return nil
}

func (p *parser) parseType() (Layout, error) {
	name := strings.ToLower(p.tok)
	switch name {
	case "":
		return nil, fmt.Errorf("expected type, got end of input")
	case "<", ">", ",":
		return nil, fmt.Errorf("expected type, got %q", name)
	}
	p.next()

	if l, ok := cNames[name]; ok {
		return l, nil
	}

	switch name {
	case "tuple", "struct":
		members, err := p.parseList()
		if err != nil {
			return nil, err
		}
		return Struct(members...), nil
	case "union":
		members, err := p.parseList()
		if err != nil {
			return nil, err
		}
		return Union(members...), nil
	case "list":
		return p.parseSequence()
	case "bytes":
		n, err := p.parseCount()
		if err != nil {
			return nil, err
		}
		return StructOf(Sequence(n, CChar)), nil
	}

	t, err := wit.ParseType(name)
	if err != nil {
		return nil, err
	}
	return FromWIT(t)
}

func (p *parser) parseList() ([]Layout, error) {
	if err := p.expect("<"); err != nil {
		return nil, err
	}
	var members []Layout
	for {
		m, err := p.parseType()
		if err != nil {
			return nil, err
		}
		members = append(members, m)
		if p.tok == "," {
			p.next()
			continue
		}
		break
	}
	if err := p.expect(">"); err != nil {
		return nil, err
	}
	return members, nil
}

func (p *parser) parseSequence() (Layout, error) {
	if err := p.expect("<"); err != nil {
		return nil, err
	}
	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(","); err != nil {
		return nil, fmt.Errorf("list needs a fixed length: %w", err)
	}
	n, err := p.number()
	if err != nil {
		return nil, err
	}
	if err := p.expect(">"); err != nil {
		return nil, err
	}
	return Sequence(n, elem), nil
}

func (p *parser) parseCount() (uint64, error) {
	if err := p.expect("<"); err != nil {
		return 0, err
	}
	n, err := p.number()
	if err != nil {
		return 0, err
	}
	if err := p.expect(">"); err != nil {
		return 0, err
	}
	return n, nil
}

func (p *parser) number() (uint64, error) {
	n, err := strconv.ParseUint(p.tok, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("expected length, got %q", p.tok)
	}
	p.next()
	return n, nil
}
