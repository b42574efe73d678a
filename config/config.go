package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v2"

	"github.com/wippyai/foreign"
	"github.com/wippyai/foreign/errors"
	"github.com/wippyai/foreign/layout"
	"github.com/wippyai/foreign/memory"
)

// Backends accepted in call files and on the command line.
const (
	BackendArena  = "arena"
	BackendNative = "native"
	BackendWasm   = "wasm"
)

// DefaultArenaSize is used when a call file names no arena size.
const DefaultArenaSize = 64 * humanize.KiByte

// CallFile describes one variadic argument list to build.
type CallFile struct {
	Name    string `yaml:"name"`
	Backend string `yaml:"backend"`
	Arena   string `yaml:"arena"`
	Args    []Arg  `yaml:"args"`
}

// Arg is one argument: a type expression (see layout.Parse) and either a
// scalar value or, for aggregates, the aggregate's bytes in hex.
type Arg struct {
	Type  string `yaml:"type"`
	Value string `yaml:"value,omitempty"`
	Hex   string `yaml:"hex,omitempty"`
}

// Load reads and validates a call file.
func Load(path string) (*CallFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "read call file")
	}
	return Parse(data)
}

// Parse decodes and validates a call file. Unknown keys are rejected.
func Parse(data []byte) (*CallFile, error) {
	cf := &CallFile{}
	if err := yaml.UnmarshalStrict(data, cf); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "decode call file")
	}
	if err := cf.Validate(); err != nil {
		return nil, err
	}
	return cf, nil
}

// Validate checks the backend, the arena size and every argument.
func (cf *CallFile) Validate() error {
	switch cf.Backend {
	case "", BackendArena, BackendNative, BackendWasm:
	default:
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("unknown backend %q", cf.Backend))
	}
	if _, err := cf.ArenaSize(); err != nil {
		return err
	}
	for i, arg := range cf.Args {
		if _, _, err := arg.Resolve(); err != nil {
			return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Path(fmt.Sprintf("args[%d]", i)).
				Cause(err).
				Build()
		}
	}
	return nil
}

// BackendName returns the configured backend, defaulting to arena.
func (cf *CallFile) BackendName() string {
	if cf.Backend == "" {
		return BackendArena
	}
	return cf.Backend
}

// ArenaSize returns the parsed arena size, DefaultArenaSize when unset.
func (cf *CallFile) ArenaSize() (uint64, error) {
	return ParseSize(cf.Arena)
}

// ParseSize parses a human readable byte count such as "64KiB" or "1 MB".
// An empty string yields DefaultArenaSize.
func ParseSize(s string) (uint64, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultArenaSize, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, fmt.Sprintf("arena size %q", s))
	}
	if n == 0 {
		return 0, errors.InvalidInput(errors.PhaseConfig, "arena size must be positive")
	}
	return n, nil
}

// Resolve parses the argument's type and value. Aggregates resolve to a
// memory.Segment over the decoded hex bytes, zero-padded to the layout
// size; scalars resolve to the Go type of their carrier.
func (a Arg) Resolve() (layout.Layout, any, error) {
	l, err := layout.Parse(a.Type)
	if err != nil {
		return nil, nil, err
	}

	switch typ := l.(type) {
	case *layout.GroupLayout:
		if a.Value != "" {
			return nil, nil, errors.InvalidInput(errors.PhaseConfig,
				fmt.Sprintf("aggregate %s takes hex, not value", a.Type))
		}
		data, err := hex.DecodeString(strings.ReplaceAll(a.Hex, " ", ""))
		if err != nil {
			return nil, nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "hex")
		}
		if uint64(len(data)) > typ.ByteSize() {
			return nil, nil, errors.InvalidInput(errors.PhaseConfig,
				fmt.Sprintf("%d hex bytes exceed %s (%d bytes)", len(data), a.Type, typ.ByteSize()))
		}
		buf := make([]byte, typ.ByteSize())
		copy(buf, data)
		return l, memory.OfBytes(buf), nil

	case *layout.ValueLayout:
		if a.Hex != "" {
			return nil, nil, errors.InvalidInput(errors.PhaseConfig,
				fmt.Sprintf("scalar %s takes value, not hex", a.Type))
		}
		v, err := ParseValue(typ, a.Value)
		if err != nil {
			return nil, nil, err
		}
		return l, v, nil

	default:
		return nil, nil, errors.UnsupportedLayout(errors.PhaseConfig, l.String())
	}
}

// Carrier returns the carrier the argument is appended with.
func (a Arg) Carrier() (layout.Carrier, error) {
	l, err := layout.Parse(a.Type)
	if err != nil {
		return 0, err
	}
	c, ok := layout.CarrierOf(l)
	if !ok {
		return 0, errors.UnsupportedLayout(errors.PhaseConfig, l.String())
	}
	return c, nil
}

// ParseArgFlag parses a command line argument of the form type=value.
// For aggregate types the value is taken as hex.
func ParseArgFlag(s string) (Arg, error) {
	typ, value, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(typ) == "" {
		return Arg{}, errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("argument %q is not type=value", s))
	}
	arg := Arg{Type: strings.TrimSpace(typ)}
	l, err := layout.Parse(arg.Type)
	if err != nil {
		return Arg{}, err
	}
	if _, ok := l.(*layout.GroupLayout); ok {
		arg.Hex = strings.TrimSpace(value)
	} else {
		arg.Value = strings.TrimSpace(value)
	}
	return arg, nil
}

// ParseValue parses s as a value of v's carrier. Integers accept any base
// strconv understands with a 0x, 0o or 0b prefix.
func ParseValue(v *layout.ValueLayout, s string) (any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.NullArgument(errors.PhaseConfig, nil, "value")
	}

	var (
		out any
		err error
	)
	switch v.Carrier() {
	case layout.CarrierBool:
		out, err = strconv.ParseBool(s)
	case layout.CarrierByte:
		var n int64
		n, err = strconv.ParseInt(s, 0, 8)
		out = int8(n)
	case layout.CarrierChar:
		var n uint64
		n, err = strconv.ParseUint(s, 0, 16)
		out = uint16(n)
	case layout.CarrierShort:
		var n int64
		n, err = strconv.ParseInt(s, 0, 16)
		out = int16(n)
	case layout.CarrierInt:
		var n int64
		n, err = strconv.ParseInt(s, 0, 32)
		out = int32(n)
	case layout.CarrierLong:
		out, err = strconv.ParseInt(s, 0, 64)
	case layout.CarrierFloat:
		var f float64
		f, err = strconv.ParseFloat(s, 32)
		out = float32(f)
	case layout.CarrierDouble:
		out, err = strconv.ParseFloat(s, 64)
	case layout.CarrierAddress:
		var n uint64
		n, err = strconv.ParseUint(s, 0, 64)
		out = foreign.Address(n)
	default:
		return nil, errors.UnsupportedCarrier(errors.PhaseConfig, v.Carrier().String())
	}
	if err != nil {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Layout(v.String()).
			Value(s).
			Cause(err).
			Build()
	}
	return out, nil
}
