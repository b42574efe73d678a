package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseClassify Phase = "classify" // layout classification
	PhaseStage    Phase = "stage"    // builder append
	PhaseEncode   Phase = "encode"   // Go to slots
	PhaseDecode   Phase = "decode"   // slots to Go
	PhaseScope    Phase = "scope"    // scope lifecycle
	PhaseMemory   Phase = "memory"   // raw memory access
	PhaseConfig   Phase = "config"   // call file loading
	PhaseParse    Phase = "parse"    // type expression parsing
)

// Kind categorizes the error
type Kind string

const (
	KindUnsupportedLayout        Kind = "unsupported_layout"
	KindUnsupportedCarrier       Kind = "unsupported_carrier"
	KindNullArgument             Kind = "null_argument"
	KindInvalidScope             Kind = "invalid_scope"
	KindOutOfRange               Kind = "out_of_range"
	KindUnexpectedClassification Kind = "unexpected_classification"
	KindTypeMismatch             Kind = "type_mismatch"
	KindOutOfBounds              Kind = "out_of_bounds"
	KindAllocation               Kind = "allocation"
	KindInvalidInput             Kind = "invalid_input"
	KindInvalidData              Kind = "invalid_data"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	Layout string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.Layout != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.Layout != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", layout ")
			b.WriteString(e.Layout)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("layout ")
			b.WriteString(e.Layout)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.Layout != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether any *Error in err's chain has the given kind,
// regardless of phase.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the argument path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Layout sets the layout description
func (b *Builder) Layout(l string) *Builder {
	b.err.Layout = l
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// UnsupportedLayout creates an error for layouts that are neither scalar nor aggregate
func UnsupportedLayout(phase Phase, layout string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupportedLayout,
		Layout: layout,
		Detail: "layout is neither a value nor a group layout",
	}
}

// UnsupportedCarrier creates an error for scalar carriers outside the known set
func UnsupportedCarrier(phase Phase, carrier string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupportedCarrier,
		Detail: fmt.Sprintf("unsupported carrier: %s", carrier),
		Value:  carrier,
	}
}

// NullArgument creates an error for a missing layout or value
func NullArgument(phase Phase, path []string, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNullArgument,
		Path:   path,
		Detail: fmt.Sprintf("%s must not be nil", what),
	}
}

// InvalidScope creates an error for operations on a closed or reset scope
func InvalidScope(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidScope,
		Detail: detail,
	}
}

// OutOfRange creates an error for reading past the end of a list
func OutOfRange(phase Phase, position, count int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfRange,
		Detail: fmt.Sprintf("argument %d out of range (count %d)", position, count),
		Value:  position,
	}
}

// UnexpectedClassification creates an internal consistency error
func UnexpectedClassification(phase Phase, path []string, class string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnexpectedClassification,
		Path:   path,
		Detail: fmt.Sprintf("unexpected type class: %s", class),
		Value:  class,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, layout string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		GoType: goType,
		Layout: layout,
	}
}

// OutOfBounds creates an out of bounds memory access error
func OutOfBounds(phase Phase, offset, length, size uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("access [%d, %d) out of bounds (size %d)", offset, offset+length, size),
		Value:  offset,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size, align uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}
