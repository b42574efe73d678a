package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseEncode,
				Kind:   KindTypeMismatch,
				Path:   []string{"arg[2]", "value"},
				GoType: "string",
				Layout: "i32",
				Detail: "cannot convert",
			},
			contains: []string{"[encode]", "type_mismatch", "arg[2].value", "string", "i32", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindOutOfRange,
			},
			contains: []string{"[decode]", "out_of_range"},
		},
		{
			name: "layout only",
			err: &Error{
				Phase:  PhaseClassify,
				Kind:   KindUnsupportedLayout,
				Layout: "x16",
				Detail: "padding",
			},
			contains: []string{"[classify]", "layout x16 - padding"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseScope,
				Kind:   KindAllocation,
				Detail: "arena full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[scope]", "allocation", "arena full", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseMemory,
		Kind:  KindOutOfBounds,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseDecode,
		Kind:  KindInvalidScope,
		Path:  []string{"arg[0]"},
	}

	if !err.Is(&Error{Phase: PhaseDecode, Kind: KindInvalidScope}) {
		t.Error("Is should match same phase and kind")
	}

	if err.Is(&Error{Phase: PhaseEncode, Kind: KindInvalidScope}) {
		t.Error("Is should not match different phase")
	}

	if err.Is(&Error{Phase: PhaseDecode, Kind: KindOutOfRange}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseDecode, Kind: KindInvalidScope}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestIsKind(t *testing.T) {
	inner := InvalidScope(PhaseScope, "scope closed")
	outer := Wrap(PhaseEncode, KindAllocation, inner, "allocate slots")

	if !IsKind(outer, KindAllocation) {
		t.Error("IsKind should match outer kind")
	}
	if !IsKind(outer, KindInvalidScope) {
		t.Error("IsKind should follow the cause chain")
	}
	if IsKind(outer, KindOutOfRange) {
		t.Error("IsKind should not match absent kind")
	}

	wrapped := fmt.Errorf("build: %w", inner)
	if !IsKind(wrapped, KindInvalidScope) {
		t.Error("IsKind should see through fmt wrapping")
	}
	if IsKind(errors.New("plain"), KindInvalidScope) {
		t.Error("IsKind should not match plain errors")
	}
	if IsKind(nil, KindInvalidScope) {
		t.Error("IsKind(nil) should be false")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseEncode, KindTypeMismatch).
		Path("arg[0]").
		GoType("string").
		Layout("i64").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "int64", "string").
		Build()

	if err.Phase != PhaseEncode {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseEncode)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if len(err.Path) != 1 || err.Path[0] != "arg[0]" {
		t.Errorf("Path = %v, want [arg[0]]", err.Path)
	}
	if err.GoType != "string" {
		t.Errorf("GoType = %v, want 'string'", err.GoType)
	}
	if err.Layout != "i64" {
		t.Errorf("Layout = %v, want 'i64'", err.Layout)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected int64, got string" {
		t.Errorf("Detail = %v, want 'expected int64, got string'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err  *Error
		name string
		kind Kind
	}{
		{UnsupportedLayout(PhaseClassify, "x8"), "UnsupportedLayout", KindUnsupportedLayout},
		{UnsupportedCarrier(PhaseClassify, "complex64"), "UnsupportedCarrier", KindUnsupportedCarrier},
		{NullArgument(PhaseStage, []string{"arg[1]"}, "value"), "NullArgument", KindNullArgument},
		{InvalidScope(PhaseDecode, "scope closed"), "InvalidScope", KindInvalidScope},
		{OutOfRange(PhaseDecode, 2, 2), "OutOfRange", KindOutOfRange},
		{UnexpectedClassification(PhaseEncode, nil, "PRIMITIVE"), "UnexpectedClassification", KindUnexpectedClassification},
		{TypeMismatch(PhaseEncode, nil, "string", "i32"), "TypeMismatch", KindTypeMismatch},
		{OutOfBounds(PhaseMemory, 8, 8, 12), "OutOfBounds", KindOutOfBounds},
		{AllocationFailed(PhaseScope, 1024, 8), "AllocationFailed", KindAllocation},
		{InvalidInput(PhaseConfig, "no args"), "InvalidInput", KindInvalidInput},
		{InvalidData(PhaseConfig, []string{"args", "0"}, "bad hex"), "InvalidData", KindInvalidData},
		{ParseFailed("type", errors.New("eof")), "ParseFailed", KindInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if tt.err.Error() == "" {
				t.Error("empty message")
			}
		})
	}

	t.Run("OutOfRange detail", func(t *testing.T) {
		err := OutOfRange(PhaseDecode, 3, 3)
		if !strings.Contains(err.Detail, "argument 3") || !strings.Contains(err.Detail, "count 3") {
			t.Errorf("Detail = %q", err.Detail)
		}
		if err.Value != 3 {
			t.Errorf("Value = %v, want 3", err.Value)
		}
	})

	t.Run("AllocationFailed detail", func(t *testing.T) {
		err := AllocationFailed(PhaseScope, 1024, 8)
		if !strings.Contains(err.Detail, "1024") {
			t.Errorf("Detail = %v, should contain size", err.Detail)
		}
	})
}
