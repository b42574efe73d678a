// Package errors provides structured error types for the foreign module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes context: argument path, Go type and layout names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
//		Path("arg[1]").
//		GoType("string").
//		Layout("i32").
//		Detail("cannot encode string as int").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnsupportedCarrier(errors.PhaseClassify, "complex128")
//	err := errors.OutOfRange(errors.PhaseDecode, 3, 3)
//
// All errors implement the standard error interface and support errors.Is/As.
// IsKind matches on Kind alone, following the cause chain.
package errors
