// Package errors provides structured error types for witgen.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: element path, Go/WIT type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseGenerate, errors.KindUnsupported).
//		Path("wasi:io/streams", "read").
//		WitType("tuple<...>").
//		Detail("tuple arity %d exceeds 8", n).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Duplicate(errors.PhaseConfig, "world", name)
//	err := errors.MissingExport("interface", "my:pkg/run")
//
// Configuration errors are fatal to the whole generation run. All errors
// implement the standard error interface and support errors.Is/As.
package errors
