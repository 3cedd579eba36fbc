// Package errors provides structured error types for mfterm.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, spec type name, source line and
// cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLayout, errors.KindUnaligned).
//		Path("h", "pad").
//		TypeName("Tag").
//		Detail("byte data at bit offset [%d, %d]", 4, 3).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.IncompleteDeclaration(errors.PhaseValidate, "Header")
//	err := errors.Syntax(12, "expected '}', got %q", tok)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
