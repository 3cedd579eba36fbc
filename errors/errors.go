package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse    Phase = "parse"    // spec source tokenizing and parsing
	PhaseValidate Phase = "validate" // registry completeness and root checks
	PhaseLayout   Phase = "layout"   // instance tree construction
	PhaseResolve  Phase = "resolve"  // dotted path lookups
	PhaseLoad     Phase = "load"     // file load/save of specs and tag images
	PhaseDevice   Phase = "device"   // PC/SC reader operations
	PhaseCommand  Phase = "command"  // terminal command handling
)

// Kind categorizes the error
type Kind string

const (
	KindSyntax                Kind = "syntax"
	KindDuplicateName         Kind = "duplicate_name"
	KindIncompleteDeclaration Kind = "incomplete_declaration"
	KindRootTypeMissing       Kind = "root_type_missing"
	KindInvalidPath           Kind = "invalid_path"
	KindNameNotFound          Kind = "name_not_found"
	KindUnaligned             Kind = "unaligned"
	KindInvalidLength         Kind = "invalid_length"
	KindRecursiveType         Kind = "recursive_type"
	KindInvalidInput          Kind = "invalid_input"
	KindOutOfBounds           Kind = "out_of_bounds"
	KindIO                    Kind = "io"
	KindAuthFailed            Kind = "auth_failed"
	KindNotFound              Kind = "not_found"
	KindNotInitialized        Kind = "not_initialized"
)

// Error is the structured error type used throughout mfterm
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	TypeName string
	Detail   string
	Path     []string
	Line     int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Line > 0 {
		fmt.Fprintf(&b, " on line %d", e.Line)
	}

	if len(e.Path) > 0 {
		b.WriteString(" at .")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.TypeName != "" {
		b.WriteString(": type ")
		b.WriteString(e.TypeName)
	}

	if e.Detail != "" {
		if e.TypeName != "" {
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

// Path sets the field path, root excluded
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// TypeName sets the spec type name involved
func (b *Builder) TypeName(name string) *Builder {
	b.err.TypeName = name
	return b
}

// Line sets the source line
func (b *Builder) Line(line int) *Builder {
	b.err.Line = line
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

// Syntax creates a parse error at a source line
func Syntax(line int, format string, args ...any) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindSyntax,
		Line:   line,
		Detail: fmt.Sprintf(format, args...),
	}
}

// DuplicateName creates a duplicate type name error
func DuplicateName(phase Phase, name string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindDuplicateName,
		TypeName: name,
		Detail:   "already declared",
	}
}

// IncompleteDeclaration reports a type that was referenced but never given a body
func IncompleteDeclaration(phase Phase, name string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindIncompleteDeclaration,
		TypeName: name,
		Detail:   "referenced but never declared",
	}
}

// RootTypeMissing reports a specification without a '.' declaration
func RootTypeMissing() *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindRootTypeMissing,
		Detail: "no root type '.' declared",
	}
}

// InvalidPath reports a malformed or unmatched dotted path
func InvalidPath(path string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindInvalidPath,
		Detail: fmt.Sprintf("invalid path %q", path),
		Value:  path,
	}
}

// NameNotFound reports a type lookup miss
func NameNotFound(phase Phase, name string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindNameNotFound,
		TypeName: name,
		Detail:   "no such type",
	}
}

// Unaligned reports a byte-granular field placed at a non-zero bit offset
func Unaligned(path []string, bytes, bits int) *Error {
	return &Error{
		Phase:  PhaseLayout,
		Kind:   KindUnaligned,
		Path:   path,
		Detail: fmt.Sprintf("byte data at bit offset [%d, %d]", bytes, bits),
	}
}

// InvalidLength reports a field with an unusable array length
func InvalidLength(phase Phase, path []string, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidLength,
		Path:   path,
		Detail: fmt.Sprintf("array length %d must be positive", length),
		Value:  length,
	}
}

// RecursiveType reports a composite type that contains itself
func RecursiveType(path []string, name string) *Error {
	return &Error{
		Phase:    PhaseLayout,
		Kind:     KindRecursiveType,
		Path:     path,
		TypeName: name,
		Detail:   "type contains itself",
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// NotInitialized creates a not-initialized error for missing state
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
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

// IO wraps a file or device I/O failure
func IO(phase Phase, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIO,
		Detail: detail,
		Cause:  cause,
	}
}

// AuthFailed reports a rejected sector authentication
func AuthFailed(sector int, cause error) *Error {
	return &Error{
		Phase:  PhaseDevice,
		Kind:   KindAuthFailed,
		Detail: fmt.Sprintf("sector %#04x", sector),
		Value:  sector,
		Cause:  cause,
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
