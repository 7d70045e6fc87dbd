package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in generation the error occurred
type Phase string

const (
	PhaseConfig   Phase = "config"   // options and directives
	PhaseParse    Phase = "parse"    // manifest and type expressions
	PhaseResolve  Phase = "resolve"  // graph construction
	PhaseGenerate Phase = "generate" // binding emission
	PhaseFormat   Phase = "format"   // external formatter
	PhaseEncode   Phase = "encode"   // metadata encoding
	PhaseDecode   Phase = "decode"   // metadata decoding
	PhaseVerify   Phase = "verify"   // metadata object validation
	PhaseWrite    Phase = "write"    // output files
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidInput   Kind = "invalid_input"
	KindInvalidData    Kind = "invalid_data"
	KindUnsupported    Kind = "unsupported"
	KindNotFound       Kind = "not_found"
	KindNotInitialized Kind = "not_initialized"
	KindDuplicate      Kind = "duplicate"
	KindUnknownMode    Kind = "unknown_mode"
	KindMissingExport  Kind = "missing_export"
	KindSubprocess     Kind = "subprocess"
	KindInternal       Kind = "internal"
)

// Error is the structured error type used throughout witgen
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	GoType  string
	WitType string
	Detail  string
	Path    []string
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

	if e.GoType != "" || e.WitType != "" {
		b.WriteString(": ")
		switch {
		case e.GoType != "" && e.WitType != "":
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", WIT type ")
			b.WriteString(e.WitType)
		case e.GoType != "":
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		default:
			b.WriteString("WIT type ")
			b.WriteString(e.WitType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.WitType != "" {
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

// Path sets the element path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// WitType sets the WIT type name
func (b *Builder) WitType(t string) *Builder {
	b.err.WitType = t
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

// Duplicate reports a directive given more than once where only one is allowed
func Duplicate(phase Phase, directive, value string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicate,
		Value:  value,
		Detail: fmt.Sprintf("cannot specify second %s %q", directive, value),
	}
}

// UnknownMode reports an unrecognized option variant
func UnknownMode(option, value string, valid ...string) *Error {
	detail := fmt.Sprintf("unrecognized %s %q", option, value)
	if len(valid) > 0 {
		detail += " (expected one of: " + strings.Join(valid, ", ") + ")"
	}
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindUnknownMode,
		Value:  value,
		Detail: detail,
	}
}

// MissingExport reports an export with neither an implementation name nor stubs
func MissingExport(what, name string) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindMissingExport,
		Path:   []string{name},
		Detail: fmt.Sprintf("%s export implementation required for %q", what, name),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
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

// Internal reports a broken generator invariant
func Internal(detail string, args ...any) *Error {
	return &Error{
		Phase:  PhaseGenerate,
		Kind:   KindInternal,
		Detail: fmt.Sprintf(detail, args...),
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

// NotInitialized creates a not-initialized error
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
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

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Subprocess reports a failed external tool invocation
func Subprocess(tool string, cause error, stderr string) *Error {
	detail := fmt.Sprintf("%s failed", tool)
	if s := strings.TrimSpace(stderr); s != "" {
		detail += ": " + s
	}
	return &Error{
		Phase:  PhaseFormat,
		Kind:   KindSubprocess,
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
