package layout

import (
	"errors"
	"fmt"
	"strings"

	"volgen/internal/diagnostic"
)

var (
	ErrInvalidDirective     = errors.New("invalid layout directive")
	ErrConflictingDirective = errors.New("conflicting layout directives")
	ErrMissingDirective     = errors.New("missing layout directive")
	ErrUnsupportedField     = errors.New("unsupported field")
	ErrRecursiveStruct      = errors.New("recursive struct")
	ErrNotExpressible       = errors.New("layout not expressible in Go")
	ErrUnknownType          = errors.New("unknown type")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrInvalidDirective, "invalid-directive"},
	{ErrConflictingDirective, "conflicting-directive"},
	{ErrMissingDirective, "missing-directive"},
	{ErrUnsupportedField, "unsupported-field"},
	{ErrRecursiveStruct, "recursive-struct"},
	{ErrNotExpressible, "not-expressible"},
	{ErrUnknownType, "unknown-type"},
}

// Code returns the diagnostic code for err, or "layout" if err wraps none of
// the package sentinels.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}

	return "layout"
}

// Error locates a layout failure.
type Error struct {
	Struct    string
	Field     string // empty for struct-level failures
	Directive string // empty when no directive is involved
	Pos       string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.Struct)

	if e.Field != "" {
		b.WriteString("." + e.Field)
	}

	if e.Directive != "" {
		fmt.Fprintf(&b, " [%s]", e.Directive)
	}

	b.WriteString(": ")
	b.WriteString(e.Err.Error())

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Diagnostic converts err to an error diagnostic, using the location carried
// by an *Error when there is one.
func Diagnostic(err error) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Severity: diagnostic.DiagnosticError,
		Code:     Code(err),
		Message:  err.Error(),
	}

	var le *Error
	if errors.As(err, &le) {
		d.Message = le.Err.Error()
		d.Struct = le.Struct
		d.Directive = le.Directive
		d.Pos = le.Pos

		if le.Field != "" {
			d.FieldPath = le.Struct + "." + le.Field
		}
	}

	return d
}
