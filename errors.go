package fiox

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	// Configuration errors, reported before any streaming begins.
	CodeMissingInput      = "missing_input"
	CodeMissingExtension  = "missing_extension"
	CodeUnsupportedFormat = "unsupported_format"
	CodeSameFile          = "same_file"
	CodeShapeMismatch     = "shape_mismatch"
	CodeConfig            = "config_error"
	// I/O and stream errors.
	CodeOpen   = "open_error"
	CodeDecode = "decode_error"
	CodeEncode = "encode_error"
)

// VerboseHint is attached to decode errors raised while converting.
const VerboseHint = "Try to use `fiox validate <INPUT> -v` for more information"

// Error is the error model shared by decoders, encoders, validators and the
// driver. Context holds short descriptions prepended at each boundary, outermost
// first.
type Error struct {
	Code    string
	Path    string // File the error refers to, when known.
	Line    int    // 1-based line (0 when unknown).
	Column  int    // 1-based column (0 when unknown).
	Offset  int64  // Byte offset in the input (-1 when unknown).
	Pointer string // JSON Pointer of the offending value, when known.
	Message string
	Hint    string
	// Excerpt is an optional rendering of the offending input line. It is only
	// produced in verbose validation because it requires rereading the input.
	Excerpt string
	Context []string
	Cause   error
}

// Error renders the context chain followed by the location and the message.
func (e *Error) Error() string {
	b := &strings.Builder{}
	for _, c := range e.Context {
		b.WriteString(c)
		b.WriteString(": ")
	}
	if loc := e.Location(); loc != "" {
		b.WriteString(loc)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		if e.Message != "" {
			b.WriteString(": ")
		}
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Location summarises where the error happened, e.g. "in.json:3:14 at /items/2".
func (e *Error) Location() string {
	var b strings.Builder
	b.WriteString(e.Path)
	if e.Line > 0 {
		fmt.Fprintf(&b, ":%d", e.Line)
		if e.Column > 0 {
			fmt.Fprintf(&b, ":%d", e.Column)
		}
	} else if e.Offset >= 0 && e.Path != "" {
		fmt.Fprintf(&b, "@%d", e.Offset)
	}
	if e.Pointer != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("at ")
		b.WriteString(e.Pointer)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Errorf builds an Error with an unknown offset.
func Errorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Offset: -1}
}

// WithContext prepends ctx to the error's context chain. An *Error is copied so
// the original value is left untouched; any other error becomes the Cause of a
// new Error carrying the given code.
func WithContext(err error, ctx string) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		cp := *fe
		cp.Context = append([]string{ctx}, fe.Context...)
		return &cp
	}
	return &Error{Code: "", Context: []string{ctx}, Cause: err, Offset: -1}
}

// AsError extracts an *Error from err using errors.As internally.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// CodeOf returns the code of err, or "" when err is not an *Error.
func CodeOf(err error) string {
	if fe, ok := AsError(err); ok {
		return fe.Code
	}
	return ""
}
