package decode

import (
	"errors"
	"io"

	fiox "github.com/reoring/fiox"
	eng "github.com/reoring/fiox/internal/engine"
	srcjson "github.com/reoring/fiox/source/json"
)

// Options tune the decoders.
type Options struct {
	// MaxDepth limits JSON/NDJSON nesting (0 = unlimited).
	MaxDepth int
}

// enforce wraps a JSON token source so depth is bounded and the pointer of
// each token is known. Duplicate keys are accepted; the last one wins.
func (o Options) enforce(src eng.TokenSource) *eng.Enforcer {
	return eng.WrapWithEnforcement(src, eng.EnforceOptions{OnDuplicate: fiox.Ignore, MaxDepth: o.MaxDepth})
}

// decodeError builds a CodeDecode error.
func decodeError(msg string, cause error) *fiox.Error {
	return &fiox.Error{Code: fiox.CodeDecode, Message: msg, Hint: fiox.VerboseHint, Cause: cause, Offset: -1}
}

// jsonError converts a failure from the JSON token stream into a decode error
// carrying the best known offset and pointer.
func jsonError(err error, src *eng.Enforcer) *fiox.Error {
	var ie eng.IssueError
	if errors.As(err, &ie) {
		e := decodeError(ie.Message, nil)
		e.Offset = ie.Offset
		e.Pointer = ie.Pointer
		return e
	}
	var e *fiox.Error
	switch {
	case errors.Is(err, io.ErrUnexpectedEOF):
		e = decodeError("unexpected end of input", nil)
	case errors.Is(err, eng.ErrUnexpectedToken):
		e = decodeError("unexpected token", nil)
	default:
		e = decodeError("invalid JSON", err)
	}
	if off, ok := srcjson.ErrorOffset(err); ok {
		e.Offset = off
	} else {
		e.Offset = src.Location()
	}
	if e.Offset < 0 {
		e.Offset = 0
	}
	e.Pointer = src.Pointer()
	return e
}

// decodeRoot reads one complete root value.
func decodeRoot(src *eng.Enforcer) (fiox.Value, *fiox.Error) {
	v, err := eng.DecodeValue(src)
	if err == io.EOF {
		e := decodeError("empty input", nil)
		e.Offset = 0
		return fiox.Value{}, e
	}
	if err != nil {
		return fiox.Value{}, jsonError(err, src)
	}
	return v, nil
}

// expectEOF reports trailing data after the root value.
func expectEOF(src *eng.Enforcer) *fiox.Error {
	tok, err := src.NextToken()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return jsonError(err, src)
	}
	e := decodeError("trailing data after the root value", nil)
	e.Offset = tok.Offset
	return e
}

// stickyIter remembers the first error or EOF so a failed stream stays failed.
func stickyIter(next func() (fiox.Record, error)) fiox.RecordIter {
	var done error
	return fiox.IterFunc(func() (fiox.Record, error) {
		if done != nil {
			return nil, done
		}
		rec, err := next()
		if err != nil {
			done = err
		}
		return rec, err
	})
}

// ScanJSON checks that r holds exactly one well-formed JSON value without
// building it. eo controls duplicate keys and depth; its MaxDepth falls back
// to o.MaxDepth.
func (o Options) ScanJSON(r io.Reader, eo eng.EnforceOptions) error {
	if eo.MaxDepth == 0 {
		eo.MaxDepth = o.MaxDepth
	}
	src := eng.WrapWithEnforcement(srcjson.NewReader(bufferOf(r)), eo)
	tok, err := src.NextToken()
	if err == io.EOF {
		e := decodeError("empty input", nil)
		e.Offset = 0
		return e
	}
	if err != nil {
		return jsonError(err, src)
	}
	if err := eng.Skip(src, tok); err != nil {
		return jsonError(err, src)
	}
	if err := expectEOF(src); err != nil {
		return err
	}
	return nil
}
