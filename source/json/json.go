// Package json adapts encoding/json's token decoder to the engine.TokenSource
// interface used by the JSON and NDJSON decoders and the JSON validator.
// encoding/json checks the placement of ',' and ':' while tokenizing, so a
// malformed document fails at the first misplaced byte.
package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	eng "github.com/reoring/fiox/internal/engine"
)

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	expectingKey bool
}

// Source is an engine.TokenSource reading JSON text. Numbers are kept as their
// literal text.
type Source struct {
	dec        *json.Decoder
	stack      []frame
	lastOffset int64
}

// NewReader wraps an io.Reader into a token source.
func NewReader(r io.Reader) *Source {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &Source{dec: dec, lastOffset: -1}
}

// NewBytes wraps a byte slice into a token source.
func NewBytes(b []byte) *Source { return NewReader(bytes.NewReader(b)) }

func (s *Source) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		if err == io.EOF && len(s.stack) > 0 {
			return eng.Token{}, io.ErrUnexpectedEOF
		}
		var se *json.SyntaxError
		if errors.As(err, &se) {
			return eng.Token{}, &SyntaxError{Offset: s.absOffset(se), err: se}
		}
		return eng.Token{}, err
	}
	s.lastOffset = s.dec.InputOffset()

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{kind: kindObject, expectingKey: true})
			return eng.Token{Kind: eng.KindBeginObject, Offset: s.lastOffset}, nil
		case '}':
			s.pop()
			return eng.Token{Kind: eng.KindEndObject, Offset: s.lastOffset}, nil
		case '[':
			s.stack = append(s.stack, frame{kind: kindArray})
			return eng.Token{Kind: eng.KindBeginArray, Offset: s.lastOffset}, nil
		case ']':
			s.pop()
			return eng.Token{Kind: eng.KindEndArray, Offset: s.lastOffset}, nil
		}
	case string:
		if n := len(s.stack); n > 0 {
			top := &s.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				top.expectingKey = false
				return eng.Token{Kind: eng.KindKey, String: v, Offset: s.lastOffset}, nil
			}
		}
		s.valueDone()
		return eng.Token{Kind: eng.KindString, String: v, Offset: s.lastOffset}, nil
	case bool:
		s.valueDone()
		return eng.Token{Kind: eng.KindBool, Bool: v, Offset: s.lastOffset}, nil
	case json.Number:
		s.valueDone()
		return eng.Token{Kind: eng.KindNumber, Number: string(v), Offset: s.lastOffset}, nil
	case nil:
		s.valueDone()
		return eng.Token{Kind: eng.KindNull, Offset: s.lastOffset}, nil
	}

	return eng.Token{}, fmt.Errorf("%w: unexpected JSON token %v (%T)", eng.ErrUnexpectedToken, tok, tok)
}

// pop closes the innermost container; the container itself completes a member
// of its parent.
func (s *Source) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
	s.valueDone()
}

func (s *Source) valueDone() {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
		}
	}
}

// Location returns the byte offset just past the last token (-1 before the
// first token).
func (s *Source) Location() int64 { return s.lastOffset }

// SyntaxError is a JSON syntax error located at an absolute byte offset of the
// input.
type SyntaxError struct {
	Offset int64
	err    *json.SyntaxError
}

func (e *SyntaxError) Error() string { return e.err.Error() }

func (e *SyntaxError) Unwrap() error { return e.err }

// absOffset converts the offset of a syntax error to an absolute one. Errors
// about misplaced delimiters already carry the decoder's input offset; errors
// found while scanning a value count from the start of that value, which is
// where the decoder stopped.
func (s *Source) absOffset(se *json.SyntaxError) int64 {
	at := s.dec.InputOffset()
	if se.Offset <= 0 || se.Offset == at {
		return at
	}
	return at + se.Offset - 1
}

// ErrorOffset extracts the byte offset carried by a JSON syntax error.
func ErrorOffset(err error) (int64, bool) {
	var se *SyntaxError
	if errors.As(err, &se) {
		return se.Offset, true
	}
	return -1, false
}
