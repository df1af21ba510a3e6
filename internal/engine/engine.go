package engine

import (
	"errors"
	"io"

	fiox "github.com/reoring/fiox"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindBeginObject:
		return "'{'"
	case KindEndObject:
		return "'}'"
	case KindBeginArray:
		return "'['"
	case KindEndArray:
		return "']'"
	case KindKey:
		return "object key"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	default:
		return "null"
	}
}

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string // literal text, never converted here
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// ErrUnexpectedToken reports a token that cannot appear at its position.
var ErrUnexpectedToken = errors.New("unexpected token")

// DecodeValue builds a Value from the next complete value of src. It returns
// io.EOF untouched when src is exhausted before the value starts.
func DecodeValue(src TokenSource) (fiox.Value, error) {
	tok, err := src.NextToken()
	if err != nil {
		return fiox.Value{}, err
	}
	return DecodeValueFrom(src, tok)
}

// DecodeValueFrom builds a Value whose first token has already been read.
func DecodeValueFrom(src TokenSource, tok Token) (fiox.Value, error) {
	switch tok.Kind {
	case KindBeginObject:
		return decodeObject(src)
	case KindBeginArray:
		return decodeArray(src)
	case KindString:
		return fiox.String(tok.String), nil
	case KindNumber:
		return fiox.Number(tok.Number), nil
	case KindBool:
		return fiox.Bool(tok.Bool), nil
	case KindNull:
		return fiox.Null(), nil
	default:
		return fiox.Value{}, ErrUnexpectedToken
	}
}

func decodeObject(src TokenSource) (fiox.Value, error) {
	obj := fiox.NewObject(8)
	for {
		tok, err := next(src)
		if err != nil {
			return fiox.Value{}, err
		}
		if tok.Kind == KindEndObject {
			return fiox.ObjectValue(obj), nil
		}
		if tok.Kind != KindKey {
			return fiox.Value{}, ErrUnexpectedToken
		}
		vt, err := next(src)
		if err != nil {
			return fiox.Value{}, err
		}
		v, err := DecodeValueFrom(src, vt)
		if err != nil {
			return fiox.Value{}, err
		}
		obj.Set(tok.String, v)
	}
}

func decodeArray(src TokenSource) (fiox.Value, error) {
	arr := []fiox.Value{}
	for {
		tok, err := next(src)
		if err != nil {
			return fiox.Value{}, err
		}
		if tok.Kind == KindEndArray {
			return fiox.Array(arr...), nil
		}
		v, err := DecodeValueFrom(src, tok)
		if err != nil {
			return fiox.Value{}, err
		}
		arr = append(arr, v)
	}
}

// Skip consumes the value started by tok without building it. It checks the
// same structure as DecodeValueFrom: object members alternate key and value,
// and arrays hold values only.
func Skip(src TokenSource, tok Token) error {
	// open holds one entry per enclosing container, true for objects.
	var open []bool
	inArray := func() bool { return len(open) > 0 && !open[len(open)-1] }
	wantValue := true
	for {
		if wantValue {
			switch tok.Kind {
			case KindBeginObject:
				open = append(open, true)
				wantValue = false
			case KindBeginArray:
				open = append(open, false)
			case KindString, KindNumber, KindBool, KindNull:
				wantValue = inArray()
			case KindEndArray:
				if !inArray() {
					return ErrUnexpectedToken
				}
				open = open[:len(open)-1]
				wantValue = inArray()
			default:
				return ErrUnexpectedToken
			}
		} else {
			// inside an object, between members
			switch tok.Kind {
			case KindKey:
				wantValue = true
			case KindEndObject:
				open = open[:len(open)-1]
				wantValue = inArray()
			default:
				return ErrUnexpectedToken
			}
		}
		if len(open) == 0 {
			return nil
		}
		var err error
		if tok, err = next(src); err != nil {
			return err
		}
	}
}

// next reads a token inside a composite value, where running out of input is
// always an error.
func next(src TokenSource) (Token, error) {
	tok, err := src.NextToken()
	if err == io.EOF {
		return Token{}, io.ErrUnexpectedEOF
	}
	return tok, err
}
