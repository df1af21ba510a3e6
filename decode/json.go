package decode

import (
	"io"

	fiox "github.com/reoring/fiox"
	eng "github.com/reoring/fiox/internal/engine"
	srcjson "github.com/reoring/fiox/source/json"
)

// JSON decodes a JSON document. A root array is streamed element by element;
// any other root is a single-element stream. Trailing data after the root is
// an error.
func JSON(r io.Reader, opts Options) (fiox.Stream, error) {
	src := opts.enforce(srcjson.NewReader(bufferOf(r)))

	tok, err := src.NextToken()
	if err == io.EOF {
		e := decodeError("empty input", nil)
		e.Offset = 0
		return nil, e
	}
	if err != nil {
		return nil, jsonError(err, src)
	}

	if tok.Kind != eng.KindBeginArray {
		v, err := eng.DecodeValueFrom(src, tok)
		if err != nil {
			return nil, jsonError(err, src)
		}
		if err := expectEOF(src); err != nil {
			return nil, err
		}
		return &fiox.ValueStream{Iter: fiox.SliceIter(fiox.JSONRecord{Value: v}), Single: true}, nil
	}

	it := stickyIter(func() (fiox.Record, error) {
		tok, err := src.NextToken()
		if err != nil {
			return nil, jsonError(err, src)
		}
		if tok.Kind == eng.KindEndArray {
			if err := expectEOF(src); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		v, err := eng.DecodeValueFrom(src, tok)
		if err != nil {
			return nil, jsonError(err, src)
		}
		return fiox.JSONRecord{Value: v}, nil
	})
	return &fiox.ValueStream{Iter: it}, nil
}
