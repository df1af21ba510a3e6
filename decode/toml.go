package decode

import (
	"errors"
	"io"

	"github.com/pelletier/go-toml/v2"

	fiox "github.com/reoring/fiox"
	"github.com/reoring/fiox/codec"
)

// TOML decodes a whole TOML document into a single table value. TOML cannot be
// streamed record by record, so the document is buffered.
func TOML(r io.Reader, _ Options) (fiox.Stream, error) {
	var doc map[string]any
	if err := toml.NewDecoder(bufferOf(r)).Decode(&doc); err != nil {
		return nil, tomlError(err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	v, err := codec.FromTOML(doc)
	if err != nil {
		return nil, decodeError("invalid TOML document", err)
	}
	return &fiox.ValueStream{Iter: fiox.SliceIter(fiox.TOMLRecord{Value: v}), Single: true}, nil
}

// tomlError maps a go-toml failure to a decode error with its position.
func tomlError(err error) *fiox.Error {
	var de *toml.DecodeError
	if errors.As(err, &de) {
		row, col := de.Position()
		e := decodeError(de.Error(), nil)
		e.Line = row
		e.Column = col
		return e
	}
	return decodeError("invalid TOML", err)
}
