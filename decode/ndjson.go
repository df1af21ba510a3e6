package decode

import (
	"io"

	fiox "github.com/reoring/fiox"
	srcjson "github.com/reoring/fiox/source/json"
)

// NDJSON decodes one JSON value per line. Blank lines are skipped; a malformed
// line ends the stream with an error carrying its line number.
func NDJSON(r io.Reader, opts Options) (fiox.Stream, error) {
	lines := NewLineReader(r)
	it := stickyIter(func() (fiox.Record, error) {
		for {
			line, n, err := lines.Next()
			if err == io.EOF {
				return nil, io.EOF
			}
			if err != nil {
				return nil, decodeError("failed to read input", err)
			}
			if IsBlank(line) {
				continue
			}
			v, lerr := decodeLine(line, opts)
			if lerr != nil {
				lerr.Line = n
				if lerr.Offset >= 0 {
					lerr.Column = int(lerr.Offset) + 1
				}
				// the offset is relative to the line, not the file
				lerr.Offset = -1
				return nil, lerr
			}
			return fiox.JSONRecord{Value: v}, nil
		}
	})
	return &fiox.NDJSONStream{Iter: it}, nil
}

func decodeLine(line []byte, opts Options) (fiox.Value, *fiox.Error) {
	src := opts.enforce(srcjson.NewBytes(line))
	v, err := decodeRoot(src)
	if err != nil {
		return fiox.Value{}, err
	}
	if err := expectEOF(src); err != nil {
		return fiox.Value{}, err
	}
	return v, nil
}
