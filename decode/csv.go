package decode

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	fiox "github.com/reoring/fiox"
)

// NewCSVReader builds the encoding/csv reader shared by the CSV decoder and
// validator. The field count is fixed by the header row.
func NewCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(bufferOf(r))
	cr.FieldsPerRecord = 0
	return cr
}

// CSV decodes a CSV file with a mandatory header row. Fields are passed
// through uninterpreted. Headers must be valid UTF-8; a record whose arity
// differs from the header row ends the stream with an error.
func CSV(r io.Reader, _ Options) (fiox.Stream, error) {
	cr := NewCSVReader(r)
	headers, err := cr.Read()
	if err == io.EOF {
		e := decodeError("missing header row", nil)
		e.Line = 1
		return nil, e
	}
	if err != nil {
		return nil, csvError(err)
	}
	for i, h := range headers {
		if !utf8.ValidString(h) {
			e := decodeError(fmt.Sprintf("header %d is not valid UTF-8", i+1), nil)
			e.Line = 1
			e.Column = i + 1
			return nil, e
		}
	}

	it := stickyIter(func() (fiox.Record, error) {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, csvError(err)
		}
		return fiox.CSVRecord(rec), nil
	})
	return &fiox.TableStream{Headers: headers, Iter: it}, nil
}

// csvError maps an encoding/csv failure to a decode error with its position.
func csvError(err error) *fiox.Error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		msg := pe.Err.Error()
		if errors.Is(pe.Err, csv.ErrFieldCount) {
			msg = "record has a different number of fields than the header row"
		}
		e := decodeError(msg, nil)
		e.Line = pe.Line
		e.Column = pe.Column
		return e
	}
	return decodeError("failed to read CSV", err)
}
