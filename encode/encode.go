// Package encode writes record streams as JSON, TOML, CSV and NDJSON. Every
// writer buffers its output and flushes before returning; a failed flush is an
// error.
package encode

import (
	"bufio"
	"io"

	fiox "github.com/reoring/fiox"
)

// Options tune the writers.
type Options struct {
	// ParseNumbers emits numeric-looking table fields as numbers.
	ParseNumbers bool
	// Logger receives soft errors such as CSV arity mismatches.
	Logger fiox.Logger
}

// Func is the common writer signature.
type Func func(w io.Writer, s fiox.Stream, opts Options) error

// For returns the writer for a format.
func For(f fiox.Format) (Func, error) {
	switch f {
	case fiox.FormatJSON:
		return JSON, nil
	case fiox.FormatTOML:
		return TOML, nil
	case fiox.FormatCSV:
		return CSV, nil
	case fiox.FormatNDJSON:
		return NDJSON, nil
	}
	_, err := fiox.ParseFormat(string(f))
	return nil, err
}

// accepts is the legal shape/format matrix.
var accepts = map[fiox.Format][]fiox.Shape{
	fiox.FormatJSON:   {fiox.ShapeValues, fiox.ShapeNDJSON, fiox.ShapeTable},
	fiox.FormatTOML:   {fiox.ShapeValues, fiox.ShapeTable},
	fiox.FormatCSV:    {fiox.ShapeTable},
	fiox.FormatNDJSON: {fiox.ShapeValues, fiox.ShapeNDJSON, fiox.ShapeTable},
}

var required = map[fiox.Format]string{
	fiox.FormatTOML: "a value or table stream",
	fiox.FormatCSV:  "a table stream",
}

// CheckShape reports whether s can be written as f. Besides the shape matrix,
// TOML needs a value stream holding a single root value.
func CheckShape(f fiox.Format, s fiox.Stream) error {
	shape := s.Shape()
	ok := false
	for _, sh := range accepts[f] {
		if sh == shape {
			ok = true
			break
		}
	}
	if !ok {
		return shapeError("%s output requires %s, got %s", formatName(f), required[f], shape)
	}
	if vs, isValues := s.(*fiox.ValueStream); isValues && f == fiox.FormatTOML && !vs.Single {
		return shapeError("TOML output requires a single root table, got an array of values")
	}
	return nil
}

func shapeError(format string, args ...any) *fiox.Error {
	return fiox.Errorf(fiox.CodeShapeMismatch, "shape mismatch: "+format, args...)
}

func formatName(f fiox.Format) string {
	switch f {
	case fiox.FormatJSON:
		return "JSON"
	case fiox.FormatTOML:
		return "TOML"
	case fiox.FormatCSV:
		return "CSV"
	case fiox.FormatNDJSON:
		return "NDJSON"
	}
	return string(f)
}

// output is the buffered sink shared by the writers.
type output struct {
	bw *bufio.Writer
}

func newOutput(w io.Writer) *output {
	if bw, ok := w.(*bufio.Writer); ok {
		return &output{bw: bw}
	}
	return &output{bw: bufio.NewWriter(w)}
}

func (o *output) write(b []byte) error {
	if _, err := o.bw.Write(b); err != nil {
		return writeError(err)
	}
	return nil
}

func (o *output) writeString(s string) error {
	if _, err := o.bw.WriteString(s); err != nil {
		return writeError(err)
	}
	return nil
}

func (o *output) flush() error {
	if err := o.bw.Flush(); err != nil {
		return &fiox.Error{Code: fiox.CodeEncode, Message: "failed to flush output", Cause: err, Offset: -1}
	}
	return nil
}

func writeError(err error) error {
	return &fiox.Error{Code: fiox.CodeEncode, Message: "failed to write output", Cause: err, Offset: -1}
}

func encodeError(format string, args ...any) *fiox.Error {
	return fiox.Errorf(fiox.CodeEncode, format, args...)
}

// arityError reports a table record that does not match the header row.
func arityError(got, want int) error {
	return encodeError("record has %d fields, expected %d", got, want)
}

// each pulls records until io.EOF, calling fn for every one.
func each(it fiox.RecordIter, fn func(fiox.Record) error) error {
	for {
		rec, err := it.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}
