package fiox

import (
	"context"
	"io"
)

// Record is one logical datum flowing through the pipeline: a JSON value, a
// TOML value or a CSV row. The set of implementations is closed.
type Record interface {
	Format() Format
	isRecord()
}

// JSONRecord carries a value decoded from JSON or NDJSON.
type JSONRecord struct{ Value Value }

// TOMLRecord carries a value decoded from TOML.
type TOMLRecord struct{ Value Value }

// CSVRecord is an ordered sequence of raw, uninterpreted fields.
type CSVRecord []string

func (JSONRecord) Format() Format { return FormatJSON }
func (TOMLRecord) Format() Format { return FormatTOML }
func (CSVRecord) Format() Format  { return FormatCSV }

func (JSONRecord) isRecord() {}
func (TOMLRecord) isRecord() {}
func (CSVRecord) isRecord()  {}

// ValueOf extracts the Value of a JSON or TOML record. A CSV record here means a
// decoder emitted a row into a value stream, which is a programming error.
func ValueOf(rec Record) Value {
	switch r := rec.(type) {
	case JSONRecord:
		return r.Value
	case TOMLRecord:
		return r.Value
	default:
		panic("fiox: value requested from a " + rec.Format().String() + " record")
	}
}

// FieldsOf extracts the fields of a CSV record; any other record is a
// programming error.
func FieldsOf(rec Record) CSVRecord {
	if r, ok := rec.(CSVRecord); ok {
		return r
	}
	panic("fiox: fields requested from a " + rec.Format().String() + " record")
}

// RecordIter is a lazy, single-pass sequence of records. Next returns io.EOF
// after the last record; any other error ends the sequence.
type RecordIter interface {
	Next() (Record, error)
}

// IterFunc adapts a function to RecordIter.
type IterFunc func() (Record, error)

func (f IterFunc) Next() (Record, error) { return f() }

// SliceIter yields the given records in order. It is mostly useful in tests and
// for callers building tables in memory.
func SliceIter(recs ...Record) RecordIter {
	i := 0
	return IterFunc(func() (Record, error) {
		if i >= len(recs) {
			return nil, io.EOF
		}
		r := recs[i]
		i++
		return r, nil
	})
}

// IterWithContext stops iteration with ctx.Err() once ctx is done.
func IterWithContext(ctx context.Context, it RecordIter) RecordIter {
	if ctx == nil || ctx.Done() == nil {
		return it
	}
	return IterFunc(func() (Record, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return it.Next()
	})
}

// Stream is one of the stream shapes produced by decoders: *ValueStream,
// *TableStream or *NDJSONStream.
type Stream interface {
	Shape() Shape
	Records() RecordIter
	isStream()
}

// ValueStream is a lazy sequence of values. Single is set when the source held
// one root value (a JSON object or scalar, a TOML document) rather than a JSON
// array whose elements are streamed.
type ValueStream struct {
	Iter   RecordIter
	Single bool
}

// TableStream is a header row plus records whose arity equals len(Headers).
// Name is used by writers that need a table name (TOML); it is typically the
// input file stem.
type TableStream struct {
	Headers []string
	Iter    RecordIter
	Name    string
}

// NDJSONStream is a lazy sequence of JSON values, one per input line.
type NDJSONStream struct {
	Iter RecordIter
}

func (*ValueStream) Shape() Shape  { return ShapeValues }
func (*TableStream) Shape() Shape  { return ShapeTable }
func (*NDJSONStream) Shape() Shape { return ShapeNDJSON }

func (s *ValueStream) Records() RecordIter  { return s.Iter }
func (s *TableStream) Records() RecordIter  { return s.Iter }
func (s *NDJSONStream) Records() RecordIter { return s.Iter }

func (*ValueStream) isStream()  {}
func (*TableStream) isStream()  {}
func (*NDJSONStream) isStream() {}

// WithIter returns a shallow copy of s reading from it instead.
func WithIter(s Stream, it RecordIter) Stream {
	switch t := s.(type) {
	case *ValueStream:
		cp := *t
		cp.Iter = it
		return &cp
	case *TableStream:
		cp := *t
		cp.Iter = it
		return &cp
	case *NDJSONStream:
		cp := *t
		cp.Iter = it
		return &cp
	}
	panic("fiox: unknown stream shape")
}
