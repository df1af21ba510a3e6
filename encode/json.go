package encode

import (
	"bytes"
	"io"

	gojson "github.com/goccy/go-json"

	fiox "github.com/reoring/fiox"
)

const indent = "  "

// JSON writes a pretty-printed JSON document. A single-root value stream is
// written as that value; other value and NDJSON streams become an array, and
// tables an array of objects keyed by the headers. Arrays are streamed element
// by element.
func JSON(w io.Writer, s fiox.Stream, opts Options) error {
	if err := CheckShape(fiox.FormatJSON, s); err != nil {
		return err
	}
	out := newOutput(w)
	var err error
	switch t := s.(type) {
	case *fiox.TableStream:
		err = jsonTable(out, t, opts)
	case *fiox.ValueStream:
		if t.Single {
			err = jsonSingle(out, t.Iter)
		} else {
			err = jsonArray(out, t.Iter)
		}
	case *fiox.NDJSONStream:
		err = jsonArray(out, t.Iter)
	}
	if err != nil {
		return err
	}
	return out.flush()
}

// prettyWriter indents one value at a time, reusing its buffers.
type prettyWriter struct {
	compact []byte
	buf     bytes.Buffer
}

func (p *prettyWriter) render(v fiox.Value, prefix string) ([]byte, error) {
	var err error
	if p.compact, err = v.AppendJSON(p.compact[:0]); err != nil {
		return nil, encodeError("cannot write value as JSON: %v", err)
	}
	p.buf.Reset()
	if err := gojson.Indent(&p.buf, p.compact, prefix, indent); err != nil {
		return nil, &fiox.Error{Code: fiox.CodeEncode, Message: "failed to indent value", Cause: err, Offset: -1}
	}
	return p.buf.Bytes(), nil
}

func jsonSingle(out *output, it fiox.RecordIter) error {
	var p prettyWriter
	return each(it, func(rec fiox.Record) error {
		b, err := p.render(fiox.ValueOf(rec), "")
		if err != nil {
			return err
		}
		if err := out.write(b); err != nil {
			return err
		}
		return out.writeString("\n")
	})
}

func jsonArray(out *output, it fiox.RecordIter) error {
	var p prettyWriter
	if err := out.writeString("["); err != nil {
		return err
	}
	first := true
	err := each(it, func(rec fiox.Record) error {
		sep := ",\n" + indent
		if first {
			sep = "\n" + indent
			first = false
		}
		if err := out.writeString(sep); err != nil {
			return err
		}
		b, err := p.render(fiox.ValueOf(rec), indent)
		if err != nil {
			return err
		}
		return out.write(b)
	})
	if err != nil {
		return err
	}
	if first {
		return out.writeString("]\n")
	}
	return out.writeString("\n]\n")
}

// jsonTable writes each record as an object using the same per-field rules as
// the NDJSON writer.
func jsonTable(out *output, t *fiox.TableStream, opts Options) error {
	keys := quotedKeys(t.Headers, ": ")
	fieldSep := []byte(",\n" + indent + indent)
	var buf []byte
	first := true
	if err := out.writeString("["); err != nil {
		return err
	}
	err := each(t.Iter, func(rec fiox.Record) error {
		fields := fiox.FieldsOf(rec)
		if len(fields) != len(keys) {
			return arityError(len(fields), len(keys))
		}
		buf = buf[:0]
		if first {
			buf = append(buf, "\n"+indent...)
			first = false
		} else {
			buf = append(buf, ",\n"+indent...)
		}
		if len(fields) == 0 {
			buf = append(buf, "{}"...)
			return out.write(buf)
		}
		buf = append(buf, "{\n"+indent+indent...)
		for i, f := range fields {
			if i > 0 {
				buf = append(buf, fieldSep...)
			}
			buf = append(buf, keys[i]...)
			buf = AppendField(buf, f, opts.ParseNumbers)
		}
		buf = append(buf, "\n"+indent+"}"...)
		return out.write(buf)
	})
	if err != nil {
		return err
	}
	if first {
		return out.writeString("]\n")
	}
	return out.writeString("\n]\n")
}
