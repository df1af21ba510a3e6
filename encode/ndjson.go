package encode

import (
	"io"

	gojson "github.com/goccy/go-json"

	fiox "github.com/reoring/fiox"
)

// NDJSON writes one compact JSON value per line. Values are serialised with the
// go-json encoder; table records go through the streaming field escaper
// without building an intermediate value.
func NDJSON(w io.Writer, s fiox.Stream, opts Options) error {
	if err := CheckShape(fiox.FormatNDJSON, s); err != nil {
		return err
	}
	out := newOutput(w)
	var err error
	if t, ok := s.(*fiox.TableStream); ok {
		err = ndjsonTable(out, t, opts)
	} else {
		err = ndjsonValues(out, s.Records())
	}
	if err != nil {
		return err
	}
	return out.flush()
}

func ndjsonValues(out *output, it fiox.RecordIter) error {
	enc := gojson.NewEncoder(out.bw)
	enc.SetEscapeHTML(false)
	return each(it, func(rec fiox.Record) error {
		// Encode terminates every value with a newline.
		if err := enc.Encode(fiox.ValueOf(rec)); err != nil {
			return &fiox.Error{Code: fiox.CodeEncode, Message: "failed to write value", Cause: err, Offset: -1}
		}
		return nil
	})
}

// ndjsonTable writes {"h1": v1, "h2": v2}\n per record. Headers are escaped
// once; the line buffer is reused across records.
func ndjsonTable(out *output, t *fiox.TableStream, opts Options) error {
	keys := quotedKeys(t.Headers, ": ")
	var buf []byte
	return each(t.Iter, func(rec fiox.Record) error {
		fields := fiox.FieldsOf(rec)
		if len(fields) != len(keys) {
			return arityError(len(fields), len(keys))
		}
		buf = append(buf[:0], '{')
		for i, f := range fields {
			if i > 0 {
				buf = append(buf, ", "...)
			}
			buf = append(buf, keys[i]...)
			buf = AppendField(buf, f, opts.ParseNumbers)
		}
		buf = append(buf, "}\n"...)
		return out.write(buf)
	})
}
