package encode

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"

	fiox "github.com/reoring/fiox"
	"github.com/reoring/fiox/codec"
)

// DefaultTableName names the TOML array written for a table without a name.
const DefaultTableName = "data"

// TOML writes a TOML document. A value stream must hold a single root table,
// which is lowered through codec and written by go-toml. A table stream is
// written as one array of inline tables named after the table.
func TOML(w io.Writer, s fiox.Stream, opts Options) error {
	if err := CheckShape(fiox.FormatTOML, s); err != nil {
		return err
	}
	out := newOutput(w)
	var err error
	switch t := s.(type) {
	case *fiox.TableStream:
		err = tomlTable(out, t, opts)
	case *fiox.ValueStream:
		err = tomlDocument(out, t)
	}
	if err != nil {
		return err
	}
	return out.flush()
}

func tomlDocument(out *output, s *fiox.ValueStream) error {
	rec, err := s.Iter.Next()
	if err == io.EOF {
		return shapeError("TOML output requires a root table, got an empty stream")
	}
	if err != nil {
		return err
	}
	v := fiox.ValueOf(rec)
	if v.Kind() != fiox.KindObject {
		return shapeError("TOML output requires a root table, got %s", v.Kind())
	}
	doc, err := codec.ToTOML(v)
	if err != nil {
		var le *codec.LowerError
		if errors.As(err, &le) {
			e := encodeError("cannot represent value in TOML: %s", le.Reason)
			e.Pointer = le.Pointer
			return e
		}
		return encodeError("cannot represent value in TOML: %v", err)
	}
	enc := toml.NewEncoder(out.bw)
	enc.SetIndentTables(true)
	if err := enc.Encode(doc); err != nil {
		return &fiox.Error{Code: fiox.CodeEncode, Message: "failed to write TOML", Cause: err, Offset: -1}
	}
	return nil
}

// tomlTable writes
//
//	name = [
//	  { h1 = "v1", h2 = "v2" },
//	]
//
// one record per line, so the table is never materialised.
func tomlTable(out *output, t *fiox.TableStream, opts Options) error {
	name := t.Name
	if name == "" {
		name = DefaultTableName
	}
	seen := make(map[string]struct{}, len(t.Headers))
	keys := make([][]byte, len(t.Headers))
	for i, h := range t.Headers {
		if _, dup := seen[h]; dup {
			return encodeError("column %q appears twice; TOML tables cannot repeat keys", h)
		}
		seen[h] = struct{}{}
		keys[i] = append(appendTOMLKey(nil, h), " = "...)
	}

	head := append(appendTOMLKey(nil, name), " = [\n"...)
	if err := out.write(head); err != nil {
		return err
	}
	var buf []byte
	row := 0
	err := each(t.Iter, func(rec fiox.Record) error {
		row++
		fields := fiox.FieldsOf(rec)
		if len(fields) != len(keys) {
			return arityError(len(fields), len(keys))
		}
		if len(fields) == 0 {
			return out.writeString(indent + "{},\n")
		}
		buf = append(buf[:0], indent+"{ "...)
		for i, f := range fields {
			if i > 0 {
				buf = append(buf, ", "...)
			}
			buf = append(buf, keys[i]...)
			var ok bool
			if buf, ok = appendTOMLField(buf, f, opts.ParseNumbers); !ok {
				return encodeError("record %d, column %q: TOML strings must be valid UTF-8", row, t.Headers[i])
			}
		}
		buf = append(buf, " },\n"...)
		return out.write(buf)
	})
	if err != nil {
		return err
	}
	return out.writeString("]\n")
}

// appendTOMLField writes a raw field as a TOML value. With parseNumbers,
// booleans and numeric fields are written bare; null has no TOML form and
// stays a string. Numbers are re-rendered since TOML forbids leading zeros.
func appendTOMLField(dst []byte, f string, parseNumbers bool) ([]byte, bool) {
	if parseNumbers {
		if f == "true" || f == "false" {
			return append(dst, f...), true
		}
		if codec.IsNumeric(f) {
			if n, err := codec.ParseNumber(f); err == nil {
				return appendTOMLNumber(dst, n), true
			}
		}
	}
	return appendTOMLString(dst, f)
}

func appendTOMLNumber(dst []byte, n any) []byte {
	switch v := n.(type) {
	case int64:
		return strconv.AppendInt(dst, v, 10)
	case float64:
		start := len(dst)
		dst = strconv.AppendFloat(dst, v, 'g', -1, 64)
		// a float must carry a fraction or an exponent
		if !bytes.ContainsAny(dst[start:], ".e") {
			dst = append(dst, ".0"...)
		}
		return dst
	}
	return dst
}

// appendTOMLString writes a TOML basic string. ok is false for invalid UTF-8.
func appendTOMLString(dst []byte, s string) ([]byte, bool) {
	if !utf8.ValidString(s) {
		return dst, false
	}
	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != 0x7f && c != '"' && c != '\\' {
			continue
		}
		dst = append(dst, s[start:i]...)
		switch c {
		case '"', '\\':
			dst = append(dst, '\\', c)
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\t':
			dst = append(dst, '\\', 't')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\r':
			dst = append(dst, '\\', 'r')
		default:
			dst = append(dst, '\\', 'u', '0', '0', hex[c>>4], hex[c&0xf])
		}
		start = i + 1
	}
	dst = append(dst, s[start:]...)
	return append(dst, '"'), true
}

// appendTOMLKey writes a bare key when possible and a quoted key otherwise.
func appendTOMLKey(dst []byte, k string) []byte {
	bare := k != ""
	for i := 0; i < len(k) && bare; i++ {
		c := k[i]
		bare = c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' || c == '-'
	}
	if bare {
		return append(dst, k...)
	}
	out, _ := appendTOMLString(dst, strings.ToValidUTF8(k, "\uFFFD"))
	return out
}
