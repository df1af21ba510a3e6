package encode

import (
	"github.com/reoring/fiox/codec"
)

// Escape appends the JSON escape of b to dst: a two-byte sequence for
// backslash, double quote, newline, carriage return and tab, and b itself for
// every other byte.
func Escape(b byte, dst []byte) []byte {
	switch b {
	case '\\':
		return append(dst, '\\', '\\')
	case '"':
		return append(dst, '\\', '"')
	case '\n':
		return append(dst, '\\', 'n')
	case '\r':
		return append(dst, '\\', 'r')
	case '\t':
		return append(dst, '\\', 't')
	}
	return append(dst, b)
}

const hex = "0123456789abcdef"

// AppendQuoted appends field as a quoted JSON string. Runs of safe bytes are
// copied verbatim; the run is flushed on every byte that needs escaping. Bytes
// are never reinterpreted, so non-UTF-8 input passes through unchanged. Control
// bytes without a short escape are written as \u00XX.
func AppendQuoted(dst []byte, field string) []byte {
	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(field); i++ {
		c := field[i]
		if c >= 0x20 && c != '\\' && c != '"' {
			continue
		}
		dst = append(dst, field[start:i]...)
		switch c {
		case '\\', '"', '\n', '\r', '\t':
			dst = Escape(c, dst)
		default:
			dst = append(dst, '\\', 'u', '0', '0', hex[c>>4], hex[c&0xf])
		}
		start = i + 1
	}
	dst = append(dst, field[start:]...)
	return append(dst, '"')
}

// AppendField appends a raw table field as a JSON value: the literals true,
// false and null unquoted, numeric-looking fields unquoted when parseNumbers is
// set, and a quoted string otherwise.
func AppendField(dst []byte, field string, parseNumbers bool) []byte {
	if codec.IsLiteral(field) || (parseNumbers && codec.IsNumeric(field)) {
		return append(dst, field...)
	}
	return AppendQuoted(dst, field)
}

// quotedKeys escapes the headers once, ready to be prefixed to each field.
func quotedKeys(headers []string, sep string) [][]byte {
	keys := make([][]byte, len(headers))
	for i, h := range headers {
		k := AppendQuoted(nil, h)
		keys[i] = append(k, sep...)
	}
	return keys
}
