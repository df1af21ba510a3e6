package codec

import (
	"math"
	"strconv"
	"strings"
)

// IsLiteral reports whether a raw field is one of the JSON literals written
// unquoted regardless of parse_numbers.
func IsLiteral(b string) bool {
	return b == "true" || b == "false" || b == "null"
}

// IsNumeric reports whether a raw textual field is emitted as a JSON number
// when parse_numbers is enabled: it must be non-empty, start with '+', '-' or a
// digit, end with a digit and parse as a finite float64. The text itself is
// emitted unchanged, so "007" and "+0" stay as written.
func IsNumeric(b string) bool {
	n := len(b)
	if n == 0 {
		return false
	}
	if c := b[0]; c != '+' && c != '-' && !isDigit(c) {
		return false
	}
	if !isDigit(b[n-1]) {
		return false
	}
	// strconv accepts hexadecimal floats and digit separators, neither of which
	// is a decimal number literal.
	if strings.ContainsAny(b, "xX_") {
		return false
	}
	f, err := strconv.ParseFloat(b, 64)
	return err == nil && !math.IsInf(f, 0) && !math.IsNaN(f)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// ParseNumber converts a field accepted by IsNumeric, or a JSON number literal,
// into an int64 when it is integral and in range, and a float64 otherwise.
func ParseNumber(s string) (any, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if math.IsInf(f, 0) {
		return nil, &strconv.NumError{Func: "ParseFloat", Num: s, Err: strconv.ErrRange}
	}
	return f, nil
}
