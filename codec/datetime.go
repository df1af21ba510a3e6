package codec

import (
	"fmt"
	"time"

	"github.com/pelletier/go-toml/v2"

	fiox "github.com/reoring/fiox"
)

// DatetimeValue converts a date/time produced by the TOML decoder into a
// datetime Value. ok is false when v is not a date/time.
func DatetimeValue(v any) (val fiox.Value, ok bool) {
	switch t := v.(type) {
	case time.Time:
		return fiox.Datetime(fiox.OffsetDateTime, formatRFC3339(t)), true
	case toml.LocalDateTime:
		return fiox.Datetime(fiox.LocalDateTime, t.String()), true
	case toml.LocalDate:
		return fiox.Datetime(fiox.LocalDate, t.String()), true
	case toml.LocalTime:
		return fiox.Datetime(fiox.LocalTime, t.String()), true
	}
	return fiox.Value{}, false
}

// DatetimeTOML converts a datetime Value back into the type the TOML encoder
// writes as a bare date/time.
func DatetimeTOML(v fiox.Value) (any, error) {
	text := v.Text()
	switch v.DatetimeKind() {
	case fiox.OffsetDateTime:
		t, err := parseRFC3339(text)
		if err != nil {
			return nil, err
		}
		return t, nil
	case fiox.LocalDateTime:
		var d toml.LocalDateTime
		if err := d.UnmarshalText([]byte(text)); err != nil {
			return nil, err
		}
		return d, nil
	case fiox.LocalDate:
		var d toml.LocalDate
		if err := d.UnmarshalText([]byte(text)); err != nil {
			return nil, err
		}
		return d, nil
	case fiox.LocalTime:
		var d toml.LocalTime
		if err := d.UnmarshalText([]byte(text)); err != nil {
			return nil, err
		}
		return d, nil
	}
	return nil, fmt.Errorf("unknown datetime kind %d", v.DatetimeKind())
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

// formatRFC3339 keeps the original offset; Go trims trailing zeros of the
// fractional part.
func formatRFC3339(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
