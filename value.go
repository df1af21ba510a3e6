package fiox

import (
	"errors"
	"math"
	"strconv"

	json "github.com/goccy/go-json"
)

// Kind enumerates the variants of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber   // JSON number, kept as its literal text.
	KindInt      // TOML integer.
	KindFloat    // TOML float.
	KindString   // Text.
	KindDatetime // TOML datetime, kept as RFC 3339 text.
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindDatetime:
		return "datetime"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// DatetimeKind distinguishes the four TOML date/time flavours.
type DatetimeKind uint8

const (
	OffsetDateTime DatetimeKind = iota
	LocalDateTime
	LocalDate
	LocalTime
)

// Value is a recursive tagged value bridging the JSON and TOML type systems.
// The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string // string, number literal or datetime text
	dt   DatetimeKind
	arr  []Value
	obj  *Object
}

func Null() Value           { return Value{} }
func Bool(b bool) Value     { return Value{kind: KindBool, b: b} }
func Int(i int64) Value     { return Value{kind: KindInt, i: i} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func String(s string) Value { return Value{kind: KindString, s: s} }

func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, arr: items}
}

// Number wraps a JSON number literal. The literal is not checked here; callers
// obtain it from a JSON tokenizer or from codec.IsNumeric.
func Number(lit string) Value { return Value{kind: KindNumber, s: lit} }

// Datetime wraps a TOML date/time in its RFC 3339 text form.
func Datetime(k DatetimeKind, text string) Value {
	return Value{kind: KindDatetime, dt: k, s: text}
}

// ObjectValue wraps o; a nil o yields an empty object.
func ObjectValue(o *Object) Value {
	if o == nil {
		o = NewObject(0)
	}
	return Value{kind: KindObject, obj: o}
}

func (v Value) Kind() Kind                 { return v.kind }
func (v Value) IsNull() bool               { return v.kind == KindNull }
func (v Value) Bool() bool                 { return v.b }
func (v Value) Int() int64                 { return v.i }
func (v Value) Float() float64             { return v.f }
func (v Value) Items() []Value             { return v.arr }
func (v Value) Object() *Object            { return v.obj }
func (v Value) DatetimeKind() DatetimeKind { return v.dt }

// Text returns the string payload: the string itself, a number literal, or the
// datetime text.
func (v Value) Text() string { return v.s }

// Object is an ordered string-keyed mapping. Setting an existing key replaces
// its value in place. The zero Object is empty and ready to use.
type Object struct {
	keys  []string
	vals  []Value
	index map[string]int
}

// NewObject allocates an object with room for n members.
func NewObject(n int) *Object {
	return &Object{
		keys:  make([]string, 0, n),
		vals:  make([]Value, 0, n),
		index: make(map[string]int, n),
	}
}

func (o *Object) Set(key string, v Value) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[key]; ok {
		o.vals[i] = v
		return
	}
	o.index[key] = len(o.keys)
	o.keys = append(o.keys, key)
	o.vals = append(o.vals, v)
}

func (o *Object) Get(key string) (Value, bool) {
	i, ok := o.index[key]
	if !ok {
		return Value{}, false
	}
	return o.vals[i], true
}

func (o *Object) Len() int { return len(o.keys) }

// At returns the i-th member in insertion order.
func (o *Object) At(i int) (string, Value) { return o.keys[i], o.vals[i] }

// Keys returns the keys in insertion order. The slice must not be modified.
func (o *Object) Keys() []string { return o.keys }

// ErrNonFinite is returned when a NaN or infinite float must be written as JSON.
var ErrNonFinite = errors.New("JSON cannot represent NaN or infinite floats")

// MarshalJSON renders compact JSON, keeping object member order.
func (v Value) MarshalJSON() ([]byte, error) { return v.AppendJSON(nil) }

// AppendJSON appends the compact JSON encoding of v to dst.
func (v Value) AppendJSON(dst []byte) ([]byte, error) {
	switch v.kind {
	case KindNull:
		return append(dst, "null"...), nil
	case KindBool:
		return strconv.AppendBool(dst, v.b), nil
	case KindNumber:
		return append(dst, v.s...), nil
	case KindInt:
		return strconv.AppendInt(dst, v.i, 10), nil
	case KindFloat:
		return appendFloat(dst, v.f)
	case KindString, KindDatetime:
		return appendString(dst, v.s)
	case KindArray:
		dst = append(dst, '[')
		for i, it := range v.arr {
			if i > 0 {
				dst = append(dst, ',')
			}
			var err error
			if dst, err = it.AppendJSON(dst); err != nil {
				return nil, err
			}
		}
		return append(dst, ']'), nil
	case KindObject:
		dst = append(dst, '{')
		if v.obj != nil {
			for i, k := range v.obj.keys {
				if i > 0 {
					dst = append(dst, ',')
				}
				var err error
				if dst, err = appendString(dst, k); err != nil {
					return nil, err
				}
				dst = append(dst, ':')
				if dst, err = v.obj.vals[i].AppendJSON(dst); err != nil {
					return nil, err
				}
			}
		}
		return append(dst, '}'), nil
	}
	return nil, errors.New("fiox: unknown value kind " + v.kind.String())
}

func appendString(dst []byte, s string) ([]byte, error) {
	b, err := json.MarshalWithOption(s, json.DisableHTMLEscape())
	if err != nil {
		return nil, err
	}
	return append(dst, b...), nil
}

// appendFloat formats like encoding/json: plain notation for ordinary
// magnitudes, exponent notation for very small or very large ones.
func appendFloat(dst []byte, f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, ErrNonFinite
	}
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	dst = strconv.AppendFloat(dst, f, format, -1, 64)
	if format == 'e' {
		// e-07 -> e-7
		n := len(dst)
		if n >= 4 && dst[n-4] == 'e' && dst[n-3] == '-' && dst[n-2] == '0' {
			dst[n-2] = dst[n-1]
			dst = dst[:n-1]
		}
	}
	return dst, nil
}

// Equal reports whether a and b hold the same data, ignoring object member
// order and comparing Number, Int and Float by numeric value.
func Equal(a, b Value) bool {
	if na, ok := numeric(a); ok {
		nb, ok := numeric(b)
		return ok && na == nb
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindString:
		return a.s == b.s
	case KindDatetime:
		return a.dt == b.dt && a.s == b.s
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		oa, ob := a.Object(), b.Object()
		if oa.Len() != ob.Len() {
			return false
		}
		for i, k := range oa.keys {
			bv, ok := ob.Get(k)
			if !ok || !Equal(oa.vals[i], bv) {
				return false
			}
		}
		return true
	}
	return false
}

func numeric(v Value) (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	case KindNumber:
		f, err := strconv.ParseFloat(v.s, 64)
		return f, err == nil
	}
	return 0, false
}
