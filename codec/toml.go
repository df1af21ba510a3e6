package codec

import (
	"fmt"
	"sort"
	"strings"

	fiox "github.com/reoring/fiox"
)

// FromTOML converts a document decoded by go-toml/v2 into a Value. Table keys
// are sorted because the decoded map carries no order.
func FromTOML(v any) (fiox.Value, error) {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := fiox.NewObject(len(keys))
		for _, k := range keys {
			cv, err := FromTOML(t[k])
			if err != nil {
				return fiox.Value{}, err
			}
			obj.Set(k, cv)
		}
		return fiox.ObjectValue(obj), nil
	case []any:
		items := make([]fiox.Value, 0, len(t))
		for _, it := range t {
			cv, err := FromTOML(it)
			if err != nil {
				return fiox.Value{}, err
			}
			items = append(items, cv)
		}
		return fiox.Array(items...), nil
	case string:
		return fiox.String(t), nil
	case bool:
		return fiox.Bool(t), nil
	case int64:
		return fiox.Int(t), nil
	case float64:
		return fiox.Float(t), nil
	}
	if dt, ok := DatetimeValue(v); ok {
		return dt, nil
	}
	return fiox.Value{}, fmt.Errorf("unsupported TOML value of type %T", v)
}

// LowerError reports a value that has no TOML representation.
type LowerError struct {
	Pointer string
	Reason  string
}

func (e *LowerError) Error() string {
	return "cannot represent value at " + e.Pointer + " in TOML: " + e.Reason
}

// ToTOML lowers v into the types go-toml/v2 encodes: map[string]any, []any,
// string, bool, int64, float64 and date/times. JSON numbers become int64 when
// integral and in range and float64 otherwise. null has no TOML form.
func ToTOML(v fiox.Value) (any, error) {
	return toTOML(v, "")
}

func toTOML(v fiox.Value, ptr string) (any, error) {
	switch v.Kind() {
	case fiox.KindNull:
		return nil, &LowerError{Pointer: pointerOrRoot(ptr), Reason: "TOML has no null"}
	case fiox.KindBool:
		return v.Bool(), nil
	case fiox.KindInt:
		return v.Int(), nil
	case fiox.KindFloat:
		return v.Float(), nil
	case fiox.KindNumber:
		n, err := ParseNumber(v.Text())
		if err != nil {
			return nil, &LowerError{Pointer: pointerOrRoot(ptr), Reason: "number " + v.Text() + " is out of range"}
		}
		return n, nil
	case fiox.KindString:
		return v.Text(), nil
	case fiox.KindDatetime:
		t, err := DatetimeTOML(v)
		if err != nil {
			return nil, &LowerError{Pointer: pointerOrRoot(ptr), Reason: err.Error()}
		}
		return t, nil
	case fiox.KindArray:
		items := v.Items()
		out := make([]any, len(items))
		for i, it := range items {
			cv, err := toTOML(it, fmt.Sprintf("%s/%d", ptr, i))
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	case fiox.KindObject:
		o := v.Object()
		out := make(map[string]any, o.Len())
		for i := 0; i < o.Len(); i++ {
			k, cv := o.At(i)
			tv, err := toTOML(cv, ptr+"/"+escapePointer(k))
			if err != nil {
				return nil, err
			}
			out[k] = tv
		}
		return out, nil
	}
	return nil, &LowerError{Pointer: pointerOrRoot(ptr), Reason: "unknown value kind " + v.Kind().String()}
}

func pointerOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escapePointer(s string) string { return pointerEscaper.Replace(s) }
