package fiox_test

import (
	"errors"
	"math"
	"testing"

	fiox "github.com/reoring/fiox"
)

func object(kv ...any) fiox.Value {
	o := fiox.NewObject(len(kv) / 2)
	for i := 0; i < len(kv); i += 2 {
		o.Set(kv[i].(string), kv[i+1].(fiox.Value))
	}
	return fiox.ObjectValue(o)
}

// TestValue_MarshalJSON_KeepsOrder checks compact output, member order and
// that HTML characters are not escaped.
func TestValue_MarshalJSON_KeepsOrder(t *testing.T) {
	v := object(
		"z", fiox.Number("1.50"),
		"a", fiox.Array(fiox.Null(), fiox.Bool(true), fiox.String("<&>")),
		"i", fiox.Int(-3),
		"f", fiox.Float(0.1),
		"d", fiox.Datetime(fiox.LocalDate, "1979-05-27"),
	)
	b, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"z":1.50,"a":[null,true,"<&>"],"i":-3,"f":0.1,"d":"1979-05-27"}`
	if string(b) != want {
		t.Fatalf("got %s\nwant %s", b, want)
	}
}

func TestValue_MarshalJSON_Floats(t *testing.T) {
	cases := map[float64]string{
		1:      "1",
		1e21:   "1e+21",
		1e-7:   "1e-7",
		123.25: "123.25",
	}
	for f, want := range cases {
		b, err := fiox.Float(f).MarshalJSON()
		if err != nil || string(b) != want {
			t.Fatalf("Float(%v) = %s, %v; want %s", f, b, err, want)
		}
	}
	if _, err := fiox.Float(math.NaN()).MarshalJSON(); !errors.Is(err, fiox.ErrNonFinite) {
		t.Fatalf("expected ErrNonFinite for NaN, got %v", err)
	}
	if _, err := fiox.Array(fiox.Float(math.Inf(1))).MarshalJSON(); !errors.Is(err, fiox.ErrNonFinite) {
		t.Fatalf("expected ErrNonFinite for +Inf, got %v", err)
	}
}

func TestObject_SetReplacesInPlace(t *testing.T) {
	var o fiox.Object
	o.Set("a", fiox.Int(1))
	o.Set("b", fiox.Int(2))
	o.Set("a", fiox.Int(3))
	if o.Len() != 2 {
		t.Fatalf("len = %d", o.Len())
	}
	k, v := o.At(0)
	if k != "a" || v.Int() != 3 {
		t.Fatalf("At(0) = %s %v", k, v.Int())
	}
	if _, ok := o.Get("missing"); ok {
		t.Fatalf("unexpected key")
	}
}

// TestEqual ignores key order and compares numbers by value.
func TestEqual(t *testing.T) {
	a := object("x", fiox.Number("1.0"), "y", fiox.Array(fiox.String("s")))
	b := object("y", fiox.Array(fiox.String("s")), "x", fiox.Int(1))
	if !fiox.Equal(a, b) {
		t.Fatalf("expected equal")
	}
	c := object("y", fiox.Array(fiox.String("s")), "x", fiox.Float(1.5))
	if fiox.Equal(a, c) {
		t.Fatalf("expected different numbers to differ")
	}
	if fiox.Equal(fiox.String("1"), fiox.Number("1")) {
		t.Fatalf("a string is not a number")
	}
	if fiox.Equal(object("x", fiox.Null()), object("y", fiox.Null())) {
		t.Fatalf("different keys")
	}
	if fiox.Equal(fiox.Datetime(fiox.LocalDate, "1979-05-27"), fiox.Datetime(fiox.LocalDateTime, "1979-05-27")) {
		t.Fatalf("datetime kinds differ")
	}
}
