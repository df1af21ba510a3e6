package encode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/require"

	fiox "github.com/reoring/fiox"
	"github.com/reoring/fiox/decode"
)

type recordingLogger struct {
	fiox.NopLogger
	warnings []string
}

func (l *recordingLogger) Warnf(format string, args ...any) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func obj(kv ...any) fiox.Value {
	o := fiox.NewObject(len(kv) / 2)
	for i := 0; i < len(kv); i += 2 {
		o.Set(kv[i].(string), kv[i+1].(fiox.Value))
	}
	return fiox.ObjectValue(o)
}

func values(single bool, vs ...fiox.Value) *fiox.ValueStream {
	recs := make([]fiox.Record, len(vs))
	for i, v := range vs {
		recs[i] = fiox.JSONRecord{Value: v}
	}
	return &fiox.ValueStream{Iter: fiox.SliceIter(recs...), Single: single}
}

func table(name string, headers []string, rows ...fiox.CSVRecord) *fiox.TableStream {
	recs := make([]fiox.Record, len(rows))
	for i, r := range rows {
		recs[i] = r
	}
	return &fiox.TableStream{Headers: headers, Iter: fiox.SliceIter(recs...), Name: name}
}

func TestNDJSON_Values(t *testing.T) {
	var buf bytes.Buffer
	s := values(false, obj("a", fiox.Number("1")), obj("a", fiox.Number("2")))
	require.NoError(t, NDJSON(&buf, s, Options{}))
	require.Equal(t, "{\"a\":1}\n{\"a\":2}\n", buf.String())
}

func TestNDJSON_ValuesNoHTMLEscape(t *testing.T) {
	var buf bytes.Buffer
	s := &fiox.NDJSONStream{Iter: fiox.SliceIter(fiox.JSONRecord{Value: fiox.String("<a&b>")})}
	require.NoError(t, NDJSON(&buf, s, Options{}))
	require.Equal(t, "\"<a&b>\"\n", buf.String())
}

func TestNDJSON_TableParseNumbers(t *testing.T) {
	var buf bytes.Buffer
	s := table("in", []string{"name", "age"},
		fiox.CSVRecord{"Ada", "36"},
		fiox.CSVRecord{"Grace", " 85"},
	)
	require.NoError(t, NDJSON(&buf, s, Options{ParseNumbers: true}))
	require.Equal(t, "{\"name\": \"Ada\", \"age\": 36}\n{\"name\": \"Grace\", \"age\": \" 85\"}\n", buf.String())
}

func TestNDJSON_TableEscapesFields(t *testing.T) {
	var buf bytes.Buffer
	s := table("in", []string{"q\"h"}, fiox.CSVRecord{"a\"b\nc"}, fiox.CSVRecord{"null"})
	require.NoError(t, NDJSON(&buf, s, Options{}))
	require.Equal(t, "{\"q\\\"h\": \"a\\\"b\\nc\"}\n{\"q\\\"h\": null}\n", buf.String())
}

func TestJSON_Single(t *testing.T) {
	var buf bytes.Buffer
	s := values(true, obj("a", fiox.Number("1"), "b", fiox.Array(fiox.Bool(true))))
	require.NoError(t, JSON(&buf, s, Options{}))
	require.Equal(t, "{\n  \"a\": 1,\n  \"b\": [\n    true\n  ]\n}\n", buf.String())
}

func TestJSON_Array(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	s := values(false, obj("a", fiox.Number("1")), obj("a", fiox.Number("2")))
	r.NoError(JSON(&buf, s, Options{}))
	r.Equal("[\n  {\n    \"a\": 1\n  },\n  {\n    \"a\": 2\n  }\n]\n", buf.String())

	buf.Reset()
	r.NoError(JSON(&buf, values(false), Options{}))
	r.Equal("[]\n", buf.String())

	// one-element arrays stay arrays
	buf.Reset()
	r.NoError(JSON(&buf, values(false, fiox.Number("1")), Options{}))
	r.Equal("[\n  1\n]\n", buf.String())
}

func TestJSON_Table(t *testing.T) {
	var buf bytes.Buffer
	s := table("in", []string{"name", "age"},
		fiox.CSVRecord{"Ada", "36"},
		fiox.CSVRecord{"Grace", " 85"},
	)
	require.NoError(t, JSON(&buf, s, Options{ParseNumbers: true}))
	want := `[
  {
    "name": "Ada",
    "age": 36
  },
  {
    "name": "Grace",
    "age": " 85"
  }
]
`
	require.Equal(t, want, buf.String())
}

func TestJSON_RoundTrip(t *testing.T) {
	r := require.New(t)
	inputs := []string{
		`[{"a":1,"b":[true,null,"x\ny"]},{"a":2.5e-3}]`,
		`{"z":{"y":[]},"a":"é","n":-0.0}`,
		`[1]`,
		`"scalar"`,
		`[]`,
	}
	for _, in := range inputs {
		orig := decodeAll(t, in)
		var buf bytes.Buffer
		s, err := decode.JSON(strings.NewReader(in), decode.Options{})
		r.NoError(err)
		r.NoError(JSON(&buf, s, Options{}))
		got := decodeAll(t, buf.String())
		r.True(fiox.Equal(orig, got), "%s -> %s", in, buf.String())
	}
}

// decodeAll reads a JSON document back into one value; array roots become an
// array value.
func decodeAll(t *testing.T, in string) fiox.Value {
	t.Helper()
	s, err := decode.JSON(strings.NewReader(in), decode.Options{})
	require.NoError(t, err)
	vs := s.(*fiox.ValueStream)
	var items []fiox.Value
	for {
		rec, err := vs.Iter.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		items = append(items, fiox.ValueOf(rec))
	}
	if vs.Single {
		return items[0]
	}
	return fiox.Array(items...)
}

func TestTOML_Document(t *testing.T) {
	r := require.New(t)
	var buf bytes.Buffer
	s := values(true, obj(
		"title", fiox.String("x"),
		"n", fiox.Number("3"),
		"f", fiox.Number("1.5"),
		"owner", obj("name", fiox.String("Ada")),
	))
	r.NoError(TOML(&buf, s, Options{}))

	var back map[string]any
	r.NoError(toml.Unmarshal(buf.Bytes(), &back))
	r.Equal("x", back["title"])
	r.Equal(int64(3), back["n"])
	r.Equal(1.5, back["f"])
	r.Equal(map[string]any{"name": "Ada"}, back["owner"])
}

func TestTOML_NullIsAnError(t *testing.T) {
	var buf bytes.Buffer
	s := values(true, obj("a", obj("b", fiox.Null())))
	fe, ok := fiox.AsError(TOML(&buf, s, Options{}))
	require.True(t, ok)
	require.Equal(t, fiox.CodeEncode, fe.Code)
	require.Equal(t, "/a/b", fe.Pointer)
}

func TestTOML_RequiresRootTable(t *testing.T) {
	r := require.New(t)
	var buf bytes.Buffer
	err := TOML(&buf, values(false, obj("a", fiox.Number("1"))), Options{})
	r.Equal(fiox.CodeShapeMismatch, fiox.CodeOf(err))

	err = TOML(&buf, values(true, fiox.Number("1")), Options{})
	r.Equal(fiox.CodeShapeMismatch, fiox.CodeOf(err))

	err = TOML(&buf, &fiox.NDJSONStream{Iter: fiox.SliceIter()}, Options{})
	r.Equal(fiox.CodeShapeMismatch, fiox.CodeOf(err))
}

func TestTOML_Table(t *testing.T) {
	r := require.New(t)
	var buf bytes.Buffer
	s := table("people", []string{"name", "age", "first seen"},
		fiox.CSVRecord{"Ada", "36", "007"},
		fiox.CSVRecord{"Grace", " 85", "null"},
	)
	r.NoError(TOML(&buf, s, Options{ParseNumbers: true}))
	r.Equal(`people = [
  { name = "Ada", age = 36, "first seen" = 7 },
  { name = "Grace", age = " 85", "first seen" = "null" },
]
`, buf.String())

	var back map[string]any
	r.NoError(toml.Unmarshal(buf.Bytes(), &back))
	rows := back["people"].([]any)
	r.Len(rows, 2)
	r.Equal(int64(36), rows[0].(map[string]any)["age"])
}

func TestTOML_TableDefaultNameAndStrings(t *testing.T) {
	r := require.New(t)
	var buf bytes.Buffer
	s := table("", []string{"v"}, fiox.CSVRecord{"1.0e10"}, fiox.CSVRecord{"tab\there"})
	r.NoError(TOML(&buf, s, Options{}))
	r.Equal("data = [\n  { v = \"1.0e10\" },\n  { v = \"tab\\there\" },\n]\n", buf.String())

	buf.Reset()
	r.NoError(TOML(&buf, table("", []string{"v"}, fiox.CSVRecord{"1e2"}), Options{ParseNumbers: true}))
	r.Equal("data = [\n  { v = 100.0 },\n]\n", buf.String())

	err := TOML(&buf, table("", []string{"a", "a"}), Options{})
	r.Equal(fiox.CodeEncode, fiox.CodeOf(err))
}

func TestCSV_ShapeGuard(t *testing.T) {
	r := require.New(t)
	var buf bytes.Buffer

	err := CSV(&buf, &fiox.NDJSONStream{Iter: fiox.SliceIter()}, Options{})
	fe, ok := fiox.AsError(err)
	r.True(ok)
	r.Equal(fiox.CodeShapeMismatch, fe.Code)
	r.Contains(fe.Message, "table")
	r.Contains(fe.Message, "ndjson")

	err = CSV(&buf, values(false), Options{})
	r.Equal(fiox.CodeShapeMismatch, fiox.CodeOf(err))
	r.Zero(buf.Len())
}

func TestCSV_Table(t *testing.T) {
	r := require.New(t)
	var buf bytes.Buffer
	log := &recordingLogger{}
	s := table("in", []string{"a", "b"},
		fiox.CSVRecord{"1", "x,y"},
		fiox.CSVRecord{"only"},
		fiox.CSVRecord{"a\"b", "c"},
	)
	r.NoError(CSV(&buf, s, Options{Logger: log}))
	r.Equal("a,b\n1,\"x,y\"\n,\n\"a\"\"b\",c\n", buf.String())
	r.Len(log.warnings, 1)
	r.Contains(log.warnings[0], "record 2")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestFlushFailureIsFatal(t *testing.T) {
	s := values(false, obj("a", fiox.Number("1")))
	err := NDJSON(failingWriter{}, s, Options{})
	fe, ok := fiox.AsError(err)
	require.True(t, ok)
	require.Equal(t, fiox.CodeEncode, fe.Code)
	require.ErrorContains(t, err, "disk full")
}

func TestFor(t *testing.T) {
	r := require.New(t)
	for _, f := range fiox.Formats {
		fn, err := For(f)
		r.NoError(err)
		r.NotNil(fn)
	}
	_, err := For("yaml")
	r.Equal(fiox.CodeUnsupportedFormat, fiox.CodeOf(err))
}

// TestNDJSON_TableStreamsInConstantMemory checks that the writer's
// allocations do not grow with the number of records.
func TestNDJSON_TableStreamsInConstantMemory(t *testing.T) {
	var rec fiox.Record = fiox.CSVRecord{"Ada", "36", "a\"b\nc", "true"}
	headers := []string{"name", "age", "note", "ok"}
	allocs := func(n int) float64 {
		return testing.AllocsPerRun(5, func() {
			i := 0
			it := fiox.IterFunc(func() (fiox.Record, error) {
				if i == n {
					return nil, io.EOF
				}
				i++
				return rec, nil
			})
			s := &fiox.TableStream{Headers: headers, Iter: it}
			if err := NDJSON(io.Discard, s, Options{ParseNumbers: true}); err != nil {
				t.Fatal(err)
			}
		})
	}
	small, large := allocs(100), allocs(100_000)
	require.LessOrEqual(t, large, small+5, "allocations grew with input size: %v -> %v", small, large)
}
