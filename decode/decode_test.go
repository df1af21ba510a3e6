package decode

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	fiox "github.com/reoring/fiox"
)

func drain(t *testing.T, it fiox.RecordIter) []fiox.Record {
	t.Helper()
	var out []fiox.Record
	for {
		rec, err := it.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, rec)
	}
}

func drainErr(it fiox.RecordIter) error {
	for {
		_, err := it.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func TestOpen(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()
	p := filepath.Join(dir, "in.json")
	r.NoError(os.WriteFile(p, []byte(`{"a":1}`), 0o644))

	rd, err := Open(p, 0)
	r.NoError(err)
	defer rd.Close()
	r.Equal(p, rd.Path())
	b, err := io.ReadAll(rd)
	r.NoError(err)
	r.Equal(`{"a":1}`, string(b))

	_, err = Open(filepath.Join(dir, "missing.json"), 0)
	r.Equal(fiox.CodeOpen, fiox.CodeOf(err))
}

func TestJSON_ArrayIsStreamed(t *testing.T) {
	r := require.New(t)
	s, err := JSON(strings.NewReader(`[{"a":1},{"a":2}, 3]`), Options{})
	r.NoError(err)
	vs := s.(*fiox.ValueStream)
	r.False(vs.Single)

	recs := drain(t, vs.Iter)
	r.Len(recs, 3)
	got, _ := fiox.ValueOf(recs[1]).Object().Get("a")
	r.Equal("2", got.Text())
	r.Equal(fiox.KindNumber, fiox.ValueOf(recs[2]).Kind())
}

func TestJSON_SingleRoot(t *testing.T) {
	r := require.New(t)
	s, err := JSON(strings.NewReader(`{"b":[1,2],"a":null}`), Options{})
	r.NoError(err)
	vs := s.(*fiox.ValueStream)
	r.True(vs.Single)
	recs := drain(t, vs.Iter)
	r.Len(recs, 1)
	r.Equal([]string{"b", "a"}, fiox.ValueOf(recs[0]).Object().Keys())
}

func TestJSON_Errors(t *testing.T) {
	r := require.New(t)

	_, err := JSON(strings.NewReader(``), Options{})
	r.Equal(fiox.CodeDecode, fiox.CodeOf(err))

	_, err = JSON(strings.NewReader(`{"a":1} {"b":2}`), Options{})
	fe, ok := fiox.AsError(err)
	r.True(ok)
	r.Contains(fe.Message, "trailing data")

	s, err := JSON(strings.NewReader(`[{"a":1},{"a":`), Options{})
	r.NoError(err)
	err = drainErr(s.Records())
	fe, ok = fiox.AsError(err)
	r.True(ok)
	r.Equal(fiox.CodeDecode, fe.Code)
	r.Equal(fiox.VerboseHint, fe.Hint)

	// the stream stays failed
	_, again := s.Records().Next()
	r.Equal(err, again)
}

func TestJSON_MaxDepth(t *testing.T) {
	r := require.New(t)
	s, err := JSON(strings.NewReader(`[{"a":{"b":{}}}]`), Options{MaxDepth: 3})
	r.NoError(err)
	fe, ok := fiox.AsError(drainErr(s.Records()))
	r.True(ok)
	r.Equal("/0/a/b", fe.Pointer)
}

func TestNDJSON(t *testing.T) {
	r := require.New(t)
	s, err := NDJSON(strings.NewReader("{\"a\":1}\r\n\n   \n[true]\n\"x\""), Options{})
	r.NoError(err)
	r.Equal(fiox.ShapeNDJSON, s.Shape())
	recs := drain(t, s.Records())
	r.Len(recs, 3)
	r.Equal("x", fiox.ValueOf(recs[2]).Text())
}

func TestNDJSON_BadLineNumber(t *testing.T) {
	r := require.New(t)
	s, err := NDJSON(strings.NewReader("{\"a\":1}\n\n{\"a\":}\n{\"a\":3}\n"), Options{})
	r.NoError(err)

	rec, err := s.Records().Next()
	r.NoError(err)
	r.NotNil(rec)

	_, err = s.Records().Next()
	fe, ok := fiox.AsError(err)
	r.True(ok)
	r.Equal(3, fe.Line)
	r.Equal(fiox.CodeDecode, fe.Code)
}

func TestNDJSON_TwoValuesOnOneLine(t *testing.T) {
	s, err := NDJSON(strings.NewReader("1 2\n"), Options{})
	require.NoError(t, err)
	fe, ok := fiox.AsError(drainErr(s.Records()))
	require.True(t, ok)
	require.Equal(t, 1, fe.Line)
}

func TestLineReader_LongLines(t *testing.T) {
	r := require.New(t)
	long := strings.Repeat("x", DefaultBufferSize+10)
	lr := NewLineReader(strings.NewReader(long + "\nshort"))

	line, n, err := lr.Next()
	r.NoError(err)
	r.Equal(1, n)
	r.Len(line, len(long))

	line, n, err = lr.Next()
	r.NoError(err)
	r.Equal(2, n)
	r.Equal("short", string(line))

	_, _, err = lr.Next()
	r.Equal(io.EOF, err)
}

func TestCSV(t *testing.T) {
	r := require.New(t)
	s, err := CSV(strings.NewReader("name,age\nAda,36\nGrace,\" 85\"\n"), Options{})
	r.NoError(err)
	ts := s.(*fiox.TableStream)
	r.Equal([]string{"name", "age"}, ts.Headers)

	recs := drain(t, ts.Iter)
	r.Len(recs, 2)
	r.Equal(fiox.CSVRecord{"Grace", " 85"}, fiox.FieldsOf(recs[1]))
}

func TestCSV_Errors(t *testing.T) {
	r := require.New(t)

	_, err := CSV(strings.NewReader(""), Options{})
	fe, ok := fiox.AsError(err)
	r.True(ok)
	r.Contains(fe.Message, "header")

	_, err = CSV(strings.NewReader("a,\xff\n1,2\n"), Options{})
	fe, ok = fiox.AsError(err)
	r.True(ok)
	r.Equal(2, fe.Column)
	r.Contains(fe.Message, "UTF-8")

	s, err := CSV(strings.NewReader("a,b\n1,2\n3\n"), Options{})
	r.NoError(err)
	fe, ok = fiox.AsError(drainErr(s.Records()))
	r.True(ok)
	r.Equal(3, fe.Line)
	r.Contains(fe.Message, "number of fields")
}

func TestTOML(t *testing.T) {
	r := require.New(t)
	s, err := TOML(strings.NewReader("title = \"x\"\n[owner]\nname=\"Ada\"\n"), Options{})
	r.NoError(err)
	vs := s.(*fiox.ValueStream)
	r.True(vs.Single)

	recs := drain(t, vs.Iter)
	r.Len(recs, 1)
	r.Equal(fiox.FormatTOML, recs[0].Format())

	owner, ok := fiox.ValueOf(recs[0]).Object().Get("owner")
	r.True(ok)
	name, _ := owner.Object().Get("name")
	r.Equal("Ada", name.Text())
}

func TestTOML_ErrorPosition(t *testing.T) {
	r := require.New(t)
	_, err := TOML(strings.NewReader("a = 1\nb = \n"), Options{})
	fe, ok := fiox.AsError(err)
	r.True(ok)
	r.Equal(fiox.CodeDecode, fe.Code)
	r.Equal(2, fe.Line)
}

// malformedJSON lists documents with misplaced, missing or extra separators.
var malformedJSON = []string{
	`[1 2]`,
	`[1,,2]`,
	`[1,]`,
	`[1:2]`,
	`{"a" 1}`,
	`{"a":1,}`,
	`{"a":1 "b":2}`,
	`{"a":}`,
	`{"a": }`,
	`[{"a" 1},,{"b":2 "c":3}]`,
}

func TestJSON_RejectsMalformedSeparators(t *testing.T) {
	for _, in := range malformedJSON {
		s, err := JSON(strings.NewReader(in), Options{})
		if err == nil {
			err = drainErr(s.Records())
		}
		fe, ok := fiox.AsError(err)
		require.True(t, ok, "%s: got %v", in, err)
		require.Equal(t, fiox.CodeDecode, fe.Code, in)
		require.GreaterOrEqual(t, fe.Offset, int64(0), in)
	}
}

func TestNDJSON_RejectsMalformedSeparators(t *testing.T) {
	for _, in := range malformedJSON {
		s, err := NDJSON(strings.NewReader("{\"ok\":true}\n"+in+"\n"), Options{})
		require.NoError(t, err)
		fe, ok := fiox.AsError(drainErr(s.Records()))
		require.True(t, ok, in)
		require.Equal(t, 2, fe.Line, in)
		require.Positive(t, fe.Column, in)
	}
}
