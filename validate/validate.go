// Package validate checks that an input file is well formed without producing
// output. Each validator streams the file through its format's parser and
// keeps nothing; the first defect is reported with the file, its line and,
// when Verbose is set, an excerpt of the offending line.
package validate

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/valyala/fastjson"

	fiox "github.com/reoring/fiox"
	"github.com/reoring/fiox/decode"
	eng "github.com/reoring/fiox/internal/engine"
	"github.com/reoring/fiox/internal/position"
)

// Options tune the validators.
type Options struct {
	// Verbose attaches an excerpt of the offending line and logs warnings.
	Verbose bool
	// MaxDepth limits JSON nesting (0 = unlimited).
	MaxDepth int
	// DuplicateKeys decides how repeated JSON object keys are treated.
	DuplicateKeys fiox.Severity
	// BufferSize overrides decode.DefaultBufferSize.
	BufferSize int
	Logger     fiox.Logger
}

// Func is the common validator signature.
type Func func(path string, opts Options) error

// For returns the validator for a format.
func For(f fiox.Format) (Func, error) {
	switch f {
	case fiox.FormatJSON:
		return JSON, nil
	case fiox.FormatTOML:
		return TOML, nil
	case fiox.FormatCSV:
		return CSV, nil
	case fiox.FormatNDJSON:
		return NDJSON, nil
	}
	_, err := fiox.ParseFormat(string(f))
	return nil, err
}

// File validates path with the validator chosen by its extension.
func File(path string, opts Options) error {
	f, err := fiox.FormatOf(path)
	if err != nil {
		return err
	}
	fn, err := For(f)
	if err != nil {
		return err
	}
	return fn(path, opts)
}

func (o Options) enforce() eng.EnforceOptions {
	log := fiox.LoggerOr(o.Logger)
	return eng.EnforceOptions{
		OnDuplicate: o.DuplicateKeys,
		MaxDepth:    o.MaxDepth,
		OnIssue: func(is eng.Issue) {
			log.Warnf("%s at %s", is.Message, is.Pointer)
		},
	}
}

// JSON validates a JSON document: one root value, nothing after it.
func JSON(path string, opts Options) error {
	rd, err := decode.Open(path, opts.BufferSize)
	if err != nil {
		return err
	}
	defer rd.Close()
	err = decode.Options{MaxDepth: opts.MaxDepth}.ScanJSON(rd, opts.enforce())
	return Annotate(path, err, opts.Verbose)
}

// NDJSON validates one JSON value per non-blank line with fastjson. Depth and
// duplicate-key checks, when requested, go through the token engine.
func NDJSON(path string, opts Options) error {
	rd, err := decode.Open(path, opts.BufferSize)
	if err != nil {
		return err
	}
	defer rd.Close()

	strictLines := opts.MaxDepth > 0 || opts.DuplicateKeys != fiox.Ignore
	dopts := decode.Options{MaxDepth: opts.MaxDepth}
	lines := decode.NewLineReader(rd)
	for {
		line, n, err := lines.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return Annotate(path, &fiox.Error{Code: fiox.CodeDecode, Message: "failed to read input", Cause: err, Offset: -1}, false)
		}
		if decode.IsBlank(line) {
			continue
		}
		if err := fastjson.ValidateBytes(line); err != nil {
			e := &fiox.Error{Code: fiox.CodeDecode, Line: n, Message: "invalid JSON", Cause: err, Hint: fiox.VerboseHint, Offset: -1}
			return Annotate(path, e, opts.Verbose)
		}
		if strictLines {
			if err := dopts.ScanJSON(bytes.NewReader(line), opts.enforce()); err != nil {
				e, _ := fiox.AsError(err)
				e.Line = n
				if e.Offset >= 0 {
					e.Column = int(e.Offset) + 1
				}
				e.Offset = -1
				return Annotate(path, e, opts.Verbose)
			}
		}
	}
}

// CSV validates a CSV file by running it through the CSV decoder: the header
// row must exist and be UTF-8, and every record must match its arity.
func CSV(path string, opts Options) error {
	rd, err := decode.Open(path, opts.BufferSize)
	if err != nil {
		return err
	}
	defer rd.Close()

	s, err := decode.CSV(rd, decode.Options{})
	if err != nil {
		return Annotate(path, err, opts.Verbose)
	}
	it := s.Records()
	for {
		if _, err := it.Next(); err != nil {
			if err == io.EOF {
				return nil
			}
			return Annotate(path, err, opts.Verbose)
		}
	}
}

// TOML validates a TOML document with go-toml. In verbose mode the excerpt is
// go-toml's own rendering of the error context.
func TOML(path string, opts Options) error {
	rd, err := decode.Open(path, opts.BufferSize)
	if err != nil {
		return err
	}
	defer rd.Close()

	var doc any
	err = toml.NewDecoder(rd).Decode(&doc)
	if err == nil {
		return nil
	}
	e := &fiox.Error{Code: fiox.CodeDecode, Message: "invalid TOML", Cause: err, Hint: fiox.VerboseHint, Offset: -1}
	var de *toml.DecodeError
	if errors.As(err, &de) {
		e.Line, e.Column = de.Position()
		e.Message = de.Error()
		e.Cause = nil
		if opts.Verbose {
			e.Excerpt = de.String()
		}
	}
	return Annotate(path, e, opts.Verbose)
}

// Annotate fills in what a decode error needs to be located in path: the
// path itself, a line and column derived from the byte offset, and with
// excerpt set, the offending line with a caret. Other errors are returned
// unchanged.
func Annotate(path string, err error, excerpt bool) error {
	fe, ok := fiox.AsError(err)
	if !ok || fe.Code != fiox.CodeDecode {
		return err
	}
	cp := *fe
	if cp.Path == "" {
		cp.Path = path
	}
	if cp.Line == 0 && cp.Offset >= 0 {
		if pos, perr := locate(path, cp.Offset); perr == nil {
			cp.Line, cp.Column = pos.Line, pos.Column
		}
	}
	if excerpt {
		cp.Hint = ""
		if cp.Excerpt == "" && cp.Line > 0 {
			if text, lerr := lineOf(path, cp.Line); lerr == nil {
				cp.Excerpt = position.Excerpt(text, cp.Line, cp.Column)
			}
		}
	}
	return &cp
}

func locate(path string, offset int64) (position.Position, error) {
	f, err := os.Open(path)
	if err != nil {
		return position.Position{}, err
	}
	defer f.Close()
	return position.Locate(f, offset)
}

func lineOf(path string, line int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return position.Line(f, line)
}
