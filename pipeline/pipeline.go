// Package pipeline drives conversions and validations: it resolves formats
// from file extensions, picks the decoder and encoder from a single dispatch
// table and pulls records from one into the other.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	fiox "github.com/reoring/fiox"
	"github.com/reoring/fiox/decode"
	"github.com/reoring/fiox/encode"
	"github.com/reoring/fiox/validate"
)

// Options configure Convert and Validate.
type Options struct {
	// ParseNumbers emits numeric-looking CSV fields as numbers.
	ParseNumbers bool
	// Append appends to the output instead of truncating it.
	Append bool
	// BufferSize is the input buffer size (decode.DefaultBufferSize when 0).
	BufferSize int
	// MaxDepth limits JSON nesting (0 = unlimited).
	MaxDepth int
	// Verbose adds line excerpts to validation errors and reports duplicate
	// JSON keys as warnings.
	Verbose bool
	// Strict makes duplicate JSON keys validation errors.
	Strict bool
	Logger fiox.Logger
}

// Summary describes a finished conversion.
type Summary struct {
	Input        string
	Output       string
	InputFormat  fiox.Format
	OutputFormat fiox.Format
	Records      int
	Elapsed      time.Duration
}

func (s Summary) String() string {
	return fmt.Sprintf("Finished converting %s -> %s in %s", s.Input, s.Output, s.Elapsed)
}

// Decoder is the common decoder signature.
type Decoder func(r io.Reader, opts decode.Options) (fiox.Stream, error)

// Route pairs the decoder of an input format with the encoder of an output
// format.
type Route struct {
	Decode Decoder
	Encode encode.Func
}

type routeKey struct{ in, out fiox.Format }

var routes = buildRoutes()

func buildRoutes() map[routeKey]Route {
	decoders := map[fiox.Format]Decoder{
		fiox.FormatJSON:   decode.JSON,
		fiox.FormatTOML:   decode.TOML,
		fiox.FormatCSV:    decode.CSV,
		fiox.FormatNDJSON: decode.NDJSON,
	}
	m := make(map[routeKey]Route, len(decoders)*len(fiox.Formats))
	for in, dec := range decoders {
		for _, out := range fiox.Formats {
			enc, err := encode.For(out)
			if err != nil {
				panic(err)
			}
			m[routeKey{in, out}] = Route{Decode: dec, Encode: enc}
		}
	}
	return m
}

// RouteFor looks up the conversion route between two formats. Whether the
// decoded shape suits the encoder is only known once the input is decoded.
func RouteFor(in, out fiox.Format) (Route, error) {
	r, ok := routes[routeKey{in, out}]
	if !ok {
		return Route{}, fiox.Errorf(fiox.CodeUnsupportedFormat, "no conversion from %s to %s", in, out)
	}
	return r, nil
}

// checkInput reports a missing or unreadable input before anything is opened.
func checkInput(in string) (os.FileInfo, error) {
	if in == "" {
		return nil, fiox.Errorf(fiox.CodeMissingInput, "no input file given")
	}
	st, err := os.Stat(in)
	if err != nil {
		e := fiox.Errorf(fiox.CodeMissingInput, "input file %s doesn't exist", in)
		e.Path = in
		if !errors.Is(err, os.ErrNotExist) {
			e.Message = "cannot access input file " + in
			e.Cause = err
		}
		return nil, e
	}
	if st.IsDir() {
		e := fiox.Errorf(fiox.CodeMissingInput, "input %s is a directory", in)
		e.Path = in
		return nil, e
	}
	return st, nil
}

// Convert converts in to out, choosing formats by extension. Formats and the
// shape of the decoded stream are checked before the output is touched, so a
// failed conversion never truncates an existing file for a configuration
// error. A cancelled ctx stops the record pull loop.
func Convert(ctx context.Context, in, out string, opts Options) (Summary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	sum := Summary{Input: in, Output: out}
	log := fiox.LoggerOr(opts.Logger)

	ist, err := checkInput(in)
	if err != nil {
		return sum, err
	}
	if ost, err := os.Stat(out); err == nil && os.SameFile(ist, ost) {
		e := fiox.Errorf(fiox.CodeSameFile, "input and output are the same file")
		e.Path = out
		return sum, e
	}

	inF, err := fiox.FormatOf(in)
	if err != nil {
		return sum, fiox.WithContext(err, "failed to get input file's extension")
	}
	outF, err := fiox.FormatOf(out)
	if err != nil {
		return sum, fiox.WithContext(err, "failed to get output file's extension")
	}
	sum.InputFormat, sum.OutputFormat = inF, outF
	route, err := RouteFor(inF, outF)
	if err != nil {
		return sum, err
	}

	rd, err := decode.Open(in, opts.BufferSize)
	if err != nil {
		return sum, fiox.WithContext(err, "failed to open input file")
	}
	defer rd.Close()

	stream, err := route.Decode(rd, decode.Options{MaxDepth: opts.MaxDepth})
	if err != nil {
		return sum, fiox.WithContext(validate.Annotate(in, err, false), "failed to read input")
	}
	if ts, ok := stream.(*fiox.TableStream); ok && ts.Name == "" {
		ts.Name = fiox.Stem(in)
	}
	if err := encode.CheckShape(outF, stream); err != nil {
		return sum, fiox.WithContext(err, fmt.Sprintf("cannot convert %s to %s", inF, outF))
	}

	var decodeErr error
	it := fiox.IterWithContext(ctx, stream.Records())
	stream = fiox.WithIter(stream, fiox.IterFunc(func() (fiox.Record, error) {
		rec, err := it.Next()
		switch {
		case err == nil:
			sum.Records++
		case err != io.EOF:
			err = validate.Annotate(in, err, false)
			decodeErr = err
		}
		return rec, err
	}))

	f, err := openOutput(out, opts.Append)
	if err != nil {
		return sum, fiox.WithContext(err, "failed to open output file")
	}
	log.Debugf("converting %s (%s) -> %s (%s)", in, inF, out, outF)
	err = route.Encode(f, stream, encode.Options{ParseNumbers: opts.ParseNumbers, Logger: log})
	cerr := f.Close()
	if err != nil {
		if decodeErr != nil && err == decodeErr {
			return sum, fiox.WithContext(err, "failed to read input")
		}
		return sum, fiox.WithContext(err, "failed to write output")
	}
	if cerr != nil {
		e := &fiox.Error{Code: fiox.CodeEncode, Path: out, Message: "failed to close output", Cause: cerr, Offset: -1}
		return sum, e
	}
	sum.Elapsed = time.Since(start)
	return sum, nil
}

func openOutput(path string, appendMode bool) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, &fiox.Error{Code: fiox.CodeOpen, Path: path, Message: "cannot open output", Cause: err, Offset: -1}
	}
	return f, nil
}

// Validate checks that in is well formed, choosing the validator by extension.
func Validate(ctx context.Context, in string, opts Options) error {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if _, err := checkInput(in); err != nil {
		return err
	}
	dup := fiox.Ignore
	if opts.Verbose {
		dup = fiox.Warn
	}
	if opts.Strict {
		dup = fiox.Fail
	}
	err := validate.File(in, validate.Options{
		Verbose:       opts.Verbose,
		MaxDepth:      opts.MaxDepth,
		DuplicateKeys: dup,
		BufferSize:    opts.BufferSize,
		Logger:        opts.Logger,
	})
	return fiox.WithContext(err, "failed to validate input")
}
