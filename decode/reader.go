// Package decode turns input files into lazy record streams: JSON and NDJSON
// through the encoding/json token source, CSV through encoding/csv and TOML
// through pelletier/go-toml/v2.
package decode

import (
	"bufio"
	"io"
	"os"

	fiox "github.com/reoring/fiox"
)

// DefaultBufferSize is the read buffer used for every input.
const DefaultBufferSize = 256 << 10

// Reader is a buffered input file.
type Reader struct {
	buf  *bufio.Reader
	f    *os.File
	path string
}

// Open opens path for reading behind a buffer of size bytes (DefaultBufferSize
// when size <= 0). Failures are reported as CodeOpen errors; there are no
// retries.
func Open(path string, size int) (*Reader, error) {
	if size <= 0 {
		size = DefaultBufferSize
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &fiox.Error{Code: fiox.CodeOpen, Path: path, Message: "failed to open input", Cause: err, Offset: -1}
	}
	return &Reader{buf: bufio.NewReaderSize(f, size), f: f, path: path}, nil
}

func (r *Reader) Read(p []byte) (int, error) { return r.buf.Read(p) }

func (r *Reader) Close() error { return r.f.Close() }

// Path returns the path the reader was opened with.
func (r *Reader) Path() string { return r.path }

// bufferOf reuses the buffer of r when it already has one.
func bufferOf(r io.Reader) *bufio.Reader {
	switch t := r.(type) {
	case *Reader:
		return t.buf
	case *bufio.Reader:
		return t
	}
	return bufio.NewReaderSize(r, DefaultBufferSize)
}
