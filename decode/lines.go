package decode

import (
	"bufio"
	"bytes"
	"io"
)

// LineReader yields the lines of an input one at a time, reusing its buffer.
// Line terminators ("\n" or "\r\n") are stripped.
type LineReader struct {
	br   *bufio.Reader
	buf  []byte
	line int
}

// NewLineReader reads lines from r, reusing r's buffer when it has one.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{br: bufferOf(r)}
}

// Next returns the next line and its 1-based number. The slice is only valid
// until the following call. io.EOF is returned once the input is exhausted.
func (l *LineReader) Next() ([]byte, int, error) {
	l.buf = l.buf[:0]
	for {
		chunk, err := l.br.ReadSlice('\n')
		l.buf = append(l.buf, chunk...)
		if err == bufio.ErrBufferFull {
			continue
		}
		if err == io.EOF {
			if len(l.buf) == 0 {
				return nil, l.line, io.EOF
			}
			break
		}
		if err != nil {
			return nil, l.line, err
		}
		break
	}
	l.line++
	b := bytes.TrimSuffix(l.buf, []byte("\n"))
	b = bytes.TrimSuffix(b, []byte("\r"))
	return b, l.line, nil
}

// IsBlank reports whether a line holds only JSON whitespace.
func IsBlank(line []byte) bool {
	return len(bytes.Trim(line, " \t\r\n")) == 0
}
