// Package position locates byte offsets in an input by rescanning it, and
// renders the offending line with a caret for verbose diagnostics.
package position

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxExcerpt bounds the rendered line so huge single-line inputs stay readable.
const maxExcerpt = 160

// Position is a 1-based line and column.
type Position struct {
	Line   int
	Column int
}

// Locate scans r up to offset and returns the line and column of that byte.
// Columns count runes. An offset past the end points just after the last byte.
func Locate(r io.Reader, offset int64) (Position, error) {
	br := bufio.NewReader(r)
	pos := Position{Line: 1, Column: 1}
	var lineStart []byte
	for i := int64(0); i < offset; i++ {
		c, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Position{}, err
		}
		if c == '\n' {
			pos.Line++
			pos.Column = 1
			lineStart = lineStart[:0]
			continue
		}
		lineStart = append(lineStart, c)
		if utf8.FullRune(lineStart) {
			pos.Column++
			lineStart = lineStart[:0]
		}
	}
	return pos, nil
}

// Line returns the text of the given 1-based line without its terminator.
func Line(r io.Reader, line int) (string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<30)
	for n := 1; sc.Scan(); n++ {
		if n == line {
			return strings.TrimSuffix(sc.Text(), "\r"), nil
		}
	}
	return "", sc.Err()
}

// Excerpt renders a line with a caret under the given 1-based column:
//
//	3 | {"a": tru}
//	  |       ^
//
// The caret is omitted when the column is unknown (0).
func Excerpt(text string, line, column int) string {
	runes := []rune(text)
	caret := column >= 1
	if !caret {
		column = 1
	}
	// keep the caret in view on long lines
	start := 0
	if len(runes) > maxExcerpt {
		start = column - maxExcerpt/2
		if start < 0 {
			start = 0
		}
		if start > len(runes)-maxExcerpt {
			start = len(runes) - maxExcerpt
		}
		runes = runes[start : start+maxExcerpt]
	}
	col := column - start
	if col < 1 {
		col = 1
	}

	num := strconv.Itoa(line)
	pad := strings.Repeat(" ", len(num))
	var b strings.Builder
	b.WriteString(num)
	b.WriteString(" | ")
	b.WriteString(strings.Map(untab, string(runes)))
	if !caret {
		return b.String()
	}
	b.WriteString("\n")
	b.WriteString(pad)
	b.WriteString(" | ")
	b.WriteString(strings.Repeat(" ", col-1))
	b.WriteString("^")
	return b.String()
}

func untab(r rune) rune {
	if r == '\t' {
		return ' '
	}
	return r
}
