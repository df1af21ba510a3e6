// Package logging provides the diagnostics sink shared by the CLI, the driver
// and the encoders. Without a log file, output goes to stderr unlocked. With a
// log file, the file is created on first use and every write+flush happens
// under the sink's mutex.
package logging

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/text"

	fiox "github.com/reoring/fiox"
)

// Options configure a Sink.
type Options struct {
	// File redirects diagnostics to a file, truncated when first opened.
	File string
	// Color enables ANSI colours on stderr. Files never get colours.
	Color bool
	// Debug enables Debugf output.
	Debug bool
}

// Sink is an explicit diagnostics handle implementing fiox.Logger.
type Sink struct {
	opts   Options
	stderr io.Writer

	mu           sync.Mutex
	file         *os.File
	buf          *bufio.Writer
	logger       *log.Logger
	triedFileSet bool
}

var _ fiox.Logger = (*Sink)(nil)

// New returns a sink writing to stderr or, when opts.File is set, to that file.
func New(stderr io.Writer, opts Options) *Sink {
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Sink{opts: opts, stderr: stderr}
}

func (s *Sink) setupFile() error {
	file, err := os.OpenFile(s.opts.File, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		return err
	}
	s.file = file
	s.buf = bufio.NewWriter(file)
	s.logger = log.New(s.buf, "", log.Ldate|log.Ltime)
	return nil
}

// toFile opens the log file on first use. It reports false when no file is
// configured or it could not be opened, in which case stderr is used.
func (s *Sink) toFile() bool {
	if s.opts.File == "" {
		return false
	}
	if s.file == nil && !s.triedFileSet {
		s.triedFileSet = true
		if err := s.setupFile(); err != nil {
			fmt.Fprintf(s.stderr, "failed to open log file %s: %v\n", s.opts.File, err)
		}
	}
	return s.file != nil
}

// write emits one complete entry and flushes it.
func (s *Sink) write(level, plain, colored string) {
	if s.opts.File == "" {
		fmt.Fprintln(s.stderr, colored)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.toFile() {
		fmt.Fprintln(s.stderr, colored)
		return
	}
	if level != "" {
		s.logger.Printf("[%s]: %s", level, plain)
	} else {
		s.buf.WriteString(plain)
		s.buf.WriteString("\n")
	}
	if err := s.buf.Flush(); err != nil {
		fmt.Fprintf(s.stderr, "failed to write log file %s: %v\n", s.opts.File, err)
	}
}

func (s *Sink) log(level string, color text.Color, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	s.write(level, msg, s.paint(color, level+":")+" "+msg)
}

func (s *Sink) Debugf(format string, args ...any) {
	if s.opts.Debug {
		s.log("debug", text.FgHiBlack, format, args...)
	}
}

func (s *Sink) Infof(format string, args ...any) {
	s.log("info", text.FgCyan, format, args...)
}

func (s *Sink) Warnf(format string, args ...any) {
	s.log("warn", text.FgYellow, format, args...)
}

func (s *Sink) Errorf(format string, args ...any) {
	s.log("error", text.FgRed, format, args...)
}

// Report renders a user-facing failure:
//
//	<error>
//	<excerpt, if any>
//	Hint: <hint, if any>
//
//	---
func (s *Sink) Report(err error) {
	if err == nil {
		return
	}
	var plain, colored strings.Builder
	plain.WriteString(err.Error())
	colored.WriteString(err.Error())
	if fe, ok := fiox.AsError(err); ok {
		if fe.Excerpt != "" {
			plain.WriteString("\n" + fe.Excerpt)
			colored.WriteString("\n" + fe.Excerpt)
		}
		if fe.Hint != "" {
			plain.WriteString("\nHint: " + fe.Hint)
			colored.WriteString("\n" + s.paint(text.FgHiGreen, "Hint:") + " " + s.paint(text.FgYellow, fe.Hint))
		}
	}
	plain.WriteString("\n\n---\n")
	colored.WriteString("\n\n" + s.paint(text.FgRed, "---") + "\n")
	s.write("", plain.String(), colored.String())
}

func (s *Sink) paint(c text.Color, msg string) string {
	if !s.opts.Color {
		return msg
	}
	return text.Colors{c}.Sprint(msg)
}

// Close flushes and closes the log file, if one was opened.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	ferr := s.buf.Flush()
	cerr := s.file.Close()
	s.file = nil
	if ferr != nil {
		return ferr
	}
	return cerr
}
