package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/reoring/fiox/config"
	"github.com/reoring/fiox/internal/logging"
	"github.com/reoring/fiox/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

const usageText = `fiox converts and validates JSON, TOML, CSV and NDJSON files.

Usage:
  fiox convert <input> <output> [--append] [--parse-numbers]
  fiox validate <input> [-v|--verbose] [--strict]

Global flags (before or after the sub-command):
  --log-file <path>   write diagnostics to a file instead of stderr
  --config <path>     YAML config file (default $FIOX_CONFIG)
  --no-color          disable coloured output (also NO_COLOR)

Exit status is 0 on success and 1 on any failure, usage errors included.
`

// exitFailure is the status of every failed run.
const exitFailure = 1

func usage(w io.Writer) { fmt.Fprint(w, usageText) }

type globals struct {
	logFile string
	config  string
	noColor bool
}

// register binds the global flags to fs. Current values become the defaults,
// so flags parsed before the sub-command survive.
func (g *globals) register(fs *flag.FlagSet) {
	fs.StringVar(&g.logFile, "log-file", g.logFile, "write diagnostics to this file")
	fs.StringVar(&g.config, "config", g.config, "YAML config file")
	fs.BoolVar(&g.noColor, "no-color", g.noColor, "disable coloured output")
}

// flagsSet records the flags explicitly given on the command line, so only
// those override the config file.
type flagsSet map[string]bool

func (s flagsSet) collect(fs *flag.FlagSet) {
	fs.Visit(func(f *flag.Flag) { s[f.Name] = true })
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }
	return fs
}

// parseInterspersed lets flags follow positional arguments, which the flag
// package does not do by itself. Everything after "--" is positional.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return pos, nil
		}
		if n := len(args) - len(rest); n > 0 && args[n-1] == "--" {
			return append(pos, rest...), nil
		}
		pos = append(pos, rest[0])
		args = rest[1:]
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var g globals
	set := flagsSet{}

	top := newFlagSet("fiox", stderr)
	g.register(top)
	if err := top.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return exitFailure
	}
	set.collect(top)
	rest := top.Args()
	if len(rest) == 0 {
		usage(stderr)
		return exitFailure
	}

	switch rest[0] {
	case "convert":
		return convertCmd(ctx, rest[1:], &g, set, stdout, stderr)
	case "validate":
		return validateCmd(ctx, rest[1:], &g, set, stdout, stderr)
	case "help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", rest[0])
		usage(stderr)
		return exitFailure
	}
}

// setup loads the config file, applies explicit global flags over it and
// builds the diagnostics sink.
func setup(g *globals, set flagsSet, stderr io.Writer, debug bool) (config.Config, *logging.Sink, bool) {
	cfg, err := config.Load(config.Discover(g.config))
	if err != nil {
		logging.New(stderr, logging.Options{Color: !g.noColor && os.Getenv("NO_COLOR") == ""}).Report(err)
		return cfg, nil, false
	}
	if set["log-file"] {
		cfg.LogFile = g.logFile
	}
	if set["no-color"] {
		cfg.Color = !g.noColor
	}
	if os.Getenv("NO_COLOR") != "" {
		cfg.Color = false
	}
	sink := logging.New(stderr, logging.Options{File: cfg.LogFile, Color: cfg.Color, Debug: debug})
	return cfg, sink, true
}

func convertCmd(ctx context.Context, args []string, g *globals, set flagsSet, stdout, stderr io.Writer) int {
	fs := newFlagSet("convert", stderr)
	g.register(fs)
	var appendOut, parseNumbers bool
	fs.BoolVar(&appendOut, "append", false, "append to the output instead of truncating it")
	fs.BoolVar(&parseNumbers, "parse-numbers", false, "emit numeric-looking fields as numbers")
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return exitFailure
	}
	set.collect(fs)
	if len(pos) != 2 {
		fmt.Fprintln(stderr, "convert needs exactly an input and an output path")
		usage(stderr)
		return exitFailure
	}

	cfg, sink, ok := setup(g, set, stderr, false)
	if !ok {
		return exitFailure
	}
	defer sink.Close()
	if set["append"] {
		cfg.Append = appendOut
	}
	if set["parse-numbers"] {
		cfg.ParseNumbers = parseNumbers
	}

	sum, err := pipeline.Convert(ctx, pos[0], pos[1], pipeline.Options{
		ParseNumbers: cfg.ParseNumbers,
		Append:       cfg.Append,
		BufferSize:   cfg.BufferSize,
		MaxDepth:     cfg.MaxDepth,
		Logger:       sink,
	})
	if err != nil {
		sink.Report(err)
		return exitFailure
	}
	fmt.Fprintln(stdout, sum)
	return 0
}

func validateCmd(ctx context.Context, args []string, g *globals, set flagsSet, stdout, stderr io.Writer) int {
	fs := newFlagSet("validate", stderr)
	g.register(fs)
	var verbose, strict bool
	fs.BoolVar(&verbose, "v", false, "show the offending line")
	fs.BoolVar(&verbose, "verbose", false, "show the offending line")
	fs.BoolVar(&strict, "strict", false, "treat duplicate JSON keys as errors")
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return exitFailure
	}
	set.collect(fs)
	if len(pos) != 1 {
		fmt.Fprintln(stderr, "validate needs exactly one input path")
		usage(stderr)
		return exitFailure
	}

	cfg, sink, ok := setup(g, set, stderr, verbose)
	if !ok {
		return exitFailure
	}
	defer sink.Close()
	if set["strict"] {
		cfg.Strict = strict
	}

	in := pos[0]
	err = pipeline.Validate(ctx, in, pipeline.Options{
		BufferSize: cfg.BufferSize,
		MaxDepth:   cfg.MaxDepth,
		Verbose:    verbose,
		Strict:     cfg.Strict,
		Logger:     sink,
	})
	if err != nil {
		sink.Report(err)
		return exitFailure
	}
	fmt.Fprintf(stdout, "Input file [%s] is valid!\n", in)
	return 0
}
