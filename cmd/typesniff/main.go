// Command typesniff classifies tokens and inspects delimited, JSON and INI
// documents from the command line.
//
// Usage:
//
//	typesniff [-format json|yaml] [-log-level LEVEL] COMMAND [ARGS]
//
// Commands read the named file, or stdin when none is given.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/JonMunkholm/typesniff/internal/core"
	"github.com/JonMunkholm/typesniff/internal/logging"
)

// errUsage marks errors already explained by a usage message.
var errUsage = errors.New("usage")

// app holds what every command needs.
type app struct {
	service *core.Service
	logger  *slog.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	format  string
}

type command struct {
	usage string
	run   func(a *app, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"classify":    {"classify TOKEN...", runClassify},
	"datetime":    {"datetime TOKEN...", runDateTime},
	"formats":     {"formats", runFormats},
	"sniff":       {"sniff [-extra CHARS] [FILE]", runSniff},
	"json-schema": {"json-schema [-max-depth N] [FILE]", runJSONSchema},
	"ini":         {"ini [-section NAME]... [-env] FILE...", runINI},
	"extract":     {"extract -start S -end C [FILE]", runExtract},
	"match":       {"match -match S TOKEN...", runMatch},
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("typesniff", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", "json", "output format: json or yaml")
	level := fs.String("log-level", "warn", "log level: debug, info, warn, error")
	maxSize := fs.Int64("max-size", core.DefaultMaxDocumentSize, "maximum document size in bytes")
	fs.Usage = func() { printUsage(fs) }

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *format != "json" && *format != "yaml" {
		fmt.Fprintf(stderr, "unknown format %q\n", *format)
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", name)
		fs.Usage()
		return 2
	}

	logger := logging.New(stderr, *level, "text")
	slog.SetDefault(logger)
	a := &app{
		service: core.NewService(nil, nil, core.Options{MaxDocumentSize: *maxSize}),
		logger:  logger,
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
		format:  *format,
	}

	if err := cmd.run(a, ctx, fs.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "usage: typesniff %s\n", cmd.usage)
			return 2
		}
		logger.Debug("command failed", "command", name, "error", err)
		fmt.Fprintf(stderr, "typesniff %s: %s\n", name, core.FormatUserError(err))
		return 1
	}
	return 0
}

func printUsage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintln(out, "usage: typesniff [flags] COMMAND [ARGS]")
	fmt.Fprintln(out, "\ncommands:")
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(out, "  %s\n", commands[n].usage)
	}
	fmt.Fprintln(out, "\nflags:")
	fs.PrintDefaults()
}
