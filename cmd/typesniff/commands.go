package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/JonMunkholm/typesniff/internal/avroschema"
	"github.com/JonMunkholm/typesniff/internal/core"
	"github.com/JonMunkholm/typesniff/internal/datetime"
	"github.com/JonMunkholm/typesniff/internal/ini"
)

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// input opens the single optional file argument, falling back to stdin.
func (a *app) input(args []string) (io.ReadCloser, error) {
	switch len(args) {
	case 0:
		return io.NopCloser(a.stdin), nil
	case 1:
		if args[0] == "-" {
			return io.NopCloser(a.stdin), nil
		}
		f, err := os.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		return f, nil
	default:
		return nil, errUsage
	}
}

// tokens returns args, or the lines of stdin when there are none.
func (a *app) tokens(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	var out []string
	scanner := bufio.NewScanner(a.stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		out = append(out, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read tokens: %w", err)
	}
	if len(out) == 0 {
		return nil, errUsage
	}
	return out, nil
}

func runClassify(a *app, ctx context.Context, args []string) error {
	tokens, err := a.tokens(args)
	if err != nil {
		return err
	}
	values, err := a.service.ClassifyBatch(ctx, tokens)
	if err != nil {
		return err
	}
	return a.write(values)
}

type dateTimeMatch struct {
	Token   string `json:"token" yaml:"token"`
	Matched bool   `json:"matched" yaml:"matched"`
	Kind    string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Format  string `json:"format,omitempty" yaml:"format,omitempty"`
	Value   string `json:"value,omitempty" yaml:"value,omitempty"`
}

func runDateTime(a *app, ctx context.Context, args []string) error {
	tokens, err := a.tokens(args)
	if err != nil {
		return err
	}
	out := make([]dateTimeMatch, len(tokens))
	for i, tok := range tokens {
		out[i].Token = tok
		if res, ok := a.service.RecognizeDateTime(tok); ok {
			out[i].Matched = true
			out[i].Kind = res.Kind.String()
			out[i].Format = res.Format
			out[i].Value = res.String()
		}
	}
	return a.write(out)
}

func runFormats(a *app, ctx context.Context, args []string) error {
	if len(args) > 0 {
		return errUsage
	}
	return a.write(datetime.Formats())
}

func runSniff(a *app, ctx context.Context, args []string) error {
	fs := a.flags("sniff")
	extra := fs.String("extra", "", "extra characters that disqualify a header cell")
	arrowPath := fs.String("arrow", "", "also write the typed rows as an Arrow IPC stream to this path")
	types := fs.Bool("types", false, "keep per-row kinds in the output")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	in, err := a.input(fs.Args())
	if err != nil {
		return err
	}
	defer in.Close()

	doc, err := a.service.ReadDocument(in)
	if err != nil {
		return err
	}
	req := core.SniffRequest{ExtraHeaderChars: *extra}
	res, err := a.service.SniffContent(ctx, doc.Content, req)
	if err != nil {
		return err
	}

	if *arrowPath != "" {
		if err := a.writeArrow(ctx, *arrowPath, doc.Content, req); err != nil {
			return err
		}
	}

	if !*types {
		for i := range res.Schema.Columns {
			res.Schema.Columns[i].Types = nil
		}
	}
	return a.write(res)
}

func (a *app) writeArrow(ctx context.Context, path, content string, req core.SniffRequest) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create arrow output: %w", err)
	}
	rows, err := a.service.ExportArrow(ctx, f, content, req)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	a.logger.Info("arrow stream written", "path", path, "rows", rows)
	return nil
}

func runJSONSchema(a *app, ctx context.Context, args []string) error {
	fs := a.flags("json-schema")
	maxDepth := fs.Int("max-depth", 10000, "maximum nesting depth")
	root := fs.String("name", "root", "name of the root record")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	in, err := a.input(fs.Args())
	if err != nil {
		return err
	}
	defer in.Close()

	doc, err := a.service.ReadDocument(in)
	if err != nil {
		return err
	}
	schema, err := avroschema.Infer([]byte(doc.Content), avroschema.Options{MaxDepth: *maxDepth, RootName: *root})
	if err != nil {
		return err
	}
	return a.write(schema)
}

// listFlag collects a repeated string flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func runINI(a *app, ctx context.Context, args []string) error {
	fs := a.flags("ini")
	var sections, keys listFlag
	fs.Var(&sections, "section", "section to resolve (repeatable; default: all)")
	fs.Var(&keys, "key", "OUT=CANDIDATE[,CANDIDATE...] key mapping (repeatable; default: all entries)")
	env := fs.Bool("env", false, "consult environment variables for missing keys")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	req := ini.Request{
		Files:   map[string][]string{"": fs.Args()},
		EvalEnv: *env,
	}
	if len(sections) > 0 {
		req.Sections = sections
	}
	if len(keys) > 0 {
		req.Keys = make(map[string][]string, len(keys))
		for _, k := range keys {
			out, candidates, ok := strings.Cut(k, "=")
			if !ok || out == "" || candidates == "" {
				return fmt.Errorf("invalid -key %q, want OUT=CANDIDATE[,CANDIDATE...]", k)
			}
			req.Keys[out] = strings.Split(candidates, ",")
		}
	}

	result, err := a.service.LoadINI(ctx, req)
	if err != nil {
		return err
	}
	return a.write(result)
}

func runExtract(a *app, ctx context.Context, args []string) error {
	fs := a.flags("extract")
	start := fs.String("start", "", "marker preceding each value")
	end := fs.String("end", "", `single character ending each value (escapes such as \n allowed)`)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *start == "" {
		return errUsage
	}
	endByte, err := parseEndChar(*end)
	if err != nil {
		return err
	}

	in, err := a.input(fs.Args())
	if err != nil {
		return err
	}
	defer in.Close()

	doc, err := a.service.ReadDocument(in)
	if err != nil {
		return err
	}
	return a.write(core.ExtractBetween(doc.Content, *start, endByte))
}

// parseEndChar accepts one byte, written literally or as a Go escape.
func parseEndChar(s string) (byte, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	if u, err := strconv.Unquote(`"` + s + `"`); err == nil && len(u) == 1 {
		return u[0], nil
	}
	return 0, fmt.Errorf("invalid -end %q, want a single character", s)
}

type matchResult struct {
	Token string `json:"token" yaml:"token"`
	Match bool   `json:"match" yaml:"match"`
}

func runMatch(a *app, ctx context.Context, args []string) error {
	fs := a.flags("match")
	match := fs.String("match", "", "substring to look for")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	tokens, err := a.tokens(fs.Args())
	if err != nil {
		return err
	}

	hits := core.ApplyMatch(tokens, *match)
	out := make([]matchResult, len(tokens))
	for i, tok := range tokens {
		out[i] = matchResult{Token: tok, Match: hits[i]}
	}
	return a.write(out)
}
