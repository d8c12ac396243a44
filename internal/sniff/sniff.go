// Package sniff infers the dialect of delimited text: line separator, column
// separator, quoting character, header presence and one type per column.
//
// Row splitting is not quote-aware; cell splitting is. The heuristics mirror
// a set of hand-rolled rules rather than RFC 4180, quirks included.
package sniff

import (
	"context"
	"runtime"
	"strings"

	"github.com/JonMunkholm/typesniff/internal/classify"
	"golang.org/x/sync/errgroup"
)

// DefaultParallelThreshold is the number of data rows above which cell
// classification is spread over several goroutines.
const DefaultParallelThreshold = 2000

// Options tunes a Sniffer.
type Options struct {
	// ExtraHeaderChars are characters that, besides separators and newlines,
	// disqualify a first-row cell from being a header name.
	ExtraHeaderChars string

	// Workers bounds parallel row classification (default: GOMAXPROCS)
	Workers int

	// ParallelThreshold is the data row count that enables parallel
	// classification (default: 2000)
	ParallelThreshold int

	// Classifier classifies cells (default: classify defaults)
	Classifier *classify.Classifier
}

// Column describes one inferred column.
type Column struct {
	Name     string          `json:"name"`
	Position int             `json:"position"`
	Type     classify.Kind   `json:"type"`            // first non-null kind, Null when none
	Types    []classify.Kind `json:"types,omitempty"` // one per data row
	Zoned    bool            `json:"zoned"`           // a temporal cell carried a zone
}

// Schema is the inferred dialect of one document. It is read-only once
// returned.
type Schema struct {
	ContentLength   int      `json:"content_length"`
	LineSeparator   string   `json:"line_separator"`
	LineCount       int      `json:"line_count"`
	ColumnSeparator string   `json:"column_separator"`
	ColumnCount     int      `json:"column_count"`
	HasHeader       bool     `json:"has_header"`
	Header          []string `json:"header"`
	QuoteChar       string   `json:"quoting_character"`
	Columns         []Column `json:"columns"`
}

// DataRowCount is the number of rows after the header.
func (s *Schema) DataRowCount() int {
	if s.HasHeader {
		return s.LineCount - 1
	}
	return s.LineCount
}

// ColumnTypes returns the summary kind of every column.
func (s *Schema) ColumnTypes() []classify.Kind {
	out := make([]classify.Kind, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Type
	}
	return out
}

// Sniffer infers document schemas. It is safe for concurrent use.
type Sniffer struct {
	opts       Options
	classifier *classify.Classifier
	forbidden  string
}

// New returns a Sniffer with the given options.
func New(opts Options) *Sniffer {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.ParallelThreshold <= 0 {
		opts.ParallelThreshold = DefaultParallelThreshold
	}
	c := opts.Classifier
	if c == nil {
		c = classify.New(classify.Options{})
	}
	return &Sniffer{
		opts:       opts,
		classifier: c,
		forbidden:  headerForbidden + opts.ExtraHeaderChars,
	}
}

// Sniff infers the schema of content with default options plus the given
// extra header-disqualifying characters.
func Sniff(content, extraHeaderChars string) *Schema {
	s, _ := New(Options{ExtraHeaderChars: extraHeaderChars, Workers: 1}).Sniff(context.Background(), content)
	return s
}

// rowResult holds the classification of one data row.
type rowResult struct {
	kinds []classify.Kind
	zoned []bool
}

// Sniff infers the schema of content. The only error it returns is the
// context's, when parallel classification is cancelled.
func (s *Sniffer) Sniff(ctx context.Context, content string) (*Schema, error) {
	schema := &Schema{
		ContentLength:   len(content),
		LineSeparator:   DetectLineSeparator(content),
		ColumnSeparator: string(ColumnSeparators[0]),
		QuoteChar:       `"`,
	}

	rows := rowSpans(content, schema.LineSeparator)
	schema.LineCount = len(rows)
	if len(rows) == 0 {
		return schema, nil
	}

	first := content[rows[0].start:rows[0].end]
	sep, cells := bestSeparator(first)
	schema.ColumnSeparator = string(sep)
	schema.ColumnCount = len(cells)

	quotes := quoteCounter{}
	quotes.add(cells)

	if s.isHeader(cells) {
		schema.HasHeader = true
		schema.Header = make([]string, len(cells))
		for i, c := range cells {
			schema.Header[i] = Unquote(c)
		}
		rows = rows[1:]
	}

	results := make([]rowResult, len(rows))
	classifyRange := func(lo, hi int, qc *quoteCounter) {
		for i := lo; i < hi; i++ {
			cells := SplitCells(content[rows[i].start:rows[i].end], sep)
			qc.add(cells)
			r := rowResult{kinds: make([]classify.Kind, len(cells)), zoned: make([]bool, len(cells))}
			for j, cell := range cells {
				v := s.classifier.Classify(cell)
				r.kinds[j] = v.Kind
				r.zoned[j] = v.Kind.IsTemporal() && v.DateTime.Value.HasTZD
			}
			results[i] = r
		}
	}

	if len(rows) > s.opts.ParallelThreshold && s.opts.Workers > 1 {
		chunk := (len(rows) + s.opts.Workers - 1) / s.opts.Workers
		counters := make([]quoteCounter, s.opts.Workers)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.opts.Workers)
		for w := 0; w < s.opts.Workers; w++ {
			lo, hi := w*chunk, min((w+1)*chunk, len(rows))
			if lo >= hi {
				break
			}
			qc := &counters[w]
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				classifyRange(lo, hi, qc)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for _, qc := range counters {
			quotes.double += qc.double
			quotes.single += qc.single
		}
	} else {
		classifyRange(0, len(rows), &quotes)
	}

	for _, r := range results {
		schema.ColumnCount = max(schema.ColumnCount, len(r.kinds))
	}
	schema.QuoteChar = quotes.char()
	schema.Columns = buildColumns(schema, results)
	return schema, nil
}

// bestSeparator splits the first row with every candidate and keeps the one
// producing the most cells; ties go to the earlier candidate.
func bestSeparator(row string) (byte, []string) {
	best := ColumnSeparators[0]
	bestCells := SplitCells(row, best)
	for _, sep := range ColumnSeparators[1:] {
		if cells := SplitCells(row, sep); len(cells) > len(bestCells) {
			best, bestCells = sep, cells
		}
	}
	return best, bestCells
}

// isHeader accepts the first row as a header when every cell is either a
// NaN-like sentinel or a plain string free of separator characters. An empty
// cell is neither, so it makes the row data.
func (s *Sniffer) isHeader(cells []string) bool {
	for _, cell := range cells {
		if classify.IsNaN(cell) {
			continue
		}
		if s.classifier.Classify(cell).Kind != classify.KindString || strings.ContainsAny(cell, s.forbidden) {
			return false
		}
	}
	return true
}

func buildColumns(schema *Schema, results []rowResult) []Column {
	cols := make([]Column, schema.ColumnCount)
	for pos := range cols {
		col := Column{Position: pos, Type: classify.KindNull, Types: make([]classify.Kind, len(results))}
		if pos < len(schema.Header) {
			col.Name = schema.Header[pos]
		}
		for i, r := range results {
			kind := classify.KindNull
			if pos < len(r.kinds) {
				kind = r.kinds[pos]
				col.Zoned = col.Zoned || r.zoned[pos]
			}
			col.Types[i] = kind
			if col.Type == classify.KindNull {
				col.Type = kind
			}
		}
		cols[pos] = col
	}
	return cols
}

// quoteCounter tallies quoted cells per quote character.
type quoteCounter struct {
	double, single int
}

func (q *quoteCounter) add(cells []string) {
	for _, c := range cells {
		switch quotedWith(c) {
		case '"':
			q.double++
		case '\'':
			q.single++
		}
	}
}

func (q *quoteCounter) char() string {
	if q.single > q.double {
		return "'"
	}
	return `"`
}
