package web

// report.go renders the HTML sniff report. Components are written as
// templ.ComponentFunc values so the page needs no code generation step.

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/typesniff/internal/core"
	"github.com/JonMunkholm/typesniff/internal/sniff"
)

// maxReportRows caps the per-row kind preview.
const maxReportRows = 20

const reportStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2937}
table{border-collapse:collapse;margin:1rem 0}th,td{border:1px solid #d1d5db;padding:.3rem .6rem;text-align:left}
th{background:#f3f4f6}.kind{font-family:monospace}.alert{border:1px solid #fca5a5;background:#fef2f2;padding:1rem}
textarea{width:100%;height:12rem;font-family:monospace}`

const reportScript = `document.getElementById("sniff").addEventListener("submit", async (e) => {
  e.preventDefault();
  const body = document.getElementById("doc").value;
  const res = await fetch("/report", {method: "POST", body: body, headers: {"Accept": "text/html"}});
  document.getElementById("result").innerHTML = await res.text();
});`

// reportPage is the full page with an input form and an empty result area.
func reportPage() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<!doctype html><html lang="en"><head><meta charset="utf-8"><title>typesniff report</title><style>`+
			reportStyle+`</style></head><body><h1>Sniff a document</h1>`+
			`<form id="sniff"><textarea id="doc" placeholder="Paste delimited text"></textarea><button type="submit">Sniff</button></form>`+
			`<div id="result"></div><script>`+reportScript+`</script></body></html>`)
		return err
	})
}

// schemaReport renders the summary and column table of a sniff result.
func schemaReport(res *core.SniffResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		s := res.Schema
		var b strings.Builder

		b.WriteString(`<section class="report"><h2>Dialect</h2><table>`)
		row := func(k, v string) {
			fmt.Fprintf(&b, `<tr><th>%s</th><td>%s</td></tr>`, k, templ.EscapeString(v))
		}
		row("Bytes", fmt.Sprint(res.Bytes))
		row("Line separator", visible(s.LineSeparator))
		row("Column separator", visible(s.ColumnSeparator))
		row("Quote character", s.QuoteChar)
		row("Header", fmt.Sprint(s.HasHeader))
		row("Rows", fmt.Sprint(s.DataRowCount()))
		row("Columns", fmt.Sprint(s.ColumnCount))
		row("Duration", res.Duration.String())
		b.WriteString(`</table>`)

		b.WriteString(`<h2>Columns</h2><table><tr><th>#</th><th>Name</th><th>Type</th><th>Postgres</th><th>Zoned</th></tr>`)
		cols := core.IngestColumns(s)
		for i, c := range s.Columns {
			name := c.Name
			if name == "" {
				name = cols[i].Name
			}
			fmt.Fprintf(&b, `<tr><td>%d</td><td>%s</td><td class="kind">%s</td><td class="kind">%s</td><td>%v</td></tr>`,
				c.Position+1, templ.EscapeString(name), c.Type, cols[i].PgType, c.Zoned)
		}
		b.WriteString(`</table>`)

		writeKindGrid(&b, s)
		b.WriteString(`</section>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// writeKindGrid renders the per-row kinds of the first rows.
func writeKindGrid(b *strings.Builder, s *sniff.Schema) {
	rows := min(s.DataRowCount(), maxReportRows)
	if rows == 0 || len(s.Columns) == 0 {
		return
	}
	fmt.Fprintf(b, `<h2>Cell kinds (first %d rows)</h2><table>`, rows)
	for i := 0; i < rows; i++ {
		b.WriteString(`<tr>`)
		for _, c := range s.Columns {
			kind := ""
			if i < len(c.Types) {
				kind = c.Types[i].String()
			}
			fmt.Fprintf(b, `<td class="kind">%s</td>`, kind)
		}
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</table>`)
}

// errorAlert renders a user message as an alert fragment.
func errorAlert(msg core.UserMessage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="alert" role="alert"><strong>%s</strong><p>%s</p><small>Code: %s</small></div>`,
			templ.EscapeString(msg.Message), templ.EscapeString(msg.Action), templ.EscapeString(msg.Code))
		return err
	})
}

// visible names control characters used as separators.
func visible(sep string) string {
	switch sep {
	case "\n":
		return `\n`
	case "\r\n":
		return `\r\n`
	case "\r":
		return `\r`
	case "\t":
		return `\t`
	case "\b":
		return `\b`
	}
	return sep
}
