package sniff

// Records splits the data rows of content (every row after the header, if
// any) with the dialect in schema. Cells keep their quotes.
func Records(content string, schema *Schema) [][]string {
	rows := rowSpans(content, schema.LineSeparator)
	if schema.HasHeader && len(rows) > 0 {
		rows = rows[1:]
	}
	sep := schema.ColumnSeparator[0]

	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = SplitCells(content[r.start:r.end], sep)
	}
	return out
}
