package sniff

import "strings"

// ColumnSeparators are the candidate column separators in preference order.
var ColumnSeparators = []byte{',', ';', '\t', '|', '\b'}

// headerForbidden are the characters a header cell may never contain.
const headerForbidden = "\r\n,;\t|\b"

// DetectLineSeparator inspects the last carriage return and the last line
// feed: "\r\n" when the CR immediately precedes the LF, "\r" when the CR comes
// after the last LF, otherwise "\n". Content without any LF is "\n".
func DetectLineSeparator(content string) string {
	cr := strings.LastIndexByte(content, '\r')
	lf := strings.LastIndexByte(content, '\n')
	switch {
	case cr >= 0 && lf == cr+1:
		return "\r\n"
	case lf >= 0 && cr > lf:
		return "\r"
	}
	return "\n"
}

// span is a half-open byte range [start, end) of one row.
type span struct {
	start, end int
}

// rowSpans returns one span per row. Every separator occurrence ends a row;
// content after the last separator forms a final row.
func rowSpans(content, sep string) []span {
	var rows []span
	start := 0
	for {
		i := strings.Index(content[start:], sep)
		if i < 0 {
			break
		}
		rows = append(rows, span{start, start + i})
		start += i + len(sep)
	}
	if start < len(content) {
		rows = append(rows, span{start, len(content)})
	}
	return rows
}

// SplitCells splits one row on sep. A cell that opens with a quote runs to
// the next occurrence of the same quote before the separator search resumes,
// so a quoted cell may contain the separator. An unclosed quote swallows the
// rest of the row. Cells keep their quotes.
func SplitCells(row string, sep byte) []string {
	cells := make([]string, 0, 8)
	start := 0
	for {
		from := start
		if q := quoteAt(row, start); q != 0 {
			end := strings.IndexByte(row[start+1:], q)
			if end < 0 {
				return append(cells, row[start:])
			}
			from = start + 1 + end + 1
		}
		next := strings.IndexByte(row[from:], sep)
		if next < 0 {
			return append(cells, row[start:])
		}
		cells = append(cells, row[start:from+next])
		start = from + next + 1
	}
}

func quoteAt(s string, i int) byte {
	if i < len(s) && (s[i] == '"' || s[i] == '\'') {
		return s[i]
	}
	return 0
}

// quotedWith reports the quote character wrapping cell, if any.
func quotedWith(cell string) byte {
	if len(cell) >= 2 && cell[0] == cell[len(cell)-1] {
		return quoteAt(cell, 0)
	}
	return 0
}

// Unquote removes one pair of matching surrounding quotes.
func Unquote(cell string) string {
	if quotedWith(cell) != 0 {
		return cell[1 : len(cell)-1]
	}
	return cell
}
