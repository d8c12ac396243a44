package core

import "strings"

// ExtractBetween returns every value in data that follows start and runs up
// to the next end byte, or to the end of data when no end follows. The byte
// right after start always belongs to the value, so values are never empty
// unless start closes the data.
func ExtractBetween(data, start string, end byte) []string {
	if start == "" {
		return nil
	}

	var values []string
	pos := 0
	for {
		i := strings.Index(data[pos:], start)
		if i < 0 {
			return values
		}
		pos += i + len(start)
		if pos >= len(data) {
			return append(values, "")
		}

		stop := len(data)
		if j := strings.IndexByte(data[pos+1:], end); j >= 0 {
			stop = pos + 1 + j
		}
		values = append(values, data[pos:stop])
	}
}

// ApplyMatch reports, for each value, whether it contains match.
func ApplyMatch(values []string, match string) []bool {
	result := make([]bool, len(values))
	for i, v := range values {
		result[i] = strings.Contains(v, match)
	}
	return result
}
