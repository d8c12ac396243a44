package datetime

// Name tables used by the N, W, A and L layout letters. All lookups take the
// three (or one) letters exactly as they appear in the token and fold case.

var monthNames = map[string]int{
	"JAN": 1, "FEB": 2, "MAR": 3, "APR": 4, "MAY": 5, "JUN": 6,
	"JUL": 7, "AUG": 8, "SEP": 9, "OCT": 10, "NOV": 11, "DEC": 12,
}

var weekdayNames = map[string]bool{
	"MON": true, "TUE": true, "WED": true, "THU": true,
	"FRI": true, "SAT": true, "SUN": true,
}

// zoneAbbreviations maps North American zone names and GMT to minutes east of UTC.
var zoneAbbreviations = map[string]int{
	"EDT": -4 * 60, "EST": -5 * 60,
	"CDT": -5 * 60, "CST": -6 * 60,
	"MDT": -6 * 60, "MST": -7 * 60,
	"PDT": -7 * 60, "PST": -8 * 60,
	"GMT": 0,
}

func upper3(s string) string {
	b := []byte{s[0], s[1], s[2]}
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

func lookupMonth(s string) (int, bool) {
	m, ok := monthNames[upper3(s)]
	return m, ok
}

func lookupWeekday(s string) bool {
	return weekdayNames[upper3(s)]
}

func lookupZone(s string) (int, bool) {
	tzd, ok := zoneAbbreviations[upper3(s)]
	return tzd, ok
}

// lookupMilitary decodes a single-letter military zone using the RFC 822
// convention: A..M (J excluded) are west of UTC, N..Y are east, Z is UTC.
func lookupMilitary(c byte) (int, bool) {
	if c >= 'a' && c <= 'z' {
		c = c - 'a' + 'A'
	}
	switch {
	case c >= 'A' && c <= 'I':
		return -int(c-'A'+1) * 60, true
	case c >= 'K' && c <= 'M':
		return -int(c-'K'+10) * 60, true
	case c >= 'N' && c <= 'Y':
		return int(c-'N'+1) * 60, true
	case c == 'Z':
		return 0, true
	}
	return 0, false
}
