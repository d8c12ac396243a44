package datetime

// layout.go implements the generic matcher behind every catalog entry.
//
// A shape is written as a template the same length as the tokens it accepts.
// Letters from the table below mark field runs; every other byte is a
// literal that must appear verbatim at that offset.
//
//	Y year        M month       D day         N month name (3)
//	h hour        m minute      s second      W weekday name (3)
//	f millisecond (3 digits)    u microsecond (6 digits)
//	+ zone sign   H zone hours  I zone minutes
//	A zone abbreviation (3)     L military zone letter (1)
//
// A literal trailing "Z" or " UT" marks the shape as carrying UTC.

import (
	"fmt"
	"strings"
)

// run is one contiguous span of a shape: either a field of width characters
// or a single literal byte (code == 0).
type run struct {
	code  byte
	lit   byte
	pos   int
	width int
}

type shape struct {
	template string
	runs     []run
	utc      bool
	zoned    bool
}

const (
	digitCodes  = "YMDhmsfuHI"
	letterCodes = "NWAL"
)

func isCode(c byte) bool {
	return c == '+' || strings.IndexByte(digitCodes, c) >= 0 || strings.IndexByte(letterCodes, c) >= 0
}

// compileShape splits a template into runs. Consecutive identical field
// letters form one run; the sign is always a single character.
func compileShape(template string) shape {
	sh := shape{template: template}
	for i := 0; i < len(template); {
		c := template[i]
		if !isCode(c) {
			sh.runs = append(sh.runs, run{lit: c, pos: i, width: 1})
			i++
			continue
		}
		j := i + 1
		for c != '+' && j < len(template) && template[j] == c {
			j++
		}
		sh.runs = append(sh.runs, run{code: c, pos: i, width: j - i})
		if c == '+' || c == 'A' || c == 'L' {
			sh.zoned = true
		}
		i = j
	}
	if strings.HasSuffix(template, "Z") || strings.HasSuffix(template, " UT") {
		sh.utc = true
		sh.zoned = true
	}
	for _, r := range sh.runs {
		if err := r.check(); err != nil {
			panic(fmt.Sprintf("datetime: template %q: %v", template, err))
		}
	}
	return sh
}

// check enforces the fixed widths the extractor relies on.
func (r run) check() error {
	want := map[byte]int{'N': 3, 'W': 3, 'A': 3, 'L': 1, 'f': 3, 'u': 6, 'H': 2, 'I': 2}
	if w, ok := want[r.code]; ok && r.width != w {
		return fmt.Errorf("field %q at %d has width %d, want %d", r.code, r.pos, r.width, w)
	}
	return nil
}

// match tests token against the shape. Structural checks run over the whole
// token before any field is extracted, and fields land in a local Value that
// is only returned on success.
func (sh *shape) match(token string) (Value, bool) {
	if len(token) != len(sh.template) {
		return Value{}, false
	}

	for _, r := range sh.runs {
		span := token[r.pos : r.pos+r.width]
		switch {
		case r.code == 0:
			if span[0] != r.lit {
				return Value{}, false
			}
		case r.code == '+':
			if span[0] != '+' && span[0] != '-' {
				return Value{}, false
			}
		case strings.IndexByte(digitCodes, r.code) >= 0:
			if !allDigits(span) {
				return Value{}, false
			}
		default:
			if !allLetters(span) {
				return Value{}, false
			}
		}
	}

	var v Value
	sign, zoneH, zoneM := 1, 0, 0
	for _, r := range sh.runs {
		span := token[r.pos : r.pos+r.width]
		switch r.code {
		case 'Y':
			v.Year = atoi(span)
		case 'M':
			v.Month = atoi(span)
		case 'D':
			v.Day = atoi(span)
		case 'h':
			v.Hour = atoi(span)
		case 'm':
			v.Minute = atoi(span)
		case 's':
			v.Second = atoi(span)
		case 'f':
			v.Millisecond = atoi(span)
		case 'u':
			v.Microsecond = atoi(span)
		case 'H':
			zoneH = atoi(span)
		case 'I':
			zoneM = atoi(span)
		case '+':
			if span[0] == '-' {
				sign = -1
			}
		case 'N':
			m, ok := lookupMonth(span)
			if !ok {
				return Value{}, false
			}
			v.Month = m
		case 'W':
			if !lookupWeekday(span) {
				return Value{}, false
			}
		case 'A':
			tzd, ok := lookupZone(span)
			if !ok {
				return Value{}, false
			}
			v.TZD = tzd
		case 'L':
			tzd, ok := lookupMilitary(span[0])
			if !ok {
				return Value{}, false
			}
			v.TZD = tzd
		}
	}

	if zoneH != 0 || zoneM != 0 {
		if zoneM >= 60 {
			return Value{}, false
		}
		v.TZD = sign * (zoneH*60 + zoneM)
	}
	v.HasTZD = sh.zoned
	return v, true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func allLetters(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

// atoi reads a run already known to be all digits.
func atoi(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}

// valid rejects field values that no calendar or clock can hold.
func valid(v Value, kind Kind) bool {
	if kind != KindTime {
		if v.Year < 1 || v.Month < 1 || v.Month > 12 {
			return false
		}
		if v.Day < 1 || v.Day > daysIn(v.Year, v.Month) {
			return false
		}
	}
	if kind != KindDate {
		if v.Hour > 23 || v.Minute > 59 || v.Second > 59 {
			return false
		}
	}
	return v.TZD > -24*60 && v.TZD < 24*60
}

func daysIn(year, month int) int {
	switch month {
	case 2:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	}
	return 31
}
