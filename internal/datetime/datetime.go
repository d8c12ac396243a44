// Package datetime recognizes date, time and datetime tokens written in one of
// a fixed catalog of textual layouts.
//
// Every layout is a declarative descriptor (see catalog.go) consumed by a
// single generic matcher (see layout.go). Recognition is a pure function of
// the token: each call works on its own scratch Value, so the package is safe
// for concurrent use.
package datetime

import (
	"fmt"
	"strconv"
	"time"
)

// Kind classifies what a recognized token carries.
type Kind int

const (
	KindDate     Kind = iota // Only date components (year, month, day)
	KindTime                 // Only time components, optionally with a zone
	KindDateTime             // Date and time components, optionally with a zone
)

var kindNames = [...]string{
	KindDate:     "date",
	KindTime:     "time",
	KindDateTime: "datetime",
}

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalJSON encodes the kind as its name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(k.String())), nil
}

// Value holds the fields extracted from a token. Only the fields relevant to
// the matched layout are populated; Millisecond and Microsecond are never
// both set by one match.
type Value struct {
	Year        int  `json:"year,omitempty"`
	Month       int  `json:"month,omitempty"`
	Day         int  `json:"day,omitempty"`
	Hour        int  `json:"hour"`
	Minute      int  `json:"minute"`
	Second      int  `json:"second"`
	Millisecond int  `json:"millisecond,omitempty"`
	Microsecond int  `json:"microsecond,omitempty"`
	TZD         int  `json:"tzd"`     // minutes east of UTC
	HasTZD      bool `json:"has_tzd"` // layout carried a zone designator
}

// Nanosecond returns the sub-second part in nanoseconds.
func (v Value) Nanosecond() int {
	return v.Millisecond*int(time.Millisecond) + v.Microsecond*int(time.Microsecond)
}

// Location returns the fixed zone described by TZD, or UTC when the layout
// carried no zone.
func (v Value) Location() *time.Location {
	if !v.HasTZD || v.TZD == 0 {
		return time.UTC
	}
	return time.FixedZone(formatOffset(v.TZD), v.TZD*60)
}

// Result is a successful recognition.
type Result struct {
	Value  Value  `json:"value"`
	Kind   Kind   `json:"kind"`
	Format string `json:"format"`
}

// Time converts the result to a time.Time. Time-only results are placed on
// 0000-01-01; date-only results are midnight UTC.
func (r Result) Time() time.Time {
	v := r.Value
	switch r.Kind {
	case KindDate:
		return time.Date(v.Year, time.Month(v.Month), v.Day, 0, 0, 0, 0, time.UTC)
	case KindTime:
		return time.Date(0, time.January, 1, v.Hour, v.Minute, v.Second, v.Nanosecond(), v.Location())
	default:
		return time.Date(v.Year, time.Month(v.Month), v.Day, v.Hour, v.Minute, v.Second, v.Nanosecond(), v.Location())
	}
}

// String renders the result in ISO 8601 form.
func (r Result) String() string {
	v := r.Value
	date := fmt.Sprintf("%04d-%02d-%02d", v.Year, v.Month, v.Day)
	if r.Kind == KindDate {
		return date
	}

	clock := fmt.Sprintf("%02d:%02d:%02d", v.Hour, v.Minute, v.Second)
	switch {
	case v.Microsecond > 0:
		clock += fmt.Sprintf(".%06d", v.Microsecond)
	case v.Millisecond > 0:
		clock += fmt.Sprintf(".%03d", v.Millisecond)
	}
	if v.HasTZD {
		clock += formatOffset(v.TZD)
	}

	if r.Kind == KindTime {
		return clock
	}
	return date + "T" + clock
}

// formatOffset renders minutes east of UTC as ±HH:MM, or Z for zero.
func formatOffset(tzd int) string {
	if tzd == 0 {
		return "Z"
	}
	sign := '+'
	if tzd < 0 {
		sign = '-'
		tzd = -tzd
	}
	return fmt.Sprintf("%c%02d:%02d", sign, tzd/60, tzd%60)
}
