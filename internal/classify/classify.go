// Package classify routes an arbitrary string token to exactly one semantic
// type (null, boolean, integer, float, decimal, hex, UUID, IP address,
// date/time/datetime, JSON or plain string) and converts it.
//
// The checks run in a fixed priority order:
//
//  1. empty → Null
//  2. single character → Int when a digit, otherwise String
//  3. matching surrounding quotes are stripped (empty → Null)
//  4. numeric pattern → Int, BigInt, Float or Decimal
//  5. two-character escapes \n \r \t \\ → String with the control character
//  6. hex literal up to four characters → Hex
//  7. true/false (case-insensitive) → Bool
//  8. NaN-like sentinels → Null
//  9. canonical UUID → UUID
//  10. {...} or [...] that parses as JSON → JSON
//  11. shorter than six characters → String
//  12. length in (6, 39): IPv4, then IPv6, then (length > 7) datetime
//  13. String
//
// The order is load-bearing. Classification never fails: String is the
// fallback for anything the earlier checks reject.
package classify

import (
	"math"
	"strings"

	"github.com/JonMunkholm/typesniff/internal/datetime"
)

// DefaultMaxInteger is the largest magnitude returned as Int before a token
// is promoted to BigInt.
const DefaultMaxInteger uint64 = math.MaxInt64

// decimalThreshold is the token length above which a fractional literal is
// kept as an exact Decimal instead of a float64.
const decimalThreshold = 18

// Options tunes a Classifier.
type Options struct {
	// MaxInteger is the largest integer magnitude returned as Int (default: math.MaxInt64)
	MaxInteger uint64
}

// Classifier classifies tokens. It holds no mutable state and is safe for
// concurrent use.
type Classifier struct {
	maxInteger uint64
}

// New returns a Classifier with the given options.
func New(opts Options) *Classifier {
	if opts.MaxInteger == 0 || opts.MaxInteger > DefaultMaxInteger {
		opts.MaxInteger = DefaultMaxInteger
	}
	return &Classifier{maxInteger: opts.MaxInteger}
}

var defaultClassifier = New(Options{})

// Classify classifies token with default options.
func Classify(token string) Value {
	return defaultClassifier.Classify(token)
}

// Classify routes token to exactly one Value kind.
func (c *Classifier) Classify(token string) Value {
	v := c.classify(token)
	v.Raw = token
	return v
}

func (c *Classifier) classify(s string) Value {
	if s == "" {
		return Value{Kind: KindNull}
	}
	if len(s) == 1 {
		return single(s)
	}

	if stripped, ok := stripQuotes(s); ok {
		switch len(stripped) {
		case 0:
			return Value{Kind: KindNull}
		case 1:
			return single(stripped)
		}
		s = stripped
	}

	if numericPattern.MatchString(s) {
		if v, ok := c.numeric(s); ok {
			return v
		}
	}

	if len(s) == 2 {
		if ctl, ok := escapes[s]; ok {
			return Value{Kind: KindString, Str: ctl}
		}
	}

	if len(s) <= 4 && hexPattern.MatchString(s) {
		if v, ok := parseHex(s); ok {
			return v
		}
	}

	if len(s) < 6 {
		if b, ok := parseBool(s); ok {
			return Value{Kind: KindBool, Bool: b}
		}
	}

	if IsNaN(s) {
		return Value{Kind: KindNull}
	}

	if len(s) == 36 {
		if v, ok := parseUUID(s); ok {
			return v
		}
	}

	if v, ok := parseJSONLiteral(s); ok {
		return v
	}

	if len(s) < 6 {
		return Value{Kind: KindString, Str: s}
	}

	if len(s) > 6 && len(s) < 39 {
		if v, ok := parseIPv4(s); ok {
			return v
		}
		if v, ok := parseIPv6(s); ok {
			return v
		}
		if len(s) > 7 {
			if r, ok := datetime.Recognize(s); ok {
				return temporal(r)
			}
		}
	}

	return Value{Kind: KindString, Str: s}
}

func single(s string) Value {
	if s[0] >= '0' && s[0] <= '9' {
		return Value{Kind: KindInt, Int: int64(s[0] - '0')}
	}
	return Value{Kind: KindString, Str: s}
}

// stripQuotes removes one pair of matching surrounding quotes.
func stripQuotes(s string) (string, bool) {
	if len(s) < 2 {
		return s, false
	}
	first, last := s[0], s[len(s)-1]
	if first == last && (first == '"' || first == '\'') {
		return s[1 : len(s)-1], true
	}
	return s, false
}

var escapes = map[string]string{
	`\n`: "\n",
	`\r`: "\r",
	`\t`: "\t",
	`\\`: `\`,
}

var nanLike = map[string]bool{
	"NA":        true,
	"NONE":      true,
	"NULL":      true,
	"UNDEFINED": true,
	"NONETYPE":  true,
	`""`:        true,
}

// IsNaN reports whether s is one of the case-insensitive "no value" sentinels
// (NA, NONE, NULL, UNDEFINED, NONETYPE, or a quoted empty string).
func IsNaN(s string) bool {
	if len(s) > len("UNDEFINED") {
		return false
	}
	return nanLike[strings.ToUpper(s)]
}

func parseBool(s string) (bool, bool) {
	switch s[0] {
	case 't', 'T':
		return true, strings.EqualFold(s, "true")
	case 'f', 'F':
		return false, strings.EqualFold(s, "false")
	}
	return false, false
}

func temporal(r datetime.Result) Value {
	kind := KindDateTime
	switch r.Kind {
	case datetime.KindDate:
		kind = KindDate
	case datetime.KindTime:
		kind = KindTime
	}
	return Value{Kind: kind, DateTime: r}
}
