package classify

// literals.go holds the pattern checks and converters used by Classify.
//
// The numeric pattern is deliberately permissive: it accepts things like a
// bare "." or "1.xe-5". Conversion therefore parses the longest prefix the
// number parser accepts (strtod semantics) and lets the token fall through to
// the remaining checks when no prefix is numeric at all.

import (
	"errors"
	"math/big"
	"net/netip"
	"regexp"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	numericPattern = regexp.MustCompile(`^([+-]?\d[0-9]*)?(\.(.*e-)?)?([0-9]*)?$`)
	hexPattern     = regexp.MustCompile(`^0[xX][0-9a-fA-F]+$`)
	uuidPattern    = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-5][0-9a-f]{3}-[089ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	ipv4Pattern    = regexp.MustCompile(`^((25[0-5]|(2[0-4]|1\d|[1-9]|)\d)\.){3}(25[0-5]|(2[0-4]|1\d|[1-9]|)\d)$`)
)

// numeric converts a token already accepted by numericPattern.
func (c *Classifier) numeric(s string) (Value, bool) {
	if strings.IndexByte(s, '.') >= 0 {
		if len(s) > decimalThreshold {
			if d, ok := decimalPrefix(s); ok {
				return Value{Kind: KindDecimal, Decimal: d}, true
			}
			return Value{}, false
		}
		if f, ok := floatPrefix(s); ok {
			return Value{Kind: KindFloat, Float: f}, true
		}
		return Value{}, false
	}
	return c.integer(s)
}

func (c *Classifier) integer(s string) (Value, bool) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		mag := uint64(n)
		if n < 0 {
			mag = uint64(-(n + 1)) + 1
		}
		if mag <= c.maxInteger {
			return Value{Kind: KindInt, Int: n}, true
		}
	}
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Value{}, false
	}
	return Value{Kind: KindBigInt, BigInt: b}, true
}

// numericPrefix scans s once for its longest numeric prefix: an optional
// sign, digits, an optional fraction and an optional exponent. mantissa is the
// same prefix without the exponent. Both are empty when s starts with no
// digit.
func numericPrefix(s string) (full, mantissa string) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return "", ""
	}
	mantissa = s[:i]

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			return s[:k], mantissa
		}
	}
	return mantissa, mantissa
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// floatPrefix parses the longest numeric prefix of s as a float. Overflow
// saturates to an infinity.
func floatPrefix(s string) (float64, bool) {
	full, mantissa := numericPrefix(s)
	for _, p := range []string{full, mantissa} {
		if p == "" {
			continue
		}
		f, err := strconv.ParseFloat(p, 64)
		if err == nil || errors.Is(err, strconv.ErrRange) {
			return f, true
		}
	}
	return 0, false
}

// decimalPrefix parses the longest numeric prefix of s as a decimal.
func decimalPrefix(s string) (decimal.Decimal, bool) {
	full, mantissa := numericPrefix(s)
	for _, p := range []string{full, mantissa} {
		if p == "" {
			continue
		}
		if d, err := decimal.NewFromString(p); err == nil {
			return d, true
		}
	}
	return decimal.Decimal{}, false
}

func parseHex(s string) (Value, bool) {
	n, err := strconv.ParseUint(s[2:], 16, 64)
	if err != nil {
		return Value{}, false
	}
	return Value{Kind: KindHex, Hex: n}, true
}

func parseUUID(s string) (Value, bool) {
	if !uuidPattern.MatchString(s) {
		return Value{}, false
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return Value{}, false
	}
	return Value{Kind: KindUUID, UUID: u}, true
}

func parseIPv4(s string) (Value, bool) {
	if strings.Count(s, ".") != 3 || !ipv4Pattern.MatchString(s) {
		return Value{}, false
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return Value{}, false
	}
	return Value{Kind: KindIPv4, Addr: addr}, true
}

// parseIPv6 only considers tokens with more than five colons, so short forms
// such as "::1" stay strings.
func parseIPv6(s string) (Value, bool) {
	if strings.Count(s, ":") <= 5 {
		return Value{}, false
	}
	addr, err := netip.ParseAddr(s)
	if err != nil || !addr.Is6() || addr.Zone() != "" {
		return Value{}, false
	}
	return Value{Kind: KindIPv6, Addr: addr}, true
}

// parseJSONLiteral accepts {...} and [...] tokens. Single quotes outside
// double-quoted spans are rewritten to double quotes before a strict parse;
// a parse failure is not an error, the token simply is not JSON.
func parseJSONLiteral(s string) (Value, bool) {
	first, last := s[0], s[len(s)-1]
	if !(first == '{' && last == '}') && !(first == '[' && last == ']') {
		return Value{}, false
	}
	var out any
	if err := json.Unmarshal([]byte(NormalizeQuotes(s)), &out); err != nil {
		return Value{}, false
	}
	return Value{Kind: KindJSON, JSON: out}, true
}

// NormalizeQuotes rewrites single quotes to double quotes outside of
// double-quoted spans. Inside a double-quoted span a backslash escapes the
// following byte.
func NormalizeQuotes(s string) string {
	if strings.IndexByte(s, '\'') < 0 {
		return s
	}
	b := []byte(s)
	inDouble := false
	for i := 0; i < len(b); i++ {
		switch b[i] {
		case '\\':
			if inDouble {
				i++
			}
		case '"':
			inDouble = !inDouble
		case '\'':
			if !inDouble {
				b[i] = '"'
			}
		}
	}
	return string(b)
}
