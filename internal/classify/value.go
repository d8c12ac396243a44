package classify

import (
	"fmt"
	"math/big"
	"net/netip"
	"strconv"

	"github.com/JonMunkholm/typesniff/internal/datetime"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind identifies which variant of Value is populated.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindBigInt
	KindFloat
	KindDecimal
	KindHex
	KindUUID
	KindIPv4
	KindIPv6
	KindDate
	KindTime
	KindDateTime
	KindJSON
	KindString
)

var kindNames = [...]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindInt:      "int",
	KindBigInt:   "bigint",
	KindFloat:    "float",
	KindDecimal:  "decimal",
	KindHex:      "hex",
	KindUUID:     "uuid",
	KindIPv4:     "ipv4",
	KindIPv6:     "ipv6",
	KindDate:     "date",
	KindTime:     "time",
	KindDateTime: "datetime",
	KindJSON:     "json",
	KindString:   "str",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalJSON encodes the kind by name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(k.String())), nil
}

// UnmarshalJSON accepts a kind name as produced by MarshalJSON.
func (k *Kind) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("kind: %w", err)
	}
	parsed, ok := ParseKind(s)
	if !ok {
		return fmt.Errorf("kind: unknown name %q", s)
	}
	*k = parsed
	return nil
}

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return KindNull, false
}

// IsTemporal reports whether the kind carries a datetime.Value.
func (k Kind) IsTemporal() bool {
	return k == KindDate || k == KindTime || k == KindDateTime
}

// Value is the result of classifying one token. Exactly one payload field,
// selected by Kind, is meaningful.
type Value struct {
	Kind     Kind
	Raw      string // token as given to Classify
	Bool     bool
	Int      int64
	BigInt   *big.Int
	Float    float64
	Decimal  decimal.Decimal
	Hex      uint64
	UUID     uuid.UUID
	Addr     netip.Addr // IPv4 and IPv6
	DateTime datetime.Result
	JSON     any
	Str      string
}

// Interface returns the payload as a plain Go value: nil, bool, int64,
// *big.Int, float64, decimal.Decimal, uint64, uuid.UUID, netip.Addr,
// time.Time, the decoded JSON structure, or string.
func (v Value) Interface() any {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int
	case KindBigInt:
		return v.BigInt
	case KindFloat:
		return v.Float
	case KindDecimal:
		return v.Decimal
	case KindHex:
		return v.Hex
	case KindUUID:
		return v.UUID
	case KindIPv4, KindIPv6:
		return v.Addr
	case KindDate, KindTime, KindDateTime:
		return v.DateTime.Time()
	case KindJSON:
		return v.JSON
	case KindString:
		return v.Str
	}
	return nil
}

// String renders the payload. Null renders as the empty string.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindBigInt:
		return v.BigInt.String()
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindDecimal:
		return v.Decimal.String()
	case KindHex:
		return strconv.FormatUint(v.Hex, 10)
	case KindUUID:
		return v.UUID.String()
	case KindIPv4, KindIPv6:
		return v.Addr.String()
	case KindDate, KindTime, KindDateTime:
		return v.DateTime.String()
	case KindJSON:
		b, err := json.Marshal(v.JSON)
		if err != nil {
			return v.Raw
		}
		return string(b)
	}
	return v.Str
}

// jsonValue is the wire form of Value.
type jsonValue struct {
	Kind  Kind   `json:"kind"`
	Value any    `json:"value"`
	Raw   string `json:"raw"`
}

// MarshalJSON encodes the value as {"kind", "value", "raw"}. Numbers that do
// not fit a JSON double (bigint, decimal) and temporal values are encoded as
// strings.
func (v Value) MarshalJSON() ([]byte, error) {
	out := jsonValue{Kind: v.Kind, Raw: v.Raw}
	switch v.Kind {
	case KindNull:
	case KindBool:
		out.Value = v.Bool
	case KindInt:
		out.Value = v.Int
	case KindFloat:
		out.Value = v.Float
	case KindHex:
		out.Value = v.Hex
	case KindJSON:
		out.Value = v.JSON
	default:
		out.Value = v.String()
	}
	return json.Marshal(out)
}
