package core

// convert.go maps classified cells onto Postgres column types for COPY.
//
// A column's type comes from its summary kind. Each cell is converted to a
// pgtype value for that column; a cell whose own kind does not fit is stored
// as NULL and counted as rejected. Integers widen into float and numeric
// columns. Text columns take any cell, unquoted.

import (
	"math/big"
	"net/netip"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/typesniff/internal/classify"
	"github.com/JonMunkholm/typesniff/internal/sniff"
)

// PgType returns the Postgres column type for a summary kind. Zoned
// datetime columns become timestamptz; zoned time columns are shifted to
// UTC and stored as time.
func PgType(kind classify.Kind, zoned bool) string {
	switch kind {
	case classify.KindInt, classify.KindHex:
		return "bigint"
	case classify.KindBigInt, classify.KindDecimal:
		return "numeric"
	case classify.KindFloat:
		return "double precision"
	case classify.KindBool:
		return "boolean"
	case classify.KindUUID:
		return "uuid"
	case classify.KindIPv4, classify.KindIPv6:
		return "inet"
	case classify.KindDate:
		return "date"
	case classify.KindTime:
		return "time"
	case classify.KindDateTime:
		if zoned {
			return "timestamptz"
		}
		return "timestamp"
	case classify.KindJSON:
		return "jsonb"
	}
	return "text"
}

// ToPgValue converts v for a column of kind target. ok is false when the
// cell does not fit the column; the returned value is then NULL.
func ToPgValue(v classify.Value, target classify.Kind) (value any, ok bool) {
	if v.Kind == classify.KindNull {
		return nil, true
	}

	switch target {
	case classify.KindNull, classify.KindString:
		return pgtype.Text{String: sniff.Unquote(v.Raw), Valid: true}, true

	case classify.KindInt, classify.KindHex:
		switch v.Kind {
		case classify.KindInt:
			return pgtype.Int8{Int64: v.Int, Valid: true}, true
		case classify.KindHex:
			return pgtype.Int8{Int64: int64(v.Hex), Valid: true}, true
		}

	case classify.KindBigInt, classify.KindDecimal:
		switch v.Kind {
		case classify.KindInt:
			return pgtype.Numeric{Int: big.NewInt(v.Int), Valid: true}, true
		case classify.KindBigInt:
			return pgtype.Numeric{Int: v.BigInt, Valid: true}, true
		case classify.KindDecimal:
			return pgtype.Numeric{Int: v.Decimal.Coefficient(), Exp: v.Decimal.Exponent(), Valid: true}, true
		}

	case classify.KindFloat:
		switch v.Kind {
		case classify.KindFloat:
			return pgtype.Float8{Float64: v.Float, Valid: true}, true
		case classify.KindInt:
			return pgtype.Float8{Float64: float64(v.Int), Valid: true}, true
		}

	case classify.KindBool:
		if v.Kind == classify.KindBool {
			return pgtype.Bool{Bool: v.Bool, Valid: true}, true
		}

	case classify.KindUUID:
		if v.Kind == classify.KindUUID {
			return pgtype.UUID{Bytes: v.UUID, Valid: true}, true
		}

	case classify.KindIPv4, classify.KindIPv6:
		if v.Kind == classify.KindIPv4 || v.Kind == classify.KindIPv6 {
			return netip.PrefixFrom(v.Addr, v.Addr.BitLen()), true
		}

	case classify.KindDate:
		if d, ok := calendarDate(v); ok {
			return pgtype.Date{Time: d, Valid: true}, true
		}

	case classify.KindTime:
		if v.Kind == classify.KindTime {
			return pgtype.Time{Microseconds: timeOfDayMicros(v.DateTime.Time()), Valid: true}, true
		}

	case classify.KindDateTime:
		if v.Kind == classify.KindDateTime {
			return v.DateTime.Time(), true
		}

	case classify.KindJSON:
		if v.Kind == classify.KindJSON {
			return v.JSON, true
		}
	}
	return nil, false
}

// timeOfDayMicros returns the UTC time of day of t in microseconds.
func timeOfDayMicros(t time.Time) int64 {
	t = t.UTC()
	return int64(t.Hour())*int64(time.Hour/time.Microsecond) +
		int64(t.Minute())*int64(time.Minute/time.Microsecond) +
		int64(t.Second())*int64(time.Second/time.Microsecond) +
		int64(t.Nanosecond())/int64(time.Microsecond)
}

var identPattern = regexp.MustCompile(`[^a-z0-9_]+`)

// calendarDate returns the written calendar date of a Date or DateTime value
// as midnight UTC. A DateTime keeps its date fields; its clock and zone are
// dropped.
func calendarDate(v classify.Value) (time.Time, bool) {
	if v.Kind != classify.KindDate && v.Kind != classify.KindDateTime {
		return time.Time{}, false
	}
	d := v.DateTime.Value
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC), true
}

// toDBColumnName converts a header cell to a snake_case identifier:
// "Transaction ID" -> "transaction_id". Empty results fall back to
// column_N (1-based), and identifiers may not start with a digit.
func toDBColumnName(name string, pos int) string {
	s := identPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return columnFallback(pos)
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "c_" + s
	}
	return s
}

func columnFallback(pos int) string {
	return "column_" + strconv.Itoa(pos+1)
}

// quoteIdentifier quotes a Postgres identifier.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
