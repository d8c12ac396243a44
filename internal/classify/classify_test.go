package classify

import (
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/typesniff/internal/datetime"
)

// ----------------------------------------------------------------------------
// Priority Order Tests
// ----------------------------------------------------------------------------

func TestClassify_Kinds(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  Kind
	}{
		{"empty", "", KindNull},
		{"single digit", "7", KindInt},
		{"single letter", "x", KindString},
		{"double quoted empty", `""`, KindNull},
		{"single quoted empty", `''`, KindNull},
		{"quoted single char", `'.'`, KindString},
		{"quoted digit", `"5"`, KindInt},
		{"integer", "12345", KindInt},
		{"signed integer", "-42", KindInt},
		{"leading zeros", "007", KindInt},
		{"float", "3.14", KindFloat},
		{"trailing dot float", "1.", KindFloat},
		{"leading dot float", ".5", KindFloat},
		{"negative exponent float", "1.5e-10", KindFloat},
		{"long fraction is decimal", "3.14159265358979323846", KindDecimal},
		{"huge integer", "123456789012345678901234567890", KindBigInt},
		{"bare dot", "..", KindString},
		{"escape newline", `\n`, KindString},
		{"hex", "0x1A", KindHex},
		{"hex upper", "0XFF", KindHex},
		{"long hex is string", "0x1A2B", KindString},
		{"true", "true", KindBool},
		{"TRUE", "TRUE", KindBool},
		{"False", "False", KindBool},
		{"truth is string", "truth", KindString},
		{"NULL", "NULL", KindNull},
		{"na lower", "na", KindNull},
		{"None", "None", KindNull},
		{"undefined", "undefined", KindNull},
		{"NoneType", "NoneType", KindNull},
		{"uuid", "123e4567-e89b-12d3-a456-426614174000", KindUUID},
		{"uuid upper", "123E4567-E89B-12D3-A456-426614174000", KindUUID},
		{"uuid bad version", "123e4567-e89b-72d3-a456-426614174000", KindString},
		{"json object", `{"test": 1}`, KindJSON},
		{"json array", "[1, 2, 3]", KindJSON},
		{"json single quotes", "{'a': 'b'}", KindJSON},
		{"broken json", "{not json}", KindString},
		{"short word", "abcde", KindString},
		{"six chars never reach ip", "1.2.34", KindString},
		{"ipv4", "1.1.1.1", KindIPv4},
		{"ipv4 max", "255.255.255.255", KindIPv4},
		{"ipv4 leading zero", "1.1.1.01", KindString},
		{"ipv4 out of range", "0.0.0.256", KindString},
		{"ipv6", "2001:db8:85a3::8a2e:370:7334", KindIPv6},
		{"ipv6 full", "1:2:3:4:5:6:7:8", KindIPv6},
		{"ipv6 trailing compression", "1:2:3:4:5:6:7::", KindIPv6},
		{"ipv6 too few colons", "::5000", KindString},
		{"ipv6 invalid", "0:1:2:3:4:5:6::7", KindString},
		{"ipv6 double compression", "1::2:3::4:5:6", KindString},
		{"colons only", ":::::::", KindString},
		{"date", "2006-03-17", KindDate},
		{"time", "13:27:54", KindTime},
		{"datetime", "2006-03-17T13:27:54.123", KindDateTime},
		{"quoted datetime", "'20060317 13:27:54.123'", KindDateTime},
		{"impossible hour", "2017-01-01 24:23:23", KindString},
		{"long text", "the quick brown fox jumps over the lazy dog", KindString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.token)
			if got.Kind != tt.want {
				t.Errorf("Classify(%q).Kind = %v, want %v", tt.token, got.Kind, tt.want)
			}
			if got.Raw != tt.token {
				t.Errorf("Raw = %q, want %q", got.Raw, tt.token)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Payload Tests
// ----------------------------------------------------------------------------

func TestClassify_Payloads(t *testing.T) {
	if v := Classify("0x1A"); v.Hex != 26 {
		t.Errorf("0x1A = %d, want 26", v.Hex)
	}
	if v := Classify("0xFF"); v.Hex != 255 {
		t.Errorf("0xFF = %d, want 255", v.Hex)
	}
	if v := Classify("0x00"); v.Kind != KindHex || v.Hex != 0 {
		t.Errorf("0x00 = %+v, want hex 0", v)
	}
	if v := Classify("true"); !v.Bool {
		t.Error("true should be Bool(true)")
	}
	if v := Classify("FALSE"); v.Bool {
		t.Error("FALSE should be Bool(false)")
	}
	if v := Classify("-42"); v.Int != -42 {
		t.Errorf("-42 = %d", v.Int)
	}
	if v := Classify("3.14"); v.Float != 3.14 {
		t.Errorf("3.14 = %v", v.Float)
	}
	if v := Classify(`\t`); v.Str != "\t" {
		t.Errorf(`\t = %q, want tab`, v.Str)
	}
	if v := Classify(`\\`); v.Str != `\` {
		t.Errorf(`\\ = %q, want backslash`, v.Str)
	}

	dec := Classify("3.14159265358979323846")
	if dec.Decimal.String() != "3.14159265358979323846" {
		t.Errorf("decimal = %s", dec.Decimal.String())
	}

	big1 := Classify("123456789012345678901234567890")
	want, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	if big1.BigInt.Cmp(want) != 0 {
		t.Errorf("bigint = %s", big1.BigInt)
	}

	ip := Classify("1.1.1.1")
	if ip.Addr.String() != "1.1.1.1" {
		t.Errorf("ipv4 = %s", ip.Addr)
	}

	js := Classify("{'a': 'b', \"c\": [1, 2]}")
	m, ok := js.JSON.(map[string]any)
	if !ok || m["a"] != "b" {
		t.Errorf("json = %#v", js.JSON)
	}

	dt := Classify("2006-03-17T13:27:54+03:45")
	if dt.DateTime.Value.TZD != 225 || dt.DateTime.Kind != datetime.KindDateTime {
		t.Errorf("datetime = %+v", dt.DateTime)
	}
}

func TestClassify_MaxInteger(t *testing.T) {
	c := New(Options{MaxInteger: 1000})

	if v := c.Classify("1000"); v.Kind != KindInt {
		t.Errorf("1000 = %v, want int", v.Kind)
	}
	if v := c.Classify("1001"); v.Kind != KindBigInt || v.BigInt.Int64() != 1001 {
		t.Errorf("1001 = %+v, want bigint", v)
	}
	if v := c.Classify("-1001"); v.Kind != KindBigInt {
		t.Errorf("-1001 = %v, want bigint", v.Kind)
	}
	if v := Classify("9223372036854775807"); v.Kind != KindInt {
		t.Errorf("MaxInt64 = %v, want int", v.Kind)
	}
	if v := Classify("9223372036854775808"); v.Kind != KindBigInt {
		t.Errorf("MaxInt64+1 = %v, want bigint", v.Kind)
	}
	if v := Classify("-9223372036854775808"); v.Kind != KindBigInt {
		t.Errorf("MinInt64 magnitude exceeds default max, got %v", v.Kind)
	}
}

func TestNumericPrefix(t *testing.T) {
	tests := []struct {
		in       string
		full     string
		mantissa string
	}{
		{"1.5e-10", "1.5e-10", "1.5"},
		{"1.xe-5", "1.", "1."},
		{"-2.e+3", "-2.e+3", "-2."},
		{".5", ".5", ".5"},
		{"1.5e", "1.5", "1.5"},
		{"1.5e-", "1.5", "1.5"},
		{".", "", ""},
		{"+", "", ""},
	}
	for _, tt := range tests {
		full, mantissa := numericPrefix(tt.in)
		if full != tt.full || mantissa != tt.mantissa {
			t.Errorf("numericPrefix(%q) = %q, %q; want %q, %q", tt.in, full, mantissa, tt.full, tt.mantissa)
		}
	}
}

func TestClassify_LongNumericLikeToken(t *testing.T) {
	for _, n := range []int{20, 100000, 1 << 20} {
		token := "1." + strings.Repeat("x", n) + "e-5"

		start := time.Now()
		v := Classify(token)
		elapsed := time.Since(start)

		if v.Kind != KindDecimal || !v.Decimal.Equal(decimal.NewFromInt(1)) {
			t.Errorf("n=%d: got %v %s, want decimal 1", n, v.Kind, v.Decimal)
		}
		if elapsed > 2*time.Second {
			t.Errorf("n=%d: classification took %v", n, elapsed)
		}
	}

	if v := Classify("1.5xe-3"); v.Kind != KindFloat || v.Float != 1.5 {
		t.Errorf("short prefix token = %+v, want float 1.5", v)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	tokens := []string{"NULL", "0x1A", "3.14159265358979323846", "1.1.1.1", "{'a': 1}", "13:27:54"}
	for _, tok := range tokens {
		first := Classify(tok).Kind
		for i := 0; i < 5; i++ {
			if got := Classify(tok).Kind; got != first {
				t.Fatalf("Classify(%q) changed from %v to %v", tok, first, got)
			}
		}
	}
}

func TestClassify_Concurrent(t *testing.T) {
	done := make(chan Kind, 64)
	for i := 0; i < 64; i++ {
		go func(i int) {
			if i%2 == 0 {
				done <- Classify("2006-03-17T13:27:54+03:45").Kind
				return
			}
			done <- Classify("17/03/2006").Kind
		}(i)
	}
	for i := 0; i < 64; i++ {
		if k := <-done; k != KindDateTime && k != KindDate {
			t.Fatalf("unexpected kind %v", k)
		}
	}
}

// ----------------------------------------------------------------------------
// Helper Tests
// ----------------------------------------------------------------------------

func TestNormalizeQuotes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{'a': 'b'}`, `{"a": "b"}`},
		{`{"it's": 1}`, `{"it's": 1}`},
		{`["a \" 'b'", 'c']`, `["a \" 'b'", "c"]`},
		{`[1, 2]`, `[1, 2]`},
	}
	for _, tt := range tests {
		if got := NormalizeQuotes(tt.in); got != tt.want {
			t.Errorf("NormalizeQuotes(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestIsNaN(t *testing.T) {
	for _, s := range []string{"NA", "none", "Null", "UNDEFINED", "nonetype", `""`} {
		if !IsNaN(s) {
			t.Errorf("IsNaN(%q) = false", s)
		}
	}
	for _, s := range []string{"", "N/A", "nil", "nothing here"} {
		if IsNaN(s) {
			t.Errorf("IsNaN(%q) = true", s)
		}
	}
}

func TestValue_MarshalJSON(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"42", `{"kind":"int","value":42,"raw":"42"}`},
		{"NULL", `{"kind":"null","value":null,"raw":"NULL"}`},
		{"2006-03-17", `{"kind":"date","value":"2006-03-17","raw":"2006-03-17"}`},
		{"3.14159265358979323846", `{"kind":"decimal","value":"3.14159265358979323846","raw":"3.14159265358979323846"}`},
	}
	for _, tt := range tests {
		b, err := Classify(tt.token).MarshalJSON()
		if err != nil {
			t.Fatalf("MarshalJSON(%q): %v", tt.token, err)
		}
		if string(b) != tt.want {
			t.Errorf("MarshalJSON(%q) = %s, want %s", tt.token, b, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	for k := KindNull; k <= KindString; k++ {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseKind(strings.Repeat("x", 3)); ok {
		t.Error("ParseKind(xxx) should fail")
	}
}
