package avroschema

import (
	"errors"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

func inferJSON(t *testing.T, doc string) string {
	t.Helper()
	s, err := Infer([]byte(doc), Options{})
	if err != nil {
		t.Fatalf("Infer(%s): %v", doc, err)
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

// ----------------------------------------------------------------------------
// Inference Tests
// ----------------------------------------------------------------------------

func TestInfer_NestedRecord(t *testing.T) {
	doc := `{
		"name": "John",
		"age": 30,
		"address": {"street": "123 Main St", "city": "Anytown"},
		"phones": ["+1234567890", "+0987654321", 123]
	}`
	want := `{"type":"record","name":"root","fields":[` +
		`{"name":"name","type":"string"},` +
		`{"name":"age","type":"long"},` +
		`{"name":"address","type":{"type":"record","name":"root_address","fields":[` +
		`{"name":"street","type":"string"},{"name":"city","type":"string"}]}},` +
		`{"name":"phones","type":{"type":"array","items":["string","long"]}}]}`

	if got := inferJSON(t, doc); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestInfer_EmptyArray(t *testing.T) {
	got := inferJSON(t, `{"name": "John", "phones": []}`)
	want := `{"type":"record","name":"root","fields":[{"name":"name","type":"string"},{"name":"phones","type":{"type":"array","items":"null"}}]}`
	if got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestInfer_Scalars(t *testing.T) {
	tests := map[string]string{
		`"x"`:   `"string"`,
		`1`:     `"long"`,
		`-7`:    `"long"`,
		`1.5`:   `"double"`,
		`1e3`:   `"double"`,
		`true`:  `"boolean"`,
		`null`:  `"null"`,
		`[1,2]`: `{"type":"array","items":"long"}`,
	}
	for doc, want := range tests {
		if got := inferJSON(t, doc); got != want {
			t.Errorf("Infer(%s) = %s, want %s", doc, got, want)
		}
	}
}

func TestInfer_ArrayOfRecordsDeduplicates(t *testing.T) {
	got := inferJSON(t, `[{"a": 1}, {"a": 2}, {"a": "x"}]`)
	want := `{"type":"array","items":[` +
		`{"type":"record","name":"root","fields":[{"name":"a","type":"long"}]},` +
		`{"type":"record","name":"root","fields":[{"name":"a","type":"string"}]}]}`
	if got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestInfer_RootName(t *testing.T) {
	s, err := Infer([]byte(`{"a": {}}`), Options{RootName: "event"})
	if err != nil {
		t.Fatal(err)
	}
	rec := s.(Record)
	if rec.Name != "event" || rec.Fields[0].Type.(Record).Name != "event_a" {
		t.Errorf("names = %+v", rec)
	}
}

// ----------------------------------------------------------------------------
// Error Tests
// ----------------------------------------------------------------------------

func TestInfer_MaxDepth(t *testing.T) {
	doc := strings.Repeat("[", 5) + strings.Repeat("]", 5)

	if _, err := Infer([]byte(doc), Options{MaxDepth: 5}); err != nil {
		t.Errorf("depth 5 within limit: %v", err)
	}
	if _, err := Infer([]byte(doc), Options{MaxDepth: 4}); !errors.Is(err, ErrMaxDepth) {
		t.Errorf("err = %v, want ErrMaxDepth", err)
	}
}

func TestInfer_Invalid(t *testing.T) {
	for _, doc := range []string{``, `{"a":`, `[1, 2`} {
		_, err := Infer([]byte(doc), Options{})
		if err == nil {
			t.Errorf("Infer(%q) should fail", doc)
		}
		if errors.Is(err, ErrMaxDepth) {
			t.Errorf("Infer(%q) = ErrMaxDepth, want parse error", doc)
		}
	}
}
