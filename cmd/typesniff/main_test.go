package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

// ----------------------------------------------------------------------------
// Dispatch Tests
// ----------------------------------------------------------------------------

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"frobnicate"}},
		{"bad format", []string{"-format", "xml", "formats"}},
		{"formats takes no args", []string{"formats", "x"}},
		{"extract needs start", []string{"extract", "-end", ","}},
		{"ini needs files", []string{"ini"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, code := runCLI(t, "", tt.args...); code != 2 {
				t.Errorf("exit code = %d, want 2", code)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Command Tests
// ----------------------------------------------------------------------------

func TestClassify(t *testing.T) {
	out, _, code := runCLI(t, "", "classify", "12", "1.5", "true", "abc")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	var got []struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	want := []string{"int", "float", "bool", "str"}
	for i, w := range want {
		if got[i].Kind != w {
			t.Errorf("token %d kind = %q, want %q", i, got[i].Kind, w)
		}
	}
}

func TestClassify_StdinLines(t *testing.T) {
	out, _, code := runCLI(t, "1\r\n2\n", "classify")
	if code != 0 || strings.Count(out, `"int"`) != 2 {
		t.Errorf("code %d, out %q", code, out)
	}
}

func TestDateTime_YAML(t *testing.T) {
	out, _, code := runCLI(t, "", "-format", "yaml", "datetime", "2020-02-29", "nope")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	for _, want := range []string{"2020-02-29", "kind: date", "matched: false", "token: nope"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSniff_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte("id;when\n1;2021-01-01\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	arrowPath := filepath.Join(t.TempDir(), "data.arrow")

	out, _, code := runCLI(t, "", "sniff", "-arrow", arrowPath, path)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out, `"column_separator": ";"`) || strings.Contains(out, `"types"`) {
		t.Errorf("output = %s", out)
	}
	if info, err := os.Stat(arrowPath); err != nil || info.Size() == 0 {
		t.Errorf("arrow file not written: %v", err)
	}
}

func TestSniff_EmptyInput(t *testing.T) {
	_, stderr, code := runCLI(t, "", "sniff")
	if code != 1 || !strings.Contains(stderr, "DOC002") {
		t.Errorf("code %d, stderr %q", code, stderr)
	}
}

func TestJSONSchema(t *testing.T) {
	out, _, code := runCLI(t, `{"a":[1]}`, "json-schema", "-name", "doc")
	if code != 0 || !strings.Contains(out, `"doc"`) {
		t.Errorf("code %d, out %s", code, out)
	}
}

func TestINI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.ini")
	if err := os.WriteFile(path, []byte("[db]\nport = 5432\nhost = localhost\n[other]\nx = 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, _, code := runCLI(t, "", "ini", "-section", "db", "-key", "port=port,db_port", path)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	var got map[string]map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(got) != 1 || got["db"]["port"] != float64(5432) || got["db"]["host"] != nil {
		t.Errorf("result = %v", got)
	}

	if _, _, code := runCLI(t, "", "ini", "-key", "broken", path); code != 1 {
		t.Errorf("bad -key exit code = %d, want 1", code)
	}
}

func TestExtract(t *testing.T) {
	out, _, code := runCLI(t, "id=1\nid=22\n", "extract", "-start", "id=", "-end", `\n`)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	var got []string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "1" || got[1] != "22" {
		t.Errorf("values = %q", got)
	}
}

func TestMatch(t *testing.T) {
	out, _, code := runCLI(t, "", "match", "-match", "ab", "xaby", "zz")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	var got []matchResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || !got[0].Match || got[1].Match {
		t.Errorf("results = %+v", got)
	}
}

func TestParseEndChar(t *testing.T) {
	tests := []struct {
		in      string
		want    byte
		wantErr bool
	}{
		{",", ',', false},
		{`\t`, '\t', false},
		{`\n`, '\n', false},
		{"", 0, true},
		{"ab", 0, true},
	}
	for _, tt := range tests {
		got, err := parseEndChar(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseEndChar(%q) = %q, %v", tt.in, got, err)
		}
	}
}
