package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/JonMunkholm/typesniff/internal/config"
	"github.com/JonMunkholm/typesniff/internal/core"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(func(string) string { return "" })
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	cfg.Rate.Enabled = false
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config, limiter *core.AnalysisLimiter) *Server {
	t.Helper()
	svc := core.NewService(nil, limiter, core.Options{Workers: 1})
	s := NewServer(svc, cfg)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) ErrorResponse {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	resp := decodeBody[ErrorResponse](t, rec)
	if resp.Code != code {
		t.Errorf("code = %q, want %q", resp.Code, code)
	}
	return resp
}

// ----------------------------------------------------------------------------
// Health Tests
// ----------------------------------------------------------------------------

func TestHealth(t *testing.T) {
	s := newTestServer(t, testConfig(t), nil)
	rec := do(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeBody[healthResponse](t, rec)
	if resp.Status != "ok" || resp.Database {
		t.Errorf("health = %+v", resp)
	}
	if resp.Limiter.MaxConcurrent != core.DefaultMaxConcurrentAnalyses {
		t.Errorf("limiter = %+v", resp.Limiter)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}

// ----------------------------------------------------------------------------
// Classification Tests
// ----------------------------------------------------------------------------

func TestClassify(t *testing.T) {
	s := newTestServer(t, testConfig(t), nil)
	rec := do(t, s, http.MethodPost, "/api/classify", `{"tokens":["42","abc","","0x1F"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	got := decodeBody[[]struct {
		Kind string `json:"kind"`
		Raw  string `json:"raw"`
	}](t, rec)

	want := []string{"int", "str", "null", "hex"}
	if len(got) != len(want) {
		t.Fatalf("got %d values", len(got))
	}
	for i, w := range want {
		if got[i].Kind != w {
			t.Errorf("value %d (%q) kind = %q, want %q", i, got[i].Raw, got[i].Kind, w)
		}
	}
}

func TestClassify_BadRequests(t *testing.T) {
	s := newTestServer(t, testConfig(t), nil)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"empty token list", `{"tokens":[]}`, "REQ001"},
		{"missing tokens", `{}`, "REQ001"},
		{"empty body", ``, "REQ001"},
		{"unknown field", `{"tokens":["1"],"extra":true}`, "JSON001"},
		{"malformed", `{"tokens":`, "JSON001"},
		{"trailing data", `{"tokens":["1"]} {}`, "JSON001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := assertError(t, do(t, s, http.MethodPost, "/api/classify", tt.body), http.StatusBadRequest, tt.code)
			if tt.code == "REQ001" && tt.body != "" && !strings.Contains(resp.Details, "tokens") {
				t.Errorf("details = %q, want field name", resp.Details)
			}
		})
	}
}

func TestDateTime(t *testing.T) {
	s := newTestServer(t, testConfig(t), nil)

	rec := do(t, s, http.MethodPost, "/api/datetime", `{"token":"2021-03-04T05:06:07Z"}`)
	resp := decodeBody[dateTimeResponse](t, rec)
	if !resp.Matched || resp.Kind != "datetime" || resp.Value != "2021-03-04T05:06:07Z" {
		t.Errorf("response = %+v", resp)
	}
	if resp.Fields == nil || resp.Fields.Year != 2021 || !resp.Fields.HasTZD {
		t.Errorf("fields = %+v", resp.Fields)
	}

	rec = do(t, s, http.MethodPost, "/api/datetime", `{"token":"not a date"}`)
	if resp := decodeBody[dateTimeResponse](t, rec); resp.Matched || resp.Fields != nil {
		t.Errorf("miss = %+v", resp)
	}
}

func TestFormats(t *testing.T) {
	s := newTestServer(t, testConfig(t), nil)
	rec := do(t, s, http.MethodGet, "/api/datetime/formats", "")
	formats := decodeBody[[]struct {
		Name string `json:"name"`
		Kind string `json:"kind"`
	}](t, rec)
	if len(formats) == 0 || formats[0].Name == "" || formats[0].Kind == "" {
		t.Errorf("formats = %+v", formats)
	}
}

// ----------------------------------------------------------------------------
// Document Tests
// ----------------------------------------------------------------------------

func TestSniff(t *testing.T) {
	s := newTestServer(t, testConfig(t), nil)
	rec := do(t, s, http.MethodPost, "/api/sniff", "a|b\n1|x\n")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[struct {
		Schema struct {
			ColumnSeparator string   `json:"column_separator"`
			HasHeader       bool     `json:"has_header"`
			Header          []string `json:"header"`
		} `json:"schema"`
		Bytes int64 `json:"bytes"`
	}](t, rec)
	if resp.Schema.ColumnSeparator != "|" || !resp.Schema.HasHeader || resp.Bytes != 8 {
		t.Errorf("response = %+v", resp)
	}
}

func TestSniff_Errors(t *testing.T) {
	cfg := testConfig(t)
	s := newTestServer(t, cfg, nil)
	assertError(t, do(t, s, http.MethodPost, "/api/sniff", ""), http.StatusBadRequest, "DOC002")
}

func TestSniffArrow(t *testing.T) {
	s := newTestServer(t, testConfig(t), nil)
	rec := do(t, s, http.MethodPost, "/api/sniff/arrow", "id,name\n1,a\n2,b\n")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/vnd.apache.arrow.stream" {
		t.Errorf("content type = %q", ct)
	}
	if rec.Header().Get("X-Row-Count") != "2" {
		t.Errorf("row count = %q", rec.Header().Get("X-Row-Count"))
	}
	if rec.Body.Len() == 0 {
		t.Error("empty stream")
	}
}

func TestJSONSchema(t *testing.T) {
	s := newTestServer(t, testConfig(t), nil)

	rec := do(t, s, http.MethodPost, "/api/json-schema", `{"name":"x","tags":["a"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[map[string]any](t, rec)
	if resp["type"] != "record" {
		t.Errorf("schema = %v", resp)
	}

	assertError(t, do(t, s, http.MethodPost, "/api/json-schema", `{"a":`), http.StatusBadRequest, "JSON001")
}

func TestINI(t *testing.T) {
	s := newTestServer(t, testConfig(t), nil)
	rec := do(t, s, http.MethodPost, "/api/ini", "[db]\nport = 5432\n")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[map[string]map[string]struct {
		Kind  string `json:"kind"`
		Value any    `json:"value"`
	}](t, rec)
	if port := resp["db"]["port"]; port.Kind != "int" || port.Value != float64(5432) {
		t.Errorf("port = %+v", port)
	}
}

// ----------------------------------------------------------------------------
// Database Route Tests
// ----------------------------------------------------------------------------

func TestDatabaseRoutes_NoDatabase(t *testing.T) {
	s := newTestServer(t, testConfig(t), nil)

	assertError(t, do(t, s, http.MethodPost, "/api/ingest/orders", "a\n1\n"), http.StatusServiceUnavailable, "DB001")
	assertError(t, do(t, s, http.MethodGet, "/api/profiles", ""), http.StatusServiceUnavailable, "DB001")
	assertError(t, do(t, s, http.MethodGet, "/api/profiles/"+"4f1c1b7e-8d0e-4d39-9a55-7d9a2b0c1e11", ""), http.StatusServiceUnavailable, "DB001")
	assertError(t, do(t, s, http.MethodGet, "/api/profiles/nope", ""), http.StatusBadRequest, "REQ001")
}

// ----------------------------------------------------------------------------
// Report Tests
// ----------------------------------------------------------------------------

func TestReport(t *testing.T) {
	s := newTestServer(t, testConfig(t), nil)

	rec := do(t, s, http.MethodGet, "/report", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<form") {
		t.Errorf("page = %d %q", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodPost, "/report", "name,joined\n<b>bob</b>,2020-01-01\n")
	body := rec.Body.String()
	if rec.Code != http.StatusOK || !strings.Contains(body, "Dialect") || !strings.Contains(body, "joined") {
		t.Errorf("report = %d %q", rec.Code, body)
	}
	if !strings.Contains(body, ">date<") {
		t.Errorf("report should show the date kind: %q", body)
	}

	rec = do(t, s, http.MethodPost, "/report", "")
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "DOC002") {
		t.Errorf("error fragment = %d %q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("error content type = %q", ct)
	}
}

func TestReport_EscapesHeader(t *testing.T) {
	s := newTestServer(t, testConfig(t), nil)
	rec := do(t, s, http.MethodPost, "/report", "<script>x</script>,b\n1,2\n")
	if strings.Contains(rec.Body.String(), "<script>x") {
		t.Error("header cell was not escaped")
	}
}

// ----------------------------------------------------------------------------
// Limit Tests
// ----------------------------------------------------------------------------

func TestRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Rate.Enabled = true
	cfg.Rate.RequestsPerMinute = 2
	s := newTestServer(t, cfg, nil)

	for i := 0; i < 2; i++ {
		if rec := do(t, s, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, rec.Code)
		}
	}
	rec := do(t, s, http.MethodGet, "/api/datetime/formats", "")
	assertError(t, rec, http.StatusTooManyRequests, "RATE001")
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
}

func TestAnalysisSlots(t *testing.T) {
	limiter := core.NewAnalysisLimiter(1, 10*time.Millisecond)
	s := newTestServer(t, testConfig(t), limiter)

	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	assertError(t, do(t, s, http.MethodPost, "/api/sniff", "a\n1\n"), http.StatusServiceUnavailable, "ANL001")

	limiter.Release()
	if rec := do(t, s, http.MethodPost, "/api/sniff", "a\n1\n"); rec.Code != http.StatusOK {
		t.Errorf("after release status = %d", rec.Code)
	}
	if limiter.ActiveCount() != 0 {
		t.Errorf("slot leaked: active = %d", limiter.ActiveCount())
	}
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig(t)
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"k1"}
	s := newTestServer(t, cfg, nil)

	if rec := do(t, s, http.MethodGet, "/api/datetime/formats", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("without key status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/datetime/formats", nil)
	req.Header.Set("X-API-Key", "k1")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("with key status = %d", rec.Code)
	}

	if rec := do(t, s, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("health should not need a key: %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	cfg := testConfig(t)
	cfg.Security.CORSOrigins = []string{"https://app.example"}
	s := newTestServer(t, cfg, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/classify", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("allow origin = %q", got)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrDocumentTooLarge, http.StatusRequestEntityTooLarge},
		{&http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge},
		{core.ErrProfileNotFound, http.StatusNotFound},
		{core.ErrTooManyAnalyses, http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errRateLimited, http.StatusTooManyRequests},
		{&validationError{detail: "x"}, http.StatusBadRequest},
		{context.Canceled, http.StatusBadRequest},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
