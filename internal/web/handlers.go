package web

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/typesniff/internal/core"
	"github.com/JonMunkholm/typesniff/internal/datetime"
)

// maxProfileListLimit caps the ?limit parameter of the profile listing.
const maxProfileListLimit = 500

// classifyRequest is the body of POST /api/classify.
type classifyRequest struct {
	Tokens []string `json:"tokens" validate:"required,min=1,max=10000"`
}

// dateTimeRequest is the body of POST /api/datetime.
type dateTimeRequest struct {
	Token string `json:"token" validate:"required,max=128"`
}

// dateTimeResponse reports a recognition; only Matched is set on a miss.
type dateTimeResponse struct {
	Matched bool            `json:"matched"`
	Kind    string          `json:"kind,omitempty"`
	Format  string          `json:"format,omitempty"`
	Value   string          `json:"value,omitempty"`
	Fields  *datetime.Value `json:"fields,omitempty"`
}

type healthResponse struct {
	Status   string             `json:"status"`
	Database bool               `json:"database"`
	Limiter  core.LimiterStatus `json:"limiter"`
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// handleHealth reports liveness, database reachability and limiter state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:   "ok",
		Database: s.service.HasDatabase(),
		Limiter:  s.service.Limiter().Status(),
	}
	status := http.StatusOK
	if err := s.service.Ping(r.Context()); err != nil {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSONStatus(w, status, resp)
}

// handleClassify classifies a batch of tokens.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[classifyRequest](w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	values, err := s.service.ClassifyBatch(r.Context(), req.Tokens)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, values)
}

// handleDateTime recognizes one datetime token.
func (s *Server) handleDateTime(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[dateTimeRequest](w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	res, ok := s.service.RecognizeDateTime(req.Token)
	if !ok {
		writeJSON(w, dateTimeResponse{})
		return
	}
	writeJSON(w, dateTimeResponse{
		Matched: true,
		Kind:    res.Kind.String(),
		Format:  res.Format,
		Value:   res.String(),
		Fields:  &res.Value,
	})
}

// handleFormats lists the datetime catalog in recognition order.
func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, datetime.Formats())
}

// handleSniff infers the dialect and column types of the raw body.
func (s *Server) handleSniff(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.SniffDocument(r.Context(), r.Body, sniffRequest(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// handleSniffArrow returns the raw body as an Arrow IPC stream typed by the
// sniffed schema. The stream is buffered so errors can still be reported.
func (s *Server) handleSniffArrow(w http.ResponseWriter, r *http.Request) {
	doc, err := s.service.ReadDocument(r.Body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	rows, err := s.service.ExportArrow(r.Context(), &buf, doc.Content, sniffRequest(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.apache.arrow.stream")
	w.Header().Set("X-Row-Count", strconv.FormatInt(rows, 10))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleJSONSchema infers an Avro-style schema from a JSON body.
func (s *Server) handleJSONSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := s.service.InferJSONSchema(r.Context(), r.Body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, schema)
}

// handleINI parses an INI body and classifies every value.
func (s *Server) handleINI(w http.ResponseWriter, r *http.Request) {
	doc, err := s.service.ParseINI(r.Body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, doc)
}

// handleIngest loads the raw body into a new Postgres table.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	req := core.IngestRequest{
		Table:            chi.URLParam(r, "table"),
		ExtraHeaderChars: r.URL.Query().Get("extra"),
		ProfileName:      r.URL.Query().Get("profile"),
	}
	res, err := s.service.Ingest(r.Context(), r.Body, req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, res)
}

// handleListProfiles returns the newest sniff profiles.
func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	limit := min(parseIntParam(r, "limit", core.DefaultProfileListLimit), maxProfileListLimit)
	profiles, err := s.service.ListProfiles(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, profiles)
}

// handleGetProfile returns one sniff profile.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, &validationError{detail: "id must be a valid UUID"})
		return
	}
	p, err := s.service.GetProfile(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, p)
}

// handleReportPage renders the report input page.
func (s *Server) handleReportPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = reportPage().Render(r.Context(), w)
}

// handleReport renders the sniff report of the raw body as an HTML fragment.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.SniffDocument(r.Context(), r.Body, sniffRequest(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = schemaReport(res).Render(r.Context(), w)
}

func sniffRequest(r *http.Request) core.SniffRequest {
	return core.SniffRequest{ExtraHeaderChars: r.URL.Query().Get("extra")}
}
