package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with its technical detail and request id, then
// mapped through core.MapError to a support code. The code picks the HTTP
// status; the report pages get an HTML fragment, everything else JSON.

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/JonMunkholm/typesniff/internal/core"
	"github.com/JonMunkholm/typesniff/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// statusByCode maps support codes to HTTP status. Codes not listed are 500.
var statusByCode = map[string]int{
	"DOC001":  http.StatusRequestEntityTooLarge,
	"DOC002":  http.StatusBadRequest,
	"DOC003":  http.StatusBadRequest,
	"DOC004":  http.StatusUnprocessableEntity,
	"JSON001": http.StatusBadRequest,
	"JSON002": http.StatusUnprocessableEntity,
	"INI001":  http.StatusNotFound,
	"INI002":  http.StatusBadRequest,
	"ANL001":  http.StatusServiceUnavailable,
	"ANL002":  http.StatusBadRequest,
	"ANL003":  http.StatusGatewayTimeout,
	"DB001":   http.StatusServiceUnavailable,
	"DB002":   http.StatusConflict,
	"DB003":   http.StatusServiceUnavailable,
	"DB004":   http.StatusServiceUnavailable,
	"DB005":   http.StatusNotFound,
	"DB006":   http.StatusBadRequest,
	"REQ001":  http.StatusBadRequest,
	"RATE001": http.StatusTooManyRequests,
}

// statusFor returns the HTTP status for err.
func statusFor(err error) int {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return http.StatusRequestEntityTooLarge
	}
	if status, ok := statusByCode[core.MapError(err).Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// validationError carries a translated validator message to the client.
type validationError struct {
	detail string
}

func (e *validationError) Error() string {
	return "validation failed: " + e.detail
}

// respondError logs err and writes the mapped user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	if status == http.StatusServiceUnavailable && w.Header().Get("Retry-After") == "" {
		w.Header().Set("Retry-After", "5")
	}

	if wantsHTML(r) {
		respondErrorHTML(w, r, userMsg, status)
		return
	}

	resp := ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}
	var verr *validationError
	if errors.As(err, &verr) {
		resp.Details = verr.detail
	}
	writeJSONStatus(w, status, resp)
}

// respondErrorHTML renders the error fragment of the report page.
func respondErrorHTML(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = errorAlert(msg).Render(r.Context(), w)
}

// wantsHTML reports whether the client gets an HTML error: report pages,
// unless JSON is asked for explicitly.
func wantsHTML(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return false
	}
	return strings.HasPrefix(r.URL.Path, "/report")
}

// writeJSON encodes v as JSON with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus encodes v as JSON. Encoding errors are logged since
// headers are already sent.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
