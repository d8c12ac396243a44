// # Error Codes Reference
//
// User-facing errors carry a code that can be quoted to support. Codes are
// grouped by category:
//
// # Document Errors (DOC001-DOC099)
//
//	DOC001 - Document too large: The document exceeds the size limit
//	         Action: Split the document or raise ANALYSIS_MAX_DOCUMENT_SIZE
//	         Patterns: "document too large"
//
//	DOC002 - Empty document: The document has no content
//	         Action: Send a document with at least one row
//	         Patterns: "empty document"
//
//	DOC003 - Encoding error: The document could not be decoded
//	         Action: Save the document as UTF-8 or UTF-16 with a BOM
//	         Patterns: "encoding", "decode"
//
//	DOC004 - Not tabular: No rows could be read from the document
//	         Action: Check the line and column separators
//	         Patterns: "no rows"
//
// # JSON Errors (JSON001-JSON099)
//
//	JSON001 - Invalid JSON: The body is not valid JSON
//	          Action: Validate the document with a JSON linter
//	          Patterns: "parse json", "invalid character"
//
//	JSON002 - Too deep: The JSON document nests too deeply
//	          Action: Flatten the document or raise ANALYSIS_MAX_JSON_DEPTH
//	          Patterns: "maximum nesting depth"
//
// # INI Errors (INI001-INI099)
//
//	INI001 - No configuration: None of the requested files exist
//	         Action: Check the file paths or provide defaults
//	         Patterns: "no configuration file"
//
//	INI002 - Unreadable configuration: A configuration file could not be read
//	         Action: Check file permissions
//	         Patterns: "read ini"
//
// # Analysis Errors (ANL001-ANL099)
//
//	ANL001 - System busy: Too many analyses in progress
//	         Action: Please wait a moment and try again
//	         Patterns: "too many concurrent analyses"
//
//	ANL002 - Request cancelled: The request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	ANL003 - Request timeout: The analysis took too long
//	         Action: Send a smaller document or try again later
//	         Patterns: "context deadline exceeded"
//
// # Database Errors (DB001-DB099)
//
//	DB001 - No database: Ingest and profiles need a database
//	        Action: Set DATABASE_URL and restart the server
//	        Patterns: "database not configured"
//
//	DB002 - Duplicate key: A record with this key already exists
//	        Action: Use a different target table
//	        Patterns: "duplicate key", "violates unique"
//
//	DB003 - Connection refused: Unable to connect to database
//	        Action: Please try again in a few moments
//	        Patterns: "connection refused"
//
//	DB004 - Connection reset: Database connection was interrupted
//	        Action: Please try again
//	        Patterns: "connection reset"
//
//	DB005 - Profile not found: No sniff profile has this id
//	        Action: List profiles to find a valid id
//	        Patterns: "profile not found"
//
//	DB006 - Invalid table name: The target table name is not usable
//	        Action: Use letters, digits and underscores only
//	        Patterns: "invalid table name"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Invalid request: The request failed validation
//	         Action: Fix the listed fields and retry
//	         Patterns: "validation failed"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgTooLarge = UserMessage{"The document exceeds the size limit", "Split the document or raise ANALYSIS_MAX_DOCUMENT_SIZE", "DOC001"}
	msgEncoding = UserMessage{"The document could not be decoded", "Save the document as UTF-8 or UTF-16 with a BOM", "DOC003"}
	msgBadJSON  = UserMessage{"The body is not valid JSON", "Validate the document with a JSON linter", "JSON001"}
	msgDupKey   = UserMessage{"A record with this key already exists", "Use a different target table", "DB002"}
)

// errorPatterns is ordered: more specific patterns first.
var errorPatterns = []errorPattern{
	// Document
	{"document too large", msgTooLarge},
	{"request body too large", msgTooLarge},
	{"empty document", UserMessage{"The document has no content", "Send a document with at least one row", "DOC002"}},
	{"encoding", msgEncoding},
	{"decode", msgEncoding},
	{"no rows", UserMessage{"No rows could be read from the document", "Check the line and column separators", "DOC004"}},

	// JSON
	{"maximum nesting depth", UserMessage{"The JSON document nests too deeply", "Flatten the document or raise ANALYSIS_MAX_JSON_DEPTH", "JSON002"}},
	{"parse json", msgBadJSON},
	{"invalid character", msgBadJSON},

	// INI
	{"no configuration file", UserMessage{"None of the requested configuration files exist", "Check the file paths or provide defaults", "INI001"}},
	{"read ini", UserMessage{"A configuration file could not be read", "Check file permissions", "INI002"}},

	// Analysis
	{"too many concurrent analyses", UserMessage{"System is busy with other analyses", "Please wait a moment and try again", "ANL001"}},
	{"context canceled", UserMessage{"Request was cancelled", "Please try again", "ANL002"}},
	{"context deadline exceeded", UserMessage{"The analysis took too long", "Send a smaller document or try again later", "ANL003"}},

	// Database
	{"database not configured", UserMessage{"Ingest and profiles need a database", "Set DATABASE_URL and restart the server", "DB001"}},
	{"duplicate key", msgDupKey},
	{"violates unique", msgDupKey},
	{"connection refused", UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB003"}},
	{"connection reset", UserMessage{"Database connection was interrupted", "Please try again", "DB004"}},
	{"profile not found", UserMessage{"No sniff profile has this id", "List profiles to find a valid id", "DB005"}},
	{"invalid table name", UserMessage{"The target table name is not usable", "Use letters, digits and underscores only", "DB006"}},

	// Request
	{"validation failed", UserMessage{"The request failed validation", "Fix the listed fields and retry", "REQ001"}},

	// Rate limiting
	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. A nil
// error maps to the zero UserMessage; an unmatched one to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error (for logs) with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err; it returns nil for a nil err.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Technical: err, User: MapError(err)}
}
