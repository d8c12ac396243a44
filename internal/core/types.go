package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/typesniff/internal/sniff"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// copier is the subset of pgx needed for bulk loads.
type copier interface {
	DBTX
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

// SniffRequest tunes a single document analysis.
type SniffRequest struct {
	ExtraHeaderChars string
}

// SniffResult is an inferred schema plus timing for one document.
type SniffResult struct {
	Schema   *sniff.Schema `json:"schema"`
	Bytes    int64         `json:"bytes"`
	Duration time.Duration `json:"duration_ns"`
}

// IngestRequest loads a document into a Postgres table.
type IngestRequest struct {
	Table            string
	ExtraHeaderChars string
	ProfileName      string // defaults to Table
}

// IngestColumn is one created column.
type IngestColumn struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	PgType string `json:"pg_type"`
}

// IngestResult summarizes an ingest.
type IngestResult struct {
	ProfileID uuid.UUID      `json:"profile_id"`
	Table     string         `json:"table"`
	Columns   []IngestColumn `json:"columns"`
	Rows      int64          `json:"rows"`
	Rejected  int            `json:"rejected_cells"`
	Duration  time.Duration  `json:"duration_ns"`
}

// Profile is a stored sniff schema.
type Profile struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Table     string        `json:"table,omitempty"`
	Schema    *sniff.Schema `json:"schema"`
	Rows      int64         `json:"rows"`
	Rejected  int           `json:"rejected_cells"`
	CreatedAt time.Time     `json:"created_at"`
}
