package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/typesniff/internal/classify"
	"github.com/JonMunkholm/typesniff/internal/logging"
	"github.com/JonMunkholm/typesniff/internal/sniff"
)

// ErrInvalidTableName is returned for a target table that is not a plain
// lower-case identifier.
var ErrInvalidTableName = errors.New("invalid table name")

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// Ingest sniffs a document, creates the target table from the inferred
// column types, bulk loads the rows with COPY and records a profile.
func (s *Service) Ingest(ctx context.Context, r io.Reader, req IngestRequest) (*IngestResult, error) {
	if s.db == nil {
		return nil, ErrNoDatabase
	}
	if !tableNamePattern.MatchString(req.Table) || req.Table == profilesTable {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTableName, req.Table)
	}

	doc, err := s.ReadDocument(r)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	logger := logging.WithFields(ctx, "table", req.Table)

	sniffed, err := s.SniffContent(ctx, doc.Content, SniffRequest{ExtraHeaderChars: req.ExtraHeaderChars})
	if err != nil {
		return nil, err
	}
	schema := sniffed.Schema
	if schema.DataRowCount() == 0 {
		return nil, fmt.Errorf("ingest %s: no rows after header", req.Table)
	}

	cols := IngestColumns(schema)
	if _, err := s.db.Exec(ctx, createTableSQL(req.Table, cols)); err != nil {
		return nil, fmt.Errorf("create table %s: %w", req.Table, err)
	}

	rows, rejected := buildCopyRows(sniff.Records(doc.Content, schema), schema, s.classifier)

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	copied, err := s.db.CopyFrom(ctx, pgx.Identifier{req.Table}, names, pgx.CopyFromRows(rows))
	if err != nil {
		return nil, fmt.Errorf("copy into %s: %w", req.Table, err)
	}

	name := req.ProfileName
	if name == "" {
		name = req.Table
	}
	profile, err := s.SaveProfile(ctx, name, req.Table, schema, copied, rejected)
	if err != nil {
		return nil, err
	}

	res := &IngestResult{
		ProfileID: profile.ID,
		Table:     req.Table,
		Columns:   cols,
		Rows:      copied,
		Rejected:  rejected,
		Duration:  time.Since(start),
	}
	logger.Info("document ingested",
		"rows", res.Rows,
		"columns", len(cols),
		"rejected_cells", rejected,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// IngestColumns derives unique column names and Postgres types for schema.
func IngestColumns(schema *sniff.Schema) []IngestColumn {
	cols := make([]IngestColumn, len(schema.Columns))
	seen := make(map[string]int, len(cols))
	for i, c := range schema.Columns {
		name := columnFallback(i)
		if schema.HasHeader {
			name = toDBColumnName(c.Name, i)
		}
		if seen[name] > 0 {
			base := name
			for n := seen[base] + 1; ; n++ {
				name = base + "_" + strconv.Itoa(n)
				if seen[name] == 0 {
					seen[base] = n
					break
				}
			}
		}
		seen[name]++
		cols[i] = IngestColumn{Name: name, Kind: c.Type.String(), PgType: PgType(c.Type, c.Zoned)}
	}
	return cols
}

func createTableSQL(table string, cols []IngestColumn) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = quoteIdentifier(c.Name) + " " + c.PgType
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdentifier(table), strings.Join(defs, ", "))
}

// buildCopyRows converts records into COPY rows. Missing trailing cells
// are NULL; cells beyond the column count are dropped.
func buildCopyRows(records [][]string, schema *sniff.Schema, c *classify.Classifier) ([][]any, int) {
	rows := make([][]any, len(records))
	rejected := 0
	for i, rec := range records {
		row := make([]any, len(schema.Columns))
		for j, col := range schema.Columns {
			if j >= len(rec) {
				continue
			}
			v, ok := ToPgValue(c.Classify(rec[j]), col.Type)
			if !ok {
				rejected++
			}
			row[j] = v
		}
		rows[i] = row
	}
	return rows, rejected
}
