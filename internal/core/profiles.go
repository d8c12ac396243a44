package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/typesniff/internal/sniff"
)

// ErrProfileNotFound is returned when no profile has the requested id.
var ErrProfileNotFound = errors.New("profile not found")

const profilesTable = "sniff_profiles"

const createProfilesSQL = `CREATE TABLE IF NOT EXISTS sniff_profiles (
	id             uuid PRIMARY KEY,
	name           text NOT NULL,
	target_table   text NOT NULL DEFAULT '',
	schema         jsonb NOT NULL,
	row_count      bigint NOT NULL DEFAULT 0,
	rejected_cells integer NOT NULL DEFAULT 0,
	created_at     timestamptz NOT NULL DEFAULT now()
)`

// DefaultProfileListLimit caps ListProfiles when no limit is given.
const DefaultProfileListLimit = 50

// EnsureSchema creates the profile table if needed.
func (s *Service) EnsureSchema(ctx context.Context) error {
	if s.db == nil {
		return ErrNoDatabase
	}
	if _, err := s.db.Exec(ctx, createProfilesSQL); err != nil {
		return fmt.Errorf("create %s: %w", profilesTable, err)
	}
	return nil
}

// SaveProfile stores a schema. Per-row cell kinds are not persisted.
func (s *Service) SaveProfile(ctx context.Context, name, table string, schema *sniff.Schema, rows int64, rejected int) (Profile, error) {
	if s.db == nil {
		return Profile{}, ErrNoDatabase
	}

	p := Profile{
		ID:        uuid.New(),
		Name:      name,
		Table:     table,
		Schema:    compactSchema(schema),
		Rows:      rows,
		Rejected:  rejected,
		CreatedAt: time.Now().UTC(),
	}
	body, err := json.Marshal(p.Schema)
	if err != nil {
		return Profile{}, fmt.Errorf("encode profile schema: %w", err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO sniff_profiles (id, name, target_table, schema, row_count, rejected_cells, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		pgtype.UUID{Bytes: p.ID, Valid: true}, p.Name, p.Table, body, p.Rows, p.Rejected, p.CreatedAt,
	)
	if err != nil {
		return Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}

// GetProfile loads one profile.
func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (Profile, error) {
	if s.db == nil {
		return Profile{}, ErrNoDatabase
	}
	row := s.db.QueryRow(ctx,
		`SELECT id, name, target_table, schema, row_count, rejected_cells, created_at
		 FROM sniff_profiles WHERE id = $1`,
		pgtype.UUID{Bytes: id, Valid: true},
	)
	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
	}
	return p, err
}

// ListProfiles returns the newest profiles first.
func (s *Service) ListProfiles(ctx context.Context, limit int) ([]Profile, error) {
	if s.db == nil {
		return nil, ErrNoDatabase
	}
	if limit <= 0 {
		limit = DefaultProfileListLimit
	}
	rows, err := s.db.Query(ctx,
		`SELECT id, name, target_table, schema, row_count, rejected_cells, created_at
		 FROM sniff_profiles ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// PruneProfiles deletes profiles older than maxAge and returns the count.
func (s *Service) PruneProfiles(ctx context.Context, maxAge time.Duration) (int64, error) {
	if s.db == nil {
		return 0, ErrNoDatabase
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM sniff_profiles WHERE created_at < $1`, time.Now().Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("prune profiles: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanProfile(row pgx.Row) (Profile, error) {
	var (
		p    Profile
		id   pgtype.UUID
		body []byte
		rej  int32
	)
	if err := row.Scan(&id, &p.Name, &p.Table, &body, &p.Rows, &rej, &p.CreatedAt); err != nil {
		return Profile{}, err
	}
	p.ID = uuid.UUID(id.Bytes)
	p.Rejected = int(rej)
	p.Schema = &sniff.Schema{}
	if err := json.Unmarshal(body, p.Schema); err != nil {
		return Profile{}, fmt.Errorf("decode profile schema: %w", err)
	}
	return p, nil
}

// compactSchema copies schema without per-row kinds.
func compactSchema(schema *sniff.Schema) *sniff.Schema {
	out := *schema
	out.Columns = make([]sniff.Column, len(schema.Columns))
	for i, c := range schema.Columns {
		c.Types = nil
		out.Columns[i] = c
	}
	return &out
}
