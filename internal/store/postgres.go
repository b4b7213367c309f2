package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS scorecard_profiles (
	profile_id  UUID PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	notes       TEXT NOT NULL DEFAULT '',
	description JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const uniqueViolation = "23505"

type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const profileColumns = `profile_id, name, notes, description, created_at, updated_at`

func (s *PostgresStore) CreateProfile(ctx context.Context, p *StoredProfile) error {
	descJSON, err := json.Marshal(p.Description)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	err = s.pool.QueryRow(ctx, `
		INSERT INTO scorecard_profiles (profile_id, name, notes, description)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Notes, descJSON,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %q", ErrNameTaken, p.Name)
	}
	return err
}

func (s *PostgresStore) GetProfile(ctx context.Context, id uuid.UUID) (*StoredProfile, error) {
	return s.getOne(ctx, `SELECT `+profileColumns+` FROM scorecard_profiles WHERE profile_id = $1`, id)
}

func (s *PostgresStore) GetProfileByName(ctx context.Context, name string) (*StoredProfile, error) {
	return s.getOne(ctx, `SELECT `+profileColumns+` FROM scorecard_profiles WHERE name = $1`, name)
}

func (s *PostgresStore) getOne(ctx context.Context, query string, arg any) (*StoredProfile, error) {
	p, err := scanProfile(s.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostgresStore) ListProfiles(ctx context.Context, filter ProfileFilter) ([]*StoredProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM scorecard_profiles WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.NamePrefix != "" {
		n++
		query += fmt.Sprintf(" AND name LIKE $%d ESCAPE '%s'", n, likeEscape)
		args = append(args, likePrefix(filter.NamePrefix))
	}
	query += " ORDER BY name"
	n++
	query += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, filter.limit())
	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*StoredProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteProfile(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM scorecard_profiles WHERE profile_id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanProfile(row pgx.Row) (*StoredProfile, error) {
	p := &StoredProfile{}
	var descJSON []byte
	if err := row.Scan(&p.ID, &p.Name, &p.Notes, &descJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return decodeDescription(p, descJSON)
}
