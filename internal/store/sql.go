package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const mysqlDuplicateEntry = 1062

// SQLStore keeps profiles in SQLite or MySQL through database/sql.
type SQLStore struct {
	db     *sql.DB
	driver string
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore opens driver ("sqlite" or "mysql") at dsn and creates the
// profile table if needed.
func NewSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	var schema string
	switch driver {
	case "sqlite":
		schema = `
			CREATE TABLE IF NOT EXISTS scorecard_profiles (
				profile_id  TEXT PRIMARY KEY,
				name        TEXT NOT NULL UNIQUE,
				notes       TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL,
				created_at  TIMESTAMP NOT NULL,
				updated_at  TIMESTAMP NOT NULL
			)`
	case "mysql":
		schema = `
			CREATE TABLE IF NOT EXISTS scorecard_profiles (
				profile_id  CHAR(36) PRIMARY KEY,
				name        VARCHAR(255) NOT NULL UNIQUE,
				notes       TEXT NOT NULL,
				description JSON NOT NULL,
				created_at  DATETIME(6) NOT NULL,
				updated_at  DATETIME(6) NOT NULL
			)`
		dsn = withParseTime(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if driver == "sqlite" {
		// One connection avoids "database is locked" under concurrent writes.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLStore{db: db, driver: driver}, nil
}

// withParseTime makes the MySQL driver scan DATETIME into time.Time.
func withParseTime(dsn string) string {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return dsn
	}
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) CreateProfile(ctx context.Context, p *StoredProfile) error {
	descJSON, err := json.Marshal(p.Description)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scorecard_profiles (profile_id, name, notes, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID.String(), p.Name, p.Notes, string(descJSON), now, now,
	)
	if isDuplicate(err) {
		return fmt.Errorf("%w: %q", ErrNameTaken, p.Name)
	}
	if err != nil {
		return err
	}
	p.CreatedAt, p.UpdatedAt = now, now
	return nil
}

func (s *SQLStore) GetProfile(ctx context.Context, id uuid.UUID) (*StoredProfile, error) {
	return s.getOne(ctx, `SELECT `+profileColumns+` FROM scorecard_profiles WHERE profile_id = ?`, id.String())
}

func (s *SQLStore) GetProfileByName(ctx context.Context, name string) (*StoredProfile, error) {
	return s.getOne(ctx, `SELECT `+profileColumns+` FROM scorecard_profiles WHERE name = ?`, name)
}

func (s *SQLStore) getOne(ctx context.Context, query string, arg any) (*StoredProfile, error) {
	p, err := scanSQLProfile(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (s *SQLStore) ListProfiles(ctx context.Context, filter ProfileFilter) ([]*StoredProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM scorecard_profiles`
	args := []interface{}{}
	if filter.NamePrefix != "" {
		query += ` WHERE name LIKE ? ESCAPE '` + likeEscape + `'`
		args = append(args, likePrefix(filter.NamePrefix))
	}
	query += ` ORDER BY name LIMIT ? OFFSET ?`
	args = append(args, filter.limit(), filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*StoredProfile
	for rows.Next() {
		p, err := scanSQLProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteProfile(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scorecard_profiles WHERE profile_id = ?`, id.String())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLProfile(row rowScanner) (*StoredProfile, error) {
	p := &StoredProfile{}
	var id, desc string
	if err := row.Scan(&id, &p.Name, &p.Notes, &desc, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("stored profile id %q: %w", id, err)
	}
	p.ID = parsed
	return decodeDescription(p, []byte(desc))
}

func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
