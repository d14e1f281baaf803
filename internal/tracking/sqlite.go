package tracking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS tracking (
	id              TEXT PRIMARY KEY,
	date            TEXT NOT NULL,
	pest_name       TEXT NOT NULL,
	location        TEXT NOT NULL DEFAULT '',
	affected_plants TEXT NOT NULL DEFAULT '',
	treatment_plan  TEXT NOT NULL DEFAULT '',
	notes           TEXT NOT NULL DEFAULT '',
	created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tracking_created_at ON tracking(created_at);
CREATE INDEX IF NOT EXISTS idx_tracking_pest_date ON tracking(pest_name, date);
`

const selectColumns = `SELECT id, date, pest_name, location, affected_plants, treatment_plan, notes, created_at FROM tracking`

// SQLiteStore keeps entries in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// OpenSQLite opens or creates the database at path. ":memory:" opens a
// private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path, now: time.Now}, nil
}

// Path returns the database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) Add(ctx context.Context, e Entry) (string, error) {
	e.ID = uuid.NewString()
	e.CreatedAt = s.now()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tracking (id, date, pest_name, location, affected_plants, treatment_plan, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, formatTime(e.Date), e.PestName, e.Location, e.AffectedPlants, e.TreatmentPlan, e.Notes, formatTime(e.CreatedAt),
	)
	if err != nil {
		return "", fmt.Errorf("insert tracking entry: %w", err)
	}
	return e.ID, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	return s.query(ctx, selectColumns+` ORDER BY created_at DESC, rowid DESC`)
}

func (s *SQLiteStore) Search(ctx context.Context, term string) ([]Entry, error) {
	if term == "" {
		return s.List(ctx)
	}
	return s.query(ctx,
		selectColumns+` WHERE pest_name >= ? AND pest_name <= ? ORDER BY pest_name ASC, date DESC`,
		term, term+searchUpperBound,
	)
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Entry, error) {
	rows, err := s.query(ctx, selectColumns+` WHERE id = ?`, id)
	if err != nil {
		return Entry{}, err
	}
	if len(rows) == 0 {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rows[0], nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query tracking entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var date, createdAt string
		if err := rows.Scan(&e.ID, &date, &e.PestName, &e.Location, &e.AffectedPlants, &e.TreatmentPlan, &e.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("scan tracking entry: %w", err)
		}
		if e.Date, err = parseTime(date); err != nil {
			return nil, fmt.Errorf("entry %s: bad date %q: %w", e.ID, date, err)
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("entry %s: bad created_at %q: %w", e.ID, createdAt, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracking entries: %w", err)
	}
	return entries, nil
}

var _ Store = (*SQLiteStore)(nil)
