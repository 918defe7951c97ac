// Package joblog keeps a local history of per-document pipeline runs.
package joblog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS job_log (
	id         TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	stage      TEXT NOT NULL,
	status     TEXT NOT NULL,
	message    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS job_log_source_idx ON job_log (source);
`

// Entry is one recorded stage outcome for one document.
type Entry struct {
	ID        uuid.UUID
	Source    string
	Stage     string
	Status    string
	Message   string
	CreatedAt time.Time
}

type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (and bootstraps) the store. An empty path opens an in-memory
// database, which is what the tests use.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open job log: %w", err)
	}
	// modernc sqlite serializes on a single connection; more just contend.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap job log schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one stage outcome and returns its id.
func (s *Store) Record(ctx context.Context, source, stage, status, message string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO job_log (id, source, stage, status, message, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id.String(), source, stage, status, message, time.Now().UTC(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("record job log entry: %w", err)
	}
	return id, nil
}

// ListBySource returns all entries for one source document, oldest first.
func (s *Store) ListBySource(ctx context.Context, source string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, stage, status, message, created_at
		 FROM job_log WHERE source = ? ORDER BY created_at ASC, rowid ASC`, source)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// ListRecent returns the latest entries across all documents.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, stage, status, message, created_at
		 FROM job_log ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer func() {
		_ = rows.Close()
	}()

	var out []Entry
	for rows.Next() {
		var e Entry
		var id string
		if err := rows.Scan(&id, &e.Source, &e.Stage, &e.Status, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("corrupt job log id %q: %w", id, err)
		}
		e.ID = parsed
		out = append(out, e)
	}
	return out, rows.Err()
}
