// Package ledger persists every placement decision in a SQLite database.
// The ledger is the authority on what a run did: idempotent reruns, the log
// command, and rollback all read from it.
package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// Operation outcomes.
const (
	OutcomeCopied     = "copied"
	OutcomeSkipped    = "skipped"
	OutcomeSkippedDry = "skipped_dry_run"
	OutcomeFailed     = "failed"
	OutcomeRolledBack = "rolled_back"
)

// Record is one ledger entry.
type Record struct {
	ID           int64
	RunID        string
	SourcePath   string
	DestPath     string
	IdentityKey  string
	Year         int
	Month        int
	Title        string
	Outcome      string
	ErrorMessage string
	CreatedAt    time.Time
}

// Store wraps the ledger database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger database at dbPath.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}
	// Serialized access keeps the single-writer pragmas honest.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=FULL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	store := &Store{db: db}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply ledger schema: %w", err)
	}

	var current sql.NullInt64
	err := s.db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_version").Scan(&current)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	switch {
	case !current.Valid:
		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	case current.Int64 > schemaVersion:
		return fmt.Errorf("ledger schema version %d is newer than supported %d", current.Int64, schemaVersion)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append writes a record and fills in its ID and CreatedAt.
func (s *Store) Append(ctx context.Context, record *Record) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO operations
		(run_id, source_path, dest_path, identity_key, year, month, title, outcome, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.RunID, record.SourcePath, record.DestPath, record.IdentityKey,
		record.Year, record.Month, record.Title, record.Outcome, record.ErrorMessage,
		record.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("append ledger record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("read ledger record id: %w", err)
	}
	record.ID = id
	return nil
}

const recordColumns = `id, run_id, source_path, dest_path, identity_key,
	year, month, title, outcome, error_message, created_at`

func scanRecord(row interface{ Scan(...any) error }) (*Record, error) {
	var record Record
	var createdAt string
	err := row.Scan(&record.ID, &record.RunID, &record.SourcePath, &record.DestPath,
		&record.IdentityKey, &record.Year, &record.Month, &record.Title,
		&record.Outcome, &record.ErrorMessage, &createdAt)
	if err != nil {
		return nil, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse record timestamp %q: %w", createdAt, err)
	}
	record.CreatedAt = parsed
	return &record, nil
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Records returns the most recent entries, newest first.
func (s *Store) Records(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.queryRecords(ctx,
		"SELECT "+recordColumns+" FROM operations ORDER BY id DESC LIMIT ?", limit)
}

// RecordsForRun returns all entries of a run in insertion order.
func (s *Store) RecordsForRun(ctx context.Context, runID string) ([]*Record, error) {
	return s.queryRecords(ctx,
		"SELECT "+recordColumns+" FROM operations WHERE run_id = ? ORDER BY id", runID)
}

// LatestByIdentity returns the newest entry for an identity key, or nil.
func (s *Store) LatestByIdentity(ctx context.Context, key string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM operations WHERE identity_key = ? ORDER BY id DESC LIMIT 1", key)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query identity %s: %w", key, err)
	}
	return record, nil
}

// LatestRunID returns the most recent run identifier, or "".
func (s *Store) LatestRunID(ctx context.Context) (string, error) {
	var runID string
	err := s.db.QueryRowContext(ctx,
		"SELECT run_id FROM operations ORDER BY id DESC LIMIT 1").Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query latest run: %w", err)
	}
	return runID, nil
}

// DestinationTaken reports whether path is claimed by a live copy. The
// ledger is append-only, so liveness is the newest copied/rolled_back
// event for the path.
func (s *Store) DestinationTaken(ctx context.Context, path string) (bool, error) {
	var outcome string
	err := s.db.QueryRowContext(ctx, `
		SELECT outcome FROM operations
		WHERE dest_path = ? AND outcome IN (?, ?)
		ORDER BY id DESC LIMIT 1`,
		path, OutcomeCopied, OutcomeRolledBack).Scan(&outcome)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query destination %s: %w", path, err)
	}
	return outcome == OutcomeCopied, nil
}

// Summary aggregates a run's outcomes.
type Summary struct {
	Copied     int
	Skipped    int
	Failed     int
	RolledBack int
}

// Summarize counts a run's outcomes.
func (s *Store) Summarize(ctx context.Context, runID string) (Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT outcome, COUNT(*) FROM operations WHERE run_id = ? GROUP BY outcome", runID)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize run %s: %w", runID, err)
	}
	defer rows.Close()

	var summary Summary
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return Summary{}, fmt.Errorf("scan summary: %w", err)
		}
		switch outcome {
		case OutcomeCopied:
			summary.Copied = count
		case OutcomeSkipped, OutcomeSkippedDry:
			summary.Skipped += count
		case OutcomeFailed:
			summary.Failed = count
		case OutcomeRolledBack:
			summary.RolledBack = count
		}
	}
	return summary, rows.Err()
}
