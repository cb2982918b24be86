package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"revoice/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when the jobs table shape changes; mismatched
// databases must be cleared or deleted.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different
// release.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Job statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Job is one recorded conversion outcome.
type Job struct {
	ID         int64
	Experiment string
	InputPath  string
	OutputPath string
	Checkpoint string
	Status     string
	Detail     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Store manages job persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the job database under the workspace log
// root.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.LogsRoot(), "jobs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// RecordCompleted upserts a completed outcome keyed by output path.
func (s *Store) RecordCompleted(ctx context.Context, job Job) error {
	return s.record(ctx, job, StatusCompleted)
}

// RecordFailed upserts a failed outcome keyed by output path.
func (s *Store) RecordFailed(ctx context.Context, job Job) error {
	return s.record(ctx, job, StatusFailed)
}

func (s *Store) record(ctx context.Context, job Job, status string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	return s.execWithRetry(ctx, `
		INSERT INTO jobs (experiment, input_path, output_path, checkpoint, status, detail, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(output_path) DO UPDATE SET
			experiment = excluded.experiment,
			input_path = excluded.input_path,
			checkpoint = excluded.checkpoint,
			status     = excluded.status,
			detail     = excluded.detail,
			updated_at = excluded.updated_at`,
		job.Experiment, job.InputPath, job.OutputPath, job.Checkpoint, status, job.Detail, now, now,
	)
}

// IsCompleted reports whether a completed outcome exists for the output path.
func (s *Store) IsCompleted(ctx context.Context, outputPath string) (bool, error) {
	ctx = ensureContext(ctx)
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM jobs WHERE output_path = ? AND status = ?",
		outputPath, StatusCompleted,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query job: %w", err)
	}
	return count > 0, nil
}

// List returns recorded jobs, newest first, optionally filtered by
// experiment.
func (s *Store) List(ctx context.Context, experiment string) ([]Job, error) {
	ctx = ensureContext(ctx)
	query := "SELECT id, experiment, input_path, output_path, checkpoint, status, detail, created_at, updated_at FROM jobs"
	var args []any
	if experiment != "" {
		query += " WHERE experiment = ?"
		args = append(args, experiment)
	}
	query += " ORDER BY updated_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var job Job
		var createdAt, updatedAt string
		if err := rows.Scan(&job.ID, &job.Experiment, &job.InputPath, &job.OutputPath,
			&job.Checkpoint, &job.Status, &job.Detail, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		job.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		job.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

// Clear removes recorded jobs, optionally scoped to one experiment.
func (s *Store) Clear(ctx context.Context, experiment string) error {
	if experiment == "" {
		return s.execWithRetry(ctx, "DELETE FROM jobs")
	}
	return s.execWithRetry(ctx, "DELETE FROM jobs WHERE experiment = ?", experiment)
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (run 'revoice jobs clear' or delete the database)",
			ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		_, lastErr = s.db.ExecContext(ctx, query, args...)
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
