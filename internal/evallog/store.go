// Package evallog records the outcome of driven script evaluations in
// a SQLite audit log: one row per task, updated as the task steps and
// finalized when it completes. The engine knows nothing about it; the
// CLI feeds it.
package evallog

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store provides durable storage for the evaluation audit log.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically; safe to call
// on an existing database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection
	// avoids SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Outcome classifies how an evaluation ended.
type Outcome string

const (
	// OutcomeOK means the body produced a value.
	OutcomeOK Outcome = "ok"
	// OutcomeError means the body failed; Diagnostic carries the
	// formatted error.
	OutcomeError Outcome = "error"
	// OutcomeTerminated means the task was forced to unwind by its
	// owner.
	OutcomeTerminated Outcome = "terminated"
)

// Evaluation is one audit-log row.
type Evaluation struct {
	ID         string
	Script     string
	Steps      int
	Outcome    Outcome
	Result     string // rendered result value, "" on error
	Diagnostic string // formatted diagnostic, "" on success
	StartedAt  time.Time
	FinishedAt time.Time
}

// Begin records the start of an evaluation. Idempotent on ID.
func (s *Store) Begin(ctx context.Context, id, scriptName string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO evaluations (id, script, steps, started_at)
		VALUES (?, ?, 0, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, scriptName, startedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("begin evaluation %s: %w", id, err)
	}
	return nil
}

// Finish stores an evaluation's final outcome.
func (s *Store) Finish(ctx context.Context, id string, steps int, outcome Outcome, result, diagnostic string, finishedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE evaluations
		SET steps = ?, outcome = ?, result = ?, diagnostic = ?, finished_at = ?
		WHERE id = ?
	`, steps, string(outcome), result, diagnostic,
		finishedAt.UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("finish evaluation %s: %w", id, err)
	}
	return nil
}

// List returns evaluations ordered by start time, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Evaluation, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, script, steps,
		       COALESCE(outcome, ''), COALESCE(result, ''), COALESCE(diagnostic, ''),
		       started_at, COALESCE(finished_at, '')
		FROM evaluations
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()

	var out []Evaluation
	for rows.Next() {
		var ev Evaluation
		var outcome, started, finished string
		if err := rows.Scan(&ev.ID, &ev.Script, &ev.Steps, &outcome,
			&ev.Result, &ev.Diagnostic, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		ev.Outcome = Outcome(outcome)
		if t, err := time.Parse(time.RFC3339Nano, started); err == nil {
			ev.StartedAt = t
		}
		if finished != "" {
			if t, err := time.Parse(time.RFC3339Nano, finished); err == nil {
				ev.FinishedAt = t
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	return out, nil
}
