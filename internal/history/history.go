// Package history persists scheduled test runs and their outcomes in a
// local SQLite database so past runs can be inspected after the editor
// and bridge have moved on.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mooselabs/unitymcp/internal/moose"
)

// Run is one recorded test run.
type Run struct {
	ID        string
	StartedAt time.Time
	Assembly  string
	Class     string
	Method    string
	Status    string // workflow status at last update
	Result    string // Passed/Failed once finished
	Total     int
	Passed    int
	Failed    int
	NotRun    int
	Ended     bool
	EndedAt   time.Time
}

// Scope describes what a run was narrowed to, pre-suppression: the fields
// the client actually asked for.
type Scope struct {
	Assembly string
	Class    string
	Method   string
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL,
	assembly   TEXT NOT NULL DEFAULT '',
	class      TEXT NOT NULL DEFAULT '',
	method     TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT '',
	result     TEXT NOT NULL DEFAULT '',
	total      INTEGER NOT NULL DEFAULT 0,
	passed     INTEGER NOT NULL DEFAULT 0,
	failed     INTEGER NOT NULL DEFAULT 0,
	not_run    INTEGER NOT NULL DEFAULT 0,
	ended      INTEGER NOT NULL DEFAULT 0,
	ended_at   INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
`

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the default history database path following XDG
// conventions: ~/.local/state/unitymcp/history.db
func DefaultPath() string {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "unitymcp", "history.db")
}

// Open opens (and if necessary creates) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordStart records a newly scheduled run and returns its generated ID.
func (s *Store) RecordStart(ctx context.Context, scope Scope) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, assembly, class, method, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, time.Now().Unix(), scope.Assembly, scope.Class, scope.Method, moose.StatusPending,
	)
	if err != nil {
		return "", fmt.Errorf("record run start: %w", err)
	}
	return id, nil
}

// RecordResult marks a run as ended with the given workflow status and
// summary. Recording a result twice for the same run is a no-op.
func (s *Store) RecordResult(ctx context.Context, id, status, result string, sum moose.Summary) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs
		 SET status = ?, result = ?, total = ?, passed = ?, failed = ?, not_run = ?,
		     ended = 1, ended_at = ?
		 WHERE id = ? AND ended = 0`,
		status, result, sum.Total, sum.Passed, sum.Failed, sum.NotRun,
		time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("record run result: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, most recently started first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, assembly, class, method, status, result,
		        total, passed, failed, not_run, ended, ended_at
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, endedAt int64
		var ended int
		if err := rows.Scan(&r.ID, &started, &r.Assembly, &r.Class, &r.Method,
			&r.Status, &r.Result, &r.Total, &r.Passed, &r.Failed, &r.NotRun,
			&ended, &endedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt = time.Unix(started, 0)
		r.Ended = ended != 0
		if r.Ended {
			r.EndedAt = time.Unix(endedAt, 0)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Prune deletes runs that ended more than olderThan ago and returns how
// many were removed.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).Unix()
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE ended = 1 AND ended_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}
