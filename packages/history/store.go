package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/abdul-hamid-achik/testlang/packages/core/runner"
)

const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

// DefaultLimit is how many runs Runs returns when no limit is given.
const DefaultLimit = 20

type Store struct {
	db *sql.DB
}

// Run is one recorded execution of a source file.
type Run struct {
	ID        string
	File      string
	StartedAt time.Time
	Duration  time.Duration
	Passed    int
	Failed    int
	Skipped   int
	P95       time.Duration
}

type TestRecord struct {
	Name     string
	Line     int
	Status   string
	Duration time.Duration
	Message  string
}

// Open opens (creating if needed) the history database at path and brings
// its schema up to date. A "sqlite:" or "sqlite://" prefix is accepted.
func Open(path string) (*Store, error) {
	dsn := strings.TrimPrefix(strings.TrimPrefix(path, "sqlite://"), "sqlite:")
	if dsn == "" {
		return nil, fmt.Errorf("history database path is empty")
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores result and its test outcomes in one transaction and
// returns the new run id.
func (s *Store) Record(ctx context.Context, result *runner.RunResult, startedAt time.Time) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning history transaction: %w", err)
	}

	var p95 int64
	if result.Metrics != nil {
		p95 = result.Metrics.P95.Microseconds()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, file, started_at, duration_ms, passed, failed, skipped, p95_us)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, result.File, startedAt.UTC().Format(time.RFC3339Nano), result.Duration.Milliseconds(),
		result.Passed, result.Failed, result.Skipped, p95)
	if err != nil {
		_ = tx.Rollback()
		return "", fmt.Errorf("inserting run: %w", err)
	}

	for _, tr := range result.Results {
		status, message := outcome(tr)
		_, err = tx.ExecContext(ctx,
			`INSERT INTO test_results (run_id, name, line, status, duration_ms, message)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, tr.Name, tr.Line, status, tr.Duration.Milliseconds(), message)
		if err != nil {
			_ = tx.Rollback()
			return "", fmt.Errorf("inserting test result %q: %w", tr.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return id, nil
}

func outcome(tr *runner.TestResult) (string, string) {
	switch {
	case tr.Skipped:
		return StatusSkipped, tr.SkipReason
	case tr.Error != nil:
		return StatusError, tr.Error.Error()
	case tr.Passed:
		return StatusPassed, ""
	}
	for _, a := range tr.Assertions {
		if !a.Passed {
			return StatusFailed, a.Message
		}
	}
	return StatusFailed, ""
}

// Runs returns the most recent runs first. When file is not empty only
// runs of that file are returned.
func (s *Store) Runs(ctx context.Context, file string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := `SELECT id, file, started_at, duration_ms, passed, failed, skipped, p95_us FROM runs`
	args := []any{}
	if file != "" {
		query += ` WHERE file = ?`
		args = append(args, file)
	}
	query += ` ORDER BY started_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			startedAt  string
			durationMs int64
			p95Us      int64
		)
		if err := rows.Scan(&r.ID, &r.File, &startedAt, &durationMs, &r.Passed, &r.Failed, &r.Skipped, &p95Us); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("run %s: bad start time: %w", r.ID, err)
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		r.P95 = time.Duration(p95Us) * time.Microsecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

// Tests returns the recorded test outcomes of a run in execution order.
func (s *Store) Tests(ctx context.Context, runID string) ([]TestRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, line, status, duration_ms, message FROM test_results WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var tests []TestRecord
	for rows.Next() {
		var (
			t          TestRecord
			durationMs int64
		)
		if err := rows.Scan(&t.Name, &t.Line, &t.Status, &durationMs, &t.Message); err != nil {
			return nil, fmt.Errorf("failed to scan test result: %w", err)
		}
		t.Duration = time.Duration(durationMs) * time.Millisecond
		tests = append(tests, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return tests, nil
}
