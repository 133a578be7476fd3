package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"clinical-agent/internal/agent"
)

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("run not found")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	for _, stmt := range migrations {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// SaveRun inserts or replaces the run with the same id.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		return errors.New("run has no id")
	}

	var stepsJSON *string
	if len(run.Steps) > 0 {
		data, err := json.Marshal(run.Steps)
		if err != nil {
			return fmt.Errorf("encode steps: %w", err)
		}
		str := string(data)
		stepsJSON = &str
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, query, answer, steps, stopped, error, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Query, run.Answer, stepsJSON, run.Stopped, run.Error,
		run.StartedAt.UnixMilli(), run.Duration.Milliseconds(),
	)
	return err
}

// ListRuns returns the most recent runs first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, answer, steps, stopped, error, started_at, duration_ms
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun returns a single run, or ErrRunNotFound.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, query, answer, steps, stopped, error, started_at, duration_ms
		 FROM runs WHERE id = ?`,
		id,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run        Run
		stepsJSON  sql.NullString
		startedMS  int64
		durationMS int64
	)
	if err := sc.Scan(&run.ID, &run.Query, &run.Answer, &stepsJSON, &run.Stopped, &run.Error, &startedMS, &durationMS); err != nil {
		return nil, err
	}
	if stepsJSON.Valid {
		var steps []agent.Step
		if err := json.Unmarshal([]byte(stepsJSON.String), &steps); err != nil {
			return nil, fmt.Errorf("decode steps of run %s: %w", run.ID, err)
		}
		run.Steps = steps
	}
	run.StartedAt = time.UnixMilli(startedMS)
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}
