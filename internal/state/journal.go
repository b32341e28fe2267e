package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Journal records one orchestration run and its attempts. It
// implements the orchestrator's AttemptRecorder.
type Journal struct {
	db    *DB
	runID string
}

// RunRecord is one row of run history.
type RunRecord struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   *time.Time
	Status       string
	Detail       string
	InputTokens  int64
	OutputTokens int64
	Attempts     []AttemptRecord
}

// AttemptRecord is one attempt within a run.
type AttemptRecord struct {
	Attempt    int
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     string
	Detail     string
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// StartRun opens a new run row and returns its journal.
func (db *DB) StartRun() (*Journal, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(
		`INSERT INTO runs (id, started_at, status) VALUES (?, ?, 'running')`,
		id, now())
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return &Journal{db: db, runID: id}, nil
}

// RunID returns the run's identifier.
func (j *Journal) RunID() string { return j.runID }

// AttemptStarted records the start of an attempt.
func (j *Journal) AttemptStarted(attempt int) error {
	_, err := j.db.conn.Exec(
		`INSERT INTO attempts (run_id, attempt, started_at, status) VALUES (?, ?, ?, 'running')
		 ON CONFLICT (run_id, attempt) DO UPDATE SET started_at = excluded.started_at, status = 'running'`,
		j.runID, attempt, now())
	if err != nil {
		return fmt.Errorf("insert attempt %d: %w", attempt, err)
	}
	return nil
}

// AttemptFinished records an attempt's outcome.
func (j *Journal) AttemptFinished(attempt int, status, detail string) error {
	_, err := j.db.conn.Exec(
		`UPDATE attempts SET finished_at = ?, status = ?, detail = ? WHERE run_id = ? AND attempt = ?`,
		now(), status, detail, j.runID, attempt)
	if err != nil {
		return fmt.Errorf("finish attempt %d: %w", attempt, err)
	}
	return nil
}

// FinishRun records the run's terminal status.
func (j *Journal) FinishRun(status, detail string) error {
	_, err := j.db.conn.Exec(
		`UPDATE runs SET finished_at = ?, status = ?, detail = ? WHERE id = ?`,
		now(), status, detail, j.runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// SetUsage records the run's aggregate token usage.
func (j *Journal) SetUsage(inputTokens, outputTokens int64) error {
	_, err := j.db.conn.Exec(
		`UPDATE runs SET input_tokens = ?, output_tokens = ? WHERE id = ?`,
		inputTokens, outputTokens, j.runID)
	if err != nil {
		return fmt.Errorf("set usage: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs with their attempts, newest
// first.
func (db *DB) RecentRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.conn.Query(
		`SELECT id, started_at, finished_at, status, detail, input_tokens, output_tokens
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var started string
		var finished sql.NullString
		if err := rows.Scan(&r.ID, &started, &finished, &r.Status, &r.Detail,
			&r.InputTokens, &r.OutputTokens); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		if finished.Valid {
			t, _ := time.Parse(time.RFC3339, finished.String)
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	for i := range runs {
		attempts, err := db.attemptsFor(runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Attempts = attempts
	}
	return runs, nil
}

func (db *DB) attemptsFor(runID string) ([]AttemptRecord, error) {
	rows, err := db.conn.Query(
		`SELECT attempt, started_at, finished_at, status, detail
		 FROM attempts WHERE run_id = ? ORDER BY attempt`, runID)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []AttemptRecord
	for rows.Next() {
		var a AttemptRecord
		var started string
		var finished sql.NullString
		if err := rows.Scan(&a.Attempt, &started, &finished, &a.Status, &a.Detail); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.StartedAt, _ = time.Parse(time.RFC3339, started)
		if finished.Valid {
			t, _ := time.Parse(time.RFC3339, finished.String)
			a.FinishedAt = &t
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
