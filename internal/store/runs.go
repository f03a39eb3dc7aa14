package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nyc-trip-loader/internal/model"
)

var ErrRunNotFound = errors.New("run not found")

const (
	runsTable   = "ingest_runs"
	monthsTable = "ingest_months"
)

// EnsureLedger creates the run ledger tables if they don't exist
func (db *DB) EnsureLedger(ctx context.Context) error {
	runTable := `
	CREATE TABLE IF NOT EXISTS ingest_runs (
		id TEXT PRIMARY KEY,
		year TEXT,
		sample_cap INTEGER,
		seed BIGINT,
		status TEXT,
		table_existed BOOLEAN,
		reset_error TEXT,
		started_at TIMESTAMP,
		finished_at TIMESTAMP
	);
	`
	monthTable := `
	CREATE TABLE IF NOT EXISTS ingest_months (
		run_id TEXT,
		month TEXT,
		state TEXT,
		outcome TEXT,
		reason TEXT,
		error_message TEXT,
		decoded BIGINT,
		qualifying BIGINT,
		kept BIGINT,
		appended BIGINT,
		full_set_kept BOOLEAN,
		seed BIGINT,
		created_at TIMESTAMP,
		PRIMARY KEY (run_id, month)
	);
	`

	if _, err := db.conn.ExecContext(ctx, runTable); err != nil {
		return fmt.Errorf("failed to create %s: %w", runsTable, err)
	}
	if _, err := db.conn.ExecContext(ctx, monthTable); err != nil {
		return fmt.Errorf("failed to create %s: %w", monthsTable, err)
	}
	return nil
}

// StartRun stores a new loader run
func (db *DB) StartRun(ctx context.Context, run *model.RunSummary) error {
	if err := db.EnsureLedger(ctx); err != nil {
		return err
	}
	q := db.rebind(`INSERT INTO ingest_runs (id, year, sample_cap, seed, status, table_existed, reset_error, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := db.conn.ExecContext(ctx, q,
		run.ID, run.Year, run.SampleCap, run.Seed, run.Status, run.TableExisted, run.ResetError, run.StartedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

// RecordMonth stores the result of one month of a run
func (db *DB) RecordMonth(ctx context.Context, runID string, res model.MonthResult) error {
	q := db.rebind(`INSERT INTO ingest_months
		(run_id, month, state, outcome, reason, error_message, decoded, qualifying, kept, appended, full_set_kept, seed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := db.conn.ExecContext(ctx, q,
		runID, res.Month, string(res.State), string(res.Outcome), string(res.Reason), res.Err,
		res.Decoded, res.Qualifying, res.Kept, res.Appended, res.FullSetKept, res.Seed, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save month %s of run %s: %w", res.Month, runID, err)
	}
	return nil
}

// FinishRun updates the run status and finish time
func (db *DB) FinishRun(ctx context.Context, run model.RunSummary) error {
	finished := time.Now().UTC()
	if run.FinishedAt != nil {
		finished = run.FinishedAt.UTC()
	}
	q := db.rebind(`UPDATE ingest_runs SET status = ?, table_existed = ?, reset_error = ?, finished_at = ? WHERE id = ?`)
	if _, err := db.conn.ExecContext(ctx, q, run.Status, run.TableExisted, run.ResetError, finished, run.ID); err != nil {
		return fmt.Errorf("failed to finish run %s: %w", run.ID, err)
	}
	return nil
}

// ListRuns returns the most recent runs with their month totals, newest first.
// A database that never hosted a run yields an empty list.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error) {
	exists, err := db.tableExists(ctx, db.conn, runsTable)
	if err != nil || !exists {
		return []model.RunSummary{}, err
	}
	if limit <= 0 {
		limit = 20
	}

	q := db.rebind(`
		SELECT r.id, r.year, r.sample_cap, r.seed, r.status, r.table_existed, r.reset_error, r.started_at, r.finished_at,
			COALESCE(SUM(CASE WHEN m.outcome = 'loaded' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN m.outcome = 'skipped' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(m.appended), 0)
		FROM ingest_runs r
		LEFT JOIN ingest_months m ON m.run_id = r.id
		GROUP BY r.id, r.year, r.sample_cap, r.seed, r.status, r.table_existed, r.reset_error, r.started_at, r.finished_at
		ORDER BY r.started_at DESC
		LIMIT ?`)
	rows, err := db.conn.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []model.RunSummary{}
	for rows.Next() {
		var run model.RunSummary
		var resetErr sql.NullString
		var finished sql.NullTime
		if err := rows.Scan(&run.ID, &run.Year, &run.SampleCap, &run.Seed, &run.Status, &run.TableExisted,
			&resetErr, &run.StartedAt, &finished, &run.MonthsLoaded, &run.MonthsSkipped, &run.RowsAppended); err != nil {
			return nil, err
		}
		run.ResetError = resetErr.String
		if finished.Valid {
			run.FinishedAt = &finished.Time
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun fetches a run and its month results
func (db *DB) GetRun(ctx context.Context, id string) (*model.RunSummary, error) {
	exists, err := db.tableExists(ctx, db.conn, runsTable)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrRunNotFound
	}

	var run model.RunSummary
	var resetErr sql.NullString
	var finished sql.NullTime
	err = db.conn.QueryRowContext(ctx,
		db.rebind(`SELECT id, year, sample_cap, seed, status, table_existed, reset_error, started_at, finished_at
			FROM ingest_runs WHERE id = ?`), id).
		Scan(&run.ID, &run.Year, &run.SampleCap, &run.Seed, &run.Status, &run.TableExisted,
			&resetErr, &run.StartedAt, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	run.ResetError = resetErr.String
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}

	rows, err := db.conn.QueryContext(ctx,
		db.rebind(`SELECT month, state, outcome, reason, error_message, decoded, qualifying, kept, appended, full_set_kept, seed
			FROM ingest_months WHERE run_id = ? ORDER BY month`), id)
	if err != nil {
		return nil, fmt.Errorf("failed to load months of run %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var res model.MonthResult
		var state, outcome, reason string
		var errMsg sql.NullString
		if err := rows.Scan(&res.Month, &state, &outcome, &reason, &errMsg, &res.Decoded, &res.Qualifying,
			&res.Kept, &res.Appended, &res.FullSetKept, &res.Seed); err != nil {
			return nil, err
		}
		res.State = model.MonthState(state)
		res.Outcome = model.Outcome(outcome)
		res.Reason = model.SkipReason(reason)
		res.Err = errMsg.String
		run.Add(res)
	}
	return &run, rows.Err()
}

// rebind rewrites ? placeholders for the active driver.
func (db *DB) rebind(query string) string {
	if db.dialect != postgresDialect {
		return query
	}
	var b []byte
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b = append(b, db.dialect.placeholder(n)...)
			continue
		}
		b = append(b, query[i])
	}
	return string(b)
}
