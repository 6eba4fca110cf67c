package sync

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// RunRepository persists sync run reports.
type RunRepository interface {
	StoreRun(ctx context.Context, report Report) error
	RecentRuns(ctx context.Context, limit int) ([]Report, error)
}

type RunRepo struct {
	db *sql.DB
}

func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{db: db}
}

func (r *RunRepo) StoreRun(ctx context.Context, report Report) error {
	eventErrors := report.Errors
	if eventErrors == nil {
		eventErrors = []EventError{}
	}
	errorsJson, err := json.Marshal(eventErrors)
	if err != nil {
		return fmt.Errorf("unable to marshal run errors: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO sync_run (id, started_at, finished_at, success, purged, created, updated, failed, errors)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID, report.StartedAt.Unix(), report.FinishedAt.Unix(), report.Success,
		report.Purged, report.Created, report.Updated, report.Failed, string(errorsJson))
	if err != nil {
		return fmt.Errorf("unable to store sync run: %w", err)
	}
	return nil
}

func (r *RunRepo) RecentRuns(ctx context.Context, limit int) ([]Report, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, success, purged, created, updated, failed, errors
		 FROM sync_run ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("unable to query sync runs: %w", err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var report Report
		var startedAt, finishedAt int64
		var errorsJson string
		if err := rows.Scan(&report.RunID, &startedAt, &finishedAt, &report.Success,
			&report.Purged, &report.Created, &report.Updated, &report.Failed, &errorsJson); err != nil {
			return nil, fmt.Errorf("unable to scan sync run: %w", err)
		}
		report.StartedAt = time.Unix(startedAt, 0)
		report.FinishedAt = time.Unix(finishedAt, 0)
		if err := json.Unmarshal([]byte(errorsJson), &report.Errors); err != nil {
			return nil, fmt.Errorf("unable to unmarshal run errors: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}
