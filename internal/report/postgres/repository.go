// Package postgres archives completed runs. The sink is optional and runs
// strictly after parse and aggregation have succeeded.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nem12-tou/internal/aggregate"
)

const (
	defaultRunsTable = "aggregation_runs"
	defaultRowsTable = "aggregation_run_rows"
)

// RunMeta identifies the run being archived.
type RunMeta struct {
	SourceFile string
	NMI        string
	State      string
	Format     string
}

// Repository persists run summaries and per-period rows.
type Repository struct {
	db        *sql.DB
	runsTable string
	rowsTable string
}

// Option configures the repository.
type Option func(*Repository)

// WithRunsTable overrides the runs table name.
func WithRunsTable(table string) Option {
	return func(r *Repository) {
		if table != "" {
			r.runsTable = table
		}
	}
}

// WithRowsTable overrides the rows table name.
func WithRowsTable(table string) Option {
	return func(r *Repository) {
		if table != "" {
			r.rowsTable = table
		}
	}
}

// NewRepository constructs a repository.
func NewRepository(db *sql.DB, opts ...Option) *Repository {
	r := &Repository{
		db:        db,
		runsTable: defaultRunsTable,
		rowsTable: defaultRowsTable,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EnsureSchema creates the archive tables when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return errors.New("report postgres: nil db")
	}
	runs := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	source_file TEXT NOT NULL,
	nmi TEXT NOT NULL,
	state TEXT NOT NULL,
	format TEXT NOT NULL,
	total_intervals BIGINT NOT NULL,
	total_kwh DOUBLE PRECISION NOT NULL,
	date_range_start TIMESTAMPTZ,
	date_range_end TIMESTAMPTZ,
	estimated_intervals BIGINT NOT NULL,
	unclassified_intervals BIGINT NOT NULL,
	dst_transition_days BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, r.runsTable)
	rows := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	run_id BIGINT NOT NULL,
	period TEXT NOT NULL,
	total_kwh DOUBLE PRECISION NOT NULL,
	interval_count BIGINT NOT NULL,
	avg_kwh_per_interval DOUBLE PRECISION NOT NULL,
	estimated_count BIGINT NOT NULL,
	percentage DOUBLE PRECISION NOT NULL,
	total_cost DOUBLE PRECISION,
	min_timestamp TIMESTAMPTZ NOT NULL,
	max_timestamp TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (run_id, period)
)`, r.rowsTable)

	if _, err := r.db.ExecContext(ctx, runs); err != nil {
		return fmt.Errorf("report postgres: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, rows); err != nil {
		return fmt.Errorf("report postgres: %w", err)
	}
	return nil
}

// SaveRun stores a run summary with its aggregate rows and returns the run id.
func (r *Repository) SaveRun(ctx context.Context, meta RunMeta, rows []aggregate.Row, stats aggregate.Summary) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("report postgres: nil db")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("report postgres: %w", err)
	}
	defer tx.Rollback()

	insertRun := fmt.Sprintf(`
INSERT INTO %s (
	source_file, nmi, state, format,
	total_intervals, total_kwh, date_range_start, date_range_end,
	estimated_intervals, unclassified_intervals, dst_transition_days
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id`, r.runsTable)

	var runID int64
	err = tx.QueryRowContext(ctx, insertRun,
		meta.SourceFile, meta.NMI, meta.State, meta.Format,
		stats.TotalIntervals, stats.TotalKWh, stats.DateRangeStart, stats.DateRangeEnd,
		stats.EstimatedIntervals, stats.UnclassifiedIntervals, len(stats.DSTTransitions),
	).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("report postgres: %w", err)
	}

	insertRow := fmt.Sprintf(`
INSERT INTO %s (
	run_id, period, total_kwh, interval_count, avg_kwh_per_interval,
	estimated_count, percentage, total_cost, min_timestamp, max_timestamp
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`, r.rowsTable)

	for _, row := range rows {
		// TotalCost passes through as-is: nil stays NULL, zero stays 0.
		_, err = tx.ExecContext(ctx, insertRow,
			runID, row.Period, row.TotalKWh, row.IntervalCount, row.AvgKWhPerInterval,
			row.EstimatedCount, row.Percentage, row.TotalCost, row.MinTimestamp, row.MaxTimestamp,
		)
		if err != nil {
			return 0, fmt.Errorf("report postgres: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("report postgres: %w", err)
	}
	return runID, nil
}
