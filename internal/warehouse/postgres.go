package warehouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orangecx/cxpipe/internal/table"
	"github.com/orangecx/cxpipe/internal/validation"
	"github.com/orangecx/cxpipe/pkg/logger"
)

// ErrNotCertified is returned when a load is attempted with a failing
// quality report. The warehouse only ever receives certified snapshots.
var ErrNotCertified = fmt.Errorf("tables are not certified for warehouse load")

const schemaName = "cx"

// Postgres loads certified snapshots into the analytics warehouse. Each
// load replaces the target tables whole, matching the snapshot semantics of
// the pipeline.
type Postgres struct {
	db  *pgxpool.Pool
	log *logger.Logger
}

// NewPostgres creates a warehouse loader over an existing pool.
func NewPostgres(db *pgxpool.Pool, log *logger.Logger) *Postgres {
	return &Postgres{db: db, log: log}
}

// Load persists the tables and the validation ledger, refusing uncertified
// input. The run id ties warehouse rows back to the pipeline run.
func (w *Postgres) Load(ctx context.Context, runID string, tables []*table.Table, report *validation.Report) error {
	if !report.IsCertified() {
		return fmt.Errorf("%w: overall score %.4f", ErrNotCertified, report.OverallScore())
	}

	if _, err := w.db.Exec(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schemaName)); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	for _, t := range append(tables, report.Snapshot()) {
		if err := w.replaceTable(ctx, runID, t); err != nil {
			return err
		}
		w.log.WithFields(map[string]interface{}{
			"table": t.Name,
			"rows":  t.NumRows(),
		}).Info("Table loaded to warehouse")
	}

	if err := w.recordLoad(ctx, runID, report); err != nil {
		return err
	}
	return nil
}

// replaceTable drops and recreates the target and bulk-inserts the rows.
func (w *Postgres) replaceTable(ctx context.Context, runID string, t *table.Table) error {
	qualified := fmt.Sprintf("%s.%s", schemaName, quoteIdent(t.Name))

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin load of %s: %w", t.Name, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, qualified)); err != nil {
		return fmt.Errorf("drop %s: %w", t.Name, err)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	cols = append(cols, quoteIdent("run_id")+" TEXT NOT NULL")
	for _, c := range t.Columns {
		cols = append(cols, quoteIdent(c)+" TEXT")
	}
	ddl := fmt.Sprintf(`CREATE TABLE %s (%s)`, qualified, strings.Join(cols, ", "))
	if _, err := tx.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create %s: %w", t.Name, err)
	}

	columnNames := make([]string, 0, len(t.Columns)+1)
	columnNames = append(columnNames, "run_id")
	columnNames = append(columnNames, t.Columns...)

	rows := make([][]interface{}, 0, t.NumRows())
	for _, r := range t.Rows {
		row := make([]interface{}, 0, len(columnNames))
		row = append(row, runID)
		for _, c := range t.Columns {
			v := r[c]
			if v.IsNull() {
				row = append(row, nil)
			} else {
				row = append(row, v.Str)
			}
		}
		rows = append(rows, row)
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{schemaName, t.Name},
		columnNames,
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("copy into %s: %w", t.Name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit load of %s: %w", t.Name, err)
	}
	return nil
}

// recordLoad appends one audit row per load.
func (w *Postgres) recordLoad(ctx context.Context, runID string, report *validation.Report) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.load_runs (
			run_id        TEXT PRIMARY KEY,
			loaded_at     TIMESTAMPTZ NOT NULL,
			overall_score DOUBLE PRECISION NOT NULL,
			threshold     DOUBLE PRECISION NOT NULL,
			certified     BOOLEAN NOT NULL
		)`, schemaName)
	if _, err := w.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create load_runs: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s.load_runs (run_id, loaded_at, overall_score, threshold, certified)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (run_id) DO UPDATE SET
			loaded_at = EXCLUDED.loaded_at,
			overall_score = EXCLUDED.overall_score,
			threshold = EXCLUDED.threshold,
			certified = EXCLUDED.certified`, schemaName)
	_, err := w.db.Exec(ctx, query,
		runID, time.Now().UTC(), report.OverallScore(), report.Threshold, report.IsCertified())
	if err != nil {
		return fmt.Errorf("record load run: %w", err)
	}
	return nil
}

// quoteIdent double-quotes an identifier for dynamic DDL.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
