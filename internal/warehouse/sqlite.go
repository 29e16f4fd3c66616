package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/orangecx/cxpipe/internal/table"
	"github.com/orangecx/cxpipe/internal/validation"
	"github.com/orangecx/cxpipe/pkg/logger"
)

// SQLiteMart loads certified snapshots into a local SQLite file, for
// analysts working without warehouse access. Same certification contract
// as the Postgres loader.
type SQLiteMart struct {
	path string
	log  *logger.Logger
}

// NewSQLiteMart creates a loader writing to the given database file.
func NewSQLiteMart(path string, log *logger.Logger) *SQLiteMart {
	return &SQLiteMart{path: path, log: log}
}

// Load persists the tables and validation ledger, refusing uncertified
// input.
func (m *SQLiteMart) Load(ctx context.Context, runID string, tables []*table.Table, report *validation.Report) error {
	if !report.IsCertified() {
		return fmt.Errorf("%w: overall score %.4f", ErrNotCertified, report.OverallScore())
	}

	db, err := sql.Open("sqlite", m.path)
	if err != nil {
		return fmt.Errorf("open sqlite mart: %w", err)
	}
	defer db.Close()

	for _, t := range append(tables, report.Snapshot()) {
		if err := m.replaceTable(ctx, db, runID, t); err != nil {
			return err
		}
		m.log.WithFields(map[string]interface{}{
			"table": t.Name,
			"rows":  t.NumRows(),
		}).Info("Table loaded to sqlite mart")
	}

	return m.recordLoad(ctx, db, runID, report)
}

func (m *SQLiteMart) replaceTable(ctx context.Context, db *sql.DB, runID string, t *table.Table) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load of %s: %w", t.Name, err)
	}
	defer tx.Rollback()

	name := quoteIdent(t.Name)
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, name)); err != nil {
		return fmt.Errorf("drop %s: %w", t.Name, err)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	cols = append(cols, quoteIdent("run_id")+" TEXT NOT NULL")
	for _, c := range t.Columns {
		cols = append(cols, quoteIdent(c)+" TEXT")
	}
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`CREATE TABLE %s (%s)`, name, strings.Join(cols, ", "))); err != nil {
		return fmt.Errorf("create %s: %w", t.Name, err)
	}

	placeholders := make([]string, len(t.Columns)+1)
	for i := range placeholders {
		placeholders[i] = "?"
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s VALUES (%s)`, name, strings.Join(placeholders, ", ")))
	if err != nil {
		return fmt.Errorf("prepare insert into %s: %w", t.Name, err)
	}
	defer stmt.Close()

	args := make([]interface{}, len(t.Columns)+1)
	for _, r := range t.Rows {
		args[0] = runID
		for i, c := range t.Columns {
			v := r[c]
			if v.IsNull() {
				args[i+1] = nil
			} else {
				args[i+1] = v.Str
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert into %s: %w", t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load of %s: %w", t.Name, err)
	}
	return nil
}

func (m *SQLiteMart) recordLoad(ctx context.Context, db *sql.DB, runID string, report *validation.Report) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS load_runs (
			run_id        TEXT PRIMARY KEY,
			loaded_at     TEXT NOT NULL,
			overall_score REAL NOT NULL,
			threshold     REAL NOT NULL,
			certified     INTEGER NOT NULL
		)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create load_runs: %w", err)
	}

	_, err := db.ExecContext(ctx, `
		INSERT OR REPLACE INTO load_runs (run_id, loaded_at, overall_score, threshold, certified)
		VALUES (?, ?, ?, ?, ?)`,
		runID,
		time.Now().UTC().Format(time.RFC3339),
		report.OverallScore(),
		report.Threshold,
		boolToInt(report.IsCertified()),
	)
	if err != nil {
		return fmt.Errorf("record load run: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
