package contracts

import (
	"fmt"
	"strconv"
	"time"

	"github.com/orangecx/cxpipe/internal/table"
)

// LedgerOp is one named cleaning step with before/after counts. Column
// counts are optional and recorded only for column-level operations.
type LedgerOp struct {
	Table       string
	Operation   string
	Description string
	RowsBefore  int
	RowsAfter   int
	ColsBefore  int
	ColsAfter   int
}

// RowsDiff returns the signed row delta of the operation.
func (o LedgerOp) RowsDiff() int {
	return o.RowsAfter - o.RowsBefore
}

// Ledger is the audit trail of a pipeline run. It is a value carried through
// the stages and appended to, not a process-wide singleton, so each stage
// stays independently testable.
type Ledger struct {
	Ops []LedgerOp
}

// Append records an operation.
func (l *Ledger) Append(op LedgerOp) {
	l.Ops = append(l.Ops, op)
}

// Find returns the first operation matching table and operation name.
func (l *Ledger) Find(tableName, operation string) (LedgerOp, bool) {
	for _, op := range l.Ops {
		if op.Table == tableName && op.Operation == operation {
			return op, true
		}
	}
	return LedgerOp{}, false
}

// Snapshot renders the ledger as a persistable table, one row per operation.
func (l *Ledger) Snapshot() *table.Table {
	t := table.New("cleaning_log",
		"table", "operation", "description",
		"rows_before", "rows_after", "rows_diff",
		"cols_before", "cols_after",
	)
	for _, op := range l.Ops {
		row := table.Row{
			"table":       table.String(op.Table),
			"operation":   table.String(op.Operation),
			"description": table.String(op.Description),
			"rows_before": table.String(strconv.Itoa(op.RowsBefore)),
			"rows_after":  table.String(strconv.Itoa(op.RowsAfter)),
			"rows_diff":   table.String(fmt.Sprintf("%+d", op.RowsDiff())),
		}
		if op.ColsBefore > 0 || op.ColsAfter > 0 {
			row["cols_before"] = table.String(strconv.Itoa(op.ColsBefore))
			row["cols_after"] = table.String(strconv.Itoa(op.ColsAfter))
		}
		t.Append(row)
	}
	return t
}

// RunResult is the materialized output of one pipeline run: the three
// analysis-ready tables plus the operation ledger.
type RunResult struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	Shops   *table.Table
	Reviews *table.Table
	Surveys *table.Table

	Ledger Ledger
}

// Tables returns the output tables in publication order.
func (r *RunResult) Tables() []*table.Table {
	return []*table.Table{r.Shops, r.Reviews, r.Surveys}
}

// Duration returns the wall time of the run.
func (r *RunResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
