package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger(t *testing.T) {
	var ledger Ledger
	ledger.Append(LedgerOp{
		Table: "dim_shops", Operation: "FILTER",
		Description: "removed inactive shops",
		RowsBefore:  10, RowsAfter: 8,
	})
	ledger.Append(LedgerOp{
		Table: "fact_reviews", Operation: "DROP_COLS",
		Description: "removed blank columns",
		RowsBefore:  5, RowsAfter: 5,
		ColsBefore: 12, ColsAfter: 9,
	})

	op, found := ledger.Find("dim_shops", "FILTER")
	require.True(t, found)
	assert.Equal(t, -2, op.RowsDiff())

	_, found = ledger.Find("dim_shops", "MERGE")
	assert.False(t, found)
}

func TestLedgerSnapshot(t *testing.T) {
	var ledger Ledger
	ledger.Append(LedgerOp{
		Table: "dim_shops", Operation: "FILTER",
		RowsBefore: 10, RowsAfter: 8,
	})
	ledger.Append(LedgerOp{
		Table: "fact_reviews", Operation: "DROP_COLS",
		RowsBefore: 5, RowsAfter: 5,
		ColsBefore: 12, ColsAfter: 9,
	})

	snap := ledger.Snapshot()
	assert.Equal(t, "cleaning_log", snap.Name)
	require.Equal(t, 2, snap.NumRows())

	// Row-level ops leave the column counts null.
	assert.Equal(t, "-2", snap.Rows[0]["rows_diff"].Str)
	assert.True(t, snap.Rows[0]["cols_before"].IsNull())
	assert.Equal(t, "12", snap.Rows[1]["cols_before"].Str)
}

func TestRunResult(t *testing.T) {
	start := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	result := RunResult{
		RunID:      "run-1",
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
	}
	assert.Equal(t, 90*time.Second, result.Duration())
	assert.Len(t, result.Tables(), 3)
}
