package cleaning

import (
	"fmt"

	"github.com/orangecx/cxpipe/internal/contracts"
	"github.com/orangecx/cxpipe/internal/table"
)

// ReviewSchema is the published column set of fact_reviews, in order.
var ReviewSchema = table.Schema{
	{Name: "review_id", Required: true},
	{Name: "shop_id", Required: true},
	{Name: "review_timestamp"},
	{Name: "rating"},
	{Name: "verbatim"},
	{Name: "client_name"},
	{Name: "response_timestamp"},
	{Name: "ai_response"},
	{Name: "is_corrected"},
	{Name: "correction_text"},
	{Name: "duplicate_flag"},
}

// reviewRenames maps normalized review-extract headers to the fact schema.
var reviewRenames = map[string]string{
	"business_id":                 "shop_id",
	"timestamp_client_feedback":   "review_timestamp",
	"client_feedback":             "verbatim",
	"client_rating":               "rating",
	"timestamp_ai_agent_response": "response_timestamp",
	"ai_agent_response":           "ai_response",
	"shop_name":                   "shop_name_raw",
	"correction":                  "correction_text",
	"duplicates":                  "duplicate_flag",
	"timestamp":                   "processing_timestamp",
}

// BuildReviews shapes the raw review extract into fact_reviews. Reviews link
// to shops by direct id match; a review without a review_id is an incomplete
// record and is dropped (the only row-level admission filter in the
// pipeline), with the count recorded in the ledger.
func BuildReviews(raw, shops *table.Table, ledger *contracts.Ledger) (*table.Table, error) {
	t := cloneShallow(raw)
	t.NormalizeColumnNames()

	if err := t.RequireColumns("review_id", "business_id"); err != nil {
		return nil, fmt.Errorf("build fact_reviews: %w", err)
	}

	// Malformed source headers leave artifact columns behind: fully blank
	// ones and auto-generated "unnamed" placeholders.
	rowsBefore, colsBefore := t.NumRows(), t.NumCols()
	drop := append(t.BlankColumns(), t.ColumnsWithPrefix("unnamed")...)
	if len(drop) > 0 {
		t.Drop(drop...)
		ledger.Append(contracts.LedgerOp{
			Table:       "fact_reviews",
			Operation:   "DROP_COLS",
			Description: fmt.Sprintf("removed %d blank/unnamed columns", colsBefore-t.NumCols()),
			RowsBefore:  rowsBefore,
			RowsAfter:   t.NumRows(),
			ColsBefore:  colsBefore,
			ColsAfter:   t.NumCols(),
		})
	}

	t.Rename(reviewRenames)

	coerceInstant(t, "review_timestamp")
	coerceInstant(t, "response_timestamp")

	// Admission filter: review_id is the primary key and must be present.
	kept := t.Filter(func(r table.Row) bool {
		return !r["review_id"].IsBlank()
	})
	if dropped := t.NumRows() - kept.NumRows(); dropped > 0 {
		ledger.Append(contracts.LedgerOp{
			Table:       "fact_reviews",
			Operation:   "DROP_ROWS",
			Description: fmt.Sprintf("removed %d rows with missing review_id", dropped),
			RowsBefore:  t.NumRows(),
			RowsAfter:   kept.NumRows(),
		})
	}
	t = kept

	coerceInt(t, "rating")

	// A non-empty correction text means the response was manually corrected.
	t.AddColumn("is_corrected")
	for i, r := range t.Rows {
		t.Set(i, "is_corrected", boolValue(!r["correction_text"].IsBlank()))
	}

	// Link validity against the shop dimension is telemetry for the caller,
	// not an admission gate: unlinkable reviews stay in the fact table and
	// surface through validation instead.
	shopIDs := shopIDSet(shops)
	linked := 0
	for _, r := range t.Rows {
		if _, ok := shopIDs[r["shop_id"].Str]; ok && !r["shop_id"].IsBlank() {
			linked++
		}
	}
	ledger.Append(contracts.LedgerOp{
		Table:       "fact_reviews",
		Operation:   "LINK_CHECK",
		Description: fmt.Sprintf("%d of %d reviews link to dim_shops", linked, t.NumRows()),
		RowsBefore:  t.NumRows(),
		RowsAfter:   linked,
	})

	out, err := t.Project("fact_reviews", ReviewSchema)
	if err != nil {
		return nil, fmt.Errorf("build fact_reviews: %w", err)
	}
	return out, nil
}

// coerceInstant rewrites a timestamp column to the canonical UTC encoding,
// degrading unparseable cells to null rather than failing the row.
func coerceInstant(t *table.Table, column string) {
	if !t.HasColumn(column) {
		return
	}
	for i, r := range t.Rows {
		v := r[column]
		if v.IsBlank() {
			t.Set(i, column, table.Null())
			continue
		}
		if ts, ok := v.Instant(); ok {
			t.Set(i, column, table.String(ts.Format(table.InstantLayout)))
		} else {
			t.Set(i, column, table.Null())
		}
	}
}

// coerceInt rewrites a numeric column to canonical integer text, degrading
// unparseable cells to null.
func coerceInt(t *table.Table, column string) {
	if !t.HasColumn(column) {
		return
	}
	for i, r := range t.Rows {
		v := r[column]
		if v.IsBlank() {
			t.Set(i, column, table.Null())
			continue
		}
		if n, ok := v.Int(); ok {
			t.Set(i, column, table.String(fmt.Sprintf("%d", n)))
		} else {
			t.Set(i, column, table.Null())
		}
	}
}

func boolValue(b bool) table.Value {
	if b {
		return table.String("true")
	}
	return table.String("false")
}

// shopIDSet collects the non-null shop ids of the dimension.
func shopIDSet(shops *table.Table) map[string]struct{} {
	out := make(map[string]struct{}, shops.NumRows())
	for _, r := range shops.Rows {
		if v := r["shop_id"]; !v.IsBlank() {
			out[v.Str] = struct{}{}
		}
	}
	return out
}
