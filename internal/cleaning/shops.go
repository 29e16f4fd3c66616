package cleaning

import (
	"fmt"
	"strings"

	"github.com/orangecx/cxpipe/internal/contracts"
	"github.com/orangecx/cxpipe/internal/table"
)

// InactiveSegment is the segment sentinel marking defunct shops. Inactive
// entities are out of analytical scope by policy, not a data error.
const InactiveSegment = "CLOSED"

// ShopSchema is the published column set of dim_shops, in order. Only the
// identity-side keys are required; enrichment columns are carried when the
// metadata extract supplies them.
var ShopSchema = table.Schema{
	{Name: "shop_id", Required: true},
	{Name: "mobis_code", Required: true},
	{Name: "shop_name", Required: true},
	{Name: "city"},
	{Name: "address"},
	{Name: "zipcode"},
	{Name: "macro_segment"},
	{Name: "new_mainchain"},
	{Name: "manager_name"},
	{Name: "manager_email"},
	{Name: "kam_name"},
	{Name: "kam_email"},
	{Name: "rsm_name"},
	{Name: "rsm_email"},
	{Name: "language"},
}

// identityRenames maps normalized identity-extract headers to the dimension
// schema.
var identityRenames = map[string]string{
	"id":        "shop_id",
	"code":      "mobis_code",
	"name":      "shop_name",
	"full_name": "shop_full_name",
}

// metadataRenames maps normalized metadata-extract headers to the dimension
// schema.
var metadataRenames = map[string]string{
	"aramis_code":                         "mobis_code",
	"shop_manager_name":                   "manager_name",
	"shop_manager_private_shop_email":     "manager_email",
	"district_key_account_manager_name":   "kam_name",
	"district_key_account_manager_email":  "kam_email",
	"regional_sales_manager_name":         "rsm_name",
	"regional_sales_manager_email":        "rsm_email",
	"iam_language":                        "language",
}

// enrichmentColumns are the metadata columns merged into the dimension.
var enrichmentColumns = []string{
	"macro_segment", "new_mainchain",
	"manager_name", "manager_email",
	"kam_name", "kam_email",
	"rsm_name", "rsm_email",
	"language",
}

// BuildShops reconciles the identity extract (stable shop ids) with the
// metadata extract (management hierarchy, segment, language) into the
// canonical shop dimension. The identity side drives: every identity row
// survives, so the output row count equals the identity row count.
func BuildShops(identity, metadata *table.Table, ledger *contracts.Ledger) (*table.Table, error) {
	identity = cloneShallow(identity)
	metadata = cloneShallow(metadata)

	identity.NormalizeColumnNames()
	metadata.NormalizeColumnNames()

	// A missing id or code on the identity side is structural, not degradable.
	if err := identity.RequireColumns("id", "code", "name"); err != nil {
		return nil, fmt.Errorf("build dim_shops: %w", err)
	}
	if err := metadata.RequireColumns("aramis_code"); err != nil {
		return nil, fmt.Errorf("build dim_shops: %w", err)
	}

	// Inactive shops are filtered before the join so their metadata never
	// reaches the dimension.
	active := metadata.Filter(func(r table.Row) bool {
		return r["macro_segment"].Str != InactiveSegment
	})
	ledger.Append(contracts.LedgerOp{
		Table:       "dim_shops",
		Operation:   "FILTER",
		Description: "removed inactive shops from metadata",
		RowsBefore:  metadata.NumRows(),
		RowsAfter:   active.NumRows(),
	})

	active.Rename(metadataRenames)

	// Dedupe on the join key, first occurrence wins, so duplicate metadata
	// rows cannot fan out the left join.
	enrichment := dedupeByCode(active)
	ledger.Append(contracts.LedgerOp{
		Table:       "dim_shops",
		Operation:   "DEDUPE",
		Description: "deduplicated metadata on mobis_code",
		RowsBefore:  active.NumRows(),
		RowsAfter:   len(enrichment),
	})

	dim := identity
	dim.Rename(identityRenames)
	rowsBefore := dim.NumRows()

	merged := table.New("dim_shops", dim.Columns...)
	for _, c := range enrichmentColumns {
		if active.HasColumn(c) {
			merged.AddColumn(c)
		}
	}
	for _, r := range dim.Rows {
		row := make(table.Row, len(merged.Columns))
		for k, v := range r {
			row[k] = v
		}
		code := strings.ToUpper(strings.TrimSpace(row["mobis_code"].Str))
		if !row["mobis_code"].IsNull() {
			row["mobis_code"] = table.String(code)
		}
		if meta, ok := enrichment[code]; ok {
			for _, c := range enrichmentColumns {
				if v, exists := meta[c]; exists && !v.IsBlank() {
					row[c] = v
				}
			}
		}
		merged.Rows = append(merged.Rows, row)
	}
	ledger.Append(contracts.LedgerOp{
		Table:       "dim_shops",
		Operation:   "MERGE",
		Description: "enriched identity rows with shop metadata",
		RowsBefore:  rowsBefore,
		RowsAfter:   merged.NumRows(),
	})

	// Language fallback: fill only genuinely absent values, never override
	// an authoritative one.
	merged.AddColumn("language")
	missingBefore := fillMissing(merged, "language", func(r table.Row) table.Value {
		if lang, ok := InferLanguageFromZip(r["zipcode"]); ok {
			return table.String(lang)
		}
		return table.Null()
	})
	missingAfter := merged.NumRows() - merged.NonNullCount("language")
	ledger.Append(contracts.LedgerOp{
		Table:       "dim_shops",
		Operation:   "INFER",
		Description: "inferred language from postal code",
		RowsBefore:  missingBefore,
		RowsAfter:   missingAfter,
	})

	out, err := merged.Project("dim_shops", ShopSchema)
	if err != nil {
		return nil, fmt.Errorf("build dim_shops: %w", err)
	}
	return out, nil
}

// dedupeByCode indexes metadata rows by upper-cased mobis_code, keeping the
// first occurrence of each code.
func dedupeByCode(t *table.Table) map[string]table.Row {
	out := make(map[string]table.Row, t.NumRows())
	for _, r := range t.Rows {
		v := r["mobis_code"]
		if v.IsBlank() {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(v.Str))
		if _, seen := out[code]; !seen {
			out[code] = r
		}
	}
	return out
}

// fillMissing coalesces column with fn for rows where the cell is blank and
// returns how many cells were missing beforehand. Present values are never
// touched.
func fillMissing(t *table.Table, column string, fn func(table.Row) table.Value) int {
	missing := 0
	for i, r := range t.Rows {
		if !r[column].IsBlank() {
			continue
		}
		missing++
		if v := fn(r); !v.IsNull() {
			t.Set(i, column, v)
		}
	}
	return missing
}

// cloneShallow copies the table structure and row maps so stages can rename
// and mutate without touching the caller's snapshot. Cell values are shared.
func cloneShallow(t *table.Table) *table.Table {
	out := table.New(t.Name, t.Columns...)
	out.Rows = make([]table.Row, len(t.Rows))
	for i, r := range t.Rows {
		row := make(table.Row, len(r))
		for k, v := range r {
			row[k] = v
		}
		out.Rows[i] = row
	}
	return out
}
