package cleaning

import (
	"fmt"
	"strings"

	"github.com/orangecx/cxpipe/internal/contracts"
	"github.com/orangecx/cxpipe/internal/table"
)

// SurveySchema is the published column set of fact_surveys, in order.
// shop_id is nullable by design: an unmappable survey is a valid business
// outcome and the row is always retained.
var SurveySchema = table.Schema{
	{Name: "survey_id", Required: true},
	{Name: "shop_id", Required: true},
	{Name: "mobis_code", Required: true},
	{Name: "interaction_date"},
	{Name: "response_date"},
	{Name: "rating"},
	{Name: "verbatim"},
	{Name: "vendor_id"},
	{Name: "audience_type"},
	{Name: "customer_type"},
	{Name: "channel"},
	{Name: "case_type"},
	{Name: "case_level_1"},
	{Name: "case_level_2"},
	{Name: "case_level_3"},
	{Name: "source_system"},
	{Name: "is_mappable", Required: true},
}

// surveyRenames maps normalized survey-extract headers to the fact schema.
var surveyRenames = map[string]string{
	"shop_shop_name_aramis_code":                     "shop_name_code_raw",
	"shop_vendor":                                    "vendor_id",
	"satisfaction_score_score_on_scale_from_1_to_5":  "rating",
	"respondent_id":                                  "survey_id",
	"shop_shop_audiencename":                         "audience_type",
	"shop_city":                                      "city_raw",
	"shop_customer_type":                             "customer_type",
	"shop_channel":                                   "channel",
	"shop_direction":                                 "direction",
	"shop_mainchain":                                 "mainchain",
	"shop_case_type":                                 "case_type",
	"shop_case_level_1":                              "case_level_1",
	"shop_case_level_2":                              "case_level_2",
	"shop_case_level_3":                              "case_level_3",
	"shop_source_file":                               "source_system",
}

// BuildSurveys shapes the raw SMS survey extract into fact_surveys. Shop
// linkage goes through code extraction plus a lookup against the dimension;
// surveys whose code resolves to no known shop keep a null shop_id and are
// never dropped.
func BuildSurveys(raw, shops *table.Table, resolver *CodeResolver, ledger *contracts.Ledger) (*table.Table, error) {
	if resolver == nil {
		resolver = NewCodeResolver("")
	}

	t := cloneShallow(raw)
	t.NormalizeColumnNames()
	t.Rename(surveyRenames)

	if err := t.RequireColumns("survey_id", "shop_name_code_raw"); err != nil {
		return nil, fmt.Errorf("build fact_surveys: %w", err)
	}

	// Pull the embedded code out of the free-text shop field.
	t.AddColumn("mobis_code")
	extracted := 0
	for i, r := range t.Rows {
		if code, ok := resolver.Extract(r["shop_name_code_raw"].Str); ok {
			t.Set(i, "mobis_code", table.String(code))
			extracted++
		} else {
			t.Set(i, "mobis_code", table.Null())
		}
	}
	ledger.Append(contracts.LedgerOp{
		Table:       "fact_surveys",
		Operation:   "EXTRACT",
		Description: "extracted shop code from shop name field",
		RowsBefore:  t.NumRows(),
		RowsAfter:   extracted,
	})

	// Resolve codes against the dimension. A code the dimension does not
	// know yields a null shop_id, retained as-is.
	codeToID := shopCodeMap(shops)
	t.AddColumn("shop_id")
	mapped := 0
	for i, r := range t.Rows {
		code := strings.ToUpper(strings.TrimSpace(r["mobis_code"].Str))
		if id, ok := codeToID[code]; ok && !r["mobis_code"].IsNull() {
			t.Set(i, "shop_id", table.String(id))
			mapped++
		} else {
			t.Set(i, "shop_id", table.Null())
		}
	}
	ledger.Append(contracts.LedgerOp{
		Table:       "fact_surveys",
		Operation:   "MAP",
		Description: "mapped extracted codes to shop ids",
		RowsBefore:  extracted,
		RowsAfter:   mapped,
	})

	coerceDate(t, "interaction_date")
	coerceDate(t, "response_date")
	coerceInt(t, "rating")

	// is_mappable mirrors shop_id presence, always.
	t.AddColumn("is_mappable")
	for i, r := range t.Rows {
		t.Set(i, "is_mappable", boolValue(!r["shop_id"].IsNull()))
	}

	out, err := t.Project("fact_surveys", SurveySchema)
	if err != nil {
		return nil, fmt.Errorf("build fact_surveys: %w", err)
	}
	return out, nil
}

// coerceDate rewrites a day-first date column to the canonical date
// encoding, degrading unparseable cells to null.
func coerceDate(t *table.Table, column string) {
	if !t.HasColumn(column) {
		return
	}
	for i, r := range t.Rows {
		v := r[column]
		if v.IsBlank() {
			t.Set(i, column, table.Null())
			continue
		}
		if ts, ok := v.Time(table.DayFirstLayout); ok {
			t.Set(i, column, table.String(ts.Format(table.DateLayout)))
		} else {
			t.Set(i, column, table.Null())
		}
	}
}

// shopCodeMap builds the canonical code→id lookup from the dimension.
// Codes are upper-cased on both sides before any comparison.
func shopCodeMap(shops *table.Table) map[string]string {
	out := make(map[string]string, shops.NumRows())
	for _, r := range shops.Rows {
		code, id := r["mobis_code"], r["shop_id"]
		if code.IsBlank() || id.IsBlank() {
			continue
		}
		key := strings.ToUpper(strings.TrimSpace(code.Str))
		if _, seen := out[key]; !seen {
			out[key] = id.Str
		}
	}
	return out
}
