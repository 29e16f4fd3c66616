package validation

import (
	"fmt"
	"regexp"
	"time"

	"github.com/orangecx/cxpipe/internal/table"
)

// Checks are pure functions (snapshot, parameters) → Result. They never
// mutate their input and never fail: data problems become counted failures,
// not errors.

var columnNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// CheckNotNull counts null cells in a column. COMPLETENESS.
func CheckNotNull(t *table.Table, column string) Result {
	total := t.NumRows()
	nulls := 0
	for _, r := range t.Rows {
		if r[column].IsBlank() {
			nulls++
		}
	}
	return Result{
		Check:     fmt.Sprintf("%s not null", column),
		Dimension: Completeness,
		Table:     t.Name,
		Passed:    total - nulls,
		Failed:    nulls,
		Total:     total,
		Details:   countDetail(nulls, "null values"),
	}
}

// CheckUnique counts duplicate values in a column; any occurrence after the
// first counts as a duplicate. UNIQUENESS.
func CheckUnique(t *table.Table, column string) Result {
	total := t.NumRows()
	seen := make(map[string]bool, total)
	seenNull := false
	dupes := 0
	for _, r := range t.Rows {
		v := r[column]
		if v.IsNull() {
			if seenNull {
				dupes++
			}
			seenNull = true
			continue
		}
		if seen[v.Str] {
			dupes++
		}
		seen[v.Str] = true
	}
	return Result{
		Check:     fmt.Sprintf("%s unique", column),
		Dimension: Uniqueness,
		Table:     t.Name,
		Passed:    total - dupes,
		Failed:    dupes,
		Total:     total,
		Details:   countDetail(dupes, "duplicate values"),
	}
}

// CheckForeignKey counts values absent from the reference set. When
// allowNull is true the check subsets to non-null values first; a nullable
// foreign key is judged only where it is populated. UNIQUENESS.
func CheckForeignKey(t *table.Table, column string, ref map[string]struct{}, allowNull bool) Result {
	total, invalid := 0, 0
	for _, r := range t.Rows {
		v := r[column]
		if allowNull && v.IsBlank() {
			continue
		}
		total++
		if _, ok := ref[v.Str]; !ok || v.IsBlank() {
			invalid++
		}
	}
	return Result{
		Check:     fmt.Sprintf("%s FK valid", column),
		Dimension: Uniqueness,
		Table:     t.Name,
		Passed:    total - invalid,
		Failed:    invalid,
		Total:     total,
		Details:   countDetail(invalid, "invalid FK references"),
	}
}

// CheckRange counts parseable non-null numeric values strictly outside the
// inclusive [min, max] bound. Unparseable cells are excluded from the
// denominator but counted in the details, same as the date checks. VALIDITY.
func CheckRange(t *table.Table, column string, min, max float64) Result {
	total, out, unparseable := 0, 0, 0
	for _, r := range t.Rows {
		v := r[column]
		if v.IsBlank() {
			continue
		}
		f, ok := v.Float()
		if !ok {
			unparseable++
			continue
		}
		total++
		if f < min || f > max {
			out++
		}
	}
	details := countDetail(out, "out of range")
	if unparseable > 0 {
		details = joinDetails(details, fmt.Sprintf("%d unparseable values excluded", unparseable))
	}
	return Result{
		Check:     fmt.Sprintf("%s in [%v, %v]", column, min, max),
		Dimension: Validity,
		Table:     t.Name,
		Passed:    total - out,
		Failed:    out,
		Total:     total,
		Details:   details,
	}
}

// CheckDateRange counts parseable non-null dates strictly outside the
// inclusive [min, max] bound, compared as UTC instants. Unparseable cells
// are excluded from the denominator but their count is surfaced in the
// details so a wholly misformatted column stays visible. VALIDITY.
func CheckDateRange(t *table.Table, column string, min, max time.Time) Result {
	total, out, unparseable := 0, 0, 0
	for _, r := range t.Rows {
		v := r[column]
		if v.IsBlank() {
			continue
		}
		ts, ok := v.Instant()
		if !ok {
			unparseable++
			continue
		}
		total++
		if ts.Before(min) || ts.After(max) {
			out++
		}
	}
	details := countDetail(out, "out of range")
	if unparseable > 0 {
		details = joinDetails(details, fmt.Sprintf("%d unparseable values excluded", unparseable))
	}
	return Result{
		Check: fmt.Sprintf("%s in [%s, %s]",
			column, min.Format(table.DateLayout), max.Format(table.DateLayout)),
		Dimension: Validity,
		Table:     t.Name,
		Passed:    total - out,
		Failed:    out,
		Total:     total,
		Details:   details,
	}
}

// CheckInSet counts non-null values outside the allowed category set.
// VALIDITY.
func CheckInSet(t *table.Table, column string, allowed map[string]struct{}) Result {
	total, invalid := 0, 0
	for _, r := range t.Rows {
		v := r[column]
		if v.IsBlank() {
			continue
		}
		total++
		if _, ok := allowed[v.Str]; !ok {
			invalid++
		}
	}
	return Result{
		Check:     fmt.Sprintf("%s values valid", column),
		Dimension: Validity,
		Table:     t.Name,
		Passed:    total - invalid,
		Failed:    invalid,
		Total:     total,
		Details:   countDetail(invalid, "invalid values"),
	}
}

// CheckNotConstant fails the entire non-null subset when the single most
// frequent value's share exceeds ceiling; otherwise the entire subset
// passes. All-or-nothing per table, not per row. CONSISTENCY.
func CheckNotConstant(t *table.Table, column string, ceiling float64) Result {
	check := fmt.Sprintf("%s distribution varies", column)
	counts := make(map[string]int)
	total := 0
	for _, r := range t.Rows {
		v := r[column]
		if v.IsBlank() {
			continue
		}
		total++
		counts[v.Str]++
	}
	if total == 0 {
		return Result{
			Check:     check,
			Dimension: Consistency,
			Table:     t.Name,
			Details:   "no non-null values",
		}
	}

	mode := 0
	for _, n := range counts {
		if n > mode {
			mode = n
		}
	}
	share := float64(mode) / float64(total)
	if share > ceiling {
		return Result{
			Check:     check,
			Dimension: Consistency,
			Table:     t.Name,
			Passed:    0,
			Failed:    total,
			Total:     total,
			Details:   fmt.Sprintf("%.1f%% same value (suspiciously uniform)", share*100),
		}
	}
	return Result{
		Check:     check,
		Dimension: Consistency,
		Table:     t.Name,
		Passed:    total,
		Failed:    0,
		Total:     total,
	}
}

// CheckTemporalOrder counts rows where before > after, over the subset
// where both timestamps are present and parseable. Unparseable pairs are
// excluded from the denominator but counted in the details. CONSISTENCY.
func CheckTemporalOrder(t *table.Table, beforeCol, afterCol string) Result {
	total, violations, unparseable := 0, 0, 0
	for _, r := range t.Rows {
		b, a := r[beforeCol], r[afterCol]
		if b.IsBlank() || a.IsBlank() {
			continue
		}
		bt, bok := b.Instant()
		at, aok := a.Instant()
		if !bok || !aok {
			unparseable++
			continue
		}
		total++
		if bt.After(at) {
			violations++
		}
	}
	details := countDetail(violations, "temporal violations")
	if unparseable > 0 {
		details = joinDetails(details, fmt.Sprintf("%d unparseable pairs excluded", unparseable))
	}
	return Result{
		Check:     fmt.Sprintf("%s <= %s", beforeCol, afterCol),
		Dimension: Consistency,
		Table:     t.Name,
		Passed:    total - violations,
		Failed:    violations,
		Total:     total,
		Details:   details,
	}
}

// CheckColumnNames verifies column names against the warehouse identifier
// convention. Operates over headers, not rows. VALIDITY.
func CheckColumnNames(t *table.Table) Result {
	total := t.NumCols()
	var invalid []string
	for _, c := range t.Columns {
		if !columnNamePattern.MatchString(c) {
			invalid = append(invalid, c)
		}
	}
	details := ""
	if len(invalid) > 0 {
		details = fmt.Sprintf("invalid: %v", invalid)
	}
	return Result{
		Check:     "column names warehouse-safe",
		Dimension: Validity,
		Table:     t.Name,
		Passed:    total - len(invalid),
		Failed:    len(invalid),
		Total:     total,
		Details:   details,
	}
}

func countDetail(n int, what string) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%d %s", n, what)
}

func joinDetails(a, b string) string {
	if a == "" {
		return b
	}
	return a + "; " + b
}
