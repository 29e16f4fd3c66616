package validation

import (
	"fmt"
	"strconv"

	"github.com/orangecx/cxpipe/internal/table"
)

// DefaultThreshold is the per-dimension pass rate required for
// certification unless the caller supplies another.
const DefaultThreshold = 0.95

// Dimension is one of the four quality categories every check belongs to.
type Dimension string

const (
	Completeness Dimension = "COMPLETENESS"
	Uniqueness   Dimension = "UNIQUENESS"
	Validity     Dimension = "VALIDITY"
	Consistency  Dimension = "CONSISTENCY"
)

// allDimensions in canonical reporting order.
var allDimensions = []Dimension{Completeness, Uniqueness, Validity, Consistency}

// Result is the outcome of a single validation check against one table.
type Result struct {
	Check     string
	Dimension Dimension
	Table     string
	Passed    int
	Failed    int
	Total     int
	Details   string
}

// PassRate is passed/total. An empty check passes trivially: a check with
// nothing to look at must not read as a failure.
func (r Result) PassRate() float64 {
	if r.Total == 0 {
		return 1.0
	}
	return float64(r.Passed) / float64(r.Total)
}

// IsPass reports whether the check recorded zero failures.
func (r Result) IsPass() bool {
	return r.Failed == 0
}

// Report is the ordered ledger of all check results plus the certification
// threshold. Order matters for reporting only; scoring is a pure sum.
type Report struct {
	Threshold float64
	results   []Result
}

// NewReport creates a report with the given threshold; non-positive values
// fall back to DefaultThreshold.
func NewReport(threshold float64) *Report {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Report{Threshold: threshold}
}

// Add appends a check result in arrival order.
func (rep *Report) Add(r Result) {
	rep.results = append(rep.results, r)
}

// Results returns the full per-check ledger in arrival order.
func (rep *Report) Results() []Result {
	return rep.results
}

// Failures returns only the checks that recorded failures.
func (rep *Report) Failures() []Result {
	var out []Result
	for _, r := range rep.results {
		if !r.IsPass() {
			out = append(out, r)
		}
	}
	return out
}

// DimensionScore is sum(passed)/sum(total) over the dimension's checks.
// A dimension with no checks, or only empty checks, scores 1.0.
func (rep *Report) DimensionScore(d Dimension) float64 {
	passed, total := 0, 0
	for _, r := range rep.results {
		if r.Dimension == d {
			passed += r.Passed
			total += r.Total
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(passed) / float64(total)
}

// TableScore is sum(passed)/sum(total) over the table's checks.
func (rep *Report) TableScore(tableName string) float64 {
	passed, total := 0, 0
	for _, r := range rep.results {
		if r.Table == tableName {
			passed += r.Passed
			total += r.Total
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(passed) / float64(total)
}

// OverallScore is sum(passed)/sum(total) over every check.
func (rep *Report) OverallScore() float64 {
	passed, total := 0, 0
	for _, r := range rep.results {
		passed += r.Passed
		total += r.Total
	}
	if total == 0 {
		return 1.0
	}
	return float64(passed) / float64(total)
}

// Dimensions returns the dimensions that have at least one recorded check,
// in canonical order.
func (rep *Report) Dimensions() []Dimension {
	present := make(map[Dimension]bool)
	for _, r := range rep.results {
		present[r.Dimension] = true
	}
	var out []Dimension
	for _, d := range allDimensions {
		if present[d] {
			out = append(out, d)
		}
	}
	return out
}

// Tables returns the table names with at least one recorded check, in first
// appearance order.
func (rep *Report) Tables() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rep.results {
		if !seen[r.Table] {
			seen[r.Table] = true
			out = append(out, r.Table)
		}
	}
	return out
}

// IsCertified reports whether every dimension with at least one recorded
// check scores at or above the threshold. A dimension nobody checked passes
// vacuously and never blocks certification.
func (rep *Report) IsCertified() bool {
	for _, d := range rep.Dimensions() {
		if rep.DimensionScore(d) < rep.Threshold {
			return false
		}
	}
	return true
}

// Snapshot renders the full ledger as a persistable table, one row per
// check.
func (rep *Report) Snapshot() *table.Table {
	return resultsTable("validation_results", rep.results)
}

// FailuresSnapshot renders the failures-only subset.
func (rep *Report) FailuresSnapshot() *table.Table {
	return resultsTable("validation_failures", rep.Failures())
}

func resultsTable(name string, results []Result) *table.Table {
	t := table.New(name,
		"table", "dimension", "check",
		"passed", "failed", "total", "pass_rate", "details",
	)
	for _, r := range results {
		row := table.Row{
			"table":     table.String(r.Table),
			"dimension": table.String(string(r.Dimension)),
			"check":     table.String(r.Check),
			"passed":    table.String(strconv.Itoa(r.Passed)),
			"failed":    table.String(strconv.Itoa(r.Failed)),
			"total":     table.String(strconv.Itoa(r.Total)),
			"pass_rate": table.String(fmt.Sprintf("%.4f", r.PassRate())),
		}
		if r.Details != "" {
			row["details"] = table.String(r.Details)
		}
		t.Append(row)
	}
	return t
}
