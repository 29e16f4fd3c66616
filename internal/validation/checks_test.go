package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/orangecx/cxpipe/internal/table"
)

func fixtureTable(name string, columns []string, rows ...[]string) *table.Table {
	t := table.New(name, columns...)
	for _, cells := range rows {
		row := make(table.Row, len(columns))
		for i, c := range columns {
			if i < len(cells) && cells[i] != "" {
				row[c] = table.String(cells[i])
			}
		}
		t.Append(row)
	}
	return t
}

func TestCheckNotNull(t *testing.T) {
	tbl := fixtureTable("t", []string{"id"},
		[]string{"a"}, []string{""}, []string{"b"}, []string{"  "})

	r := CheckNotNull(tbl, "id")
	assert.Equal(t, Completeness, r.Dimension)
	assert.Equal(t, 2, r.Passed)
	assert.Equal(t, 2, r.Failed)
	assert.Equal(t, 4, r.Total)
	assert.False(t, r.IsPass())
	assert.InDelta(t, 0.5, r.PassRate(), 1e-9)
}

func TestCheckNotNull_EmptyTable(t *testing.T) {
	r := CheckNotNull(table.New("t", "id"), "id")
	assert.Equal(t, 0, r.Total)
	assert.InDelta(t, 1.0, r.PassRate(), 1e-9)
	assert.True(t, r.IsPass())
}

func TestCheckUnique(t *testing.T) {
	tbl := fixtureTable("t", []string{"id"},
		[]string{"a"}, []string{"b"}, []string{"a"}, []string{"a"})

	r := CheckUnique(tbl, "id")
	assert.Equal(t, Uniqueness, r.Dimension)
	assert.Equal(t, 2, r.Failed) // second and third "a"
	assert.Equal(t, 4, r.Total)
}

func TestCheckForeignKey(t *testing.T) {
	ref := map[string]struct{}{"a1": {}, "b2": {}}
	tbl := fixtureTable("t", []string{"shop_id"},
		[]string{"a1"}, []string{"zz"}, []string{""}, []string{"b2"})

	t.Run("strict", func(t *testing.T) {
		r := CheckForeignKey(tbl, "shop_id", ref, false)
		assert.Equal(t, 4, r.Total)
		assert.Equal(t, 2, r.Failed) // "zz" and the null
	})

	t.Run("nullable", func(t *testing.T) {
		r := CheckForeignKey(tbl, "shop_id", ref, true)
		assert.Equal(t, 3, r.Total) // null excluded from the subset
		assert.Equal(t, 1, r.Failed)
	})
}

func TestCheckRange(t *testing.T) {
	tbl := fixtureTable("t", []string{"rating"},
		[]string{"1"}, []string{"5"}, []string{"6"}, []string{""}, []string{"abc"})

	r := CheckRange(tbl, "rating", 1, 5)
	assert.Equal(t, Validity, r.Dimension)
	// Null and unparseable cells both leave the denominator; the unparseable
	// count stays visible.
	assert.Equal(t, 3, r.Total)
	assert.Equal(t, 1, r.Failed)
	assert.Contains(t, r.Details, "1 unparseable values excluded")
}

func TestCheckDateRange(t *testing.T) {
	min := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	max := time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)
	tbl := fixtureTable("t", []string{"ts"},
		[]string{"2025-06-15T10:00:00Z"},
		[]string{"2024-12-31T23:00:00Z"},
		[]string{"garbage"},
		[]string{""})

	r := CheckDateRange(tbl, "ts", min, max)
	// Unparseable cells leave the denominator but stay visible.
	assert.Equal(t, 2, r.Total)
	assert.Equal(t, 1, r.Failed)
	assert.Contains(t, r.Details, "1 unparseable values excluded")
}

func TestCheckInSet(t *testing.T) {
	allowed := map[string]struct{}{"NL": {}, "FR": {}, "BI": {}}
	tbl := fixtureTable("t", []string{"language"},
		[]string{"NL"}, []string{"DE"}, []string{""}, []string{"BI"})

	r := CheckInSet(tbl, "language", allowed)
	assert.Equal(t, 3, r.Total)
	assert.Equal(t, 1, r.Failed)
}

func TestCheckNotConstant(t *testing.T) {
	t.Run("varied", func(t *testing.T) {
		tbl := fixtureTable("t", []string{"rating"},
			[]string{"1"}, []string{"2"}, []string{"3"}, []string{"3"})
		r := CheckNotConstant(tbl, "rating", 0.99)
		assert.Equal(t, Consistency, r.Dimension)
		assert.Equal(t, 4, r.Passed)
		assert.Equal(t, 0, r.Failed)
	})

	t.Run("uniform fails whole subset", func(t *testing.T) {
		tbl := fixtureTable("t", []string{"rating"},
			[]string{"5"}, []string{"5"}, []string{"5"})
		r := CheckNotConstant(tbl, "rating", 0.99)
		assert.Equal(t, 0, r.Passed)
		assert.Equal(t, 3, r.Failed)
		assert.Contains(t, r.Details, "suspiciously uniform")
	})

	t.Run("all null", func(t *testing.T) {
		tbl := fixtureTable("t", []string{"rating"}, []string{""}, []string{""})
		r := CheckNotConstant(tbl, "rating", 0.99)
		assert.Equal(t, 0, r.Total)
		assert.True(t, r.IsPass())
		assert.Equal(t, "no non-null values", r.Details)
	})
}

func TestCheckTemporalOrder(t *testing.T) {
	tbl := fixtureTable("t", []string{"review_ts", "response_ts"},
		[]string{"2025-03-10T10:00:00Z", "2025-03-10T11:00:00Z"}, // ok
		[]string{"2025-03-10T12:00:00Z", "2025-03-10T11:00:00Z"}, // violation
		[]string{"2025-03-10T10:00:00Z", ""},                     // response missing: skipped
		[]string{"garbage", "2025-03-10T11:00:00Z"})              // unparseable pair

	r := CheckTemporalOrder(tbl, "review_ts", "response_ts")
	assert.Equal(t, 2, r.Total)
	assert.Equal(t, 1, r.Failed)
	assert.Contains(t, r.Details, "1 unparseable pairs excluded")
}

func TestCheckColumnNames(t *testing.T) {
	ok := table.New("t", "shop_id", "mobis_code", "case_level_1")
	r := CheckColumnNames(ok)
	assert.True(t, r.IsPass())
	assert.Equal(t, 3, r.Total)

	bad := table.New("t", "shop_id", "Shop Name", "2nd_col")
	r = CheckColumnNames(bad)
	assert.Equal(t, 2, r.Failed)
	assert.Contains(t, r.Details, "Shop Name")
}
