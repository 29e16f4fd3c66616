package table

import (
	"regexp"
	"strings"
)

var (
	nonIdentChars  = regexp.MustCompile(`[^a-z0-9_]`)
	repeatedUnders = regexp.MustCompile(`_+`)
)

// Row maps column names to cells. A missing key reads as null.
type Row map[string]Value

// Get returns the cell for a column, null if absent.
func (r Row) Get(column string) Value {
	return r[column]
}

// Table is an in-memory tabular snapshot with a fixed column order.
// Tables are built whole by one pipeline stage and consumed read-only by the
// next; nothing here mutates a table it did not create.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// New creates an empty table with the given column order.
func New(name string, columns ...string) *Table {
	return &Table{Name: name, Columns: append([]string(nil), columns...)}
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumCols returns the column count.
func (t *Table) NumCols() int {
	return len(t.Columns)
}

// HasColumn reports whether a column exists.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Append adds a row. Keys not in the column list are still stored; callers
// that care about the published shape project through a Schema afterwards.
func (t *Table) Append(r Row) {
	t.Rows = append(t.Rows, r)
}

// AddColumn appends a column to the order if not already present.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// Get returns the cell at (row, column), null when absent.
func (t *Table) Get(i int, column string) Value {
	if i < 0 || i >= len(t.Rows) {
		return Null()
	}
	return t.Rows[i][column]
}

// Set writes a cell, registering the column if needed.
func (t *Table) Set(i int, column string, v Value) {
	if i < 0 || i >= len(t.Rows) {
		return
	}
	t.AddColumn(column)
	if t.Rows[i] == nil {
		t.Rows[i] = Row{}
	}
	t.Rows[i][column] = v
}

// Column returns all cells of a column in row order.
func (t *Table) Column(name string) []Value {
	out := make([]Value, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[name]
	}
	return out
}

// NormalizeColumnNames rewrites every header to the single snake_case
// convention: lower-cased, trimmed, non-alphanumerics collapsed to a single
// underscore. Required before any column reference because source headers
// are inconsistent across extracts.
func (t *Table) NormalizeColumnNames() {
	renames := make(map[string]string, len(t.Columns))
	for i, c := range t.Columns {
		n := NormalizeName(c)
		renames[c] = n
		t.Columns[i] = n
	}
	t.renameRowKeys(renames)
}

// NormalizeName applies the header convention to a single name.
func NormalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = nonIdentChars.ReplaceAllString(n, "_")
	n = repeatedUnders.ReplaceAllString(n, "_")
	return strings.Trim(n, "_")
}

// Rename renames columns per the mapping; names absent from the table are
// ignored so one mapping can serve extracts of slightly different shapes.
func (t *Table) Rename(mapping map[string]string) {
	applied := make(map[string]string)
	for i, c := range t.Columns {
		if to, ok := mapping[c]; ok && to != c {
			t.Columns[i] = to
			applied[c] = to
		}
	}
	t.renameRowKeys(applied)
}

func (t *Table) renameRowKeys(renames map[string]string) {
	if len(renames) == 0 {
		return
	}
	for _, r := range t.Rows {
		for from, to := range renames {
			if from == to {
				continue
			}
			if v, ok := r[from]; ok {
				r[to] = v
				delete(r, from)
			}
		}
	}
}

// Drop removes the given columns and their cells.
func (t *Table) Drop(columns ...string) {
	doomed := make(map[string]bool, len(columns))
	for _, c := range columns {
		doomed[c] = true
	}
	kept := t.Columns[:0]
	for _, c := range t.Columns {
		if !doomed[c] {
			kept = append(kept, c)
		}
	}
	t.Columns = kept
	for _, r := range t.Rows {
		for c := range doomed {
			delete(r, c)
		}
	}
}

// BlankColumns returns the columns whose every cell is null or blank.
func (t *Table) BlankColumns() []string {
	var out []string
	for _, c := range t.Columns {
		blank := true
		for _, r := range t.Rows {
			if !r[c].IsBlank() {
				blank = false
				break
			}
		}
		if blank {
			out = append(out, c)
		}
	}
	return out
}

// ColumnsWithPrefix returns columns whose name starts with prefix.
func (t *Table) ColumnsWithPrefix(prefix string) []string {
	var out []string
	for _, c := range t.Columns {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// Filter returns a new table holding only the rows keep accepts. Rows are
// shared, not copied; the result is treated as read-only like any snapshot.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := New(t.Name, t.Columns...)
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// NonNullCount returns the number of rows with a non-blank cell in column.
func (t *Table) NonNullCount(column string) int {
	n := 0
	for _, r := range t.Rows {
		if !r[column].IsBlank() {
			n++
		}
	}
	return n
}
