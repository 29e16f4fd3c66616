package table

import "fmt"

// Field declares one column of a published table shape.
type Field struct {
	Name     string
	Required bool
}

// Schema is the declared, ordered column set of an output table. Required
// fields must be present in the source; optional fields are carried through
// only when the source supplied them (tolerant schema).
type Schema []Field

// RequiredColumns returns the names of the required fields in order.
func (s Schema) RequiredColumns() []string {
	var out []string
	for _, f := range s {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// Project returns a new table named name holding the schema's columns in
// declared order. A required column missing from t is a structural error;
// missing optional columns are omitted.
func (t *Table) Project(name string, s Schema) (*Table, error) {
	var cols []string
	for _, f := range s {
		if t.HasColumn(f.Name) {
			cols = append(cols, f.Name)
			continue
		}
		if f.Required {
			return nil, fmt.Errorf("table %s: required column %q missing", t.Name, f.Name)
		}
	}

	out := New(name, cols...)
	for _, r := range t.Rows {
		row := make(Row, len(cols))
		for _, c := range cols {
			if v, ok := r[c]; ok {
				row[c] = v
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// RequireColumns verifies that every named column exists, failing loudly on
// the first absence. Used for key columns whose loss is unrecoverable.
func (t *Table) RequireColumns(names ...string) error {
	for _, n := range names {
		if !t.HasColumn(n) {
			return fmt.Errorf("table %s: required column %q missing", t.Name, n)
		}
	}
	return nil
}
