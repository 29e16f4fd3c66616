package table

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Loader yields a tabular snapshot for a logical source name.
type Loader interface {
	Load(ctx context.Context, name string) (*Table, error)
}

// Sink persists a tabular snapshot under its table name.
type Sink interface {
	Store(ctx context.Context, t *Table) error
}

// CSVLoader reads snapshots from CSV files in a directory. Files maps
// logical source names to file names; unmapped names resolve to
// "<name>.csv".
type CSVLoader struct {
	Dir   string
	Files map[string]string
}

// Load reads the named snapshot. Empty fields become null cells, matching
// how the raw extracts encode absence.
func (l *CSVLoader) Load(ctx context.Context, name string) (*Table, error) {
	_ = ctx

	file, ok := l.Files[name]
	if !ok {
		file = name + ".csv"
	}
	path := filepath.Join(l.Dir, file)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", name, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // raw extracts have ragged rows

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: read header: %w", name, err)
	}

	t := New(name, header...)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("load snapshot %s: read row %d: %w", name, t.NumRows()+1, err)
		}

		row := make(Row, len(header))
		for i, col := range header {
			if i >= len(record) || record[i] == "" {
				continue // absent field reads as null
			}
			row[col] = String(record[i])
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// CSVSink writes snapshots as CSV files named after the table.
type CSVSink struct {
	Dir string
}

// Store writes the table to "<Dir>/<Name>.csv". Null cells serialize as
// empty fields.
func (s *CSVSink) Store(ctx context.Context, t *Table) error {
	_ = ctx

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("store snapshot %s: %w", t.Name, err)
	}
	path := filepath.Join(s.Dir, t.Name+".csv")

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("store snapshot %s: %w", t.Name, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("store snapshot %s: write header: %w", t.Name, err)
	}

	record := make([]string, len(t.Columns))
	for _, r := range t.Rows {
		for i, col := range t.Columns {
			v := r[col]
			if v.IsNull() {
				record[i] = ""
			} else {
				record[i] = v.Str
			}
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("store snapshot %s: write row: %w", t.Name, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("store snapshot %s: flush: %w", t.Name, err)
	}
	return nil
}
