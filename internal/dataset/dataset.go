// Package dataset holds the in-memory tabular dataset that is previewed,
// transformed and exported: ordered, uniquely named columns with typed
// per-row values. Datasets are immutable; every transform returns a new one.
package dataset

import (
	"fmt"
	"strings"
)

// Column is a named, typed column.
type Column struct {
	Name string
	Type Type
}

// Dataset is an ordered set of columns and rows. Row values are nil, string,
// int64, float64, bool or time.Time, matching the column Type.
type Dataset struct {
	columns []Column
	rows    [][]any
}

// New builds a Dataset from column names and raw row values, inferring each
// column's Type from its values. Column names must be non-empty and unique
// and every row must have one value per column.
func New(names []string, rows [][]any) (*Dataset, error) {
	if err := checkNames(names); err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("row %d has %d values, expected %d", i+1, len(row), len(names))
		}
	}

	ds := &Dataset{
		columns: make([]Column, len(names)),
		rows:    make([][]any, len(rows)),
	}
	for i := range rows {
		ds.rows[i] = make([]any, len(names))
	}

	col := make([]any, len(rows))
	for c, name := range names {
		for r := range rows {
			col[r] = rows[r][c]
		}
		typ, values := normalize(col)
		ds.columns[c] = Column{Name: name, Type: typ}
		for r := range rows {
			ds.rows[r][c] = values[r]
		}
	}
	return ds, nil
}

// WithTypes builds a Dataset whose column types are given rather than
// inferred. Values are coerced to the declared types.
func WithTypes(columns []Column, rows [][]any) (*Dataset, error) {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	if err := checkNames(names); err != nil {
		return nil, err
	}

	ds := &Dataset{columns: append([]Column(nil), columns...), rows: make([][]any, len(rows))}
	for r, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values, expected %d", r+1, len(row), len(columns))
		}
		out := make([]any, len(row))
		for c, v := range row {
			cv, err := coerce(v, columns[c].Type)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", r+1, columns[c].Name, err)
			}
			out[c] = cv
		}
		ds.rows[r] = out
	}
	return ds, nil
}

func checkNames(names []string) error {
	seen := make(map[string]bool, len(names))
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("column %d has an empty name", i+1)
		}
		if seen[name] {
			return fmt.Errorf("duplicate column name %q", name)
		}
		seen[name] = true
	}
	return nil
}

// Columns returns a copy of the column list in order.
func (d *Dataset) Columns() []Column {
	return append([]Column(nil), d.columns...)
}

// Names returns the column names in order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name
	}
	return names
}

// Len is the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Width is the number of columns.
func (d *Dataset) Width() int { return len(d.columns) }

// Row returns a copy of row i.
func (d *Dataset) Row(i int) []any {
	return append([]any(nil), d.rows[i]...)
}

// Value returns the value at row r, column c.
func (d *Dataset) Value(r, c int) any { return d.rows[r][c] }

// Index returns the position of the named column, or -1.
func (d *Dataset) Index(name string) int {
	for i, c := range d.columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Each calls fn for every row in order, stopping at the first error. The
// slice passed to fn must not be retained or modified.
func (d *Dataset) Each(fn func(i int, row []any) error) error {
	for i, row := range d.rows {
		if err := fn(i, row); err != nil {
			return err
		}
	}
	return nil
}
