package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Select keeps only the named columns. Columns stay in their original
// relative order whatever order the names are given in.
func (d *Dataset) Select(names ...string) (*Dataset, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if d.Index(n) < 0 {
			return nil, fmt.Errorf("no column named %q", n)
		}
		want[n] = true
	}
	return d.project(func(c Column) bool { return want[c.Name] }), nil
}

// Drop removes the named columns. Names that are not present are ignored.
func (d *Dataset) Drop(names ...string) *Dataset {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	return d.project(func(c Column) bool { return !drop[c.Name] })
}

func (d *Dataset) project(keep func(Column) bool) *Dataset {
	var idx []int
	out := &Dataset{}
	for i, c := range d.columns {
		if keep(c) {
			idx = append(idx, i)
			out.columns = append(out.columns, c)
		}
	}
	out.rows = make([][]any, len(d.rows))
	for r, row := range d.rows {
		nr := make([]any, len(idx))
		for j, i := range idx {
			nr[j] = row[i]
		}
		out.rows[r] = nr
	}
	return out
}

// FillNA replaces every missing value with value and re-infers the types of
// the affected columns.
func (d *Dataset) FillNA(value any) *Dataset {
	out := &Dataset{columns: d.Columns(), rows: make([][]any, len(d.rows))}
	for r, row := range d.rows {
		out.rows[r] = append([]any(nil), row...)
	}
	if value == nil {
		return out
	}

	col := make([]any, len(d.rows))
	for c := range d.columns {
		filled := false
		for r, row := range d.rows {
			col[r] = row[c]
			if col[r] == nil {
				col[r] = value
				filled = true
			}
		}
		if !filled {
			continue
		}
		typ, values := normalize(col)
		out.columns[c].Type = typ
		for r := range out.rows {
			out.rows[r][c] = values[r]
		}
	}
	return out
}

// DropDuplicates removes rows identical to an earlier row, keeping the first.
func (d *Dataset) DropDuplicates() *Dataset {
	out := &Dataset{columns: d.Columns()}
	seen := make(map[string]bool, len(d.rows))
	var b strings.Builder
	for _, row := range d.rows {
		b.Reset()
		for _, v := range row {
			if v == nil {
				b.WriteString("\x00")
			} else {
				b.WriteString(typeOf(v).String())
				b.WriteByte(':')
				b.WriteString(FormatValue(v))
			}
			b.WriteByte('\x1f')
		}
		key := b.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out.rows = append(out.rows, append([]any(nil), row...))
	}
	return out
}

// Head returns the first n rows. A negative n keeps every row.
func (d *Dataset) Head(n int) *Dataset {
	if n < 0 || n > len(d.rows) {
		n = len(d.rows)
	}
	out := &Dataset{columns: d.Columns(), rows: make([][]any, n)}
	for r := 0; r < n; r++ {
		out.rows[r] = append([]any(nil), d.rows[r]...)
	}
	return out
}

// ParseValue reads a scalar typed on the command line, preferring int, then
// float, then bool, then string.
func ParseValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, ok := parseAs(s, TypeBool); ok {
		return b
	}
	return s
}
