package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadCSV reads a header row followed by data rows. Each column's type is
// inferred from its cells; null tokens become nil.
func ReadCSV(r io.Reader) (*Dataset, error) {
	header, records, err := readRecords(r)
	if err != nil {
		return nil, err
	}

	columns := make([]Column, len(header))
	cells := make([]string, len(records))
	for c, name := range header {
		for r, rec := range records {
			cells[r] = rec[c]
		}
		columns[c] = Column{Name: name, Type: inferText(cells)}
	}
	return WithTypes(columns, textRows(records))
}

// ReadCSVAs reads a CSV whose header must match columns exactly, parsing
// each cell as the declared type instead of inferring one.
func ReadCSVAs(r io.Reader, columns []Column) (*Dataset, error) {
	return readDeclared(r, columns, textRows)
}

// ReadCSVExact reads a CSV written by WriteCSVExact. Only NullMarker is a
// missing value; every other cell, empty or "NA" included, is data.
func ReadCSVExact(r io.Reader, columns []Column) (*Dataset, error) {
	return readDeclared(r, columns, exactRows)
}

func readDeclared(r io.Reader, columns []Column, rows func([][]string) [][]any) (*Dataset, error) {
	header, records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	if len(header) != len(columns) {
		return nil, fmt.Errorf("csv has %d columns, expected %d", len(header), len(columns))
	}
	for i, c := range columns {
		if header[i] != c.Name {
			return nil, fmt.Errorf("csv column %d is %q, expected %q", i+1, header[i], c.Name)
		}
	}
	return WithTypes(columns, rows(records))
}

func readRecords(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("csv has no header row")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading csv header: %v", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading csv rows: %v", err)
	}
	return header, records, nil
}

func textRows(records [][]string) [][]any {
	rows := make([][]any, len(records))
	for r, rec := range records {
		row := make([]any, len(rec))
		for c, cell := range rec {
			if IsNullToken(cell) {
				continue
			}
			row[c] = cell
		}
		rows[r] = row
	}
	return rows
}

func exactRows(records [][]string) [][]any {
	rows := make([][]any, len(records))
	for r, rec := range records {
		row := make([]any, len(rec))
		for c, cell := range rec {
			switch {
			case cell == NullMarker:
			case strings.HasPrefix(cell, `\`):
				row[c] = cell[1:]
			default:
				row[c] = cell
			}
		}
		rows[r] = row
	}
	return rows
}

// LoadCSV reads the dataset stored at path, inferring column types.
func LoadCSV(path string) (*Dataset, error) {
	return loadCSV(path, ReadCSV)
}

// LoadCSVAs reads the dataset stored at path with declared column types.
func LoadCSVAs(path string, columns []Column) (*Dataset, error) {
	return loadCSV(path, func(r io.Reader) (*Dataset, error) { return ReadCSVAs(r, columns) })
}

// LoadCSVExact reads a file written by SaveCSVExact.
func LoadCSVExact(path string, columns []Column) (*Dataset, error) {
	return loadCSV(path, func(r io.Reader) (*Dataset, error) { return ReadCSVExact(r, columns) })
}

func loadCSV(path string, read func(io.Reader) (*Dataset, error)) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %v", err)
	}
	defer f.Close()

	ds, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	return ds, nil
}

// NullMarker is how WriteCSVExact writes a missing value. Empty text and
// text starting with a backslash get a leading backslash, so no value can
// collide with it and no row is ever written as a blank line.
const NullMarker = `\N`

// WriteCSV writes ds with a header row. Missing values are written empty.
func WriteCSV(w io.Writer, ds *Dataset) error {
	return writeCSV(w, ds, FormatValue)
}

// WriteCSVExact writes ds so that ReadCSVExact gives back the same values,
// keeping missing values apart from empty or null-looking text.
func WriteCSVExact(w io.Writer, ds *Dataset) error {
	return writeCSV(w, ds, func(v any) string {
		if v == nil {
			return NullMarker
		}
		s := FormatValue(v)
		if s == "" || strings.HasPrefix(s, `\`) {
			return `\` + s
		}
		return s
	})
}

func writeCSV(w io.Writer, ds *Dataset, format func(any) string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ds.Names()); err != nil {
		return fmt.Errorf("writing csv header: %v", err)
	}

	record := make([]string, ds.Width())
	err := ds.Each(func(i int, row []any) error {
		for c, v := range row {
			record[c] = format(v)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing csv row %d: %v", i+1, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// SaveCSV writes ds to path, replacing any existing file.
func SaveCSV(path string, ds *Dataset) error {
	return saveCSV(path, ds, WriteCSV)
}

// SaveCSVExact is SaveCSV using WriteCSVExact.
func SaveCSVExact(path string, ds *Dataset) error {
	return saveCSV(path, ds, WriteCSVExact)
}

func saveCSV(path string, ds *Dataset, write func(io.Writer, *Dataset) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %v", path, err)
	}
	if err := write(f, ds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
