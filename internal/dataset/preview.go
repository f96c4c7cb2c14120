package dataset

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// DefaultPreviewRows caps how many rows a preview renders.
const DefaultPreviewRows = 100

// Render writes the first maxRows rows of ds as a table, followed by a
// summary line. A maxRows of zero or less means DefaultPreviewRows.
func Render(w io.Writer, ds *Dataset, maxRows int) {
	if maxRows <= 0 {
		maxRows = DefaultPreviewRows
	}
	head := ds.Head(maxRows)

	header := make([]string, 0, ds.Width())
	for _, c := range ds.columns {
		header = append(header, fmt.Sprintf("%s (%s)", c.Name, c.Type))
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetColumnSeparator(" ")

	record := make([]string, ds.Width())
	_ = head.Each(func(_ int, row []any) error {
		for c, v := range row {
			if v == nil {
				record[c] = "NULL"
			} else {
				record[c] = FormatValue(v)
			}
		}
		table.Append(append([]string(nil), record...))
		return nil
	})
	table.Render()

	fmt.Fprintf(w, "%d of %d rows, %d columns\n", head.Len(), ds.Len(), ds.Width())
}
