package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/odyssey-erp/partytb/internal/partytb"
)

// WriteTable prints the report as an aligned text table for terminals.
// Amount columns are right aligned and zero amounts are left blank.
func WriteTable(w io.Writer, report partytb.Report, amounts AmountFormatter) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	columns := visibleColumns(report.Columns)

	cells := make([]string, len(columns))
	for i, col := range columns {
		cells[i] = col.Label
	}
	if err := writeTableLine(tw, cells); err != nil {
		return err
	}
	for i, col := range columns {
		cells[i] = strings.Repeat("-", len(col.Label))
	}
	if err := writeTableLine(tw, cells); err != nil {
		return err
	}
	for _, row := range report.Rows {
		for i, col := range columns {
			cells[i] = cellValue(row, col.FieldName, amounts.Format)
		}
		if err := writeTableLine(tw, cells); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func writeTableLine(w io.Writer, cells []string) error {
	_, err := fmt.Fprintln(w, strings.Join(cells, "\t")+"\t")
	return err
}
