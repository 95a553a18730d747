// Package export renders party trial balance reports for download.
package export

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/partytb/internal/partytb"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

var errStreamerClosed = errors.New("export: csv streamer not initialised")

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeComment(line string) error {
	if s == nil || s.buf == nil {
		return errStreamerClosed
	}
	// Flush pending records first so comments keep their position.
	s.csv.Flush()
	_, err := s.buf.WriteString(strings.TrimRight(line, "\r\n") + "\r\n")
	return err
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return errStreamerClosed
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	if s == nil || s.csv == nil || s.buf == nil {
		return errStreamerClosed
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

// Metadata describes the run a file was produced from.
type Metadata struct {
	Filter partytb.Filter
}

// WriteCSV streams the report with a metadata comment, a header built from
// the visible columns, one record per row, and the totals row last.
func WriteCSV(w io.Writer, report partytb.Report, meta Metadata) (int, error) {
	streamer := newCSVStreamer(w)
	if err := writeMetadata(streamer, meta); err != nil {
		return 0, err
	}
	columns := visibleColumns(report.Columns)
	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.Label
	}
	if err := streamer.writeRow(header); err != nil {
		return 0, err
	}
	written := 0
	for _, row := range report.Rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = cellValue(row, col.FieldName, fixedAmount)
		}
		if err := streamer.writeRow(record); err != nil {
			return written, err
		}
		if !row.IsTotal {
			written++
		}
	}
	return written, streamer.Flush()
}

func writeMetadata(s *csvStreamer, meta Metadata) error {
	f := meta.Filter
	line := fmt.Sprintf("# Company: %s | Party Type: %s | Period: %s to %s",
		f.Company, f.PartyType, f.FromDate.Format(partytb.DateLayout), f.ToDate.Format(partytb.DateLayout))
	if f.Account != "" {
		line += " | Account: " + f.Account
	}
	if err := s.writeComment(line); err != nil {
		return err
	}
	var scope []string
	if f.Party != "" {
		scope = append(scope, "Party: "+f.Party)
	}
	if f.Territory != "" {
		scope = append(scope, "Territory: "+f.Territory)
	}
	if f.SalesPerson != "" {
		scope = append(scope, "Sales Person: "+f.SalesPerson)
	}
	if len(scope) == 0 {
		return nil
	}
	return s.writeComment("# " + strings.Join(scope, " | "))
}

func visibleColumns(cols []partytb.Column) []partytb.Column {
	out := make([]partytb.Column, 0, len(cols))
	for _, c := range cols {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}

func cellValue(row partytb.Row, field string, amount func(decimal.Decimal) string) string {
	switch field {
	case "party":
		return row.Party
	case "party_name":
		return row.PartyName
	case "opening_debit":
		return amount(row.OpeningDebit)
	case "opening_credit":
		return amount(row.OpeningCredit)
	case "debit":
		return amount(row.Debit)
	case "credit":
		return amount(row.Credit)
	case "closing_debit":
		return amount(row.ClosingDebit)
	case "closing_credit":
		return amount(row.ClosingCredit)
	case "currency":
		return row.Currency
	default:
		return ""
	}
}

func fixedAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
