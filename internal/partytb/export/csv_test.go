package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/odyssey-erp/partytb/internal/partytb"
)

func sampleReport(showName bool) partytb.Report {
	rows := partytb.BuildRows(partytb.RowInput{
		Parties:       []partytb.Party{{Name: "C1", DisplayName: "Alpha, Inc."}, {Name: "C2"}},
		ShowPartyName: showName,
		Opening:       partytb.Balances{"C1": {Debit: decimal.NewFromInt(100), Credit: decimal.Zero}},
		Period:        partytb.Balances{"C1": {Debit: decimal.NewFromInt(50), Credit: decimal.Zero}},
		Currency:      "USD",
	})
	return partytb.Report{Columns: partytb.Columns(partytb.PartyCustomer, showName), Rows: rows}
}

func sampleMeta() Metadata {
	return Metadata{Filter: partytb.Filter{
		Company:   "ACME",
		PartyType: partytb.PartyCustomer,
		FromDate:  time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		ToDate:    time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
		Territory: "North",
	}}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	written, err := WriteCSV(&buf, sampleReport(true), sampleMeta())
	require.NoError(t, err)
	require.Equal(t, 1, written)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n")
	require.Equal(t, []string{
		"# Company: ACME | Party Type: Customer | Period: 2025-04-01 to 2025-04-30",
		"# Territory: North",
		"Customer,Customer Name,Opening (Dr),Opening (Cr),Debit,Credit,Closing (Dr),Closing (Cr)",
		`C1,"Alpha, Inc.",100.00,0.00,50.00,0.00,150.00,0.00`,
		"Totals,,100.00,0.00,50.00,0.00,150.00,0.00",
	}, lines)
}

func TestWriteCSVWithoutNameColumn(t *testing.T) {
	var buf bytes.Buffer
	_, err := WriteCSV(&buf, sampleReport(false), Metadata{Filter: partytb.Filter{Company: "ACME", PartyType: partytb.PartyCustomer}})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "\r\nCustomer,Opening (Dr),")
	require.NotContains(t, buf.String(), "Alpha")
}

func TestWriteCSVEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	report := partytb.Report{Columns: partytb.Columns(partytb.PartySupplier, false), Rows: []partytb.Row{}}
	written, err := WriteCSV(&buf, report, sampleMeta())
	require.NoError(t, err)
	require.Zero(t, written)
	require.True(t, strings.HasSuffix(buf.String(), "Closing (Cr)\r\n"))
}

func TestCSVStreamerFlushInterval(t *testing.T) {
	var buf bytes.Buffer
	streamer := newCSVStreamer(&buf)
	for i := 0; i < csvFlushEvery; i++ {
		require.NoError(t, streamer.writeRow([]string{"row"}))
	}
	require.Zero(t, streamer.pendingLines)
	require.NoError(t, streamer.writeRow([]string{"next"}))
	require.Equal(t, 1, streamer.pendingLines)
	require.NoError(t, streamer.Flush())
}

func TestAmountFormatter(t *testing.T) {
	f := NewAmountFormatter(language.AmericanEnglish)
	require.Equal(t, "1,234,567.50", f.Format(decimal.RequireFromString("1234567.5")))
	require.Equal(t, "", f.Format(decimal.Zero))

	de := NewAmountFormatter(language.German)
	require.Equal(t, "1.234,50", de.Format(decimal.RequireFromString("1234.5")))
}
