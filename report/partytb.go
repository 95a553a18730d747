package report

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/odyssey-erp/partytb/internal/partytb"
	"github.com/odyssey-erp/partytb/internal/partytb/export"
)

//go:embed templates/*.html
var templateFS embed.FS

// HTMLRenderer converts HTML into PDF bytes.
type HTMLRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// PartyTBRenderer produces printable party trial balances.
type PartyTBRenderer struct {
	client HTMLRenderer
	tpl    *template.Template
	clock  func() time.Time
}

// NewPartyTBRenderer parses the embedded template with locale-aware number
// formatting.
func NewPartyTBRenderer(client HTMLRenderer, locale language.Tag) (*PartyTBRenderer, error) {
	formatter := export.NewAmountFormatter(locale)
	tpl, err := template.New("party_tb.html").Funcs(template.FuncMap{
		"amount": func(d decimal.Decimal) string { return formatter.Format(d) },
		"date":   func(t time.Time) string { return t.Format(partytb.DateLayout) },
	}).ParseFS(templateFS, "templates/party_tb.html")
	if err != nil {
		return nil, fmt.Errorf("report: parse party tb template: %w", err)
	}
	return &PartyTBRenderer{client: client, tpl: tpl, clock: time.Now}, nil
}

type partyTBView struct {
	Filter        partytb.Filter
	ShowPartyName bool
	Rows          []partytb.Row
	Totals        partytb.Row
	HasTotals     bool
	Currency      string
	GeneratedAt   string
}

// HTML renders the report page.
func (r *PartyTBRenderer) HTML(report partytb.Report, f partytb.Filter) (string, error) {
	view := partyTBView{
		Filter:      f,
		Rows:        report.PartyRows(),
		GeneratedAt: r.clock().UTC().Format(time.RFC1123),
	}
	for _, col := range report.Columns {
		if col.FieldName == "party_name" {
			view.ShowPartyName = true
		}
	}
	view.Totals, view.HasTotals = report.Totals()
	view.Currency = view.Totals.Currency

	buf := &bytes.Buffer{}
	if err := r.tpl.ExecuteTemplate(buf, "party_tb.html", view); err != nil {
		return "", fmt.Errorf("report: execute party tb template: %w", err)
	}
	return buf.String(), nil
}

// PDF renders the report and converts it to PDF.
func (r *PartyTBRenderer) PDF(ctx context.Context, report partytb.Report, f partytb.Filter) ([]byte, error) {
	html, err := r.HTML(report, f)
	if err != nil {
		return nil, err
	}
	return r.client.RenderHTML(ctx, html)
}
