package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/partytb/internal/partytb"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPartyTBExport writes a party trial balance CSV to the export directory.
	TaskPartyTBExport = "partytb:export"
)

// PeriodPreviousMonth asks the job to derive the reporting window from the
// execution date, used by scheduled exports.
const PeriodPreviousMonth = "previous_month"

// PartyTBExportPayload is the serialised export request. Dates use the
// YYYY-MM-DD layout; when both are empty PeriodScope decides the window.
type PartyTBExportPayload struct {
	Company        string `json:"company"`
	PartyType      string `json:"party_type"`
	FromDate       string `json:"from_date,omitempty"`
	ToDate         string `json:"to_date,omitempty"`
	PeriodScope    string `json:"period_scope,omitempty"`
	Account        string `json:"account,omitempty"`
	Party          string `json:"party,omitempty"`
	Territory      string `json:"territory,omitempty"`
	SalesPerson    string `json:"sales_person,omitempty"`
	ShowZeroValues bool   `json:"show_zero_values,omitempty"`
}

// PayloadFromFilter converts a validated filter into a task payload.
func PayloadFromFilter(f partytb.Filter) PartyTBExportPayload {
	return PartyTBExportPayload{
		Company:        f.Company,
		PartyType:      string(f.PartyType),
		FromDate:       f.FromDate.Format(partytb.DateLayout),
		ToDate:         f.ToDate.Format(partytb.DateLayout),
		Account:        f.Account,
		Party:          f.Party,
		Territory:      f.Territory,
		SalesPerson:    f.SalesPerson,
		ShowZeroValues: f.ShowZeroValues,
	}
}

// Filter resolves the payload into a report filter. now anchors relative
// period scopes.
func (p PartyTBExportPayload) Filter(now time.Time) (partytb.Filter, error) {
	f := partytb.Filter{
		Company:        p.Company,
		Account:        p.Account,
		Party:          p.Party,
		Territory:      p.Territory,
		SalesPerson:    p.SalesPerson,
		ShowZeroValues: p.ShowZeroValues,
	}
	pt, err := partytb.ParsePartyType(p.PartyType)
	if err != nil {
		return partytb.Filter{}, err
	}
	f.PartyType = pt

	if p.FromDate == "" && p.ToDate == "" {
		scope := p.PeriodScope
		if scope == "" {
			scope = PeriodPreviousMonth
		}
		if scope != PeriodPreviousMonth {
			return partytb.Filter{}, fmt.Errorf("jobs: unsupported period scope %q", scope)
		}
		firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		f.FromDate = firstOfMonth.AddDate(0, -1, 0)
		f.ToDate = firstOfMonth.AddDate(0, 0, -1)
		return f, nil
	}
	if f.FromDate, err = partytb.ParseDate(p.FromDate); err != nil {
		return partytb.Filter{}, fmt.Errorf("jobs: from_date: %w", err)
	}
	if f.ToDate, err = partytb.ParseDate(p.ToDate); err != nil {
		return partytb.Filter{}, fmt.Errorf("jobs: to_date: %w", err)
	}
	return f, nil
}

// NewPartyTBExportTask constructs an export task.
func NewPartyTBExportTask(payload PartyTBExportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPartyTBExport, data), nil
}
