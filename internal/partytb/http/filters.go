package http

import (
	"strconv"
	"strings"

	"github.com/odyssey-erp/partytb/internal/partytb"
)

// filterInput carries raw filter values from a query string or JSON body.
type filterInput struct {
	Company        string `json:"company"`
	PartyType      string `json:"party_type"`
	FromDate       string `json:"from_date"`
	ToDate         string `json:"to_date"`
	Account        string `json:"account"`
	Party          string `json:"party"`
	Territory      string `json:"territory"`
	SalesPerson    string `json:"sales_person"`
	ShowZeroValues string `json:"show_zero_values"`
}

func inputFromQuery(get func(string) string) filterInput {
	return filterInput{
		Company:        get("company"),
		PartyType:      get("party_type"),
		FromDate:       get("from_date"),
		ToDate:         get("to_date"),
		Account:        get("account"),
		Party:          get("party"),
		Territory:      get("territory"),
		SalesPerson:    get("sales_person"),
		ShowZeroValues: get("show_zero_values"),
	}
}

// filter parses the input into a Filter, collecting parse errors per field.
// Semantic checks are left to partytb.ValidateFilter.
func (in filterInput) filter() (partytb.Filter, map[string]string) {
	errs := make(map[string]string)
	f := partytb.Filter{
		Company:     strings.TrimSpace(in.Company),
		Account:     strings.TrimSpace(in.Account),
		Party:       strings.TrimSpace(in.Party),
		Territory:   strings.TrimSpace(in.Territory),
		SalesPerson: strings.TrimSpace(in.SalesPerson),
	}
	if raw := strings.TrimSpace(in.PartyType); raw != "" {
		pt, err := partytb.ParsePartyType(raw)
		if err != nil {
			errs["party_type"] = "party_type " + strconv.Quote(raw) + " is not supported"
		}
		f.PartyType = pt
	}
	if raw := strings.TrimSpace(in.FromDate); raw != "" {
		d, err := partytb.ParseDate(raw)
		if err != nil {
			errs["from_date"] = "from_date must use YYYY-MM-DD"
		}
		f.FromDate = d
	}
	if raw := strings.TrimSpace(in.ToDate); raw != "" {
		d, err := partytb.ParseDate(raw)
		if err != nil {
			errs["to_date"] = "to_date must use YYYY-MM-DD"
		}
		f.ToDate = d
	}
	if raw := strings.TrimSpace(in.ShowZeroValues); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errs["show_zero_values"] = "show_zero_values must be a boolean"
		}
		f.ShowZeroValues = v
	}
	if len(errs) > 0 {
		return partytb.Filter{}, errs
	}
	if err := partytb.ValidateFilter(f); err != nil {
		return partytb.Filter{}, partytb.FieldErrors(err)
	}
	return f, errs
}
