package partytb

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for report dates.
const DateLayout = "2006-01-02"

// TotalsLabel marks the trailing totals row.
const TotalsLabel = "Totals"

// PartyType enumerates the counterparty categories a ledger entry can carry.
type PartyType string

const (
	PartyCustomer    PartyType = "Customer"
	PartySupplier    PartyType = "Supplier"
	PartyEmployee    PartyType = "Employee"
	PartyMember      PartyType = "Member"
	PartyShareholder PartyType = "Shareholder"
	PartyStudent     PartyType = "Student"
)

// PartyTypes lists every supported party type.
var PartyTypes = []PartyType{PartyCustomer, PartySupplier, PartyEmployee, PartyMember, PartyShareholder, PartyStudent}

// Valid reports whether p is a supported party type.
func (p PartyType) Valid() bool {
	for _, known := range PartyTypes {
		if p == known {
			return true
		}
	}
	return false
}

// DisplayNameField names the master-data attribute holding the party's
// human readable name.
func (p PartyType) DisplayNameField() string {
	switch p {
	case PartyCustomer, PartySupplier, PartyEmployee, PartyMember:
		return strings.ToLower(string(p)) + "_name"
	case PartyShareholder:
		return "title"
	default:
		return "name"
	}
}

// Table returns the master-data table that stores parties of this type.
func (p PartyType) Table() string {
	return strings.ToLower(string(p)) + "s"
}

// ParsePartyType resolves user input case-insensitively.
func ParsePartyType(raw string) (PartyType, error) {
	raw = strings.TrimSpace(raw)
	for _, known := range PartyTypes {
		if strings.EqualFold(raw, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPartyType, raw)
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(raw), time.UTC)
}

// Filter configures one report execution.
type Filter struct {
	Company        string    `json:"company" validate:"required"`
	PartyType      PartyType `json:"party_type" validate:"required,party_type"`
	FromDate       time.Time `json:"from_date" validate:"required"`
	ToDate         time.Time `json:"to_date" validate:"required,gtefield=FromDate"`
	Account        string    `json:"account,omitempty"`
	Party          string    `json:"party,omitempty"`
	Territory      string    `json:"territory,omitempty"`
	SalesPerson    string    `json:"sales_person,omitempty"`
	ShowZeroValues bool      `json:"show_zero_values"`
}

// Key identifies the filter deterministically, e.g. for request coalescing.
func (f Filter) Key() string {
	return strings.Join([]string{
		"partytb",
		f.Company,
		string(f.PartyType),
		f.FromDate.Format(DateLayout),
		f.ToDate.Format(DateLayout),
		f.Account,
		f.Party,
		f.Territory,
		f.SalesPerson,
		fmt.Sprintf("%t", f.ShowZeroValues),
	}, "|")
}

// Party is a master-data record of the reported party type.
type Party struct {
	Name        string
	DisplayName string
}

// BalancePair holds a debit and a credit amount.
type BalancePair struct {
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
}

// Normalized collapses the pair to its one-sided net presentation.
func (b BalancePair) Normalized() BalancePair {
	d, c := Normalize(b.Debit, b.Credit)
	return BalancePair{Debit: d, Credit: c}
}

// Balances maps party identifiers to their aggregated pair.
type Balances map[string]BalancePair

// Get returns the pair for party, or zero amounts when absent.
func (b Balances) Get(party string) BalancePair {
	if pair, ok := b[party]; ok {
		return pair
	}
	return BalancePair{Debit: decimal.Zero, Credit: decimal.Zero}
}

// PartySet is an explicit allowed-party restriction. A nil set means the
// report is unrestricted.
type PartySet struct {
	names []string
	index map[string]struct{}
}

// NewPartySet builds a set from names, dropping duplicates and blanks.
func NewPartySet(names ...string) *PartySet {
	s := &PartySet{index: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, dup := s.index[n]; dup {
			continue
		}
		s.index[n] = struct{}{}
		s.names = append(s.names, n)
	}
	sort.Strings(s.names)
	return s
}

// Restricted reports whether the set limits the report at all.
func (s *PartySet) Restricted() bool { return s != nil }

// Empty reports a restriction that no party satisfies.
func (s *PartySet) Empty() bool { return s != nil && len(s.names) == 0 }

// Len returns the number of allowed parties.
func (s *PartySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Names returns the allowed parties in ascending order.
func (s *PartySet) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.names...)
}

// Contains reports membership; an unrestricted set contains everything.
func (s *PartySet) Contains(name string) bool {
	if s == nil {
		return true
	}
	_, ok := s.index[name]
	return ok
}

// Row is one line of the party trial balance.
type Row struct {
	Party         string          `json:"party"`
	PartyName     string          `json:"party_name,omitempty"`
	OpeningDebit  decimal.Decimal `json:"opening_debit"`
	OpeningCredit decimal.Decimal `json:"opening_credit"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	ClosingDebit  decimal.Decimal `json:"closing_debit"`
	ClosingCredit decimal.Decimal `json:"closing_credit"`
	Currency      string          `json:"currency"`
	IsTotal       bool            `json:"is_total,omitempty"`
}

// HasActivity reports whether any numeric column is non-zero.
func (r Row) HasActivity() bool {
	for _, v := range r.amounts() {
		if !v.IsZero() {
			return true
		}
	}
	return false
}

func (r Row) amounts() []decimal.Decimal {
	return []decimal.Decimal{r.OpeningDebit, r.OpeningCredit, r.Debit, r.Credit, r.ClosingDebit, r.ClosingCredit}
}

func (r *Row) add(other Row) {
	r.OpeningDebit = r.OpeningDebit.Add(other.OpeningDebit)
	r.OpeningCredit = r.OpeningCredit.Add(other.OpeningCredit)
	r.Debit = r.Debit.Add(other.Debit)
	r.Credit = r.Credit.Add(other.Credit)
	r.ClosingDebit = r.ClosingDebit.Add(other.ClosingDebit)
	r.ClosingCredit = r.ClosingCredit.Add(other.ClosingCredit)
}

// Report is the full output of a run. When Rows is non-empty its last
// element is the totals row.
type Report struct {
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Totals returns the trailing totals row if present.
func (r Report) Totals() (Row, bool) {
	if len(r.Rows) == 0 || !r.Rows[len(r.Rows)-1].IsTotal {
		return Row{}, false
	}
	return r.Rows[len(r.Rows)-1], true
}

// PartyRows returns the rows without the totals row.
func (r Report) PartyRows() []Row {
	if _, ok := r.Totals(); ok {
		return r.Rows[:len(r.Rows)-1]
	}
	return r.Rows
}
