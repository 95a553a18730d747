package partytb

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/partytb/internal/platform/query"
)

// Ledger columns referenced by the aggregation predicates.
const (
	LedgerTable       = "gl_entries"
	ColCompany        = "company"
	ColPartyType      = "party_type"
	ColParty          = "party"
	ColAccount        = "account"
	ColPostingDate    = "posting_date"
	ColDebit          = "debit"
	ColCredit         = "credit"
	ColIsOpening      = "is_opening"
	ColIsCancelled    = "is_cancelled"
	ColPartyName      = "name"
	CustomerAlias     = "c"
	SalesTeamRelation = "sales_team st"
)

// PartySum is one grouped ledger result.
type PartySum struct {
	Party  string
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// LedgerSource runs grouped, summed GL queries:
// SELECT party, SUM(debit), SUM(credit) FROM gl_entries WHERE <where> GROUP BY party.
type LedgerSource interface {
	SumByParty(ctx context.Context, where query.Where) ([]PartySum, error)
}

// PartyDirectory reads party master data.
type PartyDirectory interface {
	// ListParties returns parties of the type matching where, ordered by name.
	ListParties(ctx context.Context, partyType PartyType, where query.Where) ([]Party, error)
	// MatchCustomers returns customer names (table alias "c") matching where.
	MatchCustomers(ctx context.Context, where query.Where) ([]string, error)
}

// CompanyLookup resolves company settings.
type CompanyLookup interface {
	DefaultCurrency(ctx context.Context, company string) (string, error)
}

// NamingLookup resolves how parties of a type are named.
type NamingLookup interface {
	PartyNamingBy(ctx context.Context, partyType PartyType) (string, error)
}
