package partytb

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/partytb/internal/platform/query"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeLedger struct {
	mu         sync.Mutex
	opening    []PartySum
	period     []PartySum
	openingErr error
	periodErr  error
	clauses    []string
}

func (f *fakeLedger) SumByParty(ctx context.Context, where query.Where) ([]PartySum, error) {
	clause, _ := where.Render(query.Postgres)
	f.mu.Lock()
	f.clauses = append(f.clauses, clause)
	f.mu.Unlock()
	if strings.Contains(clause, " OR ") {
		return f.opening, f.openingErr
	}
	return f.period, f.periodErr
}

type fakeDirectory struct {
	parties      []Party
	matches      []string
	matchErr     error
	listErr      error
	matchCalls   int
	listWhere    query.Where
	matchedWhere query.Where
}

func (f *fakeDirectory) ListParties(ctx context.Context, partyType PartyType, where query.Where) ([]Party, error) {
	f.listWhere = where
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.parties, nil
}

func (f *fakeDirectory) MatchCustomers(ctx context.Context, where query.Where) ([]string, error) {
	f.matchCalls++
	f.matchedWhere = where
	return f.matches, f.matchErr
}

type fakeCompanies struct {
	currency string
	err      error
}

func (f fakeCompanies) DefaultCurrency(ctx context.Context, company string) (string, error) {
	return f.currency, f.err
}

type fakeNaming map[PartyType]string

func (f fakeNaming) PartyNamingBy(ctx context.Context, partyType PartyType) (string, error) {
	return f[partyType], nil
}
