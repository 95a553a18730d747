package partytb

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/partytb/internal/platform/query"
)

const (
	openingYes = "Yes"
	openingNo  = "No"
)

// Aggregator reduces ledger entries into per-party balances.
type Aggregator struct {
	ledger LedgerSource
}

// NewAggregator constructs an Aggregator.
func NewAggregator(ledger LedgerSource) *Aggregator {
	return &Aggregator{ledger: ledger}
}

// Aggregate loads opening and in-period balances. The two queries are
// independent and run concurrently; the first failure cancels the other.
func (a *Aggregator) Aggregate(ctx context.Context, f Filter, allowed *PartySet) (Balances, Balances, error) {
	var opening, period Balances
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		opening, err = a.Opening(gctx, f, allowed)
		return err
	})
	g.Go(func() error {
		var err error
		period, err = a.InPeriod(gctx, f, allowed)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return opening, period, nil
}

// Opening returns net-normalized balances carried into the period.
func (a *Aggregator) Opening(ctx context.Context, f Filter, allowed *PartySet) (Balances, error) {
	sums, err := a.ledger.SumByParty(ctx, OpeningWhere(f, allowed))
	if err != nil {
		return nil, fmt.Errorf("partytb: opening balances: %w", err)
	}
	raw := collect(sums)
	for party, pair := range raw {
		raw[party] = pair.Normalized()
	}
	return raw, nil
}

// InPeriod returns raw debit and credit sums inside the period.
func (a *Aggregator) InPeriod(ctx context.Context, f Filter, allowed *PartySet) (Balances, error) {
	sums, err := a.ledger.SumByParty(ctx, PeriodWhere(f, allowed))
	if err != nil {
		return nil, fmt.Errorf("partytb: period balances: %w", err)
	}
	return collect(sums), nil
}

func collect(sums []PartySum) Balances {
	out := make(Balances, len(sums))
	for _, s := range sums {
		pair := out.Get(s.Party)
		pair.Debit = pair.Debit.Add(s.Debit)
		pair.Credit = pair.Credit.Add(s.Credit)
		out[s.Party] = pair
	}
	return out
}

// OpeningWhere selects entries dated before the period plus entries flagged
// as opening that are dated up to the period end.
func OpeningWhere(f Filter, allowed *PartySet) query.Where {
	return ledgerWhere(f, allowed).With(
		query.Or(
			query.Lt(ColPostingDate, f.FromDate),
			query.And(
				query.EqLiteral(query.IfNull(ColIsOpening, openingNo), openingYes),
				query.Lte(ColPostingDate, f.ToDate),
			),
		),
	)
}

// PeriodWhere selects non-opening entries dated inside [from, to].
func PeriodWhere(f Filter, allowed *PartySet) query.Where {
	return ledgerWhere(f, allowed).With(
		query.Gte(ColPostingDate, f.FromDate),
		query.Lte(ColPostingDate, f.ToDate),
		query.EqLiteral(query.IfNull(ColIsOpening, openingNo), openingNo),
	)
}

func ledgerWhere(f Filter, allowed *PartySet) query.Where {
	where := query.Where{
		query.Eq(ColCompany, f.Company),
		query.Eq(ColIsCancelled, false),
		query.Eq(query.IfNull(ColPartyType, ""), string(f.PartyType)),
		query.Ne(query.IfNull(ColParty, ""), ""),
	}
	if f.Account != "" {
		where = where.With(query.Eq(ColAccount, f.Account))
	}
	if allowed.Len() > 0 {
		where = where.With(query.In(ColParty, allowed.Names()))
	}
	return where
}
