package partytb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/partytb/internal/platform/query"
)

func periodFilter() Filter {
	return Filter{
		Company:   "ACME",
		PartyType: PartyCustomer,
		FromDate:  time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		ToDate:    time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
	}
}

func TestOpeningWhere(t *testing.T) {
	f := periodFilter()
	f.Account = "Debtors"
	clause, args := OpeningWhere(f, NewPartySet("C1")).Render(query.Postgres)
	require.Equal(t,
		"company = $1 AND is_cancelled = $2 AND COALESCE(party_type, '') = $3 AND COALESCE(party, '') <> $4 AND "+
			"account = $5 AND party IN ($6) AND "+
			"(posting_date < $7 OR (COALESCE(is_opening, 'No') = 'Yes' AND posting_date <= $8))",
		clause)
	require.Equal(t, []any{"ACME", false, "Customer", "", "Debtors", "C1", f.FromDate, f.ToDate}, args)
}

func TestPeriodWhere(t *testing.T) {
	f := periodFilter()
	clause, args := PeriodWhere(f, nil).Render(query.Postgres)
	require.Equal(t,
		"company = $1 AND is_cancelled = $2 AND COALESCE(party_type, '') = $3 AND COALESCE(party, '') <> $4 AND "+
			"posting_date >= $5 AND posting_date <= $6 AND COALESCE(is_opening, 'No') = 'No'",
		clause)
	require.Equal(t, []any{"ACME", false, "Customer", "", f.FromDate, f.ToDate}, args)
}

func TestAggregateNormalizesOpeningOnly(t *testing.T) {
	ledger := &fakeLedger{
		opening: []PartySum{
			{Party: "C1", Debit: dec("300"), Credit: dec("100")},
			{Party: "C2", Debit: dec("10"), Credit: dec("60")},
		},
		period: []PartySum{
			{Party: "C1", Debit: dec("50"), Credit: dec("20")},
		},
	}
	opening, period, err := NewAggregator(ledger).Aggregate(context.Background(), periodFilter(), nil)
	require.NoError(t, err)
	require.Len(t, ledger.clauses, 2)

	require.True(t, opening.Get("C1").Debit.Equal(dec("200")))
	require.True(t, opening.Get("C1").Credit.IsZero())
	require.True(t, opening.Get("C2").Debit.IsZero())
	require.True(t, opening.Get("C2").Credit.Equal(dec("50")))

	require.True(t, period.Get("C1").Debit.Equal(dec("50")))
	require.True(t, period.Get("C1").Credit.Equal(dec("20")))
	require.True(t, period.Get("missing").Debit.IsZero())
}

func TestAggregatePropagatesErrors(t *testing.T) {
	boom := errors.New("query timeout")
	_, _, err := NewAggregator(&fakeLedger{periodErr: boom}).Aggregate(context.Background(), periodFilter(), nil)
	require.ErrorIs(t, err, boom)

	_, _, err = NewAggregator(&fakeLedger{openingErr: boom}).Aggregate(context.Background(), periodFilter(), nil)
	require.ErrorIs(t, err, boom)
}
