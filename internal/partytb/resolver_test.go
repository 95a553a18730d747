package partytb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/partytb/internal/platform/query"
)

func TestResolveUnrestrictedForNonCustomers(t *testing.T) {
	dir := &fakeDirectory{matches: []string{"X"}}
	r := NewResolver(dir)
	for _, pt := range PartyTypes {
		if pt == PartyCustomer {
			continue
		}
		set, err := r.Resolve(context.Background(), Filter{PartyType: pt, Territory: "North", SalesPerson: "Ravi"})
		require.NoError(t, err)
		require.Nil(t, set, pt)
	}
	require.Zero(t, dir.matchCalls)
}

func TestResolveCustomerWithoutPredicates(t *testing.T) {
	dir := &fakeDirectory{}
	set, err := NewResolver(dir).Resolve(context.Background(), Filter{PartyType: PartyCustomer})
	require.NoError(t, err)
	require.Nil(t, set)
	require.False(t, set.Restricted())
	require.Zero(t, dir.matchCalls)
}

func TestResolveCustomerTerritoryAndSalesPerson(t *testing.T) {
	dir := &fakeDirectory{matches: []string{"C2", "C1", "C2"}}
	set, err := NewResolver(dir).Resolve(context.Background(), Filter{
		PartyType:   PartyCustomer,
		Territory:   "North",
		SalesPerson: "Ravi",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"C1", "C2"}, set.Names())

	clause, args := dir.matchedWhere.Render(query.Postgres)
	require.Equal(t, "c.territory = $1 AND EXISTS (SELECT 1 FROM sales_team st WHERE st.parent = c.name AND st.parenttype = 'Customer' AND st.sales_person = $2)", clause)
	require.Equal(t, []any{"North", "Ravi"}, args)
}

func TestResolveEmptyMatch(t *testing.T) {
	set, err := NewResolver(&fakeDirectory{}).Resolve(context.Background(), Filter{PartyType: PartyCustomer, Territory: "Nowhere"})
	require.NoError(t, err)
	require.True(t, set.Restricted())
	require.True(t, set.Empty())
}

func TestResolvePropagatesErrors(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := NewResolver(&fakeDirectory{matchErr: boom}).Resolve(context.Background(), Filter{PartyType: PartyCustomer, SalesPerson: "Ravi"})
	require.ErrorIs(t, err, boom)
}

func TestPartyListWhere(t *testing.T) {
	clause, args := PartyListWhere(Filter{Party: "C1"}, NewPartySet("C1", "C3")).Render(query.Postgres)
	require.Equal(t, "name = $1", clause)
	require.Equal(t, []any{"C1"}, args)

	clause, args = PartyListWhere(Filter{Party: "C9"}, NewPartySet("C1", "C3")).Render(query.Postgres)
	require.Equal(t, "name = $1 AND name IN ($2, $3)", clause)
	require.Equal(t, []any{"C9", "C1", "C3"}, args)

	clause, args = PartyListWhere(Filter{Party: "C9"}, nil).Render(query.Postgres)
	require.Equal(t, "name = $1", clause)
	require.Equal(t, []any{"C9"}, args)

	require.Empty(t, PartyListWhere(Filter{}, nil))
}
