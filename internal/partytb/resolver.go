package partytb

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/partytb/internal/platform/query"
)

// Resolver determines which parties a report may include.
type Resolver struct {
	directory PartyDirectory
}

// NewResolver constructs a Resolver.
func NewResolver(directory PartyDirectory) *Resolver {
	return &Resolver{directory: directory}
}

// Resolve returns nil when the report is unrestricted, otherwise the set of
// allowed parties, which may be empty. Only customers can be restricted.
func (r *Resolver) Resolve(ctx context.Context, f Filter) (*PartySet, error) {
	if f.PartyType != PartyCustomer {
		return nil, nil
	}
	where := CustomerRestriction(f)
	if len(where) == 0 {
		return nil, nil
	}
	names, err := r.directory.MatchCustomers(ctx, where)
	if err != nil {
		return nil, fmt.Errorf("partytb: match customers: %w", err)
	}
	return NewPartySet(names...), nil
}

// CustomerRestriction builds the territory and sales-team predicates over
// the customers table aliased as "c".
func CustomerRestriction(f Filter) query.Where {
	var where query.Where
	if f.Territory != "" {
		where = where.With(query.Eq(CustomerAlias+".territory", f.Territory))
	}
	if f.SalesPerson != "" {
		where = where.With(query.Exists(SalesTeamRelation,
			query.ColumnEq("st.parent", CustomerAlias+"."+ColPartyName),
			query.EqLiteral("st.parenttype", string(PartyCustomer)),
			query.Eq("st.sales_person", f.SalesPerson),
		))
	}
	return where
}

// PartyListWhere restricts the party listing to the single requested party
// and to the allowed set. Both apply together: a requested party outside the
// allowed set lists nothing.
func PartyListWhere(f Filter, allowed *PartySet) query.Where {
	var where query.Where
	if f.Party != "" {
		where = where.With(query.Eq(ColPartyName, f.Party))
		if allowed.Contains(f.Party) {
			return where
		}
	}
	if allowed.Restricted() {
		where = where.With(query.In(ColPartyName, allowed.Names()))
	}
	return where
}
