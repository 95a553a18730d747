package partytb

import (
	"context"
	"fmt"
)

// NamingSeries is the naming method under which party identifiers are
// generated codes, so the human readable name must be shown alongside.
const NamingSeries = "Naming Series"

// PartyNameVisible decides whether the party name column is shown. Customers
// and suppliers depend on the selling/buying naming setting; every other
// party type always shows names.
func PartyNameVisible(ctx context.Context, naming NamingLookup, partyType PartyType) (bool, error) {
	switch partyType {
	case PartyCustomer, PartySupplier:
		by, err := naming.PartyNamingBy(ctx, partyType)
		if err != nil {
			return false, fmt.Errorf("partytb: naming setting: %w", err)
		}
		return by == NamingSeries, nil
	default:
		return true, nil
	}
}
