package masterdata

import (
	"context"

	"github.com/odyssey-erp/partytb/internal/partytb"
)

// Source is the authoritative store behind the cache.
type Source interface {
	partytb.CompanyLookup
	partytb.NamingLookup
}

// Lookup serves company currency and party naming settings through the
// cache. Ledger balances are never cached here.
type Lookup struct {
	source Source
	cache  *Cache
}

// NewLookup wraps source with cache. A nil cache passes straight through.
func NewLookup(source Source, cache *Cache) *Lookup {
	return &Lookup{source: source, cache: cache}
}

// DefaultCurrency implements partytb.CompanyLookup.
func (l *Lookup) DefaultCurrency(ctx context.Context, company string) (string, error) {
	key, err := l.cache.BuildKey(ctx, "currency", company)
	if err != nil {
		return "", err
	}
	var currency string
	err = l.cache.FetchJSON(ctx, key, &currency, func(ctx context.Context) (any, error) {
		return l.source.DefaultCurrency(ctx, company)
	})
	return currency, err
}

// PartyNamingBy implements partytb.NamingLookup.
func (l *Lookup) PartyNamingBy(ctx context.Context, partyType partytb.PartyType) (string, error) {
	key, err := l.cache.BuildKey(ctx, "naming", string(partyType))
	if err != nil {
		return "", err
	}
	var naming string
	err = l.cache.FetchJSON(ctx, key, &naming, func(ctx context.Context) (any, error) {
		return l.source.PartyNamingBy(ctx, partyType)
	})
	return naming, err
}

// Invalidate drops every cached entry.
func (l *Lookup) Invalidate(ctx context.Context) error {
	return l.cache.Bump(ctx)
}
