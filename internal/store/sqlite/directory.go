package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/odyssey-erp/partytb/internal/partytb"
	"github.com/odyssey-erp/partytb/internal/platform/query"
)

// ListParties returns master-data parties of the type in name order.
func (s *Store) ListParties(ctx context.Context, partyType partytb.PartyType, where query.Where) ([]partytb.Party, error) {
	clause, args := where.Render(query.SQLite)
	stmt := fmt.Sprintf(`SELECT name, COALESCE(%s, '') FROM %s WHERE %s ORDER BY name`,
		partyType.DisplayNameField(), partyType.Table(), clause)

	rows, err := s.reader.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("store/sqlite: list %s: %w", partyType.Table(), err)
	}
	defer rows.Close()

	var out []partytb.Party
	for rows.Next() {
		var p partytb.Party
		if err := rows.Scan(&p.Name, &p.DisplayName); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MatchCustomers returns customer names satisfying predicates over the
// customers table aliased as c.
func (s *Store) MatchCustomers(ctx context.Context, where query.Where) ([]string, error) {
	clause, args := where.Render(query.SQLite)
	stmt := fmt.Sprintf(`SELECT c.name FROM customers c WHERE %s ORDER BY c.name`, clause)

	rows, err := s.reader.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("store/sqlite: match customers: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DefaultCurrency returns the company's functional currency.
func (s *Store) DefaultCurrency(ctx context.Context, company string) (string, error) {
	var currency string
	err := s.reader.QueryRowContext(ctx,
		`SELECT default_currency FROM companies WHERE name = ?`, company,
	).Scan(&currency)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", partytb.ErrCompanyNotFound, company)
	}
	if err != nil {
		return "", fmt.Errorf("store/sqlite: company currency: %w", err)
	}
	return currency, nil
}

// PartyNamingBy returns the naming setting for the party type, or an empty
// string when none is configured.
func (s *Store) PartyNamingBy(ctx context.Context, partyType partytb.PartyType) (string, error) {
	var naming string
	err := s.reader.QueryRowContext(ctx,
		`SELECT naming_by FROM party_naming WHERE party_type = ?`, string(partyType),
	).Scan(&naming)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("store/sqlite: party naming: %w", err)
	}
	return naming, nil
}
