// Package postgres serves the party trial balance from PostgreSQL.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/partytb/internal/partytb"
	"github.com/odyssey-erp/partytb/internal/platform/query"
)

//go:embed schema.sql
var schema string

// Store implements the ledger and master-data ports over a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// New constructs a Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates missing tables and indexes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("store/postgres: ensure schema: %w", err)
	}
	return nil
}

func sumStatement(where query.Where) (string, []any) {
	clause, args := where.Render(query.Postgres)
	return fmt.Sprintf(`SELECT party, COALESCE(SUM(debit), 0)::text, COALESCE(SUM(credit), 0)::text
FROM gl_entries
WHERE %s
GROUP BY party
ORDER BY party`, clause), args
}

func listStatement(partyType partytb.PartyType, where query.Where) (string, []any) {
	clause, args := where.Render(query.Postgres)
	return fmt.Sprintf(`SELECT name, COALESCE(%s, '') FROM %s WHERE %s ORDER BY name`,
		partyType.DisplayNameField(), partyType.Table(), clause), args
}

func matchStatement(where query.Where) (string, []any) {
	clause, args := where.Render(query.Postgres)
	return fmt.Sprintf(`SELECT c.name FROM customers c WHERE %s ORDER BY c.name`, clause), args
}

// SumByParty aggregates debit and credit per party. NUMERIC sums travel as
// text to keep full precision.
func (s *Store) SumByParty(ctx context.Context, where query.Where) ([]partytb.PartySum, error) {
	stmt, args := sumStatement(where)
	rows, err := s.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("store/postgres: sum by party: %w", err)
	}
	defer rows.Close()

	var out []partytb.PartySum
	for rows.Next() {
		var sum partytb.PartySum
		if err := rows.Scan(&sum.Party, &sum.Debit, &sum.Credit); err != nil {
			return nil, fmt.Errorf("store/postgres: scan party sum: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// ListParties returns master-data parties of the type in name order.
func (s *Store) ListParties(ctx context.Context, partyType partytb.PartyType, where query.Where) ([]partytb.Party, error) {
	stmt, args := listStatement(partyType, where)
	rows, err := s.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("store/postgres: list %s: %w", partyType.Table(), err)
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
	stmt, args := matchStatement(where)
	rows, err := s.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("store/postgres: match customers: %w", err)
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
	err := s.pool.QueryRow(ctx, `SELECT default_currency FROM companies WHERE name = $1`, company).Scan(&currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", partytb.ErrCompanyNotFound, company)
	}
	if err != nil {
		return "", fmt.Errorf("store/postgres: company currency: %w", err)
	}
	return currency, nil
}

// PartyNamingBy returns the naming setting for the party type, or an empty
// string when none is configured.
func (s *Store) PartyNamingBy(ctx context.Context, partyType partytb.PartyType) (string, error) {
	var naming string
	err := s.pool.QueryRow(ctx, `SELECT naming_by FROM party_naming WHERE party_type = $1`, string(partyType)).Scan(&naming)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("store/postgres: party naming: %w", err)
	}
	return naming, nil
}
