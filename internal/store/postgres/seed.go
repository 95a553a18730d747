package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/odyssey-erp/partytb/internal/partytb"
	"github.com/odyssey-erp/partytb/internal/platform/db"
	"github.com/odyssey-erp/partytb/internal/store"
)

// Load writes the fixture in one transaction. Existing master rows are
// replaced; ledger entries are appended.
func (s *Store) Load(ctx context.Context, fx store.Fixture) error {
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, c := range fx.Companies {
			batch.Queue(`INSERT INTO companies (name, default_currency) VALUES ($1, $2)
				ON CONFLICT (name) DO UPDATE SET default_currency = EXCLUDED.default_currency`,
				c.Name, c.DefaultCurrency)
		}
		for pt, naming := range fx.Naming {
			batch.Queue(`INSERT INTO party_naming (party_type, naming_by) VALUES ($1, $2)
				ON CONFLICT (party_type) DO UPDATE SET naming_by = EXCLUDED.naming_by`,
				string(pt), naming)
		}
		for _, p := range fx.Parties {
			stmt, args := partyInsert(p)
			batch.Queue(stmt, args...)
		}
		for _, a := range fx.SalesTeam {
			batch.Queue(`INSERT INTO sales_team (parent, parenttype, sales_person) VALUES ($1, $2, $3)
				ON CONFLICT DO NOTHING`,
				a.Customer, string(partytb.PartyCustomer), a.SalesPerson)
		}
		for _, e := range fx.Entries {
			batch.Queue(`INSERT INTO gl_entries (company, party_type, party, account, posting_date, debit, credit, is_opening, is_cancelled)
				VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8, $9)`,
				e.Company, nullable(string(e.PartyType)), nullable(e.Party), e.Account,
				e.PostingDate, e.Debit.String(), e.Credit.String(), e.OpeningFlag(), e.IsCancelled)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("store/postgres: load fixture: %w", err)
	}
	return nil
}

func partyInsert(p store.PartyRecord) (string, []any) {
	switch p.Type {
	case partytb.PartyCustomer:
		return `INSERT INTO customers (name, customer_name, territory) VALUES ($1, $2, $3)
			ON CONFLICT (name) DO UPDATE SET customer_name = EXCLUDED.customer_name, territory = EXCLUDED.territory`,
			[]any{p.Name, p.DisplayName, nullable(p.Territory)}
	case partytb.PartyStudent:
		return `INSERT INTO students (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, []any{p.Name}
	default:
		field := p.Type.DisplayNameField()
		return fmt.Sprintf(`INSERT INTO %s (name, %s) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET %s = EXCLUDED.%s`, p.Type.Table(), field, field, field),
			[]any{p.Name, p.DisplayName}
	}
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
