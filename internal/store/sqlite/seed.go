package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/odyssey-erp/partytb/internal/partytb"
	"github.com/odyssey-erp/partytb/internal/store"
)

// Load writes the fixture in one transaction. Existing master rows are
// replaced; ledger entries are appended.
func (s *Store) Load(ctx context.Context, fx store.Fixture) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store/sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	if err := loadFixture(ctx, tx, fx); err != nil {
		return fmt.Errorf("store/sqlite: load fixture: %w", err)
	}
	return tx.Commit()
}

func loadFixture(ctx context.Context, tx *sql.Tx, fx store.Fixture) error {
	for _, c := range fx.Companies {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO companies (name, default_currency) VALUES (?, ?)`,
			c.Name, c.DefaultCurrency); err != nil {
			return err
		}
	}
	for pt, naming := range fx.Naming {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO party_naming (party_type, naming_by) VALUES (?, ?)`,
			string(pt), naming); err != nil {
			return err
		}
	}
	for _, p := range fx.Parties {
		if err := insertParty(ctx, tx, p); err != nil {
			return err
		}
	}
	for _, a := range fx.SalesTeam {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO sales_team (parent, parenttype, sales_person) VALUES (?, ?, ?)`,
			a.Customer, string(partytb.PartyCustomer), a.SalesPerson); err != nil {
			return err
		}
	}
	for _, e := range fx.Entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO gl_entries (company, party_type, party, account, posting_date, debit, credit, is_opening, is_cancelled)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.Company, nullable(string(e.PartyType)), nullable(e.Party), e.Account,
			e.PostingDate.Format(partytb.DateLayout), e.Debit.String(), e.Credit.String(),
			e.OpeningFlag(), e.IsCancelled); err != nil {
			return err
		}
	}
	return nil
}

func insertParty(ctx context.Context, tx *sql.Tx, p store.PartyRecord) error {
	switch p.Type {
	case partytb.PartyCustomer:
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO customers (name, customer_name, territory) VALUES (?, ?, ?)`,
			p.Name, p.DisplayName, nullable(p.Territory))
		return err
	case partytb.PartyStudent:
		_, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO students (name) VALUES (?)`, p.Name)
		return err
	default:
		stmt := fmt.Sprintf(`INSERT OR REPLACE INTO %s (name, %s) VALUES (?, ?)`,
			p.Type.Table(), p.Type.DisplayNameField())
		_, err := tx.ExecContext(ctx, stmt, p.Name, p.DisplayName)
		return err
	}
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
