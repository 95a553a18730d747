package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var version int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version < 1 {
		if err := migrateV1(ctx, tx); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}
	return tx.Commit()
}

func migrateV1(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS companies (
			name             TEXT PRIMARY KEY,
			default_currency TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS party_naming (
			party_type TEXT PRIMARY KEY,
			naming_by  TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS customers (
			name          TEXT PRIMARY KEY,
			customer_name TEXT,
			territory     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_customers_territory ON customers(territory)`,
		`CREATE TABLE IF NOT EXISTS sales_team (
			parent       TEXT NOT NULL,
			parenttype   TEXT NOT NULL,
			sales_person TEXT NOT NULL,
			PRIMARY KEY (parent, parenttype, sales_person)
		)`,
		`CREATE TABLE IF NOT EXISTS suppliers (name TEXT PRIMARY KEY, supplier_name TEXT)`,
		`CREATE TABLE IF NOT EXISTS employees (name TEXT PRIMARY KEY, employee_name TEXT)`,
		`CREATE TABLE IF NOT EXISTS members (name TEXT PRIMARY KEY, member_name TEXT)`,
		`CREATE TABLE IF NOT EXISTS shareholders (name TEXT PRIMARY KEY, title TEXT)`,
		`CREATE TABLE IF NOT EXISTS students (name TEXT PRIMARY KEY)`,

		`CREATE TABLE IF NOT EXISTS gl_entries (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			company      TEXT NOT NULL,
			party_type   TEXT,
			party        TEXT,
			account      TEXT NOT NULL,
			posting_date TEXT NOT NULL,
			debit        NUMERIC NOT NULL DEFAULT 0,
			credit       NUMERIC NOT NULL DEFAULT 0,
			is_opening   TEXT,
			is_cancelled INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_gl_entries_party ON gl_entries(company, party_type, party, posting_date)`,

		`INSERT INTO schema_version (version) VALUES (1)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
