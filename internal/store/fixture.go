// Package store holds the data shapes shared by the ledger and master-data
// backends, plus the demo dataset used for local seeding.
package store

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/partytb/internal/partytb"
)

// Company is a reporting entity with its functional currency.
type Company struct {
	Name            string
	DefaultCurrency string
}

// PartyRecord is one master-data row. Territory only applies to customers.
type PartyRecord struct {
	Type        partytb.PartyType
	Name        string
	DisplayName string
	Territory   string
}

// SalesAssignment links a customer to a member of its sales team.
type SalesAssignment struct {
	Customer    string
	SalesPerson string
}

// Entry is one general ledger line.
type Entry struct {
	Company     string
	PartyType   partytb.PartyType
	Party       string
	Account     string
	PostingDate time.Time
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	IsOpening   bool
	IsCancelled bool
}

// OpeningFlag renders the is_opening column value.
func (e Entry) OpeningFlag() string {
	if e.IsOpening {
		return "Yes"
	}
	return "No"
}

// Fixture is a complete dataset loaded in one transaction.
type Fixture struct {
	Companies []Company
	Parties   []PartyRecord
	SalesTeam []SalesAssignment
	Naming    map[partytb.PartyType]string
	Entries   []Entry
}

func day(raw string) time.Time {
	t, err := partytb.ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return t
}

func amount(raw string) decimal.Decimal {
	return decimal.RequireFromString(raw)
}

// Demo returns a small multi-party dataset for local runs.
func Demo() Fixture {
	const company = "Odyssey Trading"
	return Fixture{
		Companies: []Company{{Name: company, DefaultCurrency: "USD"}},
		Parties: []PartyRecord{
			{Type: partytb.PartyCustomer, Name: "CUST-0001", DisplayName: "Alpha Retail", Territory: "North"},
			{Type: partytb.PartyCustomer, Name: "CUST-0002", DisplayName: "Beta Foods", Territory: "South"},
			{Type: partytb.PartyCustomer, Name: "CUST-0003", DisplayName: "Gamma Stores", Territory: "North"},
			{Type: partytb.PartySupplier, Name: "SUPP-0001", DisplayName: "Delta Packaging"},
			{Type: partytb.PartySupplier, Name: "SUPP-0002", DisplayName: "Epsilon Logistics"},
			{Type: partytb.PartyEmployee, Name: "EMP-0001", DisplayName: "Dana Putri"},
		},
		SalesTeam: []SalesAssignment{
			{Customer: "CUST-0001", SalesPerson: "Ravi"},
			{Customer: "CUST-0002", SalesPerson: "Ravi"},
			{Customer: "CUST-0003", SalesPerson: "Mei"},
		},
		Naming: map[partytb.PartyType]string{
			partytb.PartyCustomer: partytb.NamingSeries,
			partytb.PartySupplier: "Supplier Name",
		},
		Entries: []Entry{
			{Company: company, PartyType: partytb.PartyCustomer, Party: "CUST-0001", Account: "Debtors", PostingDate: day("2025-03-15"), Debit: amount("1200"), Credit: decimal.Zero},
			{Company: company, PartyType: partytb.PartyCustomer, Party: "CUST-0001", Account: "Debtors", PostingDate: day("2025-04-10"), Debit: decimal.Zero, Credit: amount("700")},
			{Company: company, PartyType: partytb.PartyCustomer, Party: "CUST-0002", Account: "Debtors", PostingDate: day("2025-04-05"), Debit: amount("450.50"), Credit: decimal.Zero},
			{Company: company, PartyType: partytb.PartyCustomer, Party: "CUST-0002", Account: "Debtors", PostingDate: day("2025-04-01"), Debit: amount("300"), Credit: decimal.Zero, IsOpening: true},
			{Company: company, PartyType: partytb.PartyCustomer, Party: "CUST-0003", Account: "Debtors", PostingDate: day("2025-04-20"), Debit: amount("99"), Credit: decimal.Zero, IsCancelled: true},
			{Company: company, PartyType: partytb.PartySupplier, Party: "SUPP-0001", Account: "Creditors", PostingDate: day("2025-02-01"), Debit: decimal.Zero, Credit: amount("5000")},
			{Company: company, PartyType: partytb.PartySupplier, Party: "SUPP-0001", Account: "Creditors", PostingDate: day("2025-04-12"), Debit: amount("2000"), Credit: decimal.Zero},
			{Company: company, PartyType: partytb.PartyEmployee, Party: "EMP-0001", Account: "Employee Advances", PostingDate: day("2025-04-02"), Debit: amount("150"), Credit: amount("150")},
		},
	}
}
