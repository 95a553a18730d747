package partytb

import "github.com/shopspring/decimal"

// RowInput carries everything the row builder joins.
type RowInput struct {
	Parties        []Party
	ShowPartyName  bool
	Opening        Balances
	Period         Balances
	Currency       string
	ShowZeroValues bool
}

// BuildRows produces one row per party with activity (or every party when
// zero values are requested) followed by the totals row. Totals include
// suppressed parties.
func BuildRows(in RowInput) []Row {
	rows := make([]Row, 0, len(in.Parties)+1)
	total := Row{
		Party:         TotalsLabel,
		OpeningDebit:  decimal.Zero,
		OpeningCredit: decimal.Zero,
		Debit:         decimal.Zero,
		Credit:        decimal.Zero,
		ClosingDebit:  decimal.Zero,
		ClosingCredit: decimal.Zero,
		Currency:      in.Currency,
		IsTotal:       true,
	}
	for _, party := range in.Parties {
		opening := in.Opening.Get(party.Name)
		period := in.Period.Get(party.Name)
		closingDebit, closingCredit := Normalize(
			opening.Debit.Add(period.Debit),
			opening.Credit.Add(period.Credit),
		)
		row := Row{
			Party:         party.Name,
			OpeningDebit:  opening.Debit,
			OpeningCredit: opening.Credit,
			Debit:         period.Debit,
			Credit:        period.Credit,
			ClosingDebit:  closingDebit,
			ClosingCredit: closingCredit,
			Currency:      in.Currency,
		}
		if in.ShowPartyName {
			row.PartyName = party.DisplayName
		}
		total.add(row)
		if in.ShowZeroValues || row.HasActivity() {
			rows = append(rows, row)
		}
	}
	return append(rows, total)
}
