package partytb

import "github.com/shopspring/decimal"

// Normalize converts a debit/credit pair into a one-sided net value. A
// balanced pair resolves through the credit branch to (0, 0).
func Normalize(debit, credit decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if debit.GreaterThan(credit) {
		return debit.Sub(credit), decimal.Zero
	}
	return decimal.Zero, credit.Sub(debit)
}
