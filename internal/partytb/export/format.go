package export

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// AmountFormatter renders amounts with locale grouping for human output.
type AmountFormatter struct {
	printer *message.Printer
}

// NewAmountFormatter builds a formatter for the locale.
func NewAmountFormatter(tag language.Tag) AmountFormatter {
	return AmountFormatter{printer: message.NewPrinter(tag)}
}

// Format prints d with two fraction digits. Zero renders as an empty string
// to keep tables readable.
func (f AmountFormatter) Format(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return f.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}
