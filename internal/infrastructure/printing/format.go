package printing

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultCurrency is the currency prefix printed before amounts
const DefaultCurrency = "Rs."

// Formatter renders numbers, amounts and dates for reports
type Formatter struct {
	printer  *message.Printer
	currency string
}

// NewFormatter creates a Formatter using English digit grouping.
// An empty currency falls back to DefaultCurrency.
func NewFormatter(currency string) *Formatter {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Formatter{
		printer:  message.NewPrinter(language.English),
		currency: currency,
	}
}

// Money formats an amount with the currency prefix and two decimals, e.g. "Rs. 1,500.00"
func (f *Formatter) Money(d decimal.Decimal) string {
	return f.currency + " " + f.Decimal(d)
}

// Decimal formats an amount with two decimals and thousand separators
func (f *Formatter) Decimal(d decimal.Decimal) string {
	return f.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}

// Int formats a count with thousand separators
func (f *Formatter) Int(n int64) string {
	return f.printer.Sprint(number.Decimal(n))
}

// Date formats a calendar date
func (f *Formatter) Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02")
}

// Timestamp formats a point in time for "Generated on" lines
func (f *Formatter) Timestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}
