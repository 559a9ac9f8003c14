package inventory

import "github.com/shopspring/decimal"

// LowStockThreshold is the quantity below which a line item counts as low stock
const LowStockThreshold = 20

// IsLowStock reports whether quantity is below LowStockThreshold
func IsLowStock(quantity int) bool {
	return quantity < LowStockThreshold
}

// StockTotals is the derived value and quantity of a set of line items
type StockTotals struct {
	Value    decimal.Decimal
	Quantity int64
}

// Totals computes Σ(price × quantity) and Σ(quantity) over items.
// It is the single source for stock totals in read views and reports.
func Totals(items []LineItem) StockTotals {
	totals := StockTotals{Value: decimal.Zero}
	for i := range items {
		totals.Value = totals.Value.Add(items[i].Total())
		totals.Quantity += int64(items[i].Quantity)
	}
	return totals
}
