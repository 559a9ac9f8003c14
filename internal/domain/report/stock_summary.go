package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/inventory"
)

// Fallback labels for references that no longer resolve
const (
	UnknownProduct     = "Unknown"
	NoDescription      = "No Description"
	UnknownSupplier    = "Unknown Supplier"
	UnknownProductName = "Unknown Product"
)

// LineRow is one line item as shown in a report
type LineRow struct {
	LineItemID      uuid.UUID
	ProductID       uuid.UUID
	ProductName     string
	Description     string
	Quantity        int
	UnitPrice       decimal.Decimal
	Total           decimal.Decimal
	ManufactureDate time.Time
	ExpirationDate  time.Time
	LowStock        bool
}

// LowStockRow is a line item below the low-stock threshold
type LowStockRow struct {
	LineRow
	DaysToExpiry int
	Urgency      Urgency
}

// StockSummary is the whole-inventory overview report
type StockSummary struct {
	GeneratedAt    time.Time
	TotalValue     decimal.Decimal
	UniqueProducts int
	TotalQuantity  int64
	Items          []LineRow
	LowStock       []LowStockRow
}

// BuildStockSummary aggregates all line items into a stock summary.
// Products missing from products are shown with fallback labels.
func BuildStockSummary(items []inventory.LineItem, products map[uuid.UUID]catalog.Product, now time.Time) StockSummary {
	totals := inventory.Totals(items)
	summary := StockSummary{
		GeneratedAt:   now,
		TotalValue:    totals.Value,
		TotalQuantity: totals.Quantity,
		Items:         make([]LineRow, 0, len(items)),
		LowStock:      make([]LowStockRow, 0),
	}

	unique := make(map[uuid.UUID]struct{})
	for i := range items {
		row := newLineRow(&items[i], products, UnknownProduct)
		unique[row.ProductID] = struct{}{}
		summary.Items = append(summary.Items, row)

		if row.LowStock {
			days := DaysToExpiry(row.ExpirationDate, now)
			summary.LowStock = append(summary.LowStock, LowStockRow{
				LineRow:      row,
				DaysToExpiry: days,
				Urgency:      UrgencyFor(days),
			})
		}
	}
	summary.UniqueProducts = len(unique)

	return summary
}

func newLineRow(item *inventory.LineItem, products map[uuid.UUID]catalog.Product, unknown string) LineRow {
	row := LineRow{
		LineItemID:      item.ID,
		ProductID:       item.ProductID,
		ProductName:     unknown,
		Description:     NoDescription,
		Quantity:        item.Quantity,
		UnitPrice:       item.Price,
		Total:           item.Total(),
		ManufactureDate: item.ManufactureDate,
		ExpirationDate:  item.ExpirationDate,
		LowStock:        item.IsLowStock(),
	}
	if p, ok := products[item.ProductID]; ok {
		row.ProductName = p.Name
		if p.Description != "" {
			row.Description = p.Description
		}
	}
	return row
}
