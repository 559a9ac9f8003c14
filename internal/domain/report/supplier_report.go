package report

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/inventory"
	"github.com/stockroom/backend/internal/domain/partner"
)

// StockSection is one stock intake within a supplier section
type StockSection struct {
	StockID       uuid.UUID
	Status        inventory.StockStatus
	CreatedAt     time.Time
	TotalValue    decimal.Decimal
	TotalQuantity int64
	Items         []LineRow
}

// SupplierSection groups the stocks delivered by one supplier
type SupplierSection struct {
	SupplierID    uuid.UUID
	SupplierName  string
	StockCount    int
	TotalValue    decimal.Decimal
	TotalQuantity int64
	Stocks        []StockSection
}

// SupplierReport lists every supplier that has delivered stock
type SupplierReport struct {
	GeneratedAt time.Time
	Suppliers   []SupplierSection
}

// BuildSupplierReport groups stocks by supplier. Sections are ordered by
// supplier name and stocks within a section by creation time.
func BuildSupplierReport(
	stocks []inventory.Stock,
	items map[uuid.UUID][]inventory.LineItem,
	suppliers map[uuid.UUID]partner.Supplier,
	products map[uuid.UUID]catalog.Product,
	now time.Time,
) SupplierReport {
	sections := make(map[uuid.UUID]*SupplierSection)
	order := make([]uuid.UUID, 0)

	sorted := make([]inventory.Stock, len(stocks))
	copy(sorted, stocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	for i := range sorted {
		stock := &sorted[i]
		section, ok := sections[stock.SupplierID]
		if !ok {
			name := UnknownSupplier
			if s, found := suppliers[stock.SupplierID]; found {
				name = s.Name
			}
			section = &SupplierSection{
				SupplierID:   stock.SupplierID,
				SupplierName: name,
				TotalValue:   decimal.Zero,
			}
			sections[stock.SupplierID] = section
			order = append(order, stock.SupplierID)
		}

		lineItems := items[stock.ID]
		totals := inventory.Totals(lineItems)
		stockSection := StockSection{
			StockID:       stock.ID,
			Status:        stock.Status,
			CreatedAt:     stock.CreatedAt,
			TotalValue:    totals.Value,
			TotalQuantity: totals.Quantity,
			Items:         make([]LineRow, 0, len(lineItems)),
		}
		for j := range lineItems {
			stockSection.Items = append(stockSection.Items, newLineRow(&lineItems[j], products, UnknownProductName))
		}

		section.Stocks = append(section.Stocks, stockSection)
		section.StockCount++
		section.TotalValue = section.TotalValue.Add(totals.Value)
		section.TotalQuantity += totals.Quantity
	}

	result := SupplierReport{
		GeneratedAt: now,
		Suppliers:   make([]SupplierSection, 0, len(order)),
	}
	for _, id := range order {
		result.Suppliers = append(result.Suppliers, *sections[id])
	}
	sort.SliceStable(result.Suppliers, func(i, j int) bool {
		return strings.ToLower(result.Suppliers[i].SupplierName) < strings.ToLower(result.Suppliers[j].SupplierName)
	})

	return result
}
