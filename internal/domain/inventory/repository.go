package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/shared"
)

// StockQuery narrows a stock listing
type StockQuery struct {
	shared.Filter
	SupplierID *uuid.UUID
	Status     StockStatus
}

// StockRepository defines the interface for stock and line item persistence
type StockRepository interface {
	// FindByID finds a stock by its ID, without line items
	FindByID(ctx context.Context, id uuid.UUID) (*Stock, error)

	// FindByIDs finds multiple stocks by their IDs. Unknown IDs are skipped.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Stock, error)

	// FindAll finds stocks matching the query
	FindAll(ctx context.Context, query StockQuery) ([]Stock, error)

	// Count counts stocks matching the query
	Count(ctx context.Context, query StockQuery) (int64, error)

	// Save creates or updates a stock
	Save(ctx context.Context, stock *Stock) error

	// Delete deletes a stock with its line items and their selling prices
	Delete(ctx context.Context, id uuid.UUID) error

	// ItemsFor returns the line items of each of the given stocks, selling prices included
	ItemsFor(ctx context.Context, stockIDs []uuid.UUID) (map[uuid.UUID][]LineItem, error)

	// FindItem finds a line item by ID within a stock
	FindItem(ctx context.Context, stockID, itemID uuid.UUID) (*LineItem, error)

	// FindItemsByProduct finds the line items of a stock that reference productID
	FindItemsByProduct(ctx context.Context, stockID, productID uuid.UUID) ([]LineItem, error)

	// SaveItem creates or updates a line item and upserts its selling price when set
	SaveItem(ctx context.Context, item *LineItem) error

	// DeleteItems deletes line items and their selling prices
	DeleteItems(ctx context.Context, itemIDs []uuid.UUID) error

	// AllItems returns every line item, selling prices included
	AllItems(ctx context.Context) ([]LineItem, error)

	// CountItemsByProduct counts line items that reference productID
	CountItemsByProduct(ctx context.Context, productID uuid.UUID) (int64, error)

	// CountBySupplier counts stocks that reference supplierID
	CountBySupplier(ctx context.Context, supplierID uuid.UUID) (int64, error)
}
