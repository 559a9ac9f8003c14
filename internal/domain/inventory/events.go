package inventory

import (
	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/shared"
)

// AggregateTypeStock is the aggregate type of stock events
const AggregateTypeStock = "Stock"

// Event type constants
const (
	EventTypeStockReceived        = "StockReceived"
	EventTypeStockSupplierChanged = "StockSupplierChanged"
	EventTypeStockFinalized       = "StockFinalized"
	EventTypeStockItemsRemoved    = "StockItemsRemoved"
	EventTypeStockDeleted         = "StockDeleted"
)

// StockReceivedEvent is raised when a stock intake is recorded
type StockReceivedEvent struct {
	shared.BaseDomainEvent
	SupplierID uuid.UUID `json:"supplier_id"`
	ItemCount  int       `json:"item_count"`
}

// NewStockReceivedEvent creates a new StockReceivedEvent
func NewStockReceivedEvent(s *Stock, itemCount int) *StockReceivedEvent {
	return &StockReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReceived, AggregateTypeStock, s.ID),
		SupplierID:      s.SupplierID,
		ItemCount:       itemCount,
	}
}

// StockSupplierChangedEvent is raised when a stock is reassigned to another supplier
type StockSupplierChangedEvent struct {
	shared.BaseDomainEvent
	PreviousSupplierID uuid.UUID `json:"previous_supplier_id"`
	SupplierID         uuid.UUID `json:"supplier_id"`
}

// NewStockSupplierChangedEvent creates a new StockSupplierChangedEvent
func NewStockSupplierChangedEvent(s *Stock, previous uuid.UUID) *StockSupplierChangedEvent {
	return &StockSupplierChangedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeStockSupplierChanged, AggregateTypeStock, s.ID),
		PreviousSupplierID: previous,
		SupplierID:         s.SupplierID,
	}
}

// StockFinalizedEvent is raised when a stock is closed for changes
type StockFinalizedEvent struct {
	shared.BaseDomainEvent
	SupplierID uuid.UUID `json:"supplier_id"`
}

// NewStockFinalizedEvent creates a new StockFinalizedEvent
func NewStockFinalizedEvent(s *Stock) *StockFinalizedEvent {
	return &StockFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockFinalized, AggregateTypeStock, s.ID),
		SupplierID:      s.SupplierID,
	}
}

// StockItemsRemovedEvent is raised when line items are removed from a stock
type StockItemsRemovedEvent struct {
	shared.BaseDomainEvent
	ProductIDs []uuid.UUID `json:"product_ids"`
}

// NewStockItemsRemovedEvent creates a new StockItemsRemovedEvent
func NewStockItemsRemovedEvent(stockID uuid.UUID, productIDs []uuid.UUID) *StockItemsRemovedEvent {
	return &StockItemsRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockItemsRemoved, AggregateTypeStock, stockID),
		ProductIDs:      productIDs,
	}
}

// StockDeletedEvent is raised when a stock and its line items are deleted
type StockDeletedEvent struct {
	shared.BaseDomainEvent
	SupplierID uuid.UUID `json:"supplier_id"`
}

// NewStockDeletedEvent creates a new StockDeletedEvent
func NewStockDeletedEvent(s *Stock) *StockDeletedEvent {
	return &StockDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDeleted, AggregateTypeStock, s.ID),
		SupplierID:      s.SupplierID,
	}
}
