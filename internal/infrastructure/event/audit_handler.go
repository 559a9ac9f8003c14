package event

import (
	"context"

	"github.com/stockroom/backend/internal/domain/inventory"
	"github.com/stockroom/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StockAuditHandler writes an audit log line for every stock ledger change
type StockAuditHandler struct {
	logger *zap.Logger
}

// NewStockAuditHandler creates a StockAuditHandler
func NewStockAuditHandler(logger *zap.Logger) *StockAuditHandler {
	return &StockAuditHandler{logger: logger.Named("audit")}
}

// EventTypes returns the stock event types
func (h *StockAuditHandler) EventTypes() []string {
	return []string{
		inventory.EventTypeStockReceived,
		inventory.EventTypeStockSupplierChanged,
		inventory.EventTypeStockFinalized,
		inventory.EventTypeStockItemsRemoved,
		inventory.EventTypeStockDeleted,
	}
}

// Handle logs the event with its payload fields
func (h *StockAuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("stock_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case *inventory.StockReceivedEvent:
		fields = append(fields, zap.String("supplier_id", e.SupplierID.String()), zap.Int("item_count", e.ItemCount))
	case *inventory.StockSupplierChangedEvent:
		fields = append(fields,
			zap.String("previous_supplier_id", e.PreviousSupplierID.String()),
			zap.String("supplier_id", e.SupplierID.String()),
		)
	case *inventory.StockItemsRemovedEvent:
		ids := make([]string, len(e.ProductIDs))
		for i, id := range e.ProductIDs {
			ids[i] = id.String()
		}
		fields = append(fields, zap.Strings("product_ids", ids))
	}

	h.logger.Info("Stock ledger changed", fields...)
	return nil
}
