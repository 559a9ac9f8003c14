package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/domain/inventory"
	"github.com/stockroom/backend/internal/domain/shared"
)

// LowStockCounter reports how many line items are currently below the
// low-stock threshold
type LowStockCounter interface {
	CountLowStockItems(ctx context.Context) (int64, error)
}

// StockMetrics counts stock ledger changes. It is an event handler on the
// domain event bus, and observes the low-stock line item count on collection.
type StockMetrics struct {
	logger *zap.Logger

	stocksReceived  *Counter
	itemsReceived   *Counter
	stocksFinalized *Counter
	itemsRemoved    *Counter
	ledgerEvents    *Counter
}

// NewStockMetrics registers the stock instruments on meter. lowStock may be nil.
func NewStockMetrics(meter metric.Meter, lowStock LowStockCounter, logger *zap.Logger) (*StockMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &StockMetrics{logger: logger}

	var err error
	if m.stocksReceived, err = NewCounter(meter, "stockroom_stock_received_total", "Stock intakes recorded", "{stocks}"); err != nil {
		return nil, err
	}
	if m.itemsReceived, err = NewCounter(meter, "stockroom_line_items_received_total", "Line items recorded on stock intake", "{items}"); err != nil {
		return nil, err
	}
	if m.stocksFinalized, err = NewCounter(meter, "stockroom_stock_finalized_total", "Stocks closed for changes", "{stocks}"); err != nil {
		return nil, err
	}
	if m.itemsRemoved, err = NewCounter(meter, "stockroom_products_removed_total", "Products removed from stocks", "{products}"); err != nil {
		return nil, err
	}
	if m.ledgerEvents, err = NewCounter(meter, "stockroom_ledger_events_total", "Stock ledger events by type", "{events}"); err != nil {
		return nil, err
	}

	if lowStock != nil {
		_, err = meter.Int64ObservableGauge(
			"stockroom_low_stock_items",
			metric.WithDescription("Line items below the low-stock threshold"),
			metric.WithUnit("{items}"),
			metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
				n, err := lowStock.CountLowStockItems(ctx)
				if err != nil {
					logger.Warn("Failed to count low stock items", zap.Error(err))
					return nil
				}
				o.Observe(n)
				return nil
			}),
		)
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// EventTypes returns the stock event types
func (m *StockMetrics) EventTypes() []string {
	return []string{
		inventory.EventTypeStockReceived,
		inventory.EventTypeStockSupplierChanged,
		inventory.EventTypeStockFinalized,
		inventory.EventTypeStockItemsRemoved,
		inventory.EventTypeStockDeleted,
	}
}

// Handle records the event
func (m *StockMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	m.ledgerEvents.Inc(ctx, AttrEventType.String(event.EventType()))

	switch e := event.(type) {
	case *inventory.StockReceivedEvent:
		m.stocksReceived.Inc(ctx)
		m.itemsReceived.Add(ctx, int64(e.ItemCount))
	case *inventory.StockFinalizedEvent:
		m.stocksFinalized.Inc(ctx)
	case *inventory.StockItemsRemovedEvent:
		m.itemsRemoved.Add(ctx, int64(len(e.ProductIDs)))
	}
	return nil
}
