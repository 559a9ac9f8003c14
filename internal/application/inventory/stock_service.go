package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/inventory"
	"github.com/stockroom/backend/internal/domain/partner"
	"github.com/stockroom/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultIdempotencyTTL is how long a stock intake idempotency key is remembered
const DefaultIdempotencyTTL = 24 * time.Hour

const idempotencyKeyPrefix = "stock:create:"

// StockService handles the stock ledger: intakes, their line items and
// the derived read view
type StockService struct {
	stockRepo      inventory.StockRepository
	refs           referenceChecker
	txManager      shared.TransactionManager
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
}

// NewStockService creates a new StockService
func NewStockService(
	stockRepo inventory.StockRepository,
	supplierRepo partner.SupplierRepository,
	productRepo catalog.ProductRepository,
	customerRepo partner.CustomerRepository,
	txManager shared.TransactionManager,
	logger *zap.Logger,
) *StockService {
	return &StockService{
		stockRepo: stockRepo,
		refs: referenceChecker{
			suppliers: supplierRepo,
			products:  productRepo,
			customers: customerRepo,
		},
		txManager:      txManager,
		logger:         logger,
		idempotencyTTL: DefaultIdempotencyTTL,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore enables Idempotency-Key handling on Create.
// A non-positive ttl keeps DefaultIdempotencyTTL.
func (s *StockService) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	s.idempotency = store
	if ttl > 0 {
		s.idempotencyTTL = ttl
	}
}

// Create records a stock intake with its line items and selling prices.
// The supplier, products and customers are resolved before anything is
// written, and every row is written in one transaction.
func (s *StockService) Create(ctx context.Context, in CreateStockInput) (*StockResponse, error) {
	if in.SupplierID == uuid.Nil {
		return nil, shared.NewValidationError("Supplier ID is required")
	}
	if len(in.Items) == 0 {
		return nil, shared.NewValidationError("At least one line item is required")
	}

	stock, err := inventory.NewStock(in.SupplierID)
	if err != nil {
		return nil, err
	}
	items, err := buildItems(stock.ID, in.Items)
	if err != nil {
		return nil, err
	}
	if err := s.refs.supplier(ctx, in.SupplierID); err != nil {
		return nil, err
	}
	if err := s.refs.lineItems(ctx, items); err != nil {
		return nil, err
	}

	release, err := s.claim(ctx, in.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	stock.Received(len(items))
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.stockRepo.Save(ctx, stock); err != nil {
			return err
		}
		return s.saveItems(ctx, items)
	})
	if err != nil {
		release()
		return nil, fmt.Errorf("create stock: %w", err)
	}

	s.publishDomainEvents(ctx, stock)
	resp := ToStockResponse(stock, items)
	return &resp, nil
}

// AddItems adds line items to an open stock
func (s *StockService) AddItems(ctx context.Context, stockID uuid.UUID, in AddItemsInput) (*StockResponse, error) {
	if len(in.Items) == 0 {
		return nil, shared.NewValidationError("At least one line item is required")
	}

	stock, err := s.find(ctx, stockID)
	if err != nil {
		return nil, err
	}
	if err := stock.EnsureOpen(); err != nil {
		return nil, err
	}
	items, err := buildItems(stock.ID, in.Items)
	if err != nil {
		return nil, err
	}
	if err := s.refs.lineItems(ctx, items); err != nil {
		return nil, err
	}

	stock.Received(len(items))
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.saveItems(ctx, items)
	})
	if err != nil {
		return nil, fmt.Errorf("add stock items: %w", err)
	}

	s.publishDomainEvents(ctx, stock)
	return s.view(ctx, stock)
}

// RemoveItems removes the line items of each product from an open stock.
// Products without a line item in the stock are reported per product and
// do not stop the others; in that case the result comes back together
// with a *shared.PartialFailureError.
func (s *StockService) RemoveItems(ctx context.Context, stockID uuid.UUID, productIDs []string) (*RemovalResult, error) {
	if len(productIDs) == 0 {
		return nil, shared.NewValidationError("At least one product ID is required")
	}

	stock, err := s.find(ctx, stockID)
	if err != nil {
		return nil, err
	}
	if err := stock.EnsureOpen(); err != nil {
		return nil, err
	}

	result := &RemovalResult{RemovedProductIDs: []string{}, Errors: []string{}}
	var removed []uuid.UUID
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, raw := range productIDs {
			productID, err := uuid.Parse(strings.TrimSpace(raw))
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Invalid product ID %q", raw))
				continue
			}

			items, err := s.stockRepo.FindItemsByProduct(ctx, stockID, productID)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				result.Errors = append(result.Errors, fmt.Sprintf("Product with ID %s not found in this stock", productID))
				continue
			}

			ids := make([]uuid.UUID, len(items))
			for i := range items {
				ids[i] = items[i].ID
			}
			if err := s.stockRepo.DeleteItems(ctx, ids); err != nil {
				return err
			}
			removed = append(removed, productID)
			result.RemovedProductIDs = append(result.RemovedProductIDs, productID.String())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("remove stock items: %w", err)
	}

	if len(removed) > 0 {
		s.publish(ctx, inventory.NewStockItemsRemovedEvent(stockID, removed))
	}
	if len(result.Errors) > 0 {
		return result, shared.NewPartialFailureError("Some products could not be removed", result.RemovedProductIDs, result.Errors)
	}
	return result, nil
}

// Update optionally reassigns the supplier and patches line items of an
// open stock. Every patched line item must belong to the stock.
func (s *StockService) Update(ctx context.Context, stockID uuid.UUID, in UpdateStockInput) (*StockResponse, error) {
	stock, err := s.find(ctx, stockID)
	if err != nil {
		return nil, err
	}
	if in.SupplierID == nil && len(in.Items) == 0 {
		return s.view(ctx, stock)
	}
	if err := stock.EnsureOpen(); err != nil {
		return nil, err
	}

	patches := make([]inventory.LineItemPatch, len(in.Items))
	var customerIDs []uuid.UUID
	for i, u := range in.Items {
		if u.ID == uuid.Nil {
			return nil, shared.NewValidationError("Line item ID is required")
		}
		patch, err := u.toPatch()
		if err != nil {
			return nil, err
		}
		patches[i] = patch
		if u.CustomerID != nil {
			customerIDs = append(customerIDs, *u.CustomerID)
		}
	}
	if in.SupplierID != nil {
		if err := s.refs.supplier(ctx, *in.SupplierID); err != nil {
			return nil, err
		}
	}
	if err := s.refs.customerIDs(ctx, customerIDs); err != nil {
		return nil, err
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if in.SupplierID != nil {
			if err := stock.ReassignSupplier(*in.SupplierID); err != nil {
				return err
			}
			if err := s.stockRepo.Save(ctx, stock); err != nil {
				return err
			}
		}

		for i, u := range in.Items {
			item, err := s.stockRepo.FindItem(ctx, stockID, u.ID)
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewNotFoundError("Line item", fmt.Sprintf("%s in stock %s", u.ID, stockID))
			}
			if err != nil {
				return err
			}
			if err := item.Apply(patches[i]); err != nil {
				return err
			}
			if err := s.stockRepo.SaveItem(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, stock)
	return s.view(ctx, stock)
}

// Finalize closes a stock for further line-item changes
func (s *StockService) Finalize(ctx context.Context, stockID uuid.UUID) (*StockResponse, error) {
	stock, err := s.find(ctx, stockID)
	if err != nil {
		return nil, err
	}
	if err := stock.Finalize(); err != nil {
		return nil, err
	}
	if err := s.stockRepo.Save(ctx, stock); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, stock)
	return s.view(ctx, stock)
}

// GetByID returns the read view of a stock
func (s *StockService) GetByID(ctx context.Context, stockID uuid.UUID) (*StockResponse, error) {
	stock, err := s.find(ctx, stockID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, stock)
}

// List returns a page of stock read views and the total count. Line items
// of the whole page are loaded with one query.
func (s *StockService) List(ctx context.Context, filter StockListFilter) ([]StockResponse, int64, error) {
	query, err := filter.toQuery()
	if err != nil {
		return nil, 0, err
	}

	stocks, err := s.stockRepo.FindAll(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.stockRepo.Count(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, len(stocks))
	for i := range stocks {
		ids[i] = stocks[i].ID
	}
	items, err := s.stockRepo.ItemsFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	result := make([]StockResponse, len(stocks))
	for i := range stocks {
		result[i] = ToStockResponse(&stocks[i], items[stocks[i].ID])
	}
	return result, total, nil
}

// Delete deletes a stock with its line items and their selling prices
func (s *StockService) Delete(ctx context.Context, stockID uuid.UUID) error {
	var deleted *inventory.Stock
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		stock, err := s.find(ctx, stockID)
		if err != nil {
			return err
		}
		if err := s.stockRepo.Delete(ctx, stockID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewNotFoundError("Stock", stockID)
			}
			return err
		}
		deleted = stock
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, inventory.NewStockDeletedEvent(deleted))
	return nil
}

func (s *StockService) find(ctx context.Context, id uuid.UUID) (*inventory.Stock, error) {
	stock, err := s.stockRepo.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewNotFoundError("Stock", id)
	}
	return stock, err
}

func (s *StockService) view(ctx context.Context, stock *inventory.Stock) (*StockResponse, error) {
	items, err := s.stockRepo.ItemsFor(ctx, []uuid.UUID{stock.ID})
	if err != nil {
		return nil, err
	}
	resp := ToStockResponse(stock, items[stock.ID])
	return &resp, nil
}

func (s *StockService) saveItems(ctx context.Context, items []inventory.LineItem) error {
	for i := range items {
		if err := s.stockRepo.SaveItem(ctx, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

// claim reserves an idempotency key and returns the function that gives it
// back when the write fails
func (s *StockService) claim(ctx context.Context, key string) (func(), error) {
	key = strings.TrimSpace(key)
	if key == "" || s.idempotency == nil {
		return func() {}, nil
	}

	storeKey := idempotencyKeyPrefix + key
	claimed, err := s.idempotency.Claim(ctx, storeKey, s.idempotencyTTL)
	if err != nil {
		return nil, fmt.Errorf("claim idempotency key: %w", err)
	}
	if !claimed {
		return nil, shared.NewConflictError("A stock intake with idempotency key %s was already submitted", key)
	}

	return func() {
		if err := s.idempotency.Release(context.WithoutCancel(ctx), storeKey); err != nil {
			s.logger.Warn("Failed to release idempotency key",
				zap.String("idempotency_key", key),
				zap.Error(err))
		}
	}, nil
}

// publishDomainEvents publishes all pending domain events of the stock
func (s *StockService) publishDomainEvents(ctx context.Context, stock *inventory.Stock) {
	s.publish(ctx, stock.GetDomainEvents()...)
	stock.ClearDomainEvents()
}

func (s *StockService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	// Handler failures are logged by the event bus, not propagated
	_ = s.eventPublisher.Publish(ctx, events...)
}

func buildItems(stockID uuid.UUID, inputs []LineItemInput) ([]inventory.LineItem, error) {
	items := make([]inventory.LineItem, 0, len(inputs))
	for i, in := range inputs {
		spec, err := in.toSpec()
		if err != nil {
			return nil, fmt.Errorf("line item %d: %w", i+1, err)
		}
		item, err := inventory.NewLineItem(stockID, spec)
		if err != nil {
			return nil, fmt.Errorf("line item %d: %w", i+1, err)
		}
		items = append(items, *item)
	}
	return items, nil
}
