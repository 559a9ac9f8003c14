package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/inventory"
	"github.com/stockroom/backend/internal/domain/partner"
	"github.com/stockroom/backend/internal/domain/shared"
)

// referenceChecker resolves the suppliers, products and customers a stock
// write points at. Each entity type is looked up with one query.
type referenceChecker struct {
	suppliers partner.SupplierRepository
	products  catalog.ProductRepository
	customers partner.CustomerRepository
}

func (c referenceChecker) supplier(ctx context.Context, id uuid.UUID) error {
	_, err := c.suppliers.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewValidationError("Unknown supplier: %s", id)
	}
	return err
}

func (c referenceChecker) lineItems(ctx context.Context, items []inventory.LineItem) error {
	productIDs := make([]uuid.UUID, 0, len(items))
	var customerIDs []uuid.UUID
	for i := range items {
		productIDs = append(productIDs, items[i].ProductID)
		if items[i].CustomerID != nil {
			customerIDs = append(customerIDs, *items[i].CustomerID)
		}
	}
	if err := c.productIDs(ctx, productIDs); err != nil {
		return err
	}
	return c.customerIDs(ctx, customerIDs)
}

func (c referenceChecker) productIDs(ctx context.Context, ids []uuid.UUID) error {
	ids = unique(ids)
	if len(ids) == 0 {
		return nil
	}
	found, err := c.products.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	known := make(map[uuid.UUID]bool, len(found))
	for i := range found {
		known[found[i].ID] = true
	}
	return missing("products", ids, known)
}

func (c referenceChecker) customerIDs(ctx context.Context, ids []uuid.UUID) error {
	ids = unique(ids)
	if len(ids) == 0 {
		return nil
	}
	found, err := c.customers.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	known := make(map[uuid.UUID]bool, len(found))
	for i := range found {
		known[found[i].ID] = true
	}
	return missing("customers", ids, known)
}

func missing(kind string, ids []uuid.UUID, known map[uuid.UUID]bool) error {
	var names []string
	for _, id := range ids {
		if !known[id] {
			names = append(names, id.String())
		}
	}
	if len(names) == 0 {
		return nil
	}
	return shared.NewValidationError("Unknown %s: %s", kind, strings.Join(names, ", "))
}

func unique(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
