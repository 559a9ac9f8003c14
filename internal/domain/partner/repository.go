package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/shared"
)

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	// FindByID finds a supplier by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)

	// FindByIDs finds multiple suppliers by their IDs. Unknown IDs are skipped.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Supplier, error)

	// FindAll finds suppliers matching the filter. Filter.Search matches the name.
	FindAll(ctx context.Context, filter shared.Filter) ([]Supplier, error)

	// Count counts suppliers matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a supplier
	Save(ctx context.Context, supplier *Supplier) error

	// Delete deletes a supplier
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByPhone checks whether another supplier uses phone
	ExistsByPhone(ctx context.Context, phone string, excludeID *uuid.UUID) (bool, error)

	// ExistsByEmail checks whether another supplier uses email
	ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error)
}

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByID finds a customer by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByIDs finds multiple customers by their IDs. Unknown IDs are skipped.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Customer, error)

	// FindAll finds customers matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)

	// Count counts customers matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error

	// ExistsByPhone checks whether a customer uses phone
	ExistsByPhone(ctx context.Context, phone string) (bool, error)

	// ExistsByEmail checks whether a customer uses email
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
