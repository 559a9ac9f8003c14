package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/shared"
)

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	// FindByID finds a category by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// FindByNames finds the categories whose name is one of names
	FindByNames(ctx context.Context, names []string) ([]Category, error)

	// FindAll finds all categories matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Category, error)

	// Count counts categories matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a category
	Save(ctx context.Context, category *Category) error

	// Delete deletes a category and its product links
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByName checks whether another category already uses name
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
}
