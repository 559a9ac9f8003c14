package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/shared"
)

// ProductQuery narrows a product listing
type ProductQuery struct {
	shared.Filter

	// NameContains matches the product name case-insensitively as a substring
	NameContains string

	// RestrictToIDs limits the result to IDs when set, even if IDs is empty
	RestrictToIDs bool
	IDs           []uuid.UUID
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs finds multiple products by their IDs. Unknown IDs are skipped.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindAll finds all products matching the query
	FindAll(ctx context.Context, query ProductQuery) ([]Product, error)

	// Count counts products matching the query
	Count(ctx context.Context, query ProductQuery) (int64, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// Delete deletes a product together with its category links and image rows
	Delete(ctx context.Context, id uuid.UUID) error

	// ReplaceCategories replaces the product's category links with categoryIDs
	ReplaceCategories(ctx context.Context, productID uuid.UUID, categoryIDs []uuid.UUID) error

	// ReplaceImages replaces the product's image rows with images
	ReplaceImages(ctx context.Context, productID uuid.UUID, images []ProductImage) error

	// CategoriesFor returns the categories linked to each of the given products
	CategoriesFor(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]Category, error)

	// ImagesFor returns the images of each of the given products
	ImagesFor(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]ProductImage, error)

	// ProductIDsInCategories returns the distinct IDs of products linked to any of categoryIDs
	ProductIDsInCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]uuid.UUID, error)
}
