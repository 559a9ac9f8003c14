package catalog

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/shared"
)

// MaxProductNameLength is the maximum number of characters in a product name
const MaxProductNameLength = 200

// Product represents a sellable item in the catalog.
// Categories and images are associations managed through the repository.
type Product struct {
	shared.BaseEntity
	Name        string
	Description string
}

// ProductImage is a stored image attached to a product
type ProductImage struct {
	ID         uuid.UUID
	ProductID  uuid.UUID
	URL        string
	StorageKey string
	CreatedAt  time.Time
}

// NewProduct creates a new product
func NewProduct(name, description string) (*Product, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if description == "" {
		return nil, shared.NewValidationError("Product description cannot be empty")
	}

	return &Product{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        name,
		Description: description,
	}, nil
}

// Update patches the product's name and description. Nil arguments are left unchanged.
func (p *Product) Update(name, description *string) error {
	if name != nil {
		n := strings.TrimSpace(*name)
		if err := validateProductName(n); err != nil {
			return err
		}
		p.Name = n
	}
	if description != nil {
		d := strings.TrimSpace(*description)
		if d == "" {
			return shared.NewValidationError("Product description cannot be empty")
		}
		p.Description = d
	}

	p.Touch()
	return nil
}

// NewProductImage creates an image record for a product
func NewProductImage(productID uuid.UUID, url, storageKey string) ProductImage {
	return ProductImage{
		ID:         uuid.New(),
		ProductID:  productID,
		URL:        url,
		StorageKey: storageKey,
		CreatedAt:  time.Now().UTC(),
	}
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewValidationError("Product name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxProductNameLength {
		return shared.NewValidationError("Product name cannot exceed %d characters", MaxProductNameLength)
	}
	return nil
}
