package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/stockroom/backend/internal/domain/shared"
)

// MaxCategoryNameLength is the maximum number of characters in a category name
const MaxCategoryNameLength = 100

// Category represents a product category in the catalog
type Category struct {
	shared.BaseEntity
	Name string
}

// NewCategory creates a new category
func NewCategory(name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	return &Category{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
	}, nil
}

// Rename changes the category's name
func (c *Category) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return err
	}

	c.Name = name
	c.Touch()
	return nil
}

func validateCategoryName(name string) error {
	if name == "" {
		return shared.NewValidationError("Category name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxCategoryNameLength {
		return shared.NewValidationError("Category name cannot exceed %d characters", MaxCategoryNameLength)
	}
	return nil
}
