package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/catalog"
)

// CategoryModel is the persistence model for the Category domain entity.
type CategoryModel struct {
	BaseModel
	Name string `gorm:"type:varchar(100);not null;uniqueIndex:idx_categories_name"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
	}
}

// FromDomain populates the persistence model from a domain Category entity.
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Name = c.Name
}

// CategoryModelFromDomain creates a new persistence model from a domain Category entity.
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{}
	m.FromDomain(c)
	return m
}

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	BaseModel
	Name        string `gorm:"type:varchar(200);not null;index"`
	Description string `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity:  m.BaseModel.ToDomain(),
		Name:        m.Name,
		Description: m.Description,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Name = p.Name
	m.Description = p.Description
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// ProductCategoryModel links a product to a category.
type ProductCategoryModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_categories_pair,priority:1"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_categories_pair,priority:2;index"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductCategoryModel) TableName() string {
	return "product_categories"
}

// NewProductCategoryModel creates a link row between a product and a category.
func NewProductCategoryModel(productID, categoryID uuid.UUID) *ProductCategoryModel {
	return &ProductCategoryModel{
		ID:         uuid.New(),
		ProductID:  productID,
		CategoryID: categoryID,
		CreatedAt:  time.Now().UTC(),
	}
}

// ProductImageModel is the persistence model for a stored product image.
type ProductImageModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;index"`
	URL        string    `gorm:"type:varchar(1000);not null"`
	StorageKey string    `gorm:"type:varchar(500);not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductImageModel) TableName() string {
	return "product_images"
}

// ToDomain converts the persistence model to a domain ProductImage.
func (m *ProductImageModel) ToDomain() catalog.ProductImage {
	return catalog.ProductImage{
		ID:         m.ID,
		ProductID:  m.ProductID,
		URL:        m.URL,
		StorageKey: m.StorageKey,
		CreatedAt:  m.CreatedAt.UTC(),
	}
}

// ProductImageModelFromDomain creates a new persistence model from a domain ProductImage.
func ProductImageModelFromDomain(img catalog.ProductImage) *ProductImageModel {
	return &ProductImageModel{
		ID:         img.ID,
		ProductID:  img.ProductID,
		URL:        img.URL,
		StorageKey: img.StorageKey,
		CreatedAt:  img.CreatedAt,
	}
}
