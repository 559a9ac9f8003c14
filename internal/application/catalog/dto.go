package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/shared"
)

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// UpdateCategoryRequest represents a request to rename a category
type UpdateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// CategoryListFilter holds category listing options
type CategoryListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateProductInput carries a new product and its uploaded images
type CreateProductInput struct {
	Name          string
	Description   string
	CategoryNames []string
	Images        []ImageUpload
}

// UpdateProductInput carries product changes.
// Non-empty CategoryNames or Images replace the whole association.
type UpdateProductInput struct {
	Name          *string
	Description   *string
	CategoryNames []string
	Images        []ImageUpload
}

// ProductListFilter holds product listing options
type ProductListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ImageResponse represents a product image in API responses
type ImageResponse struct {
	ID  uuid.UUID `json:"id"`
	URL string    `json:"url"`
}

// ProductResponse represents a product with its categories and images
type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Categories  []string        `json:"categories"`
	Images      []ImageResponse `json:"images"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToProductResponse converts a product and its associations to ProductResponse
func ToProductResponse(p *catalog.Product, categories []catalog.Category, images []catalog.ProductImage) ProductResponse {
	names := make([]string, len(categories))
	for i := range categories {
		names[i] = categories[i].Name
	}
	imgs := make([]ImageResponse, len(images))
	for i, img := range images {
		imgs[i] = ImageResponse{ID: img.ID, URL: img.URL}
	}
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Categories:  names,
		Images:      imgs,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func listFilter(search string, page, pageSize int, orderBy, orderDir string) shared.Filter {
	f := shared.DefaultFilter()
	f.Search = search
	if page > 0 {
		f.Page = page
	}
	if pageSize > 0 {
		f.PageSize = pageSize
	}
	if orderBy != "" {
		f.OrderBy = orderBy
	}
	if orderDir != "" {
		f.OrderDir = orderDir
	}
	return f
}
