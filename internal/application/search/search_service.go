package search

import (
	"context"
	"strings"

	"github.com/google/uuid"
	catalogapp "github.com/stockroom/backend/internal/application/catalog"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/partner"
	"github.com/stockroom/backend/internal/domain/shared"
)

// MaxResults caps a single search page
const MaxResults = 100

// ProductQuerier lists products with their categories and images
type ProductQuerier interface {
	Query(ctx context.Context, query catalog.ProductQuery) ([]catalogapp.ProductResponse, int64, error)
}

// ProductSearch holds product search criteria
type ProductSearch struct {
	Name       string   `form:"name"`
	Categories []string `form:"categories"`
	Page       int      `form:"page" binding:"omitempty,min=1"`
	PageSize   int      `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SupplierSearch holds supplier search criteria
type SupplierSearch struct {
	Name     string `form:"name"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SupplierResult is a supplier as returned by search
type SupplierResult struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
	Contact string    `json:"contact"`
	Email   string    `json:"email"`
}

// SearchService finds products and suppliers by name and category
type SearchService struct {
	products     ProductQuerier
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	supplierRepo partner.SupplierRepository
}

// NewSearchService creates a new SearchService
func NewSearchService(
	products ProductQuerier,
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	supplierRepo partner.SupplierRepository,
) *SearchService {
	return &SearchService{
		products:     products,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
	}
}

// SearchProducts matches products whose name contains the given text,
// case-insensitively, and that belong to any of the given categories.
// When both are given the result is their intersection. Category names
// that do not exist match nothing.
func (s *SearchService) SearchProducts(ctx context.Context, in ProductSearch) ([]catalogapp.ProductResponse, int64, error) {
	query := catalog.ProductQuery{
		Filter:       page(in.Page, in.PageSize),
		NameContains: strings.TrimSpace(in.Name),
	}

	names := catalog.NormalizeCategoryNames(splitNames(in.Categories))
	if len(names) > 0 {
		categories, err := s.categoryRepo.FindByNames(ctx, names)
		if err != nil {
			return nil, 0, err
		}
		if len(categories) == 0 {
			return []catalogapp.ProductResponse{}, 0, nil
		}

		ids := make([]uuid.UUID, len(categories))
		for i := range categories {
			ids[i] = categories[i].ID
		}
		productIDs, err := s.productRepo.ProductIDsInCategories(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		query.RestrictToIDs = true
		query.IDs = productIDs
	}

	return s.products.Query(ctx, query)
}

// SearchSuppliers matches suppliers whose name contains the given text, case-insensitively
func (s *SearchService) SearchSuppliers(ctx context.Context, in SupplierSearch) ([]SupplierResult, int64, error) {
	filter := page(in.Page, in.PageSize)
	filter.Search = strings.TrimSpace(in.Name)

	suppliers, err := s.supplierRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.supplierRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]SupplierResult, len(suppliers))
	for i, sup := range suppliers {
		result[i] = SupplierResult{
			ID:      sup.ID,
			Name:    sup.Name,
			Address: sup.Address,
			Contact: sup.Phone,
			Email:   sup.Email,
		}
	}
	return result, total, nil
}

func page(p, size int) shared.Filter {
	f := shared.DefaultFilter()
	f.OrderBy, f.OrderDir = "name", "asc"
	if p > 0 {
		f.Page = p
	}
	if size > 0 {
		f.PageSize = min(size, MaxResults)
	}
	return f
}

// splitNames accepts both repeated query parameters and comma-separated lists
func splitNames(values []string) []string {
	var names []string
	for _, v := range values {
		names = append(names, strings.Split(v, ",")...)
	}
	return names
}
