package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/shared"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	txManager    shared.TransactionManager
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo catalog.CategoryRepository, txManager shared.TransactionManager) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		txManager:    txManager,
	}
}

// Create creates a new category with a unique name
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	category, err := catalog.NewCategory(req.Name)
	if err != nil {
		return nil, err
	}

	exists, err := s.categoryRepo.ExistsByName(ctx, category.Name, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewConflictError("Category %q already exists", category.Name)
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// GetByID retrieves a category by ID
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// List retrieves a page of categories and the total count
func (s *CategoryService) List(ctx context.Context, filter CategoryListFilter) ([]CategoryResponse, int64, error) {
	f := listFilter(filter.Search, filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir)
	if filter.OrderBy == "" {
		f.OrderBy, f.OrderDir = "name", "asc"
	}

	categories, err := s.categoryRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.categoryRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	result := make([]CategoryResponse, len(categories))
	for i := range categories {
		result[i] = ToCategoryResponse(&categories[i])
	}
	return result, total, nil
}

// Update renames a category
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := category.Rename(req.Name); err != nil {
		return nil, err
	}

	exists, err := s.categoryRepo.ExistsByName(ctx, category.Name, &category.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewConflictError("Category %q already exists", category.Name)
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Delete deletes a category and unlinks it from every product
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		err := s.categoryRepo.Delete(ctx, id)
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewNotFoundError("Category", id)
		}
		return err
	})
}

func (s *CategoryService) find(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewNotFoundError("Category", id)
	}
	return category, err
}
