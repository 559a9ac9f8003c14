package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	var model models.CategoryModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNames finds the categories whose name is one of names
func (r *GormCategoryRepository) FindByNames(ctx context.Context, names []string) ([]catalog.Category, error) {
	if len(names) == 0 {
		return []catalog.Category{}, nil
	}

	var rows []models.CategoryModel
	if err := conn(ctx, r.db).Where("name IN ?", names).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toCategories(rows), nil
}

// FindAll finds all categories matching the filter
func (r *GormCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Category, error) {
	var rows []models.CategoryModel
	query := applyPage(r.search(ctx, filter), filter, CategorySortFields, "name")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toCategories(rows), nil
}

// Count counts categories matching the filter
func (r *GormCategoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.search(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return conn(ctx, r.db).Save(models.CategoryModelFromDomain(category)).Error
}

// Delete deletes a category and its product links
func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := conn(ctx, r.db)
	if err := db.Where("category_id = ?", id).Delete(&models.ProductCategoryModel{}).Error; err != nil {
		return err
	}

	result := db.Delete(&models.CategoryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByName checks whether another category already uses name
func (r *GormCategoryRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := conn(ctx, r.db).Model(&models.CategoryModel{}).Where("name = ?", name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormCategoryRepository) search(ctx context.Context, filter shared.Filter) *gorm.DB {
	query := conn(ctx, r.db).Model(&models.CategoryModel{})
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\'", likePattern(filter.Search))
	}
	return query
}

func toCategories(rows []models.CategoryModel) []catalog.Category {
	categories := make([]catalog.Category, len(rows))
	for i := range rows {
		categories[i] = *rows[i].ToDomain()
	}
	return categories
}

var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
