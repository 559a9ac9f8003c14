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

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple products by their IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}

	var rows []models.ProductModel
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// FindAll finds all products matching the query
func (r *GormProductRepository) FindAll(ctx context.Context, query catalog.ProductQuery) ([]catalog.Product, error) {
	if query.RestrictToIDs && len(query.IDs) == 0 {
		return []catalog.Product{}, nil
	}

	var rows []models.ProductModel
	db := applyPage(r.filtered(ctx, query), query.Filter, ProductSortFields, "created_at")
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// Count counts products matching the query
func (r *GormProductRepository) Count(ctx context.Context, query catalog.ProductQuery) (int64, error) {
	if query.RestrictToIDs && len(query.IDs) == 0 {
		return 0, nil
	}

	var count int64
	if err := r.filtered(ctx, query).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return conn(ctx, r.db).Save(models.ProductModelFromDomain(product)).Error
}

// Delete deletes a product together with its category links and image rows
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := conn(ctx, r.db)
	if err := db.Where("product_id = ?", id).Delete(&models.ProductCategoryModel{}).Error; err != nil {
		return err
	}
	if err := db.Where("product_id = ?", id).Delete(&models.ProductImageModel{}).Error; err != nil {
		return err
	}

	result := db.Delete(&models.ProductModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ReplaceCategories replaces the product's category links with categoryIDs
func (r *GormProductRepository) ReplaceCategories(ctx context.Context, productID uuid.UUID, categoryIDs []uuid.UUID) error {
	db := conn(ctx, r.db)
	if err := db.Where("product_id = ?", productID).Delete(&models.ProductCategoryModel{}).Error; err != nil {
		return err
	}
	if len(categoryIDs) == 0 {
		return nil
	}

	seen := make(map[uuid.UUID]struct{}, len(categoryIDs))
	links := make([]*models.ProductCategoryModel, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		links = append(links, models.NewProductCategoryModel(productID, id))
	}
	return db.Create(&links).Error
}

// ReplaceImages replaces the product's image rows with images
func (r *GormProductRepository) ReplaceImages(ctx context.Context, productID uuid.UUID, images []catalog.ProductImage) error {
	db := conn(ctx, r.db)
	if err := db.Where("product_id = ?", productID).Delete(&models.ProductImageModel{}).Error; err != nil {
		return err
	}
	if len(images) == 0 {
		return nil
	}

	rows := make([]*models.ProductImageModel, len(images))
	for i, img := range images {
		img.ProductID = productID
		rows[i] = models.ProductImageModelFromDomain(img)
	}
	return db.Create(&rows).Error
}

// CategoriesFor returns the categories linked to each of the given products
func (r *GormProductRepository) CategoriesFor(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]catalog.Category, error) {
	result := make(map[uuid.UUID][]catalog.Category, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	type linkRow struct {
		ProductID uuid.UUID
		models.CategoryModel
	}
	var rows []linkRow
	err := conn(ctx, r.db).
		Table("product_categories").
		Select("product_categories.product_id, categories.id, categories.name, categories.created_at, categories.updated_at").
		Joins("JOIN categories ON categories.id = product_categories.category_id").
		Where("product_categories.product_id IN ?", productIDs).
		Order("categories.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		result[rows[i].ProductID] = append(result[rows[i].ProductID], *rows[i].CategoryModel.ToDomain())
	}
	return result, nil
}

// ImagesFor returns the images of each of the given products
func (r *GormProductRepository) ImagesFor(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]catalog.ProductImage, error) {
	result := make(map[uuid.UUID][]catalog.ProductImage, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	var rows []models.ProductImageModel
	err := conn(ctx, r.db).
		Where("product_id IN ?", productIDs).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		result[rows[i].ProductID] = append(result[rows[i].ProductID], rows[i].ToDomain())
	}
	return result, nil
}

// ProductIDsInCategories returns the distinct IDs of products linked to any of categoryIDs
func (r *GormProductRepository) ProductIDsInCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	if len(categoryIDs) == 0 {
		return ids, nil
	}

	err := conn(ctx, r.db).
		Model(&models.ProductCategoryModel{}).
		Distinct("product_id").
		Where("category_id IN ?", categoryIDs).
		Pluck("product_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *GormProductRepository) filtered(ctx context.Context, query catalog.ProductQuery) *gorm.DB {
	db := conn(ctx, r.db).Model(&models.ProductModel{})
	name := query.NameContains
	if name == "" {
		name = query.Search
	}
	if name != "" {
		db = db.Where("LOWER(name) LIKE ? ESCAPE '\\'", likePattern(name))
	}
	if query.RestrictToIDs {
		db = db.Where("id IN ?", query.IDs)
	}
	return db
}

func toProducts(rows []models.ProductModel) []catalog.Product {
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
