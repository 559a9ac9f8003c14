package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductUsage reports whether stock line items still reference a product
type ProductUsage interface {
	CountItemsByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}

// ProductService handles product-related business operations
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	usage        ProductUsage
	images       ImageStore
	txManager    shared.TransactionManager
	logger       *zap.Logger
	now          func() time.Time
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	usage ProductUsage,
	images ImageStore,
	txManager shared.TransactionManager,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		usage:        usage,
		images:       images,
		txManager:    txManager,
		logger:       logger,
		now:          time.Now,
	}
}

// Create creates a product with its category links and images.
// Category names are resolved before anything is written; image files
// stored before a failed transaction are removed again.
func (s *ProductService) Create(ctx context.Context, in CreateProductInput) (*ProductResponse, error) {
	product, err := catalog.NewProduct(in.Name, in.Description)
	if err != nil {
		return nil, err
	}
	if len(in.Images) == 0 {
		return nil, shared.NewValidationError("At least one product image is required")
	}
	uploads, err := checkImages(in.Images)
	if err != nil {
		return nil, err
	}
	categories, err := s.resolveCategories(ctx, in.CategoryNames)
	if err != nil {
		return nil, err
	}

	images, err := s.storeImages(ctx, product.ID, uploads)
	if err != nil {
		return nil, err
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.productRepo.Save(ctx, product); err != nil {
			return err
		}
		if err := s.productRepo.ReplaceCategories(ctx, product.ID, categoryIDs(categories)); err != nil {
			return err
		}
		return s.productRepo.ReplaceImages(ctx, product.ID, images)
	})
	if err != nil {
		s.removeImages(ctx, images)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.Int("categories", len(categories)),
		zap.Int("images", len(images)),
	)
	resp := ToProductResponse(product, categories, images)
	return &resp, nil
}

// GetByID retrieves a product with its categories and images
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	responses, err := s.compose(ctx, []catalog.Product{*product})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// List retrieves a page of products and the total count.
// Categories and images for the whole page are fetched with one query each.
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	query := catalog.ProductQuery{
		Filter: listFilter(filter.Search, filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir),
	}
	return s.Query(ctx, query)
}

// Query lists products matching query with their associations
func (s *ProductService) Query(ctx context.Context, query catalog.ProductQuery) ([]ProductResponse, int64, error) {
	products, err := s.productRepo.FindAll(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	responses, err := s.compose(ctx, products)
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// Update patches the product. A non-empty category list or image list
// replaces that association as a whole.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, in UpdateProductInput) (*ProductResponse, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.Update(in.Name, in.Description); err != nil {
		return nil, err
	}

	uploads, err := checkImages(in.Images)
	if err != nil {
		return nil, err
	}
	names := catalog.NormalizeCategoryNames(in.CategoryNames)
	var categories []catalog.Category
	if len(names) > 0 {
		if categories, err = s.resolveCategories(ctx, names); err != nil {
			return nil, err
		}
	}

	var previous []catalog.ProductImage
	var images []catalog.ProductImage
	if len(uploads) > 0 {
		current, err := s.productRepo.ImagesFor(ctx, []uuid.UUID{id})
		if err != nil {
			return nil, err
		}
		previous = current[id]
		if images, err = s.storeImages(ctx, id, uploads); err != nil {
			return nil, err
		}
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.productRepo.Save(ctx, product); err != nil {
			return err
		}
		if len(names) > 0 {
			if err := s.productRepo.ReplaceCategories(ctx, id, categoryIDs(categories)); err != nil {
				return err
			}
		}
		if len(images) > 0 {
			return s.productRepo.ReplaceImages(ctx, id, images)
		}
		return nil
	})
	if err != nil {
		s.removeImages(ctx, images)
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	s.removeImages(ctx, previous)

	return s.GetByID(ctx, id)
}

// Delete deletes a product that no stock line item references,
// together with its category links and image files
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	used, err := s.usage.CountItemsByProduct(ctx, id)
	if err != nil {
		return err
	}
	if used > 0 {
		return shared.NewConflictError("Product %s is referenced by %d stock line items", id, used)
	}

	current, err := s.productRepo.ImagesFor(ctx, []uuid.UUID{id})
	if err != nil {
		return err
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		err := s.productRepo.Delete(ctx, id)
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewNotFoundError("Product", id)
		}
		return err
	})
	if err != nil {
		return err
	}

	s.removeImages(ctx, current[id])
	return nil
}

func (s *ProductService) find(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewNotFoundError("Product", id)
	}
	return product, err
}

// resolveCategories looks every name up in one query and fails with the full list of unknown names
func (s *ProductService) resolveCategories(ctx context.Context, names []string) ([]catalog.Category, error) {
	names = catalog.NormalizeCategoryNames(names)
	if len(names) == 0 {
		return []catalog.Category{}, nil
	}

	found, err := s.categoryRepo.FindByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	if missing := catalog.MissingCategoryNames(names, found); len(missing) > 0 {
		return nil, shared.NewValidationError("Unknown categories: %s", strings.Join(missing, ", "))
	}
	return found, nil
}

func (s *ProductService) storeImages(ctx context.Context, productID uuid.UUID, uploads []checkedImage) ([]catalog.ProductImage, error) {
	images := make([]catalog.ProductImage, 0, len(uploads))
	for _, u := range uploads {
		stored, err := s.images.Save(ctx, storageKey(s.now(), u.upload.Filename), u.contentType, u.upload.Content)
		if err != nil {
			s.removeImages(ctx, images)
			return nil, fmt.Errorf("failed to store image %s: %w", u.upload.Filename, err)
		}
		images = append(images, catalog.NewProductImage(productID, stored.URL, stored.Key))
	}
	return images, nil
}

// removeImages deletes stored files; failures only leave orphaned files behind and are logged
func (s *ProductService) removeImages(ctx context.Context, images []catalog.ProductImage) {
	for _, img := range images {
		if err := s.images.Delete(ctx, img.StorageKey); err != nil {
			s.logger.Warn("Failed to remove image file",
				zap.String("storage_key", img.StorageKey),
				zap.Error(err),
			)
		}
	}
}

func (s *ProductService) compose(ctx context.Context, products []catalog.Product) ([]ProductResponse, error) {
	ids := make([]uuid.UUID, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}

	categories, err := s.productRepo.CategoriesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	images, err := s.productRepo.ImagesFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]ProductResponse, len(products))
	for i := range products {
		result[i] = ToProductResponse(&products[i], categories[products[i].ID], images[products[i].ID])
	}
	return result, nil
}

func categoryIDs(categories []catalog.Category) []uuid.UUID {
	ids := make([]uuid.UUID, len(categories))
	for i := range categories {
		ids[i] = categories[i].ID
	}
	return ids
}
