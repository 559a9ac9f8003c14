package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroom/backend/internal/domain/inventory"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockRepository implements StockRepository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// FindByID finds a stock by its ID, without line items
func (r *GormStockRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Stock, error) {
	var model models.StockModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple stocks by their IDs
func (r *GormStockRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.Stock, error) {
	if len(ids) == 0 {
		return []inventory.Stock{}, nil
	}

	var rows []models.StockModel
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toStocks(rows), nil
}

// FindAll finds stocks matching the query
func (r *GormStockRepository) FindAll(ctx context.Context, query inventory.StockQuery) ([]inventory.Stock, error) {
	var rows []models.StockModel
	db := applyPage(r.filtered(ctx, query), query.Filter, StockSortFields, "created_at")
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toStocks(rows), nil
}

// Count counts stocks matching the query
func (r *GormStockRepository) Count(ctx context.Context, query inventory.StockQuery) (int64, error) {
	var count int64
	if err := r.filtered(ctx, query).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a stock
func (r *GormStockRepository) Save(ctx context.Context, stock *inventory.Stock) error {
	return conn(ctx, r.db).Save(models.StockModelFromDomain(stock)).Error
}

// Delete deletes a stock with its line items and their selling prices
func (r *GormStockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := conn(ctx, r.db)
	itemIDs := conn(ctx, r.db).Model(&models.StockLineItemModel{}).Select("id").Where("stock_id = ?", id)
	if err := db.Where("line_item_id IN (?)", itemIDs).Delete(&models.SellingPriceModel{}).Error; err != nil {
		return err
	}
	if err := db.Where("stock_id = ?", id).Delete(&models.StockLineItemModel{}).Error; err != nil {
		return err
	}

	result := db.Delete(&models.StockModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ItemsFor returns the line items of each of the given stocks, selling prices included
func (r *GormStockRepository) ItemsFor(ctx context.Context, stockIDs []uuid.UUID) (map[uuid.UUID][]inventory.LineItem, error) {
	result := make(map[uuid.UUID][]inventory.LineItem, len(stockIDs))
	if len(stockIDs) == 0 {
		return result, nil
	}

	var rows []models.StockLineItemModel
	err := conn(ctx, r.db).
		Where("stock_id IN ?", stockIDs).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	items, err := r.withSellingPrices(ctx, rows, true)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		result[item.StockID] = append(result[item.StockID], item)
	}
	return result, nil
}

// FindItem finds a line item by ID within a stock
func (r *GormStockRepository) FindItem(ctx context.Context, stockID, itemID uuid.UUID) (*inventory.LineItem, error) {
	var model models.StockLineItemModel
	err := conn(ctx, r.db).Where("id = ? AND stock_id = ?", itemID, stockID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	items, err := r.withSellingPrices(ctx, []models.StockLineItemModel{model}, true)
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// FindItemsByProduct finds the line items of a stock that reference productID
func (r *GormStockRepository) FindItemsByProduct(ctx context.Context, stockID, productID uuid.UUID) ([]inventory.LineItem, error) {
	var rows []models.StockLineItemModel
	err := conn(ctx, r.db).
		Where("stock_id = ? AND product_id = ?", stockID, productID).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return r.withSellingPrices(ctx, rows, true)
}

// SaveItem creates or updates a line item and upserts its selling price when set
func (r *GormStockRepository) SaveItem(ctx context.Context, item *inventory.LineItem) error {
	db := conn(ctx, r.db)
	if err := db.Save(models.StockLineItemModelFromDomain(item)).Error; err != nil {
		return err
	}
	if item.SellingPrice == nil {
		return nil
	}

	now := time.Now().UTC()
	price := &models.SellingPriceModel{
		BaseModel:    models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		LineItemID:   item.ID,
		SellingPrice: *item.SellingPrice,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "line_item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"selling_price", "updated_at"}),
	}).Create(price).Error
}

// DeleteItems deletes line items and their selling prices
func (r *GormStockRepository) DeleteItems(ctx context.Context, itemIDs []uuid.UUID) error {
	if len(itemIDs) == 0 {
		return nil
	}

	db := conn(ctx, r.db)
	if err := db.Where("line_item_id IN ?", itemIDs).Delete(&models.SellingPriceModel{}).Error; err != nil {
		return err
	}
	return db.Where("id IN ?", itemIDs).Delete(&models.StockLineItemModel{}).Error
}

// AllItems returns every line item, selling prices included
func (r *GormStockRepository) AllItems(ctx context.Context) ([]inventory.LineItem, error) {
	var rows []models.StockLineItemModel
	if err := conn(ctx, r.db).Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.withSellingPrices(ctx, rows, false)
}

// CountItemsByProduct counts line items that reference productID
func (r *GormStockRepository) CountItemsByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.StockLineItemModel{}).Where("product_id = ?", productID).Count(&count).Error
	return count, err
}

// CountBySupplier counts stocks that reference supplierID
func (r *GormStockRepository) CountBySupplier(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.StockModel{}).Where("supplier_id = ?", supplierID).Count(&count).Error
	return count, err
}

// CountLowStockItems counts line items whose quantity is below inventory.LowStockThreshold
func (r *GormStockRepository) CountLowStockItems(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.StockLineItemModel{}).
		Where("quantity < ?", inventory.LowStockThreshold).
		Count(&count).Error
	return count, err
}

// withSellingPrices converts rows to line items and attaches their selling prices
// with one extra query. When scoped is false every selling price is loaded instead
// of filtering by line item id, which suits whole-table reads.
func (r *GormStockRepository) withSellingPrices(ctx context.Context, rows []models.StockLineItemModel, scoped bool) ([]inventory.LineItem, error) {
	items := make([]inventory.LineItem, 0, len(rows))
	if len(rows) == 0 {
		return items, nil
	}

	query := conn(ctx, r.db).Model(&models.SellingPriceModel{})
	if scoped {
		ids := make([]uuid.UUID, len(rows))
		for i := range rows {
			ids[i] = rows[i].ID
		}
		query = query.Where("line_item_id IN ?", ids)
	}
	var prices []models.SellingPriceModel
	if err := query.Find(&prices).Error; err != nil {
		return nil, err
	}

	byItem := make(map[uuid.UUID]decimal.Decimal, len(prices))
	for i := range prices {
		byItem[prices[i].LineItemID] = prices[i].SellingPrice
	}
	for i := range rows {
		var sp *decimal.Decimal
		if p, ok := byItem[rows[i].ID]; ok {
			sp = &p
		}
		items = append(items, rows[i].ToDomain(sp))
	}
	return items, nil
}

func (r *GormStockRepository) filtered(ctx context.Context, query inventory.StockQuery) *gorm.DB {
	db := conn(ctx, r.db).Model(&models.StockModel{})
	if query.SupplierID != nil {
		db = db.Where("supplier_id = ?", *query.SupplierID)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	return db
}

func toStocks(rows []models.StockModel) []inventory.Stock {
	stocks := make([]inventory.Stock, len(rows))
	for i := range rows {
		stocks[i] = *rows[i].ToDomain()
	}
	return stocks
}

var _ inventory.StockRepository = (*GormStockRepository)(nil)
