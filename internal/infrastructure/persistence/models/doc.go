// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel shared by every table with an id and timestamps
//   - catalog.go: products, categories, product_categories, product_images
//   - partner.go: suppliers, customers
//   - inventory.go: stocks, stock_line_items, selling_prices
//
// The SQL migrations under migrations/ are the source of truth for the schema;
// the gorm tags here mirror them closely enough for AutoMigrate in tests.
package models

// All returns every model, in dependency order, for AutoMigrate
func All() []any {
	return []any{
		&CategoryModel{},
		&ProductModel{},
		&ProductCategoryModel{},
		&ProductImageModel{},
		&SupplierModel{},
		&CustomerModel{},
		&StockModel{},
		&StockLineItemModel{},
		&SellingPriceModel{},
	}
}
