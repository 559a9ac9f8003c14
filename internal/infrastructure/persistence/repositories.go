package persistence

import (
	"gorm.io/gorm"
)

// Repositories bundles the GORM repositories that share one connection pool
type Repositories struct {
	Categories   *GormCategoryRepository
	Products     *GormProductRepository
	Suppliers    *GormSupplierRepository
	Customers    *GormCustomerRepository
	Stocks       *GormStockRepository
	Transactions *GormTransactionManager
}

// NewRepositories builds every repository on db
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Categories:   NewGormCategoryRepository(db),
		Products:     NewGormProductRepository(db),
		Suppliers:    NewGormSupplierRepository(db),
		Customers:    NewGormCustomerRepository(db),
		Stocks:       NewGormStockRepository(db),
		Transactions: NewGormTransactionManager(db),
	}
}
