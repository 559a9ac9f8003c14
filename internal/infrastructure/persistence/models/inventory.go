package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroom/backend/internal/domain/inventory"
	"github.com/stockroom/backend/internal/domain/shared"
)

// StockModel is the persistence model for the Stock aggregate.
type StockModel struct {
	BaseModel
	SupplierID  uuid.UUID             `gorm:"type:uuid;not null;index"`
	Status      inventory.StockStatus `gorm:"type:varchar(20);not null;default:'OPEN'"`
	FinalizedAt *time.Time
}

// TableName returns the table name for GORM
func (StockModel) TableName() string {
	return "stocks"
}

// ToDomain converts the persistence model to a domain Stock aggregate.
func (m *StockModel) ToDomain() *inventory.Stock {
	s := &inventory.Stock{
		BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: m.BaseModel.ToDomain()},
		SupplierID:        m.SupplierID,
		Status:            m.Status,
	}
	if m.FinalizedAt != nil {
		t := m.FinalizedAt.UTC()
		s.FinalizedAt = &t
	}
	return s
}

// FromDomain populates the persistence model from a domain Stock aggregate.
func (m *StockModel) FromDomain(s *inventory.Stock) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.SupplierID = s.SupplierID
	m.Status = s.Status
	m.FinalizedAt = s.FinalizedAt
}

// StockModelFromDomain creates a new persistence model from a domain Stock aggregate.
func StockModelFromDomain(s *inventory.Stock) *StockModel {
	m := &StockModel{}
	m.FromDomain(s)
	return m
}

// StockLineItemModel is the persistence model for a stock line item.
// The selling price lives in its own table.
type StockLineItemModel struct {
	BaseModel
	StockID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity        int             `gorm:"not null;default:0"`
	Price           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ManufactureDate time.Time       `gorm:"type:date;not null"`
	ExpirationDate  time.Time       `gorm:"type:date;not null"`
	StarRating      int             `gorm:"not null;default:0"`
	TextReview      string          `gorm:"type:text"`
	CustomerID      *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (StockLineItemModel) TableName() string {
	return "stock_line_items"
}

// ToDomain converts the persistence model to a domain LineItem.
// sellingPrice is nil when no selling price row exists.
func (m *StockLineItemModel) ToDomain(sellingPrice *decimal.Decimal) inventory.LineItem {
	return inventory.LineItem{
		ID:              m.ID,
		StockID:         m.StockID,
		ProductID:       m.ProductID,
		Quantity:        m.Quantity,
		Price:           m.Price,
		ManufactureDate: toDate(m.ManufactureDate),
		ExpirationDate:  toDate(m.ExpirationDate),
		StarRating:      m.StarRating,
		TextReview:      m.TextReview,
		CustomerID:      m.CustomerID,
		SellingPrice:    sellingPrice,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

// StockLineItemModelFromDomain creates a new persistence model from a domain LineItem.
func StockLineItemModelFromDomain(li *inventory.LineItem) *StockLineItemModel {
	return &StockLineItemModel{
		BaseModel: BaseModel{
			ID:        li.ID,
			CreatedAt: li.CreatedAt,
			UpdatedAt: li.UpdatedAt,
		},
		StockID:         li.StockID,
		ProductID:       li.ProductID,
		Quantity:        li.Quantity,
		Price:           li.Price,
		ManufactureDate: li.ManufactureDate,
		ExpirationDate:  li.ExpirationDate,
		StarRating:      li.StarRating,
		TextReview:      li.TextReview,
		CustomerID:      li.CustomerID,
	}
}

// SellingPriceModel holds the selling price of one line item.
type SellingPriceModel struct {
	BaseModel
	LineItemID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_selling_prices_line_item"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (SellingPriceModel) TableName() string {
	return "selling_prices"
}

func toDate(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
