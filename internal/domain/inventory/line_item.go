package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroom/backend/internal/domain/shared"
)

// MaxStarRating is the highest accepted star rating
const MaxStarRating = 5

// LineItem is one product entry of a stock intake
type LineItem struct {
	ID              uuid.UUID
	StockID         uuid.UUID
	ProductID       uuid.UUID
	Quantity        int
	Price           decimal.Decimal
	ManufactureDate time.Time
	ExpirationDate  time.Time
	StarRating      int
	TextReview      string
	CustomerID      *uuid.UUID
	// SellingPrice is nil when no selling price has been recorded
	SellingPrice *decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LineItemSpec describes a line item to be created
type LineItemSpec struct {
	ProductID       uuid.UUID
	Quantity        int
	Price           decimal.Decimal
	ManufactureDate time.Time
	ExpirationDate  time.Time
	StarRating      int
	TextReview      string
	CustomerID      *uuid.UUID
	SellingPrice    *decimal.Decimal
}

// LineItemPatch carries optional line item changes. Nil fields are left unchanged.
type LineItemPatch struct {
	Quantity        *int
	Price           *decimal.Decimal
	ManufactureDate *time.Time
	ExpirationDate  *time.Time
	StarRating      *int
	TextReview      *string
	CustomerID      *uuid.UUID
	SellingPrice    *decimal.Decimal
}

// NewLineItem creates a validated line item for a stock.
// A missing selling price is recorded as zero.
func NewLineItem(stockID uuid.UUID, spec LineItemSpec) (*LineItem, error) {
	if spec.ProductID == uuid.Nil {
		return nil, shared.NewValidationError("Product ID is required")
	}
	if spec.ManufactureDate.IsZero() || spec.ExpirationDate.IsZero() {
		return nil, shared.NewValidationError("Manufacture and expiration dates are required")
	}

	selling := decimal.Zero
	if spec.SellingPrice != nil {
		selling = *spec.SellingPrice
	}

	now := time.Now().UTC()
	item := &LineItem{
		ID:              uuid.New(),
		StockID:         stockID,
		ProductID:       spec.ProductID,
		Quantity:        spec.Quantity,
		Price:           spec.Price,
		ManufactureDate: spec.ManufactureDate,
		ExpirationDate:  spec.ExpirationDate,
		StarRating:      spec.StarRating,
		TextReview:      strings.TrimSpace(spec.TextReview),
		CustomerID:      spec.CustomerID,
		SellingPrice:    &selling,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := item.validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// Apply patches the line item. The item is left untouched when the result would be invalid.
func (li *LineItem) Apply(p LineItemPatch) error {
	next := *li
	if p.Quantity != nil {
		next.Quantity = *p.Quantity
	}
	if p.Price != nil {
		next.Price = *p.Price
	}
	if p.ManufactureDate != nil {
		next.ManufactureDate = *p.ManufactureDate
	}
	if p.ExpirationDate != nil {
		next.ExpirationDate = *p.ExpirationDate
	}
	if p.StarRating != nil {
		next.StarRating = *p.StarRating
	}
	if p.TextReview != nil {
		next.TextReview = strings.TrimSpace(*p.TextReview)
	}
	if p.CustomerID != nil {
		id := *p.CustomerID
		next.CustomerID = &id
	}
	if p.SellingPrice != nil {
		sp := *p.SellingPrice
		next.SellingPrice = &sp
	}
	if err := next.validate(); err != nil {
		return err
	}

	next.UpdatedAt = time.Now().UTC()
	*li = next
	return nil
}

// Total returns price × quantity
func (li *LineItem) Total() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// IsLowStock reports whether the line item is below the low-stock threshold
func (li *LineItem) IsLowStock() bool {
	return IsLowStock(li.Quantity)
}

func (li *LineItem) validate() error {
	if li.Quantity < 0 {
		return shared.NewValidationError("Quantity cannot be negative")
	}
	if li.Price.IsNegative() {
		return shared.NewValidationError("Price cannot be negative")
	}
	if li.SellingPrice != nil && li.SellingPrice.IsNegative() {
		return shared.NewValidationError("Selling price cannot be negative")
	}
	if li.StarRating < 0 || li.StarRating > MaxStarRating {
		return shared.NewValidationError("Star rating must be between 0 and %d", MaxStarRating)
	}
	if li.ManufactureDate.After(li.ExpirationDate) {
		return shared.NewValidationError("Manufacture date %s is after expiration date %s",
			li.ManufactureDate.Format(DateLayout), li.ExpirationDate.Format(DateLayout))
	}
	return nil
}
