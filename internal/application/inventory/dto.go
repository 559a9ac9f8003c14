package inventory

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroom/backend/internal/domain/inventory"
	"github.com/stockroom/backend/internal/domain/shared"
)

// LineItemInput describes one product entry of a stock intake
type LineItemInput struct {
	ProductID       uuid.UUID          `json:"productId" binding:"required"`
	Quantity        Quantity           `json:"quantity" binding:"min=0"`
	Price           decimal.Decimal    `json:"price" binding:"decimal_gte0"`
	ManufactureDate string             `json:"manufactureDate" binding:"required,date"`
	ExpirationDate  string             `json:"expirationDate" binding:"required,date"`
	StarRating      int                `json:"starRating" binding:"min=0,max=5"`
	TextReview      string             `json:"textReview" binding:"max=2000"`
	CustomerID      *uuid.UUID         `json:"customerId"`
	SellingPrice    *SellingPriceInput `json:"sellingPrice"`
}

// Quantity is a unit count sent either as a JSON number or as a numeric string
type Quantity int

// UnmarshalJSON accepts 15 and "15"
func (q *Quantity) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(bytes.Trim(data, `"`))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("quantity %s is not a whole number", data)
	}
	*q = Quantity(n)
	return nil
}

// SellingPriceInput is a selling price on intake. A value that is not a
// number decodes to zero instead of failing the request.
type SellingPriceInput struct {
	decimal.Decimal
}

// UnmarshalJSON decodes numbers and numeric strings; anything else is zero
func (p *SellingPriceInput) UnmarshalJSON(data []byte) error {
	if err := p.Decimal.UnmarshalJSON(data); err != nil {
		p.Decimal = decimal.Zero
	}
	return nil
}

// CreateStockInput is the request to record a stock intake
type CreateStockInput struct {
	SupplierID uuid.UUID       `json:"supplierId" binding:"required"`
	Items      []LineItemInput `json:"items" binding:"required,min=1,dive"`

	// IdempotencyKey comes from the Idempotency-Key header, not the body
	IdempotencyKey string `json:"-"`
}

// AddItemsInput is the request to add line items to an existing stock
type AddItemsInput struct {
	Items []LineItemInput `json:"items" binding:"required,min=1,dive"`
}

// RemoveItemsInput is the request to remove line items by product
type RemoveItemsInput struct {
	ProductIDs []string `json:"productIds" binding:"required,min=1"`
}

// LineItemUpdate patches one line item. Nil fields are left unchanged;
// an explicit zero sets zero.
type LineItemUpdate struct {
	ID              uuid.UUID        `json:"id"`
	Quantity        *Quantity        `json:"quantity" binding:"omitempty,min=0"`
	Price           *decimal.Decimal `json:"price" binding:"omitempty,decimal_gte0"`
	ManufactureDate *string          `json:"manufactureDate" binding:"omitempty,date"`
	ExpirationDate  *string          `json:"expirationDate" binding:"omitempty,date"`
	StarRating      *int             `json:"starRating" binding:"omitempty,min=0,max=5"`
	TextReview      *string          `json:"textReview" binding:"omitempty,max=2000"`
	CustomerID      *uuid.UUID       `json:"customerId"`
	SellingPrice    *decimal.Decimal `json:"sellingPrice" binding:"omitempty,decimal_gte0"`
}

// UpdateStockInput is the request to reassign a stock and patch its line items
type UpdateStockInput struct {
	SupplierID *uuid.UUID       `json:"supplierId"`
	Items      []LineItemUpdate `json:"items" binding:"dive"`
}

// StockListFilter holds stock listing options
type StockListFilter struct {
	SupplierID string `form:"supplier_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=OPEN FINALIZED"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// RemovalResult lists the product IDs whose line items were removed and
// the per-product errors for those that were not
type RemovalResult struct {
	RemovedProductIDs []string `json:"removedProductIds"`
	Errors            []string `json:"errors"`
}

// LineItemResponse is a line item in the stock read view
type LineItemResponse struct {
	ID              uuid.UUID        `json:"id"`
	ProductID       uuid.UUID        `json:"product"`
	Quantity        int              `json:"quantity"`
	Price           decimal.Decimal  `json:"price"`
	ManufactureDate string           `json:"manufactureDate"`
	ExpirationDate  string           `json:"expirationDate"`
	SellingPrice    *decimal.Decimal `json:"sellingPrice"`
	StarRating      int              `json:"starRating"`
	TextReview      string           `json:"textReview,omitempty"`
	CustomerID      *uuid.UUID       `json:"customerId"`
	LowStock        bool             `json:"lowStock"`
}

// StockResponse is the denormalized stock read view
type StockResponse struct {
	ID            uuid.UUID          `json:"id"`
	SupplierID    uuid.UUID          `json:"supplierId"`
	Status        string             `json:"status"`
	CreatedAt     time.Time          `json:"createdAt"`
	FinalizedAt   *time.Time         `json:"finalizedAt,omitempty"`
	TotalValue    decimal.Decimal    `json:"totalValue"`
	TotalQuantity int64              `json:"totalQuantity"`
	Products      []LineItemResponse `json:"products"`
}

// ToLineItemResponse converts a domain line item to a response
func ToLineItemResponse(item *inventory.LineItem) LineItemResponse {
	return LineItemResponse{
		ID:              item.ID,
		ProductID:       item.ProductID,
		Quantity:        item.Quantity,
		Price:           item.Price,
		ManufactureDate: item.ManufactureDate.Format(inventory.DateLayout),
		ExpirationDate:  item.ExpirationDate.Format(inventory.DateLayout),
		SellingPrice:    item.SellingPrice,
		StarRating:      item.StarRating,
		TextReview:      item.TextReview,
		CustomerID:      item.CustomerID,
		LowStock:        item.IsLowStock(),
	}
}

// ToStockResponse builds the read view of a stock from its line items.
// Totals are derived with inventory.Totals on every call.
func ToStockResponse(stock *inventory.Stock, items []inventory.LineItem) StockResponse {
	totals := inventory.Totals(items)
	products := make([]LineItemResponse, len(items))
	for i := range items {
		products[i] = ToLineItemResponse(&items[i])
	}
	return StockResponse{
		ID:            stock.ID,
		SupplierID:    stock.SupplierID,
		Status:        string(stock.Status),
		CreatedAt:     stock.CreatedAt,
		FinalizedAt:   stock.FinalizedAt,
		TotalValue:    totals.Value,
		TotalQuantity: totals.Quantity,
		Products:      products,
	}
}

func (f StockListFilter) toQuery() (inventory.StockQuery, error) {
	query := inventory.StockQuery{Filter: shared.DefaultFilter()}
	if f.Page > 0 {
		query.Page = f.Page
	}
	if f.PageSize > 0 {
		query.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		query.OrderBy = f.OrderBy
		query.OrderDir = f.OrderDir
	}
	if f.SupplierID != "" {
		id, err := uuid.Parse(f.SupplierID)
		if err != nil {
			return query, shared.NewValidationError("Invalid supplier ID %q", f.SupplierID)
		}
		query.SupplierID = &id
	}
	if f.Status != "" {
		status := inventory.StockStatus(f.Status)
		if !status.IsValid() {
			return query, shared.NewValidationError("Invalid stock status %q", f.Status)
		}
		query.Status = status
	}
	return query, nil
}

func (in LineItemInput) toSpec() (inventory.LineItemSpec, error) {
	manufactured, err := inventory.ParseDate(in.ManufactureDate)
	if err != nil {
		return inventory.LineItemSpec{}, err
	}
	expires, err := inventory.ParseDate(in.ExpirationDate)
	if err != nil {
		return inventory.LineItemSpec{}, err
	}
	var sellingPrice *decimal.Decimal
	if in.SellingPrice != nil {
		sellingPrice = &in.SellingPrice.Decimal
	}
	return inventory.LineItemSpec{
		ProductID:       in.ProductID,
		Quantity:        int(in.Quantity),
		Price:           in.Price,
		ManufactureDate: manufactured,
		ExpirationDate:  expires,
		StarRating:      in.StarRating,
		TextReview:      in.TextReview,
		CustomerID:      in.CustomerID,
		SellingPrice:    sellingPrice,
	}, nil
}

func (u LineItemUpdate) toPatch() (inventory.LineItemPatch, error) {
	patch := inventory.LineItemPatch{
		Quantity:     (*int)(u.Quantity),
		Price:        u.Price,
		StarRating:   u.StarRating,
		TextReview:   u.TextReview,
		CustomerID:   u.CustomerID,
		SellingPrice: u.SellingPrice,
	}
	if u.ManufactureDate != nil {
		d, err := inventory.ParseDate(*u.ManufactureDate)
		if err != nil {
			return patch, err
		}
		patch.ManufactureDate = &d
	}
	if u.ExpirationDate != nil {
		d, err := inventory.ParseDate(*u.ExpirationDate)
		if err != nil {
			return patch, err
		}
		patch.ExpirationDate = &d
	}
	return patch, nil
}
