package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	inventoryapp "github.com/stockroom/backend/internal/application/inventory"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/interfaces/http/dto"
	"github.com/stockroom/backend/internal/interfaces/http/middleware"
)

// IdempotencyKeyHeader lets clients retry a stock intake safely
const IdempotencyKeyHeader = "Idempotency-Key"

// MaxIdempotencyKeyLength bounds the Idempotency-Key header
const MaxIdempotencyKeyLength = 255

// StockHandler handles stock intake and line-item endpoints
type StockHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *inventoryapp.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// Create handles POST /stocks
func (h *StockHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateStockInput
	if !h.BindJSON(c, &req) {
		return
	}
	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	if len(key) > MaxIdempotencyKeyLength {
		h.BadRequest(c, "Idempotency-Key header is too long")
		return
	}
	req.IdempotencyKey = key

	stock, err := h.stockService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, stock)
}

// GetByID handles GET /stocks/:id
func (h *StockHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "id", "stock")
	if !ok {
		return
	}

	stock, err := h.stockService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// List handles GET /stocks
func (h *StockHandler) List(c *gin.Context) {
	var filter inventoryapp.StockListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}

	stocks, total, err := h.stockService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, stocks, total, filter.Page, filter.PageSize)
}

// Update handles PUT /stocks/:id
func (h *StockHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id", "stock")
	if !ok {
		return
	}
	var req inventoryapp.UpdateStockInput
	if !h.BindJSON(c, &req) {
		return
	}

	stock, err := h.stockService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// Delete handles DELETE /stocks/:id
func (h *StockHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id", "stock")
	if !ok {
		return
	}
	if err := h.stockService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddItems handles POST /stocks/:id/items
func (h *StockHandler) AddItems(c *gin.Context) {
	id, ok := h.ParseID(c, "id", "stock")
	if !ok {
		return
	}
	var req inventoryapp.AddItemsInput
	if !h.BindJSON(c, &req) {
		return
	}

	stock, err := h.stockService.AddItems(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, stock)
}

// RemoveItems handles DELETE /stocks/:id/items.
// When only some products could be removed the answer is a 400 whose data
// lists both the removed product IDs and the per-product errors.
func (h *StockHandler) RemoveItems(c *gin.Context) {
	id, ok := h.ParseID(c, "id", "stock")
	if !ok {
		return
	}
	var req inventoryapp.RemoveItemsInput
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.stockService.RemoveItems(c.Request.Context(), id, req.ProductIDs)
	var partial *shared.PartialFailureError
	if errors.As(err, &partial) && result != nil {
		c.JSON(http.StatusBadRequest, dto.NewPartialFailureResponse(
			"Some products could not be removed.", middleware.GetRequestID(c), result))
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Finalize handles POST /stocks/:id/finalize
func (h *StockHandler) Finalize(c *gin.Context) {
	id, ok := h.ParseID(c, "id", "stock")
	if !ok {
		return
	}

	stock, err := h.stockService.Finalize(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}
