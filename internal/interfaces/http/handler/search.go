package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/stockroom/backend/internal/application/search"
)

// SearchHandler serves product and supplier search
type SearchHandler struct {
	BaseHandler
	searchService *search.SearchService
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(searchService *search.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Products handles GET /search/products?name=&categories=a,b
func (h *SearchHandler) Products(c *gin.Context) {
	var req search.ProductSearch
	if !h.BindQuery(c, &req) {
		return
	}
	req.Categories = splitList(req.Categories)
	page, size := pageOf(req.Page, req.PageSize)

	products, total, err := h.searchService.SearchProducts(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, page, size)
}

// Suppliers handles GET /search/suppliers?name=
func (h *SearchHandler) Suppliers(c *gin.Context) {
	var req search.SupplierSearch
	if !h.BindQuery(c, &req) {
		return
	}
	page, size := pageOf(req.Page, req.PageSize)

	suppliers, total, err := h.searchService.SearchSuppliers(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, suppliers, total, page, size)
}

func pageOf(page, size int) (int, int) {
	if page == 0 {
		page = 1
	}
	if size == 0 {
		size = 20
	}
	return page, min(size, search.MaxResults)
}
