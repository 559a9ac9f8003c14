package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/stockroom/backend/internal/application/catalog"
	"github.com/stockroom/backend/internal/interfaces/http/dto"
)

// Multipart field names of the product form
const (
	formImages     = "images"
	formCategories = "categories"
)

// MaxMultipartMemory is held in memory while parsing a product form; the rest spills to disk
const MaxMultipartMemory = 8 << 20

// ProductHandler handles product-related API endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// Create handles POST /products (multipart/form-data)
func (h *ProductHandler) Create(c *gin.Context) {
	form, ok := h.parseForm(c)
	if !ok {
		return
	}
	uploads, closeAll, err := openUploads(form.File[formImages])
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	defer closeAll()

	product, err := h.productService.Create(c.Request.Context(), catalogapp.CreateProductInput{
		Name:          strings.TrimSpace(c.PostForm("name")),
		Description:   strings.TrimSpace(c.PostForm("description")),
		CategoryNames: splitList(form.Value[formCategories]),
		Images:        uploads,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// GetByID handles GET /products/:id
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}

	products, total, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// Update handles PUT /products/:id (multipart/form-data).
// Absent name or description fields leave the value unchanged.
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id", "product")
	if !ok {
		return
	}
	form, ok := h.parseForm(c)
	if !ok {
		return
	}
	uploads, closeAll, err := openUploads(form.File[formImages])
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	defer closeAll()

	in := catalogapp.UpdateProductInput{
		CategoryNames: splitList(form.Value[formCategories]),
		Images:        uploads,
	}
	if v, ok := c.GetPostForm("name"); ok {
		v = strings.TrimSpace(v)
		in.Name = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		v = strings.TrimSpace(v)
		in.Description = &v
	}

	product, err := h.productService.Update(c.Request.Context(), id, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete handles DELETE /products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id", "product")
	if !ok {
		return
	}
	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *ProductHandler) parseForm(c *gin.Context) (*multipart.Form, bool) {
	if err := c.Request.ParseMultipartForm(MaxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.HandleBindingError(c, err)
			return nil, false
		}
		h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Expected a multipart/form-data body")
		return nil, false
	}
	return c.Request.MultipartForm, true
}

// openUploads opens every uploaded file. The returned func closes them.
func openUploads(headers []*multipart.FileHeader) ([]catalogapp.ImageUpload, func(), error) {
	files := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	uploads := make([]catalogapp.ImageUpload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("cannot read uploaded file %q", fh.Filename)
		}
		files = append(files, f)
		uploads = append(uploads, catalogapp.ImageUpload{
			Filename: fh.Filename,
			Size:     fh.Size,
			Content:  f,
		})
	}
	return uploads, closeAll, nil
}

// splitList flattens repeated and comma separated values
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
