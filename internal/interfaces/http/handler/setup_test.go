package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	catalogapp "github.com/stockroom/backend/internal/application/catalog"
	inventoryapp "github.com/stockroom/backend/internal/application/inventory"
	partnerapp "github.com/stockroom/backend/internal/application/partner"
	reportapp "github.com/stockroom/backend/internal/application/report"
	"github.com/stockroom/backend/internal/application/search"
	"github.com/stockroom/backend/internal/infrastructure/cache"
	"github.com/stockroom/backend/internal/infrastructure/persistence"
	"github.com/stockroom/backend/internal/infrastructure/persistence/testdb"
	"github.com/stockroom/backend/internal/infrastructure/printing"
	"github.com/stockroom/backend/internal/infrastructure/storage"
	"github.com/stockroom/backend/internal/interfaces/http/dto"
	"github.com/stockroom/backend/internal/interfaces/http/middleware"
)

var setupValidator sync.Once

func init() {
	gin.SetMode(gin.TestMode)
}

// pngBytes is enough of a PNG for content sniffing
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

type testAPI struct {
	engine *gin.Engine
	repos  *persistence.Repositories
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	setupValidator.Do(func() {
		require.NoError(t, middleware.SetupValidator())
	})

	log := zaptest.NewLogger(t)
	repos := persistence.NewRepositories(testdb.New(t))
	images, err := storage.NewLocalImageStore(t.TempDir(), "/uploads", log)
	require.NoError(t, err)

	productSvc := catalogapp.NewProductService(repos.Products, repos.Categories, repos.Stocks, images, repos.Transactions, log)
	stockSvc := inventoryapp.NewStockService(repos.Stocks, repos.Suppliers, repos.Products, repos.Customers, repos.Transactions, log)
	stockSvc.SetIdempotencyStore(cache.NewInMemoryIdempotencyStore(), time.Hour)
	reportSvc := reportapp.NewReportService(repos.Stocks, repos.Products, repos.Suppliers,
		printing.NewNativeRenderer("Rs."), log)

	categories := NewCategoryHandler(catalogapp.NewCategoryService(repos.Categories, repos.Transactions))
	products := NewProductHandler(productSvc)
	suppliers := NewSupplierHandler(partnerapp.NewSupplierService(repos.Suppliers, repos.Stocks))
	customers := NewCustomerHandler(partnerapp.NewCustomerService(repos.Customers))
	stocks := NewStockHandler(stockSvc)
	searches := NewSearchHandler(search.NewSearchService(productSvc, repos.Products, repos.Categories, repos.Suppliers))
	reports := NewReportHandler(reportSvc)

	r := gin.New()
	r.Use(middleware.RequestID())
	api := r.Group("/api/v1")
	api.POST("/categories", categories.Create)
	api.GET("/categories", categories.List)
	api.GET("/categories/:id", categories.GetByID)
	api.PUT("/categories/:id", categories.Update)
	api.DELETE("/categories/:id", categories.Delete)
	api.POST("/products", products.Create)
	api.GET("/products", products.List)
	api.GET("/products/:id", products.GetByID)
	api.PUT("/products/:id", products.Update)
	api.DELETE("/products/:id", products.Delete)
	api.POST("/suppliers", suppliers.Create)
	api.GET("/suppliers", suppliers.List)
	api.GET("/suppliers/:id", suppliers.GetByID)
	api.PUT("/suppliers/:id", suppliers.Update)
	api.DELETE("/suppliers/:id", suppliers.Delete)
	api.POST("/customers", customers.Create)
	api.GET("/customers/:id", customers.GetByID)
	api.POST("/stocks", stocks.Create)
	api.GET("/stocks", stocks.List)
	api.GET("/stocks/:id", stocks.GetByID)
	api.PUT("/stocks/:id", stocks.Update)
	api.DELETE("/stocks/:id", stocks.Delete)
	api.POST("/stocks/:id/items", stocks.AddItems)
	api.DELETE("/stocks/:id/items", stocks.RemoveItems)
	api.POST("/stocks/:id/finalize", stocks.Finalize)
	api.GET("/search/products", searches.Products)
	api.GET("/search/suppliers", searches.Suppliers)
	api.GET("/reports/stock-summary", reports.StockSummary)
	api.GET("/reports/suppliers", reports.SupplierSummary)

	return &testAPI{engine: r, repos: repos}
}

func (a *testAPI) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// productForm builds a multipart product form with one PNG per image name
func productForm(t *testing.T, fields map[string][]string, imageNames ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, values := range fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	for _, name := range imageNames {
		fw, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = fw.Write(pngBytes)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (a *testAPI) postForm(t *testing.T, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// decode unmarshals the envelope and its data into data when non-nil
func decode(t *testing.T, w *httptest.ResponseRecorder, data any) dto.Response {
	t.Helper()
	var raw struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(raw.Data, data), string(raw.Data))
	}
	return raw.Response
}

func (a *testAPI) createSupplier(t *testing.T, name, phone string) partnerapp.SupplierResponse {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/suppliers", map[string]string{
		"name": name, "address": "1 Mill Lane", "phone": phone, "email": phone + "@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var s partnerapp.SupplierResponse
	decode(t, w, &s)
	return s
}

func (a *testAPI) createCategory(t *testing.T, name string) catalogapp.CategoryResponse {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/categories", map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var c catalogapp.CategoryResponse
	decode(t, w, &c)
	return c
}

func (a *testAPI) createProduct(t *testing.T, name string, categories ...string) catalogapp.ProductResponse {
	t.Helper()
	body, ct := productForm(t, map[string][]string{
		"name": {name}, "description": {name + " description"}, "categories": categories,
	}, "photo.png")
	w := a.postForm(t, http.MethodPost, "/api/v1/products", body, ct)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p catalogapp.ProductResponse
	decode(t, w, &p)
	return p
}
