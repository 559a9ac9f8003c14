package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogapp "github.com/stockroom/backend/internal/application/catalog"
	"github.com/stockroom/backend/internal/interfaces/http/dto"
)

func TestCategoryHandler_CRUD(t *testing.T) {
	api := newTestAPI(t)
	dairy := api.createCategory(t, "Dairy")

	t.Run("duplicate name conflicts", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/v1/categories", map[string]string{"name": "Dairy"})
		assert.Equal(t, http.StatusConflict, w.Code)
		resp := decode(t, w, nil)
		assert.Equal(t, dto.ErrCodeConflict, resp.Error.Code)
		assert.NotEmpty(t, resp.Message)
	})

	t.Run("missing name is a validation error", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/v1/categories", map[string]string{})
		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w, nil)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "name", resp.Error.Details[0].Field)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/v1/categories", "{not json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("get by id", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/categories/"+dairy.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got catalogapp.CategoryResponse
		decode(t, w, &got)
		assert.Equal(t, "Dairy", got.Name)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/categories/nope", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/categories/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, decode(t, w, nil).Error.Code)
	})

	t.Run("rename and list", func(t *testing.T) {
		w := api.do(t, http.MethodPut, "/api/v1/categories/"+dairy.ID.String(), map[string]string{"name": "Milk Products"})
		require.Equal(t, http.StatusOK, w.Code)

		w = api.do(t, http.MethodGet, "/api/v1/categories", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var list []catalogapp.CategoryResponse
		resp := decode(t, w, &list)
		require.Len(t, list, 1)
		assert.Equal(t, "Milk Products", list[0].Name)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(1), resp.Meta.Total)
	})

	t.Run("delete", func(t *testing.T) {
		w := api.do(t, http.MethodDelete, "/api/v1/categories/"+dairy.ID.String(), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = api.do(t, http.MethodGet, "/api/v1/categories/"+dairy.ID.String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestProductHandler_Create(t *testing.T) {
	api := newTestAPI(t)
	api.createCategory(t, "Dairy")
	api.createCategory(t, "Fresh")

	t.Run("with repeated and comma separated categories", func(t *testing.T) {
		body, ct := productForm(t, map[string][]string{
			"name":        {"Milk"},
			"description": {"Full cream"},
			"categories":  {"Dairy, Fresh"},
		}, "milk.png", "milk-2.png")
		w := api.postForm(t, http.MethodPost, "/api/v1/products", body, ct)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var p catalogapp.ProductResponse
		decode(t, w, &p)
		assert.Equal(t, "Milk", p.Name)
		assert.ElementsMatch(t, []string{"Dairy", "Fresh"}, p.Categories)
		require.Len(t, p.Images, 2)
		assert.Contains(t, p.Images[0].URL, "/uploads/")
	})

	t.Run("unknown category writes nothing", func(t *testing.T) {
		body, ct := productForm(t, map[string][]string{
			"name": {"Cheese"}, "description": {"Cheddar"}, "categories": {"Dairy", "Nope"},
		}, "cheese.png")
		w := api.postForm(t, http.MethodPost, "/api/v1/products", body, ct)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode(t, w, nil).Error.Message, "Nope")

		w = api.do(t, http.MethodGet, "/api/v1/products?search=Cheese", nil)
		var list []catalogapp.ProductResponse
		decode(t, w, &list)
		assert.Empty(t, list)
	})

	t.Run("images are required", func(t *testing.T) {
		body, ct := productForm(t, map[string][]string{"name": {"Bread"}, "description": {"Loaf"}})
		w := api.postForm(t, http.MethodPost, "/api/v1/products", body, ct)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects disguised file", func(t *testing.T) {
		formBody, ct := productForm(t, map[string][]string{"name": {"Bread"}, "description": {"Loaf"}}, "bread.exe")
		w := api.postForm(t, http.MethodPost, "/api/v1/products", formBody, ct)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("json body is rejected", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/v1/products", map[string]string{"name": "x"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeBadRequest, decode(t, w, nil).Error.Code)
	})
}

func TestProductHandler_UpdateAndDelete(t *testing.T) {
	api := newTestAPI(t)
	api.createCategory(t, "Dairy")
	api.createCategory(t, "Bakery")
	p := api.createProduct(t, "Milk", "Dairy")

	body, ct := productForm(t, map[string][]string{"description": {"Skimmed"}, "categories": {"Bakery"}})
	w := api.postForm(t, http.MethodPut, "/api/v1/products/"+p.ID.String(), body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated catalogapp.ProductResponse
	decode(t, w, &updated)
	assert.Equal(t, "Milk", updated.Name, "absent name is unchanged")
	assert.Equal(t, "Skimmed", updated.Description)
	assert.Equal(t, []string{"Bakery"}, updated.Categories)
	assert.Len(t, updated.Images, 1, "images kept when none uploaded")

	w = api.do(t, http.MethodDelete, "/api/v1/products/"+p.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = api.do(t, http.MethodGet, "/api/v1/products/"+p.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a, b", " c ", ""}))
	assert.Nil(t, splitList(nil))
}
