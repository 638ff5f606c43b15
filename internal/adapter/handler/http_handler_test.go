package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront-cart/internal/core/domain"
)

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) CartView {
	t.Helper()
	var view CartView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	return view
}

func TestHTTP_HealthCheck(t *testing.T) {
	cart, _ := newTestCart(t)
	h := NewHTTPHandler(cart, newMockCatalog()).Routes()

	rec := doRequest(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHTTP_AddItemAndGetCart(t *testing.T) {
	cart, repo := newTestCart(t)
	h := NewHTTPHandler(cart, newMockCatalog()).Routes()

	rec := doRequest(t, h, http.MethodPost, "/api/cart/items", `{"product_id":1,"quantity":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/cart/items", `{"product_id":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeCart(t, rec)

	require.Len(t, view.Items, 2)
	assert.Equal(t, int64(1), view.Items[0].ID)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.InDelta(t, 90.0, view.Items[0].EffectivePrice, 1e-9)
	assert.InDelta(t, 180.0, view.Items[0].LineTotal, 1e-9)
	assert.Equal(t, "₦139,500", view.Items[0].FormattedPrice)
	assert.Equal(t, 1, view.Items[1].Quantity)
	assert.Equal(t, 3, view.Count)
	assert.InDelta(t, 230.0, view.Total, 1e-9)
	assert.Equal(t, "₦356,500", view.FormattedTotal)

	stored, err := domain.DecodeLineItems(repo.Raw())
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestHTTP_AddItem_Validation(t *testing.T) {
	cart, _ := newTestCart(t)
	h := NewHTTPHandler(cart, newMockCatalog()).Routes()

	cases := map[string]string{
		"bad json":          `{`,
		"missing product":   `{"quantity":1}`,
		"zero quantity":     `{"product_id":1,"quantity":0}`,
		"negative quantity": `{"product_id":1,"quantity":-3}`,
	}
	for name, body := range cases {
		rec := doRequest(t, h, http.MethodPost, "/api/cart/items", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
	assert.Equal(t, 0, cart.Count())
}

func TestHTTP_AddItem_UnknownProduct(t *testing.T) {
	cart, _ := newTestCart(t)
	h := NewHTTPHandler(cart, newMockCatalog()).Routes()

	rec := doRequest(t, h, http.MethodPost, "/api/cart/items", `{"product_id":99}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "product_not_found")
}

func TestHTTP_CatalogUnavailable(t *testing.T) {
	cart, _ := newTestCart(t)
	cat := newMockCatalog()
	cat.err = errCatalogDown
	h := NewHTTPHandler(cart, cat).Routes()

	rec := doRequest(t, h, http.MethodGet, "/api/products", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/cart/items", `{"product_id":1}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHTTP_UpdateQuantity(t *testing.T) {
	cart, _ := newTestCart(t)
	h := NewHTTPHandler(cart, newMockCatalog()).Routes()
	doRequest(t, h, http.MethodPost, "/api/cart/items", `{"product_id":1}`)

	rec := doRequest(t, h, http.MethodPut, "/api/cart/items/1", `{"quantity":4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, decodeCart(t, rec).Count)

	// rejected quantities leave the cart unchanged without an error
	rec = doRequest(t, h, http.MethodPut, "/api/cart/items/1", `{"quantity":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, decodeCart(t, rec).Count)

	rec = doRequest(t, h, http.MethodPut, "/api/cart/items/abc", `{"quantity":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTP_RemoveAndClear(t *testing.T) {
	cart, repo := newTestCart(t)
	h := NewHTTPHandler(cart, newMockCatalog()).Routes()
	doRequest(t, h, http.MethodPost, "/api/cart/items", `{"product_id":1}`)
	doRequest(t, h, http.MethodPost, "/api/cart/items", `{"product_id":2}`)

	rec := doRequest(t, h, http.MethodDelete, "/api/cart/items/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeCart(t, rec)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(2), view.Items[0].ID)

	rec = doRequest(t, h, http.MethodDelete, "/api/cart/items/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodDelete, "/api/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view = decodeCart(t, rec)
	assert.Empty(t, view.Items)
	assert.Equal(t, 0, view.Count)
	assert.Equal(t, "[]", string(repo.Raw()))
}

func TestHTTP_Products(t *testing.T) {
	cart, _ := newTestCart(t)
	h := NewHTTPHandler(cart, newMockCatalog()).Routes()

	rec := doRequest(t, h, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var products []domain.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	assert.Len(t, products, 2)

	rec = doRequest(t, h, http.MethodGet, "/api/products/search?q=lip", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	assert.Len(t, products, 1)

	rec = doRequest(t, h, http.MethodGet, "/api/products/2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/products/404", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
