package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProduct(t *testing.T) {
	srv, _, products, _ := newTestServer(t)
	body := `{"name":"  Hammer ","description":"claw","status":"1","category":"tools"}`

	req := httptest.NewRequest(http.MethodPost, "/product", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeEnvelope(t, rec)
	data := resp["data"].(map[string]any)
	assert.Equal(t, "Hammer", data["name"])
	require.Len(t, products.byID, 1)
}

func TestCreateProductValidation(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/product", strings.NewReader(`{"description":"no name"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Contains(t, resp["message"], "name is required")
}

func TestCreateProductDuplicate(t *testing.T) {
	srv, _, products, _ := newTestServer(t)
	products.dup = true
	body := `{"name":"Hammer","status":"1","category":"tools"}`

	req := httptest.NewRequest(http.MethodPost, "/product", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetProduct(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	seedProduct(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/product/1", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, "Hammer", resp["data"].(map[string]any)["name"])
}

func TestGetProductNotFound(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/product/99", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProductBadID(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/product/abc", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProductPartial(t *testing.T) {
	srv, _, products, _ := newTestServer(t)
	seedProduct(t, srv)

	req := httptest.NewRequest(http.MethodPut, "/product/1", strings.NewReader(`{"description":"heavy duty"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	updated := products.byID[1]
	assert.Equal(t, "heavy duty", updated.Description)
	assert.Equal(t, "Hammer", updated.Name, "omitted fields keep their value")
}

func TestDeleteProduct(t *testing.T) {
	srv, _, products, _ := newTestServer(t)
	seedProduct(t, srv)

	req := httptest.NewRequest(http.MethodDelete, "/product/1", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, products.byID)

	req = httptest.NewRequest(http.MethodDelete, "/product/1", nil)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListProducts(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	seedProduct(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/product?page=1&limit=10", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Len(t, resp["data"].([]any), 1)
}

func seedProduct(t *testing.T, srv *Server) {
	t.Helper()
	body := `{"name":"Hammer","description":"claw","status":"1","category":"tools"}`
	req := httptest.NewRequest(http.MethodPost, "/product", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
}
