package catalog

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestRouter(t *testing.T, q *fakeQueries) http.Handler {
	t.Helper()
	svc, _ := newTestService(t, q)
	h := NewHandler(HandlerConfig{Service: svc, Validate: validator.New()})
	r := chi.NewRouter()
	r.Get("/products", h.Products)
	r.Get("/products/{id}", h.ProductDetail)
	r.Post("/products", h.Create)
	r.Put("/products/{id}", h.Update)
	r.Delete("/products/{id}", h.Delete)
	r.Post("/products/bulk", h.Bulk)
	r.Post("/products/import", h.Import)
	r.Get("/categories", h.Categories)
	return r
}

func TestProductHandlers(t *testing.T) {
	router := newTestRouter(t, newFakeQueries(product(1, "Heladera", "500000", "Línea blanca", 3)))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products?limit=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "1", rec.Header().Get("X-Total-Count"))
	var list struct {
		Data       []Product `json:"data"`
		Pagination struct {
			PerPage int `json:"per_page"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	require.Equal(t, 1, list.Pagination.PerPage)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"price":"500000"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/99", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{"price":"10"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{"name":"Ventilador","price":"15999.90","stock":7}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"category":"General"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/products/1", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products/bulk", strings.NewReader(`[{"name":"A","price":1,"stock":1},{"name":"B"}]`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"successCount":1`)
	require.Contains(t, rec.Body.String(), `"errorCount":1`)
}

func TestImportHandler(t *testing.T) {
	router := newTestRouter(t, newFakeQueries())

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"nombre", "precio", "stock"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Plancha", "25000", 4}))
	var workbook bytes.Buffer
	require.NoError(t, f.Write(&workbook))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "productos.xlsx")
	require.NoError(t, err)
	_, err = part.Write(workbook.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/products/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"successCount":1`)

	req = httptest.NewRequest(http.MethodPost, "/products/import", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
