package payment

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func newRouter(svc *Service) http.Handler {
	h := &Handler{Svc: svc, Validate: validator.New()}
	r := chi.NewRouter()
	r.Get("/payments", h.List)
	r.Post("/payments", h.Create)
	r.Put("/payments/{id}", h.Update)
	return r
}

func TestPaymentHandlers(t *testing.T) {
	router := newRouter(&Service{Q: newFakeQueries(method(1, "Efectivo", "0", "efectivo", 1, StatusActive))})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(`{"description":"Visa 6","rate":"12.5","method":"tarjeta","installments":6}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"status":"pending"`)
	require.Contains(t, rec.Body.String(), `"rate":"12.5"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(`{"rate":1}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/payments?status=active", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Efectivo")
	require.NotContains(t, rec.Body.String(), "Visa 6")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/payments/2", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/payments/2", strings.NewReader(`{"status":"active"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"active"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/payments/abc", strings.NewReader(`{"status":"active"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
