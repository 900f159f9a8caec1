package budget

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-presupuesto/internal/common"
)

func newTestRouter(env testEnv, r Renderer) http.Handler {
	h := &Handler{Svc: env.svc, Renderer: r, Location: time.UTC}
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("X-Test-User") != "" {
				req = req.WithContext(common.WithUserID(req.Context(), req.Header.Get("X-Test-User")))
			}
			next.ServeHTTP(w, req)
		})
	})
	router.Post("/budgets/quote", h.Quote)
	router.Post("/budgets/quote/pdf", h.QuotePDF)
	router.Post("/budgets", h.Create)
	router.Get("/budgets", h.List)
	router.Get("/budgets/{id}", h.Detail)
	router.Get("/budgets/{id}/pdf", h.PDF)
	router.Delete("/budgets/{id}", h.Delete)
	return router
}

func doRequest(router http.Handler, method, path, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("X-Test-User", testUser)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestQuoteHandler(t *testing.T) {
	router := newTestRouter(newTestEnv(), &fakeRenderer{})

	rec := doRequest(router, http.MethodPost, "/budgets/quote",
		`{"items":[{"productId":1,"quantity":2}],"payments":[20],"advance":"50","mode":"aggregate"}`, false)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data struct {
			Mode  string `json:"mode"`
			Lines []struct {
				Total string `json:"totalAmount"`
			} `json:"lines"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "aggregate", body.Data.Mode)
	require.Len(t, body.Data.Lines, 1)
	require.Equal(t, "142.5", body.Data.Lines[0].Total)

	rec = doRequest(router, http.MethodPost, "/budgets/quote", `{"mode":`, false)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(router, http.MethodPost, "/budgets/quote", `{"payments":[5],"items":[{"productId":1,"quantity":1}]}`, false)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "PAYMENT_METHOD_UNAVAILABLE")
}

func TestCreateAndFetchHandlers(t *testing.T) {
	env := newTestEnv()
	router := newTestRouter(env, &fakeRenderer{})

	rec := doRequest(router, http.MethodPost, "/budgets", `{"vendedorId":3,"payments":[20]}`, false)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(router, http.MethodPost, "/budgets", `{"vendedorId":3,"payments":[20]}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), `"id":1`)

	rec = doRequest(router, http.MethodGet, "/budgets/1", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"paymentIds":[20]`)

	rec = doRequest(router, http.MethodGet, "/budgets/abc", "", true)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(router, http.MethodGet, "/budgets/1/pdf", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "presupuesto-1.pdf")
	require.Equal(t, "%PDF-1.3 fake", rec.Body.String())

	rec = doRequest(router, http.MethodDelete, "/budgets/1", "", true)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = doRequest(router, http.MethodGet, "/budgets/1", "", true)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuotePDFHandler(t *testing.T) {
	router := newTestRouter(newTestEnv(), &fakeRenderer{})
	rec := doRequest(router, http.MethodPost, "/budgets/quote/pdf", `{"payments":[20]}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
}

func TestListHandlerDates(t *testing.T) {
	env := newTestEnv()
	router := newTestRouter(env, &fakeRenderer{})

	rec := doRequest(router, http.MethodGet, "/budgets?dateFrom=2024-03-01&dateTo=2024-03-31&sellerId=3&category=Lavado&page=1&limit=10", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "0", rec.Header().Get("X-Total-Count"))

	p := env.store.lastList
	require.True(t, p.DateFrom.Time.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	require.True(t, p.DateTo.Time.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, int64(3), p.SellerID.Int64)
	require.Equal(t, int32(10), p.LimitValue)

	rec = doRequest(router, http.MethodGet, "/budgets?dateTo=2024-03-31T15:00:00Z", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.store.lastList.DateTo.Time.Equal(time.Date(2024, 3, 31, 15, 0, 0, 0, time.UTC)))

	rec = doRequest(router, http.MethodGet, "/budgets?dateFrom=marzo", "", true)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(router, http.MethodGet, "/budgets?vendedorId=x", "", true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseDate(t *testing.T) {
	ts, dateOnly, err := ParseDate("", time.UTC)
	require.NoError(t, err)
	require.False(t, dateOnly)
	require.True(t, ts.IsZero())

	loc := time.FixedZone("ART", -3*3600)
	ts, dateOnly, err = ParseDate("2024-03-05", loc)
	require.NoError(t, err)
	require.True(t, dateOnly)
	require.Equal(t, loc, ts.Location())
}
