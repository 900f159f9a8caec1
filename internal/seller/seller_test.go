package seller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-presupuesto/internal/common"
	dbgen "github.com/noah-isme/backend-presupuesto/internal/db/gen"
)

type fakeQueries struct {
	sellers map[int64]dbgen.Seller
	nextID  int64
}

func newFakeQueries() *fakeQueries {
	return &fakeQueries{sellers: make(map[int64]dbgen.Seller)}
}

func (f *fakeQueries) CreateSeller(_ context.Context, arg dbgen.CreateSellerParams) (dbgen.Seller, error) {
	for _, s := range f.sellers {
		if s.SellerNumber == arg.SellerNumber {
			return dbgen.Seller{}, &pgconn.PgError{Code: "23505"}
		}
	}
	f.nextID++
	row := dbgen.Seller{ID: f.nextID, FirstName: arg.FirstName, LastName: arg.LastName, SellerNumber: arg.SellerNumber, Active: arg.Active}
	f.sellers[row.ID] = row
	return row, nil
}

func (f *fakeQueries) GetSeller(_ context.Context, id int64) (dbgen.Seller, error) {
	row, ok := f.sellers[id]
	if !ok {
		return dbgen.Seller{}, pgx.ErrNoRows
	}
	return row, nil
}

func (f *fakeQueries) ListSellers(_ context.Context, includeInactive bool) ([]dbgen.Seller, error) {
	var out []dbgen.Seller
	for _, s := range f.sellers {
		if s.Active || includeInactive {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SellerNumber < out[j].SellerNumber })
	return out, nil
}

func (f *fakeQueries) SetSellerActive(_ context.Context, arg dbgen.SetSellerActiveParams) (dbgen.Seller, error) {
	row, ok := f.sellers[arg.ID]
	if !ok {
		return dbgen.Seller{}, pgx.ErrNoRows
	}
	row.Active = arg.Active
	f.sellers[arg.ID] = row
	return row, nil
}

func TestSellerLifecycle(t *testing.T) {
	svc := &Service{Q: newFakeQueries()}
	ctx := context.Background()

	s, err := svc.Create(ctx, CreateInput{FirstName: "Lucía", LastName: "Fernández", SellerNumber: "002"})
	require.NoError(t, err)
	require.True(t, s.Active)
	require.Equal(t, "Lucía Fernández", s.FullName())

	_, err = svc.Create(ctx, CreateInput{FirstName: "Otro", LastName: "Vendedor", SellerNumber: "002"})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, http.StatusConflict, appErr.HTTPStatus)

	_, err = svc.RequireActive(ctx, s.ID)
	require.NoError(t, err)

	_, err = svc.SetActive(ctx, s.ID, false)
	require.NoError(t, err)

	_, err = svc.RequireActive(ctx, s.ID)
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "SELLER_INACTIVE", appErr.Code)

	active, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Empty(t, active)
	all, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)

	_, err = svc.SetActive(ctx, 42, true)
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, http.StatusNotFound, appErr.HTTPStatus)
}

func TestSellerHandlers(t *testing.T) {
	h := &Handler{Svc: &Service{Q: newFakeQueries()}, Validate: validator.New()}
	r := chi.NewRouter()
	r.Get("/sellers", h.List)
	r.Post("/sellers", h.Create)
	r.Patch("/sellers/{id}/activate", h.Activate)
	r.Patch("/sellers/{id}/deactivate", h.Deactivate)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sellers", strings.NewReader(`{"firstName":"Juan"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sellers", strings.NewReader(`{"firstName":"Juan","lastName":"Pérez","sellerNumber":"001"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/sellers/1/deactivate", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"active":false`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sellers?all=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"sellerNumber":"001"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/sellers/9/activate", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
