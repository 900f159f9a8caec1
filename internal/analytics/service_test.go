package analytics_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-presupuesto/internal/analytics"
	"github.com/noah-isme/backend-presupuesto/internal/cache"
	dbgen "github.com/noah-isme/backend-presupuesto/internal/db/gen"
)

type stubQueries struct {
	calls int
	last  dbgen.BudgetStatsParams
}

func (s *stubQueries) BudgetsBySeller(_ context.Context, arg dbgen.BudgetStatsParams) ([]dbgen.BudgetsBySellerRow, error) {
	s.calls++
	s.last = arg
	return []dbgen.BudgetsBySellerRow{{SellerID: 3, SellerName: "Lucía Fernández", Total: 4}}, nil
}

func (s *stubQueries) TopBudgetProducts(context.Context, dbgen.BudgetStatsParams) ([]dbgen.TopBudgetProductsRow, error) {
	return []dbgen.TopBudgetProductsRow{{ProductName: "Heladera", Quantity: 7}}, nil
}

func (s *stubQueries) BudgetQuantityByCategory(context.Context, dbgen.BudgetStatsParams) ([]dbgen.BudgetQuantityByCategoryRow, error) {
	return nil, nil
}

func (s *stubQueries) PaymentMethodUsage(context.Context, dbgen.BudgetStatsParams) ([]dbgen.PaymentMethodUsageRow, error) {
	return []dbgen.PaymentMethodUsageRow{{PaymentID: 20, Description: "Efectivo", Uses: 4}}, nil
}

func newService(t *testing.T) (*analytics.Service, *stubQueries, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	queries := &stubQueries{}
	return &analytics.Service{Q: queries, Cache: cache.New(rdb, time.Minute)}, queries, mr
}

func TestBudgetStatsCached(t *testing.T) {
	svc, queries, mr := newService(t)
	ctx := context.Background()
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	stats, err := svc.BudgetStats(ctx, from, to)
	require.NoError(t, err)
	require.Equal(t, int64(4), stats.BySeller[0].Total)
	require.Equal(t, []analytics.CategoryQuantity{}, stats.ByCategory)
	require.True(t, queries.last.DateFrom.Valid)

	again, err := svc.BudgetStats(ctx, from, to)
	require.NoError(t, err)
	require.Equal(t, 1, queries.calls)
	require.Equal(t, "Heladera", again.TopProducts[0].ProductName)
	require.True(t, mr.Exists(cache.KeyBudgetStats(from, to)))

	removed, err := svc.Invalidate(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, err = svc.BudgetStats(ctx, from, to)
	require.NoError(t, err)
	require.Equal(t, 2, queries.calls)
}

func TestBudgetStatsOpenRange(t *testing.T) {
	svc, queries, _ := newService(t)
	stats, err := svc.BudgetStats(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Nil(t, stats.From)
	require.False(t, queries.last.DateFrom.Valid)
	require.False(t, queries.last.DateTo.Valid)
}

func TestBudgetStatsHandler(t *testing.T) {
	svc, queries, _ := newService(t)
	h := &analytics.Handler{Svc: svc, Location: time.UTC}

	rec := httptest.NewRecorder()
	h.BudgetStats(rec, httptest.NewRequest(http.MethodGet, "/budgets/stats?dateFrom=2024-03-01&dateTo=2024-03-31", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, queries.last.DateTo.Time.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))

	var body struct {
		Data struct {
			Payments []struct {
				Description string `json:"description"`
			} `json:"paymentMethods"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Efectivo", body.Data.Payments[0].Description)

	rec = httptest.NewRecorder()
	h.BudgetStats(rec, httptest.NewRequest(http.MethodGet, "/budgets/stats?dateFrom=2024-04-01&dateTo=2024-03-01", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.BudgetStats(rec, httptest.NewRequest(http.MethodGet, "/budgets/stats?dateFrom=ayer", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
