package catalog

import (
	"bytes"
	"context"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/backend-presupuesto/internal/cache"
	"github.com/noah-isme/backend-presupuesto/internal/common"
	dbgen "github.com/noah-isme/backend-presupuesto/internal/db/gen"
	"github.com/noah-isme/backend-presupuesto/internal/lock"
)

func product(id int64, name, price, category string, stock int32) dbgen.Product {
	return dbgen.Product{ID: id, Name: name, Price: decimal.RequireFromString(price), Category: category, Stock: stock}
}

func newTestService(t *testing.T, q *fakeQueries) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	svc, err := NewService(ServiceConfig{Queries: q, Cache: cache.New(client, time.Minute), DefaultLimit: 2})
	require.NoError(t, err)
	return svc, mr
}

func TestListProductsPaginatesAndFilters(t *testing.T) {
	q := newFakeQueries(
		product(1, "Heladera", "500000", "Línea blanca", 3),
		product(2, "Lavarropas", "350000", "Línea blanca", 1),
		product(3, "Televisor", "420000", "Audio y video", 5),
	)
	svc, _ := newTestService(t, q)
	ctx := context.Background()

	res, err := svc.ListProducts(ctx, ListParams{Page: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), res.Total)
	require.Len(t, res.Items, 1)
	require.Equal(t, "Televisor", res.Items[0].Name)

	res, err = svc.ListProducts(ctx, ListParams{Category: "Línea blanca", Search: "lava", Limit: 10})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	require.Equal(t, int64(2), res.Items[0].ID)

	res, err = svc.ListProducts(ctx, ListParams{Page: math.MaxInt})
	require.NoError(t, err)
	require.Equal(t, common.MaxPage, res.Page)
	require.Empty(t, res.Items)

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Audio y video", "Línea blanca"}, cats)
}

func TestGetProductUsesCacheAndInvalidates(t *testing.T) {
	q := newFakeQueries(product(1, "Heladera", "500000", "Línea blanca", 3))
	svc, mr := newTestService(t, q)
	ctx := context.Background()

	p, err := svc.GetProduct(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Heladera", p.Name)
	require.True(t, mr.Exists("catalog:products:detail:1"))

	_, err = svc.GetProduct(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, q.getCalls)

	_, err = svc.UpdateProduct(ctx, 1, ProductInput{Name: "Heladera No Frost", Price: decimal.NewFromInt(600000), Stock: 2})
	require.NoError(t, err)
	require.False(t, mr.Exists("catalog:products:detail:1"))

	p, err = svc.GetProduct(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Heladera No Frost", p.Name)
	require.Equal(t, DefaultCategory, p.Category)

	require.NoError(t, svc.DeleteProduct(ctx, 1))
	require.False(t, mr.Exists("catalog:products:detail:1"))

	err = svc.DeleteProduct(ctx, 1)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, http.StatusNotFound, appErr.HTTPStatus)
}

func TestCreateProductValidates(t *testing.T) {
	svc, _ := newTestService(t, newFakeQueries())
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, ProductInput{Name: " ", Price: decimal.NewFromInt(1)})
	require.Error(t, err)
	_, err = svc.CreateProduct(ctx, ProductInput{Name: "X", Price: decimal.NewFromInt(-1)})
	require.Error(t, err)
	_, err = svc.CreateProduct(ctx, ProductInput{Name: "X", Stock: -1})
	require.Error(t, err)
	_, err = svc.CreateProduct(ctx, ProductInput{Name: "X", Stock: math.MaxInt32 + 1})
	require.Error(t, err)
	_, err = svc.UpdateProduct(ctx, 1, ProductInput{Name: "X", Stock: 1 << 32})
	require.Error(t, err)

	p, err := svc.CreateProduct(ctx, ProductInput{Name: "Microondas", Price: decimal.RequireFromString("99999.999"), Stock: 4})
	require.NoError(t, err)
	require.Equal(t, "100000", p.Price.String())
}

func TestProductsByIDReportsMissing(t *testing.T) {
	svc, _ := newTestService(t, newFakeQueries(product(1, "Heladera", "1", "x", 1)))

	got, err := svc.ProductsByID(context.Background(), []int64{1})
	require.NoError(t, err)
	require.Contains(t, got, int64(1))

	_, err = svc.ProductsByID(context.Background(), []int64{1, 5, 6})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, map[string]any{"ids": []int64{5, 6}}, appErr.Details)
}

func TestBulkUpsertReportsInvalidRows(t *testing.T) {
	q := newFakeQueries()
	q.failName = "Roto"
	svc, _ := newTestService(t, q)

	name := func(s string) *string { return &s }
	price := func(s string) *decimal.Decimal { d := decimal.RequireFromString(s); return &d }
	stock := func(n int) *int { return &n }
	id := func(n int64) *int64 { return &n }

	res, err := svc.BulkUpsert(context.Background(), []BulkRow{
		{ID: id(50), Name: name("Freezer"), Price: price("10"), Stock: stock(1)},
		{Name: name("Aire"), Price: price("20"), Stock: stock(2)},
		{Name: name("Sin precio"), Stock: stock(2)},
		{Name: name("Negativo"), Price: price("-1"), Stock: stock(2)},
		{Name: name("Roto"), Price: price("1"), Stock: stock(1)},
	})
	require.NoError(t, err)
	require.Equal(t, 5, res.TotalProcessed)
	require.Equal(t, 2, res.SuccessCount)
	require.Equal(t, 3, res.ErrorCount)
	require.Equal(t, []int{3, 4, 5}, []int{res.Errors[0].Row, res.Errors[1].Row, res.Errors[2].Row})
	require.Equal(t, 1, q.syncCalls)
	require.Contains(t, q.products, int64(50))
}

func TestImportXLSXMapsHeaders(t *testing.T) {
	q := newFakeQueries()
	svc, _ := newTestService(t, q)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"ID", "Detalle", "Precio", "Stock", "Rubro"},
		{10, "Cocina 4 hornallas", "$ 1.234,50", 3, "Cocina"},
		{nil, "Termotanque", "899.90", 2, ""},
		{nil, "Sin stock", "10", "", ""},
		{11, "Lavarropas", 1234.5, 1, ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	thousands, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "C5", "C5", thousands))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	res, err := svc.ImportXLSX(context.Background(), &buf)
	require.NoError(t, err)
	require.Equal(t, 4, res.TotalProcessed)
	require.Equal(t, 3, res.SuccessCount)
	require.Equal(t, 1, res.ErrorCount)

	cocina := q.products[10]
	require.Equal(t, "Cocina 4 hornallas", cocina.Name)
	require.Equal(t, "1234.5", cocina.Price.String())
	require.Equal(t, "Cocina", cocina.Category)
	require.Equal(t, int32(3), cocina.Stock)
	require.Equal(t, "1234.5", q.products[11].Price.String())

	_, err = svc.ImportXLSX(context.Background(), bytes.NewReader([]byte("not a workbook")))
	require.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"1234.56":     "1234.56",
		"$ 1.234,56":  "1234.56",
		"12,5":        "12.5",
		"1.000.000,0": "1000000",
		"1,234.50":    "1234.5",
		"$ 1.234.567": "1234567",
		"0.125":       "0.125",
		"1234.567":    "1234.567",
		"-12,50":      "-12.5",
	}
	for in, want := range cases {
		got, err := ParseAmount(in)
		require.NoError(t, err, in)
		require.True(t, got.Equal(decimal.RequireFromString(want)), in)
	}
	for _, in := range []string{"abc", "", "1.234", "1,234", "12.34.5", "1,2.3,4", "1.23,4.5"} {
		_, err := ParseAmount(in)
		require.Error(t, err, in)
	}
}

func TestBulkUpsertHonoursLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	q := newFakeQueries()
	locker := lock.Locker{R: client, Prefix: "lock:", RetryBackoff: 5 * time.Millisecond, Wait: 30 * time.Millisecond}
	svc, err := NewService(ServiceConfig{Queries: q, Lock: locker})
	require.NoError(t, err)

	name, p, stock := "Freezer", decimal.NewFromInt(10), 1
	rows := []BulkRow{{Name: &name, Price: &p, Stock: &stock}}

	res, err := svc.BulkUpsert(context.Background(), rows)
	require.NoError(t, err)
	require.Equal(t, 1, res.SuccessCount)
	require.False(t, mr.Exists("lock:"+BulkLockName))

	require.NoError(t, mr.Set("lock:"+BulkLockName, "other-instance"))
	_, err = svc.BulkUpsert(context.Background(), rows)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, http.StatusConflict, appErr.HTTPStatus)
	require.Equal(t, "BULK_IN_PROGRESS", appErr.Code)
}
