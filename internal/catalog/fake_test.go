package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	dbgen "github.com/noah-isme/backend-presupuesto/internal/db/gen"
)

type fakeQueries struct {
	products  map[int64]dbgen.Product
	nextID    int64
	getCalls  int
	syncCalls int
	failName  string
}

func newFakeQueries(rows ...dbgen.Product) *fakeQueries {
	f := &fakeQueries{products: make(map[int64]dbgen.Product)}
	for _, row := range rows {
		f.products[row.ID] = row
		if row.ID > f.nextID {
			f.nextID = row.ID
		}
	}
	return f
}

func (f *fakeQueries) filtered(search, category string) []dbgen.Product {
	var out []dbgen.Product
	for _, p := range f.products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (f *fakeQueries) CountProducts(_ context.Context, arg dbgen.CountProductsParams) (int64, error) {
	return int64(len(f.filtered(arg.Search.String, arg.Category.String))), nil
}

func (f *fakeQueries) ListProducts(_ context.Context, arg dbgen.ListProductsParams) ([]dbgen.Product, error) {
	rows := f.filtered(arg.Search.String, arg.Category.String)
	start := int(arg.OffsetValue)
	if start > len(rows) {
		return nil, nil
	}
	end := start + int(arg.LimitValue)
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], nil
}

func (f *fakeQueries) GetProduct(_ context.Context, id int64) (dbgen.Product, error) {
	f.getCalls++
	p, ok := f.products[id]
	if !ok {
		return dbgen.Product{}, pgx.ErrNoRows
	}
	return p, nil
}

func (f *fakeQueries) GetProductsByIDs(_ context.Context, ids []int64) ([]dbgen.Product, error) {
	var out []dbgen.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeQueries) ListCategories(context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, p := range f.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeQueries) CreateProduct(_ context.Context, arg dbgen.CreateProductParams) (dbgen.Product, error) {
	if f.failName != "" && arg.Name == f.failName {
		return dbgen.Product{}, errors.New("boom")
	}
	f.nextID++
	p := dbgen.Product{ID: f.nextID, Name: arg.Name, Description: arg.Description, Price: arg.Price, Stock: arg.Stock, Category: arg.Category, ImageUrl: arg.ImageUrl}
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeQueries) UpdateProduct(_ context.Context, arg dbgen.UpdateProductParams) (dbgen.Product, error) {
	if _, ok := f.products[arg.ID]; !ok {
		return dbgen.Product{}, pgx.ErrNoRows
	}
	p := dbgen.Product{ID: arg.ID, Name: arg.Name, Description: arg.Description, Price: arg.Price, Stock: arg.Stock, Category: arg.Category, ImageUrl: arg.ImageUrl}
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeQueries) UpsertProduct(_ context.Context, arg dbgen.UpsertProductParams) (dbgen.Product, error) {
	p := dbgen.Product{ID: arg.ID, Name: arg.Name, Description: arg.Description, Price: arg.Price, Stock: arg.Stock, Category: arg.Category, ImageUrl: arg.ImageUrl}
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeQueries) DeleteProduct(_ context.Context, id int64) (int64, error) {
	if _, ok := f.products[id]; !ok {
		return 0, nil
	}
	delete(f.products, id)
	return 1, nil
}

func (f *fakeQueries) SyncProductSequence(context.Context) error {
	f.syncCalls++
	for id := range f.products {
		if id > f.nextID {
			f.nextID = id
		}
	}
	return nil
}
