package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-presupuesto/internal/cache"
	"github.com/noah-isme/backend-presupuesto/internal/common"
	dbgen "github.com/noah-isme/backend-presupuesto/internal/db/gen"
)

// DefaultCategory is assigned to products created without a category.
const DefaultCategory = "General"

type queryProvider interface {
	CountProducts(ctx context.Context, arg dbgen.CountProductsParams) (int64, error)
	ListProducts(ctx context.Context, arg dbgen.ListProductsParams) ([]dbgen.Product, error)
	GetProduct(ctx context.Context, id int64) (dbgen.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) ([]dbgen.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	CreateProduct(ctx context.Context, arg dbgen.CreateProductParams) (dbgen.Product, error)
	UpdateProduct(ctx context.Context, arg dbgen.UpdateProductParams) (dbgen.Product, error)
	UpsertProduct(ctx context.Context, arg dbgen.UpsertProductParams) (dbgen.Product, error)
	DeleteProduct(ctx context.Context, id int64) (int64, error)
	SyncProductSequence(ctx context.Context) error
}

// Service orchestrates catalog queries, DTO assembly, and caching.
type Service struct {
	queries      queryProvider
	cache        *cache.JSON
	lock         Locker
	defaultLimit int
}

// Locker serialises bulk writes across API instances.
type Locker interface {
	WithLock(ctx context.Context, name string, ttl time.Duration, fn func(context.Context) error) error
}

// ServiceConfig groups Service dependencies. Lock is optional.
type ServiceConfig struct {
	Queries      queryProvider
	Cache        *cache.JSON
	Lock         Locker
	DefaultLimit int
}

// Product is the public product payload.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"imageUrl"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ProductInput carries the writable product fields.
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	ImageURL    string
}

// ListParams captures filters for product listing.
type ListParams struct {
	Search   string
	Category string
	Page     int
	Limit    int
}

// ProductListResult contains list data and pagination metadata.
type ProductListResult struct {
	Items []Product
	Total int64
	Page  int
	Limit int
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("catalog: queries provider is required")
	}
	limit := cfg.DefaultLimit
	if limit < 1 {
		limit = 20
	}
	if limit > common.MaxPerPage {
		limit = common.MaxPerPage
	}
	return &Service{queries: cfg.Queries, cache: cfg.Cache, lock: cfg.Lock, defaultLimit: limit}, nil
}

// DefaultLimit is the page size used when the client does not send one.
func (s *Service) DefaultLimit() int {
	return s.defaultLimit
}

// ListProducts returns a filtered page of products ordered by name.
func (s *Service) ListProducts(ctx context.Context, params ListParams) (ProductListResult, error) {
	if params.Limit < 1 {
		params.Limit = s.defaultLimit
	}
	params.Page, params.Limit = common.ClampPage(params.Page, params.Limit)
	search := optionalText(params.Search)
	category := optionalText(params.Category)

	total, err := s.queries.CountProducts(ctx, dbgen.CountProductsParams{Search: search, Category: category})
	if err != nil {
		return ProductListResult{}, fmt.Errorf("count products: %w", err)
	}
	rows, err := s.queries.ListProducts(ctx, dbgen.ListProductsParams{
		Search:      search,
		Category:    category,
		LimitValue:  int32(params.Limit),
		OffsetValue: int32((params.Page - 1) * params.Limit),
	})
	if err != nil {
		return ProductListResult{}, fmt.Errorf("list products: %w", err)
	}
	items := make([]Product, 0, len(rows))
	for _, row := range rows {
		items = append(items, toProduct(row))
	}
	return ProductListResult{Items: items, Total: total, Page: params.Page, Limit: params.Limit}, nil
}

// GetProduct returns a single product, served from Redis when cached.
func (s *Service) GetProduct(ctx context.Context, id int64) (Product, error) {
	key := cache.KeyProduct(id)
	var cached Product
	if ok, err := s.cache.Get(ctx, key, &cached); err == nil && ok {
		return cached, nil
	} else if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("catalog_cache_read_failed")
	}

	row, err := s.queries.GetProduct(ctx, id)
	if err != nil {
		if common.IsNoRows(err) {
			return Product{}, common.NotFound("product not found")
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	product := toProduct(row)
	if err := s.cache.Set(ctx, key, product); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("catalog_cache_write_failed")
	}
	return product, nil
}

// ProductsByID loads the given products keyed by id. Unknown ids are reported together.
func (s *Service) ProductsByID(ctx context.Context, ids []int64) (map[int64]Product, error) {
	out := make(map[int64]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.queries.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	for _, row := range rows {
		out[row.ID] = toProduct(row)
	}
	var missing []int64
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, common.NotFound("products not found").WithDetails(map[string]any{"ids": missing})
	}
	return out, nil
}

// ListCategories returns the distinct product categories.
func (s *Service) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := s.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if rows == nil {
		rows = []string{}
	}
	return rows, nil
}

// CreateProduct validates and stores a new product.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	in, err := normalizeInput(in)
	if err != nil {
		return Product{}, err
	}
	row, err := s.queries.CreateProduct(ctx, dbgen.CreateProductParams{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       int32(in.Stock),
		Category:    in.Category,
		ImageUrl:    in.ImageURL,
	})
	if err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	return toProduct(row), nil
}

// UpdateProduct replaces the writable fields of a product and drops its cache entry.
func (s *Service) UpdateProduct(ctx context.Context, id int64, in ProductInput) (Product, error) {
	in, err := normalizeInput(in)
	if err != nil {
		return Product{}, err
	}
	row, err := s.queries.UpdateProduct(ctx, dbgen.UpdateProductParams{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       int32(in.Stock),
		Category:    in.Category,
		ImageUrl:    in.ImageURL,
	})
	if err != nil {
		if common.IsNoRows(err) {
			return Product{}, common.NotFound("product not found")
		}
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	s.invalidate(ctx, id)
	return toProduct(row), nil
}

// DeleteProduct removes a product and drops its cache entry.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	n, err := s.queries.DeleteProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n == 0 {
		return common.NotFound("product not found")
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *Service) invalidate(ctx context.Context, ids ...int64) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, cache.KeyProduct(id))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("catalog_cache_invalidate_failed")
	}
}

func normalizeInput(in ProductInput) (ProductInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, common.ValidationError("name is required")
	}
	if in.Price.IsNegative() {
		return in, common.ValidationError("price must be greater than or equal to 0")
	}
	if in.Stock < 0 {
		return in, common.ValidationError("stock must be greater than or equal to 0")
	}
	if in.Stock > math.MaxInt32 {
		return in, common.ValidationError(fmt.Sprintf("stock must be at most %d", math.MaxInt32))
	}
	in.Price = in.Price.Round(2)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	if in.Category == "" {
		in.Category = DefaultCategory
	}
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	return in, nil
}

func optionalText(value string) pgtype.Text {
	value = strings.TrimSpace(value)
	if value == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: value, Valid: true}
}

func toProduct(row dbgen.Product) Product {
	return Product{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Price:       row.Price,
		Stock:       int(row.Stock),
		Category:    row.Category,
		ImageURL:    row.ImageUrl,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}
