package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-presupuesto/internal/cache"
	dbgen "github.com/noah-isme/backend-presupuesto/internal/db/gen"
	"github.com/noah-isme/backend-presupuesto/internal/obs"
)

// Querier defines the database access required for budget statistics.
type Querier interface {
	BudgetsBySeller(ctx context.Context, arg dbgen.BudgetStatsParams) ([]dbgen.BudgetsBySellerRow, error)
	TopBudgetProducts(ctx context.Context, arg dbgen.BudgetStatsParams) ([]dbgen.TopBudgetProductsRow, error)
	BudgetQuantityByCategory(ctx context.Context, arg dbgen.BudgetStatsParams) ([]dbgen.BudgetQuantityByCategoryRow, error)
	PaymentMethodUsage(ctx context.Context, arg dbgen.BudgetStatsParams) ([]dbgen.PaymentMethodUsageRow, error)
}

// Service provides cached budget statistics.
type Service struct {
	Q     Querier
	Cache *cache.JSON
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SellerCount is the number of budgets issued by a seller.
type SellerCount struct {
	SellerID   int64  `json:"sellerId"`
	SellerName string `json:"sellerName"`
	Total      int64  `json:"total"`
}

// ProductQuantity is the quantity of a product across budgets.
type ProductQuantity struct {
	ProductName string `json:"productName"`
	Quantity    int64  `json:"quantity"`
}

// CategoryQuantity is the quantity of items of a category across budgets.
type CategoryQuantity struct {
	Category string `json:"category"`
	Quantity int64  `json:"quantity"`
}

// PaymentUsage counts how often a payment method was offered.
type PaymentUsage struct {
	PaymentID   int64  `json:"paymentId"`
	Description string `json:"description"`
	Uses        int64  `json:"uses"`
}

// BudgetStats aggregates budgets for a date range. Zero bounds are open.
type BudgetStats struct {
	From        *time.Time         `json:"dateFrom,omitempty"`
	To          *time.Time         `json:"dateTo,omitempty"`
	BySeller    []SellerCount      `json:"bySeller"`
	TopProducts []ProductQuantity  `json:"topProducts"`
	ByCategory  []CategoryQuantity `json:"byCategory"`
	Payments    []PaymentUsage     `json:"paymentMethods"`
}

// BudgetStats returns statistics for budgets created in [from, to).
func (s *Service) BudgetStats(ctx context.Context, from, to time.Time) (BudgetStats, error) {
	if s == nil || s.Q == nil {
		return BudgetStats{}, fmt.Errorf("analytics service not configured")
	}
	key := cache.KeyBudgetStats(from, to)
	var cached BudgetStats
	hit, err := s.Cache.Get(ctx, key, &cached)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("stats_cache_read_failed")
	}
	if hit {
		obs.ObserveStatsCache("hit")
		return cached, nil
	}
	obs.ObserveStatsCache("miss")

	params := dbgen.BudgetStatsParams{DateFrom: bound(from), DateTo: bound(to)}
	stats := BudgetStats{
		BySeller:    []SellerCount{},
		TopProducts: []ProductQuantity{},
		ByCategory:  []CategoryQuantity{},
		Payments:    []PaymentUsage{},
	}
	if !from.IsZero() {
		stats.From = &from
	}
	if !to.IsZero() {
		stats.To = &to
	}

	sellers, err := s.Q.BudgetsBySeller(ctx, params)
	if err != nil {
		return BudgetStats{}, fmt.Errorf("budgets by seller: %w", err)
	}
	for _, row := range sellers {
		stats.BySeller = append(stats.BySeller, SellerCount(row))
	}
	products, err := s.Q.TopBudgetProducts(ctx, params)
	if err != nil {
		return BudgetStats{}, fmt.Errorf("top budget products: %w", err)
	}
	for _, row := range products {
		stats.TopProducts = append(stats.TopProducts, ProductQuantity(row))
	}
	categories, err := s.Q.BudgetQuantityByCategory(ctx, params)
	if err != nil {
		return BudgetStats{}, fmt.Errorf("quantity by category: %w", err)
	}
	for _, row := range categories {
		stats.ByCategory = append(stats.ByCategory, CategoryQuantity(row))
	}
	payments, err := s.Q.PaymentMethodUsage(ctx, params)
	if err != nil {
		return BudgetStats{}, fmt.Errorf("payment method usage: %w", err)
	}
	for _, row := range payments {
		stats.Payments = append(stats.Payments, PaymentUsage(row))
	}

	if err := s.Cache.Set(ctx, key, stats); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("stats_cache_write_failed")
	}
	return stats, nil
}

// Invalidate drops every cached stats range and returns the number of keys removed.
func (s *Service) Invalidate(ctx context.Context) (int, error) {
	if s == nil {
		return 0, nil
	}
	return s.Cache.DeletePrefix(ctx, cache.BudgetStatsPrefix)
}

func bound(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}
