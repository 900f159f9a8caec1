package cache

import (
	"strconv"
	"time"
)

const (
	// ProductDetailPrefix namespaces cached product detail payloads.
	ProductDetailPrefix = "catalog:products:detail:"
	// BudgetStatsPrefix namespaces cached budget statistics.
	BudgetStatsPrefix = "budgets:stats:"
)

// KeyProduct returns the detail cache key for a product id.
func KeyProduct(id int64) string {
	return ProductDetailPrefix + strconv.FormatInt(id, 10)
}

// KeyBudgetStats returns the stats cache key for a date range. Zero bounds are open.
func KeyBudgetStats(from, to time.Time) string {
	return BudgetStatsPrefix + boundKey(from) + ":" + boundKey(to)
}

func boundKey(t time.Time) string {
	if t.IsZero() {
		return "open"
	}
	return t.UTC().Format("20060102T150405")
}
