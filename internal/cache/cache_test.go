package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*JSON, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, time.Minute), mr
}

func TestJSONRoundTripAndTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var out map[string]int
	ok, err := c.Get(ctx, "missing", &out)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Set(ctx, KeyProduct(7), map[string]int{"stock": 3}))
	ok, err = c.Get(ctx, "catalog:products:detail:7", &out)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 3, out["stock"])

	mr.FastForward(2 * time.Minute)
	ok, err = c.Get(ctx, KeyProduct(7), &out)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDeletePrefix(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, c.Set(ctx, KeyBudgetStats(from, time.Time{}), 1))
	require.NoError(t, c.Set(ctx, KeyBudgetStats(time.Time{}, time.Time{}), 2))
	require.NoError(t, c.Set(ctx, KeyProduct(1), 3))

	n, err := c.DeletePrefix(ctx, BudgetStatsPrefix)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.True(t, mr.Exists(KeyProduct(1)))
	require.Equal(t, "budgets:stats:20240101T000000:open", KeyBudgetStats(from, time.Time{}))
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *JSON
	ok, err := c.Get(context.Background(), "k", &struct{}{})
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, c.Set(context.Background(), "k", 1))
	require.NoError(t, c.Delete(context.Background(), "k"))
}
