package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestSlidingWindowAdmitsUpToMax(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	now := t0
	limiter := SlidingWindow{Client: client, Prefix: "test:", Now: func() time.Time { return now }}
	ctx := context.Background()
	window := time.Minute

	allowed, remaining, _, err := limiter.Allow(ctx, "quote:user:u1", window, 2)
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, 1, remaining)

	now = t0.Add(30 * time.Second)
	allowed, remaining, _, err = limiter.Allow(ctx, "quote:user:u1", window, 2)
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, 0, remaining)

	now = t0.Add(40 * time.Second)
	allowed, remaining, reset, err := limiter.Allow(ctx, "quote:user:u1", window, 2)
	require.NoError(t, err)
	require.False(t, allowed)
	require.Equal(t, 0, remaining)
	require.True(t, reset.Equal(t0.Add(window)), "reset %s", reset)

	// the first call has aged out; the rejected one was never recorded
	now = t0.Add(61 * time.Second)
	allowed, _, _, err = limiter.Allow(ctx, "quote:user:u1", window, 2)
	require.NoError(t, err)
	require.True(t, allowed)

	now = t0.Add(62 * time.Second)
	allowed, _, reset, err = limiter.Allow(ctx, "quote:user:u1", window, 2)
	require.NoError(t, err)
	require.False(t, allowed)
	require.True(t, reset.Equal(t0.Add(90*time.Second)), "reset %s", reset)
}

func TestSlidingWindowKeysAreIndependent(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := SlidingWindow{Client: client, Prefix: "test:"}
	ctx := context.Background()

	allowed, _, _, err := limiter.Allow(ctx, "a", time.Minute, 1)
	require.NoError(t, err)
	require.True(t, allowed)
	allowed, _, _, err = limiter.Allow(ctx, "a", time.Minute, 1)
	require.NoError(t, err)
	require.False(t, allowed)
	allowed, _, _, err = limiter.Allow(ctx, "b", time.Minute, 1)
	require.NoError(t, err)
	require.True(t, allowed)
	require.True(t, mr.Exists("test:a"))
}

func TestSlidingWindowWithoutClientAllows(t *testing.T) {
	allowed, remaining, _, err := SlidingWindow{}.Allow(context.Background(), "k", time.Minute, 3)
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, 3, remaining)
}
