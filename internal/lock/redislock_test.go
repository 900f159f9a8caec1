package lock_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-presupuesto/internal/lock"
)

func newClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestWithLockSerialises(t *testing.T) {
	client, _ := newClient(t)
	locker := lock.Locker{R: client, Prefix: "test:", RetryBackoff: 5 * time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var (
		order []string
		mu    sync.Mutex
	)
	firstDone := make(chan struct{})
	releaseFirst := make(chan struct{})
	errs := make(chan error, 2)

	go func() {
		errs <- locker.WithLock(ctx, "import", time.Second, func(context.Context) error {
			mu.Lock()
			order = append(order, "first")
			mu.Unlock()
			close(firstDone)
			<-releaseFirst
			return nil
		})
	}()
	<-firstDone
	go func() {
		errs <- locker.WithLock(ctx, "import", time.Second, func(context.Context) error {
			mu.Lock()
			order = append(order, "second")
			mu.Unlock()
			return nil
		})
	}()
	close(releaseFirst)

	require.NoError(t, <-errs)
	require.NoError(t, <-errs)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"first", "second"}, order)
}

func TestWithLockGivesUpAfterWait(t *testing.T) {
	client, mr := newClient(t)
	require.NoError(t, mr.Set("test:import", "someone-else"))

	locker := lock.Locker{R: client, Prefix: "test:", RetryBackoff: 5 * time.Millisecond, Wait: 30 * time.Millisecond}
	called := false
	err := locker.WithLock(context.Background(), "import", time.Second, func(context.Context) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, lock.ErrNotAcquired)
	require.False(t, called)
}

func TestWithLockReleasesOnError(t *testing.T) {
	client, mr := newClient(t)
	locker := lock.Locker{R: client, Prefix: "test:"}
	boom := errors.New("boom")

	err := locker.WithLock(context.Background(), "import", time.Second, func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	require.False(t, mr.Exists("test:import"))
}
