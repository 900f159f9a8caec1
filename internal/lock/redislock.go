package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrNotAcquired is returned when the lock stays held by someone else for longer than Wait.
var ErrNotAcquired = errors.New("lock: not acquired")

// Locker provides a Redis-backed mutual exclusion lock keyed by name.
type Locker struct {
	R            *redis.Client
	Prefix       string
	RetryBackoff time.Duration
	Wait         time.Duration
}

// WithLock runs fn while holding the named lock and releases it afterwards, even when
// fn fails. With Wait > 0 it gives up with ErrNotAcquired after that long; otherwise it
// waits until ctx is done.
func (l Locker) WithLock(ctx context.Context, name string, ttl time.Duration, fn func(context.Context) error) error {
	if l.R == nil {
		return errors.New("lock: redis client not configured")
	}
	if fn == nil {
		return errors.New("lock: callback not provided")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	retry := l.RetryBackoff
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}
	key := l.Prefix + name
	token := uuid.NewString()

	var deadline <-chan time.Time
	if l.Wait > 0 {
		t := time.NewTimer(l.Wait)
		defer t.Stop()
		deadline = t.C
	}

	for {
		ok, err := l.R.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return fmt.Errorf("lock %s: %w", name, err)
		}
		if ok {
			defer l.release(context.WithoutCancel(ctx), key, token)
			return fn(ctx)
		}
		timer := time.NewTimer(retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-deadline:
			timer.Stop()
			return ErrNotAcquired
		case <-timer.C:
		}
	}
}

// releaseScript deletes the key only while it still holds our token, so a lock that
// expired and was taken by another holder is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l Locker) release(ctx context.Context, key, token string) {
	if err := releaseScript.Run(ctx, l.R, []string{key}, token).Err(); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("lock", key).Msg("lock_release_failed")
	}
}
