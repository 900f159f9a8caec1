package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Limiter decides whether one more event for key fits in the window.
type Limiter interface {
	Allow(ctx context.Context, key string, window time.Duration, max int) (allowed bool, remaining int, reset time.Time, err error)
}

// slidingScript trims the window, admits the event only when there is room and
// reports when the oldest admitted event leaves the window. Scores are unix ms.
var slidingScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', ARGV[5])
local count = redis.call('ZCARD', key)
local allowed = 0
if count < max then
  redis.call('ZADD', key, ARGV[1], ARGV[4])
  count = count + 1
  allowed = 1
end
redis.call('PEXPIRE', key, ARGV[2])
local reset = now + window
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if oldest[2] then
  reset = tonumber(oldest[2]) + window
end
return {allowed, count, reset}
`)

// SlidingWindow is a Redis sorted-set limiter used for the quote endpoints.
// Rejected calls are not recorded, so a client that backs off regains capacity as
// its admitted calls age out.
type SlidingWindow struct {
	Client *redis.Client
	Prefix string
	Now    func() time.Time
}

// Allow records an event for key when it fits in the window.
func (l SlidingWindow) Allow(ctx context.Context, key string, window time.Duration, max int) (bool, int, time.Time, error) {
	now := l.now()
	if l.Client == nil || max <= 0 || window <= 0 {
		return true, max, now.Add(window), nil
	}

	nowMS := now.UnixMilli()
	res, err := slidingScript.Run(ctx, l.Client, []string{l.Prefix + key},
		nowMS, window.Milliseconds(), max, fmt.Sprintf("%d:%s", nowMS, uuid.NewString()),
		nowMS-window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return false, 0, now.Add(window), fmt.Errorf("sliding window: %w", err)
	}
	if len(res) != 3 {
		return false, 0, now.Add(window), fmt.Errorf("sliding window: unexpected reply %v", res)
	}

	remaining := max - int(res[1])
	if remaining < 0 {
		remaining = 0
	}
	return res[0] == 1, remaining, time.UnixMilli(res[2]), nil
}

func (l SlidingWindow) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}
