package ratelimit

import (
	"context"
	"fmt"
	"time"

	limiter "github.com/ulule/limiter/v3"
)

// Fixed adapts a ulule fixed-window limiter to the Limiter interface. The window
// and max arguments are ignored in favour of the configured rate.
type Fixed struct {
	limiter *limiter.Limiter
	rate    limiter.Rate
	prefix  string
}

// NewFixed builds a fixed-window limiter from a formatted rate such as "10-M".
func NewFixed(store limiter.Store, formatted, prefix string) (Fixed, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return Fixed{}, fmt.Errorf("parse rate %q: %w", formatted, err)
	}
	return Fixed{
		limiter: limiter.New(store, rate),
		rate:    rate,
		prefix:  prefix,
	}, nil
}

// Max returns the number of events allowed per period.
func (f Fixed) Max() int {
	return int(f.rate.Limit)
}

// Period returns the configured window.
func (f Fixed) Period() time.Duration {
	return f.rate.Period
}

// Allow implements Limiter.
func (f Fixed) Allow(ctx context.Context, key string, _ time.Duration, _ int) (bool, int, time.Time, error) {
	if f.limiter == nil {
		return true, 0, time.Now(), nil
	}
	res, err := f.limiter.Get(ctx, f.prefix+key)
	if err != nil {
		return false, 0, time.Now(), err
	}
	return !res.Reached, int(res.Remaining), time.Unix(res.Reset, 0), nil
}
