package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist records access token identifiers revoked before their expiry.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisDenylist keeps revoked token ids in Redis until the token would have expired.
type RedisDenylist struct {
	Client *redis.Client
	Prefix string
	Now    func() time.Time
}

func (d RedisDenylist) key(tokenID string) string {
	prefix := d.Prefix
	if prefix == "" {
		prefix = "auth:revoked:"
	}
	return prefix + tokenID
}

func (d RedisDenylist) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Revoke stores the token id with a TTL matching the token's remaining lifetime.
func (d RedisDenylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if d.Client == nil {
		return errors.New("auth: denylist redis client is nil")
	}
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return nil
	}
	ttl := until.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	return d.Client.Set(ctx, d.key(tokenID), "1", ttl).Err()
}

// IsRevoked reports whether the token id was revoked.
func (d RedisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if d.Client == nil {
		return false, nil
	}
	n, err := d.Client.Exists(ctx, d.key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type noopDenylist struct{}

func (noopDenylist) Revoke(context.Context, string, time.Time) error { return nil }

func (noopDenylist) IsRevoked(context.Context, string) (bool, error) { return false, nil }
