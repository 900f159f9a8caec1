package app

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	validator "github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/noah-isme/backend-presupuesto/internal/db/migrations"
	"github.com/noah-isme/backend-presupuesto/internal/obs"
)

// retryPolicy returns the exponential backoff used while dependencies come up.
func retryPolicy(ctx context.Context, maxElapsed time.Duration) backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = maxElapsed
	policy.MaxInterval = 15 * time.Second
	return backoff.WithContext(policy, ctx)
}

// ConnectPostgres opens a traced pgx pool, retrying until the database answers or
// maxElapsed passes.
func ConnectPostgres(ctx context.Context, databaseURL string, maxElapsed time.Duration, logger zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}

	var pool *pgxpool.Pool
	err = backoff.RetryNotify(
		func() error {
			p, err := pgxpool.NewWithConfig(ctx, poolConfig)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			if err := p.Ping(ctx); err != nil {
				p.Close()
				return fmt.Errorf("ping: %w", err)
			}
			pool = p
			return nil
		},
		retryPolicy(ctx, maxElapsed),
		func(err error, next time.Duration) {
			logger.Warn().Err(err).Dur("next_attempt_in", next).Msg("postgres not ready, retrying")
		},
	)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}

// ConnectRedis opens an instrumented Redis client, retrying the initial ping.
func ConnectRedis(ctx context.Context, redisURL string, maxElapsed time.Duration, logger zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := redisotel.InstrumentMetrics(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis metrics")
	}
	err = backoff.RetryNotify(
		func() error { return client.Ping(ctx).Err() },
		retryPolicy(ctx, maxElapsed),
		func(err error, next time.Duration) {
			logger.Warn().Err(err).Dur("next_attempt_in", next).Msg("redis not ready, retrying")
		},
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

// AsynqRedisOpt converts a Redis URL into asynq connection options.
func AsynqRedisOpt(redisURL string) (asynq.RedisConnOpt, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse asynq redis uri: %w", err)
	}
	return opt, nil
}

// NewValidator returns the shared request validator.
func NewValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// NewLimiterStore wires a rate limiter store backed by Redis.
func NewLimiterStore(rdb *redis.Client) (limiter.Store, error) {
	return limiterredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: "presupuesto:limiter"})
}

// RunMigrations applies the embedded migrations.
func RunMigrations(databaseURL string) error {
	return migrations.Up(databaseURL)
}
