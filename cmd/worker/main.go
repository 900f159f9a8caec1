package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-presupuesto/internal/analytics"
	"github.com/noah-isme/backend-presupuesto/internal/app"
	"github.com/noah-isme/backend-presupuesto/internal/cache"
	"github.com/noah-isme/backend-presupuesto/internal/config"
	"github.com/noah-isme/backend-presupuesto/internal/events"
	"github.com/noah-isme/backend-presupuesto/internal/obs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	ctx := context.Background()
	redisClient, err := app.ConnectRedis(ctx, cfg.RedisURL, cfg.DBConnectTimeout, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect redis")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	asynqOpt, err := app.AsynqRedisOpt(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("asynq redis options")
	}

	stats := &analytics.Service{Cache: cache.New(redisClient, cfg.StatsCacheTTL)}
	handler := budgetEventHandler{Stats: stats, Logger: logger}

	mux := asynq.NewServeMux()
	for _, topic := range events.DefaultTopics() {
		mux.HandleFunc(topic, handler.Handle)
	}

	srv := asynq.NewServer(asynqOpt, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues:      map[string]int{events.DefaultQueue: 1},
		BaseContext: func() context.Context { return logger.WithContext(context.Background()) },
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error().Err(err).Str("task", task.Type()).Msg("task failed")
		}),
	})

	logger.Info().Int("concurrency", cfg.WorkerConcurrency).Msg("worker starting")
	if err := srv.Run(mux); err != nil {
		logger.Error().Err(err).Msg("worker stopped with error")
		return
	}
	logger.Info().Msg("worker shutdown complete")
}

// statsInvalidator drops cached stats ranges.
type statsInvalidator interface {
	Invalidate(ctx context.Context) (int, error)
}

type budgetEventHandler struct {
	Stats  statsInvalidator
	Logger zerolog.Logger
}

// Handle invalidates the stats cache for every budget event.
func (h budgetEventHandler) Handle(ctx context.Context, task *asynq.Task) error {
	ev, err := events.DecodeTask(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	removed, err := h.Stats.Invalidate(ctx)
	if err != nil {
		return fmt.Errorf("invalidate stats: %w", err)
	}
	h.Logger.Info().
		Str("topic", ev.Topic).
		Int64("budget_id", ev.AggregateID).
		Int("stats_keys_removed", removed).
		Msg("budget event handled")
	return nil
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
