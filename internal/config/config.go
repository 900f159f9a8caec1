package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const defaultBodyLimit int64 = 10 << 20

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	JWTIssuer          string
	JWTAudience        string
	CORSAllowedOrigins []string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	CatalogCacheTTL    time.Duration
	StatsCacheTTL      time.Duration
	IdempotencyTTL     time.Duration
	LoginRateLimit     string
	BodyLimitBytes     int64
	UploadLimitBytes   int64
	WorkerConcurrency  int
	DBConnectTimeout   time.Duration
	DocCompanyName     string
	DocFooterLines     []string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		JWTSecret:          k.String("JWT_SECRET"),
		JWTIssuer:          valueOrDefault(k.String("JWT_ISSUER"), "backend-presupuesto"),
		JWTAudience:        valueOrDefault(k.String("JWT_AUDIENCE"), "presupuesto-frontend"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS"), ","),
		AccessTokenTTL:     parseDuration(k.String("ACCESS_TOKEN_TTL"), "12h"),
		RefreshTokenTTL:    parseDuration(k.String("REFRESH_TOKEN_TTL"), "720h"),
		CatalogCacheTTL:    parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),
		StatsCacheTTL:      parseDuration(k.String("STATS_CACHE_TTL"), "10m"),
		IdempotencyTTL:     parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		LoginRateLimit:     valueOrDefault(k.String("LOGIN_RATE_LIMIT"), "10-M"),
		BodyLimitBytes:     parseInt64(k.String("BODY_LIMIT_BYTES"), defaultBodyLimit),
		UploadLimitBytes:   parseInt64(k.String("UPLOAD_LIMIT_BYTES"), 2*defaultBodyLimit),
		WorkerConcurrency:  int(parseInt64(k.String("WORKER_CONCURRENCY"), 5)),
		DBConnectTimeout:   parseDuration(k.String("DB_CONNECT_TIMEOUT"), "60s"),
		DocCompanyName:     valueOrDefault(k.String("DOC_COMPANY_NAME"), "Presupuesto"),
		DocFooterLines:     splitAndTrim(k.String("DOC_FOOTER_LINES"), "|"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.WorkerConcurrency < 1 {
		cfg.WorkerConcurrency = 1
	}
	return cfg, nil
}

// minProductionSecret is the shortest HS256 secret accepted outside development.
const minProductionSecret = 32

func (c *Config) validate() error {
	var errs []error
	for _, req := range []struct{ key, value string }{
		{"DATABASE_URL", c.DatabaseURL},
		{"REDIS_URL", c.RedisURL},
		{"JWT_SECRET", c.JWTSecret},
	} {
		if req.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", req.key))
		}
	}
	if c.IsProduction() && c.JWTSecret != "" && len(c.JWTSecret) < minProductionSecret {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes in production", minProductionSecret))
	}
	if c.UploadLimitBytes < c.BodyLimitBytes {
		c.UploadLimitBytes = c.BodyLimitBytes
	}
	return errors.Join(errs...)
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.AppEnv))
	return env == "production" || env == "prod"
}

func splitAndTrim(value, sep string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt64(value string, fallback int64) int64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
