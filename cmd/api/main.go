package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/backend-presupuesto/internal/analytics"
	"github.com/noah-isme/backend-presupuesto/internal/app"
	"github.com/noah-isme/backend-presupuesto/internal/auth"
	"github.com/noah-isme/backend-presupuesto/internal/budget"
	"github.com/noah-isme/backend-presupuesto/internal/cache"
	"github.com/noah-isme/backend-presupuesto/internal/cart"
	"github.com/noah-isme/backend-presupuesto/internal/catalog"
	"github.com/noah-isme/backend-presupuesto/internal/common"
	"github.com/noah-isme/backend-presupuesto/internal/config"
	dbgen "github.com/noah-isme/backend-presupuesto/internal/db/gen"
	"github.com/noah-isme/backend-presupuesto/internal/document"
	"github.com/noah-isme/backend-presupuesto/internal/events"
	"github.com/noah-isme/backend-presupuesto/internal/health"
	"github.com/noah-isme/backend-presupuesto/internal/lock"
	"github.com/noah-isme/backend-presupuesto/internal/obs"
	"github.com/noah-isme/backend-presupuesto/internal/payment"
	"github.com/noah-isme/backend-presupuesto/internal/ratelimit"
	"github.com/noah-isme/backend-presupuesto/internal/security"
	"github.com/noah-isme/backend-presupuesto/internal/seller"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "presupuesto")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:    "presupuesto-api",
			ServiceVersion: envOrDefault("APP_VERSION", "dev"),
			Endpoint:       envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Exporter:       envOrDefault("OBS_TRACING_EXPORTER", "otlp"),
			SamplingRatio:  sampling,
			Environment:    cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := app.ConnectPostgres(ctx, cfg.DatabaseURL, cfg.DBConnectTimeout, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	queries := dbgen.New(pool)

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
	asynqClient := asynq.NewClient(asynqOpt)
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close asynq client")
		}
	}()
	bus := &events.Bus{
		Publisher: events.AsynqPublisher{Client: asynqClient, Queue: events.DefaultQueue, MaxRetry: 5},
	}

	validate := app.NewValidator()
	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	authService, err := auth.NewService(auth.Config{
		Queries:         queries,
		Denylist:        &auth.RedisDenylist{Client: redisClient},
		Secret:          cfg.JWTSecret,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
		Issuer:          cfg.JWTIssuer,
		Audience:        cfg.JWTAudience,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise auth service")
	}
	authHandler := &auth.Handler{Service: authService, Validate: validate}
	authMiddleware := auth.Middleware{Service: authService}

	catalogService, err := catalog.NewService(catalog.ServiceConfig{
		Queries: queries,
		Cache:   cache.New(redisClient, cfg.CatalogCacheTTL),
		Lock:    lock.Locker{R: redisClient, Prefix: "presupuesto:lock:", Wait: 5 * time.Second},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise catalog service")
	}
	catalogHandler := catalog.NewHandler(catalog.HandlerConfig{Service: catalogService, Validate: validate})

	cartSvc := &cart.Service{Q: queries}
	cartHandler := &cart.Handler{Svc: cartSvc}

	paymentSvc := &payment.Service{Q: queries}
	paymentHandler := &payment.Handler{Svc: paymentSvc, Validate: validate}

	sellerSvc := &seller.Service{Q: queries}
	sellerHandler := &seller.Handler{Svc: sellerSvc, Validate: validate}

	renderer := document.NewRenderer(cfg.DocCompanyName, cfg.DocFooterLines)
	budgetSvc := &budget.Service{
		Store:    queries,
		InTx:     budget.PgxTx(pool, queries),
		Catalog:  catalogService,
		Carts:    cartSvc,
		Payments: paymentSvc,
		Sellers:  sellerSvc,
		Events:   bus,
	}
	budgetHandler := &budget.Handler{Svc: budgetSvc, Renderer: renderer, Location: renderer.Location}

	statsSvc := &analytics.Service{Q: queries, Cache: cache.New(redisClient, cfg.StatsCacheTTL)}
	statsHandler := &analytics.Handler{Svc: statsSvc, Location: renderer.Location}

	limiterStore, err := app.NewLimiterStore(redisClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise limiter store")
	}
	loginLimiter, err := ratelimit.NewFixed(limiterStore, cfg.LoginRateLimit, "login")
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise login limiter")
	}
	onLimiterError := func(err error) { logger.Warn().Err(err).Msg("rate limiter unavailable") }
	loginRate := ratelimit.Handler{
		Limiter: loginLimiter,
		Config:  ratelimit.Config{Key: ratelimit.ByClientIP("login:"), Window: loginLimiter.Period(), Max: loginLimiter.Max()},
		OnError: onLimiterError,
	}
	quoteRate := ratelimit.Handler{
		Limiter: ratelimit.SlidingWindow{Client: redisClient, Prefix: "presupuesto:rl:"},
		Config:  ratelimit.Config{Key: ratelimit.ByUser("quote:"), Window: time.Minute, Max: envInt("QUOTE_RATE_LIMIT_PER_MIN", 120)},
		OnError: onLimiterError,
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{Enable: true, EnableHSTS: cfg.IsProduction(), HSTSMaxAge: 31536000, HSTSIncludeSubdomains: true}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Total-Count"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(security.BodyLimit{Max: cfg.BodyLimitBytes, UploadMax: cfg.UploadLimitBytes}.Middleware)

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if envBool("OBS_ENABLE_PPROF", false) {
		user := envOrDefault("SECURE_PPROF_BASIC_AUTH_USER", "")
		pass := envOrDefault("SECURE_PPROF_BASIC_AUTH_PASS", "")
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), user, pass))
	}

	healthHandler := health.Handler{Probes: []health.Probe{
		health.PostgresProbe(pool, envDurationMillis("HEALTH_READY_DB_TIMEOUT_MS", 500)),
		health.RedisProbe(redisClient, envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300)),
	}}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	managers := auth.RequireRole(auth.RoleAdmin, auth.RoleGerente)

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/categories", catalogHandler.Categories)
		v.Get("/products", catalogHandler.Products)
		v.Get("/products/{id}", catalogHandler.ProductDetail)

		v.Route("/auth", func(a chi.Router) {
			a.With(loginRate.Middleware).Post("/login", authHandler.Login)
			a.Post("/refresh", authHandler.Refresh)
			a.Group(func(protected chi.Router) {
				protected.Use(authMiddleware.RequireAuth)
				protected.Post("/logout", authHandler.Logout)
				protected.Get("/profile", authHandler.Profile)
				protected.With(auth.RequireRole(auth.RoleAdmin)).Post("/register", authHandler.Register)
			})
		})

		v.Group(func(authR chi.Router) {
			authR.Use(authMiddleware.RequireAuth)

			authR.Group(func(m chi.Router) {
				m.Use(managers)
				m.Post("/products", catalogHandler.Create)
				m.Put("/products/{id}", catalogHandler.Update)
				m.Delete("/products/{id}", catalogHandler.Delete)
				m.Post("/products/bulk", catalogHandler.Bulk)
				m.Post("/products/import", catalogHandler.Import)

				m.Post("/payments", paymentHandler.Create)
				m.Put("/payments/{id}", paymentHandler.Update)

				m.Post("/sellers", sellerHandler.Create)
				m.Patch("/sellers/{id}/activate", sellerHandler.Activate)
				m.Patch("/sellers/{id}/deactivate", sellerHandler.Deactivate)

				m.Get("/budgets/stats", statsHandler.BudgetStats)
			})

			authR.Get("/payments", paymentHandler.List)
			authR.Get("/sellers", sellerHandler.List)

			authR.Route("/cart", func(c chi.Router) {
				c.Get("/", cartHandler.Get)
				c.Delete("/", cartHandler.Clear)
				c.Post("/items", cartHandler.AddItem)
				c.Put("/items/{id}", cartHandler.UpdateItem)
				c.Delete("/items/{id}", cartHandler.RemoveItem)
			})

			authR.Route("/budgets", func(b chi.Router) {
				b.Get("/", budgetHandler.List)
				b.With(idem.Middleware).Post("/", budgetHandler.Create)
				b.Group(func(q chi.Router) {
					q.Use(quoteRate.Middleware)
					q.Post("/quote", budgetHandler.Quote)
					q.Post("/quote/pdf", budgetHandler.QuotePDF)
				})
				b.Get("/{id}", budgetHandler.Detail)
				b.Get("/{id}/pdf", budgetHandler.PDF)
				b.With(auth.RequireRole(auth.RoleAdmin)).Delete("/{id}", budgetHandler.Delete)
			})
		})
	})

	var handler http.Handler = r
	if tracingEnabled {
		handler = otelhttp.NewHandler(r, "presupuesto-api")
	}
	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		health.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
	logger.Info().Msg("server stopped")
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
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

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/allocs", pprof.Handler("allocs"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/heap", pprof.Handler("heap"))
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
