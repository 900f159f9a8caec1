package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-presupuesto/internal/app"
	"github.com/noah-isme/backend-presupuesto/internal/auth"
	"github.com/noah-isme/backend-presupuesto/internal/catalog"
	"github.com/noah-isme/backend-presupuesto/internal/common"
	"github.com/noah-isme/backend-presupuesto/internal/config"
	dbgen "github.com/noah-isme/backend-presupuesto/internal/db/gen"
	"github.com/noah-isme/backend-presupuesto/internal/obs"
	"github.com/noah-isme/backend-presupuesto/internal/payment"
	"github.com/noah-isme/backend-presupuesto/internal/seller"
)

func main() {
	logger := obs.NewLogger("console", "info").With().Str("component", "seeder").Logger()
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	ctx := context.Background()

	pool, err := app.ConnectPostgres(ctx, cfg.DatabaseURL, cfg.DBConnectTimeout, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	queries := dbgen.New(pool)

	seedUsers(ctx, queries, cfg, logger)
	seedSellers(ctx, &seller.Service{Q: queries}, logger)
	seedPaymentMethods(ctx, &payment.Service{Q: queries}, logger)
	seedCatalog(ctx, queries, logger)

	logger.Info().Msg("seeding completed")
}

func seedUsers(ctx context.Context, q *dbgen.Queries, cfg *config.Config, logger zerolog.Logger) {
	svc, err := auth.NewService(auth.Config{Queries: q, Secret: cfg.JWTSecret})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise auth service")
	}
	password := envOrDefault("SEED_ADMIN_PASSWORD", "admin12345")
	users := []auth.RegisterInput{
		{Username: "admin", Email: "admin@presupuesto.local", Password: password, FirstName: "Admin", LastName: "Sistema", Role: auth.RoleAdmin},
		{Username: "gerente", Email: "gerente@presupuesto.local", Password: password, FirstName: "Marta", LastName: "Suárez", Role: auth.RoleGerente},
		{Username: "vendedor", Email: "vendedor@presupuesto.local", Password: password, FirstName: "Lucía", LastName: "Fernández", Role: auth.RoleVendedor},
	}
	for _, u := range users {
		if _, err := svc.Register(ctx, u); err != nil {
			logSeedError(logger, err, "user", u.Username)
			continue
		}
		logger.Info().Str("username", u.Username).Str("role", u.Role).Msg("user seeded")
	}
}

func seedSellers(ctx context.Context, svc *seller.Service, logger zerolog.Logger) {
	sellers := []seller.CreateInput{
		{FirstName: "Lucía", LastName: "Fernández", SellerNumber: "001"},
		{FirstName: "Diego", LastName: "Romero", SellerNumber: "002"},
		{FirstName: "Carla", LastName: "Benítez", SellerNumber: "003"},
	}
	for _, s := range sellers {
		if _, err := svc.Create(ctx, s); err != nil {
			logSeedError(logger, err, "seller", s.SellerNumber)
		}
	}
}

func seedPaymentMethods(ctx context.Context, svc *payment.Service, logger zerolog.Logger) {
	existing, err := svc.List(ctx, "")
	if err != nil {
		logger.Fatal().Err(err).Msg("list payment methods")
	}
	if len(existing) > 0 {
		logger.Info().Int("count", len(existing)).Msg("payment methods already present")
		return
	}
	methods := []payment.CreateInput{
		{Description: "Efectivo", Rate: decimal.RequireFromString("0.10"), Method: "efectivo", Installments: 1, Status: payment.StatusActive},
		{Description: "Transferencia", Rate: decimal.RequireFromString("0.05"), Method: "transferencia", Installments: 1, Status: payment.StatusActive},
		{Description: "Débito", Rate: decimal.Zero, Method: "debito", Installments: 1, Status: payment.StatusActive},
		{Description: "Tarjeta 3 cuotas", Rate: decimal.RequireFromString("0.15"), Method: "tarjeta", Installments: 3, Status: payment.StatusActive},
		{Description: "Tarjeta 6 cuotas", Rate: decimal.RequireFromString("0.30"), Method: "tarjeta", Installments: 6, Status: payment.StatusActive},
		{Description: "Tarjeta 12 cuotas", Rate: decimal.RequireFromString("0.60"), Method: "tarjeta", Installments: 12, Status: payment.StatusInactive},
	}
	for _, m := range methods {
		if _, err := svc.Create(ctx, m); err != nil {
			logSeedError(logger, err, "payment method", m.Description)
		}
	}
}

func seedCatalog(ctx context.Context, q *dbgen.Queries, logger zerolog.Logger) {
	svc, err := catalog.NewService(catalog.ServiceConfig{Queries: q})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise catalog service")
	}
	rows := []catalog.BulkRow{
		product(1, "Heladera con freezer 364L", "Heladeras", "899999.00", 8),
		product(2, "Lavarropas automático 8kg", "Lavado", "649900.50", 5),
		product(3, "Smart TV 55\" 4K", "Televisores", "1199000.00", 4),
		product(4, "Aire acondicionado split 3000 frigorías", "Climatización", "1049000.00", 6),
		product(5, "Microondas 28L", "Pequeños electrodomésticos", "219999.99", 12),
		product(6, "Colchón de resortes 2 plazas", "Colchones", "529000.00", 3),
	}
	result, err := svc.BulkUpsert(ctx, rows)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed products")
	}
	logger.Info().Int("success", result.SuccessCount).Int("errors", result.ErrorCount).Msg("products seeded")
}

func product(id int64, name, category, price string, stock int) catalog.BulkRow {
	p := decimal.RequireFromString(price)
	return catalog.BulkRow{ID: &id, Name: &name, Price: &p, Stock: &stock, Category: category}
}

func logSeedError(logger zerolog.Logger, err error, kind, key string) {
	var appErr *common.AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus == http.StatusConflict {
		logger.Info().Str("kind", kind).Str("key", key).Msg("already present")
		return
	}
	logger.Error().Err(err).Str("kind", kind).Str("key", key).Msg("seed failed")
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
