package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/noah-isme/backend-presupuesto/internal/config"
	"github.com/noah-isme/backend-presupuesto/internal/db/migrations"
	"github.com/noah-isme/backend-presupuesto/internal/obs"
)

// migrate applies the embedded migrations. Usage: migrate [up|down|version].
func main() {
	logger := obs.NewLogger("console", "info").With().Str("component", "migrate").Logger()
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	m, err := migrations.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("open migrator")
	}
	defer func() { _, _ = m.Close() }()

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
			logger.Fatal().Err(verr).Msg("read version")
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (want up, down or version)\n", cmd)
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal().Err(err).Str("command", cmd).Msg("migration failed")
	}
	logger.Info().Str("command", cmd).Msg("migrations applied")
}
