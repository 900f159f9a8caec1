package migrations

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var files embed.FS

// New builds a migrator over the embedded SQL files for the given postgres URL.
func New(databaseURL string) (*migrate.Migrate, error) {
	src, err := iofs.New(files, ".")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, DriverURL(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// Up applies all pending migrations. A database already at the latest version is not an error.
func Up(databaseURL string) error {
	m, err := New(databaseURL)
	if err != nil {
		return err
	}
	defer closeMigrator(m)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// DriverURL rewrites postgres:// style URLs to the pgx/v5 migrate driver scheme.
func DriverURL(databaseURL string) string {
	trimmed := strings.TrimSpace(databaseURL)
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(trimmed, prefix) {
			return "pgx5://" + strings.TrimPrefix(trimmed, prefix)
		}
	}
	return trimmed
}

func closeMigrator(m *migrate.Migrate) {
	_, _ = m.Close()
}
