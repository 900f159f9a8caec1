package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDriverURL(t *testing.T) {
	require.Equal(t, "pgx5://user:pw@localhost:5432/app?sslmode=disable", DriverURL("postgres://user:pw@localhost:5432/app?sslmode=disable"))
	require.Equal(t, "pgx5://db/app", DriverURL(" postgresql://db/app "))
	require.Equal(t, "pgx5://db/app", DriverURL("pgx5://db/app"))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(files, "*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(files, "*.down.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)
	require.Len(t, downs, len(ups))
}
