package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationURL(t *testing.T) {
	got, err := MigrationURL("postgres://u:p@db:5432/gg?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "pgx5://u:p@db:5432/gg?sslmode=disable", got)

	got, err = MigrationURL("postgresql://u:p@db/gg")
	require.NoError(t, err)
	assert.Equal(t, "pgx5://u:p@db/gg", got)

	_, err = MigrationURL("mysql://db")
	assert.Error(t, err)
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationFS.ReadDir("migrations")
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_init.up.sql")
	assert.Contains(t, names, "000001_init.down.sql")
	assert.Contains(t, names, "000002_seed.up.sql")
}
