package postgres

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/versions?sslmode=disable", migrateURL("postgres://u:p@db:5432/versions?sslmode=disable"))
	assert.Equal(t, "pgx5://db/versions", migrateURL("postgresql://db/versions"))
	assert.Equal(t, "pgx5://db/versions", migrateURL("pgx5://db/versions"))
}

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrationFiles, "migrations/*.sql")
	require.NoError(t, err)
	assert.Contains(t, files, "migrations/000001_versioning.up.sql")
	assert.Contains(t, files, "migrations/000001_versioning.down.sql")
}
