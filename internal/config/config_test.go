package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.True(t, cfg.Database.Migrate)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Badger")
	t.Setenv("SERVER_CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("DB_CONN_MAX_LIFETIME", "5m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageBadger, cfg.Storage.Driver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
}

func TestLoad_UnsupportedDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "svc", Password: "p@ss", Name: "versions", SSLMode: "disable"}
	assert.Equal(t, "postgres://svc:p%40ss@db:5432/versions?sslmode=disable", d.DSN())
}
