package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageMemory   = "memory"
	StorageBadger   = "badger"
	StoragePostgres = "postgres"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Badger   BadgerConfig
	Logger   LoggerConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

type StorageConfig struct {
	Driver string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Migrate         bool
}

// DSN returns the connection string as a postgres:// URL, which both pgx and
// the migration driver accept.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}

type BadgerConfig struct {
	Path       string
	SyncWrites bool
}

type LoggerConfig struct {
	Level  string
	Format string
}

type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_CORS_ORIGINS", "*")
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "artifact_versions")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DB_MIGRATE", true)
	v.SetDefault("BADGER_PATH", "./data/badger")
	v.SetDefault("BADGER_SYNC_WRITES", true)
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")
	v.SetDefault("METRICS_ENABLED", true)

	// Env
	v.AutomaticEnv()

	lifetime, err := time.ParseDuration(v.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		lifetime = 30 * time.Minute
	}

	driver := strings.ToLower(v.GetString("STORAGE_DRIVER"))
	switch driver {
	case StorageMemory, StorageBadger, StoragePostgres:
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", driver)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        v.GetString("SERVER_HOST"),
			Port:        v.GetInt("SERVER_PORT"),
			CORSOrigins: splitList(v.GetString("SERVER_CORS_ORIGINS")),
		},
		Storage: StorageConfig{
			Driver: driver,
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: lifetime,
			Migrate:         v.GetBool("DB_MIGRATE"),
		},
		Badger: BadgerConfig{
			Path:       v.GetString("BADGER_PATH"),
			SyncWrites: v.GetBool("BADGER_SYNC_WRITES"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
