package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// URL returns the pgx connection string.
func (p PostgresConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.Username, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

type RepositoriesConfig struct {
	Postgres PostgresConfig
}

type ObservabilityConfig struct {
	MetricsAddr  string
	PprofAddr    string
	OTLPEndpoint string
}

type Config struct {
	Repositories    RepositoriesConfig
	Observability   ObservabilityConfig
	ServerPort      string
	SessionSecret   string
	DefaultUserID   int64
	TabSyncDebounce time.Duration
	WorkspaceTTL    time.Duration
	LogLevel        zapcore.Level
}

// Load reads the configuration from the environment, after loading a .env
// file when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Repositories: RepositoriesConfig{
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
				DB:       getEnvOrDefault("POSTGRES_DB", "greengrove"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: 30,
				MinConns: 5,
			},
		},
		Observability: ObservabilityConfig{
			MetricsAddr:  getEnvOrDefault("METRICS_ADDR", ":9092"),
			PprofAddr:    getEnvOrDefault("PPROF_ADDR", ":6060"),
			OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		},
		ServerPort:    getEnvOrDefault("SERVER_PORT", "8091"),
		SessionSecret: getEnvOrDefault("SESSION_SECRET", "greengrove-dev-secret"),
	}

	if cfg.Repositories.Postgres.Password == "" {
		return nil, errors.New("POSTGRES_PASSWORD environment variable is required")
	}

	var err error
	if cfg.DefaultUserID, err = getEnvInt64("DEFAULT_USER_ID", 3); err != nil {
		return nil, err
	}
	if cfg.TabSyncDebounce, err = getEnvDuration("TAB_SYNC_DEBOUNCE", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.WorkspaceTTL, err = getEnvDuration("WORKSPACE_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.LogLevel, err = zapcore.ParseLevel(getEnvOrDefault("LOG_LEVEL", "info")); err != nil {
		return nil, errors.Wrap(err, "LOG_LEVEL")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "%s must be an integer", key)
	}
	return v, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "%s must be a duration", key)
	}
	return v, nil
}
