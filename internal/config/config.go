package config

import (
	"strconv"
	"time"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"
	StorageDriverMemory   = "memory"
)

type Config struct {
	Env  string `env:"ENV" env-required:"true"`
	HTTP HTTPConfig
	// Diagnostics exposes internal error details in 500 responses. Unset
	// means on for local and dev, off otherwise.
	Diagnostics string `env:"DIAGNOSTICS"`
	Storage     StorageConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
}

type HTTPConfig struct {
	Host               string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port               string        `env:"HTTP_PORT" env-default:"5001"`
	ShutdownTimeout    time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
	CORSAllowedOrigins []string      `env:"HTTP_CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000,https://localhost:3000,http://127.0.0.1:3000,http://[::1]:3000"`
}

type StorageConfig struct {
	Driver     string `env:"STORAGE_DRIVER" env-default:"postgres"`
	SQLitePath string `env:"SQLITE_PATH" env-default:"todone.db"`
}

type PostgresConfig struct {
	Host     string `env:"POSTGRES_HOST" env-default:"localhost"`
	Port     int    `env:"POSTGRES_PORT" env-default:"5432"`
	Username string `env:"POSTGRES_USERNAME"`
	Password string `env:"POSTGRES_PASSWORD"`
	Database string `env:"POSTGRES_DATABASE"`
	// SSLMode falls back to require in prod and disable elsewhere.
	SSLMode        string        `env:"POSTGRES_SSL_MODE"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
	AcquireTimeout time.Duration `env:"POSTGRES_ACQUIRE_TIMEOUT" env-default:"30s"`
	MaxConns       int32         `env:"POSTGRES_MAX_CONNS" env-default:"5"`
	MinConns       int32         `env:"POSTGRES_MIN_CONNS" env-default:"0"`
	MaxConnIdle    time.Duration `env:"POSTGRES_MAX_CONN_IDLE_TIME" env-default:"10s"`
	AutoMigrate    bool          `env:"POSTGRES_AUTO_MIGRATE" env-default:"false"`
}

type RedisConfig struct {
	// Addr left empty disables the cache.
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" env-default:"0"`
	TTL      time.Duration `env:"REDIS_TTL" env-default:"5m"`
}

func (c *Config) DiagnosticsEnabled() bool {
	if enabled, err := strconv.ParseBool(c.Diagnostics); err == nil {
		return enabled
	}
	return c.Env == EnvLocal || c.Env == EnvDev
}

func (c PostgresConfig) SSLModeFor(env string) string {
	if c.SSLMode != "" {
		return c.SSLMode
	}
	if env == EnvProd {
		return "require"
	}
	return "disable"
}
