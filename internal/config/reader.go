package config

import (
	"fmt"
	"slices"

	"github.com/ilyakaznacheev/cleanenv"
)

type Reader interface {
	Read() (*Config, error)
}

type EnvReader struct{}

func NewEnvReader() EnvReader {
	return EnvReader{}
}

func (EnvReader) Read() (*Config, error) {
	cfg := new(Config)
	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, err
	}

	err = cfg.validate()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if !slices.Contains([]string{EnvLocal, EnvDev, EnvProd}, c.Env) {
		return fmt.Errorf("unknown env: %s", c.Env)
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Postgres.Username == "" || c.Postgres.Database == "" {
			return fmt.Errorf("postgres storage requires POSTGRES_USERNAME and POSTGRES_DATABASE")
		}
	case StorageDriverSQLite, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}

	if c.Postgres.MinConns < 0 || c.Postgres.MaxConns < 1 || c.Postgres.MinConns > c.Postgres.MaxConns {
		return fmt.Errorf("invalid postgres pool bounds: min %d, max %d", c.Postgres.MinConns, c.Postgres.MaxConns)
	}
	return nil
}
