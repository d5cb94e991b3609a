package app

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/adanyl0v/todone/internal/cache"
	"github.com/adanyl0v/todone/internal/config"
	"github.com/adanyl0v/todone/internal/repository"
)

const (
	cachePrefix      = "todone:todos:"
	redisPingTimeout = 5 * time.Second
)

// MustConnectStorage opens the configured task repository and, when Redis is
// configured, puts the cache in front of it.
func (a *App) MustConnectStorage() {
	var repo repository.TaskRepository
	switch a.cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		pgPool := a.MustConnectPostgres()
		if a.cfg.Postgres.AutoMigrate {
			a.MustMigratePostgres(pgPool)
		}
		repo = repository.NewPostgresRepository(
			a.logger.With().Str("storage", "postgres").Logger(),
			pgPool,
			a.cfg.Postgres.AcquireTimeout,
		)
	case config.StorageDriverSQLite:
		sqliteRepo, err := repository.OpenSQLite(
			a.logger.With().Str("storage", "sqlite").Logger(),
			a.cfg.Storage.SQLitePath,
		)
		if err != nil {
			a.logger.Error().
				Err(err).
				Str("path", a.cfg.Storage.SQLitePath).
				Msg("failed to open sqlite")
			panic(err)
		}
		a.logger.Info().
			Str("path", a.cfg.Storage.SQLitePath).
			Msg("opened sqlite")
		repo = sqliteRepo
	case config.StorageDriverMemory:
		a.logger.Warn().Msg("using in-memory storage, tasks will be lost on exit")
		repo = repository.NewMemoryRepository()
	default:
		err := fmt.Errorf("unknown storage driver: %s", a.cfg.Storage.Driver)
		a.logger.Error().
			Err(err).
			Msg("failed to connect storage")
		panic(err)
	}

	if c := a.connectRedis(); c != nil {
		repo = repository.NewCachedRepository(
			a.logger.With().Str("storage", "cache").Logger(),
			repo,
			c,
		)
	}
	a.repo = repo
}

func (a *App) DisconnectStorage() {
	if a.repo == nil {
		return
	}

	err := a.repo.Close()
	if err != nil {
		a.logger.Error().
			Err(err).
			Msg("failed to close storage")
		return
	}
	a.logger.Info().Msg("disconnected from storage")
}

func (a *App) MustConnectPostgres() *pgxpool.Pool {
	cfg := a.cfg.Postgres
	connURL := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Path:     cfg.Database,
		RawQuery: "sslmode=" + url.QueryEscape(cfg.SSLModeFor(a.cfg.Env)),
	}

	poolCfg, err := pgxpool.ParseConfig(connURL.String())
	if err != nil {
		a.logger.Error().
			Err(err).
			Msg("failed to parse postgres config")
		panic(err)
	}
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdle

	pgPool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		a.logger.Error().
			Err(err).
			Msg("failed to connect to postgres")
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	err = pgPool.Ping(ctx)
	if err != nil {
		pgPool.Close()
		a.logger.Error().
			Err(err).
			Msg("failed to ping postgres")
		panic(err)
	}
	a.logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Int32("max_conns", cfg.MaxConns).
		Msg("connected to postgres")
	return pgPool
}

func (a *App) MustMigratePostgres(pgPool *pgxpool.Pool) {
	err := repository.MigratePostgres(context.Background(), a.logger, pgPool)
	if err != nil {
		a.logger.Error().
			Err(err).
			Msg("failed to migrate postgres")
		panic(err)
	}
	a.logger.Info().Msg("migrated postgres")
}

// connectRedis returns nil when the cache is disabled or unreachable. The
// service runs without a cache rather than refusing to start.
func (a *App) connectRedis() *cache.Cache {
	cfg := a.cfg.Redis
	if cfg.Addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	c := cache.New(client, cachePrefix, cfg.TTL)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	err := c.Ping(ctx)
	if err != nil {
		_ = c.Close()
		a.logger.Warn().
			Err(err).
			Str("addr", cfg.Addr).
			Msg("redis unreachable, running without cache")
		return nil
	}
	a.logger.Info().
		Str("addr", cfg.Addr).
		Dur("ttl", cfg.TTL).
		Msg("connected to redis")
	return c
}
