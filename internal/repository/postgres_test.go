package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/todone/internal/models"
)

// setupPostgres connects to TEST_DATABASE_URL, migrates and empties the
// todos table. The test is skipped when no database is reachable.
func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skipf("failed to connect to test database: %v", err)
	}
	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		t.Skipf("test database not reachable: %v", err)
	}

	require.NoError(t, MigratePostgres(ctx, zerolog.Nop(), pool))
	// Running the migrations twice must be harmless.
	require.NoError(t, MigratePostgres(ctx, zerolog.Nop(), pool))

	t.Cleanup(pool.Close)
	return pool
}

func truncateTodos(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `TRUNCATE todos`)
	require.NoError(t, err)
}

func TestPostgresRepository(t *testing.T) {
	pool := setupPostgres(t)

	testRepositoryBehaviour(t, func(t *testing.T) TaskRepository {
		truncateTodos(t, pool)
		return NewPostgresRepository(zerolog.Nop(), pool, 30*time.Second)
	})
}

func TestPostgresRepository_ConstraintViolation(t *testing.T) {
	pool := setupPostgres(t)
	truncateTodos(t, pool)
	repo := NewPostgresRepository(zerolog.Nop(), pool, 30*time.Second)

	_, err := repo.Create(context.Background(), models.TaskFields{
		Title:    "bad",
		Priority: models.Priority("urgent"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConstraintViolation), err)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}
