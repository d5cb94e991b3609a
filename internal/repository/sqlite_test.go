package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/todone/internal/models"
)

func setupSQLite(t *testing.T) *SQLiteRepository {
	t.Helper()

	repo, err := OpenSQLite(zerolog.Nop(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = repo.Close()
	})
	return repo
}

func TestSQLiteRepository(t *testing.T) {
	testRepositoryBehaviour(t, func(t *testing.T) TaskRepository {
		return setupSQLite(t)
	})
}

func TestSQLiteRepository_RejectsConstraintViolations(t *testing.T) {
	repo := setupSQLite(t)

	_, err := repo.Create(context.Background(), models.TaskFields{
		Title:    "bad",
		Priority: models.Priority("urgent"),
	})
	assert.True(t, errors.Is(err, ErrConstraintViolation), err)

	_, err = repo.Create(context.Background(), models.TaskFields{Priority: models.PriorityLow})
	assert.True(t, errors.Is(err, ErrConstraintViolation), err)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSQLiteRepository_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.db")
	ctx := context.Background()

	repo, err := OpenSQLite(zerolog.Nop(), path)
	require.NoError(t, err)
	created, err := repo.Create(ctx, models.TaskFields{Title: "survive", Priority: models.PriorityLow})
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = OpenSQLite(zerolog.Nop(), path)
	require.NoError(t, err)
	defer repo.Close()

	found, ok, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assertSameTask(t, created, found)
}

func TestSQLiteRepository_UpdateRejectsInvalidPriority(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.TaskFields{Title: "ok", Priority: models.PriorityLow})
	require.NoError(t, err)

	_, _, err = repo.Update(ctx, created.ID, models.TaskPatch{Priority: ptr(models.Priority("urgent"))})
	assert.True(t, errors.Is(err, ErrConstraintViolation), err)

	found, ok, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.PriorityLow, found.Priority)
}
