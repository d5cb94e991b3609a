package repository

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/todone/internal/cache"
	"github.com/adanyl0v/todone/internal/models"
)

func setupCache(t *testing.T) *cache.Cache {
	t.Helper()

	// An in-process server stands in unless a real one is configured.
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = miniredis.RunT(t).Addr()
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("redis not reachable: %v", err)
	}

	// A unique prefix keeps parallel runs apart.
	prefix := "todone-test:" + t.Name() + ":" + time.Now().Format(time.RFC3339Nano) + ":"
	return cache.New(client, prefix, time.Minute)
}

func TestCachedRepository(t *testing.T) {
	testRepositoryBehaviour(t, func(t *testing.T) TaskRepository {
		return NewCachedRepository(zerolog.Nop(), NewMemoryRepository(), setupCache(t))
	})
}

func TestCachedRepository_ServesAndInvalidates(t *testing.T) {
	c := setupCache(t)
	backing := NewMemoryRepository()
	repo := NewCachedRepository(zerolog.Nop(), backing, c)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.TaskFields{Title: "Buy milk", Priority: models.PriorityMedium})
	require.NoError(t, err)

	tasks, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	// The second read is a hit.
	before := c.Stats().Hits
	tasks, err = repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, before+1, c.Stats().Hits)

	updated, ok, err := repo.Update(ctx, created.ID, models.TaskPatch{Completed: ptr(true)})
	require.NoError(t, err)
	require.True(t, ok)

	tasks, err = repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Completed)

	found, ok, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assertSameTask(t, updated, found)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	_, ok, err = repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	tasks, err = repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	assert.NoError(t, repo.Close())
}

func TestCachedRepository_BypassesBrokenCache(t *testing.T) {
	// Nothing listens on this port, so every cache call fails.
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	repo := NewCachedRepository(zerolog.Nop(), NewMemoryRepository(), cache.New(client, "broken:", time.Minute))
	defer repo.Close()
	ctx := context.Background()

	created, err := repo.Create(ctx, models.TaskFields{Title: "still works", Priority: models.PriorityLow})
	require.NoError(t, err)

	tasks, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	found, ok, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, created.ID, found.ID)
}

// pausingRepository holds a single read open after it has hit the store, so
// a mutation can commit before the read result reaches the cache.
type pausingRepository struct {
	TaskRepository
	pause  atomic.Bool
	read   chan struct{}
	resume chan struct{}
}

func newPausingRepository() *pausingRepository {
	return &pausingRepository{
		TaskRepository: NewMemoryRepository(),
		read:           make(chan struct{}),
		resume:         make(chan struct{}),
	}
}

func (r *pausingRepository) ListAll(ctx context.Context) ([]models.Task, error) {
	tasks, err := r.TaskRepository.ListAll(ctx)
	r.hold()
	return tasks, err
}

func (r *pausingRepository) FindByID(ctx context.Context, id string) (models.Task, bool, error) {
	task, ok, err := r.TaskRepository.FindByID(ctx, id)
	r.hold()
	return task, ok, err
}

func (r *pausingRepository) hold() {
	if r.pause.CompareAndSwap(true, false) {
		r.read <- struct{}{}
		<-r.resume
	}
}

func TestCachedRepository_ListAllDuringCreate(t *testing.T) {
	backing := newPausingRepository()
	repo := NewCachedRepository(zerolog.Nop(), backing, setupCache(t))
	ctx := context.Background()

	backing.pause.Store(true)
	done := make(chan []models.Task)
	go func() {
		tasks, err := repo.ListAll(ctx)
		assert.NoError(t, err)
		done <- tasks
	}()

	<-backing.read
	_, err := repo.Create(ctx, models.TaskFields{Title: "Buy milk", Priority: models.PriorityMedium})
	require.NoError(t, err)
	close(backing.resume)

	// The in-flight read started before the create and may not see it.
	assert.Empty(t, <-done)

	tasks, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestCachedRepository_FindByIDDuringUpdate(t *testing.T) {
	backing := newPausingRepository()
	repo := NewCachedRepository(zerolog.Nop(), backing, setupCache(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, models.TaskFields{Title: "Buy milk", Priority: models.PriorityMedium})
	require.NoError(t, err)

	backing.pause.Store(true)
	done := make(chan models.Task)
	go func() {
		task, ok, err := repo.FindByID(ctx, created.ID)
		assert.NoError(t, err)
		assert.True(t, ok)
		done <- task
	}()

	<-backing.read
	_, ok, err := repo.Update(ctx, created.ID, models.TaskPatch{Completed: ptr(true)})
	require.NoError(t, err)
	require.True(t, ok)
	close(backing.resume)
	assert.False(t, (<-done).Completed)

	found, ok, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, found.Completed)
}
